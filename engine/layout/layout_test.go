package layout

import (
	"testing"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/stretchr/testify/assert"
)

var wind = Line{
	Origin:     common.V3(-16, 0, -10),
	Spacing:    8,
	RowSpacing: 8,
	Fallback:   common.V3(-16, 8, -10),
}

func TestPlaceSingleUnit(t *testing.T) {
	assert.Equal(t, common.V3(-16, 0, -10), wind.Place(1, 0))
}

func TestPlaceLine(t *testing.T) {
	for i := 0; i < 5; i++ {
		p := wind.Place(5, i)
		assert.Equal(t, float32(-16+8*i), p.X)
		assert.Equal(t, float32(-10), p.Z)
	}
}

func TestPlaceGridEight(t *testing.T) {
	assert.Equal(t, 3, Columns(8))

	// rows = ceil(8/3) = 3, so z offsets are (row - 1.5) * 8
	assert.Equal(t, common.V3(-28, 0, -22), wind.Place(8, 0))
	assert.Equal(t, common.V3(-12, 0, -22), wind.Place(8, 2))
	assert.Equal(t, common.V3(-28, 0, -14), wind.Place(8, 3))
	assert.Equal(t, common.V3(-20, 0, -6), wind.Place(8, 7))
}

func TestPlaceGridPositionsAreDistinct(t *testing.T) {
	for _, n := range []int{6, 9, 17, 64} {
		seen := map[common.Vec3]bool{}
		for i := 0; i < n; i++ {
			p := wind.Place(n, i)
			assert.False(t, seen[p], "duplicate position for n=%d i=%d", n, i)
			seen[p] = true
		}
	}
}

func TestAnchor(t *testing.T) {
	assert.Equal(t, common.V3(-16, 8, -10), wind.Anchor(1))
	assert.Equal(t, common.V3(-8, 8, -10), wind.Anchor(3))
	assert.Equal(t, common.V3(0, 8, -10), wind.Anchor(5))
	assert.Equal(t, wind.Fallback, wind.Anchor(6))
}

func TestCentered(t *testing.T) {
	assert.Equal(t, float32(5), Centered(1, 0, 5, 6))
	assert.Equal(t, float32(2), Centered(2, 0, 5, 6))
	assert.Equal(t, float32(8), Centered(2, 1, 5, 6))
	assert.Equal(t, float32(-1), Centered(3, 0, 5, 6))
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, 1, ClampCount(0, 0))
	assert.Equal(t, 1, ClampCount(-4, 64))
	assert.Equal(t, 500, ClampCount(500, 0))
	assert.Equal(t, 64, ClampCount(500, 64))
	assert.Equal(t, 3, ClampCount(3, 64))
}
