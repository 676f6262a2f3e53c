package model

import (
	"testing"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertIndicesInRange(t *testing.T, m *Mesh) {
	t.Helper()
	require.Zero(t, len(m.Indices)%3)
	for _, idx := range m.Indices {
		require.Less(t, int(idx), len(m.Vertices))
	}
}

func TestBoxBounds(t *testing.T) {
	m := Box(3, 4, 2)
	assertIndicesInRange(t, m)
	assert.Len(t, m.Vertices, 24)
	assert.Equal(t, 12, m.TriangleCount())
	assert.Equal(t, [3]float32{-1.5, -2, -1}, m.BoundingMin)
	assert.Equal(t, [3]float32{1.5, 2, 1}, m.BoundingMax)
	assert.Equal(t, common.Vec3{}, m.Center())
}

func TestBoxFacesWindOutward(t *testing.T) {
	m := Box(1, 1, 1)
	for i := 0; i < len(m.Indices); i += 3 {
		a := vec(m.Vertices[m.Indices[i]].Position)
		b := vec(m.Vertices[m.Indices[i+1]].Position)
		c := vec(m.Vertices[m.Indices[i+2]].Position)
		face := b.Sub(a).Cross(c.Sub(a))
		n := vec(m.Vertices[m.Indices[i]].Normal)
		assert.Greater(t, face.Dot(n), float32(0))
	}
}

func TestCylinderBounds(t *testing.T) {
	m := Cylinder(0.3, 0.5, 12, 8)
	assertIndicesInRange(t, m)
	assert.InDelta(t, -6, m.BoundingMin[1], 1e-5)
	assert.InDelta(t, 6, m.BoundingMax[1], 1e-5)
	assert.InDelta(t, 0.5, m.BoundingMax[2], 1e-5)
	// torso + two capped fans
	assert.Equal(t, 8*2+8+8, m.TriangleCount())
}

func TestHemisphereStaysAboveEquator(t *testing.T) {
	m := Hemisphere(1.2, 16, 8)
	assertIndicesInRange(t, m)
	assert.InDelta(t, 0, m.BoundingMin[1], 1e-5)
	assert.InDelta(t, 1.2, m.BoundingMax[1], 1e-5)
}

func TestSphereRadius(t *testing.T) {
	m := Sphere(0.02, 8, 8)
	assertIndicesInRange(t, m)
	assert.InDelta(t, 0.02, m.BoundingRadius, 1e-6)
}

func TestTubeFollowsCurve(t *testing.T) {
	curve := common.NewCatmullRom(common.V3(0, 0, 0), common.V3(5, 1, 0), common.V3(10, 0, 0))
	m := Tube(curve, 20, 0.1, 8)
	assertIndicesInRange(t, m)
	assert.Len(t, m.Vertices, 21*9)
	assert.Equal(t, 20*8*2, m.TriangleCount())

	// every ring vertex sits one radius away from its curve sample
	for i := 0; i <= 20; i++ {
		center := curve.Point(float32(i) / 20)
		for j := 0; j <= 8; j++ {
			p := vec(m.Vertices[i*9+j].Position)
			assert.InDelta(t, 0.1, p.DistanceTo(center), 1e-3)
		}
	}
}

func TestGPUInstanceMarshalSize(t *testing.T) {
	inst := GPUInstance{Color: [4]float32{1, 0, 0, 1}}
	assert.Len(t, inst.Marshal(), inst.Size())
	v := GPUVertex{}
	assert.Len(t, v.Marshal(), v.Size())
}

func vec(a [3]float32) common.Vec3 {
	return common.V3(a[0], a[1], a[2])
}
