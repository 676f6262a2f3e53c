// Package layout maps facility counts to placement coordinates. Everything here is pure.
package layout

import (
	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/chewxy/math32"
)

// MaxLineCount is the largest group that is laid out on a single line; bigger groups use a grid.
const MaxLineCount = 5

// Line describes how a group of identical units is placed: a single row along +X for small groups,
// and a roughly square grid centred on the origin for larger ones.
type Line struct {
	// Origin is the position of the first unit in line mode and the grid centre offset in grid mode.
	Origin common.Vec3

	// Spacing is the distance between neighbouring units along X.
	Spacing float32

	// RowSpacing is the distance between grid rows along Z.
	RowSpacing float32

	// Fallback is the group anchor used for grids. Its Y is also the anchor height in line mode.
	Fallback common.Vec3
}

// Place returns the position of unit index out of count.
// Callers clamp count to at least 1 before calling.
//
// Parameters:
//   - count: the number of units in the group
//   - index: the unit index in [0, count)
//
// Returns:
//   - common.Vec3: the unit position
func (l Line) Place(count, index int) common.Vec3 {
	if count <= MaxLineCount {
		return common.V3(l.Origin.X+float32(index)*l.Spacing, l.Origin.Y, l.Origin.Z)
	}

	cols := Columns(count)
	rows := math32.Ceil(float32(count) / float32(cols))
	row := index / cols
	col := index % cols
	return common.V3(
		(float32(col)-float32(cols)/2)*l.Spacing+l.Origin.X,
		l.Origin.Y,
		(float32(row)-rows/2)*l.RowSpacing+l.Origin.Z,
	)
}

// Anchor returns the representative point of the group that conduits and flow paths start from.
// Lines anchor above their midpoint at the group anchor height, so a single unit anchors above its
// own x/z. Grids anchor at the fallback.
//
// Parameters:
//   - count: the number of units in the group
//
// Returns:
//   - common.Vec3: the anchor point
func (l Line) Anchor(count int) common.Vec3 {
	if count > MaxLineCount {
		return l.Fallback
	}
	n := max(count, 1)
	return common.V3(l.Origin.X+float32(n-1)*l.Spacing/2, l.Fallback.Y, l.Origin.Z)
}

// Columns returns the grid width used for count units, ceil(sqrt(count)).
func Columns(count int) int {
	return int(math32.Ceil(math32.Sqrt(float32(count))))
}

// Centered places index symmetrically around center, spacing apart.
//
// Parameters:
//   - count: the number of units
//   - index: the unit index in [0, count)
//   - center: the coordinate of the group midpoint
//   - spacing: distance between neighbours
//
// Returns:
//   - float32: the coordinate of unit index
func Centered(count, index int, center, spacing float32) float32 {
	return center + (float32(index)-float32(count-1)/2)*spacing
}

// ClampCount raises n to at least 1 and, when limit is positive, lowers it to at most limit.
//
// Parameters:
//   - n: the requested count
//   - limit: the upper bound, or 0 for none
//
// Returns:
//   - int: the effective count
func ClampCount(n, limit int) int {
	n = max(n, 1)
	if limit > 0 {
		n = min(n, limit)
	}
	return n
}
