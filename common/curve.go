package common

import "github.com/chewxy/math32"

// CatmullRom is an open centripetal Catmull-Rom spline through a fixed list of control points.
// Endpoints are extrapolated so the curve passes through the first and last control point.
type CatmullRom struct {
	points []Vec3
}

// NewCatmullRom creates a spline through the given points.
// At least two points are required; fewer points produce a degenerate curve that
// always evaluates to the single point (or the origin when empty).
//
// Parameters:
//   - points: the control points, copied
//
// Returns:
//   - *CatmullRom: the spline
func NewCatmullRom(points ...Vec3) *CatmullRom {
	cp := make([]Vec3, len(points))
	copy(cp, points)
	return &CatmullRom{points: cp}
}

// Points returns a copy of the control points.
func (c *CatmullRom) Points() []Vec3 {
	cp := make([]Vec3, len(c.points))
	copy(cp, c.points)
	return cp
}

// Point evaluates the spline at t in [0, 1]. Values outside the range are clamped.
//
// Parameters:
//   - t: curve parameter
//
// Returns:
//   - Vec3: the point on the curve
func (c *CatmullRom) Point(t float32) Vec3 {
	n := len(c.points)
	switch n {
	case 0:
		return Vec3{}
	case 1:
		return c.points[0]
	}

	t = Clamp(t, 0, 1)
	p := float32(n-1) * t
	seg := int(math32.Floor(p))
	w := p - float32(seg)
	if seg >= n-1 {
		seg = n - 2
		w = 1
	}

	p1 := c.points[seg]
	p2 := c.points[seg+1]

	var p0, p3 Vec3
	if seg > 0 {
		p0 = c.points[seg-1]
	} else {
		p0 = p1.Scale(2).Sub(p2)
	}
	if seg+2 < n {
		p3 = c.points[seg+2]
	} else {
		p3 = p2.Scale(2).Sub(p1)
	}

	// centripetal parameterisation: knot spacing is the square root of chord length
	dt0 := math32.Pow(p0.Sub(p1).Dot(p0.Sub(p1)), 0.25)
	dt1 := math32.Pow(p1.Sub(p2).Dot(p1.Sub(p2)), 0.25)
	dt2 := math32.Pow(p2.Sub(p3).Dot(p2.Sub(p3)), 0.25)
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	return Vec3{
		X: nonUniformCubic(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2, w),
		Y: nonUniformCubic(p0.Y, p1.Y, p2.Y, p3.Y, dt0, dt1, dt2, w),
		Z: nonUniformCubic(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2, w),
	}
}

// Tangent returns the normalized direction of the curve at t, estimated by central difference.
func (c *CatmullRom) Tangent(t float32) Vec3 {
	const h = 1e-3
	a := c.Point(Clamp(t-h, 0, 1))
	b := c.Point(Clamp(t+h, 0, 1))
	return b.Sub(a).Normalize()
}

// nonUniformCubic evaluates one axis of a non-uniform Catmull-Rom segment between x1 and x2.
func nonUniformCubic(x0, x1, x2, x3, dt0, dt1, dt2, w float32) float32 {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	t1 *= dt1
	t2 *= dt1

	c0 := x1
	c1 := t1
	c2 := -3*x1 + 3*x2 - 2*t1 - t2
	c3 := 2*x1 - 2*x2 + t1 + t2
	return c0 + c1*w + c2*w*w + c3*w*w*w
}
