package common

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a column-major view-projection matrix
// using the Gribb/Hartmann method. The near plane uses WebGPU's [0, 1] depth range.
//
// Parameters:
//   - viewProj: 16 float32 values representing the view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	row := func(i int) (float32, float32, float32, float32) {
		return viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]
	}
	r0x, r0y, r0z, r0w := row(0)
	r1x, r1y, r1z, r1w := row(1)
	r2x, r2y, r2z, r2w := row(2)
	r3x, r3y, r3z, r3w := row(3)

	var f Frustum
	f.Planes[FrustumLeft] = Plane{Vec3{r3x + r0x, r3y + r0y, r3z + r0z}, r3w + r0w}
	f.Planes[FrustumRight] = Plane{Vec3{r3x - r0x, r3y - r0y, r3z - r0z}, r3w - r0w}
	f.Planes[FrustumBottom] = Plane{Vec3{r3x + r1x, r3y + r1y, r3z + r1z}, r3w + r1w}
	f.Planes[FrustumTop] = Plane{Vec3{r3x - r1x, r3y - r1y, r3z - r1z}, r3w - r1w}
	f.Planes[FrustumNear] = Plane{Vec3{r2x, r2y, r2z}, r2w}
	f.Planes[FrustumFar] = Plane{Vec3{r3x - r2x, r3y - r2y, r3z - r2z}, r3w - r2w}

	for i := range f.Planes {
		f.normalizePlane(i)
	}
	return f
}

// ContainsSphere reports whether a bounding sphere is at least partially inside the frustum.
//
// Parameters:
//   - center: sphere center in world space
//   - radius: sphere radius
//
// Returns:
//   - bool: false only when the sphere lies entirely outside one plane
func (f Frustum) ContainsSphere(center Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.Normal.Dot(center)+p.Distance < -radius {
			return false
		}
	}
	return true
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := p.Normal.Len()
	if length > 0 {
		inv := 1 / length
		p.Normal = p.Normal.Scale(inv)
		p.Distance *= inv
	}
}
