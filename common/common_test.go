package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, want, got Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-4, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-4, "z")
}

func TestVectorOps(t *testing.T) {
	a, b := V3(1, 2, 3), V3(4, 5, 6)
	assert.Equal(t, V3(5, 7, 9), a.Add(b))
	assert.Equal(t, V3(-3, -3, -3), a.Sub(b))
	assert.Equal(t, float32(32), a.Dot(b))
	assert.Equal(t, V3(-3, 6, -3), a.Cross(b))
	assert.Equal(t, V3(2.5, 3.5, 4.5), a.Lerp(b, 0.5))
	assert.InDelta(t, 5, V3(3, 4, 0).Len(), 1e-6)
	assert.InDelta(t, 1, V3(0, 7, 0).Normalize().Len(), 1e-6)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	assert.Equal(t, [3]float32{1, 2, 3}, a.Array())
}

func TestSphericalRoundTrip(t *testing.T) {
	v := V3(25, 13, 25)
	r, theta, phi := v.Spherical()
	assert.InDelta(t, v.Len(), r, 1e-5)
	assert.InDelta(t, math32.Pi/4, theta, 1e-5)
	assertVec(t, v, FromSpherical(r, theta, phi))

	r, theta, phi = Vec3{}.Spherical()
	assert.Zero(t, r)
	assert.Zero(t, theta)
	assert.Zero(t, phi)
}

func TestCatmullRomPassesThroughControlPoints(t *testing.T) {
	pts := []Vec3{V3(-5, 4, 0), V3(0, 6, 2), V3(5, 4, 0)}
	c := NewCatmullRom(pts...)

	assertVec(t, pts[0], c.Point(0))
	assertVec(t, pts[1], c.Point(0.5))
	assertVec(t, pts[2], c.Point(1))

	// clamped outside [0, 1]
	assertVec(t, pts[0], c.Point(-3))
	assertVec(t, pts[2], c.Point(7))

	tan := c.Tangent(0.5)
	assert.InDelta(t, 1, tan.Len(), 1e-4)
	assert.Greater(t, tan.X, float32(0.9))
}

func TestCatmullRomCopiesPoints(t *testing.T) {
	pts := []Vec3{V3(0, 0, 0), V3(1, 0, 0)}
	c := NewCatmullRom(pts...)
	pts[1] = V3(9, 9, 9)
	assertVec(t, V3(1, 0, 0), c.Point(1))

	out := c.Points()
	out[0] = V3(5, 5, 5)
	assertVec(t, V3(0, 0, 0), c.Point(0))
}

func TestCatmullRomDegenerate(t *testing.T) {
	assert.Equal(t, Vec3{}, NewCatmullRom().Point(0.3))
	assert.Equal(t, V3(1, 2, 3), NewCatmullRom(V3(1, 2, 3)).Point(0.7))
}

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	BuildModelMatrix(m[:], V3(1, 2, 3), V3(0.3, 0.2, 0.1), V3(2, 2, 2))

	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)

	// out may alias an operand
	Mul4(m[:], m[:], id[:])
	assert.Equal(t, out, m)
}

func TestInvert4(t *testing.T) {
	var m, inv, prod, id [16]float32
	BuildModelMatrix(m[:], V3(4, -2, 7), V3(0.5, 1.2, -0.3), V3(1, 3, 0.5))
	require.True(t, Invert4(inv[:], m[:]))
	Mul4(prod[:], m[:], inv[:])
	Identity(id[:])
	assert.InDeltaSlice(t, id[:], prod[:], 1e-4)

	var zero [16]float32
	assert.False(t, Invert4(inv[:], zero[:]))
}

func TestTransformPoint(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], V3(10, 0, 0), V3(0, math32.Pi/2, 0), V3(1, 1, 1))

	p, w := TransformPoint(m[:], V3(0, 0, 1))
	assertVec(t, V3(11, 0, 0), p)
	assert.Equal(t, float32(1), w)

	// directions ignore translation
	assertVec(t, V3(1, 0, 0), TransformDirection(m[:], V3(0, 0, 1)))
}

func TestFrustumContainsSphere(t *testing.T) {
	var view, proj, vp [16]float32
	LookAt(view[:], V3(0, 0, 5), V3(0, 0, 0), V3(0, 1, 0))
	Perspective(proj[:], math32.Pi/4, 1, 0.1, 100)
	Mul4(vp[:], proj[:], view[:])
	f := ExtractFrustumFromMatrix(vp[:])

	assert.True(t, f.ContainsSphere(V3(0, 0, 0), 1))
	assert.False(t, f.ContainsSphere(V3(0, 0, 10), 1), "behind the eye")
	assert.False(t, f.ContainsSphere(V3(100, 0, 0), 1), "far right")
	assert.False(t, f.ContainsSphere(V3(0, 0, -200), 1), "beyond far plane")
	assert.True(t, f.ContainsSphere(V3(0, 0, -200), 120), "large sphere straddling far plane")

	for _, p := range f.Planes {
		assert.InDelta(t, 1, p.Normal.Len(), 1e-4)
	}
}

func TestColor(t *testing.T) {
	c := Color(0xff8000)
	r, g, b := c.RGB()
	assert.InDelta(t, 1, r, 1e-6)
	assert.InDelta(t, 128.0/255.0, g, 1e-6)
	assert.InDelta(t, 0, b, 1e-6)
	assert.Equal(t, [4]float32{r, g, b, 0.5}, c.RGBA(0.5))

	r8, g8, b8 := c.Bytes()
	assert.Equal(t, []uint8{255, 128, 0}, []uint8{r8, g8, b8})

	assert.InDelta(t, 1, Color(0xffffff).Luminance(), 1e-5)
	assert.Zero(t, Color(0).Luminance())
}

func TestMaterials(t *testing.T) {
	m := Opaque(0x4a90e2)
	assert.Equal(t, float32(1), m.Opacity)
	assert.Zero(t, m.EmissiveIntensity)

	g := Glowing(0x00ff00, 0.5, 0.8)
	assert.Equal(t, Color(0x00ff00), g.Emissive)
	assert.Equal(t, float32(0.8), g.Opacity)
}

func TestClampAndCoalesce(t *testing.T) {
	assert.Equal(t, 1, Clamp(-4, 1, 5))
	assert.Equal(t, 5, Clamp(9, 1, 5))
	assert.Equal(t, float32(0.3), Clamp(float32(0.3), 0, 1))

	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]uint32(nil)))
	b := SliceToBytes([]uint32{1, 2})
	assert.Len(t, b, 8)
}
