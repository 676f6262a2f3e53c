// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Color is a 24-bit RGB color in 0xRRGGBB form, the notation facility palettes are written in.
type Color uint32

// RGB returns the color channels as floats in [0, 1].
//
// Returns:
//   - r, g, b: normalized channel values
func (c Color) RGB() (r, g, b float32) {
	return float32((c>>16)&0xff) / 255, float32((c>>8)&0xff) / 255, float32(c&0xff) / 255
}

// RGBA returns the color as a GPU-ready [4]float32 with the given alpha.
//
// Parameters:
//   - alpha: opacity in [0, 1]
//
// Returns:
//   - [4]float32: r, g, b, a
func (c Color) RGBA(alpha float32) [4]float32 {
	r, g, b := c.RGB()
	return [4]float32{r, g, b, alpha}
}

// Bytes returns the 8-bit channel values.
func (c Color) Bytes() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Luminance returns the relative luminance of the color in [0, 1].
func (c Color) Luminance() float32 {
	r, g, b := c.RGB()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Material describes the surface appearance of a mesh node. The fields are the subset of a
// physically based material that the renderers consume.
type Material struct {
	// Color is the base albedo.
	Color Color

	// Emissive is the glow color added on top of lighting; zero means no glow.
	Emissive Color

	// EmissiveIntensity scales Emissive.
	EmissiveIntensity float32

	// Opacity is the alpha value; 1 is fully opaque.
	Opacity float32

	// Metalness and Roughness are carried for backends that shade physically.
	Metalness float32
	Roughness float32
}

// Opaque returns a fully opaque material with the given base color.
func Opaque(c Color) Material {
	return Material{Color: c, Opacity: 1, Roughness: 0.5}
}

// Glowing returns a material whose emissive color matches its base color.
func Glowing(c Color, intensity, opacity float32) Material {
	return Material{Color: c, Emissive: c, EmissiveIntensity: intensity, Opacity: opacity}
}
