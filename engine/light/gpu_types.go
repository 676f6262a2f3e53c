package light

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// MaxGPULights is the number of light slots in the GPU light block. The facility rig uses
// three; extra lights beyond the budget are dropped in list order.
const MaxGPULights = 8

// GPULight is the GPU-aligned representation of a single light source.
// Size: 32 bytes (two vec4<f32>, std140 aligned).
type GPULight struct {
	Direction [3]float32 // offset  0: normalized direction light travels (directional/point)
	LightType uint32     // offset 12: 0 = directional, 1 = point, 2 = ambient
	Color     [3]float32 // offset 16: linear RGB color
	Intensity float32    // offset 28: scalar multiplier
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Direction[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Direction[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Direction[2]))
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	return buf
}

// NewGPULight converts a Light into its GPU representation.
//
// Parameters:
//   - l: the light to convert
//
// Returns:
//   - GPULight: the packed light
func NewGPULight(l Light) GPULight {
	r, g, b := l.Color().RGB()
	return GPULight{
		Direction: l.Direction().Array(),
		LightType: uint32(l.Type()),
		Color:     [3]float32{r, g, b},
		Intensity: l.Intensity(),
	}
}

// MarshalLightBlock packs enabled lights into the fixed-size light uniform block: a 16-byte
// header holding the light count followed by MaxGPULights slots.
//
// Parameters:
//   - lights: the scene lights
//
// Returns:
//   - []byte: 16 + MaxGPULights*32 bytes ready for GPU upload
func MarshalLightBlock(lights []Light) []byte {
	buf := make([]byte, 16+MaxGPULights*32)
	count := 0
	for _, l := range lights {
		if l == nil || !l.Enabled() || count == MaxGPULights {
			continue
		}
		gl := NewGPULight(l)
		copy(buf[16+count*32:], gl.Marshal())
		count++
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(count))
	return buf
}
