package light

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/stretchr/testify/assert"
)

func TestDirectionalPointsAtOrigin(t *testing.T) {
	sun := NewLight(LightTypeDirectional, WithPosition(30, 25, 20), WithColor(0xfff4e6), WithIntensity(4))
	d := sun.Direction()
	assert.InDelta(t, 1, d.Len(), 1e-5)
	assert.Less(t, d.Y, float32(0))
	assert.Equal(t, common.Color(0xfff4e6), sun.Color())
	assert.Equal(t, float32(4), sun.Intensity())
}

func TestLightBlockSkipsDisabled(t *testing.T) {
	lights := []Light{
		NewLight(LightTypeDirectional),
		NewLight(LightTypeAmbient, WithEnabled(false)),
		NewLight(LightTypeAmbient, WithColor(0x404854), WithIntensity(0.4)),
	}
	buf := MarshalLightBlock(lights)
	assert.Len(t, buf, 16+MaxGPULights*32)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[0:4]))
	// second slot holds the ambient light type
	assert.Equal(t, uint32(LightTypeAmbient), binary.LittleEndian.Uint32(buf[16+32+12:]))
}
