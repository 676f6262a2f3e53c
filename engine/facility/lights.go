package facility

import (
	"github.com/Carmen-Shannon/h2scape/engine/light"
)

// Lights returns the facility lighting rig: a warm sun, a cool sky fill, and a dim ambient.
func Lights() []light.Light {
	return []light.Light{
		light.NewLight(light.LightTypeDirectional,
			light.WithName("sun"),
			light.WithColor(0xfff4e6),
			light.WithIntensity(4),
			light.WithPosition(30, 25, 20),
		),
		light.NewLight(light.LightTypeDirectional,
			light.WithName("fill"),
			light.WithColor(0x87ceeb),
			light.WithIntensity(1.5),
			light.WithPosition(-20, 15, -15),
		),
		light.NewLight(light.LightTypeAmbient,
			light.WithName("ambient"),
			light.WithColor(0x404854),
			light.WithIntensity(0.4),
		),
	}
}
