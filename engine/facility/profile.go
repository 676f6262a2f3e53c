package facility

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/layout"
	"github.com/Carmen-Shannon/h2scape/engine/scene"
	"github.com/chewxy/math32"
)

// UnitMotion selects the idle animation of the power source units.
type UnitMotion int

const (
	MotionNone UnitMotion = iota
	// MotionRotor spins each unit's rotor about X at a gusting wind speed.
	MotionRotor
	// MotionPanel sways each panel about Y as if tracking the sun.
	MotionPanel
)

// Unit is one power source unit built by a UnitFactory. Moving is the node the idle animation
// drives; nil for static units.
type Unit struct {
	Root   *scene.Node
	Moving *scene.Node
}

// UnitFactory builds power source unit index at the origin. The builder positions it.
type UnitFactory func(kit *Kit, index int) Unit

// Profile is the strategy selecting one facility variant. Everything downstream of the power
// source units is shared between variants and only shifted by GridZ and SiteZ.
type Profile struct {
	Name string

	// Source lays out the power source units and gives the group anchor power lines start from.
	Source layout.Line

	// SourceControl is the middle control point of the source-to-grid power line.
	SourceControl common.Vec3

	// GridZ is the substation's z coordinate.
	GridZ float32

	// GridControl is the middle control point of each grid-to-electrolysis power line.
	GridControl common.Vec3

	// SiteZ is the z coordinate of the electrolysis units, storage, and distribution.
	SiteZ float32

	// SourceColor tints the power lines and the particles leaving the source units.
	SourceColor common.Color

	Materials Materials
	Unit      UnitFactory
	Motion    UnitMotion
}

var profiles = map[string]func() Profile{
	"wind":  WindProfile,
	"solar": SolarProfile,
}

// ProfileByName looks up a built-in profile.
//
// Parameters:
//   - name: "wind" or "solar"
//
// Returns:
//   - Profile: the profile
//   - bool: false if no profile has that name
func ProfileByName(name string) (Profile, bool) {
	fn, ok := profiles[name]
	if !ok {
		return Profile{}, false
	}
	return fn(), true
}

// ProfileNames returns the built-in profile names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WindProfile returns the wind farm variant: turbines on an 8 unit pitch.
func WindProfile() Profile {
	return Profile{
		Name: "wind",
		Source: layout.Line{
			Origin:     common.V3(-16, 0, -10),
			Spacing:    8,
			RowSpacing: 8,
			Fallback:   common.V3(-16, 8, -10),
		},
		SourceControl: common.V3(-10, 6, -5),
		GridZ:         2,
		GridControl:   common.V3(1, 3.5, 3),
		SiteZ:         5,
		SourceColor:   0x00ffff,
		Materials:     DefaultMaterials(),
		Unit:          windTurbine,
		Motion:        MotionRotor,
	}
}

// SolarProfile returns the solar farm variant: tilted panels on a 2.5 unit pitch.
func SolarProfile() Profile {
	return Profile{
		Name: "solar",
		Source: layout.Line{
			Origin:     common.V3(-15, 0, -8),
			Spacing:    2.5,
			RowSpacing: 2.2,
			Fallback:   common.V3(-15, 3, -8),
		},
		SourceControl: common.V3(-10, 4, -4),
		GridZ:         0,
		GridControl:   common.V3(1, 3.5, 0),
		SiteZ:         0,
		SourceColor:   0xffff00,
		Materials:     DefaultMaterials(),
		Unit:          solarPanel,
		Motion:        MotionPanel,
	}
}

func windTurbine(kit *Kit, index int) Unit {
	m := kit.Materials
	name := fmt.Sprintf("turbine_%d", index)

	rotor := scene.NewGroup(name + "_rotor").At(1.6, 12, 0)
	for j := 0; j < 3; j++ {
		blade := scene.NewGroup(fmt.Sprintf("%s_blade_%d", name, j)).
			Rotated(float32(j)*2*math32.Pi/3, 0, 0).
			Add(
				scene.NewMeshNode("blade", kit.Box(0.15, 6, 0.9), m.Blade).At(0, 3, 0),
				scene.NewMeshNode("blade_root", kit.Cylinder(0.2, 0.15, 0.5, 12), m.Hub).At(0, 0.25, 0),
			)
		rotor.Add(blade)
	}

	root := scene.NewGroup(name).Add(
		scene.NewMeshNode("tower", kit.Cylinder(0.3, 0.5, 12, 16), m.Tower).At(0, 6, 0),
		scene.NewMeshNode("nacelle", kit.Box(2, 1.2, 0.8), m.Hub).At(0, 12, 0),
		scene.NewMeshNode("hub", kit.Cylinder(0.4, 0.4, 0.6, 16), m.Hub).At(1.3, 12, 0).Rotated(0, 0, math32.Pi/2),
		rotor,
		scene.NewMeshNode("foundation", kit.Cylinder(1.5, 2, 0.5, 16), m.Concrete).At(0, 0.25, 0),
	)
	return Unit{Root: root, Moving: rotor}
}

func solarPanel(kit *Kit, index int) Unit {
	m := kit.Materials
	root := scene.NewGroup(fmt.Sprintf("panel_%d", index)).
		Rotated(-math32.Pi/8, 0, 0).
		Add(
			scene.NewMeshNode("surface", kit.Box(1.5, 0.06, 0.8), m.Panel).At(0, 0.8, 0),
			scene.NewMeshNode("frame", kit.Box(1.6, 0.1, 0.9), m.Frame).At(0, 0.8, 0),
			scene.NewMeshNode("stand", kit.Cylinder(0.05, 0.08, 0.8, 12), m.Metal).At(0, 0.4, 0),
			scene.NewMeshNode("base", kit.Cylinder(0.15, 0.2, 0.1, 12), m.Metal).At(0, 0.05, 0),
		)
	return Unit{Root: root, Moving: root}
}
