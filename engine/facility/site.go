package facility

import (
	"fmt"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/layout"
	"github.com/Carmen-Shannon/h2scape/engine/scene"
	"github.com/chewxy/math32"
)

const (
	electrolysisCenter  = 5
	electrolysisSpacing = 6
	storageX            = 18
	storageTanks        = 3
	depotX              = 28
	trucks              = 2
)

// electrolysisX is the x coordinate of electrolysis unit index of count.
func electrolysisX(count, index int) float32 {
	return layout.Centered(count, index, electrolysisCenter, electrolysisSpacing)
}

func substation(kit *Kit, gridZ float32) *scene.Node {
	m := kit.Materials
	equip := kit.Box(1, 1.5, 0.8)
	return scene.NewGroup("substation").Add(
		scene.NewMeshNode("building", kit.Box(3, 4, 2), m.Concrete).At(-5, 2, gridZ),
		scene.NewMeshNode("equipment_0", equip, m.Metal).At(-4, 0.75, gridZ+1.5),
		scene.NewMeshNode("equipment_1", equip, m.Metal).At(-4, 0.75, gridZ-1.5),
		scene.NewMeshNode("line_tower", kit.Cylinder(0.1, 0.15, 8, 8), m.Metal).At(-5, 4, gridZ),
	)
}

func electrolysisUnit(kit *Kit, index int, x, z float32) *scene.Node {
	m := kit.Materials
	pipe := kit.Cylinder(0.1, 0.1, 2, 12)
	return scene.NewGroup(fmt.Sprintf("electrolyser_%d", index)).At(x, 0, z).Add(
		scene.NewMeshNode("tank", kit.Cylinder(1.5, 1.5, 3, 16), m.Tank).At(0, 1.5, 0),
		scene.NewMeshNode("water_pipe", pipe, m.Pipe).At(-2, 1.5, 0).Rotated(0, 0, math32.Pi/2),
		scene.NewMeshNode("control_panel", kit.Box(0.8, 1.2, 0.3), m.Dark).At(1.5, 1.5, 0),
		scene.NewMeshNode("h2_outlet", pipe, m.Pipe).At(1.5, 2.8, 0.5).Rotated(0, 0, math32.Pi/4),
		scene.NewMeshNode("o2_outlet", pipe, m.Pipe).At(1.5, 2.8, -0.5).Rotated(0, 0, math32.Pi/4),
	)
}

func storageTank(kit *Kit, index int, z float32) *scene.Node {
	m := kit.Materials
	dome := kit.Hemisphere(1.2, 16, 8)
	tz := z + float32(index-1)*3
	return scene.NewGroup(fmt.Sprintf("storage_%d", index)).At(storageX, 0, tz).Add(
		scene.NewMeshNode("tank", kit.Cylinder(1.2, 1.2, 4, 16), m.Tank).At(0, 2, 0),
		scene.NewMeshNode("top_cap", dome, m.Tank).At(0, 4, 0),
		scene.NewMeshNode("bottom_cap", dome, m.Tank).Rotated(math32.Pi, 0, 0),
		scene.NewMeshNode("label", kit.Box(1, 0.3, 0.01), m.Label).At(1.3, 2.5, 0).Rotated(0, -math32.Pi/2, 0),
	)
}

func depot(kit *Kit, z float32) *scene.Node {
	m := kit.Materials
	return scene.NewGroup("depot").Add(
		scene.NewMeshNode("building", kit.Box(4, 3, 3), m.Concrete).At(depotX, 1.5, z),
		scene.NewMeshNode("loading_bay", kit.Box(2, 2.5, 1), m.Metal).At(depotX-2, 1.25, z+2.5),
	)
}

func truck(kit *Kit, index int, z float32) *scene.Node {
	m := kit.Materials
	wheel := kit.Cylinder(0.3, 0.3, 0.2, 12)
	wheelMat := m.Dark
	wheelMat.Metalness, wheelMat.Roughness = 0, 0.8

	t := scene.NewGroup(fmt.Sprintf("truck_%d", index)).At(depotX+float32(index)*4, 0, z+5).Add(
		scene.NewMeshNode("body", kit.Box(3, 1.5, 1.2), m.Metal).At(0, 0.75, 0),
		scene.NewMeshNode("tank", kit.Cylinder(0.4, 0.4, 2.5, 12), m.Tank).At(0, 1.2, 0).Rotated(0, 0, math32.Pi/2),
	)
	for _, side := range []float32{-1, 1} {
		for _, along := range []float32{0.8, -0.8} {
			t.Add(scene.NewMeshNode("wheel", wheel, wheelMat).At(along, 0.3, side*0.7).Rotated(0, 0, math32.Pi/2))
		}
	}
	return t
}

// PathKind identifies which link of the production chain a connection path serves.
type PathKind int

const (
	SourceToGrid PathKind = iota
	GridToElectrolysis
	ElectrolysisToStorage
	StorageToDistribution
)

func (k PathKind) String() string {
	switch k {
	case SourceToGrid:
		return "source_to_grid"
	case GridToElectrolysis:
		return "grid_to_electrolysis"
	case ElectrolysisToStorage:
		return "electrolysis_to_storage"
	case StorageToDistribution:
		return "storage_to_distribution"
	default:
		return "unknown"
	}
}

// conduit describes one connection: its tube geometry and the particles flowing through it.
type conduit struct {
	kind           PathKind
	points         []common.Vec3
	radius         float32
	segments       int
	radialSegments int
	material       common.Material
	particles      int
	particleColor  common.Color
}

// powerLine is a thin glowing cable.
func powerLine(kind PathKind, mat common.Material, particles int, color common.Color, points ...common.Vec3) conduit {
	return conduit{
		kind:           kind,
		points:         points,
		radius:         0.02,
		segments:       20,
		radialSegments: 8,
		material:       mat,
		particles:      particles,
		particleColor:  color,
	}
}

// pipeline is a metal pipe.
func pipeline(kind PathKind, radius float32, segments int, mat common.Material, particles int, color common.Color, points ...common.Vec3) conduit {
	return conduit{
		kind:           kind,
		points:         points,
		radius:         radius,
		segments:       segments,
		radialSegments: 12,
		material:       mat,
		particles:      particles,
		particleColor:  color,
	}
}

// conduits lists every connection of a facility with p's effective counts, in path order.
func conduits(profile Profile, p Params) []conduit {
	m := profile.Materials
	g, z := profile.GridZ, profile.SiteZ
	glow := common.Glowing(profile.SourceColor, 0.3, 1)
	n := p.ElectrolysisUnitCount

	out := make([]conduit, 0, 2+2*n)
	out = append(out, powerLine(SourceToGrid, glow, 30, profile.SourceColor,
		profile.Source.Anchor(p.PrimaryUnitCount), profile.SourceControl, common.V3(-5, 4, g)))

	for i := 0; i < n; i++ {
		x := electrolysisX(n, i)
		out = append(out, powerLine(GridToElectrolysis, glow, 25, 0x00ff00,
			common.V3(-3, 4, g), profile.GridControl, common.V3(x, 3, z)))
	}
	for i := 0; i < n; i++ {
		x := electrolysisX(n, i)
		out = append(out, pipeline(ElectrolysisToStorage, 0.08, 30, m.Pipe, 30, 0x4a90e2,
			common.V3(x+2, 2.5, z), common.V3(x+5, 2.8, z), common.V3(storageX-3, 2.5, z), common.V3(storageX, 2.5, z)))
	}

	out = append(out, pipeline(StorageToDistribution, 0.06, 20, m.Pipe, 20, 0x0080ff,
		common.V3(storageX+1.5, 2, z), common.V3(23, 1.8, z), common.V3(depotX-2, 1.5, z)))
	return out
}
