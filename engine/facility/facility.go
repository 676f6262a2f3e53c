// Package facility builds the hydrogen production chain as a scene graph: power source units,
// a substation, electrolysis units, storage tanks, and a distribution depot, joined by power
// lines and pipelines that flow particles travel along.
package facility

import (
	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/layout"
	"github.com/Carmen-Shannon/h2scape/engine/scene"
)

// Kind is a facility type.
type Kind int

const (
	PowerSource Kind = iota
	Substation
	Electrolysis
	Storage
	Distribution

	kindCount
)

func (k Kind) String() string {
	switch k {
	case PowerSource:
		return "power_source"
	case Substation:
		return "substation"
	case Electrolysis:
		return "electrolysis"
	case Storage:
		return "storage"
	case Distribution:
		return "distribution"
	default:
		return "unknown"
	}
}

// Kinds returns every facility kind in build order.
func Kinds() []Kind {
	return []Kind{PowerSource, Substation, Electrolysis, Storage, Distribution}
}

// Params are the requested facility counts.
type Params struct {
	PrimaryUnitCount      int
	ElectrolysisUnitCount int
}

// Clamp raises both counts to at least 1 and, when limit > 0, lowers them to at most limit.
//
// Parameters:
//   - limit: the upper bound, or 0 for none
//
// Returns:
//   - Params: the effective counts
//   - bool: true if either count was lowered by the limit
func (p Params) Clamp(limit int) (Params, bool) {
	out := Params{
		PrimaryUnitCount:      layout.ClampCount(p.PrimaryUnitCount, limit),
		ElectrolysisUnitCount: layout.ClampCount(p.ElectrolysisUnitCount, limit),
	}
	capped := limit > 0 && (p.PrimaryUnitCount > limit || p.ElectrolysisUnitCount > limit)
	return out, capped
}

// Instance is one placed facility unit.
type Instance struct {
	Kind        Kind
	Index       int
	Position    common.Vec3
	Orientation common.Vec3 // Euler radians
	Node        *scene.Node
}

// arena is the typed instance registry of one generation, addressed by kind and index.
type arena struct {
	instances [kindCount][]Instance
}

func (a *arena) add(kind Kind, node *scene.Node) {
	a.instances[kind] = append(a.instances[kind], Instance{
		Kind:        kind,
		Index:       len(a.instances[kind]),
		Position:    node.Position,
		Orientation: node.Rotation,
		Node:        node,
	})
}

func (a *arena) count(kind Kind) int {
	if kind < 0 || kind >= kindCount {
		return 0
	}
	return len(a.instances[kind])
}

func (a *arena) list(kind Kind) []Instance {
	if kind < 0 || kind >= kindCount {
		return nil
	}
	out := make([]Instance, len(a.instances[kind]))
	copy(out, a.instances[kind])
	return out
}

func (a *arena) reset() {
	for k := range a.instances {
		a.instances[k] = nil
	}
}
