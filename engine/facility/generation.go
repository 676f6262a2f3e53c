package facility

import (
	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/particle"
	"github.com/Carmen-Shannon/h2scape/engine/scene"
	"github.com/chewxy/math32"
)

// ConnectionPath is a smooth route between two facility anchors. Conduit geometry is built
// along Curve and flow particles travel it, so the two can never diverge.
type ConnectionPath struct {
	ID     particle.PathID
	Kind   PathKind
	Points []common.Vec3
	Curve  *common.CatmullRom
}

// Generation is one complete build of the facility for a parameter set. It is discarded
// wholesale on the next rebuild. Animate and the views must be called from the goroutine that
// owns the engine's frame, since Animate mutates nodes in place.
type Generation struct {
	params  Params
	profile string
	root    *scene.Node
	kit     *Kit

	arena   arena
	paths   []ConnectionPath
	flow    *particle.FlowSystem
	bubbles *particle.BubbleField

	particleNodes []*scene.Node
	bubbleNodes   []*scene.Node
	rotors        []*scene.Node
	panels        []*scene.Node
}

// Params returns the effective (clamped) counts this generation was built with.
func (g *Generation) Params() Params {
	return g.params
}

// Profile returns the name of the profile this generation was built with.
func (g *Generation) Profile() string {
	return g.profile
}

// Root returns the generation's root node in the host scene.
func (g *Generation) Root() *scene.Node {
	return g.root
}

// Instances returns a copy of the placed units of kind, in index order.
func (g *Generation) Instances(kind Kind) []Instance {
	return g.arena.list(kind)
}

// Count returns the number of placed units of kind.
func (g *Generation) Count(kind Kind) int {
	return g.arena.count(kind)
}

// Paths returns the connection paths in particle path order.
func (g *Generation) Paths() []ConnectionPath {
	out := make([]ConnectionPath, len(g.paths))
	copy(out, g.paths)
	return out
}

// PathCount returns the number of connection paths of kind.
func (g *Generation) PathCount(kind PathKind) int {
	n := 0
	for _, p := range g.paths {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

// Flow returns the generation's flow particles.
func (g *Generation) Flow() *particle.FlowSystem {
	return g.flow
}

// Bubbles returns the generation's electrolysis bubbles.
func (g *Generation) Bubbles() *particle.BubbleField {
	return g.bubbles
}

// Rotors returns the spinning rotor nodes, one per turbine; empty for non-rotor profiles.
func (g *Generation) Rotors() []*scene.Node {
	return g.rotors
}

// Panels returns the swaying panel nodes, one per panel; empty for non-panel profiles.
func (g *Generation) Panels() []*scene.Node {
	return g.panels
}

// NodeCount returns the number of nodes in the generation's subtree, root included.
func (g *Generation) NodeCount() int {
	if g.root == nil {
		return 0
	}
	return g.root.Count()
}

// MeshCount returns the number of distinct meshes the generation draws.
func (g *Generation) MeshCount() int {
	return g.kit.Len() + len(g.paths)
}

// Animate runs the per-frame update pass over the generation's owned state: flow particles,
// bubbles, rotors, then panels. The nodes carry the new state when it returns.
//
// Parameters:
//   - t: seconds since the animation started
func (g *Generation) Animate(t float32) {
	g.flow.Tick(t)
	for i, p := range g.flow.Particles() {
		n := g.particleNodes[i]
		n.Position = p.Position
		n.Material.EmissiveIntensity = p.Emissive
	}

	g.bubbles.Tick()
	for i, b := range g.bubbles.Bubbles() {
		n := g.bubbleNodes[i]
		n.Position = b.Position
		n.Material.Opacity = b.Opacity
	}

	for i, r := range g.rotors {
		wind := 1 + math32.Sin(t*0.1+float32(i)*0.5)*0.3
		r.Rotation.X += 0.02 * wind
	}
	for i, p := range g.panels {
		p.Rotation.Y = math32.Sin(t*0.1+float32(i)*0.1) * 0.05
	}
}

// release drops every reference so a disposed generation holds no nodes.
func (g *Generation) release() {
	g.arena.reset()
	g.particleNodes = nil
	g.bubbleNodes = nil
	g.rotors = nil
	g.panels = nil
}
