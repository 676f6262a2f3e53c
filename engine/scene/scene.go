package scene

import (
	"errors"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/light"
	"github.com/Carmen-Shannon/h2scape/engine/model"
)

// ErrNilNode is returned when a nil node is added to a scene.
var ErrNilNode = errors.New("scene: nil node")

// Scene is the host scene graph: a set of root nodes and the lights that shade them.
// Renderers never walk the live graph; they draw a Snapshot taken once per frame.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Add inserts a root node into the scene.
	//
	// Parameters:
	//   - node: the root to insert
	//
	// Returns:
	//   - error: ErrNilNode if node is nil
	Add(node *Node) error

	// Remove removes a root node and its subtree from the scene.
	//
	// Parameters:
	//   - node: the root to remove
	//
	// Returns:
	//   - bool: true if the node was a root of this scene
	Remove(node *Node) bool

	// Roots returns a copy of the root node list.
	//
	// Returns:
	//   - []*Node: the roots in insertion order
	Roots() []*Node

	// NodeCount returns the total number of nodes across all roots, including groups.
	//
	// Returns:
	//   - int: node count
	NodeCount() int

	// AddLight adds a light source to the scene.
	//
	// Parameters:
	//   - l: the Light to add
	AddLight(l light.Light)

	// RemoveLight removes a light source from the scene by reference.
	//
	// Parameters:
	//   - l: the Light to remove
	RemoveLight(l light.Light)

	// Lights returns all lights currently registered in the scene.
	//
	// Returns:
	//   - []light.Light: the scene's light list
	Lights() []light.Light

	// Background returns the clear color.
	Background() common.Color

	// Snapshot flattens the visible scene into world-space draw items.
	//
	// Returns:
	//   - Snapshot: the frame's draw list
	Snapshot() Snapshot

	// Clear removes all nodes and lights.
	Clear()
}

// Item is one mesh draw in world space.
type Item struct {
	Name     string
	Mesh     *model.Mesh
	Material common.Material
	World    [16]float32

	// Center and Radius bound the item in world space for culling.
	Center common.Vec3
	Radius float32
}

// Snapshot is an immutable per-frame copy of everything a renderer draws.
type Snapshot struct {
	Items      []Item
	Lights     []light.Light
	Background common.Color
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu         *sync.RWMutex
	name       string
	roots      []*Node
	lights     []light.Light
	background common.Color

	// itemHint sizes the next snapshot's item slice from the previous one.
	itemHint int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates an empty Scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:         &sync.RWMutex{},
		name:       name,
		background: 0x0a0e1a,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Add(node *Node) error {
	if node == nil {
		return ErrNilNode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.roots, node) {
		s.roots = append(s.roots, node)
	}
	return nil
}

func (s *scene) Remove(node *Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.roots, node)
	if i < 0 {
		return false
	}
	s.roots = slices.Delete(s.roots, i, i+1)
	return true
}

func (s *scene) Roots() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roots)
}

func (s *scene) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, r := range s.roots {
		total += r.Count()
	}
	return total
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lights)
}

func (s *scene) Background() common.Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *scene) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, 0, s.itemHint)
	for _, root := range s.roots {
		root.Walk(nil, func(n *Node, world *[16]float32) {
			if n.Mesh == nil {
				return
			}
			center, _ := common.TransformPoint(world[:], n.Mesh.Center())
			items = append(items, Item{
				Name:     n.Name,
				Mesh:     n.Mesh,
				Material: n.Material,
				World:    *world,
				Center:   center,
				Radius:   n.Mesh.BoundingRadius * maxScale(world),
			})
		})
	}
	s.itemHint = len(items)

	return Snapshot{
		Items:      items,
		Lights:     slices.Clone(s.lights),
		Background: s.background,
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots = nil
	s.lights = nil
}
