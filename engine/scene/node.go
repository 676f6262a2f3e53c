package scene

import (
	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/model"
	"github.com/chewxy/math32"
)

// Node is one element of the scene hierarchy: a transform, an optional mesh with its material,
// and child nodes whose transforms are relative to it. A node without a mesh is a group.
//
// Nodes are mutated in place by the frame update (rotor spin, particle motion), so every access
// must happen on the goroutine that owns the scene generation.
type Node struct {
	Name     string
	Position common.Vec3
	Rotation common.Vec3 // Euler radians, applied Y * X * Z
	Scale    common.Vec3
	Mesh     *model.Mesh
	Material common.Material
	Visible  bool

	parent   *Node
	children []*Node
}

// NewGroup creates an empty, visible group node at the origin.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - *Node: the group
func NewGroup(name string) *Node {
	return &Node{Name: name, Scale: common.V3(1, 1, 1), Visible: true}
}

// NewMeshNode creates a visible node that draws mesh with mat.
//
// Parameters:
//   - name: the node name
//   - mesh: the mesh to draw, shared and never modified
//   - mat: the surface material
//
// Returns:
//   - *Node: the mesh node
func NewMeshNode(name string, mesh *model.Mesh, mat common.Material) *Node {
	n := NewGroup(name)
	n.Mesh = mesh
	n.Material = mat
	return n
}

// At sets the node position and returns the node for chaining.
func (n *Node) At(x, y, z float32) *Node {
	n.Position = common.V3(x, y, z)
	return n
}

// Rotated sets the node rotation in radians and returns the node for chaining.
func (n *Node) Rotated(x, y, z float32) *Node {
	n.Rotation = common.V3(x, y, z)
	return n
}

// Scaled sets a uniform scale and returns the node for chaining.
func (n *Node) Scaled(s float32) *Node {
	n.Scale = common.V3(s, s, s)
	return n
}

// Add appends children to the node, detaching each from any previous parent.
//
// Parameters:
//   - children: nodes to attach; nil entries are skipped
//
// Returns:
//   - *Node: n, for chaining
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// Remove detaches child from the node.
//
// Parameters:
//   - child: the node to detach
//
// Returns:
//   - bool: true if child was a direct child of n
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Count returns the number of nodes in the subtree rooted at n, including n.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.children {
		total += c.Count()
	}
	return total
}

// LocalMatrix writes the node's transform relative to its parent into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
func (n *Node) LocalMatrix(out []float32) {
	common.BuildModelMatrix(out, n.Position, n.Rotation, n.Scale)
}

// Walk visits every visible node of the subtree depth-first, parents before children, passing
// the node's world matrix. Invisible nodes hide their whole subtree.
//
// Parameters:
//   - parent: the world matrix of n's parent, or nil for the identity
//   - fn: the visitor
func (n *Node) Walk(parent *[16]float32, fn func(node *Node, world *[16]float32)) {
	if !n.Visible {
		return
	}
	var world [16]float32
	n.LocalMatrix(world[:])
	if parent != nil {
		common.Mul4(world[:], parent[:], world[:])
	}
	fn(n, &world)
	for _, c := range n.children {
		c.Walk(&world, fn)
	}
}

// maxScale returns the largest axis scale encoded in a world matrix.
func maxScale(m *[16]float32) float32 {
	sx := math32.Sqrt(m[0]*m[0] + m[1]*m[1] + m[2]*m[2])
	sy := math32.Sqrt(m[4]*m[4] + m[5]*m[5] + m[6]*m[6])
	sz := math32.Sqrt(m[8]*m[8] + m[9]*m[9] + m[10]*m[10])
	return max(sx, sy, sz)
}
