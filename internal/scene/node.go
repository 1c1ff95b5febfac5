// Package scene is the renderable side of a loaded model: a tree of named
// nodes, each optionally carrying a material, plus an identity index from
// IFC GUID to the node that roots the product's geometry.
package scene

// Material is a decoration token. Materials are compared by pointer: two
// materials with equal colours are still different decorations.
type Material struct {
	Name  string
	Color [4]float32
}

func NewMaterial(name string, rgba [4]float32) *Material {
	return &Material{Name: name, Color: rgba}
}

// CurveRepresentation names the switch nodes holding a product's 2D/curve
// geometry. They can be hidden as a group.
const CurveRepresentation = "CurveRepresentation"

// Node is one element of the scene tree. Fields other than Name, GUID and
// Class change only through Graph so the identity index stays in step.
type Node struct {
	Name  string
	GUID  string // empty for pure draw nodes
	Class string

	visible  bool
	material *Material
	parent   *Node
	children []*Node
}

func NewNode(name string) *Node {
	return &Node{Name: name, visible: true}
}

// NewProductNode returns the root node for an IFC product. Its name embeds
// the guid the way the geometry converter writes it.
func NewProductNode(guid string, tag int, class string) *Node {
	n := NewNode(productName(guid, tag, class))
	n.GUID = guid
	n.Class = class
	return n
}

func (n *Node) Parent() *Node       { return n.parent }
func (n *Node) NumChildren() int    { return len(n.children) }
func (n *Node) Material() *Material { return n.material }
func (n *Node) Visible() bool       { return n.visible }
func (n *Node) Child(i int) *Node   { return n.children[i] }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Attached reports whether n hangs off root.
func (n *Node) Attached(root *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == root {
			return true
		}
	}
	return false
}
