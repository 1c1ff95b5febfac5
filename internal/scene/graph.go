package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/ifcguid"
)

// Graph owns the scene root and the guid index. Not safe for concurrent
// use; the viewer loop is the only caller.
type Graph struct {
	root  *Node
	index map[string]*Node
	log   *zap.Logger
}

func NewGraph(log *zap.Logger) *Graph {
	if log == nil {
		log = zap.NewNop()
	}
	return &Graph{
		root:  NewNode("Model"),
		index: make(map[string]*Node, 256),
		log:   log,
	}
}

func (g *Graph) Root() *Node { return g.root }

// Len is the number of indexed product nodes.
func (g *Graph) Len() int { return len(g.index) }

// Attach appends child under parent and indexes child's subtree.
func (g *Graph) Attach(parent, child *Node) error {
	if child.parent != nil {
		return fmt.Errorf("scene: node %q already has parent %q", child.Name, child.parent.Name)
	}
	for p := parent; p != nil; p = p.parent {
		if p == child {
			return fmt.Errorf("scene: attaching %q under itself", child.Name)
		}
	}
	child.parent = parent
	parent.children = append(parent.children, child)
	if parent.Attached(g.root) {
		g.indexTree(child)
	}
	return nil
}

// FindSubgraph returns the node rooting guid's geometry. Nodes built
// without a GUID are found by the guid prefix of their name; a hit is
// indexed so the walk happens once.
func (g *Graph) FindSubgraph(guid string) (*Node, bool) {
	if n, ok := g.index[guid]; ok {
		return n, true
	}
	if len(guid) != ifcguid.Len {
		return nil, false
	}
	var found *Node
	g.root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if p, ok := ifcguid.Prefix(n.Name); ok && p == guid {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	g.log.Debug("subgraph resolved by name", zap.String("guid", guid), zap.String("node", found.Name))
	g.index[guid] = found
	return found, true
}

// Material returns the decoration currently set on n, nil if none.
func (g *Graph) Material(n *Node) *Material { return n.material }

// SetMaterial replaces n's decoration. nil removes the override.
func (g *Graph) SetMaterial(n *Node, m *Material) { n.material = m }

// DetachChildren removes every child of n and returns them in their
// original order. Detached subtrees keep their own structure and are
// dropped from the index.
func (g *Graph) DetachChildren(n *Node) []*Node {
	kids := n.children
	n.children = nil
	for _, c := range kids {
		c.parent = nil
	}
	g.prune()
	return kids
}

// AttachChildren appends kids to n in order, as returned by DetachChildren.
func (g *Graph) AttachChildren(n *Node, kids []*Node) error {
	for _, c := range kids {
		if err := g.Attach(n, c); err != nil {
			return err
		}
	}
	return nil
}

// SetCurveRepresentation shows or hides every curve representation switch
// and returns the switches it changed.
func (g *Graph) SetCurveRepresentation(on bool) []*Node {
	var changed []*Node
	g.root.Walk(func(node *Node) bool {
		if node.Name == CurveRepresentation && node.visible != on {
			node.visible = on
			changed = append(changed, node)
		}
		return true
	})
	return changed
}

// SetVisible sets the visibility of each node in nodes.
func (g *Graph) SetVisible(nodes []*Node, on bool) {
	for _, n := range nodes {
		n.visible = on
	}
}

// Reset drops the whole scene.
func (g *Graph) Reset() {
	g.root = NewNode("Model")
	clear(g.index)
}

func (g *Graph) indexTree(n *Node) {
	n.Walk(func(c *Node) bool {
		if c.GUID != "" {
			if _, dup := g.index[c.GUID]; !dup {
				g.index[c.GUID] = c
			}
		}
		return true
	})
}

// prune drops index entries whose node is no longer reachable from root.
func (g *Graph) prune() {
	for guid, node := range g.index {
		if !node.Attached(g.root) {
			delete(g.index, guid)
		}
	}
}

func productName(guid string, tag int, class string) string {
	if tag == 0 {
		return guid + "=" + class
	}
	return fmt.Sprintf("%s#%d=%s", guid, tag, class)
}
