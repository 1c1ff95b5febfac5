// Package selection tracks which entities are selected and keeps their
// scene nodes highlighted. Every highlight is undone with the exact
// material pointer it replaced.
package selection

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/core/event"
	"github.com/ifcquery/ifcview/internal/model"
	"github.com/ifcquery/ifcview/internal/scene"
)

// Scene is the part of the scene graph selection needs.
type Scene interface {
	FindSubgraph(guid string) (*scene.Node, bool)
	Material(n *scene.Node) *scene.Material
	SetMaterial(n *scene.Node, m *scene.Material)
}

// Entry is one selected entity.
type Entry struct {
	Entity *model.Entity
	Node   *scene.Node // subgraph root
	nodes  []*scene.Node
	prev   []*scene.Material
}

// Decorated returns the nodes this entry highlighted. For a site these are
// its non-building children, otherwise the subgraph root alone.
func (e *Entry) Decorated() []*scene.Node {
	out := make([]*scene.Node, len(e.nodes))
	copy(out, e.nodes)
	return out
}

// Previous returns the material n carried before this entry highlighted it.
func (e *Entry) Previous(n *scene.Node) (*scene.Material, bool) {
	for i, d := range e.nodes {
		if d == n {
			return e.prev[i], true
		}
	}
	return nil, false
}

// decoration is the shared record for a node highlighted by one or more
// entries. orig is restored when the last of them lets go.
type decoration struct {
	orig *scene.Material
	refs int
}

// Machine is the selection state machine. Single goroutine only.
type Machine struct {
	scene     Scene
	highlight *scene.Material
	bus       *event.Bus
	log       *zap.Logger

	entries     map[string]*Entry
	order       []string
	decorations map[*scene.Node]*decoration
}

func New(sc Scene, highlight *scene.Material, bus *event.Bus, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	if highlight == nil {
		highlight = DefaultHighlight()
	}
	return &Machine{
		scene:       sc,
		highlight:   highlight,
		bus:         bus,
		log:         log,
		entries:     make(map[string]*Entry),
		decorations: make(map[*scene.Node]*decoration),
	}
}

// DefaultHighlight is the yellow selection material.
func DefaultHighlight() *scene.Material {
	return scene.NewMaterial("selected", [4]float32{0.98, 0.98, 0.10, 0.9})
}

func (m *Machine) Highlight() *scene.Material { return m.highlight }

// SetHighlight swaps the highlight material, repainting current selections.
func (m *Machine) SetHighlight(h *scene.Material) {
	if h == nil || h == m.highlight {
		return
	}
	m.highlight = h
	for n := range m.decorations {
		m.scene.SetMaterial(n, h)
	}
}

// Select highlights e. node may be nil, in which case the subgraph is
// looked up by e's guid. It reports whether a new entry was created;
// already selected entities and entities without geometry are left alone.
func (m *Machine) Select(e *model.Entity, node *scene.Node) bool {
	if e == nil {
		return false
	}
	if _, ok := m.entries[e.GUID]; ok {
		return false
	}
	if node == nil {
		n, ok := m.scene.FindSubgraph(e.GUID)
		if !ok {
			m.log.Debug("select: no subgraph", zap.String("guid", e.GUID), zap.Int("tag", e.Tag))
			return false
		}
		node = n
	}

	entry := &Entry{Entity: e, Node: node}
	if e.Kind.IsSiteLike() {
		for _, c := range node.Children() {
			if nodeKind(c).IsBuildingLike() {
				continue
			}
			m.decorate(entry, c)
		}
	} else {
		m.decorate(entry, node)
	}

	m.entries[e.GUID] = entry
	m.order = append(m.order, e.GUID)
	m.log.Debug("selected", zap.String("guid", e.GUID), zap.Int("nodes", len(entry.nodes)))
	event.Emit(m.bus, event.EntitySelected{EntityID: e.ID, GUID: e.GUID})
	return true
}

// Deselect restores e's decorations. Unknown entities are ignored.
func (m *Machine) Deselect(e *model.Entity) bool {
	if e == nil {
		return false
	}
	return m.DeselectGUID(e.GUID)
}

// DeselectGUID is Deselect by identity, for callers whose entity is gone.
func (m *Machine) DeselectGUID(guid string) bool {
	entry, ok := m.entries[guid]
	if !ok {
		return false
	}
	m.restore(entry)
	delete(m.entries, guid)
	for i, g := range m.order {
		if g == guid {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.log.Debug("unselected", zap.String("guid", guid))
	event.Emit(m.bus, event.EntityUnselected{EntityID: entry.Entity.ID, GUID: guid})
	return true
}

// Clear deselects everything, most recent first, and returns how many
// entries were dropped. Calling it on an empty selection does nothing.
func (m *Machine) Clear() int {
	n := len(m.order)
	for i := n - 1; i >= 0; i-- {
		guid := m.order[i]
		entry := m.entries[guid]
		m.restore(entry)
		delete(m.entries, guid)
		event.Emit(m.bus, event.EntityUnselected{EntityID: entry.Entity.ID, GUID: guid})
	}
	m.order = m.order[:0]
	if len(m.decorations) != 0 {
		panic(fmt.Sprintf("selection: %d decorations left after clear", len(m.decorations)))
	}
	if n > 0 {
		m.log.Debug("selection cleared", zap.Int("entries", n))
	}
	return n
}

func (m *Machine) IsSelected(guid string) bool {
	_, ok := m.entries[guid]
	return ok
}

func (m *Machine) Entry(guid string) (*Entry, bool) {
	e, ok := m.entries[guid]
	return e, ok
}

func (m *Machine) Len() int { return len(m.entries) }

// Snapshot returns the entries in selection order. The slice is a copy and
// stays valid while the selection changes.
func (m *Machine) Snapshot() []*Entry {
	out := make([]*Entry, 0, len(m.order))
	for _, g := range m.order {
		out = append(out, m.entries[g])
	}
	return out
}

// GUIDs returns the selected identities in selection order.
func (m *Machine) GUIDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Highlighted reports whether n currently carries a selection highlight.
func (m *Machine) Highlighted(n *scene.Node) bool {
	_, ok := m.decorations[n]
	return ok
}

func (m *Machine) decorate(entry *Entry, n *scene.Node) {
	d, ok := m.decorations[n]
	if !ok {
		d = &decoration{orig: m.scene.Material(n)}
		m.decorations[n] = d
		m.scene.SetMaterial(n, m.highlight)
	}
	d.refs++
	entry.nodes = append(entry.nodes, n)
	entry.prev = append(entry.prev, d.orig)
}

func (m *Machine) restore(entry *Entry) {
	for i, n := range entry.nodes {
		d, ok := m.decorations[n]
		if !ok || d.refs <= 0 {
			panic(fmt.Sprintf("selection: node %q of %s has no decoration record", n.Name, entry.Entity.GUID))
		}
		if d.orig != entry.prev[i] {
			panic(fmt.Sprintf("selection: node %q of %s restores a foreign material", n.Name, entry.Entity.GUID))
		}
		d.refs--
		if d.refs == 0 {
			m.scene.SetMaterial(n, d.orig)
			delete(m.decorations, n)
		}
	}
}

// nodeKind classifies a scene node by its IFC class, falling back to the
// "=IfcClass" suffix of its name.
func nodeKind(n *scene.Node) model.Kind {
	if n.Class != "" {
		return model.ParseKind(n.Class)
	}
	if i := strings.LastIndexByte(n.Name, '='); i >= 0 {
		return model.ParseKind(n.Name[i+1:])
	}
	return model.KindUnknown
}
