package command

import (
	"errors"
	"fmt"

	"github.com/ifcquery/ifcview/internal/model"
	"github.com/ifcquery/ifcview/internal/scene"
	"github.com/ifcquery/ifcview/internal/selection"
)

var ErrEmptySelection = errors.New("nothing selected")

// Selection is what removal needs from the selection state machine.
type Selection interface {
	Snapshot() []*selection.Entry
	Clear() int
}

// Detacher moves child lists in and out of the scene.
type Detacher interface {
	DetachChildren(n *scene.Node) []*scene.Node
	AttachChildren(n *scene.Node, kids []*scene.Node) error
}

// Removed is one entity whose geometry was taken out of the scene. The
// subgraph root stays in place as an empty placeholder.
type Removed struct {
	Entity   *model.Entity
	Node     *scene.Node
	Children []*scene.Node
}

// RemoveSelectedObjects empties the subgraph of every selected entity and
// clears the selection. The detached children are retained so the removal
// can be undone. Entities stay in the model registry.
type RemoveSelectedObjects struct {
	Base
	sel   Selection
	scene Detacher

	removed []*Removed
}

func NewRemoveSelectedObjects(sel Selection, sc Detacher) *RemoveSelectedObjects {
	return &RemoveSelectedObjects{sel: sel, scene: sc}
}

func (c *RemoveSelectedObjects) Name() string { return "RemoveSelectedObjects" }

func (c *RemoveSelectedObjects) IsUndoable() bool { return true }

func (c *RemoveSelectedObjects) Execute() error {
	entries := c.sel.Snapshot()
	if len(entries) == 0 {
		return ErrEmptySelection
	}
	c.removed = make([]*Removed, 0, len(entries))
	for _, e := range entries {
		c.removed = append(c.removed, &Removed{
			Entity:   e.Entity,
			Node:     e.Node,
			Children: c.scene.DetachChildren(e.Node),
		})
	}
	c.sel.Clear()
	return nil
}

// Undo re-attaches in reverse order so nested selections rebuild bottom-up
// the way they were taken apart.
func (c *RemoveSelectedObjects) Undo() error {
	for _, r := range c.removed {
		for _, kid := range r.Children {
			if kid.Parent() != nil {
				return fmt.Errorf("restore %s: node %q was re-parented", r.Entity.GUID, kid.Name)
			}
		}
	}
	for i := len(c.removed) - 1; i >= 0; i-- {
		r := c.removed[i]
		if err := c.scene.AttachChildren(r.Node, r.Children); err != nil {
			return fmt.Errorf("restore %s: %w", r.Entity.GUID, err)
		}
	}
	return nil
}

func (c *RemoveSelectedObjects) Redo() error {
	for _, r := range c.removed {
		r.Children = c.scene.DetachChildren(r.Node)
	}
	return nil
}

// Removed returns the removal records keyed by entity identity.
func (c *RemoveSelectedObjects) Removed() map[string]*Removed {
	out := make(map[string]*Removed, len(c.removed))
	for _, r := range c.removed {
		out[r.Entity.GUID] = r
	}
	return out
}
