package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ifcquery/ifcview/internal/core/ecs"
)

var (
	ErrDuplicateGUID = errors.New("model: duplicate guid")
	ErrDuplicateTag  = errors.New("model: duplicate tag")
	ErrUnknownParent = errors.New("model: unknown parent")
	ErrMissingGUID   = errors.New("model: entity without guid")
)

// Registry maps identities to entities for the currently loaded model.
// Accessed only from the viewer loop goroutine.
type Registry struct {
	world    *ecs.World
	entities *ecs.Store[Entity]
	byGUID   map[string]ecs.EntityID
	byTag    map[int]ecs.EntityID
	children map[ecs.EntityID][]ecs.EntityID
}

func NewRegistry(w *ecs.World) *Registry {
	r := &Registry{
		world:    w,
		entities: ecs.NewStore[Entity](256),
		byGUID:   make(map[string]ecs.EntityID, 256),
		byTag:    make(map[int]ecs.EntityID, 256),
		children: make(map[ecs.EntityID][]ecs.EntityID, 64),
	}
	w.Registry().Register(r.entities)
	return r
}

// Add stores a copy of e under a fresh entity id and returns it. The
// parent, if any, must already be registered.
func (r *Registry) Add(e Entity) (*Entity, error) {
	if e.GUID == "" {
		return nil, fmt.Errorf("%w: tag #%d", ErrMissingGUID, e.Tag)
	}
	if _, dup := r.byGUID[e.GUID]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateGUID, e.GUID)
	}
	if e.Tag != 0 {
		if _, dup := r.byTag[e.Tag]; dup {
			return nil, fmt.Errorf("%w: #%d", ErrDuplicateTag, e.Tag)
		}
	}
	if !e.Parent.IsZero() {
		if _, ok := r.Get(e.Parent); !ok {
			return nil, fmt.Errorf("%w: %s (child %s)", ErrUnknownParent, e.Parent, e.GUID)
		}
	}
	if e.Kind == KindUnknown {
		e.Kind = ParseKind(e.Class)
	}

	id := r.world.CreateEntity()
	e.ID = id
	stored := e
	r.entities.Set(id, &stored)
	r.byGUID[e.GUID] = id
	if e.Tag != 0 {
		r.byTag[e.Tag] = id
	}
	if !e.Parent.IsZero() {
		r.children[e.Parent] = append(r.children[e.Parent], id)
	}
	return &stored, nil
}

// Get returns the entity for id. Ids from a cleared model do not resolve.
func (r *Registry) Get(id ecs.EntityID) (*Entity, bool) {
	if !r.world.Alive(id) {
		return nil, false
	}
	e, ok := r.entities.Get(id)
	if !ok || r.byGUID[e.GUID] != id {
		return nil, false
	}
	return e, true
}

func (r *Registry) ByGUID(guid string) (*Entity, bool) {
	id, ok := r.byGUID[guid]
	if !ok {
		return nil, false
	}
	return r.Get(id)
}

func (r *Registry) ByTag(tag int) (*Entity, bool) {
	id, ok := r.byTag[tag]
	if !ok {
		return nil, false
	}
	return r.Get(id)
}

// Identity is the key the scene and the selection use for e.
func (r *Registry) Identity(e *Entity) string {
	return e.GUID
}

// Children returns the direct children of id in insertion order.
func (r *Registry) Children(id ecs.EntityID) []*Entity {
	ids := r.children[id]
	out := make([]*Entity, 0, len(ids))
	for _, c := range ids {
		if e, ok := r.Get(c); ok {
			out = append(out, e)
		}
	}
	return out
}

// Roots returns entities without a parent, ordered by tag.
func (r *Registry) Roots() []*Entity {
	var out []*Entity
	r.Each(func(e *Entity) {
		if e.Parent.IsZero() {
			out = append(out, e)
		}
	})
	return out
}

func (r *Registry) Len() int { return len(r.byGUID) }

// Each visits entities ordered by tag, then guid.
func (r *Registry) Each(fn func(*Entity)) {
	list := make([]*Entity, 0, len(r.byGUID))
	for _, id := range r.byGUID {
		if e, ok := r.Get(id); ok {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Tag != list[j].Tag {
			return list[i].Tag < list[j].Tag
		}
		return list[i].GUID < list[j].GUID
	})
	for _, e := range list {
		fn(e)
	}
}

// Clear forgets the loaded model. Lookups stop resolving immediately; the
// component data is released when the world's destroy queue is flushed.
func (r *Registry) Clear() int {
	n := 0
	for _, id := range r.byGUID {
		r.world.MarkForDestruction(id)
		n++
	}
	clear(r.byGUID)
	clear(r.byTag)
	clear(r.children)
	return n
}
