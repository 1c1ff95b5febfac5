package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolNeverHandsOutZero(t *testing.T) {
	p := NewEntityPool()
	id := p.Create()
	assert.False(t, id.IsZero())
	assert.True(t, p.Alive(id))
	assert.False(t, p.Alive(0))
}

func TestDestroyInvalidatesStaleID(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	p.Destroy(a)
	assert.False(t, p.Alive(a))

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index(), "index is recycled")
	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.True(t, p.Alive(b))
	assert.False(t, p.Alive(a))

	p.Destroy(a) // stale, ignored
	assert.True(t, p.Alive(b))
	assert.Equal(t, 1, p.Live())
}

func TestWorldFlushRemovesComponents(t *testing.T) {
	w := NewWorld()
	names := NewStore[string](4)
	w.Registry().Register(names)

	id := w.CreateEntity()
	n := "wall"
	names.Set(id, &n)

	w.MarkForDestruction(id)
	w.MarkForDestruction(id)
	require.Equal(t, 2, w.PendingDestruction())
	assert.True(t, names.Has(id), "destruction is deferred")

	assert.Equal(t, 1, w.FlushDestroyQueue())
	assert.False(t, names.Has(id))
	assert.False(t, w.Alive(id))
	assert.Equal(t, 0, w.PendingDestruction())
}
