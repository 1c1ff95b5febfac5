package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventsAreDeliveredNextTickInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(e EntitySelected) { got = append(got, "sel:"+e.GUID) })
	Subscribe(b, func(e EntityUnselected) { got = append(got, "unsel:"+e.GUID) })

	Emit(b, EntitySelected{GUID: "a"})
	Emit(b, EntityUnselected{GUID: "a"})
	Emit(b, EntitySelected{GUID: "b"})

	assert.Equal(t, 0, b.DispatchAll(), "nothing is readable before the swap")
	assert.Empty(t, got)

	b.SwapBuffers()
	assert.Equal(t, 3, b.DispatchAll())
	assert.Equal(t, []string{"sel:a", "unsel:a", "sel:b"}, got)

	b.SwapBuffers()
	assert.Equal(t, 0, b.DispatchAll())
}

func TestEmitDuringDispatchIsDeferred(t *testing.T) {
	b := NewBus()
	cleared := 0
	Subscribe(b, func(ModelLoadingStarted) { Emit(b, ModelCleared{}) })
	Subscribe(b, func(ModelCleared) { cleared++ })

	Emit(b, ModelLoadingStarted{Source: "x.yaml"})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 0, cleared)
	assert.Equal(t, 1, b.Pending())

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 1, cleared)
}

func TestEmitOnNilBusIsDropped(t *testing.T) {
	assert.NotPanics(t, func() { Emit[ModelCleared](nil, ModelCleared{}) })
}
