package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcquery/ifcview/internal/core/event"
)

// counter is an undoable command over a shared integer.
type counter struct {
	Base
	name      string
	val       *int
	undoable  bool
	repeat    bool
	failExec  bool
	failUndo  bool
	execCalls int
}

func (c *counter) Name() string       { return c.name }
func (c *counter) IsUndoable() bool   { return c.undoable }
func (c *counter) IsRepeatable() bool { return c.repeat }

func (c *counter) Execute() error {
	c.execCalls++
	if c.failExec {
		return errors.New("boom")
	}
	*c.val++
	return nil
}

func (c *counter) Undo() error {
	if c.failUndo {
		return errors.New("stuck")
	}
	*c.val--
	return nil
}

func (c *counter) Redo() error {
	*c.val++
	return nil
}

func undoable(name string, v *int) *counter {
	return &counter{name: name, val: v, undoable: true}
}

func names(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Name()
	}
	return out
}

func TestHistoryTruncation(t *testing.T) {
	all := []string{"c1", "c2", "c3", "c4"}
	for k := 0; k <= len(all); k++ {
		var v int
		m := NewManager(0, nil, nil)
		for _, n := range all {
			require.NoError(t, m.Run(undoable(n, &v)))
		}
		for i := 0; i < k; i++ {
			ok, err := m.Undo()
			require.NoError(t, err)
			require.True(t, ok)
		}
		require.NoError(t, m.Run(undoable("new", &v)))

		want := append(append([]string{}, all[:len(all)-k]...), "new")
		assert.Equal(t, want, names(m.History()), "k=%d", k)
		assert.Equal(t, len(all)-k, m.Pos(), "k=%d", k)
		assert.Equal(t, 0, m.CountRedoable())
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	var v int
	m := NewManager(0, nil, nil)
	require.NoError(t, m.Run(undoable("inc", &v)))
	after := v

	ok, err := m.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, after-1, v)
	assert.Equal(t, 0, m.CountUndoable())
	assert.Equal(t, 1, m.CountRedoable())

	ok, err = m.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, after, v)
	assert.Equal(t, 0, m.Pos())
}

func TestNonUndoableClearsHistory(t *testing.T) {
	var v int
	m := NewManager(0, nil, nil)
	require.NoError(t, m.Run(undoable("a", &v)))
	require.NoError(t, m.Run(undoable("b", &v)))
	require.NoError(t, m.Run(&counter{name: "load", val: &v}))

	assert.Empty(t, m.History())
	assert.Equal(t, -1, m.Pos())
}

func TestStoreInUndoFalseLeavesHistory(t *testing.T) {
	var v int
	m := NewManager(0, nil, nil)
	require.NoError(t, m.Run(undoable("a", &v)))
	require.NoError(t, m.Run(&transient{}))
	assert.Equal(t, []string{"a"}, names(m.History()))
}

type transient struct{ Base }

func (transient) Name() string      { return "transient" }
func (transient) Execute() error    { return nil }
func (transient) StoreInUndo() bool { return false }

func TestBoundaryNoops(t *testing.T) {
	var v int
	m := NewManager(0, nil, nil)

	ok, err := m.Undo()
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, -1, m.Pos())

	require.NoError(t, m.Run(undoable("a", &v)))
	ok, err = m.Redo()
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 0, m.Pos())

	assert.False(t, m.FinishCurrent())
	assert.False(t, m.CancelCurrent(nil))
}

func TestUndoFailureKeepsPos(t *testing.T) {
	var v int
	m := NewManager(0, nil, nil)
	c := undoable("a", &v)
	c.failUndo = true
	require.NoError(t, m.Run(c))

	ok, err := m.Undo()
	assert.False(t, ok)
	assert.Error(t, err)
	assert.Equal(t, 0, m.Pos())
	assert.Equal(t, 1, v)
}

func TestFailedExecuteIsNotStored(t *testing.T) {
	var v int
	m := NewManager(0, nil, nil)
	require.NoError(t, m.Run(undoable("a", &v)))

	bad := undoable("bad", &v)
	bad.failExec = true
	err := m.Run(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	assert.Equal(t, []string{"a"}, names(m.History()))
	assert.Nil(t, m.Current())
	assert.Same(t, bad, m.Previous())
}

func TestExecuteDoesNotInterpretFailure(t *testing.T) {
	var v int
	m := NewManager(0, nil, nil)
	bad := undoable("bad", &v)
	bad.failExec = true

	assert.Error(t, m.ExecuteCommand(bad))
	assert.Same(t, bad, m.Current())
	require.True(t, m.FinishCurrent())
	assert.Equal(t, []string{"bad"}, names(m.History()))
}

func TestInterruptedCommand(t *testing.T) {
	var v int
	m := NewManager(0, nil, nil)
	first := undoable("first", &v)
	second := undoable("second", &v)

	require.NoError(t, m.ExecuteCommand(first))
	require.NoError(t, m.ExecuteCommand(second))
	assert.Same(t, first, second.Interrupted())
	assert.Nil(t, first.Interrupted())
	assert.Same(t, second, m.Current())

	require.True(t, m.CancelCurrent(nil))
	assert.Nil(t, m.Current())
	assert.Same(t, second, m.Previous())
	assert.Empty(t, m.History())
}

func TestRepeatablePrevious(t *testing.T) {
	var v int
	m := NewManager(0, nil, nil)
	rep := undoable("rep", &v)
	rep.repeat = true
	require.NoError(t, m.Run(rep))
	assert.Same(t, rep, m.Previous())

	require.NoError(t, m.Run(undoable("once", &v)))
	assert.Nil(t, m.Previous())
}

func TestHistoryLimit(t *testing.T) {
	var v int
	m := NewManager(2, nil, nil)
	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, m.Run(undoable(n, &v)))
	}
	assert.Equal(t, []string{"b", "c"}, names(m.History()))
	assert.Equal(t, 1, m.Pos())
	assert.Equal(t, 2, m.CountUndoable())
}

func TestManagerEvents(t *testing.T) {
	var v int
	bus := event.NewBus()
	var got []any
	event.Subscribe(bus, func(e event.CommandFinished) { got = append(got, e) })
	event.Subscribe(bus, func(e event.CommandUndone) { got = append(got, e) })
	event.Subscribe(bus, func(e event.CommandCancelled) { got = append(got, e) })

	m := NewManager(0, bus, nil)
	require.NoError(t, m.Run(undoable("a", &v)))
	_, _ = m.Undo()
	bad := undoable("bad", &v)
	bad.failExec = true
	_ = m.Run(bad)

	bus.SwapBuffers()
	bus.DispatchAll()
	require.Len(t, got, 3)
	assert.Equal(t, event.CommandFinished{Command: "a", Stored: true, Undoable: 1, Redoable: 0}, got[0])
	assert.Equal(t, event.CommandUndone{Command: "a", Undoable: 0, Redoable: 1}, got[1])
	assert.Equal(t, "bad", got[2].(event.CommandCancelled).Command)
}

func TestBaseDefaults(t *testing.T) {
	var b Base
	assert.True(t, b.StoreInUndo())
	assert.False(t, b.IsUndoable())
	assert.False(t, b.IsRepeatable())
	assert.NoError(t, b.Undo())
	assert.NoError(t, b.Redo())
}
