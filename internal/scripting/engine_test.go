package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyAction(t *testing.T) {
	cases := []struct {
		ev   KeyEvent
		want Action
	}{
		{KeyEvent{Key: "Delete"}, ActionRemoveSelected},
		{KeyEvent{Key: "Escape"}, ActionCancel},
		{KeyEvent{Key: "Z", Ctrl: true}, ActionUndo},
		{KeyEvent{Key: "Z", Ctrl: true, Shift: true}, ActionRedo},
		{KeyEvent{Key: "Y", Ctrl: true}, ActionRedo},
		{KeyEvent{Key: "Z"}, ActionNone},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DefaultKeyAction(c.ev), "%+v", c.ev)
	}
}

func TestEngineWithoutScripts(t *testing.T) {
	e, err := NewEngine("", nil)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, ActionRemoveSelected, e.KeyAction(KeyEvent{Key: "Delete"}))
	_, ok := e.HighlightColor()
	assert.False(t, ok)
}

func TestRepositoryScripts(t *testing.T) {
	e, err := NewEngine(filepath.Join("..", "..", "scripts"), nil)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, ActionRemoveSelected, e.KeyAction(KeyEvent{Key: "BackSpace"}))
	assert.Equal(t, ActionHideCurves, e.KeyAction(KeyEvent{Key: "c"}))
	assert.Equal(t, ActionShowCurves, e.KeyAction(KeyEvent{Key: "C", Shift: true}))
	assert.Equal(t, ActionUndo, e.KeyAction(KeyEvent{Key: "z", Ctrl: true}))
	assert.Equal(t, ActionNone, e.KeyAction(KeyEvent{Key: "F5"}))

	rgba, ok := e.HighlightColor()
	require.True(t, ok)
	assert.InDelta(t, 0.98, rgba[0], 1e-6)
	assert.InDelta(t, 0.9, rgba[3], 1e-6)
}

func TestKeyActionFallsBack(t *testing.T) {
	e, err := NewEngine("", nil)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.DoString(`function key_action(ctx) error("broken") end`))
	assert.Equal(t, ActionUndo, e.KeyAction(KeyEvent{Key: "z", Ctrl: true}))

	require.NoError(t, e.DoString(`function key_action(ctx) return "explode" end`))
	assert.Equal(t, ActionRemoveSelected, e.KeyAction(KeyEvent{Key: "Delete"}))

	require.NoError(t, e.DoString(`function key_action(ctx) return "" end`))
	assert.Equal(t, ActionNone, e.KeyAction(KeyEvent{Key: "Delete"}))
}

func TestHighlightColorDefaultsAlpha(t *testing.T) {
	e, err := NewEngine("", nil)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.DoString(`function highlight_color() return { r = 1, g = 0, b = 0 } end`))
	rgba, ok := e.HighlightColor()
	require.True(t, ok)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, rgba)

	require.NoError(t, e.DoString(`function highlight_color() return 3 end`))
	_, ok = e.HighlightColor()
	assert.False(t, ok)
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	keys := filepath.Join(dir, "keys")
	require.NoError(t, os.MkdirAll(keys, 0o755))
	path := filepath.Join(keys, "k.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function key_action(ctx) return "undo" end`), 0o644))

	e, err := NewEngine(dir, nil)
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, ActionUndo, e.KeyAction(KeyEvent{Key: "q"}))

	require.NoError(t, os.WriteFile(path, []byte(`function key_action(ctx) return "redo" end`), 0o644))
	require.NoError(t, e.Reload())
	assert.Equal(t, ActionRedo, e.KeyAction(KeyEvent{Key: "q"}))

	require.NoError(t, os.WriteFile(path, []byte(`function key_action(`), 0o644))
	assert.Error(t, e.Reload())
	assert.Equal(t, ActionRedo, e.KeyAction(KeyEvent{Key: "q"}), "old VM kept on error")
}
