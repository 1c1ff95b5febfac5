package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Action is what a key press asks the viewer to do.
type Action string

const (
	ActionNone           Action = ""
	ActionRemoveSelected Action = "remove_selected"
	ActionUndo           Action = "undo"
	ActionRedo           Action = "redo"
	ActionClearSelection Action = "clear_selection"
	ActionCancel         Action = "cancel"
	ActionShowCurves     Action = "show_curves"
	ActionHideCurves     Action = "hide_curves"
)

var knownActions = map[Action]bool{
	ActionRemoveSelected: true,
	ActionUndo:           true,
	ActionRedo:           true,
	ActionClearSelection: true,
	ActionCancel:         true,
	ActionShowCurves:     true,
	ActionHideCurves:     true,
}

// KeyEvent is a key press as reported by the front-end. Key uses Qt style
// names without the prefix: "Delete", "Escape", "Z".
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool
}

// Engine wraps a single gopher-lua VM holding the viewer's key bindings and
// appearance hooks. Single-goroutine access only (viewer loop).
type Engine struct {
	vm  *lua.LState
	dir string
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from dir. An empty
// dir gives an engine with only the built-in bindings.
func NewEngine(dir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{dir: dir, log: log}
	vm, err := e.newVM()
	if err != nil {
		return nil, err
	}
	e.vm = vm
	return e, nil
}

func (e *Engine) newVM() (*lua.LState, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	if e.dir == "" {
		return vm, nil
	}
	for _, sub := range []string{"core", "keys", "style"} {
		if err := loadDir(vm, filepath.Join(e.dir, sub), e.log); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return vm, nil
}

// Reload rebuilds the VM from disk. On error the old VM stays in place.
func (e *Engine) Reload() error {
	vm, err := e.newVM()
	if err != nil {
		return err
	}
	e.vm.Close()
	e.vm = vm
	e.log.Info("lua scripts reloaded", zap.String("dir", e.dir))
	return nil
}

// Dir is the script root.
func (e *Engine) Dir() string { return e.dir }

func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory.
func loadDir(vm *lua.LState, dir string, log *zap.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk in the engine's VM. Used by tests and the console.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// KeyAction maps a key press through the Lua key_action function. When the
// function is missing, fails, or answers with an unknown action, the
// built-in bindings apply.
func (e *Engine) KeyAction(ev KeyEvent) Action {
	fn := e.vm.GetGlobal("key_action")
	if fn == lua.LNil {
		return DefaultKeyAction(ev)
	}

	t := e.vm.NewTable()
	t.RawSetString("key", lua.LString(ev.Key))
	t.RawSetString("ctrl", lua.LBool(ev.Ctrl))
	t.RawSetString("shift", lua.LBool(ev.Shift))
	t.RawSetString("alt", lua.LBool(ev.Alt))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua key_action error", zap.Error(err))
		return DefaultKeyAction(ev)
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	switch v := result.(type) {
	case lua.LString:
		a := Action(v)
		if a == ActionNone || knownActions[a] {
			return a
		}
		e.log.Warn("lua key_action returned unknown action", zap.String("action", string(v)))
	case *lua.LNilType:
		return DefaultKeyAction(ev)
	default:
		e.log.Warn("lua key_action returned non-string", zap.String("type", result.Type().String()))
	}
	return DefaultKeyAction(ev)
}

// DefaultKeyAction is the built-in key map.
func DefaultKeyAction(ev KeyEvent) Action {
	key := strings.ToLower(ev.Key)
	switch {
	case key == "delete":
		return ActionRemoveSelected
	case key == "escape":
		return ActionCancel
	case ev.Ctrl && key == "z" && ev.Shift:
		return ActionRedo
	case ev.Ctrl && key == "z":
		return ActionUndo
	case ev.Ctrl && key == "y":
		return ActionRedo
	}
	return ActionNone
}

// HighlightColor asks the Lua highlight_color function for the selection
// colour. ok is false when no script provides one.
func (e *Engine) HighlightColor() (rgba [4]float32, ok bool) {
	fn := e.vm.GetGlobal("highlight_color")
	if fn == lua.LNil {
		return rgba, false
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		e.log.Error("lua highlight_color error", zap.Error(err))
		return rgba, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	tbl, isTable := result.(*lua.LTable)
	if !isTable {
		return rgba, false
	}
	rgba[3] = 1
	for i, field := range []string{"r", "g", "b", "a"} {
		switch v := tbl.RawGetString(field).(type) {
		case lua.LNumber:
			rgba[i] = float32(v)
		default:
			if i < 3 {
				return rgba, false
			}
		}
	}
	return rgba, true
}
