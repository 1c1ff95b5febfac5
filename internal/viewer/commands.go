package viewer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/command"
	"github.com/ifcquery/ifcview/internal/scripting"
)

// Execute runs cmd through the command manager.
func (v *Viewer) Execute(cmd command.Command) error {
	return v.cmds.Run(cmd)
}

func (v *Viewer) Undo() (bool, error) { return v.cmds.Undo() }
func (v *Viewer) Redo() (bool, error) { return v.cmds.Redo() }

// RemoveSelected removes the geometry of every selected product.
func (v *Viewer) RemoveSelected() error {
	return v.Execute(command.NewRemoveSelectedObjects(v.sel, v.graph))
}

// ToggleCurveRepresentation shows or hides curve geometry and returns how
// many switches changed.
func (v *Viewer) ToggleCurveRepresentation(on bool) (int, error) {
	cmd := command.NewSetCurveRepresentation(v.graph, on)
	if err := v.Execute(cmd); err != nil {
		return 0, err
	}
	return cmd.Changed(), nil
}

// Cancel abandons the current command, or clears the selection when no
// command is running.
func (v *Viewer) Cancel() {
	if v.cmds.CancelCurrent(nil) {
		return
	}
	v.sel.Clear()
}

// HandleKey maps a key press to an action and performs it.
func (v *Viewer) HandleKey(ev scripting.KeyEvent) (scripting.Action, error) {
	action := v.keys.KeyAction(ev)
	var err error
	switch action {
	case scripting.ActionNone:
	case scripting.ActionRemoveSelected:
		err = v.RemoveSelected()
	case scripting.ActionUndo:
		_, err = v.Undo()
	case scripting.ActionRedo:
		_, err = v.Redo()
	case scripting.ActionClearSelection:
		v.ClearSelection()
	case scripting.ActionCancel:
		v.Cancel()
	case scripting.ActionShowCurves:
		_, err = v.ToggleCurveRepresentation(true)
	case scripting.ActionHideCurves:
		_, err = v.ToggleCurveRepresentation(false)
	default:
		err = fmt.Errorf("unhandled action %q", action)
	}
	if action != scripting.ActionNone {
		v.log.Debug("key", zap.String("key", ev.Key), zap.String("action", string(action)), zap.Error(err))
	}
	return action, err
}
