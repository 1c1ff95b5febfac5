package handler

import (
	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/net"
	"github.com/ifcquery/ifcview/internal/net/packet"
	"github.com/ifcquery/ifcview/internal/scripting"
)

// Modifier bits of C_KEY.
const (
	modCtrl  = 1 << 0
	modShift = 1 << 1
	modAlt   = 1 << 2
)

// HandleKey processes C_KEY: [key\0][modifiers C].
func HandleKey(sess *net.Session, r *packet.Reader, deps *Deps) {
	key := r.ReadS()
	mods := r.ReadC()
	ev := scripting.KeyEvent{
		Key:   key,
		Ctrl:  mods&modCtrl != 0,
		Shift: mods&modShift != 0,
		Alt:   mods&modAlt != 0,
	}
	action, err := deps.Viewer.HandleKey(ev)
	if err != nil {
		deps.Log.Warn("key action failed",
			zap.String("key", key),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		sendError(sess, err.Error())
	}
}

// HandleUndo processes C_UNDO.
func HandleUndo(sess *net.Session, _ *packet.Reader, deps *Deps) {
	ok, err := deps.Viewer.Undo()
	switch {
	case err != nil:
		deps.Log.Warn("undo failed", zap.Error(err))
		sendError(sess, "undo: "+err.Error())
	case !ok:
		sendError(sess, "nothing to undo")
	}
}

// HandleRedo processes C_REDO.
func HandleRedo(sess *net.Session, _ *packet.Reader, deps *Deps) {
	ok, err := deps.Viewer.Redo()
	switch {
	case err != nil:
		deps.Log.Warn("redo failed", zap.Error(err))
		sendError(sess, "redo: "+err.Error())
	case !ok:
		sendError(sess, "nothing to redo")
	}
}

// HandleRemoveSelected processes C_REMOVE_SELECTED.
func HandleRemoveSelected(sess *net.Session, _ *packet.Reader, deps *Deps) {
	if err := deps.Viewer.RemoveSelected(); err != nil {
		sendError(sess, err.Error())
	}
}

// HandleCurves processes C_CURVES: [on C].
func HandleCurves(sess *net.Session, r *packet.Reader, deps *Deps) {
	on := r.ReadBool()
	if _, err := deps.Viewer.ToggleCurveRepresentation(on); err != nil {
		sendError(sess, err.Error())
	}
}
