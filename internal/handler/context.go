package handler

import (
	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/config"
	"github.com/ifcquery/ifcview/internal/net"
	"github.com/ifcquery/ifcview/internal/net/packet"
	"github.com/ifcquery/ifcview/internal/viewer"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Viewer   *viewer.Viewer
	Config   *config.Config
	Sessions *net.SessionStore
	Log      *zap.Logger
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	handshake := []packet.SessionState{packet.StateHandshake}
	authed := []packet.SessionState{packet.StateAuthenticated}
	both := []packet.SessionState{packet.StateHandshake, packet.StateAuthenticated}

	on := func(opcode byte, states []packet.SessionState, fn func(*net.Session, *packet.Reader, *Deps)) {
		reg.Register(opcode, states, func(sess any, r *packet.Reader) {
			fn(sess.(*net.Session), r, deps)
		})
	}

	// Handshake phase
	on(packet.C_OPCODE_HELLO, handshake, HandleHello)
	on(packet.C_OPCODE_AUTH, handshake, HandleAuth)
	on(packet.C_OPCODE_QUIT, both, HandleQuit)

	// Selection
	on(packet.C_OPCODE_SELECT, authed, HandleSelect)
	on(packet.C_OPCODE_DESELECT, authed, HandleDeselect)
	on(packet.C_OPCODE_PICK, authed, HandlePick)
	on(packet.C_OPCODE_CLEAR_SELECTION, authed, HandleClearSelection)

	// Commands
	on(packet.C_OPCODE_KEY, authed, HandleKey)
	on(packet.C_OPCODE_UNDO, authed, HandleUndo)
	on(packet.C_OPCODE_REDO, authed, HandleRedo)
	on(packet.C_OPCODE_REMOVE_SELECTED, authed, HandleRemoveSelected)
	on(packet.C_OPCODE_CURVES, authed, HandleCurves)

	// Model lifecycle
	on(packet.C_OPCODE_LOAD_MODEL, authed, HandleLoadModel)
	on(packet.C_OPCODE_CLEAR_MODEL, authed, HandleClearModel)
	on(packet.C_OPCODE_QUERY_STATE, authed, HandleQueryState)
}
