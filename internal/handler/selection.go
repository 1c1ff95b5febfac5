package handler

import (
	"github.com/ifcquery/ifcview/internal/net"
	"github.com/ifcquery/ifcview/internal/net/packet"
)

// HandleSelect processes C_SELECT: [guid\0].
func HandleSelect(sess *net.Session, r *packet.Reader, deps *Deps) {
	guid := r.ReadS()
	if r.Err() != nil {
		sendError(sess, "select: missing guid")
		return
	}
	if _, ok := deps.Viewer.Entity(guid); !ok {
		sendError(sess, "select: unknown entity "+guid)
		return
	}
	deps.Viewer.Select(guid)
}

// HandleDeselect processes C_DESELECT: [guid\0].
func HandleDeselect(sess *net.Session, r *packet.Reader, deps *Deps) {
	deps.Viewer.Deselect(r.ReadS())
}

// HandlePick processes C_PICK: [guid\0][additive C]. An empty guid is a
// click on empty space.
func HandlePick(sess *net.Session, r *packet.Reader, deps *Deps) {
	guid := r.ReadS()
	additive := r.ReadBool()
	deps.Viewer.Pick(guid, additive)
}

// HandleClearSelection processes C_CLEAR_SELECTION.
func HandleClearSelection(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Viewer.ClearSelection()
}
