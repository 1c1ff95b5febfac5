package handler

import (
	"github.com/ifcquery/ifcview/internal/net"
	"github.com/ifcquery/ifcview/internal/net/packet"
)

// HandleQueryState processes C_QUERY_STATE.
func HandleQueryState(sess *net.Session, _ *packet.Reader, deps *Deps) {
	sendState(sess, deps)
}

// sendState sends S_STATE:
// [model key\0][model name\0][entities D][undoable D][redoable D]
// [current command\0][selected D][n H]([guid\0] * n)
// followed by S_SELECTION pages for the guids that did not fit:
// [offset D][n H]([guid\0] * n)
func sendState(sess *net.Session, deps *Deps) {
	st := deps.Viewer.State()

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_STATE)
	w.WriteS(st.ModelKey)
	w.WriteS(st.ModelName)
	w.WriteD(int32(st.Entities))
	w.WriteD(int32(st.Undoable))
	w.WriteD(int32(st.Redoable))
	w.WriteS(st.Current)
	w.WriteD(int32(len(st.Selected)))
	n := writeGUIDs(w, st.Selected)
	sess.Send(w.Bytes())

	for off := n; off < len(st.Selected); off += n {
		w = packet.NewWriterWithOpcode(packet.S_OPCODE_SELECTION)
		w.WriteD(int32(off))
		if n = writeGUIDs(w, st.Selected[off:]); n == 0 {
			return
		}
		sess.Send(w.Bytes())
	}
}

// writeGUIDs writes [n H] and as many guids as fit in one frame, returning n.
// Guids are ASCII, so each takes len+1 bytes on the wire.
func writeGUIDs(w *packet.Writer, guids []string) int {
	size := w.Len() + 2
	n := 0
	for _, g := range guids {
		if n == 0xFFFF || size+len(g)+1 > net.MaxPayload {
			break
		}
		size += len(g) + 1
		n++
	}
	w.WriteH(uint16(n))
	for _, g := range guids[:n] {
		w.WriteS(g)
	}
	return n
}

func sendError(sess *net.Session, msg string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ERROR)
	w.WriteS(msg)
	sess.Send(w.Bytes())
}
