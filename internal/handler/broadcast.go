package handler

import (
	"github.com/ifcquery/ifcview/internal/core/event"
	"github.com/ifcquery/ifcview/internal/net"
	"github.com/ifcquery/ifcview/internal/net/packet"
)

// SubscribeBroadcasts forwards viewer notifications to every authenticated
// session. Packets go out when the bus dispatches, one tick after the
// change that caused them.
func SubscribeBroadcasts(bus *event.Bus, sessions *net.SessionStore) {
	event.Subscribe(bus, func(e event.EntitySelected) {
		sessions.Broadcast(guidPacket(packet.S_OPCODE_SELECTED, e.GUID))
	})
	event.Subscribe(bus, func(e event.EntityUnselected) {
		sessions.Broadcast(guidPacket(packet.S_OPCODE_UNSELECTED, e.GUID))
	})
	event.Subscribe(bus, func(event.ModelCleared) {
		sessions.Broadcast(packet.NewWriterWithOpcode(packet.S_OPCODE_MODEL_CLEARED).Bytes())
	})
	event.Subscribe(bus, func(e event.ModelLoadingStarted) {
		sessions.Broadcast(loadingPacket(packet.LoadingStarted, e.Source, 0, ""))
	})
	event.Subscribe(bus, func(e event.ModelLoadingDone) {
		if e.Err != nil {
			sessions.Broadcast(loadingPacket(packet.LoadingFailed, e.Source, 0, e.Err.Error()))
			return
		}
		sessions.Broadcast(loadingPacket(packet.LoadingDone, e.Source, e.Entities, ""))
	})
	event.Subscribe(bus, func(e event.CommandFinished) {
		sessions.Broadcast(historyPacket(e.Command, e.Undoable, e.Redoable))
	})
	event.Subscribe(bus, func(e event.CommandUndone) {
		sessions.Broadcast(historyPacket(e.Command, e.Undoable, e.Redoable))
	})
	event.Subscribe(bus, func(e event.CommandRedone) {
		sessions.Broadcast(historyPacket(e.Command, e.Undoable, e.Redoable))
	})
	event.Subscribe(bus, func(event.HistoryCleared) {
		sessions.Broadcast(historyPacket("", 0, 0))
	})
}

func guidPacket(opcode byte, guid string) []byte {
	w := packet.NewWriterWithOpcode(opcode)
	w.WriteS(guid)
	return w.Bytes()
}

// loadingPacket builds S_MODEL_LOADING: [stage C][source\0][entities D][error\0]
func loadingPacket(stage byte, source string, entities int, msg string) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_MODEL_LOADING)
	w.WriteC(stage)
	w.WriteS(source)
	w.WriteD(int32(entities))
	w.WriteS(msg)
	return w.Bytes()
}

// historyPacket builds S_HISTORY: [undoable D][redoable D][command\0]
func historyPacket(cmd string, undoable, redoable int) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_HISTORY)
	w.WriteD(int32(undoable))
	w.WriteD(int32(redoable))
	w.WriteS(cmd)
	return w.Bytes()
}
