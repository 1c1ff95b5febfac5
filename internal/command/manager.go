package command

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/core/event"
)

// Manager owns the current command slot and the undo history. pos indexes
// the most recently applied history entry; -1 means nothing to undo.
// All methods run on the viewer loop goroutine.
type Manager struct {
	current  Command
	previous Command
	history  []Command
	pos      int
	limit    int

	bus *event.Bus
	log *zap.Logger
}

// NewManager returns an empty manager. limit caps the history length,
// evicting the oldest entries; 0 means unbounded.
func NewManager(limit int, bus *event.Bus, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if limit < 0 {
		limit = 0
	}
	return &Manager{
		pos:   -1,
		limit: limit,
		bus:   bus,
		log:   log,
	}
}

// ExecuteCommand makes cmd current and runs it. A command already current
// becomes cmd's interrupted command. The caller decides whether to finish
// or cancel afterwards; the returned error is Execute's, uninterpreted.
func (m *Manager) ExecuteCommand(cmd Command) error {
	if m.current != nil {
		cmd.SetInterrupted(m.current)
	}
	m.current = cmd
	return cmd.Execute()
}

// Run executes cmd and finishes it on success. A failed command is
// cancelled instead, so it never enters the history.
func (m *Manager) Run(cmd Command) error {
	if err := m.ExecuteCommand(cmd); err != nil {
		m.CancelCurrent(err)
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	m.FinishCurrent()
	return nil
}

// FinishCurrent files the current command according to its policy and
// empties the slot. It returns false when no command is current.
func (m *Manager) FinishCurrent() bool {
	cur := m.current
	if cur == nil {
		return false
	}
	stored := false
	if cur.StoreInUndo() {
		if cur.IsUndoable() {
			m.truncate(m.pos + 1)
			m.history = append(m.history, cur)
			m.pos = len(m.history) - 1
			m.evict()
			stored = true
		} else {
			m.ClearHistory()
		}
		if cur.IsRepeatable() {
			m.previous = cur
		} else {
			m.previous = nil
		}
	}
	m.current = nil
	m.log.Debug("command finished",
		zap.String("cmd", cur.Name()),
		zap.Bool("stored", stored),
		zap.Int("pos", m.pos),
	)
	event.Emit(m.bus, event.CommandFinished{
		Command:  cur.Name(),
		Stored:   stored,
		Undoable: m.CountUndoable(),
		Redoable: m.CountRedoable(),
	})
	return true
}

// CancelCurrent abandons the current command. It becomes Previous; the
// history is not touched. reason may be nil.
func (m *Manager) CancelCurrent(reason error) bool {
	cur := m.current
	if cur == nil {
		return false
	}
	m.previous = cur
	m.current = nil
	if reason != nil {
		m.log.Warn("command cancelled", zap.String("cmd", cur.Name()), zap.Error(reason))
	} else {
		m.log.Debug("command cancelled", zap.String("cmd", cur.Name()))
	}
	event.Emit(m.bus, event.CommandCancelled{Command: cur.Name(), Reason: reason})
	return true
}

// Undo reverses the command at pos. ok is false when there was nothing to
// undo or the command failed; only the latter returns an error.
func (m *Manager) Undo() (ok bool, err error) {
	if m.pos < 0 || m.pos > len(m.history)-1 {
		return false, nil
	}
	cmd := m.history[m.pos]
	if err := cmd.Undo(); err != nil {
		m.log.Warn("undo failed", zap.String("cmd", cmd.Name()), zap.Error(err))
		return false, fmt.Errorf("undo %s: %w", cmd.Name(), err)
	}
	m.pos--
	event.Emit(m.bus, event.CommandUndone{
		Command:  cmd.Name(),
		Undoable: m.CountUndoable(),
		Redoable: m.CountRedoable(),
	})
	return true, nil
}

// Redo reapplies the command after pos.
func (m *Manager) Redo() (ok bool, err error) {
	if m.pos < -1 || m.pos+1 > len(m.history)-1 {
		return false, nil
	}
	cmd := m.history[m.pos+1]
	if err := cmd.Redo(); err != nil {
		m.log.Warn("redo failed", zap.String("cmd", cmd.Name()), zap.Error(err))
		return false, fmt.Errorf("redo %s: %w", cmd.Name(), err)
	}
	m.pos++
	event.Emit(m.bus, event.CommandRedone{
		Command:  cmd.Name(),
		Undoable: m.CountUndoable(),
		Redoable: m.CountRedoable(),
	})
	return true, nil
}

func (m *Manager) ClearHistory() {
	m.truncate(0)
	m.pos = -1
	event.Emit(m.bus, event.HistoryCleared{})
}

func (m *Manager) CountUndoable() int { return m.pos + 1 }
func (m *Manager) CountRedoable() int { return len(m.history) - 1 - m.pos }

func (m *Manager) Current() Command  { return m.current }
func (m *Manager) Previous() Command { return m.previous }
func (m *Manager) Pos() int          { return m.pos }

// History returns a copy of the history, oldest first.
func (m *Manager) History() []Command {
	out := make([]Command, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Manager) truncate(n int) {
	for i := n; i < len(m.history); i++ {
		m.history[i] = nil
	}
	m.history = m.history[:n]
}

func (m *Manager) evict() {
	if m.limit == 0 || len(m.history) <= m.limit {
		return
	}
	drop := len(m.history) - m.limit
	for i := 0; i < drop; i++ {
		m.log.Debug("history evicted", zap.String("cmd", m.history[i].Name()))
	}
	n := copy(m.history, m.history[drop:])
	clear(m.history[n:])
	m.history = m.history[:n]
	m.pos -= drop
}
