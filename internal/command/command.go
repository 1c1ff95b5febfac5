// Package command implements undoable viewer operations and the manager
// that sequences them into a linear undo/redo history.
package command

// Command is one unit of work. Execute, Undo and Redo return nil when they
// completed; a non-nil error leaves the command's effect unspecified for
// Execute and unchanged for Undo/Redo.
type Command interface {
	Name() string
	Execute() error
	Undo() error
	Redo() error

	// Policy consulted by Manager.FinishCurrent.
	StoreInUndo() bool
	IsUndoable() bool
	IsRepeatable() bool

	// Interrupted is the command that was current when this one started.
	Interrupted() Command
	SetInterrupted(Command)
}

// Base carries the interrupted-command slot and default policy. Embed it
// and provide Name and Execute; override the policy methods to opt in to
// undo or repeat.
type Base struct {
	interrupted Command
}

func (b *Base) Undo() error { return nil }
func (b *Base) Redo() error { return nil }

func (b *Base) StoreInUndo() bool  { return true }
func (b *Base) IsUndoable() bool   { return false }
func (b *Base) IsRepeatable() bool { return false }

func (b *Base) Interrupted() Command     { return b.interrupted }
func (b *Base) SetInterrupted(c Command) { b.interrupted = c }
