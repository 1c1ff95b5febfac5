package event

import (
	"time"

	"github.com/ifcquery/ifcview/internal/core/ecs"
)

// Selection notifications, one entity per event.

type EntitySelected struct {
	EntityID ecs.EntityID
	GUID     string
}

type EntityUnselected struct {
	EntityID ecs.EntityID
	GUID     string
}

// Model lifecycle notifications.

type ModelCleared struct{}

type ModelLoadingStarted struct {
	Source string
}

type ModelLoadingDone struct {
	Source      string
	Fingerprint string
	Entities    int
	Elapsed     time.Duration
	Err         error
}

// Command history notifications. Undoable and Redoable are the history
// counts after the transition.

type CommandFinished struct {
	Command  string
	Stored   bool
	Undoable int
	Redoable int
}

type CommandCancelled struct {
	Command string
	Reason  error
}

type CommandUndone struct {
	Command  string
	Undoable int
	Redoable int
}

type CommandRedone struct {
	Command  string
	Undoable int
	Redoable int
}

type HistoryCleared struct{}
