package system

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/core/event"
	coresys "github.com/ifcquery/ifcview/internal/core/system"
	"github.com/ifcquery/ifcview/internal/persist"
	"github.com/ifcquery/ifcview/internal/viewer"
)

// maxBuffered bounds the entries held while the journal is unreachable.
const maxBuffered = 10000

// JournalSystem records command history notifications and writes them to
// the journal in batches every interval ticks. Phase 5 (Persist).
//
// The model an entry is filed under follows the model events in bus order;
// by dispatch time the viewer may already hold a later model.
type JournalSystem struct {
	journal   persist.Journal
	viewer    *viewer.Viewer
	session   uuid.UUID
	seq       int64
	buf       []persist.Entry
	log       *zap.Logger
	tickCount int
	interval  int // flush every N ticks

	modelKey    string
	fingerprint string
}

func NewJournalSystem(j persist.Journal, v *viewer.Viewer, session uuid.UUID, intervalTicks int, log *zap.Logger) *JournalSystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	s := &JournalSystem{
		journal:  j,
		viewer:   v,
		session:  session,
		log:      log,
		interval: intervalTicks,
	}
	if cur := v.Model(); cur != nil {
		s.modelKey, s.fingerprint = cur.Key, cur.Fingerprint
	}
	bus := v.Bus()
	event.Subscribe(bus, func(e event.CommandFinished) {
		detail := ""
		if e.Stored {
			detail = "stored"
		}
		s.record(persist.KindFinished, e.Command, e.Undoable, e.Redoable, detail)
	})
	event.Subscribe(bus, func(e event.CommandCancelled) {
		detail := ""
		if e.Reason != nil {
			detail = e.Reason.Error()
		}
		s.record(persist.KindCancelled, e.Command, s.undoable(), s.redoable(), detail)
	})
	event.Subscribe(bus, func(e event.CommandUndone) {
		s.record(persist.KindUndone, e.Command, e.Undoable, e.Redoable, "")
	})
	event.Subscribe(bus, func(e event.CommandRedone) {
		s.record(persist.KindRedone, e.Command, e.Undoable, e.Redoable, "")
	})
	event.Subscribe(bus, func(event.HistoryCleared) {
		s.record(persist.KindCleared, "", 0, 0, "")
	})
	event.Subscribe(bus, func(event.ModelCleared) {
		s.record(persist.KindUnloaded, "", 0, 0, "")
		s.modelKey, s.fingerprint = "", ""
	})
	event.Subscribe(bus, func(e event.ModelLoadingDone) {
		if e.Err != nil {
			s.recordModel(e.Source, "", "load failed: "+e.Err.Error())
			return
		}
		s.modelKey, s.fingerprint = e.Source, e.Fingerprint
		s.recordModel(e.Source, e.Fingerprint, fmt.Sprintf("entities=%d elapsed=%s", e.Entities, e.Elapsed))
	})
	return s
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush writes every buffered entry. On failure the entries stay buffered
// for the next attempt. Also called on shutdown.
func (s *JournalSystem) Flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.journal.Write(ctx, s.buf); err != nil {
		s.log.Warn("journal write failed", zap.Int("pending", len(s.buf)), zap.Error(err))
		return err
	}
	s.log.Debug("journal flushed", zap.Int("entries", len(s.buf)))
	s.buf = s.buf[:0]
	return nil
}

// Pending returns the number of entries not yet written.
func (s *JournalSystem) Pending() int { return len(s.buf) }

func (s *JournalSystem) record(kind, cmd string, undoable, redoable int, detail string) {
	s.append(persist.Entry{
		Kind:        kind,
		Command:     cmd,
		ModelKey:    s.modelKey,
		Fingerprint: s.fingerprint,
		Undoable:    undoable,
		Redoable:    redoable,
		Detail:      detail,
	})
}

func (s *JournalSystem) recordModel(key, fingerprint, detail string) {
	s.append(persist.Entry{
		Kind:        persist.KindLoaded,
		ModelKey:    key,
		Fingerprint: fingerprint,
		Detail:      detail,
	})
}

func (s *JournalSystem) append(e persist.Entry) {
	s.seq++
	e.Session = s.session
	e.Seq = s.seq
	e.At = time.Now()
	if len(s.buf) >= maxBuffered {
		s.log.Warn("journal buffer full, dropping oldest entry")
		s.buf = s.buf[1:]
	}
	s.buf = append(s.buf, e)
}

func (s *JournalSystem) undoable() int { return s.viewer.Commands().CountUndoable() }
func (s *JournalSystem) redoable() int { return s.viewer.Commands().CountRedoable() }
