package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/config"
)

// Journal entry kinds.
const (
	KindFinished  = "finished"
	KindCancelled = "cancelled"
	KindUndone    = "undone"
	KindRedone    = "redone"
	KindCleared   = "history_cleared"
	KindLoaded    = "model_loaded"
	KindUnloaded  = "model_cleared"
)

// Session identifies one run of the viewer daemon.
type Session struct {
	ID         uuid.UUID
	ViewerName string
	Host       string
	StartedAt  time.Time
}

// Entry is one row of the command journal.
type Entry struct {
	Session     uuid.UUID
	Seq         int64
	At          time.Time
	Kind        string
	Command     string
	ModelKey    string
	Fingerprint string
	Undoable    int
	Redoable    int
	Detail      string
}

// Journal records command history for auditing. Writes are batched by the
// journal system and applied atomically.
type Journal interface {
	StartSession(ctx context.Context, s Session) error
	Write(ctx context.Context, entries []Entry) error
	Recent(ctx context.Context, session uuid.UUID, limit int) ([]Entry, error)
	Close() error
}

// Open builds the journal named by cfg.Driver and applies its migrations.
// Driver "none" (or empty) returns a nil Journal and no error.
func Open(ctx context.Context, cfg config.JournalConfig, log *zap.Logger) (Journal, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "postgres":
		db, err := NewDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, db.Pool); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("journal ready", zap.String("driver", cfg.Driver))
		return NewPGJournal(db), nil
	case "sqlite":
		j, err := OpenSQLite(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("journal ready", zap.String("driver", cfg.Driver), zap.String("dsn", cfg.DSN))
		return j, nil
	default:
		return nil, fmt.Errorf("unknown journal driver %q", cfg.Driver)
	}
}
