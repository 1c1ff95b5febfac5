package persist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ifcquery/ifcview/internal/config"
)

// SQLiteJournal stores the journal in a local SQLite file. Timestamps are
// unix nanoseconds.
type SQLiteJournal struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, cfg config.JournalConfig) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite has one writer.
	db.SetMaxOpenConns(1)
	if err := RunSQLiteMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) StartSession(ctx context.Context, s Session) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO viewer_sessions (id, viewer_name, host, started_at) VALUES (?, ?, ?, ?)`,
		s.ID.String(), s.ViewerName, s.Host, s.StartedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("journal session: %w", err)
	}
	return nil
}

func (j *SQLiteJournal) Write(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO command_journal
			   (session_id, seq, recorded_at, kind, command, model_key, model_fingerprint, undoable, redoable, detail)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Session.String(), e.Seq, e.At.UnixNano(), e.Kind, e.Command, e.ModelKey, e.Fingerprint,
			e.Undoable, e.Redoable, e.Detail,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit()
}

func (j *SQLiteJournal) Recent(ctx context.Context, session uuid.UUID, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT session_id, seq, recorded_at, kind, command, model_key, model_fingerprint, undoable, redoable, detail
		 FROM command_journal WHERE session_id = ? ORDER BY seq DESC LIMIT ?`,
		session.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e   Entry
			sid string
			at  int64
		)
		if err := rows.Scan(&sid, &e.Seq, &at, &e.Kind, &e.Command, &e.ModelKey,
			&e.Fingerprint, &e.Undoable, &e.Redoable, &e.Detail); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		if e.Session, err = uuid.Parse(sid); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		e.At = time.Unix(0, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
