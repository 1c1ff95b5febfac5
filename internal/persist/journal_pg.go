package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type PGJournal struct {
	db *DB
}

func NewPGJournal(db *DB) *PGJournal {
	return &PGJournal{db: db}
}

func (j *PGJournal) StartSession(ctx context.Context, s Session) error {
	_, err := j.db.Pool.Exec(ctx,
		`INSERT INTO viewer_sessions (id, viewer_name, host, started_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.ViewerName, s.Host, s.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("journal session: %w", err)
	}
	return nil
}

// Write inserts a batch of entries in a single transaction.
func (j *PGJournal) Write(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := j.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO command_journal
			   (session_id, seq, recorded_at, kind, command, model_key, model_fingerprint, undoable, redoable, detail)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			e.Session, e.Seq, e.At, e.Kind, e.Command, e.ModelKey, e.Fingerprint, e.Undoable, e.Redoable, e.Detail,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Recent returns up to limit entries of a session, newest first.
func (j *PGJournal) Recent(ctx context.Context, session uuid.UUID, limit int) ([]Entry, error) {
	rows, err := j.db.Pool.Query(ctx,
		`SELECT session_id, seq, recorded_at, kind, command, model_key, model_fingerprint, undoable, redoable, detail
		 FROM command_journal WHERE session_id = $1 ORDER BY seq DESC LIMIT $2`,
		session, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Session, &e.Seq, &e.At, &e.Kind, &e.Command, &e.ModelKey,
			&e.Fingerprint, &e.Undoable, &e.Redoable, &e.Detail); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *PGJournal) Close() error {
	j.db.Close()
	return nil
}
