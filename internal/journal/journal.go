// Package journal keeps a local SQLite log of every cycle outcome: what
// was signed, with which digest, and how the cycle ended. It exists so
// an operator can audit submissions without the coordinator's help.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openmesh-ai/openmesh-worker/internal/agent"
)

//go:embed schema.sql
var schemaSQL string

// Journal is a durable cycle log. It implements agent.Recorder.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// Idempotent - safe to call against an existing journal.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time; the agent loop is the only
	// writer, so a single connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// RecordCycle appends one cycle outcome.
func (j *Journal) RecordCycle(ctx context.Context, rec agent.CycleRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO cycles (cycle_token, job_id, digest_hex, signature, status, stage, code)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Token, rec.JobID, rec.DigestHex, rec.Signature, rec.Status, rec.Stage, rec.Code)
	if err != nil {
		return fmt.Errorf("insert cycle record: %w", err)
	}
	return nil
}

// Entry is one journal row.
type Entry struct {
	Seq       int64
	Token     string
	JobID     string
	DigestHex string
	Signature string
	Status    string
	Stage     string
	Code      string
	CreatedAt string
}

// Recent returns the newest entries, most recent first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, cycle_token, job_id, digest_hex, signature, status, stage, code, created_at
		FROM cycles ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.Token, &e.JobID, &e.DigestHex, &e.Signature,
			&e.Status, &e.Stage, &e.Code, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cycle row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
