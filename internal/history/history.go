// Package history keeps a SQLite log of finished encodes.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one finished encode.
type Entry struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Input       string
	Output      string
	CommandLine string
	Outcome     string
	ExitCode    int
	Error       string
	Frames      uint64
	TotalFrames uint64
	Bytes       int64
}

// Duration is how long the encode ran.
func (e Entry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// Recorder is what the pipeline needs from a history store.
type Recorder interface {
	Record(ctx context.Context, e Entry) (Entry, error)
}

// Store manages encode history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path is the database file.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts e, assigning an ID when it has none.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO encodes (
            id, started_at, finished_at, input_path, output_path, command_line,
            outcome, exit_code, error_message, frames_encoded, frames_total, output_bytes
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.StartedAt.UTC().Format(timeLayout),
		e.FinishedAt.UTC().Format(timeLayout),
		e.Input,
		e.Output,
		e.CommandLine,
		e.Outcome,
		e.ExitCode,
		nullableString(e.Error),
		int64(e.Frames),
		int64(e.TotalFrames),
		e.Bytes,
	)
	if err != nil {
		return e, fmt.Errorf("insert encode: %w", err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, started_at, finished_at, input_path, output_path, command_line,
        outcome, exit_code, error_message, frames_encoded, frames_total, output_bytes
        FROM encodes ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list encodes: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e              Entry
			started, ended string
			errMsg         sql.NullString
			frames, total  int64
		)
		if err := rows.Scan(&e.ID, &started, &ended, &e.Input, &e.Output, &e.CommandLine,
			&e.Outcome, &e.ExitCode, &errMsg, &frames, &total, &e.Bytes); err != nil {
			return nil, fmt.Errorf("scan encode: %w", err)
		}
		e.StartedAt = parseTime(started)
		e.FinishedAt = parseTime(ended)
		e.Error = errMsg.String
		e.Frames = uint64(frames)
		e.TotalFrames = uint64(total)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
