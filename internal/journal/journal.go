// Package journal records the relocations of each rename run in SQLite so
// that a run can be listed and undone.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	ioutils "github.com/handiism/metarenamer/internal/io"
)

// timeFormat is fixed width so that stored times sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrUnknownRun is returned when a run id is not in the journal.
var ErrUnknownRun = errors.New("unknown run")

// Run describes one rename run.
type Run struct {
	ID        string
	StartedAt time.Time
	Source    string
	Library   string
	Mode      string
	Entries   int // number of recorded relocations
	Undone    int // number of relocations already undone
}

// Entry is one recorded relocation.
type Entry struct {
	ID          int64
	RunID       string
	Source      string
	Destination string
	Mode        string // move or copy
	CreatedAt   time.Time
	Undone      bool
}

// Journal is a SQLite-backed log of relocations. It is safe for
// concurrent use.
type Journal struct {
	conn *sql.DB
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// PRAGMAs apply per connection; a single connection also serializes writers.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	j := &Journal{conn: conn}
	if err := j.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  startedAt TEXT NOT NULL,
  source TEXT NOT NULL,
  library TEXT NOT NULL,
  mode TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL REFERENCES runs(id),
  source TEXT NOT NULL,
  destination TEXT NOT NULL,
  mode TEXT NOT NULL,
  createdAt TEXT NOT NULL,
  undone INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_entries_runId ON entries(runId);
`
	_, err := j.conn.Exec(schema)
	return err
}

// BeginRun records the start of a run.
func (j *Journal) BeginRun(ctx context.Context, run Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := j.conn.ExecContext(ctx,
		`INSERT INTO runs (id, startedAt, source, library, mode) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeFormat), run.Source, run.Library, run.Mode)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", run.ID, err)
	}
	return nil
}

// Record appends a relocation to the run's entries.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := j.conn.ExecContext(ctx,
		`INSERT INTO entries (runId, source, destination, mode, createdAt) VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Source, e.Destination, e.Mode, e.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Source, err)
	}
	return nil
}

// Runs lists the recorded runs, most recent first.
func (j *Journal) Runs(ctx context.Context) ([]Run, error) {
	rows, err := j.conn.QueryContext(ctx, `
SELECT r.id, r.startedAt, r.source, r.library, r.mode,
       COUNT(e.id), COALESCE(SUM(e.undone), 0)
FROM runs r LEFT JOIN entries e ON e.runId = r.id
GROUP BY r.id
ORDER BY r.startedAt DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.Source, &r.Library, &r.Mode, &r.Entries, &r.Undone); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(timeFormat, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Entries returns the entries of a run in the order they were recorded.
func (j *Journal) Entries(ctx context.Context, runID string) ([]Entry, error) {
	var exists int
	err := j.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("%s: %w", runID, ErrUnknownRun)
	}

	rows, err := j.conn.QueryContext(ctx,
		`SELECT id, runId, source, destination, mode, createdAt, undone FROM entries WHERE runId = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Source, &e.Destination, &e.Mode, &created, &e.Undone); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(timeFormat, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Undo reverts the entries of a run that are not undone yet, newest first.
// Moved files are moved back to their source; copies are deleted. Undo
// stops at the first failure and returns the number of reverted entries.
func (j *Journal) Undo(ctx context.Context, runID string) (int, error) {
	entries, err := j.Entries(ctx, runID)
	if err != nil {
		return 0, err
	}

	undone := 0
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Undone {
			continue
		}
		if err := revert(ctx, e); err != nil {
			return undone, fmt.Errorf("undo %s: %w", e.Destination, err)
		}
		if _, err := j.conn.ExecContext(ctx, `UPDATE entries SET undone = 1 WHERE id = ?`, e.ID); err != nil {
			return undone, err
		}
		undone++
	}
	return undone, nil
}

func revert(ctx context.Context, e Entry) error {
	if e.Mode == "copy" {
		err := os.Remove(e.Destination)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return ioutils.Move(ctx, e.Destination, e.Source, false)
}
