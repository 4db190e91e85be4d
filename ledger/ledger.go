// Package ledger keeps a local SQLite history of import runs and the tweet
// ids each run wrote. Credentials are never stored here.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	bookmarks "github.com/anatolykoptev/go-bookmarks"
)

// Ledger implements bookmarks.Recorder on top of SQLite.
type Ledger struct {
	db *sql.DB
}

// RunSummary is one row of run history.
type RunSummary struct {
	ID           string    `json:"id"`
	Folder       bool      `json:"folder"`
	ContainerTag string    `json:"container_tag"`
	State        string    `json:"state"`
	Imported     int       `json:"imported"`
	Pages        int       `json:"pages"`
	LastCursor   string    `json:"last_cursor,omitempty"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitzero"`
}

// Open opens or creates the ledger database at path.
func Open(path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating ledger dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// StartRun inserts a new run row.
func (l *Ledger) StartRun(ctx context.Context, run bookmarks.Run) error {
	_, err := l.db.ExecContext(ctx, `INSERT OR REPLACE INTO runs
		(run_id, folder, container_tag, state, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, boolInt(run.Folder), run.ContainerTag, run.State.String(), formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordTweets associates written tweet ids with a run.
func (l *Ledger) RecordTweets(ctx context.Context, runID string, tweetIDs []string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO run_tweets (run_id, tweet_id) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range tweetIDs {
		if _, err := stmt.ExecContext(ctx, runID, id); err != nil {
			return fmt.Errorf("insert tweet %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// FinishRun stores the final state and counters of a run.
func (l *Ledger) FinishRun(ctx context.Context, run bookmarks.Run) error {
	_, err := l.db.ExecContext(ctx, `UPDATE runs SET
		state = ?, imported = ?, pages = ?, last_cursor = ?, error = ?, finished_at = ?
		WHERE run_id = ?`,
		run.State.String(), run.Imported, run.Pages, run.Cursor, run.Err, formatTime(run.FinishedAt), run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx, `SELECT run_id, folder, container_tag, state, imported, pages,
		last_cursor, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunSummary
	for rows.Next() {
		var (
			r                 RunSummary
			folder            int
			started, finished string
		)
		if err := rows.Scan(&r.ID, &folder, &r.ContainerTag, &r.State, &r.Imported, &r.Pages,
			&r.LastCursor, &r.Error, &started, &finished); err != nil {
			return nil, err
		}
		r.Folder = folder != 0
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunTweets returns the tweet ids written by a run.
func (l *Ledger) RunTweets(ctx context.Context, runID string) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT tweet_id FROM run_tweets WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ImportedCount returns the number of distinct tweets written across all runs.
func (l *Ledger) ImportedCount(ctx context.Context) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT tweet_id) FROM run_tweets`).Scan(&n)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
