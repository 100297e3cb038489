// Package history records past extraction runs in a local SQLite
// database so they can be reviewed with `glint history`.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"glint/internal/stats"
)

// Store persists one row per demo/extract invocation.
type Store struct {
	db   *sql.DB
	path string
}

type Run struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Model     string        `json:"model"`
	Examples  int           `json:"examples"`
	Entities  int           `json:"entities"`
	Duration  time.Duration `json:"duration"`
	Summary   stats.Summary `json:"summary"`
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	model TEXT NOT NULL,
	examples INTEGER NOT NULL,
	entities INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	summary_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Open connects to (and if needed creates) the history database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure history db: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append records one finished run. An empty id gets a fresh uuid; the id
// used is returned either way.
func (s *Store) Append(ctx context.Context, id, model string, summary stats.Summary) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	blob, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, model, examples, entities, duration_ms, summary_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		time.Now().UTC().Format(time.RFC3339Nano),
		model,
		summary.Examples,
		summary.Entities,
		summary.DurationMs,
		string(blob),
	)
	if err != nil {
		return "", fmt.Errorf("append run: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, model, examples, entities, duration_ms, summary_json
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	out := make([]Run, 0, limit)
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			durationMs int64
			blob       string
		)
		if err := rows.Scan(&run.ID, &startedAt, &run.Model, &run.Examples, &run.Entities, &durationMs, &blob); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		run.StartedAt = ts
		run.Duration = time.Duration(durationMs) * time.Millisecond
		if err := json.Unmarshal([]byte(blob), &run.Summary); err != nil {
			return nil, fmt.Errorf("decode run summary: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
