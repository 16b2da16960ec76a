package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"HypeChart/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps :memory: databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			status      TEXT NOT NULL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS fetch_outcomes (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			source    TEXT NOT NULL,
			item_key  TEXT,
			status    TEXT NOT NULL,
			row_count INTEGER,
			path      TEXT,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run ON fetch_outcomes(run_id)`,

		`CREATE TABLE IF NOT EXISTS charts (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			timestamp    INTEGER NOT NULL,
			name         TEXT NOT NULL,
			path         TEXT,
			bytes        INTEGER,
			left_points  INTEGER,
			right_points INTEGER,
			window_start TEXT,
			window_end   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_charts_run ON charts(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRunStart(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := run.Status
	if status == "" {
		status = RunRunning
	}
	_, err := r.db.Exec(`INSERT INTO runs (id, started_at, status) VALUES (?,?,?)`,
		run.ID, run.StartedAt.Unix(), status,
	)
	return err
}

func (r *SQLiteRecorder) RecordOutcome(runID string, o model.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errMsg string
	if o.Err != nil {
		errMsg = o.Err.Error()
	}
	_, err := r.db.Exec(`INSERT INTO fetch_outcomes
		(run_id, timestamp, source, item_key, status, row_count, path, error)
		VALUES (?,?,?,?,?,?,?,?)`,
		runID, time.Now().Unix(), o.Source, o.Key, string(o.Status), o.Rows, o.Path, errMsg,
	)
	return err
}

func (r *SQLiteRecorder) RecordChart(runID string, c *ChartRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO charts
		(run_id, timestamp, name, path, bytes, left_points, right_points, window_start, window_end)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		runID, time.Now().Unix(), c.Name, c.Path, c.Bytes, c.LeftPoints, c.RightPoints,
		dateString(c.WindowStart), dateString(c.WindowEnd),
	)
	return err
}

func (r *SQLiteRecorder) RecordRunEnd(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`UPDATE runs SET finished_at = ?, status = ?, error = ? WHERE id = ?`,
		run.FinishedAt.Unix(), run.Status, run.Error, run.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

func (r *SQLiteRecorder) LastRun() (*RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		run      RunRecord
		started  int64
		finished sql.NullInt64
		errMsg   sql.NullString
	)
	err := r.db.QueryRow(`SELECT id, started_at, finished_at, status, error
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).
		Scan(&run.ID, &started, &finished, &run.Status, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	run.StartedAt = time.Unix(started, 0)
	if finished.Valid {
		run.FinishedAt = time.Unix(finished.Int64, 0)
	}
	run.Error = errMsg.String
	return &run, nil
}

// CountOutcomes returns the number of outcomes recorded for a run.
func (r *SQLiteRecorder) CountOutcomes(runID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM fetch_outcomes WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count outcomes: %w", err)
	}
	return n, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
