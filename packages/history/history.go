// Package history persists run outcomes in a local sqlite database so
// results can be compared across invocations.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is RFC 3339 with fixed-width nanoseconds so that
// lexicographic order on the stored column matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store records and retrieves past runs.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		files INTEGER NOT NULL,
		tests INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		stats TEXT NOT NULL DEFAULT '{}'
	)`)
	if err != nil {
		return fmt.Errorf("creating runs table: %w", err)
	}
	return nil
}

// Summary is the aggregate outcome of one invocation, across all files.
type Summary struct {
	Files    int
	Tests    int
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
	Stats    map[string]int
}

// Run is a recorded invocation.
type Run struct {
	ID        string
	CreatedAt time.Time
	Files     int
	Tests     int
	Passed    int
	Failed    int
	Skipped   int
	Duration  time.Duration
	Stats     string
}

// Green reports whether the run had no failures.
func (r *Run) Green() bool {
	return r.Failed == 0
}

// Stat returns a named counter from the run's recorded stats.
func (r *Run) Stat(name string) int {
	return int(gjson.Get(r.Stats, name).Int())
}

// Record inserts a new run and returns it.
func (s *Store) Record(summary Summary) (*Run, error) {
	stats := summary.Stats
	if stats == nil {
		stats = map[string]int{}
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("encoding run stats: %w", err)
	}

	run := &Run{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Files:     summary.Files,
		Tests:     summary.Tests,
		Passed:    summary.Passed,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
		Duration:  summary.Duration,
		Stats:     string(statsJSON),
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, created_at, files, tests, passed, failed, skipped, duration_ms, stats)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.Format(timeLayout),
		run.Files,
		run.Tests,
		run.Passed,
		run.Failed,
		run.Skipped,
		run.Duration.Milliseconds(),
		run.Stats,
	)
	if err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}
	return run, nil
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(n int) ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, files, tests, passed, failed, skipped, duration_ms, stats
		 FROM runs ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading runs: %w", err)
	}
	return runs, nil
}

// Streak returns the number of consecutive green runs, counting back from
// the most recent. A red run ends the streak.
func (s *Store) Streak() (int, error) {
	rows, err := s.db.Query(`SELECT failed FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return 0, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	streak := 0
	for rows.Next() {
		var failed int
		if err := rows.Scan(&failed); err != nil {
			return 0, fmt.Errorf("scanning run: %w", err)
		}
		if failed > 0 {
			break
		}
		streak++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("reading runs: %w", err)
	}
	return streak, nil
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var (
		run        Run
		createdAt  string
		durationMS int64
	)
	err := rows.Scan(
		&run.ID,
		&createdAt,
		&run.Files,
		&run.Tests,
		&run.Passed,
		&run.Failed,
		&run.Skipped,
		&durationMS,
		&run.Stats,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing run timestamp: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
