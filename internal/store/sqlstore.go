package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	concept       TEXT NOT NULL,
	output_dir    TEXT NOT NULL,
	status        TEXT NOT NULL,
	approved      INTEGER NOT NULL DEFAULT 0,
	average_score REAL NOT NULL DEFAULT 0,
	provider      TEXT,
	started_at    TEXT NOT NULL,
	finished_at   TEXT
);
`

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and ensures the schema exists.
// Creates the parent directory if it does not exist.
func Open(path string) (*SqlStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SqlStore{db: db}, nil
}

func (s *SqlStore) Close() error { return s.db.Close() }

// SaveRun inserts a run record and returns its id.
func (s *SqlStore) SaveRun(rec *RunRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (concept, output_dir, status, approved, average_score, provider, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Concept, rec.OutputDir, rec.Status, boolInt(rec.Approved),
		rec.AverageScore, rec.Provider, rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	rec.ID = id
	return id, nil
}

// GetRun returns a run by id, or nil when it does not exist.
func (s *SqlStore) GetRun(id int64) (*RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, concept, output_dir, status, approved, average_score, provider, started_at, finished_at
		 FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means all.
func (s *SqlStore) ListRuns(limit int) ([]*RunRecord, error) {
	q := `SELECT id, concept, output_dir, status, approved, average_score, provider, started_at, finished_at
	      FROM runs ORDER BY id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(q+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(q)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var approved int
	var provider, finished sql.NullString
	err := row.Scan(&rec.ID, &rec.Concept, &rec.OutputDir, &rec.Status,
		&approved, &rec.AverageScore, &provider, &rec.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	rec.Approved = approved != 0
	rec.Provider = provider.String
	rec.FinishedAt = finished.String
	return &rec, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
