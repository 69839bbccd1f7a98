// Package store persists run history: one record per pipeline run, enough to
// answer "what was generated, when, and did it pass". The CLI and MCP server
// use only the Store interface; the implementation is SQLite or in-memory.
package store

// DefaultDBPath is the default relative path for the SQLite DB.
const DefaultDBPath = "simforge.db"

// RunRecord is one completed (or aborted) pipeline run.
type RunRecord struct {
	ID           int64
	Concept      string
	OutputDir    string
	Status       string
	Approved     bool
	AverageScore float64
	Provider     string
	StartedAt    string // ISO 8601 UTC
	FinishedAt   string
}

// Store is the run-history facade.
type Store interface {
	SaveRun(rec *RunRecord) (int64, error)
	GetRun(id int64) (*RunRecord, error)
	ListRuns(limit int) ([]*RunRecord, error)
	Close() error
}
