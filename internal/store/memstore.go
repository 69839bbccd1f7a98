package store

import "sync"

// MemStore is the in-memory Store, used by tests and the MCP server's dry-run
// mode.
type MemStore struct {
	mu   sync.Mutex
	runs []*RunRecord
	next int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Close() error { return nil }

func (s *MemStore) SaveRun(rec *RunRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	cp := *rec
	cp.ID = s.next
	s.runs = append(s.runs, &cp)
	rec.ID = cp.ID
	return cp.ID, nil
}

func (s *MemStore) GetRun(id int64) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.runs {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemStore) ListRuns(limit int) ([]*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*RunRecord, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		cp := *s.runs[i]
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
