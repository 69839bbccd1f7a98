package store

import (
	"path/filepath"
	"testing"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlStore, err := Open(filepath.Join(t.TempDir(), "simforge.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlStore.Close() })
	return map[string]Store{
		"sqlite": sqlStore,
		"memory": NewMemStore(),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			id, err := s.SaveRun(&RunRecord{
				Concept:      "Friction",
				OutputDir:    "output/2026-08-31_10-00-00",
				Status:       "completed",
				Approved:     true,
				AverageScore: 4.3,
				Provider:     "openrouter",
				StartedAt:    "2026-08-31T10:00:00Z",
				FinishedAt:   "2026-08-31T10:04:12Z",
			})
			if err != nil {
				t.Fatalf("SaveRun: %v", err)
			}

			rec, err := s.GetRun(id)
			if err != nil {
				t.Fatalf("GetRun: %v", err)
			}
			if rec == nil {
				t.Fatal("run not found after save")
			}
			if rec.Concept != "Friction" || !rec.Approved || rec.AverageScore != 4.3 {
				t.Errorf("round-trip mismatch: %+v", rec)
			}
		})
	}
}

func TestGetRun_Missing(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			rec, err := s.GetRun(999)
			if err != nil {
				t.Fatalf("GetRun: %v", err)
			}
			if rec != nil {
				t.Errorf("expected nil for missing run, got %+v", rec)
			}
		})
	}
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, concept := range []string{"Friction", "Gravity", "Heat Transfer"} {
				if _, err := s.SaveRun(&RunRecord{
					Concept:   concept,
					OutputDir: "output/x",
					Status:    "completed",
					StartedAt: "2026-08-31T10:00:00Z",
				}); err != nil {
					t.Fatal(err)
				}
			}

			runs, err := s.ListRuns(2)
			if err != nil {
				t.Fatalf("ListRuns: %v", err)
			}
			if len(runs) != 2 {
				t.Fatalf("got %d runs, want 2", len(runs))
			}
			if runs[0].Concept != "Heat Transfer" {
				t.Errorf("newest run first, got %q", runs[0].Concept)
			}

			all, err := s.ListRuns(0)
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 3 {
				t.Errorf("got %d runs, want 3", len(all))
			}
		})
	}
}
