package concept

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spec.json")
	body := `{"Concept": "Heat Transfer", "Description": "How heat moves.", "key_points": ["conduction"]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	spec, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if spec.Concept() != "Heat Transfer" {
		t.Errorf("Concept = %q", spec.Concept())
	}
	if spec.Description() != "How heat moves." {
		t.Errorf("Description = %q", spec.Description())
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spec.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed spec")
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing spec")
	}
}

func TestSpec_Defaults(t *testing.T) {
	spec := &Spec{Fields: map[string]any{}}
	if spec.Concept() != "Unknown Concept" {
		t.Errorf("Concept = %q", spec.Concept())
	}
	if spec.Description() == "" {
		t.Error("Description should never be empty")
	}
}

func TestSpec_TitleFallback(t *testing.T) {
	spec := &Spec{Fields: map[string]any{"title": "Photosynthesis"}}
	if spec.Concept() != "Photosynthesis" {
		t.Errorf("Concept = %q", spec.Concept())
	}
}

func TestDefaultBlueprint_Deterministic(t *testing.T) {
	spec := &Spec{Fields: map[string]any{"Concept": "Friction"}}
	a := DefaultBlueprint(spec)
	b := DefaultBlueprint(spec)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("blueprint not deterministic (-a +b):\n%s", diff)
	}

	objectives, ok := a["learning_objectives"].([]any)
	if !ok || len(objectives) == 0 {
		t.Fatalf("learning_objectives missing: %+v", a["learning_objectives"])
	}
	if objectives[0] != "Understand what Friction means." {
		t.Errorf("objective[0] = %v", objectives[0])
	}
}

func TestDefaultBlueprint_HeatVariables(t *testing.T) {
	spec := &Spec{Fields: map[string]any{"Concept": "Heat Conduction"}}
	bp := DefaultBlueprint(spec)
	vars, ok := bp["variables_to_simulate"].([]simVariable)
	if !ok || len(vars) != 2 {
		t.Fatalf("variables_to_simulate = %+v", bp["variables_to_simulate"])
	}
	if vars[0].Name != "Temperature" {
		t.Errorf("heat topic should lead with Temperature, got %q", vars[0].Name)
	}
}
