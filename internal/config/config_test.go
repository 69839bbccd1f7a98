package config

import (
	"testing"
)

func TestLoad_YAML(t *testing.T) {
	data := []byte(`
provider: anthropic
model: claude-sonnet-4-5
output_root: /tmp/runs
score_bar: 4.5
stages:
  questions:
    temperature: 0.9
  create:
    model: special-coder
`)
	cfg, err := Load(data, ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.OutputRoot != "/tmp/runs" {
		t.Errorf("output_root = %q", cfg.OutputRoot)
	}
	if cfg.ScoreFloor != 3 {
		t.Errorf("score_floor default lost: %v", cfg.ScoreFloor)
	}

	gens := cfg.Generations()
	if gens["questions"].Temperature != 0.9 {
		t.Errorf("questions temperature = %v", gens["questions"].Temperature)
	}
	if gens["create"].Model != "special-coder" {
		t.Errorf("create model = %q", gens["create"].Model)
	}
	// Stage without its own model inherits the config-level one.
	if gens["plan"].Model != "claude-sonnet-4-5" {
		t.Errorf("plan model = %q", gens["plan"].Model)
	}
	// Unoverridden temperature stays at the pipeline default.
	if gens["review"].Temperature != 0.1 {
		t.Errorf("review temperature = %v", gens["review"].Temperature)
	}
}

func TestLoad_JSONDetection(t *testing.T) {
	data := []byte(`{"provider": "openrouter", "model": "some/model"}`)
	cfg, err := Load(data, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "some/model" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.HistoryDB == "" {
		t.Error("history_db default lost")
	}
}

func TestLoad_ZeroThresholdsMeanDefault(t *testing.T) {
	data := []byte("score_floor: 0\nscore_bar: 0\n")
	cfg, err := Load(data, ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ScoreFloor != 3 || cfg.ScoreBar != 4 {
		t.Errorf("thresholds = %v/%v, want defaults 3/4", cfg.ScoreFloor, cfg.ScoreBar)
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	cfg := Default()
	cfg.Provider = "telepathy"
	if _, err := cfg.NewProvider(); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestRule(t *testing.T) {
	cfg := Default()
	rule := cfg.Rule()
	if !rule(map[string]float64{"a": 4, "b": 4}) {
		t.Error("default rule rejected passing scores")
	}
	if rule(map[string]float64{"a": 2, "b": 5}) {
		t.Error("default rule approved sub-floor score")
	}
}
