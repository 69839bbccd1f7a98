package pipeline

import (
	"encoding/json"
	"strings"
	"time"

	"simforge/internal/concept"
	"simforge/internal/extract"
)

// Status is the run-level state machine. Only spec loading can abort; every
// later failure degrades into a completed-but-not-approved run.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusRunning    Status = "running"
	StatusCompleted  Status = "completed"
	StatusAborted    Status = "aborted"
)

// StageRecord is one entry in the run history.
type StageRecord struct {
	Stage     string `json:"stage"`
	Outcome   string `json:"outcome"` // "ok", "fallback", or "error"
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// State is the evolving pipeline state for one generation run. It is owned
// exclusively by the runner, mutated once per stage in strict sequence, and
// discarded when the run ends.
type State struct {
	Concept  string `json:"concept"`
	SpecJSON string `json:"-"`

	Blueprint map[string]any `json:"-"`
	PlanJSON  string         `json:"-"`
	HTML      string         `json:"-"`
	Feedback  map[string]any `json:"-"`

	Payloads map[string]*extract.Payload `json:"-"`

	Status       Status        `json:"status"`
	CurrentStage string        `json:"current_stage,omitempty"`
	Approved     bool          `json:"approved"`
	History      []StageRecord `json:"history"`
}

// NewState initializes run state from a loaded concept spec.
func NewState(spec *concept.Spec) *State {
	return &State{
		Concept:  spec.Concept(),
		SpecJSON: spec.JSON(),
		Payloads: make(map[string]*extract.Payload),
		Status:   StatusNotStarted,
	}
}

// Record appends a history entry for the named stage.
func (s *State) Record(stage, outcome, detail string) {
	s.History = append(s.History, StageRecord{
		Stage:     stage,
		Outcome:   outcome,
		Detail:    detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// SetBlueprint installs the planner blueprint and its rendered JSON form.
func (s *State) SetBlueprint(blueprint map[string]any) {
	s.Blueprint = blueprint
	data, err := json.MarshalIndent(blueprint, "", "  ")
	if err != nil {
		s.PlanJSON = "{}"
		return
	}
	s.PlanJSON = string(data)
}

// FeedbackText flattens the questions-stage payload into the prose the refine
// stage feeds back to the model. Missing fields contribute nothing; a run with
// no feedback yields an empty string.
func (s *State) FeedbackText() string {
	if s.Feedback == nil {
		return ""
	}
	var parts []string
	if followups, ok := s.Feedback["followups"].([]any); ok {
		for _, f := range followups {
			if str, ok := f.(string); ok {
				parts = append(parts, str)
			}
		}
	}
	if summary, ok := s.Feedback["summary"].(string); ok && summary != "" {
		parts = append(parts, summary)
	}
	return strings.Join(parts, "\n")
}

// stringField pulls a string out of a structured payload object, defaulting
// when the key is absent or the wrong type. Downstream stages never crash on
// missing fields; extraction tolerance propagates.
func stringField(obj map[string]any, key, fallback string) string {
	if obj == nil {
		return fallback
	}
	if v, ok := obj[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
