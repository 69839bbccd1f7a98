package provider

import (
	"context"
	"fmt"
	"sync"
)

// ScriptStep is one canned reply (or failure) for a Script provider.
type ScriptStep struct {
	Text string
	Err  error
}

// Script is a deterministic Provider that replays canned responses in order.
// Used by tests and offline dry runs; no network involved.
type Script struct {
	mu    sync.Mutex
	steps []ScriptStep
	calls int
}

// NewScript builds a Script provider from the given steps.
func NewScript(steps ...ScriptStep) *Script {
	return &Script{steps: steps}
}

func (s *Script) Name() string { return "script" }

// Invoke returns the next canned step, or an error once the script runs out.
func (s *Script) Invoke(_ context.Context, _ Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls >= len(s.steps) {
		s.calls++
		return nil, fmt.Errorf("script exhausted after %d replies", len(s.steps))
	}
	step := s.steps[s.calls]
	s.calls++
	if step.Err != nil {
		return nil, step.Err
	}
	return &Response{Content: step.Text, Model: "script"}, nil
}

// Calls reports how many invocations the script has served.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
