package pipeline

import (
	"errors"

	"simforge/internal/extract"
	"simforge/internal/htmlcheck"
	"simforge/internal/prompt"
)

// FallbackPolicy says what the runner does when a stage's invocation or
// extraction fails.
type FallbackPolicy int

const (
	// RetryThenDefault retries the invocation once, then synthesizes a
	// deterministic default. Only the plan stage uses this; a run without a
	// blueprint has nothing for later stages to work from.
	RetryThenDefault FallbackPolicy = iota
	// KeepPrevious logs the failure, keeps the previous stage's output, and
	// continues.
	KeepPrevious
)

// Stage describes one pipeline step: how to build its prompt, how to fold its
// extracted payload into run state, and what to do when it fails.
type Stage struct {
	Name     string
	Expect   extract.Expect
	Fallback FallbackPolicy
	// Output is the artifact extension for the stage's durable output,
	// "json" or "html".
	Output string
	// Build assembles the prompt parameters from current state.
	Build func(s *State) *prompt.Params
	// Apply folds a successfully extracted payload into state. A non-nil
	// error means the payload is unusable and the stage's fallback applies.
	Apply func(s *State, p *extract.Payload) error
}

var errUnusablePayload = errors.New("payload has no usable content")

// Stages returns the fixed six-stage sequence. Order is part of the contract:
// plan, create, bugfix, questions, refine, review.
func Stages() []Stage {
	return []Stage{
		{
			Name:     "plan",
			Expect:   extract.ExpectStructured,
			Fallback: RetryThenDefault,
			Output:   "json",
			Build: func(s *State) *prompt.Params {
				return &prompt.Params{SpecJSON: s.SpecJSON}
			},
			Apply: func(s *State, p *extract.Payload) error {
				if p.Kind != extract.KindStructured {
					return errUnusablePayload
				}
				s.SetBlueprint(p.Object)
				return nil
			},
		},
		{
			Name:     "create",
			Expect:   extract.ExpectStructured,
			Fallback: KeepPrevious,
			Output:   "html",
			Build: func(s *State) *prompt.Params {
				return &prompt.Params{Plan: s.PlanJSON}
			},
			Apply: applyHTML,
		},
		{
			Name:     "bugfix",
			Expect:   extract.ExpectStructured,
			Fallback: KeepPrevious,
			Output:   "html",
			Build: func(s *State) *prompt.Params {
				return &prompt.Params{HTML: s.HTML}
			},
			Apply: func(s *State, p *extract.Payload) error {
				if err := applyHTML(s, p); err != nil {
					return err
				}
				// Structural repair happens once the fixer has run, so the
				// questions and refine stages see compliant markup.
				s.HTML = htmlcheck.Enforce(s.HTML)
				return nil
			},
		},
		{
			Name:     "questions",
			Expect:   extract.ExpectStructured,
			Fallback: KeepPrevious,
			Output:   "json",
			Build: func(s *State) *prompt.Params {
				return &prompt.Params{SpecJSON: s.SpecJSON, HTML: s.HTML}
			},
			Apply: func(s *State, p *extract.Payload) error {
				if p.Kind != extract.KindStructured {
					return errUnusablePayload
				}
				s.Feedback = p.Object
				return nil
			},
		},
		{
			Name:     "refine",
			Expect:   extract.ExpectStructured,
			Fallback: KeepPrevious,
			Output:   "html",
			Build: func(s *State) *prompt.Params {
				return &prompt.Params{HTML: s.HTML, Feedback: s.FeedbackText()}
			},
			Apply: applyHTML,
		},
		{
			Name:     "review",
			Expect:   extract.ExpectStructured,
			Fallback: KeepPrevious,
			Output:   "json",
			Build: func(s *State) *prompt.Params {
				return &prompt.Params{HTML: s.HTML}
			},
			Apply: func(s *State, p *extract.Payload) error {
				if p.Kind != extract.KindStructured {
					return errUnusablePayload
				}
				return nil
			},
		},
	}
}

// applyHTML installs a stage's HTML output into state. The generator stages
// are asked for {"index.html": ...} but models sometimes return a bare
// document; both shapes are accepted.
func applyHTML(s *State, p *extract.Payload) error {
	switch p.Kind {
	case extract.KindDocument:
		s.HTML = p.Document
		return nil
	case extract.KindStructured:
		if doc := stringField(p.Object, "index.html", ""); doc != "" {
			s.HTML = doc
			return nil
		}
	}
	return errUnusablePayload
}
