// Package pipeline runs the six-stage simulation generation sequence:
// plan, create, bugfix, questions, refine, review. Stages execute in strict
// order, each persists a durable artifact even when it fails, and every
// failure past spec loading degrades the run instead of aborting it.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"simforge/internal/artifact"
	"simforge/internal/concept"
	"simforge/internal/extract"
	"simforge/internal/htmlcheck"
	"simforge/internal/logging"
	"simforge/internal/prompt"
	"simforge/internal/provider"
)

// Generation is the per-stage model configuration.
type Generation struct {
	Model       string  `yaml:"model" json:"model"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
}

// DefaultGenerations returns the per-stage sampling defaults. Deterministic
// code generation, warmer question writing, near-greedy review.
func DefaultGenerations() map[string]Generation {
	return map[string]Generation{
		"plan":      {Temperature: 0.3},
		"create":    {Temperature: 0.0},
		"bugfix":    {Temperature: 0.2},
		"questions": {Temperature: 0.6},
		"refine":    {Temperature: 0.2},
		"review":    {Temperature: 0.1},
	}
}

// Config wires a Runner. Provider is required; everything else has defaults.
type Config struct {
	Provider    provider.Provider
	OutputRoot  string
	Rule        ApprovalRule
	Generations map[string]Generation
	Logger      *slog.Logger
}

// Outcome is the final result of one run.
type Outcome struct {
	Status   Status   `json:"status"`
	Approved bool     `json:"approved"`
	Concept  string   `json:"concept"`
	Dir      string   `json:"output_dir"`
	HTML     string   `json:"-"`
	Verdict  *Verdict `json:"verdict,omitempty"`
}

// Runner executes the pipeline for one concept spec at a time.
type Runner struct {
	provider    provider.Provider
	outputRoot  string
	rule        ApprovalRule
	generations map[string]Generation
	log         *slog.Logger
}

// NewRunner builds a Runner from cfg, filling unset fields with defaults.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("pipeline: provider is required")
	}
	r := &Runner{
		provider:    cfg.Provider,
		outputRoot:  cfg.OutputRoot,
		rule:        cfg.Rule,
		generations: cfg.Generations,
		log:         cfg.Logger,
	}
	if r.outputRoot == "" {
		r.outputRoot = artifact.DefaultRoot
	}
	if r.rule == nil {
		r.rule = MinimumScores(DefaultScoreFloor, DefaultScoreBar)
	}
	if r.generations == nil {
		r.generations = DefaultGenerations()
	}
	if r.log == nil {
		r.log = logging.New("pipeline")
	}
	return r, nil
}

// Run executes the full pipeline for the spec at specPath. Spec loading is the
// only fatal step; after it succeeds the run always finishes with a complete
// artifact set and a verdict, approved or not.
func (r *Runner) Run(ctx context.Context, specPath string) (*Outcome, error) {
	spec, err := concept.Load(specPath)
	if err != nil {
		return &Outcome{Status: StatusAborted}, fmt.Errorf("load spec: %w", err)
	}
	return r.RunSpec(ctx, spec)
}

// RunSpec executes the pipeline for an already-loaded spec.
func (r *Runner) RunSpec(ctx context.Context, spec *concept.Spec) (*Outcome, error) {
	run, err := artifact.NewRun(r.outputRoot)
	if err != nil {
		// Nothing can be persisted without a run directory.
		return &Outcome{Status: StatusAborted, Concept: spec.Concept()}, err
	}

	state := NewState(spec)
	state.Status = StatusRunning
	log := r.log.With(slog.String("concept", state.Concept), slog.String("dir", run.Dir))
	log.Info("run started")

	if err := run.WriteText("spec.json", state.SpecJSON); err != nil {
		log.Warn("persist spec copy failed", slog.String("error", err.Error()))
	}

	for i, stage := range Stages() {
		state.CurrentStage = stage.Name
		r.runStage(ctx, i+1, stage, spec, state, run, log)
	}

	return r.finalize(state, run, log)
}

// runStage executes one stage end to end: prompt, invoke, extract, apply,
// persist. Failures route through the stage's fallback policy.
func (r *Runner) runStage(ctx context.Context, index int, stage Stage, spec *concept.Spec, state *State, run *artifact.Run, log *slog.Logger) {
	payload, err := r.executeStage(ctx, index, stage, state, run)
	if err == nil {
		err = stage.Apply(state, payload)
	}
	if err == nil {
		state.Payloads[stage.Name] = payload
		state.Record(stage.Name, "ok", "")
		r.persistOutput(index, stage, state, payload, run, log)
		log.Info("stage completed", slog.String("stage", stage.Name))
		return
	}

	log.Warn("stage failed", slog.String("stage", stage.Name), slog.String("error", err.Error()))
	r.persistError(index, stage.Name, err, run, log)

	if stage.Fallback == RetryThenDefault {
		payload, retryErr := r.executeStage(ctx, index, stage, state, run)
		if retryErr == nil {
			retryErr = stage.Apply(state, payload)
		}
		if retryErr == nil {
			state.Payloads[stage.Name] = payload
			state.Record(stage.Name, "ok", "succeeded on retry")
			r.persistOutput(index, stage, state, payload, run, log)
			log.Info("stage completed on retry", slog.String("stage", stage.Name))
			return
		}
		log.Warn("stage retry failed, using default blueprint",
			slog.String("stage", stage.Name), slog.String("error", retryErr.Error()))
		state.SetBlueprint(concept.DefaultBlueprint(spec))
		state.Record(stage.Name, "fallback", "default blueprint after two failures")
		if werr := run.WriteJSON(artifact.OutputFilename(index, stage.Name, "json"), state.Blueprint); werr != nil {
			log.Warn("persist fallback blueprint failed", slog.String("error", werr.Error()))
		}
		return
	}

	// KeepPrevious: the earlier stage's output stands, the run continues.
	state.Record(stage.Name, "error", err.Error())
}

// executeStage renders the prompt, invokes the provider, persists the raw
// response, and extracts the payload.
func (r *Runner) executeStage(ctx context.Context, index int, stage Stage, state *State, run *artifact.Run) (*extract.Payload, error) {
	text, err := prompt.Render(stage.Name, stage.Build(state))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	gen := r.generations[stage.Name]
	resp, err := r.provider.Invoke(ctx, provider.Request{
		Prompt:      text,
		Model:       gen.Model,
		Temperature: gen.Temperature,
		MaxTokens:   gen.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", r.provider.Name(), err)
	}

	raw := extract.Flatten(resp.Content)
	if werr := run.WriteText(artifact.RawFilename(index, stage.Name), raw); werr != nil {
		r.log.Warn("persist raw response failed", slog.String("error", werr.Error()))
	}

	return extract.Extract(resp.Content, stage.Expect)
}

func (r *Runner) persistOutput(index int, stage Stage, state *State, payload *extract.Payload, run *artifact.Run, log *slog.Logger) {
	var err error
	if stage.Output == "html" {
		err = run.WriteText(artifact.OutputFilename(index, stage.Name, "html"), state.HTML)
	} else {
		err = run.WriteJSON(artifact.OutputFilename(index, stage.Name, "json"), payload.Object)
	}
	if err != nil {
		log.Warn("persist stage output failed", slog.String("stage", stage.Name), slog.String("error", err.Error()))
	}
}

func (r *Runner) persistError(index int, stage string, stageErr error, run *artifact.Run, log *slog.Logger) {
	if err := run.WriteText(artifact.ErrorFilename(index, stage), stageErr.Error()); err != nil {
		log.Warn("persist stage error failed", slog.String("stage", stage), slog.String("error", err.Error()))
	}
}

// finalize computes the verdict, writes the terminal artifacts, and closes out
// run state.
func (r *Runner) finalize(state *State, run *artifact.Run, log *slog.Logger) (*Outcome, error) {
	verdict := VerdictFromPayload(state.Payloads["review"])
	approved := r.rule(verdict.Scores)

	finalHTML := state.HTML
	if finalHTML != "" {
		finalHTML = htmlcheck.Enforce(finalHTML)
	}
	if err := run.WriteText("final_output.html", finalHTML); err != nil {
		log.Warn("persist final output failed", slog.String("error", err.Error()))
	}
	if err := run.WriteJSON("verdict.json", verdict); err != nil {
		log.Warn("persist verdict failed", slog.String("error", err.Error()))
	}

	state.Status = StatusCompleted
	state.CurrentStage = ""
	state.Approved = approved
	if err := run.WriteJSON("state.json", state); err != nil {
		log.Warn("persist state failed", slog.String("error", err.Error()))
	}

	log.Info("run completed",
		slog.Bool("approved", approved),
		slog.Float64("average_score", verdict.Average))

	return &Outcome{
		Status:   StatusCompleted,
		Approved: approved,
		Concept:  state.Concept,
		Dir:      run.Dir,
		HTML:     finalHTML,
		Verdict:  verdict,
	}, nil
}
