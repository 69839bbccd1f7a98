// Package mcp exposes the generation pipeline over the Model Context
// Protocol, so agent frontends can trigger runs and browse history without
// shelling out to the CLI.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"simforge/internal/concept"
	"simforge/internal/logging"
	"simforge/internal/pipeline"
	"simforge/internal/provider"
	"simforge/internal/store"
)

// ServerConfig wires the MCP server. Provider is required; Store may be nil,
// in which case history tools report nothing.
type ServerConfig struct {
	Provider    provider.Provider
	Store       store.Store
	OutputRoot  string
	Rule        pipeline.ApprovalRule
	Generations map[string]pipeline.Generation
	Version     string
}

// Server wraps the MCP SDK server around the pipeline.
type Server struct {
	MCPServer *sdkmcp.Server

	cfg ServerConfig

	// One generation at a time; concurrent tool calls queue here rather
	// than racing on provider quota.
	genMu sync.Mutex
}

// NewServer creates an MCP server with generation and history tools.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("mcp: provider is required")
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	s := &Server{cfg: cfg}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "simforge", Version: version},
		nil,
	)
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "generate_simulation",
		Description: "Run the full generation pipeline for a concept spec and return the verdict. Accepts a spec file path or inline spec JSON.",
	}, s.handleGenerate)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List recent generation runs from history, newest first.",
	}, s.handleListRuns)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_run",
		Description: "Get one generation run from history by id.",
	}, s.handleGetRun)
}

// --- Tool input/output types ---

type generateInput struct {
	SpecPath string `json:"spec_path,omitempty" jsonschema:"path to a concept spec JSON file"`
	SpecJSON string `json:"spec_json,omitempty" jsonschema:"inline concept spec JSON (used when spec_path is empty)"`
}

type generateOutput struct {
	Status       string             `json:"status"`
	Approved     bool               `json:"approved"`
	Concept      string             `json:"concept"`
	OutputDir    string             `json:"output_dir"`
	AverageScore float64            `json:"average_score"`
	Scores       map[string]float64 `json:"scores,omitempty"`
	RunID        int64              `json:"run_id,omitempty"`
}

type listRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"max runs to return (default 20)"`
}

type runSummary struct {
	ID           int64   `json:"id"`
	Concept      string  `json:"concept"`
	OutputDir    string  `json:"output_dir"`
	Status       string  `json:"status"`
	Approved     bool    `json:"approved"`
	AverageScore float64 `json:"average_score"`
	StartedAt    string  `json:"started_at"`
}

type listRunsOutput struct {
	Runs []runSummary `json:"runs"`
}

type getRunInput struct {
	ID int64 `json:"id" jsonschema:"run id from list_runs"`
}

type getRunOutput struct {
	Run *runSummary `json:"run,omitempty"`
}

// --- Tool handlers ---

func (s *Server) handleGenerate(ctx context.Context, _ *sdkmcp.CallToolRequest, input generateInput) (*sdkmcp.CallToolResult, generateOutput, error) {
	logger := logging.New("mcp")

	runner, err := pipeline.NewRunner(pipeline.Config{
		Provider:    s.cfg.Provider,
		OutputRoot:  s.cfg.OutputRoot,
		Rule:        s.cfg.Rule,
		Generations: s.cfg.Generations,
	})
	if err != nil {
		return nil, generateOutput{}, err
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()

	started := time.Now().UTC()
	var out *pipeline.Outcome
	switch {
	case input.SpecPath != "":
		out, err = runner.Run(ctx, input.SpecPath)
	case input.SpecJSON != "":
		var spec *concept.Spec
		spec, err = concept.Parse([]byte(input.SpecJSON))
		if err == nil {
			out, err = runner.RunSpec(ctx, spec)
		}
	default:
		return nil, generateOutput{}, fmt.Errorf("one of spec_path or spec_json is required")
	}
	if err != nil {
		return nil, generateOutput{}, fmt.Errorf("generate: %w", err)
	}

	result := generateOutput{
		Status:       string(out.Status),
		Approved:     out.Approved,
		Concept:      out.Concept,
		OutputDir:    out.Dir,
		AverageScore: out.Verdict.Average,
		Scores:       out.Verdict.Scores,
	}

	if s.cfg.Store != nil {
		id, saveErr := s.cfg.Store.SaveRun(&store.RunRecord{
			Concept:      out.Concept,
			OutputDir:    out.Dir,
			Status:       string(out.Status),
			Approved:     out.Approved,
			AverageScore: out.Verdict.Average,
			Provider:     s.cfg.Provider.Name(),
			StartedAt:    started.Format(time.RFC3339),
			FinishedAt:   time.Now().UTC().Format(time.RFC3339),
		})
		if saveErr != nil {
			logger.Warn("save run history failed", "error", saveErr)
		} else {
			result.RunID = id
		}
	}

	return nil, result, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, input listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	if s.cfg.Store == nil {
		return nil, listRunsOutput{}, nil
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	recs, err := s.cfg.Store.ListRuns(limit)
	if err != nil {
		return nil, listRunsOutput{}, fmt.Errorf("list runs: %w", err)
	}
	out := listRunsOutput{Runs: make([]runSummary, 0, len(recs))}
	for _, rec := range recs {
		out.Runs = append(out.Runs, summarize(rec))
	}
	return nil, out, nil
}

func (s *Server) handleGetRun(_ context.Context, _ *sdkmcp.CallToolRequest, input getRunInput) (*sdkmcp.CallToolResult, getRunOutput, error) {
	if s.cfg.Store == nil {
		return nil, getRunOutput{}, nil
	}
	rec, err := s.cfg.Store.GetRun(input.ID)
	if err != nil {
		return nil, getRunOutput{}, fmt.Errorf("get run: %w", err)
	}
	if rec == nil {
		return nil, getRunOutput{}, nil
	}
	sum := summarize(rec)
	return nil, getRunOutput{Run: &sum}, nil
}

func summarize(rec *store.RunRecord) runSummary {
	return runSummary{
		ID:           rec.ID,
		Concept:      rec.Concept,
		OutputDir:    rec.OutputDir,
		Status:       rec.Status,
		Approved:     rec.Approved,
		AverageScore: rec.AverageScore,
		StartedAt:    rec.StartedAt,
	}
}
