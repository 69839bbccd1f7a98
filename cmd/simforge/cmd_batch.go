package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"simforge/internal/pipeline"
)

var batchFlags struct {
	parallel  int
	output    string
	noHistory bool
}

var batchCmd = &cobra.Command{
	Use:   "batch <spec-dir>",
	Short: "Run the pipeline for every spec JSON in a directory",
	Long: `Batch runs the full pipeline for each *.json spec found in the given
directory, up to --parallel runs at a time. Each run gets its own output
directory; the command reports a per-spec summary at the end.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.IntVarP(&batchFlags.parallel, "parallel", "p", 2, "Number of concurrent pipeline runs")
	f.StringVarP(&batchFlags.output, "output", "o", "", "Output root directory (default from config)")
	f.BoolVar(&batchFlags.noHistory, "no-history", false, "Skip recording runs in the history database")
}

type batchResult struct {
	spec    string
	outcome *pipeline.Outcome
	err     error
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if batchFlags.output != "" {
		cfg.OutputRoot = batchFlags.output
	}

	specs, err := collectSpecs(args[0])
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("no spec JSON files in %s", args[0])
	}

	prov, err := cfg.NewProvider()
	if err != nil {
		return err
	}
	runner, err := pipeline.NewRunner(pipeline.Config{
		Provider:    prov,
		OutputRoot:  cfg.OutputRoot,
		Rule:        cfg.Rule(),
		Generations: cfg.Generations(),
	})
	if err != nil {
		return err
	}

	var mu sync.Mutex
	results := make([]batchResult, 0, len(specs))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(batchFlags.parallel, 1))
	for _, spec := range specs {
		g.Go(func() error {
			started := time.Now().UTC()
			out, runErr := runner.Run(ctx, spec)
			if runErr == nil && !batchFlags.noHistory {
				recordRun(cfg, prov.Name(), started, out)
			}
			mu.Lock()
			results = append(results, batchResult{spec: spec, outcome: out, err: runErr})
			mu.Unlock()
			// A single bad spec must not cancel its siblings.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].spec < results[j].spec })

	approved := 0
	for _, res := range results {
		name := filepath.Base(res.spec)
		switch {
		case res.err != nil:
			fmt.Printf("%-30s FAILED: %v\n", name, res.err)
		case res.outcome.Approved:
			approved++
			fmt.Printf("%-30s approved (%.2f)  %s\n", name, res.outcome.Verdict.Average, res.outcome.Dir)
		default:
			fmt.Printf("%-30s not approved (%.2f)  %s\n", name, res.outcome.Verdict.Average, res.outcome.Dir)
		}
	}
	fmt.Printf("\n%d/%d approved\n", approved, len(results))
	return nil
}

func collectSpecs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read spec dir: %w", err)
	}
	var specs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		specs = append(specs, filepath.Join(dir, e.Name()))
	}
	return specs, nil
}
