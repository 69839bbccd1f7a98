package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"simforge/internal/config"
	"simforge/internal/pipeline"
	"simforge/internal/store"
)

var generateFlags struct {
	output    string
	noHistory bool
}

var generateCmd = &cobra.Command{
	Use:   "generate <spec.json>",
	Short: "Run the full pipeline for one concept spec",
	Long: `Generate runs all six stages for the given concept spec and writes the
run's artifacts (raw responses, stage outputs, final HTML, verdict) into a
timestamped directory. The exit status reflects the review verdict: zero only
when the simulation is approved.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateFlags.output, "output", "o", "", "Output root directory (default from config)")
	f.BoolVar(&generateFlags.noHistory, "no-history", false, "Skip recording the run in the history database")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if generateFlags.output != "" {
		cfg.OutputRoot = generateFlags.output
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

	started := time.Now().UTC()
	out, err := runner.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if !generateFlags.noHistory {
		recordRun(cfg, prov.Name(), started, out)
	}
	printOutcome(out)

	if !out.Approved {
		cmd.SilenceUsage = true
		return fmt.Errorf("simulation not approved (average score %.2f)", out.Verdict.Average)
	}
	return nil
}

func printOutcome(out *pipeline.Outcome) {
	fmt.Printf("Concept:   %s\n", out.Concept)
	fmt.Printf("Output:    %s\n", out.Dir)
	fmt.Printf("Status:    %s\n", out.Status)
	fmt.Printf("Approved:  %v\n", out.Approved)
	if len(out.Verdict.Scores) > 0 {
		fmt.Printf("Average:   %.2f\n", out.Verdict.Average)
		for name, score := range out.Verdict.Scores {
			fmt.Printf("  %-28s %.1f\n", name, score)
		}
	}
	for _, change := range out.Verdict.RequiredChanges {
		fmt.Printf("  change: %s\n", change)
	}
}

// recordRun appends the outcome to the history DB. History failures never
// fail the run.
func recordRun(cfg *config.Config, providerName string, started time.Time, out *pipeline.Outcome) {
	st, err := store.Open(cfg.HistoryDB)
	if err != nil {
		fmt.Printf("warning: history db unavailable: %v\n", err)
		return
	}
	defer st.Close()
	if _, err := st.SaveRun(&store.RunRecord{
		Concept:      out.Concept,
		OutputDir:    out.Dir,
		Status:       string(out.Status),
		Approved:     out.Approved,
		AverageScore: out.Verdict.Average,
		Provider:     providerName,
		StartedAt:    started.Format(time.RFC3339),
		FinishedAt:   time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		fmt.Printf("warning: record run failed: %v\n", err)
	}
}
