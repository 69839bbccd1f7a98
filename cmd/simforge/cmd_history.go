package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"simforge/internal/store"
)

var historyFlags struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent generation runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "Max runs to show (0 = all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(historyFlags.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	fmt.Printf("%-5s %-24s %-10s %-9s %-6s %s\n", "ID", "CONCEPT", "STATUS", "APPROVED", "AVG", "OUTPUT")
	for _, r := range runs {
		concept := r.Concept
		if len(concept) > 24 {
			concept = concept[:21] + "..."
		}
		fmt.Printf("%-5d %-24s %-10s %-9v %-6.2f %s\n",
			r.ID, concept, r.Status, r.Approved, r.AverageScore, r.OutputDir)
	}
	return nil
}
