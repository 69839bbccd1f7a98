package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"simforge/internal/config"
	"simforge/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
}

var rootCmd = &cobra.Command{
	Use:   "simforge",
	Short: "Generate single-file HTML educational simulations from concept specs",
	Long: "Simforge runs a six-stage LLM pipeline (plan, create, bugfix, questions,\n" +
		"refine, review) that turns a JSON concept spec into a self-contained,\n" +
		"mobile-first HTML simulation with a quality verdict.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "Config file (YAML or JSON); defaults apply when omitted")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

// loadConfig reads the --config file, or returns defaults, and initializes
// logging from it.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if rootFlags.configPath != "" {
		var err error
		cfg, err = config.LoadFromPath(rootFlags.configPath)
		if err != nil {
			return nil, err
		}
	}
	logging.Init(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
