package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"simforge/internal/logging"
	mcpserver "simforge/internal/mcp"
	"simforge/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing generate_simulation and
run-history tools, so agent frontends can drive the pipeline directly.

The server monitors for parent process death and self-terminates when the
frontend disconnects, preventing zombie server processes.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prov, err := cfg.NewProvider()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := mcpserver.NewServer(mcpserver.ServerConfig{
		Provider:    prov,
		Store:       st,
		OutputRoot:  cfg.OutputRoot,
		Rule:        cfg.Rule(),
		Generations: cfg.Generations(),
		Version:     version,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting simforge MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
