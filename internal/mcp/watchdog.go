package mcp

import (
	"context"
	"os"
	"time"

	"simforge/internal/logging"
)

// WatchParent monitors for parent process death in a background goroutine and
// calls cancelFn when the parent PID changes (the agent frontend disconnected
// or restarted). This prevents zombie MCP server processes from accumulating.
//
// It must NOT read from stdin — the MCP SDK's StdioTransport owns stdin
// exclusively, and stealing bytes there corrupts the JSON-RPC stream.
func WatchParent(ctx context.Context, cancelFn context.CancelFunc) {
	ppid := os.Getppid()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					logging.New("mcp").Warn("parent process died, shutting down", "was_pid", ppid)
					cancelFn()
					return
				}
			}
		}
	}()
}
