// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server over the active storage backend.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blopa/musclog-app-sub000/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants to read and write your training data through a
standardized protocol. The server communicates via stdin/stdout and uses
the active storage backend.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "musclog": {
        "command": "musclog",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  log_metrics       Record body metrics (weight, height, fat, phase)
  log_nutrition     Record a meal or food entry
  latest_metrics    Latest known value of each metric field
  list_nutrition    Recent nutrition entries
  list_workouts     Workout templates
  workout_session   A workout's sets in execution order
  save_chat         Append to the conversation log
  recent_chats      Tail of the conversation log

AVAILABLE RESOURCES:

  musclog://summary    Latest metrics plus recent events
  musclog://today      Today's metrics and nutrition
  musclog://workouts   Workout templates with slots`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
