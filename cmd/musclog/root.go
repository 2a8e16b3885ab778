// ABOUTME: Root Cobra command for musclog CLI.
// ABOUTME: Opens the configured storage backend before commands and closes it after.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blopa/musclog-app-sub000/internal/config"
	"github.com/blopa/musclog-app-sub000/internal/sqlite"
	"github.com/blopa/musclog-app-sub000/internal/storage"
)

// appVersion gates additive schema migrations at startup.
const appVersion = "0.8.0"

var (
	cfg  *config.Config
	repo storage.Repository
)

var rootCmd = &cobra.Command{
	Use:   "musclog",
	Short: "Personal workout and nutrition tracker",
	Long: `Musclog tracks workouts, body metrics, and nutrition locally.

WHAT IT TRACKS:

  Body        weight, height, body fat, eating phase
  Nutrition   meals with full macro and micro breakdown
  Training    exercises, workout templates, supersets, logged sessions

QUICK START:

  $ musclog add metrics --weight 82.5             # Log body weight
  $ musclog add nutrition "Oats" --calories 389   # Log a meal
  $ musclog exercise add "Bench Press" chest compound
  $ musclog workout add "Push Day" --slot "1:10x60,8x70"
  $ musclog session 1                             # Preview set-by-set order
  $ musclog list latest                           # Latest known body metrics

BACKUP AND RESTORE:

  Dumps are JSON; add --passphrase to seal them with AES-256.
  API keys stored in settings never leave the device.

  $ musclog export -o backup.json --passphrase s3cret
  $ musclog restore backup.json --passphrase s3cret

STORAGE:

  Two interchangeable backends store data under ~/.local/share/musclog:
  "sqlite" (default) and "badger". Body metrics and nutrition values are
  encrypted at rest with a per-device key. Switch with:

  $ musclog migrate badger

MCP INTEGRATION:

  Run 'musclog mcp' to start the Model Context Protocol server for use
  with MCP-compatible AI assistants:

  {
    "mcpServers": {
      "musclog": { "command": "musclog", "args": ["mcp"] }
    }
  }`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}

		if db, ok := repo.(*sqlite.DB); ok {
			if err := db.RunMigrations(cmd.Context(), appVersion); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		} else if err := storage.RunMigration(cmd.Context(), repo, appVersion, nil); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			return repo.Close()
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
