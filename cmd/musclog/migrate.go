// ABOUTME: CLI command for copying all data to the other storage backend.
// ABOUTME: Optionally flips the configured backend after a successful copy.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blopa/musclog-app-sub000/internal/storage"
)

var migrateSwitch bool

var migrateCmd = &cobra.Command{
	Use:       "migrate <target-backend>",
	Short:     "Copy all data to the other storage backend",
	ValidArgs: []string{"sqlite", "badger"},
	Long: `Copy the full store into the other backend. Ids are preserved, so
workouts keep their exercise and set references. The target's existing
data is replaced wholesale.

USAGE:

  musclog migrate badger             # Copy sqlite data into badger
  musclog migrate sqlite --switch    # Copy back and make sqlite active`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if target == cfg.GetBackend() {
			return fmt.Errorf("%q is already the active backend", target)
		}

		dst, err := cfg.OpenBackend(target)
		if err != nil {
			return fmt.Errorf("open %s backend: %w", target, err)
		}
		defer func() { _ = dst.Close() }()

		summary, err := storage.MigrateData(cmd.Context(), repo, dst)
		if err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}

		color.Green("✓ Migrated to %s", target)
		fmt.Printf("  exercises %d, sets %d, workouts %d, events %d\n",
			summary.Exercises, summary.Sets, summary.Workouts, summary.WorkoutEvents)
		fmt.Printf("  metrics %d, nutrition %d, measurements %d, settings %d\n",
			summary.Metrics, summary.Nutrition, summary.Measurements, summary.Settings)

		if migrateSwitch {
			cfg.Backend = target
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			color.Green("✓ Active backend is now %s", target)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSwitch, "switch", false, "make the target the active backend")
	rootCmd.AddCommand(migrateCmd)
}
