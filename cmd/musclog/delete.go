// ABOUTME: CLI commands for deleting logged entries.
// ABOUTME: Deletes are physical; cascades are handled by the storage layer.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"rm"},
	Short:   "Delete logged entries",
}

var deleteMetricsCmd = &cobra.Command{
	Use:   "metrics <id>",
	Short: "Delete a body metrics entry",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID("metrics", func(cmd *cobra.Command, id int64) error { return repo.DeleteUserMetrics(cmd.Context(), id) }),
}

var deleteNutritionCmd = &cobra.Command{
	Use:   "nutrition <id>",
	Short: "Delete a nutrition entry",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID("nutrition", func(cmd *cobra.Command, id int64) error { return repo.DeleteUserNutrition(cmd.Context(), id) }),
}

var deleteEventCmd = &cobra.Command{
	Use:   "event <id>",
	Short: "Delete a workout event",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID("event", func(cmd *cobra.Command, id int64) error { return repo.DeleteWorkoutEvent(cmd.Context(), id) }),
}

var deleteSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Delete a set, scrubbing it from workout slots",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID("set", func(cmd *cobra.Command, id int64) error { return repo.DeleteSet(cmd.Context(), id) }),
}

func deleteByID(noun string, fn func(*cobra.Command, int64) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s id: %s", noun, args[0])
		}
		if err := fn(cmd, id); err != nil {
			return fmt.Errorf("delete %s: %w", noun, err)
		}
		color.Green("✓ Deleted %s #%d", noun, id)
		return nil
	}
}

func init() {
	deleteCmd.AddCommand(deleteMetricsCmd)
	deleteCmd.AddCommand(deleteNutritionCmd)
	deleteCmd.AddCommand(deleteEventCmd)
	deleteCmd.AddCommand(deleteSetCmd)
	rootCmd.AddCommand(deleteCmd)
}
