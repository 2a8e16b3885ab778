// ABOUTME: CLI command that previews a workout session in execution order.
// ABOUTME: Supersets alternate set by set; replacements overlay the template.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blopa/musclog-app-sub000/internal/health"
)

var sessionCmd = &cobra.Command{
	Use:   "session <workout-id>",
	Short: "Preview a workout set by set, in execution order",
	Long: `Print a workout's sets in the order they would be performed.
Sets sharing a superset tag alternate between their exercises (a1, b1,
a2, b2, ...); everything else runs straight through. Exercise
replacements recorded with 'workout replace' are applied.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid workout id: %s", args[0])
		}

		w, err := repo.GetWorkoutByID(cmd.Context(), id)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("workout not found: %d", id)
		}

		slots, err := repo.GetExercisesWithSetsFromWorkout(cmd.Context(), id)
		if err != nil {
			return err
		}
		slots, err = health.ApplyReplacements(cmd.Context(), repo, repo, id, slots)
		if err != nil {
			return err
		}

		steps := health.BuildSession(slots)
		if len(steps) == 0 {
			fmt.Println("Workout has no sets.")
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s\n", color.New(color.Bold).Sprint(w.Title))
		for i, step := range steps {
			tag := ""
			if step.SupersetName != "" {
				tag = faint.Sprintf(" @%s", step.SupersetName)
			}
			replaced := ""
			if step.IsReplacement {
				replaced = color.YellowString(" (replacement)")
			}
			fmt.Printf("%2d. %-28s %dx%.1f%s%s\n",
				i+1, step.Exercise.Name, step.Set.Reps, step.Set.Weight, tag, replaced)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
