// ABOUTME: CLI commands for managing the exercise catalog.
// ABOUTME: Includes one-rep max tracking per exercise.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

var exerciseDescription string

var exerciseCmd = &cobra.Command{
	Use:     "exercise",
	Aliases: []string{"ex"},
	Short:   "Manage the exercise catalog",
}

var exerciseAddCmd = &cobra.Command{
	Use:   "add <name> <muscle-group> <type>",
	Short: "Add an exercise",
	Long: `Add an exercise to the catalog.

Types: compound, machine, isolation, bodyweight

Examples:
  musclog exercise add "Bench Press" chest compound
  musclog exercise add "Pull Up" back bodyweight`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !models.IsValidExerciseType(args[2]) {
			return fmt.Errorf("unknown exercise type: %s (use compound, machine, isolation, or bodyweight)", args[2])
		}

		e := models.NewExercise(args[0], args[1], models.ExerciseType(args[2]))
		e.Description = exerciseDescription
		id, err := repo.AddExercise(cmd.Context(), e)
		if err != nil {
			return fmt.Errorf("add exercise: %w", err)
		}

		color.Green("✓ Added %s", e.Name)
		fmt.Printf("  %s\n", color.New(color.Faint).Sprintf("#%d %s/%s", id, e.MuscleGroup, e.Type))
		return nil
	},
}

var exerciseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exercises",
	RunE: func(cmd *cobra.Command, args []string) error {
		exercises, err := repo.ListExercises(cmd.Context())
		if err != nil {
			return fmt.Errorf("list exercises: %w", err)
		}
		if len(exercises) == 0 {
			fmt.Println("No exercises yet.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, e := range exercises {
			fmt.Printf("%s %-28s %s %s\n",
				faint.Sprintf("#%d", e.ID), e.Name, e.MuscleGroup, faint.Sprint(e.Type))
		}
		return nil
	},
}

var exerciseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an exercise and everything referencing it",
	Long: `Delete an exercise. Its sets are removed, and every workout slot
referencing it is detached from its workout and deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid exercise id: %s", args[0])
		}
		if err := repo.DeleteExercise(cmd.Context(), id); err != nil {
			return fmt.Errorf("delete exercise: %w", err)
		}
		color.Green("✓ Deleted exercise #%d", id)
		return nil
	},
}

var exerciseOrmCmd = &cobra.Command{
	Use:   "orm <exercise-id> [weight]",
	Short: "Show or set an exercise's one-rep max",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exerciseID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid exercise id: %s", args[0])
		}

		if len(args) == 2 {
			weight, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid weight: %s", args[1])
			}
			if _, err := repo.SetOneRepMax(cmd.Context(), exerciseID, weight); err != nil {
				return fmt.Errorf("set one rep max: %w", err)
			}
			color.Green("✓ One-rep max for exercise #%d set to %.1f", exerciseID, weight)
			return nil
		}

		orm, err := repo.GetOneRepMax(cmd.Context(), exerciseID)
		if err != nil {
			return fmt.Errorf("get one rep max: %w", err)
		}
		if orm == nil {
			fmt.Println("No one-rep max recorded.")
			return nil
		}
		fmt.Printf("%.1f\n", orm.Weight)
		return nil
	},
}

func init() {
	exerciseAddCmd.Flags().StringVar(&exerciseDescription, "description", "", "exercise description")

	exerciseCmd.AddCommand(exerciseAddCmd)
	exerciseCmd.AddCommand(exerciseListCmd)
	exerciseCmd.AddCommand(exerciseDeleteCmd)
	exerciseCmd.AddCommand(exerciseOrmCmd)
	rootCmd.AddCommand(exerciseCmd)
}
