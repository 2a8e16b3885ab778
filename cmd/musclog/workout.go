// ABOUTME: CLI commands for workout templates and logged workout events.
// ABOUTME: Slot specs build the whole exercise/set tree in one transactional write.
package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blopa/musclog-app-sub000/internal/health"
	"github.com/blopa/musclog-app-sub000/internal/models"
)

var (
	workoutSlots       []string
	workoutDescription string
	workoutRecurring   string
	workoutUpdateID    int64

	logDuration int
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Manage workout templates and log sessions",
}

var workoutAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create or replace a workout template",
	Long: `Create a workout template from slot specs. Each --slot is
"exerciseID:set,set,..." where a set is REPSxWEIGHT with an optional
@NAME superset tag. Sets tagged with the same name across slots are
interleaved during a session.

Examples:
  musclog workout add "Push Day" --slot "1:10x60,8x70,6x80" --slot "2:12x20,12x20"
  musclog workout add "Arms" --slot "3:10x30@A" --slot "4:10x12@A"
  musclog workout add "Push Day" --update 5 --slot "1:5x100"   # rebuild slots`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(workoutSlots) == 0 {
			return fmt.Errorf("at least one --slot is required")
		}

		w := &models.Workout{
			Title:       args[0],
			Description: workoutDescription,
		}
		if workoutRecurring != "" {
			w.RecurringOnWeek = &workoutRecurring
		}

		var children []*models.WorkoutExercise
		setOrder := 0
		for _, spec := range workoutSlots {
			exerciseID, sets, err := parseSlot(spec, &setOrder)
			if err != nil {
				return err
			}

			setIDs := make([]int64, 0, len(sets))
			for _, set := range sets {
				id, err := repo.AddSet(cmd.Context(), set)
				if err != nil {
					return fmt.Errorf("add set: %w", err)
				}
				setIDs = append(setIDs, id)
			}
			children = append(children, &models.WorkoutExercise{
				ExerciseID: exerciseID,
				SetIDs:     setIDs,
			})
		}

		id, err := repo.AddWorkoutWithExercises(cmd.Context(), w, children, workoutUpdateID)
		if err != nil {
			return fmt.Errorf("save workout: %w", err)
		}

		color.Green("✓ Saved %s", w.Title)
		fmt.Printf("  %s\n", color.New(color.Faint).Sprintf("#%d with %d exercise(s)", id, len(children)))
		return nil
	},
}

// parseSlot parses "exerciseID:REPSxWEIGHT[@superset],..." into sets with
// globally increasing set order.
func parseSlot(spec string, setOrder *int) (int64, []*models.Set, error) {
	head, tail, ok := strings.Cut(spec, ":")
	if !ok {
		return 0, nil, fmt.Errorf("invalid slot %q: want \"exerciseID:reps x weight,...\"", spec)
	}
	exerciseID, err := strconv.ParseInt(strings.TrimSpace(head), 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid exercise id in slot %q", spec)
	}

	var sets []*models.Set
	for _, part := range strings.Split(tail, ",") {
		part = strings.TrimSpace(part)
		superset := ""
		if at := strings.Index(part, "@"); at >= 0 {
			superset = part[at+1:]
			part = part[:at]
		}
		repsStr, weightStr, ok := strings.Cut(part, "x")
		if !ok {
			return 0, nil, fmt.Errorf("invalid set %q in slot (want REPSxWEIGHT)", part)
		}
		reps, err := strconv.Atoi(strings.TrimSpace(repsStr))
		if err != nil {
			return 0, nil, fmt.Errorf("invalid reps in set %q", part)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(weightStr), 64)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid weight in set %q", part)
		}

		set := models.NewSet(exerciseID, reps, weight)
		set.SupersetName = superset
		set.SetOrder = *setOrder
		*setOrder++
		sets = append(sets, set)
	}
	if len(sets) == 0 {
		return 0, nil, fmt.Errorf("slot %q has no sets", spec)
	}
	return exerciseID, sets, nil
}

var workoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workout templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		workouts, err := repo.ListWorkouts(cmd.Context())
		if err != nil {
			return fmt.Errorf("list workouts: %w", err)
		}
		if len(workouts) == 0 {
			fmt.Println("No workouts yet.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, w := range workouts {
			recurring := ""
			if w.RecurringOnWeek != nil {
				recurring = faint.Sprintf(" (%s)", *w.RecurringOnWeek)
			}
			fmt.Printf("%s %-24s %d exercise(s)%s\n",
				faint.Sprintf("#%d", w.ID), w.Title, len(w.WorkoutExerciseIDs), recurring)
		}
		return nil
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a workout template with exercises and sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid workout id: %s", args[0])
		}

		details, err := repo.GetWorkoutDetails(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("show workout: %w", err)
		}
		if details == nil {
			return fmt.Errorf("workout not found: %d", id)
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s %s\n", faint.Sprintf("#%d", details.Workout.ID), color.New(color.Bold).Sprint(details.Workout.Title))
		if details.Workout.Description != "" {
			fmt.Printf("  %s\n", details.Workout.Description)
		}
		for _, slot := range details.Exercises {
			fmt.Printf("  %s (%s)\n", slot.Exercise.Name, slot.Exercise.MuscleGroup)
			for _, set := range slot.Sets {
				tag := ""
				if set.SupersetName != "" {
					tag = faint.Sprintf(" @%s", set.SupersetName)
				}
				fmt.Printf("    %dx%.1f%s\n", set.Reps, set.Weight, tag)
			}
		}
		return nil
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a workout template and its slots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid workout id: %s", args[0])
		}
		if err := repo.DeleteWorkout(cmd.Context(), id); err != nil {
			return fmt.Errorf("delete workout: %w", err)
		}
		color.Green("✓ Deleted workout #%d", id)
		return nil
	},
}

var workoutLogCmd = &cobra.Command{
	Use:   "log <id>",
	Short: "Log a completed session of a workout",
	Long: `Log a completed workout event. The exercises and sets performed are
frozen into the event as a JSON snapshot, so later template edits never
rewrite history. Total volume (reps times load, body weight included for
bodyweight exercises) is computed once and cached on the event.`,
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

		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		var bodyWeight float64
		latest, err := repo.GetAllLatestMetricsForUser(cmd.Context(), user.ID)
		if err != nil {
			return err
		}
		if latest != nil {
			bodyWeight = latest.Weight
		}

		snapshot, err := json.Marshal(slots)
		if err != nil {
			return fmt.Errorf("snapshot exercises: %w", err)
		}

		ev := models.NewWorkoutEvent(id, w.Title, time.Now())
		ev.Status = models.EventCompleted
		ev.Duration = logDuration
		ev.ExerciseData = string(snapshot)
		ev.BodyWeight = bodyWeight
		ev.WorkoutVolume = health.CalculateVolume(slots, bodyWeight)
		if latest != nil {
			ev.FatPercentage = latest.FatPercentage
			ev.EatingPhase = string(latest.EatingPhase)
		}

		eventID, err := repo.AddWorkoutEvent(cmd.Context(), ev)
		if err != nil {
			return fmt.Errorf("log workout: %w", err)
		}

		color.Green("✓ Logged %s", w.Title)
		fmt.Printf("  %s\n", color.New(color.Faint).Sprintf("event #%d, volume %.0f", eventID, ev.WorkoutVolume))
		return nil
	},
}

var workoutReplaceCmd = &cobra.Command{
	Use:   "replace <workout-id> <exercise-id> <replacement-id>",
	Short: "Swap an exercise inside a workout without editing the template",
	Long: `Record a replacement: sessions of the workout show the replacement
exercise in place of the original, keeping the original's sets. Pass a
replacement id of 0 to clear.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 3)
		for i, a := range args {
			v, err := strconv.ParseInt(a, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id: %s", a)
			}
			ids[i] = v
		}

		if ids[2] == 0 {
			if err := health.ClearReplacement(cmd.Context(), repo, ids[0], ids[1]); err != nil {
				return fmt.Errorf("clear replacement: %w", err)
			}
			color.Green("✓ Cleared replacement for exercise #%d in workout #%d", ids[1], ids[0])
			return nil
		}

		replacement, err := repo.GetExerciseByID(cmd.Context(), ids[2])
		if err != nil {
			return err
		}
		if replacement == nil {
			return fmt.Errorf("replacement exercise not found: %d", ids[2])
		}

		if err := health.SetReplacement(cmd.Context(), repo, ids[0], ids[1], ids[2]); err != nil {
			return fmt.Errorf("set replacement: %w", err)
		}
		color.Green("✓ Exercise #%d now replaced by %s in workout #%d", ids[1], replacement.Name, ids[0])
		return nil
	},
}

func init() {
	workoutAddCmd.Flags().StringArrayVar(&workoutSlots, "slot", nil, "slot spec: \"exerciseID:10x60,8x70[@superset]\"")
	workoutAddCmd.Flags().StringVar(&workoutDescription, "description", "", "workout description")
	workoutAddCmd.Flags().StringVar(&workoutRecurring, "recurring", "", "weekday the workout recurs on")
	workoutAddCmd.Flags().Int64Var(&workoutUpdateID, "update", 0, "rebuild an existing workout's slots instead of creating")

	workoutLogCmd.Flags().IntVar(&logDuration, "duration", 0, "session duration in minutes")

	workoutCmd.AddCommand(workoutAddCmd)
	workoutCmd.AddCommand(workoutListCmd)
	workoutCmd.AddCommand(workoutShowCmd)
	workoutCmd.AddCommand(workoutDeleteCmd)
	workoutCmd.AddCommand(workoutLogCmd)
	workoutCmd.AddCommand(workoutReplaceCmd)
	rootCmd.AddCommand(workoutCmd)
}
