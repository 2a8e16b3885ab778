// ABOUTME: CLI commands for listing logged data.
// ABOUTME: Covers metrics history, nutrition, events, and the latest-metrics view.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List logged data",
}

var listMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List body metrics history, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		metrics, err := repo.ListUserMetrics(cmd.Context(), user.ID)
		if err != nil {
			return fmt.Errorf("list metrics: %w", err)
		}
		if len(metrics) == 0 {
			fmt.Println("No metrics logged yet.")
			return nil
		}
		if listLimit > 0 && len(metrics) > listLimit {
			metrics = metrics[:listLimit]
		}

		faint := color.New(color.Faint)
		for _, m := range metrics {
			parts := []string{}
			if m.Weight != 0 {
				parts = append(parts, fmt.Sprintf("weight %.1f", m.Weight))
			}
			if m.Height != 0 {
				parts = append(parts, fmt.Sprintf("height %.1f", m.Height))
			}
			if m.FatPercentage != 0 {
				parts = append(parts, fmt.Sprintf("fat %.1f%%", m.FatPercentage))
			}
			if m.EatingPhase != "" {
				parts = append(parts, string(m.EatingPhase))
			}
			fmt.Printf("%s %s %s\n",
				faint.Sprintf("#%d", m.ID),
				faint.Sprint(m.Date.Format("2006-01-02 15:04")),
				strings.Join(parts, "  "))
		}
		return nil
	},
}

var listNutritionCmd = &cobra.Command{
	Use:   "nutrition",
	Short: "List nutrition entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		entries, err := repo.ListUserNutrition(cmd.Context(), user.ID)
		if err != nil {
			return fmt.Errorf("list nutrition: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No nutrition logged yet.")
			return nil
		}
		if listLimit > 0 && len(entries) > listLimit {
			entries = entries[:listLimit]
		}

		faint := color.New(color.Faint)
		for _, n := range entries {
			meal := ""
			if n.MealType != "" {
				meal = faint.Sprintf(" (%s)", n.MealType)
			}
			fmt.Printf("%s %s %-24s %.0f kcal  P %.1f  C %.1f  F %.1f%s\n",
				faint.Sprintf("#%d", n.ID),
				faint.Sprint(n.Date.Format("2006-01-02")),
				n.Name, n.Calories, n.Protein, n.Carbs, n.Fat, meal)
		}
		return nil
	},
}

var listEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent workout events, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := repo.ListRecentWorkoutEvents(cmd.Context(), listLimit)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No workout events yet.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, ev := range events {
			volume := ""
			if ev.WorkoutVolume != 0 {
				volume = faint.Sprintf("  vol %.0f", ev.WorkoutVolume)
			}
			fmt.Printf("%s %s %-24s %s%s\n",
				faint.Sprintf("#%d", ev.ID),
				faint.Sprint(ev.Date.Format("2006-01-02")),
				ev.Title, ev.Status, volume)
		}
		return nil
	},
}

var listLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the latest known value of each body metric",
	Long: `Show the most recent non-empty value of each body metric field.
Fields resolve independently: a weight-only entry today does not hide
last week's body fat reading.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}
		latest, err := repo.GetAllLatestMetricsForUser(cmd.Context(), user.ID)
		if err != nil {
			return fmt.Errorf("latest metrics: %w", err)
		}
		if latest == nil {
			fmt.Println("No metrics logged yet.")
			return nil
		}

		if latest.Weight != 0 {
			fmt.Printf("weight  %.1f\n", latest.Weight)
		}
		if latest.Height != 0 {
			fmt.Printf("height  %.1f\n", latest.Height)
		}
		if latest.FatPercentage != 0 {
			fmt.Printf("fat     %.1f%%\n", latest.FatPercentage)
		}
		if latest.EatingPhase != "" {
			fmt.Printf("phase   %s\n", latest.EatingPhase)
		}
		fmt.Printf("%s\n", color.New(color.Faint).Sprintf("as of %s", latest.Date.Format("2006-01-02")))
		return nil
	},
}

func init() {
	listCmd.PersistentFlags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")

	listCmd.AddCommand(listMetricsCmd)
	listCmd.AddCommand(listNutritionCmd)
	listCmd.AddCommand(listEventsCmd)
	listCmd.AddCommand(listLatestCmd)
	rootCmd.AddCommand(listCmd)
}
