// ABOUTME: CLI commands for logging body metrics, nutrition, and measurements.
// ABOUTME: A --data-id makes the write an idempotent upsert for retried syncs.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

var (
	addDate   string
	addDataID string

	metricsWeight float64
	metricsHeight float64
	metricsFat    float64
	metricsPhase  string

	nutritionCalories float64
	nutritionProtein  float64
	nutritionCarbs    float64
	nutritionFat      float64
	nutritionFiber    float64
	nutritionSugar    float64
	nutritionMeal     string
	nutritionGrams    float64
)

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"a"},
	Short:   "Log body metrics, nutrition, or measurements",
}

var addMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Log a body metrics reading",
	Long: `Log a (possibly partial) body metrics reading. Omitted fields stay
unknown; the latest-metrics view resolves each field independently.

Examples:
  musclog add metrics --weight 82.5
  musclog add metrics --weight 82.1 --fat 18.2 --phase cutting
  musclog add metrics --weight 82.5 --data-id hc-2026-08-30-w  # idempotent`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		m := &models.UserMetrics{
			UserID:        user.ID,
			DataID:        addDataID,
			Weight:        metricsWeight,
			Height:        metricsHeight,
			FatPercentage: metricsFat,
			EatingPhase:   models.EatingPhase(metricsPhase),
		}
		if addDate != "" {
			t, err := parseDate(addDate)
			if err != nil {
				return err
			}
			m.Date = t
		}

		id, err := repo.AddUserMetrics(cmd.Context(), m)
		if err != nil {
			return fmt.Errorf("log metrics: %w", err)
		}

		color.Green("✓ Logged body metrics")
		fmt.Printf("  %s", color.New(color.Faint).Sprintf("#%d %s", id, m.DataID))
		fmt.Println()
		return nil
	},
}

var addNutritionCmd = &cobra.Command{
	Use:   "nutrition <name>",
	Short: "Log a meal or food entry",
	Long: `Log a nutrition entry. Values are stored encrypted at rest.

Examples:
  musclog add nutrition "Oats" --calories 389 --protein 16.9 --carbs 66
  musclog add nutrition "Chicken breast" --protein 31 --meal lunch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		n := &models.UserNutrition{
			UserID:          user.ID,
			DataID:          addDataID,
			Name:            args[0],
			Calories:        nutritionCalories,
			Protein:         nutritionProtein,
			Carbs:           nutritionCarbs,
			Fat:             nutritionFat,
			Fiber:           nutritionFiber,
			Sugar:           nutritionSugar,
			MealType:        nutritionMeal,
			GramsPerServing: nutritionGrams,
		}
		if addDate != "" {
			t, err := parseDate(addDate)
			if err != nil {
				return err
			}
			n.Date = t
		}

		id, err := repo.AddUserNutrition(cmd.Context(), n)
		if err != nil {
			return fmt.Errorf("log nutrition: %w", err)
		}

		color.Green("✓ Logged %s", args[0])
		fmt.Printf("  %s\n", color.New(color.Faint).Sprintf("#%d %.0f kcal", id, n.Calories))
		return nil
	},
}

var addMeasurementCmd = &cobra.Command{
	Use:   "measurement <name> <value> [name value]...",
	Short: "Log body measurements",
	Long: `Log one or more named body measurements for a date.

Examples:
  musclog add measurement waist 84.5
  musclog add measurement neck 39 biceps 36.5`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 || len(args)%2 != 0 {
			return fmt.Errorf("measurements come in name/value pairs")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		values := map[string]float64{}
		for i := 0; i < len(args); i += 2 {
			v, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %s", args[i], args[i+1])
			}
			values[args[i]] = v
		}

		m := &models.UserMeasurements{
			UserID:       user.ID,
			DataID:       addDataID,
			Measurements: values,
		}
		if addDate != "" {
			t, err := parseDate(addDate)
			if err != nil {
				return err
			}
			m.Date = t
		}

		id, err := repo.AddUserMeasurements(cmd.Context(), m)
		if err != nil {
			return fmt.Errorf("log measurements: %w", err)
		}

		color.Green("✓ Logged %d measurement(s)", len(values))
		fmt.Printf("  %s\n", color.New(color.Faint).Sprintf("#%d", id))
		return nil
	},
}

// currentUser returns the active profile, creating a default one on first use.
func currentUser(cmd *cobra.Command) (*models.User, error) {
	user, err := repo.GetLatestUser(cmd.Context())
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{Name: "default"}
	if _, err := repo.AddUser(cmd.Context(), user); err != nil {
		return nil, fmt.Errorf("create default user: %w", err)
	}
	return user, nil
}

func parseDate(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

func init() {
	addCmd.PersistentFlags().StringVar(&addDate, "date", "", "entry date (YYYY-MM-DD [HH:MM])")
	addCmd.PersistentFlags().StringVar(&addDataID, "data-id", "", "external id for idempotent upserts")

	addMetricsCmd.Flags().Float64Var(&metricsWeight, "weight", 0, "body weight (kg)")
	addMetricsCmd.Flags().Float64Var(&metricsHeight, "height", 0, "height (cm)")
	addMetricsCmd.Flags().Float64Var(&metricsFat, "fat", 0, "body fat percentage")
	addMetricsCmd.Flags().StringVar(&metricsPhase, "phase", "", "eating phase: bulking, cutting, maintenance")

	addNutritionCmd.Flags().Float64Var(&nutritionCalories, "calories", 0, "calories (kcal)")
	addNutritionCmd.Flags().Float64Var(&nutritionProtein, "protein", 0, "protein (g)")
	addNutritionCmd.Flags().Float64Var(&nutritionCarbs, "carbs", 0, "carbohydrate (g)")
	addNutritionCmd.Flags().Float64Var(&nutritionFat, "fat", 0, "fat (g)")
	addNutritionCmd.Flags().Float64Var(&nutritionFiber, "fiber", 0, "fiber (g)")
	addNutritionCmd.Flags().Float64Var(&nutritionSugar, "sugar", 0, "sugar (g)")
	addNutritionCmd.Flags().StringVar(&nutritionMeal, "meal", "", "meal type: breakfast, lunch, dinner, snack")
	addNutritionCmd.Flags().Float64Var(&nutritionGrams, "grams", 0, "grams per serving")

	addCmd.AddCommand(addMetricsCmd)
	addCmd.AddCommand(addNutritionCmd)
	addCmd.AddCommand(addMeasurementCmd)
	rootCmd.AddCommand(addCmd)
}
