// ABOUTME: CLI command importing external health records (Health Connect style JSON).
// ABOUTME: Records carry dataIds, so re-running an import never duplicates rows.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

// healthImport is the expected shape of an external records file.
type healthImport struct {
	Metrics   []*models.UserMetrics   `json:"metrics"`
	Nutrition []*models.UserNutrition `json:"nutrition"`
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import external health records",
	Long: `Import body metrics and nutrition records exported from a health
platform. Each record's dataId is the idempotency key: importing the
same file twice updates rows in place instead of duplicating them, and
a corrected record (same dataId, new values) overwrites the old one.

FILE FORMAT (JSON):

  {
    "metrics":   [ {"dataId": "...", "date": "...", "weight": 82.5}, ... ],
    "nutrition": [ {"dataId": "...", "name": "...", "calories": 389}, ... ]
  }

EXAMPLES:

  musclog import healthconnect.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var records healthImport
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("parse records: %w", err)
		}

		user, err := currentUser(cmd)
		if err != nil {
			return err
		}

		for _, m := range records.Metrics {
			m.UserID = user.ID
			if m.Source == "" {
				m.Source = models.SourceHealthConnect
			}
			if _, err := repo.AddUserMetrics(cmd.Context(), m); err != nil {
				return fmt.Errorf("import metrics %s: %w", m.DataID, err)
			}
		}
		for _, n := range records.Nutrition {
			n.UserID = user.ID
			if n.Source == "" {
				n.Source = models.SourceHealthConnect
			}
			if _, err := repo.AddUserNutrition(cmd.Context(), n); err != nil {
				return fmt.Errorf("import nutrition %s: %w", n.DataID, err)
			}
		}

		color.Green("✓ Imported %d metric(s), %d nutrition record(s)",
			len(records.Metrics), len(records.Nutrition))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
