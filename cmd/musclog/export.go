// ABOUTME: CLI commands for dumping and restoring the whole database.
// ABOUTME: Dumps exclude API-key settings and optionally seal with a passphrase.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blopa/musclog-app-sub000/internal/backup"
)

var (
	exportOutput     string
	exportPassphrase string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the whole database",
	Long: `Export everything (exercises, workouts, events, metrics, nutrition,
settings, chat history) as a JSON dump suitable for restore. Encrypted
fields are decrypted into the dump; seal it with --passphrase if it will
leave the device. Settings holding API keys are always excluded.

EXAMPLES:

  musclog export                              # JSON to stdout
  musclog export -o backup.json               # Save to file
  musclog export -o backup.mlenc --passphrase s3cret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := backup.Dump(cmd.Context(), repo, exportPassphrase)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore the database from a dump",
	Long: `Replace the store's entire contents with a dump created by export.
Ids are preserved, so workouts keep pointing at their exercises and
sets. Encrypted dumps need the passphrase they were sealed with.

EXAMPLES:

  musclog restore backup.json
  musclog restore backup.mlenc --passphrase s3cret`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		if err := backup.Restore(cmd.Context(), repo, data, exportPassphrase); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		color.Green("✓ Restored from %s", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportPassphrase, "passphrase", "", "seal the dump with a passphrase")
	restoreCmd.Flags().StringVar(&exportPassphrase, "passphrase", "", "passphrase the dump was sealed with")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(restoreCmd)
}
