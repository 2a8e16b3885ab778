// ABOUTME: Version-gated additive schema migrations for the SQLite backend.
// ABOUTME: Columns are only ever added; each step checks for existence first.
package sqlite

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/blopa/musclog-app-sub000/internal/storage"
)

// migrations lists additive schema steps in the app versions that
// introduced them. Each step must be safe to re-run against a database
// created fresh from the current schema.
var migrations = []struct {
	version string
	apply   func(ctx context.Context, d *DB) error
}{
	{
		version: "0.2.0",
		apply: func(ctx context.Context, d *DB) error {
			return d.addColumn(ctx, "workouts", "recurring_on_week", "TEXT")
		},
	},
	{
		version: "0.4.0",
		apply: func(ctx context.Context, d *DB) error {
			if err := d.addColumn(ctx, "workout_events", "workout_volume", "REAL NOT NULL DEFAULT 0"); err != nil {
				return err
			}
			return d.addColumn(ctx, "workouts", "volume_calculation_type", "TEXT NOT NULL DEFAULT 'none'")
		},
	},
	{
		version: "0.6.0",
		apply: func(ctx context.Context, d *DB) error {
			return d.addColumn(ctx, "sets", "superset_name", "TEXT")
		},
	},
	{
		version: "0.8.0",
		apply: func(ctx context.Context, d *DB) error {
			return d.addColumn(ctx, "user_nutrition", "grams_per_serving", "REAL NOT NULL DEFAULT 0")
		},
	},
}

// RunMigrations applies every pending schema step older than appVersion
// and stamps appVersion afterward. Fresh databases already carry the
// full schema, so each step no-ops when its column exists.
func (d *DB) RunMigrations(ctx context.Context, appVersion string) error {
	for _, m := range migrations {
		step := m
		err := storage.RunMigration(ctx, d, step.version, func(ctx context.Context) error {
			log.Debug("applying schema migration", "version", step.version)
			return step.apply(ctx, d)
		})
		if err != nil {
			return fmt.Errorf("migrate to %s: %w", step.version, err)
		}
	}
	if storage.CompareVersions(appVersion, migrations[len(migrations)-1].version) > 0 {
		return storage.RunMigration(ctx, d, appVersion, func(ctx context.Context) error {
			return nil
		})
	}
	return nil
}

// hasColumn reports whether a table already carries a column.
func (d *DB) hasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := d.db.QueryContext(ctx, `PRAGMA table_info(`+table+`)`)
	if err != nil {
		return false, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt any
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("table info %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// addColumn adds a column unless it already exists.
func (d *DB) addColumn(ctx context.Context, table, column, definition string) error {
	exists, err := d.hasColumn(ctx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = d.db.ExecContext(ctx,
		fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition))
	if err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}
