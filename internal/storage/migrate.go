// ABOUTME: Data migration between storage backends.
// ABOUTME: Walks every table on the source and loads it into the destination.
package storage

import (
	"context"
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Exercises     int
	Sets          int
	Workouts      int
	WorkoutEvents int
	Metrics       int
	Nutrition     int
	Measurements  int
	Settings      int
	Other         int
}

// MigrateData copies all data from src to dst. The destination's existing
// rows are replaced wholesale; ids are preserved so cross-entity references
// stay intact. The destination should be empty or disposable.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	data, err := src.GetAllData(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source data: %w", err)
	}

	if err := dst.ImportData(ctx, data); err != nil {
		return nil, fmt.Errorf("load destination: %w", err)
	}

	return &MigrateSummary{
		Exercises:     len(data.Exercises),
		Sets:          len(data.Sets),
		Workouts:      len(data.Workouts),
		WorkoutEvents: len(data.WorkoutEvents),
		Metrics:       len(data.UserMetrics),
		Nutrition:     len(data.UserNutrition),
		Measurements:  len(data.UserMeasurements),
		Settings:      len(data.Settings),
		Other: len(data.WorkoutExercises) + len(data.Users) + len(data.Chats) +
			len(data.Bios) + len(data.OneRepMaxes) + len(data.Versionings),
	}, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any entries.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
