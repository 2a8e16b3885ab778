// ABOUTME: Tests for per-field latest metrics aggregation.
// ABOUTME: Covers field mixing across rows, early exit, and the empty case.
package health

import (
	"testing"
	"time"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

func TestLatestMetricsMixesRows(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

	// Newest first, fields scattered across readings.
	history := []*models.UserMetrics{
		{ID: 5, Date: day(5), Weight: 82.5},
		{ID: 4, Date: day(4), FatPercentage: 15},
		{ID: 3, Date: day(3), Weight: 84, Height: 180},
		{ID: 2, Date: day(2), EatingPhase: models.EatingCutting},
	}

	latest := LatestMetrics(7, history)
	if latest == nil {
		t.Fatal("Expected non-nil result")
	}
	if latest.UserID != 7 {
		t.Errorf("UserID = %d, want 7", latest.UserID)
	}
	if latest.Weight != 82.5 {
		t.Errorf("Weight = %f, want 82.5 (newest wins)", latest.Weight)
	}
	if latest.Height != 180 {
		t.Errorf("Height = %f, want 180 (from older row)", latest.Height)
	}
	if latest.FatPercentage != 15 {
		t.Errorf("FatPercentage = %f, want 15", latest.FatPercentage)
	}
	if latest.EatingPhase != models.EatingCutting {
		t.Errorf("EatingPhase = %s, want cutting", latest.EatingPhase)
	}
	if latest.LatestID != 5 {
		t.Errorf("LatestID = %d, want 5 (highest contributing id)", latest.LatestID)
	}
	if !latest.Date.Equal(day(5)) {
		t.Errorf("Date = %v, want %v", latest.Date, day(5))
	}
}

func TestLatestMetricsEmptyHistory(t *testing.T) {
	if got := LatestMetrics(1, nil); got != nil {
		t.Errorf("Expected nil for empty history, got %+v", got)
	}
}

func TestLatestMetricsAllEmptyRows(t *testing.T) {
	history := []*models.UserMetrics{
		{ID: 2},
		{ID: 1},
	}
	if got := LatestMetrics(1, history); got != nil {
		t.Errorf("Expected nil when no field was ever recorded, got %+v", got)
	}
}

func TestLatestMetricsSingleRow(t *testing.T) {
	history := []*models.UserMetrics{
		{ID: 1, Weight: 80, Height: 175, FatPercentage: 18, EatingPhase: models.EatingBulking},
	}
	latest := LatestMetrics(1, history)
	if latest == nil {
		t.Fatal("Expected non-nil result")
	}
	if latest.LatestID != 1 || latest.Weight != 80 || latest.Height != 175 {
		t.Errorf("Unexpected result: %+v", latest)
	}
}

func TestLatestMetricsOlderRowsDoNotOverwrite(t *testing.T) {
	history := []*models.UserMetrics{
		{ID: 2, Weight: 82},
		{ID: 1, Weight: 90, Height: 180},
	}
	latest := LatestMetrics(1, history)
	if latest.Weight != 82 {
		t.Errorf("Weight = %f, want 82 (older reading must not overwrite)", latest.Weight)
	}
	if latest.Height != 180 {
		t.Errorf("Height = %f, want 180", latest.Height)
	}
	if latest.LatestID != 2 {
		t.Errorf("LatestID = %d, want 2", latest.LatestID)
	}
}
