// ABOUTME: Tests for workout volume calculation.
// ABOUTME: Covers weighted sets, bodyweight load, and the empty case.
package health

import (
	"testing"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

func TestCalculateVolumeWeighted(t *testing.T) {
	slots := []models.ExerciseWithSets{
		{
			Exercise: models.Exercise{ID: 1, Type: models.ExerciseCompound},
			Sets: []models.Set{
				{Reps: 10, Weight: 60},
				{Reps: 8, Weight: 70},
			},
		},
	}

	got := CalculateVolume(slots, 82.5)
	want := 10*60.0 + 8*70.0
	if got != want {
		t.Errorf("Volume = %f, want %f", got, want)
	}
}

func TestCalculateVolumeBodyweightAddsLoad(t *testing.T) {
	slots := []models.ExerciseWithSets{
		{
			Exercise: models.Exercise{ID: 1, Type: models.ExerciseBodyweight},
			Sets: []models.Set{
				{Reps: 10, Weight: 0},
				{Reps: 10, Weight: 20}, // weighted pull-ups
			},
		},
	}

	got := CalculateVolume(slots, 80)
	want := 10*80.0 + 10*(20.0+80.0)
	if got != want {
		t.Errorf("Volume = %f, want %f", got, want)
	}
}

func TestCalculateVolumeBodyweightUnknown(t *testing.T) {
	slots := []models.ExerciseWithSets{
		{
			Exercise: models.Exercise{ID: 1, Type: models.ExerciseBodyweight},
			Sets:     []models.Set{{Reps: 12, Weight: 0}},
		},
	}

	if got := CalculateVolume(slots, 0); got != 0 {
		t.Errorf("Volume with unknown body weight = %f, want 0", got)
	}
}

func TestCalculateVolumeEmpty(t *testing.T) {
	if got := CalculateVolume(nil, 80); got != 0 {
		t.Errorf("Volume = %f, want 0", got)
	}
}
