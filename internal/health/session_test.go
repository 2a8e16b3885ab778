// ABOUTME: Tests for workout session ordering.
// ABOUTME: Covers superset interleaving, unequal lane lengths, and standalone runs.
package health

import (
	"testing"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

func slot(exID int64, name string, sets ...models.Set) models.ExerciseWithSets {
	return models.ExerciseWithSets{
		Exercise: models.Exercise{ID: exID, Name: name, Type: models.ExerciseCompound},
		Sets:     sets,
	}
}

func stepNames(steps []SessionStep) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Exercise.Name
	}
	return out
}

func assertOrder(t *testing.T, steps []SessionStep, want []string) {
	t.Helper()
	got := stepNames(steps)
	if len(got) != len(want) {
		t.Fatalf("Got %d steps %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Step order = %v, want %v", got, want)
		}
	}
}

func TestBuildSessionStandalone(t *testing.T) {
	slots := []models.ExerciseWithSets{
		slot(1, "Squat",
			models.Set{ID: 1, ExerciseID: 1, Reps: 5, SetOrder: 0},
			models.Set{ID: 2, ExerciseID: 1, Reps: 5, SetOrder: 1},
		),
		slot(2, "Deadlift",
			models.Set{ID: 3, ExerciseID: 2, Reps: 3, SetOrder: 2},
		),
	}

	steps := BuildSession(slots)
	assertOrder(t, steps, []string{"Squat", "Squat", "Deadlift"})
	for _, s := range steps {
		if s.SupersetName != "" {
			t.Errorf("Standalone step should have no superset name, got %q", s.SupersetName)
		}
	}
}

func TestBuildSessionSupersetInterleaves(t *testing.T) {
	slots := []models.ExerciseWithSets{
		slot(1, "Bench",
			models.Set{ID: 1, ExerciseID: 1, SupersetName: "A", SetOrder: 0},
			models.Set{ID: 2, ExerciseID: 1, SupersetName: "A", SetOrder: 1},
		),
		slot(2, "Row",
			models.Set{ID: 3, ExerciseID: 2, SupersetName: "A", SetOrder: 2},
			models.Set{ID: 4, ExerciseID: 2, SupersetName: "A", SetOrder: 3},
		),
	}

	steps := BuildSession(slots)
	assertOrder(t, steps, []string{"Bench", "Row", "Bench", "Row"})
	for _, s := range steps {
		if s.SupersetName != "A" {
			t.Errorf("Expected superset name A, got %q", s.SupersetName)
		}
	}
}

func TestBuildSessionSupersetUnequalLengths(t *testing.T) {
	slots := []models.ExerciseWithSets{
		slot(1, "Curl",
			models.Set{ID: 1, ExerciseID: 1, SupersetName: "B", SetOrder: 0},
			models.Set{ID: 2, ExerciseID: 1, SupersetName: "B", SetOrder: 1},
			models.Set{ID: 3, ExerciseID: 1, SupersetName: "B", SetOrder: 2},
		),
		slot(2, "Pushdown",
			models.Set{ID: 4, ExerciseID: 2, SupersetName: "B", SetOrder: 3},
		),
	}

	steps := BuildSession(slots)
	// The longer lane keeps going after the shorter runs out.
	assertOrder(t, steps, []string{"Curl", "Pushdown", "Curl", "Curl"})
}

func TestBuildSessionMixed(t *testing.T) {
	slots := []models.ExerciseWithSets{
		slot(1, "Squat",
			models.Set{ID: 1, ExerciseID: 1, SetOrder: 0},
		),
		slot(2, "Bench",
			models.Set{ID: 2, ExerciseID: 2, SupersetName: "A", SetOrder: 1},
		),
		slot(3, "Row",
			models.Set{ID: 3, ExerciseID: 3, SupersetName: "A", SetOrder: 2},
		),
		slot(4, "Plank",
			models.Set{ID: 4, ExerciseID: 4, SetOrder: 3},
		),
	}

	// Supersets lead, standalone exercises follow in set order.
	steps := BuildSession(slots)
	assertOrder(t, steps, []string{"Bench", "Row", "Squat", "Plank"})
}

func TestBuildSessionSupersetsPrecedeStandalone(t *testing.T) {
	// A standalone exercise with the lowest set order still comes after
	// every superset group.
	slots := []models.ExerciseWithSets{
		slot(1, "Squat",
			models.Set{ID: 1, ExerciseID: 1, SetOrder: 0},
		),
		slot(2, "Bench",
			models.Set{ID: 2, ExerciseID: 2, SupersetName: "A", SetOrder: 1},
		),
		slot(3, "Row",
			models.Set{ID: 3, ExerciseID: 3, SupersetName: "A", SetOrder: 2},
		),
	}

	steps := BuildSession(slots)
	assertOrder(t, steps, []string{"Bench", "Row", "Squat"})
}

func TestBuildSessionGroupsOrderedByEarliestMember(t *testing.T) {
	slots := []models.ExerciseWithSets{
		slot(1, "Curl",
			models.Set{ID: 1, ExerciseID: 1, SupersetName: "B", SetOrder: 2},
		),
		slot(2, "Pushdown",
			models.Set{ID: 2, ExerciseID: 2, SupersetName: "B", SetOrder: 3},
		),
		slot(3, "Bench",
			models.Set{ID: 3, ExerciseID: 3, SupersetName: "A", SetOrder: 0},
		),
		slot(4, "Row",
			models.Set{ID: 4, ExerciseID: 4, SupersetName: "A", SetOrder: 1},
		),
	}

	steps := BuildSession(slots)
	assertOrder(t, steps, []string{"Bench", "Row", "Curl", "Pushdown"})
}

func TestBuildSessionEmpty(t *testing.T) {
	if steps := BuildSession(nil); len(steps) != 0 {
		t.Errorf("Expected no steps, got %d", len(steps))
	}
}

func TestBuildSessionCarriesReplacementFlag(t *testing.T) {
	s := slot(1, "Leg Press", models.Set{ID: 1, ExerciseID: 1, SetOrder: 0})
	s.Exercise.IsReplacement = true

	steps := BuildSession([]models.ExerciseWithSets{s})
	if len(steps) != 1 || !steps[0].IsReplacement {
		t.Error("Expected replacement flag on step")
	}
}
