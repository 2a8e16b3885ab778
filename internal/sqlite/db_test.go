// ABOUTME: Tests for SQLite storage: exercises, sets, and delete cascades.
// ABOUTME: Shared setupTestDB helper lives here.
package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
	"github.com/blopa/musclog-app-sub000/internal/models"
)

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dir := t.TempDir()
	codec, err := crypto.OpenFieldCodec(dir)
	if err != nil {
		t.Fatalf("Failed to open field codec: %v", err)
	}

	db, err := Open(filepath.Join(dir, "musclog.db"), codec)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func mustAddExercise(t *testing.T, db *DB, name string) int64 {
	t.Helper()
	id, err := db.AddExercise(context.Background(), models.NewExercise(name, "chest", models.ExerciseCompound))
	if err != nil {
		t.Fatalf("AddExercise failed: %v", err)
	}
	return id
}

func mustAddSet(t *testing.T, db *DB, exerciseID int64, reps int, weight float64) int64 {
	t.Helper()
	id, err := db.AddSet(context.Background(), models.NewSet(exerciseID, reps, weight))
	if err != nil {
		t.Fatalf("AddSet failed: %v", err)
	}
	return id
}

func TestExerciseCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id := mustAddExercise(t, db, "Bench Press")

	e, err := db.GetExerciseByID(ctx, id)
	if err != nil {
		t.Fatalf("GetExerciseByID failed: %v", err)
	}
	if e == nil || e.Name != "Bench Press" || e.Type != models.ExerciseCompound {
		t.Errorf("Unexpected exercise: %+v", e)
	}

	// Merge update: empty fields keep stored values.
	if err := db.UpdateExercise(ctx, &models.Exercise{ID: id, Description: "barbell"}); err != nil {
		t.Fatalf("UpdateExercise failed: %v", err)
	}
	e, _ = db.GetExerciseByID(ctx, id)
	if e.Name != "Bench Press" || e.Description != "barbell" {
		t.Errorf("Merge update broke fields: %+v", e)
	}

	list, err := db.ListExercises(ctx)
	if err != nil {
		t.Fatalf("ListExercises failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 exercise, got %d", len(list))
	}

	if err := db.DeleteExercise(ctx, id); err != nil {
		t.Fatalf("DeleteExercise failed: %v", err)
	}
	e, err = db.GetExerciseByID(ctx, id)
	if err != nil {
		t.Fatalf("GetExerciseByID failed: %v", err)
	}
	if e != nil {
		t.Error("Expected nil after delete")
	}
}

func TestGetExerciseNotFound(t *testing.T) {
	db := setupTestDB(t)

	e, err := db.GetExerciseByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if e != nil {
		t.Errorf("Expected nil for missing exercise, got %+v", e)
	}
}

func TestDeleteExerciseCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	benchID := mustAddExercise(t, db, "Bench Press")
	rowID := mustAddExercise(t, db, "Row")
	benchSet := mustAddSet(t, db, benchID, 10, 60)
	rowSet := mustAddSet(t, db, rowID, 10, 50)

	wID, err := db.AddWorkoutWithExercises(ctx, models.NewWorkout("Upper"), []*models.WorkoutExercise{
		{ExerciseID: benchID, SetIDs: []int64{benchSet}},
		{ExerciseID: rowID, SetIDs: []int64{rowSet}},
	}, 0)
	if err != nil {
		t.Fatalf("AddWorkoutWithExercises failed: %v", err)
	}

	if _, err := db.SetOneRepMax(ctx, benchID, 100); err != nil {
		t.Fatalf("SetOneRepMax failed: %v", err)
	}

	if err := db.DeleteExercise(ctx, benchID); err != nil {
		t.Fatalf("DeleteExercise failed: %v", err)
	}

	// The exercise's sets are gone.
	if s, _ := db.GetSetByID(ctx, benchSet); s != nil {
		t.Error("Expected bench set to be deleted")
	}
	// Its one-rep max is gone.
	if orm, _ := db.GetOneRepMax(ctx, benchID); orm != nil {
		t.Error("Expected one-rep max to be deleted")
	}
	// The workout's id list only references the surviving link.
	w, err := db.GetWorkoutByID(ctx, wID)
	if err != nil {
		t.Fatalf("GetWorkoutByID failed: %v", err)
	}
	if len(w.WorkoutExerciseIDs) != 1 {
		t.Fatalf("Expected 1 remaining link id, got %v", w.WorkoutExerciseIDs)
	}
	links, err := db.ListWorkoutExercisesByWorkout(ctx, wID)
	if err != nil {
		t.Fatalf("ListWorkoutExercisesByWorkout failed: %v", err)
	}
	if len(links) != 1 || links[0].ExerciseID != rowID {
		t.Errorf("Expected only the row link to survive, got %+v", links)
	}
	// The untouched exercise's set survives.
	if s, _ := db.GetSetByID(ctx, rowSet); s == nil {
		t.Error("Row set should survive an unrelated cascade")
	}
}

func TestSetUpdateSemantics(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	exID := mustAddExercise(t, db, "Bench Press")
	s := models.NewSet(exID, 10, 60)
	s.IsDropSet = true
	s.SupersetName = "A"
	id, err := db.AddSet(ctx, s)
	if err != nil {
		t.Fatalf("AddSet failed: %v", err)
	}

	// Zero reps/weight keep stored values; IsDropSet and SupersetName come
	// from the argument, so omitting them clears both.
	if err := db.UpdateSet(ctx, &models.Set{ID: id, Weight: 65}); err != nil {
		t.Fatalf("UpdateSet failed: %v", err)
	}

	got, err := db.GetSetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetSetByID failed: %v", err)
	}
	if got.Reps != 10 {
		t.Errorf("Reps = %d, want 10 (kept)", got.Reps)
	}
	if got.Weight != 65 {
		t.Errorf("Weight = %f, want 65", got.Weight)
	}
	if got.IsDropSet {
		t.Error("IsDropSet should be cleared when omitted")
	}
	if got.SupersetName != "" {
		t.Errorf("SupersetName should be cleared, got %q", got.SupersetName)
	}
}

func TestListSetsByIDsPreservesOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	exID := mustAddExercise(t, db, "Bench Press")
	a := mustAddSet(t, db, exID, 10, 60)
	b := mustAddSet(t, db, exID, 8, 70)
	c := mustAddSet(t, db, exID, 6, 80)

	sets, err := db.ListSetsByIDs(ctx, []int64{c, a, 999, b})
	if err != nil {
		t.Fatalf("ListSetsByIDs failed: %v", err)
	}
	if len(sets) != 3 {
		t.Fatalf("Expected 3 sets (missing id skipped), got %d", len(sets))
	}
	if sets[0].ID != c || sets[1].ID != a || sets[2].ID != b {
		t.Errorf("Order not preserved: %d, %d, %d", sets[0].ID, sets[1].ID, sets[2].ID)
	}
}

func TestDeleteSetScrubsWorkoutSlots(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	exID := mustAddExercise(t, db, "Bench Press")
	s1 := mustAddSet(t, db, exID, 10, 60)
	s2 := mustAddSet(t, db, exID, 8, 70)

	wID, err := db.AddWorkoutWithExercises(ctx, models.NewWorkout("Push"), []*models.WorkoutExercise{
		{ExerciseID: exID, SetIDs: []int64{s1, s2}},
	}, 0)
	if err != nil {
		t.Fatalf("AddWorkoutWithExercises failed: %v", err)
	}

	if err := db.DeleteSet(ctx, s1); err != nil {
		t.Fatalf("DeleteSet failed: %v", err)
	}

	links, err := db.ListWorkoutExercisesByWorkout(ctx, wID)
	if err != nil {
		t.Fatalf("ListWorkoutExercisesByWorkout failed: %v", err)
	}
	if len(links) != 1 || len(links[0].SetIDs) != 1 || links[0].SetIDs[0] != s2 {
		t.Errorf("Set id not scrubbed from slot: %+v", links)
	}

	// Deleting the last set removes the emptied slot and rewrites the
	// workout's id list.
	if err := db.DeleteSet(ctx, s2); err != nil {
		t.Fatalf("DeleteSet failed: %v", err)
	}
	links, err = db.ListWorkoutExercisesByWorkout(ctx, wID)
	if err != nil {
		t.Fatalf("ListWorkoutExercisesByWorkout failed: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("Emptied slot should be deleted, got %+v", links)
	}
	w, err := db.GetWorkoutByID(ctx, wID)
	if err != nil {
		t.Fatalf("GetWorkoutByID failed: %v", err)
	}
	if len(w.WorkoutExerciseIDs) != 0 {
		t.Errorf("Workout id list should be empty, got %v", w.WorkoutExerciseIDs)
	}
}

func TestSoftDeletedRowsAreHidden(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	w := models.NewWorkout("Old Plan")
	now := w.CreatedAt
	w.DeletedAt = &now
	id, err := db.AddWorkout(ctx, w)
	if err != nil {
		t.Fatalf("AddWorkout failed: %v", err)
	}

	got, err := db.GetWorkoutByID(ctx, id)
	if err != nil {
		t.Fatalf("GetWorkoutByID failed: %v", err)
	}
	if got != nil {
		t.Error("Soft-deleted workout should be invisible to plain reads")
	}

	trashed, err := db.GetWorkoutByIDWithTrashed(ctx, id)
	if err != nil {
		t.Fatalf("GetWorkoutByIDWithTrashed failed: %v", err)
	}
	if trashed == nil || trashed.Title != "Old Plan" {
		t.Errorf("WithTrashed should return the row, got %+v", trashed)
	}

	list, err := db.ListWorkouts(ctx)
	if err != nil {
		t.Fatalf("ListWorkouts failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Soft-deleted workout must not be listed, got %d", len(list))
	}
}
