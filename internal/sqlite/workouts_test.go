// ABOUTME: Tests for workouts, the composite slot builder, and workout events.
// ABOUTME: Covers recurrence clearing, order write-back, and snapshot immutability.
package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

func TestUpdateWorkoutRecurrenceAlwaysFromArgument(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	monday := "monday"
	w := models.NewWorkout("Push")
	w.RecurringOnWeek = &monday
	id, err := db.AddWorkout(ctx, w)
	if err != nil {
		t.Fatalf("AddWorkout failed: %v", err)
	}

	// Title merges like everything else; a nil RecurringOnWeek clears it.
	if err := db.UpdateWorkout(ctx, &models.Workout{ID: id, Description: "push day"}); err != nil {
		t.Fatalf("UpdateWorkout failed: %v", err)
	}

	got, err := db.GetWorkoutByID(ctx, id)
	if err != nil {
		t.Fatalf("GetWorkoutByID failed: %v", err)
	}
	if got.Title != "Push" || got.Description != "push day" {
		t.Errorf("Merge update broke fields: %+v", got)
	}
	if got.RecurringOnWeek != nil {
		t.Errorf("RecurringOnWeek should be cleared, got %v", *got.RecurringOnWeek)
	}

	friday := "friday"
	if err := db.UpdateWorkout(ctx, &models.Workout{ID: id, RecurringOnWeek: &friday}); err != nil {
		t.Fatalf("UpdateWorkout failed: %v", err)
	}
	got, _ = db.GetWorkoutByID(ctx, id)
	if got.RecurringOnWeek == nil || *got.RecurringOnWeek != "friday" {
		t.Errorf("RecurringOnWeek = %v, want friday", got.RecurringOnWeek)
	}
}

func TestAddWorkoutWithExercisesOrderAndWriteBack(t *testing.T) {
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

	links, err := db.ListWorkoutExercisesByWorkout(ctx, wID)
	if err != nil {
		t.Fatalf("ListWorkoutExercisesByWorkout failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("Expected 2 links, got %d", len(links))
	}
	for i, link := range links {
		if link.Order != i {
			t.Errorf("Link %d Order = %d, want %d", link.ID, link.Order, i)
		}
	}

	w, err := db.GetWorkoutByID(ctx, wID)
	if err != nil {
		t.Fatalf("GetWorkoutByID failed: %v", err)
	}
	if len(w.WorkoutExerciseIDs) != 2 ||
		w.WorkoutExerciseIDs[0] != links[0].ID || w.WorkoutExerciseIDs[1] != links[1].ID {
		t.Errorf("Id list not written back in order: %v vs links %+v", w.WorkoutExerciseIDs, links)
	}
}

func TestAddWorkoutWithExercisesRebuild(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	benchID := mustAddExercise(t, db, "Bench Press")
	rowID := mustAddExercise(t, db, "Row")
	benchSet := mustAddSet(t, db, benchID, 10, 60)
	rowSet := mustAddSet(t, db, rowID, 10, 50)

	wID, err := db.AddWorkoutWithExercises(ctx, models.NewWorkout("Upper"), []*models.WorkoutExercise{
		{ExerciseID: benchID, SetIDs: []int64{benchSet}},
	}, 0)
	if err != nil {
		t.Fatalf("AddWorkoutWithExercises failed: %v", err)
	}
	created, _ := db.GetWorkoutByID(ctx, wID)

	// Rebuild with a new child list; children are replaced wholesale and
	// the workout keeps its identity and CreatedAt.
	gotID, err := db.AddWorkoutWithExercises(ctx, &models.Workout{Title: "Upper v2"}, []*models.WorkoutExercise{
		{ExerciseID: rowID, SetIDs: []int64{rowSet}},
	}, wID)
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if gotID != wID {
		t.Errorf("Rebuild returned id %d, want %d", gotID, wID)
	}

	w, err := db.GetWorkoutByID(ctx, wID)
	if err != nil {
		t.Fatalf("GetWorkoutByID failed: %v", err)
	}
	if w.Title != "Upper v2" {
		t.Errorf("Title = %s, want Upper v2", w.Title)
	}
	if !w.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed on rebuild: %v vs %v", w.CreatedAt, created.CreatedAt)
	}

	slots, err := db.GetExercisesWithSetsFromWorkout(ctx, wID)
	if err != nil {
		t.Fatalf("GetExercisesWithSetsFromWorkout failed: %v", err)
	}
	if len(slots) != 1 || slots[0].Exercise.ID != rowID {
		t.Errorf("Expected only the new slot, got %+v", slots)
	}
}

func TestAddWorkoutWithExercisesMissingWorkout(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	exID := mustAddExercise(t, db, "Bench Press")
	setID := mustAddSet(t, db, exID, 10, 60)

	// Rebuilding a nonexistent workout must fail rather than insert
	// children pointing at nothing.
	_, err := db.AddWorkoutWithExercises(ctx, models.NewWorkout("Ghost"), []*models.WorkoutExercise{
		{ExerciseID: exID, SetIDs: []int64{setID}},
	}, 999)
	if err == nil {
		t.Fatal("Expected error for missing workout")
	}

	links, err := db.ListWorkoutExercisesByWorkout(ctx, 999)
	if err != nil {
		t.Fatalf("ListWorkoutExercisesByWorkout failed: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("No children should be inserted, got %+v", links)
	}
}

func TestGetExercisesWithSetsSkipsDangling(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	benchID := mustAddExercise(t, db, "Bench Press")
	benchSet := mustAddSet(t, db, benchID, 10, 60)

	wID, err := db.AddWorkoutWithExercises(ctx, models.NewWorkout("Push"), []*models.WorkoutExercise{
		{ExerciseID: benchID, SetIDs: []int64{benchSet}},
		{ExerciseID: 999, SetIDs: nil},
	}, 0)
	if err != nil {
		t.Fatalf("AddWorkoutWithExercises failed: %v", err)
	}

	slots, err := db.GetExercisesWithSetsFromWorkout(ctx, wID)
	if err != nil {
		t.Fatalf("GetExercisesWithSetsFromWorkout failed: %v", err)
	}
	if len(slots) != 1 || slots[0].Exercise.ID != benchID {
		t.Errorf("Dangling link should be skipped, got %+v", slots)
	}
}

func TestWorkoutDetails(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	exID := mustAddExercise(t, db, "Squat")
	setID := mustAddSet(t, db, exID, 5, 100)
	wID, err := db.AddWorkoutWithExercises(ctx, models.NewWorkout("Legs"), []*models.WorkoutExercise{
		{ExerciseID: exID, SetIDs: []int64{setID}},
	}, 0)
	if err != nil {
		t.Fatalf("AddWorkoutWithExercises failed: %v", err)
	}

	details, err := db.GetWorkoutDetails(ctx, wID)
	if err != nil {
		t.Fatalf("GetWorkoutDetails failed: %v", err)
	}
	if details.Workout.Title != "Legs" || len(details.Exercises) != 1 {
		t.Errorf("Unexpected details: %+v", details)
	}
	if len(details.Exercises[0].Sets) != 1 || details.Exercises[0].Sets[0].Weight != 100 {
		t.Errorf("Unexpected sets: %+v", details.Exercises[0].Sets)
	}

	missing, err := db.GetWorkoutDetails(ctx, 999)
	if err != nil {
		t.Fatalf("GetWorkoutDetails failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil details for missing workout")
	}
}

func TestWorkoutEventDefaultsAndImmutableSnapshot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ev := &models.WorkoutEvent{WorkoutID: 1, Title: "Push", Date: time.Now()}
	id, err := db.AddWorkoutEvent(ctx, ev)
	if err != nil {
		t.Fatalf("AddWorkoutEvent failed: %v", err)
	}

	got, err := db.GetWorkoutEventByID(ctx, id)
	if err != nil {
		t.Fatalf("GetWorkoutEventByID failed: %v", err)
	}
	if got.Status != models.EventScheduled {
		t.Errorf("Status = %s, want scheduled default", got.Status)
	}

	// First update writes the snapshot and completes the event.
	err = db.UpdateWorkoutEvent(ctx, &models.WorkoutEvent{
		ID:           id,
		Status:       models.EventCompleted,
		ExerciseData: `[{"set": 1}]`,
		BodyWeight:   82.5,
	})
	if err != nil {
		t.Fatalf("UpdateWorkoutEvent failed: %v", err)
	}

	// A later update cannot rewrite the snapshot; other fields still merge.
	err = db.UpdateWorkoutEvent(ctx, &models.WorkoutEvent{
		ID:           id,
		ExerciseData: `[{"set": 2}]`,
		Duration:     55,
	})
	if err != nil {
		t.Fatalf("UpdateWorkoutEvent failed: %v", err)
	}

	got, _ = db.GetWorkoutEventByID(ctx, id)
	if got.ExerciseData != `[{"set": 1}]` {
		t.Errorf("ExerciseData was rewritten: %s", got.ExerciseData)
	}
	if got.Duration != 55 || got.Status != models.EventCompleted || got.BodyWeight != 82.5 {
		t.Errorf("Merge update broke fields: %+v", got)
	}
}

func TestListWorkoutEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2025, 3, d, 10, 0, 0, 0, time.UTC) }
	for i := 1; i <= 3; i++ {
		_, err := db.AddWorkoutEvent(ctx, &models.WorkoutEvent{WorkoutID: 1, Title: "Push", Date: day(i)})
		if err != nil {
			t.Fatalf("AddWorkoutEvent failed: %v", err)
		}
	}

	byWorkout, err := db.ListWorkoutEventsByWorkout(ctx, 1)
	if err != nil {
		t.Fatalf("ListWorkoutEventsByWorkout failed: %v", err)
	}
	if len(byWorkout) != 3 || !byWorkout[0].Date.After(byWorkout[2].Date) {
		t.Errorf("Expected 3 events newest first, got %+v", byWorkout)
	}

	// Half-open range: [day 1, day 3) excludes the day 3 event.
	between, err := db.ListWorkoutEventsBetween(ctx, day(1), day(3))
	if err != nil {
		t.Fatalf("ListWorkoutEventsBetween failed: %v", err)
	}
	if len(between) != 2 || !between[0].Date.Before(between[1].Date) {
		t.Errorf("Expected 2 events oldest first, got %+v", between)
	}

	recent, err := db.ListRecentWorkoutEvents(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentWorkoutEvents failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("Expected 2 recent events, got %d", len(recent))
	}

	if err := db.DeleteWorkoutEvent(ctx, byWorkout[0].ID); err != nil {
		t.Fatalf("DeleteWorkoutEvent failed: %v", err)
	}
	byWorkout, _ = db.ListWorkoutEventsByWorkout(ctx, 1)
	if len(byWorkout) != 2 {
		t.Errorf("Expected 2 events after delete, got %d", len(byWorkout))
	}
}

func TestDeleteWorkoutKeepsEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	exID := mustAddExercise(t, db, "Squat")
	setID := mustAddSet(t, db, exID, 5, 100)
	wID, err := db.AddWorkoutWithExercises(ctx, models.NewWorkout("Legs"), []*models.WorkoutExercise{
		{ExerciseID: exID, SetIDs: []int64{setID}},
	}, 0)
	if err != nil {
		t.Fatalf("AddWorkoutWithExercises failed: %v", err)
	}
	evID, err := db.AddWorkoutEvent(ctx, &models.WorkoutEvent{
		WorkoutID: wID, Title: "Legs", Date: time.Now(), ExerciseData: `[]`,
	})
	if err != nil {
		t.Fatalf("AddWorkoutEvent failed: %v", err)
	}

	if err := db.DeleteWorkout(ctx, wID); err != nil {
		t.Fatalf("DeleteWorkout failed: %v", err)
	}

	if w, _ := db.GetWorkoutByID(ctx, wID); w != nil {
		t.Error("Workout should be gone")
	}
	links, _ := db.ListWorkoutExercisesByWorkout(ctx, wID)
	if len(links) != 0 {
		t.Error("Workout links should be gone")
	}
	// History survives the template.
	ev, err := db.GetWorkoutEventByID(ctx, evID)
	if err != nil {
		t.Fatalf("GetWorkoutEventByID failed: %v", err)
	}
	if ev == nil {
		t.Error("Event should survive template deletion")
	}
}
