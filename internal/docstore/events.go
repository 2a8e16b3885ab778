// ABOUTME: WorkoutEvent operations for the document backend.
// ABOUTME: ExerciseData is a frozen snapshot; updates never overwrite it with empty.
package docstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

// AddWorkoutEvent stores a new event, defaulting to scheduled status.
func (s *Store) AddWorkoutEvent(ctx context.Context, ev *models.WorkoutEvent) (int64, error) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	if ev.Status == "" {
		ev.Status = models.EventScheduled
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		id, err := nextID(txn, eventPrefix)
		if err != nil {
			return err
		}
		ev.ID = id
		return putJSON(txn, recordKey(eventPrefix, id), ev)
	})
	if err != nil {
		return 0, fmt.Errorf("add workout event: %w", err)
	}
	return ev.ID, nil
}

// UpdateWorkoutEvent merges fields over the stored record. A stored
// ExerciseData snapshot is kept when the argument omits one.
func (s *Store) UpdateWorkoutEvent(ctx context.Context, ev *models.WorkoutEvent) error {
	existing, err := s.GetWorkoutEventByID(ctx, ev.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update workout event: not found: %d", ev.ID)
	}

	merged := *existing
	if ev.WorkoutID != 0 {
		merged.WorkoutID = ev.WorkoutID
	}
	if ev.Title != "" {
		merged.Title = ev.Title
	}
	if !ev.Date.IsZero() {
		merged.Date = ev.Date
	}
	if ev.Duration != 0 {
		merged.Duration = ev.Duration
	}
	if ev.Status != "" {
		merged.Status = ev.Status
	}
	if ev.ExerciseData != "" {
		merged.ExerciseData = ev.ExerciseData
	}
	if ev.BodyWeight != 0 {
		merged.BodyWeight = ev.BodyWeight
	}
	if ev.FatPercentage != 0 {
		merged.FatPercentage = ev.FatPercentage
	}
	if ev.EatingPhase != "" {
		merged.EatingPhase = ev.EatingPhase
	}
	if ev.Calories != 0 {
		merged.Calories = ev.Calories
	}
	if ev.Protein != 0 {
		merged.Protein = ev.Protein
	}
	if ev.Carbs != 0 {
		merged.Carbs = ev.Carbs
	}
	if ev.Fat != 0 {
		merged.Fat = ev.Fat
	}
	if ev.WorkoutVolume != 0 {
		merged.WorkoutVolume = ev.WorkoutVolume
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, recordKey(eventPrefix, merged.ID), &merged)
	})
	if err != nil {
		return fmt.Errorf("update workout event: %w", err)
	}
	return nil
}

// GetWorkoutEventByID retrieves an active event, or nil when not found.
func (s *Store) GetWorkoutEventByID(ctx context.Context, id int64) (*models.WorkoutEvent, error) {
	ev, err := getRecord[models.WorkoutEvent](s, eventPrefix, id)
	if err != nil {
		return nil, fmt.Errorf("get workout event: %w", err)
	}
	if ev == nil || ev.DeletedAt != nil {
		return nil, nil
	}
	return ev, nil
}

// ListWorkoutEventsByWorkout returns a workout's active events, newest first.
func (s *Store) ListWorkoutEventsByWorkout(ctx context.Context, workoutID int64) ([]*models.WorkoutEvent, error) {
	events, err := s.activeEvents()
	if err != nil {
		return nil, err
	}
	var out []*models.WorkoutEvent
	for _, ev := range events {
		if ev.WorkoutID == workoutID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// ListWorkoutEventsBetween returns active events in [start, end), oldest first.
func (s *Store) ListWorkoutEventsBetween(ctx context.Context, start, end time.Time) ([]*models.WorkoutEvent, error) {
	events, err := s.activeEvents()
	if err != nil {
		return nil, err
	}
	var out []*models.WorkoutEvent
	for _, ev := range events {
		if !ev.Date.Before(start) && ev.Date.Before(end) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ListRecentWorkoutEvents returns the most recent active events, newest first.
func (s *Store) ListRecentWorkoutEvents(ctx context.Context, limit int) ([]*models.WorkoutEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	events, err := s.activeEvents()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.After(events[j].Date) })
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// DeleteWorkoutEvent removes an event.
func (s *Store) DeleteWorkoutEvent(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(eventPrefix, id))
	})
	if err != nil {
		return fmt.Errorf("delete workout event: %w", err)
	}
	return nil
}

func (s *Store) activeEvents() ([]*models.WorkoutEvent, error) {
	all, err := listRecords[models.WorkoutEvent](s, eventPrefix)
	if err != nil {
		return nil, fmt.Errorf("list workout events: %w", err)
	}
	var out []*models.WorkoutEvent
	for _, ev := range all {
		if ev.DeletedAt == nil {
			out = append(out, ev)
		}
	}
	return out, nil
}
