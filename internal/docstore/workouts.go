// ABOUTME: Workout template, slot, and composite operations for the document backend.
// ABOUTME: AddWorkoutWithExercises rewrites the whole slot tree in one transaction.
package docstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	badger "github.com/dgraph-io/badger/v3"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

// AddWorkout stores a new workout template and returns its id.
func (s *Store) AddWorkout(ctx context.Context, w *models.Workout) (int64, error) {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	if w.VolumeCalculationType == "" {
		w.VolumeCalculationType = models.VolumeNone
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		id, err := nextID(txn, workoutPrefix)
		if err != nil {
			return err
		}
		w.ID = id
		return putJSON(txn, recordKey(workoutPrefix, id), w)
	})
	if err != nil {
		return 0, fmt.Errorf("add workout: %w", err)
	}
	return w.ID, nil
}

// UpdateWorkout merges fields over the stored record. RecurringOnWeek is
// always taken from the argument so recurrence can be cleared.
func (s *Store) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	existing, err := s.GetWorkoutByID(ctx, w.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update workout: not found: %d", w.ID)
	}

	merged := *existing
	if w.Title != "" {
		merged.Title = w.Title
	}
	if w.Description != "" {
		merged.Description = w.Description
	}
	if w.VolumeCalculationType != "" {
		merged.VolumeCalculationType = w.VolumeCalculationType
	}
	if w.WorkoutExerciseIDs != nil {
		merged.WorkoutExerciseIDs = w.WorkoutExerciseIDs
	}
	merged.RecurringOnWeek = w.RecurringOnWeek

	err = s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, recordKey(workoutPrefix, merged.ID), &merged)
	})
	if err != nil {
		return fmt.Errorf("update workout: %w", err)
	}
	return nil
}

// GetWorkoutByID retrieves an active workout, or nil when not found.
func (s *Store) GetWorkoutByID(ctx context.Context, id int64) (*models.Workout, error) {
	w, err := getRecord[models.Workout](s, workoutPrefix, id)
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	if w == nil || w.DeletedAt != nil {
		return nil, nil
	}
	return w, nil
}

// GetWorkoutByIDWithTrashed retrieves a workout even when soft-deleted,
// so past events can still resolve their template.
func (s *Store) GetWorkoutByIDWithTrashed(ctx context.Context, id int64) (*models.Workout, error) {
	w, err := getRecord[models.Workout](s, workoutPrefix, id)
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return w, nil
}

// ListWorkouts returns all active workout templates ordered by title.
func (s *Store) ListWorkouts(ctx context.Context) ([]*models.Workout, error) {
	all, err := listRecords[models.Workout](s, workoutPrefix)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	var out []*models.Workout
	for _, w := range all {
		if w.DeletedAt == nil {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// DeleteWorkout removes a workout and its slots. Sets survive; they belong
// to exercises, not workouts.
func (s *Store) DeleteWorkout(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var slotIDs []int64
		if err := scanTyped(txn, workoutExPrefix, func(we *models.WorkoutExercise) error {
			if we.WorkoutID == id {
				slotIDs = append(slotIDs, we.ID)
			}
			return nil
		}); err != nil {
			return err
		}
		for _, sid := range slotIDs {
			if err := txn.Delete(recordKey(workoutExPrefix, sid)); err != nil {
				return err
			}
		}
		return txn.Delete(recordKey(workoutPrefix, id))
	})
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return nil
}

// AddWorkoutExercise stores a new workout slot and returns its id.
func (s *Store) AddWorkoutExercise(ctx context.Context, we *models.WorkoutExercise) (int64, error) {
	if we.CreatedAt.IsZero() {
		we.CreatedAt = time.Now()
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		id, err := nextID(txn, workoutExPrefix)
		if err != nil {
			return err
		}
		we.ID = id
		return putJSON(txn, recordKey(workoutExPrefix, id), we)
	})
	if err != nil {
		return 0, fmt.Errorf("add workout exercise: %w", err)
	}
	return we.ID, nil
}

// UpdateWorkoutExercise merges fields over the stored record.
func (s *Store) UpdateWorkoutExercise(ctx context.Context, we *models.WorkoutExercise) error {
	existing, err := s.GetWorkoutExerciseByID(ctx, we.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update workout exercise: not found: %d", we.ID)
	}

	merged := *existing
	if we.WorkoutID != 0 {
		merged.WorkoutID = we.WorkoutID
	}
	if we.ExerciseID != 0 {
		merged.ExerciseID = we.ExerciseID
	}
	if we.SetIDs != nil {
		merged.SetIDs = we.SetIDs
	}
	if we.Order != 0 {
		merged.Order = we.Order
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, recordKey(workoutExPrefix, merged.ID), &merged)
	})
	if err != nil {
		return fmt.Errorf("update workout exercise: %w", err)
	}
	return nil
}

// GetWorkoutExerciseByID retrieves an active workout slot, or nil.
func (s *Store) GetWorkoutExerciseByID(ctx context.Context, id int64) (*models.WorkoutExercise, error) {
	we, err := getRecord[models.WorkoutExercise](s, workoutExPrefix, id)
	if err != nil {
		return nil, fmt.Errorf("get workout exercise: %w", err)
	}
	if we == nil || we.DeletedAt != nil {
		return nil, nil
	}
	return we, nil
}

// ListWorkoutExercisesByWorkout returns a workout's active slots in order.
func (s *Store) ListWorkoutExercisesByWorkout(ctx context.Context, workoutID int64) ([]*models.WorkoutExercise, error) {
	all, err := listRecords[models.WorkoutExercise](s, workoutExPrefix)
	if err != nil {
		return nil, fmt.Errorf("list workout exercises: %w", err)
	}
	var out []*models.WorkoutExercise
	for _, we := range all {
		if we.DeletedAt == nil && we.WorkoutID == workoutID {
			out = append(out, we)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// DeleteWorkoutExercise removes a slot and detaches it from its workout.
func (s *Store) DeleteWorkoutExercise(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var we models.WorkoutExercise
		found, err := getJSON(txn, recordKey(workoutExPrefix, id), &we)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		if err := detachWorkoutExercise(txn, we.WorkoutID, id); err != nil {
			return err
		}
		return txn.Delete(recordKey(workoutExPrefix, id))
	})
	if err != nil {
		return fmt.Errorf("delete workout exercise: %w", err)
	}
	return nil
}

// AddWorkoutWithExercises writes a workout and its full slot list in one
// transaction. With existingID set the workout is updated in place and its
// previous slots are replaced. Slot order follows the argument order and
// the workout's denormalized slot id list is rewritten to match.
func (s *Store) AddWorkoutWithExercises(ctx context.Context, w *models.Workout, children []*models.WorkoutExercise, existingID int64) (int64, error) {
	if w.VolumeCalculationType == "" {
		w.VolumeCalculationType = models.VolumeNone
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if existingID != 0 {
			var existing models.Workout
			found, err := getJSON(txn, recordKey(workoutPrefix, existingID), &existing)
			if err != nil {
				return err
			}
			if !found || existing.DeletedAt != nil {
				return fmt.Errorf("workout not found: %d", existingID)
			}
			w.ID = existingID
			w.CreatedAt = existing.CreatedAt

			var staleIDs []int64
			if err := scanTyped(txn, workoutExPrefix, func(we *models.WorkoutExercise) error {
				if we.WorkoutID == existingID {
					staleIDs = append(staleIDs, we.ID)
				}
				return nil
			}); err != nil {
				return err
			}
			for _, sid := range staleIDs {
				if err := txn.Delete(recordKey(workoutExPrefix, sid)); err != nil {
					return err
				}
			}
		} else {
			id, err := nextID(txn, workoutPrefix)
			if err != nil {
				return err
			}
			w.ID = id
			if w.CreatedAt.IsZero() {
				w.CreatedAt = time.Now()
			}
		}

		childIDs := make([]int64, 0, len(children))
		for i, we := range children {
			id, err := nextID(txn, workoutExPrefix)
			if err != nil {
				return err
			}
			we.ID = id
			we.WorkoutID = w.ID
			we.Order = i
			if we.CreatedAt.IsZero() {
				we.CreatedAt = time.Now()
			}
			if err := putJSON(txn, recordKey(workoutExPrefix, id), we); err != nil {
				return err
			}
			childIDs = append(childIDs, id)
		}

		w.WorkoutExerciseIDs = childIDs
		return putJSON(txn, recordKey(workoutPrefix, w.ID), w)
	})
	if err != nil {
		return 0, fmt.Errorf("add workout with exercises: %w", err)
	}
	return w.ID, nil
}

// GetWorkoutDetails resolves a workout template into exercises and sets.
func (s *Store) GetWorkoutDetails(ctx context.Context, workoutID int64) (*models.WorkoutDetails, error) {
	w, err := s.GetWorkoutByID(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, nil
	}
	exercises, err := s.GetExercisesWithSetsFromWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	return &models.WorkoutDetails{Workout: *w, Exercises: exercises}, nil
}

// GetExercisesWithSetsFromWorkout assembles a workout's slots into
// exercise-plus-sets views. Slots referencing a missing exercise are
// logged and skipped.
func (s *Store) GetExercisesWithSetsFromWorkout(ctx context.Context, workoutID int64) ([]models.ExerciseWithSets, error) {
	slots, err := s.ListWorkoutExercisesByWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	var out []models.ExerciseWithSets
	for _, we := range slots {
		exercise, err := s.GetExerciseByID(ctx, we.ExerciseID)
		if err != nil {
			return nil, err
		}
		if exercise == nil {
			log.Warn("workout references missing exercise",
				"workoutId", workoutID, "exerciseId", we.ExerciseID)
			continue
		}
		sets, err := s.ListSetsByIDs(ctx, we.SetIDs)
		if err != nil {
			return nil, err
		}
		withSets := models.ExerciseWithSets{Exercise: *exercise, Order: we.Order}
		for _, set := range sets {
			withSets.Sets = append(withSets.Sets, *set)
		}
		out = append(out, withSets)
	}
	return out, nil
}
