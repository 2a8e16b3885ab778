// ABOUTME: Exercise and Set operations for the document backend.
// ABOUTME: Deleting an exercise or set cascades through workout slot id lists.
package docstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

// AddExercise stores a new exercise and returns its id.
func (s *Store) AddExercise(ctx context.Context, e *models.Exercise) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		id, err := nextID(txn, exercisePrefix)
		if err != nil {
			return err
		}
		e.ID = id
		return putJSON(txn, recordKey(exercisePrefix, id), e)
	})
	if err != nil {
		return 0, fmt.Errorf("add exercise: %w", err)
	}
	return e.ID, nil
}

// UpdateExercise merges the supplied fields over the stored record.
func (s *Store) UpdateExercise(ctx context.Context, e *models.Exercise) error {
	existing, err := s.GetExerciseByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update exercise: not found: %d", e.ID)
	}

	merged := *existing
	if e.Name != "" {
		merged.Name = e.Name
	}
	if e.MuscleGroup != "" {
		merged.MuscleGroup = e.MuscleGroup
	}
	if e.Type != "" {
		merged.Type = e.Type
	}
	if e.Description != "" {
		merged.Description = e.Description
	}
	if e.Image != "" {
		merged.Image = e.Image
	}
	merged.IsReplacement = false

	err = s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, recordKey(exercisePrefix, merged.ID), &merged)
	})
	if err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}
	return nil
}

// GetExerciseByID retrieves an active exercise, or nil when not found.
func (s *Store) GetExerciseByID(ctx context.Context, id int64) (*models.Exercise, error) {
	e, err := getRecord[models.Exercise](s, exercisePrefix, id)
	if err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	if e == nil || e.DeletedAt != nil {
		return nil, nil
	}
	return e, nil
}

// ListExercises returns all active exercises ordered by name.
func (s *Store) ListExercises(ctx context.Context) ([]*models.Exercise, error) {
	all, err := listRecords[models.Exercise](s, exercisePrefix)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	var out []*models.Exercise
	for _, e := range all {
		if e.DeletedAt == nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteExercise removes an exercise along with its sets, workout slots,
// and one-rep max, rewriting each affected workout's slot id list.
func (s *Store) DeleteExercise(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var links []*models.WorkoutExercise
		if err := scanTyped(txn, workoutExPrefix, func(we *models.WorkoutExercise) error {
			if we.ExerciseID == id {
				links = append(links, we)
			}
			return nil
		}); err != nil {
			return err
		}

		for _, we := range links {
			if err := detachWorkoutExercise(txn, we.WorkoutID, we.ID); err != nil {
				return err
			}
			if err := txn.Delete(recordKey(workoutExPrefix, we.ID)); err != nil {
				return err
			}
		}

		var setIDs []int64
		if err := scanTyped(txn, setPrefix, func(set *models.Set) error {
			if set.ExerciseID == id {
				setIDs = append(setIDs, set.ID)
			}
			return nil
		}); err != nil {
			return err
		}
		for _, sid := range setIDs {
			if err := txn.Delete(recordKey(setPrefix, sid)); err != nil {
				return err
			}
		}

		var ormIDs []int64
		if err := scanTyped(txn, oneRepMaxPrefix, func(orm *models.OneRepMax) error {
			if orm.ExerciseID == id {
				ormIDs = append(ormIDs, orm.ID)
			}
			return nil
		}); err != nil {
			return err
		}
		for _, oid := range ormIDs {
			if err := txn.Delete(recordKey(oneRepMaxPrefix, oid)); err != nil {
				return err
			}
		}

		return txn.Delete(recordKey(exercisePrefix, id))
	})
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	return nil
}

// AddSet stores a new set and returns its id.
func (s *Store) AddSet(ctx context.Context, set *models.Set) (int64, error) {
	if set.CreatedAt.IsZero() {
		set.CreatedAt = time.Now()
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		id, err := nextID(txn, setPrefix)
		if err != nil {
			return err
		}
		set.ID = id
		return putJSON(txn, recordKey(setPrefix, id), set)
	})
	if err != nil {
		return 0, fmt.Errorf("add set: %w", err)
	}
	return set.ID, nil
}

// UpdateSet merges the supplied fields over the stored record. IsDropSet
// and SupersetName are always taken from the argument so they can be
// turned off again.
func (s *Store) UpdateSet(ctx context.Context, set *models.Set) error {
	existing, err := s.GetSetByID(ctx, set.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update set: not found: %d", set.ID)
	}

	merged := *existing
	if set.ExerciseID != 0 {
		merged.ExerciseID = set.ExerciseID
	}
	if set.Reps != 0 {
		merged.Reps = set.Reps
	}
	if set.Weight != 0 {
		merged.Weight = set.Weight
	}
	if set.RestTime != 0 {
		merged.RestTime = set.RestTime
	}
	if set.DifficultyLevel != 0 {
		merged.DifficultyLevel = set.DifficultyLevel
	}
	if set.SetOrder != 0 {
		merged.SetOrder = set.SetOrder
	}
	merged.IsDropSet = set.IsDropSet
	merged.SupersetName = set.SupersetName

	err = s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, recordKey(setPrefix, merged.ID), &merged)
	})
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}
	return nil
}

// GetSetByID retrieves an active set, or nil when not found.
func (s *Store) GetSetByID(ctx context.Context, id int64) (*models.Set, error) {
	set, err := getRecord[models.Set](s, setPrefix, id)
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}
	if set == nil || set.DeletedAt != nil {
		return nil, nil
	}
	return set, nil
}

// ListSetsByIDs returns the active sets for the given ids, preserving the
// order of the id list. Missing ids are skipped.
func (s *Store) ListSetsByIDs(ctx context.Context, ids []int64) ([]*models.Set, error) {
	var out []*models.Set
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var set models.Set
			found, err := getJSON(txn, recordKey(setPrefix, id), &set)
			if err != nil {
				return err
			}
			if !found || set.DeletedAt != nil {
				continue
			}
			copied := set
			out = append(out, &copied)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	return out, nil
}

// ListSetsByExercise returns an exercise's active sets in set order.
func (s *Store) ListSetsByExercise(ctx context.Context, exerciseID int64) ([]*models.Set, error) {
	all, err := listRecords[models.Set](s, setPrefix)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	var out []*models.Set
	for _, set := range all {
		if set.DeletedAt == nil && set.ExerciseID == exerciseID {
			out = append(out, set)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SetOrder < out[j].SetOrder })
	return out, nil
}

// DeleteSet removes a set and scrubs it from every workout slot's set id
// list; a slot left with no sets is deleted and detached from its workout.
func (s *Store) DeleteSet(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var affected []*models.WorkoutExercise
		if err := scanTyped(txn, workoutExPrefix, func(we *models.WorkoutExercise) error {
			if containsID(we.SetIDs, id) {
				affected = append(affected, we)
			}
			return nil
		}); err != nil {
			return err
		}

		for _, we := range affected {
			we.SetIDs = removeID(we.SetIDs, id)
			if len(we.SetIDs) == 0 {
				if err := detachWorkoutExercise(txn, we.WorkoutID, we.ID); err != nil {
					return err
				}
				if err := txn.Delete(recordKey(workoutExPrefix, we.ID)); err != nil {
					return err
				}
				continue
			}
			if err := putJSON(txn, recordKey(workoutExPrefix, we.ID), we); err != nil {
				return err
			}
		}

		return txn.Delete(recordKey(setPrefix, id))
	})
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	return nil
}

// scanTyped walks every record under prefix decoded into T.
func scanTyped[T any](txn *badger.Txn, prefix string, fn func(*T) error) error {
	return scanPrefix(txn, prefix, func(val []byte) error {
		var rec T
		if err := decodeJSON(val, &rec); err != nil {
			return err
		}
		return fn(&rec)
	})
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// detachWorkoutExercise removes a slot id from its workout's slot list.
func detachWorkoutExercise(txn *badger.Txn, workoutID, workoutExerciseID int64) error {
	var w models.Workout
	found, err := getJSON(txn, recordKey(workoutPrefix, workoutID), &w)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	w.WorkoutExerciseIDs = removeID(w.WorkoutExerciseIDs, workoutExerciseID)
	return putJSON(txn, recordKey(workoutPrefix, workoutID), &w)
}
