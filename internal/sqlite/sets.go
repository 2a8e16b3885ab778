// ABOUTME: Set CRUD operations for SQLite storage.
// ABOUTME: DeleteSet cascades into WorkoutExercise set id lists.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

const setColumns = "id, exercise_id, reps, weight, rest_time, difficulty_level, is_drop_set, superset_name, set_order, created_at, deleted_at"

// AddSet stores a new set and returns its id.
func (d *DB) AddSet(ctx context.Context, s *models.Set) (int64, error) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO sets (exercise_id, reps, weight, rest_time, difficulty_level, is_drop_set, superset_name, set_order, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ExerciseID, s.Reps, s.Weight, s.RestTime, s.DifficultyLevel,
		s.IsDropSet, nullIfEmpty(s.SupersetName), s.SetOrder,
		formatTime(s.CreatedAt), formatTimePtr(s.DeletedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("add set: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add set: %w", err)
	}
	s.ID = id
	return id, nil
}

// UpdateSet merges the supplied fields over the stored row. Numeric zero
// values fall back to the stored value; IsDropSet and SupersetName are
// always taken from the argument.
func (d *DB) UpdateSet(ctx context.Context, s *models.Set) error {
	existing, err := d.GetSetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update set: not found: %d", s.ID)
	}

	merged := *existing
	if s.ExerciseID != 0 {
		merged.ExerciseID = s.ExerciseID
	}
	if s.Reps != 0 {
		merged.Reps = s.Reps
	}
	if s.Weight != 0 {
		merged.Weight = s.Weight
	}
	if s.RestTime != 0 {
		merged.RestTime = s.RestTime
	}
	if s.DifficultyLevel != 0 {
		merged.DifficultyLevel = s.DifficultyLevel
	}
	if s.SetOrder != 0 {
		merged.SetOrder = s.SetOrder
	}
	merged.IsDropSet = s.IsDropSet
	merged.SupersetName = s.SupersetName

	_, err = d.db.ExecContext(ctx, `
		UPDATE sets SET exercise_id = ?, reps = ?, weight = ?, rest_time = ?, difficulty_level = ?, is_drop_set = ?, superset_name = ?, set_order = ?
		WHERE id = ?`,
		merged.ExerciseID, merged.Reps, merged.Weight, merged.RestTime,
		merged.DifficultyLevel, merged.IsDropSet, nullIfEmpty(merged.SupersetName),
		merged.SetOrder, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}
	return nil
}

// GetSetByID retrieves an active set, or nil when not found.
func (d *DB) GetSetByID(ctx context.Context, id int64) (*models.Set, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+setColumns+` FROM sets WHERE id = ? AND deleted_at IS NULL`, id)
	s, err := scanSetFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan set: %w", err)
	}
	return s, nil
}

// ListSetsByIDs returns active sets for the given ids, preserving the
// order of the id list. Missing ids are silently skipped.
func (d *DB) ListSetsByIDs(ctx context.Context, ids []int64) ([]*models.Set, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT `+setColumns+` FROM sets
		WHERE id IN (`+placeholders+`) AND deleted_at IS NULL`, args...)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*models.Set, len(ids))
	for rows.Next() {
		s, err := scanSetFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*models.Set, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

// ListSetsByExercise returns all active sets for an exercise in set order.
func (d *DB) ListSetsByExercise(ctx context.Context, exerciseID int64) ([]*models.Set, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+setColumns+` FROM sets
		WHERE exercise_id = ? AND deleted_at IS NULL
		ORDER BY set_order ASC, id ASC`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	var sets []*models.Set
	for rows.Next() {
		s, err := scanSetFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

// DeleteSet removes a set and pulls its id from every WorkoutExercise's
// set list. A WorkoutExercise left with no sets is deleted, and its id is
// removed from the parent workout's ordered list.
func (d *DB) DeleteSet(ctx context.Context, id int64) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query(`SELECT id, workout_id, set_ids FROM workout_exercises`)
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	type link struct {
		id, workoutID int64
		setIDs        []int64
	}
	var affected []link
	for rows.Next() {
		var l link
		var encoded string
		if err := rows.Scan(&l.id, &l.workoutID, &encoded); err != nil {
			rows.Close()
			return fmt.Errorf("delete set: %w", err)
		}
		ids := decodeIDs(encoded)
		remaining := removeID(ids, id)
		if len(remaining) != len(ids) {
			l.setIDs = remaining
			affected = append(affected, l)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("delete set: %w", err)
	}

	for _, l := range affected {
		if len(l.setIDs) == 0 {
			if _, err := tx.Exec(`DELETE FROM workout_exercises WHERE id = ?`, l.id); err != nil {
				return fmt.Errorf("delete set: %w", err)
			}
			if err := removeWorkoutExerciseID(tx, l.workoutID, l.id); err != nil {
				return fmt.Errorf("delete set: %w", err)
			}
			continue
		}
		if _, err := tx.Exec(`UPDATE workout_exercises SET set_ids = ? WHERE id = ?`, encodeIDs(l.setIDs), l.id); err != nil {
			return fmt.Errorf("delete set: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM sets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete set: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	return nil
}

func scanSetFrom(s rowScanner) (*models.Set, error) {
	var set models.Set
	var createdAt string
	var supersetName, deletedAt sql.NullString

	if err := s.Scan(&set.ID, &set.ExerciseID, &set.Reps, &set.Weight, &set.RestTime,
		&set.DifficultyLevel, &set.IsDropSet, &supersetName, &set.SetOrder,
		&createdAt, &deletedAt); err != nil {
		return nil, err
	}

	set.SupersetName = stringOrEmpty(supersetName)
	set.CreatedAt = parseTime(createdAt)
	set.DeletedAt = parseTimePtr(deletedAt)
	return &set, nil
}
