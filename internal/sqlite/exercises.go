// ABOUTME: Exercise CRUD operations for SQLite storage.
// ABOUTME: DeleteExercise cascades into sets and workout exercise links.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

const exerciseColumns = "id, name, muscle_group, type, description, image, created_at, deleted_at"

// AddExercise stores a new exercise and returns its id.
func (d *DB) AddExercise(ctx context.Context, e *models.Exercise) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO exercises (name, muscle_group, type, description, image, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.MuscleGroup, string(e.Type), nullIfEmpty(e.Description),
		nullIfEmpty(e.Image), formatTime(e.CreatedAt), formatTimePtr(e.DeletedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("add exercise: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add exercise: %w", err)
	}
	e.ID = id
	return id, nil
}

// UpdateExercise merges the supplied fields over the stored row; empty
// fields keep their stored values.
func (d *DB) UpdateExercise(ctx context.Context, e *models.Exercise) error {
	existing, err := d.GetExerciseByID(ctx, e.ID)
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

	_, err = d.db.ExecContext(ctx, `
		UPDATE exercises SET name = ?, muscle_group = ?, type = ?, description = ?, image = ?
		WHERE id = ?`,
		merged.Name, merged.MuscleGroup, string(merged.Type),
		nullIfEmpty(merged.Description), nullIfEmpty(merged.Image), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}
	return nil
}

// GetExerciseByID retrieves an active exercise, or nil when not found.
func (d *DB) GetExerciseByID(ctx context.Context, id int64) (*models.Exercise, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+exerciseColumns+` FROM exercises
		WHERE id = ? AND deleted_at IS NULL`, id)
	e, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// ListExercises returns all active exercises ordered by name.
func (d *DB) ListExercises(ctx context.Context) ([]*models.Exercise, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+exerciseColumns+` FROM exercises
		WHERE deleted_at IS NULL ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var exercises []*models.Exercise
	for rows.Next() {
		e, err := scanExerciseRows(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

// DeleteExercise removes an exercise together with its sets and every
// workout link referencing it. Parent workouts' denormalized id lists are
// rewritten to drop the removed links.
func (d *DB) DeleteExercise(ctx context.Context, id int64) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query(`SELECT id, workout_id FROM workout_exercises WHERE exercise_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	type link struct{ id, workoutID int64 }
	var links []link
	for rows.Next() {
		var l link
		if err := rows.Scan(&l.id, &l.workoutID); err != nil {
			rows.Close()
			return fmt.Errorf("delete exercise: %w", err)
		}
		links = append(links, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}

	for _, l := range links {
		if err := removeWorkoutExerciseID(tx, l.workoutID, l.id); err != nil {
			return fmt.Errorf("delete exercise: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM workout_exercises WHERE exercise_id = ?`, id); err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sets WHERE exercise_id = ?`, id); err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM one_rep_maxes WHERE exercise_id = ?`, id); err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM exercises WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	return nil
}

// removeWorkoutExerciseID drops a workout exercise id from its parent
// workout's ordered id list.
func removeWorkoutExerciseID(e execer, workoutID, workoutExerciseID int64) error {
	var encoded string
	err := e.QueryRow(`SELECT workout_exercise_ids FROM workouts WHERE id = ?`, workoutID).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	ids := removeID(decodeIDs(encoded), workoutExerciseID)
	_, err = e.Exec(`UPDATE workouts SET workout_exercise_ids = ? WHERE id = ?`, encodeIDs(ids), workoutID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExerciseFrom(s rowScanner) (*models.Exercise, error) {
	var e models.Exercise
	var exerciseType, createdAt string
	var description, image, deletedAt sql.NullString

	if err := s.Scan(&e.ID, &e.Name, &e.MuscleGroup, &exerciseType, &description, &image, &createdAt, &deletedAt); err != nil {
		return nil, err
	}

	e.Type = models.ExerciseType(exerciseType)
	e.Description = stringOrEmpty(description)
	e.Image = stringOrEmpty(image)
	e.CreatedAt = parseTime(createdAt)
	e.DeletedAt = parseTimePtr(deletedAt)
	return &e, nil
}

func scanExercise(row *sql.Row) (*models.Exercise, error) {
	e, err := scanExerciseFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan exercise: %w", err)
	}
	return e, nil
}

func scanExerciseRows(rows *sql.Rows) (*models.Exercise, error) {
	e, err := scanExerciseFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("scan exercise: %w", err)
	}
	return e, nil
}
