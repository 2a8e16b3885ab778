// ABOUTME: Workout and WorkoutExercise operations for SQLite storage.
// ABOUTME: Includes the transactional AddWorkoutWithExercises composite and ordered assembly.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

const workoutColumns = "id, title, description, recurring_on_week, volume_calculation_type, workout_exercise_ids, created_at, deleted_at"
const workoutExerciseColumns = "id, workout_id, exercise_id, set_ids, exercise_order, created_at, deleted_at"

// AddWorkout stores a new workout template and returns its id.
func (d *DB) AddWorkout(ctx context.Context, w *models.Workout) (int64, error) {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	if w.VolumeCalculationType == "" {
		w.VolumeCalculationType = models.VolumeNone
	}
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO workouts (title, description, recurring_on_week, volume_calculation_type, workout_exercise_ids, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.Title, nullIfEmpty(w.Description), w.RecurringOnWeek,
		string(w.VolumeCalculationType), encodeIDs(w.WorkoutExerciseIDs),
		formatTime(w.CreatedAt), formatTimePtr(w.DeletedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("add workout: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add workout: %w", err)
	}
	w.ID = id
	return id, nil
}

// UpdateWorkout merges the supplied fields over the stored row, with one
// exception: RecurringOnWeek is always written from the argument, so
// omitting it clears the recurrence.
func (d *DB) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	existing, err := d.GetWorkoutByID(ctx, w.ID)
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

	_, err = d.db.ExecContext(ctx, `
		UPDATE workouts SET title = ?, description = ?, recurring_on_week = ?, volume_calculation_type = ?, workout_exercise_ids = ?
		WHERE id = ?`,
		merged.Title, nullIfEmpty(merged.Description), merged.RecurringOnWeek,
		string(merged.VolumeCalculationType), encodeIDs(merged.WorkoutExerciseIDs), w.ID,
	)
	if err != nil {
		return fmt.Errorf("update workout: %w", err)
	}
	return nil
}

// GetWorkoutByID retrieves an active workout, or nil when not found.
func (d *DB) GetWorkoutByID(ctx context.Context, id int64) (*models.Workout, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+workoutColumns+` FROM workouts
		WHERE id = ? AND deleted_at IS NULL`, id)
	w, err := scanWorkoutFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan workout: %w", err)
	}
	return w, nil
}

// GetWorkoutByIDWithTrashed retrieves a workout regardless of soft-delete
// state; event history needs titles of templates deleted since.
func (d *DB) GetWorkoutByIDWithTrashed(ctx context.Context, id int64) (*models.Workout, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)
	w, err := scanWorkoutFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan workout: %w", err)
	}
	return w, nil
}

// ListWorkouts returns all active workout templates ordered by title.
func (d *DB) ListWorkouts(ctx context.Context) ([]*models.Workout, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+workoutColumns+` FROM workouts
		WHERE deleted_at IS NULL ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []*models.Workout
	for rows.Next() {
		w, err := scanWorkoutFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// DeleteWorkout removes a workout template and its exercise links. Events
// referencing the workout keep their frozen snapshots.
func (d *DB) DeleteWorkout(ctx context.Context, id int64) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM workout_exercises WHERE workout_id = ?`, id); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM workouts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return nil
}

// AddWorkoutExercise stores a new workout exercise link and returns its id.
func (d *DB) AddWorkoutExercise(ctx context.Context, we *models.WorkoutExercise) (int64, error) {
	if we.CreatedAt.IsZero() {
		we.CreatedAt = time.Now()
	}
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO workout_exercises (workout_id, exercise_id, set_ids, exercise_order, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		we.WorkoutID, we.ExerciseID, encodeIDs(we.SetIDs), we.Order,
		formatTime(we.CreatedAt), formatTimePtr(we.DeletedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("add workout exercise: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add workout exercise: %w", err)
	}
	we.ID = id
	return id, nil
}

// UpdateWorkoutExercise rewrites a workout exercise link.
func (d *DB) UpdateWorkoutExercise(ctx context.Context, we *models.WorkoutExercise) error {
	existing, err := d.GetWorkoutExerciseByID(ctx, we.ID)
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

	_, err = d.db.ExecContext(ctx, `
		UPDATE workout_exercises SET workout_id = ?, exercise_id = ?, set_ids = ?, exercise_order = ?
		WHERE id = ?`,
		merged.WorkoutID, merged.ExerciseID, encodeIDs(merged.SetIDs), merged.Order, we.ID,
	)
	if err != nil {
		return fmt.Errorf("update workout exercise: %w", err)
	}
	return nil
}

// GetWorkoutExerciseByID retrieves an active workout exercise, or nil.
func (d *DB) GetWorkoutExerciseByID(ctx context.Context, id int64) (*models.WorkoutExercise, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+workoutExerciseColumns+` FROM workout_exercises
		WHERE id = ? AND deleted_at IS NULL`, id)
	we, err := scanWorkoutExerciseFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan workout exercise: %w", err)
	}
	return we, nil
}

// ListWorkoutExercisesByWorkout returns a workout's active links in order.
func (d *DB) ListWorkoutExercisesByWorkout(ctx context.Context, workoutID int64) ([]*models.WorkoutExercise, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+workoutExerciseColumns+` FROM workout_exercises
		WHERE workout_id = ? AND deleted_at IS NULL
		ORDER BY exercise_order ASC, id ASC`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("list workout exercises: %w", err)
	}
	defer rows.Close()

	var links []*models.WorkoutExercise
	for rows.Next() {
		we, err := scanWorkoutExerciseFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workout exercise: %w", err)
		}
		links = append(links, we)
	}
	return links, rows.Err()
}

// DeleteWorkoutExercise removes a link and rewrites the parent workout's
// ordered id list.
func (d *DB) DeleteWorkoutExercise(ctx context.Context, id int64) error {
	we, err := d.GetWorkoutExerciseByID(ctx, id)
	if err != nil {
		return err
	}
	if we == nil {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete workout exercise: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := removeWorkoutExerciseID(tx, we.WorkoutID, id); err != nil {
		return fmt.Errorf("delete workout exercise: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM workout_exercises WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete workout exercise: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete workout exercise: %w", err)
	}
	return nil
}

// AddWorkoutWithExercises creates or updates a workout together with its
// full child list in one transaction. Existing children are replaced
// wholesale; each child's Order comes from its array position, and the
// resulting ordered id list is written back onto the workout.
func (d *DB) AddWorkoutWithExercises(ctx context.Context, w *models.Workout, children []*models.WorkoutExercise, existingID int64) (int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("add workout with exercises: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	workoutID := existingID
	now := time.Now()

	if existingID > 0 {
		var found int64
		err := tx.QueryRow(`SELECT id FROM workouts WHERE id = ? AND deleted_at IS NULL`, existingID).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("add workout with exercises: workout not found: %d", existingID)
		}
		if err != nil {
			return 0, fmt.Errorf("add workout with exercises: %w", err)
		}
		if _, err := tx.Exec(`
			UPDATE workouts SET title = ?, description = ?, recurring_on_week = ?, volume_calculation_type = ?
			WHERE id = ?`,
			w.Title, nullIfEmpty(w.Description), w.RecurringOnWeek,
			string(volumeTypeOrNone(w.VolumeCalculationType)), existingID,
		); err != nil {
			return 0, fmt.Errorf("add workout with exercises: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM workout_exercises WHERE workout_id = ?`, existingID); err != nil {
			return 0, fmt.Errorf("add workout with exercises: %w", err)
		}
	} else {
		if w.CreatedAt.IsZero() {
			w.CreatedAt = now
		}
		res, err := tx.Exec(`
			INSERT INTO workouts (title, description, recurring_on_week, volume_calculation_type, workout_exercise_ids, created_at)
			VALUES (?, ?, ?, ?, '[]', ?)`,
			w.Title, nullIfEmpty(w.Description), w.RecurringOnWeek,
			string(volumeTypeOrNone(w.VolumeCalculationType)), formatTime(w.CreatedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("add workout with exercises: %w", err)
		}
		workoutID, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("add workout with exercises: %w", err)
		}
	}

	childIDs := make([]int64, 0, len(children))
	for i, child := range children {
		child.WorkoutID = workoutID
		child.Order = i
		if child.CreatedAt.IsZero() {
			child.CreatedAt = now
		}
		res, err := tx.Exec(`
			INSERT INTO workout_exercises (workout_id, exercise_id, set_ids, exercise_order, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			workoutID, child.ExerciseID, encodeIDs(child.SetIDs), i, formatTime(child.CreatedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("add workout with exercises: %w", err)
		}
		childID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("add workout with exercises: %w", err)
		}
		child.ID = childID
		childIDs = append(childIDs, childID)
	}

	if _, err := tx.Exec(`UPDATE workouts SET workout_exercise_ids = ? WHERE id = ?`,
		encodeIDs(childIDs), workoutID); err != nil {
		return 0, fmt.Errorf("add workout with exercises: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("add workout with exercises: %w", err)
	}

	w.ID = workoutID
	w.WorkoutExerciseIDs = childIDs
	return workoutID, nil
}

// GetWorkoutDetails resolves a workout into its ordered exercises and sets.
func (d *DB) GetWorkoutDetails(ctx context.Context, workoutID int64) (*models.WorkoutDetails, error) {
	w, err := d.GetWorkoutByID(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, nil
	}

	exercises, err := d.GetExercisesWithSetsFromWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	return &models.WorkoutDetails{Workout: *w, Exercises: exercises}, nil
}

// GetExercisesWithSetsFromWorkout resolves a workout's ordered exercise
// slots. Links whose exercise no longer exists are logged and skipped so a
// workout with a dangling reference still renders the rest.
func (d *DB) GetExercisesWithSetsFromWorkout(ctx context.Context, workoutID int64) ([]models.ExerciseWithSets, error) {
	links, err := d.ListWorkoutExercisesByWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	var out []models.ExerciseWithSets
	for _, link := range links {
		exercise, err := d.GetExerciseByID(ctx, link.ExerciseID)
		if err != nil {
			return nil, err
		}
		if exercise == nil {
			log.Warn("skipping workout exercise with missing exercise",
				"workoutId", workoutID, "exerciseId", link.ExerciseID)
			continue
		}

		sets, err := d.ListSetsByIDs(ctx, link.SetIDs)
		if err != nil {
			return nil, err
		}

		ews := models.ExerciseWithSets{Exercise: *exercise, Order: link.Order}
		for _, s := range sets {
			ews.Sets = append(ews.Sets, *s)
		}
		out = append(out, ews)
	}
	return out, nil
}

func volumeTypeOrNone(v models.VolumeCalculationType) models.VolumeCalculationType {
	if v == "" {
		return models.VolumeNone
	}
	return v
}

func scanWorkoutFrom(s rowScanner) (*models.Workout, error) {
	var w models.Workout
	var volumeType, encodedIDs, createdAt string
	var description, recurring, deletedAt sql.NullString

	if err := s.Scan(&w.ID, &w.Title, &description, &recurring, &volumeType,
		&encodedIDs, &createdAt, &deletedAt); err != nil {
		return nil, err
	}

	w.Description = stringOrEmpty(description)
	w.RecurringOnWeek = stringPtr(recurring)
	w.VolumeCalculationType = models.VolumeCalculationType(volumeType)
	w.WorkoutExerciseIDs = decodeIDs(encodedIDs)
	w.CreatedAt = parseTime(createdAt)
	w.DeletedAt = parseTimePtr(deletedAt)
	return &w, nil
}

func scanWorkoutExerciseFrom(s rowScanner) (*models.WorkoutExercise, error) {
	var we models.WorkoutExercise
	var encodedIDs, createdAt string
	var deletedAt sql.NullString

	if err := s.Scan(&we.ID, &we.WorkoutID, &we.ExerciseID, &encodedIDs,
		&we.Order, &createdAt, &deletedAt); err != nil {
		return nil, err
	}

	we.SetIDs = decodeIDs(encodedIDs)
	we.CreatedAt = parseTime(createdAt)
	we.DeletedAt = parseTimePtr(deletedAt)
	return &we, nil
}
