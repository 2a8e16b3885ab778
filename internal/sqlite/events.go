// ABOUTME: WorkoutEvent CRUD operations for SQLite storage.
// ABOUTME: Events carry frozen exercise snapshots and completion-time body data.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

const eventColumns = "id, workout_id, title, date, duration, status, exercise_data, body_weight, fat_percentage, eating_phase, calories, protein, carbohydrate, fat, workout_volume, created_at, deleted_at"

// AddWorkoutEvent stores a new workout event and returns its id.
func (d *DB) AddWorkoutEvent(ctx context.Context, ev *models.WorkoutEvent) (int64, error) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	if ev.Status == "" {
		ev.Status = models.EventScheduled
	}
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO workout_events (workout_id, title, date, duration, status, exercise_data, body_weight, fat_percentage, eating_phase, calories, protein, carbohydrate, fat, workout_volume, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.WorkoutID, ev.Title, formatTime(ev.Date), ev.Duration, string(ev.Status),
		nullIfEmpty(ev.ExerciseData), ev.BodyWeight, ev.FatPercentage,
		nullIfEmpty(ev.EatingPhase), ev.Calories, ev.Protein, ev.Carbs, ev.Fat,
		ev.WorkoutVolume, formatTime(ev.CreatedAt), formatTimePtr(ev.DeletedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("add workout event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add workout event: %w", err)
	}
	ev.ID = id
	return id, nil
}

// UpdateWorkoutEvent merges the supplied fields over the stored row.
// ExerciseData is immutable history: once written it is never overwritten.
func (d *DB) UpdateWorkoutEvent(ctx context.Context, ev *models.WorkoutEvent) error {
	existing, err := d.GetWorkoutEventByID(ctx, ev.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update workout event: not found: %d", ev.ID)
	}

	merged := *existing
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
	if merged.ExerciseData == "" {
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

	_, err = d.db.ExecContext(ctx, `
		UPDATE workout_events SET title = ?, date = ?, duration = ?, status = ?, exercise_data = ?, body_weight = ?, fat_percentage = ?, eating_phase = ?, calories = ?, protein = ?, carbohydrate = ?, fat = ?, workout_volume = ?
		WHERE id = ?`,
		merged.Title, formatTime(merged.Date), merged.Duration, string(merged.Status),
		nullIfEmpty(merged.ExerciseData), merged.BodyWeight, merged.FatPercentage,
		nullIfEmpty(merged.EatingPhase), merged.Calories, merged.Protein,
		merged.Carbs, merged.Fat, merged.WorkoutVolume, ev.ID,
	)
	if err != nil {
		return fmt.Errorf("update workout event: %w", err)
	}
	return nil
}

// GetWorkoutEventByID retrieves an active event, or nil when not found.
func (d *DB) GetWorkoutEventByID(ctx context.Context, id int64) (*models.WorkoutEvent, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+` FROM workout_events
		WHERE id = ? AND deleted_at IS NULL`, id)
	ev, err := scanEventFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan workout event: %w", err)
	}
	return ev, nil
}

// ListWorkoutEventsByWorkout returns a workout's events, newest first.
func (d *DB) ListWorkoutEventsByWorkout(ctx context.Context, workoutID int64) ([]*models.WorkoutEvent, error) {
	return d.listEvents(ctx, `
		SELECT `+eventColumns+` FROM workout_events
		WHERE workout_id = ? AND deleted_at IS NULL
		ORDER BY date DESC`, workoutID)
}

// ListWorkoutEventsBetween returns events in [start, end), oldest first.
func (d *DB) ListWorkoutEventsBetween(ctx context.Context, start, end time.Time) ([]*models.WorkoutEvent, error) {
	return d.listEvents(ctx, `
		SELECT `+eventColumns+` FROM workout_events
		WHERE date >= ? AND date < ? AND deleted_at IS NULL
		ORDER BY date ASC`, formatTime(start), formatTime(end))
}

// ListRecentWorkoutEvents returns the most recent events.
func (d *DB) ListRecentWorkoutEvents(ctx context.Context, limit int) ([]*models.WorkoutEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	return d.listEvents(ctx, `
		SELECT `+eventColumns+` FROM workout_events
		WHERE deleted_at IS NULL
		ORDER BY date DESC LIMIT ?`, limit)
}

// DeleteWorkoutEvent removes an event.
func (d *DB) DeleteWorkoutEvent(ctx context.Context, id int64) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM workout_events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete workout event: %w", err)
	}
	return nil
}

func (d *DB) listEvents(ctx context.Context, query string, args ...any) ([]*models.WorkoutEvent, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workout events: %w", err)
	}
	defer rows.Close()

	var events []*models.WorkoutEvent
	for rows.Next() {
		ev, err := scanEventFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workout event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func scanEventFrom(s rowScanner) (*models.WorkoutEvent, error) {
	var ev models.WorkoutEvent
	var status, date, createdAt string
	var exerciseData, eatingPhase, deletedAt sql.NullString

	if err := s.Scan(&ev.ID, &ev.WorkoutID, &ev.Title, &date, &ev.Duration, &status,
		&exerciseData, &ev.BodyWeight, &ev.FatPercentage, &eatingPhase,
		&ev.Calories, &ev.Protein, &ev.Carbs, &ev.Fat, &ev.WorkoutVolume,
		&createdAt, &deletedAt); err != nil {
		return nil, err
	}

	ev.Date = parseTime(date)
	ev.Status = models.WorkoutEventStatus(status)
	ev.ExerciseData = stringOrEmpty(exerciseData)
	ev.EatingPhase = stringOrEmpty(eatingPhase)
	ev.CreatedAt = parseTime(createdAt)
	ev.DeletedAt = parseTimePtr(deletedAt)
	return &ev, nil
}
