// ABOUTME: User and UserMeasurements CRUD operations for SQLite storage.
// ABOUTME: Measurements are a JSON map column; users follow the merge-update contract.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

const userColumns = "id, name, birthday, gender, fitness_goals, activity_level, lifting_experience, created_at, deleted_at"
const measurementsColumns = "id, user_id, data_id, date, measurements, source, created_at, deleted_at"

// AddUser stores a new user profile and returns its id.
func (d *DB) AddUser(ctx context.Context, u *models.User) (int64, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO users (name, birthday, gender, fitness_goals, activity_level, lifting_experience, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, nullIfEmpty(u.Birthday), nullIfEmpty(u.Gender),
		nullIfEmpty(u.FitnessGoals), nullIfEmpty(u.ActivityLevel),
		nullIfEmpty(u.LiftingExperience), formatTime(u.CreatedAt), formatTimePtr(u.DeletedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("add user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add user: %w", err)
	}
	u.ID = id
	return id, nil
}

// UpdateUser merges the supplied fields over the stored row.
func (d *DB) UpdateUser(ctx context.Context, u *models.User) error {
	existing, err := d.GetUserByID(ctx, u.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update user: not found: %d", u.ID)
	}

	merged := *existing
	if u.Name != "" {
		merged.Name = u.Name
	}
	if u.Birthday != "" {
		merged.Birthday = u.Birthday
	}
	if u.Gender != "" {
		merged.Gender = u.Gender
	}
	if u.FitnessGoals != "" {
		merged.FitnessGoals = u.FitnessGoals
	}
	if u.ActivityLevel != "" {
		merged.ActivityLevel = u.ActivityLevel
	}
	if u.LiftingExperience != "" {
		merged.LiftingExperience = u.LiftingExperience
	}

	_, err = d.db.ExecContext(ctx, `
		UPDATE users SET name = ?, birthday = ?, gender = ?, fitness_goals = ?, activity_level = ?, lifting_experience = ?
		WHERE id = ?`,
		merged.Name, nullIfEmpty(merged.Birthday), nullIfEmpty(merged.Gender),
		nullIfEmpty(merged.FitnessGoals), nullIfEmpty(merged.ActivityLevel),
		nullIfEmpty(merged.LiftingExperience), u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// GetUserByID retrieves an active user, or nil when not found.
func (d *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = ? AND deleted_at IS NULL`, id)
	u, err := scanUserFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// GetLatestUser returns the most recently created active user, or nil.
// The app is effectively single-user; this is the "current profile" read.
func (d *DB) GetLatestUser(ctx context.Context) (*models.User, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE deleted_at IS NULL ORDER BY id DESC LIMIT 1`)
	u, err := scanUserFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// AddUserMeasurements inserts a measurements row, or updates the existing
// active row carrying the same dataId, preserving its CreatedAt.
func (d *DB) AddUserMeasurements(ctx context.Context, m *models.UserMeasurements) (int64, error) {
	if m.DataID == "" {
		m.DataID = uuid.NewString()
	}
	if m.Source == "" {
		m.Source = models.SourceUserInput
	}
	if m.Date.IsZero() {
		m.Date = time.Now()
	}

	row := d.db.QueryRowContext(ctx, `
		SELECT id, created_at FROM user_measurements
		WHERE data_id = ? AND deleted_at IS NULL`, m.DataID)
	var existingID int64
	var createdAt string
	err := row.Scan(&existingID, &createdAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("add user measurements: %w", err)
	}
	if err == nil {
		m.ID = existingID
		m.CreatedAt = parseTime(createdAt)
		_, err = d.db.ExecContext(ctx, `
			UPDATE user_measurements SET user_id = ?, date = ?, measurements = ?, source = ?
			WHERE id = ?`,
			m.UserID, formatTime(m.Date), encodeMeasurements(m.Measurements),
			string(m.Source), existingID,
		)
		if err != nil {
			return 0, fmt.Errorf("add user measurements: %w", err)
		}
		return existingID, nil
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO user_measurements (user_id, data_id, date, measurements, source, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.UserID, m.DataID, formatTime(m.Date), encodeMeasurements(m.Measurements),
		string(m.Source), formatTime(m.CreatedAt), formatTimePtr(m.DeletedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("add user measurements: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add user measurements: %w", err)
	}
	return m.ID, nil
}

// GetUserMeasurementsByID retrieves an active measurements row, or nil.
func (d *DB) GetUserMeasurementsByID(ctx context.Context, id int64) (*models.UserMeasurements, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+measurementsColumns+` FROM user_measurements
		WHERE id = ? AND deleted_at IS NULL`, id)
	m, err := scanMeasurementsFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user measurements: %w", err)
	}
	return m, nil
}

// ListUserMeasurementsBetween returns rows in [start, end), oldest first.
func (d *DB) ListUserMeasurementsBetween(ctx context.Context, userID int64, start, end time.Time) ([]*models.UserMeasurements, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+measurementsColumns+` FROM user_measurements
		WHERE user_id = ? AND date >= ? AND date < ? AND deleted_at IS NULL
		ORDER BY date ASC, id ASC`, userID, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("list user measurements: %w", err)
	}
	defer rows.Close()

	var out []*models.UserMeasurements
	for rows.Next() {
		m, err := scanMeasurementsFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user measurements: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteUserMeasurements removes a measurements row.
func (d *DB) DeleteUserMeasurements(ctx context.Context, id int64) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM user_measurements WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user measurements: %w", err)
	}
	return nil
}

func scanUserFrom(s rowScanner) (*models.User, error) {
	var u models.User
	var createdAt string
	var birthday, gender, goals, activity, lifting, deletedAt sql.NullString

	if err := s.Scan(&u.ID, &u.Name, &birthday, &gender, &goals, &activity,
		&lifting, &createdAt, &deletedAt); err != nil {
		return nil, err
	}

	u.Birthday = stringOrEmpty(birthday)
	u.Gender = stringOrEmpty(gender)
	u.FitnessGoals = stringOrEmpty(goals)
	u.ActivityLevel = stringOrEmpty(activity)
	u.LiftingExperience = stringOrEmpty(lifting)
	u.CreatedAt = parseTime(createdAt)
	u.DeletedAt = parseTimePtr(deletedAt)
	return &u, nil
}

func scanMeasurementsFrom(s rowScanner) (*models.UserMeasurements, error) {
	var m models.UserMeasurements
	var date, encoded, source, createdAt string
	var deletedAt sql.NullString

	if err := s.Scan(&m.ID, &m.UserID, &m.DataID, &date, &encoded, &source,
		&createdAt, &deletedAt); err != nil {
		return nil, err
	}

	m.Date = parseTime(date)
	m.Measurements = decodeMeasurements(encoded)
	m.Source = models.MetricSource(source)
	m.CreatedAt = parseTime(createdAt)
	m.DeletedAt = parseTimePtr(deletedAt)
	return &m, nil
}
