// ABOUTME: UserMetrics CRUD for SQLite storage with field-level encryption.
// ABOUTME: Upserts by dataId and self-heals rows whose ciphertext is unreadable.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
	"github.com/blopa/musclog-app-sub000/internal/health"
	"github.com/blopa/musclog-app-sub000/internal/models"
)

const metricsColumns = "id, user_id, data_id, date, weight, height, fat_percentage, eating_phase, source, created_at, deleted_at"

// AddUserMetrics inserts a metrics row, or updates the existing active row
// carrying the same dataId (idempotent upsert for retried external syncs).
// The original CreatedAt is preserved on update. Returns the row id.
func (d *DB) AddUserMetrics(ctx context.Context, m *models.UserMetrics) (int64, error) {
	if m.DataID == "" {
		m.DataID = uuid.NewString()
	}
	if m.Source == "" {
		m.Source = models.SourceUserInput
	}
	if m.Date.IsZero() {
		m.Date = time.Now()
	}

	existing, err := d.GetUserMetricsByDataID(ctx, m.DataID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		m.ID = existing.ID
		m.CreatedAt = existing.CreatedAt
		if err := d.writeUserMetrics(ctx, m, true); err != nil {
			return 0, err
		}
		return existing.ID, nil
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if err := d.writeUserMetrics(ctx, m, false); err != nil {
		return 0, err
	}
	return m.ID, nil
}

// UpdateUserMetrics merges the supplied fields over the stored row; zero
// values keep their stored counterparts.
func (d *DB) UpdateUserMetrics(ctx context.Context, m *models.UserMetrics) error {
	existing, err := d.GetUserMetricsByID(ctx, m.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update user metrics: not found: %d", m.ID)
	}

	merged := *existing
	if m.Weight != 0 {
		merged.Weight = m.Weight
	}
	if m.Height != 0 {
		merged.Height = m.Height
	}
	if m.FatPercentage != 0 {
		merged.FatPercentage = m.FatPercentage
	}
	if m.EatingPhase != "" {
		merged.EatingPhase = m.EatingPhase
	}
	if !m.Date.IsZero() {
		merged.Date = m.Date
	}
	if m.Source != "" {
		merged.Source = m.Source
	}

	return d.writeUserMetrics(ctx, &merged, true)
}

func (d *DB) writeUserMetrics(ctx context.Context, m *models.UserMetrics, update bool) error {
	weight, err := d.codec.EncryptFloat(m.Weight)
	if err != nil {
		return fmt.Errorf("encrypt weight: %w", err)
	}
	height, err := d.codec.EncryptFloat(m.Height)
	if err != nil {
		return fmt.Errorf("encrypt height: %w", err)
	}
	fatPct, err := d.codec.EncryptFloat(m.FatPercentage)
	if err != nil {
		return fmt.Errorf("encrypt fat percentage: %w", err)
	}

	if update {
		_, err = d.db.ExecContext(ctx, `
			UPDATE user_metrics SET user_id = ?, date = ?, weight = ?, height = ?, fat_percentage = ?, eating_phase = ?, source = ?
			WHERE id = ?`,
			m.UserID, formatTime(m.Date), weight, height, fatPct,
			nullIfEmpty(string(m.EatingPhase)), string(m.Source), m.ID,
		)
		if err != nil {
			return fmt.Errorf("update user metrics: %w", err)
		}
		return nil
	}

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO user_metrics (user_id, data_id, date, weight, height, fat_percentage, eating_phase, source, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.UserID, m.DataID, formatTime(m.Date), weight, height, fatPct,
		nullIfEmpty(string(m.EatingPhase)), string(m.Source),
		formatTime(m.CreatedAt), formatTimePtr(m.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("add user metrics: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("add user metrics: %w", err)
	}
	return nil
}

// GetUserMetricsByID retrieves an active metrics row, or nil. A row whose
// ciphertext cannot be decrypted is deleted and reported as not found.
func (d *DB) GetUserMetricsByID(ctx context.Context, id int64) (*models.UserMetrics, error) {
	return d.getUserMetricsWhere(ctx, `id = ?`, id)
}

// GetUserMetricsByDataID retrieves the active row with the given dataId.
func (d *DB) GetUserMetricsByDataID(ctx context.Context, dataID string) (*models.UserMetrics, error) {
	return d.getUserMetricsWhere(ctx, `data_id = ?`, dataID)
}

func (d *DB) getUserMetricsWhere(ctx context.Context, where string, arg any) (*models.UserMetrics, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+metricsColumns+` FROM user_metrics
		WHERE `+where+` AND deleted_at IS NULL`, arg)

	m, raw, err := scanUserMetricsFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user metrics: %w", err)
	}

	if err := d.decryptUserMetrics(m, raw); err != nil {
		if errors.Is(err, crypto.ErrDecrypt) {
			d.quarantineRow(ctx, "user_metrics", m.ID, err)
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// ListUserMetrics returns all of a user's active metrics, newest first.
// Unreadable rows are deleted and omitted.
func (d *DB) ListUserMetrics(ctx context.Context, userID int64) ([]*models.UserMetrics, error) {
	return d.listUserMetrics(ctx, `
		SELECT `+metricsColumns+` FROM user_metrics
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY date DESC, id DESC`, userID)
}

// ListUserMetricsBetween returns a user's metrics in [start, end), oldest first.
func (d *DB) ListUserMetricsBetween(ctx context.Context, userID int64, start, end time.Time) ([]*models.UserMetrics, error) {
	return d.listUserMetrics(ctx, `
		SELECT `+metricsColumns+` FROM user_metrics
		WHERE user_id = ? AND date >= ? AND date < ? AND deleted_at IS NULL
		ORDER BY date ASC, id ASC`, userID, formatTime(start), formatTime(end))
}

func (d *DB) listUserMetrics(ctx context.Context, query string, args ...any) ([]*models.UserMetrics, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list user metrics: %w", err)
	}
	defer rows.Close()

	var metrics []*models.UserMetrics
	var corrupt []int64
	for rows.Next() {
		m, raw, err := scanUserMetricsFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user metrics: %w", err)
		}
		if err := d.decryptUserMetrics(m, raw); err != nil {
			if errors.Is(err, crypto.ErrDecrypt) {
				corrupt = append(corrupt, m.ID)
				continue
			}
			return nil, err
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range corrupt {
		d.quarantineRow(ctx, "user_metrics", id, crypto.ErrDecrypt)
	}
	return metrics, nil
}

// DeleteUserMetrics removes a metrics row.
func (d *DB) DeleteUserMetrics(ctx context.Context, id int64) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM user_metrics WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user metrics: %w", err)
	}
	return nil
}

// GetAllLatestMetricsForUser returns the most recent non-empty value of
// each metric field independently, scanning back through the user's rows.
// Returns nil when no field was ever recorded.
func (d *DB) GetAllLatestMetricsForUser(ctx context.Context, userID int64) (*models.LatestUserMetrics, error) {
	metrics, err := d.ListUserMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}
	return health.LatestMetrics(userID, metrics), nil
}

// quarantineRow deletes a row whose encrypted fields cannot be read. This
// is the self-healing policy: corrupt rows would otherwise poison every
// subsequent list query.
func (d *DB) quarantineRow(ctx context.Context, table string, id int64, cause error) {
	log.Warn("deleting unreadable encrypted row", "table", table, "id", id, "err", cause)
	if _, err := d.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
		log.Error("failed to delete unreadable row", "table", table, "id", id, "err", err)
	}
}

type rawUserMetrics struct {
	weight, height, fatPct string
}

func scanUserMetricsFrom(s rowScanner) (*models.UserMetrics, *rawUserMetrics, error) {
	var m models.UserMetrics
	var raw rawUserMetrics
	var date, source, createdAt string
	var weight, height, fatPct, eatingPhase, deletedAt sql.NullString

	if err := s.Scan(&m.ID, &m.UserID, &m.DataID, &date, &weight, &height,
		&fatPct, &eatingPhase, &source, &createdAt, &deletedAt); err != nil {
		return nil, nil, err
	}

	raw.weight = stringOrEmpty(weight)
	raw.height = stringOrEmpty(height)
	raw.fatPct = stringOrEmpty(fatPct)
	m.Date = parseTime(date)
	m.EatingPhase = models.EatingPhase(stringOrEmpty(eatingPhase))
	m.Source = models.MetricSource(source)
	m.CreatedAt = parseTime(createdAt)
	m.DeletedAt = parseTimePtr(deletedAt)
	return &m, &raw, nil
}

func (d *DB) decryptUserMetrics(m *models.UserMetrics, raw *rawUserMetrics) error {
	var err error
	if m.Weight, err = d.codec.DecryptFloat(raw.weight); err != nil {
		return err
	}
	if m.Height, err = d.codec.DecryptFloat(raw.height); err != nil {
		return err
	}
	if m.FatPercentage, err = d.codec.DecryptFloat(raw.fatPct); err != nil {
		return err
	}
	return nil
}
