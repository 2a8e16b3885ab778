// ABOUTME: Setting, Chat, Bio, OneRepMax, and Versioning operations for SQLite storage.
// ABOUTME: Settings upsert by type; OneRepMax upserts by exercise id.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

// SetSetting upserts the singleton setting row for a type.
func (d *DB) SetSetting(ctx context.Context, settingType, value string) (int64, error) {
	existing, err := d.GetSetting(ctx, settingType)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		if _, err := d.db.ExecContext(ctx, `UPDATE settings SET value = ? WHERE id = ?`,
			value, existing.ID); err != nil {
			return 0, fmt.Errorf("set setting: %w", err)
		}
		return existing.ID, nil
	}

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO settings (type, value, created_at) VALUES (?, ?, ?)`,
		settingType, value, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("set setting: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("set setting: %w", err)
	}
	return id, nil
}

// GetSetting retrieves the active setting for a type, or nil.
func (d *DB) GetSetting(ctx context.Context, settingType string) (*models.Setting, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, type, value, created_at, deleted_at FROM settings
		WHERE type = ? AND deleted_at IS NULL ORDER BY id DESC LIMIT 1`, settingType)
	s, err := scanSettingFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan setting: %w", err)
	}
	return s, nil
}

// ListSettings returns all active settings.
func (d *DB) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, type, value, created_at, deleted_at FROM settings
		WHERE deleted_at IS NULL ORDER BY type ASC`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		s, err := scanSettingFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// DeleteSetting removes the setting rows for a type.
func (d *DB) DeleteSetting(ctx context.Context, settingType string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM settings WHERE type = ?`, settingType); err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	return nil
}

// AddChat appends a chat message and returns its id.
func (d *DB) AddChat(ctx context.Context, c *models.Chat) (int64, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO chats (message, sender, misc, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.Message, string(c.Sender), nullIfEmpty(c.Misc),
		formatTime(c.CreatedAt), formatTimePtr(c.DeletedAt))
	if err != nil {
		return 0, fmt.Errorf("add chat: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add chat: %w", err)
	}
	c.ID = id
	return id, nil
}

// ListChats returns the most recent chat messages, oldest first, so the
// caller can render the tail of the conversation in order.
func (d *DB) ListChats(ctx context.Context, limit int) ([]*models.Chat, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, message, sender, misc, created_at, deleted_at FROM (
			SELECT * FROM chats WHERE deleted_at IS NULL ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		var c models.Chat
		var sender, createdAt string
		var misc, deletedAt sql.NullString
		if err := rows.Scan(&c.ID, &c.Message, &sender, &misc, &createdAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		c.Sender = models.ChatSender(sender)
		c.Misc = stringOrEmpty(misc)
		c.CreatedAt = parseTime(createdAt)
		c.DeletedAt = parseTimePtr(deletedAt)
		chats = append(chats, &c)
	}
	return chats, rows.Err()
}

// DeleteChat removes a chat message.
func (d *DB) DeleteChat(ctx context.Context, id int64) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

// ClearChats removes the entire chat history.
func (d *DB) ClearChats(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM chats`); err != nil {
		return fmt.Errorf("clear chats: %w", err)
	}
	return nil
}

// AddBio appends a bio entry and returns its id.
func (d *DB) AddBio(ctx context.Context, value string) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO bios (value, created_at) VALUES (?, ?)`,
		value, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("add bio: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add bio: %w", err)
	}
	return id, nil
}

// GetLatestBio returns the most recent bio entry, or nil.
func (d *DB) GetLatestBio(ctx context.Context) (*models.Bio, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, value, created_at, deleted_at FROM bios
		WHERE deleted_at IS NULL ORDER BY id DESC LIMIT 1`)
	var b models.Bio
	var createdAt string
	var deletedAt sql.NullString
	err := row.Scan(&b.ID, &b.Value, &createdAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan bio: %w", err)
	}
	b.CreatedAt = parseTime(createdAt)
	b.DeletedAt = parseTimePtr(deletedAt)
	return &b, nil
}

// SetOneRepMax upserts the one-rep max for an exercise.
func (d *DB) SetOneRepMax(ctx context.Context, exerciseID int64, weight float64) (int64, error) {
	existing, err := d.GetOneRepMax(ctx, exerciseID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		if _, err := d.db.ExecContext(ctx, `UPDATE one_rep_maxes SET weight = ? WHERE id = ?`,
			weight, existing.ID); err != nil {
			return 0, fmt.Errorf("set one rep max: %w", err)
		}
		return existing.ID, nil
	}

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO one_rep_maxes (exercise_id, weight, created_at) VALUES (?, ?, ?)`,
		exerciseID, weight, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("set one rep max: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("set one rep max: %w", err)
	}
	return id, nil
}

// GetOneRepMax retrieves the active one-rep max for an exercise, or nil.
func (d *DB) GetOneRepMax(ctx context.Context, exerciseID int64) (*models.OneRepMax, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, exercise_id, weight, created_at, deleted_at FROM one_rep_maxes
		WHERE exercise_id = ? AND deleted_at IS NULL ORDER BY id DESC LIMIT 1`, exerciseID)
	orm, err := scanOneRepMaxFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan one rep max: %w", err)
	}
	return orm, nil
}

// ListOneRepMaxes returns all active one-rep maxes.
func (d *DB) ListOneRepMaxes(ctx context.Context) ([]*models.OneRepMax, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, exercise_id, weight, created_at, deleted_at FROM one_rep_maxes
		WHERE deleted_at IS NULL ORDER BY exercise_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list one rep maxes: %w", err)
	}
	defer rows.Close()

	var maxes []*models.OneRepMax
	for rows.Next() {
		orm, err := scanOneRepMaxFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan one rep max: %w", err)
		}
		maxes = append(maxes, orm)
	}
	return maxes, rows.Err()
}

// AddVersion appends a migration version stamp.
func (d *DB) AddVersion(ctx context.Context, version string) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO versionings (version, created_at) VALUES (?, ?)`,
		version, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("add version: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add version: %w", err)
	}
	return id, nil
}

// GetLatestVersion returns the most recently stamped migration version,
// or empty when the store is new.
func (d *DB) GetLatestVersion(ctx context.Context) (string, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT version FROM versionings
		WHERE deleted_at IS NULL ORDER BY id DESC LIMIT 1`)
	var version string
	err := row.Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get latest version: %w", err)
	}
	return version, nil
}

func scanSettingFrom(s rowScanner) (*models.Setting, error) {
	var st models.Setting
	var createdAt string
	var deletedAt sql.NullString
	if err := s.Scan(&st.ID, &st.Type, &st.Value, &createdAt, &deletedAt); err != nil {
		return nil, err
	}
	st.CreatedAt = parseTime(createdAt)
	st.DeletedAt = parseTimePtr(deletedAt)
	return &st, nil
}

func scanOneRepMaxFrom(s rowScanner) (*models.OneRepMax, error) {
	var orm models.OneRepMax
	var createdAt string
	var deletedAt sql.NullString
	if err := s.Scan(&orm.ID, &orm.ExerciseID, &orm.Weight, &createdAt, &deletedAt); err != nil {
		return nil, err
	}
	orm.CreatedAt = parseTime(createdAt)
	orm.DeletedAt = parseTimePtr(deletedAt)
	return &orm, nil
}
