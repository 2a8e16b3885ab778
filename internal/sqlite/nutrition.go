// ABOUTME: UserNutrition CRUD for SQLite storage with field-level encryption.
// ABOUTME: Name and every numeric field are encrypted; shares the dataId upsert contract.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
	"github.com/blopa/musclog-app-sub000/internal/models"
)

const nutritionColumns = "id, user_id, data_id, name, date, calories, protein, carbohydrate, fat, fiber, sugar, saturated_fat, monounsaturated_fat, polyunsaturated_fat, trans_fat, unsaturated_fat, cholesterol, sodium, potassium, meal_type, grams_per_serving, source, created_at, deleted_at"

// nutritionFloats returns pointers to the encrypted numeric fields in the
// fixed column order used by reads and writes.
func nutritionFloats(n *models.UserNutrition) []*float64 {
	return []*float64{
		&n.Calories, &n.Protein, &n.Carbs, &n.Fat, &n.Fiber, &n.Sugar,
		&n.SaturatedFat, &n.MonounsaturatedFat, &n.PolyunsaturatedFat,
		&n.TransFat, &n.UnsaturatedFat, &n.Cholesterol, &n.Sodium, &n.Potassium,
	}
}

// AddUserNutrition inserts a nutrition row, or updates the existing active
// row carrying the same dataId, preserving its CreatedAt. Returns the row id.
func (d *DB) AddUserNutrition(ctx context.Context, n *models.UserNutrition) (int64, error) {
	if n.DataID == "" {
		n.DataID = uuid.NewString()
	}
	if n.Source == "" {
		n.Source = models.SourceUserInput
	}
	if n.Date.IsZero() {
		n.Date = time.Now()
	}

	existing, err := d.GetUserNutritionByDataID(ctx, n.DataID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		n.ID = existing.ID
		n.CreatedAt = existing.CreatedAt
		if err := d.writeUserNutrition(ctx, n, true); err != nil {
			return 0, err
		}
		return existing.ID, nil
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := d.writeUserNutrition(ctx, n, false); err != nil {
		return 0, err
	}
	return n.ID, nil
}

// UpdateUserNutrition merges the supplied fields over the stored row.
func (d *DB) UpdateUserNutrition(ctx context.Context, n *models.UserNutrition) error {
	existing, err := d.GetUserNutritionByID(ctx, n.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update user nutrition: not found: %d", n.ID)
	}

	merged := *existing
	if n.Name != "" {
		merged.Name = n.Name
	}
	if !n.Date.IsZero() {
		merged.Date = n.Date
	}
	if n.MealType != "" {
		merged.MealType = n.MealType
	}
	if n.GramsPerServing != 0 {
		merged.GramsPerServing = n.GramsPerServing
	}
	if n.Source != "" {
		merged.Source = n.Source
	}
	src := nutritionFloats(n)
	dst := nutritionFloats(&merged)
	for i := range src {
		if *src[i] != 0 {
			*dst[i] = *src[i]
		}
	}

	return d.writeUserNutrition(ctx, &merged, true)
}

func (d *DB) writeUserNutrition(ctx context.Context, n *models.UserNutrition, update bool) error {
	name, err := d.codec.Encrypt(n.Name)
	if err != nil {
		return fmt.Errorf("encrypt name: %w", err)
	}

	floats := nutritionFloats(n)
	encrypted := make([]any, len(floats))
	for i, f := range floats {
		v, err := d.codec.EncryptFloat(*f)
		if err != nil {
			return fmt.Errorf("encrypt nutrition field: %w", err)
		}
		encrypted[i] = v
	}

	if update {
		args := append([]any{n.UserID, name, formatTime(n.Date)}, encrypted...)
		args = append(args, nullIfEmpty(n.MealType), n.GramsPerServing, string(n.Source), n.ID)
		_, err = d.db.ExecContext(ctx, `
			UPDATE user_nutrition SET user_id = ?, name = ?, date = ?, calories = ?, protein = ?, carbohydrate = ?, fat = ?, fiber = ?, sugar = ?, saturated_fat = ?, monounsaturated_fat = ?, polyunsaturated_fat = ?, trans_fat = ?, unsaturated_fat = ?, cholesterol = ?, sodium = ?, potassium = ?, meal_type = ?, grams_per_serving = ?, source = ?
			WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("update user nutrition: %w", err)
		}
		return nil
	}

	args := append([]any{n.UserID, n.DataID, name, formatTime(n.Date)}, encrypted...)
	args = append(args, nullIfEmpty(n.MealType), n.GramsPerServing, string(n.Source),
		formatTime(n.CreatedAt), formatTimePtr(n.DeletedAt))
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO user_nutrition (user_id, data_id, name, date, calories, protein, carbohydrate, fat, fiber, sugar, saturated_fat, monounsaturated_fat, polyunsaturated_fat, trans_fat, unsaturated_fat, cholesterol, sodium, potassium, meal_type, grams_per_serving, source, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("add user nutrition: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("add user nutrition: %w", err)
	}
	return nil
}

// GetUserNutritionByID retrieves an active nutrition row, or nil. A row
// whose ciphertext cannot be decrypted is deleted and reported not found.
func (d *DB) GetUserNutritionByID(ctx context.Context, id int64) (*models.UserNutrition, error) {
	return d.getUserNutritionWhere(ctx, `id = ?`, id)
}

// GetUserNutritionByDataID retrieves the active row with the given dataId.
func (d *DB) GetUserNutritionByDataID(ctx context.Context, dataID string) (*models.UserNutrition, error) {
	return d.getUserNutritionWhere(ctx, `data_id = ?`, dataID)
}

func (d *DB) getUserNutritionWhere(ctx context.Context, where string, arg any) (*models.UserNutrition, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+nutritionColumns+` FROM user_nutrition
		WHERE `+where+` AND deleted_at IS NULL`, arg)

	n, raw, err := scanUserNutritionFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user nutrition: %w", err)
	}

	if err := d.decryptUserNutrition(n, raw); err != nil {
		if errors.Is(err, crypto.ErrDecrypt) {
			d.quarantineRow(ctx, "user_nutrition", n.ID, err)
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// ListUserNutrition returns all of a user's active nutrition rows, newest
// first. Unreadable rows are deleted and omitted.
func (d *DB) ListUserNutrition(ctx context.Context, userID int64) ([]*models.UserNutrition, error) {
	return d.listUserNutrition(ctx, `
		SELECT `+nutritionColumns+` FROM user_nutrition
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY date DESC, id DESC`, userID)
}

// ListUserNutritionBetween returns rows in [start, end), oldest first.
func (d *DB) ListUserNutritionBetween(ctx context.Context, userID int64, start, end time.Time) ([]*models.UserNutrition, error) {
	return d.listUserNutrition(ctx, `
		SELECT `+nutritionColumns+` FROM user_nutrition
		WHERE user_id = ? AND date >= ? AND date < ? AND deleted_at IS NULL
		ORDER BY date ASC, id ASC`, userID, formatTime(start), formatTime(end))
}

func (d *DB) listUserNutrition(ctx context.Context, query string, args ...any) ([]*models.UserNutrition, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list user nutrition: %w", err)
	}
	defer rows.Close()

	var entries []*models.UserNutrition
	var corrupt []int64
	for rows.Next() {
		n, raw, err := scanUserNutritionFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user nutrition: %w", err)
		}
		if err := d.decryptUserNutrition(n, raw); err != nil {
			if errors.Is(err, crypto.ErrDecrypt) {
				corrupt = append(corrupt, n.ID)
				continue
			}
			return nil, err
		}
		entries = append(entries, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range corrupt {
		d.quarantineRow(ctx, "user_nutrition", id, crypto.ErrDecrypt)
	}
	return entries, nil
}

// DeleteUserNutrition removes a nutrition row.
func (d *DB) DeleteUserNutrition(ctx context.Context, id int64) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM user_nutrition WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user nutrition: %w", err)
	}
	return nil
}

type rawUserNutrition struct {
	name   string
	floats [14]string
}

func scanUserNutritionFrom(s rowScanner) (*models.UserNutrition, *rawUserNutrition, error) {
	var n models.UserNutrition
	var raw rawUserNutrition
	var date, source, createdAt string
	var name, mealType, deletedAt sql.NullString
	encrypted := make([]sql.NullString, 14)

	dest := []any{&n.ID, &n.UserID, &n.DataID, &name, &date}
	for i := range encrypted {
		dest = append(dest, &encrypted[i])
	}
	dest = append(dest, &mealType, &n.GramsPerServing, &source, &createdAt, &deletedAt)

	if err := s.Scan(dest...); err != nil {
		return nil, nil, err
	}

	raw.name = stringOrEmpty(name)
	for i := range encrypted {
		raw.floats[i] = stringOrEmpty(encrypted[i])
	}
	n.Date = parseTime(date)
	n.MealType = stringOrEmpty(mealType)
	n.Source = models.MetricSource(source)
	n.CreatedAt = parseTime(createdAt)
	n.DeletedAt = parseTimePtr(deletedAt)
	return &n, &raw, nil
}

func (d *DB) decryptUserNutrition(n *models.UserNutrition, raw *rawUserNutrition) error {
	name, err := d.codec.Decrypt(raw.name)
	if err != nil {
		return err
	}
	n.Name = name

	floats := nutritionFloats(n)
	for i, f := range floats {
		v, err := d.codec.DecryptFloat(raw.floats[i])
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}
