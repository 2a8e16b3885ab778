// ABOUTME: Full-store walk for the backup subsystem (SQLite backend).
// ABOUTME: GetAllData decrypts sensitive fields; ImportData clears and reloads every table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
	"github.com/blopa/musclog-app-sub000/internal/models"
	"github.com/blopa/musclog-app-sub000/internal/storage"
)

// GetAllData reads every table as stored (soft-deleted rows included) with
// sensitive fields decrypted. Rows that fail to decrypt are quarantined
// and omitted, like any other read.
func (d *DB) GetAllData(ctx context.Context) (*storage.ExportData, error) {
	data := &storage.ExportData{}

	if err := d.walkRows(ctx, `SELECT `+exerciseColumns+` FROM exercises ORDER BY id`, func(rows *sql.Rows) error {
		e, err := scanExerciseFrom(rows)
		if err != nil {
			return err
		}
		data.Exercises = append(data.Exercises, e)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump exercises: %w", err)
	}

	if err := d.walkRows(ctx, `SELECT `+setColumns+` FROM sets ORDER BY id`, func(rows *sql.Rows) error {
		s, err := scanSetFrom(rows)
		if err != nil {
			return err
		}
		data.Sets = append(data.Sets, s)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump sets: %w", err)
	}

	if err := d.walkRows(ctx, `SELECT `+workoutColumns+` FROM workouts ORDER BY id`, func(rows *sql.Rows) error {
		w, err := scanWorkoutFrom(rows)
		if err != nil {
			return err
		}
		data.Workouts = append(data.Workouts, w)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump workouts: %w", err)
	}

	if err := d.walkRows(ctx, `SELECT `+workoutExerciseColumns+` FROM workout_exercises ORDER BY id`, func(rows *sql.Rows) error {
		we, err := scanWorkoutExerciseFrom(rows)
		if err != nil {
			return err
		}
		data.WorkoutExercises = append(data.WorkoutExercises, we)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump workout exercises: %w", err)
	}

	if err := d.walkRows(ctx, `SELECT `+eventColumns+` FROM workout_events ORDER BY id`, func(rows *sql.Rows) error {
		ev, err := scanEventFrom(rows)
		if err != nil {
			return err
		}
		data.WorkoutEvents = append(data.WorkoutEvents, ev)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump workout events: %w", err)
	}

	if err := d.walkRows(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`, func(rows *sql.Rows) error {
		u, err := scanUserFrom(rows)
		if err != nil {
			return err
		}
		data.Users = append(data.Users, u)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump users: %w", err)
	}

	var corruptMetrics []int64
	if err := d.walkRows(ctx, `SELECT `+metricsColumns+` FROM user_metrics ORDER BY id`, func(rows *sql.Rows) error {
		m, raw, err := scanUserMetricsFrom(rows)
		if err != nil {
			return err
		}
		if err := d.decryptUserMetrics(m, raw); err != nil {
			if errors.Is(err, crypto.ErrDecrypt) {
				corruptMetrics = append(corruptMetrics, m.ID)
				return nil
			}
			return err
		}
		data.UserMetrics = append(data.UserMetrics, m)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump user metrics: %w", err)
	}

	var corruptNutrition []int64
	if err := d.walkRows(ctx, `SELECT `+nutritionColumns+` FROM user_nutrition ORDER BY id`, func(rows *sql.Rows) error {
		n, raw, err := scanUserNutritionFrom(rows)
		if err != nil {
			return err
		}
		if err := d.decryptUserNutrition(n, raw); err != nil {
			if errors.Is(err, crypto.ErrDecrypt) {
				corruptNutrition = append(corruptNutrition, n.ID)
				return nil
			}
			return err
		}
		data.UserNutrition = append(data.UserNutrition, n)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump user nutrition: %w", err)
	}

	if err := d.walkRows(ctx, `SELECT `+measurementsColumns+` FROM user_measurements ORDER BY id`, func(rows *sql.Rows) error {
		m, err := scanMeasurementsFrom(rows)
		if err != nil {
			return err
		}
		data.UserMeasurements = append(data.UserMeasurements, m)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump user measurements: %w", err)
	}

	if err := d.walkRows(ctx, `SELECT id, type, value, created_at, deleted_at FROM settings ORDER BY id`, func(rows *sql.Rows) error {
		s, err := scanSettingFrom(rows)
		if err != nil {
			return err
		}
		data.Settings = append(data.Settings, s)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump settings: %w", err)
	}

	if err := d.walkRows(ctx, `SELECT id, message, sender, misc, created_at, deleted_at FROM chats ORDER BY id`, func(rows *sql.Rows) error {
		var c models.Chat
		var sender, createdAt string
		var misc, deletedAt sql.NullString
		if err := rows.Scan(&c.ID, &c.Message, &sender, &misc, &createdAt, &deletedAt); err != nil {
			return err
		}
		c.Sender = models.ChatSender(sender)
		c.Misc = stringOrEmpty(misc)
		c.CreatedAt = parseTime(createdAt)
		c.DeletedAt = parseTimePtr(deletedAt)
		data.Chats = append(data.Chats, &c)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump chats: %w", err)
	}

	if err := d.walkRows(ctx, `SELECT id, value, created_at, deleted_at FROM bios ORDER BY id`, func(rows *sql.Rows) error {
		var b models.Bio
		var createdAt string
		var deletedAt sql.NullString
		if err := rows.Scan(&b.ID, &b.Value, &createdAt, &deletedAt); err != nil {
			return err
		}
		b.CreatedAt = parseTime(createdAt)
		b.DeletedAt = parseTimePtr(deletedAt)
		data.Bios = append(data.Bios, &b)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump bios: %w", err)
	}

	if err := d.walkRows(ctx, `SELECT id, exercise_id, weight, created_at, deleted_at FROM one_rep_maxes ORDER BY id`, func(rows *sql.Rows) error {
		orm, err := scanOneRepMaxFrom(rows)
		if err != nil {
			return err
		}
		data.OneRepMaxes = append(data.OneRepMaxes, orm)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump one rep maxes: %w", err)
	}

	if err := d.walkRows(ctx, `SELECT id, version, created_at, deleted_at FROM versionings ORDER BY id`, func(rows *sql.Rows) error {
		var v models.Versioning
		var createdAt string
		var deletedAt sql.NullString
		if err := rows.Scan(&v.ID, &v.Version, &createdAt, &deletedAt); err != nil {
			return err
		}
		v.CreatedAt = parseTime(createdAt)
		v.DeletedAt = parseTimePtr(deletedAt)
		data.Versionings = append(data.Versionings, &v)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("dump versionings: %w", err)
	}

	for _, id := range corruptMetrics {
		d.quarantineRow(ctx, "user_metrics", id, crypto.ErrDecrypt)
	}
	for _, id := range corruptNutrition {
		d.quarantineRow(ctx, "user_nutrition", id, crypto.ErrDecrypt)
	}

	return data, nil
}

// ImportData clears every table and reloads it from the export, keeping
// ids so cross-entity references survive. Sensitive fields are
// re-encrypted on the way in. The whole restore runs in one transaction
// with foreign keys disabled, so insertion order never matters and a
// failure leaves the store untouched.
func (d *DB) ImportData(ctx context.Context, data *storage.ExportData) (err error) {
	// The pragma is connection-scoped, so the transaction must run on the
	// same dedicated connection.
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = OFF`); err != nil {
		return fmt.Errorf("import: disable foreign keys: %w", err)
	}
	defer func() {
		if _, fkErr := conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`); fkErr != nil && err == nil {
			err = fmt.Errorf("import: re-enable foreign keys: %w", fkErr)
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tables := []string{
		"exercises", "sets", "workouts", "workout_exercises", "workout_events",
		"users", "user_metrics", "user_nutrition", "user_measurements",
		"settings", "chats", "bios", "one_rep_maxes", "versionings",
	}
	for _, table := range tables {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("import: clear %s: %w", table, err)
		}
	}

	for _, e := range data.Exercises {
		if _, err := tx.Exec(`
			INSERT INTO exercises (id, name, muscle_group, type, description, image, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.MuscleGroup, string(e.Type), nullIfEmpty(e.Description),
			nullIfEmpty(e.Image), formatTime(e.CreatedAt), formatTimePtr(e.DeletedAt)); err != nil {
			return fmt.Errorf("import exercise %d: %w", e.ID, err)
		}
	}

	for _, s := range data.Sets {
		if _, err := tx.Exec(`
			INSERT INTO sets (id, exercise_id, reps, weight, rest_time, difficulty_level, is_drop_set, superset_name, set_order, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.ExerciseID, s.Reps, s.Weight, s.RestTime, s.DifficultyLevel,
			s.IsDropSet, nullIfEmpty(s.SupersetName), s.SetOrder,
			formatTime(s.CreatedAt), formatTimePtr(s.DeletedAt)); err != nil {
			return fmt.Errorf("import set %d: %w", s.ID, err)
		}
	}

	for _, w := range data.Workouts {
		if _, err := tx.Exec(`
			INSERT INTO workouts (id, title, description, recurring_on_week, volume_calculation_type, workout_exercise_ids, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			w.ID, w.Title, nullIfEmpty(w.Description), w.RecurringOnWeek,
			string(volumeTypeOrNone(w.VolumeCalculationType)), encodeIDs(w.WorkoutExerciseIDs),
			formatTime(w.CreatedAt), formatTimePtr(w.DeletedAt)); err != nil {
			return fmt.Errorf("import workout %d: %w", w.ID, err)
		}
	}

	for _, we := range data.WorkoutExercises {
		if _, err := tx.Exec(`
			INSERT INTO workout_exercises (id, workout_id, exercise_id, set_ids, exercise_order, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			we.ID, we.WorkoutID, we.ExerciseID, encodeIDs(we.SetIDs), we.Order,
			formatTime(we.CreatedAt), formatTimePtr(we.DeletedAt)); err != nil {
			return fmt.Errorf("import workout exercise %d: %w", we.ID, err)
		}
	}

	for _, ev := range data.WorkoutEvents {
		if _, err := tx.Exec(`
			INSERT INTO workout_events (id, workout_id, title, date, duration, status, exercise_data, body_weight, fat_percentage, eating_phase, calories, protein, carbohydrate, fat, workout_volume, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, ev.WorkoutID, ev.Title, formatTime(ev.Date), ev.Duration, string(ev.Status),
			nullIfEmpty(ev.ExerciseData), ev.BodyWeight, ev.FatPercentage,
			nullIfEmpty(ev.EatingPhase), ev.Calories, ev.Protein, ev.Carbs, ev.Fat,
			ev.WorkoutVolume, formatTime(ev.CreatedAt), formatTimePtr(ev.DeletedAt)); err != nil {
			return fmt.Errorf("import workout event %d: %w", ev.ID, err)
		}
	}

	for _, u := range data.Users {
		if _, err := tx.Exec(`
			INSERT INTO users (id, name, birthday, gender, fitness_goals, activity_level, lifting_experience, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Name, nullIfEmpty(u.Birthday), nullIfEmpty(u.Gender),
			nullIfEmpty(u.FitnessGoals), nullIfEmpty(u.ActivityLevel),
			nullIfEmpty(u.LiftingExperience), formatTime(u.CreatedAt), formatTimePtr(u.DeletedAt)); err != nil {
			return fmt.Errorf("import user %d: %w", u.ID, err)
		}
	}

	for _, m := range data.UserMetrics {
		weight, err := d.codec.EncryptFloat(m.Weight)
		if err != nil {
			return fmt.Errorf("import user metrics %d: %w", m.ID, err)
		}
		height, err := d.codec.EncryptFloat(m.Height)
		if err != nil {
			return fmt.Errorf("import user metrics %d: %w", m.ID, err)
		}
		fatPct, err := d.codec.EncryptFloat(m.FatPercentage)
		if err != nil {
			return fmt.Errorf("import user metrics %d: %w", m.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO user_metrics (id, user_id, data_id, date, weight, height, fat_percentage, eating_phase, source, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.UserID, m.DataID, formatTime(m.Date), weight, height, fatPct,
			nullIfEmpty(string(m.EatingPhase)), string(m.Source),
			formatTime(m.CreatedAt), formatTimePtr(m.DeletedAt)); err != nil {
			return fmt.Errorf("import user metrics %d: %w", m.ID, err)
		}
	}

	for _, n := range data.UserNutrition {
		name, err := d.codec.Encrypt(n.Name)
		if err != nil {
			return fmt.Errorf("import user nutrition %d: %w", n.ID, err)
		}
		floats := nutritionFloats(n)
		encrypted := make([]any, len(floats))
		for i, f := range floats {
			v, err := d.codec.EncryptFloat(*f)
			if err != nil {
				return fmt.Errorf("import user nutrition %d: %w", n.ID, err)
			}
			encrypted[i] = v
		}
		args := append([]any{n.ID, n.UserID, n.DataID, name, formatTime(n.Date)}, encrypted...)
		args = append(args, nullIfEmpty(n.MealType), n.GramsPerServing, string(n.Source),
			formatTime(n.CreatedAt), formatTimePtr(n.DeletedAt))
		if _, err := tx.Exec(`
			INSERT INTO user_nutrition (id, user_id, data_id, name, date, calories, protein, carbohydrate, fat, fiber, sugar, saturated_fat, monounsaturated_fat, polyunsaturated_fat, trans_fat, unsaturated_fat, cholesterol, sodium, potassium, meal_type, grams_per_serving, source, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
			return fmt.Errorf("import user nutrition %d: %w", n.ID, err)
		}
	}

	for _, m := range data.UserMeasurements {
		if _, err := tx.Exec(`
			INSERT INTO user_measurements (id, user_id, data_id, date, measurements, source, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.UserID, m.DataID, formatTime(m.Date), encodeMeasurements(m.Measurements),
			string(m.Source), formatTime(m.CreatedAt), formatTimePtr(m.DeletedAt)); err != nil {
			return fmt.Errorf("import user measurements %d: %w", m.ID, err)
		}
	}

	for _, s := range data.Settings {
		if _, err := tx.Exec(`
			INSERT INTO settings (id, type, value, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?)`,
			s.ID, s.Type, s.Value, formatTime(s.CreatedAt), formatTimePtr(s.DeletedAt)); err != nil {
			return fmt.Errorf("import setting %d: %w", s.ID, err)
		}
	}

	for _, c := range data.Chats {
		if _, err := tx.Exec(`
			INSERT INTO chats (id, message, sender, misc, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Message, string(c.Sender), nullIfEmpty(c.Misc),
			formatTime(c.CreatedAt), formatTimePtr(c.DeletedAt)); err != nil {
			return fmt.Errorf("import chat %d: %w", c.ID, err)
		}
	}

	for _, b := range data.Bios {
		if _, err := tx.Exec(`
			INSERT INTO bios (id, value, created_at, deleted_at) VALUES (?, ?, ?, ?)`,
			b.ID, b.Value, formatTime(b.CreatedAt), formatTimePtr(b.DeletedAt)); err != nil {
			return fmt.Errorf("import bio %d: %w", b.ID, err)
		}
	}

	for _, orm := range data.OneRepMaxes {
		if _, err := tx.Exec(`
			INSERT INTO one_rep_maxes (id, exercise_id, weight, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?)`,
			orm.ID, orm.ExerciseID, orm.Weight, formatTime(orm.CreatedAt), formatTimePtr(orm.DeletedAt)); err != nil {
			return fmt.Errorf("import one rep max %d: %w", orm.ID, err)
		}
	}

	for _, v := range data.Versionings {
		if _, err := tx.Exec(`
			INSERT INTO versionings (id, version, created_at, deleted_at) VALUES (?, ?, ?, ?)`,
			v.ID, v.Version, formatTime(v.CreatedAt), formatTimePtr(v.DeletedAt)); err != nil {
			return fmt.Errorf("import versioning %d: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("restore failed to commit", "err", err)
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

func (d *DB) walkRows(ctx context.Context, query string, fn func(*sql.Rows) error) error {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
