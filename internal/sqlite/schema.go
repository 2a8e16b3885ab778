// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines the fourteen musclog tables and their indexes.
package sqlite

// initSchema creates the database schema. Every statement is idempotent so
// this runs unconditionally on open.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exercises (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		muscle_group TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT,
		image TEXT,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS sets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exercise_id INTEGER NOT NULL,
		reps INTEGER NOT NULL,
		weight REAL NOT NULL,
		rest_time INTEGER NOT NULL DEFAULT 0,
		difficulty_level INTEGER NOT NULL DEFAULT 5,
		is_drop_set INTEGER NOT NULL DEFAULT 0,
		superset_name TEXT,
		set_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS workouts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		recurring_on_week TEXT,
		volume_calculation_type TEXT NOT NULL DEFAULT 'none',
		workout_exercise_ids TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS workout_exercises (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workout_id INTEGER NOT NULL,
		exercise_id INTEGER NOT NULL,
		set_ids TEXT NOT NULL DEFAULT '[]',
		exercise_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS workout_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workout_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		duration INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		exercise_data TEXT,
		body_weight REAL NOT NULL DEFAULT 0,
		fat_percentage REAL NOT NULL DEFAULT 0,
		eating_phase TEXT,
		calories REAL NOT NULL DEFAULT 0,
		protein REAL NOT NULL DEFAULT 0,
		carbohydrate REAL NOT NULL DEFAULT 0,
		fat REAL NOT NULL DEFAULT 0,
		workout_volume REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		birthday TEXT,
		gender TEXT,
		fitness_goals TEXT,
		activity_level TEXT,
		lifting_experience TEXT,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS user_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		data_id TEXT NOT NULL,
		date TEXT NOT NULL,
		weight TEXT,
		height TEXT,
		fat_percentage TEXT,
		eating_phase TEXT,
		source TEXT NOT NULL,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS user_nutrition (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		data_id TEXT NOT NULL,
		name TEXT,
		date TEXT NOT NULL,
		calories TEXT,
		protein TEXT,
		carbohydrate TEXT,
		fat TEXT,
		fiber TEXT,
		sugar TEXT,
		saturated_fat TEXT,
		monounsaturated_fat TEXT,
		polyunsaturated_fat TEXT,
		trans_fat TEXT,
		unsaturated_fat TEXT,
		cholesterol TEXT,
		sodium TEXT,
		potassium TEXT,
		meal_type TEXT,
		grams_per_serving REAL NOT NULL DEFAULT 0,
		source TEXT NOT NULL,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS user_measurements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		data_id TEXT NOT NULL,
		date TEXT NOT NULL,
		measurements TEXT NOT NULL DEFAULT '{}',
		source TEXT NOT NULL,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS chats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message TEXT NOT NULL,
		sender TEXT NOT NULL,
		misc TEXT,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS bios (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		value TEXT NOT NULL,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS one_rep_maxes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exercise_id INTEGER NOT NULL,
		weight REAL NOT NULL,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS versionings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version TEXT NOT NULL,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sets_exercise ON sets(exercise_id);
	CREATE INDEX IF NOT EXISTS idx_workout_exercises_workout ON workout_exercises(workout_id);
	CREATE INDEX IF NOT EXISTS idx_workout_events_workout ON workout_events(workout_id);
	CREATE INDEX IF NOT EXISTS idx_workout_events_date ON workout_events(date DESC);
	CREATE INDEX IF NOT EXISTS idx_user_metrics_user_date ON user_metrics(user_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_user_metrics_data_id ON user_metrics(data_id);
	CREATE INDEX IF NOT EXISTS idx_user_nutrition_user_date ON user_nutrition(user_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_user_nutrition_data_id ON user_nutrition(data_id);
	CREATE INDEX IF NOT EXISTS idx_user_measurements_user_date ON user_measurements(user_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_settings_type ON settings(type);
	CREATE INDEX IF NOT EXISTS idx_one_rep_maxes_exercise ON one_rep_maxes(exercise_id);
	`

	_, err := d.db.Exec(schema)
	return err
}
