// ABOUTME: Repository interface for the musclog data layer.
// ABOUTME: Both the SQLite and badger backends implement this contract identically.
package storage

import (
	"context"
	"time"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

// Repository is the storage contract for all fourteen entities.
//
// Shared semantics across backends:
//   - Get* returns (nil, nil) when no active row matches; callers null-check.
//   - Reads exclude soft-deleted rows unless a WithTrashed variant is used.
//   - Delete* is physical, with the documented cascades.
//   - Add* on entities with a DataID (metrics, nutrition, measurements) is an
//     idempotent upsert: an existing active row with the same DataID is
//     updated in place, preserving its original CreatedAt.
//   - Reads of encrypted rows that fail to decrypt delete the row as a
//     self-healing side effect and omit it from results.
type Repository interface {
	// Exercises
	AddExercise(ctx context.Context, e *models.Exercise) (int64, error)
	UpdateExercise(ctx context.Context, e *models.Exercise) error
	GetExerciseByID(ctx context.Context, id int64) (*models.Exercise, error)
	ListExercises(ctx context.Context) ([]*models.Exercise, error)
	// DeleteExercise cascades: removes the exercise's sets and every
	// WorkoutExercise referencing it, rewriting parent workout id lists.
	DeleteExercise(ctx context.Context, id int64) error

	// Sets
	AddSet(ctx context.Context, s *models.Set) (int64, error)
	UpdateSet(ctx context.Context, s *models.Set) error
	GetSetByID(ctx context.Context, id int64) (*models.Set, error)
	ListSetsByIDs(ctx context.Context, ids []int64) ([]*models.Set, error)
	ListSetsByExercise(ctx context.Context, exerciseID int64) ([]*models.Set, error)
	// DeleteSet cascades: the id is pulled from every WorkoutExercise's
	// SetIDs; a WorkoutExercise whose SetIDs empties is itself deleted.
	DeleteSet(ctx context.Context, id int64) error

	// Workouts
	AddWorkout(ctx context.Context, w *models.Workout) (int64, error)
	// UpdateWorkout merges fields except RecurringOnWeek, which is always
	// taken from the argument: omitting it clears the recurrence.
	UpdateWorkout(ctx context.Context, w *models.Workout) error
	GetWorkoutByID(ctx context.Context, id int64) (*models.Workout, error)
	GetWorkoutByIDWithTrashed(ctx context.Context, id int64) (*models.Workout, error)
	ListWorkouts(ctx context.Context) ([]*models.Workout, error)
	DeleteWorkout(ctx context.Context, id int64) error

	// Workout exercises
	AddWorkoutExercise(ctx context.Context, we *models.WorkoutExercise) (int64, error)
	UpdateWorkoutExercise(ctx context.Context, we *models.WorkoutExercise) error
	GetWorkoutExerciseByID(ctx context.Context, id int64) (*models.WorkoutExercise, error)
	ListWorkoutExercisesByWorkout(ctx context.Context, workoutID int64) ([]*models.WorkoutExercise, error)
	DeleteWorkoutExercise(ctx context.Context, id int64) error

	// Composite workout operations
	AddWorkoutWithExercises(ctx context.Context, w *models.Workout, children []*models.WorkoutExercise, existingID int64) (int64, error)
	GetWorkoutDetails(ctx context.Context, workoutID int64) (*models.WorkoutDetails, error)
	GetExercisesWithSetsFromWorkout(ctx context.Context, workoutID int64) ([]models.ExerciseWithSets, error)

	// Workout events
	AddWorkoutEvent(ctx context.Context, ev *models.WorkoutEvent) (int64, error)
	UpdateWorkoutEvent(ctx context.Context, ev *models.WorkoutEvent) error
	GetWorkoutEventByID(ctx context.Context, id int64) (*models.WorkoutEvent, error)
	ListWorkoutEventsByWorkout(ctx context.Context, workoutID int64) ([]*models.WorkoutEvent, error)
	ListWorkoutEventsBetween(ctx context.Context, start, end time.Time) ([]*models.WorkoutEvent, error)
	ListRecentWorkoutEvents(ctx context.Context, limit int) ([]*models.WorkoutEvent, error)
	DeleteWorkoutEvent(ctx context.Context, id int64) error

	// User
	AddUser(ctx context.Context, u *models.User) (int64, error)
	UpdateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetLatestUser(ctx context.Context) (*models.User, error)

	// User metrics (encrypted at rest)
	AddUserMetrics(ctx context.Context, m *models.UserMetrics) (int64, error)
	UpdateUserMetrics(ctx context.Context, m *models.UserMetrics) error
	GetUserMetricsByID(ctx context.Context, id int64) (*models.UserMetrics, error)
	GetUserMetricsByDataID(ctx context.Context, dataID string) (*models.UserMetrics, error)
	ListUserMetrics(ctx context.Context, userID int64) ([]*models.UserMetrics, error)
	ListUserMetricsBetween(ctx context.Context, userID int64, start, end time.Time) ([]*models.UserMetrics, error)
	DeleteUserMetrics(ctx context.Context, id int64) error
	GetAllLatestMetricsForUser(ctx context.Context, userID int64) (*models.LatestUserMetrics, error)

	// User nutrition (encrypted at rest)
	AddUserNutrition(ctx context.Context, n *models.UserNutrition) (int64, error)
	UpdateUserNutrition(ctx context.Context, n *models.UserNutrition) error
	GetUserNutritionByID(ctx context.Context, id int64) (*models.UserNutrition, error)
	GetUserNutritionByDataID(ctx context.Context, dataID string) (*models.UserNutrition, error)
	ListUserNutrition(ctx context.Context, userID int64) ([]*models.UserNutrition, error)
	ListUserNutritionBetween(ctx context.Context, userID int64, start, end time.Time) ([]*models.UserNutrition, error)
	DeleteUserNutrition(ctx context.Context, id int64) error

	// User measurements
	AddUserMeasurements(ctx context.Context, m *models.UserMeasurements) (int64, error)
	GetUserMeasurementsByID(ctx context.Context, id int64) (*models.UserMeasurements, error)
	ListUserMeasurementsBetween(ctx context.Context, userID int64, start, end time.Time) ([]*models.UserMeasurements, error)
	DeleteUserMeasurements(ctx context.Context, id int64) error

	// Settings (singleton per type)
	SetSetting(ctx context.Context, settingType, value string) (int64, error)
	GetSetting(ctx context.Context, settingType string) (*models.Setting, error)
	ListSettings(ctx context.Context) ([]*models.Setting, error)
	DeleteSetting(ctx context.Context, settingType string) error

	// Chat log
	AddChat(ctx context.Context, c *models.Chat) (int64, error)
	ListChats(ctx context.Context, limit int) ([]*models.Chat, error)
	DeleteChat(ctx context.Context, id int64) error
	ClearChats(ctx context.Context) error

	// Bio log
	AddBio(ctx context.Context, value string) (int64, error)
	GetLatestBio(ctx context.Context) (*models.Bio, error)

	// One-rep maxes (upsert by exercise)
	SetOneRepMax(ctx context.Context, exerciseID int64, weight float64) (int64, error)
	GetOneRepMax(ctx context.Context, exerciseID int64) (*models.OneRepMax, error)
	ListOneRepMaxes(ctx context.Context) ([]*models.OneRepMax, error)

	// Versioning (migration gate)
	AddVersion(ctx context.Context, version string) (int64, error)
	GetLatestVersion(ctx context.Context) (string, error)

	// Backup walk: everything as stored, sensitive fields decrypted.
	GetAllData(ctx context.Context) (*ExportData, error)
	// ImportData clears every table then inserts the rows verbatim,
	// preserving ids and CreatedAt, re-encrypting sensitive fields.
	ImportData(ctx context.Context, data *ExportData) error

	Close() error
}

// ExportData is the full decrypted contents of a store, keyed by entity.
// JSON tags are the canonical dump table names shared by both backends.
type ExportData struct {
	Exercises        []*models.Exercise         `json:"exercises"`
	Sets             []*models.Set              `json:"sets"`
	Workouts         []*models.Workout          `json:"workouts"`
	WorkoutExercises []*models.WorkoutExercise  `json:"workoutExercises"`
	WorkoutEvents    []*models.WorkoutEvent     `json:"workoutEvents"`
	Users            []*models.User             `json:"users"`
	UserMetrics      []*models.UserMetrics      `json:"userMetrics"`
	UserNutrition    []*models.UserNutrition    `json:"userNutrition"`
	UserMeasurements []*models.UserMeasurements `json:"userMeasurements"`
	Settings         []*models.Setting          `json:"settings"`
	Chats            []*models.Chat             `json:"chats"`
	Bios             []*models.Bio              `json:"bios"`
	OneRepMaxes      []*models.OneRepMax        `json:"oneRepMaxes"`
	Versionings      []*models.Versioning       `json:"versionings"`
}
