// ABOUTME: User profile, body metrics, nutrition, and measurement models.
// ABOUTME: Sensitive metric and nutrition values are encrypted at rest by the backends.
package models

import "time"

// MetricSource tags where a metric or nutrition row came from.
type MetricSource string

const (
	SourceUserInput     MetricSource = "user_input"
	SourceHealthConnect MetricSource = "health_connect"
)

// EatingPhase describes the current diet phase.
type EatingPhase string

const (
	EatingBulking     EatingPhase = "bulking"
	EatingCutting     EatingPhase = "cutting"
	EatingMaintenance EatingPhase = "maintenance"
)

// User is the app's (single) user profile.
type User struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Birthday          string     `json:"birthday,omitempty"`
	Gender            string     `json:"gender,omitempty"`
	FitnessGoals      string     `json:"fitnessGoals,omitempty"`
	ActivityLevel     string     `json:"activityLevel,omitempty"`
	LiftingExperience string     `json:"liftingExperience,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	DeletedAt         *time.Time `json:"deletedAt,omitempty"`
}

// UserMetrics is one (possibly partial) body-metrics reading for a date.
// Weight, Height, and FatPercentage are stored encrypted; zero means absent.
// DataID is the idempotency key for external syncs: a second Add with the
// same DataID updates the existing row in place.
type UserMetrics struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"userId"`
	DataID        string       `json:"dataId"`
	Date          time.Time    `json:"date"`
	Weight        float64      `json:"weight,omitempty"`
	Height        float64      `json:"height,omitempty"`
	FatPercentage float64      `json:"fatPercentage,omitempty"`
	EatingPhase   EatingPhase  `json:"eatingPhase,omitempty"`
	Source        MetricSource `json:"source"`
	CreatedAt     time.Time    `json:"createdAt"`
	DeletedAt     *time.Time   `json:"deletedAt,omitempty"`
}

// LatestUserMetrics is the per-field "latest known value" aggregate: each
// field is the most recent non-empty value found scanning back in time,
// independently of the others. LatestID is the highest row id that
// contributed a field, used downstream for cache invalidation.
type LatestUserMetrics struct {
	UserID        int64       `json:"userId"`
	Weight        float64     `json:"weight,omitempty"`
	Height        float64     `json:"height,omitempty"`
	FatPercentage float64     `json:"fatPercentage,omitempty"`
	EatingPhase   EatingPhase `json:"eatingPhase,omitempty"`
	LatestID      int64       `json:"latestId"`
	Date          time.Time   `json:"date"`
}

// UserNutrition is one food/meal entry. Name and every numeric field are
// stored encrypted. Shares the DataID idempotency contract with UserMetrics.
type UserNutrition struct {
	ID                  int64        `json:"id"`
	UserID              int64        `json:"userId"`
	DataID              string       `json:"dataId"`
	Name                string       `json:"name"`
	Date                time.Time    `json:"date"`
	Calories            float64      `json:"calories,omitempty"`
	Protein             float64      `json:"protein,omitempty"`
	Carbs               float64      `json:"carbohydrate,omitempty"`
	Fat                 float64      `json:"fat,omitempty"`
	Fiber               float64      `json:"fiber,omitempty"`
	Sugar               float64      `json:"sugar,omitempty"`
	SaturatedFat        float64      `json:"saturatedFat,omitempty"`
	MonounsaturatedFat  float64      `json:"monounsaturatedFat,omitempty"`
	PolyunsaturatedFat  float64      `json:"polyunsaturatedFat,omitempty"`
	TransFat            float64      `json:"transFat,omitempty"`
	UnsaturatedFat      float64      `json:"unsaturatedFat,omitempty"`
	Cholesterol         float64      `json:"cholesterol,omitempty"`
	Sodium              float64      `json:"sodium,omitempty"`
	Potassium           float64      `json:"potassium,omitempty"`
	MealType            string       `json:"mealType,omitempty"`
	GramsPerServing     float64      `json:"gramsPerServing,omitempty"`
	Source              MetricSource `json:"source"`
	CreatedAt           time.Time    `json:"createdAt"`
	DeletedAt           *time.Time   `json:"deletedAt,omitempty"`
}

// UserMeasurements holds arbitrary named body measurements for a date
// (neck, waist, biceps, ...). Stored as a JSON map, not encrypted.
type UserMeasurements struct {
	ID           int64              `json:"id"`
	UserID       int64              `json:"userId"`
	DataID       string             `json:"dataId"`
	Date         time.Time          `json:"date"`
	Measurements map[string]float64 `json:"measurements"`
	Source       MetricSource       `json:"source"`
	CreatedAt    time.Time          `json:"createdAt"`
	DeletedAt    *time.Time         `json:"deletedAt,omitempty"`
}
