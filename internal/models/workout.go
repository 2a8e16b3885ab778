// ABOUTME: Workout template, WorkoutExercise link, and WorkoutEvent models.
// ABOUTME: Workout order lives in WorkoutExercise.Order and the denormalized id lists.
package models

import "time"

// VolumeCalculationType selects how a workout's target volume is derived.
type VolumeCalculationType string

const (
	VolumeNone        VolumeCalculationType = "none"
	VolumeAlgorithmic VolumeCalculationType = "algorithmic"
	VolumeAIGenerated VolumeCalculationType = "ai_generated"
)

// Workout is a reusable workout template.
// WorkoutExerciseIDs is the denormalized ordered child list; the same order is
// mirrored in each child's Order field.
type Workout struct {
	ID                    int64                 `json:"id"`
	Title                 string                `json:"title"`
	Description           string                `json:"description,omitempty"`
	RecurringOnWeek       *string               `json:"recurringOnWeek,omitempty"`
	VolumeCalculationType VolumeCalculationType `json:"volumeCalculationType"`
	WorkoutExerciseIDs    []int64               `json:"workoutExerciseIds"`
	CreatedAt             time.Time             `json:"createdAt"`
	DeletedAt             *time.Time            `json:"deletedAt,omitempty"`
}

// NewWorkout creates a Workout template with the current timestamp.
func NewWorkout(title string) *Workout {
	return &Workout{
		Title:                 title,
		VolumeCalculationType: VolumeNone,
		CreatedAt:             time.Now(),
	}
}

// WorkoutExercise links an exercise into a workout with an ordered set list.
// Order is the source of truth for exercise sequence within the workout.
type WorkoutExercise struct {
	ID         int64      `json:"id"`
	WorkoutID  int64      `json:"workoutId"`
	ExerciseID int64      `json:"exerciseId"`
	SetIDs     []int64    `json:"setIds"`
	Order      int        `json:"order"`
	CreatedAt  time.Time  `json:"createdAt"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
}

// WorkoutEventStatus marks an event as planned or done.
type WorkoutEventStatus string

const (
	EventScheduled WorkoutEventStatus = "scheduled"
	EventCompleted WorkoutEventStatus = "completed"
)

// WorkoutEvent is one occurrence of a workout template.
// ExerciseData is a frozen JSON snapshot of what was actually performed;
// the nutrition and body fields are captured at completion time so later
// template edits never rewrite history.
type WorkoutEvent struct {
	ID            int64              `json:"id"`
	WorkoutID     int64              `json:"workoutId"`
	Title         string             `json:"title"`
	Date          time.Time          `json:"date"`
	Duration      int                `json:"duration"`
	Status        WorkoutEventStatus `json:"status"`
	ExerciseData  string             `json:"exerciseData,omitempty"`
	BodyWeight    float64            `json:"bodyWeight,omitempty"`
	FatPercentage float64            `json:"fatPercentage,omitempty"`
	EatingPhase   string             `json:"eatingPhase,omitempty"`
	Calories      float64            `json:"calories,omitempty"`
	Protein       float64            `json:"protein,omitempty"`
	Carbs         float64            `json:"carbohydrate,omitempty"`
	Fat           float64            `json:"fat,omitempty"`
	WorkoutVolume float64            `json:"workoutVolume,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	DeletedAt     *time.Time         `json:"deletedAt,omitempty"`
}

// NewWorkoutEvent creates a scheduled event for a workout template.
func NewWorkoutEvent(workoutID int64, title string, date time.Time) *WorkoutEvent {
	return &WorkoutEvent{
		WorkoutID: workoutID,
		Title:     title,
		Date:      date,
		Status:    EventScheduled,
		CreatedAt: time.Now(),
	}
}

// ExerciseWithSets is the assembled view of one workout slot: the exercise
// plus its ordered sets. Order mirrors the owning WorkoutExercise.
type ExerciseWithSets struct {
	Exercise Exercise `json:"exercise"`
	Sets     []Set    `json:"sets"`
	Order    int      `json:"order"`
}

// WorkoutDetails is a fully-resolved workout template.
type WorkoutDetails struct {
	Workout   Workout            `json:"workout"`
	Exercises []ExerciseWithSets `json:"exercises"`
}
