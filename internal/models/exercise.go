// ABOUTME: Exercise and Set models for workout building.
// ABOUTME: Sets carry superset membership and ordering used by session replay.
package models

import "time"

// ExerciseType classifies how an exercise loads the body.
type ExerciseType string

const (
	ExerciseCompound   ExerciseType = "compound"
	ExerciseMachine    ExerciseType = "machine"
	ExerciseIsolation  ExerciseType = "isolation"
	ExerciseBodyweight ExerciseType = "bodyweight"
)

// AllExerciseTypes returns all valid exercise types.
var AllExerciseTypes = []ExerciseType{
	ExerciseCompound, ExerciseMachine, ExerciseIsolation, ExerciseBodyweight,
}

// IsValidExerciseType checks if a string is a valid exercise type.
func IsValidExerciseType(s string) bool {
	for _, et := range AllExerciseTypes {
		if string(et) == s {
			return true
		}
	}
	return false
}

// Exercise is a movement definition referenced by sets and workout slots.
type Exercise struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	MuscleGroup string       `json:"muscleGroup"`
	Type        ExerciseType `json:"type"`
	Description string       `json:"description,omitempty"`
	Image       string       `json:"image,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	DeletedAt   *time.Time   `json:"deletedAt,omitempty"`

	// IsReplacement marks an exercise substituted into a session by the
	// replacement overlay; never persisted.
	IsReplacement bool `json:"isReplacement,omitempty"`
}

// NewExercise creates an Exercise with the current timestamp.
func NewExercise(name, muscleGroup string, exerciseType ExerciseType) *Exercise {
	return &Exercise{
		Name:        name,
		MuscleGroup: muscleGroup,
		Type:        exerciseType,
		CreatedAt:   time.Now(),
	}
}

// Set is one planned or performed set of an exercise.
// SupersetName groups sets of different exercises into a superset;
// SetOrder positions the set inside its workout.
type Set struct {
	ID              int64      `json:"id"`
	ExerciseID      int64      `json:"exerciseId"`
	Reps            int        `json:"reps"`
	Weight          float64    `json:"weight"`
	RestTime        int        `json:"restTime"`
	DifficultyLevel int        `json:"difficultyLevel"`
	IsDropSet       bool       `json:"isDropSet"`
	SupersetName    string     `json:"supersetName,omitempty"`
	SetOrder        int        `json:"setOrder"`
	CreatedAt       time.Time  `json:"createdAt"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty"`
}

// NewSet creates a Set for an exercise with the current timestamp.
func NewSet(exerciseID int64, reps int, weight float64) *Set {
	return &Set{
		ExerciseID: exerciseID,
		Reps:       reps,
		Weight:     weight,
		CreatedAt:  time.Now(),
	}
}
