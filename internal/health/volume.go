// ABOUTME: Workout volume calculation (sum of reps times load per set).
// ABOUTME: Bodyweight exercises count the lifter's body weight as part of the load.
package health

import "github.com/blopa/musclog-app-sub000/internal/models"

// CalculateVolume sums reps times load across every set of the resolved
// slots. For bodyweight exercises the lifter's body weight is added to the
// set's external load; pass zero when it is unknown.
func CalculateVolume(slots []models.ExerciseWithSets, bodyWeight float64) float64 {
	var total float64
	for _, slot := range slots {
		load := 0.0
		if slot.Exercise.Type == models.ExerciseBodyweight {
			load = bodyWeight
		}
		for _, s := range slot.Sets {
			total += float64(s.Reps) * (s.Weight + load)
		}
	}
	return total
}
