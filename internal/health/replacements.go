// ABOUTME: Exercise replacement overlay persisted as a settings-backed JSON map.
// ABOUTME: Replacements swap the exercise shown for a workout slot without touching the template.
package health

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

// SettingStore is the slice of the repository the replacement overlay needs.
type SettingStore interface {
	GetSetting(ctx context.Context, settingType string) (*models.Setting, error)
	SetSetting(ctx context.Context, settingType, value string) (int64, error)
}

// ExerciseStore resolves exercise ids when applying the overlay.
type ExerciseStore interface {
	GetExerciseByID(ctx context.Context, id int64) (*models.Exercise, error)
}

// ReplacementMap maps workout id to original exercise id to replacement
// exercise id. Stored as JSON in the exerciseReplacements setting.
type ReplacementMap map[int64]map[int64]int64

// LoadReplacements reads the persisted replacement map. A missing or empty
// setting yields an empty map.
func LoadReplacements(ctx context.Context, store SettingStore) (ReplacementMap, error) {
	setting, err := store.GetSetting(ctx, models.SettingExerciseReplacements)
	if err != nil {
		return nil, err
	}
	m := ReplacementMap{}
	if setting == nil || setting.Value == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(setting.Value), &m); err != nil {
		return nil, fmt.Errorf("parse exercise replacements: %w", err)
	}
	return m, nil
}

// SetReplacement records that replacementID stands in for exerciseID inside
// a workout, persisting the updated map.
func SetReplacement(ctx context.Context, store SettingStore, workoutID, exerciseID, replacementID int64) error {
	m, err := LoadReplacements(ctx, store)
	if err != nil {
		return err
	}
	if m[workoutID] == nil {
		m[workoutID] = map[int64]int64{}
	}
	m[workoutID][exerciseID] = replacementID
	return saveReplacements(ctx, store, m)
}

// ClearReplacement removes the replacement for one slot, if any.
func ClearReplacement(ctx context.Context, store SettingStore, workoutID, exerciseID int64) error {
	m, err := LoadReplacements(ctx, store)
	if err != nil {
		return err
	}
	slots, ok := m[workoutID]
	if !ok {
		return nil
	}
	delete(slots, exerciseID)
	if len(slots) == 0 {
		delete(m, workoutID)
	}
	return saveReplacements(ctx, store, m)
}

func saveReplacements(ctx context.Context, store SettingStore, m ReplacementMap) error {
	encoded, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode exercise replacements: %w", err)
	}
	if _, err := store.SetSetting(ctx, models.SettingExerciseReplacements, string(encoded)); err != nil {
		return err
	}
	return nil
}

// ApplyReplacements overlays the workout's replacement map onto resolved
// slots: a replaced slot keeps its sets but shows the replacement exercise,
// flagged so callers can tell it apart from the template. Replacements
// pointing at missing exercises are ignored.
func ApplyReplacements(ctx context.Context, store SettingStore, exercises ExerciseStore, workoutID int64, slots []models.ExerciseWithSets) ([]models.ExerciseWithSets, error) {
	m, err := LoadReplacements(ctx, store)
	if err != nil {
		return nil, err
	}
	overlay := m[workoutID]
	if len(overlay) == 0 {
		return slots, nil
	}

	out := make([]models.ExerciseWithSets, len(slots))
	copy(out, slots)
	for i, slot := range out {
		replacementID, ok := overlay[slot.Exercise.ID]
		if !ok {
			continue
		}
		replacement, err := exercises.GetExerciseByID(ctx, replacementID)
		if err != nil {
			return nil, err
		}
		if replacement == nil {
			continue
		}
		r := *replacement
		r.IsReplacement = true
		out[i].Exercise = r
	}
	return out, nil
}
