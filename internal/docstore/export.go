// ABOUTME: Full-store walk for the backup subsystem (document backend).
// ABOUTME: GetAllData decrypts sensitive fields; ImportData drops and reloads every record.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
	"github.com/blopa/musclog-app-sub000/internal/models"
	"github.com/blopa/musclog-app-sub000/internal/storage"
)

// GetAllData reads every record as stored (soft-deleted included) with
// sensitive fields decrypted. Unreadable encrypted records are
// quarantined and omitted.
func (s *Store) GetAllData(ctx context.Context) (*storage.ExportData, error) {
	data := &storage.ExportData{}

	var err error
	if data.Exercises, err = listRecords[models.Exercise](s, exercisePrefix); err != nil {
		return nil, fmt.Errorf("dump exercises: %w", err)
	}
	if data.Sets, err = listRecords[models.Set](s, setPrefix); err != nil {
		return nil, fmt.Errorf("dump sets: %w", err)
	}
	if data.Workouts, err = listRecords[models.Workout](s, workoutPrefix); err != nil {
		return nil, fmt.Errorf("dump workouts: %w", err)
	}
	if data.WorkoutExercises, err = listRecords[models.WorkoutExercise](s, workoutExPrefix); err != nil {
		return nil, fmt.Errorf("dump workout exercises: %w", err)
	}
	if data.WorkoutEvents, err = listRecords[models.WorkoutEvent](s, eventPrefix); err != nil {
		return nil, fmt.Errorf("dump workout events: %w", err)
	}
	if data.Users, err = listRecords[models.User](s, userPrefix); err != nil {
		return nil, fmt.Errorf("dump users: %w", err)
	}
	if data.UserMeasurements, err = listRecords[models.UserMeasurements](s, measurementsPrefix); err != nil {
		return nil, fmt.Errorf("dump user measurements: %w", err)
	}
	if data.Settings, err = listRecords[models.Setting](s, settingPrefix); err != nil {
		return nil, fmt.Errorf("dump settings: %w", err)
	}
	if data.Chats, err = listRecords[models.Chat](s, chatPrefix); err != nil {
		return nil, fmt.Errorf("dump chats: %w", err)
	}
	if data.Bios, err = listRecords[models.Bio](s, bioPrefix); err != nil {
		return nil, fmt.Errorf("dump bios: %w", err)
	}
	if data.OneRepMaxes, err = listRecords[models.OneRepMax](s, oneRepMaxPrefix); err != nil {
		return nil, fmt.Errorf("dump one rep maxes: %w", err)
	}
	if data.Versionings, err = listRecords[models.Versioning](s, versioningPrefix); err != nil {
		return nil, fmt.Errorf("dump versionings: %w", err)
	}

	metricRecs, err := listRecords[userMetricsRecord](s, metricsPrefix)
	if err != nil {
		return nil, fmt.Errorf("dump user metrics: %w", err)
	}
	var corruptMetrics []int64
	for _, rec := range metricRecs {
		m, err := s.decryptMetrics(rec)
		if err != nil {
			if errors.Is(err, crypto.ErrDecrypt) {
				corruptMetrics = append(corruptMetrics, rec.ID)
				continue
			}
			return nil, fmt.Errorf("dump user metrics: %w", err)
		}
		data.UserMetrics = append(data.UserMetrics, m)
	}

	nutritionRecs, err := listRecords[userNutritionRecord](s, nutritionPrefix)
	if err != nil {
		return nil, fmt.Errorf("dump user nutrition: %w", err)
	}
	var corruptNutrition []int64
	for _, rec := range nutritionRecs {
		n, err := s.decryptNutrition(rec)
		if err != nil {
			if errors.Is(err, crypto.ErrDecrypt) {
				corruptNutrition = append(corruptNutrition, rec.ID)
				continue
			}
			return nil, fmt.Errorf("dump user nutrition: %w", err)
		}
		data.UserNutrition = append(data.UserNutrition, n)
	}

	for _, id := range corruptMetrics {
		s.quarantineRecord(metricsPrefix, id, crypto.ErrDecrypt)
	}
	for _, id := range corruptNutrition {
		s.quarantineRecord(nutritionPrefix, id, crypto.ErrDecrypt)
	}

	return data, nil
}

// ImportData drops everything and reloads the store from the export,
// keeping ids. Sensitive fields are re-encrypted; id counters are raised
// past the highest restored id so future inserts never collide.
func (s *Store) ImportData(ctx context.Context, data *storage.ExportData) error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("import: clear store: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	write := func(prefix string, id int64, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		return wb.Set(recordKey(prefix, id), raw)
	}

	maxIDs := map[string]int64{}
	track := func(prefix string, id int64) {
		if id > maxIDs[prefix] {
			maxIDs[prefix] = id
		}
	}

	for _, e := range data.Exercises {
		track(exercisePrefix, e.ID)
		if err := write(exercisePrefix, e.ID, e); err != nil {
			return fmt.Errorf("import exercise %d: %w", e.ID, err)
		}
	}
	for _, set := range data.Sets {
		track(setPrefix, set.ID)
		if err := write(setPrefix, set.ID, set); err != nil {
			return fmt.Errorf("import set %d: %w", set.ID, err)
		}
	}
	for _, w := range data.Workouts {
		track(workoutPrefix, w.ID)
		if err := write(workoutPrefix, w.ID, w); err != nil {
			return fmt.Errorf("import workout %d: %w", w.ID, err)
		}
	}
	for _, we := range data.WorkoutExercises {
		track(workoutExPrefix, we.ID)
		if err := write(workoutExPrefix, we.ID, we); err != nil {
			return fmt.Errorf("import workout exercise %d: %w", we.ID, err)
		}
	}
	for _, ev := range data.WorkoutEvents {
		track(eventPrefix, ev.ID)
		if err := write(eventPrefix, ev.ID, ev); err != nil {
			return fmt.Errorf("import workout event %d: %w", ev.ID, err)
		}
	}
	for _, u := range data.Users {
		track(userPrefix, u.ID)
		if err := write(userPrefix, u.ID, u); err != nil {
			return fmt.Errorf("import user %d: %w", u.ID, err)
		}
	}
	for _, m := range data.UserMetrics {
		track(metricsPrefix, m.ID)
		rec, err := s.encryptMetrics(m)
		if err != nil {
			return fmt.Errorf("import user metrics %d: %w", m.ID, err)
		}
		if err := write(metricsPrefix, m.ID, rec); err != nil {
			return fmt.Errorf("import user metrics %d: %w", m.ID, err)
		}
	}
	for _, n := range data.UserNutrition {
		track(nutritionPrefix, n.ID)
		rec, err := s.encryptNutrition(n)
		if err != nil {
			return fmt.Errorf("import user nutrition %d: %w", n.ID, err)
		}
		if err := write(nutritionPrefix, n.ID, rec); err != nil {
			return fmt.Errorf("import user nutrition %d: %w", n.ID, err)
		}
	}
	for _, m := range data.UserMeasurements {
		track(measurementsPrefix, m.ID)
		if err := write(measurementsPrefix, m.ID, m); err != nil {
			return fmt.Errorf("import user measurements %d: %w", m.ID, err)
		}
	}
	for _, st := range data.Settings {
		track(settingPrefix, st.ID)
		if err := write(settingPrefix, st.ID, st); err != nil {
			return fmt.Errorf("import setting %d: %w", st.ID, err)
		}
	}
	for _, c := range data.Chats {
		track(chatPrefix, c.ID)
		if err := write(chatPrefix, c.ID, c); err != nil {
			return fmt.Errorf("import chat %d: %w", c.ID, err)
		}
	}
	for _, b := range data.Bios {
		track(bioPrefix, b.ID)
		if err := write(bioPrefix, b.ID, b); err != nil {
			return fmt.Errorf("import bio %d: %w", b.ID, err)
		}
	}
	for _, orm := range data.OneRepMaxes {
		track(oneRepMaxPrefix, orm.ID)
		if err := write(oneRepMaxPrefix, orm.ID, orm); err != nil {
			return fmt.Errorf("import one rep max %d: %w", orm.ID, err)
		}
	}
	for _, v := range data.Versionings {
		track(versioningPrefix, v.ID)
		if err := write(versioningPrefix, v.ID, v); err != nil {
			return fmt.Errorf("import versioning %d: %w", v.ID, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for prefix, floor := range maxIDs {
			if err := bumpCounter(txn, prefix, floor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import: advance id counters: %w", err)
	}
	return nil
}
