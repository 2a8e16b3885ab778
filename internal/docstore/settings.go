// ABOUTME: Setting, Chat, Bio, OneRepMax, and Versioning operations for the document backend.
// ABOUTME: Settings upsert by type; OneRepMax upserts by exercise id.
package docstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

// SetSetting upserts the singleton setting record for a type.
func (s *Store) SetSetting(ctx context.Context, settingType, value string) (int64, error) {
	var id int64
	err := s.db.Update(func(txn *badger.Txn) error {
		var existing *models.Setting
		if err := scanTyped(txn, settingPrefix, func(rec *models.Setting) error {
			if rec.Type == settingType && rec.DeletedAt == nil {
				existing = rec
			}
			return nil
		}); err != nil {
			return err
		}

		if existing != nil {
			existing.Value = value
			id = existing.ID
			return putJSON(txn, recordKey(settingPrefix, existing.ID), existing)
		}

		newID, err := nextID(txn, settingPrefix)
		if err != nil {
			return err
		}
		id = newID
		return putJSON(txn, recordKey(settingPrefix, newID), &models.Setting{
			ID:        newID,
			Type:      settingType,
			Value:     value,
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		return 0, fmt.Errorf("set setting: %w", err)
	}
	return id, nil
}

// GetSetting retrieves the active setting for a type, or nil.
func (s *Store) GetSetting(ctx context.Context, settingType string) (*models.Setting, error) {
	all, err := listRecords[models.Setting](s, settingPrefix)
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	var latest *models.Setting
	for _, rec := range all {
		if rec.Type != settingType || rec.DeletedAt != nil {
			continue
		}
		if latest == nil || rec.ID > latest.ID {
			latest = rec
		}
	}
	return latest, nil
}

// ListSettings returns all active settings ordered by type.
func (s *Store) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	all, err := listRecords[models.Setting](s, settingPrefix)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	var out []*models.Setting
	for _, rec := range all {
		if rec.DeletedAt == nil {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// DeleteSetting removes the setting records for a type.
func (s *Store) DeleteSetting(ctx context.Context, settingType string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var ids []int64
		if err := scanTyped(txn, settingPrefix, func(rec *models.Setting) error {
			if rec.Type == settingType {
				ids = append(ids, rec.ID)
			}
			return nil
		}); err != nil {
			return err
		}
		for _, id := range ids {
			if err := txn.Delete(recordKey(settingPrefix, id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	return nil
}

// AddChat appends a chat message and returns its id.
func (s *Store) AddChat(ctx context.Context, c *models.Chat) (int64, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		id, err := nextID(txn, chatPrefix)
		if err != nil {
			return err
		}
		c.ID = id
		return putJSON(txn, recordKey(chatPrefix, id), c)
	})
	if err != nil {
		return 0, fmt.Errorf("add chat: %w", err)
	}
	return c.ID, nil
}

// ListChats returns the most recent chat messages, oldest first.
func (s *Store) ListChats(ctx context.Context, limit int) ([]*models.Chat, error) {
	if limit <= 0 {
		limit = 50
	}
	all, err := listRecords[models.Chat](s, chatPrefix)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	var out []*models.Chat
	for _, c := range all {
		if c.DeletedAt == nil {
			out = append(out, c)
		}
	}
	sortByID(out, func(c *models.Chat) int64 { return c.ID })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// DeleteChat removes a chat message.
func (s *Store) DeleteChat(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(chatPrefix, id))
	})
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

// ClearChats removes the entire chat history.
func (s *Store) ClearChats(ctx context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var ids []int64
		if err := scanTyped(txn, chatPrefix, func(c *models.Chat) error {
			ids = append(ids, c.ID)
			return nil
		}); err != nil {
			return err
		}
		for _, id := range ids {
			if err := txn.Delete(recordKey(chatPrefix, id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear chats: %w", err)
	}
	return nil
}

// AddBio appends a bio entry and returns its id.
func (s *Store) AddBio(ctx context.Context, value string) (int64, error) {
	var id int64
	err := s.db.Update(func(txn *badger.Txn) error {
		newID, err := nextID(txn, bioPrefix)
		if err != nil {
			return err
		}
		id = newID
		return putJSON(txn, recordKey(bioPrefix, newID), &models.Bio{
			ID:        newID,
			Value:     value,
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		return 0, fmt.Errorf("add bio: %w", err)
	}
	return id, nil
}

// GetLatestBio returns the most recent bio entry, or nil.
func (s *Store) GetLatestBio(ctx context.Context) (*models.Bio, error) {
	all, err := listRecords[models.Bio](s, bioPrefix)
	if err != nil {
		return nil, fmt.Errorf("get latest bio: %w", err)
	}
	var latest *models.Bio
	for _, b := range all {
		if b.DeletedAt != nil {
			continue
		}
		if latest == nil || b.ID > latest.ID {
			latest = b
		}
	}
	return latest, nil
}

// SetOneRepMax upserts the one-rep max for an exercise.
func (s *Store) SetOneRepMax(ctx context.Context, exerciseID int64, weight float64) (int64, error) {
	var id int64
	err := s.db.Update(func(txn *badger.Txn) error {
		var existing *models.OneRepMax
		if err := scanTyped(txn, oneRepMaxPrefix, func(rec *models.OneRepMax) error {
			if rec.ExerciseID == exerciseID && rec.DeletedAt == nil {
				existing = rec
			}
			return nil
		}); err != nil {
			return err
		}

		if existing != nil {
			existing.Weight = weight
			id = existing.ID
			return putJSON(txn, recordKey(oneRepMaxPrefix, existing.ID), existing)
		}

		newID, err := nextID(txn, oneRepMaxPrefix)
		if err != nil {
			return err
		}
		id = newID
		return putJSON(txn, recordKey(oneRepMaxPrefix, newID), &models.OneRepMax{
			ID:         newID,
			ExerciseID: exerciseID,
			Weight:     weight,
			CreatedAt:  time.Now(),
		})
	})
	if err != nil {
		return 0, fmt.Errorf("set one rep max: %w", err)
	}
	return id, nil
}

// GetOneRepMax retrieves the active one-rep max for an exercise, or nil.
func (s *Store) GetOneRepMax(ctx context.Context, exerciseID int64) (*models.OneRepMax, error) {
	all, err := listRecords[models.OneRepMax](s, oneRepMaxPrefix)
	if err != nil {
		return nil, fmt.Errorf("get one rep max: %w", err)
	}
	var latest *models.OneRepMax
	for _, orm := range all {
		if orm.ExerciseID != exerciseID || orm.DeletedAt != nil {
			continue
		}
		if latest == nil || orm.ID > latest.ID {
			latest = orm
		}
	}
	return latest, nil
}

// ListOneRepMaxes returns all active one-rep maxes ordered by exercise.
func (s *Store) ListOneRepMaxes(ctx context.Context) ([]*models.OneRepMax, error) {
	all, err := listRecords[models.OneRepMax](s, oneRepMaxPrefix)
	if err != nil {
		return nil, fmt.Errorf("list one rep maxes: %w", err)
	}
	var out []*models.OneRepMax
	for _, orm := range all {
		if orm.DeletedAt == nil {
			out = append(out, orm)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExerciseID < out[j].ExerciseID })
	return out, nil
}

// AddVersion appends a migration version stamp.
func (s *Store) AddVersion(ctx context.Context, version string) (int64, error) {
	var id int64
	err := s.db.Update(func(txn *badger.Txn) error {
		newID, err := nextID(txn, versioningPrefix)
		if err != nil {
			return err
		}
		id = newID
		return putJSON(txn, recordKey(versioningPrefix, newID), &models.Versioning{
			ID:        newID,
			Version:   version,
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		return 0, fmt.Errorf("add version: %w", err)
	}
	return id, nil
}

// GetLatestVersion returns the most recently stamped migration version,
// or empty when the store is new.
func (s *Store) GetLatestVersion(ctx context.Context) (string, error) {
	all, err := listRecords[models.Versioning](s, versioningPrefix)
	if err != nil {
		return "", fmt.Errorf("get latest version: %w", err)
	}
	var latest *models.Versioning
	for _, v := range all {
		if v.DeletedAt != nil {
			continue
		}
		if latest == nil || v.ID > latest.ID {
			latest = v
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.Version, nil
}
