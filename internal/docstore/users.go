// ABOUTME: User profile and UserMeasurements operations for the document backend.
// ABOUTME: Measurements follow the dataId idempotent upsert contract.
package docstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"

	"github.com/blopa/musclog-app-sub000/internal/models"
)

// AddUser stores a new user profile and returns its id.
func (s *Store) AddUser(ctx context.Context, u *models.User) (int64, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		id, err := nextID(txn, userPrefix)
		if err != nil {
			return err
		}
		u.ID = id
		return putJSON(txn, recordKey(userPrefix, id), u)
	})
	if err != nil {
		return 0, fmt.Errorf("add user: %w", err)
	}
	return u.ID, nil
}

// UpdateUser merges the supplied fields over the stored record.
func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	existing, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update user: not found: %d", u.ID)
	}

	merged := *existing
	if u.Name != "" {
		merged.Name = u.Name
	}
	if u.Birthday != "" {
		merged.Birthday = u.Birthday
	}
	if u.Gender != "" {
		merged.Gender = u.Gender
	}
	if u.FitnessGoals != "" {
		merged.FitnessGoals = u.FitnessGoals
	}
	if u.ActivityLevel != "" {
		merged.ActivityLevel = u.ActivityLevel
	}
	if u.LiftingExperience != "" {
		merged.LiftingExperience = u.LiftingExperience
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, recordKey(userPrefix, merged.ID), &merged)
	})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// GetUserByID retrieves an active user, or nil when not found.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := getRecord[models.User](s, userPrefix, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil || u.DeletedAt != nil {
		return nil, nil
	}
	return u, nil
}

// GetLatestUser returns the most recently created active user, or nil.
func (s *Store) GetLatestUser(ctx context.Context) (*models.User, error) {
	all, err := listRecords[models.User](s, userPrefix)
	if err != nil {
		return nil, fmt.Errorf("get latest user: %w", err)
	}
	var latest *models.User
	for _, u := range all {
		if u.DeletedAt != nil {
			continue
		}
		if latest == nil || u.ID > latest.ID {
			latest = u
		}
	}
	return latest, nil
}

// AddUserMeasurements inserts a measurements record, or updates the
// existing active record with the same dataId, preserving its CreatedAt.
func (s *Store) AddUserMeasurements(ctx context.Context, m *models.UserMeasurements) (int64, error) {
	if m.DataID == "" {
		m.DataID = uuid.NewString()
	}
	if m.Source == "" {
		m.Source = models.SourceUserInput
	}
	if m.Date.IsZero() {
		m.Date = time.Now()
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var existing *models.UserMeasurements
		if err := scanTyped(txn, measurementsPrefix, func(rec *models.UserMeasurements) error {
			if rec.DataID == m.DataID && rec.DeletedAt == nil {
				existing = rec
			}
			return nil
		}); err != nil {
			return err
		}

		if existing != nil {
			m.ID = existing.ID
			m.CreatedAt = existing.CreatedAt
		} else {
			id, err := nextID(txn, measurementsPrefix)
			if err != nil {
				return err
			}
			m.ID = id
			if m.CreatedAt.IsZero() {
				m.CreatedAt = time.Now()
			}
		}
		return putJSON(txn, recordKey(measurementsPrefix, m.ID), m)
	})
	if err != nil {
		return 0, fmt.Errorf("add user measurements: %w", err)
	}
	return m.ID, nil
}

// GetUserMeasurementsByID retrieves an active measurements record, or nil.
func (s *Store) GetUserMeasurementsByID(ctx context.Context, id int64) (*models.UserMeasurements, error) {
	m, err := getRecord[models.UserMeasurements](s, measurementsPrefix, id)
	if err != nil {
		return nil, fmt.Errorf("get user measurements: %w", err)
	}
	if m == nil || m.DeletedAt != nil {
		return nil, nil
	}
	return m, nil
}

// ListUserMeasurementsBetween returns records in [start, end), oldest first.
func (s *Store) ListUserMeasurementsBetween(ctx context.Context, userID int64, start, end time.Time) ([]*models.UserMeasurements, error) {
	all, err := listRecords[models.UserMeasurements](s, measurementsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list user measurements: %w", err)
	}
	var out []*models.UserMeasurements
	for _, m := range all {
		if m.DeletedAt != nil || m.UserID != userID {
			continue
		}
		if !m.Date.Before(start) && m.Date.Before(end) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// DeleteUserMeasurements removes a measurements record.
func (s *Store) DeleteUserMeasurements(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(measurementsPrefix, id))
	})
	if err != nil {
		return fmt.Errorf("delete user measurements: %w", err)
	}
	return nil
}
