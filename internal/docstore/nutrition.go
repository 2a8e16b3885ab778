// ABOUTME: UserNutrition operations for the document backend with field-level encryption.
// ABOUTME: Name and every numeric field are ciphertext in the stored record.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
	"github.com/blopa/musclog-app-sub000/internal/models"
)

// userNutritionRecord is the stored shape: name and the numeric fields are
// ciphertext, in the same order everywhere.
type userNutritionRecord struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	DataID          string     `json:"dataId"`
	Name            string     `json:"name,omitempty"`
	Date            time.Time  `json:"date"`
	Values          [14]string `json:"values"`
	MealType        string     `json:"mealType,omitempty"`
	GramsPerServing float64    `json:"gramsPerServing,omitempty"`
	Source          string     `json:"source"`
	CreatedAt       time.Time  `json:"createdAt"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty"`
}

// nutritionValues returns pointers to the encrypted numeric fields in the
// fixed order shared with the record's Values array.
func nutritionValues(n *models.UserNutrition) []*float64 {
	return []*float64{
		&n.Calories, &n.Protein, &n.Carbs, &n.Fat, &n.Fiber, &n.Sugar,
		&n.SaturatedFat, &n.MonounsaturatedFat, &n.PolyunsaturatedFat,
		&n.TransFat, &n.UnsaturatedFat, &n.Cholesterol, &n.Sodium, &n.Potassium,
	}
}

func (s *Store) encryptNutrition(n *models.UserNutrition) (*userNutritionRecord, error) {
	name, err := s.codec.Encrypt(n.Name)
	if err != nil {
		return nil, fmt.Errorf("encrypt name: %w", err)
	}
	rec := &userNutritionRecord{
		ID:              n.ID,
		UserID:          n.UserID,
		DataID:          n.DataID,
		Name:            name,
		Date:            n.Date,
		MealType:        n.MealType,
		GramsPerServing: n.GramsPerServing,
		Source:          string(n.Source),
		CreatedAt:       n.CreatedAt,
		DeletedAt:       n.DeletedAt,
	}
	for i, f := range nutritionValues(n) {
		v, err := s.codec.EncryptFloat(*f)
		if err != nil {
			return nil, fmt.Errorf("encrypt nutrition field: %w", err)
		}
		rec.Values[i] = v
	}
	return rec, nil
}

func (s *Store) decryptNutrition(rec *userNutritionRecord) (*models.UserNutrition, error) {
	name, err := s.codec.Decrypt(rec.Name)
	if err != nil {
		return nil, err
	}
	n := &models.UserNutrition{
		ID:              rec.ID,
		UserID:          rec.UserID,
		DataID:          rec.DataID,
		Name:            name,
		Date:            rec.Date,
		MealType:        rec.MealType,
		GramsPerServing: rec.GramsPerServing,
		Source:          models.MetricSource(rec.Source),
		CreatedAt:       rec.CreatedAt,
		DeletedAt:       rec.DeletedAt,
	}
	for i, f := range nutritionValues(n) {
		v, err := s.codec.DecryptFloat(rec.Values[i])
		if err != nil {
			return nil, err
		}
		*f = v
	}
	return n, nil
}

// AddUserNutrition inserts a nutrition record, or updates the existing
// active record with the same dataId, preserving its CreatedAt.
func (s *Store) AddUserNutrition(ctx context.Context, n *models.UserNutrition) (int64, error) {
	if n.DataID == "" {
		n.DataID = uuid.NewString()
	}
	if n.Source == "" {
		n.Source = models.SourceUserInput
	}
	if n.Date.IsZero() {
		n.Date = time.Now()
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var existing *userNutritionRecord
		if err := scanTyped(txn, nutritionPrefix, func(rec *userNutritionRecord) error {
			if rec.DataID == n.DataID && rec.DeletedAt == nil {
				existing = rec
			}
			return nil
		}); err != nil {
			return err
		}

		if existing != nil {
			n.ID = existing.ID
			n.CreatedAt = existing.CreatedAt
		} else {
			id, err := nextID(txn, nutritionPrefix)
			if err != nil {
				return err
			}
			n.ID = id
			if n.CreatedAt.IsZero() {
				n.CreatedAt = time.Now()
			}
		}

		rec, err := s.encryptNutrition(n)
		if err != nil {
			return err
		}
		return putJSON(txn, recordKey(nutritionPrefix, n.ID), rec)
	})
	if err != nil {
		return 0, fmt.Errorf("add user nutrition: %w", err)
	}
	return n.ID, nil
}

// UpdateUserNutrition merges the supplied fields over the stored record.
func (s *Store) UpdateUserNutrition(ctx context.Context, n *models.UserNutrition) error {
	existing, err := s.GetUserNutritionByID(ctx, n.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update user nutrition: not found: %d", n.ID)
	}

	merged := *existing
	if n.Name != "" {
		merged.Name = n.Name
	}
	if !n.Date.IsZero() {
		merged.Date = n.Date
	}
	if n.MealType != "" {
		merged.MealType = n.MealType
	}
	if n.GramsPerServing != 0 {
		merged.GramsPerServing = n.GramsPerServing
	}
	if n.Source != "" {
		merged.Source = n.Source
	}
	src := nutritionValues(n)
	dst := nutritionValues(&merged)
	for i := range src {
		if *src[i] != 0 {
			*dst[i] = *src[i]
		}
	}

	rec, err := s.encryptNutrition(&merged)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, recordKey(nutritionPrefix, merged.ID), rec)
	})
	if err != nil {
		return fmt.Errorf("update user nutrition: %w", err)
	}
	return nil
}

// GetUserNutritionByID retrieves an active nutrition record, or nil. A
// record whose ciphertext cannot be decrypted is deleted and reported not
// found.
func (s *Store) GetUserNutritionByID(ctx context.Context, id int64) (*models.UserNutrition, error) {
	rec, err := getRecord[userNutritionRecord](s, nutritionPrefix, id)
	if err != nil {
		return nil, fmt.Errorf("get user nutrition: %w", err)
	}
	if rec == nil || rec.DeletedAt != nil {
		return nil, nil
	}
	n, err := s.decryptNutrition(rec)
	if err != nil {
		if errors.Is(err, crypto.ErrDecrypt) {
			s.quarantineRecord(nutritionPrefix, rec.ID, err)
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// GetUserNutritionByDataID retrieves the active record with the given dataId.
func (s *Store) GetUserNutritionByDataID(ctx context.Context, dataID string) (*models.UserNutrition, error) {
	recs, err := listRecords[userNutritionRecord](s, nutritionPrefix)
	if err != nil {
		return nil, fmt.Errorf("get user nutrition: %w", err)
	}
	for _, rec := range recs {
		if rec.DataID != dataID || rec.DeletedAt != nil {
			continue
		}
		n, err := s.decryptNutrition(rec)
		if err != nil {
			if errors.Is(err, crypto.ErrDecrypt) {
				s.quarantineRecord(nutritionPrefix, rec.ID, err)
				return nil, nil
			}
			return nil, err
		}
		return n, nil
	}
	return nil, nil
}

// ListUserNutrition returns all of a user's active nutrition entries,
// newest first. Unreadable records are deleted and omitted.
func (s *Store) ListUserNutrition(ctx context.Context, userID int64) ([]*models.UserNutrition, error) {
	entries, err := s.readUserNutrition(userID, nil, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date.Equal(entries[j].Date) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

// ListUserNutritionBetween returns entries in [start, end), oldest first.
func (s *Store) ListUserNutritionBetween(ctx context.Context, userID int64, start, end time.Time) ([]*models.UserNutrition, error) {
	entries, err := s.readUserNutrition(userID, &start, &end)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date.Equal(entries[j].Date) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

func (s *Store) readUserNutrition(userID int64, start, end *time.Time) ([]*models.UserNutrition, error) {
	recs, err := listRecords[userNutritionRecord](s, nutritionPrefix)
	if err != nil {
		return nil, fmt.Errorf("list user nutrition: %w", err)
	}

	var out []*models.UserNutrition
	var corrupt []int64
	for _, rec := range recs {
		if rec.DeletedAt != nil || rec.UserID != userID {
			continue
		}
		if start != nil && rec.Date.Before(*start) {
			continue
		}
		if end != nil && !rec.Date.Before(*end) {
			continue
		}
		n, err := s.decryptNutrition(rec)
		if err != nil {
			if errors.Is(err, crypto.ErrDecrypt) {
				corrupt = append(corrupt, rec.ID)
				continue
			}
			return nil, err
		}
		out = append(out, n)
	}

	for _, id := range corrupt {
		s.quarantineRecord(nutritionPrefix, id, crypto.ErrDecrypt)
	}
	return out, nil
}

// DeleteUserNutrition removes a nutrition record.
func (s *Store) DeleteUserNutrition(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(nutritionPrefix, id))
	})
	if err != nil {
		return fmt.Errorf("delete user nutrition: %w", err)
	}
	return nil
}
