// ABOUTME: UserMetrics operations for the document backend with field-level encryption.
// ABOUTME: Stored records hold ciphertext; unreadable records are deleted on read.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	badger "github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
	"github.com/blopa/musclog-app-sub000/internal/health"
	"github.com/blopa/musclog-app-sub000/internal/models"
)

// userMetricsRecord is the stored shape: the measured values are ciphertext.
type userMetricsRecord struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"userId"`
	DataID        string     `json:"dataId"`
	Date          time.Time  `json:"date"`
	Weight        string     `json:"weight,omitempty"`
	Height        string     `json:"height,omitempty"`
	FatPercentage string     `json:"fatPercentage,omitempty"`
	EatingPhase   string     `json:"eatingPhase,omitempty"`
	Source        string     `json:"source"`
	CreatedAt     time.Time  `json:"createdAt"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
}

func (s *Store) encryptMetrics(m *models.UserMetrics) (*userMetricsRecord, error) {
	weight, err := s.codec.EncryptFloat(m.Weight)
	if err != nil {
		return nil, fmt.Errorf("encrypt weight: %w", err)
	}
	height, err := s.codec.EncryptFloat(m.Height)
	if err != nil {
		return nil, fmt.Errorf("encrypt height: %w", err)
	}
	fatPct, err := s.codec.EncryptFloat(m.FatPercentage)
	if err != nil {
		return nil, fmt.Errorf("encrypt fat percentage: %w", err)
	}
	return &userMetricsRecord{
		ID:            m.ID,
		UserID:        m.UserID,
		DataID:        m.DataID,
		Date:          m.Date,
		Weight:        weight,
		Height:        height,
		FatPercentage: fatPct,
		EatingPhase:   string(m.EatingPhase),
		Source:        string(m.Source),
		CreatedAt:     m.CreatedAt,
		DeletedAt:     m.DeletedAt,
	}, nil
}

func (s *Store) decryptMetrics(rec *userMetricsRecord) (*models.UserMetrics, error) {
	weight, err := s.codec.DecryptFloat(rec.Weight)
	if err != nil {
		return nil, err
	}
	height, err := s.codec.DecryptFloat(rec.Height)
	if err != nil {
		return nil, err
	}
	fatPct, err := s.codec.DecryptFloat(rec.FatPercentage)
	if err != nil {
		return nil, err
	}
	return &models.UserMetrics{
		ID:            rec.ID,
		UserID:        rec.UserID,
		DataID:        rec.DataID,
		Date:          rec.Date,
		Weight:        weight,
		Height:        height,
		FatPercentage: fatPct,
		EatingPhase:   models.EatingPhase(rec.EatingPhase),
		Source:        models.MetricSource(rec.Source),
		CreatedAt:     rec.CreatedAt,
		DeletedAt:     rec.DeletedAt,
	}, nil
}

// AddUserMetrics inserts a metrics record, or updates the existing active
// record with the same dataId, preserving its CreatedAt.
func (s *Store) AddUserMetrics(ctx context.Context, m *models.UserMetrics) (int64, error) {
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
		var existing *userMetricsRecord
		if err := scanTyped(txn, metricsPrefix, func(rec *userMetricsRecord) error {
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
			id, err := nextID(txn, metricsPrefix)
			if err != nil {
				return err
			}
			m.ID = id
			if m.CreatedAt.IsZero() {
				m.CreatedAt = time.Now()
			}
		}

		rec, err := s.encryptMetrics(m)
		if err != nil {
			return err
		}
		return putJSON(txn, recordKey(metricsPrefix, m.ID), rec)
	})
	if err != nil {
		return 0, fmt.Errorf("add user metrics: %w", err)
	}
	return m.ID, nil
}

// UpdateUserMetrics merges the supplied fields over the stored record;
// zero values keep their stored counterparts.
func (s *Store) UpdateUserMetrics(ctx context.Context, m *models.UserMetrics) error {
	existing, err := s.GetUserMetricsByID(ctx, m.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("update user metrics: not found: %d", m.ID)
	}

	merged := *existing
	if m.Weight != 0 {
		merged.Weight = m.Weight
	}
	if m.Height != 0 {
		merged.Height = m.Height
	}
	if m.FatPercentage != 0 {
		merged.FatPercentage = m.FatPercentage
	}
	if m.EatingPhase != "" {
		merged.EatingPhase = m.EatingPhase
	}
	if !m.Date.IsZero() {
		merged.Date = m.Date
	}
	if m.Source != "" {
		merged.Source = m.Source
	}

	rec, err := s.encryptMetrics(&merged)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, recordKey(metricsPrefix, merged.ID), rec)
	})
	if err != nil {
		return fmt.Errorf("update user metrics: %w", err)
	}
	return nil
}

// GetUserMetricsByID retrieves an active metrics record, or nil. A record
// whose ciphertext cannot be decrypted is deleted and reported not found.
func (s *Store) GetUserMetricsByID(ctx context.Context, id int64) (*models.UserMetrics, error) {
	rec, err := getRecord[userMetricsRecord](s, metricsPrefix, id)
	if err != nil {
		return nil, fmt.Errorf("get user metrics: %w", err)
	}
	if rec == nil || rec.DeletedAt != nil {
		return nil, nil
	}
	m, err := s.decryptMetrics(rec)
	if err != nil {
		if errors.Is(err, crypto.ErrDecrypt) {
			s.quarantineRecord(metricsPrefix, rec.ID, err)
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// GetUserMetricsByDataID retrieves the active record with the given dataId.
func (s *Store) GetUserMetricsByDataID(ctx context.Context, dataID string) (*models.UserMetrics, error) {
	recs, err := listRecords[userMetricsRecord](s, metricsPrefix)
	if err != nil {
		return nil, fmt.Errorf("get user metrics: %w", err)
	}
	for _, rec := range recs {
		if rec.DataID != dataID || rec.DeletedAt != nil {
			continue
		}
		m, err := s.decryptMetrics(rec)
		if err != nil {
			if errors.Is(err, crypto.ErrDecrypt) {
				s.quarantineRecord(metricsPrefix, rec.ID, err)
				return nil, nil
			}
			return nil, err
		}
		return m, nil
	}
	return nil, nil
}

// ListUserMetrics returns all of a user's active metrics, newest first.
// Unreadable records are deleted and omitted.
func (s *Store) ListUserMetrics(ctx context.Context, userID int64) ([]*models.UserMetrics, error) {
	metrics, err := s.readUserMetrics(userID, nil, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(metrics, func(i, j int) bool {
		if metrics[i].Date.Equal(metrics[j].Date) {
			return metrics[i].ID > metrics[j].ID
		}
		return metrics[i].Date.After(metrics[j].Date)
	})
	return metrics, nil
}

// ListUserMetricsBetween returns a user's metrics in [start, end), oldest first.
func (s *Store) ListUserMetricsBetween(ctx context.Context, userID int64, start, end time.Time) ([]*models.UserMetrics, error) {
	metrics, err := s.readUserMetrics(userID, &start, &end)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(metrics, func(i, j int) bool {
		if metrics[i].Date.Equal(metrics[j].Date) {
			return metrics[i].ID < metrics[j].ID
		}
		return metrics[i].Date.Before(metrics[j].Date)
	})
	return metrics, nil
}

func (s *Store) readUserMetrics(userID int64, start, end *time.Time) ([]*models.UserMetrics, error) {
	recs, err := listRecords[userMetricsRecord](s, metricsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list user metrics: %w", err)
	}

	var out []*models.UserMetrics
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
		m, err := s.decryptMetrics(rec)
		if err != nil {
			if errors.Is(err, crypto.ErrDecrypt) {
				corrupt = append(corrupt, rec.ID)
				continue
			}
			return nil, err
		}
		out = append(out, m)
	}

	for _, id := range corrupt {
		s.quarantineRecord(metricsPrefix, id, crypto.ErrDecrypt)
	}
	return out, nil
}

// DeleteUserMetrics removes a metrics record.
func (s *Store) DeleteUserMetrics(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(metricsPrefix, id))
	})
	if err != nil {
		return fmt.Errorf("delete user metrics: %w", err)
	}
	return nil
}

// GetAllLatestMetricsForUser returns the most recent non-empty value of
// each metric field independently. Returns nil when nothing was recorded.
func (s *Store) GetAllLatestMetricsForUser(ctx context.Context, userID int64) (*models.LatestUserMetrics, error) {
	metrics, err := s.ListUserMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}
	return health.LatestMetrics(userID, metrics), nil
}

// quarantineRecord deletes a record whose ciphertext cannot be read.
func (s *Store) quarantineRecord(prefix string, id int64, cause error) {
	log.Warn("deleting unreadable encrypted record", "prefix", prefix, "id", id, "err", cause)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(prefix, id))
	})
	if err != nil {
		log.Error("failed to delete unreadable record", "prefix", prefix, "id", id, "err", err)
	}
}
