// ABOUTME: Badger-backed document store implementing the storage.Repository contract.
// ABOUTME: Records are type-prefixed JSON; ids come from per-entity counter keys.
package docstore

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
)

const (
	exercisePrefix     = "exercise:"
	setPrefix          = "set:"
	workoutPrefix      = "workout:"
	workoutExPrefix    = "workout_exercise:"
	eventPrefix        = "workout_event:"
	userPrefix         = "user:"
	metricsPrefix      = "user_metrics:"
	nutritionPrefix    = "user_nutrition:"
	measurementsPrefix = "user_measurements:"
	settingPrefix      = "setting:"
	chatPrefix         = "chat:"
	bioPrefix          = "bio:"
	oneRepMaxPrefix    = "one_rep_max:"
	versioningPrefix   = "versioning:"
	counterPrefix      = "id:"
)

// Store is the document-oriented backend. It honors the same visibility,
// upsert, and cascade semantics as the SQL backend; filtering and ordering
// happen client-side after a prefix scan.
type Store struct {
	db    *badger.DB
	codec *crypto.FieldCodec
	dir   string
}

// Open opens (creating if needed) the badger store under dir.
func Open(dir string, codec *crypto.FieldCodec) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	return &Store{db: db, codec: codec, dir: dir}, nil
}

// DefaultDir returns the XDG data directory for the document backend.
func DefaultDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "musclog", "docstore"), nil
}

// Close closes the underlying badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// recordKey builds a fixed-width key so lexicographic iteration follows id order.
func recordKey(prefix string, id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefix, id))
}

// nextID increments the entity's id counter inside txn and returns the new id.
func nextID(txn *badger.Txn, prefix string) (int64, error) {
	key := []byte(counterPrefix + prefix)
	var current uint64
	item, err := txn.Get(key)
	if err == nil {
		err = item.Value(func(val []byte) error {
			if len(val) == 8 {
				current = binary.BigEndian.Uint64(val)
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return 0, err
	}

	current++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, current)
	if err := txn.Set(key, buf); err != nil {
		return 0, err
	}
	return int64(current), nil
}

// bumpCounter raises the entity's id counter to at least floor. Used after
// imports so future inserts never collide with restored ids.
func bumpCounter(txn *badger.Txn, prefix string, floor int64) error {
	key := []byte(counterPrefix + prefix)
	var current uint64
	item, err := txn.Get(key)
	if err == nil {
		err = item.Value(func(val []byte) error {
			if len(val) == 8 {
				current = binary.BigEndian.Uint64(val)
			}
			return nil
		})
		if err != nil {
			return err
		}
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	if uint64(floor) <= current {
		return nil
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(floor))
	return txn.Set(key, buf)
}

// putJSON marshals v and stores it under key within txn.
func putJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return txn.Set(key, data)
}

// decodeJSON unmarshals a raw record value.
func decodeJSON(val []byte, out any) error {
	if err := json.Unmarshal(val, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// getJSON reads and unmarshals the record at key. Returns false when the
// key does not exist.
func getJSON(txn *badger.Txn, key []byte, out any) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
	if err != nil {
		return false, fmt.Errorf("decode record: %w", err)
	}
	return true, nil
}

// scanPrefix walks every record under prefix in key order.
func scanPrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		err := it.Item().Value(func(val []byte) error {
			return fn(val)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// getRecord loads one typed record outside any caller transaction.
func getRecord[T any](s *Store, prefix string, id int64) (*T, error) {
	var rec T
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, recordKey(prefix, id), &rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

// listRecords scans every record under prefix into a slice, id order.
func listRecords[T any](s *Store, prefix string) ([]*T, error) {
	var out []*T
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, prefix, func(val []byte) error {
			var rec T
			if err := json.Unmarshal(val, &rec); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}
			out = append(out, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// sortByID orders records by an extracted id, ascending.
func sortByID[T any](recs []*T, id func(*T) int64) {
	sort.SliceStable(recs, func(i, j int) bool {
		return id(recs[i]) < id(recs[j])
	})
}
