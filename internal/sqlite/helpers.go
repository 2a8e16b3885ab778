// ABOUTME: Shared scan and encode helpers for the SQLite backend.
// ABOUTME: Time formatting, nullable columns, and JSON-encoded id arrays.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"
)

// execer abstracts *sql.DB and *sql.Tx so entity operations can run either
// standalone or inside a composite transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringOrEmpty(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// encodeIDs serializes an id list as JSON text; nil encodes as "[]".
func encodeIDs(ids []int64) string {
	if ids == nil {
		ids = []int64{}
	}
	data, _ := json.Marshal(ids)
	return string(data)
}

// decodeIDs parses a JSON id list, tolerating empty or malformed text.
func decodeIDs(s string) []int64 {
	if s == "" {
		return []int64{}
	}
	var ids []int64
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return []int64{}
	}
	return ids
}

// encodeMeasurements serializes a measurements map; nil encodes as "{}".
func encodeMeasurements(m map[string]float64) string {
	if m == nil {
		m = map[string]float64{}
	}
	data, _ := json.Marshal(m)
	return string(data)
}

// decodeMeasurements parses a measurements map, tolerating malformed text.
func decodeMeasurements(s string) map[string]float64 {
	m := map[string]float64{}
	if s == "" {
		return m
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return map[string]float64{}
	}
	return m
}

// removeID drops an id from a list preserving relative order.
func removeID(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
