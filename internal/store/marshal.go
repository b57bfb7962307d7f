package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// timeFormat is the stored representation of timestamps. UTC with
// nanoseconds so round-trips are byte-stable and lexicographic order
// matches chronological order.
const timeFormat = time.RFC3339Nano

// marshalStrings serializes a string slice to a JSON array for a TEXT
// column. Nil serializes as "[]" so the column is never NULL.
func marshalStrings(ss []string) (string, error) {
	if ss == nil {
		ss = []string{}
	}
	data, err := json.Marshal(ss)
	if err != nil {
		return "", fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

// unmarshalStrings deserializes a JSON array column back to a slice.
// Empty column text yields an empty slice, not nil.
func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var ss []string
	if err := json.Unmarshal([]byte(raw), &ss); err != nil {
		return nil, fmt.Errorf("unmarshal string list: %w", err)
	}
	if ss == nil {
		ss = []string{}
	}
	return ss, nil
}

// formatTime renders a timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// parseTime reads a stored timestamp.
func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", raw, err)
	}
	return t, nil
}

// parseNullTime reads a nullable stored timestamp.
func parseNullTime(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := parseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
