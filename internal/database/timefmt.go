package database

import (
	"database/sql"
	"errors"
	"time"
)

// timeLayout is fixed width so lexical order equals chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in the storage layout (always UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime accepts the storage layout and falls back to RFC3339.
func ParseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(timeLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// NullableString maps the empty string to SQL NULL.
func NullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// NullableTime maps a nil time to SQL NULL.
func NullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return FormatTime(*value)
}

// TimeFromNull parses a nullable column, returning nil when unset or malformed.
func TimeFromNull(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	t, err := ParseTime(value.String)
	if err != nil {
		return nil
	}
	return &t
}

// MakePlaceholders returns "?,?,..." with count entries.
func MakePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
