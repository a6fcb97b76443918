package timezone

import (
	"errors"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"

	// Accepted for instants that arrive without an offset; read as UTC.
	naiveLayout = "2006-01-02T15:04:05"
)

var ErrInvalidInstant = errors.New("invalid instant")

// NaiveUTC normalizes an instant to the storage convention: UTC wall clock,
// whole seconds, no monotonic reading.
func NaiveUTC(t time.Time) time.Time {
	u := t.UTC().Truncate(time.Second)
	return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), u.Minute(), u.Second(), 0, time.UTC)
}

// DayStart returns midnight UTC of the calendar day t falls on in UTC.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// ParseInstant parses an ISO-8601 instant. Offsets are honoured; a value
// without an offset is taken as UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidInstant
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NaiveUTC(t), nil
	}
	if t, err := time.ParseInLocation(naiveLayout, s, time.UTC); err == nil {
		return NaiveUTC(t), nil
	}
	return time.Time{}, ErrInvalidInstant
}

// Format renders an instant for callers, always with an explicit Z.
func Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func Now() time.Time {
	return time.Now().UTC()
}
