package repository

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// timeLayout is RFC3339 with a fixed nine-digit fraction so stored values
// sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	if err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...interface{}) error
}
