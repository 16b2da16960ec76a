package align

import (
	"fmt"
	"strings"
	"time"
)

// layouts accepted by ParseDate, tried in order.
var layouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"20060102T150405Z",
	"20060102150405",
}

// Naive drops timezone information, keeping the UTC wall clock.
func Naive(t time.Time) time.Time {
	return t.UTC()
}

// TruncateDay returns the naive midnight of t's date in t's own location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses the date formats written by the upstream providers and
// by the cache codec. The result is always timezone-naive.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("parse date: empty value")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Naive(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date: unrecognized format %q", s)
}

// FormatDate writes t as a date when it falls on midnight, otherwise as a
// date and time.
func FormatDate(t time.Time) string {
	t = Naive(t)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
