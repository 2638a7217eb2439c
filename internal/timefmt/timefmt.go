// Package timefmt converts between the backend's UTC timestamps and display
// time, and renders coarse "time ago" labels.
package timefmt

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BackendLayout is the backend's local-date-time convention: UTC, no zone suffix.
const BackendLayout = "2006-01-02T15:04:05"

const JustNow = "Just now"

var ErrEmpty = errors.New("empty timestamp")

// Zone-less layouts are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Parse reads an ISO-8601 timestamp. Strings without a zone are UTC.
func Parse(iso string) (time.Time, error) {
	s := strings.TrimSpace(iso)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: unrecognized format", iso)
}

// ToLocal returns the instant in loc. An unparseable string yields the zero
// time, which callers treat as "Invalid Date".
func ToLocal(iso string, loc *time.Location) time.Time {
	t, err := Parse(iso)
	if err != nil {
		return time.Time{}
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc)
}

// FormatBackend renders t for submission to the backend.
func FormatBackend(t time.Time) string {
	return t.UTC().Format(BackendLayout)
}

// ToBackend combines a calendar day and an "HH:mm" or "HH:mm:ss" clock, both
// in loc, into the backend's UTC string.
func ToBackend(day time.Time, clock string, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	var c time.Time
	var err error
	for _, layout := range []string{"15:04:05", "15:04"} {
		if c, err = time.Parse(layout, strings.TrimSpace(clock)); err == nil {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("parse clock %q: %w", clock, err)
	}
	y, m, d := day.Date()
	local := time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, loc)
	return FormatBackend(local), nil
}

type unit struct {
	name string
	ms   int64
}

// 30-day months and 365-day years: intentionally coarse.
var units = []unit{
	{"year", 31536000000},
	{"month", 2592000000},
	{"week", 604800000},
	{"day", 86400000},
	{"hour", 3600000},
	{"minute", 60000},
	{"second", 1000},
}

// FormatRelative labels how long before now t happened.
func FormatRelative(t, now time.Time) string {
	if t.IsZero() {
		return JustNow
	}
	elapsed := now.Sub(t).Milliseconds()
	if elapsed < 5000 {
		return JustNow
	}
	for _, u := range units {
		if elapsed >= u.ms {
			n := elapsed / u.ms
			if n == 1 {
				return fmt.Sprintf("1 %s ago", u.name)
			}
			return fmt.Sprintf("%d %ss ago", n, u.name)
		}
	}
	return JustNow
}

// FormatRelativeISO is FormatRelative for a backend timestamp string.
func FormatRelativeISO(iso string, now time.Time) string {
	t, err := Parse(iso)
	if err != nil {
		return JustNow
	}
	return FormatRelative(t, now)
}
