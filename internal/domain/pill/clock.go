// internal/domain/pill/clock.go
package pill

import (
	"fmt"
	"time"
)

// Clock supplies the current time to the application layer. The engine
// functions themselves take explicit time.Time values so that every
// evaluation is deterministic and replayable; Clock exists so that
// services never reach for a hidden global "now".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsSameDay reports whether a and b fall on the same calendar day.
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// AddDays returns t shifted by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// WholeDaysBetween counts the calendar days from "from" to "to"
// (negative when "to" is earlier). Rounding absorbs DST shifts.
func WholeDaysBetween(from, to time.Time) int {
	f := StartOfDay(from)
	t := StartOfDay(to)
	return int(t.Sub(f).Round(24*time.Hour) / (24 * time.Hour))
}

// CombineDateAndTime places a clock time onto a calendar day.
func CombineDateAndTime(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

// ParseTimeOfDay parses a schedule in "HH:mm" form.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return parsed.Hour(), parsed.Minute(), nil
}
