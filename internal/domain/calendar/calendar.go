// Package calendar provides the date arithmetic underlying every statutory
// deadline in the engine: calendar-day and working-day offsets and distances.
//
// A working day is Monday through Friday.  Bank holidays are not modelled;
// this is a documented scope limit carried over from the source rules, not an
// oversight.  See WorkingDaysNote.
package calendar

import (
	"fmt"
	"time"

	"github.com/socialhomes/CaseClock/pkg/errors"
)

// WorkingDaysNote is the canonical statement of the working-day scope limit,
// surfaced so consumers can display it alongside working-day deadlines.
const WorkingDaysNote = "working days exclude Saturdays and Sundays; public/bank holidays are not modelled"

// acceptedLayouts are the timestamp layouts ParseStamp will accept.  The
// surrounding application's DD/MM/YYYY display format is deliberately absent:
// locale-formatted strings are a presentation concern and must not leak into
// the engine.
var acceptedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseStamp parses an ISO-8601 instant or date.  An empty or unparseable
// value returns an InvalidDate error; it is never coerced to "now" or epoch.
func ParseStamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.InvalidDate("timestamp is required")
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.InvalidDate(fmt.Sprintf("unparseable timestamp %q", s))
}

// AddDays shifts t by n calendar days.  Zero is the identity; negative n
// walks backward.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddWorkingDays shifts t by n working days, skipping Saturdays and Sundays.
// Zero is the identity.  Negative n walks backward, likewise skipping
// weekends.  The time-of-day component of t is preserved.
func AddWorkingDays(t time.Time, n int) time.Time {
	if n == 0 {
		return t
	}
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	out := t
	for moved := 0; moved < n; {
		out = out.AddDate(0, 0, step)
		if IsWorkingDay(out) {
			moved++
		}
	}
	return out
}

// IsWorkingDay reports whether t falls on a Monday through Friday.
func IsWorkingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// DaysBetween returns the signed calendar-day distance from a to b, positive
// when b is after a.  Both instants are truncated to their calendar date
// before the distance is taken, so partial days do not round.
func DaysBetween(a, b time.Time) int {
	ad := dateOf(a)
	bd := dateOf(b)
	return int(bd.Sub(ad).Hours() / 24)
}

// WorkingDaysBetween returns the signed count of working days between a and
// b, exclusive of a's date and inclusive of b's date.  This matches the
// "working days remaining until b" semantics used by countdown displays.
// Antisymmetric: WorkingDaysBetween(a, b) == -WorkingDaysBetween(b, a).
func WorkingDaysBetween(a, b time.Time) int {
	ad := dateOf(a)
	bd := dateOf(b)
	if ad.Equal(bd) {
		return 0
	}
	sign := 1
	if bd.Before(ad) {
		ad, bd = bd, ad
		sign = -1
	}
	count := 0
	for d := ad.AddDate(0, 0, 1); !d.After(bd); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d) {
			count++
		}
	}
	return sign * count
}

// dateOf truncates t to midnight UTC of its calendar date.
func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
