package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialhomes/CaseClock/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseStamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339", "2026-02-01T09:00:00Z", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), false},
		{"date only", "2026-02-02", date(2026, 2, 2), false},
		{"no zone", "2026-02-01T09:00:00", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), false},
		{"empty", "", time.Time{}, true},
		{"uk display format rejected", "09/02/2026", time.Time{}, true},
		{"garbage", "not-a-date", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStamp(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDate))
				assert.True(t, got.IsZero(), "failed parse must not yield a usable time")
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestAddDays(t *testing.T) {
	d := date(2026, 2, 1)
	assert.Equal(t, d, AddDays(d, 0))
	assert.Equal(t, date(2026, 2, 6), AddDays(d, 5))
	assert.Equal(t, date(2026, 1, 27), AddDays(d, -5))
	// Month boundary.
	assert.Equal(t, date(2026, 3, 1), AddDays(date(2026, 2, 26), 3))
}

func TestAddWorkingDays(t *testing.T) {
	mon := date(2026, 2, 2) // Monday

	assert.Equal(t, mon, AddWorkingDays(mon, 0))

	// Five working days from Monday is the next Monday.
	assert.Equal(t, date(2026, 2, 9), AddWorkingDays(mon, 5))

	// Ten working days from Monday 2026-02-02 lands on Monday 2026-02-16.
	assert.Equal(t, date(2026, 2, 16), AddWorkingDays(mon, 10))

	// Adding one working day to a Friday skips the weekend.
	fri := date(2026, 2, 6)
	assert.Equal(t, date(2026, 2, 9), AddWorkingDays(fri, 1))

	// Preserves time of day.
	stamp := time.Date(2026, 2, 2, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 9, 14, 30, 0, 0, time.UTC), AddWorkingDays(stamp, 5))
}

func TestAddWorkingDays_Backward(t *testing.T) {
	mon := date(2026, 2, 9)
	// One working day back from Monday is the previous Friday.
	assert.Equal(t, date(2026, 2, 6), AddWorkingDays(mon, -1))
	assert.Equal(t, date(2026, 2, 2), AddWorkingDays(mon, -5))
}

func TestAddWorkingDays_RoundTrip(t *testing.T) {
	// Forward then backward by the same count returns to the origin for
	// weekday origins.
	origins := []time.Time{
		date(2026, 2, 2), // Mon
		date(2026, 2, 4), // Wed
		date(2026, 2, 6), // Fri
	}
	for _, o := range origins {
		for n := 0; n <= 15; n++ {
			assert.Equal(t, o, AddWorkingDays(AddWorkingDays(o, n), -n),
				"origin %s n=%d", o, n)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := date(2026, 2, 1)
	b := date(2026, 2, 10)

	assert.Equal(t, 9, DaysBetween(a, b))
	assert.Equal(t, -9, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))

	// Partial days truncate to the calendar date.
	assert.Equal(t, 1, DaysBetween(
		time.Date(2026, 2, 1, 23, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 2, 1, 0, 0, 0, time.UTC),
	))
}

func TestWorkingDaysBetween(t *testing.T) {
	mon := date(2026, 2, 2)

	// Exclusive of a, inclusive of b: Mon→Fri of the same week is 4.
	assert.Equal(t, 4, WorkingDaysBetween(mon, date(2026, 2, 6)))

	// Mon→next Mon spans one weekend: 5 working days.
	assert.Equal(t, 5, WorkingDaysBetween(mon, date(2026, 2, 9)))

	// Friday→Monday is 1 working day.
	assert.Equal(t, 1, WorkingDaysBetween(date(2026, 2, 6), date(2026, 2, 9)))

	// Saturday→Sunday is 0.
	assert.Equal(t, 0, WorkingDaysBetween(date(2026, 2, 7), date(2026, 2, 8)))

	assert.Equal(t, 0, WorkingDaysBetween(mon, mon))
}

func TestWorkingDaysBetween_Antisymmetric(t *testing.T) {
	dates := []time.Time{
		date(2026, 2, 2),
		date(2026, 2, 6),
		date(2026, 2, 7),
		date(2026, 2, 16),
		date(2026, 3, 2),
	}
	for _, a := range dates {
		for _, b := range dates {
			assert.Equal(t, WorkingDaysBetween(a, b), -WorkingDaysBetween(b, a),
				"a=%s b=%s", a, b)
		}
	}
}

func TestIsWorkingDay(t *testing.T) {
	assert.True(t, IsWorkingDay(date(2026, 2, 2)))  // Mon
	assert.True(t, IsWorkingDay(date(2026, 2, 6)))  // Fri
	assert.False(t, IsWorkingDay(date(2026, 2, 7))) // Sat
	assert.False(t, IsWorkingDay(date(2026, 2, 8))) // Sun
}
