package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewID_Unique(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsZero())
	assert.True(t, ID("").IsZero())
}

func TestDateRange_Contains(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := DateRange{Start: start, End: end}

	assert.True(t, r.Contains(start))
	assert.True(t, r.Contains(start.AddDate(0, 0, 14)))
	assert.False(t, r.Contains(end))
	assert.False(t, r.Contains(start.Add(-time.Second)))
}
