package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialhomes/CaseClock/internal/domain/casework"
	"github.com/socialhomes/CaseClock/pkg/errors"
)

func mustCase(t *testing.T, category casework.Category, classifier string, createdAt time.Time) *casework.Case {
	t.Helper()
	c, err := casework.New("case-t", "REF-0001", category, classifier, createdAt)
	require.NoError(t, err)
	return c
}

func TestDerive_RepairTargets(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	cat := Default()

	tests := []struct {
		priority casework.RepairPriority
		wantDays int
	}{
		{casework.PriorityEmergency, 1},
		{casework.PriorityUrgent, 5},
		{casework.PriorityRoutine, 28},
		{casework.PriorityPlanned, 90},
	}
	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			c := mustCase(t, casework.CategoryRepair, string(tt.priority), created)
			ds, err := cat.Derive(c)
			require.NoError(t, err)
			require.Len(t, ds, 1)
			assert.Equal(t, NameTarget, ds[0].Name)
			assert.Equal(t, created.AddDate(0, 0, tt.wantDays), ds[0].DueAt)
			assert.False(t, ds[0].UsesWorkingDays, "repair targets are calendar days")
		})
	}
}

func TestDerive_EmergencyRepairDueNextDay(t *testing.T) {
	// An emergency repair created 2026-02-01T09:00 is due 2026-02-02T09:00.
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	c := mustCase(t, casework.CategoryRepair, "emergency", created)
	ds, err := Default().Derive(c)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC), ds[0].DueAt)
}

func TestDerive_ComplaintStages(t *testing.T) {
	// Monday origin keeps the working-day arithmetic easy to follow.
	created := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	cat := Default()

	stage1 := mustCase(t, casework.CategoryComplaint, "1", created)
	ds, err := cat.Derive(stage1)
	require.NoError(t, err)
	require.Len(t, ds, 2)

	assert.Equal(t, NameAcknowledgeBy, ds[0].Name)
	assert.Equal(t, time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC), ds[0].DueAt) // +5wd
	assert.True(t, ds[0].UsesWorkingDays)

	assert.Equal(t, NameRespondBy, ds[1].Name)
	assert.Equal(t, time.Date(2026, 2, 16, 10, 0, 0, 0, time.UTC), ds[1].DueAt) // +10wd
	assert.True(t, ds[1].UsesWorkingDays)

	stage2 := mustCase(t, casework.CategoryComplaint, "2", created)
	ds2, err := cat.Derive(stage2)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), ds2[1].DueAt) // +20wd
}

func TestDerive_EmergencyHazard(t *testing.T) {
	created := time.Date(2026, 2, 6, 16, 30, 0, 0, time.UTC) // Friday evening
	c := mustCase(t, casework.CategoryHazard, "emergency", created)

	ds, err := Default().Derive(c)
	require.NoError(t, err)
	require.Len(t, ds, 1, "the emergency track is single-tier")
	assert.Equal(t, NameEmergencyActionBy, ds[0].Name)
	// Exactly 24 hours, weekends notwithstanding.
	assert.Equal(t, created.Add(24*time.Hour), ds[0].DueAt)
	assert.False(t, ds[0].UsesWorkingDays)
}

func TestDerive_SignificantHazard(t *testing.T) {
	created := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC) // a Monday
	c := mustCase(t, casework.CategoryHazard, "significant", created)

	ds, err := Default().Derive(c)
	require.NoError(t, err)
	require.Len(t, ds, 4)

	assert.Equal(t, NameInvestigateBy, ds[0].Name)
	assert.Equal(t, time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), ds[0].DueAt) // +10wd

	assert.Equal(t, NameSummariseBy, ds[1].Name)
	assert.Equal(t, time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC), ds[1].DueAt) // +13wd

	assert.Equal(t, NameSafetyWorksBy, ds[2].Name)
	assert.Equal(t, time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC), ds[2].DueAt) // +18wd

	assert.Equal(t, NameFullRepairBy, ds[3].Name)
	assert.Equal(t, created.AddDate(0, 0, 84), ds[3].DueAt) // 12 calendar weeks
	assert.False(t, ds[3].UsesWorkingDays)

	// Ordered earliest first.
	for i := 1; i < len(ds); i++ {
		assert.True(t, ds[i-1].DueAt.Before(ds[i].DueAt))
	}
}

func TestDerive_PipelineDrivenCategoriesHaveNoDeadlines(t *testing.T) {
	created := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	cat := Default()

	asb := mustCase(t, casework.CategoryASB, "cat-2", created)
	fin := mustCase(t, casework.CategoryFinancial, "", created)
	enq := mustCase(t, casework.CategoryEnquiry, "", created)

	for _, c := range []*casework.Case{asb, fin, enq} {
		ds, err := cat.Derive(c)
		require.NoError(t, err)
		assert.Empty(t, ds, c.Category)
	}
}

func TestDerive_ReferentialTransparency(t *testing.T) {
	created := time.Date(2026, 2, 2, 8, 15, 0, 0, time.UTC)
	cat := Default()

	cases := []*casework.Case{
		mustCase(t, casework.CategoryRepair, "routine", created),
		mustCase(t, casework.CategoryComplaint, "2", created),
		mustCase(t, casework.CategoryHazard, "significant", created),
		mustCase(t, casework.CategoryHazard, "emergency", created),
	}
	for _, c := range cases {
		first, err := cat.Derive(c)
		require.NoError(t, err)
		second, err := cat.Derive(c)
		require.NoError(t, err)
		assert.Equal(t, first, second, "deriving twice must yield identical deadlines")
	}
}

func TestDerive_ReclassifyKeepsOrigin(t *testing.T) {
	created := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	cat := Default()

	c := mustCase(t, casework.CategoryRepair, "routine", created)
	re, err := c.Reclassify("urgent")
	require.NoError(t, err)

	ds, err := cat.Derive(re)
	require.NoError(t, err)
	// Recomputed from the original createdAt, not from "now".
	assert.Equal(t, created.AddDate(0, 0, 5), ds[0].DueAt)
}

func TestDerive_UnknownClassifier(t *testing.T) {
	created := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	cat := Default()

	// Bypass the casework constructor to simulate a corrupt store record.
	c := &casework.Case{ID: "bad", Category: casework.CategoryHazard, Classifier: "moderate", CreatedAt: created}
	_, err := cat.Derive(c)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownClassifier))

	c2 := &casework.Case{ID: "bad2", Category: casework.Category("void"), CreatedAt: created}
	_, err = cat.Derive(c2)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownCategory))
}

func TestDerive_MissingCreatedAt(t *testing.T) {
	c := &casework.Case{ID: "bad3", Category: casework.CategoryRepair, Classifier: "routine"}
	_, err := Default().Derive(c)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDate))
}

func TestRepairWindowDays(t *testing.T) {
	cat := Default()
	days, err := cat.RepairWindowDays(casework.PriorityRoutine)
	require.NoError(t, err)
	assert.Equal(t, 28, days)

	_, err = cat.RepairWindowDays(casework.RepairPriority("critical"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownClassifier))
}
