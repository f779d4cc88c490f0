package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialhomes/CaseClock/internal/application/worklist"
	"github.com/socialhomes/CaseClock/internal/domain/countdown"
	"github.com/socialhomes/CaseClock/internal/domain/deadline"
	"github.com/socialhomes/CaseClock/internal/domain/sla"
)

func TestAssessment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/cases/c-1/assessment", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "caseclock-client/")

		_ = json.NewEncoder(w).Encode(Assessment{
			CaseID:    "c-1",
			Reference: "REP-0001",
			Status:    "approaching",
			Level:     2,
		})
	}))
	defer srv.Close()

	got, err := New(srv.URL).Assessment(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "REP-0001", got.Reference)
	assert.Equal(t, 2, got.Level)
}

func TestWorklist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/worklist", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []WorklistItem{
				{CaseID: "c-2", Reference: "REP-0002", Level: 3},
				{CaseID: "c-1", Reference: "CMP-0001", Level: 1},
			},
			"count": 2,
		})
	}))
	defer srv.Close()

	items, err := New(srv.URL).Worklist(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "REP-0002", items[0].Reference)
}

func TestAdvance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/cases/c-1/advance", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "abc", body["to"])

		_ = json.NewEncoder(w).Encode(Case{ID: "c-1", EscalationStage: "abc"})
	}))
	defer srv.Close()

	got, err := New(srv.URL).Advance(context.Background(), "c-1", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.EscalationStage)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "COMMON_003",
			"message": "case c-9 not found",
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Assessment(context.Background(), "c-9")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "COMMON_003", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "HTTP 404")
}

// The assessment handler returns the service's read model unchanged, so the
// SDK types must mirror its exact wire shape.  This decodes a response
// marshalled from the server-side types rather than the SDK's own.
func TestAssessment_DecodesServerShape(t *testing.T) {
	due := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(worklist.Assessment{
			CaseID:    "c-1",
			Reference: "REP-0001",
			Category:  "repair",
			Status:    sla.StatusWithin,
			Deadlines: []sla.DeadlineStatus{
				{
					Deadline: deadline.Deadline{Name: "target", DueAt: due},
					Status:   sla.StatusWithin,
				},
			},
			Countdown: &countdown.Projection{
				CaseID:       "c-1",
				DeadlineName: "target",
				DueAt:        due,
				Tier:         countdown.TierPlenty,
			},
		})
	}))
	defer srv.Close()

	got, err := New(srv.URL).Assessment(context.Background(), "c-1")
	require.NoError(t, err)

	require.Len(t, got.Deadlines, 1)
	assert.Equal(t, "target", got.Deadlines[0].Deadline.Name)
	assert.True(t, due.Equal(got.Deadlines[0].Deadline.DueAt))
	assert.Equal(t, "within", got.Deadlines[0].Status)

	require.NotNil(t, got.Countdown)
	assert.Equal(t, "target", got.Countdown.DeadlineName)
	assert.Equal(t, "plenty", got.Countdown.Tier)
}

func TestScanTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.Scan(context.Background())
	assert.Error(t, err)
}
