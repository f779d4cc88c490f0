package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialhomes/CaseClock/pkg/client"
)

// runCommand executes the CLI against srv and returns its stdout.
func runCommand(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append(args, "--server", srv.URL))

	err := cmd.Execute()
	return out.String(), err
}

func TestAssessCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/cases/c-1/assessment", r.URL.Path)
		_ = json.NewEncoder(w).Encode(client.Assessment{
			CaseID:     "c-1",
			Reference:  "REP-0001",
			Category:   "repair",
			Classifier: "routine",
			Status:     "approaching",
			Level:      2,
			Deadlines: []client.DeadlineStatus{
				{
					Deadline: client.Deadline{Name: "target", DueAt: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)},
					Status:   "approaching",
				},
			},
			RequiredActions: []string{"complete the repair by 2026-03-03"},
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "assess", "c-1")
	require.NoError(t, err)
	assert.Contains(t, out, "REP-0001")
	assert.Contains(t, out, "repair / routine")
	assert.Contains(t, out, "approaching (level 2)")
	assert.Contains(t, out, "target")
	assert.Contains(t, out, "2026-03-03 09:00")
	assert.Contains(t, out, "complete the repair by 2026-03-03")
}

func TestAssessCommand_JSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(client.Assessment{CaseID: "c-1", Reference: "REP-0001"})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "assess", "c-1", "--output", "json")
	require.NoError(t, err)

	var got client.Assessment
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "REP-0001", got.Reference)
}

func TestAssessCommand_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "COMMON_003", "message": "case missing not found"})
	}))
	defer srv.Close()

	_, err := runCommand(t, srv, "assess", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestCountdownCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(client.Countdown{
			CaseID:       "c-1",
			DeadlineName: "target",
			DueAt:        time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
			Days:         5, Hours: 3, Minutes: 30,
			WorkingDaysLeft: 4,
			Tier:            "watch",
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "countdown", "c-1")
	require.NoError(t, err)
	assert.Contains(t, out, "target: 5d 3h 30m remaining (watch)")
	assert.Contains(t, out, "4 working days left")
}

func TestWorklistCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []client.WorklistItem{
				{Reference: "REP-0002", Category: "repair", Status: "breached", DeadlineName: "target"},
				{Reference: "CMP-0001", Category: "complaint", Status: "approaching", DeadlineName: "respond_by"},
			},
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "worklist")
	require.NoError(t, err)
	assert.Contains(t, out, "REFERENCE")
	assert.Contains(t, out, "REP-0002")
	assert.Contains(t, out, "CMP-0001")
}

func TestScanCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_ = json.NewEncoder(w).Encode(client.ScanReport{
			Total: 4, Compliant: 1, AtRisk: 1, Breached: 1, Excluded: 1,
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "scan")
	require.NoError(t, err)
	assert.Contains(t, out, "scanned 4 open cases")
	assert.Contains(t, out, "breached   1")
}

func TestAdvanceCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "abc", body["to"])
		_ = json.NewEncoder(w).Encode(client.Case{Reference: "ASB-0001", EscalationStage: "abc"})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "advance", "c-1", "abc")
	require.NoError(t, err)
	assert.Contains(t, out, "ASB-0001 advanced to abc")
}

func TestRootCommand_UnknownArgs(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"assess"})

	assert.Error(t, cmd.Execute())
}
