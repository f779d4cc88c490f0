package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/socialhomes/CaseClock/internal/application/worklist"
	"github.com/socialhomes/CaseClock/internal/domain/casework"
	"github.com/socialhomes/CaseClock/internal/domain/countdown"
	"github.com/socialhomes/CaseClock/internal/domain/escalation"
	"github.com/socialhomes/CaseClock/internal/domain/sla"
	pkgerrors "github.com/socialhomes/CaseClock/pkg/errors"
	"github.com/socialhomes/CaseClock/pkg/types/common"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Assess(ctx context.Context, id common.ID) (*worklist.Assessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worklist.Assessment), args.Error(1)
}

func (m *mockService) Worklist(ctx context.Context) ([]worklist.WorklistItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]worklist.WorklistItem), args.Error(1)
}

func (m *mockService) Scan(ctx context.Context) (*worklist.ScanReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worklist.ScanReport), args.Error(1)
}

func (m *mockService) Countdown(ctx context.Context, id common.ID) (*countdown.Projection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*countdown.Projection), args.Error(1)
}

func (m *mockService) Advance(ctx context.Context, id common.ID, to escalation.Stage) (*casework.Case, error) {
	args := m.Called(ctx, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*casework.Case), args.Error(1)
}

func newTestRouter(svc worklist.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCaseHandler(svc)

	r := gin.New()
	r.GET("/api/v1/worklist", h.GetWorklist)
	r.POST("/api/v1/scan", h.Scan)
	r.GET("/api/v1/cases/:id/assessment", h.GetAssessment)
	r.GET("/api/v1/cases/:id/countdown", h.GetCountdown)
	r.POST("/api/v1/cases/:id/advance", h.Advance)
	return r
}

func TestGetAssessment(t *testing.T) {
	svc := new(mockService)
	svc.On("Assess", mock.Anything, common.ID("c-1")).Return(&worklist.Assessment{
		CaseID:    "c-1",
		Reference: "REP-0001",
		Category:  "repair",
		Status:    sla.StatusApproaching,
		Level:     worklist.LevelUrgent,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/c-1/assessment", nil)
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got worklist.Assessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "REP-0001", got.Reference)
	assert.Equal(t, sla.StatusApproaching, got.Status)
	svc.AssertExpectations(t)
}

func TestGetAssessment_NotFound(t *testing.T) {
	svc := new(mockService)
	svc.On("Assess", mock.Anything, common.ID("missing")).
		Return(nil, pkgerrors.NotFound("case missing not found"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/missing/assessment", nil)
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, pkgerrors.ErrCodeNotFound.String(), body.Code)
}

func TestGetAssessment_ClientErrorMessageIsClean(t *testing.T) {
	svc := new(mockService)
	svc.On("Assess", mock.Anything, common.ID("c-9")).
		Return(nil, pkgerrors.NotFound("case not found").WithDetail("case=c-9"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/c-9/assessment", nil)
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// The code travels in its own field; the message carries neither the
	// bracketed code nor the server-side detail.
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, pkgerrors.ErrCodeNotFound.String(), body.Code)
	assert.Equal(t, "case not found", body.Message)
	assert.NotContains(t, body.Message, "COMMON_003")
	assert.NotContains(t, body.Message, "case=c-9")
}

func TestGetAssessment_InternalMasked(t *testing.T) {
	svc := new(mockService)
	svc.On("Assess", mock.Anything, common.ID("c-1")).
		Return(nil, pkgerrors.Wrap(assert.AnError, pkgerrors.ErrCodeDatabaseError, "case lookup failed: dsn=postgres://secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/c-1/assessment", nil)
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "database error", body.Message)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestGetCountdown(t *testing.T) {
	svc := new(mockService)
	svc.On("Countdown", mock.Anything, common.ID("c-1")).Return(&countdown.Projection{
		CaseID:       "c-1",
		DeadlineName: "target",
		DueAt:        time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		Tier:         countdown.TierWatch,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/c-1/countdown", nil)
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got countdown.Projection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, countdown.TierWatch, got.Tier)
}

func TestGetWorklist(t *testing.T) {
	svc := new(mockService)
	svc.On("Worklist", mock.Anything).Return([]worklist.WorklistItem{
		{CaseID: "c-2", Reference: "REP-0002", Level: worklist.LevelBreached},
		{CaseID: "c-1", Reference: "CMP-0001", Level: worklist.LevelMonitor},
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/worklist", nil)
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items []worklist.WorklistItem `json:"items"`
		Count int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "REP-0002", body.Items[0].Reference)
}

func TestScan(t *testing.T) {
	svc := new(mockService)
	svc.On("Scan", mock.Anything).Return(&worklist.ScanReport{
		Total: 4, Compliant: 1, AtRisk: 1, Breached: 1, Excluded: 1,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", nil)
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got worklist.ScanReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 1, got.Breached)
}

func TestAdvance(t *testing.T) {
	svc := new(mockService)
	svc.On("Advance", mock.Anything, common.ID("c-1"), escalation.StageABC).
		Return(&casework.Case{
			ID:              "c-1",
			Reference:       "ASB-0001",
			Category:        casework.CategoryASB,
			EscalationStage: "abc",
		}, nil)

	body, _ := json.Marshal(AdvanceRequest{To: "abc"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/c-1/advance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got casework.Case
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "abc", got.EscalationStage)
	svc.AssertExpectations(t)
}

func TestAdvance_MissingBody(t *testing.T) {
	svc := new(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/c-1/advance", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Advance")
}

func TestAdvance_InvalidTransition(t *testing.T) {
	svc := new(mockService)
	svc.On("Advance", mock.Anything, common.ID("c-1"), escalation.StageInjunction).
		Return(nil, pkgerrors.InvalidTransition("cannot skip from warning to injunction"))

	body, _ := json.Marshal(AdvanceRequest{To: "injunction"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/c-1/advance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
