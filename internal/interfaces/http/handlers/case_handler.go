package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socialhomes/CaseClock/internal/application/worklist"
	"github.com/socialhomes/CaseClock/internal/domain/escalation"
	"github.com/socialhomes/CaseClock/pkg/errors"
	"github.com/socialhomes/CaseClock/pkg/types/common"
)

// CaseHandler serves the per-case assessment, countdown and escalation
// endpoints together with the caseload-wide worklist and scan.
type CaseHandler struct {
	service worklist.Service
}

// NewCaseHandler constructs a CaseHandler.
func NewCaseHandler(service worklist.Service) *CaseHandler {
	return &CaseHandler{service: service}
}

// GetAssessment handles GET /api/v1/cases/:id/assessment.
func (h *CaseHandler) GetAssessment(c *gin.Context) {
	assessment, err := h.service.Assess(c.Request.Context(), common.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

// GetCountdown handles GET /api/v1/cases/:id/countdown.
func (h *CaseHandler) GetCountdown(c *gin.Context) {
	projection, err := h.service.Countdown(c.Request.Context(), common.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

// AdvanceRequest is the body for POST /api/v1/cases/:id/advance.
type AdvanceRequest struct {
	To string `json:"to" binding:"required"`
}

// Advance handles POST /api/v1/cases/:id/advance.
func (h *CaseHandler) Advance(c *gin.Context) {
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidParam("target stage is required"))
		return
	}

	updated, err := h.service.Advance(c.Request.Context(), common.ID(c.Param("id")), escalation.Stage(req.To))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetWorklist handles GET /api/v1/worklist.
func (h *CaseHandler) GetWorklist(c *gin.Context) {
	items, err := h.service.Worklist(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Scan handles POST /api/v1/scan.
func (h *CaseHandler) Scan(c *gin.Context) {
	report, err := h.service.Scan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
