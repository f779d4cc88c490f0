// Package handlers implements the HTTP handlers for the deadline engine's
// REST API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socialhomes/CaseClock/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error onto its HTTP status and writes
// the structured body.  The message carries only the error's caller-facing
// text: the code travels in its own field and Detail stays server-side.
// Server-side failures are masked entirely.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := errors.GetMessage(err)
	if status >= http.StatusInternalServerError {
		message = errors.DefaultMessageForCode(code)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    code.String(),
		Message: message,
	})
}
