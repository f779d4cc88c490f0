package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_005"
	ErrCodeTimeout            ErrorCode = "COMMON_006"
	ErrCodeValidation         ErrorCode = "COMMON_007"
	ErrCodeSerialization      ErrorCode = "COMMON_008"
	ErrCodeDatabaseError      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
	ErrCodeMessagingError     ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"

	ErrCodeUnknown ErrorCode = "UNKNOWN"
	CodeOK         ErrorCode = "OK"
)

// Calendar module error codes.
const (
	// ErrCodeInvalidDate marks an unparseable or missing timestamp where one
	// was required.  Never defaulted to "now" or epoch.
	ErrCodeInvalidDate ErrorCode = "CAL_001"
)

// Case / rule-catalogue module error codes.
const (
	// ErrCodeUnknownCategory marks a case category with no matching rule set.
	// Fails loudly rather than falling back to a default deadline: an
	// unrecognised hazard classification silently defaulting to "no deadline"
	// is precisely the compliance bug this engine exists to prevent.
	ErrCodeUnknownCategory ErrorCode = "CASE_001"

	// ErrCodeUnknownClassifier marks a category/classifier combination with
	// no matching rule.
	ErrCodeUnknownClassifier ErrorCode = "CASE_002"

	// ErrCodeCaseIncomplete marks a case projection missing a required field.
	ErrCodeCaseIncomplete ErrorCode = "CASE_003"
)

// Escalation module error codes.
const (
	// ErrCodeInvalidTransition marks an illegal escalation-stage move.
	ErrCodeInvalidTransition ErrorCode = "ESC_001"

	// ErrCodeUnknownStage marks a persisted stage value not found in its
	// category's pipeline.
	ErrCodeUnknownStage ErrorCode = "ESC_002"

	// ErrCodeNoPipeline marks an escalation operation on a category that has
	// no escalation pipeline.
	ErrCodeNoPipeline ErrorCode = "ESC_003"
)

// ErrorCodeHTTPStatus maps each ErrorCode to its HTTP response status.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeInvalidDate:       http.StatusUnprocessableEntity,
	ErrCodeUnknownCategory:   http.StatusUnprocessableEntity,
	ErrCodeUnknownClassifier: http.StatusUnprocessableEntity,
	ErrCodeCaseIncomplete:    http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusConflict,
	ErrCodeUnknownStage:      http.StatusUnprocessableEntity,
	ErrCodeNoPipeline:        http.StatusUnprocessableEntity,
}

// ErrorCodeMessage maps each ErrorCode to its default human-readable message.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "not found",
	ErrCodeConflict:           "conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessagingError:     "messaging error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeInvalidDate:       "invalid or missing date",
	ErrCodeUnknownCategory:   "unknown case category",
	ErrCodeUnknownClassifier: "unknown classifier for category",
	ErrCodeCaseIncomplete:    "case projection incomplete",
	ErrCodeInvalidTransition: "invalid escalation transition",
	ErrCodeUnknownStage:      "stage not in category pipeline",
	ErrCodeNoPipeline:        "category has no escalation pipeline",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
