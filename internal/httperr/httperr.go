package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code      string `json:"error_code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

var messages = map[string]string{
	"child_not_found":     "Child not found.",
	"location_not_found":  "Location not found.",
	"zone_not_found":      "Zone not found for this location.",
	"session_not_found":   "Session not found or canceled.",
	"visit_not_found":     "Visit not found.",
	"credit_not_found":    "Credit not found.",
	"active_visit_exists": "Child already has an active visit.",
	"already_checked_out": "Visit is already checked out.",
	"zone_full":           "Zone is at maximum capacity.",
	"session_full":        "Session is at maximum capacity.",
	"no_eligible_credit":  "No valid play time credit available.",
	"invalid_visit_type":  "Unknown visit type.",
	"invalid_minutes":     "Minutes must be a positive number.",
	"storage_contention":  "The operation could not be completed, try again.",

	"missing_history_owner":   "A child or guardian is required.",
	"invalid_date":            "Dates must use the YYYY-MM-DD format.",
	"invalid_date_range":      "The end date is before the start date.",
	"invalid_expiry_date":     "Expiry date must use the YYYY-MM-DD format.",
	"missing_transaction_id":  "Transaction id is required.",
	"invalid_guardian":        "Guardian id is required.",
	"invalid_location":        "Location id is required.",
	"invalid_amount":          "Amount paid cannot be negative.",
	"reference_not_found":     "A referenced record does not exist.",
	"invalid_capacity_target": "Occupancy is tracked for zones and sessions only.",
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// StatusFor maps an error kind to the HTTP status surfaced to callers.
func StatusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindCapacity:
		return http.StatusConflict
	case KindPaymentRequired:
		return http.StatusPaymentRequired
	case KindInvalid:
		return http.StatusBadRequest
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes err as JSON. Errors that are not BusinessError become
// a generic 500 and the cause is attached to the gin context.
func FromError(c *gin.Context, err error) {
	var be BusinessError
	if !errors.As(err, &be) {
		_ = c.Error(err)
		Internal(c, "internal_error", "Unexpected error.")
		return
	}

	msg, ok := messages[be.Code]
	if !ok {
		msg = be.Code
	}

	c.JSON(StatusFor(be.Kind), HTTPError{
		Code:      be.Code,
		Message:   msg,
		Retryable: be.Kind == KindCapacity || be.Kind == KindTransient,
	})
}
