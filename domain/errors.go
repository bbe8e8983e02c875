package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("validation failed")
)

// Policy rejection codes returned to clients.
const (
	CodeGeofence          = "GEOFENCE_VIOLATION"
	CodeHoliday           = "HOLIDAY"
	CodeInvalidQR         = "INVALID_QR"
	CodeTooEarly          = "TOO_EARLY"
	CodeNoActiveSchedule  = "NO_ACTIVE_SCHEDULE"
	CodeSessionCompleted  = "SESSION_COMPLETED"
	CodeAlreadyCheckedOut = "ALREADY_CHECKED_OUT"
	CodeCheckoutTooEarly  = "CHECKOUT_TOO_EARLY"
	CodeReasonRequired    = "REASON_REQUIRED"
	CodeSessionConflict   = "SESSION_CONFLICT"
)

// PolicyError is a structured rejection: the request was well-formed
// but a business rule refused it. Details carry whatever the client
// needs to self-correct (minutes remaining, permitted reasons, the
// measured distance).
type PolicyError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewPolicyError(code, message string) *PolicyError {
	return &PolicyError{Code: code, Message: message}
}

func (e *PolicyError) WithDetail(key string, value interface{}) *PolicyError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// ConflictError trips when the active-session guard finds an unfinished
// session; it carries that session so the client can redirect there.
type ConflictError struct {
	Code          string             `json:"code"`
	Message       string             `json:"message"`
	ActiveSession *ActiveSessionInfo `json:"active_session"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
