package planner

import (
	"errors"
	"fmt"
)

// Reasons carried by ValidationError.
const (
	ReasonMissingContact  = "missing_contact"
	ReasonNoServices      = "no_services"
	ReasonNoTime          = "no_time"
	ReasonNoDate          = "no_date"
	ReasonPastDate        = "past_date"
	ReasonUnknownService  = "unknown_service"
	ReasonSlotUnavailable = "slot_unavailable"
	ReasonSlotsNotLoaded  = "slots_not_loaded"
	ReasonInvalidTime     = "invalid_time"
)

// ErrWrongStep is returned when an action is attempted outside the wizard
// step that owns it.
var ErrWrongStep = errors.New("action not allowed in current step")

// ErrSubmitInFlight is returned when a second submission is started before
// the first one finished.
var ErrSubmitInFlight = errors.New("booking submission already in progress")

// ValidationError blocks a transition until the user corrects the input.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed: %s: %v", e.Reason, e.Err)
	}
	return "validation failed: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// GatewayError wraps a transport or backend failure. The draft is untouched
// and the operation can be retried.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// BackendRejection is a success=false answer. Message is shown to the user as-is.
type BackendRejection struct {
	Message string
}

func (e *BackendRejection) Error() string {
	return e.Message
}

// IsValidation reports whether err is a ValidationError with the given reason.
// An empty reason matches any ValidationError.
func IsValidation(err error, reason string) bool {
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		return false
	}
	return reason == "" || vErr.Reason == reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}
