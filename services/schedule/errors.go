package schedule

import (
	"errors"
	"fmt"

	"fixmo/models"
)

// SlotUnavailableError reports that the requested occurrence is already
// booked or its template is inactive. Expected and user-facing; callers
// surface it as a booking rejection, not a system fault.
type SlotUnavailableError struct {
	ProviderID string
	Date       string
	Start      int
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot %s %s for provider %s is no longer available",
		e.Date, models.FormatClock(e.Start), e.ProviderID)
}

// NotFoundError reports that no template (or appointment) matches the
// request.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// InvalidTransitionError reports a status move the state machine forbids.
type InvalidTransitionError struct {
	From models.AppointmentStatus
	To   models.AppointmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// ConflictError reports a concurrent write detected at the storage layer.
// The booking path retries once with a fresh read before reporting the slot
// unavailable.
type ConflictError struct {
	Inner error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent write conflict: %v", e.Inner)
}

func (e *ConflictError) Unwrap() error { return e.Inner }

// TimeoutError reports that the booking commit exceeded its deadline. Kept
// distinct from unavailability so the caller retries with a fresh read
// instead of assuming the slot is gone.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out", e.Op)
}

// ValidationError reports a malformed template or booking request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func IsSlotUnavailable(err error) bool {
	var e *SlotUnavailableError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsInvalidTransition(err error) bool {
	var e *InvalidTransitionError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsTimeout(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}
