package carpool

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the service wraps exactly one of these,
// so callers branch with errors.Is.
var (
	ErrValidation    = errors.New("validation error")
	ErrAuthorization = errors.New("authorization error")
	ErrInvalidState  = errors.New("invalid state")
	ErrConflict      = errors.New("conflict")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient error")
)

var (
	ErrSameLocation     = fmt.Errorf("%w: from and to must differ", ErrValidation)
	ErrMissingLocation  = fmt.Errorf("%w: from and to are required", ErrValidation)
	ErrUnknownLocation  = fmt.Errorf("%w: unknown location", ErrValidation)
	ErrUnknownRideType  = fmt.Errorf("%w: unsupported ride type", ErrValidation)
	ErrEmptyMessage     = fmt.Errorf("%w: message text is empty", ErrValidation)
	ErrMessageTooLong   = fmt.Errorf("%w: message text is too long", ErrValidation)
	ErrNotLead          = fmt.Errorf("%w: only the ride lead can do this", ErrAuthorization)
	ErrNotParticipant   = fmt.Errorf("%w: not a participant of this ride", ErrAuthorization)
	ErrFemalesOnly      = fmt.Errorf("%w: ride is restricted to female users", ErrAuthorization)
	ErrRideNotOpen      = fmt.Errorf("%w: ride is not open", ErrInvalidState)
	ErrNoCapacity       = fmt.Errorf("%w: no capacity", ErrInvalidState)
	ErrRideNotStarted   = fmt.Errorf("%w: ride has not started", ErrInvalidState)
	ErrRideCompleted    = fmt.Errorf("%w: ride is completed", ErrInvalidState)
	ErrRideNotCompleted = fmt.Errorf("%w: ride has not completed", ErrInvalidState)
	ErrDuplicateRequest = fmt.Errorf("%w: a pending request already exists", ErrConflict)
	ErrAlreadyMember    = fmt.Errorf("%w: already part of this ride", ErrConflict)
	ErrRideNotFound     = fmt.Errorf("%w: ride not found", ErrNotFound)
	ErrRequestNotFound  = fmt.Errorf("%w: pending request not found", ErrNotFound)
	ErrNoTranscript     = fmt.Errorf("%w: transcript not archived yet", ErrNotFound)
)

// Kind names the taxonomy entry err belongs to, or "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrAuthorization):
		return "forbidden"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "internal"
	}
}

// KindError returns the sentinel for a kind name produced by Kind.
func KindError(kind string) error {
	switch kind {
	case "validation":
		return ErrValidation
	case "forbidden":
		return ErrAuthorization
	case "invalid_state":
		return ErrInvalidState
	case "conflict":
		return ErrConflict
	case "not_found":
		return ErrNotFound
	case "transient":
		return ErrTransient
	default:
		return nil
	}
}

// storeErr passes domain errors through and marks everything else retryable.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != "internal" {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
}
