package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRestoreCorrupted   = errors.New("persisted session is corrupted")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrForbidden          = errors.New("forbidden")
	ErrNoRefillsRemaining = errors.New("no refills remaining")
	ErrRemoteRejected     = errors.New("remote rejected the change")
	ErrValidationFailed   = errors.New("validation failed")

	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrTransitionInFlight = errors.New("transition already in flight")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrInvalidStatus      = errors.New("unknown status")
)

// TransitionError describes a rejected status change on one entity.
type TransitionError struct {
	Machine  string
	EntityID string
	From     string
	To       string
	Err      error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: %s -> %s: %v", e.Machine, e.EntityID, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }
