package application

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound                     = errors.New("application not found")
	ErrDuplicate                    = errors.New("duplicate application")
	ErrConflict                     = errors.New("application modified concurrently")
	ErrUnauthorized                 = errors.New("admin privileges required")
	ErrDisbursementExceedsRequested = errors.New("disbursement amount exceeds requested amount")
	ErrInvalidTransition            = errors.New("invalid state transition")
	// ErrStoreUnavailable wraps every persistence failure that is not one of the above.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// TransitionError reports an action attempted from a state that does not allow it.
type TransitionError struct {
	From   State
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s from %s", ErrInvalidTransition, e.Action, e.From)
}

// Message is the client-facing sentence, it names the offending state.
func (e *TransitionError) Message() string {
	switch e.Action {
	case ActionDisburse:
		return fmt.Sprintf("Cannot disburse funds for an application in %s state.", e.From)
	default:
		return fmt.Sprintf("Cannot %s an application in %s state.", e.Action, e.From)
	}
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ValidationError collects every input problem found in one request.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "Validation failed: " + strings.Join(e.Messages, ", ")
}

func (e *ValidationError) Add(msg string) { e.Messages = append(e.Messages, msg) }

// Err returns nil when nothing was collected, so callers can `return v.Err()`.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Messages) == 0 {
		return nil
	}
	return e
}
