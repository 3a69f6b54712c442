package engagement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

var (
	ErrAuthenticationRequired = errors.New("you must be logged in")
	ErrTaskAlreadyAssigned    = errors.New("task is already assigned")
	ErrTaskNotAssigned        = errors.New("task is not assigned")
	ErrNotAssignee            = errors.New("task is assigned to another volunteer")
	ErrConfirmationRequired   = errors.New("releasing a task must be confirmed")
	ErrNotRegistered          = errors.New("you are not registered for this event")
	ErrRegistrationClosed     = errors.New("registration for this event is closed")
)

// ValidationError reports a violated precondition on a single input field.
// The operation is never attempted when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RemoteError wraps a failed read or write against the store
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Remote wraps err as a RemoteError, or returns nil when err is nil
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}

// BatchError is returned when a sequential batch commit stops at its first failing row.
// Rows before the failure stay committed; the failing row and everything after it stay staged.
type BatchError struct {
	FailedTaskID int64
	Committed    []int64
	Pending      []int64
	Err          error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("failed to commit task %d (%d committed, %d still staged, please retry): %v",
		e.FailedTaskID, len(e.Committed), len(e.Pending), e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// RequireSession is the first check of every mutation
func RequireSession(session *model.Session) error {
	if session == nil || strings.TrimSpace(session.VolunteerID) == "" {
		return ErrAuthenticationRequired
	}
	return nil
}
