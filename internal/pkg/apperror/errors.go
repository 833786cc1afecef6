// Package apperror holds the error taxonomy shared by the store, the services and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by single-note lookups exposed to callers. Store methods
	// themselves report an unknown id as a nil result.
	ErrNotFound = errors.New("note not found")

	// ErrIllegalTransition is returned when a status write violates the note state machine.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrProvider marks an AI backend failure. It never leaves the enrichment service.
	ErrProvider = errors.New("ai provider failure")

	// ErrEmbeddingUnsupported is returned by provider variants without a native embedding endpoint.
	ErrEmbeddingUnsupported = errors.New("embedding not supported by provider")

	// ErrQueueUnavailable indicates the configured queue backend could not be reached.
	ErrQueueUnavailable = errors.New("queue backend unavailable")
)

// ValidationError reports caller input that violates a precondition.
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

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// InfrastructureError wraps persistence or queue failures. These are fatal for the
// triggering operation and are surfaced to the caller.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// Infrastructure wraps err with the failing operation name. A nil err stays nil.
func Infrastructure(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *InfrastructureError
	if errors.As(err, &existing) {
		return err
	}
	return &InfrastructureError{Op: op, Err: err}
}

func IsInfrastructure(err error) bool {
	var i *InfrastructureError
	return errors.As(err, &i)
}

// TransitionError carries the offending states of a rejected status write.
type TransitionError struct {
	NoteId uint
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("note %d: cannot move from %s to %s", e.NoteId, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}
