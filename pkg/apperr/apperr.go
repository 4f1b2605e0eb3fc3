package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed or out-of-range input field.
// The operation is rejected before any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IllegalTransitionError reports a lifecycle operation requested from a
// status that forbids it. It is always surfaced, never silently corrected.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

func NewIllegalTransition(from, to string) *IllegalTransitionError {
	return &IllegalTransitionError{From: from, To: to}
}

// NotFoundError reports a missing record within the caller's tenant.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ConflictError reports a uniqueness violation (e.g. duplicate email).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// PersistenceError wraps a failed transaction or store operation. The
// enclosing transaction has been rolled back; no partial state remains.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// --- Classification helpers for the HTTP layer ---

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsIllegalTransition(err error) bool {
	var t *IllegalTransitionError
	return errors.As(err, &t)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}
