package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrReferential marks a record that points at a parent the store does not have.
	ErrReferential = errors.New("referential integrity violation")
)

// ValidationError reports a payload that is missing or has a malformed
// required field for its kind.
type ValidationError struct {
	Kind  string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.Kind != "" {
		b.WriteString(" for ")
		b.WriteString(e.Kind)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ValidationError) Unwrap() []error { return withCause(ErrInvalidArgument, e.Err) }

// ReferentialError is surfaced when finalizing a session that holds a
// record whose identity or parent reference does not exist in the store.
type ReferentialError struct {
	Kind string
	Key  string
	Err  error
}

func (e *ReferentialError) Error() string {
	msg := fmt.Sprintf("%s %s references a missing record", e.Kind, e.Key)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReferentialError) Unwrap() []error { return withCause(ErrReferential, e.Err) }

// NotFoundError is returned for an unknown collection or kind name.
type NotFoundError struct {
	Resource string
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func withCause(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}

func Validation(kind, field string, err error) error {
	return &ValidationError{Kind: kind, Field: field, Err: err}
}

func Validationf(kind, field, format string, args ...any) error {
	return &ValidationError{Kind: kind, Field: field, Err: fmt.Errorf(format, args...)}
}

func NotFound(resource, name string) error {
	return &NotFoundError{Resource: resource, Name: name}
}
