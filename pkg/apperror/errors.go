package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies failures that callers must be able to tell apart.
type Kind string

const (
	KindValidation            Kind = "VALIDATION_ERROR"
	KindDependencyUnavailable Kind = "DEPENDENCY_UNAVAILABLE"
	KindInconsistentSnapshot  Kind = "INCONSISTENT_SNAPSHOT"
)

// Error is the typed error carried across package boundaries.
// Op names the failing operation (e.g. "session.Read", "embedding.Embed").
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports a malformed request. It must be raised before any state is touched.
func Validation(op, message string) error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// Unavailable wraps a failure of the key-value store, graph store or embedding service.
func Unavailable(op string, err error) error {
	return &Error{Kind: KindDependencyUnavailable, Op: op, Message: "dependency unavailable", Err: err}
}

// Inconsistent reports a knowledge snapshot that cannot be served.
func Inconsistent(op, message string, err error) error {
	return &Error{Kind: KindInconsistentSnapshot, Op: op, Message: message, Err: err}
}

func kindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindValidation
}

func IsUnavailable(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindDependencyUnavailable
}

func IsInconsistent(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindInconsistentSnapshot
}

// MessageOf returns the human readable part of an *Error, or err.Error() otherwise.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
