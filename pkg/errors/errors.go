package errors

import (
	"errors"
	"fmt"
)

// Error represents a typed domain error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same error code, so callers can
// match clones and wrapped instances against the package sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for the registration domain.
var (
	ErrDuplicateUsername  = New("DUPLICATE_USERNAME", "username already exists")
	ErrDuplicateStudentID = New("DUPLICATE_STUDENT_ID", "student id already registered")
	ErrDuplicateCourse    = New("DUPLICATE_COURSE", "course id already exists")
	ErrWeakPassword       = New("WEAK_PASSWORD", "password does not meet minimum length")
	ErrPasswordMismatch   = New("PASSWORD_MISMATCH", "passwords do not match")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", "invalid username, password or student id")
	ErrStudentNotFound    = New("STUDENT_NOT_FOUND", "student not found")
	ErrCourseNotFound     = New("COURSE_NOT_FOUND", "course not found")
	ErrAlreadyEnrolled    = New("ALREADY_ENROLLED", "student already enrolled in course")
	ErrNotEnrolled        = New("NOT_ENROLLED", "student not enrolled in course")
	ErrCourseFull         = New("COURSE_FULL", "course has no available seats")
	ErrScheduleConflict   = New("SCHEDULE_CONFLICT", "course meeting times overlap")
	ErrValidation         = New("VALIDATION_ERROR", "validation failed")
	ErrUnauthorized       = New("UNAUTHORIZED", "unauthorized")
	ErrPersistence        = New("PERSISTENCE_ERROR", "failed to persist state")
	ErrCorruptData        = New("CORRUPT_DATA", "stored data is unreadable")
	ErrInternal           = New("INTERNAL_ERROR", "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
