package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned when a write is rejected because of the caller's input.
// Nothing is persisted when it is returned.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldError is a shortcut for a ValidationError on a single field.
func NewFieldError(field, msg string) error {
	return &ValidationError{Err: errors.New(msg), Fields: []FieldError{{Field: field, Error: msg}}}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// Field returns the message reported for field, if any.
func (err ValidationError) Field(field string) (string, bool) {
	for _, fe := range err.Fields {
		if fe.Field == field {
			return fe.Error, true
		}
	}
	return "", false
}

// ConflictError is returned when a write would break an invariant shared with other records
// (eg. two overlapping terms in the same classroom).
type ConflictError struct {
	Msg string
}

func NewConflictError(msg string) error {
	return &ConflictError{Msg: msg}
}

func (err ConflictError) Error() string {
	return err.Msg
}

// IsValidationError reports whether the cause of err is a *ValidationError.
func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// IsConflict reports whether the cause of err is a *ConflictError.
func IsConflict(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
