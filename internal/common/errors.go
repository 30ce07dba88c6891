package common

import (
	"errors"
	"sort"
	"strings"
)

var (
	// Error taxonomy surfaced to screens.
	ErrValidation        = errors.New("validation error")
	ErrCompressionFailed = errors.New("compression failed")
	ErrRequestFailed     = errors.New("request failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrAuthExpired       = errors.New("authentication expired")

	// Store / flow control errors.
	ErrNotFound       = errors.New("not found")
	ErrBusy           = errors.New("another operation is in flight")
	ErrEditInProgress = errors.New("another record has unsaved changes")

	// Session errors.
	ErrNoSession = errors.New("no session")
	ErrForbidden = errors.New("forbidden")

	// Input errors.
	ErrInvalidKey   = errors.New("invalid encryption key")
	ErrTooManyFiles = errors.New("too many files")
)

// ValidationError describes form input rejected before any network call.
// Fields maps a form field name to a human readable message.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
