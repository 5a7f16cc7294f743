package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrValidationFailed is matched by every *ValidationError
	ErrValidationFailed = errors.New("contact submission failed validation")
	// ErrTransport wraps any failure of the outbound mail relay call
	ErrTransport = errors.New("mail relay did not deliver the message")
	// ErrSubmissionInFlight rejects a second submit while one is awaiting the relay
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrFormNotFound       = errors.New("contact form not found")
	ErrUnknownField       = errors.New("unknown contact form field")
)

// ValidationError carries the per-field messages of a rejected submission
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return ErrValidationFailed.Error() + ": " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
