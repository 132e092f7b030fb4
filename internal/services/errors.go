package services

import "errors"

// ErrNotFound is returned when an operation targets a record that does not
// exist (or is not visible to the caller).
var ErrNotFound = errors.New("record not found")

// ValidationError marks caller mistakes: missing or malformed required
// fields. Handlers surface these as 400 responses and never retry them.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
