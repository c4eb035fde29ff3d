// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is / errors.As to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Input errors. Usually carried inside a *FieldError.
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("already exists")

	// Login failure. Deliberately the same for unknown accounts and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Authentication gate errors.
	ErrMissingCredentials   = errors.New("missing authorization header")
	ErrMalformedCredentials = errors.New("malformed authorization header")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

// FieldError is an expected input failure tied to a single request field.
// Kind is one of ErrValidation or ErrConflict.
type FieldError struct {
	Kind    error
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// NewValidationError reports bad or missing input for field.
func NewValidationError(field, message string) error {
	return &FieldError{Kind: ErrValidation, Field: field, Message: message}
}

// NewConflictError reports that the value of field is already taken.
func NewConflictError(field, message string) error {
	return &FieldError{Kind: ErrConflict, Field: field, Message: message}
}

// FieldOf returns the field named by err, if any.
func FieldOf(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}
