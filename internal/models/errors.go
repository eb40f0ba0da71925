package models

import "errors"

// Error kinds. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrServiceMisconfigured = errors.New("service misconfigured")
	ErrBackendUnavailable   = errors.New("backend unavailable")
	ErrGenerationFailed     = errors.New("generation failed")
	ErrSynthesisFailed      = errors.New("synthesis failed")
)

// Error carries a client-facing message together with its kind and cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// NewError creates an Error of the given kind. err may be nil.
func NewError(kind error, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// InvalidInput is shorthand for NewError(ErrInvalidInput, message, nil).
func InvalidInput(message string) *Error {
	return NewError(ErrInvalidInput, message, nil)
}
