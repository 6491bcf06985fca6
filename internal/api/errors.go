package api

import "errors"

// Common backend errors.
var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSessionExpired is returned for any 401 response. It is never
	// handled at the call site that triggered it: the application shell
	// reacts uniformly by clearing the session and routing to login.
	ErrSessionExpired = errors.New("session expired, log in again")
)

// FieldError is one entry of a structured validation failure, as sent
// by the backend: a field path plus a human-readable message.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"msg"`
}

// FormError is a 400-class validation failure. Fields may be empty,
// in which case only the whole-form message applies.
type FormError struct {
	Message string       `json:"message"`
	Fields  []FieldError `json:"errors"`
}

func (e *FormError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// AsFormError unwraps err into a FormError, if it is one.
func AsFormError(err error) (*FormError, bool) {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
