package wizard

import "errors"

var (
	// ErrNoCapabilities is returned when an artifact is requested with no capability selected.
	ErrNoCapabilities = errors.New("no capabilities selected")
	// ErrOutstandingErrors is returned when tracked fields are still invalid.
	ErrOutstandingErrors = errors.New("form has invalid fields")
	// ErrEmailRequired is returned when submitting without a contact address.
	ErrEmailRequired = errors.New("submitter email required")
	// ErrInvalidFile is returned when a logo selection violates the naming rules.
	ErrInvalidFile = errors.New("invalid logo file")
	// ErrUnknownField is returned for edits to fields the form does not own.
	ErrUnknownField = errors.New("unknown field")
)

// ValidationError is a local, recoverable failure tied to a form field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }
