package models

// FieldError reports a missing or malformed request field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	if e.Reason != "" {
		return e.Field + " " + e.Reason
	}
	return e.Field + " is required"
}

// ErrMissingField builds a FieldError for a required field.
func ErrMissingField(field string) error {
	return FieldError{Field: field}
}

// ErrInvalidField builds a FieldError for a field that is present but
// carries an unacceptable value.
func ErrInvalidField(field string) error {
	return FieldError{Field: field, Reason: "is invalid"}
}
