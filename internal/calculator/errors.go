package calculator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField marks a required field that was left empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidField marks a field whose value could not be accepted.
	ErrInvalidField = errors.New("invalid field value")

	// ErrIndeterminate is returned when the inputs produce a repayment that
	// is not a finite amount.
	ErrIndeterminate = errors.New("repayment is not a finite amount")
)

// FieldError describes why one form field was rejected. Err is either
// ErrMissingField or ErrInvalidField.
type FieldError struct {
	Field   string
	Err     error
	Message string
}

// MissingFieldError returns the error reported for an empty required field.
func MissingFieldError(field string) *FieldError {
	return &FieldError{Field: field, Err: ErrMissingField, Message: "This field is required"}
}

// InvalidFieldError returns the error reported for an unacceptable value.
func InvalidFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Err: ErrInvalidField, Message: message}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every field error of one submission, in form
// order.
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes each field error to errors.Is and errors.As.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, fe := range v {
		errs = append(errs, fe)
	}
	return errs
}

// ByField maps field names to their messages.
func (v ValidationErrors) ByField() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		out[fe.Field] = fe.Message
	}
	return out
}

// Fields returns the names of the rejected fields.
func (v ValidationErrors) Fields() []string {
	names := make([]string, 0, len(v))
	for _, fe := range v {
		names = append(names, fe.Field)
	}
	return names
}
