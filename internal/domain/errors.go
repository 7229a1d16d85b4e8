package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique key collision.
	ErrAlreadyExists = errors.New("already exists")
)

// FieldError describes one invalid form field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// ValidationError lists every invalid field of a submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field+":"+f.Code)
	}
	return "invalid fields: " + strings.Join(names, ", ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// SelectionError is returned when the payment method choice is missing or not allowed.
type SelectionError struct {
	MethodID PaymentMethodID
	Reason   string
}

func (e *SelectionError) Error() string {
	if e.MethodID == "" {
		return "payment method: " + e.Reason
	}
	return fmt.Sprintf("payment method %q: %s", e.MethodID, e.Reason)
}

// ProcessorError reports a declined or failed external payment hand-off.
type ProcessorError struct {
	MethodID PaymentMethodID
	Err      error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor %s: %v", e.MethodID, e.Err)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// OrderPersistenceError wraps a failure of the order placement callback.
type OrderPersistenceError struct {
	OrderID string
	Err     error
}

func (e *OrderPersistenceError) Error() string {
	return fmt.Sprintf("place order %s: %v", e.OrderID, e.Err)
}

func (e *OrderPersistenceError) Unwrap() error {
	return e.Err
}
