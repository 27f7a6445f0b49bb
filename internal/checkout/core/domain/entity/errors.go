package entity

import "fmt"

// ValidationError reports malformed or missing user input. User-fixable;
// maps to HTTP 400 at the boundary.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity (product, order) that does not
// exist. Maps to HTTP 404.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// StockError reports a line whose requested quantity exceeds the units
// currently available. The message names the product and the remaining stock.
type StockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, %d units available",
		name, e.Requested, e.Available)
}

// TransientError wraps a retryable infrastructure fault that survived retry
// exhaustion. Maps to HTTP 503.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient store error: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// InvariantError reports persisted state that should be impossible, such as
// a committed order with no shipping row. It indicates a bug, not bad input,
// and is logged at the highest severity.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Reason
}
