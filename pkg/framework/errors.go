package framework

import (
	"errors"
	"fmt"
	"strings"
)

// ErrQueueFull is returned by Spawn when the task queue has no room.
var ErrQueueFull = errors.New("queue full")

// AggregatedError aggregates multiple errors.
type AggregatedError struct {
	Errors []error
}

// Error implements error
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	msg := make([]string, len(e.Errors)+1)
	msg[0] = "Multiple errors:"
	for n, err := range e.Errors {
		msg[n+1] = err.Error()
	}
	return strings.Join(msg, "\n")
}

// Add adds errors to be aggregated. nil will be skipped.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns aggregated error if any error happened.
func (e *AggregatedError) Aggregate() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	}
	return e
}

// InvariantViolation is the panic value raised when task wiring breaks a
// static rule. It is never returned as an error.
type InvariantViolation struct {
	Message string
}

// Error implements error.
func (v *InvariantViolation) Error() string {
	return "invariant violation: " + v.Message
}

// Violate panics with an InvariantViolation.
func Violate(format string, args ...interface{}) {
	panic(&InvariantViolation{Message: fmt.Sprintf(format, args...)})
}
