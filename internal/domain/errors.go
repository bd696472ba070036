package domain

import (
	"errors"
	"fmt"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError is a feed connection failure. Retriable ones are retried with
// backoff; fatal ones stop the subscriber.
type NetworkError struct {
	Op        string // "connect", "subscribe", ...
	Err       error
	Retriable bool
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// PreconditionError is raised when a classified case holds but the working set
// derived from it is empty. It points at a malformed snapshot and is never
// retriable.
type PreconditionError struct {
	Case   ClearingCase
	Reason string
}

func (e *PreconditionError) Error() string {
	return "clearing precondition violated [" + e.Case.String() + "]: " + e.Reason
}

func (e *PreconditionError) IsRetriable() bool {
	return false
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionViolated
}

// OrderError pins an invalid order to its position in the snapshot.
type OrderError struct {
	Index int
	Err   error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order #%d: %v", e.Index, e.Err)
}

func (e *OrderError) IsRetriable() bool {
	return false
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrInvalidOrder is returned when an order has an undefined side or a non-positive price.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrPreconditionViolated is wrapped by every PreconditionError.
	ErrPreconditionViolated = errors.New("clearing precondition violated")

	// ErrPeriodNotFound is returned when a trading period does not exist.
	ErrPeriodNotFound = errors.New("trading period not found")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
