package domain

import "errors"

// FailureClass separates retryable failures from terminal ones.
type FailureClass string

const (
	FailureTransient FailureClass = "transient"
	FailurePermanent FailureClass = "permanent"
)

// ClassifiedError wraps an error with its retry classification.
type ClassifiedError struct {
	Class FailureClass
	Err   error
}

func (e *ClassifiedError) Error() string {
	return string(e.Class) + ": " + e.Err.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Transient marks err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Class: FailureTransient, Err: err}
}

// Permanent marks err as not retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Class: FailurePermanent, Err: err}
}

// ClassOf extracts the failure class of err. Unclassified errors are
// treated as transient so that unknown transport faults get retried.
func ClassOf(err error) FailureClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	return FailureTransient
}

// SourceFailure records one source's fetch failure. Non-fatal to the
// batch; surfaced for observability only.
type SourceFailure struct {
	SourceID string
	Err      error
}
