// Package mlerr defines the error taxonomy shared by the modeling pipeline.
// All pipeline errors are one of three kinds: malformed input, an operation
// invoked out of order, or well-formed input that is simply too short.
package mlerr

import "fmt"

// ValidationError reports malformed input: unequal array lengths, ragged
// matrices, non-finite values, empty datasets, out-of-range parameters.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StateError reports an operation invoked before its prerequisite, such as
// transforming with an unfitted scaler or predicting with an unfitted model.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

func Statef(format string, args ...any) error {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientDataError reports input that is valid but too short for the
// requested horizon or minimum dataset size.
type InsufficientDataError struct {
	Msg string
}

func (e *InsufficientDataError) Error() string { return e.Msg }

func InsufficientDataf(format string, args ...any) error {
	return &InsufficientDataError{Msg: fmt.Sprintf(format, args...)}
}
