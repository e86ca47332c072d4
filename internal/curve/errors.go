package curve

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownModel indicates a model name that is not in the registry.
	ErrUnknownModel = errors.New("curve: unknown model")
	// ErrInvalidModel indicates an empty or malformed term mask.
	ErrInvalidModel = errors.New("curve: invalid model")
	// ErrFit indicates malformed input or a solver failure.
	ErrFit = errors.New("curve: fit failed")
)

type UnknownModelError struct {
	Name string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("%s %q", ErrUnknownModel.Error(), e.Name)
}

func (e *UnknownModelError) Unwrap() error { return ErrUnknownModel }

type InvalidModelError struct {
	Msg string
}

func (e *InvalidModelError) Error() string {
	if e.Msg == "" {
		return ErrInvalidModel.Error()
	}
	return ErrInvalidModel.Error() + ": " + e.Msg
}

func (e *InvalidModelError) Unwrap() error { return ErrInvalidModel }

// FitError carries the diagnostic of a rejected input or a failed solve.
type FitError struct {
	Msg string
	Err error
}

func (e *FitError) Error() string {
	s := ErrFit.Error() + ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes both ErrFit and the underlying cause.
func (e *FitError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFit}
	}
	return []error{ErrFit, e.Err}
}

func fitErrorf(format string, args ...any) error {
	return &FitError{Msg: fmt.Sprintf(format, args...)}
}
