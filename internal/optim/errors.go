package optim

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error classes. Every error returned by this package matches exactly one of
// them under errors.Is.
var (
	ErrConfig  = errors.New("invalid optimizer configuration")
	ErrUsage   = errors.New("optimizer usage error")
	ErrNumeric = errors.New("non-finite value")
)

// ConfigError reports an invalid hyperparameter detected at construction.
type ConfigError struct {
	Field   string // Hyperparameter name (e.g., "beta_1")
	Details string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfig, e.Field, e.Details)
}

// Unwrap returns ErrConfig.
func (e *ConfigError) Unwrap() error { return ErrConfig }

// UsageError reports a host-side bug: applying to an unregistered parameter,
// or a gradient/accumulator that does not match its parameter.
type UsageError struct {
	Op      string // Operation (e.g., "apply", "create_slots")
	Param   string // Parameter name, if any
	Details string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s: parameter %q: %s", ErrUsage, e.Op, e.Param, e.Details)
	}
	return fmt.Sprintf("%s: %s: %s", ErrUsage, e.Op, e.Details)
}

// Unwrap returns ErrUsage.
func (e *UsageError) Unwrap() error { return ErrUsage }

// NumericError reports a NaN or Inf in a gradient, learning rate or result.
// When Apply returns a NumericError nothing has been committed.
type NumericError struct {
	Op      string
	Param   string
	Index   int // Flat element index of the first offending value, -1 for scalars.
	Details string
}

// Error implements the error interface.
func (e *NumericError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s: parameter %q: %s at element %d", ErrNumeric, e.Op, e.Param, e.Details, e.Index)
	}
	return fmt.Sprintf("%s: %s: parameter %q: %s", ErrNumeric, e.Op, e.Param, e.Details)
}

// Unwrap returns ErrNumeric.
func (e *NumericError) Unwrap() error { return ErrNumeric }

func configErrorf(field, format string, args ...any) error {
	return errors.WithStack(&ConfigError{Field: field, Details: fmt.Sprintf(format, args...)})
}

func usageErrorf(op, param, format string, args ...any) error {
	return errors.WithStack(&UsageError{Op: op, Param: param, Details: fmt.Sprintf(format, args...)})
}

func numericErrorf(op, param string, index int, format string, args ...any) error {
	return errors.WithStack(&NumericError{Op: op, Param: param, Index: index, Details: fmt.Sprintf(format, args...)})
}
