package errors

import (
	"fmt"
	"math"
)

// NoIteration is the iteration index reported for errors raised before any iteration runs.
const NoIteration = -1

// MaybePanic panics if the argument is not nil. It is useful for wrapping error-only return
// functions known to only return nil values.
func MaybePanic(err error) {
	if err != nil {
		panic(err)
	}
}

// DomainError indicates a value outside the mathematical domain of a model, distribution, or
// target density.
type DomainError struct {
	// Param names the offending parameter.
	Param string

	// Value is the offending value.
	Value float64

	// Iteration is the (0-based) iteration or sweep index at which the error occurred, or
	// NoIteration if it occurred during construction.
	Iteration int

	// Reason describes the violated constraint.
	Reason string
}

// NewDomainError returns a new *DomainError raised outside of any iteration.
func NewDomainError(param string, value float64, reason string) *DomainError {
	return &DomainError{
		Param:     param,
		Value:     value,
		Iteration: NoIteration,
		Reason:    reason,
	}
}

// AtIteration returns a copy of the error attributed to the given iteration.
func (e *DomainError) AtIteration(i int) *DomainError {
	cp := *e
	cp.Iteration = i
	return &cp
}

func (e *DomainError) Error() string {
	if e.Iteration == NoIteration {
		return fmt.Sprintf("domain error: %s = %v %s", e.Param, e.Value, e.Reason)
	}
	return fmt.Sprintf("domain error at iteration %d: %s = %v %s", e.Iteration, e.Param,
		e.Value, e.Reason)
}

// ConfigurationError indicates an invalid sampler run configuration, such as a non-positive
// iteration count or proposal scale.
type ConfigurationError struct {
	Param  string
	Value  float64
	Reason string
}

// NewConfigurationError returns a new *ConfigurationError.
func NewConfigurationError(param string, value float64, reason string) *ConfigurationError {
	return &ConfigurationError{Param: param, Value: value, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s = %v %s", e.Param, e.Value, e.Reason)
}

// CheckPositive returns a *DomainError if value is not a finite, strictly positive number.
func CheckPositive(param string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewDomainError(param, value, "must be finite")
	}
	if value <= 0 {
		return NewDomainError(param, value, "must be > 0")
	}
	return nil
}

// CheckNonNegative returns a *DomainError if value is not a finite, non-negative number.
func CheckNonNegative(param string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewDomainError(param, value, "must be finite")
	}
	if value < 0 {
		return NewDomainError(param, value, "must be >= 0")
	}
	return nil
}

// CheckFinite returns a *DomainError if value is NaN or infinite.
func CheckFinite(param string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewDomainError(param, value, "must be finite")
	}
	return nil
}
