package logging

import (
	"sort"

	"github.com/APanico12/MCMC/mcmc/common/errors"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDevLogger creates a new logger with a given log level for use in development (i.e., not
// production).
func NewDevLogger(logLevel zapcore.Level) *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.DisableCaller = true
	config.Level.SetLevel(logLevel)

	logger, err := config.Build()
	errors.MaybePanic(err)
	return logger
}

// NewDevInfoLogger creates a new development logger at the INFO level.
func NewDevInfoLogger() *zap.Logger {
	return NewDevLogger(zap.InfoLevel)
}

// NewProdLogger creates a new logger with a given log level for use in production.
func NewProdLogger(logLevel zapcore.Level) *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level.SetLevel(logLevel)

	logger, err := config.Build()
	errors.MaybePanic(err)
	return logger
}

// OrNop returns the given logger, or a no-op logger if it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ErrArray is an array of named errors, e.g., the failure of a run and of the cleanup after it.
type ErrArray []error

// ToErrArray converts a map of named errors to an array ordered by name, prefixing each error
// with its name and skipping nil errors.
func ToErrArray(errMap map[string]error) ErrArray {
	names := make([]string, 0, len(errMap))
	for name, err := range errMap {
		if err != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	errs := make(ErrArray, len(names))
	for i, name := range names {
		errs[i] = pkgerrors.Wrap(errMap[name], name)
	}
	return errs
}

// MarshalLogArray marshals the array of errors.
func (errs ErrArray) MarshalLogArray(arr zapcore.ArrayEncoder) error {
	for _, err := range errs {
		arr.AppendString(err.Error())
	}
	return nil
}

// Float64s is an array of float64 values, e.g., a vector of group means.
type Float64s []float64

// MarshalLogArray marshals the array of values.
func (fs Float64s) MarshalLogArray(arr zapcore.ArrayEncoder) error {
	for _, f := range fs {
		arr.AppendFloat64(f)
	}
	return nil
}
