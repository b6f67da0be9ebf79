package logging

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewDevLogger(t *testing.T) {
	l := NewDevLogger(zap.DebugLevel)
	assert.NotNil(t, l)
}

func TestNewDevInfoLogger(t *testing.T) {
	l := NewDevInfoLogger()
	assert.NotNil(t, l)
}

func TestNewProdLogger(t *testing.T) {
	l := NewProdLogger(zap.InfoLevel)
	assert.NotNil(t, l)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := NewDevInfoLogger()
	assert.Equal(t, l, OrNop(l))
}

func TestToErrArray(t *testing.T) {
	nErrs := 3
	errMap := map[string]error{"cleanup": nil}
	for i := nErrs - 1; i >= 0; i-- {
		errMap[fmt.Sprintf("step %d", i)] = fmt.Errorf("error %d", i)
	}
	errs := ToErrArray(errMap)
	assert.Equal(t, nErrs, len(errs))
	for i, err := range errs {
		assert.Equal(t, fmt.Sprintf("step %d: error %d", i, i), err.Error())
	}

	assert.Empty(t, ToErrArray(map[string]error{"run": nil, "close": nil}))
}

func TestErrArray_MarshalLogArray(t *testing.T) {
	errs := ErrArray{errors.New("error 1"), errors.New("error 2"), errors.New("error 3")}
	oe := zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()).(zapcore.ArrayEncoder)
	err := errs.MarshalLogArray(oe)
	assert.Nil(t, err)
}

func TestFloat64s_MarshalLogArray(t *testing.T) {
	fs := Float64s{1.5, -2, 0}
	oe := zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()).(zapcore.ArrayEncoder)
	err := fs.MarshalLogArray(oe)
	assert.Nil(t, err)
}
