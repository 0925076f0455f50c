package opencl

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "CL_INVALID_VALUE", ErrInvalidValue.String())
	assert.Equal(t, "OpenCL error CL_INVALID_VALUE (-30)", ErrInvalidValue.Error())
	assert.Equal(t, "CL_DEVICE_NOT_FOUND", ErrDeviceNotFound.String())
	assert.Equal(t, "FUNCTION_NOT_AVAILABLE", ErrFunctionNotAvailable.String())
	assert.Equal(t, "CL_UNKNOWN_ERROR_-12345", ErrorCode(-12345).String())
}

func TestCodeOf(t *testing.T) {
	err := errors.WithMessage(errors.WithStack(ErrInvalidValue), "failed to do something")
	code, found := CodeOf(err)
	require.True(t, found)
	assert.Equal(t, ErrInvalidValue, code)
	assert.True(t, IsCode(err, ErrInvalidValue))
	assert.False(t, IsCode(err, ErrDeviceNotFound))
	assert.True(t, errors.Is(err, ErrInvalidValue))

	_, found = CodeOf(errors.New("not an OpenCL error"))
	assert.False(t, found)
	_, found = CodeOf(nil)
	assert.False(t, found)
}

func TestBuildError(t *testing.T) {
	buildErr := &BuildError{
		Code: ErrBuildProgramFailure,
		Logs: map[string]string{
			"gpu1": "<source>:3:5: error: use of undeclared identifier 'x'\n",
			"cpu0": "error: expected ';'",
		},
	}
	err := errors.WithStack(buildErr)
	assert.True(t, IsCode(err, ErrBuildProgramFailure))

	var target *BuildError
	require.True(t, errors.As(err, &target))
	assert.Len(t, target.Logs, 2)

	msg := buildErr.Error()
	assert.Contains(t, msg, "CL_BUILD_PROGRAM_FAILURE")
	assert.Contains(t, msg, "undeclared identifier 'x'")
	// Logs are sorted by device name.
	assert.Less(t, strings.Index(msg, `"cpu0"`), strings.Index(msg, `"gpu1"`))
}
