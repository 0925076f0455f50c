package opencl

// Common initialization and testing tools for all test files.

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

var flagDeviceType = flag.String("device", "all", "type of OpenCL device to test on: all, cpu, gpu or accelerator")

func init() {
	klog.InitFlags(nil)
}

type errTester[T any] struct {
	value T
	err   error
}

// capture is a shortcut to test that there is no error and return the value.
func capture[T any](value T, err error) errTester[T] {
	return errTester[T]{value, err}
}

func (e errTester[T]) Test(t *testing.T) T {
	require.NoError(t, e.err)
	return e.value
}

func testDeviceType() DeviceType {
	switch *flagDeviceType {
	case "cpu":
		return DeviceTypeCPU
	case "gpu":
		return DeviceTypeGPU
	case "accelerator":
		return DeviceTypeAccelerator
	default:
		return DeviceTypeAll
	}
}

// getTestDevice returns the first device of the type selected by -device.
// It skips the test if OpenCL or the device is not available.
func getTestDevice(t testing.TB) *Device {
	if _, err := Load(); err != nil {
		t.Skipf("OpenCL not available: %v", err)
	}
	device, err := DefaultDevice(testDeviceType())
	if IsCode(err, ErrDeviceNotFound) {
		t.Skipf("No OpenCL device of type %s available", testDeviceType())
	}
	require.NoError(t, err)
	return device
}

// getTestContext creates a context with the test device, released at the end of the test.
// It skips the test if OpenCL is not available.
func getTestContext(t testing.TB) *Context {
	device := getTestDevice(t)
	ctx, err := NewContextFromDevice(device)
	require.NoErrorf(t, err, "Failed to create context for %s", device)
	t.Cleanup(func() { require.NoError(t, ctx.Release()) })
	return ctx
}

// requireVersion skips the test if the device platform doesn't implement at least the given OpenCL version.
func requireVersion(t testing.TB, device *Device, version string) {
	platform, err := device.Platform()
	require.NoError(t, err)
	ok, err := platform.AtLeast(version)
	require.NoError(t, err)
	if !ok {
		t.Skipf("Platform %s doesn't support OpenCL %s", platform, version)
	}
}
