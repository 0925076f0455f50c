package opencl

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const saxpySource = `
kernel void saxpy_float (global float* z,
    global float const* x,
    global float const* y,
    float a)
{
    size_t i = get_global_id(0);
    z[i] = a*x[i] + y[i];
}

kernel void add_int (global int* z,
    global int const* x,
    int y)
{
    size_t i = get_global_id(0);
    z[i] = x[i] + y;
}`

func TestContext(t *testing.T) {
	device := getTestDevice(t)
	ctx := capture(NewContextFromDevice(device)).Test(t)
	require.False(t, ctx.IsReleased())
	assert.Len(t, ctx.Devices(), 1)
	assert.Equal(t, device.Handle(), ctx.Devices()[0].Handle())
	assert.Equal(t, uint32(1), capture(ctx.NumDevices()).Test(t))
	assert.GreaterOrEqual(t, capture(ctx.ReferenceCount()).Test(t), uint32(1))
	assert.Same(t, ctx.Runtime(), device.rt)

	// One queue per device, in order.
	assert.Nil(t, ctx.DefaultQueue())
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)
	assert.Same(t, queue, ctx.DefaultQueue())
	assert.Equal(t, device.Handle(), queue.Device().Handle())
	assert.Equal(t, ctx.Handle(), capture(queue.Context()).Test(t))
	_, err := ctx.CreateCommandQueue(0)
	require.Error(t, err, "the context has a single device")
	assert.Len(t, ctx.Queues(), 1)

	require.NoError(t, ctx.Release())
	assert.True(t, ctx.IsReleased())
	assert.True(t, queue.IsReleased())
	require.NoError(t, ctx.Release(), "Release must be idempotent")
	_, err = ctx.CreateCommandQueue(0)
	require.Error(t, err)
	_, err = ctx.BuildProgramFromSource(saxpySource, "")
	require.Error(t, err)

	var nilCtx *Context
	require.NoError(t, nilCtx.Release())
}

func TestNewContextErrors(t *testing.T) {
	_, err := NewContext(nil)
	require.Error(t, err)
	device := getTestDevice(t)
	_, err = NewContext([]*Device{device}, ContextPlatform)
	require.Error(t, err, "properties must come in pairs")
}

func TestContextPrograms(t *testing.T) {
	ctx := getTestContext(t)
	program := capture(ctx.BuildProgramFromSource(saxpySource, "")).Test(t)
	assert.Equal(t, []string{"add_int", "saxpy_float"}, ctx.KernelNames())
	saxpy := ctx.Kernel("saxpy_float")
	require.NotNil(t, saxpy)
	assert.Equal(t, "saxpy_float", saxpy.Name())
	assert.Equal(t, uint32(4), saxpy.NumArgs())
	assert.Nil(t, ctx.Kernel("no_such_kernel"))

	// Building again hits the cache, and registers fresh kernels, releasing the previous ones.
	program2 := capture(ctx.BuildProgramFromSource(saxpySource, "")).Test(t)
	assert.Same(t, program, program2)
	saxpy2 := ctx.Kernel("saxpy_float")
	assert.NotSame(t, saxpy, saxpy2)
	assert.True(t, saxpy.IsReleased())

	// Different options, different program.
	program3 := capture(ctx.BuildProgramFromSource(saxpySource, FastRelaxedMath)).Test(t)
	assert.NotSame(t, program, program3)

	// Build errors carry the build log.
	_, err := ctx.BuildProgramFromSource("kernel void broken(global int* x) { x[0] = undefined_var; }", "")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrBuildProgramFailure))
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Len(t, buildErr.Logs, 1)

	require.NoError(t, ctx.Release())
	assert.True(t, saxpy2.IsReleased())
	assert.True(t, program.IsReleased())
	assert.True(t, program3.IsReleased())
}

func TestContextConcurrentBuilds(t *testing.T) {
	ctx := getTestContext(t)
	const numBuilders = 8
	programs := make([]*Program, numBuilders)
	errs := make([]error, numBuilders)
	var wg sync.WaitGroup
	for ii := range numBuilders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			programs[ii], errs[ii] = ctx.BuildProgramFromSource(saxpySource, "-DCONCURRENT_BUILD=1")
		}()
	}
	wg.Wait()
	for ii := range numBuilders {
		require.NoError(t, errs[ii])
		assert.Same(t, programs[0], programs[ii], "all builders must get the cached program")
	}
	assert.False(t, programs[0].IsReleased())
	assert.Equal(t, 1, ctx.programCache.Len())
	saxpy := ctx.Kernel("saxpy_float")
	require.NotNil(t, saxpy)
	assert.False(t, saxpy.IsReleased())
}

func TestContextOwnedObjects(t *testing.T) {
	ctx := getTestContext(t)
	buffer := capture(CreateOwnedBuffer[float32](ctx, MemReadWrite, 16, nil)).Test(t)
	var sampler *Sampler
	if capture(ctx.Devices()[0].ImageSupport()).Test(t) {
		sampler = capture(ctx.CreateSampler(false, AddressClampToEdge, FilterNearest)).Test(t)
	}
	require.NoError(t, ctx.Release())
	assert.True(t, buffer.IsReleased())
	if sampler != nil {
		assert.True(t, sampler.IsReleased())
	}
	_, err := CreateOwnedBuffer[float32](ctx, MemReadWrite, 16, nil)
	require.Error(t, err)
}

func TestContextSubDevices(t *testing.T) {
	ctx := getTestContext(t)
	device := ctx.Devices()[0]
	maxSubDevices := capture(device.PartitionMaxSubDevices()).Test(t)
	computeUnits := capture(device.MaxComputeUnits()).Test(t)
	if maxSubDevices < 2 || computeUnits < 2 {
		t.Skipf("Device %s can't be partitioned", device)
	}
	n, err := ctx.CreateSubDevices(0, PartitionEqually(int(computeUnits/2)))
	if IsCode(err, ErrInvalidValue) || IsCode(err, ErrDevicePartitionFailed) {
		t.Skipf("Device %s doesn't support partitioning equally: %v", device, err)
	}
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 2)
	assert.Len(t, ctx.SubDevices(), n)
	queue := capture(ctx.CreateSubDeviceCommandQueue(0)).Test(t)
	assert.Equal(t, ctx.SubDevices()[0].Handle(), queue.Device().Handle())
	assert.Len(t, ctx.SubQueues(), 1)

	_, err = ctx.CreateSubDevices(5, PartitionEqually(1))
	require.Error(t, err, "device index out of range")
}
