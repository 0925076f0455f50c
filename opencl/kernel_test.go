package opencl

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

// getSaxpyContext returns a test context with saxpySource built, with kernel argument info.
func getSaxpyContext(t *testing.T) *Context {
	ctx := getTestContext(t)
	_ = capture(ctx.BuildProgramFromSource(saxpySource, KernelArgInfo)).Test(t)
	return ctx
}

func TestExecuteKernelValidation(t *testing.T) {
	ctx := getSaxpyContext(t)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)
	kernel := ctx.Kernel("add_int")
	require.NotNil(t, kernel)
	z := capture(CreateBuffer[int32](ctx, MemWriteOnly, 16, nil)).Test(t)
	defer func() { require.NoError(t, z.Release()) }()
	x := capture(CreateBuffer(ctx, MemReadOnly|MemCopyHostPtr, 16, make([]int32, 16))).Test(t)
	defer func() { require.NoError(t, x.Release()) }()

	_, err := NewExecuteKernel(kernel).Arg(z).Arg(x).GlobalWorkSize(16).EnqueueNDRange(queue)
	require.ErrorContains(t, err, "too few args")

	_, err = NewExecuteKernel(kernel).Arg(z).Arg(x).Arg(int32(1)).Arg(int32(2)).GlobalWorkSize(16).
		EnqueueNDRange(queue)
	require.ErrorContains(t, err, "too many args")

	_, err = NewExecuteKernel(kernel).Arg(z).Arg(x).Arg(int32(1)).EnqueueNDRange(queue)
	require.ErrorContains(t, err, "no global work sizes")

	_, err = NewExecuteKernel(kernel).Arg(z).Arg(x).Arg(int32(1)).GlobalWorkSizes(1, 1, 1, 16).
		EnqueueNDRange(queue)
	require.ErrorContains(t, err, "at most 3 dimensions")

	_, err = NewExecuteKernel(kernel).Arg(z).Arg(x).Arg(int32(1)).GlobalWorkSizes(4, 4).LocalWorkSize(4).
		EnqueueNDRange(queue)
	require.ErrorContains(t, err, "local work sizes")

	_, err = NewExecuteKernel(kernel).Arg(z).Arg(x).Arg(int32(1)).GlobalWorkSize(16).GlobalWorkOffsets(0, 0).
		EnqueueNDRange(queue)
	require.ErrorContains(t, err, "global work offsets")

	_, err = NewExecuteKernel(kernel).Arg(z).Arg(x).Arg(int32(1)).GlobalWorkSize(16).GlobalWorkSizes(16).
		EnqueueNDRange(queue)
	require.ErrorContains(t, err, "already set")

	// Go int doesn't have a fixed size.
	_, err = NewExecuteKernel(kernel).Arg(z).Arg(x).Arg(1).GlobalWorkSize(16).EnqueueNDRange(queue)
	require.Error(t, err)

	_, err = NewExecuteKernel(nil).GlobalWorkSize(16).EnqueueNDRange(queue)
	require.Error(t, err)

	// Offsets and 2D work sizes.
	event := capture(NewExecuteKernel(kernel).Arg(z).Arg(x).Arg(int32(5)).
		GlobalWorkOffset(8).GlobalWorkSize(8).
		EnqueueNDRange(queue)).Test(t)
	require.NoError(t, event.WaitAndRelease())
	got := make([]int32, 16)
	require.NoError(t, capture(EnqueueReadBuffer(queue, z, Blocking, 0, got)).Test(t).Release())
	for ii := 8; ii < 16; ii++ {
		assert.Equalf(t, int32(5), got[ii], "got[%d]", ii)
	}
}

func TestKernelSetArg(t *testing.T) {
	ctx := getSaxpyContext(t)
	kernel := ctx.Kernel("saxpy_float")
	require.NotNil(t, kernel)

	require.NoError(t, kernel.SetArg(3, float32(2)))
	require.NoError(t, SetArgScalar(kernel, 3, float32(3)))
	require.Error(t, kernel.SetArg(3, 2), "Go int is rejected")
	require.Error(t, kernel.SetArg(3, uint(2)), "Go uint is rejected")
	require.Error(t, kernel.SetArg(3, "a string"))
	require.Error(t, kernel.SetArg(3, nil))
	require.Error(t, kernel.SetArg(4, float32(1)), "index out of range")
	var nilBuffer *Buffer[float32]
	require.Error(t, kernel.SetArg(0, nilBuffer))
	// Wrong size for a float.
	require.Error(t, kernel.SetArg(3, float64(1)))
	require.Error(t, kernel.SetArg(3, float16.Fromfloat32(1)))
	require.Error(t, kernel.SetArg(3, []byte{}))
	require.NoError(t, kernel.SetArg(3, []byte{0, 0, 0x80, 0x3f}))
	require.NoError(t, kernel.SetArg(3, [1]float32{1}))
}

// clUint is a named type over a sized integer, as user code may define for kernel arguments.
type clUint uint32

// scalarArgSize returns the number of bytes SetArgScalar passes for T.
func scalarArgSize[T KernelScalar]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func TestKernelScalarSizes(t *testing.T) {
	// Every KernelScalar has a fixed size, independent of the platform.
	assert.Equal(t, 1, scalarArgSize[int8]())
	assert.Equal(t, 1, scalarArgSize[uint8]())
	assert.Equal(t, 2, scalarArgSize[int16]())
	assert.Equal(t, 2, scalarArgSize[float16.Float16]())
	assert.Equal(t, 4, scalarArgSize[int32]())
	assert.Equal(t, 4, scalarArgSize[clUint]())
	assert.Equal(t, 4, scalarArgSize[float32]())
	assert.Equal(t, 8, scalarArgSize[uint64]())
	assert.Equal(t, 8, scalarArgSize[float64]())
}

func TestKernelInfo(t *testing.T) {
	ctx := getSaxpyContext(t)
	kernel := ctx.Kernel("saxpy_float")
	require.NotNil(t, kernel)
	device := ctx.Devices()[0]

	assert.Equal(t, "saxpy_float", capture(kernel.FunctionName()).Test(t))
	assert.Equal(t, ctx.Handle(), capture(kernel.Context()).Test(t))
	assert.GreaterOrEqual(t, capture(kernel.ReferenceCount()).Test(t), uint32(1))
	assert.Greater(t, capture(kernel.WorkGroupSize(device)).Test(t), 0)
	assert.Greater(t, capture(kernel.PreferredWorkGroupSizeMultiple(device)).Test(t), 0)
	_ = capture(kernel.CompileWorkGroupSize(device)).Test(t)
	_ = capture(kernel.LocalMemSize(device)).Test(t)
	_ = capture(kernel.PrivateMemSize(device)).Test(t)

	// Argument info is available since the program was built with KernelArgInfo.
	name, err := kernel.ArgName(3)
	if IsCode(err, ErrKernelArgInfoNotAvailable) {
		t.Skip("kernel argument info not available")
	}
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	assert.Equal(t, "float*", capture(kernel.ArgTypeName(0)).Test(t))
	assert.Equal(t, KernelArgAddressGlobal, capture(kernel.ArgAddressQualifier(1)).Test(t))
	assert.Equal(t, KernelArgAccessNone, capture(kernel.ArgAccessQualifier(1)).Test(t))
	assert.True(t, capture(kernel.ArgTypeQualifier(1)).Test(t)&KernelArgTypeConst != 0)
}

func TestKernelClone(t *testing.T) {
	ctx := getSaxpyContext(t)
	requireVersion(t, ctx.Devices()[0], "2.1")
	kernel := ctx.Kernel("add_int")
	clone, err := kernel.Clone()
	if IsCode(err, ErrFunctionNotAvailable) {
		t.Skip("clCloneKernel not available")
	}
	require.NoError(t, err)
	assert.Equal(t, kernel.Name(), clone.Name())
	assert.Equal(t, kernel.NumArgs(), clone.NumArgs())
	assert.NotEqual(t, kernel.Handle(), clone.Handle())
	require.NoError(t, clone.Release())
	require.NoError(t, clone.Release())
	assert.True(t, clone.IsReleased())
	_, err = NewExecuteKernel(clone).GlobalWorkSize(1).EnqueueNDRange(nil)
	require.Error(t, err)
}

func TestCreateKernel(t *testing.T) {
	ctx := getTestContext(t)
	program := capture(CreateAndBuildProgramFromSource(ctx, saxpySource, "")).Test(t)
	defer func() { require.NoError(t, program.Release()) }()
	kernel := capture(CreateKernel(program, "add_int")).Test(t)
	assert.Equal(t, uint32(3), kernel.NumArgs())
	require.NoError(t, kernel.Release())
	_, err := CreateKernel(program, "no_such_kernel")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrInvalidKernelName))
}
