package opencl

import (
	"fmt"
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaxpy(t *testing.T) {
	ctx := getTestContext(t)
	_ = capture(ctx.BuildProgramFromSource(saxpySource, "")).Test(t)
	kernel := ctx.Kernel("saxpy_float")
	require.NotNil(t, kernel)
	queue := capture(ctx.CreateCommandQueue(QueueProfilingEnable)).Test(t)

	const arraySize = 1000
	ones := make([]float32, arraySize)
	sums := make([]float32, arraySize)
	for ii := range arraySize {
		ones[ii] = 1
		sums[ii] = 1 + float32(ii)
	}
	x := capture(CreateBuffer[float32](ctx, MemReadOnly, arraySize, nil)).Test(t)
	defer func() { require.NoError(t, x.Release()) }()
	y := capture(CreateBuffer[float32](ctx, MemReadOnly, arraySize, nil)).Test(t)
	defer func() { require.NoError(t, y.Release()) }()
	z := capture(CreateBuffer[float32](ctx, MemWriteOnly, arraySize, nil)).Test(t)
	defer func() { require.NoError(t, z.Release()) }()

	// Blocking write of x, non-blocking write of y that the kernel waits for.
	xEvent := capture(EnqueueWriteBuffer(queue, x, Blocking, 0, ones)).Test(t)
	require.NoError(t, xEvent.Release())
	yEvent := capture(EnqueueWriteBuffer(queue, y, NonBlocking, 0, sums)).Test(t)
	defer func() { require.NoError(t, yEvent.Release()) }()

	const a = float32(300)
	kernelEvent := capture(NewExecuteKernel(kernel).
		Arg(z).Arg(x).Arg(y).Arg(a).
		GlobalWorkSize(arraySize).
		WaitEvent(yEvent).
		EnqueueNDRange(queue)).Test(t)
	defer func() { require.NoError(t, kernelEvent.Release()) }()

	results := make([]float32, arraySize)
	readEvent := capture(EnqueueReadBuffer(queue, z, NonBlocking, 0, results, kernelEvent)).Test(t)
	require.NoError(t, queue.Finish())
	require.NoError(t, readEvent.WaitAndRelease())

	assert.Equal(t, float32(1300), results[arraySize-1])
	for ii, result := range results {
		require.Equalf(t, a+sums[ii], result, "results[%d]", ii)
	}

	assert.Equal(t, CommandNDRangeKernel, capture(kernelEvent.CommandType()).Test(t))
	assert.Equal(t, ExecutionComplete, capture(kernelEvent.CommandExecutionStatus()).Test(t))
	start := capture(kernelEvent.ProfilingCommandStart()).Test(t)
	end := capture(kernelEvent.ProfilingCommandEnd()).Test(t)
	require.GreaterOrEqual(t, end, start)
	duration := capture(kernelEvent.Duration()).Test(t)
	fmt.Printf("kernel execution duration: %s\n", duration)
}

func TestBufferOperations(t *testing.T) {
	ctx := getTestContext(t)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)

	const n = 64
	host := make([]int32, n)
	for ii := range host {
		host[ii] = int32(ii)
	}
	src := capture(CreateBuffer(ctx, MemReadWrite|MemCopyHostPtr, n, host)).Test(t)
	defer func() { require.NoError(t, src.Release()) }()
	dst := capture(CreateBuffer[int32](ctx, MemReadWrite, n, nil)).Test(t)
	defer func() { require.NoError(t, dst.Release()) }()
	assert.Equal(t, n, src.Len())
	assert.Equal(t, n*4, src.SizeBytes())
	assert.Equal(t, n*4, capture(src.Size()).Test(t))
	assert.Equal(t, MemObjectBuffer, capture(src.MemType()).Test(t))
	assert.True(t, capture(src.Flags()).Test(t).Has(MemCopyHostPtr))
	assert.Equal(t, ctx.Handle(), capture(src.Context()).Test(t))
	assert.Nil(t, src.HostSlice())

	// Fill dst with -1, then copy the middle half of src into it.
	require.NoError(t, capture(EnqueueFillBuffer(queue, dst, int32(-1), 0, n)).Test(t).WaitAndRelease())
	require.NoError(t, capture(EnqueueCopyBuffer(queue, src, dst, n/4, n/4, n/2)).Test(t).WaitAndRelease())
	got := make([]int32, n)
	require.NoError(t, capture(EnqueueReadBuffer(queue, dst, Blocking, 0, got)).Test(t).Release())
	for ii, value := range got {
		if ii < n/4 || ii >= 3*n/4 {
			require.Equalf(t, int32(-1), value, "got[%d]", ii)
		} else {
			require.Equalf(t, int32(ii), value, "got[%d]", ii)
		}
	}

	// Partial read at an offset.
	part := make([]int32, 4)
	require.NoError(t, capture(EnqueueReadBuffer(queue, src, Blocking, 10, part)).Test(t).Release())
	assert.Equal(t, []int32{10, 11, 12, 13}, part)

	// Out of range.
	_, err := EnqueueReadBuffer(queue, src, Blocking, n-2, part)
	require.Error(t, err)
	_, err = EnqueueFillBuffer(queue, src, 0, -1, 2)
	require.Error(t, err)

	// Map, modify and unmap.
	mapped, mapEvent, err := EnqueueMapBuffer(queue, src, Blocking, MapRead|MapWrite, 0, n)
	require.NoError(t, err)
	require.NoError(t, mapEvent.Release())
	require.Len(t, mapped, n)
	assert.Equal(t, int32(7), mapped[7])
	mapped[7] = 700
	require.NoError(t, capture(EnqueueUnmapBuffer(queue, src, mapped)).Test(t).WaitAndRelease())
	require.NoError(t, capture(EnqueueReadBuffer(queue, src, Blocking, 7, part[:1])).Test(t).Release())
	assert.Equal(t, int32(700), part[0])
}

func TestBufferCreationErrors(t *testing.T) {
	ctx := getTestContext(t)
	_, err := CreateBuffer[float32](ctx, MemReadWrite, 0, nil)
	require.Error(t, err)
	_, err = CreateBuffer(ctx, MemReadWrite|MemCopyHostPtr, 10, make([]float32, 5))
	require.Error(t, err, "host data too short")
	_, err = CreateBuffer(ctx, MemReadWrite, 10, make([]float32, 10))
	require.Error(t, err, "host data without a host pointer flag")
	_, err = CreateBuffer[float32](ctx, MemReadWrite|MemCopyHostPtr, 10, nil)
	require.Error(t, err, "MemCopyHostPtr without host data")
}

func TestUseHostPtrBuffer(t *testing.T) {
	ctx := getTestContext(t)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)
	host := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	buffer := capture(CreateBuffer(ctx, MemReadWrite|MemUseHostPtr, len(host), host)).Test(t)
	defer func() { require.NoError(t, buffer.Release()) }()
	hostSlice := buffer.HostSlice()
	require.Len(t, hostSlice, len(host))
	assert.Equal(t, host, hostSlice)
	assert.NotSame(t, &host[0], &hostSlice[0], "host data must be copied to aligned memory")

	mapped, mapEvent, err := EnqueueMapBuffer(queue, buffer, Blocking, MapRead, 0, len(host))
	require.NoError(t, err)
	require.NoError(t, mapEvent.Release())
	assert.Equal(t, host, mapped)
	require.NoError(t, capture(EnqueueUnmapBuffer(queue, buffer, mapped)).Test(t).WaitAndRelease())
}

func TestBufferRect(t *testing.T) {
	ctx := getTestContext(t)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)

	// A 4x4 matrix of uint8, read the 2x2 block at row 1, column 2.
	matrix := make([]uint8, 16)
	for ii := range matrix {
		matrix[ii] = uint8(ii)
	}
	buffer := capture(CreateBuffer(ctx, MemReadOnly|MemCopyHostPtr, len(matrix), matrix)).Test(t)
	defer func() { require.NoError(t, buffer.Release()) }()
	block := make([]uint8, 4)
	rect := BufferRect{
		BufferOrigin:   [3]int{2, 1, 0},
		Region:         [3]int{2, 2, 1},
		BufferRowPitch: 4,
		HostRowPitch:   2,
	}
	require.NoError(t, capture(EnqueueReadBufferRect(queue, buffer, Blocking, rect, block)).Test(t).Release())
	assert.Equal(t, []uint8{6, 7, 10, 11}, block)
}

func TestSubBuffer(t *testing.T) {
	ctx := getTestContext(t)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)
	device := ctx.Devices()[0]
	alignBytes := int(capture(device.MemBaseAddrAlign()).Test(t)) / 8
	n := 4 * alignBytes
	host := make([]uint8, n)
	for ii := range host {
		host[ii] = uint8(ii % 256)
	}
	buffer := capture(CreateBuffer(ctx, MemReadWrite|MemCopyHostPtr, n, host)).Test(t)
	defer func() { require.NoError(t, buffer.Release()) }()
	sub := capture(buffer.CreateSubBuffer(MemReadOnly, alignBytes, 4)).Test(t)
	assert.Equal(t, 4, sub.Len())
	assert.Equal(t, alignBytes, capture(sub.Offset()).Test(t))
	assert.Equal(t, buffer.Handle(), capture(sub.AssociatedMemObject()).Test(t))
	got := make([]uint8, 4)
	require.NoError(t, capture(EnqueueReadBuffer(queue, sub, Blocking, 0, got)).Test(t).Release())
	assert.Equal(t, host[alignBytes:alignBytes+4], got)
	require.NoError(t, sub.Release())
	assert.True(t, sub.IsReleased())

	_, err := buffer.CreateSubBuffer(MemReadOnly, n-2, 4)
	require.Error(t, err)
}

func TestUseHostPtrSubBufferOutlivesParent(t *testing.T) {
	ctx := getTestContext(t)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)
	alignBytes := int(capture(ctx.Devices()[0].MemBaseAddrAlign()).Test(t)) / 8
	n := 2 * alignBytes
	host := make([]uint8, n)
	for ii := range host {
		host[ii] = uint8(ii % 251)
	}
	buffer := capture(CreateBuffer(ctx, MemReadWrite|MemUseHostPtr, n, host)).Test(t)
	sub := capture(buffer.CreateSubBuffer(MemReadWrite, alignBytes, alignBytes)).Test(t)
	assert.Same(t, buffer, sub.parent)
	assert.Equal(t, host[alignBytes:], sub.HostSlice())

	// The host memory is owned by OpenCL, and must stay valid while the sub-buffer is in use.
	require.NoError(t, buffer.Release())
	assert.Nil(t, buffer.HostSlice())
	runtime.GC()
	got := make([]uint8, alignBytes)
	require.NoError(t, capture(EnqueueReadBuffer(queue, sub, Blocking, 0, got)).Test(t).Release())
	assert.Equal(t, host[alignBytes:], got)
	require.NoError(t, capture(EnqueueFillBuffer(queue, sub, uint8(7), 0, alignBytes)).Test(t).WaitAndRelease())
	require.NoError(t, capture(EnqueueReadBuffer(queue, sub, Blocking, 0, got)).Test(t).Release())
	assert.Equal(t, slices.Repeat([]uint8{7}, alignBytes), got)
	require.NoError(t, sub.Release())
	assert.Nil(t, sub.HostSlice())
}

func TestMarkersAndBarriers(t *testing.T) {
	ctx := getTestContext(t)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)
	buffer := capture(CreateBuffer[float32](ctx, MemReadWrite, 128, nil)).Test(t)
	defer func() { require.NoError(t, buffer.Release()) }()
	fill := capture(EnqueueFillBuffer(queue, buffer, float32(2), 0, 128)).Test(t)
	marker := capture(queue.EnqueueMarkerWithWaitList(fill)).Test(t)
	barrier := capture(queue.EnqueueBarrierWithWaitList()).Test(t)
	require.NoError(t, WaitForEvents(fill, marker, barrier))
	assert.Equal(t, CommandMarker, capture(marker.CommandType()).Test(t))
	assert.Equal(t, CommandBarrier, capture(barrier.CommandType()).Test(t))
	for _, event := range []*Event{fill, marker, barrier} {
		require.NoError(t, event.Release())
		assert.True(t, event.IsReleased())
	}
	require.NoError(t, queue.Flush())
	require.NoError(t, queue.Finish())
}
