package opencl

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inclusiveScanSource = `
kernel void inclusive_scan_int (global int* output,
                                global int const* values)
{
    int sum = 0;
    size_t lid = get_local_id(0);
    size_t lsize = get_local_size(0);

    size_t num_groups = get_num_groups(0);
    for (size_t i = 0u; i < num_groups; ++i)
    {
        size_t lidx = i * lsize + lid;
        int value = work_group_scan_inclusive_add(values[lidx]);
        output[lidx] = sum + value;

        sum += work_group_broadcast(value, lsize - 1);
    }
}`

// getSVMContext returns a context whose device supports coarse or fine grained SVM buffers.
func getSVMContext(t *testing.T) *Context {
	ctx := getTestContext(t)
	device := ctx.Devices()[0]
	requireVersion(t, device, "2.0")
	svm := device.SVMMemCapability()
	if _, err := svmFineGrained(svm); err != nil {
		t.Skipf("Device %s doesn't support SVM buffers (capabilities %#x)", device, uint64(svm))
	}
	return ctx
}

func TestSVMGrowCapacity(t *testing.T) {
	testCases := []struct {
		capacity, count, want int
	}{
		{0, 1, 1},
		{0, 10, 10},
		{1, 2, 2},
		{4, 5, 8},
		{8, 9, 16},
		{4, 6, 6},
		{4, 100, 100},
	}
	for _, tc := range testCases {
		assert.Equalf(t, tc.want, svmGrowCapacity(tc.capacity, tc.count), "svmGrowCapacity(%d, %d)",
			tc.capacity, tc.count)
	}

	// Pushing one element at a time reallocates a logarithmic number of times.
	capacity, numGrows := 1, 0
	for count := 1; count <= 1024; count++ {
		if count > capacity {
			capacity = svmGrowCapacity(capacity, count)
			numGrows++
		}
	}
	assert.Equal(t, 1024, capacity)
	assert.Equal(t, 10, numGrows)
}

func TestSVMFineGrained(t *testing.T) {
	testCases := []struct {
		name    string
		svm     SVMCapabilities
		want    bool
		wantErr string
	}{
		{"none", 0, false, "no OpenCL SVM"},
		{"atomics only", SVMAtomics, false, "no OpenCL SVM"},
		{"coarse", SVMCoarseGrainBuffer, false, ""},
		{"fine", SVMCoarseGrainBuffer | SVMFineGrainBuffer, true, ""},
		{"fine with atomics", SVMFineGrainBuffer | SVMAtomics, true, ""},
		{"system", SVMCoarseGrainBuffer | SVMFineGrainBuffer | SVMFineGrainSystem, false, "use a Go slice"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fineGrained, err := svmFineGrained(tc.svm)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, fineGrained)
		})
	}
}

// mapSVM maps a coarse grained vector for host access, and returns a function to unmap it.
func mapSVM[T any](t *testing.T, v *SVMVec[T], queue *CommandQueue, flags MapFlags) func() {
	require.NoError(t, v.Map(queue, flags))
	return func() { require.NoError(t, v.Unmap()) }
}

func TestSVMVec(t *testing.T) {
	ctx := getSVMContext(t)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)
	v := capture(CreateSVMVec[int32](ctx, 4)).Test(t)
	defer func() { require.NoError(t, v.Free()) }()
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 4, v.Cap())
	require.NotNil(t, v.Pointer())

	unmap := mapSVM(t, v, queue, MapRead|MapWrite)
	for ii := range int32(4) {
		require.NoError(t, v.Push(ii))
	}
	assert.Equal(t, []int32{0, 1, 2, 3}, v.Slice())
	assert.Equal(t, 16, v.SizeBytes())

	// Growing by one element doubles the capacity, keeping the contents.
	require.NoError(t, v.Push(4))
	assert.Equal(t, 8, v.Cap())
	assert.Equal(t, []int32{0, 1, 2, 3, 4}, v.Slice())

	require.NoError(t, v.Insert(0, -1))
	require.NoError(t, v.Insert(3, 100))
	require.NoError(t, v.Insert(v.Len(), 200))
	assert.Equal(t, []int32{-1, 0, 1, 100, 2, 3, 4, 200}, v.Slice())
	require.Error(t, v.Insert(-1, 0))
	require.Error(t, v.Insert(v.Len()+1, 0))

	removed := capture(v.Remove(3)).Test(t)
	assert.Equal(t, int32(100), removed)
	_, err := v.Remove(v.Len())
	require.Error(t, err)
	last, ok := v.Pop()
	require.True(t, ok)
	assert.Equal(t, int32(200), last)
	assert.Equal(t, []int32{-1, 0, 1, 2, 3, 4}, v.Slice())

	// Reserve more than double: exact capacity.
	require.NoError(t, v.Reserve(20))
	assert.Equal(t, 20, v.Cap())
	assert.Equal(t, []int32{-1, 0, 1, 2, 3, 4}, v.Slice())
	require.NoError(t, v.Reserve(10), "no-op")
	assert.Equal(t, 20, v.Cap())

	v.Clear()
	assert.Equal(t, 0, v.Len())
	assert.Nil(t, v.Slice())
	_, ok = v.Pop()
	assert.False(t, ok)
	unmap()

	require.NoError(t, v.Free())
	assert.Equal(t, 0, v.Cap())
	assert.Nil(t, v.Pointer())
	require.NoError(t, v.Free())
}

func TestSVMInclusiveScan(t *testing.T) {
	ctx := getSVMContext(t)
	device := ctx.Devices()[0]
	// The query only exists in OpenCL 3.0, where the functions became optional.
	if supported, err := device.WorkGroupCollectiveFunctionsSupport(); err == nil && !supported {
		t.Skipf("Device %s doesn't support work group collective functions", device)
	}
	_ = capture(ctx.BuildProgramFromSource(inclusiveScanSource, CLStd2_0)).Test(t)
	kernel := ctx.Kernel("inclusive_scan_int")
	require.NotNil(t, kernel)
	queue := capture(ctx.CreateCommandQueueWithProperties(QueueProfilingEnable, 0)).Test(t)

	values := []int32{3, 2, 5, 9, 7, 1, 4, 2}
	input := capture(CreateSVMVec[int32](ctx, len(values))).Test(t)
	defer func() { require.NoError(t, input.Free()) }()
	unmap := mapSVM(t, input, queue, MapWrite)
	for _, value := range values {
		require.NoError(t, input.Push(value))
	}
	unmap()

	results := capture(CreateSVMVec[int32](ctx, len(values))).Test(t)
	defer func() { require.NoError(t, results.Free()) }()
	unmap = mapSVM(t, results, queue, MapWrite)
	for range values {
		require.NoError(t, results.Push(0))
	}
	unmap()

	event := capture(NewExecuteKernel(kernel).
		Arg(results).
		ArgSVM(input.Pointer()).
		GlobalWorkSize(len(values)).
		EnqueueNDRange(queue)).Test(t)
	require.NoError(t, event.WaitAndRelease())

	unmap = mapSVM(t, results, queue, MapRead)
	assert.Equal(t, []int32{3, 5, 10, 19, 26, 27, 31, 33}, results.Slice())
	unmap()
}

func TestSVMRawCommands(t *testing.T) {
	ctx := getSVMContext(t)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)
	src := capture(CreateSVMVec[uint8](ctx, 16)).Test(t)
	defer func() { require.NoError(t, src.Free()) }()
	dst := capture(CreateSVMVec[uint8](ctx, 16)).Test(t)
	defer func() { require.NoError(t, dst.Free()) }()

	require.NoError(t, capture(queue.EnqueueSVMMemFill(src.Pointer(), []byte{0xAB}, 16)).Test(t).WaitAndRelease())
	require.NoError(t, capture(queue.EnqueueSVMMemcpy(Blocking, dst.Pointer(), src.Pointer(), 16)).Test(t).Release())

	// The vector length is still 0: read the whole allocation.
	unmap := mapSVM(t, dst, queue, MapRead)
	data := unsafe.Slice((*uint8)(dst.Pointer()), 16)
	for ii, b := range data {
		require.Equalf(t, uint8(0xAB), b, "byte #%d", ii)
	}
	unmap()
}
