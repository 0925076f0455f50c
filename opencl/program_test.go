package opencl

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramInfo(t *testing.T) {
	ctx := getTestContext(t)
	device := ctx.Devices()[0]
	program := capture(CreateProgramWithSource(ctx, saxpySource)).Test(t)
	defer func() { require.NoError(t, program.Release()) }()
	assert.Equal(t, saxpySource, capture(program.Source()).Test(t))
	assert.Equal(t, BuildStatusNone, capture(program.BuildStatus(device)).Test(t))

	require.NoError(t, program.Build(nil, MadEnable))
	assert.Equal(t, BuildStatusSuccess, capture(program.BuildStatus(device)).Test(t))
	assert.Contains(t, capture(program.BuildOptions(device)).Test(t), MadEnable)
	_ = capture(program.BuildLog(device)).Test(t)
	assert.Equal(t, ProgramBinaryTypeExecutable, capture(program.BinaryType(device)).Test(t))
	assert.Equal(t, ctx.Handle(), capture(program.Context()).Test(t))
	assert.Equal(t, uint32(1), capture(program.NumDevices()).Test(t))
	devices := capture(program.Devices()).Test(t)
	require.Len(t, devices, 1)
	assert.Equal(t, device.Handle(), devices[0].Handle())

	assert.Equal(t, 2, capture(program.NumKernels()).Test(t))
	names := capture(program.KernelNames()).Test(t)
	slices.Sort(names)
	assert.Equal(t, []string{"add_int", "saxpy_float"}, names)

	kernels := capture(program.CreateKernels()).Test(t)
	require.Len(t, kernels, 2)
	for _, kernel := range kernels {
		assert.Contains(t, names, kernel.Name())
		require.NoError(t, kernel.Release())
	}

	require.NoError(t, program.Release())
	assert.True(t, program.IsReleased())
	require.Error(t, program.Build(nil, ""))
}

func TestProgramBinaries(t *testing.T) {
	ctx := getTestContext(t)
	program := capture(CreateAndBuildProgramFromSource(ctx, saxpySource, "")).Test(t)
	defer func() { require.NoError(t, program.Release()) }()
	sizes := capture(program.BinarySizes()).Test(t)
	require.Len(t, sizes, 1)
	binaries := capture(program.Binaries()).Test(t)
	require.Len(t, binaries, 1)
	require.Len(t, binaries[0], sizes[0])
	if sizes[0] == 0 {
		t.Skip("Device doesn't provide program binaries")
	}

	// Build the context kernels from the binary.
	fromBinary := capture(ctx.BuildProgramFromBinary(binaries, "")).Test(t)
	assert.False(t, fromBinary.IsReleased())
	require.NotNil(t, ctx.Kernel("saxpy_float"))

	_, err := CreateProgramWithBinary(ctx, ctx.Devices(), nil)
	require.Error(t, err, "one binary per device is required")
	_, err = CreateProgramWithBinary(ctx, ctx.Devices(), [][]byte{{}})
	require.Error(t, err, "empty binary")
}

func TestCreateAndBuildProgramFailure(t *testing.T) {
	ctx := getTestContext(t)
	_, err := CreateAndBuildProgramFromSource(ctx, "kernel void missing_semicolon() { int x = 1 }", "")
	require.Error(t, err)
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	require.Len(t, buildErr.Logs, 1)
	for _, log := range buildErr.Logs {
		assert.NotEmpty(t, log)
	}
	_, err = CreateProgramWithSource(ctx, "")
	require.Error(t, err)
}
