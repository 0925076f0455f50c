package opencl

import (
	"fmt"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOpenCLVersion(t *testing.T) {
	for input, want := range map[string]string{
		"OpenCL 3.0 CUDA 12.2.140":          "v3.0",
		"OpenCL 1.2 ":                       "v1.2",
		"OpenCL C 2.0 ":                     "v2.0",
		"OpenCL 2.1 AMD-APP (3590.0)":       "v2.1",
		"OpenCL 3.0 PoCL 5.0+debian  Linux": "v3.0",
	} {
		got, err := parseOpenCLVersion(input)
		require.NoErrorf(t, err, "parsing %q", input)
		assert.Equalf(t, want, got, "parsing %q", input)
	}
	_, err := parseOpenCLVersion("CUDA 12.2")
	require.Error(t, err)
}

func TestVersionAtLeast(t *testing.T) {
	ok := capture(versionAtLeast("v3.0", "2.0")).Test(t)
	assert.True(t, ok)
	ok = capture(versionAtLeast("v1.2", "v2.0")).Test(t)
	assert.False(t, ok)
	ok = capture(versionAtLeast("v2.0", "2.0")).Test(t)
	assert.True(t, ok)
	_, err := versionAtLeast("v2.0", "two")
	require.Error(t, err)
}

func TestPlatforms(t *testing.T) {
	if _, err := Load(); err != nil {
		t.Skipf("OpenCL not available: %v", err)
	}
	platforms := capture(Platforms()).Test(t)
	fmt.Printf("%d platform(s):\n", len(platforms))
	for _, platform := range platforms {
		name := capture(platform.Name()).Test(t)
		version := capture(platform.Version()).Test(t)
		require.NotEmpty(t, version)
		fmt.Printf("\t%s: %s (%s)\n", name, version, must.M1(platform.Vendor()))
		_ = capture(platform.SemVer()).Test(t)

		devices := capture(platform.Devices(DeviceTypeAll)).Test(t)
		for _, device := range devices {
			deviceName := capture(device.Name()).Test(t)
			deviceType := capture(device.Type()).Test(t)
			fmt.Printf("\t\t%s: %s, %d compute units\n", deviceType, deviceName, must.M1(device.MaxComputeUnits()))
			devicePlatform := capture(device.Platform()).Test(t)
			assert.Equal(t, platform.Handle(), devicePlatform.Handle())
			assert.NotZero(t, capture(device.MaxWorkGroupSize()).Test(t))
			sizes := capture(device.MaxWorkItemSizes()).Test(t)
			assert.Len(t, sizes, int(capture(device.MaxWorkItemDimensions()).Test(t)))
		}
	}
}

func TestCreateSubDevicesErrors(t *testing.T) {
	device := getTestDevice(t)
	for _, properties := range [][]int64{
		nil,
		{DevicePartitionEqually, 1},
		{0},
		PartitionByCounts(),
	} {
		// Whether the driver rejects the partition or yields no sub-devices, it must fail cleanly.
		subDevices, err := device.CreateSubDevices(properties)
		require.Errorf(t, err, "properties %v", properties)
		assert.Empty(t, subDevices)
	}
}
