package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gomlx/goopencl/internal/clconfig"
	"github.com/gomlx/goopencl/opencl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlatforms() []platformInfo {
	return []platformInfo{{
		properties: []property{
			{"name", "Portable Computing Language"},
			{"extensions", words("cl_khr_icd cl_khr_fp64")},
		},
		devices: [][]property{{
			{"name", "cpu-haswell"},
			{"type", normalizeValue(opencl.DeviceTypeCPU)},
			{"max_compute_units", uint32(8)},
			{"max_work_item_sizes", normalizeValue([]int{4096, 4096, 4096})},
			{"image_support", true},
		}},
	}}
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "CL_DEVICE_TYPE_GPU", normalizeValue(opencl.DeviceTypeGPU))
	assert.Equal(t, []any{1, 2}, normalizeValue([]int{1, 2}))
	assert.Equal(t, uint64(7), normalizeValue(uint64(7)))
	assert.Equal(t, "1.5", normalizeValue(1.5))
	assert.Equal(t, []any{"a", "b"}, words(" a  b "))

	value, err := hex(opencl.FPConfig(0x3f), nil)
	require.NoError(t, err)
	assert.Equal(t, "0x3f", value)
}

func TestPrintText(t *testing.T) {
	var buf bytes.Buffer
	printText(&buf, testPlatforms())
	text := buf.String()
	assert.Contains(t, text, "Number of platforms: 1")
	assert.Contains(t, text, "Portable Computing Language")
	assert.Contains(t, text, "cl_khr_fp64")
	assert.Contains(t, text, "CL_DEVICE_TYPE_CPU")
	assert.Contains(t, text, "4096 4096 4096")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, testPlatforms()))

	var decoded struct {
		Platforms []struct {
			Name       string   `json:"name"`
			Extensions []string `json:"extensions"`
			Devices    []struct {
				Name             string    `json:"name"`
				Type             string    `json:"type"`
				MaxComputeUnits  float64   `json:"max_compute_units"`
				MaxWorkItemSizes []float64 `json:"max_work_item_sizes"`
				ImageSupport     bool      `json:"image_support"`
			} `json:"devices"`
		} `json:"platforms"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Platforms, 1)
	platform := decoded.Platforms[0]
	assert.Equal(t, "Portable Computing Language", platform.Name)
	assert.Equal(t, []string{"cl_khr_icd", "cl_khr_fp64"}, platform.Extensions)
	require.Len(t, platform.Devices, 1)
	device := platform.Devices[0]
	assert.Equal(t, "cpu-haswell", device.Name)
	assert.Equal(t, "CL_DEVICE_TYPE_CPU", device.Type)
	assert.Equal(t, 8.0, device.MaxComputeUnits)
	assert.Equal(t, []float64{4096, 4096, 4096}, device.MaxWorkItemSizes)
	assert.True(t, device.ImageSupport)
}

func TestCollectPlatforms(t *testing.T) {
	cfg := clconfigForTest(t)
	platforms, err := collectPlatforms(cfg)
	require.NoError(t, err)
	for _, platform := range platforms {
		require.NotEmpty(t, platform.properties)
		assert.Equal(t, "name", platform.properties[0].name)
		for _, device := range platform.devices {
			require.NotEmpty(t, device)
			assert.Equal(t, "name", device[0].name)
		}
	}
	_, err = toStruct(platforms)
	require.NoError(t, err)
}

// clconfigForTest returns the default configuration, skipping the test if OpenCL is not available.
func clconfigForTest(t *testing.T) clconfig.Config {
	t.Helper()
	if _, err := opencl.Load(); err != nil {
		t.Skipf("OpenCL not available: %v", err)
	}
	return clconfig.Default()
}
