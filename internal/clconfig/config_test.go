package clconfig

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/gomlx/goopencl/opencl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(contents), 0o644))
	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
library = " /opt/opencl/lib/libOpenCL.so "
platform = "pocl"
device_type = "cpu|gpu"
device_index = 1

[saxpy]
n = 4096
a = 2.5
`)
	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/opt/opencl/lib/libOpenCL.so", cfg.Library)
	assert.Equal(t, "pocl", cfg.Platform)
	assert.Equal(t, opencl.DeviceTypeCPU|opencl.DeviceTypeGPU, cfg.DeviceType)
	assert.Equal(t, 1, cfg.DeviceIndex)
	assert.Equal(t, 4096, cfg.Saxpy.N)
	assert.Equal(t, float32(2.5), cfg.Saxpy.A)

	// Values not defined keep their defaults.
	defaults := Default()
	assert.Equal(t, defaults.Saxpy.Tolerance, cfg.Saxpy.Tolerance)
	assert.Equal(t, defaults.Saxpy.Repeat, cfg.Saxpy.Repeat)
	assert.Empty(t, cfg.BuildOptions)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `device_type = "tpu"`))
	require.ErrorContains(t, err, "unknown device type")

	_, err = Load(writeConfig(t, "[saxpy]\nn = 0\n"))
	require.ErrorContains(t, err, "saxpy.n")

	_, err = Load(writeConfig(t, `device_index = -1`))
	require.ErrorContains(t, err, "device_index")

	_, err = Load(writeConfig(t, `library = [1, 2`))
	require.Error(t, err)
}

func TestParseDeviceType(t *testing.T) {
	for name, want := range map[string]opencl.DeviceType{
		"all":             opencl.DeviceTypeAll,
		"GPU":             opencl.DeviceTypeGPU,
		" cpu ":           opencl.DeviceTypeCPU,
		"gpu|accelerator": opencl.DeviceTypeGPU | opencl.DeviceTypeAccelerator,
	} {
		got, err := ParseDeviceType(name)
		require.NoError(t, err, "parsing %q", name)
		assert.Equal(t, want, got, "parsing %q", name)
	}
	_, err := ParseDeviceType("")
	require.Error(t, err)
	_, err = ParseDeviceType("gpu|")
	require.Error(t, err)
}

func TestReplaceTildeInDir(t *testing.T) {
	usr, err := user.Current()
	require.NoError(t, err)
	for dir, want := range map[string]string{
		"/tmp/x":             "/tmp/x",
		"":                   "",
		"~":                  usr.HomeDir,
		"~/.config/goopencl": filepath.Join(usr.HomeDir, ".config/goopencl"),
	} {
		got, err := ReplaceTildeInDir(dir)
		require.NoError(t, err, "dir %q", dir)
		assert.Equal(t, want, got, "dir %q", dir)
	}

	// Unknown users are reported as errors, also when loading.
	_, err = ReplaceTildeInDir("~no_such_user_for_sure/x")
	require.ErrorContains(t, err, "no_such_user_for_sure")
	_, err = Load("~no_such_user_for_sure/config.toml")
	require.Error(t, err)
	_, err = Load(writeConfig(t, `library = "~no_such_user_for_sure/libOpenCL.so"`))
	require.ErrorContains(t, err, "no_such_user_for_sure")
}
