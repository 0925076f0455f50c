package opencl

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableLibraries(t *testing.T) {
	libs := AvailableLibraries()
	fmt.Printf("Available OpenCL libraries: %v\n", libs)
	for _, lib := range libs {
		assert.Contains(t, filepath.Base(lib), "OpenCL")
	}
}

func TestLoad(t *testing.T) {
	rt, err := Load()
	if err != nil {
		t.Skipf("OpenCL not available: %v", err)
	}
	fmt.Printf("Loaded %s\n", rt)
	assert.True(t, rt.HasEntryPoint("clGetPlatformIDs"))
	assert.False(t, rt.HasEntryPoint("clNoSuchFunction"))

	// Cached.
	rt2 := capture(Load()).Test(t)
	assert.Same(t, rt, rt2)
	rt3 := capture(LoadFrom(rt.Path())).Test(t)
	assert.Same(t, rt, rt3)
}

func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "libOpenCL.so"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load OpenCL library")
}
