package main

import (
	"bytes"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gomlx/goopencl/internal/clconfig"
	"github.com/gomlx/goopencl/opencl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	x, y := inputs(16)
	const a = float32(3)
	z := make([]float32, len(x))
	for ii := range z {
		z[ii] = a*x[ii] + y[ii]
	}

	var result saxpyResult
	verify(x, y, z, a, 1e-6, &result)
	assert.Equal(t, 0, result.mismatches)
	assert.Equal(t, -1, result.firstMismatch)
	assert.Equal(t, float32(0), result.maxError)

	z[5] += 0.5
	z[9] = math32.NaN()
	result = saxpyResult{}
	verify(x, y, z, a, 1e-6, &result)
	assert.Equal(t, 2, result.mismatches)
	assert.Equal(t, 5, result.firstMismatch)
	assert.True(t, math32.IsInf(result.maxError, 1))
}

func TestRunSaxpy(t *testing.T) {
	if _, err := opencl.Load(); err != nil {
		t.Skipf("OpenCL not available: %v", err)
	}
	cfg := clconfig.Default()
	if _, err := cfg.Device(); err != nil {
		t.Skipf("no OpenCL device: %v", err)
	}
	cfg.Saxpy.N = 4096
	cfg.Saxpy.Repeat = 3
	cfg.Saxpy.Tolerance = 1e-5
	result, err := runSaxpy(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, result.mismatches)
	assert.Len(t, result.durations, 3)

	var buf bytes.Buffer
	result.print(&buf)
	assert.Contains(t, buf.String(), "over 3 runs")
}
