package main

import (
	"fmt"
	"io"
	"time"

	"github.com/chewxy/math32"
	"github.com/gomlx/goopencl/internal/clconfig"
	"github.com/gomlx/goopencl/opencl"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const saxpySource = `
kernel void saxpy (global float* z, global float const* x, global float const* y, float a) {
    size_t i = get_global_id(0);
    z[i] = a*x[i] + y[i];
}
`

type saxpyResult struct {
	device        string
	n             int
	durations     []time.Duration
	maxError      float32
	mismatches    int
	firstMismatch int
}

func (r *saxpyResult) print(w io.Writer) {
	fmt.Fprintf(w, "Device:      %s\n", r.device)
	fmt.Fprintf(w, "Elements:    %d\n", r.n)
	if len(r.durations) > 0 {
		var total time.Duration
		minDuration := r.durations[0]
		for _, d := range r.durations {
			total += d
			minDuration = min(minDuration, d)
		}
		fmt.Fprintf(w, "Kernel time: %s average, %s minimum over %d runs\n",
			total/time.Duration(len(r.durations)), minDuration, len(r.durations))
	}
	fmt.Fprintf(w, "Max error:   %g\n", r.maxError)
	fmt.Fprintf(w, "Mismatches:  %d\n", r.mismatches)
}

// inputs returns the x and y vectors used for n elements.
func inputs(n int) (x, y []float32) {
	x = make([]float32, n)
	y = make([]float32, n)
	for ii := range n {
		x[ii] = math32.Sin(float32(ii))
		y[ii] = float32(ii % 1024)
	}
	return
}

// verify the results z against a*x+y computed on the host. The error of each element is relative to the
// magnitude of the expected value, or absolute if that is smaller than 1.
func verify(x, y, z []float32, a, tolerance float32, result *saxpyResult) {
	result.firstMismatch = -1
	for ii := range z {
		want := a*x[ii] + y[ii]
		err := math32.Abs(z[ii]-want) / math32.Max(1, math32.Abs(want))
		if math32.IsNaN(z[ii]) {
			err = math32.Inf(1)
		}
		result.maxError = math32.Max(result.maxError, err)
		if err > tolerance {
			if result.mismatches == 0 {
				result.firstMismatch = ii
			}
			result.mismatches++
		}
	}
}

func runSaxpy(cfg clconfig.Config) (*saxpyResult, error) {
	device, err := cfg.Device()
	if err != nil {
		return nil, err
	}
	ctx, err := opencl.NewContextFromDevice(device)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ctx.Release(); err != nil {
			klog.Errorf("failed to release OpenCL context: %+v", err)
		}
	}()
	queue, err := ctx.CreateCommandQueue(opencl.QueueProfilingEnable)
	if err != nil {
		return nil, err
	}
	if _, err = ctx.BuildProgramFromSource(saxpySource, cfg.BuildOptions); err != nil {
		return nil, err
	}
	kernel := ctx.Kernel("saxpy")

	n := cfg.Saxpy.N
	x, y := inputs(n)
	xBuffer, err := opencl.CreateOwnedBuffer(ctx, opencl.MemReadOnly|opencl.MemCopyHostPtr, n, x)
	if err != nil {
		return nil, err
	}
	yBuffer, err := opencl.CreateOwnedBuffer(ctx, opencl.MemReadOnly|opencl.MemCopyHostPtr, n, y)
	if err != nil {
		return nil, err
	}
	zBuffer, err := opencl.CreateOwnedBuffer[float32](ctx, opencl.MemWriteOnly, n, nil)
	if err != nil {
		return nil, err
	}

	result := &saxpyResult{device: device.String(), n: n}
	for run := range cfg.Saxpy.Repeat {
		event, err := opencl.NewExecuteKernel(kernel).
			Arg(zBuffer).Arg(xBuffer).Arg(yBuffer).Arg(cfg.Saxpy.A).
			GlobalWorkSize(n).
			EnqueueNDRange(queue)
		if err != nil {
			return nil, errors.WithMessagef(err, "run #%d", run)
		}
		if err = event.Wait(); err != nil {
			return nil, errors.WithMessagef(err, "run #%d", run)
		}
		duration, err := event.Duration()
		if err2 := event.Release(); err2 != nil {
			klog.Warningf("failed to release kernel event: %v", err2)
		}
		if err != nil {
			return nil, err
		}
		klog.V(1).Infof("run #%d: %s", run, duration)
		result.durations = append(result.durations, duration)
	}

	z := make([]float32, n)
	readEvent, err := opencl.EnqueueReadBuffer(queue, zBuffer, opencl.Blocking, 0, z)
	if err != nil {
		return nil, err
	}
	if err = readEvent.Release(); err != nil {
		return nil, err
	}
	verify(x, y, z, cfg.Saxpy.A, cfg.Saxpy.Tolerance, result)
	return result, nil
}
