// Package opencl implements a Go wrapper for the OpenCL C API.
//
// The OpenCL ICD loader (libOpenCL.so) is loaded dynamically (dlopen) on first use, so programs using this
// package run on machines without OpenCL installed, and fail only when they try to use it. See Load and LoadFrom.
// Building them only requires the OpenCL C headers (CL/cl.h, e.g. from the opencl-headers or
// opencl-c-headers packages), no OpenCL library.
//
// Every object that holds an OpenCL handle (Context, CommandQueue, Program, Kernel, Buffer, Image, Pipe, Sampler,
// Event, SubDevice, SVMVec) has an idempotent Release (or Free) method, and is also released when garbage
// collected. Platform and Device are lightweight references owned by the runtime.
//
// A minimal program:
//
//	device, err := opencl.DefaultDevice(opencl.DeviceTypeGPU)
//	ctx, err := opencl.NewContextFromDevice(device)
//	defer ctx.Release()
//	queue, err := ctx.CreateCommandQueue(opencl.QueueProfilingEnable)
//	_, err = ctx.BuildProgramFromSource(src, "")
//	kernel := ctx.Kernel("saxpy_float")
//	event, err := opencl.NewExecuteKernel(kernel).Arg(z).Arg(x).Arg(y).Arg(float32(2)).
//		GlobalWorkSize(n).EnqueueNDRange(queue)
package opencl

// Generate String() methods for enum types.
//go:generate go tool enumer -type=ExecutionStatus -trimprefix=Execution -output=gen_executionstatus_enumer.go enums.go
//go:generate go tool enumer -type=MemObjectType -trimprefix=MemObject -output=gen_memobjecttype_enumer.go enums.go
//go:generate go tool enumer -type=BuildStatus -trimprefix=BuildStatus -output=gen_buildstatus_enumer.go enums.go
//go:generate go tool enumer -type=CommandType -trimprefix=Command -output=gen_commandtype_enumer.go enums.go

const (
	// Blocking is used with the enqueue read/write/map calls to return only when the command completes.
	Blocking = true

	// NonBlocking is used with the enqueue read/write/map calls to return immediately. The returned Event
	// must be waited on before the host memory is reused.
	NonBlocking = false
)
