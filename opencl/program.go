package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Common build options, to be joined with spaces in the options of Program.Build.
const (
	CLStd1_2 = "-cl-std=CL1.2"
	CLStd2_0 = "-cl-std=CL2.0"
	CLStd3_0 = "-cl-std=CL3.0"

	// DenormsAreZero flushes single precision denormalized numbers to zero.
	DenormsAreZero = "-cl-denorms-are-zero"

	// FastRelaxedMath enables optimizations that may violate IEEE 754 rules.
	FastRelaxedMath = "-cl-fast-relaxed-math"

	// MadEnable allows a * b + c to be replaced by a less precise mad.
	MadEnable = "-cl-mad-enable"

	// KernelArgInfo keeps the kernel argument information queried with Kernel.ArgName and friends.
	KernelArgInfo = "-cl-kernel-arg-info"

	// NoOptimization disables all optimizations.
	NoOptimization = "-cl-opt-disable"
)

// Program is an OpenCL program: a set of kernels built from source, binaries, IL (SPIR-V) or built-in kernels.
type Program struct {
	cProgram C.cl_program
	rt       *Runtime
}

func newProgram(rt *Runtime, cProgram C.cl_program) *Program {
	p := &Program{cProgram: cProgram, rt: rt}
	runtime.SetFinalizer(p, func(p *Program) {
		if err := p.Release(); err != nil {
			klog.Errorf("Program.Release failed during garbage collection: %+v", err)
		}
	})
	return p
}

// CreateProgramWithSource creates a program from OpenCL C source. It still needs to be built. The caller owns it,
// see Context.BuildProgramFromSource for a context owned version.
func CreateProgramWithSource(ctx *Context, source string) (*Program, error) {
	if source == "" {
		return nil, errors.New("CreateProgramWithSource: empty source")
	}
	defer runtime.KeepAlive(ctx)
	cSource := C.CString(source)
	defer cFree(cSource)
	var code C.cl_int
	cProgram := C.call_clCreateProgramWithSource(ctx.rt.api, ctx.cContext, cSource, C.size_t(len(source)), &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessage(err, "failed to create program from source")
	}
	return newProgram(ctx.rt, cProgram), nil
}

// CreateAndBuildProgramFromSource creates a program from source and builds it for all the context devices.
// On failure the program is released.
func CreateAndBuildProgramFromSource(ctx *Context, source, options string) (*Program, error) {
	program, err := CreateProgramWithSource(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := program.Build(ctx.devices, options); err != nil {
		if err2 := program.Release(); err2 != nil {
			klog.Warningf("failed to release program after failed build: %+v", err2)
		}
		return nil, err
	}
	return program, nil
}

// CreateProgramWithBinary creates a program from binaries (see Program.Binaries), one per device.
func CreateProgramWithBinary(ctx *Context, devices []*Device, binaries [][]byte) (*Program, error) {
	if len(devices) == 0 || len(devices) != len(binaries) {
		return nil, errors.Errorf("CreateProgramWithBinary: need one binary per device, got %d binaries for %d devices",
			len(binaries), len(devices))
	}
	totalSize := 0
	for ii, binary := range binaries {
		if len(binary) == 0 {
			return nil, errors.Errorf("CreateProgramWithBinary: binary #%d is empty", ii)
		}
		totalSize += len(binary)
	}
	defer runtime.KeepAlive(ctx)
	n := len(devices)
	scratch := ctx.rt.arenaPools.Get(totalSize + 40*n + 64)
	defer ctx.rt.arenaPools.Return(scratch)
	cDevices := arenaAllocSlice[C.cl_device_id](scratch, n)
	lengths := arenaAllocSlice[C.size_t](scratch, n)
	cBinaries := arenaAllocSlice[*C.uchar](scratch, n)
	status := arenaAllocSlice[C.cl_int](scratch, n)
	for ii, binary := range binaries {
		cDevices[ii] = devices[ii].cDevice
		lengths[ii] = C.size_t(len(binary))
		cBinaries[ii] = (*C.uchar)(unsafe.Pointer(arenaCopySlice(scratch, binary)))
	}
	var code C.cl_int
	cProgram := C.call_clCreateProgramWithBinary(ctx.rt.api, ctx.cContext, C.cl_uint(n), &cDevices[0], &lengths[0],
		&cBinaries[0], &status[0], &code)
	if err := toError(code); err != nil {
		for ii, s := range status {
			if s != C.CL_SUCCESS {
				klog.V(1).Infof("binary for device %s rejected: %s", devices[ii], ErrorCode(s))
			}
		}
		return nil, errors.WithMessage(err, "failed to create program from binaries")
	}
	return newProgram(ctx.rt, cProgram), nil
}

// CreateProgramWithBuiltInKernels creates a program from the given built-in kernels of the devices (see
// Device.BuiltInKernels).
func CreateProgramWithBuiltInKernels(ctx *Context, devices []*Device, kernelNames []string) (*Program, error) {
	if len(devices) == 0 || len(kernelNames) == 0 {
		return nil, errors.New("CreateProgramWithBuiltInKernels: devices and kernel names are required")
	}
	defer runtime.KeepAlive(ctx)
	scratch := ctx.rt.arenaPools.Get(8 * len(devices))
	defer ctx.rt.arenaPools.Return(scratch)
	cDevices := arenaAllocSlice[C.cl_device_id](scratch, len(devices))
	for ii, device := range devices {
		cDevices[ii] = device.cDevice
	}
	cNames := C.CString(strings.Join(kernelNames, ";"))
	defer cFree(cNames)
	var code C.cl_int
	cProgram := C.call_clCreateProgramWithBuiltInKernels(ctx.rt.api, ctx.cContext, C.cl_uint(len(devices)),
		&cDevices[0], cNames, &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessagef(err, "failed to create program with built-in kernels %q", kernelNames)
	}
	return newProgram(ctx.rt, cProgram), nil
}

// CreateProgramWithIL creates a program from an intermediate language, usually SPIR-V. OpenCL 2.1.
func CreateProgramWithIL(ctx *Context, il []byte) (*Program, error) {
	if len(il) == 0 {
		return nil, errors.New("CreateProgramWithIL: empty IL")
	}
	defer runtime.KeepAlive(ctx)
	scratch := ctx.rt.arenaPools.Get(len(il))
	defer ctx.rt.arenaPools.Return(scratch)
	cIL := arenaCopySlice(scratch, il)
	var code C.cl_int
	cProgram := C.call_clCreateProgramWithIL(ctx.rt.api, ctx.cContext, unsafe.Pointer(cIL), C.size_t(len(il)), &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessage(err, "failed to create program from IL")
	}
	return newProgram(ctx.rt, cProgram), nil
}

// Handle returns the raw cl_program.
func (p *Program) Handle() Handle {
	return Handle(unsafe.Pointer(p.cProgram))
}

// IsReleased returns whether the program has been released.
func (p *Program) IsReleased() bool {
	return p == nil || p.cProgram == nil
}

// Release the program. Kernels created from it remain valid. It's safe to call more than once.
func (p *Program) Release() error {
	if p.IsReleased() {
		return nil
	}
	defer runtime.KeepAlive(p)
	err := toError(C.call_clReleaseProgram(p.rt.api, p.cProgram))
	p.cProgram = nil
	return err
}

// Build (compile and link) the program for the given devices, or for all the program devices if devices is empty.
//
// If compilation fails the returned error is a *BuildError with the build log of each device.
func (p *Program) Build(devices []*Device, options string) error {
	if p.IsReleased() {
		return errors.New("Program.Build: program already released")
	}
	defer runtime.KeepAlive(p)
	scratch := p.rt.arenaPools.Get(8*len(devices) + len(options) + 1)
	defer p.rt.arenaPools.Return(scratch)
	cDevices := arenaAllocSlice[C.cl_device_id](scratch, len(devices))
	var cDevicesPtr *C.cl_device_id
	for ii, device := range devices {
		cDevices[ii] = device.cDevice
	}
	if len(cDevices) > 0 {
		cDevicesPtr = &cDevices[0]
	}
	cOptions := arenaAllocSlice[C.char](scratch, len(options)+1)
	for ii := range len(options) {
		cOptions[ii] = C.char(options[ii])
	}

	code := C.call_clBuildProgram(p.rt.api, p.cProgram, C.cl_uint(len(devices)), cDevicesPtr, &cOptions[0])
	if ErrorCode(code) == ErrBuildProgramFailure {
		return errors.WithStack(p.buildError(devices))
	}
	if err := toError(code); err != nil {
		return errors.WithMessagef(err, "failed to build program with options %q", options)
	}
	klog.V(1).Infof("built OpenCL program for %d device(s) with options %q", len(devices), options)
	return nil
}

// buildError collects the build logs of the devices where the build failed.
func (p *Program) buildError(devices []*Device) *BuildError {
	buildErr := &BuildError{Code: ErrBuildProgramFailure, Logs: make(map[string]string)}
	if len(devices) == 0 {
		var err error
		devices, err = p.Devices()
		if err != nil {
			klog.Warningf("failed to list program devices for the build log: %+v", err)
		}
	}
	for _, device := range devices {
		status, err := p.BuildStatus(device)
		if err == nil && status == BuildStatusSuccess {
			continue
		}
		log, err := p.BuildLog(device)
		if err != nil {
			log = fmt.Sprintf("<failed to get build log: %v>", err)
		}
		name := device.String()
		if _, found := buildErr.Logs[name]; found {
			name = fmt.Sprintf("%s (%#x)", name, device.Handle())
		}
		buildErr.Logs[name] = log
	}
	return buildErr
}

// CreateKernels creates one kernel for each kernel function in the program. The caller owns them.
func (p *Program) CreateKernels() ([]*Kernel, error) {
	if p.IsReleased() {
		return nil, errors.New("Program.CreateKernels: program already released")
	}
	defer runtime.KeepAlive(p)
	var numKernels C.cl_uint
	if err := toError(C.call_clCreateKernelsInProgram(p.rt.api, p.cProgram, 0, nil, &numKernels)); err != nil {
		return nil, errors.WithMessage(err, "failed to count kernels in program")
	}
	if numKernels == 0 {
		return nil, nil
	}
	scratch := p.rt.arenaPools.Get(8 * int(numKernels))
	defer p.rt.arenaPools.Return(scratch)
	cKernels := arenaAllocSlice[C.cl_kernel](scratch, int(numKernels))
	if err := toError(C.call_clCreateKernelsInProgram(p.rt.api, p.cProgram, numKernels, &cKernels[0], nil)); err != nil {
		return nil, errors.WithMessage(err, "failed to create kernels in program")
	}
	kernels := make([]*Kernel, 0, len(cKernels))
	for ii, cKernel := range cKernels {
		kernel, err := newKernel(p.rt, cKernel)
		if err != nil {
			// Release the kernels not yet wrapped; wrapped ones are released by their finalizers.
			for _, remaining := range cKernels[ii+1:] {
				C.call_clReleaseKernel(p.rt.api, remaining)
			}
			for _, k := range kernels {
				_ = k.Release()
			}
			return nil, err
		}
		kernels = append(kernels, kernel)
	}
	return kernels, nil
}

func (p *Program) infoFn(param C.cl_program_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetProgramInfo(p.rt.api, p.cProgram, param, size, value, sizeRet)
	}
}

func (p *Program) ReferenceCount() (uint32, error) {
	defer runtime.KeepAlive(p)
	value, err := queryInfoScalar[C.cl_uint](p.infoFn(C.CL_PROGRAM_REFERENCE_COUNT))
	return uint32(value), err
}

// Context returns the handle of the program's context.
func (p *Program) Context() (Handle, error) {
	defer runtime.KeepAlive(p)
	value, err := queryInfoScalar[C.cl_context](p.infoFn(C.CL_PROGRAM_CONTEXT))
	return Handle(unsafe.Pointer(value)), err
}

func (p *Program) NumDevices() (uint32, error) {
	defer runtime.KeepAlive(p)
	value, err := queryInfoScalar[C.cl_uint](p.infoFn(C.CL_PROGRAM_NUM_DEVICES))
	return uint32(value), err
}

// Devices the program is associated with.
func (p *Program) Devices() ([]*Device, error) {
	defer runtime.KeepAlive(p)
	cDevices, err := queryInfoSlice[C.cl_device_id](p.rt, p.infoFn(C.CL_PROGRAM_DEVICES))
	if err != nil {
		return nil, err
	}
	devices := make([]*Device, len(cDevices))
	for ii, cDevice := range cDevices {
		devices[ii] = newDevice(p.rt, cDevice)
	}
	return devices, nil
}

// Source returns the source of programs created with CreateProgramWithSource, or "".
func (p *Program) Source() (string, error) {
	defer runtime.KeepAlive(p)
	return queryInfoString(p.rt, p.infoFn(C.CL_PROGRAM_SOURCE))
}

// BinarySizes returns the size of the binary for each program device, in the order of Devices.
func (p *Program) BinarySizes() ([]int, error) {
	defer runtime.KeepAlive(p)
	values, err := queryInfoSlice[C.size_t](p.rt, p.infoFn(C.CL_PROGRAM_BINARY_SIZES))
	if err != nil {
		return nil, err
	}
	sizes := make([]int, len(values))
	for ii, v := range values {
		sizes[ii] = int(v)
	}
	return sizes, nil
}

// Binaries returns the binary for each program device, in the order of Devices. Devices for which the program
// was not built have an empty binary. They can be used later with CreateProgramWithBinary.
func (p *Program) Binaries() ([][]byte, error) {
	sizes, err := p.BinarySizes()
	if err != nil {
		return nil, err
	}
	if len(sizes) == 0 {
		return nil, nil
	}
	defer runtime.KeepAlive(p)
	totalSize := 0
	for _, size := range sizes {
		totalSize += size
	}
	scratch := p.rt.arenaPools.Get(totalSize + 16*len(sizes))
	defer p.rt.arenaPools.Return(scratch)
	cBinaries := arenaAllocSlice[unsafe.Pointer](scratch, len(sizes))
	for ii, size := range sizes {
		if size > 0 {
			cBinaries[ii] = unsafe.Pointer(&arenaAllocSlice[byte](scratch, size)[0])
		}
	}
	ptrsSize := C.size_t(len(cBinaries)) * cSizeOf[unsafe.Pointer]()
	if err := toError(p.infoFn(C.CL_PROGRAM_BINARIES)(ptrsSize, unsafe.Pointer(&cBinaries[0]), nil)); err != nil {
		return nil, errors.WithMessage(err, "failed to get program binaries")
	}
	binaries := make([][]byte, len(sizes))
	for ii, size := range sizes {
		if size > 0 {
			binaries[ii] = make([]byte, size)
			copy(binaries[ii], unsafe.Slice((*byte)(cBinaries[ii]), size))
		}
	}
	return binaries, nil
}

// NumKernels in the program. Only available after a successful build.
func (p *Program) NumKernels() (int, error) {
	defer runtime.KeepAlive(p)
	value, err := queryInfoScalar[C.size_t](p.infoFn(C.CL_PROGRAM_NUM_KERNELS))
	return int(value), err
}

// KernelNames returns the names of the kernel functions in the program. Only available after a successful build.
func (p *Program) KernelNames() ([]string, error) {
	defer runtime.KeepAlive(p)
	names, err := queryInfoString(p.rt, p.infoFn(C.CL_PROGRAM_KERNEL_NAMES))
	if err != nil || names == "" {
		return nil, err
	}
	return strings.Split(names, ";"), nil
}

// IL returns the intermediate language of programs created with CreateProgramWithIL, or nil. OpenCL 2.1.
func (p *Program) IL() ([]byte, error) {
	defer runtime.KeepAlive(p)
	return queryInfoBytes(p.rt, p.infoFn(C.CL_PROGRAM_IL))
}

func (p *Program) buildInfoFn(device *Device, param C.cl_program_build_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetProgramBuildInfo(p.rt.api, p.cProgram, device.cDevice, param, size, value, sizeRet)
	}
}

// BuildStatus of the program for the device.
func (p *Program) BuildStatus(device *Device) (BuildStatus, error) {
	defer runtime.KeepAlive(p)
	value, err := queryInfoScalar[C.cl_build_status](p.buildInfoFn(device, C.CL_PROGRAM_BUILD_STATUS))
	return BuildStatus(value), err
}

// BuildOptions used in the last build for the device.
func (p *Program) BuildOptions(device *Device) (string, error) {
	defer runtime.KeepAlive(p)
	return queryInfoString(p.rt, p.buildInfoFn(device, C.CL_PROGRAM_BUILD_OPTIONS))
}

// BuildLog of the last build for the device.
func (p *Program) BuildLog(device *Device) (string, error) {
	defer runtime.KeepAlive(p)
	return queryInfoString(p.rt, p.buildInfoFn(device, C.CL_PROGRAM_BUILD_LOG))
}

func (p *Program) BinaryType(device *Device) (ProgramBinaryType, error) {
	defer runtime.KeepAlive(p)
	value, err := queryInfoScalar[C.cl_program_binary_type](p.buildInfoFn(device, C.CL_PROGRAM_BINARY_TYPE))
	return ProgramBinaryType(value), err
}

// GlobalVariableTotalSize is the storage used by program scope variables on the device. OpenCL 2.0.
func (p *Program) GlobalVariableTotalSize(device *Device) (int, error) {
	defer runtime.KeepAlive(p)
	value, err := queryInfoScalar[C.size_t](p.buildInfoFn(device, C.CL_PROGRAM_BUILD_GLOBAL_VARIABLE_TOTAL_SIZE))
	return int(value), err
}
