package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"reflect"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"
)

// Kernel is a kernel function of a built Program, with its arguments.
//
// Setting arguments and enqueueing a kernel is not safe for concurrent use: use Clone to get a copy per goroutine.
type Kernel struct {
	cKernel C.cl_kernel
	rt      *Runtime
	name    string
	numArgs uint32
}

// CreateKernel creates the kernel for the function name in the built program. The caller owns it.
func CreateKernel(program *Program, name string) (*Kernel, error) {
	if program.IsReleased() {
		return nil, errors.New("CreateKernel: program already released")
	}
	defer runtime.KeepAlive(program)
	cName := C.CString(name)
	defer cFree(cName)
	var code C.cl_int
	cKernel := C.call_clCreateKernel(program.rt.api, program.cProgram, cName, &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessagef(err, "failed to create kernel %q", name)
	}
	return newKernel(program.rt, cKernel)
}

// newKernel wraps cKernel, caching its name and number of arguments. If that fails, cKernel is released.
func newKernel(rt *Runtime, cKernel C.cl_kernel) (*Kernel, error) {
	k := &Kernel{cKernel: cKernel, rt: rt}
	name, err := queryInfoString(rt, k.infoFn(C.CL_KERNEL_FUNCTION_NAME))
	if err == nil {
		var numArgs C.cl_uint
		numArgs, err = queryInfoScalar[C.cl_uint](k.infoFn(C.CL_KERNEL_NUM_ARGS))
		k.numArgs = uint32(numArgs)
	}
	if err != nil {
		C.call_clReleaseKernel(rt.api, cKernel)
		return nil, errors.WithMessage(err, "failed to query kernel name and number of arguments")
	}
	k.name = name
	runtime.SetFinalizer(k, func(k *Kernel) {
		if err := k.Release(); err != nil {
			klog.Errorf("Kernel.Release failed during garbage collection: %+v", err)
		}
	})
	return k, nil
}

// Handle returns the raw cl_kernel.
func (k *Kernel) Handle() Handle {
	return Handle(unsafe.Pointer(k.cKernel))
}

// Name of the kernel function.
func (k *Kernel) Name() string {
	return k.name
}

// NumArgs of the kernel function.
func (k *Kernel) NumArgs() uint32 {
	return k.numArgs
}

// IsReleased returns whether the kernel has been released.
func (k *Kernel) IsReleased() bool {
	return k == nil || k.cKernel == nil
}

// Release the kernel. It's safe to call more than once, or on a nil Kernel.
func (k *Kernel) Release() error {
	if k.IsReleased() {
		return nil
	}
	defer runtime.KeepAlive(k)
	err := toError(C.call_clReleaseKernel(k.rt.api, k.cKernel))
	k.cKernel = nil
	return err
}

func (k *Kernel) checkLive(op string) error {
	if k.IsReleased() {
		return errors.Errorf("%s: kernel already released", op)
	}
	return nil
}

// Clone returns a copy of the kernel, including its current arguments. The caller owns it. OpenCL 2.1.
func (k *Kernel) Clone() (*Kernel, error) {
	if err := k.checkLive("Kernel.Clone"); err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(k)
	var code C.cl_int
	cKernel := C.call_clCloneKernel(k.rt.api, k.cKernel, &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessagef(err, "failed to clone kernel %q", k.name)
	}
	return newKernel(k.rt, cKernel)
}

// LocalBuffer is a kernel argument for a __local memory buffer of the given size in bytes.
type LocalBuffer int

// KernelScalar are the Go types that can be passed by value as kernel arguments. float16.Float16 is an
// unsigned 16 bits integer, and can be used for half arguments.
//
// Only sized integers are accepted: int, uint and uintptr depend on the platform, and don't match OpenCL's int.
type KernelScalar interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | constraints.Float
}

// svmArg is implemented by SVMVec.
type svmArg interface {
	svmPointer() unsafe.Pointer
}

func (k *Kernel) checkArgIndex(op string, index uint32) error {
	if err := k.checkLive(op); err != nil {
		return err
	}
	if index >= k.numArgs {
		return errors.Errorf("%s: argument index %d out of range, kernel %q has %d arguments", op, index, k.name,
			k.numArgs)
	}
	return nil
}

// setArgRaw sets the argument from size bytes at value, which OpenCL copies before returning.
func (k *Kernel) setArgRaw(index uint32, size int, value unsafe.Pointer) error {
	if err := k.checkArgIndex("Kernel.SetArg", index); err != nil {
		return err
	}
	defer runtime.KeepAlive(k)
	err := toError(C.call_clSetKernelArg(k.rt.api, k.cKernel, C.cl_uint(index), C.size_t(size), value))
	if err != nil {
		return errors.WithMessagef(err, "failed to set argument #%d (%d bytes) of kernel %q", index, size, k.name)
	}
	return nil
}

// SetArgScalar sets a kernel argument passed by value.
func SetArgScalar[T KernelScalar](k *Kernel, index uint32, value T) error {
	return k.setArgRaw(index, int(unsafe.Sizeof(value)), unsafe.Pointer(&value))
}

// SetArg sets the kernel argument at index. Supported values are:
//
//   - Memory objects: *Buffer[T], *Image, *Pipe; and *Sampler.
//   - *SVMVec[T], passed as an SVM pointer.
//   - LocalBuffer(size), for __local buffers.
//   - Scalars: sized integers (int8 to uint64), float32, float64 and float16.Float16 (half). bool is passed as a
//     uint32. Go's int and uint are rejected, since their size doesn't match OpenCL's int.
//   - Arrays of scalars, for vector types: [4]float32 for float4. Notice 3 element vectors take the space of 4.
//   - []byte, passed as raw bytes, e.g. for structs.
func (k *Kernel) SetArg(index uint32, value any) error {
	switch v := value.(type) {
	case nil:
		return errors.Errorf("Kernel.SetArg: nil argument #%d for kernel %q, use LocalBuffer for local buffers",
			index, k.name)
	case MemObject:
		if reflect.ValueOf(v).IsNil() {
			return errors.Errorf("Kernel.SetArg: nil %T for argument #%d of kernel %q", v, index, k.name)
		}
		return k.setArgMem(index, v)
	case *Sampler:
		return k.setArgSampler(index, v)
	case svmArg:
		if reflect.ValueOf(v).IsNil() {
			return errors.Errorf("Kernel.SetArg: nil %T for argument #%d of kernel %q", v, index, k.name)
		}
		return k.SetArgSVMPointer(index, v.svmPointer())
	case LocalBuffer:
		return k.SetArgLocalBuffer(index, int(v))
	case bool:
		var b uint32
		if v {
			b = 1
		}
		return SetArgScalar(k, index, b)
	case int8:
		return SetArgScalar(k, index, v)
	case int16:
		return SetArgScalar(k, index, v)
	case int32:
		return SetArgScalar(k, index, v)
	case int64:
		return SetArgScalar(k, index, v)
	case uint8:
		return SetArgScalar(k, index, v)
	case uint16:
		return SetArgScalar(k, index, v)
	case uint32:
		return SetArgScalar(k, index, v)
	case uint64:
		return SetArgScalar(k, index, v)
	case float16.Float16:
		return SetArgScalar(k, index, v)
	case float32:
		return SetArgScalar(k, index, v)
	case float64:
		return SetArgScalar(k, index, v)
	case int, uint:
		return errors.Errorf("Kernel.SetArg: argument #%d of kernel %q is a Go %T, use int32/int64 (or uint32/uint64) "+
			"to match the kernel type", index, k.name, v)
	case []byte:
		if len(v) == 0 {
			return errors.Errorf("Kernel.SetArg: empty []byte for argument #%d of kernel %q", index, k.name)
		}
		return k.setArgRaw(index, len(v), unsafe.Pointer(&v[0]))
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Array && rv.Len() > 0 && isScalarKind(rv.Type().Elem().Kind()) {
		arrayPtr := reflect.New(rv.Type())
		arrayPtr.Elem().Set(rv)
		return k.setArgRaw(index, int(rv.Type().Size()), arrayPtr.UnsafePointer())
	}
	return errors.Errorf("Kernel.SetArg: unsupported type %T for argument #%d of kernel %q", value, index, k.name)
}

func isScalarKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func (k *Kernel) setArgMem(index uint32, memObject MemObject) error {
	if err := k.checkArgIndex("Kernel.SetArg", index); err != nil {
		return err
	}
	defer runtime.KeepAlive(k)
	defer runtime.KeepAlive(memObject)
	err := toError(C.call_clSetKernelArgMem(k.rt.api, k.cKernel, C.cl_uint(index), memObject.memHandle()))
	if err != nil {
		return errors.WithMessagef(err, "failed to set memory object argument #%d of kernel %q", index, k.name)
	}
	return nil
}

func (k *Kernel) setArgSampler(index uint32, sampler *Sampler) error {
	if err := k.checkArgIndex("Kernel.SetArg", index); err != nil {
		return err
	}
	if sampler == nil || sampler.cSampler == nil {
		return errors.Errorf("Kernel.SetArg: nil or released sampler for argument #%d of kernel %q", index, k.name)
	}
	defer runtime.KeepAlive(k)
	defer runtime.KeepAlive(sampler)
	err := toError(C.call_clSetKernelArgSampler(k.rt.api, k.cKernel, C.cl_uint(index), sampler.cSampler))
	if err != nil {
		return errors.WithMessagef(err, "failed to set sampler argument #%d of kernel %q", index, k.name)
	}
	return nil
}

// SetArgLocalBuffer sets a __local buffer argument of size bytes.
func (k *Kernel) SetArgLocalBuffer(index uint32, size int) error {
	if size <= 0 {
		return errors.Errorf("Kernel.SetArgLocalBuffer: size must be > 0, got %d", size)
	}
	return k.setArgRaw(index, size, nil)
}

// SetArgSVMPointer sets a pointer argument to SVM memory (allocated with clSVMAlloc, see SVMVec, or any host
// memory for fine-grained system SVM). OpenCL 2.0.
func (k *Kernel) SetArgSVMPointer(index uint32, ptr unsafe.Pointer) error {
	if err := k.checkArgIndex("Kernel.SetArgSVMPointer", index); err != nil {
		return err
	}
	defer runtime.KeepAlive(k)
	err := toError(C.call_clSetKernelArgSVMPointer(k.rt.api, k.cKernel, C.cl_uint(index), ptr))
	if err != nil {
		return errors.WithMessagef(err, "failed to set SVM argument #%d of kernel %q", index, k.name)
	}
	return nil
}

// SetExecInfo passes additional information to the kernel execution. OpenCL 2.0.
//
//   - KernelExecInfoSVMPtrs takes a []unsafe.Pointer with the SVM pointers used indirectly by the kernel.
//   - KernelExecInfoSVMFineGrainSystem takes a bool.
func (k *Kernel) SetExecInfo(param KernelExecInfo, value any) error {
	if err := k.checkLive("Kernel.SetExecInfo"); err != nil {
		return err
	}
	defer runtime.KeepAlive(k)
	var ptrs []unsafe.Pointer
	var enable bool
	switch param {
	case KernelExecInfoSVMPtrs:
		var ok bool
		if ptrs, ok = value.([]unsafe.Pointer); !ok {
			return errors.Errorf("Kernel.SetExecInfo(KernelExecInfoSVMPtrs) requires a []unsafe.Pointer, got %T", value)
		}
	case KernelExecInfoSVMFineGrainSystem:
		var ok bool
		if enable, ok = value.(bool); !ok {
			return errors.Errorf("Kernel.SetExecInfo(KernelExecInfoSVMFineGrainSystem) requires a bool, got %T", value)
		}
	default:
		return errors.Errorf("Kernel.SetExecInfo: unknown parameter %#x", uint32(param))
	}

	scratch := k.rt.arenaPools.Get(8*len(ptrs) + 8)
	defer k.rt.arenaPools.Return(scratch)
	var size int
	var ptr unsafe.Pointer
	if param == KernelExecInfoSVMPtrs {
		ptr = unsafe.Pointer(arenaCopySlice(scratch, ptrs))
		size = len(ptrs) * int(cSizeOf[unsafe.Pointer]())
	} else {
		cEnable := arenaAlloc[C.cl_bool](scratch)
		*cEnable = cBool(enable)
		ptr, size = unsafe.Pointer(cEnable), int(cSizeOf[C.cl_bool]())
	}
	err := toError(C.call_clSetKernelExecInfo(k.rt.api, k.cKernel, C.cl_kernel_exec_info(param), C.size_t(size), ptr))
	if err != nil {
		return errors.WithMessagef(err, "failed to set exec info %#x of kernel %q", uint32(param), k.name)
	}
	return nil
}

func (k *Kernel) infoFn(param C.cl_kernel_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetKernelInfo(k.rt.api, k.cKernel, param, size, value, sizeRet)
	}
}

// FunctionName queries the name of the kernel function. See also Name, which returns the cached value.
func (k *Kernel) FunctionName() (string, error) {
	defer runtime.KeepAlive(k)
	return queryInfoString(k.rt, k.infoFn(C.CL_KERNEL_FUNCTION_NAME))
}

func (k *Kernel) ReferenceCount() (uint32, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[C.cl_uint](k.infoFn(C.CL_KERNEL_REFERENCE_COUNT))
	return uint32(value), err
}

// Context returns the handle of the kernel's context.
func (k *Kernel) Context() (Handle, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[C.cl_context](k.infoFn(C.CL_KERNEL_CONTEXT))
	return Handle(unsafe.Pointer(value)), err
}

// Program returns the handle of the program the kernel was created from.
func (k *Kernel) Program() (Handle, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[C.cl_program](k.infoFn(C.CL_KERNEL_PROGRAM))
	return Handle(unsafe.Pointer(value)), err
}

// Attributes declared in the kernel source with __attribute__, space separated.
func (k *Kernel) Attributes() (string, error) {
	defer runtime.KeepAlive(k)
	return queryInfoString(k.rt, k.infoFn(C.CL_KERNEL_ATTRIBUTES))
}

// The argument information queries below require the program to be built with the KernelArgInfo option.

func (k *Kernel) argInfoFn(index uint32, param C.cl_kernel_arg_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetKernelArgInfo(k.rt.api, k.cKernel, C.cl_uint(index), param, size, value, sizeRet)
	}
}

func (k *Kernel) ArgAddressQualifier(index uint32) (KernelArgAddressQualifier, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[C.cl_kernel_arg_address_qualifier](
		k.argInfoFn(index, C.CL_KERNEL_ARG_ADDRESS_QUALIFIER))
	return KernelArgAddressQualifier(value), err
}

func (k *Kernel) ArgAccessQualifier(index uint32) (KernelArgAccessQualifier, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[C.cl_kernel_arg_access_qualifier](
		k.argInfoFn(index, C.CL_KERNEL_ARG_ACCESS_QUALIFIER))
	return KernelArgAccessQualifier(value), err
}

// ArgTypeName returns the type of the argument as written in the source, e.g.: "float*".
func (k *Kernel) ArgTypeName(index uint32) (string, error) {
	defer runtime.KeepAlive(k)
	return queryInfoString(k.rt, k.argInfoFn(index, C.CL_KERNEL_ARG_TYPE_NAME))
}

func (k *Kernel) ArgTypeQualifier(index uint32) (KernelArgTypeQualifier, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[C.cl_kernel_arg_type_qualifier](k.argInfoFn(index, C.CL_KERNEL_ARG_TYPE_QUALIFIER))
	return KernelArgTypeQualifier(value), err
}

func (k *Kernel) ArgName(index uint32) (string, error) {
	defer runtime.KeepAlive(k)
	return queryInfoString(k.rt, k.argInfoFn(index, C.CL_KERNEL_ARG_NAME))
}

// workGroupInfoFn queries the kernel for the device. device can be nil if the kernel's context has only one
// device.
func (k *Kernel) workGroupInfoFn(device *Device, param C.cl_kernel_work_group_info) infoFn {
	var cDevice C.cl_device_id
	if device != nil {
		cDevice = device.cDevice
	}
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetKernelWorkGroupInfo(k.rt.api, k.cKernel, cDevice, param, size, value, sizeRet)
	}
}

// WorkGroupSize is the maximum work-group size for the kernel on the device.
func (k *Kernel) WorkGroupSize(device *Device) (int, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[C.size_t](k.workGroupInfoFn(device, C.CL_KERNEL_WORK_GROUP_SIZE))
	return int(value), err
}

// CompileWorkGroupSize returns the reqd_work_group_size attribute of the kernel, or zeros.
func (k *Kernel) CompileWorkGroupSize(device *Device) ([3]int, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[[3]C.size_t](k.workGroupInfoFn(device, C.CL_KERNEL_COMPILE_WORK_GROUP_SIZE))
	return [3]int{int(value[0]), int(value[1]), int(value[2])}, err
}

// GlobalWorkSize is the maximum global size for custom devices and built-in kernels.
func (k *Kernel) GlobalWorkSize(device *Device) ([3]int, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[[3]C.size_t](k.workGroupInfoFn(device, C.CL_KERNEL_GLOBAL_WORK_SIZE))
	return [3]int{int(value[0]), int(value[1]), int(value[2])}, err
}

// LocalMemSize used by the kernel on the device, in bytes, including the local buffer arguments set so far.
func (k *Kernel) LocalMemSize(device *Device) (uint64, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[C.cl_ulong](k.workGroupInfoFn(device, C.CL_KERNEL_LOCAL_MEM_SIZE))
	return uint64(value), err
}

// PreferredWorkGroupSizeMultiple for performance, usually the warp or wavefront size.
func (k *Kernel) PreferredWorkGroupSizeMultiple(device *Device) (int, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[C.size_t](
		k.workGroupInfoFn(device, C.CL_KERNEL_PREFERRED_WORK_GROUP_SIZE_MULTIPLE))
	return int(value), err
}

// PrivateMemSize used by each work-item, in bytes.
func (k *Kernel) PrivateMemSize(device *Device) (uint64, error) {
	defer runtime.KeepAlive(k)
	value, err := queryInfoScalar[C.cl_ulong](k.workGroupInfoFn(device, C.CL_KERNEL_PRIVATE_MEM_SIZE))
	return uint64(value), err
}

// ExecuteKernel sets the arguments of a kernel in order, the work sizes, and enqueues it.
//
// Errors are deferred: the first one is kept, and returned by EnqueueNDRange. Example:
//
//	event, err := opencl.NewExecuteKernel(kernel).
//		Arg(z).Arg(x).Arg(y).Arg(float32(2)).
//		GlobalWorkSize(n).
//		EnqueueNDRange(queue)
type ExecuteKernel struct {
	kernel   *Kernel
	argIndex uint32

	globalWorkOffsets, globalWorkSizes, localWorkSizes []int
	waitList                                           []*Event

	err error
}

// NewExecuteKernel starts the execution of kernel, with the arguments set from the first.
func NewExecuteKernel(kernel *Kernel) *ExecuteKernel {
	e := &ExecuteKernel{kernel: kernel}
	if kernel == nil {
		e.err = errors.New("ExecuteKernel: nil kernel")
	} else {
		e.err = kernel.checkLive("ExecuteKernel")
	}
	return e
}

// nextArg returns the index of the next argument, or false if the builder already failed.
func (e *ExecuteKernel) nextArg(op string) (uint32, bool) {
	if e.err != nil {
		return 0, false
	}
	if e.argIndex >= e.kernel.numArgs {
		e.err = errors.Errorf("ExecuteKernel.%s: too many args, kernel %q has %d", op, e.kernel.name,
			e.kernel.numArgs)
		return 0, false
	}
	index := e.argIndex
	e.argIndex++
	return index, true
}

// Arg sets the next argument. See Kernel.SetArg for the supported values.
func (e *ExecuteKernel) Arg(value any) *ExecuteKernel {
	if index, ok := e.nextArg("Arg"); ok {
		e.err = e.kernel.SetArg(index, value)
	}
	return e
}

// ArgLocalBuffer sets the next argument to a __local buffer of size bytes.
func (e *ExecuteKernel) ArgLocalBuffer(size int) *ExecuteKernel {
	if index, ok := e.nextArg("ArgLocalBuffer"); ok {
		e.err = e.kernel.SetArgLocalBuffer(index, size)
	}
	return e
}

// ArgSVM sets the next argument to an SVM pointer.
func (e *ExecuteKernel) ArgSVM(ptr unsafe.Pointer) *ExecuteKernel {
	if index, ok := e.nextArg("ArgSVM"); ok {
		e.err = e.kernel.SetArgSVMPointer(index, ptr)
	}
	return e
}

// ExecInfo sets execution information, see Kernel.SetExecInfo.
func (e *ExecuteKernel) ExecInfo(param KernelExecInfo, value any) *ExecuteKernel {
	if e.err == nil {
		e.err = e.kernel.SetExecInfo(param, value)
	}
	return e
}

// GlobalWorkOffset appends the offset of the next dimension.
func (e *ExecuteKernel) GlobalWorkOffset(offset int) *ExecuteKernel {
	e.globalWorkOffsets = append(e.globalWorkOffsets, offset)
	return e
}

// GlobalWorkOffsets sets the offsets of all dimensions. It's an error if they were already set.
func (e *ExecuteKernel) GlobalWorkOffsets(offsets ...int) *ExecuteKernel {
	e.globalWorkOffsets = e.setAll("GlobalWorkOffsets", e.globalWorkOffsets, offsets)
	return e
}

// GlobalWorkSize appends the global size of the next dimension.
func (e *ExecuteKernel) GlobalWorkSize(size int) *ExecuteKernel {
	e.globalWorkSizes = append(e.globalWorkSizes, size)
	return e
}

// GlobalWorkSizes sets the global sizes of all dimensions. It's an error if they were already set.
func (e *ExecuteKernel) GlobalWorkSizes(sizes ...int) *ExecuteKernel {
	e.globalWorkSizes = e.setAll("GlobalWorkSizes", e.globalWorkSizes, sizes)
	return e
}

// LocalWorkSize appends the work-group size of the next dimension.
func (e *ExecuteKernel) LocalWorkSize(size int) *ExecuteKernel {
	e.localWorkSizes = append(e.localWorkSizes, size)
	return e
}

// LocalWorkSizes sets the work-group sizes of all dimensions. It's an error if they were already set.
func (e *ExecuteKernel) LocalWorkSizes(sizes ...int) *ExecuteKernel {
	e.localWorkSizes = e.setAll("LocalWorkSizes", e.localWorkSizes, sizes)
	return e
}

func (e *ExecuteKernel) setAll(op string, current, values []int) []int {
	if len(current) != 0 {
		if e.err == nil {
			e.err = errors.Errorf("ExecuteKernel.%s: already set", op)
		}
		return current
	}
	return append([]int(nil), values...)
}

// WaitEvent adds an event the kernel execution waits for.
func (e *ExecuteKernel) WaitEvent(event *Event) *ExecuteKernel {
	e.waitList = append(e.waitList, event)
	return e
}

// WaitEvents adds events the kernel execution waits for.
func (e *ExecuteKernel) WaitEvents(events ...*Event) *ExecuteKernel {
	e.waitList = append(e.waitList, events...)
	return e
}

// validate returns the first error of the builder, or checks the arguments and work sizes are consistent.
func (e *ExecuteKernel) validate() error {
	if e.err != nil {
		return e.err
	}
	if e.argIndex != e.kernel.numArgs {
		return errors.Errorf("ExecuteKernel: too few args, %d set but kernel %q has %d", e.argIndex, e.kernel.name,
			e.kernel.numArgs)
	}
	workDim := len(e.globalWorkSizes)
	if workDim == 0 {
		return errors.New("ExecuteKernel: no global work sizes")
	}
	if workDim > 3 {
		return errors.Errorf("ExecuteKernel: too many global work sizes (%d), at most 3 dimensions", workDim)
	}
	if n := len(e.globalWorkOffsets); n != 0 && n != workDim {
		return errors.Errorf("ExecuteKernel: %d global work offsets != %d global work sizes", n, workDim)
	}
	if n := len(e.localWorkSizes); n != 0 && n != workDim {
		return errors.Errorf("ExecuteKernel: %d local work sizes != %d global work sizes", n, workDim)
	}
	return nil
}

// EnqueueNDRange validates the arguments and enqueues the kernel on the queue. It returns the first error of the
// builder, if any.
func (e *ExecuteKernel) EnqueueNDRange(queue *CommandQueue) (*Event, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	return queue.EnqueueNDRangeKernel(e.kernel, e.globalWorkOffsets, e.globalWorkSizes, e.localWorkSizes,
		e.waitList...)
}
