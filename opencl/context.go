package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"encoding/binary"
	"runtime"
	"slices"
	"sync"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

// DefaultProgramCacheSize is the number of programs built from source kept by each Context.
const DefaultProgramCacheSize = 32

// Context is an OpenCL context for a set of devices, and the owner of the objects created through its methods:
// sub-devices, command queues, programs and their kernels, and memory objects, samplers and pipes created
// with the Context methods (or CreateOwnedBuffer).
//
// Owned objects are released together with the context, in reverse order of creation, by Context.Release.
// Objects created with the package functions (CreateCommandQueue, CreateBuffer, CreateProgramWithSource, ...)
// are owned by the caller instead.
//
// A Context is safe for concurrent use, but the objects it owns are not necessarily so.
type Context struct {
	cContext C.cl_context
	rt       *Runtime
	devices  []*Device

	mu         sync.Mutex
	released   bool
	subDevices []*SubDevice
	queues     []*CommandQueue
	subQueues  []*CommandQueue
	kernels    map[string]*Kernel

	// owned holds everything else the context releases, in creation order.
	owned []interface{ Release() error }

	// programCache holds programs built from source, keyed by programCacheKey. Evicted programs are released.
	programCache *lru.Cache
}

// NewContext creates a context for the given devices, which must all belong to the same platform.
//
// The optional properties are key/value pairs (e.g.: ContextPlatform, platform handle). The terminating 0 is
// added automatically.
func NewContext(devices []*Device, properties ...int64) (*Context, error) {
	if len(devices) == 0 {
		return nil, errors.New("NewContext: at least one device is required")
	}
	if len(properties)%2 != 0 {
		return nil, errors.Errorf("NewContext: properties must be key/value pairs, got %d values", len(properties))
	}
	rt := devices[0].rt
	scratch := rt.arenaPools.Get((len(devices) + len(properties) + 1) * 8)
	defer rt.arenaPools.Return(scratch)

	cDevices := arenaAllocSlice[C.cl_device_id](scratch, len(devices))
	for ii, device := range devices {
		cDevices[ii] = device.cDevice
	}
	var cProps *C.cl_context_properties
	if len(properties) > 0 {
		props := arenaAllocSlice[C.cl_context_properties](scratch, len(properties)+1)
		for ii, prop := range properties {
			props[ii] = C.cl_context_properties(prop)
		}
		cProps = &props[0]
	}

	var code C.cl_int
	cContext := C.call_clCreateContext(rt.api, cProps, C.cl_uint(len(devices)), &cDevices[0], &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessagef(err, "failed to create OpenCL context for devices %v", devices)
	}
	ctx := &Context{
		cContext: cContext,
		rt:       rt,
		devices:  slices.Clone(devices),
		kernels:  make(map[string]*Kernel),
	}
	ctx.programCache, _ = lru.NewWithEvict(DefaultProgramCacheSize, func(_, value interface{}) {
		program := value.(*Program)
		if err := program.Release(); err != nil {
			klog.Warningf("failed to release program evicted from the cache: %+v", err)
		}
	})
	runtime.SetFinalizer(ctx, func(ctx *Context) {
		if err := ctx.Release(); err != nil {
			klog.Errorf("Context.Release failed during garbage collection: %+v", err)
		}
	})
	klog.V(1).Infof("created OpenCL context for %d device(s): %v", len(devices), devices)
	return ctx, nil
}

// NewContextFromDevice creates a context for a single device.
func NewContextFromDevice(device *Device) (*Context, error) {
	return NewContext([]*Device{device})
}

// Handle returns the raw cl_context.
func (ctx *Context) Handle() Handle {
	return Handle(unsafe.Pointer(ctx.cContext))
}

// Runtime the context belongs to.
func (ctx *Context) Runtime() *Runtime {
	return ctx.rt
}

// Devices the context was created with.
func (ctx *Context) Devices() []*Device {
	return ctx.devices
}

// IsReleased returns whether the context has been released.
func (ctx *Context) IsReleased() bool {
	if ctx == nil {
		return true
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.released
}

func (ctx *Context) checkLive(op string) error {
	if ctx.IsReleased() {
		return errors.Errorf("%s: context already released", op)
	}
	return nil
}

// Release the context and every object it owns: kernels, programs, then the remaining owned objects in reverse
// order of creation, queues and sub-devices. It returns all the errors found, combined.
//
// It's safe to call more than once, or on a nil Context.
func (ctx *Context) Release() error {
	if ctx == nil {
		return nil
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.released {
		return nil
	}
	ctx.released = true
	defer runtime.KeepAlive(ctx)

	var err error
	for _, kernel := range ctx.kernels {
		err = multierr.Append(err, kernel.Release())
	}
	ctx.kernels = nil
	ctx.programCache.Purge()
	for _, obj := range slices.Backward(ctx.owned) {
		err = multierr.Append(err, obj.Release())
	}
	ctx.owned = nil
	for _, queue := range slices.Backward(ctx.subQueues) {
		err = multierr.Append(err, queue.Release())
	}
	for _, queue := range slices.Backward(ctx.queues) {
		err = multierr.Append(err, queue.Release())
	}
	ctx.subQueues, ctx.queues = nil, nil
	for _, subDevice := range slices.Backward(ctx.subDevices) {
		err = multierr.Append(err, subDevice.Release())
	}
	ctx.subDevices = nil
	err = multierr.Append(err, toError(C.call_clReleaseContext(ctx.rt.api, ctx.cContext)))
	ctx.cContext = nil
	if err != nil {
		return errors.WithMessage(err, "failed to release OpenCL context")
	}
	return nil
}

// own registers obj to be released with the context.
func (ctx *Context) own(obj interface{ Release() error }) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.owned = append(ctx.owned, obj)
}

// CreateSubDevices partitions the device at index of the context devices, and keeps the sub-devices.
// Returns the number of sub-devices created. See SubDevices.
func (ctx *Context) CreateSubDevices(index int, properties []int64) (int, error) {
	if err := ctx.checkLive("Context.CreateSubDevices"); err != nil {
		return 0, err
	}
	if index < 0 || index >= len(ctx.devices) {
		return 0, errors.Errorf("Context.CreateSubDevices: device index %d out of range, context has %d devices",
			index, len(ctx.devices))
	}
	subDevices, err := ctx.devices[index].CreateSubDevices(properties)
	if err != nil {
		return 0, err
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.subDevices = append(ctx.subDevices, subDevices...)
	return len(subDevices), nil
}

// SubDevices created with CreateSubDevices.
func (ctx *Context) SubDevices() []*SubDevice {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return slices.Clone(ctx.subDevices)
}

// nextQueueDevice returns the device for the next queue: queues are created for the devices (or sub-devices) in
// order, one per call.
func (ctx *Context) nextQueueDevice(forSubDevices bool) (*Device, error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if forSubDevices {
		if len(ctx.subQueues) >= len(ctx.subDevices) {
			return nil, errors.Errorf("all %d sub-devices already have a command queue", len(ctx.subDevices))
		}
		return ctx.subDevices[len(ctx.subQueues)].Device, nil
	}
	if len(ctx.queues) >= len(ctx.devices) {
		return nil, errors.Errorf("all %d devices already have a command queue", len(ctx.devices))
	}
	return ctx.devices[len(ctx.queues)], nil
}

func (ctx *Context) addQueue(queue *CommandQueue, forSubDevices bool) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if forSubDevices {
		ctx.subQueues = append(ctx.subQueues, queue)
	} else {
		ctx.queues = append(ctx.queues, queue)
	}
}

func (ctx *Context) createQueue(forSubDevices bool, create func(device *Device) (*CommandQueue, error)) (
	*CommandQueue, error) {
	if err := ctx.checkLive("Context.CreateCommandQueue"); err != nil {
		return nil, err
	}
	device, err := ctx.nextQueueDevice(forSubDevices)
	if err != nil {
		return nil, err
	}
	queue, err := create(device)
	if err != nil {
		return nil, err
	}
	ctx.addQueue(queue, forSubDevices)
	return queue, nil
}

// CreateCommandQueue creates a command queue for the next context device without one: the first call creates
// the queue for the first device, the second call for the second device, and so on.
// The queue is owned by the context.
func (ctx *Context) CreateCommandQueue(properties CommandQueueProperties) (*CommandQueue, error) {
	return ctx.createQueue(false, func(device *Device) (*CommandQueue, error) {
		return CreateCommandQueue(ctx, device, properties)
	})
}

// CreateCommandQueueWithProperties is like CreateCommandQueue, but also sets the queue size (for on-device
// queues). A size of 0 uses the device default.
func (ctx *Context) CreateCommandQueueWithProperties(properties CommandQueueProperties, size uint32) (
	*CommandQueue, error) {
	return ctx.createQueue(false, func(device *Device) (*CommandQueue, error) {
		return CreateCommandQueueWithProperties(ctx, device, properties, size)
	})
}

// CreateSubDeviceCommandQueue creates a command queue for the next sub-device (see CreateSubDevices) without one.
func (ctx *Context) CreateSubDeviceCommandQueue(properties CommandQueueProperties) (*CommandQueue, error) {
	return ctx.createQueue(true, func(device *Device) (*CommandQueue, error) {
		return CreateCommandQueue(ctx, device, properties)
	})
}

// CreateSubDeviceCommandQueueWithProperties is like CreateSubDeviceCommandQueue, also setting the queue size.
func (ctx *Context) CreateSubDeviceCommandQueueWithProperties(properties CommandQueueProperties, size uint32) (
	*CommandQueue, error) {
	return ctx.createQueue(true, func(device *Device) (*CommandQueue, error) {
		return CreateCommandQueueWithProperties(ctx, device, properties, size)
	})
}

// Queues returns the command queues created for the context devices, in device order.
func (ctx *Context) Queues() []*CommandQueue {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return slices.Clone(ctx.queues)
}

// SubQueues returns the command queues created for the sub-devices, in sub-device order.
func (ctx *Context) SubQueues() []*CommandQueue {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return slices.Clone(ctx.subQueues)
}

// DefaultQueue returns the queue of the first device, or nil if CreateCommandQueue hasn't been called yet.
func (ctx *Context) DefaultQueue() *CommandQueue {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if len(ctx.queues) == 0 {
		return nil
	}
	return ctx.queues[0]
}

// programCacheKey hashes everything that determines the program built from source.
func (ctx *Context) programCacheKey(source, options string) uint64 {
	digest := xxhash.New()
	_, _ = digest.WriteString(source)
	_, _ = digest.Write([]byte{0})
	_, _ = digest.WriteString(options)
	var buf [8]byte
	for _, device := range ctx.devices {
		binary.LittleEndian.PutUint64(buf[:], uint64(device.Handle()))
		_, _ = digest.Write(buf[:])
	}
	return digest.Sum64()
}

// BuildProgramFromSource builds the OpenCL C source for all the context devices, and registers every kernel in
// it by its function name (see Kernel). A kernel with the same name as a previously registered one replaces it.
//
// Programs are cached by source, options and devices: building the same program again returns the cached one,
// with its kernels registered again. The program is owned by the context and must not be released by the caller.
func (ctx *Context) BuildProgramFromSource(source, options string) (*Program, error) {
	if err := ctx.checkLive("Context.BuildProgramFromSource"); err != nil {
		return nil, err
	}
	key := ctx.programCacheKey(source, options)
	if cached, found := ctx.programCache.Get(key); found {
		klog.V(2).Infof("program cache hit (key=%#x)", key)
		program := cached.(*Program)
		if err := ctx.registerKernels(program); err != nil {
			return nil, err
		}
		return program, nil
	}
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
	if previous, found, _ := ctx.programCache.PeekOrAdd(key, program); found {
		// Another call built the same program concurrently: keep the cached one.
		klog.V(2).Infof("program built concurrently, using the cached one (key=%#x)", key)
		if err := program.Release(); err != nil {
			klog.Warningf("failed to release duplicate program: %+v", err)
		}
		program = previous.(*Program)
	}
	if err := ctx.registerKernels(program); err != nil {
		return nil, err
	}
	return program, nil
}

// BuildProgramFromBinary is like BuildProgramFromSource, for binaries previously obtained from Program.Binaries,
// one per context device. Programs built from binaries are not cached.
func (ctx *Context) BuildProgramFromBinary(binaries [][]byte, options string) (*Program, error) {
	if err := ctx.checkLive("Context.BuildProgramFromBinary"); err != nil {
		return nil, err
	}
	program, err := CreateProgramWithBinary(ctx, ctx.devices, binaries)
	if err != nil {
		return nil, err
	}
	if err := ctx.buildAndRegister(program, options); err != nil {
		return nil, err
	}
	ctx.own(program)
	return program, nil
}

// buildAndRegister builds the program and registers its kernels. On failure the program is released.
func (ctx *Context) buildAndRegister(program *Program, options string) error {
	if err := program.Build(ctx.devices, options); err != nil {
		if err2 := program.Release(); err2 != nil {
			klog.Warningf("failed to release program after failed build: %+v", err2)
		}
		return err
	}
	if err := ctx.registerKernels(program); err != nil {
		if err2 := program.Release(); err2 != nil {
			klog.Warningf("failed to release program after failing to create its kernels: %+v", err2)
		}
		return err
	}
	return nil
}

// registerKernels creates all the kernels of the program and registers them by name, replacing (and releasing)
// kernels previously registered with the same name.
func (ctx *Context) registerKernels(program *Program) error {
	kernels, err := program.CreateKernels()
	if err != nil {
		return err
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	for _, kernel := range kernels {
		if previous, found := ctx.kernels[kernel.name]; found {
			if err := previous.Release(); err != nil {
				klog.Warningf("failed to release replaced kernel %q: %+v", kernel.name, err)
			}
		}
		ctx.kernels[kernel.name] = kernel
	}
	klog.V(1).Infof("registered %d kernel(s)", len(kernels))
	return nil
}

// Kernel returns the kernel registered with the given function name, or nil if there is none.
func (ctx *Context) Kernel(name string) *Kernel {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.kernels[name]
}

// KernelNames returns the names of the registered kernels, sorted.
func (ctx *Context) KernelNames() []string {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	names := make([]string, 0, len(ctx.kernels))
	for name := range ctx.kernels {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CreateOwnedBuffer is like CreateBuffer, but the buffer is owned by the context.
func CreateOwnedBuffer[T any](ctx *Context, flags MemFlags, count int, host []T) (*Buffer[T], error) {
	if err := ctx.checkLive("CreateOwnedBuffer"); err != nil {
		return nil, err
	}
	buffer, err := CreateBuffer(ctx, flags, count, host)
	if err != nil {
		return nil, err
	}
	ctx.own(buffer)
	return buffer, nil
}

// CreateImage creates an image owned by the context. See the package function CreateImage.
func (ctx *Context) CreateImage(flags MemFlags, format ImageFormat, desc ImageDesc, host []byte) (*Image, error) {
	if err := ctx.checkLive("Context.CreateImage"); err != nil {
		return nil, err
	}
	image, err := CreateImage(ctx, flags, format, desc, host)
	if err != nil {
		return nil, err
	}
	ctx.own(image)
	return image, nil
}

// CreateSampler creates a sampler owned by the context.
func (ctx *Context) CreateSampler(normalizedCoords bool, addressing AddressingMode, filter FilterMode) (
	*Sampler, error) {
	if err := ctx.checkLive("Context.CreateSampler"); err != nil {
		return nil, err
	}
	sampler, err := CreateSampler(ctx, normalizedCoords, addressing, filter)
	if err != nil {
		return nil, err
	}
	ctx.own(sampler)
	return sampler, nil
}

// CreateSamplerWithProperties creates a sampler owned by the context, from a list of key/value properties.
func (ctx *Context) CreateSamplerWithProperties(properties ...uint64) (*Sampler, error) {
	if err := ctx.checkLive("Context.CreateSamplerWithProperties"); err != nil {
		return nil, err
	}
	sampler, err := CreateSamplerWithProperties(ctx, properties...)
	if err != nil {
		return nil, err
	}
	ctx.own(sampler)
	return sampler, nil
}

// CreatePipe creates a pipe owned by the context.
func (ctx *Context) CreatePipe(flags MemFlags, packetSize, maxPackets uint32) (*Pipe, error) {
	if err := ctx.checkLive("Context.CreatePipe"); err != nil {
		return nil, err
	}
	pipe, err := CreatePipe(ctx, flags, packetSize, maxPackets)
	if err != nil {
		return nil, err
	}
	ctx.own(pipe)
	return pipe, nil
}

// SupportedImageFormats returns the image formats supported by the context for the given flags and image type.
func (ctx *Context) SupportedImageFormats(flags MemFlags, imageType MemObjectType) ([]ImageFormat, error) {
	if err := ctx.checkLive("Context.SupportedImageFormats"); err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(ctx)
	var count C.cl_uint
	err := toError(C.call_clGetSupportedImageFormats(ctx.rt.api, ctx.cContext, C.cl_mem_flags(flags),
		C.cl_mem_object_type(imageType), 0, nil, &count))
	if err != nil || count == 0 {
		return nil, err
	}
	cFormats := make([]C.cl_image_format, count)
	err = toError(C.call_clGetSupportedImageFormats(ctx.rt.api, ctx.cContext, C.cl_mem_flags(flags),
		C.cl_mem_object_type(imageType), count, &cFormats[0], nil))
	if err != nil {
		return nil, err
	}
	formats := make([]ImageFormat, count)
	for ii, f := range cFormats {
		formats[ii] = imageFormatFromC(f)
	}
	return formats, nil
}

// SetDefaultDeviceCommandQueue replaces the default on-device queue of the device. OpenCL 2.1.
func (ctx *Context) SetDefaultDeviceCommandQueue(device *Device, queue *CommandQueue) error {
	if err := ctx.checkLive("Context.SetDefaultDeviceCommandQueue"); err != nil {
		return err
	}
	defer runtime.KeepAlive(ctx)
	defer runtime.KeepAlive(queue)
	return toError(C.call_clSetDefaultDeviceCommandQueue(ctx.rt.api, ctx.cContext, device.cDevice, queue.cQueue))
}

func (ctx *Context) infoFn(param C.cl_context_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetContextInfo(ctx.rt.api, ctx.cContext, param, size, value, sizeRet)
	}
}

func (ctx *Context) ReferenceCount() (uint32, error) {
	defer runtime.KeepAlive(ctx)
	value, err := queryInfoScalar[C.cl_uint](ctx.infoFn(C.CL_CONTEXT_REFERENCE_COUNT))
	return uint32(value), err
}

// NumDevices as reported by OpenCL.
func (ctx *Context) NumDevices() (uint32, error) {
	defer runtime.KeepAlive(ctx)
	value, err := queryInfoScalar[C.cl_uint](ctx.infoFn(C.CL_CONTEXT_NUM_DEVICES))
	return uint32(value), err
}

// Properties the context was created with, including the terminating 0. Empty if none were given.
func (ctx *Context) Properties() ([]int64, error) {
	defer runtime.KeepAlive(ctx)
	values, err := queryInfoSlice[C.cl_context_properties](ctx.rt, ctx.infoFn(C.CL_CONTEXT_PROPERTIES))
	if err != nil {
		return nil, err
	}
	props := make([]int64, len(values))
	for ii, v := range values {
		props[ii] = int64(v)
	}
	return props, nil
}
