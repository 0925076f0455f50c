package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// CommandQueue is an OpenCL command queue on a device.
//
// The enqueue methods return an Event for the command, which the caller must release (Event.Release or
// Event.WaitAndRelease). Blocking calls return after the command completes, and their event is already complete.
type CommandQueue struct {
	cQueue C.cl_command_queue
	rt     *Runtime
	device *Device
}

// CreateCommandQueue creates a command queue on a device of the context, using the OpenCL 1.2 API.
// The caller owns the queue. See also Context.CreateCommandQueue.
func CreateCommandQueue(ctx *Context, device *Device, properties CommandQueueProperties) (*CommandQueue, error) {
	defer runtime.KeepAlive(ctx)
	var code C.cl_int
	cQueue := C.call_clCreateCommandQueue(ctx.rt.api, ctx.cContext, device.cDevice,
		C.cl_command_queue_properties(properties), &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessagef(err, "failed to create command queue on %s", device)
	}
	return newCommandQueue(ctx.rt, cQueue, device), nil
}

// CreateCommandQueueWithProperties creates a command queue using the OpenCL 2.0 API, which also allows setting
// the size of on-device queues (0 uses the default).
//
// If the runtime doesn't support OpenCL 2.0, and no size is given, it falls back to CreateCommandQueue.
func CreateCommandQueueWithProperties(ctx *Context, device *Device, properties CommandQueueProperties,
	size uint32) (*CommandQueue, error) {
	defer runtime.KeepAlive(ctx)
	scratch := ctx.rt.arenaPools.Get(0)
	defer ctx.rt.arenaPools.Return(scratch)
	props := arenaAllocSlice[C.cl_queue_properties](scratch, 5)
	n := 0
	if properties != 0 {
		props[n], props[n+1] = C.CL_QUEUE_PROPERTIES, C.cl_queue_properties(properties)
		n += 2
	}
	if size != 0 {
		props[n], props[n+1] = C.CL_QUEUE_SIZE, C.cl_queue_properties(size)
		n += 2
	}
	props[n] = 0

	var code C.cl_int
	cQueue := C.call_clCreateCommandQueueWithProperties(ctx.rt.api, ctx.cContext, device.cDevice, &props[0], &code)
	if ErrorCode(code) == ErrFunctionNotAvailable && size == 0 {
		klog.V(1).Infof("clCreateCommandQueueWithProperties not available, using clCreateCommandQueue")
		return CreateCommandQueue(ctx, device, properties)
	}
	if err := toError(code); err != nil {
		return nil, errors.WithMessagef(err, "failed to create command queue (properties=%#x, size=%d) on %s",
			uint64(properties), size, device)
	}
	return newCommandQueue(ctx.rt, cQueue, device), nil
}

func newCommandQueue(rt *Runtime, cQueue C.cl_command_queue, device *Device) *CommandQueue {
	q := &CommandQueue{cQueue: cQueue, rt: rt, device: device}
	runtime.SetFinalizer(q, func(q *CommandQueue) {
		if err := q.Release(); err != nil {
			klog.Errorf("CommandQueue.Release failed during garbage collection: %+v", err)
		}
	})
	return q
}

// Handle returns the raw cl_command_queue.
func (q *CommandQueue) Handle() Handle {
	return Handle(unsafe.Pointer(q.cQueue))
}

// Device the queue was created for.
func (q *CommandQueue) Device() *Device {
	return q.device
}

// IsReleased returns whether the queue has been released.
func (q *CommandQueue) IsReleased() bool {
	return q == nil || q.cQueue == nil
}

// Release the queue. It's safe to call more than once, or on a nil CommandQueue.
func (q *CommandQueue) Release() error {
	if q.IsReleased() {
		return nil
	}
	defer runtime.KeepAlive(q)
	err := toError(C.call_clReleaseCommandQueue(q.rt.api, q.cQueue))
	q.cQueue = nil
	return err
}

func (q *CommandQueue) checkLive(op string) error {
	if q.IsReleased() {
		return errors.Errorf("%s: command queue already released", op)
	}
	return nil
}

// Flush issues all the queued commands to the device.
func (q *CommandQueue) Flush() error {
	if err := q.checkLive("CommandQueue.Flush"); err != nil {
		return err
	}
	defer runtime.KeepAlive(q)
	return toError(C.call_clFlush(q.rt.api, q.cQueue))
}

// Finish blocks until all the queued commands have completed.
func (q *CommandQueue) Finish() error {
	if err := q.checkLive("CommandQueue.Finish"); err != nil {
		return err
	}
	defer runtime.KeepAlive(q)
	return toError(C.call_clFinish(q.rt.api, q.cQueue))
}

func (q *CommandQueue) infoFn(param C.cl_command_queue_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetCommandQueueInfo(q.rt.api, q.cQueue, param, size, value, sizeRet)
	}
}

// Context returns the handle of the queue's context.
func (q *CommandQueue) Context() (Handle, error) {
	defer runtime.KeepAlive(q)
	value, err := queryInfoScalar[C.cl_context](q.infoFn(C.CL_QUEUE_CONTEXT))
	return Handle(unsafe.Pointer(value)), err
}

func (q *CommandQueue) ReferenceCount() (uint32, error) {
	defer runtime.KeepAlive(q)
	value, err := queryInfoScalar[C.cl_uint](q.infoFn(C.CL_QUEUE_REFERENCE_COUNT))
	return uint32(value), err
}

func (q *CommandQueue) Properties() (CommandQueueProperties, error) {
	defer runtime.KeepAlive(q)
	value, err := queryInfoScalar[C.cl_command_queue_properties](q.infoFn(C.CL_QUEUE_PROPERTIES))
	return CommandQueueProperties(value), err
}

// Size of an on-device queue. OpenCL 2.0.
func (q *CommandQueue) Size() (uint32, error) {
	defer runtime.KeepAlive(q)
	value, err := queryInfoScalar[C.cl_uint](q.infoFn(C.CL_QUEUE_SIZE))
	return uint32(value), err
}

// DeviceDefault returns the handle of the current default on-device queue of the device. OpenCL 2.1.
func (q *CommandQueue) DeviceDefault() (Handle, error) {
	defer runtime.KeepAlive(q)
	value, err := queryInfoScalar[C.cl_command_queue](q.infoFn(C.CL_QUEUE_DEVICE_DEFAULT))
	return Handle(unsafe.Pointer(value)), err
}

// PropertiesArray returns the properties given to CreateCommandQueueWithProperties. OpenCL 3.0.
func (q *CommandQueue) PropertiesArray() ([]uint64, error) {
	defer runtime.KeepAlive(q)
	values, err := queryInfoSlice[C.cl_queue_properties](q.rt, q.infoFn(C.CL_QUEUE_PROPERTIES_ARRAY))
	if err != nil {
		return nil, err
	}
	props := make([]uint64, len(values))
	for ii, v := range values {
		props[ii] = uint64(v)
	}
	return props, nil
}

// enqueueFn issues one enqueue call, with the wait list already converted. Extra C arguments can be allocated
// from scratch.
type enqueueFn func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int

// enqueueScratchSize is the arena space reserved for the fixed size arguments of an enqueue call (origins,
// regions, work sizes, patterns up to 128 bytes and the returned event).
const enqueueScratchSize = 512

// enqueue runs the call and wraps the resulting event. If pinner is not nil, it holds the host memory used by
// the command, and is handed to the event (or unpinned if the call fails).
func (q *CommandQueue) enqueue(op string, waitList []*Event, pinner *runtime.Pinner, call enqueueFn) (*Event, error) {
	return q.enqueueWithScratch(op, waitList, pinner, 0, call)
}

// enqueueWithScratch is like enqueue, for calls that allocate extraScratch bytes of variable size arguments.
func (q *CommandQueue) enqueueWithScratch(op string, waitList []*Event, pinner *runtime.Pinner, extraScratch int,
	call enqueueFn) (*Event, error) {
	if err := q.checkLive(op); err != nil {
		if pinner != nil {
			pinner.Unpin()
		}
		return nil, err
	}
	defer runtime.KeepAlive(q)
	defer runtime.KeepAlive(waitList)
	scratch := q.rt.arenaPools.Get(enqueueScratchSize + 8*len(waitList) + extraScratch)
	defer q.rt.arenaPools.Return(scratch)
	numEvents, cWaitEvents := cWaitList(scratch, waitList)
	cEvent := arenaAlloc[C.cl_event](scratch)
	if err := toError(call(scratch, numEvents, cWaitEvents, cEvent)); err != nil {
		if pinner != nil {
			pinner.Unpin()
		}
		return nil, errors.WithMessagef(err, "%s failed", op)
	}
	return newEvent(q.rt, *cEvent, pinner), nil
}

// pinIfNonBlocking pins the host memory for non-blocking commands. It returns nil for blocking commands, or for
// empty data.
func pinIfNonBlocking[T any](blocking bool, data []T) *runtime.Pinner {
	if blocking || len(data) == 0 {
		return nil
	}
	pinner := &runtime.Pinner{}
	pinner.Pin(&data[0])
	return pinner
}

func cBool(value bool) C.cl_bool {
	if value {
		return C.CL_TRUE
	}
	return C.CL_FALSE
}

func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// slicePointer returns the address of the first element of data, or nil if it's empty.
func slicePointer[T any](data []T) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Pointer(&data[0])
}

// cSizes3 copies an origin or region to a size_t[3] in the arena.
func cSizes3(a *arena, values [3]int) *C.size_t {
	sizes := arenaAllocSlice[C.size_t](a, 3)
	for ii, v := range values {
		sizes[ii] = C.size_t(v)
	}
	return &sizes[0]
}

// EnqueueReadBuffer reads len(dst) elements from the buffer, starting at element offset, into dst.
//
// If not blocking, dst must not be used until the returned event completes.
func EnqueueReadBuffer[T any](q *CommandQueue, buffer *Buffer[T], blocking bool, offset int, dst []T,
	waitList ...*Event) (*Event, error) {
	if err := buffer.checkRange("EnqueueReadBuffer", offset, len(dst)); err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(buffer)
	elemSize := sizeOf[T]()
	return q.enqueue("EnqueueReadBuffer", waitList, pinIfNonBlocking(blocking, dst),
		func(_ *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueReadBuffer(q.rt.api, q.cQueue, buffer.cMem, cBool(blocking),
				C.size_t(offset*elemSize), C.size_t(len(dst)*elemSize), slicePointer(dst), numEvents, waitList, event)
		})
}

// EnqueueWriteBuffer writes src to the buffer, starting at element offset.
//
// If not blocking, src must not be changed until the returned event completes.
func EnqueueWriteBuffer[T any](q *CommandQueue, buffer *Buffer[T], blocking bool, offset int, src []T,
	waitList ...*Event) (*Event, error) {
	if err := buffer.checkRange("EnqueueWriteBuffer", offset, len(src)); err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(buffer)
	elemSize := sizeOf[T]()
	return q.enqueue("EnqueueWriteBuffer", waitList, pinIfNonBlocking(blocking, src),
		func(_ *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueWriteBuffer(q.rt.api, q.cQueue, buffer.cMem, cBool(blocking),
				C.size_t(offset*elemSize), C.size_t(len(src)*elemSize), slicePointer(src), numEvents, waitList, event)
		})
}

// EnqueueFillBuffer fills count elements of the buffer, starting at element offset, with pattern.
func EnqueueFillBuffer[T any](q *CommandQueue, buffer *Buffer[T], pattern T, offset, count int,
	waitList ...*Event) (*Event, error) {
	if err := buffer.checkRange("EnqueueFillBuffer", offset, count); err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(buffer)
	elemSize := sizeOf[T]()
	return q.enqueueWithScratch("EnqueueFillBuffer", waitList, nil, elemSize,
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			// The pattern is copied by OpenCL before the call returns.
			cPattern := arenaAlloc[T](scratch)
			*cPattern = pattern
			return C.call_clEnqueueFillBuffer(q.rt.api, q.cQueue, buffer.cMem, unsafe.Pointer(cPattern),
				C.size_t(elemSize), C.size_t(offset*elemSize), C.size_t(count*elemSize), numEvents, waitList, event)
		})
}

// EnqueueCopyBuffer copies count elements from src (starting at srcOffset) to dst (starting at dstOffset).
func EnqueueCopyBuffer[T any](q *CommandQueue, src, dst *Buffer[T], srcOffset, dstOffset, count int,
	waitList ...*Event) (*Event, error) {
	if err := src.checkRange("EnqueueCopyBuffer(src)", srcOffset, count); err != nil {
		return nil, err
	}
	if err := dst.checkRange("EnqueueCopyBuffer(dst)", dstOffset, count); err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(src)
	defer runtime.KeepAlive(dst)
	elemSize := sizeOf[T]()
	return q.enqueue("EnqueueCopyBuffer", waitList, nil,
		func(_ *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueCopyBuffer(q.rt.api, q.cQueue, src.cMem, dst.cMem, C.size_t(srcOffset*elemSize),
				C.size_t(dstOffset*elemSize), C.size_t(count*elemSize), numEvents, waitList, event)
		})
}

// BufferRect describes a 2D or 3D region of a buffer and of host memory. Origins, region width and pitches are
// in bytes; region height and depth in rows and slices. Zero pitches are computed by OpenCL from the region.
type BufferRect struct {
	BufferOrigin, HostOrigin, Region [3]int
	BufferRowPitch, BufferSlicePitch int
	HostRowPitch, HostSlicePitch     int
}

// EnqueueReadBufferRect reads a rectangular region of the buffer into host.
func EnqueueReadBufferRect[T any](q *CommandQueue, buffer *Buffer[T], blocking bool, rect BufferRect, host []T,
	waitList ...*Event) (*Event, error) {
	defer runtime.KeepAlive(buffer)
	return q.enqueue("EnqueueReadBufferRect", waitList, pinIfNonBlocking(blocking, host),
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueReadBufferRect(q.rt.api, q.cQueue, buffer.cMem, cBool(blocking),
				cSizes3(scratch, rect.BufferOrigin), cSizes3(scratch, rect.HostOrigin), cSizes3(scratch, rect.Region),
				C.size_t(rect.BufferRowPitch), C.size_t(rect.BufferSlicePitch),
				C.size_t(rect.HostRowPitch), C.size_t(rect.HostSlicePitch),
				slicePointer(host), numEvents, waitList, event)
		})
}

// EnqueueWriteBufferRect writes a rectangular region of host into the buffer.
func EnqueueWriteBufferRect[T any](q *CommandQueue, buffer *Buffer[T], blocking bool, rect BufferRect, host []T,
	waitList ...*Event) (*Event, error) {
	defer runtime.KeepAlive(buffer)
	return q.enqueue("EnqueueWriteBufferRect", waitList, pinIfNonBlocking(blocking, host),
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueWriteBufferRect(q.rt.api, q.cQueue, buffer.cMem, cBool(blocking),
				cSizes3(scratch, rect.BufferOrigin), cSizes3(scratch, rect.HostOrigin), cSizes3(scratch, rect.Region),
				C.size_t(rect.BufferRowPitch), C.size_t(rect.BufferSlicePitch),
				C.size_t(rect.HostRowPitch), C.size_t(rect.HostSlicePitch),
				slicePointer(host), numEvents, waitList, event)
		})
}

// EnqueueCopyBufferRect copies a rectangular region between buffers. In rect, BufferOrigin and the buffer pitches
// refer to src, HostOrigin and the host pitches to dst.
func (q *CommandQueue) EnqueueCopyBufferRect(src, dst MemObject, rect BufferRect, waitList ...*Event) (
	*Event, error) {
	defer runtime.KeepAlive(src)
	defer runtime.KeepAlive(dst)
	return q.enqueue("EnqueueCopyBufferRect", waitList, nil,
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueCopyBufferRect(q.rt.api, q.cQueue, src.memHandle(), dst.memHandle(),
				cSizes3(scratch, rect.BufferOrigin), cSizes3(scratch, rect.HostOrigin), cSizes3(scratch, rect.Region),
				C.size_t(rect.BufferRowPitch), C.size_t(rect.BufferSlicePitch),
				C.size_t(rect.HostRowPitch), C.size_t(rect.HostSlicePitch), numEvents, waitList, event)
		})
}

// EnqueueReadImage reads a region of the image into dst. Zero pitches mean tightly packed rows and slices.
func (q *CommandQueue) EnqueueReadImage(image *Image, blocking bool, origin, region [3]int,
	rowPitch, slicePitch int, dst []byte, waitList ...*Event) (*Event, error) {
	defer runtime.KeepAlive(image)
	return q.enqueue("EnqueueReadImage", waitList, pinIfNonBlocking(blocking, dst),
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueReadImage(q.rt.api, q.cQueue, image.cMem, cBool(blocking),
				cSizes3(scratch, origin), cSizes3(scratch, region), C.size_t(rowPitch), C.size_t(slicePitch),
				slicePointer(dst), numEvents, waitList, event)
		})
}

// EnqueueWriteImage writes src to a region of the image. Zero pitches mean tightly packed rows and slices.
func (q *CommandQueue) EnqueueWriteImage(image *Image, blocking bool, origin, region [3]int,
	rowPitch, slicePitch int, src []byte, waitList ...*Event) (*Event, error) {
	defer runtime.KeepAlive(image)
	return q.enqueue("EnqueueWriteImage", waitList, pinIfNonBlocking(blocking, src),
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueWriteImage(q.rt.api, q.cQueue, image.cMem, cBool(blocking),
				cSizes3(scratch, origin), cSizes3(scratch, region), C.size_t(rowPitch), C.size_t(slicePitch),
				slicePointer(src), numEvents, waitList, event)
		})
}

// ImageFillColor is the type of the color used to fill images: float for normalized and float channel types,
// int32 or uint32 for the unnormalized signed and unsigned integer types.
type ImageFillColor interface {
	~float32 | ~int32 | ~uint32
}

// EnqueueFillImage fills a region of the image with the given RGBA color.
func EnqueueFillImage[T ImageFillColor](q *CommandQueue, image *Image, color [4]T, origin, region [3]int,
	waitList ...*Event) (*Event, error) {
	defer runtime.KeepAlive(image)
	return q.enqueue("EnqueueFillImage", waitList, nil,
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			cColor := arenaAlloc[[4]T](scratch)
			*cColor = color
			return C.call_clEnqueueFillImage(q.rt.api, q.cQueue, image.cMem, unsafe.Pointer(cColor),
				cSizes3(scratch, origin), cSizes3(scratch, region), numEvents, waitList, event)
		})
}

// EnqueueCopyImage copies a region from src to dst, which must have the same format.
func (q *CommandQueue) EnqueueCopyImage(src, dst *Image, srcOrigin, dstOrigin, region [3]int,
	waitList ...*Event) (*Event, error) {
	defer runtime.KeepAlive(src)
	defer runtime.KeepAlive(dst)
	return q.enqueue("EnqueueCopyImage", waitList, nil,
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueCopyImage(q.rt.api, q.cQueue, src.cMem, dst.cMem, cSizes3(scratch, srcOrigin),
				cSizes3(scratch, dstOrigin), cSizes3(scratch, region), numEvents, waitList, event)
		})
}

// EnqueueCopyImageToBuffer copies a region of the image to the buffer, starting at dstOffset bytes.
func (q *CommandQueue) EnqueueCopyImageToBuffer(src *Image, dst MemObject, srcOrigin, region [3]int,
	dstOffset int, waitList ...*Event) (*Event, error) {
	defer runtime.KeepAlive(src)
	defer runtime.KeepAlive(dst)
	return q.enqueue("EnqueueCopyImageToBuffer", waitList, nil,
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueCopyImageToBuffer(q.rt.api, q.cQueue, src.cMem, dst.memHandle(),
				cSizes3(scratch, srcOrigin), cSizes3(scratch, region), C.size_t(dstOffset), numEvents, waitList, event)
		})
}

// EnqueueCopyBufferToImage copies from the buffer, starting at srcOffset bytes, to a region of the image.
func (q *CommandQueue) EnqueueCopyBufferToImage(src MemObject, dst *Image, srcOffset int, dstOrigin, region [3]int,
	waitList ...*Event) (*Event, error) {
	defer runtime.KeepAlive(src)
	defer runtime.KeepAlive(dst)
	return q.enqueue("EnqueueCopyBufferToImage", waitList, nil,
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueCopyBufferToImage(q.rt.api, q.cQueue, src.memHandle(), dst.cMem,
				C.size_t(srcOffset), cSizes3(scratch, dstOrigin), cSizes3(scratch, region), numEvents, waitList, event)
		})
}

// EnqueueMapBuffer maps count elements of the buffer, starting at element offset, into host memory.
//
// The returned slice points to memory owned by OpenCL: it's only valid after the event completes (immediately
// if blocking), and until EnqueueUnmapBuffer.
func EnqueueMapBuffer[T any](q *CommandQueue, buffer *Buffer[T], blocking bool, flags MapFlags, offset, count int,
	waitList ...*Event) ([]T, *Event, error) {
	if err := buffer.checkRange("EnqueueMapBuffer", offset, count); err != nil {
		return nil, nil, err
	}
	defer runtime.KeepAlive(buffer)
	elemSize := sizeOf[T]()
	var mapped unsafe.Pointer
	event, err := q.enqueue("EnqueueMapBuffer", waitList, nil,
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			code := arenaAlloc[C.cl_int](scratch)
			mapped = C.call_clEnqueueMapBuffer(q.rt.api, q.cQueue, buffer.cMem, cBool(blocking),
				C.cl_map_flags(flags), C.size_t(offset*elemSize), C.size_t(count*elemSize), numEvents, waitList, event,
				code)
			return *code
		})
	if err != nil {
		return nil, nil, err
	}
	if count == 0 || mapped == nil {
		return nil, event, nil
	}
	return unsafe.Slice((*T)(mapped), count), event, nil
}

// EnqueueUnmapBuffer unmaps a slice returned by EnqueueMapBuffer.
func EnqueueUnmapBuffer[T any](q *CommandQueue, buffer *Buffer[T], mapped []T, waitList ...*Event) (*Event, error) {
	return q.EnqueueUnmapMemObject(buffer, slicePointer(mapped), waitList...)
}

// MappedImage is a region of an image mapped into host memory by EnqueueMapImage.
type MappedImage struct {
	// Ptr to the first pixel of the region. The memory is owned by OpenCL.
	Ptr unsafe.Pointer

	// RowPitch and SlicePitch in bytes. SlicePitch is 0 for 1D and 2D images.
	RowPitch, SlicePitch int
}

// EnqueueMapImage maps a region of the image into host memory. Unmap it with EnqueueUnmapMemObject(image, m.Ptr).
func (q *CommandQueue) EnqueueMapImage(image *Image, blocking bool, flags MapFlags, origin, region [3]int,
	waitList ...*Event) (MappedImage, *Event, error) {
	defer runtime.KeepAlive(image)
	var m MappedImage
	event, err := q.enqueue("EnqueueMapImage", waitList, nil,
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			code := arenaAlloc[C.cl_int](scratch)
			rowPitch := arenaAlloc[C.size_t](scratch)
			slicePitch := arenaAlloc[C.size_t](scratch)
			m.Ptr = C.call_clEnqueueMapImage(q.rt.api, q.cQueue, image.cMem, cBool(blocking), C.cl_map_flags(flags),
				cSizes3(scratch, origin), cSizes3(scratch, region), rowPitch, slicePitch, numEvents, waitList, event,
				code)
			m.RowPitch, m.SlicePitch = int(*rowPitch), int(*slicePitch)
			return *code
		})
	return m, event, err
}

// EnqueueUnmapMemObject unmaps memory previously mapped from the object.
func (q *CommandQueue) EnqueueUnmapMemObject(memObject MemObject, mapped unsafe.Pointer, waitList ...*Event) (
	*Event, error) {
	defer runtime.KeepAlive(memObject)
	return q.enqueue("EnqueueUnmapMemObject", waitList, nil,
		func(_ *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueUnmapMemObject(q.rt.api, q.cQueue, memObject.memHandle(), mapped,
				numEvents, waitList, event)
		})
}

// EnqueueMigrateMemObjects migrates the memory objects to the queue's device (or to the host, with
// MigrateMemObjectHost).
func (q *CommandQueue) EnqueueMigrateMemObjects(memObjects []MemObject, flags MigrationFlags,
	waitList ...*Event) (*Event, error) {
	if len(memObjects) == 0 {
		return nil, errors.New("EnqueueMigrateMemObjects: no memory objects given")
	}
	defer runtime.KeepAlive(memObjects)
	return q.enqueueWithScratch("EnqueueMigrateMemObjects", waitList, nil, 8*len(memObjects),
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			cMems := arenaAllocSlice[C.cl_mem](scratch, len(memObjects))
			for ii, memObject := range memObjects {
				cMems[ii] = memObject.memHandle()
			}
			return C.call_clEnqueueMigrateMemObjects(q.rt.api, q.cQueue, C.cl_uint(len(cMems)), &cMems[0],
				C.cl_mem_migration_flags(flags), numEvents, waitList, event)
		})
}

// EnqueueNDRangeKernel enqueues the kernel over a 1 to 3 dimensional range of work-items.
//
// globalWorkSizes is required; globalWorkOffsets and localWorkSizes may be nil, otherwise they must have the
// same number of dimensions. See also ExecuteKernel, which sets the arguments too.
func (q *CommandQueue) EnqueueNDRangeKernel(kernel *Kernel, globalWorkOffsets, globalWorkSizes,
	localWorkSizes []int, waitList ...*Event) (*Event, error) {
	workDim := len(globalWorkSizes)
	if workDim == 0 || workDim > 3 {
		return nil, errors.Errorf("EnqueueNDRangeKernel: global work sizes must have 1 to 3 dimensions, got %d",
			workDim)
	}
	if len(globalWorkOffsets) != 0 && len(globalWorkOffsets) != workDim {
		return nil, errors.Errorf("EnqueueNDRangeKernel: %d global work offsets for %d dimensions",
			len(globalWorkOffsets), workDim)
	}
	if len(localWorkSizes) != 0 && len(localWorkSizes) != workDim {
		return nil, errors.Errorf("EnqueueNDRangeKernel: %d local work sizes for %d dimensions",
			len(localWorkSizes), workDim)
	}
	if err := kernel.checkLive("EnqueueNDRangeKernel"); err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(kernel)
	return q.enqueue("EnqueueNDRangeKernel", waitList, nil,
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueNDRangeKernel(q.rt.api, q.cQueue, kernel.cKernel, C.cl_uint(workDim),
				cSizes(scratch, globalWorkOffsets), cSizes(scratch, globalWorkSizes), cSizes(scratch, localWorkSizes),
				numEvents, waitList, event)
		})
}

// cSizes copies values to a size_t array in the arena, or returns nil if values is empty.
func cSizes(a *arena, values []int) *C.size_t {
	if len(values) == 0 {
		return nil
	}
	sizes := arenaAllocSlice[C.size_t](a, len(values))
	for ii, v := range values {
		sizes[ii] = C.size_t(v)
	}
	return &sizes[0]
}

// EnqueueTask enqueues a kernel to run as a single work-item. Deprecated in OpenCL 2.0, equivalent to an
// NDRange with global and local sizes of 1.
func (q *CommandQueue) EnqueueTask(kernel *Kernel, waitList ...*Event) (*Event, error) {
	if err := kernel.checkLive("EnqueueTask"); err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(kernel)
	return q.enqueue("EnqueueTask", waitList, nil,
		func(_ *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueTask(q.rt.api, q.cQueue, kernel.cKernel, numEvents, waitList, event)
		})
}

// EnqueueMarkerWithWaitList enqueues a marker that completes when the events in waitList complete, or, if it's
// empty, when all previously enqueued commands complete.
func (q *CommandQueue) EnqueueMarkerWithWaitList(waitList ...*Event) (*Event, error) {
	return q.enqueue("EnqueueMarkerWithWaitList", waitList, nil,
		func(_ *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueMarkerWithWaitList(q.rt.api, q.cQueue, numEvents, waitList, event)
		})
}

// EnqueueBarrierWithWaitList is like EnqueueMarkerWithWaitList, but also blocks later commands until it
// completes.
func (q *CommandQueue) EnqueueBarrierWithWaitList(waitList ...*Event) (*Event, error) {
	return q.enqueue("EnqueueBarrierWithWaitList", waitList, nil,
		func(_ *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueBarrierWithWaitList(q.rt.api, q.cQueue, numEvents, waitList, event)
		})
}

// EnqueueSVMFree frees the SVM pointers (allocated with clSVMAlloc) once the commands in waitList complete.
// OpenCL 2.0.
func (q *CommandQueue) EnqueueSVMFree(svmPointers []unsafe.Pointer, waitList ...*Event) (*Event, error) {
	if len(svmPointers) == 0 {
		return nil, errors.New("EnqueueSVMFree: no SVM pointers given")
	}
	return q.enqueueWithScratch("EnqueueSVMFree", waitList, nil, 8*len(svmPointers),
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			cPtrs := arenaAllocSlice[unsafe.Pointer](scratch, len(svmPointers))
			copy(cPtrs, svmPointers)
			return C.call_clEnqueueSVMFree(q.rt.api, q.cQueue, C.cl_uint(len(cPtrs)), &cPtrs[0],
				numEvents, waitList, event)
		})
}

// EnqueueSVMMemcpy copies size bytes between SVM (or host) pointers. OpenCL 2.0.
func (q *CommandQueue) EnqueueSVMMemcpy(blocking bool, dst, src unsafe.Pointer, size int, waitList ...*Event) (
	*Event, error) {
	return q.enqueue("EnqueueSVMMemcpy", waitList, nil,
		func(_ *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueSVMMemcpy(q.rt.api, q.cQueue, cBool(blocking), dst, src, C.size_t(size),
				numEvents, waitList, event)
		})
}

// EnqueueSVMMemFill fills size bytes of SVM memory with the pattern. OpenCL 2.0.
func (q *CommandQueue) EnqueueSVMMemFill(svmPtr unsafe.Pointer, pattern []byte, size int, waitList ...*Event) (
	*Event, error) {
	if len(pattern) == 0 {
		return nil, errors.New("EnqueueSVMMemFill: empty pattern")
	}
	return q.enqueueWithScratch("EnqueueSVMMemFill", waitList, nil, len(pattern),
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			cPattern := arenaCopySlice(scratch, pattern)
			return C.call_clEnqueueSVMMemFill(q.rt.api, q.cQueue, svmPtr, unsafe.Pointer(cPattern),
				C.size_t(len(pattern)), C.size_t(size), numEvents, waitList, event)
		})
}

// EnqueueSVMMap maps coarse-grained SVM memory for host access. OpenCL 2.0.
func (q *CommandQueue) EnqueueSVMMap(blocking bool, flags MapFlags, svmPtr unsafe.Pointer, size int,
	waitList ...*Event) (*Event, error) {
	return q.enqueue("EnqueueSVMMap", waitList, nil,
		func(_ *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueSVMMap(q.rt.api, q.cQueue, cBool(blocking), C.cl_map_flags(flags), svmPtr,
				C.size_t(size), numEvents, waitList, event)
		})
}

// EnqueueSVMUnmap ends host access to coarse-grained SVM memory mapped with EnqueueSVMMap. OpenCL 2.0.
func (q *CommandQueue) EnqueueSVMUnmap(svmPtr unsafe.Pointer, waitList ...*Event) (*Event, error) {
	return q.enqueue("EnqueueSVMUnmap", waitList, nil,
		func(_ *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			return C.call_clEnqueueSVMUnmap(q.rt.api, q.cQueue, svmPtr, numEvents, waitList, event)
		})
}

// EnqueueSVMMigrateMem migrates SVM ranges to the queue's device (or to the host, with MigrateMemObjectHost).
// sizes may be nil (whole allocations), otherwise it must have one size in bytes per pointer. OpenCL 2.1.
func (q *CommandQueue) EnqueueSVMMigrateMem(svmPointers []unsafe.Pointer, sizes []int, flags MigrationFlags,
	waitList ...*Event) (*Event, error) {
	if len(svmPointers) == 0 {
		return nil, errors.New("EnqueueSVMMigrateMem: no SVM pointers given")
	}
	if sizes != nil && len(sizes) != len(svmPointers) {
		return nil, errors.Errorf("EnqueueSVMMigrateMem: %d sizes for %d pointers", len(sizes), len(svmPointers))
	}
	return q.enqueueWithScratch("EnqueueSVMMigrateMem", waitList, nil, 16*len(svmPointers),
		func(scratch *arena, numEvents C.cl_uint, waitList *C.cl_event, event *C.cl_event) C.cl_int {
			cPtrs := arenaAllocSlice[unsafe.Pointer](scratch, len(svmPointers))
			copy(cPtrs, svmPointers)
			return C.call_clEnqueueSVMMigrateMem(q.rt.api, q.cQueue, C.cl_uint(len(cPtrs)), &cPtrs[0],
				cSizes(scratch, sizes), C.cl_mem_migration_flags(flags), numEvents, waitList, event)
		})
}
