package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"runtime"
	"slices"
	"unsafe"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// MemObject is implemented by the OpenCL memory objects: *Buffer[T], *Image and *Pipe.
type MemObject interface {
	// Handle returns the raw cl_mem.
	Handle() Handle

	// Release the memory object. It's idempotent.
	Release() error

	memHandle() C.cl_mem
}

// memObject holds the cl_mem and implements the information queries common to all memory objects.
type memObject struct {
	cMem C.cl_mem
	rt   *Runtime

	// hostData is the AlignedAlloc memory used by MemUseHostPtr memory objects. It's owned by OpenCL, which frees
	// it once the memory object is deleted (see freeHostDataOnDestruction). Sub-buffers point into their parent's.
	hostData unsafe.Pointer
}

// Handle returns the raw cl_mem.
func (m *memObject) Handle() Handle {
	return Handle(unsafe.Pointer(m.cMem))
}

func (m *memObject) memHandle() C.cl_mem {
	return m.cMem
}

// IsReleased returns whether the memory object has been released.
func (m *memObject) IsReleased() bool {
	return m == nil || m.cMem == nil
}

// Release the memory object. It's safe to call more than once.
//
// OpenCL only deletes it, and frees its MemUseHostPtr host memory, after its sub-buffers are released and the
// commands using it finish.
func (m *memObject) Release() error {
	if m.IsReleased() {
		return nil
	}
	defer runtime.KeepAlive(m)
	err := toError(C.call_clReleaseMemObject(m.rt.api, m.cMem))
	m.cMem = nil
	m.hostData = nil
	return err
}

// freeHostDataOnDestruction hands the ownership of hostData (from AlignedAlloc) to the newly created cMem: a
// destructor callback frees it when OpenCL deletes cMem. On failure cMem is released and hostData freed.
func freeHostDataOnDestruction(rt *Runtime, cMem C.cl_mem, hostData unsafe.Pointer) error {
	err := toError(C.gocl_free_aligned_on_destruction(rt.api, cMem, hostData))
	if err == nil {
		return nil
	}
	// Nothing was enqueued using cMem yet, so hostData can be freed right away.
	if releaseErr := toError(C.call_clReleaseMemObject(rt.api, cMem)); releaseErr != nil {
		klog.Warningf("failed to release memory object: %+v", releaseErr)
	}
	AlignedFree(hostData)
	return errors.WithMessage(err, "failed to register the destructor callback freeing the host memory")
}

func (m *memObject) infoFn(param C.cl_mem_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetMemObjectInfo(m.rt.api, m.cMem, param, size, value, sizeRet)
	}
}

// MemType returns the type of the memory object (MemObjectBuffer, MemObjectImage2D, MemObjectPipe, ...).
func (m *memObject) MemType() (MemObjectType, error) {
	defer runtime.KeepAlive(m)
	value, err := queryInfoScalar[C.cl_mem_object_type](m.infoFn(C.CL_MEM_TYPE))
	return MemObjectType(value), err
}

// Flags the memory object was created with.
func (m *memObject) Flags() (MemFlags, error) {
	defer runtime.KeepAlive(m)
	value, err := queryInfoScalar[C.cl_mem_flags](m.infoFn(C.CL_MEM_FLAGS))
	return MemFlags(value), err
}

// Size of the data store in bytes.
func (m *memObject) Size() (int, error) {
	defer runtime.KeepAlive(m)
	value, err := queryInfoScalar[C.size_t](m.infoFn(C.CL_MEM_SIZE))
	return int(value), err
}

// HostPtr returns the host pointer given at creation with MemUseHostPtr, or nil.
func (m *memObject) HostPtr() (unsafe.Pointer, error) {
	defer runtime.KeepAlive(m)
	return queryInfoScalar[unsafe.Pointer](m.infoFn(C.CL_MEM_HOST_PTR))
}

func (m *memObject) MapCount() (uint32, error) {
	defer runtime.KeepAlive(m)
	value, err := queryInfoScalar[C.cl_uint](m.infoFn(C.CL_MEM_MAP_COUNT))
	return uint32(value), err
}

func (m *memObject) ReferenceCount() (uint32, error) {
	defer runtime.KeepAlive(m)
	value, err := queryInfoScalar[C.cl_uint](m.infoFn(C.CL_MEM_REFERENCE_COUNT))
	return uint32(value), err
}

// Context returns the handle of the context the memory object was created in.
func (m *memObject) Context() (Handle, error) {
	defer runtime.KeepAlive(m)
	value, err := queryInfoScalar[C.cl_context](m.infoFn(C.CL_MEM_CONTEXT))
	return Handle(unsafe.Pointer(value)), err
}

// AssociatedMemObject returns the handle of the parent buffer of a sub-buffer, or of the buffer an image was
// created from. It's 0 otherwise.
func (m *memObject) AssociatedMemObject() (Handle, error) {
	defer runtime.KeepAlive(m)
	value, err := queryInfoScalar[C.cl_mem](m.infoFn(C.CL_MEM_ASSOCIATED_MEMOBJECT))
	return Handle(unsafe.Pointer(value)), err
}

// Offset of a sub-buffer in its parent, in bytes. It's 0 for other memory objects.
func (m *memObject) Offset() (int, error) {
	defer runtime.KeepAlive(m)
	value, err := queryInfoScalar[C.size_t](m.infoFn(C.CL_MEM_OFFSET))
	return int(value), err
}

// UsesSVMPointer returns whether the host pointer of the memory object is an SVM pointer. OpenCL 2.0.
func (m *memObject) UsesSVMPointer() (bool, error) {
	defer runtime.KeepAlive(m)
	return queryInfoBool(m.infoFn(C.CL_MEM_USES_SVM_POINTER))
}

// Properties given to CreateBufferWithProperties. OpenCL 3.0.
func (m *memObject) Properties() ([]uint64, error) {
	defer runtime.KeepAlive(m)
	values, err := queryInfoSlice[C.cl_mem_properties](m.rt, m.infoFn(C.CL_MEM_PROPERTIES))
	if err != nil {
		return nil, err
	}
	props := make([]uint64, len(values))
	for ii, v := range values {
		props[ii] = uint64(v)
	}
	return props, nil
}

// Buffer is an OpenCL buffer holding count elements of type T.
//
// T should have the same memory layout as the kernel's element type: float32 for float, float16.Float16 for
// half, [4]float32 for float4, and so on.
type Buffer[T any] struct {
	memObject
	count int

	// parent is set for sub-buffers.
	parent *Buffer[T]
}

// CreateBuffer creates a buffer for count elements of T. The caller owns it, see also CreateOwnedBuffer.
//
// host is optional initial data, with at least count elements:
//   - With MemCopyHostPtr it's copied into the buffer during creation.
//   - With MemUseHostPtr it's copied to a page-aligned region owned by the buffer, which OpenCL may use directly
//     as its storage (see HostSlice). If host is nil the region starts zeroed.
func CreateBuffer[T any](ctx *Context, flags MemFlags, count int, host []T) (*Buffer[T], error) {
	return createBuffer(ctx, nil, flags, count, host)
}

// CreateBufferWithProperties is like CreateBuffer, with a list of key/value properties (the terminating 0 is
// added automatically). OpenCL 3.0.
func CreateBufferWithProperties[T any](ctx *Context, properties []uint64, flags MemFlags, count int, host []T) (
	*Buffer[T], error) {
	if len(properties)%2 != 0 {
		return nil, errors.Errorf("CreateBufferWithProperties: properties must be key/value pairs, got %d values",
			len(properties))
	}
	return createBuffer(ctx, append(slices.Clip(properties), 0), flags, count, host)
}

func createBuffer[T any](ctx *Context, properties []uint64, flags MemFlags, count int, host []T) (*Buffer[T], error) {
	if count <= 0 {
		return nil, errors.Errorf("CreateBuffer: count must be > 0, got %d", count)
	}
	if host != nil && len(host) < count {
		return nil, errors.Errorf("CreateBuffer: host data has %d elements, buffer needs %d", len(host), count)
	}
	usesHost := flags.Has(MemUseHostPtr)
	if !usesHost && !flags.Has(MemCopyHostPtr) && host != nil {
		return nil, errors.New("CreateBuffer: host data given without MemCopyHostPtr or MemUseHostPtr")
	}
	if flags.Has(MemCopyHostPtr) && host == nil {
		return nil, errors.New("CreateBuffer: MemCopyHostPtr requires host data")
	}
	defer runtime.KeepAlive(ctx)

	size := count * sizeOf[T]()
	hostPtr := slicePointer(host)
	var hostData unsafe.Pointer
	if usesHost {
		var err error
		hostData, err = AlignedAlloc(uintptr(size), HostPtrAlignment)
		if err != nil {
			return nil, err
		}
		if host != nil {
			copy(unsafe.Slice((*T)(hostData), count), host[:count])
		}
		hostPtr = hostData
	}

	var code C.cl_int
	var cMem C.cl_mem
	if properties == nil {
		cMem = C.call_clCreateBuffer(ctx.rt.api, ctx.cContext, C.cl_mem_flags(flags), C.size_t(size), hostPtr, &code)
	} else {
		scratch := ctx.rt.arenaPools.Get(8 * len(properties))
		cProps := arenaAllocSlice[C.cl_mem_properties](scratch, len(properties))
		for ii, prop := range properties {
			cProps[ii] = C.cl_mem_properties(prop)
		}
		cMem = C.call_clCreateBufferWithProperties(ctx.rt.api, ctx.cContext, &cProps[0], C.cl_mem_flags(flags),
			C.size_t(size), hostPtr, &code)
		ctx.rt.arenaPools.Return(scratch)
	}
	runtime.KeepAlive(host)
	if err := toError(code); err != nil {
		AlignedFree(hostData)
		return nil, errors.WithMessagef(err, "failed to create buffer of %d bytes (flags=%s)", size, flags)
	}
	if hostData != nil {
		if err := freeHostDataOnDestruction(ctx.rt, cMem, hostData); err != nil {
			return nil, err
		}
	}
	return newBuffer[T](ctx.rt, cMem, count, hostData), nil
}

func newBuffer[T any](rt *Runtime, cMem C.cl_mem, count int, hostData unsafe.Pointer) *Buffer[T] {
	b := &Buffer[T]{memObject: memObject{cMem: cMem, rt: rt, hostData: hostData}, count: count}
	runtime.SetFinalizer(b, func(b *Buffer[T]) {
		if err := b.Release(); err != nil {
			klog.Errorf("Buffer.Release failed during garbage collection: %+v", err)
		}
	})
	return b
}

// Len returns the number of elements of the buffer.
func (b *Buffer[T]) Len() int {
	return b.count
}

// SizeBytes returns the size of the buffer in bytes.
func (b *Buffer[T]) SizeBytes() int {
	return b.count * sizeOf[T]()
}

// HostSlice returns the host memory of a MemUseHostPtr buffer, or nil for other buffers.
//
// OpenCL may cache the contents on the device: map the buffer (EnqueueMapBuffer) before accessing it.
func (b *Buffer[T]) HostSlice() []T {
	if b.IsReleased() || b.hostData == nil {
		return nil
	}
	return unsafe.Slice((*T)(b.hostData), b.count)
}

func (b *Buffer[T]) checkRange(op string, offset, count int) error {
	if b.IsReleased() {
		return errors.Errorf("%s: buffer already released", op)
	}
	if offset < 0 || count < 0 || offset+count > b.count {
		return errors.Errorf("%s: range [%d, %d) out of bounds for buffer of %d elements", op, offset,
			offset+count, b.count)
	}
	return nil
}

// CreateSubBuffer creates a buffer viewing count elements of b, starting at element origin. The origin in bytes
// must be aligned to the device's MemBaseAddrAlign. The caller owns the sub-buffer.
//
// The sub-buffer keeps b alive: b can be released first, OpenCL only deletes it after its sub-buffers.
// Sub-buffers of a MemUseHostPtr buffer have a HostSlice into the parent's host memory.
func (b *Buffer[T]) CreateSubBuffer(flags MemFlags, origin, count int) (*Buffer[T], error) {
	if err := b.checkRange("CreateSubBuffer", origin, count); err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(b)
	elemSize := sizeOf[T]()
	var code C.cl_int
	cMem := C.call_clCreateSubBuffer(b.rt.api, b.cMem, C.cl_mem_flags(flags), C.size_t(origin*elemSize),
		C.size_t(count*elemSize), &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessagef(err, "failed to create sub-buffer [%d, %d)", origin, origin+count)
	}
	var hostData unsafe.Pointer
	if b.hostData != nil {
		hostData = unsafe.Add(b.hostData, origin*elemSize)
	}
	sub := newBuffer[T](b.rt, cMem, count, hostData)
	sub.parent = b
	return sub, nil
}

// Image is an OpenCL image (1D, 2D, 3D, arrays or 1D from a buffer).
type Image struct {
	memObject
}

// CreateImage creates an image with the given format and description. The caller owns it, see also
// Context.CreateImage.
//
// host is optional, and used according to flags (MemCopyHostPtr or MemUseHostPtr), with the pitches in desc.
// As with buffers, MemUseHostPtr host data is copied to a page-aligned region owned by the image.
func CreateImage(ctx *Context, flags MemFlags, format ImageFormat, desc ImageDesc, host []byte) (*Image, error) {
	if flags.Has(MemUseHostPtr) && len(host) == 0 {
		return nil, errors.New("CreateImage: MemUseHostPtr requires host data")
	}
	defer runtime.KeepAlive(ctx)
	defer runtime.KeepAlive(desc.Buffer)
	var cBuffer C.cl_mem
	if desc.Buffer != nil {
		cBuffer = desc.Buffer.memHandle()
	}
	scratch := ctx.rt.arenaPools.Get(0)
	defer ctx.rt.arenaPools.Return(scratch)
	cFormat := arenaAlloc[C.cl_image_format](scratch)
	*cFormat = format.toC()
	cDesc := arenaAlloc[C.cl_image_desc](scratch)
	C.gocl_set_image_desc(cDesc, C.cl_mem_object_type(desc.Type), C.size_t(desc.Width), C.size_t(desc.Height),
		C.size_t(desc.Depth), C.size_t(desc.ArraySize), C.size_t(desc.RowPitch), C.size_t(desc.SlicePitch),
		C.cl_uint(desc.NumMipLevels), C.cl_uint(desc.NumSamples), cBuffer)

	hostPtr := slicePointer(host)
	var hostData unsafe.Pointer
	if flags.Has(MemUseHostPtr) {
		var err error
		hostData, err = AlignedAlloc(uintptr(len(host)), HostPtrAlignment)
		if err != nil {
			return nil, err
		}
		copy(unsafe.Slice((*byte)(hostData), len(host)), host)
		hostPtr = hostData
	}

	var code C.cl_int
	cMem := C.call_clCreateImage(ctx.rt.api, ctx.cContext, C.cl_mem_flags(flags), cFormat, cDesc, hostPtr, &code)
	runtime.KeepAlive(host)
	if err := toError(code); err != nil {
		AlignedFree(hostData)
		return nil, errors.WithMessagef(err, "failed to create %s image %dx%dx%d (format %+v)", desc.Type,
			desc.Width, desc.Height, desc.Depth, format)
	}
	if hostData != nil {
		if err := freeHostDataOnDestruction(ctx.rt, cMem, hostData); err != nil {
			return nil, err
		}
	}
	image := &Image{memObject{cMem: cMem, rt: ctx.rt, hostData: hostData}}
	runtime.SetFinalizer(image, func(image *Image) {
		if err := image.Release(); err != nil {
			klog.Errorf("Image.Release failed during garbage collection: %+v", err)
		}
	})
	return image, nil
}

func (img *Image) imageInfoFn(param C.cl_image_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetImageInfo(img.rt.api, img.cMem, param, size, value, sizeRet)
	}
}

func (img *Image) sizeInfo(param C.cl_image_info) (int, error) {
	defer runtime.KeepAlive(img)
	value, err := queryInfoScalar[C.size_t](img.imageInfoFn(param))
	return int(value), err
}

// Format of the image.
func (img *Image) Format() (ImageFormat, error) {
	defer runtime.KeepAlive(img)
	value, err := queryInfoScalar[C.cl_image_format](img.imageInfoFn(C.CL_IMAGE_FORMAT))
	if err != nil {
		return ImageFormat{}, err
	}
	return imageFormatFromC(value), nil
}

// ElementSize is the size of a pixel in bytes.
func (img *Image) ElementSize() (int, error) { return img.sizeInfo(C.CL_IMAGE_ELEMENT_SIZE) }
func (img *Image) RowPitch() (int, error)    { return img.sizeInfo(C.CL_IMAGE_ROW_PITCH) }
func (img *Image) SlicePitch() (int, error)  { return img.sizeInfo(C.CL_IMAGE_SLICE_PITCH) }
func (img *Image) Width() (int, error)       { return img.sizeInfo(C.CL_IMAGE_WIDTH) }
func (img *Image) Height() (int, error)      { return img.sizeInfo(C.CL_IMAGE_HEIGHT) }
func (img *Image) Depth() (int, error)       { return img.sizeInfo(C.CL_IMAGE_DEPTH) }
func (img *Image) ArraySize() (int, error)   { return img.sizeInfo(C.CL_IMAGE_ARRAY_SIZE) }

// Buffer returns the handle of the buffer a MemObjectImage1DBuffer image was created from, or 0.
func (img *Image) Buffer() (Handle, error) {
	defer runtime.KeepAlive(img)
	value, err := queryInfoScalar[C.cl_mem](img.imageInfoFn(C.CL_IMAGE_BUFFER))
	return Handle(unsafe.Pointer(value)), err
}

func (img *Image) NumMipLevels() (uint32, error) {
	defer runtime.KeepAlive(img)
	value, err := queryInfoScalar[C.cl_uint](img.imageInfoFn(C.CL_IMAGE_NUM_MIP_LEVELS))
	return uint32(value), err
}

func (img *Image) NumSamples() (uint32, error) {
	defer runtime.KeepAlive(img)
	value, err := queryInfoScalar[C.cl_uint](img.imageInfoFn(C.CL_IMAGE_NUM_SAMPLES))
	return uint32(value), err
}

// Pipe is an OpenCL 2.0 pipe: a FIFO of packets read and written by kernels.
type Pipe struct {
	memObject
}

// CreatePipe creates a pipe holding up to maxPackets packets of packetSize bytes. flags can only be
// MemReadWrite or MemHostNoAccess (or 0). The caller owns it, see also Context.CreatePipe.
func CreatePipe(ctx *Context, flags MemFlags, packetSize, maxPackets uint32) (*Pipe, error) {
	defer runtime.KeepAlive(ctx)
	var code C.cl_int
	cMem := C.call_clCreatePipe(ctx.rt.api, ctx.cContext, C.cl_mem_flags(flags), C.cl_uint(packetSize),
		C.cl_uint(maxPackets), &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessagef(err, "failed to create pipe of %d packets of %d bytes", maxPackets,
			packetSize)
	}
	pipe := &Pipe{memObject{cMem: cMem, rt: ctx.rt}}
	runtime.SetFinalizer(pipe, func(pipe *Pipe) {
		if err := pipe.Release(); err != nil {
			klog.Errorf("Pipe.Release failed during garbage collection: %+v", err)
		}
	})
	return pipe, nil
}

func (p *Pipe) pipeInfoFn(param C.cl_pipe_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetPipeInfo(p.rt.api, p.cMem, param, size, value, sizeRet)
	}
}

func (p *Pipe) PacketSize() (uint32, error) {
	defer runtime.KeepAlive(p)
	value, err := queryInfoScalar[C.cl_uint](p.pipeInfoFn(C.CL_PIPE_PACKET_SIZE))
	return uint32(value), err
}

func (p *Pipe) MaxPackets() (uint32, error) {
	defer runtime.KeepAlive(p)
	value, err := queryInfoScalar[C.cl_uint](p.pipeInfoFn(C.CL_PIPE_MAX_PACKETS))
	return uint32(value), err
}

// Properties of the pipe. OpenCL 3.0 defines none, so it's usually empty.
func (p *Pipe) Properties() ([]uint64, error) {
	defer runtime.KeepAlive(p)
	values, err := queryInfoSlice[C.cl_pipe_properties](p.rt, p.pipeInfoFn(C.CL_PIPE_PROPERTIES))
	if err != nil {
		return nil, err
	}
	props := make([]uint64, len(values))
	for ii, v := range values {
		props[ii] = uint64(v)
	}
	return props, nil
}
