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

// SVMVec is a growable vector of T stored in shared virtual memory (SVM), so kernels can use it directly as a
// pointer argument (pass the SVMVec to Kernel.SetArg or ExecuteKernel.Arg).
//
// It requires a device with coarse or fine grained buffer SVM (OpenCL 2.0). With coarse grained SVM the host may
// only access the memory while it's mapped (see Map and Unmap), and the kernels only while it's unmapped.
// Devices with fine grained system SVM can use Go slices directly (see Kernel.SetArgSVMPointer), so SVMVec
// refuses them.
//
// T must not contain Go pointers. SVMVec is not safe for concurrent use.
type SVMVec[T any] struct {
	ctx         *Context
	ptr         unsafe.Pointer
	len, cap    int
	fineGrained bool

	// mapQueue is the queue used by Map, while mapped.
	mapQueue *CommandQueue
	mapFlags MapFlags
}

// CreateSVMVec creates an empty SVMVec with room for capacity elements, using the SVM capabilities of the first
// device of the context.
func CreateSVMVec[T any](ctx *Context, capacity int) (*SVMVec[T], error) {
	if sizeOf[T]() == 0 {
		return nil, errors.New("CreateSVMVec: zero sized element types are not supported")
	}
	if err := ctx.checkLive("CreateSVMVec"); err != nil {
		return nil, err
	}
	fineGrained, err := svmFineGrained(ctx.devices[0].SVMMemCapability())
	if err != nil {
		return nil, err
	}
	v := &SVMVec[T]{ctx: ctx, fineGrained: fineGrained}
	runtime.SetFinalizer(v, func(v *SVMVec[T]) {
		if err := v.Free(); err != nil {
			klog.Errorf("SVMVec.Free failed during garbage collection: %+v", err)
		}
	})
	if capacity > 0 {
		if err := v.Reserve(capacity); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// svmFineGrained returns whether SVMVec uses fine grained buffers for a device with the given SVM capabilities,
// or an error if SVMVec doesn't apply to it.
func svmFineGrained(svm SVMCapabilities) (bool, error) {
	if svm&(SVMCoarseGrainBuffer|SVMFineGrainBuffer) == 0 {
		return false, errors.New("no OpenCL SVM, use OpenCL buffers")
	}
	if svm&SVMFineGrainSystem != 0 {
		return false, errors.New("SVM supports system memory, use a Go slice")
	}
	return svm&SVMFineGrainBuffer != 0, nil
}

// IsFineGrained returns whether the host can access the memory without mapping it.
func (v *SVMVec[T]) IsFineGrained() bool {
	return v.fineGrained
}

func (v *SVMVec[T]) Len() int { return v.len }
func (v *SVMVec[T]) Cap() int { return v.cap }

// Pointer to the SVM memory, nil if nothing was allocated yet. It changes when the vector grows.
func (v *SVMVec[T]) Pointer() unsafe.Pointer {
	return v.ptr
}

func (v *SVMVec[T]) svmPointer() unsafe.Pointer {
	return v.ptr
}

// SizeBytes returns the size in bytes of the elements in use.
func (v *SVMVec[T]) SizeBytes() int {
	return v.len * sizeOf[T]()
}

// Slice returns a view of the elements in use. It's only valid until the vector grows or is freed, and for
// coarse grained SVM only while mapped.
func (v *SVMVec[T]) Slice() []T {
	if v.len == 0 {
		return nil
	}
	return unsafe.Slice((*T)(v.ptr), v.len)
}

// all returns a view of the whole allocated capacity.
func (v *SVMVec[T]) all() []T {
	if v.cap == 0 {
		return nil
	}
	return unsafe.Slice((*T)(v.ptr), v.cap)
}

// Reserve grows the capacity to at least capacity elements.
func (v *SVMVec[T]) Reserve(capacity int) error {
	if capacity <= v.cap {
		return nil
	}
	return v.grow(capacity)
}

// svmGrowCapacity returns the new capacity to hold count elements: count itself, except when growing by one
// element from a non-zero capacity, when it doubles.
func svmGrowCapacity(capacity, count int) int {
	if capacity > 0 && count == capacity+1 {
		return 2 * capacity
	}
	return count
}

// grow reallocates the vector for count elements, see svmGrowCapacity.
func (v *SVMVec[T]) grow(count int) error {
	if err := v.ctx.checkLive("SVMVec.grow"); err != nil {
		return err
	}
	newCap := svmGrowCapacity(v.cap, count)
	flags := MemReadWrite
	if v.fineGrained {
		flags |= MemSVMFineGrainBuffer
	}
	elemSize := sizeOf[T]()
	var zero T
	alignment := max(unsafe.Alignof(zero), 1)
	newPtr := C.call_clSVMAlloc(v.ctx.rt.api, v.ctx.cContext, C.cl_svm_mem_flags(flags), C.size_t(newCap*elemSize),
		C.cl_uint(alignment))
	runtime.KeepAlive(v.ctx)
	if newPtr == nil {
		return errors.Errorf("clSVMAlloc failed to allocate %d bytes (%d elements)", newCap*elemSize, newCap)
	}
	klog.V(2).Infof("SVMVec grown from %d to %d elements", v.cap, newCap)

	oldPtr, oldCap := v.ptr, v.cap
	v.ptr, v.cap = newPtr, newCap
	mapQueue := v.mapQueue
	if mapQueue != nil {
		// Keep the new region mapped like the old one, while copying the contents.
		if err := v.mapRegion(mapQueue, MapRead|MapWrite); err != nil {
			v.ptr, v.cap = oldPtr, oldCap
			C.call_clSVMFree(v.ctx.rt.api, v.ctx.cContext, newPtr)
			return err
		}
	}
	if v.len > 0 {
		copy(unsafe.Slice((*T)(newPtr), v.len), unsafe.Slice((*T)(oldPtr), v.len))
	}
	if oldPtr != nil {
		if mapQueue != nil {
			if err := unmapRegion(mapQueue, oldPtr); err != nil {
				klog.Warningf("SVMVec failed to unmap the old region: %+v", err)
			}
		}
		C.call_clSVMFree(v.ctx.rt.api, v.ctx.cContext, oldPtr)
	}
	return nil
}

// Push appends elem, growing the vector if needed.
func (v *SVMVec[T]) Push(elem T) error {
	if v.len == v.cap {
		if err := v.grow(v.len + 1); err != nil {
			return err
		}
	}
	v.all()[v.len] = elem
	v.len++
	return nil
}

// Pop removes and returns the last element. It returns false if the vector is empty.
func (v *SVMVec[T]) Pop() (T, bool) {
	var zero T
	if v.len == 0 {
		return zero, false
	}
	v.len--
	return v.all()[v.len], true
}

// Insert elem at index, shifting the following elements. index can be Len(), to append.
func (v *SVMVec[T]) Insert(index int, elem T) error {
	if index < 0 || index > v.len {
		return errors.Errorf("SVMVec.Insert: index %d out of bounds for length %d", index, v.len)
	}
	if v.len == v.cap {
		if err := v.grow(v.len + 1); err != nil {
			return err
		}
	}
	data := v.all()
	copy(data[index+1:v.len+1], data[index:v.len])
	data[index] = elem
	v.len++
	return nil
}

// Remove the element at index, shifting the following elements, and return it.
func (v *SVMVec[T]) Remove(index int) (T, error) {
	var zero T
	if index < 0 || index >= v.len {
		return zero, errors.Errorf("SVMVec.Remove: index %d out of bounds for length %d", index, v.len)
	}
	data := v.all()
	elem := data[index]
	copy(data[index:v.len-1], data[index+1:v.len])
	v.len--
	return elem, nil
}

// Clear sets the length to 0, keeping the capacity.
func (v *SVMVec[T]) Clear() {
	v.len = 0
}

// Map makes coarse grained SVM accessible to the host, blocking until it is. It's a no-op for fine grained SVM.
func (v *SVMVec[T]) Map(queue *CommandQueue, flags MapFlags) error {
	if v.fineGrained {
		return nil
	}
	if v.mapQueue != nil {
		return errors.New("SVMVec.Map: already mapped")
	}
	if v.cap > 0 {
		if err := v.mapRegion(queue, flags); err != nil {
			return err
		}
	}
	v.mapQueue, v.mapFlags = queue, flags
	return nil
}

func (v *SVMVec[T]) mapRegion(queue *CommandQueue, flags MapFlags) error {
	event, err := queue.EnqueueSVMMap(Blocking, flags, v.ptr, v.cap*sizeOf[T]())
	if err != nil {
		return err
	}
	return event.Release()
}

// Unmap ends the host access started with Map, blocking until the unmap completes. It's a no-op for fine grained
// SVM, or if not mapped.
func (v *SVMVec[T]) Unmap() error {
	if v.fineGrained || v.mapQueue == nil {
		return nil
	}
	queue := v.mapQueue
	v.mapQueue = nil
	if v.ptr == nil {
		return nil
	}
	return unmapRegion(queue, v.ptr)
}

func unmapRegion(queue *CommandQueue, ptr unsafe.Pointer) error {
	event, err := queue.EnqueueSVMUnmap(ptr)
	if err != nil {
		return err
	}
	return event.WaitAndRelease()
}

// Free the SVM memory. The vector is empty afterward, and can be reused. It's safe to call more than once.
//
// It must be called before the context is released: the memory of vectors still allocated by then is leaked.
func (v *SVMVec[T]) Free() error {
	if v == nil || v.ptr == nil {
		return nil
	}
	var err error
	if v.mapQueue != nil {
		err = v.Unmap()
	}
	if v.ctx.IsReleased() {
		klog.Warningf("SVMVec of %d bytes freed after its context was released, memory leaked", v.cap*sizeOf[T]())
	} else {
		C.call_clSVMFree(v.ctx.rt.api, v.ctx.cContext, v.ptr)
		runtime.KeepAlive(v.ctx)
	}
	v.ptr, v.len, v.cap = nil, 0, 0
	return err
}
