package opencl

// AlignedAlloc and AlignedFree back the host memory of buffers created with MemUseHostPtr: OpenCL
// implementations can only use a host pointer in place (zero-copy) if it's suitably aligned.

/*
#include "cl_api.h"
*/
import "C"
import (
	"unsafe"

	"github.com/pkg/errors"
)

// HostPtrAlignment is the alignment used for host memory of MemUseHostPtr buffers.
// It covers the 4KB page alignment Intel and ARM implementations require for zero-copy.
const HostPtrAlignment = 4096

// AlignedAlloc returns size bytes of zeroed C memory whose address is a multiple of alignment, which must be a
// power of 2 no smaller than the size of a pointer.
//
// The original allocation address is stored in the word just before the returned pointer. It must be freed with
// AlignedFree.
func AlignedAlloc(size, alignment uintptr) (unsafe.Pointer, error) {
	wordSize := unsafe.Sizeof(uintptr(0))
	if alignment < wordSize || alignment&(alignment-1) != 0 {
		return nil, errors.Errorf("AlignedAlloc: alignment must be a power of 2 >= %d, got %d", wordSize, alignment)
	}
	raw := C.calloc(C.size_t(size+alignment), 1)
	if raw == nil {
		return nil, errors.Errorf("AlignedAlloc: failed to allocate %d bytes", size+alignment)
	}
	// Always move forward at least one word, to have space to store the raw pointer.
	aligned := (uintptr(raw) + wordSize + alignment - 1) &^ (alignment - 1)
	*(*uintptr)(unsafe.Pointer(aligned - wordSize)) = uintptr(raw)
	return unsafe.Pointer(aligned), nil
}

// AlignedFree frees memory allocated with AlignedAlloc. It's a no-op for nil.
//
// Memory objects created with AlignedAlloc host memory don't use it: OpenCL frees their memory with the same C
// function, as a destructor callback, once it deletes them.
func AlignedFree(ptr unsafe.Pointer) {
	C.gocl_free_aligned(nil, ptr)
}
