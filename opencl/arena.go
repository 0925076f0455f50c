package opencl

/*
#include <string.h>
*/
import "C"
import (
	"fmt"
	"math/bits"
	"reflect"
	"sync"
	"unsafe"
)

// arena is C-allocated scratch space for the arguments of a CGO call: event wait lists, work sizes, info query
// results, property lists.
//
// C.malloc is itself a CGO call, so for the small temporary arrays the OpenCL calls take, it's cheaper to carve
// them out of one pre-allocated block. Being C memory, nothing needs pinning. Everything is freed at once.
//
// Get arenas from Runtime.arenaPools and give them back with Return.
type arena struct {
	buf       []byte
	used      int
	poolIndex int // -1 if allocated outside the pools.
}

// newArena allocates an arena of the given size, outside the pools.
func newArena(size int) *arena {
	return &arena{
		buf:       unsafe.Slice(cMallocArray[byte](size), size),
		poolIndex: -1,
	}
}

// arenaMinAlignment applies to every allocation, since cl_ulong, size_t and pointers are 8 bytes.
const arenaMinAlignment = 8

// alignUp rounds n up to a multiple of alignment, which must be a power of 2.
func alignUp(n, alignment int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

// reserve returns the offset of n bytes aligned to alignment, or panics if the arena is too small.
func (a *arena) reserve(n, alignment int, what func() string) int {
	alignment = max(alignment, arenaMinAlignment)
	start := alignUp(a.used, alignment)
	if start+n > len(a.buf) {
		panic(fmt.Sprintf("arena out of memory allocating %d bytes for %s (%d of %d bytes used)",
			n, what(), a.used, len(a.buf)))
	}
	a.used = start + n
	return start
}

// arenaAlloc returns a zeroed T allocated from the arena.
func arenaAlloc[T any](a *arena) *T {
	var zero T
	start := a.reserve(int(cSizeOf[T]()), int(unsafe.Alignof(zero)),
		func() string { return reflect.TypeOf(zero).String() })
	return (*T)(unsafe.Pointer(&a.buf[start]))
}

// arenaAllocSlice returns a zeroed slice of n T's allocated from the arena. For n == 0 it returns nil.
func arenaAllocSlice[T any](a *arena, n int) []T {
	if n == 0 {
		return nil
	}
	var zero T
	start := a.reserve(n*int(cSizeOf[T]()), int(unsafe.Alignof(zero)),
		func() string { return fmt.Sprintf("[%d]%s", n, reflect.TypeOf(zero)) })
	return unsafe.Slice((*T)(unsafe.Pointer(&a.buf[start])), n)
}

// arenaCopySlice allocates a copy of values in the arena, and returns a pointer to its first element,
// or nil if values is empty.
func arenaCopySlice[T any](a *arena, values []T) *T {
	if len(values) == 0 {
		return nil
	}
	dst := arenaAllocSlice[T](a, len(values))
	copy(dst, values)
	return &dst[0]
}

// Reset zeroes the used part of the arena and makes it available again.
func (a *arena) Reset() {
	if a.used > 0 && len(a.buf) > 0 {
		C.memset(unsafe.Pointer(&a.buf[0]), 0, C.size_t(min(a.used, len(a.buf))))
	}
	a.used = 0
}

// Free releases the C memory. The arena can't be used afterwards.
func (a *arena) Free() {
	if len(a.buf) > 0 {
		cFree(&a.buf[0])
	}
	a.buf = nil
	a.used = 0
}

const (
	// minPooledArenaSize is the smallest arena handed out by arenaPools (2KB).
	minPooledArenaSize = 2048

	// maxPooledArenaSize is the largest arena kept in arenaPools (16MB): larger ones are freed on Return.
	maxPooledArenaSize = 16 * 1024 * 1024
)

// arenaPools keeps one sync.Pool of arenas per power-of-2 size, from minPooledArenaSize to maxPooledArenaSize.
// It is safe for concurrent use.
type arenaPools struct {
	pools              []sync.Pool
	minShift, maxShift int
}

func newArenaPools() *arenaPools {
	minShift := bits.TrailingZeros(uint(minPooledArenaSize))
	maxShift := bits.TrailingZeros(uint(maxPooledArenaSize))
	return &arenaPools{
		pools:    make([]sync.Pool, maxShift-minShift+1),
		minShift: minShift,
		maxShift: maxShift,
	}
}

// Get returns a clean arena with at least size bytes.
func (ap *arenaPools) Get(size int) *arena {
	if size <= 0 {
		size = minPooledArenaSize
	}
	shift := max(bits.Len(uint(size-1)), ap.minShift)
	if shift > ap.maxShift {
		return newArena(size)
	}
	poolIndex := shift - ap.minShift
	if obj := ap.pools[poolIndex].Get(); obj != nil {
		return obj.(*arena)
	}
	a := newArena(1 << shift)
	a.poolIndex = poolIndex
	return a
}

// Return gives the arena back to its pool, or frees it if it didn't come from one.
func (ap *arenaPools) Return(a *arena) {
	if a == nil {
		return
	}
	if a.poolIndex < 0 || a.poolIndex >= len(ap.pools) {
		a.Free()
		return
	}
	a.Reset()
	ap.pools[a.poolIndex].Put(a)
}
