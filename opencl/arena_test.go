package opencl

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena(t *testing.T) {
	a := newArena(1024)
	defer a.Free()
	base := uintptr(unsafe.Pointer(&a.buf[0]))

	ptrInt := arenaAlloc[int](a)
	assert.Equal(t, base, uintptr(unsafe.Pointer(ptrInt)))
	assert.Equal(t, 8, a.used)

	// Every allocation is aligned to at least 8 bytes.
	ptrInt32 := arenaAlloc[int32](a)
	assert.Equal(t, base+8, uintptr(unsafe.Pointer(ptrInt32)))
	assert.Equal(t, 12, a.used)

	bytes := arenaAllocSlice[byte](a, 9)
	require.Len(t, bytes, 9)
	assert.Equal(t, base+16, uintptr(unsafe.Pointer(&bytes[0])))
	assert.Equal(t, 25, a.used)
	for _, b := range bytes {
		assert.Zero(t, b)
	}

	assert.Nil(t, arenaAllocSlice[uint64](a, 0))
	assert.Nil(t, arenaCopySlice[uint64](a, nil))
	values := []uint64{1, 2, 3}
	first := arenaCopySlice(a, values)
	require.NotNil(t, first)
	assert.Equal(t, values, unsafe.Slice(first, 3))
	assert.Equal(t, 32+24, a.used)

	// Too large.
	require.Panics(t, func() { _ = arenaAlloc[[512]int](a) })

	// Reset zeroes what was used.
	*ptrInt = 7
	a.Reset()
	assert.Zero(t, a.used)
	assert.Zero(t, *ptrInt)
	assert.NotPanics(t, func() { _ = arenaAllocSlice[int](a, 128) })
}

func TestArenaPools(t *testing.T) {
	ap := newArenaPools()

	a := ap.Get(0)
	assert.Len(t, a.buf, minPooledArenaSize)
	assert.Equal(t, 0, a.poolIndex)
	_ = arenaAlloc[uint64](a)
	ap.Return(a)

	a = ap.Get(3000)
	assert.Len(t, a.buf, 4096)
	assert.Equal(t, 1, a.poolIndex)
	assert.Zero(t, a.used)
	ap.Return(a)

	a = ap.Get(maxPooledArenaSize)
	assert.Len(t, a.buf, maxPooledArenaSize)
	ap.Return(a)

	// Larger than the largest pool: allocated and freed outside the pools.
	a = ap.Get(maxPooledArenaSize + 1)
	assert.Len(t, a.buf, maxPooledArenaSize+1)
	assert.Equal(t, -1, a.poolIndex)
	ap.Return(a)
	assert.Nil(t, a.buf)

	ap.Return(nil)
}

func BenchmarkArena(b *testing.B) {
	ap := newArenaPools()
	numAllocations := []int{1, 5, 10, 100}
	for _, allocations := range numAllocations {
		b.Run(fmt.Sprintf("arena/%d", allocations), func(b *testing.B) {
			for range b.N {
				a := ap.Get(0)
				for range allocations {
					_ = arenaAlloc[uint64](a)
				}
				ap.Return(a)
			}
		})
		b.Run(fmt.Sprintf("malloc/%d", allocations), func(b *testing.B) {
			for range b.N {
				for range allocations {
					ptr := cMalloc[uint64]()
					cFree(ptr)
				}
			}
		})
	}
}
