package opencl

import (
	"math/rand/v2"
	"slices"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestAlignedAlloc(t *testing.T) {
	_, err := AlignedAlloc(16, 3)
	require.Error(t, err)
	_, err = AlignedAlloc(16, 4)
	require.Error(t, err, "alignment smaller than a pointer")

	const numAllocations = 1000
	alignments := []uintptr{8, 64, HostPtrAlignment}
	var ptrs []unsafe.Pointer
	for range numAllocations {
		if len(ptrs) > 0 && rand.IntN(3) == 0 {
			// Free a random allocation.
			idx := rand.IntN(len(ptrs))
			AlignedFree(ptrs[idx])
			ptrs[idx] = ptrs[len(ptrs)-1]
			ptrs = ptrs[:len(ptrs)-1]
			continue
		}
		size := uintptr(1 + rand.IntN(10_000))
		alignment := alignments[rand.IntN(len(alignments))]
		ptr, err := AlignedAlloc(size, alignment)
		require.NoError(t, err)
		require.Zerof(t, uintptr(ptr)%alignment, "pointer %p not aligned to %d", ptr, alignment)
		data := unsafe.Slice((*byte)(ptr), size)
		require.Equal(t, -1, slices.IndexFunc(data, func(b byte) bool { return b != 0 }), "memory not zeroed")
		data[0], data[size-1] = 1, 1
		ptrs = append(ptrs, ptr)
	}
	for _, ptr := range ptrs {
		AlignedFree(ptr)
	}
	AlignedFree(nil)
}
