package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"unsafe"

	"github.com/pkg/errors"
)

// The clGetXxxInfo calls all share the same protocol: call once with a NULL value to get the size, then call again
// with a buffer of that size. infoFn captures one such call with the object and parameter name already bound.
type infoFn func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int

// queryInfoBytes returns a copy of the raw bytes of an info query.
func queryInfoBytes(rt *Runtime, fn infoFn) ([]byte, error) {
	var size C.size_t
	if err := toError(fn(0, nil, &size)); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	scratch := rt.arenaPools.Get(int(size))
	defer rt.arenaPools.Return(scratch)
	buf := arenaAllocSlice[byte](scratch, int(size))
	if err := toError(fn(size, unsafe.Pointer(&buf[0]), nil)); err != nil {
		return nil, err
	}
	result := make([]byte, len(buf))
	copy(result, buf)
	return result, nil
}

// queryInfoScalar returns a fixed size info value. T must not contain Go pointers, since the value is written
// directly into Go memory by the C call.
func queryInfoScalar[T any](fn infoFn) (T, error) {
	var value T
	err := toError(fn(cSizeOf[T](), unsafe.Pointer(&value), nil))
	return value, err
}

// queryInfoString returns a NUL terminated string info value.
func queryInfoString(rt *Runtime, fn infoFn) (string, error) {
	data, err := queryInfoBytes(rt, fn)
	if err != nil {
		return "", err
	}
	return cBytesToString(data), nil
}

// queryInfoSlice returns an array info value, with as many elements as the size returned by the query allows.
func queryInfoSlice[T any](rt *Runtime, fn infoFn) ([]T, error) {
	data, err := queryInfoBytes(rt, fn)
	if err != nil {
		return nil, err
	}
	elemSize := int(cSizeOf[T]())
	if len(data)%elemSize != 0 {
		return nil, errors.Errorf("OpenCL info query returned %d bytes, not a multiple of the element size %d",
			len(data), elemSize)
	}
	n := len(data) / elemSize
	if n == 0 {
		return nil, nil
	}
	result := make([]T, n)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&result[0])), len(data)), data)
	return result, nil
}

// queryInfoBool returns a cl_bool info value.
func queryInfoBool(fn infoFn) (bool, error) {
	value, err := queryInfoScalar[C.cl_bool](fn)
	return value != C.CL_FALSE, err
}
