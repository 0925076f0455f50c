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

// Sampler describes how a kernel reads an image: coordinates normalization, addressing and filtering.
type Sampler struct {
	cSampler C.cl_sampler
	rt       *Runtime
}

// CreateSampler creates a sampler using the OpenCL 1.2 API. The caller owns it, see also Context.CreateSampler.
func CreateSampler(ctx *Context, normalizedCoords bool, addressing AddressingMode, filter FilterMode) (
	*Sampler, error) {
	defer runtime.KeepAlive(ctx)
	var code C.cl_int
	cSampler := C.call_clCreateSampler(ctx.rt.api, ctx.cContext, cBool(normalizedCoords),
		C.cl_addressing_mode(addressing), C.cl_filter_mode(filter), &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessage(err, "failed to create sampler")
	}
	return newSampler(ctx.rt, cSampler), nil
}

// CreateSamplerWithProperties creates a sampler from key/value properties (SamplerNormalizedCoords,
// SamplerAddressingMode, SamplerFilterMode), using the OpenCL 2.0 API. The terminating 0 is added automatically.
//
// Example:
//
//	sampler, err := opencl.CreateSamplerWithProperties(ctx,
//		opencl.SamplerNormalizedCoords, 1,
//		opencl.SamplerAddressingMode, uint64(opencl.AddressRepeat),
//		opencl.SamplerFilterMode, uint64(opencl.FilterLinear))
func CreateSamplerWithProperties(ctx *Context, properties ...uint64) (*Sampler, error) {
	if len(properties)%2 != 0 {
		return nil, errors.Errorf("CreateSamplerWithProperties: properties must be key/value pairs, got %d values",
			len(properties))
	}
	defer runtime.KeepAlive(ctx)
	scratch := ctx.rt.arenaPools.Get(8 * (len(properties) + 1))
	defer ctx.rt.arenaPools.Return(scratch)
	cProps := arenaAllocSlice[C.cl_sampler_properties](scratch, len(properties)+1)
	for ii, prop := range properties {
		cProps[ii] = C.cl_sampler_properties(prop)
	}
	var code C.cl_int
	cSampler := C.call_clCreateSamplerWithProperties(ctx.rt.api, ctx.cContext, &cProps[0], &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessagef(err, "failed to create sampler with properties %v", properties)
	}
	return newSampler(ctx.rt, cSampler), nil
}

func newSampler(rt *Runtime, cSampler C.cl_sampler) *Sampler {
	s := &Sampler{cSampler: cSampler, rt: rt}
	runtime.SetFinalizer(s, func(s *Sampler) {
		if err := s.Release(); err != nil {
			klog.Errorf("Sampler.Release failed during garbage collection: %+v", err)
		}
	})
	return s
}

// Handle returns the raw cl_sampler.
func (s *Sampler) Handle() Handle {
	return Handle(unsafe.Pointer(s.cSampler))
}

// IsReleased returns whether Release was called.
func (s *Sampler) IsReleased() bool {
	return s == nil || s.cSampler == nil
}

// Release the sampler. It's safe to call more than once, or on a nil Sampler.
func (s *Sampler) Release() error {
	if s == nil || s.cSampler == nil {
		return nil
	}
	defer runtime.KeepAlive(s)
	err := toError(C.call_clReleaseSampler(s.rt.api, s.cSampler))
	s.cSampler = nil
	return err
}

func (s *Sampler) infoFn(param C.cl_sampler_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetSamplerInfo(s.rt.api, s.cSampler, param, size, value, sizeRet)
	}
}

func (s *Sampler) ReferenceCount() (uint32, error) {
	defer runtime.KeepAlive(s)
	value, err := queryInfoScalar[C.cl_uint](s.infoFn(C.CL_SAMPLER_REFERENCE_COUNT))
	return uint32(value), err
}

// Context returns the handle of the sampler's context.
func (s *Sampler) Context() (Handle, error) {
	defer runtime.KeepAlive(s)
	value, err := queryInfoScalar[C.cl_context](s.infoFn(C.CL_SAMPLER_CONTEXT))
	return Handle(unsafe.Pointer(value)), err
}

func (s *Sampler) NormalizedCoords() (bool, error) {
	defer runtime.KeepAlive(s)
	return queryInfoBool(s.infoFn(C.CL_SAMPLER_NORMALIZED_COORDS))
}

func (s *Sampler) AddressingMode() (AddressingMode, error) {
	defer runtime.KeepAlive(s)
	value, err := queryInfoScalar[C.cl_addressing_mode](s.infoFn(C.CL_SAMPLER_ADDRESSING_MODE))
	return AddressingMode(value), err
}

func (s *Sampler) FilterMode() (FilterMode, error) {
	defer runtime.KeepAlive(s)
	value, err := queryInfoScalar[C.cl_filter_mode](s.infoFn(C.CL_SAMPLER_FILTER_MODE))
	return FilterMode(value), err
}
