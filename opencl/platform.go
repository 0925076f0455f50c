package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"fmt"
	"regexp"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

// Platform is an OpenCL platform: the host plus a set of devices managed by one vendor implementation.
//
// Platforms are owned by the runtime and never released.
type Platform struct {
	cPlatform C.cl_platform_id
	rt        *Runtime
}

// Platforms returns the platforms available from the default runtime (see Load).
//
// If the ICD loader finds no vendor drivers, it returns an empty list and no error.
func Platforms() ([]*Platform, error) {
	rt, err := defaultRuntimeOrError()
	if err != nil {
		return nil, err
	}
	return rt.Platforms()
}

// Platforms returns the platforms available in the runtime.
func (rt *Runtime) Platforms() ([]*Platform, error) {
	var numPlatforms C.cl_uint
	code := C.call_clGetPlatformIDs(rt.api, 0, nil, &numPlatforms)
	if ErrorCode(code) == ErrPlatformNotFound || (code == C.CL_SUCCESS && numPlatforms == 0) {
		// The ICD loader returns CL_PLATFORM_NOT_FOUND_KHR when there are no vendor drivers installed.
		return nil, nil
	}
	if err := toError(code); err != nil {
		return nil, errors.WithMessage(err, "failed to count OpenCL platforms")
	}
	cPlatforms := make([]C.cl_platform_id, numPlatforms)
	if err := toError(C.call_clGetPlatformIDs(rt.api, numPlatforms, &cPlatforms[0], &numPlatforms)); err != nil {
		return nil, errors.WithMessage(err, "failed to list OpenCL platforms")
	}
	platforms := make([]*Platform, 0, numPlatforms)
	for _, cPlatform := range cPlatforms[:numPlatforms] {
		platforms = append(platforms, &Platform{cPlatform: cPlatform, rt: rt})
	}
	return platforms, nil
}

// DefaultDevice returns the first device of the given type, searching the platforms in order.
//
// It returns an error wrapping ErrDeviceNotFound if there is no such device.
func DefaultDevice(deviceType DeviceType) (*Device, error) {
	platforms, err := Platforms()
	if err != nil {
		return nil, err
	}
	for _, platform := range platforms {
		devices, err := platform.Devices(deviceType)
		if err != nil {
			return nil, err
		}
		if len(devices) > 0 {
			return devices[0], nil
		}
	}
	return nil, errors.WithMessagef(ErrDeviceNotFound, "no OpenCL device of type %s in %d platform(s)",
		deviceType, len(platforms))
}

func (p *Platform) infoFn(param C.cl_platform_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetPlatformInfo(p.rt.api, p.cPlatform, param, size, value, sizeRet)
	}
}

// Handle returns the raw cl_platform_id.
func (p *Platform) Handle() Handle {
	return Handle(unsafe.Pointer(p.cPlatform))
}

// Runtime the platform belongs to.
func (p *Platform) Runtime() *Runtime {
	return p.rt
}

// String implements fmt.Stringer, returning the platform name.
func (p *Platform) String() string {
	name, err := p.Name()
	if err != nil {
		return fmt.Sprintf("Platform(%#x)", p.Handle())
	}
	return name
}

// Name of the platform.
func (p *Platform) Name() (string, error) {
	return queryInfoString(p.rt, p.infoFn(C.CL_PLATFORM_NAME))
}

// Vendor of the platform.
func (p *Platform) Vendor() (string, error) {
	return queryInfoString(p.rt, p.infoFn(C.CL_PLATFORM_VENDOR))
}

// Version returns the version string, formatted as "OpenCL <major>.<minor> <platform-specific information>".
func (p *Platform) Version() (string, error) {
	return queryInfoString(p.rt, p.infoFn(C.CL_PLATFORM_VERSION))
}

// Profile returns "FULL_PROFILE" or "EMBEDDED_PROFILE".
func (p *Platform) Profile() (string, error) {
	return queryInfoString(p.rt, p.infoFn(C.CL_PLATFORM_PROFILE))
}

// Extensions returns the space separated list of extensions supported by the platform.
func (p *Platform) Extensions() (string, error) {
	return queryInfoString(p.rt, p.infoFn(C.CL_PLATFORM_EXTENSIONS))
}

// HostTimerResolution in nanoseconds. OpenCL 2.1.
func (p *Platform) HostTimerResolution() (uint64, error) {
	value, err := queryInfoScalar[C.cl_ulong](p.infoFn(C.CL_PLATFORM_HOST_TIMER_RESOLUTION))
	return uint64(value), err
}

// NumericVersion of the platform. OpenCL 3.0.
func (p *Platform) NumericVersion() (Version, error) {
	value, err := queryInfoScalar[C.cl_version](p.infoFn(C.CL_PLATFORM_NUMERIC_VERSION))
	return Version(value), err
}

// ExtensionsWithVersion returns the extensions supported by the platform, with their versions. OpenCL 3.0.
func (p *Platform) ExtensionsWithVersion() ([]NameVersion, error) {
	values, err := queryInfoSlice[C.cl_name_version](p.rt, p.infoFn(C.CL_PLATFORM_EXTENSIONS_WITH_VERSION))
	return nameVersionsFromC(values), err
}

// UnloadCompiler hints the platform it can release the resources of its OpenCL C compiler.
func (p *Platform) UnloadCompiler() error {
	return toError(C.call_clUnloadPlatformCompiler(p.rt.api, p.cPlatform))
}

// Devices returns the platform devices of the given type. It returns an empty list if there are none.
func (p *Platform) Devices(deviceType DeviceType) ([]*Device, error) {
	var numDevices C.cl_uint
	code := C.call_clGetDeviceIDs(p.rt.api, p.cPlatform, C.cl_device_type(deviceType), 0, nil, &numDevices)
	if ErrorCode(code) == ErrDeviceNotFound || (code == C.CL_SUCCESS && numDevices == 0) {
		return nil, nil
	}
	if err := toError(code); err != nil {
		return nil, errors.WithMessagef(err, "failed to count devices of type %s in platform %s", deviceType, p)
	}
	cDevices := make([]C.cl_device_id, numDevices)
	err := toError(C.call_clGetDeviceIDs(p.rt.api, p.cPlatform, C.cl_device_type(deviceType), numDevices,
		&cDevices[0], &numDevices))
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to list devices of type %s in platform %s", deviceType, p)
	}
	devices := make([]*Device, 0, numDevices)
	for _, cDevice := range cDevices[:numDevices] {
		devices = append(devices, newDevice(p.rt, cDevice))
	}
	return devices, nil
}

// DefaultDevice returns the platform's default device (DeviceTypeDefault).
func (p *Platform) DefaultDevice() (*Device, error) {
	devices, err := p.Devices(DeviceTypeDefault)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, errors.WithMessagef(ErrDeviceNotFound, "platform %s has no default device", p)
	}
	return devices[0], nil
}

var reOpenCLVersion = regexp.MustCompile(`^OpenCL (?:C )?(\d+)\.(\d+)`)

// parseOpenCLVersion converts a version string like "OpenCL 3.0 CUDA 12.2.140" or "OpenCL C 1.2 " to a
// semantic version ("v3.0"), as used by golang.org/x/mod/semver.
func parseOpenCLVersion(version string) (string, error) {
	matches := reOpenCLVersion.FindStringSubmatch(version)
	if matches == nil {
		return "", errors.Errorf("can't parse OpenCL version from %q", version)
	}
	return fmt.Sprintf("v%s.%s", matches[1], matches[2]), nil
}

// SemVer returns the platform OpenCL version as a semantic version string (e.g.: "v3.0"),
// to use with golang.org/x/mod/semver.
func (p *Platform) SemVer() (string, error) {
	version, err := p.Version()
	if err != nil {
		return "", err
	}
	return parseOpenCLVersion(version)
}

// AtLeast returns whether the platform implements at least the given OpenCL version (e.g.: "2.0" or "v2.0").
func (p *Platform) AtLeast(version string) (bool, error) {
	current, err := p.SemVer()
	if err != nil {
		return false, err
	}
	return versionAtLeast(current, version)
}

func versionAtLeast(current, version string) (bool, error) {
	if len(version) == 0 || version[0] != 'v' {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return false, errors.Errorf("invalid version %q", version)
	}
	return semver.Compare(current, version) >= 0, nil
}
