package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Device is a reference to an OpenCL device. Root devices (returned by Platform.Devices) are owned by the
// runtime and don't need to be released. Sub-devices are returned as SubDevice, which must be released.
type Device struct {
	cDevice C.cl_device_id
	rt      *Runtime
}

func newDevice(rt *Runtime, cDevice C.cl_device_id) *Device {
	return &Device{cDevice: cDevice, rt: rt}
}

// Handle returns the raw cl_device_id.
func (d *Device) Handle() Handle {
	return Handle(unsafe.Pointer(d.cDevice))
}

// String implements fmt.Stringer, returning the device name.
func (d *Device) String() string {
	name, err := d.Name()
	if err != nil {
		return fmt.Sprintf("Device(%#x)", d.Handle())
	}
	return name
}

func (d *Device) infoFn(param C.cl_device_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetDeviceInfo(d.rt.api, d.cDevice, param, size, value, sizeRet)
	}
}

func (d *Device) uintInfo(param C.cl_device_info) (uint32, error) {
	value, err := queryInfoScalar[C.cl_uint](d.infoFn(param))
	return uint32(value), err
}

func (d *Device) ulongInfo(param C.cl_device_info) (uint64, error) {
	value, err := queryInfoScalar[C.cl_ulong](d.infoFn(param))
	return uint64(value), err
}

func (d *Device) sizeInfo(param C.cl_device_info) (int, error) {
	value, err := queryInfoScalar[C.size_t](d.infoFn(param))
	return int(value), err
}

func (d *Device) boolInfo(param C.cl_device_info) (bool, error) {
	return queryInfoBool(d.infoFn(param))
}

func (d *Device) stringInfo(param C.cl_device_info) (string, error) {
	return queryInfoString(d.rt, d.infoFn(param))
}

func (d *Device) nameVersionsInfo(param C.cl_device_info) ([]NameVersion, error) {
	values, err := queryInfoSlice[C.cl_name_version](d.rt, d.infoFn(param))
	return nameVersionsFromC(values), err
}

func (d *Device) Type() (DeviceType, error) {
	value, err := d.ulongInfo(C.CL_DEVICE_TYPE)
	return DeviceType(value), err
}

// VendorID is usually the PCIe vendor id, see VendorIDText.
func (d *Device) VendorID() (uint32, error) { return d.uintInfo(C.CL_DEVICE_VENDOR_ID) }

func (d *Device) MaxComputeUnits() (uint32, error) { return d.uintInfo(C.CL_DEVICE_MAX_COMPUTE_UNITS) }

func (d *Device) MaxWorkItemDimensions() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_MAX_WORK_ITEM_DIMENSIONS)
}

func (d *Device) MaxWorkGroupSize() (int, error) { return d.sizeInfo(C.CL_DEVICE_MAX_WORK_GROUP_SIZE) }

// MaxWorkItemSizes returns the maximum number of work-items per dimension of a work-group.
func (d *Device) MaxWorkItemSizes() ([]int, error) {
	values, err := queryInfoSlice[C.size_t](d.rt, d.infoFn(C.CL_DEVICE_MAX_WORK_ITEM_SIZES))
	if err != nil {
		return nil, err
	}
	sizes := make([]int, len(values))
	for ii, v := range values {
		sizes[ii] = int(v)
	}
	return sizes, nil
}

func (d *Device) PreferredVectorWidthChar() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_CHAR)
}
func (d *Device) PreferredVectorWidthShort() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_SHORT)
}
func (d *Device) PreferredVectorWidthInt() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_INT)
}
func (d *Device) PreferredVectorWidthLong() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_LONG)
}
func (d *Device) PreferredVectorWidthFloat() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_FLOAT)
}
func (d *Device) PreferredVectorWidthDouble() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_DOUBLE)
}
func (d *Device) PreferredVectorWidthHalf() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_HALF)
}

func (d *Device) NativeVectorWidthChar() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_NATIVE_VECTOR_WIDTH_CHAR)
}
func (d *Device) NativeVectorWidthShort() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_NATIVE_VECTOR_WIDTH_SHORT)
}
func (d *Device) NativeVectorWidthInt() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_NATIVE_VECTOR_WIDTH_INT)
}
func (d *Device) NativeVectorWidthLong() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_NATIVE_VECTOR_WIDTH_LONG)
}
func (d *Device) NativeVectorWidthFloat() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_NATIVE_VECTOR_WIDTH_FLOAT)
}
func (d *Device) NativeVectorWidthDouble() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_NATIVE_VECTOR_WIDTH_DOUBLE)
}
func (d *Device) NativeVectorWidthHalf() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_NATIVE_VECTOR_WIDTH_HALF)
}

// MaxClockFrequency in MHz.
func (d *Device) MaxClockFrequency() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_MAX_CLOCK_FREQUENCY)
}

func (d *Device) AddressBits() (uint32, error) { return d.uintInfo(C.CL_DEVICE_ADDRESS_BITS) }

func (d *Device) MaxReadImageArgs() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_MAX_READ_IMAGE_ARGS)
}

func (d *Device) MaxWriteImageArgs() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_MAX_WRITE_IMAGE_ARGS)
}

func (d *Device) MaxReadWriteImageArgs() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_MAX_READ_WRITE_IMAGE_ARGS)
}

// MaxMemAllocSize is the largest memory object allocation, in bytes.
func (d *Device) MaxMemAllocSize() (uint64, error) {
	return d.ulongInfo(C.CL_DEVICE_MAX_MEM_ALLOC_SIZE)
}

func (d *Device) Image2DMaxWidth() (int, error)  { return d.sizeInfo(C.CL_DEVICE_IMAGE2D_MAX_WIDTH) }
func (d *Device) Image2DMaxHeight() (int, error) { return d.sizeInfo(C.CL_DEVICE_IMAGE2D_MAX_HEIGHT) }
func (d *Device) Image3DMaxWidth() (int, error)  { return d.sizeInfo(C.CL_DEVICE_IMAGE3D_MAX_WIDTH) }
func (d *Device) Image3DMaxHeight() (int, error) { return d.sizeInfo(C.CL_DEVICE_IMAGE3D_MAX_HEIGHT) }
func (d *Device) Image3DMaxDepth() (int, error)  { return d.sizeInfo(C.CL_DEVICE_IMAGE3D_MAX_DEPTH) }

func (d *Device) ImageMaxBufferSize() (int, error) {
	return d.sizeInfo(C.CL_DEVICE_IMAGE_MAX_BUFFER_SIZE)
}
func (d *Device) ImageMaxArraySize() (int, error) {
	return d.sizeInfo(C.CL_DEVICE_IMAGE_MAX_ARRAY_SIZE)
}

func (d *Device) ImageSupport() (bool, error) { return d.boolInfo(C.CL_DEVICE_IMAGE_SUPPORT) }

func (d *Device) ImagePitchAlignment() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_IMAGE_PITCH_ALIGNMENT)
}

func (d *Device) ImageBaseAddressAlignment() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_IMAGE_BASE_ADDRESS_ALIGNMENT)
}

// MaxParameterSize is the maximum size in bytes of all the arguments of a kernel.
func (d *Device) MaxParameterSize() (int, error) { return d.sizeInfo(C.CL_DEVICE_MAX_PARAMETER_SIZE) }

func (d *Device) MaxSamplers() (uint32, error) { return d.uintInfo(C.CL_DEVICE_MAX_SAMPLERS) }

// MemBaseAddrAlign is the alignment, in bits, of the base address of memory objects.
func (d *Device) MemBaseAddrAlign() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_MEM_BASE_ADDR_ALIGN)
}

// MinDataTypeAlignSize is deprecated since OpenCL 1.2.
func (d *Device) MinDataTypeAlignSize() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_MIN_DATA_TYPE_ALIGN_SIZE)
}

func (d *Device) SingleFPConfig() (FPConfig, error) {
	value, err := d.ulongInfo(C.CL_DEVICE_SINGLE_FP_CONFIG)
	return FPConfig(value), err
}

func (d *Device) DoubleFPConfig() (FPConfig, error) {
	value, err := d.ulongInfo(C.CL_DEVICE_DOUBLE_FP_CONFIG)
	return FPConfig(value), err
}

// HalfFPConfig is only available if the device supports the cl_khr_fp16 extension.
func (d *Device) HalfFPConfig() (FPConfig, error) {
	value, err := d.ulongInfo(C.CL_DEVICE_HALF_FP_CONFIG)
	return FPConfig(value), err
}

func (d *Device) GlobalMemCacheType() (CacheType, error) {
	value, err := d.uintInfo(C.CL_DEVICE_GLOBAL_MEM_CACHE_TYPE)
	return CacheType(value), err
}

func (d *Device) GlobalMemCachelineSize() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_GLOBAL_MEM_CACHELINE_SIZE)
}

func (d *Device) GlobalMemCacheSize() (uint64, error) {
	return d.ulongInfo(C.CL_DEVICE_GLOBAL_MEM_CACHE_SIZE)
}

// GlobalMemSize in bytes.
func (d *Device) GlobalMemSize() (uint64, error) { return d.ulongInfo(C.CL_DEVICE_GLOBAL_MEM_SIZE) }

func (d *Device) MaxConstantBufferSize() (uint64, error) {
	return d.ulongInfo(C.CL_DEVICE_MAX_CONSTANT_BUFFER_SIZE)
}

func (d *Device) MaxConstantArgs() (uint32, error) { return d.uintInfo(C.CL_DEVICE_MAX_CONSTANT_ARGS) }

func (d *Device) MaxGlobalVariableSize() (int, error) {
	return d.sizeInfo(C.CL_DEVICE_MAX_GLOBAL_VARIABLE_SIZE)
}

func (d *Device) GlobalVariablePreferredTotalSize() (int, error) {
	return d.sizeInfo(C.CL_DEVICE_GLOBAL_VARIABLE_PREFERRED_TOTAL_SIZE)
}

func (d *Device) LocalMemType() (LocalMemType, error) {
	value, err := d.uintInfo(C.CL_DEVICE_LOCAL_MEM_TYPE)
	return LocalMemType(value), err
}

// LocalMemSize in bytes.
func (d *Device) LocalMemSize() (uint64, error) { return d.ulongInfo(C.CL_DEVICE_LOCAL_MEM_SIZE) }

func (d *Device) ErrorCorrectionSupport() (bool, error) {
	return d.boolInfo(C.CL_DEVICE_ERROR_CORRECTION_SUPPORT)
}

// HostUnifiedMemory is deprecated since OpenCL 2.0.
func (d *Device) HostUnifiedMemory() (bool, error) {
	return d.boolInfo(C.CL_DEVICE_HOST_UNIFIED_MEMORY)
}

// ProfilingTimerResolution in nanoseconds.
func (d *Device) ProfilingTimerResolution() (int, error) {
	return d.sizeInfo(C.CL_DEVICE_PROFILING_TIMER_RESOLUTION)
}

func (d *Device) EndianLittle() (bool, error)      { return d.boolInfo(C.CL_DEVICE_ENDIAN_LITTLE) }
func (d *Device) Available() (bool, error)         { return d.boolInfo(C.CL_DEVICE_AVAILABLE) }
func (d *Device) CompilerAvailable() (bool, error) { return d.boolInfo(C.CL_DEVICE_COMPILER_AVAILABLE) }
func (d *Device) LinkerAvailable() (bool, error)   { return d.boolInfo(C.CL_DEVICE_LINKER_AVAILABLE) }

func (d *Device) ExecutionCapabilities() (ExecCapabilities, error) {
	value, err := d.ulongInfo(C.CL_DEVICE_EXECUTION_CAPABILITIES)
	return ExecCapabilities(value), err
}

// QueueOnHostProperties are the command queue properties supported by the device. Also known as
// CL_DEVICE_QUEUE_PROPERTIES in OpenCL 1.x.
func (d *Device) QueueOnHostProperties() (CommandQueueProperties, error) {
	value, err := d.ulongInfo(C.CL_DEVICE_QUEUE_ON_HOST_PROPERTIES)
	return CommandQueueProperties(value), err
}

func (d *Device) QueueOnDeviceProperties() (CommandQueueProperties, error) {
	value, err := d.ulongInfo(C.CL_DEVICE_QUEUE_ON_DEVICE_PROPERTIES)
	return CommandQueueProperties(value), err
}

func (d *Device) QueueOnDevicePreferredSize() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_QUEUE_ON_DEVICE_PREFERRED_SIZE)
}

func (d *Device) QueueOnDeviceMaxSize() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_QUEUE_ON_DEVICE_MAX_SIZE)
}

func (d *Device) MaxOnDeviceQueues() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_MAX_ON_DEVICE_QUEUES)
}
func (d *Device) MaxOnDeviceEvents() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_MAX_ON_DEVICE_EVENTS)
}

// BuiltInKernels returns the ";" separated list of built-in kernels supported by the device.
func (d *Device) BuiltInKernels() (string, error) { return d.stringInfo(C.CL_DEVICE_BUILT_IN_KERNELS) }

// Platform the device belongs to.
func (d *Device) Platform() (*Platform, error) {
	value, err := queryInfoScalar[C.cl_platform_id](d.infoFn(C.CL_DEVICE_PLATFORM))
	if err != nil {
		return nil, err
	}
	return &Platform{cPlatform: value, rt: d.rt}, nil
}

func (d *Device) Name() (string, error)          { return d.stringInfo(C.CL_DEVICE_NAME) }
func (d *Device) Vendor() (string, error)        { return d.stringInfo(C.CL_DEVICE_VENDOR) }
func (d *Device) DriverVersion() (string, error) { return d.stringInfo(C.CL_DRIVER_VERSION) }
func (d *Device) Profile() (string, error)       { return d.stringInfo(C.CL_DEVICE_PROFILE) }

// Version returns the device version string: "OpenCL <major>.<minor> <vendor-specific information>".
func (d *Device) Version() (string, error) { return d.stringInfo(C.CL_DEVICE_VERSION) }

// OpenCLCVersion returns the highest OpenCL C version supported by the compiler: "OpenCL C <major>.<minor> ...".
func (d *Device) OpenCLCVersion() (string, error) { return d.stringInfo(C.CL_DEVICE_OPENCL_C_VERSION) }

// Extensions returns the space separated list of extensions supported by the device.
func (d *Device) Extensions() (string, error) { return d.stringInfo(C.CL_DEVICE_EXTENSIONS) }

// HasExtension returns whether the device supports the named extension (e.g.: "cl_khr_fp64").
func (d *Device) HasExtension(name string) (bool, error) {
	extensions, err := d.Extensions()
	if err != nil {
		return false, err
	}
	for _, extension := range strings.Fields(extensions) {
		if extension == name {
			return true, nil
		}
	}
	return false, nil
}

func (d *Device) PrintfBufferSize() (int, error) { return d.sizeInfo(C.CL_DEVICE_PRINTF_BUFFER_SIZE) }

func (d *Device) PreferredInteropUserSync() (bool, error) {
	return d.boolInfo(C.CL_DEVICE_PREFERRED_INTEROP_USER_SYNC)
}

// ParentDevice returns the handle of the device this sub-device was partitioned from, or 0 for root devices.
func (d *Device) ParentDevice() (Handle, error) {
	value, err := queryInfoScalar[C.cl_device_id](d.infoFn(C.CL_DEVICE_PARENT_DEVICE))
	return Handle(unsafe.Pointer(value)), err
}

func (d *Device) PartitionMaxSubDevices() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PARTITION_MAX_SUB_DEVICES)
}

func (d *Device) partitionPropertiesInfo(param C.cl_device_info) ([]int64, error) {
	values, err := queryInfoSlice[C.cl_device_partition_property](d.rt, d.infoFn(param))
	if err != nil {
		return nil, err
	}
	props := make([]int64, len(values))
	for ii, v := range values {
		props[ii] = int64(v)
	}
	return props, nil
}

// PartitionProperties lists the partition types supported by the device (DevicePartitionEqually, ...).
func (d *Device) PartitionProperties() ([]int64, error) {
	return d.partitionPropertiesInfo(C.CL_DEVICE_PARTITION_PROPERTIES)
}

func (d *Device) PartitionAffinityDomain() (AffinityDomain, error) {
	value, err := d.ulongInfo(C.CL_DEVICE_PARTITION_AFFINITY_DOMAIN)
	return AffinityDomain(value), err
}

// PartitionType returns the properties used to create this sub-device. Empty for root devices.
func (d *Device) PartitionType() ([]int64, error) {
	return d.partitionPropertiesInfo(C.CL_DEVICE_PARTITION_TYPE)
}

func (d *Device) ReferenceCount() (uint32, error) { return d.uintInfo(C.CL_DEVICE_REFERENCE_COUNT) }

func (d *Device) SVMCapabilities() (SVMCapabilities, error) {
	value, err := d.ulongInfo(C.CL_DEVICE_SVM_CAPABILITIES)
	return SVMCapabilities(value), err
}

func (d *Device) PreferredPlatformAtomicAlignment() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PREFERRED_PLATFORM_ATOMIC_ALIGNMENT)
}

func (d *Device) PreferredGlobalAtomicAlignment() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PREFERRED_GLOBAL_ATOMIC_ALIGNMENT)
}

func (d *Device) PreferredLocalAtomicAlignment() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PREFERRED_LOCAL_ATOMIC_ALIGNMENT)
}

func (d *Device) MaxPipeArgs() (uint32, error) { return d.uintInfo(C.CL_DEVICE_MAX_PIPE_ARGS) }

func (d *Device) PipeMaxActiveReservations() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PIPE_MAX_ACTIVE_RESERVATIONS)
}

func (d *Device) PipeMaxPacketSize() (uint32, error) {
	return d.uintInfo(C.CL_DEVICE_PIPE_MAX_PACKET_SIZE)
}

// ILVersion returns the space separated list of intermediate languages (e.g.: "SPIR-V_1.2") supported.
func (d *Device) ILVersion() (string, error) { return d.stringInfo(C.CL_DEVICE_IL_VERSION) }

func (d *Device) MaxNumSubGroups() (uint32, error) { return d.uintInfo(C.CL_DEVICE_MAX_NUM_SUB_GROUPS) }

func (d *Device) SubGroupIndependentForwardProgress() (bool, error) {
	return d.boolInfo(C.CL_DEVICE_SUB_GROUP_INDEPENDENT_FORWARD_PROGRESS)
}

// NumericVersion of the device. OpenCL 3.0.
func (d *Device) NumericVersion() (Version, error) {
	value, err := d.uintInfo(C.CL_DEVICE_NUMERIC_VERSION)
	return Version(value), err
}

func (d *Device) ExtensionsWithVersion() ([]NameVersion, error) {
	return d.nameVersionsInfo(C.CL_DEVICE_EXTENSIONS_WITH_VERSION)
}

func (d *Device) ILsWithVersion() ([]NameVersion, error) {
	return d.nameVersionsInfo(C.CL_DEVICE_ILS_WITH_VERSION)
}

func (d *Device) BuiltInKernelsWithVersion() ([]NameVersion, error) {
	return d.nameVersionsInfo(C.CL_DEVICE_BUILT_IN_KERNELS_WITH_VERSION)
}

func (d *Device) OpenCLCAllVersions() ([]NameVersion, error) {
	return d.nameVersionsInfo(C.CL_DEVICE_OPENCL_C_ALL_VERSIONS)
}

func (d *Device) OpenCLCFeatures() ([]NameVersion, error) {
	return d.nameVersionsInfo(C.CL_DEVICE_OPENCL_C_FEATURES)
}

func (d *Device) AtomicMemoryCapabilities() (AtomicCapabilities, error) {
	value, err := d.ulongInfo(C.CL_DEVICE_ATOMIC_MEMORY_CAPABILITIES)
	return AtomicCapabilities(value), err
}

func (d *Device) AtomicFenceCapabilities() (AtomicCapabilities, error) {
	value, err := d.ulongInfo(C.CL_DEVICE_ATOMIC_FENCE_CAPABILITIES)
	return AtomicCapabilities(value), err
}

func (d *Device) NonUniformWorkGroupSupport() (bool, error) {
	return d.boolInfo(C.CL_DEVICE_NON_UNIFORM_WORK_GROUP_SUPPORT)
}

func (d *Device) WorkGroupCollectiveFunctionsSupport() (bool, error) {
	return d.boolInfo(C.CL_DEVICE_WORK_GROUP_COLLECTIVE_FUNCTIONS_SUPPORT)
}

func (d *Device) GenericAddressSpaceSupport() (bool, error) {
	return d.boolInfo(C.CL_DEVICE_GENERIC_ADDRESS_SPACE_SUPPORT)
}

// DeviceEnqueueCapabilities is a bitfield: 1 (CL_DEVICE_QUEUE_SUPPORTED), 2 (CL_DEVICE_QUEUE_REPLACEABLE_DEFAULT).
func (d *Device) DeviceEnqueueCapabilities() (uint64, error) {
	return d.ulongInfo(C.CL_DEVICE_DEVICE_ENQUEUE_CAPABILITIES)
}

func (d *Device) PipeSupport() (bool, error) { return d.boolInfo(C.CL_DEVICE_PIPE_SUPPORT) }

func (d *Device) PreferredWorkGroupSizeMultiple() (int, error) {
	return d.sizeInfo(C.CL_DEVICE_PREFERRED_WORK_GROUP_SIZE_MULTIPLE)
}

func (d *Device) LatestConformanceVersionPassed() (string, error) {
	return d.stringInfo(C.CL_DEVICE_LATEST_CONFORMANCE_VERSION_PASSED)
}

// SupportsHalf returns whether the half precision floating point configuration of the device has any of the
// bits in minFP set. It returns false if the device doesn't support half precision at all.
func (d *Device) SupportsHalf(minFP FPConfig) bool {
	fp, err := d.HalfFPConfig()
	return err == nil && fp&minFP != 0
}

// SupportsDouble returns whether the double precision floating point configuration of the device has any of the
// bits in minFP set. It returns false if the device doesn't support double precision at all.
func (d *Device) SupportsDouble(minFP FPConfig) bool {
	fp, err := d.DoubleFPConfig()
	return err == nil && fp&minFP != 0
}

// SVMMemCapability returns the SVM capabilities of the device, or 0 if it doesn't support SVM (or the query fails).
func (d *Device) SVMMemCapability() SVMCapabilities {
	svm, err := d.SVMCapabilities()
	if err != nil {
		return 0
	}
	return svm
}

// DeviceAndHostTimer returns synchronized device and host timestamps, in nanoseconds. OpenCL 2.1.
func (d *Device) DeviceAndHostTimer() (deviceTimestamp, hostTimestamp uint64, err error) {
	var cDevice, cHost C.cl_ulong
	err = toError(C.call_clGetDeviceAndHostTimer(d.rt.api, d.cDevice, &cDevice, &cHost))
	return uint64(cDevice), uint64(cHost), err
}

// HostTimer returns the current host timestamp, in nanoseconds, as seen by the device. OpenCL 2.1.
func (d *Device) HostTimer() (uint64, error) {
	var cHost C.cl_ulong
	err := toError(C.call_clGetHostTimer(d.rt.api, d.cDevice, &cHost))
	return uint64(cHost), err
}

// SubDevice is a device created by partitioning another device. It must be released with Release, or it will
// be released when garbage collected.
type SubDevice struct {
	*Device
	released bool
}

// CreateSubDevices partitions the device according to properties: a zero terminated list, see
// PartitionEqually, PartitionByCounts and PartitionByAffinityDomain.
//
// The caller owns the returned sub-devices. See also Context.CreateSubDevices.
func (d *Device) CreateSubDevices(properties []int64) ([]*SubDevice, error) {
	if len(properties) == 0 || properties[len(properties)-1] != 0 {
		return nil, errors.Errorf("CreateSubDevices: properties must be a zero terminated list, got %v", properties)
	}
	scratch := d.rt.arenaPools.Get(len(properties) * 8)
	defer d.rt.arenaPools.Return(scratch)
	cProps := arenaAllocSlice[C.cl_device_partition_property](scratch, len(properties))
	for ii, prop := range properties {
		cProps[ii] = C.cl_device_partition_property(prop)
	}

	var numDevices C.cl_uint
	err := toError(C.call_clCreateSubDevices(d.rt.api, d.cDevice, &cProps[0], 0, nil, &numDevices))
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to count sub-devices of %s for partition %v", d, properties)
	}
	if numDevices == 0 {
		return nil, errors.Errorf("CreateSubDevices: partition %v of %s yields no sub-devices", properties, d)
	}
	cDevices := make([]C.cl_device_id, numDevices)
	err = toError(C.call_clCreateSubDevices(d.rt.api, d.cDevice, &cProps[0], numDevices, &cDevices[0], nil))
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create sub-devices of %s for partition %v", d, properties)
	}
	subDevices := make([]*SubDevice, numDevices)
	for ii, cDevice := range cDevices {
		subDevices[ii] = newSubDevice(d.rt, cDevice)
	}
	klog.V(1).Infof("created %d sub-devices of %s", numDevices, d)
	return subDevices, nil
}

func newSubDevice(rt *Runtime, cDevice C.cl_device_id) *SubDevice {
	sd := &SubDevice{Device: newDevice(rt, cDevice)}
	runtime.SetFinalizer(sd, func(sd *SubDevice) {
		if err := sd.Release(); err != nil {
			klog.Errorf("opencl.SubDevice.Release failed during garbage collection: %+v", err)
		}
	})
	return sd
}

// Release the sub-device. It's safe to call more than once, or on a nil SubDevice.
func (sd *SubDevice) Release() error {
	if sd == nil || sd.released || sd.Device == nil {
		return nil
	}
	sd.released = true
	defer runtime.KeepAlive(sd)
	return toError(C.call_clReleaseDevice(sd.rt.api, sd.cDevice))
}
