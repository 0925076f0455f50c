package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"fmt"
	"strings"
)

// Handle is the raw value of an OpenCL object (cl_platform_id, cl_device_id, cl_context, cl_mem, ...), for
// interoperation with other libraries. It is not owned: it remains valid only while the Go object it came from
// is alive and not released.
type Handle uintptr

// Compile time checks that the literal values in enums.go match the C headers: a mismatch makes the index
// out of range (or overflows the unsigned types).
var (
	_ = [1]struct{}{}[ExecutionComplete-C.CL_COMPLETE]
	_ = [1]struct{}{}[ExecutionQueued-C.CL_QUEUED]
	_ = [1]struct{}{}[MemObjectBuffer-C.CL_MEM_OBJECT_BUFFER]
	_ = [1]struct{}{}[MemObjectPipe-C.CL_MEM_OBJECT_PIPE]
	_ = [1]struct{}{}[BuildStatusSuccess-C.CL_BUILD_SUCCESS]
	_ = [1]struct{}{}[BuildStatusInProgress-C.CL_BUILD_IN_PROGRESS]
	_ = [1]struct{}{}[CommandNDRangeKernel-C.CL_COMMAND_NDRANGE_KERNEL]
	_ = [1]struct{}{}[CommandSVMMigrateMem-C.CL_COMMAND_SVM_MIGRATE_MEM]
)

// DeviceType is a bitfield of device types, used to select devices.
type DeviceType uint64

const (
	DeviceTypeDefault     DeviceType = C.CL_DEVICE_TYPE_DEFAULT
	DeviceTypeCPU         DeviceType = C.CL_DEVICE_TYPE_CPU
	DeviceTypeGPU         DeviceType = C.CL_DEVICE_TYPE_GPU
	DeviceTypeAccelerator DeviceType = C.CL_DEVICE_TYPE_ACCELERATOR
	DeviceTypeCustom      DeviceType = C.CL_DEVICE_TYPE_CUSTOM
	DeviceTypeAll         DeviceType = C.CL_DEVICE_TYPE_ALL
)

// String returns the OpenCL name of a single device type, or "COMBINED_DEVICE_TYPE" for combinations.
func (t DeviceType) String() string {
	switch t {
	case DeviceTypeDefault:
		return "CL_DEVICE_TYPE_DEFAULT"
	case DeviceTypeCPU:
		return "CL_DEVICE_TYPE_CPU"
	case DeviceTypeGPU:
		return "CL_DEVICE_TYPE_GPU"
	case DeviceTypeAccelerator:
		return "CL_DEVICE_TYPE_ACCELERATOR"
	case DeviceTypeCustom:
		return "CL_DEVICE_TYPE_CUSTOM"
	case DeviceTypeAll:
		return "CL_DEVICE_TYPE_ALL"
	default:
		return "COMBINED_DEVICE_TYPE"
	}
}

// VendorIDText returns the name of the vendor for the PCIe vendor ids of the most common OpenCL vendors,
// or "unknown".
func VendorIDText(vendorID uint32) string {
	switch vendorID {
	case 0x1002, 0x1022:
		return "AMD"
	case 0x10DE:
		return "Nvidia"
	case 0x8086:
		return "Intel"
	case 0x13B5:
		return "ARM"
	case 0x5143:
		return "Qualcomm"
	case 0x1010:
		return "ImgTec"
	case 0x106B:
		return "Apple"
	default:
		return "unknown"
	}
}

// MemFlags is a bitfield that specifies allocation and usage of memory objects.
type MemFlags uint64

const (
	MemReadWrite          MemFlags = C.CL_MEM_READ_WRITE
	MemWriteOnly          MemFlags = C.CL_MEM_WRITE_ONLY
	MemReadOnly           MemFlags = C.CL_MEM_READ_ONLY
	MemUseHostPtr         MemFlags = C.CL_MEM_USE_HOST_PTR
	MemAllocHostPtr       MemFlags = C.CL_MEM_ALLOC_HOST_PTR
	MemCopyHostPtr        MemFlags = C.CL_MEM_COPY_HOST_PTR
	MemHostWriteOnly      MemFlags = C.CL_MEM_HOST_WRITE_ONLY
	MemHostReadOnly       MemFlags = C.CL_MEM_HOST_READ_ONLY
	MemHostNoAccess       MemFlags = C.CL_MEM_HOST_NO_ACCESS
	MemSVMFineGrainBuffer MemFlags = C.CL_MEM_SVM_FINE_GRAIN_BUFFER
	MemSVMAtomics         MemFlags = C.CL_MEM_SVM_ATOMICS
	MemKernelReadAndWrite MemFlags = C.CL_MEM_KERNEL_READ_AND_WRITE
)

// Has returns whether all the bits in other are set.
func (f MemFlags) Has(other MemFlags) bool {
	return f&other == other
}

var memFlagsNames = []struct {
	flag MemFlags
	name string
}{
	{MemReadWrite, "READ_WRITE"}, {MemWriteOnly, "WRITE_ONLY"}, {MemReadOnly, "READ_ONLY"},
	{MemUseHostPtr, "USE_HOST_PTR"}, {MemAllocHostPtr, "ALLOC_HOST_PTR"}, {MemCopyHostPtr, "COPY_HOST_PTR"},
	{MemHostWriteOnly, "HOST_WRITE_ONLY"}, {MemHostReadOnly, "HOST_READ_ONLY"}, {MemHostNoAccess, "HOST_NO_ACCESS"},
	{MemSVMFineGrainBuffer, "SVM_FINE_GRAIN_BUFFER"}, {MemSVMAtomics, "SVM_ATOMICS"},
	{MemKernelReadAndWrite, "KERNEL_READ_AND_WRITE"},
}

// String lists the flags set, e.g.: "READ_ONLY|COPY_HOST_PTR".
func (f MemFlags) String() string {
	var parts []string
	remaining := f
	for _, entry := range memFlagsNames {
		if f&entry.flag != 0 {
			parts = append(parts, entry.name)
			remaining &^= entry.flag
		}
	}
	if remaining != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint64(remaining)))
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}

// MapFlags specifies how mapped memory is going to be accessed by the host.
type MapFlags uint64

const (
	MapRead                  MapFlags = C.CL_MAP_READ
	MapWrite                 MapFlags = C.CL_MAP_WRITE
	MapWriteInvalidateRegion MapFlags = C.CL_MAP_WRITE_INVALIDATE_REGION
)

// MigrationFlags for EnqueueMigrateMemObjects and EnqueueSVMMigrateMem.
type MigrationFlags uint64

const (
	MigrateMemObjectHost             MigrationFlags = C.CL_MIGRATE_MEM_OBJECT_HOST
	MigrateMemObjectContentUndefined MigrationFlags = C.CL_MIGRATE_MEM_OBJECT_CONTENT_UNDEFINED
)

// CommandQueueProperties is a bitfield of command queue properties.
type CommandQueueProperties uint64

const (
	QueueOutOfOrderExecModeEnable CommandQueueProperties = C.CL_QUEUE_OUT_OF_ORDER_EXEC_MODE_ENABLE
	QueueProfilingEnable          CommandQueueProperties = C.CL_QUEUE_PROFILING_ENABLE
	QueueOnDevice                 CommandQueueProperties = C.CL_QUEUE_ON_DEVICE
	QueueOnDeviceDefault          CommandQueueProperties = C.CL_QUEUE_ON_DEVICE_DEFAULT
)

// SVMCapabilities is a bitfield of the shared virtual memory support of a device.
type SVMCapabilities uint64

const (
	SVMCoarseGrainBuffer SVMCapabilities = C.CL_DEVICE_SVM_COARSE_GRAIN_BUFFER
	SVMFineGrainBuffer   SVMCapabilities = C.CL_DEVICE_SVM_FINE_GRAIN_BUFFER
	SVMFineGrainSystem   SVMCapabilities = C.CL_DEVICE_SVM_FINE_GRAIN_SYSTEM
	SVMAtomics           SVMCapabilities = C.CL_DEVICE_SVM_ATOMICS
)

// FPConfig is a bitfield describing the floating point capabilities of a device.
type FPConfig uint64

const (
	FPDenorm                     FPConfig = C.CL_FP_DENORM
	FPInfNaN                     FPConfig = C.CL_FP_INF_NAN
	FPRoundToNearest             FPConfig = C.CL_FP_ROUND_TO_NEAREST
	FPRoundToZero                FPConfig = C.CL_FP_ROUND_TO_ZERO
	FPRoundToInf                 FPConfig = C.CL_FP_ROUND_TO_INF
	FPFMA                        FPConfig = C.CL_FP_FMA
	FPSoftFloat                  FPConfig = C.CL_FP_SOFT_FLOAT
	FPCorrectlyRoundedDivideSqrt FPConfig = C.CL_FP_CORRECTLY_ROUNDED_DIVIDE_SQRT
)

// ExecCapabilities of a device.
type ExecCapabilities uint64

const (
	ExecKernel       ExecCapabilities = C.CL_EXEC_KERNEL
	ExecNativeKernel ExecCapabilities = C.CL_EXEC_NATIVE_KERNEL
)

// LocalMemType of a device: dedicated local memory, or global memory used as local.
type LocalMemType uint32

const (
	LocalMemLocal  LocalMemType = C.CL_LOCAL
	LocalMemGlobal LocalMemType = C.CL_GLOBAL
)

// CacheType of the global memory cache of a device.
type CacheType uint32

const (
	CacheNone      CacheType = C.CL_NONE
	CacheReadOnly  CacheType = C.CL_READ_ONLY_CACHE
	CacheReadWrite CacheType = C.CL_READ_WRITE_CACHE
)

// AtomicCapabilities is a bitfield of the memory orders and scopes supported by atomics (OpenCL 3.0).
type AtomicCapabilities uint64

const (
	AtomicOrderRelaxed    AtomicCapabilities = C.CL_DEVICE_ATOMIC_ORDER_RELAXED
	AtomicOrderAcqRel     AtomicCapabilities = C.CL_DEVICE_ATOMIC_ORDER_ACQ_REL
	AtomicOrderSeqCst     AtomicCapabilities = C.CL_DEVICE_ATOMIC_ORDER_SEQ_CST
	AtomicScopeWorkItem   AtomicCapabilities = C.CL_DEVICE_ATOMIC_SCOPE_WORK_ITEM
	AtomicScopeWorkGroup  AtomicCapabilities = C.CL_DEVICE_ATOMIC_SCOPE_WORK_GROUP
	AtomicScopeDevice     AtomicCapabilities = C.CL_DEVICE_ATOMIC_SCOPE_DEVICE
	AtomicScopeAllDevices AtomicCapabilities = C.CL_DEVICE_ATOMIC_SCOPE_ALL_DEVICES
)

// AffinityDomain is a bitfield of the cache/NUMA levels a device can be partitioned along.
type AffinityDomain uint64

const (
	AffinityDomainNUMA              AffinityDomain = C.CL_DEVICE_AFFINITY_DOMAIN_NUMA
	AffinityDomainL4Cache           AffinityDomain = C.CL_DEVICE_AFFINITY_DOMAIN_L4_CACHE
	AffinityDomainL3Cache           AffinityDomain = C.CL_DEVICE_AFFINITY_DOMAIN_L3_CACHE
	AffinityDomainL2Cache           AffinityDomain = C.CL_DEVICE_AFFINITY_DOMAIN_L2_CACHE
	AffinityDomainL1Cache           AffinityDomain = C.CL_DEVICE_AFFINITY_DOMAIN_L1_CACHE
	AffinityDomainNextPartitionable AffinityDomain = C.CL_DEVICE_AFFINITY_DOMAIN_NEXT_PARTITIONABLE
)

// Device partition property names, used in the zero terminated property lists of CreateSubDevices.
// See also PartitionEqually, PartitionByCounts and PartitionByAffinityDomain, which build the lists.
const (
	DevicePartitionEqually          int64 = C.CL_DEVICE_PARTITION_EQUALLY
	DevicePartitionByCounts         int64 = C.CL_DEVICE_PARTITION_BY_COUNTS
	DevicePartitionByCountsListEnd  int64 = C.CL_DEVICE_PARTITION_BY_COUNTS_LIST_END
	DevicePartitionByAffinityDomain int64 = C.CL_DEVICE_PARTITION_BY_AFFINITY_DOMAIN
)

// PartitionEqually returns the properties to split a device in as many sub-devices as possible, each with
// computeUnits compute units.
func PartitionEqually(computeUnits int) []int64 {
	return []int64{DevicePartitionEqually, int64(computeUnits), 0}
}

// PartitionByCounts returns the properties to split a device in sub-devices with the given number of compute
// units each.
func PartitionByCounts(counts ...int) []int64 {
	props := make([]int64, 0, len(counts)+3)
	props = append(props, DevicePartitionByCounts)
	for _, count := range counts {
		props = append(props, int64(count))
	}
	return append(props, DevicePartitionByCountsListEnd, 0)
}

// PartitionByAffinityDomain returns the properties to split a device along the given affinity domain.
func PartitionByAffinityDomain(domain AffinityDomain) []int64 {
	return []int64{DevicePartitionByAffinityDomain, int64(domain), 0}
}

// Context property names, for the zero terminated property lists of NewContext.
const (
	ContextPlatform        int64 = C.CL_CONTEXT_PLATFORM
	ContextInteropUserSync int64 = C.CL_CONTEXT_INTEROP_USER_SYNC
)

// Command queue property names, for CreateCommandQueueWithProperties.
const (
	QueuePropertiesKey uint64 = C.CL_QUEUE_PROPERTIES
	QueueSizeKey       uint64 = C.CL_QUEUE_SIZE
)

// ChannelOrder of the channels of an image format.
type ChannelOrder uint32

const (
	ChannelOrderR            ChannelOrder = C.CL_R
	ChannelOrderA            ChannelOrder = C.CL_A
	ChannelOrderRG           ChannelOrder = C.CL_RG
	ChannelOrderRA           ChannelOrder = C.CL_RA
	ChannelOrderRGB          ChannelOrder = C.CL_RGB
	ChannelOrderRGBA         ChannelOrder = C.CL_RGBA
	ChannelOrderBGRA         ChannelOrder = C.CL_BGRA
	ChannelOrderARGB         ChannelOrder = C.CL_ARGB
	ChannelOrderIntensity    ChannelOrder = C.CL_INTENSITY
	ChannelOrderLuminance    ChannelOrder = C.CL_LUMINANCE
	ChannelOrderRx           ChannelOrder = C.CL_Rx
	ChannelOrderRGx          ChannelOrder = C.CL_RGx
	ChannelOrderRGBx         ChannelOrder = C.CL_RGBx
	ChannelOrderDepth        ChannelOrder = C.CL_DEPTH
	ChannelOrderDepthStencil ChannelOrder = C.CL_DEPTH_STENCIL
	ChannelOrderSRGB         ChannelOrder = C.CL_sRGB
	ChannelOrderSRGBx        ChannelOrder = C.CL_sRGBx
	ChannelOrderSRGBA        ChannelOrder = C.CL_sRGBA
	ChannelOrderSBGRA        ChannelOrder = C.CL_sBGRA
	ChannelOrderABGR         ChannelOrder = C.CL_ABGR
)

// ChannelType is the data type of the channels of an image format.
type ChannelType uint32

const (
	ChannelTypeSNormInt8        ChannelType = C.CL_SNORM_INT8
	ChannelTypeSNormInt16       ChannelType = C.CL_SNORM_INT16
	ChannelTypeUNormInt8        ChannelType = C.CL_UNORM_INT8
	ChannelTypeUNormInt16       ChannelType = C.CL_UNORM_INT16
	ChannelTypeUNormShort565    ChannelType = C.CL_UNORM_SHORT_565
	ChannelTypeUNormShort555    ChannelType = C.CL_UNORM_SHORT_555
	ChannelTypeUNormInt101010   ChannelType = C.CL_UNORM_INT_101010
	ChannelTypeSignedInt8       ChannelType = C.CL_SIGNED_INT8
	ChannelTypeSignedInt16      ChannelType = C.CL_SIGNED_INT16
	ChannelTypeSignedInt32      ChannelType = C.CL_SIGNED_INT32
	ChannelTypeUnsignedInt8     ChannelType = C.CL_UNSIGNED_INT8
	ChannelTypeUnsignedInt16    ChannelType = C.CL_UNSIGNED_INT16
	ChannelTypeUnsignedInt32    ChannelType = C.CL_UNSIGNED_INT32
	ChannelTypeHalfFloat        ChannelType = C.CL_HALF_FLOAT
	ChannelTypeFloat            ChannelType = C.CL_FLOAT
	ChannelTypeUNormInt24       ChannelType = C.CL_UNORM_INT24
	ChannelTypeUNormInt101010_2 ChannelType = C.CL_UNORM_INT_101010_2
)

// ImageFormat describes the layout of the pixels of an image.
type ImageFormat struct {
	Order ChannelOrder
	Type  ChannelType
}

func (f ImageFormat) toC() C.cl_image_format {
	return C.cl_image_format{
		image_channel_order:     C.cl_channel_order(f.Order),
		image_channel_data_type: C.cl_channel_type(f.Type),
	}
}

func imageFormatFromC(f C.cl_image_format) ImageFormat {
	return ImageFormat{Order: ChannelOrder(f.image_channel_order), Type: ChannelType(f.image_channel_data_type)}
}

// ImageDesc describes the type and dimensions of an image. Unused dimensions should be left as 0.
type ImageDesc struct {
	Type             MemObjectType
	Width, Height    int
	Depth, ArraySize int
	RowPitch         int
	SlicePitch       int
	NumMipLevels     uint32
	NumSamples       uint32

	// Buffer (or image) the image is created from, for MemObjectImage1DBuffer (or 2D images from buffers).
	// Optional.
	Buffer MemObject
}

// AddressingMode of a sampler: how out-of-range image coordinates are handled.
type AddressingMode uint32

const (
	AddressNone           AddressingMode = C.CL_ADDRESS_NONE
	AddressClampToEdge    AddressingMode = C.CL_ADDRESS_CLAMP_TO_EDGE
	AddressClamp          AddressingMode = C.CL_ADDRESS_CLAMP
	AddressRepeat         AddressingMode = C.CL_ADDRESS_REPEAT
	AddressMirroredRepeat AddressingMode = C.CL_ADDRESS_MIRRORED_REPEAT
)

// FilterMode of a sampler.
type FilterMode uint32

const (
	FilterNearest FilterMode = C.CL_FILTER_NEAREST
	FilterLinear  FilterMode = C.CL_FILTER_LINEAR
)

// Sampler property names, for the key/value property lists of CreateSamplerWithProperties.
const (
	SamplerNormalizedCoords uint64 = C.CL_SAMPLER_NORMALIZED_COORDS
	SamplerAddressingMode   uint64 = C.CL_SAMPLER_ADDRESSING_MODE
	SamplerFilterMode       uint64 = C.CL_SAMPLER_FILTER_MODE
)

// ProgramBinaryType of a program built for a device.
type ProgramBinaryType uint32

const (
	ProgramBinaryTypeNone           ProgramBinaryType = C.CL_PROGRAM_BINARY_TYPE_NONE
	ProgramBinaryTypeCompiledObject ProgramBinaryType = C.CL_PROGRAM_BINARY_TYPE_COMPILED_OBJECT
	ProgramBinaryTypeLibrary        ProgramBinaryType = C.CL_PROGRAM_BINARY_TYPE_LIBRARY
	ProgramBinaryTypeExecutable     ProgramBinaryType = C.CL_PROGRAM_BINARY_TYPE_EXECUTABLE
)

// KernelArgAddressQualifier is the address space of a kernel pointer argument.
type KernelArgAddressQualifier uint32

const (
	KernelArgAddressGlobal   KernelArgAddressQualifier = C.CL_KERNEL_ARG_ADDRESS_GLOBAL
	KernelArgAddressLocal    KernelArgAddressQualifier = C.CL_KERNEL_ARG_ADDRESS_LOCAL
	KernelArgAddressConstant KernelArgAddressQualifier = C.CL_KERNEL_ARG_ADDRESS_CONSTANT
	KernelArgAddressPrivate  KernelArgAddressQualifier = C.CL_KERNEL_ARG_ADDRESS_PRIVATE
)

// KernelArgAccessQualifier is the access qualifier of an image or pipe kernel argument.
type KernelArgAccessQualifier uint32

const (
	KernelArgAccessReadOnly  KernelArgAccessQualifier = C.CL_KERNEL_ARG_ACCESS_READ_ONLY
	KernelArgAccessWriteOnly KernelArgAccessQualifier = C.CL_KERNEL_ARG_ACCESS_WRITE_ONLY
	KernelArgAccessReadWrite KernelArgAccessQualifier = C.CL_KERNEL_ARG_ACCESS_READ_WRITE
	KernelArgAccessNone      KernelArgAccessQualifier = C.CL_KERNEL_ARG_ACCESS_NONE
)

// KernelArgTypeQualifier is a bitfield of the type qualifiers of a kernel argument.
type KernelArgTypeQualifier uint64

const (
	KernelArgTypeNone     KernelArgTypeQualifier = C.CL_KERNEL_ARG_TYPE_NONE
	KernelArgTypeConst    KernelArgTypeQualifier = C.CL_KERNEL_ARG_TYPE_CONST
	KernelArgTypeRestrict KernelArgTypeQualifier = C.CL_KERNEL_ARG_TYPE_RESTRICT
	KernelArgTypeVolatile KernelArgTypeQualifier = C.CL_KERNEL_ARG_TYPE_VOLATILE
	KernelArgTypePipe     KernelArgTypeQualifier = C.CL_KERNEL_ARG_TYPE_PIPE
)

// KernelExecInfo names the parameters set with Kernel.SetExecInfo.
type KernelExecInfo uint32

const (
	KernelExecInfoSVMPtrs            KernelExecInfo = C.CL_KERNEL_EXEC_INFO_SVM_PTRS
	KernelExecInfoSVMFineGrainSystem KernelExecInfo = C.CL_KERNEL_EXEC_INFO_SVM_FINE_GRAIN_SYSTEM
)

// Version is an OpenCL packed version number (cl_version): 10 bits major, 10 bits minor, 12 bits patch.
type Version uint32

// MakeVersion packs a version number.
func MakeVersion(major, minor, patch int) Version {
	return Version(uint32(major&0x3FF)<<22 | uint32(minor&0x3FF)<<12 | uint32(patch&0xFFF))
}

func (v Version) Major() int { return int(v >> 22) }
func (v Version) Minor() int { return int((v >> 12) & 0x3FF) }
func (v Version) Patch() int { return int(v & 0xFFF) }

// String returns "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// NameVersion is a name (of an extension, built-in kernel, OpenCL C feature, ...) with its version.
type NameVersion struct {
	Name    string
	Version Version
}

func nameVersionsFromC(values []C.cl_name_version) []NameVersion {
	if len(values) == 0 {
		return nil
	}
	result := make([]NameVersion, len(values))
	for ii, value := range values {
		result[ii] = NameVersion{
			Name:    cCharArrayToString(value.name[:]),
			Version: Version(value.version),
		}
	}
	return result
}
