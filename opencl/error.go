package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCode is an OpenCL error code (cl_int), returned by the OpenCL calls.
//
// It implements the error interface, and errors returned by this package wrap it (with a stack trace, see
// github.com/pkg/errors). Use errors.Is(err, opencl.ErrInvalidValue) or CodeOf(err) to inspect it.
type ErrorCode int32

// OpenCL error codes.
const (
	ErrDeviceNotFound                     ErrorCode = -1
	ErrDeviceNotAvailable                 ErrorCode = -2
	ErrCompilerNotAvailable               ErrorCode = -3
	ErrMemObjectAllocationFailure         ErrorCode = -4
	ErrOutOfResources                     ErrorCode = -5
	ErrOutOfHostMemory                    ErrorCode = -6
	ErrProfilingInfoNotAvailable          ErrorCode = -7
	ErrMemCopyOverlap                     ErrorCode = -8
	ErrImageFormatMismatch                ErrorCode = -9
	ErrImageFormatNotSupported            ErrorCode = -10
	ErrBuildProgramFailure                ErrorCode = -11
	ErrMapFailure                         ErrorCode = -12
	ErrMisalignedSubBufferOffset          ErrorCode = -13
	ErrExecStatusErrorForEventsInWaitList ErrorCode = -14
	ErrCompileProgramFailure              ErrorCode = -15
	ErrLinkerNotAvailable                 ErrorCode = -16
	ErrLinkProgramFailure                 ErrorCode = -17
	ErrDevicePartitionFailed              ErrorCode = -18
	ErrKernelArgInfoNotAvailable          ErrorCode = -19

	ErrInvalidValue                 ErrorCode = -30
	ErrInvalidDeviceType            ErrorCode = -31
	ErrInvalidPlatform              ErrorCode = -32
	ErrInvalidDevice                ErrorCode = -33
	ErrInvalidContext               ErrorCode = -34
	ErrInvalidQueueProperties       ErrorCode = -35
	ErrInvalidCommandQueue          ErrorCode = -36
	ErrInvalidHostPtr               ErrorCode = -37
	ErrInvalidMemObject             ErrorCode = -38
	ErrInvalidImageFormatDescriptor ErrorCode = -39
	ErrInvalidImageSize             ErrorCode = -40
	ErrInvalidSampler               ErrorCode = -41
	ErrInvalidBinary                ErrorCode = -42
	ErrInvalidBuildOptions          ErrorCode = -43
	ErrInvalidProgram               ErrorCode = -44
	ErrInvalidProgramExecutable     ErrorCode = -45
	ErrInvalidKernelName            ErrorCode = -46
	ErrInvalidKernelDefinition      ErrorCode = -47
	ErrInvalidKernel                ErrorCode = -48
	ErrInvalidArgIndex              ErrorCode = -49
	ErrInvalidArgValue              ErrorCode = -50
	ErrInvalidArgSize               ErrorCode = -51
	ErrInvalidKernelArgs            ErrorCode = -52
	ErrInvalidWorkDimension         ErrorCode = -53
	ErrInvalidWorkGroupSize         ErrorCode = -54
	ErrInvalidWorkItemSize          ErrorCode = -55
	ErrInvalidGlobalOffset          ErrorCode = -56
	ErrInvalidEventWaitList         ErrorCode = -57
	ErrInvalidEvent                 ErrorCode = -58
	ErrInvalidOperation             ErrorCode = -59
	ErrInvalidGLObject              ErrorCode = -60
	ErrInvalidBufferSize            ErrorCode = -61
	ErrInvalidMipLevel              ErrorCode = -62
	ErrInvalidGlobalWorkSize        ErrorCode = -63
	ErrInvalidProperty              ErrorCode = -64
	ErrInvalidImageDescriptor       ErrorCode = -65
	ErrInvalidCompilerOptions       ErrorCode = -66
	ErrInvalidLinkerOptions         ErrorCode = -67
	ErrInvalidDevicePartitionCount  ErrorCode = -68
	ErrInvalidPipeSize              ErrorCode = -69
	ErrInvalidDeviceQueue           ErrorCode = -70
	ErrInvalidSpecID                ErrorCode = -71
	ErrMaxSizeRestrictionExceeded   ErrorCode = -72
	ErrInvalidGLSharegroupReference ErrorCode = -1000
	ErrPlatformNotFound             ErrorCode = -1001
	ErrDevicePartitionFailedExt     ErrorCode = -1057
	ErrInvalidPartitionCountExt     ErrorCode = -1058
	ErrInvalidPartitionNameExt      ErrorCode = -1059

	// ErrFunctionNotAvailable is not an OpenCL code: it is returned when the loaded OpenCL library doesn't
	// export the entry point needed (usually because it implements an older version of OpenCL).
	ErrFunctionNotAvailable ErrorCode = C.GOCL_FUNCTION_NOT_AVAILABLE
)

var errorCodeNames = map[ErrorCode]string{
	0:                                     "CL_SUCCESS",
	ErrDeviceNotFound:                     "CL_DEVICE_NOT_FOUND",
	ErrDeviceNotAvailable:                 "CL_DEVICE_NOT_AVAILABLE",
	ErrCompilerNotAvailable:               "CL_COMPILER_NOT_AVAILABLE",
	ErrMemObjectAllocationFailure:         "CL_MEM_OBJECT_ALLOCATION_FAILURE",
	ErrOutOfResources:                     "CL_OUT_OF_RESOURCES",
	ErrOutOfHostMemory:                    "CL_OUT_OF_HOST_MEMORY",
	ErrProfilingInfoNotAvailable:          "CL_PROFILING_INFO_NOT_AVAILABLE",
	ErrMemCopyOverlap:                     "CL_MEM_COPY_OVERLAP",
	ErrImageFormatMismatch:                "CL_IMAGE_FORMAT_MISMATCH",
	ErrImageFormatNotSupported:            "CL_IMAGE_FORMAT_NOT_SUPPORTED",
	ErrBuildProgramFailure:                "CL_BUILD_PROGRAM_FAILURE",
	ErrMapFailure:                         "CL_MAP_FAILURE",
	ErrMisalignedSubBufferOffset:          "CL_MISALIGNED_SUB_BUFFER_OFFSET",
	ErrExecStatusErrorForEventsInWaitList: "CL_EXEC_STATUS_ERROR_FOR_EVENTS_IN_WAIT_LIST",
	ErrCompileProgramFailure:              "CL_COMPILE_PROGRAM_FAILURE",
	ErrLinkerNotAvailable:                 "CL_LINKER_NOT_AVAILABLE",
	ErrLinkProgramFailure:                 "CL_LINK_PROGRAM_FAILURE",
	ErrDevicePartitionFailed:              "CL_DEVICE_PARTITION_FAILED",
	ErrKernelArgInfoNotAvailable:          "CL_KERNEL_ARG_INFO_NOT_AVAILABLE",
	ErrInvalidValue:                       "CL_INVALID_VALUE",
	ErrInvalidDeviceType:                  "CL_INVALID_DEVICE_TYPE",
	ErrInvalidPlatform:                    "CL_INVALID_PLATFORM",
	ErrInvalidDevice:                      "CL_INVALID_DEVICE",
	ErrInvalidContext:                     "CL_INVALID_CONTEXT",
	ErrInvalidQueueProperties:             "CL_INVALID_QUEUE_PROPERTIES",
	ErrInvalidCommandQueue:                "CL_INVALID_COMMAND_QUEUE",
	ErrInvalidHostPtr:                     "CL_INVALID_HOST_PTR",
	ErrInvalidMemObject:                   "CL_INVALID_MEM_OBJECT",
	ErrInvalidImageFormatDescriptor:       "CL_INVALID_IMAGE_FORMAT_DESCRIPTOR",
	ErrInvalidImageSize:                   "CL_INVALID_IMAGE_SIZE",
	ErrInvalidSampler:                     "CL_INVALID_SAMPLER",
	ErrInvalidBinary:                      "CL_INVALID_BINARY",
	ErrInvalidBuildOptions:                "CL_INVALID_BUILD_OPTIONS",
	ErrInvalidProgram:                     "CL_INVALID_PROGRAM",
	ErrInvalidProgramExecutable:           "CL_INVALID_PROGRAM_EXECUTABLE",
	ErrInvalidKernelName:                  "CL_INVALID_KERNEL_NAME",
	ErrInvalidKernelDefinition:            "CL_INVALID_KERNEL_DEFINITION",
	ErrInvalidKernel:                      "CL_INVALID_KERNEL",
	ErrInvalidArgIndex:                    "CL_INVALID_ARG_INDEX",
	ErrInvalidArgValue:                    "CL_INVALID_ARG_VALUE",
	ErrInvalidArgSize:                     "CL_INVALID_ARG_SIZE",
	ErrInvalidKernelArgs:                  "CL_INVALID_KERNEL_ARGS",
	ErrInvalidWorkDimension:               "CL_INVALID_WORK_DIMENSION",
	ErrInvalidWorkGroupSize:               "CL_INVALID_WORK_GROUP_SIZE",
	ErrInvalidWorkItemSize:                "CL_INVALID_WORK_ITEM_SIZE",
	ErrInvalidGlobalOffset:                "CL_INVALID_GLOBAL_OFFSET",
	ErrInvalidEventWaitList:               "CL_INVALID_EVENT_WAIT_LIST",
	ErrInvalidEvent:                       "CL_INVALID_EVENT",
	ErrInvalidOperation:                   "CL_INVALID_OPERATION",
	ErrInvalidGLObject:                    "CL_INVALID_GL_OBJECT",
	ErrInvalidBufferSize:                  "CL_INVALID_BUFFER_SIZE",
	ErrInvalidMipLevel:                    "CL_INVALID_MIP_LEVEL",
	ErrInvalidGlobalWorkSize:              "CL_INVALID_GLOBAL_WORK_SIZE",
	ErrInvalidProperty:                    "CL_INVALID_PROPERTY",
	ErrInvalidImageDescriptor:             "CL_INVALID_IMAGE_DESCRIPTOR",
	ErrInvalidCompilerOptions:             "CL_INVALID_COMPILER_OPTIONS",
	ErrInvalidLinkerOptions:               "CL_INVALID_LINKER_OPTIONS",
	ErrInvalidDevicePartitionCount:        "CL_INVALID_DEVICE_PARTITION_COUNT",
	ErrInvalidPipeSize:                    "CL_INVALID_PIPE_SIZE",
	ErrInvalidDeviceQueue:                 "CL_INVALID_DEVICE_QUEUE",
	ErrInvalidSpecID:                      "CL_INVALID_SPEC_ID",
	ErrMaxSizeRestrictionExceeded:         "CL_MAX_SIZE_RESTRICTION_EXCEEDED",
	ErrInvalidGLSharegroupReference:       "CL_INVALID_GL_SHAREGROUP_REFERENCE_KHR",
	ErrPlatformNotFound:                   "CL_PLATFORM_NOT_FOUND_KHR",
	ErrDevicePartitionFailedExt:           "CL_DEVICE_PARTITION_FAILED_EXT",
	ErrInvalidPartitionCountExt:           "CL_INVALID_PARTITION_COUNT_EXT",
	ErrInvalidPartitionNameExt:            "CL_INVALID_PARTITION_NAME_EXT",
	ErrFunctionNotAvailable:               "FUNCTION_NOT_AVAILABLE",
}

// String returns the name of the OpenCL error code, e.g.: "CL_INVALID_VALUE".
func (code ErrorCode) String() string {
	if name, found := errorCodeNames[code]; found {
		return name
	}
	return fmt.Sprintf("CL_UNKNOWN_ERROR_%d", int32(code))
}

// Error implements the error interface.
func (code ErrorCode) Error() string {
	return fmt.Sprintf("OpenCL error %s (%d)", code, int32(code))
}

// toError converts a C.cl_int return code to a Go error with a stack trace (see github.com/pkg/errors).
// If the code is CL_SUCCESS, it returns nil.
func toError(code C.cl_int) error {
	if code == C.CL_SUCCESS {
		return nil
	}
	return errors.WithStack(ErrorCode(code))
}

// CodeOf returns the OpenCL error code wrapped in err, if there is one.
func CodeOf(err error) (code ErrorCode, found bool) {
	found = errors.As(err, &code)
	return
}

// BuildError is returned when building a program fails. It holds the build log of each device that failed.
type BuildError struct {
	// Code is usually ErrBuildProgramFailure.
	Code ErrorCode

	// Logs maps the device name to its build log.
	Logs map[string]string
}

// Error implements the error interface. It includes the build logs.
func (e *BuildError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("failed to build OpenCL program: %s", e.Code))
	devices := make([]string, 0, len(e.Logs))
	for device := range e.Logs {
		devices = append(devices, device)
	}
	sort.Strings(devices)
	for _, device := range devices {
		sb.WriteString(fmt.Sprintf("\n--- build log for %q:\n%s", device, strings.TrimSpace(e.Logs[device])))
	}
	return sb.String()
}

// Unwrap returns the OpenCL error code, so errors.Is(err, ErrBuildProgramFailure) works.
func (e *BuildError) Unwrap() error {
	return e.Code
}

// IsCode returns whether err wraps the given OpenCL error code.
func IsCode(err error, code ErrorCode) bool {
	got, found := CodeOf(err)
	return found && got == code
}
