package opencl

// Enum types with enumer-generated String() methods (see the go:generate lines in opencl.go).
// The values are the OpenCL constants, written literally since enumer can't read cgo constants;
// types.go checks them against the C headers at compile time.

// ExecutionStatus of a command, returned by Event.CommandExecutionStatus.
// Negative values are error codes: the command was abnormally terminated.
type ExecutionStatus int32

const (
	ExecutionComplete  ExecutionStatus = 0 // CL_COMPLETE
	ExecutionRunning   ExecutionStatus = 1 // CL_RUNNING
	ExecutionSubmitted ExecutionStatus = 2 // CL_SUBMITTED
	ExecutionQueued    ExecutionStatus = 3 // CL_QUEUED
)

// IsError returns whether the command terminated abnormally, in which case the status is an ErrorCode.
func (s ExecutionStatus) IsError() bool {
	return s < 0
}

// MemObjectType is the type of memory object: a buffer, one of the image types, or a pipe.
type MemObjectType uint32

const (
	MemObjectBuffer        MemObjectType = 0x10F0
	MemObjectImage2D       MemObjectType = 0x10F1
	MemObjectImage3D       MemObjectType = 0x10F2
	MemObjectImage2DArray  MemObjectType = 0x10F3
	MemObjectImage1D       MemObjectType = 0x10F4
	MemObjectImage1DArray  MemObjectType = 0x10F5
	MemObjectImage1DBuffer MemObjectType = 0x10F6
	MemObjectPipe          MemObjectType = 0x10F7
)

// BuildStatus of a program for a device.
type BuildStatus int32

const (
	BuildStatusInProgress BuildStatus = -3
	BuildStatusError      BuildStatus = -2
	BuildStatusNone       BuildStatus = -1
	BuildStatusSuccess    BuildStatus = 0
)

// CommandType of the command associated to an Event.
type CommandType uint32

const (
	CommandNDRangeKernel     CommandType = 0x11F0
	CommandTask              CommandType = 0x11F1
	CommandNativeKernel      CommandType = 0x11F2
	CommandReadBuffer        CommandType = 0x11F3
	CommandWriteBuffer       CommandType = 0x11F4
	CommandCopyBuffer        CommandType = 0x11F5
	CommandReadImage         CommandType = 0x11F6
	CommandWriteImage        CommandType = 0x11F7
	CommandCopyImage         CommandType = 0x11F8
	CommandCopyImageToBuffer CommandType = 0x11F9
	CommandCopyBufferToImage CommandType = 0x11FA
	CommandMapBuffer         CommandType = 0x11FB
	CommandMapImage          CommandType = 0x11FC
	CommandUnmapMemObject    CommandType = 0x11FD
	CommandMarker            CommandType = 0x11FE
	CommandAcquireGLObjects  CommandType = 0x11FF
	CommandReleaseGLObjects  CommandType = 0x1200
	CommandReadBufferRect    CommandType = 0x1201
	CommandWriteBufferRect   CommandType = 0x1202
	CommandCopyBufferRect    CommandType = 0x1203
	CommandUser              CommandType = 0x1204
	CommandBarrier           CommandType = 0x1205
	CommandMigrateMemObjects CommandType = 0x1206
	CommandFillBuffer        CommandType = 0x1207
	CommandFillImage         CommandType = 0x1208
	CommandSVMFree           CommandType = 0x1209
	CommandSVMMemcpy         CommandType = 0x120A
	CommandSVMMemFill        CommandType = 0x120B
	CommandSVMMap            CommandType = 0x120C
	CommandSVMUnmap          CommandType = 0x120D
	CommandSVMMigrateMem     CommandType = 0x120E
)
