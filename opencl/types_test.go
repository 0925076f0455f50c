package opencl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	v := MakeVersion(3, 0, 12)
	assert.Equal(t, 3, v.Major())
	assert.Equal(t, 0, v.Minor())
	assert.Equal(t, 12, v.Patch())
	assert.Equal(t, "3.0.12", v.String())
	assert.Equal(t, Version(3<<22|12), v)

	v = MakeVersion(1, 2, 0)
	assert.Equal(t, "1.2.0", v.String())
	assert.Less(t, v, MakeVersion(2, 0, 0))
}

func TestMemFlags(t *testing.T) {
	assert.Equal(t, "0", MemFlags(0).String())
	assert.Equal(t, "READ_ONLY|COPY_HOST_PTR", (MemReadOnly | MemCopyHostPtr).String())
	assert.Equal(t, "READ_WRITE|0x10000000", (MemReadWrite | MemFlags(0x10000000)).String())
	flags := MemWriteOnly | MemUseHostPtr
	assert.True(t, flags.Has(MemUseHostPtr))
	assert.True(t, flags.Has(MemWriteOnly|MemUseHostPtr))
	assert.False(t, flags.Has(MemUseHostPtr|MemCopyHostPtr))
}

func TestDeviceType(t *testing.T) {
	assert.Equal(t, "CL_DEVICE_TYPE_GPU", DeviceTypeGPU.String())
	assert.Equal(t, "CL_DEVICE_TYPE_ALL", DeviceTypeAll.String())
	assert.Equal(t, "COMBINED_DEVICE_TYPE", (DeviceTypeCPU | DeviceTypeGPU).String())
	assert.Equal(t, "Nvidia", VendorIDText(0x10DE))
	assert.Equal(t, "AMD", VendorIDText(0x1002))
	assert.Equal(t, "unknown", VendorIDText(0x1234))
}

func TestPartitionProperties(t *testing.T) {
	if diff := cmp.Diff([]int64{DevicePartitionEqually, 4, 0}, PartitionEqually(4)); diff != "" {
		t.Errorf("PartitionEqually mismatch (-want +got):\n%s", diff)
	}
	want := []int64{DevicePartitionByCounts, 2, 3, DevicePartitionByCountsListEnd, 0}
	if diff := cmp.Diff(want, PartitionByCounts(2, 3)); diff != "" {
		t.Errorf("PartitionByCounts mismatch (-want +got):\n%s", diff)
	}
	want = []int64{DevicePartitionByAffinityDomain, int64(AffinityDomainNextPartitionable), 0}
	if diff := cmp.Diff(want, PartitionByAffinityDomain(AffinityDomainNextPartitionable)); diff != "" {
		t.Errorf("PartitionByAffinityDomain mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "Complete", ExecutionComplete.String())
	assert.Equal(t, "Queued", ExecutionQueued.String())
	assert.True(t, ExecutionStatus(ErrOutOfResources).IsError())
	assert.False(t, ExecutionRunning.IsError())

	assert.Equal(t, "Success", BuildStatusSuccess.String())
	assert.Equal(t, "InProgress", BuildStatusInProgress.String())
	assert.Equal(t, "NDRangeKernel", CommandNDRangeKernel.String())
	assert.Equal(t, "SVMMap", CommandSVMMap.String())
	assert.Equal(t, "Image2D", MemObjectImage2D.String())

	memType, err := MemObjectTypeString("Pipe")
	require.NoError(t, err)
	assert.Equal(t, MemObjectPipe, memType)
	status, err := ExecutionStatusString("running")
	require.NoError(t, err)
	assert.Equal(t, ExecutionRunning, status)
	_, err = CommandTypeString("NoSuchCommand")
	require.Error(t, err)
}
