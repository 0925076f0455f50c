package opencl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserEvent(t *testing.T) {
	ctx := getTestContext(t)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)
	gate := capture(CreateUserEvent(ctx)).Test(t)
	defer func() { require.NoError(t, gate.Release()) }()
	assert.Equal(t, CommandUser, capture(gate.CommandType()).Test(t))
	assert.Equal(t, ExecutionSubmitted, capture(gate.CommandExecutionStatus()).Test(t))
	assert.Equal(t, ctx.Handle(), capture(gate.Context()).Test(t))

	buffer := capture(CreateBuffer[uint32](ctx, MemReadWrite, 32, nil)).Test(t)
	defer func() { require.NoError(t, buffer.Release()) }()
	fill := capture(EnqueueFillBuffer(queue, buffer, uint32(0xCAFE), 0, 32, gate)).Test(t)
	defer func() { require.NoError(t, fill.Release()) }()
	require.NoError(t, queue.Flush())

	// The fill can't complete while the gate is closed.
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := fill.WaitContext(timeoutCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, gate.SetUserEventStatus(ExecutionComplete))
	require.NoError(t, fill.WaitContext(context.Background()))
	assert.Equal(t, ExecutionComplete, capture(fill.CommandExecutionStatus()).Test(t))
	assert.Equal(t, queue.Handle(), capture(fill.CommandQueue()).Test(t))

	got := make([]uint32, 32)
	require.NoError(t, capture(EnqueueReadBuffer(queue, buffer, Blocking, 0, got)).Test(t).Release())
	for _, value := range got {
		require.Equal(t, uint32(0xCAFE), value)
	}
}

func TestUserEventError(t *testing.T) {
	ctx := getTestContext(t)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)
	gate := capture(CreateUserEvent(ctx)).Test(t)
	marker := capture(queue.EnqueueMarkerWithWaitList(gate)).Test(t)
	require.NoError(t, queue.Flush())
	require.NoError(t, gate.SetUserEventStatus(ExecutionStatus(ErrInvalidOperation)))

	// Commands waiting on a failed event are terminated abnormally.
	err := marker.WaitContext(context.Background())
	require.Error(t, err)
	require.NoError(t, marker.Release())
	require.NoError(t, gate.Release())
	require.NoError(t, gate.Release())

	require.Error(t, gate.Wait())
	require.Error(t, WaitForEvents(gate))
	require.NoError(t, WaitForEvents())
}

func TestCreateUserEventReleasedContext(t *testing.T) {
	ctx := getTestContext(t)
	require.NoError(t, ctx.Release())
	event, err := CreateUserEvent(ctx)
	require.ErrorContains(t, err, "context already released")
	assert.Nil(t, event)
}
