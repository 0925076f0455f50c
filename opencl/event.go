package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"context"
	"runtime"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Event tracks the execution of an enqueued command, or a user event (see CreateUserEvent).
//
// Events returned by non-blocking enqueue calls keep the Go memory of the command pinned until the event is
// waited on (Wait, WaitContext, WaitForEvents) or released: the host slice must not be reused before that.
//
// Events must be released with Release (or WaitAndRelease), otherwise they are released when garbage collected.
type Event struct {
	cEvent C.cl_event
	rt     *Runtime

	// pinner holds the host memory used by a non-blocking command, if any.
	pinner *runtime.Pinner
}

func newEvent(rt *Runtime, cEvent C.cl_event, pinner *runtime.Pinner) *Event {
	e := &Event{cEvent: cEvent, rt: rt, pinner: pinner}
	runtime.SetFinalizer(e, func(e *Event) {
		if err := e.Release(); err != nil {
			klog.Errorf("Event.Release failed during garbage collection: %+v", err)
		}
	})
	return e
}

// Handle returns the raw cl_event.
func (e *Event) Handle() Handle {
	return Handle(unsafe.Pointer(e.cEvent))
}

// IsReleased returns whether the event has already been released.
func (e *Event) IsReleased() bool {
	return e == nil || e.cEvent == nil
}

// Release the event. If it still holds pinned host memory, it first waits for the command to complete.
//
// It's safe to call more than once, or on a nil Event.
func (e *Event) Release() error {
	if e.IsReleased() {
		return nil
	}
	defer runtime.KeepAlive(e)
	if e.pinner != nil {
		if err := e.Wait(); err != nil {
			klog.Warningf("Event.Release: waiting for command holding host memory failed: %v", err)
			e.unpin()
		}
	}
	err := toError(C.call_clReleaseEvent(e.rt.api, e.cEvent))
	e.cEvent = nil
	return err
}

func (e *Event) unpin() {
	if e.pinner != nil {
		e.pinner.Unpin()
		e.pinner = nil
	}
}

// Wait blocks until the command associated with the event completes.
func (e *Event) Wait() error {
	if e.IsReleased() {
		return errors.New("Event.Wait: event already released")
	}
	defer runtime.KeepAlive(e)
	err := toError(C.call_clWaitForEvent(e.rt.api, e.cEvent))
	if err == nil {
		e.unpin()
	}
	return err
}

// WaitAndRelease waits for the event and then releases it.
func (e *Event) WaitAndRelease() error {
	err := e.Wait()
	if err2 := e.Release(); err2 != nil {
		if err == nil {
			return err2
		}
		klog.Errorf("Event.Release failed after failed wait: %+v", err2)
	}
	return err
}

const (
	minEventPollInterval = 20 * time.Microsecond
	maxEventPollInterval = 10 * time.Millisecond
)

// WaitContext waits for the command to complete, or for ctx to be done. Unlike Wait, it doesn't block in
// the OpenCL runtime: it polls the execution status with an exponential backoff.
//
// If the command terminated abnormally, it returns its error code.
func (e *Event) WaitContext(ctx context.Context) error {
	interval := minEventPollInterval
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		status, err := e.CommandExecutionStatus()
		if err != nil {
			return err
		}
		if status.IsError() {
			return errors.WithMessagef(ErrorCode(status), "command terminated abnormally")
		}
		if status == ExecutionComplete {
			e.unpin()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		interval = min(2*interval, maxEventPollInterval)
		timer.Reset(interval)
	}
}

// WaitForEvents waits for all the events to complete. Nil events are ignored.
func WaitForEvents(events ...*Event) error {
	var rt *Runtime
	live := make([]*Event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		if e.IsReleased() {
			return errors.New("WaitForEvents: event already released")
		}
		rt = e.rt
		live = append(live, e)
	}
	if len(live) == 0 {
		return nil
	}
	scratch := rt.arenaPools.Get(len(live) * 8)
	defer rt.arenaPools.Return(scratch)
	numEvents, cEvents := cWaitList(scratch, live)
	if err := toError(C.call_clWaitForEvents(rt.api, numEvents, cEvents)); err != nil {
		return err
	}
	for _, e := range live {
		e.unpin()
	}
	runtime.KeepAlive(live)
	return nil
}

// cWaitList converts the events to a C array allocated in the arena. Nil or released events are skipped.
func cWaitList(a *arena, events []*Event) (C.cl_uint, *C.cl_event) {
	if len(events) == 0 {
		return 0, nil
	}
	cEvents := arenaAllocSlice[C.cl_event](a, len(events))
	n := 0
	for _, e := range events {
		if e.IsReleased() {
			continue
		}
		cEvents[n] = e.cEvent
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return C.cl_uint(n), &cEvents[0]
}

func (e *Event) infoFn(param C.cl_event_info) infoFn {
	return func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetEventInfo(e.rt.api, e.cEvent, param, size, value, sizeRet)
	}
}

// CommandExecutionStatus returns the status of the command. A negative status is an error code.
func (e *Event) CommandExecutionStatus() (ExecutionStatus, error) {
	if e.IsReleased() {
		return 0, errors.New("Event.CommandExecutionStatus: event already released")
	}
	defer runtime.KeepAlive(e)
	value, err := queryInfoScalar[C.cl_int](e.infoFn(C.CL_EVENT_COMMAND_EXECUTION_STATUS))
	return ExecutionStatus(value), err
}

// CommandType of the command associated with the event.
func (e *Event) CommandType() (CommandType, error) {
	defer runtime.KeepAlive(e)
	value, err := queryInfoScalar[C.cl_command_type](e.infoFn(C.CL_EVENT_COMMAND_TYPE))
	return CommandType(value), err
}

func (e *Event) ReferenceCount() (uint32, error) {
	defer runtime.KeepAlive(e)
	value, err := queryInfoScalar[C.cl_uint](e.infoFn(C.CL_EVENT_REFERENCE_COUNT))
	return uint32(value), err
}

// CommandQueue returns the handle of the queue the command was enqueued in, or 0 for user events.
func (e *Event) CommandQueue() (Handle, error) {
	defer runtime.KeepAlive(e)
	value, err := queryInfoScalar[C.cl_command_queue](e.infoFn(C.CL_EVENT_COMMAND_QUEUE))
	return Handle(unsafe.Pointer(value)), err
}

// Context returns the handle of the context of the event.
func (e *Event) Context() (Handle, error) {
	defer runtime.KeepAlive(e)
	value, err := queryInfoScalar[C.cl_context](e.infoFn(C.CL_EVENT_CONTEXT))
	return Handle(unsafe.Pointer(value)), err
}

// profilingInfo returns a device timestamp in nanoseconds. The queue must have been created with
// QueueProfilingEnable and the command must be complete.
func (e *Event) profilingInfo(param C.cl_profiling_info) (uint64, error) {
	if e.IsReleased() {
		return 0, errors.New("Event: profiling info of released event")
	}
	defer runtime.KeepAlive(e)
	value, err := queryInfoScalar[C.cl_ulong](func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.call_clGetEventProfilingInfo(e.rt.api, e.cEvent, param, size, value, sizeRet)
	})
	return uint64(value), err
}

// ProfilingCommandQueued is the device time (ns) when the command was enqueued.
func (e *Event) ProfilingCommandQueued() (uint64, error) {
	return e.profilingInfo(C.CL_PROFILING_COMMAND_QUEUED)
}

// ProfilingCommandSubmit is the device time (ns) when the command was submitted to the device.
func (e *Event) ProfilingCommandSubmit() (uint64, error) {
	return e.profilingInfo(C.CL_PROFILING_COMMAND_SUBMIT)
}

// ProfilingCommandStart is the device time (ns) when the command started executing.
func (e *Event) ProfilingCommandStart() (uint64, error) {
	return e.profilingInfo(C.CL_PROFILING_COMMAND_START)
}

// ProfilingCommandEnd is the device time (ns) when the command finished executing.
func (e *Event) ProfilingCommandEnd() (uint64, error) {
	return e.profilingInfo(C.CL_PROFILING_COMMAND_END)
}

// ProfilingCommandComplete is the device time (ns) when the command and its child commands completed.
func (e *Event) ProfilingCommandComplete() (uint64, error) {
	return e.profilingInfo(C.CL_PROFILING_COMMAND_COMPLETE)
}

// Duration of the execution of the command (from start to end), from the profiling info.
func (e *Event) Duration() (time.Duration, error) {
	start, err := e.ProfilingCommandStart()
	if err != nil {
		return 0, err
	}
	end, err := e.ProfilingCommandEnd()
	if err != nil {
		return 0, err
	}
	if end < start {
		return 0, errors.Errorf("Event.Duration: profiling end (%d) before start (%d)", end, start)
	}
	return time.Duration(end - start), nil
}

// CreateUserEvent creates an event whose status is controlled by the host with SetUserEventStatus.
// It can be used in wait lists to hold the execution of commands.
func CreateUserEvent(ctx *Context) (*Event, error) {
	if err := ctx.checkLive("CreateUserEvent"); err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(ctx)
	var code C.cl_int
	cEvent := C.call_clCreateUserEvent(ctx.rt.api, ctx.cContext, &code)
	if err := toError(code); err != nil {
		return nil, errors.WithMessage(err, "failed to create user event")
	}
	return newEvent(ctx.rt, cEvent, nil), nil
}

// SetUserEventStatus sets the status of a user event, either ExecutionComplete or a negative error code.
// It can only be called once per user event.
func (e *Event) SetUserEventStatus(status ExecutionStatus) error {
	if e.IsReleased() {
		return errors.New("Event.SetUserEventStatus: event already released")
	}
	defer runtime.KeepAlive(e)
	return toError(C.call_clSetUserEventStatus(e.rt.api, e.cEvent, C.cl_int(status)))
}
