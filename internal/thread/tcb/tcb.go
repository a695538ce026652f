// Package tcb defines the per-thread control block and its lifecycle state
// machine.
//
// A control block is allocated and populated by the caller before spawn,
// then mutated only in well-defined phases: error cells by the owning
// thread, the backend handle by the spawner, state transitions by the
// teardown sequencer. Exactly one control block is current per execution
// context, bound by the registrar during trampoline startup.
//
// Only the fields this lifecycle subsystem reads or mutates are modeled
// here; the full descriptor schema of an embedding runtime is out of
// scope.
package tcb

import (
	"fmt"
	"sync/atomic"

	"github.com/kolkov/guestthread/internal/thread/guestmem"
)

// State is the lifecycle state of a control block.
//
// Graceful path: Prepared → Running → Detaching → StackFreed → Terminated.
// Abort path: Running → Terminated directly.
type State uint32

const (
	// StatePrepared: allocated and populated, not yet spawned.
	StatePrepared State = iota

	// StateRunning: the execution unit is live and owns its stack region.
	StateRunning

	// StateDetaching: the thread has committed to teardown; the stack
	// region's bookkeeping is being released.
	StateDetaching

	// StateStackFreed: bookkeeping released, execution relocated (or
	// relocating) off the original stack.
	StateStackFreed

	// StateTerminated: the execution unit is gone; the block may be
	// reclaimed by its allocator.
	StateTerminated
)

// String returns the state name for traces and panics.
func (s State) String() string {
	switch s {
	case StatePrepared:
		return "Prepared"
	case StateRunning:
		return "Running"
	case StateDetaching:
		return "Detaching"
	case StateStackFreed:
		return "StackFreed"
	case StateTerminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

// ControlBlock is the per-thread descriptor. One per execution unit.
//
// The stack region is exclusively owned by the thread from spawn until the
// thread commits to teardown; no other thread ever accesses it. Once
// execution relocates onto a temporary stack, the original region is
// permanently inaccessible to the thread.
type ControlBlock struct {
	state atomic.Uint32

	// Stack is the guest stack region bound at preparation time. Rewritten
	// only by RebindStack during teardown.
	Stack guestmem.Region

	// StackLow is the mutable "current low" bound. Meaningful only during
	// teardown, when it is repointed at a temporary stack slot.
	StackLow uintptr

	// NotifyFD is the notification channel pair. The block holds these as
	// capability handles only; the core's sole obligation is to close
	// them, in order, during teardown.
	NotifyFD [2]int

	// RequestFD and ReplyFD are the request/reply channel handles toward
	// the runtime's server side. Capability handles, same closing
	// obligation.
	RequestFD int
	ReplyFD   int

	// Errno and NetErrno are the per-thread error-state cells exposed
	// through the errno virtualizer once it is installed.
	Errno    int32
	NetErrno int32

	// Entry is the thread entry function, with its captured state. It is
	// expected to finish by calling the graceful exit; returning is a
	// contract violation the trampoline papers over.
	Entry func()

	// Token is the fast-access selector allocated by the registrar at
	// registration and released on the temporary stack during teardown.
	Token uint8

	// GID is the host execution context identity recorded at
	// registration. Zero until the trampoline has run.
	GID int64

	// UnixTID is the kernel thread id for backends that pin the unit to a
	// dedicated host thread, or -1 when the backend has none.
	UnixTID int

	// done is the backend join handle for managed backends: the unit's
	// exit status is sent exactly once at termination, and joining the
	// unit means receiving from it. Nil for unmanaged backends.
	done chan int

	// exitStatus is recorded by whoever joins the unit, before the final
	// transition to Terminated. Readers that have observed Terminated
	// through State see the recorded value.
	exitStatus int
}

// New returns a Prepared control block for the given entry function, stack
// region and channel handles.
func New(entry func(), stack guestmem.Region, notify [2]int, requestFD, replyFD int) *ControlBlock {
	cb := &ControlBlock{
		Stack:     stack,
		StackLow:  stack.Base,
		NotifyFD:  notify,
		RequestFD: requestFD,
		ReplyFD:   replyFD,
		Entry:     entry,
		UnixTID:   -1,
	}
	cb.state.Store(uint32(StatePrepared))
	return cb
}

// State returns the current lifecycle state.
func (cb *ControlBlock) State() State {
	return State(cb.state.Load())
}

// Advance moves the block from one lifecycle state to the next. A failed
// transition means the caller's view of the lifecycle is wrong, which is a
// programming error in the sequencer, not a runtime condition: it panics.
func (cb *ControlBlock) Advance(from, to State) {
	if !cb.state.CompareAndSwap(uint32(from), uint32(to)) {
		panic(fmt.Sprintf("tcb: invalid transition %v→%v, block is %v",
			from, to, cb.State()))
	}
}

// ForceTerminated marks the block Terminated regardless of its current
// state. Abort path only.
func (cb *ControlBlock) ForceTerminated() {
	cb.state.Store(uint32(StateTerminated))
}

// BindJoinHandle attaches the backend join handle. Called once, by the
// spawner, before the unit starts.
func (cb *ControlBlock) BindJoinHandle(done chan int) {
	cb.done = done
}

// JoinHandle returns the backend join handle, or nil for unmanaged units.
func (cb *ControlBlock) JoinHandle() chan int {
	return cb.done
}

// RecordExitStatus stores the unit's exit status. Must happen before the
// block is advanced to Terminated.
func (cb *ControlBlock) RecordExitStatus(status int) {
	cb.exitStatus = status
}

// ExitStatus returns the recorded exit status. Meaningful only once the
// block has been observed Terminated.
func (cb *ControlBlock) ExitStatus() int {
	return cb.exitStatus
}

// RebindStack repoints the block's stack bounds at a temporary stack slot.
// After this, the original region is unreachable through the block; the
// teardown sequencer holds its bounds by value.
func (cb *ControlBlock) RebindStack(slot []byte) {
	cb.Stack = guestmem.Region{
		Base: uintptr(sliceBase(slot)),
		Size: len(slot),
	}
	cb.StackLow = cb.Stack.Base
}
