// Package thread provides the public API for the guest thread runtime.
//
// See doc.go for detailed documentation and examples.
package thread

import (
	"fmt"

	"github.com/kolkov/guestthread/internal/thread/errnov"
	"github.com/kolkov/guestthread/internal/thread/guestmem"
	"github.com/kolkov/guestthread/internal/thread/lifecycle"
	"github.com/kolkov/guestthread/internal/thread/registrar"
	"github.com/kolkov/guestthread/internal/thread/tcb"
)

// Spawn failure classes, re-exported from the lifecycle core.
var (
	// ErrResourceExhausted: the host refused to provide another thread
	// or its stack region.
	ErrResourceExhausted = lifecycle.ErrResourceExhausted

	// ErrUnsupportedPlatform: no thread backend is compiled for this
	// host.
	ErrUnsupportedPlatform = lifecycle.ErrUnsupportedPlatform
)

// DefaultStackSize is the guest stack size used when Options leaves
// StackSize zero.
const DefaultStackSize = 1 << 20

// Options configures a spawned guest thread.
//
// All fields are optional. File descriptors left zero are treated as
// absent; pass -1 explicitly only if descriptor 0 is genuinely in use as
// a thread channel.
type Options struct {
	// StackSize is the size of the guest stack region to allocate.
	// Defaults to DefaultStackSize.
	StackSize int

	// Notify is the notification descriptor pair handed to the thread.
	// The runtime's only obligation is to close both ends, in order,
	// when the thread exits.
	Notify [2]int

	// Request and Reply are the thread's channel descriptors toward the
	// host-side server. When Request is set, the startup handshake sends
	// a registration record on it; when Reply is also set, the handshake
	// waits for a one-byte acknowledgement.
	Request int
	Reply   int
}

// Thread is a handle on a spawned or adopted guest thread.
//
// The handle stays valid after the thread terminates; State and
// ExitStatus keep answering.
type Thread struct {
	cb *tcb.ControlBlock
}

// normFD maps the zero value to "absent".
func normFD(fd int) int {
	if fd == 0 {
		return -1
	}
	return fd
}

// Spawn launches a new guest thread running entry on a freshly allocated
// guest stack.
//
// The entry function must finish by calling [Exit] (or [Abort]);
// returning from it is tolerated and treated as Exit(0). Spawn returns
// as soon as the thread is launched, which is before its entry runs.
//
// Errors:
//   - [ErrResourceExhausted] if the stack region cannot be allocated
//   - [ErrUnsupportedPlatform] if no thread backend exists for this
//     platform and build configuration
func Spawn(entry func(), opts Options) (*Thread, error) {
	if entry == nil {
		return nil, fmt.Errorf("thread: nil entry function")
	}
	size := opts.StackSize
	if size <= 0 {
		size = DefaultStackSize
	}
	stack, err := guestmem.AllocateStack(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceExhausted, err)
	}

	notify := [2]int{normFD(opts.Notify[0]), normFD(opts.Notify[1])}
	cb := tcb.New(entry, stack, notify, normFD(opts.Request), normFD(opts.Reply))
	if err := lifecycle.Spawn(cb); err != nil {
		guestmem.ReleaseRegion(stack)
		guestmem.UnmapRemains(stack)
		return nil, err
	}
	return &Thread{cb: cb}, nil
}

// Setup registers the calling goroutine as the initial guest thread.
//
// The initial thread of a process is never spawned, but it still needs
// an identity, a selector token and an errno cell. Call Setup from the
// context that will act as the first thread, before installing the
// errno regime or spawning others:
//
//	func main() {
//		thread.Setup()
//		thread.InstallErrno()
//		// ... spawn guest threads
//	}
//
// Setup is idempotent: calling it again from an already-registered
// context returns the existing thread handle.
func Setup() *Thread {
	return &Thread{cb: lifecycle.AdoptCurrent()}
}

// Current returns the handle for the calling guest thread.
//
// Panics if the calling context was never registered: only spawned
// threads and the Setup-adopted initial thread have an identity.
func Current() *Thread {
	return &Thread{cb: registrar.Current()}
}

// Exit terminates the calling guest thread with the given status and
// never returns.
//
// Teardown is ordered: the thread leaves the running state, its
// host-side channels are closed, its stack region is reclaimed (either
// by the next exiting thread or by the thread itself from a temporary
// stack, depending on the backend), and only then is it marked
// terminated.
func Exit(status int) {
	lifecycle.Exit(status)
}

// Abort terminates the calling guest thread immediately with the given
// status and never returns. It skips the orderly teardown; if the caller
// is the last live thread, the whole process exits with status.
//
// Aborting the Setup-adopted thread while other threads are still live
// ends that goroutine via runtime.Goexit. When the adopted thread is the
// program's main goroutine, the process can then never return from main
// and dies with a runtime fatal error once the remaining goroutines
// finish. Abort the initial thread only when it should take the program
// down with it.
func Abort(status int) {
	lifecycle.Abort(status)
}

// Reclaim drains the deferred-reclamation slot, joining and freeing the
// most recently exited thread if one is still parked there. It reports
// whether a thread was reclaimed.
//
// Use it at shutdown, or in tests that assert full reclamation:
//
//	for thread.Reclaim() {
//	}
func Reclaim() bool {
	return lifecycle.ReclaimPending()
}

// Live reports the number of guest threads currently running, the
// adopted initial thread included.
func Live() int64 {
	return lifecycle.LiveUnits()
}

// InstallErrno switches the process from the shared errno regime to
// per-thread errno cells. Idempotent; once installed, the regime never
// reverts.
//
// After installation, [Errno] and [NetErrno] panic when called from an
// unregistered context.
func InstallErrno() {
	errnov.Install()
}

// Errno returns the calling thread's errno cell. Before InstallErrno it
// is the process-wide shared cell.
func Errno() *int32 {
	return errnov.Errno()
}

// NetErrno returns the calling thread's network errno cell. Before
// InstallErrno it is the process-wide shared cell.
func NetErrno() *int32 {
	return errnov.NetErrno()
}

// Handshake makes a newly spawned thread known to external subsystems.
// It runs once per thread, from the startup trampoline, after the thread
// has an identity and before its entry function runs.
type Handshake = lifecycle.Handshake

// SetHandshake installs the handshake used for subsequently spawned
// threads, replacing the default pipe-record handshake.
func SetHandshake(h Handshake) {
	lifecycle.SetHandshake(h)
}

// State is a guest thread lifecycle state.
type State = tcb.State

// Lifecycle states, in graceful order.
const (
	StatePrepared   = tcb.StatePrepared
	StateRunning    = tcb.StateRunning
	StateDetaching  = tcb.StateDetaching
	StateStackFreed = tcb.StateStackFreed
	StateTerminated = tcb.StateTerminated
)

// State returns the thread's current lifecycle state.
func (t *Thread) State() State {
	return t.cb.State()
}

// ExitStatus returns the thread's recorded exit status. Meaningful only
// once State reports StateTerminated.
func (t *Thread) ExitStatus() int {
	return t.cb.ExitStatus()
}

// TID returns the kernel thread id for backends that pin the thread to a
// dedicated host thread, or -1 when the backend has none.
func (t *Thread) TID() int {
	return t.cb.UnixTID
}

// StackBytes returns the size of the thread's guest stack region, or 0
// for the adopted initial thread.
func (t *Thread) StackBytes() int {
	return t.cb.Stack.Size
}
