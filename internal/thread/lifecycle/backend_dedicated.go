//go:build !guest_green && unix

package lifecycle

import (
	"runtime"

	"github.com/kolkov/guestthread/internal/thread/tcb"
)

// Dedicated-thread backend: each execution unit is a goroutine wired to
// its own host thread for its whole lifetime. Locking before the
// trampoline runs guarantees the unit's kernel identity, signal mask and
// any thread-local host state stay put. The goroutine never unlocks, so
// the host thread is destroyed when the unit terminates, the way a
// joined native thread would be.
//
// The backend handle is a join channel: termination sends the unit's exit
// status exactly once, and joining the unit means receiving it. Managed
// handles must be joined before the unit is fully gone, which is what the
// exit path's one-generation handoff exists for.

// backendManagedJoin selects the deferred-reclamation exit path at
// compile time.
const backendManagedJoin = true

// backendName is reported through the facade's capability info, never as
// a concrete backend identity.
const backendName = "dedicated-thread"

func backendSpawn(cb *tcb.ControlBlock) error {
	done := make(chan int, 1)
	cb.BindJoinHandle(done)
	go func() {
		// Nothing may run on the unit ahead of the trampoline; pinning
		// and identity capture are backend setup, not unit work.
		runtime.LockOSThread()
		cb.UnixTID = hostTID()
		trampoline(cb)
	}()
	return nil
}
