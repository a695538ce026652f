package lifecycle

import (
	"github.com/kolkov/guestthread/internal/thread/hostsig"
	"github.com/kolkov/guestthread/internal/thread/registrar"
	"github.com/kolkov/guestthread/internal/thread/tcb"
	"github.com/kolkov/guestthread/internal/thread/trace"
)

// trampoline is the first code every execution unit runs. It performs the
// unit's own setup in a fixed order (mark running, register identity,
// establish the host signal regime, announce the unit to the host side)
// and only then enters the entry point.
//
// The entry point must not return: a unit leaves through Exit or Abort.
// A returning entry is a contract violation; the trampoline absorbs it by
// exiting with status 0 so the unit still tears down along the normal
// path instead of leaking its resources.
func trampoline(cb *tcb.ControlBlock) {
	cb.Advance(tcb.StatePrepared, tcb.StateRunning)

	// Identity first: everything after this point, including the errno
	// regime and the exit path, resolves the current unit through the
	// registrar.
	registrar.Register(cb)
	liveUnits.Add(1)

	hostsig.InitState()

	if err := currentHandshake().RegisterNewThread(cb); err != nil {
		// The announcement is best effort; a unit with no host-side
		// channels still runs.
		trace.Printf("thread", "handshake failed: %v", err)
	}

	if trace.Enabled("thread") {
		trace.Printf("thread", "unit up: gid=%d tid=%d token=%d",
			cb.GID, cb.UnixTID, cb.Token)
	}

	cb.Entry()

	trace.Printf("thread", "entry returned without exiting: gid=%d", cb.GID)
	Exit(0)
}
