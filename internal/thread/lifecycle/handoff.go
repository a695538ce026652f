package lifecycle

import (
	"sync/atomic"

	"github.com/kolkov/guestthread/internal/thread/tcb"
)

// The handoff slot holds at most one terminated-but-unreclaimed unit.
// Every exiting managed unit swaps itself in and reclaims whoever it
// displaced, so at any moment the process owes at most one stack to the
// slot; the last unit standing is reclaimed by ReclaimPending or at
// process exit.
var pending atomic.Pointer[tcb.ControlBlock]

// deferredJoins counts reclamations performed on the exit path, as
// opposed to drains through ReclaimPending.
var deferredJoins atomic.Uint64

// handoffExchange parks cb in the slot and returns whichever unit was
// parked there before, or nil.
func handoffExchange(cb *tcb.ControlBlock) *tcb.ControlBlock {
	return pending.Swap(cb)
}

// DeferredJoins reports how many units have been reclaimed by a
// successor on the exit path.
func DeferredJoins() uint64 {
	return deferredJoins.Load()
}

// ReclaimPending drains the handoff slot from outside the exit path,
// joining and reclaiming the parked unit if there is one. It reports
// whether a unit was reclaimed. Callers use it at shutdown, or anywhere
// a bounded wait for full reclamation is needed.
func ReclaimPending() bool {
	prev := pending.Swap(nil)
	if prev == nil {
		return false
	}
	joinAndReclaim(prev)
	return true
}
