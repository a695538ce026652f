package lifecycle

import (
	"runtime"

	"github.com/kolkov/guestthread/internal/thread/guestmem"
	"github.com/kolkov/guestthread/internal/thread/hostsig"
	"github.com/kolkov/guestthread/internal/thread/registrar"
	"github.com/kolkov/guestthread/internal/thread/stackswitch"
	"github.com/kolkov/guestthread/internal/thread/tcb"
	"github.com/kolkov/guestthread/internal/thread/tempstack"
	"github.com/kolkov/guestthread/internal/thread/trace"
)

// Exit terminates the calling execution unit with the given status and
// never returns. Exactly how the unit's stack is reclaimed depends on
// the backend: a managed unit parks itself in the handoff slot and lets
// the NEXT exiting unit join it and free its stack, while an unmanaged
// unit has nobody coming after it, so it hops onto a borrowed temporary
// slot and frees its own stack from there.
//
// Either way the ordering contract holds: by the time the unit is
// Terminated its host-side channels are closed, its region is gone from
// the bookkeeping, and its registrar entry and token are released.
func Exit(status int) {
	if backendManagedJoin {
		exitManaged(status)
	} else {
		exitUnmanaged(status)
	}
	panic("lifecycle: exit returned")
}

// exitManaged is the deferred-reclamation path. The exiting unit cannot
// free its own stack (it is still standing on it), so reclamation runs
// one generation late: each exiting unit publishes itself through the
// handoff slot and reclaims whatever unit was parked there before it.
func exitManaged(status int) {
	cb := registrar.Current()
	cb.Advance(tcb.StateRunning, tcb.StateDetaching)
	cb.RecordExitStatus(status)

	if trace.Enabled("thread") {
		trace.Printf("thread", "exit: gid=%d status=%d", cb.GID, status)
	}

	if prev := handoffExchange(cb); prev != nil {
		deferredJoins.Add(1)
		joinAndReclaim(prev)
	}

	hostsig.Block()
	closeChannels(cb)
	terminateUnit(cb, status)
}

// joinAndReclaim waits for a parked unit to finish running and then
// releases everything it owned. Bookkeeping release comes before the
// unmap so that no window exists where the region is gone from the host
// but still claims to be tracked.
//
// An adopted unit has neither a join handle nor a managed stack region;
// for those the join and the unmap are skipped so reclamation can never
// block on a unit with nothing to wait for.
func joinAndReclaim(prev *tcb.ControlBlock) {
	if h := prev.JoinHandle(); h != nil {
		prev.RecordExitStatus(<-h)
	}

	if prev.Stack.Size != 0 {
		if err := guestmem.ReleaseRegion(prev.Stack); err != nil {
			trace.Printf("mem", "release of parked stack %#x: %v", prev.Stack.Base, err)
		}
	}
	prev.Advance(tcb.StateDetaching, tcb.StateStackFreed)
	if prev.Stack.Size != 0 {
		if err := guestmem.UnmapRemains(prev.Stack); err != nil {
			trace.Printf("mem", "unmap of parked stack %#x: %v", prev.Stack.Base, err)
		}
	}

	registrar.FreeToken(prev.Token)
	registrar.Unregister(prev.GID)
	prev.Advance(tcb.StateStackFreed, tcb.StateTerminated)
}

// exitUnmanaged is the self-reclamation path: release the region, hop
// onto a borrowed temporary slot, and finish the teardown from there so
// the unit's own stack can be unmapped underneath it.
func exitUnmanaged(status int) {
	cb := registrar.Current()
	cb.Advance(tcb.StateRunning, tcb.StateDetaching)

	if trace.Enabled("thread") {
		trace.Printf("thread", "exit: gid=%d status=%d", cb.GID, status)
	}

	region := cb.Stack
	if region.Size == 0 {
		// Units spawned onto foreign stacks resolve their bounds late.
		if r, ok := guestmem.QueryRegionBounds(cb.StackLow); ok {
			region = r
		}
	}
	info := stackswitch.CleanupInfo{
		StackBase: region.Base,
		StackSize: region.Size,
		Status:    status,
	}

	hostsig.Block()

	if region.Size != 0 {
		if err := guestmem.ReleaseRegion(region); err != nil {
			trace.Printf("mem", "release of own stack %#x: %v", region.Base, err)
		}
	}
	closeChannels(cb)
	cb.Advance(tcb.StateDetaching, tcb.StateStackFreed)

	slot := tempstack.Borrow()
	cb.RebindStack(slot)
	stackswitch.Switch(cleanupOnTempStack, info)
}

// cleanupOnTempStack runs on a borrowed slot; the unit's original stack
// region may no longer exist by the time this executes. It must not
// reach back into anything living on that region, which is why its whole
// input arrives by value in info.
func cleanupOnTempStack(info stackswitch.CleanupInfo) {
	hostsig.Reset()

	if info.StackSize != 0 {
		r := guestmem.Region{Base: info.StackBase, Size: info.StackSize}
		if err := guestmem.UnmapRemains(r); err != nil {
			trace.Printf("mem", "unmap of own stack %#x: %v", info.StackBase, err)
		}
	}

	cb := registrar.Current()
	registrar.FreeToken(cb.Token)
	registrar.Unregister(cb.GID)
	cb.RecordExitStatus(info.Status)
	cb.Advance(tcb.StateStackFreed, tcb.StateTerminated)

	terminateUnit(cb, info.Status)
}

// closeChannels shuts the unit's host-side descriptors in a fixed order:
// both notification ends first, then reply, then request. Closing the
// request channel last is what the host observes as "this unit is gone".
func closeChannels(cb *tcb.ControlBlock) {
	fdClose(cb.NotifyFD[0])
	fdClose(cb.NotifyFD[1])
	fdClose(cb.ReplyFD)
	fdClose(cb.RequestFD)
}

// terminateUnit delivers the exit status and stops the unit's goroutine.
// A managed unit reports through its join handle and then leaves via
// Goexit, which also destroys the locked host thread; an unmanaged unit
// has no handle and just leaves.
func terminateUnit(cb *tcb.ControlBlock, status int) {
	liveUnits.Add(-1)
	if done := cb.JoinHandle(); done != nil {
		done <- status
	}
	runtime.Goexit()
}
