package lifecycle

import (
	"github.com/kolkov/guestthread/internal/thread/guestmem"
	"github.com/kolkov/guestthread/internal/thread/hostsig"
	"github.com/kolkov/guestthread/internal/thread/registrar"
	"github.com/kolkov/guestthread/internal/thread/tcb"
)

// AdoptCurrent registers the calling goroutine as an execution unit
// without spawning it: the initial unit of a process exists before any
// Spawn and still needs an identity, a token and an errno cell. The
// adopted unit has no managed stack region and no host-side channels.
//
// Adopting a context that already has a current unit is a no-op that
// returns the existing block, so callers need not track whether setup
// has already run.
func AdoptCurrent() *tcb.ControlBlock {
	if cb := registrar.TryCurrent(); cb != nil {
		return cb
	}
	cb := tcb.New(nil, guestmem.Region{}, [2]int{-1, -1}, -1, -1)
	cb.Advance(tcb.StatePrepared, tcb.StateRunning)
	registrar.Register(cb)
	liveUnits.Add(1)
	cb.UnixTID = hostTID()
	hostsig.InitState()
	return cb
}
