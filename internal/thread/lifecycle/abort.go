package lifecycle

import (
	"runtime"
	"sync/atomic"

	"github.com/kolkov/guestthread/internal/thread/hostsig"
	"github.com/kolkov/guestthread/internal/thread/registrar"
	"github.com/kolkov/guestthread/internal/thread/trace"
)

// liveUnits counts execution units currently running, the adopted
// initial unit included. Abort uses it to decide between killing one
// unit and killing the process.
var liveUnits atomic.Int64

// LiveUnits reports the number of execution units currently running.
func LiveUnits() int64 {
	return liveUnits.Load()
}

// Abort tears the calling unit down immediately with the given status
// and never returns. Unlike Exit it skips the orderly reclamation
// machinery: no state-machine walk, no stack release, no handoff. The
// unit's channels are closed best effort, its block is force-marked
// Terminated, and the unit is gone.
//
// When the caller is the last live unit, or was never registered at
// all, Abort takes the whole process down with the same status.
//
// An adopted unit that aborts while others live leaves via Goexit like
// any other; when that unit is the main goroutine the runtime tears the
// process down anyway once main unwinds ("no goroutines" fatal error).
// Callers on the initial unit should treat Abort as process-fatal.
func Abort(status int) {
	hostsig.Block()

	cb := registrar.TryCurrent()
	if cb == nil {
		hostsig.Reset()
		hostExit(status)
	}

	if trace.Enabled("thread") {
		trace.Printf("thread", "abort: gid=%d status=%d", cb.GID, status)
	}
	closeChannels(cb)
	cb.RecordExitStatus(status)
	cb.ForceTerminated()

	if liveUnits.Add(-1) <= 0 {
		hostsig.Reset()
		hostExit(status)
	}

	registrar.FreeToken(cb.Token)
	registrar.Unregister(cb.GID)
	if done := cb.JoinHandle(); done != nil {
		done <- status
	}
	// Goexit kills the goroutine, and with it the locked host thread
	// when the backend pinned one.
	runtime.Goexit()
	panic("lifecycle: abort returned")
}
