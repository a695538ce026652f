//go:build guest_green

package lifecycle

import (
	"github.com/kolkov/guestthread/internal/thread/tcb"
)

// Green backend: execution units share the host scheduler's thread pool
// instead of each claiming a dedicated host thread. Units are cheap and
// unmanaged; there is no join handle, so termination must relocate onto a
// borrowed slot and tear everything down in place, including the unit's
// own stack region.

const backendManagedJoin = false

const backendName = "green"

func backendSpawn(cb *tcb.ControlBlock) error {
	go trampoline(cb)
	return nil
}
