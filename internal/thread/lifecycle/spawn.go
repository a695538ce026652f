package lifecycle

import (
	"fmt"

	"github.com/kolkov/guestthread/internal/thread/tcb"
	"github.com/kolkov/guestthread/internal/thread/trace"
)

// Spawn hands a prepared control block to the active backend. The block
// must still be in its freshly-built state; control blocks are single
// use and may not be respawned after their unit has run.
//
// Spawn returns once the backend has accepted the unit. The unit itself
// starts asynchronously through the trampoline, so a nil return means
// "launched", not "running".
func Spawn(cb *tcb.ControlBlock) error {
	if st := cb.State(); st != tcb.StatePrepared {
		return fmt.Errorf("spawn rejected in state %v: %w", st, ErrNotPrepared)
	}
	if err := backendSpawn(cb); err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	if trace.Enabled("thread") {
		trace.Printf("thread", "spawn accepted: stack=%#x size=%d backend=%s",
			cb.Stack.Base, cb.Stack.Size, backendName)
	}
	return nil
}
