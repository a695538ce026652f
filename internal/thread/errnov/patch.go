package errnov

import "github.com/kolkov/guestthread/internal/thread/trace"

// PatchForeignAccessor redirects a foreign error-state accessor that
// pointer indirection cannot reach: pre-compiled code calling the routine
// at addr directly. The routine's entry bytes are overwritten with a jump
// to the replacement at dest.
//
// This is a single-shot, irreversible operation, intended only during
// initialization, before the routine can be executing concurrently. Pure
// Go builds have no such foreign accessor and never need it; it exists
// for embedders whose host C library resolves errno through a directly
// called routine.
func PatchForeignAccessor(addr, dest uintptr) error {
	if err := patchEntry(addr, dest); err != nil {
		return err
	}
	trace.Printf("errno", "patched foreign accessor at %#x -> %#x", addr, dest)
	return nil
}
