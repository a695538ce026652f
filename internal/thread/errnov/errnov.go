// Package errnov virtualizes the runtime's error-state cells.
//
// Before multithreading exists there is nothing to virtualize: the
// accessors resolve to a single process-wide cell, and every caller sees
// every write. Install, called once at the point where concurrency
// becomes active, atomically repoints the indirection at per-thread cells
// resolved through the registrar. From then on a thread's error writes are
// invisible to every other thread.
//
// Installation is idempotent and applied at most once globally; there is
// no uninstall. After Install, calling an accessor from an execution
// context with no registered control block is the same precondition
// violation as calling the registrar early, and panics the same way.
//
// Two cells are virtualized: the primary error cell and the secondary
// (resolver-class) cell, which some host libraries keep separate.
//
// Where a foreign, pre-compiled accessor cannot be redirected through
// this indirection, because compiled code calls a C library's errno
// routine directly, PatchForeignAccessor rewrites the routine's entry
// with a jump instead; see patch_linux_amd64.go.
package errnov

import (
	"sync/atomic"

	"github.com/kolkov/guestthread/internal/thread/registrar"
	"github.com/kolkov/guestthread/internal/thread/trace"
)

// locator resolves to the current error cell under whichever regime is
// installed.
type locator func() *int32

// Process-wide cells, in effect until Install.
var (
	sharedErrno    int32
	sharedNetErrno int32
)

var (
	errnoLoc    atomic.Pointer[locator]
	netErrnoLoc atomic.Pointer[locator]
	installed   atomic.Bool
)

func init() {
	shared := locator(func() *int32 { return &sharedErrno })
	sharedNet := locator(func() *int32 { return &sharedNetErrno })
	errnoLoc.Store(&shared)
	netErrnoLoc.Store(&sharedNet)
}

// Errno returns the location of the current error cell: the process-wide
// cell before Install, the calling thread's own cell after.
func Errno() *int32 {
	return (*errnoLoc.Load())()
}

// NetErrno returns the location of the current secondary error cell,
// under the same regime as Errno.
func NetErrno() *int32 {
	return (*netErrnoLoc.Load())()
}

// Install repoints both accessors at per-thread cells. Idempotent: only
// the first call has any effect.
func Install() {
	if !installed.CompareAndSwap(false, true) {
		return
	}
	perThread := locator(func() *int32 { return &registrar.Current().Errno })
	perThreadNet := locator(func() *int32 { return &registrar.Current().NetErrno })
	errnoLoc.Store(&perThread)
	netErrnoLoc.Store(&perThreadNet)
	trace.Printf("errno", "per-thread error cells installed")
}

// Installed reports whether the per-thread regime is active.
func Installed() bool {
	return installed.Load()
}
