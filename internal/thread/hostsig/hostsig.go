// Package hostsig manages per-thread host signal state for guest threads.
//
// The lifecycle code calls into this package at three fixed points:
//
//   - InitState: at trampoline start, before any guest code runs, to give
//     the new execution unit a known signal disposition.
//   - Block: once a thread commits to teardown, so no handler can run on a
//     stack that is about to be freed.
//   - Reset: on the temporary stack, restoring the default disposition for
//     the final termination step.
//
// Signal handler installation itself belongs to the host signal subsystem
// and is outside this package; only the per-thread mask is managed here.
package hostsig

// InitState establishes the initial signal state for a newly started
// execution unit. Must be called before the unit runs any guest code.
func InitState() {
	initState()
}

// Block masks all blockable signals on the calling thread. Called when a
// thread commits to teardown; failures are ignored, since the thread is
// terminating regardless.
func Block() {
	block()
}

// Reset restores the default signal state on the calling thread. Called
// from the temporary stack during the last phase of teardown.
func Reset() {
	reset()
}
