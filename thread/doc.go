// Package thread provides a Pure-Go guest thread lifecycle runtime without CGO dependency.
//
// This package manages the full lifetime of guest threads: execution units
// belonging to an embedded guest runtime, each with its own guest stack
// region, host-side channel descriptors and per-thread error state, all on
// top of plain goroutines. It replaces the C-style thread plumbing (clone/pthread
// spawn paths, self-freeing stacks, errno redirection) that guest runtimes
// traditionally carry, with no cgo and no assembly beyond a one-instruction
// identity probe.
//
// # Quick Start
//
//	package main
//
//	import "github.com/kolkov/guestthread/thread"
//
//	func main() {
//		thread.Setup()        // adopt main as the initial guest thread
//		thread.InstallErrno() // per-thread errno cells from here on
//
//		t, err := thread.Spawn(func() {
//			// ... guest work ...
//			thread.Exit(0)
//		}, thread.Options{})
//		if err != nil {
//			panic(err)
//		}
//		_ = t
//	}
//
// # API Overview
//
// The package provides functions for:
//   - Thread lifetime: [Spawn], [Exit], [Abort], [Reclaim]
//   - Identity: [Setup], [Current], [Live]
//   - Per-thread error state: [InstallErrno], [Errno], [NetErrno]
//   - Host integration: [SetHandshake]
//   - Version information: [GetInfo], [Version]
//
// # How It Works
//
// Every spawned thread starts in a trampoline that runs a fixed startup
// sequence: mark the thread running, register its identity, establish the
// host signal regime, announce the thread through the handshake, and only
// then call the entry function. The entry function leaves through [Exit]
// or [Abort]; a plain return is tolerated and treated as Exit(0).
//
// Exit is where the interesting part lives. A thread cannot free the stack
// it is standing on, so reclamation is either deferred one generation
// (each exiting thread parks itself in a single handoff slot and reclaims
// whichever thread was parked before it) or, on backends without join
// handles, performed by the thread itself after hopping onto a small
// borrowed temporary stack. Either way the ordering contract holds: by the
// time a thread reports Terminated, its channels are closed and its stack
// region is gone.
//
// The errno virtualizer starts in a process-wide shared regime, so code
// that runs before threading works unchanged; [InstallErrno] atomically
// switches every errno access to the calling thread's private cells.
//
// # Backends
//
// Two backends are selected at build time:
//
//	default:      each guest thread is pinned to a dedicated host thread
//	              (runtime.LockOSThread) for its whole life; the host
//	              thread dies with it
//	guest_green:  guest threads share the scheduler's thread pool; cheap,
//	              but no kernel thread identity
//
// Build with -tags guest_green to select the green backend. On platforms
// with neither backend, [Spawn] returns [ErrUnsupportedPlatform].
//
// # Compatibility
//
// Platform support:
//   - Operating systems: Linux, macOS, *BSD (full); others degrade to
//     heap-backed stacks and no signal masking
//   - Go version: 1.23 through 1.25 for the fast identity path; any
//     version via the fallback
//   - CGO requirement: None (works with CGO_ENABLED=0)
//   - Architecture: amd64, arm64 fast path; all architectures via fallback
//
// # Diagnostics
//
// Set GUESTTHREAD_DEBUG to a comma-separated list of channels ("thread",
// "errno", "mem", or "all") to trace lifecycle events on stderr.
//
// # Links
//
// Project repository:
// https://github.com/kolkov/guestthread
//
// Documentation:
// https://pkg.go.dev/github.com/kolkov/guestthread/thread
package thread
