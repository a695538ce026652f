package lifecycle

import "errors"

// Spawn failure classes. Everything past spawn is best-effort by design
// and reports nothing: once a thread commits to exiting, forward progress
// to termination outranks cleanup-failure reporting.
var (
	// ErrResourceExhausted: the host backend refused to create another
	// execution unit. Synchronous; the caller owns reclaiming the block
	// and stack, and there is no internal retry.
	ErrResourceExhausted = errors.New("thread backend out of resources")

	// ErrUnsupportedPlatform: no backend is compiled for this host. A
	// hard capability gap, not a transient condition.
	ErrUnsupportedPlatform = errors.New("no thread backend for this platform")

	// ErrNotPrepared: the control block is not in the Prepared state.
	// The block still belongs to the caller.
	ErrNotPrepared = errors.New("control block not prepared")
)
