// Package registrar binds the running execution context to its control
// block.
//
// The binding must be O(1), lock-free and syscall-free on the lookup path:
// the errno virtualizer resolves through it on every error-state access.
// The host-side identity of an execution context is its goroutine id,
// extracted through a build-selected fast path (see gid_fast.go and
// gid_fallback.go); the id indexes a lock-free registry of control blocks.
//
// Register is called exactly once per thread, as the first step of the
// startup trampoline, and the binding stays valid until teardown relocates
// execution and calls Unregister from the temporary stack. Calling Current
// before registration is a precondition violation: it panics rather than
// returning an error, because no caller can meaningfully continue without
// a current thread.
//
// The registrar also owns the pool of fast-access tokens: small reusable
// per-thread selectors handed out at registration and returned during
// teardown, the moral equivalent of a segment selector on hosts that
// address the control block through a reserved segment register.
package registrar

import (
	"sync"

	"github.com/kolkov/guestthread/internal/thread/tcb"
	"github.com/kolkov/guestthread/internal/thread/trace"
)

// registry maps goroutine id to control block. sync.Map keeps the lookup
// path lock-free: lookups vastly outnumber the one store and one delete
// per thread lifetime.
var registry sync.Map // int64 -> *tcb.ControlBlock

// Token pool state. Tokens are allocated at Register and returned by
// FreeToken on the temporary stack. The mutex guards O(1) list edits only
// and is never held while waiting on anything, so a teardown can never
// block behind another teardown here.
var (
	tokenMu    sync.Mutex
	freeTokens []uint8
)

func init() {
	resetTokenPool()
}

// resetTokenPool refills the free list with all 256 tokens in ascending
// order, so allocation hands them out 0, 1, 2, ...
func resetTokenPool() {
	tokenMu.Lock()
	defer tokenMu.Unlock()
	freeTokens = make([]uint8, 256)
	for i := range freeTokens {
		freeTokens[i] = uint8(i)
	}
}

// allocToken takes the lowest free token. Exhaustion degrades to token 0
// rather than failing: a duplicate selector loses fast-path identity
// precision but never blocks a spawn.
func allocToken() uint8 {
	tokenMu.Lock()
	defer tokenMu.Unlock()
	if len(freeTokens) == 0 {
		return 0
	}
	tok := freeTokens[0]
	freeTokens = freeTokens[1:]
	return tok
}

// FreeToken returns a fast-access token to the pool. Called from the
// temporary stack during teardown, or by whichever thread reclaims an
// exited unit.
func FreeToken(tok uint8) {
	tokenMu.Lock()
	defer tokenMu.Unlock()
	freeTokens = append(freeTokens, tok)
}

// Register makes cb the current control block for the calling execution
// context and assigns its fast-access token. Must be called exactly once
// per thread, before any other lifecycle activity on that thread; a second
// registration on the same context is a trampoline bug and panics.
func Register(cb *tcb.ControlBlock) {
	gid := currentGID()
	if _, loaded := registry.LoadOrStore(gid, cb); loaded {
		panic("registrar: execution context already has a current thread")
	}
	cb.GID = gid
	cb.Token = allocToken()
	if trace.Enabled("thread") {
		trace.Printf("thread", "registered gid=%d token=%d", gid, cb.Token)
	}
}

// Current returns the control block for the calling execution context.
//
// Hot path: one identity read and one lock-free map load, no defensive
// checks beyond the miss itself. A miss means the caller ran before
// trampoline step one or after teardown unregistration, which is a
// precondition violation, so it panics.
func Current() *tcb.ControlBlock {
	v, ok := registry.Load(currentGID())
	if !ok {
		panic("registrar: no current thread for this execution context")
	}
	return v.(*tcb.ControlBlock)
}

// TryCurrent returns the current control block, or nil when the calling
// context is unregistered. For the few callers that legitimately straddle
// the pre-threading window: the errno virtualizer and the abort path.
func TryCurrent() *tcb.ControlBlock {
	v, ok := registry.Load(currentGID())
	if !ok {
		return nil
	}
	return v.(*tcb.ControlBlock)
}

// Lookup returns the control block registered for an arbitrary execution
// context, and whether one exists. Observability path: reclaimers and
// diagnostics look up threads other than their own.
func Lookup(gid int64) (*tcb.ControlBlock, bool) {
	v, ok := registry.Load(gid)
	if !ok {
		return nil, false
	}
	return v.(*tcb.ControlBlock), true
}

// Unregister drops the binding for the given execution context. Teardown
// only; the token is returned separately via FreeToken so the reclaiming
// thread can sequence the two independently.
func Unregister(gid int64) {
	registry.Delete(gid)
}
