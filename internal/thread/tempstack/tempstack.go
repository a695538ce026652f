// Package tempstack implements the pool of scratch stacks used during
// thread teardown.
//
// A thread that is freeing its own guest stack needs somewhere else to run
// the last few steps of its cleanup. The pool provides a fixed set of small
// fixed-size buffers for exactly that window. A slot is borrowed for the
// duration of one teardown via an atomic fetch-and-add over a shared
// counter; slots are never marked free. Reuse is purely round-robin, which
// bounds safe concurrent teardowns to fewer than SlotCount by convention,
// not by enforcement. That bound is a documented limitation of the design
// (see the package tests that assert it), deliberately not guarded by a
// lock: teardown must never block on another thread's teardown.
package tempstack

import "sync/atomic"

const (
	// SlotSize is the size of one temporary stack in bytes. The cleanup
	// routine that runs on a slot is non-recursive and allocation-free,
	// so a small fixed size suffices.
	SlotSize = 1024

	// SlotCount is the number of slots in the pool. At most SlotCount-1
	// teardowns may overlap before a slot is handed out twice.
	SlotCount = 8
)

// slots is the backing storage for the pool. Never reallocated.
var slots [SlotCount][SlotSize]byte

// next is the shared monotonically increasing counter. The slot for
// borrow n is n mod SlotCount.
var next atomic.Uint32

// Borrow returns the next temporary stack slot in round-robin order.
//
// The returned buffer is valid for the duration of one teardown. There is
// no Return: the borrow is implicitly over once the borrowing thread has
// terminated, and the slot will be handed out again SlotCount borrows
// later regardless.
//
//go:nosplit
func Borrow() []byte {
	n := next.Add(1) - 1
	return slots[n%SlotCount][:]
}

// BorrowCount returns the total number of borrows so far. Used by
// diagnostics and tests; not part of the teardown path.
func BorrowCount() uint32 {
	return next.Load()
}
