// Package guestmem manages the memory regions used as guest thread stacks.
//
// Regions are mapped outside the Go heap (anonymous private mappings on
// unix hosts) because their lifetime is tied to the guest thread lifecycle,
// not to the garbage collector: a thread frees its own stack while still
// running, which requires an explicit two-phase release.
//
// The two phases mirror the teardown sequencer's needs:
//
//  1. ReleaseRegion gives up the bookkeeping for the region. After this
//     the region no longer resolves through QueryRegionBounds and no new
//     references to it may be created. Called while the thread still runs
//     on the region.
//  2. UnmapRemains returns the pages to the host. Called only after the
//     thread has relocated onto a temporary stack and holds the bounds by
//     value.
//
// Splitting the phases is what lets teardown close its communication
// channels between them: releasing the bookkeeping may itself require the
// channels, so it cannot come after they are closed.
package guestmem

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/kolkov/guestthread/internal/thread/trace"
)

// Region identifies one guest stack by value. It is small enough to be
// copied off a stack that is about to be freed.
type Region struct {
	// Base is the lowest address of the region.
	Base uintptr

	// Size is the region length in bytes.
	Size int
}

// Top returns the address one past the highest byte of the region; guest
// stacks grow downward from here.
func (r Region) Top() uintptr {
	return r.Base + uintptr(r.Size)
}

// Contains reports whether addr falls inside the region.
func (r Region) Contains(addr uintptr) bool {
	return addr >= r.Base && addr < r.Base+uintptr(r.Size)
}

// ErrUnknownRegion is returned when a release or unmap names a region this
// package is not tracking.
var ErrUnknownRegion = errors.New("guestmem: unknown region")

// ErrRegionReleased is returned when bookkeeping for a region is released
// twice.
var ErrRegionReleased = errors.New("guestmem: region already released")

// mapping is the bookkeeping entry for one live region. The data slice
// keeps the backing memory reachable until UnmapRemains on hosts where the
// fallback allocator is in use.
type mapping struct {
	data     []byte
	released atomic.Bool
}

// regions maps region base address to its bookkeeping entry. Entries are
// inserted by AllocateStack, hidden by ReleaseRegion and removed by
// UnmapRemains.
var regions sync.Map // uintptr -> *mapping

// mappedBytes tracks bytes mapped and not yet unmapped, across both
// phases. Diagnostics and tests only.
var mappedBytes atomic.Int64

// AllocateStack maps a new region of the given size for use as a guest
// thread stack and registers its bounds.
//
// The pages are readable and writable and zero-filled. The caller owns the
// region until it hands it to a control block; from spawn on, the region
// belongs exclusively to that thread.
func AllocateStack(size int) (Region, error) {
	if size <= 0 {
		return Region{}, fmt.Errorf("guestmem: invalid stack size %d", size)
	}
	data, err := mapStack(size)
	if err != nil {
		return Region{}, fmt.Errorf("guestmem: map %d-byte stack: %w", size, err)
	}
	r := Region{Base: uintptr(unsafe.Pointer(&data[0])), Size: size}
	regions.Store(r.Base, &mapping{data: data})
	mappedBytes.Add(int64(size))
	if trace.Enabled("mem") {
		trace.Printf("mem", "mapped stack base=%#x size=%d", r.Base, r.Size)
	}
	return r, nil
}

// Bytes returns the byte view of a live region, or nil once the region's
// bookkeeping has been released.
func Bytes(r Region) []byte {
	v, ok := regions.Load(r.Base)
	if !ok {
		return nil
	}
	m := v.(*mapping)
	if m.released.Load() {
		return nil
	}
	return m.data
}

// ReleaseRegion gives up the bookkeeping for a region. The pages remain
// mapped until UnmapRemains; the region simply stops resolving through
// QueryRegionBounds and Bytes.
//
// Called by the teardown sequencer while the owning thread is still
// executing against the region, which is why this phase must not touch the
// mapping itself.
func ReleaseRegion(r Region) error {
	v, ok := regions.Load(r.Base)
	if !ok {
		return ErrUnknownRegion
	}
	m := v.(*mapping)
	if !m.released.CompareAndSwap(false, true) {
		return ErrRegionReleased
	}
	if trace.Enabled("mem") {
		trace.Printf("mem", "released bookkeeping base=%#x size=%d", r.Base, r.Size)
	}
	return nil
}

// UnmapRemains returns a region's pages to the host and drops the last of
// its bookkeeping. Safe to call only once the owning thread has relocated
// off the region; the caller passes the bounds by value for exactly that
// reason.
func UnmapRemains(r Region) error {
	v, ok := regions.LoadAndDelete(r.Base)
	if !ok {
		return ErrUnknownRegion
	}
	m := v.(*mapping)
	err := unmapStack(m.data)
	mappedBytes.Add(-int64(r.Size))
	if err != nil {
		return fmt.Errorf("guestmem: unmap base=%#x: %w", r.Base, err)
	}
	if trace.Enabled("mem") {
		trace.Printf("mem", "unmapped base=%#x size=%d", r.Base, r.Size)
	}
	return nil
}

// QueryRegionBounds resolves an address inside a live region to the
// region's exact bounds. Used by teardown when a control block tracks only
// its stack top.
func QueryRegionBounds(addr uintptr) (Region, bool) {
	var (
		found Region
		ok    bool
	)
	regions.Range(func(key, value any) bool {
		m := value.(*mapping)
		if m.released.Load() {
			return true
		}
		r := Region{Base: key.(uintptr), Size: len(m.data)}
		if r.Contains(addr) {
			found, ok = r, true
			return false
		}
		return true
	})
	return found, ok
}

// MappedBytes returns the number of bytes currently mapped for guest
// stacks, including regions released but not yet unmapped.
func MappedBytes() int64 {
	return mappedBytes.Load()
}
