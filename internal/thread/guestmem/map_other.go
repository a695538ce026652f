//go:build !unix

package guestmem

// Heap-backed fallback for hosts without mmap. The bookkeeping entry keeps
// the slice reachable until UnmapRemains, at which point dropping the last
// reference hands the memory back to the garbage collector. Weaker than
// the unix path (the release is not immediate), but the two-phase protocol
// is preserved.

func mapStack(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func unmapStack(data []byte) error {
	_ = data
	return nil
}
