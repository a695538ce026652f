//go:build unix

package guestmem

import "golang.org/x/sys/unix"

// mapStack maps an anonymous private read-write region outside the Go
// heap. Guest stacks must not move or be collected while the guest owns
// them, which rules out heap allocation on hosts that support mmap.
func mapStack(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
}

// unmapStack returns the pages to the host.
func unmapStack(data []byte) error {
	return unix.Munmap(data)
}
