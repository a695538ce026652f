//go:build linux

package lifecycle

import "golang.org/x/sys/unix"

// hostTID returns the kernel id of the calling thread.
func hostTID() int {
	return unix.Gettid()
}
