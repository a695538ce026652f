//go:build !linux

package lifecycle

// Hosts that do not expose a kernel thread id.
func hostTID() int {
	return -1
}
