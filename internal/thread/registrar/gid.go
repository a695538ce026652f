// Execution-context identity extraction.
//
// currentGID is the identity read on the registrar's hot path. The
// implementation is build-selected:
//
//   - gid_fast.go: reads the runtime g pointer from the dedicated register
//     or TLS slot and loads the goid field at a verified offset. ~1-2ns.
//     Go 1.23-1.25 on amd64/arm64 only.
//   - gid_fallback.go: parses runtime.Stack output. ~1500ns, universal.
//
// The slow parser lives here because the fast path also falls back to it
// when the g pointer reads as zero.

package registrar

import "runtime"

// currentGID returns the goroutine id of the calling execution context.
func currentGID() int64 {
	return currentGIDFast()
}

// currentGIDSlow extracts the goroutine id by parsing the first line of
// runtime.Stack output, which reads "goroutine 123 [running]:".
func currentGIDSlow() int64 {
	// Only the first line is needed; 64 bytes always covers it.
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID parses the goroutine id out of a "goroutine N [state]:" header.
// Returns 0 if the buffer does not start with one. No allocations beyond
// the prefix check.
func parseGID(buf []byte) int64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}
	var gid int64
	for _, c := range buf[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		gid = gid*10 + int64(c-'0')
	}
	return gid
}
