//go:build !(linux && amd64)

package errnov

import "errors"

// Hosts without a verified patch sequence report the capability gap
// instead of guessing at an instruction encoding.

func patchEntry(addr, dest uintptr) error {
	_, _ = addr, dest
	return errors.New("errnov: entry patching not supported on this host")
}
