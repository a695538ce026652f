//go:build linux && amd64

package errnov

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// jumpLen is the length of a rel32 jump: one opcode byte plus a 32-bit
// displacement.
const jumpLen = 5

// patchEntry overwrites the first bytes of the routine at addr with a
// relative jump to dest: page made writable, E9 rel32 written, page
// restored to read-execute. amd64 keeps instruction fetch coherent with
// stores on the same core, so no explicit cache invalidation is needed
// beyond the protection round-trip.
func patchEntry(addr, dest uintptr) error {
	rel := int64(dest) - int64(addr) - jumpLen
	if rel > math.MaxInt32 || rel < math.MinInt32 {
		return fmt.Errorf("errnov: jump from %#x to %#x exceeds rel32 range", addr, dest)
	}

	pageSize := uintptr(os.Getpagesize())
	page := addr &^ (pageSize - 1)
	span := unsafe.Slice((*byte)(unsafe.Pointer(page)), int(addr-page)+jumpLen)

	if err := unix.Mprotect(span, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("errnov: unprotect %#x: %w", page, err)
	}

	code := unsafe.Slice((*byte)(unsafe.Pointer(addr)), jumpLen)
	code[0] = 0xE9
	binary.LittleEndian.PutUint32(code[1:], uint32(int32(rel)))

	if err := unix.Mprotect(span, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("errnov: reprotect %#x: %w", page, err)
	}
	return nil
}
