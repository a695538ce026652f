package tcb

import "unsafe"

// sliceBase returns the address of the first byte of a non-empty slice.
func sliceBase(b []byte) unsafe.Pointer {
	return unsafe.Pointer(&b[0])
}
