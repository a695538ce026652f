// Copyright 2025 The guestthread Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build go1.23 && !go1.26 && (amd64 || arm64)

// Fast execution-context identity for amd64/arm64 on Go 1.23-1.25.
//
// The assembly stubs in gid_amd64.s / gid_arm64.s return the runtime g
// pointer (from the TLS slot on amd64, from the dedicated g register on
// arm64). The goid field sits at a fixed offset inside runtime.g, but
// the offset is NOT the same across toolchains: the sched (gobuf) field
// that precedes it lost its ret slot in Go 1.25, moving goid down by 8
// bytes. The per-version gidOffset constant lives in gid_go123.go and
// gid_go125.go; the !go1.26 constraint keeps an unverified offset from
// ever being used.
//
// tools/calcgidoffset recomputes the offset against the running
// toolchain by scanning the live g struct, and the package tests
// cross-check the compiled-in constant against the same scan.

package registrar

import "unsafe"

// getg returns the current goroutine's g struct pointer. Implemented in
// assembly (gid_amd64.s, gid_arm64.s).
//
//go:noescape
func getg() uintptr

// currentGIDFast reads goid straight out of the g struct.
//
// The g struct never moves (goroutine stacks move, the g itself is
// heap-pinned), so the uintptr arithmetic below does not race the garbage
// collector. A zero g pointer should not occur on a live goroutine; it
// falls back to stack parsing rather than faulting.
//
//go:nosplit
//go:nocheckptr
func currentGIDFast() int64 {
	gptr := getg()
	if gptr == 0 {
		return currentGIDSlow()
	}
	return int64(*(*uint64)(unsafe.Pointer(gptr + gidOffset)))
}
