// calcgidoffset locates the goid field inside the running toolchain's
// runtime.g struct by scanning the live g of several goroutines for the
// id that runtime.Stack reports. The registrar's fast identity path
// reads goid at a compiled-in offset; run this against a new Go release
// before raising the build-tag ceiling in
// internal/thread/registrar/gid_fast.go:
//
//	go run ./tools/calcgidoffset
//
// Exits non-zero when no offset tracks goid on this toolchain, or when
// more than one candidate survives and the result is ambiguous.
package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
)

func main() {
	fmt.Printf("Go version:   %s\n", runtime.Version())
	fmt.Printf("Architecture: %s\n", runtime.GOARCH)

	offsets, err := probeOffsets()
	if err != nil {
		fmt.Fprintf(os.Stderr, "calcgidoffset: %v\n", err)
		os.Exit(1)
	}

	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	for _, off := range offsets {
		fmt.Printf("goid offset:  %d\n", off)
	}
	if len(offsets) > 1 {
		fmt.Fprintln(os.Stderr, "calcgidoffset: multiple offsets track goid; rerun or widen the goroutine sample")
		os.Exit(1)
	}
	fmt.Printf("\nUse in internal/thread/registrar: const gidOffset = %d\n", offsets[0])
}
