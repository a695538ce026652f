//go:build !amd64 && !arm64

package main

import "errors"

func probeOffsets() ([]uintptr, error) {
	return nil, errors.New("no fast identity path on this architecture; nothing to probe")
}
