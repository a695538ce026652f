//go:build !unix

package lifecycle

import (
	"errors"
	"os"
)

// Hosts without descriptor channels: handles cannot exist, so closing is
// trivial and channel IO reports the gap.

func fdClose(int) error {
	return nil
}

func fdWriteFull(int, []byte) error {
	return errors.New("no descriptor channels on this host")
}

func fdReadFull(int, []byte) error {
	return errors.New("no descriptor channels on this host")
}

func hostExit(status int) {
	for {
		os.Exit(status)
	}
}
