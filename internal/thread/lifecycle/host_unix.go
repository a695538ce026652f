//go:build unix

package lifecycle

import (
	"io"

	"golang.org/x/sys/unix"
)

// fdClose closes a channel handle. Negative handles are absent by
// convention and skipped.
func fdClose(fd int) error {
	if fd < 0 {
		return nil
	}
	return unix.Close(fd)
}

// fdWriteFull writes the whole buffer to fd.
func fdWriteFull(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := unix.Write(fd, buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// fdReadFull reads until the buffer is full.
func fdReadFull(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := unix.Read(fd, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.EOF
		}
		buf = buf[n:]
	}
	return nil
}

// hostExit terminates the whole process through the most abrupt primitive
// the host offers, bypassing Go's ordered shutdown.
func hostExit(status int) {
	for {
		unix.Exit(status)
	}
}
