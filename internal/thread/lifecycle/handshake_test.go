//go:build unix

package lifecycle

import (
	"encoding/binary"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/kolkov/guestthread/internal/thread/guestmem"
	"github.com/kolkov/guestthread/internal/thread/tcb"
)

func TestPipeHandshakeRecord(t *testing.T) {
	var request, reply [2]int
	if err := unix.Pipe(request[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	if err := unix.Pipe(reply[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer func() {
		for _, fd := range []int{request[0], request[1], reply[0], reply[1]} {
			unix.Close(fd)
		}
	}()

	cb := tcb.New(nil, guestmem.Region{}, [2]int{-1, -1}, request[1], reply[0])
	cb.GID = 777
	cb.UnixTID = 4242

	// Host side: read one registration record, ack it.
	hostErr := make(chan error, 1)
	go func() {
		var rec [24]byte
		if err := fdReadFull(request[0], rec[:]); err != nil {
			hostErr <- err
			return
		}
		if string(rec[0:4]) != "GTHR" {
			t.Errorf("record magic = %q, want GTHR", rec[0:4])
		}
		if gid := int64(binary.LittleEndian.Uint64(rec[8:16])); gid != 777 {
			t.Errorf("record gid = %d, want 777", gid)
		}
		if tid := int64(binary.LittleEndian.Uint64(rec[16:24])); tid != 4242 {
			t.Errorf("record tid = %d, want 4242", tid)
		}
		hostErr <- fdWriteFull(reply[1], []byte{1})
	}()

	if err := (pipeHandshake{}).RegisterNewThread(cb); err != nil {
		t.Fatalf("RegisterNewThread: %v", err)
	}
	if err := <-hostErr; err != nil {
		t.Fatalf("host side: %v", err)
	}
}

func TestPipeHandshakeSkipsChannelless(t *testing.T) {
	cb := tcb.New(nil, guestmem.Region{}, [2]int{-1, -1}, -1, -1)
	if err := (pipeHandshake{}).RegisterNewThread(cb); err != nil {
		t.Fatalf("channel-less block should register trivially, got %v", err)
	}
}

func TestSetHandshakeReplacesDefault(t *testing.T) {
	prev := currentHandshake()
	defer SetHandshake(prev)

	called := false
	SetHandshake(handshakeFunc(func(cb *tcb.ControlBlock) error {
		called = true
		return nil
	}))

	cb := tcb.New(nil, guestmem.Region{}, [2]int{-1, -1}, -1, -1)
	if err := currentHandshake().RegisterNewThread(cb); err != nil {
		t.Fatalf("RegisterNewThread: %v", err)
	}
	if !called {
		t.Error("installed handshake was not invoked")
	}
}

// handshakeFunc adapts a function to the Handshake interface.
type handshakeFunc func(*tcb.ControlBlock) error

func (f handshakeFunc) RegisterNewThread(cb *tcb.ControlBlock) error { return f(cb) }
