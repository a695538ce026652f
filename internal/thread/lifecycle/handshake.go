package lifecycle

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/kolkov/guestthread/internal/thread/tcb"
)

// Handshake is the runtime/client handshake collaborator: it makes a new
// thread known to whatever external subsystems track threads. Called
// exactly once per thread, from the startup trampoline, after the thread
// is registered and before its entry function runs.
type Handshake interface {
	RegisterNewThread(cb *tcb.ControlBlock) error
}

// handshakeFor holds the installed handshake. Defaults to the pipe
// handshake below; embedders replace it before spawning.
var handshakeFor atomic.Pointer[Handshake]

func init() {
	var h Handshake = pipeHandshake{}
	handshakeFor.Store(&h)
}

// SetHandshake installs the handshake used for subsequently spawned
// threads.
func SetHandshake(h Handshake) {
	handshakeFor.Store(&h)
}

// currentHandshake returns the installed handshake.
func currentHandshake() Handshake {
	return *handshakeFor.Load()
}

// handshakeMagic tags registration records on the request channel.
var handshakeMagic = [4]byte{'G', 'T', 'H', 'R'}

// pipeHandshake is the default handshake: a fixed-size registration
// record on the control block's request channel, acknowledged with one
// byte on the reply channel. Blocks without channels (no server side)
// register trivially.
type pipeHandshake struct{}

func (pipeHandshake) RegisterNewThread(cb *tcb.ControlBlock) error {
	if cb.RequestFD < 0 {
		return nil
	}

	// magic(4) pad(4) gid(8) tid(8): 24 bytes, fixed layout.
	var rec [24]byte
	copy(rec[0:4], handshakeMagic[:])
	binary.LittleEndian.PutUint64(rec[8:16], uint64(cb.GID))
	binary.LittleEndian.PutUint64(rec[16:24], uint64(int64(cb.UnixTID)))

	if err := fdWriteFull(cb.RequestFD, rec[:]); err != nil {
		return fmt.Errorf("handshake: send registration: %w", err)
	}

	if cb.ReplyFD < 0 {
		return nil
	}
	var ack [1]byte
	if err := fdReadFull(cb.ReplyFD, ack[:]); err != nil {
		return fmt.Errorf("handshake: read ack: %w", err)
	}
	return nil
}
