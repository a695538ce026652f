//go:build !guest_green && !unix

package lifecycle

import (
	"github.com/kolkov/guestthread/internal/thread/tcb"
)

// Nothing can spawn here, so no join handles ever exist; an adopted
// unit that exits takes the self-reclamation path.
const backendManagedJoin = false

const backendName = "unsupported"

func backendSpawn(cb *tcb.ControlBlock) error {
	return ErrUnsupportedPlatform
}
