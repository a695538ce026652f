//go:build guest_green

package lifecycle

import (
	"runtime"
	"testing"
	"time"

	"github.com/kolkov/guestthread/internal/thread/guestmem"
	"github.com/kolkov/guestthread/internal/thread/tcb"
	"github.com/kolkov/guestthread/internal/thread/tempstack"
)

// The green backend has no join handles: an exiting unit relocates onto
// a borrowed temporary slot and frees its own stack. These tests verify
// the self-reclamation path end to end.

func TestGreenExitSelfReclaims(t *testing.T) {
	mappedBefore := guestmem.MappedBytes()
	borrowsBefore := tempstack.BorrowCount()

	stack, err := guestmem.AllocateStack(64 << 10)
	if err != nil {
		t.Fatalf("AllocateStack: %v", err)
	}
	cb := tcb.New(func() { Exit(5) }, stack, [2]int{-1, -1}, -1, -1)
	if err := Spawn(cb); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for cb.State() != tcb.StateTerminated {
		if time.Now().After(deadline) {
			t.Fatalf("unit stuck in %v", cb.State())
		}
		runtime.Gosched()
	}

	if got := cb.ExitStatus(); got != 5 {
		t.Errorf("exit status = %d, want 5", got)
	}
	if got := guestmem.MappedBytes(); got != mappedBefore {
		t.Errorf("mapped bytes = %d after self-reclaim, want %d", got, mappedBefore)
	}
	if got := tempstack.BorrowCount(); got != borrowsBefore+1 {
		t.Errorf("temporary slot borrows = %d, want %d", got, borrowsBefore+1)
	}
	if _, ok := guestmem.QueryRegionBounds(stack.Base); ok {
		t.Error("stack region still tracked after self-reclaim")
	}
}

func TestGreenSpawnHasNoJoinHandle(t *testing.T) {
	stack, err := guestmem.AllocateStack(64 << 10)
	if err != nil {
		t.Fatalf("AllocateStack: %v", err)
	}
	done := make(chan struct{})
	cb := tcb.New(func() { close(done); Exit(0) }, stack, [2]int{-1, -1}, -1, -1)
	if err := Spawn(cb); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	<-done
	if cb.JoinHandle() != nil {
		t.Error("green unit carries a join handle")
	}
}
