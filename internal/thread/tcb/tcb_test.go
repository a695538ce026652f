package tcb

import (
	"testing"

	"github.com/kolkov/guestthread/internal/thread/guestmem"
)

func newTestBlock() *ControlBlock {
	stack := guestmem.Region{Base: 0x10000, Size: 0x4000}
	return New(func() {}, stack, [2]int{-1, -1}, -1, -1)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StatePrepared, "Prepared"},
		{StateRunning, "Running"},
		{StateDetaching, "Detaching"},
		{StateStackFreed, "StackFreed"},
		{StateTerminated, "Terminated"},
		{State(99), "State(99)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", uint32(tt.state), got, tt.want)
		}
	}
}

func TestGracefulTransitions(t *testing.T) {
	cb := newTestBlock()
	if got := cb.State(); got != StatePrepared {
		t.Fatalf("new block state = %v, want Prepared", got)
	}

	steps := []struct{ from, to State }{
		{StatePrepared, StateRunning},
		{StateRunning, StateDetaching},
		{StateDetaching, StateStackFreed},
		{StateStackFreed, StateTerminated},
	}
	for _, s := range steps {
		cb.Advance(s.from, s.to)
		if got := cb.State(); got != s.to {
			t.Fatalf("after Advance(%v, %v) state = %v", s.from, s.to, got)
		}
	}
}

func TestInvalidTransitionPanics(t *testing.T) {
	cb := newTestBlock()

	defer func() {
		if recover() == nil {
			t.Errorf("Advance with wrong source state did not panic")
		}
	}()
	// Block is Prepared; claiming it Running is a sequencer bug.
	cb.Advance(StateRunning, StateDetaching)
}

func TestAbortPath(t *testing.T) {
	cb := newTestBlock()
	cb.Advance(StatePrepared, StateRunning)

	// Abort jumps straight to Terminated, no Detaching/StackFreed.
	cb.ForceTerminated()
	if got := cb.State(); got != StateTerminated {
		t.Errorf("state after ForceTerminated = %v, want Terminated", got)
	}
}

func TestRebindStack(t *testing.T) {
	cb := newTestBlock()
	orig := cb.Stack

	slot := make([]byte, 1024)
	cb.RebindStack(slot)

	if cb.Stack.Size != len(slot) {
		t.Errorf("rebound stack size = %d, want %d", cb.Stack.Size, len(slot))
	}
	if cb.Stack.Base == orig.Base {
		t.Errorf("rebound stack still points at original region")
	}
	if cb.StackLow != cb.Stack.Base {
		t.Errorf("StackLow = %#x, want rebound base %#x", cb.StackLow, cb.Stack.Base)
	}
	if cb.Stack.Top() != cb.Stack.Base+uintptr(len(slot)) {
		t.Errorf("rebound Top() = %#x, want %#x", cb.Stack.Top(), cb.Stack.Base+uintptr(len(slot)))
	}
}

func TestJoinHandle(t *testing.T) {
	cb := newTestBlock()
	if cb.JoinHandle() != nil {
		t.Fatalf("fresh block has a join handle")
	}
	done := make(chan int, 1)
	cb.BindJoinHandle(done)
	if cb.JoinHandle() != done {
		t.Errorf("JoinHandle() did not return the bound handle")
	}
}
