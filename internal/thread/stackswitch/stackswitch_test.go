package stackswitch

import (
	"runtime"
	"testing"
)

// TestSwitchPassesInfoByValue verifies the payload crosses the switch by
// value and uncorrupted.
func TestSwitchPassesInfoByValue(t *testing.T) {
	want := CleanupInfo{StackBase: 0xdead0000, StackSize: 1 << 16, Status: 42}

	got := make(chan CleanupInfo, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		Switch(func(info CleanupInfo) {
			got <- info
			runtime.Goexit() // terminate the unit, as a real target does
		}, want)
	}()

	<-finished
	if info := <-got; info != want {
		t.Errorf("target received %+v, want %+v", info, want)
	}
}

// TestSwitchTargetMustNotReturn verifies the trap behind the call site: a
// target that returns is a sequencer bug and must not fall back into the
// switched-from frame silently.
func TestSwitchTargetMustNotReturn(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Switch returned after its target returned")
		}
	}()
	Switch(func(CleanupInfo) {}, CleanupInfo{})
}

// TestSwitchPayloadSurvivesOldStackPoison verifies nothing the target
// uses lives in the abandoned region: the region standing in for the old
// stack is overwritten wholesale right after the transfer, and the
// payload must come through intact.
func TestSwitchPayloadSurvivesOldStackPoison(t *testing.T) {
	oldStack := make([]byte, 4096)
	info := CleanupInfo{
		StackBase: uintptr(0x40000000),
		StackSize: len(oldStack),
		Status:    13,
	}

	got := make(chan CleanupInfo, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		Switch(func(in CleanupInfo) {
			for i := range oldStack {
				oldStack[i] = 0xAA
			}
			got <- in
			runtime.Goexit()
		}, info)
	}()

	<-finished
	if in := <-got; in != info {
		t.Errorf("payload after poisoning = %+v, want %+v", in, info)
	}
}

// TestSwitchTargetIndependentOfOldStack verifies a target can run
// arbitrarily deep logic once the payload has crossed by value: nothing it
// does depends on the frame Switch was entered from.
func TestSwitchTargetIndependentOfOldStack(t *testing.T) {
	var depth func(n int) int
	depth = func(n int) int {
		if n == 0 {
			return 0
		}
		return 1 + depth(n-1)
	}

	result := make(chan int, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		Switch(func(info CleanupInfo) {
			// Deep, allocating work after the switch; the payload value
			// must stay intact throughout.
			_ = depth(512)
			result <- info.Status
			runtime.Goexit()
		}, CleanupInfo{Status: 7})
	}()

	<-finished
	if got := <-result; got != 7 {
		t.Errorf("payload status after deep target work = %d, want 7", got)
	}
}
