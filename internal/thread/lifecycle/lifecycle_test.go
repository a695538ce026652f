//go:build !guest_green && unix

package lifecycle

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/kolkov/guestthread/internal/thread/guestmem"
	"github.com/kolkov/guestthread/internal/thread/registrar"
	"github.com/kolkov/guestthread/internal/thread/tcb"
)

const testStackSize = 64 << 10

// waitForState polls until the block reaches want or the deadline hits.
func waitForState(t *testing.T, cb *tcb.ControlBlock, want tcb.State) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for cb.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("block stuck in %v, want %v", cb.State(), want)
		}
		runtime.Gosched()
	}
}

// drainParked loops ReclaimPending until a parked unit is reclaimed; an
// exiting unit advances to Detaching slightly before it parks, so a
// single call can race the park.
func drainParked(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !ReclaimPending() {
		if time.Now().After(deadline) {
			t.Fatal("no unit ever parked for reclamation")
		}
		runtime.Gosched()
	}
}

// spawnUnit allocates a stack and launches a unit running entry.
func spawnUnit(t *testing.T, entry func()) *tcb.ControlBlock {
	t.Helper()
	stack, err := guestmem.AllocateStack(testStackSize)
	if err != nil {
		t.Fatalf("AllocateStack: %v", err)
	}
	cb := tcb.New(entry, stack, [2]int{-1, -1}, -1, -1)
	if err := Spawn(cb); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	return cb
}

func TestSpawnRejectsNonPrepared(t *testing.T) {
	stack, err := guestmem.AllocateStack(testStackSize)
	if err != nil {
		t.Fatalf("AllocateStack: %v", err)
	}
	defer func() {
		guestmem.ReleaseRegion(stack)
		guestmem.UnmapRemains(stack)
	}()

	cb := tcb.New(func() {}, stack, [2]int{-1, -1}, -1, -1)
	cb.Advance(tcb.StatePrepared, tcb.StateRunning)
	if err := Spawn(cb); !errors.Is(err, ErrNotPrepared) {
		t.Fatalf("Spawn on running block: err = %v, want ErrNotPrepared", err)
	}
	cb.ForceTerminated()
}

func TestGracefulExitReclaimsEverything(t *testing.T) {
	mappedBefore := guestmem.MappedBytes()

	cb := spawnUnit(t, func() { Exit(7) })

	// The exiting unit parks itself; drain it from here.
	waitForState(t, cb, tcb.StateDetaching)
	drainParked(t)
	waitForState(t, cb, tcb.StateTerminated)

	if got := cb.ExitStatus(); got != 7 {
		t.Errorf("exit status = %d, want 7", got)
	}
	if got := guestmem.MappedBytes(); got != mappedBefore {
		t.Errorf("mapped bytes = %d after reclaim, want %d", got, mappedBefore)
	}
	if _, ok := guestmem.QueryRegionBounds(cb.Stack.Base); ok {
		t.Error("stack region still tracked after reclaim")
	}
	if _, ok := registrar.Lookup(cb.GID); ok {
		t.Error("unit still registered after reclaim")
	}
}

func TestExitDefersReclamationOneGeneration(t *testing.T) {
	joinsBefore := DeferredJoins()
	mappedBefore := guestmem.MappedBytes()

	releaseA := make(chan struct{})
	a := spawnUnit(t, func() { <-releaseA; Exit(1) })
	releaseB := make(chan struct{})
	b := spawnUnit(t, func() { <-releaseB; Exit(2) })

	// A exits first and parks; its stack survives A's own exit.
	close(releaseA)
	waitForState(t, a, tcb.StateDetaching)
	if _, ok := guestmem.QueryRegionBounds(a.Stack.Base); !ok {
		t.Fatal("parked unit's stack already gone")
	}

	// B's exit displaces A from the slot and reclaims it.
	close(releaseB)
	waitForState(t, a, tcb.StateTerminated)
	if got := a.ExitStatus(); got != 1 {
		t.Errorf("first unit status = %d, want 1", got)
	}
	if got, want := DeferredJoins(), joinsBefore+1; got != want {
		t.Errorf("DeferredJoins = %d, want %d", got, want)
	}

	// B is now the parked one.
	drainParked(t)
	waitForState(t, b, tcb.StateTerminated)
	if got := b.ExitStatus(); got != 2 {
		t.Errorf("second unit status = %d, want 2", got)
	}
	if got := guestmem.MappedBytes(); got != mappedBefore {
		t.Errorf("mapped bytes = %d after both reclaims, want %d", got, mappedBefore)
	}
}

func TestTrampolineAbsorbsReturningEntry(t *testing.T) {
	cb := spawnUnit(t, func() {})

	waitForState(t, cb, tcb.StateDetaching)
	drainParked(t)
	waitForState(t, cb, tcb.StateTerminated)
	if got := cb.ExitStatus(); got != 0 {
		t.Errorf("returning entry exit status = %d, want 0", got)
	}
}

func TestAbortKillsOnlyCallingUnit(t *testing.T) {
	// A second live unit keeps the abort from taking the process down. It
	// must be registered before the aborter runs, or the aborter could
	// find itself last and kill the process.
	liveBefore := LiveUnits()
	keepAlive := make(chan struct{})
	survivor := spawnUnit(t, func() { <-keepAlive; Exit(0) })
	deadline := time.Now().Add(5 * time.Second)
	for LiveUnits() != liveBefore+1 {
		if time.Now().After(deadline) {
			t.Fatal("survivor never registered")
		}
		runtime.Gosched()
	}

	aborter := spawnUnit(t, func() { Abort(9) })
	if got := <-aborter.JoinHandle(); got != 9 {
		t.Errorf("abort status = %d, want 9", got)
	}
	if got := aborter.State(); got != tcb.StateTerminated {
		t.Errorf("aborted unit state = %v, want Terminated", got)
	}
	if _, ok := registrar.Lookup(aborter.GID); ok {
		t.Error("aborted unit still registered")
	}
	// An aborted unit's stack is deliberately not reclaimed.
	if _, ok := guestmem.QueryRegionBounds(aborter.Stack.Base); !ok {
		t.Error("aborted unit's stack was reclaimed")
	}
	guestmem.ReleaseRegion(aborter.Stack)
	guestmem.UnmapRemains(aborter.Stack)

	close(keepAlive)
	waitForState(t, survivor, tcb.StateDetaching)
	drainParked(t)
	waitForState(t, survivor, tcb.StateTerminated)
}

func TestAdoptCurrent(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		before := LiveUnits()
		cb := AdoptCurrent()
		if got := LiveUnits(); got != before+1 {
			t.Errorf("LiveUnits = %d after adopt, want %d", got, before+1)
		}
		if registrar.Current() != cb {
			t.Error("Current does not resolve to the adopted block")
		}
		if cb.State() != tcb.StateRunning {
			t.Errorf("adopted block state = %v, want Running", cb.State())
		}
		registrar.FreeToken(cb.Token)
		registrar.Unregister(cb.GID)
		liveUnits.Add(-1)
	}()
	<-done
}

// TestAdoptedExitReclaimedBySuccessor exercises the handoff path with an
// adopted unit parked in the slot: it has no join handle and no managed
// stack, and the next exiting unit must reclaim it without blocking.
func TestAdoptedExitReclaimedBySuccessor(t *testing.T) {
	var adopted *tcb.ControlBlock
	adoptedUp := make(chan struct{})
	go func() {
		adopted = AdoptCurrent()
		close(adoptedUp)
		Exit(3)
	}()
	<-adoptedUp

	// Wait until the adopted unit actually occupies the handoff slot;
	// Detaching alone races the park.
	deadline := time.Now().Add(5 * time.Second)
	for pending.Load() != adopted {
		if time.Now().After(deadline) {
			t.Fatal("adopted unit never parked")
		}
		runtime.Gosched()
	}

	// A spawned unit exiting afterwards displaces and reclaims it; with
	// a handle-less block in the slot this must complete, not hang.
	cb := spawnUnit(t, func() { Exit(0) })
	waitForState(t, adopted, tcb.StateTerminated)
	if got := adopted.ExitStatus(); got != 3 {
		t.Errorf("adopted unit exit status = %d, want 3", got)
	}
	if _, ok := registrar.Lookup(adopted.GID); ok {
		t.Error("adopted unit still registered after reclaim")
	}

	drainParked(t)
	waitForState(t, cb, tcb.StateTerminated)
}

// TestAbortLastUnitExitsProcess re-executes the test binary: the helper
// process spawns units that all abort with the same status, and the last
// one standing must take the process down with it.
func TestAbortLastUnitExitsProcess(t *testing.T) {
	if os.Getenv("GUESTTHREAD_ABORT_HELPER") == "1" {
		abortHelper()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestAbortLastUnitExitsProcess")
	cmd.Env = append(os.Environ(), "GUESTTHREAD_ABORT_HELPER=1")
	err := cmd.Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("helper did not exit with an error: %v", err)
	}
	if got := exitErr.ExitCode(); got != 42 {
		t.Fatalf("helper exit code = %d, want 42", got)
	}
}

func abortHelper() {
	for i := 0; i < 4; i++ {
		stack, err := guestmem.AllocateStack(testStackSize)
		if err != nil {
			os.Exit(3)
		}
		cb := tcb.New(func() { Abort(42) }, stack, [2]int{-1, -1}, -1, -1)
		if err := Spawn(cb); err != nil {
			os.Exit(3)
		}
	}
	// Aborting units take the process down before this fires.
	time.Sleep(10 * time.Second)
	os.Exit(3)
}
