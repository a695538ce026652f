package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/kolkov/guestthread/thread"
)

// probeCommand spawns one short-lived guest thread and reports what the
// compiled-in runtime can do on this host.
func probeCommand(args []string) {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "probe takes no arguments\n")
		os.Exit(1)
	}

	info := thread.GetInfo()
	fmt.Printf("runtime version:  %s\n", info.Version)
	fmt.Printf("go toolchain:     %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Printf("thread backend:   %s\n", info.Backend)
	fmt.Printf("managed join:     %v\n", info.ManagedJoin)

	thread.Setup()
	initial := thread.Current()
	fmt.Printf("initial thread:   TID %d\n", initial.TID())

	tid, ok := runProbeThread()
	if !ok {
		fmt.Println("probe thread:     FAILED (spawn or reclamation broke)")
		os.Exit(1)
	}
	fmt.Printf("probe thread:     ok (TID %d)\n", tid)

	thread.InstallErrno()
	*thread.Errno() = 0
	fmt.Println("errno regime:     per-thread cells installed")
	fmt.Printf("live threads:     %d\n", thread.Live())
}

// runProbeThread spawns a thread that reports its kernel TID and exits,
// then drives it through reclamation. Returns the TID and whether the
// full round trip worked.
func runProbeThread() (int, bool) {
	tidc := make(chan int, 1)
	h, err := thread.Spawn(func() {
		tidc <- thread.Current().TID()
		thread.Exit(0)
	}, thread.Options{StackSize: 256 << 10})
	if err != nil {
		return 0, false
	}

	var tid int
	select {
	case tid = <-tidc:
	case <-time.After(5 * time.Second):
		return 0, false
	}

	deadline := time.Now().Add(5 * time.Second)
	for h.State() != thread.StateTerminated {
		if time.Now().After(deadline) {
			return tid, false
		}
		thread.Reclaim()
		runtime.Gosched()
	}
	return tid, h.ExitStatus() == 0
}
