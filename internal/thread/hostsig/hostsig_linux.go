//go:build linux

package hostsig

import "golang.org/x/sys/unix"

// Linux implementation over rt_sigprocmask for the calling thread.
//
// The Go runtime owns the process signal handlers; the guest runtime only
// adjusts the calling thread's mask, which the runtime tolerates for
// threads that are about to exit.

// fullSet returns a mask covering every blockable signal.
func fullSet() *unix.Sigset_t {
	var set unix.Sigset_t
	for i := range set.Val {
		set.Val[i] = ^uint64(0)
	}
	return &set
}

func initState() {
	// Start from an empty mask so the guest entry runs with signals
	// deliverable, whatever the spawning thread had blocked.
	var empty unix.Sigset_t
	_ = unix.PthreadSigmask(unix.SIG_SETMASK, &empty, nil)
}

func block() {
	_ = unix.PthreadSigmask(unix.SIG_BLOCK, fullSet(), nil)
}

func reset() {
	var empty unix.Sigset_t
	_ = unix.PthreadSigmask(unix.SIG_SETMASK, &empty, nil)
}
