// Package stackswitch implements the primitive that abandons a stack:
// transfer execution, invoke a target function, never return.
//
// The only safe way to stop using a memory region is to stop executing
// from it before it is released. On hosts where the stack pointer can be
// repointed directly, the switch captures the target function and argument
// in registers, moves the stack pointer to the destination's top and
// calls. Go does not allow safe code to repoint a goroutine's control
// stack, so this implementation is the documented weaker fallback of that
// design: the guest-visible relocation is real (the caller rebinds the
// control block's stack bounds to the destination slot before calling
// Switch, and everything the target needs crosses by value in its
// argument) but the target runs on the same goroutine control stack, so
// the original guest region cannot be reclaimed by the host until the
// target has begun. Callers sequence the actual unmap inside the target
// for exactly that reason.
//
// Contract, independent of host:
//   - the previous guest stack is never referenced again by this thread
//     after Switch is entered, including by unwinding machinery;
//   - all state the target needs is inside CleanupInfo, by value;
//   - the destination need only fit a non-recursive, allocation-free
//     cleanup routine;
//   - Switch never returns. A target that returns is a sequencer bug and
//     trips the trap below, the software stand-in for the int3 a hardware
//     implementation would plant after the call.
package stackswitch

// CleanupInfo is the by-value payload that survives the switch. It carries
// everything the teardown tail needs about the region being abandoned.
type CleanupInfo struct {
	// StackBase and StackSize bound the guest stack region that the
	// switching thread has stopped using.
	StackBase uintptr
	StackSize int

	// Status is the thread's exit status, propagated to termination.
	Status int
}

// Switch transfers execution to fn on the already-rebound temporary stack
// and never returns.
//
//go:noinline
func Switch(fn func(CleanupInfo), info CleanupInfo) {
	fn(info)
	panic("stackswitch: switch target returned")
}
