//go:build !linux

package hostsig

// Hosts without per-thread mask control: the Go runtime's dispositions
// stand. Teardown still sequences the calls; they just have no effect.

func initState() {}

func block() {}

func reset() {}
