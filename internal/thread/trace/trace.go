// Package trace implements the debug channels used by the guest thread runtime.
//
// Tracing is off by default and enabled per channel through the
// GUESTTHREAD_DEBUG environment variable, a comma-separated channel list:
//
//	GUESTTHREAD_DEBUG=thread,errno ./myprogram
//	GUESTTHREAD_DEBUG=all ./myprogram
//
// Output goes to stderr. The teardown paths of the runtime trace through
// this package and swallow the underlying errors; tracing must therefore
// never allocate channel state lazily or take locks once the process is
// multithreaded. All channel state is resolved once, at package init.
package trace

import (
	"fmt"
	"os"
	"strings"
)

// enabledChannels holds the channels named in GUESTTHREAD_DEBUG.
// Populated once at init and read-only afterwards, so lookups are safe
// from any execution unit without synchronization.
var enabledChannels map[string]bool

// allEnabled is true when GUESTTHREAD_DEBUG contains "all".
var allEnabled bool

func init() {
	raw := os.Getenv("GUESTTHREAD_DEBUG")
	if raw == "" {
		return
	}
	enabledChannels = make(map[string]bool)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name == "all" {
			allEnabled = true
			continue
		}
		enabledChannels[name] = true
	}
}

// Enabled reports whether the named channel is active.
//
// This is the guard callers use to skip argument evaluation on hot paths:
//
//	if trace.Enabled("thread") {
//	    trace.Printf("thread", "spawn tid=%d", tid)
//	}
func Enabled(channel string) bool {
	return allEnabled || enabledChannels[channel]
}

// Printf writes a trace line on the named channel if it is enabled.
//
// The line is prefixed with the channel name. Write errors are ignored:
// tracing is diagnostic output and must never disturb the lifecycle paths
// that call it.
func Printf(channel, format string, args ...any) {
	if !Enabled(channel) {
		return
	}
	fmt.Fprintf(os.Stderr, "trace:%s: %s\n", channel, fmt.Sprintf(format, args...))
}
