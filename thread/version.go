package thread

import "github.com/kolkov/guestthread/internal/thread/lifecycle"

// Version information for the guest thread runtime.
const (
	// Version is the current version of the thread runtime.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides runtime information about the thread backend.
type Info struct {
	// Version is the runtime version string.
	Version string

	// Backend names the compiled-in thread backend.
	Backend string

	// ManagedJoin reports whether the backend hands out join handles,
	// which selects the deferred-reclamation exit path.
	ManagedJoin bool
}

// GetInfo returns information about the thread runtime.
//
// Example:
//
//	info := thread.GetInfo()
//	fmt.Printf("guestthread %s (%s backend)\n", info.Version, info.Backend)
func GetInfo() Info {
	return Info{
		Version:     Version,
		Backend:     lifecycle.BackendName(),
		ManagedJoin: lifecycle.ManagedJoin(),
	}
}
