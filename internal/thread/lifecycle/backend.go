package lifecycle

// BackendName names the compiled-in backend.
func BackendName() string {
	return backendName
}

// ManagedJoin reports whether the compiled-in backend hands out join
// handles.
func ManagedJoin() bool {
	return backendManagedJoin
}
