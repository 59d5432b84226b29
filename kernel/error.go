package kernel

// Error describes a kernel error. All kernel errors are defined as
// package-level variables that are pointers to this structure. This
// requirement stems from the fact that the Go allocator is not available
// until goruntime.Init has run, so error values cannot be heap-allocated
// with errors.New at arbitrary call sites.
type Error struct {
	// Module names the subsystem where the error originated.
	Module string

	// Message describes what went wrong.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
