// Package pmm contains code that manages physical memory frame allocations.
package pmm

import (
	"github.com/no2ca/nex-os/kernel"
	"github.com/no2ca/nex-os/kernel/mem"
	"math"
)

// Frame describes a physical memory page index.
type Frame uintptr

const (
	// InvalidFrame is returned by page allocators when
	// they fail to reserve the requested frame.
	InvalidFrame = Frame(math.MaxUint64)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns a pointer to the physical memory address pointed to by this Frame.
func (f Frame) Address() uintptr {
	return uintptr(f << mem.PageShift)
}

// FrameAllocatorFn is a function that can allocate a single physical frame.
type FrameAllocatorFn func() (Frame, *kernel.Error)

// frameAllocator points to the allocator function registered via
// SetFrameAllocator. The vmm package depends on this indirection (rather
// than calling AllocFrame directly) so that tests can substitute a fake
// allocator without touching real physical memory.
var frameAllocator FrameAllocatorFn

// SetFrameAllocator registers the function used to satisfy future calls to
// Alloc.
func SetFrameAllocator(fn FrameAllocatorFn) {
	frameAllocator = fn
}

// Alloc allocates a new physical frame using the currently registered
// frame allocator.
func Alloc() (Frame, *kernel.Error) {
	return frameAllocator()
}
