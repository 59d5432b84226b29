package pmm

import (
	"github.com/no2ca/nex-os/kernel"
	"github.com/no2ca/nex-os/kernel/mem"
)

// bumpAllocator implements the kernel's only physical frame allocator: a
// strictly monotonic bump allocator over a single fixed region supplied by
// the linker. There is no free-list and allocated frames are never
// reclaimed; once the region is exhausted, further allocations are fatal.
//
// allocCount and next are only ever touched from the single boot hart, and
// scheduling is cooperative, so nothing runs concurrently with an
// allocation and no locking is required.
type bumpAllocator struct {
	start, end uintptr
	next       uintptr
	allocCount uint64
}

var (
	boot bumpAllocator

	errOutOfMemory = &kernel.Error{Module: "pmm", Message: "page area exhausted"}
	errOverflow    = &kernel.Error{Module: "pmm", Message: "allocation size overflows the page area"}
)

// Init configures the bump allocator to serve frames out of [start, end).
// Both bounds are expected to already be page-aligned linker symbols
// (__page_area_start / __page_area_end); Init rounds them defensively.
func Init(start, end uintptr) {
	pageSizeMinus1 := uintptr(mem.PageSize - 1)
	boot.start = (start + pageSizeMinus1) &^ pageSizeMinus1
	boot.end = end &^ pageSizeMinus1
	boot.next = boot.start
	boot.allocCount = 0

	SetFrameAllocator(AllocFrame)
}

// AllocFrame reserves and zeroes the next available physical frame.
func AllocFrame() (Frame, *kernel.Error) {
	region, err := AllocFrames(1)
	if err != nil {
		return InvalidFrame, err
	}
	return region, nil
}

// AllocFrames reserves n contiguous, zero-filled, page-aligned physical
// frames and returns the Frame of the first one. Because the allocator is a
// strict bump allocator the returned frames are always contiguous by
// construction — callers that need contiguous physical memory (e.g. the ELF
// loader materialising a segment) can rely on frame+1, frame+2, ... without
// any extra bookkeeping.
func AllocFrames(n uint64) (Frame, *kernel.Error) {
	size := uintptr(n) * uintptr(mem.PageSize)
	if n != 0 && size/uintptr(n) != uintptr(mem.PageSize) {
		return InvalidFrame, errOverflow
	}

	newNext := boot.next + size
	if newNext < boot.next || newNext > boot.end {
		return InvalidFrame, errOutOfMemory
	}

	start := boot.next
	kernel.Memset(start, 0, size)
	boot.next = newNext
	boot.allocCount++

	return Frame(start >> mem.PageShift), nil
}

// Allocated returns the number of AllocFrame(s) calls served so far. Exposed
// for SYS_LIST_PROCESS-style diagnostics and tests.
func Allocated() uint64 {
	return boot.allocCount
}
