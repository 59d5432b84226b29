package pmm

import (
	"testing"
	"unsafe"

	"github.com/no2ca/nex-os/kernel/mem"
)

// resetAllocator backs the page area with a real Go-allocated byte slice so
// that AllocFrame's zero-fill actually touches addressable memory when these
// tests run hosted (as opposed to on bare metal, where the region would come
// from linker symbols describing genuine physical memory). The slice is kept
// alive for the duration of the test via a package-level var since the
// allocator only ever holds a bare uintptr, which is invisible to the GC.
var backingRegion []byte

func resetAllocator(pages uint64) {
	size := uintptr(pages)*uintptr(mem.PageSize) + uintptr(mem.PageSize)
	backingRegion = make([]byte, size)

	start := (uintptr(unsafe.Pointer(&backingRegion[0])) + uintptr(mem.PageSize-1)) &^ uintptr(mem.PageSize-1)
	end := start + uintptr(pages)*uintptr(mem.PageSize)
	Init(start, end)
}

func TestAllocFrameIsPageAlignedAndZeroed(t *testing.T) {
	resetAllocator(4)
	for i := range backingRegion {
		backingRegion[i] = 0xff
	}

	f, err := AllocFrame()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	addr := f.Address()
	if addr%uintptr(mem.PageSize) != 0 {
		t.Fatalf("expected page-aligned address, got 0x%x", addr)
	}

	page := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(mem.PageSize))
	for i, b := range page {
		if b != 0 {
			t.Fatalf("expected zeroed frame, byte %d is 0x%x", i, b)
		}
	}
}

func TestAllocFramesAreContiguous(t *testing.T) {
	resetAllocator(4)

	first, err := AllocFrames(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := Frame(0); i < 3; i++ {
		want := first.Address() + uintptr(i)*uintptr(mem.PageSize)
		got := (first + i).Address()
		if got != want {
			t.Fatalf("frame %d: expected contiguous address 0x%x, got 0x%x", i, want, got)
		}
	}
}

func TestAllocFrameMonotonic(t *testing.T) {
	resetAllocator(4)

	a, err := AllocFrame()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := AllocFrame()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b <= a {
		t.Fatalf("expected monotonically increasing frames, got a=%d b=%d", a, b)
	}
}

func TestAllocFrameExhaustion(t *testing.T) {
	resetAllocator(1)

	if _, err := AllocFrame(); err != nil {
		t.Fatalf("unexpected error on first allocation: %v", err)
	}

	if _, err := AllocFrame(); err == nil {
		t.Fatal("expected an error once the page area is exhausted")
	}
}

func TestAllocFramesOverflow(t *testing.T) {
	resetAllocator(4)

	if _, err := AllocFrames(1 << 60); err == nil {
		t.Fatal("expected an overflow error for an absurd page count")
	}
}
