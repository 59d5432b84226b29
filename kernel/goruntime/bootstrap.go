// Package goruntime contains code for bootstrapping Go runtime features such
// as the memory allocator before the Go scheduler itself is usable.
package goruntime

import (
	"unsafe"

	"github.com/no2ca/nex-os/kernel"
	"github.com/no2ca/nex-os/kernel/mem"
	"github.com/no2ca/nex-os/kernel/mem/pmm"
)

var (
	allocFramesFn = pmm.AllocFrames
	mallocInitFn  = mallocInit
	algInitFn     = algInit
	modulesInitFn = modulesInit
	typeLinksInitFn = typeLinksInit
	itabsInitFn   = itabsInit

	// A seed for the pseudo-random number generator used by getRandomData.
	prngSeed = 0xdeadc0de
)

// framesFor rounds size up to a whole number of pages and returns how many
// are needed.
func framesFor(size uintptr) uint64 {
	regionSize := (mem.Size(size) + mem.PageSize - 1) &^ (mem.PageSize - 1)
	return uint64(regionSize) / uint64(mem.PageSize)
}

// sysReserve reserves address space without allocating any memory or
// establishing any page mappings in a conventional kernel. Because every
// frame this kernel hands out is identity-mapped (vaddr == paddr, see the
// vmm package), "reserving" and "backing" collapse into the same operation:
// there is no virtual address space distinct from the physical frames
// themselves to merely reserve.
//
// This function replaces runtime.sysReserve and is required for initializing
// the Go allocator.
//
//go:nosplit
func sysReserve(_ unsafe.Pointer, size uintptr, reserved *bool) unsafe.Pointer {
	frame, err := allocFramesFn(framesFor(size))
	if err != nil {
		panic(err)
	}

	*reserved = true
	return unsafe.Pointer(frame.Address())
}

// sysMap marks a region previously returned by sysReserve as backed by real
// memory. Since sysReserve already allocated and zeroed physical frames
// identity-mapped at that exact address, there is nothing left to do here;
// unlike an implementation built around demand-paged, copy-on-write
// mappings, this never needs to install one, since copy-on-write is out of
// scope for this kernel's process model.
//
// This function replaces runtime.sysMap and is required for initializing the
// Go allocator.
//
//go:nosplit
func sysMap(virtAddr unsafe.Pointer, size uintptr, reserved bool, sysStat *uint64) unsafe.Pointer {
	if !reserved {
		panic("sysMap should only be called with reserved=true")
	}

	mSysStatInc(sysStat, size)
	return virtAddr
}

// sysAlloc reserves enough physical frames to satisfy the allocation request
// and returns their identity-mapped address directly.
//
// This function replaces runtime.sysAlloc and is required for initializing
// the Go allocator.
//
//go:nosplit
func sysAlloc(size uintptr, sysStat *uint64) unsafe.Pointer {
	frame, err := allocFramesFn(framesFor(size))
	if err != nil {
		return unsafe.Pointer(uintptr(0))
	}

	mSysStatInc(sysStat, size)
	return unsafe.Pointer(frame.Address())
}

// nanotime returns a monotonically increasing clock value. This is a dummy
// implementation and will be replaced when a real timer source is wired in.
//
// This function replaces runtime.nanotime and is invoked by the Go allocator
// when a span allocation is performed.
//
//go:nosplit
func nanotime() uint64 {
	// Use a dummy loop to prevent the compiler from inlining this function.
	for i := 0; i < 100; i++ {
	}
	return 1
}

// getRandomData populates the given slice with random data. The runtime
// normally reads a random stream from the host OS but none is available
// here, so a simple PRNG is used instead.
func getRandomData(r []byte) {
	for i := 0; i < len(r); i++ {
		prngSeed = (prngSeed * 58321) + 11113
		r[i] = byte((prngSeed >> 16) & 255)
	}
}

// Init enables support for various Go runtime features. After a call to init
// the following runtime features become available for use:
//  - heap memory allocation (new, make e.t.c)
//  - map primitives
//  - interfaces
func Init() *kernel.Error {
	mallocInitFn()
	algInitFn()       // setup hash implementation for map keys
	modulesInitFn()   // provides activeModules
	typeLinksInitFn() // uses maps, activeModules
	itabsInitFn()     // uses activeModules

	return nil
}

func init() {
	// Dummy calls so the compiler does not optimize away the functions in
	// this file.
	var (
		reserved bool
		stat     uint64
		zeroPtr  = unsafe.Pointer(uintptr(0))
	)

	sysReserve(zeroPtr, 0, &reserved)
	sysMap(zeroPtr, 0, reserved, &stat)
	sysAlloc(0, &stat)
	getRandomData(nil)
	stat = nanotime()
}
