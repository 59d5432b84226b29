// Package kmain wires together the boot sequence: the physical allocator,
// goruntime bootstrap, trap vector, idle process and the first user
// process, in that order.
package kmain

import (
	"github.com/no2ca/nex-os/kernel"
	"github.com/no2ca/nex-os/kernel/goruntime"
	"github.com/no2ca/nex-os/kernel/kfmt"
	"github.com/no2ca/nex-os/kernel/mem/pmm"
	"github.com/no2ca/nex-os/kernel/proc"
	"github.com/no2ca/nex-os/kernel/syscall"
	"github.com/no2ca/nex-os/kernel/trap"
	"github.com/no2ca/nex-os/kernel/vfs"
)

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

// Kmain is called once, from main (main.go), on the boot hart, after SBI
// firmware has dropped into S-mode and handed control to the kernel image
// with a trivial assembler stack already in place.
//
// kernelStart and kernelEnd bound the kernel's own image in physical
// memory; pageAreaStart and pageAreaEnd bound the region the physical
// frame allocator is free to hand out. Every process's page table identity-
// maps [kernelStart, pageAreaEnd) so kernel code and allocator-owned memory
// stay at the same virtual and physical address everywhere.
//
// Kmain is not expected to return. If it does, the rt0 trampoline halts the
// hart; Kmain itself additionally calls kfmt.Panic so dead-code elimination
// can never drop the call to it.
//
//go:noinline
func Kmain(kernelStart, kernelEnd, pageAreaStart, pageAreaEnd uintptr) {
	pmm.Init(pageAreaStart, pageAreaEnd)

	if err := goruntime.Init(); err != nil {
		kfmt.Panic(err)
	}

	trap.Init()
	syscall.Init(kernelStart, pageAreaEnd)

	if err := proc.CreateIdleProcess(kernelStart, pageAreaEnd); err != nil {
		kfmt.Panic(err)
	}

	shellELF, _ := vfs.Lookup("sh")
	if _, err := proc.CreateProcess(shellELF, kernelStart, pageAreaEnd); err != nil {
		kfmt.Panic(err)
	}

	proc.Start()

	kfmt.Panic(errKmainReturned)
}
