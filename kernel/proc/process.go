package proc

import (
	"reflect"
	"unsafe"

	"github.com/no2ca/nex-os/kernel"
	"github.com/no2ca/nex-os/kernel/cpu"
	"github.com/no2ca/nex-os/kernel/elf"
	"github.com/no2ca/nex-os/kernel/mem"
	"github.com/no2ca/nex-os/kernel/mem/pmm"
	"github.com/no2ca/nex-os/kernel/mem/vmm"
)

// NPROC bounds the number of process table slots, including the reserved
// idle slot at index 0.
const NPROC = 8

// State describes where a process sits in its lifecycle.
type State uint8

const (
	// Unused marks a free slot.
	Unused State = iota
	// Runnable marks a slot eligible for scheduling.
	Runnable
	// Exited marks a slot that has run to completion. Exited slots stay
	// allocated and are never scheduled or reused by this implementation.
	Exited
)

// Process is one process table entry. pid always equals the slot's index in
// the table; pid 0 is reserved for the idle process and is never returned
// by the scheduler.
type Process struct {
	Pid            uint32
	State          State
	KernelStack    pmm.Frame
	Context        Context
	SatpValue      uintptr
	EntryPoint     uintptr
	kernelStackTop uintptr
}

var (
	procs   [NPROC]Process
	current int

	errTableFull      = &kernel.Error{Module: "proc", Message: "process table has no unused slots"}
	errTooManySegments = &kernel.Error{Module: "proc", Message: "elf image has more segments than this loader supports"}

	// userEntryAddr is the address of the userEntry assembly trampoline,
	// resolved once via reflection so newly created processes can set
	// Context.Ra to it without needing a raw funcPC-style hack.
	userEntryAddr = reflect.ValueOf(userEntry).Pointer()
	idleLoopAddr  = reflect.ValueOf(idleLoop).Pointer()
)

// userEntry is the one-shot trampoline a freshly created process's context
// resumes into: it enables interrupts on return to user mode and executes
// sret. Implemented in switch_riscv64.s; it never returns.
func userEntry()

// idleLoop is the idle process's entry point: a tight spin performed
// entirely in S-mode, never scheduled by name but run whenever no other
// process is Runnable.
func idleLoop()

// Current returns the currently scheduled process.
func Current() *Process {
	return &procs[current]
}

// Snapshot returns a copy of the process table, for SYS_LIST_PROCESS-style
// diagnostics. Callers get a copy rather than a reference since the table
// keeps changing underneath any long-lived read.
func Snapshot() [NPROC]Process {
	return procs
}

// flagsFromSegment translates an ELF segment's permission bits into Sv39
// PTE flags, always including the user-accessible bit since segments are
// only ever mapped into a user process's address space.
func flagsFromSegment(segFlags elf.SegmentFlags) vmm.PageTableEntryFlag {
	var flags vmm.PageTableEntryFlag = vmm.FlagUser
	if segFlags&elf.FlagRead != 0 {
		flags |= vmm.FlagRead
	}
	if segFlags&elf.FlagWrite != 0 {
		flags |= vmm.FlagWrite
	}
	if segFlags&elf.FlagExec != 0 {
		flags |= vmm.FlagExec
	}
	return flags
}

// identityMapKernel maps [kernelBase, allocatorEnd) into top with R|W|X and
// no U bit, one page at a time, giving the new address space the full
// kernel identity map every process must carry.
func identityMapKernel(top pmm.Frame, kernelBase, allocatorEnd uintptr) *kernel.Error {
	flags := vmm.FlagRead | vmm.FlagWrite | vmm.FlagExec
	for addr := kernelBase; addr < allocatorEnd; addr += uintptr(mem.PageSize) {
		if err := vmm.MapPage(top, addr, addr, flags); err != nil {
			return err
		}
	}
	return nil
}

// findUnusedSlot returns the index of the first Unused process table slot
// after slot 0, which is reserved for the idle process.
func findUnusedSlot() (int, *kernel.Error) {
	for i := 1; i < NPROC; i++ {
		if procs[i].State == Unused {
			return i, nil
		}
	}
	return 0, errTableFull
}

// CreateIdleProcess initialises slot 0 as the idle process: it carries only
// the kernel identity map and spins forever in idleLoop. The scheduler never
// selects it by choice; it is returned only when no other process is
// Runnable.
func CreateIdleProcess(kernelBase, allocatorEnd uintptr) *kernel.Error {
	p := &procs[0]

	stackFrame, err := pmm.Alloc()
	if err != nil {
		return err
	}
	topFrame, err := pmm.Alloc()
	if err != nil {
		return err
	}
	if err := identityMapKernel(topFrame, kernelBase, allocatorEnd); err != nil {
		return err
	}

	p.Pid = 0
	p.KernelStack = stackFrame
	p.kernelStackTop = stackFrame.Address() + uintptr(mem.PageSize)
	p.SatpValue = cpu.MakeSatp(topFrame.Address())
	p.Context = Context{Ra: uint64(idleLoopAddr), Sp: uint64(p.kernelStackTop)}
	p.State = Runnable

	return nil
}

// CreateProcess parses elfBytes, maps a fresh address space for it and
// installs the result into the first Unused process table slot, per the
// create_process contract: identity-map the kernel range, then allocate and
// map one contiguous frame run per loadable segment, copying in its file
// contents and relying on the allocator's zero-fill for the BSS tail.
func CreateProcess(elfBytes []byte, kernelBase, allocatorEnd uintptr) (*Process, *kernel.Error) {
	img, err := elf.Parse(elfBytes)
	if err != nil {
		return nil, err
	}
	if len(img.Segments) > elf.SegmentMax {
		return nil, errTooManySegments
	}

	slot, err := findUnusedSlot()
	if err != nil {
		return nil, err
	}
	p := &procs[slot]

	stackFrame, err := pmm.Alloc()
	if err != nil {
		return nil, err
	}
	topFrame, err := pmm.Alloc()
	if err != nil {
		return nil, err
	}
	if err := identityMapKernel(topFrame, kernelBase, allocatorEnd); err != nil {
		return nil, err
	}

	for _, seg := range img.Segments {
		pageCount := (uintptr(seg.Memsz) + uintptr(mem.PageSize) - 1) / uintptr(mem.PageSize)
		firstFrame, err := pmm.AllocFrames(uint64(pageCount))
		if err != nil {
			return nil, err
		}

		base := firstFrame.Address()
		offset := uintptr(seg.Vaddr) % uintptr(mem.PageSize)
		if len(seg.Data) > 0 {
			kernel.Memcopy(uintptr(unsafe.Pointer(&seg.Data[0])), base+offset, uintptr(len(seg.Data)))
		}

		flags := flagsFromSegment(seg.Flags)
		alignedVaddr := uintptr(seg.Vaddr) &^ (uintptr(mem.PageSize) - 1)
		for i := uintptr(0); i < pageCount; i++ {
			vaddr := alignedVaddr + i*uintptr(mem.PageSize)
			paddr := base + i*uintptr(mem.PageSize)
			if err := vmm.MapPage(topFrame, vaddr, paddr, flags); err != nil {
				return nil, err
			}
		}
	}

	p.Pid = uint32(slot)
	p.KernelStack = stackFrame
	p.kernelStackTop = stackFrame.Address() + uintptr(mem.PageSize)
	p.SatpValue = cpu.MakeSatp(topFrame.Address())
	p.EntryPoint = uintptr(img.EntryPoint)
	p.Context = Context{Ra: uint64(userEntryAddr), Sp: uint64(p.kernelStackTop)}
	p.State = Runnable

	return p, nil
}
