// Package syscall decodes and executes the syscall ABI the trap gate hands
// it: a3 selects the operation, a0/a1/a2 carry arguments, and the return
// value is written back into a0.
package syscall

import (
	"unsafe"

	"github.com/no2ca/nex-os/kernel"
	"github.com/no2ca/nex-os/kernel/cpu"
	"github.com/no2ca/nex-os/kernel/kfmt"
	"github.com/no2ca/nex-os/kernel/proc"
	"github.com/no2ca/nex-os/kernel/sbi"
	"github.com/no2ca/nex-os/kernel/vfs"
)

// Syscall numbers, fixed by the shared ABI between kernel and user code.
const (
	SysWriteByte     = 1
	SysReadByte      = 2
	SysYield         = 3
	SysExit          = 4
	SysCreateProcess = 5
	SysListProcess   = 6
)

// kernelBase and allocatorEnd bound the identity-mapped kernel range every
// freshly created process needs in its page table. They are set once, by
// Init, from the same linker-provided bounds kmain passes to pmm.Init.
var (
	kernelBase   uintptr
	allocatorEnd uintptr
)

var errUnknownSyscall = &kernel.Error{Module: "syscall", Message: "unknown syscall number"}

// Init records the kernel's identity-mapped address range so SYS_CREATE_
// PROCESS can pass it through to proc.CreateProcess.
func Init(base, end uintptr) {
	kernelBase = base
	allocatorEnd = end
}

// Dispatch decodes frame's syscall number from a3 and performs the
// requested action, writing any return value back into frame.A0. SYS_EXIT
// and a successful SYS_YIELD both reschedule via proc, which may not return
// to this call on the same kernel stack it was entered with — by the time
// it does return (for SYS_YIELD, once this process is rescheduled), the
// trap gate resumes normally.
func Dispatch(frame *proc.TrapFrame) {
	switch frame.A3 {
	case SysWriteByte:
		frame.A0 = uint64(writeByte(byte(frame.A0)))
	case SysReadByte:
		frame.A0 = uint64(readByte())
	case SysYield:
		proc.Yield()
		frame.A0 = 0
	case SysExit:
		proc.Exit()
	case SysCreateProcess:
		frame.A0 = uint64(createProcess(uintptr(frame.A0), uintptr(frame.A1)))
	case SysListProcess:
		listProcesses()
		frame.A0 = 0
	default:
		kfmt.Printf("syscall: unknown syscall number %d\n", frame.A3)
		kfmt.Panic(errUnknownSyscall)
	}
}

// writeByte implements SYS_WRITE_BYTE: write b to the console, returning 0
// on success or -1 on failure.
func writeByte(b byte) int64 {
	if err := sbi.PutChar(b); err != nil {
		return -1
	}
	return 0
}

// readByte implements SYS_READ_BYTE: busy-poll the firmware until a byte is
// available. This never yields while waiting — a known simplification
// carried over unchanged from the design this kernel follows.
func readByte() int64 {
	for {
		if b, ok := sbi.GetChar(); ok {
			return int64(b)
		}
	}
}

// copyUserBytes reads length bytes out of the current process's address
// space starting at userAddr, with the SUM bit set only for the duration of
// the read. This only works because the calling process's page table is
// already the active one (satp was set to it before its trap could ever
// reach here), so the hart's own MMU performs the translation.
func copyUserBytes(userAddr uintptr, length uintptr) []byte {
	out := make([]byte, length)

	cpu.SetSUM()
	for i := uintptr(0); i < length; i++ {
		out[i] = *(*byte)(unsafe.Pointer(userAddr + i))
	}
	cpu.ClearSUM()

	return out
}

// createProcess implements SYS_CREATE_PROCESS: copy the path string out of
// user memory, look it up in the vfs registry, and create a process from
// the resulting ELF image. Returns the new pid, or -1 on any failure (no
// such path, or an ELF image that fails to parse/map).
func createProcess(userPathAddr, pathLen uintptr) int64 {
	path := string(copyUserBytes(userPathAddr, pathLen))

	data, ok := vfs.Lookup(path)
	if !ok {
		return -1
	}

	p, err := proc.CreateProcess(data, kernelBase, allocatorEnd)
	if err != nil {
		return -1
	}

	return int64(p.Pid)
}

// listProcesses implements SYS_LIST_PROCESS: log the process table.
func listProcesses() {
	snapshot := proc.Snapshot()
	for i := range snapshot {
		p := &snapshot[i]
		if p.State == proc.Unused {
			continue
		}
		kfmt.Printf("pid=%d state=%d entry=0x%x\n", p.Pid, uint8(p.State), p.EntryPoint)
	}
}
