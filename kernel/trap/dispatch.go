// Package trap implements the supervisor trap path: the assembly vector
// that saves/restores a trapped process's registers and the Go dispatcher it
// calls into to decide what the trap was and how to resolve it.
package trap

import (
	"github.com/no2ca/nex-os/kernel"
	"github.com/no2ca/nex-os/kernel/cpu"
	"github.com/no2ca/nex-os/kernel/kfmt"
	"github.com/no2ca/nex-os/kernel/proc"
	"github.com/no2ca/nex-os/kernel/syscall"
)

// scauseUserEcall is the scause exception code for "environment call from
// U-mode", the only trap cause this kernel resolves without halting.
const scauseUserEcall = 8

// dispatchSyscallFn is the syscall dispatcher handleTrap calls, held in a
// variable so it can be replaced without pulling in the real syscall
// dispatcher. No test in this package replaces it, since handleTrap itself
// reads real CSRs.
var dispatchSyscallFn = syscall.Dispatch

var errUnhandledTrap = &kernel.Error{Module: "trap", Message: "unhandled trap"}

// handleTrap is called by the kernel_entry trampoline (entry_riscv64.s) with
// a pointer to the just-saved TrapFrame. A scause of scauseUserEcall is
// resolved by dispatching to the syscall layer and advancing sepc past the
// ecall instruction (ecall is always 4 bytes, compressed instructions are
// not used for it). Any other cause is unrecoverable: this kernel has no
// page-fault-driven demand paging or signal delivery, so every other trap
// reaching here indicates a bug and halts the system.
func handleTrap(frame *proc.TrapFrame) {
	scause := cpu.Scause()

	if scause == scauseUserEcall {
		dispatchSyscallFn(frame)
		cpu.SetSepc(cpu.Sepc() + 4)
		return
	}

	kfmt.Printf("trap: unhandled scause=0x%x stval=0x%x sepc=0x%x\n", scause, cpu.Stval(), cpu.Sepc())
	kfmt.Panic(errUnhandledTrap)
}
