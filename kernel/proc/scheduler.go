package proc

import "github.com/no2ca/nex-os/kernel/cpu"

// switchContext is implemented in switch_riscv64.s. It stores ra, sp and
// s0..s11 from the running CPU registers into prev, then loads the same
// fields from next and returns — except that "returning" now resumes at
// whatever address was loaded into ra, which is the next process's own
// resume point rather than this call's return address.
func switchContext(prev, next *Context)

// startProcess is implemented in switch_riscv64.s. It is switchContext with
// the save half skipped, used exactly once by the kernel boot path to enter
// the very first process.
func startProcess(next *Context)

// schedule picks the next Runnable process with pid > 0, starting the scan
// at (current+1) mod NPROC and ending at current itself, so a lone Runnable
// process is picked again. If no such process exists it returns the idle
// process (slot 0).
func schedule() *Process {
	for i := 1; i <= NPROC; i++ {
		idx := (current + i) % NPROC
		if idx == 0 {
			continue
		}
		if procs[idx].State == Runnable {
			return &procs[idx]
		}
	}
	return &procs[0]
}

// applyContext installs next as the process the CPU is about to run: its
// page table, its kernel stack top (so the next trap from user mode finds
// the right stack) and its resume address, in that order, with TLB flushes
// bracketing the satp write per the architecture contract.
func applyContext(next *Process) {
	cpu.SfenceVMA()
	cpu.SetSatp(next.SatpValue)
	cpu.SfenceVMA()
	cpu.SetSscratch(next.kernelStackTop)
	cpu.SetSepc(next.EntryPoint)
}

// Yield performs a cooperative reschedule: pick the next runnable process
// and switch to it. If schedule picks the currently running process the
// switch is a (mostly) harmless no-op.
func Yield() {
	prev := &procs[current]
	next := schedule()

	current = int(next.Pid)
	applyContext(next)
	switchContext(&prev.Context, &next.Context)
}

// Exit marks the current process Exited and reschedules. It never returns
// to its caller: by the time switchContext resumes execution, the CPU is
// running a different process's kernel stack.
func Exit() {
	prev := &procs[current]
	prev.State = Exited

	next := schedule()
	current = int(next.Pid)
	applyContext(next)
	switchContext(&prev.Context, &next.Context)
}

// Start transfers control to the first process, per start_process: pick a
// runnable non-idle process (or the idle process if none exists) and enter
// it without saving anywhere, since there is no "previous" process yet.
func Start() {
	next := schedule()
	current = int(next.Pid)
	applyContext(next)
	startProcess(&next.Context)
}
