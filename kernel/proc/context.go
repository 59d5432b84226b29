// Package proc implements the process table, the round-robin scheduler and
// the context-switch/user-entry primitives that tie the rest of the core
// together.
package proc

// Context holds exactly the registers switch_context saves and restores:
// the return address, stack pointer and callee-saved registers. Every other
// register is caller-saved and already preserved by the compiler at the
// call site of switchContext, so Context never needs to carry them.
type Context struct {
	Ra uint64
	Sp uint64
	S0 uint64
	S1 uint64
	S2 uint64
	S3 uint64
	S4 uint64
	S5 uint64
	S6 uint64
	S7 uint64
	S8 uint64
	S9 uint64
	S10 uint64
	S11 uint64
}

// TrapFrame is saved on a process's kernel stack by the trap entry
// trampoline on every trap and restored from it on return. The field order
// matches the fixed stack-slot layout the assembly trampoline uses: ra, gp,
// tp, t0..t6, a0..a7, s0..s11, sp (the user sp, recovered from sscratch).
type TrapFrame struct {
	Ra uint64
	Gp uint64
	Tp uint64
	T0 uint64
	T1 uint64
	T2 uint64
	T3 uint64
	T4 uint64
	T5 uint64
	T6 uint64
	A0 uint64
	A1 uint64
	A2 uint64
	A3 uint64
	A4 uint64
	A5 uint64
	A6 uint64
	A7 uint64
	S0 uint64
	S1 uint64
	S2 uint64
	S3 uint64
	S4 uint64
	S5 uint64
	S6 uint64
	S7 uint64
	S8 uint64
	S9 uint64
	S10 uint64
	S11 uint64
	Sp uint64
}
