package kfmt

import (
	"github.com/no2ca/nex-os/kernel"
	"github.com/no2ca/nex-os/kernel/cpu"
)

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the compiler.
	cpuHaltFn = cpu.Halt

	errRuntimePanic = &kernel.Error{Module: "rt", Message: "unknown cause"}
)

// Panic is the kernel's single fatal-halt path: it prints the supplied
// error, or the string/error value's message, to the console and parks the
// hart. Callers invoke it explicitly; nothing redirects the builtin panic
// here, so the places that still use the builtin panic (vmm.MapPage's
// alignment check, goruntime's sysReserve/sysMap) do not go through it.
// Panic never returns.
func Panic(e interface{}) {
	var err *kernel.Error

	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		panicString(t)
		return
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	Printf("\n-----------------------------------\n")
	if err != nil {
		Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	Printf("*** kernel panic: system halted ***")
	Printf("\n-----------------------------------\n")

	cpuHaltFn()
}

// panicString is the string-argument path through Panic.
func panicString(msg string) {
	errRuntimePanic.Message = msg
	Panic(errRuntimePanic)
}
