package trap

import "github.com/no2ca/nex-os/kernel/cpu"

// kernelEntryAddr returns the address of the kernelEntry trap vector
// (entry_riscv64.s), resolved in assembly since the vector itself is a raw
// symbol with no Go-callable signature.
func kernelEntryAddr() uintptr

// Init installs kernelEntry as the hart's trap vector in direct mode. It
// must run once per hart before the first ecall/exception can be handled;
// kmain calls it during boot, right after goruntime.Init and before the idle
// process and the first user process are created.
func Init() {
	cpu.SetStvec(kernelEntryAddr())
}
