// Package cpu exposes the RISC-V supervisor-mode CSRs and instructions the
// rest of the kernel needs: the page table root (satp), the per-hart
// scratch word used by the trap entry trampoline (sscratch), the trap
// bookkeeping CSRs (sepc/scause/stval/sstatus) and the sfence.vma/wfi
// instructions. Every function declared without a body here is implemented
// in cpu_riscv64.s.
package cpu

const (
	// SstatusSPIE is the bit in sstatus that, once set, causes interrupts
	// to be enabled immediately after an sret.
	SstatusSPIE uintptr = 1 << 5

	// SstatusSUM is the bit in sstatus that permits S-mode loads/stores
	// to pages whose PTE has U=1 set.
	SstatusSUM uintptr = 1 << 18

	// SatpModeSv39 is the mode field value that selects Sv39 paging.
	SatpModeSv39 uintptr = 8

	// SatpModeShift is the bit offset of the mode field within satp.
	SatpModeShift = 60
)

// Satp reads the current value of the satp CSR.
func Satp() uintptr

// SetSatp writes value to the satp CSR.
func SetSatp(value uintptr)

// Sscratch reads the current value of the sscratch CSR.
func Sscratch() uintptr

// SetSscratch writes value to the sscratch CSR.
func SetSscratch(value uintptr)

// Sepc reads the current value of the sepc CSR.
func Sepc() uintptr

// SetSepc writes value to the sepc CSR.
func SetSepc(value uintptr)

// Scause reads the current value of the scause CSR.
func Scause() uintptr

// Stval reads the current value of the stval CSR.
func Stval() uintptr

// Sstatus reads the current value of the sstatus CSR.
func Sstatus() uintptr

// SetSstatus writes value to the sstatus CSR.
func SetSstatus(value uintptr)

// Stvec reads the current value of the stvec CSR.
func Stvec() uintptr

// SetStvec writes value to the stvec CSR, pointing the hart at a new trap
// vector. The kernel always installs a direct-mode vector (the low 2 bits
// of value are 0), so there is no vectored-mode offset to account for.
func SetStvec(value uintptr)

// SfenceVMA flushes all address-translation caching for the current hart.
// It is called both before and after a satp write when switching address
// spaces.
func SfenceVMA()

// Halt parks the hart in a wfi loop. It never returns; this is the
// fatal-halt primitive used by kfmt.Panic. The idle process does not call
// it; its idleLoop has a wfi loop of its own.
func Halt()

// MakeSatp builds the satp CSR value for an Sv39 page table rooted at
// topTablePhys.
func MakeSatp(topTablePhys uintptr) uintptr {
	return (SatpModeSv39 << SatpModeShift) | (topTablePhys >> 12)
}

// SetSUM sets the sstatus.SUM bit, permitting the next S-mode accesses to
// user-mapped pages. Callers are expected to clear it again as soon as the
// user memory access is done (see the syscall package's copy-from-user path).
func SetSUM() {
	SetSstatus(Sstatus() | SstatusSUM)
}

// ClearSUM clears the sstatus.SUM bit.
func ClearSUM() {
	SetSstatus(Sstatus() &^ SstatusSUM)
}
