package vmm

import (
	"unsafe"

	"github.com/no2ca/nex-os/kernel/mem"
	"github.com/no2ca/nex-os/kernel/mem/pmm"
)

var (
	// ptePtrFn returns a pointer to the page table entry at the supplied
	// address. It is a variable so the address-to-pointer step can be
	// replaced; the tests in this package leave it as is and hand walkTable
	// real addresses inside a Go-allocated backing slice instead. When
	// compiling the kernel this function is inlined away.
	ptePtrFn = func(entryAddr uintptr) unsafe.Pointer {
		return unsafe.Pointer(entryAddr)
	}
)

// pageTableWalker is invoked by walkTable once per paging level with the
// entry that corresponds to that level for the address being walked. If it
// returns false the walk stops immediately.
type pageTableWalker func(level uint8, pte *pageTableEntry) bool

// walkTable walks the three Sv39 paging levels for virtAddr starting from
// the page table rooted at top, invoking walkFn at each level.
//
// Because every page table installed by this kernel identity-maps its own
// frames (vaddr == paddr for all kernel and page-table memory), the
// physical address of a table doubles as a dereferenceable virtual address;
// no recursive self-mapping or temporary mapping is required to access an
// inactive table.
func walkTable(top pmm.Frame, virtAddr uintptr, walkFn pageTableWalker) {
	tableAddr := top.Address()

	for level := uint8(0); level < pageLevels; level++ {
		index := (virtAddr >> pageLevelShifts[level]) & ((1 << pageLevelBits[level]) - 1)
		entryAddr := tableAddr + (index << mem.PointerShift)
		pte := (*pageTableEntry)(ptePtrFn(entryAddr))

		if !walkFn(level, pte) {
			return
		}

		if level == pageLevels-1 {
			return
		}

		tableAddr = pte.Frame().Address()
	}
}
