package vmm

import (
	"github.com/no2ca/nex-os/kernel"
	"github.com/no2ca/nex-os/kernel/mem"
	"github.com/no2ca/nex-os/kernel/mem/pmm"
)

// MapPage installs a leaf PTE mapping the 4 KiB page at vaddr to the frame
// at paddr within the page table rooted at top, applying the supplied R/W/X/U
// flags (FlagPresent is always set by this function; callers must not pass
// it themselves and should not rely on it being cleared by a failed call).
//
// Both vaddr and paddr must be page-aligned; MapPage panics otherwise, since
// a misaligned mapping request always indicates a caller bug rather than a
// recoverable runtime condition.
//
// If an intermediate (level-2 or level-1) table entry required to reach the
// leaf is not present, MapPage allocates a fresh frame via pmm.Alloc and
// installs an internal PTE (V=1, R=W=X=0) pointing to it before continuing
// the walk. MapPage does not clear the new frame itself; it relies on the
// registered allocator handing out zero-filled frames.
func MapPage(top pmm.Frame, vaddr, paddr uintptr, flags PageTableEntryFlag) *kernel.Error {
	pageSizeMinus1 := uintptr(mem.PageSize - 1)
	if vaddr&pageSizeMinus1 != 0 || paddr&pageSizeMinus1 != 0 {
		panic("vmm: MapPage called with an unaligned address")
	}

	frame := pmm.Frame(paddr >> mem.PageShift)

	var err *kernel.Error

	walkTable(top, vaddr, func(level uint8, pte *pageTableEntry) bool {
		if level == pageLevels-1 {
			*pte = 0
			pte.SetFrame(frame)
			pte.SetFlags(flags | FlagPresent)
			return true
		}

		if pte.HasFlags(FlagPresent) {
			if pte.isLeaf() {
				err = ErrHugePage
				return false
			}
			return true
		}

		var tableFrame pmm.Frame
		tableFrame, err = pmm.Alloc()
		if err != nil {
			return false
		}

		*pte = 0
		pte.SetFrame(tableFrame)
		pte.SetFlags(FlagPresent)

		return true
	})

	return err
}

// Translate walks the page table rooted at top and returns the physical
// address that vaddr currently maps to. It returns ErrInvalidMapping if any
// level of the walk encounters a PTE without FlagPresent set.
func Translate(top pmm.Frame, vaddr uintptr) (uintptr, *kernel.Error) {
	var (
		err     *kernel.Error
		physPPN pmm.Frame
	)

	pageOffset := vaddr & uintptr(mem.PageSize-1)

	walkTable(top, vaddr, func(level uint8, pte *pageTableEntry) bool {
		if !pte.HasFlags(FlagPresent) {
			err = ErrInvalidMapping
			return false
		}

		if level == pageLevels-1 {
			physPPN = pte.Frame()
			return true
		}

		if pte.isLeaf() {
			err = ErrHugePage
			return false
		}

		return true
	})

	if err != nil {
		return 0, err
	}

	return physPPN.Address() + pageOffset, nil
}
