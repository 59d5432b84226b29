// Package vmm builds and walks Sv39 page tables.
//
// Sv39 defines three page-table levels, each indexed by 9 bits of the
// virtual address (vpn2, vpn1, vpn0), with a 4 KiB page at the leaf level.
// Unlike a recursively self-mapped page directory, this package never needs
// a window into its own page tables via a reserved virtual-address slot:
// every process's page table identity-maps the kernel and allocator region,
// so a page table's physical address can be dereferenced directly as a
// virtual address without a temporary mapping.
package vmm

const pageLevels = uint8(3)

var (
	// pageLevelShifts holds, for each paging level, the bit position of
	// that level's 9-bit index within a virtual address (vpn2, vpn1, vpn0).
	pageLevelShifts = [pageLevels]uint8{30, 21, 12}

	// pageLevelBits holds the width in bits of each level's index.
	pageLevelBits = [pageLevels]uint8{9, 9, 9}
)

const (
	// ptePPNShift is the bit offset of the physical page number field
	// within a PTE.
	ptePPNShift = 10

	// ptePPNBits is the width of the PPN field.
	ptePPNBits = 44

	// ptePPNMask isolates the PPN field once shifted into place.
	ptePPNMask = uintptr((1<<ptePPNBits)-1) << ptePPNShift
)
