// Package vfs is the kernel's entire filesystem: a fixed, in-memory registry
// of ELF images statically linked into the kernel image and looked up by
// name. There is no real storage device in this design; every file SYS_
// CREATE_PROCESS can open already lives in the kernel binary.
package vfs

import "encoding/binary"

const userCodeBase = 0x10000

// SHELL_ELF is the ELF image looked up by the path "sh": it writes 'A' to
// the console and yields, forever, matching the single-process boot
// scenario this kernel is exercised against.
var SHELL_ELF = buildLoopProgram(sysWriteByte, 'A', sysYield)

// PS_ELF is the ELF image looked up by the path "ps": it asks the kernel to
// log the process table, then yields, forever.
var PS_ELF = buildLoopProgram(sysListProcess, 0, sysYield)

// Syscall numbers are duplicated from the syscall package rather than
// imported, since vfs sits below syscall in the dependency order (syscall
// looks up paths in vfs to load process images) and importing it back would
// form a cycle. Both sides are a fixed ABI contract, not independent values.
const (
	sysWriteByte   = 1
	sysYield       = 3
	sysListProcess = 6
)

var registry = map[string][]byte{
	"sh": SHELL_ELF,
	"ps": PS_ELF,
}

// Lookup returns the ELF image registered under name, and whether one
// exists. SYS_CREATE_PROCESS returns -1 to the caller when ok is false.
func Lookup(name string) (data []byte, ok bool) {
	data, ok = registry[name]
	return data, ok
}

// encodeAddi builds an I-type ADDI instruction setting register rd to imm
// via addi rd, x0, imm (the classic "li" pseudo-instruction expansion for
// an immediate that fits in 12 bits).
func encodeAddi(rd, imm uint32) uint32 {
	return (imm&0xfff)<<20 | (rd&0x1f)<<7 | 0x13
}

// encodeEcall builds the single-word ECALL instruction.
func encodeEcall() uint32 {
	return 0x73
}

// encodeJal builds a JAL instruction with the given destination register
// and a signed, word-aligned branch offset.
func encodeJal(rd uint32, offset int32) uint32 {
	uimm := uint32(offset) & 0x1fffff
	imm20 := (uimm >> 20) & 0x1
	imm10_1 := (uimm >> 1) & 0x3ff
	imm11 := (uimm >> 11) & 0x1
	imm19_12 := (uimm >> 12) & 0xff
	return imm20<<31 | imm10_1<<21 | imm11<<20 | imm19_12<<12 | (rd&0x1f)<<7 | 0x6f
}

// buildLoopProgram assembles a tiny freestanding user program: set a3 to
// sysNum, a0 to arg0, ecall, set a3 to sysYieldNum, ecall, then jump back to
// the start. a3/a0 are the syscall-number/argument registers per the
// syscall ABI; the register numbers (13 and 10) are x13/x10 in the
// architecture's numbering.
func buildLoopProgram(sysNum, arg0, sysYieldNum uint32) []byte {
	instrs := []uint32{
		encodeAddi(13, sysNum),
		encodeAddi(10, arg0),
		encodeEcall(),
		encodeAddi(13, sysYieldNum),
		encodeEcall(),
	}
	instrs = append(instrs, encodeJal(0, -int32(len(instrs)*4)))

	code := make([]byte, len(instrs)*4)
	for i, instr := range instrs {
		binary.LittleEndian.PutUint32(code[i*4:], instr)
	}

	return wrapELF(userCodeBase, code)
}

// wrapELF wraps code in a minimal ELF64 file: a header and a single
// read+execute PT_LOAD segment mapping code at entryVaddr, which is also
// the image's entry point.
func wrapELF(entryVaddr uint64, code []byte) []byte {
	const ehSize = 64
	const phEntSize = 56
	const phoff = uint64(ehSize)
	const flagExec = 1 << 0
	const flagRead = 1 << 2

	buf := make([]byte, ehSize+phEntSize+len(code))

	binary.LittleEndian.PutUint64(buf[24:32], entryVaddr)
	binary.LittleEndian.PutUint64(buf[32:40], phoff)
	binary.LittleEndian.PutUint16(buf[56:58], 1)

	ph := buf[phoff : phoff+phEntSize]
	binary.LittleEndian.PutUint32(ph[0:4], 1) // PT_LOAD
	binary.LittleEndian.PutUint32(ph[4:8], flagRead|flagExec)
	binary.LittleEndian.PutUint64(ph[8:16], phoff+phEntSize)
	binary.LittleEndian.PutUint64(ph[16:24], entryVaddr)
	binary.LittleEndian.PutUint64(ph[32:40], uint64(len(code)))
	binary.LittleEndian.PutUint64(ph[40:48], uint64(len(code)))

	copy(buf[phoff+phEntSize:], code)

	return buf
}
