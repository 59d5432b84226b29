// Package elf parses the minimal subset of the ELF64 format needed to load
// statically linked, position-independent-free RISC-V user programs: the
// file header and PT_LOAD program headers. There is no relocation
// processing and no dynamic symbol handling; everything this kernel runs is
// linked to its final virtual addresses ahead of time.
package elf

import (
	"encoding/binary"

	"github.com/no2ca/nex-os/kernel"
)

const (
	// ehSize is the size in bytes of the ELF64 file header.
	ehSize = 64

	// phEntSize is the size in bytes of a single ELF64 program header.
	phEntSize = 56

	// ptLoad identifies a loadable program header entry.
	ptLoad = 1

	// SegmentMax bounds the number of loadable segments this loader will
	// track for a single image; user programs built for this kernel are
	// expected to need only a handful (text, rodata, data/bss).
	SegmentMax = 12

	flagExec  = 1 << 0
	flagWrite = 1 << 1
	flagRead  = 1 << 2
)

var (
	errTruncatedHeader  = &kernel.Error{Module: "elf", Message: "image is too short to contain an ELF64 header"}
	errTruncatedPhdr    = &kernel.Error{Module: "elf", Message: "program header table extends past the end of the image"}
	errTruncatedSegment = &kernel.Error{Module: "elf", Message: "segment data extends past the end of the image"}
	errTooManySegments  = &kernel.Error{Module: "elf", Message: "image has more loadable segments than this loader supports"}
)

// SegmentFlags describes the R/W/X permission bits carried by a program
// header, independent of any particular page table encoding.
type SegmentFlags uint8

const (
	// FlagRead marks a segment as readable.
	FlagRead SegmentFlags = 1 << 0
	// FlagWrite marks a segment as writable.
	FlagWrite SegmentFlags = 1 << 1
	// FlagExec marks a segment as executable.
	FlagExec SegmentFlags = 1 << 2
)

// Segment describes one PT_LOAD program header.
type Segment struct {
	Vaddr  uint64
	Data   []byte
	Filesz uint64
	Memsz  uint64
	Flags  SegmentFlags
}

// Image is the result of parsing an ELF64 file: its entry point and the
// loadable segments extracted from its program header table.
type Image struct {
	EntryPoint uint64
	Segments   []Segment
}

// Parse reads the ELF64 header and program header table out of raw and
// returns the entry point together with every PT_LOAD segment it describes.
//
// Parse never panics; whether a parse failure is fatal depends on the
// caller. A kernel-embedded image failing to parse is a build-time bug and
// the caller should treat the error as fatal, while a user-supplied image
// submitted through SYS_CREATE_PROCESS should surface the error to the
// calling process instead of taking down the kernel.
func Parse(raw []byte) (Image, *kernel.Error) {
	if len(raw) < ehSize {
		return Image{}, errTruncatedHeader
	}

	entry := binary.LittleEndian.Uint64(raw[24:32])
	phoff := binary.LittleEndian.Uint64(raw[32:40])
	phnum := binary.LittleEndian.Uint16(raw[56:58])

	img := Image{EntryPoint: entry}

	for i := uint16(0); i < phnum; i++ {
		start := phoff + uint64(i)*phEntSize
		end := start + phEntSize
		if end > uint64(len(raw)) || end < start {
			return Image{}, errTruncatedPhdr
		}
		ph := raw[start:end]

		pType := binary.LittleEndian.Uint32(ph[0:4])
		if pType != ptLoad {
			continue
		}

		if len(img.Segments) >= SegmentMax {
			return Image{}, errTooManySegments
		}

		pFlags := binary.LittleEndian.Uint32(ph[4:8])
		pOffset := binary.LittleEndian.Uint64(ph[8:16])
		pVaddr := binary.LittleEndian.Uint64(ph[16:24])
		pFilesz := binary.LittleEndian.Uint64(ph[32:40])
		pMemsz := binary.LittleEndian.Uint64(ph[40:48])

		dataEnd := pOffset + pFilesz
		if dataEnd > uint64(len(raw)) || dataEnd < pOffset {
			return Image{}, errTruncatedSegment
		}

		var flags SegmentFlags
		if pFlags&flagRead != 0 {
			flags |= FlagRead
		}
		if pFlags&flagWrite != 0 {
			flags |= FlagWrite
		}
		if pFlags&flagExec != 0 {
			flags |= FlagExec
		}

		img.Segments = append(img.Segments, Segment{
			Vaddr:  pVaddr,
			Data:   raw[pOffset:dataEnd],
			Filesz: pFilesz,
			Memsz:  pMemsz,
			Flags:  flags,
		})
	}

	return img, nil
}
