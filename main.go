package main

import "github.com/no2ca/nex-os/kernel/kmain"

// main is the only Go symbol visible from the rt0 boot trampoline. It exists
// to call kmain.Kmain rather than inlining this kernel's boot sequence here,
// so the compiler always sees a reachable call into it — the rt0 code that
// jumps here is invisible to Go's own dead-code analysis.
//
// kernelStart/kernelEnd/pageAreaStart/pageAreaEnd are supplied by the linker
// script as symbols the rt0 assembly reads and passes down; they are not
// yet wired up here since this kernel has no linker script in this tree.
func main() {
	kmain.Kmain(0, 0, 0, 0)
}
