// Package sbi wraps the legacy SBI console calls the kernel needs before it
// ever has a real driver: a single ecall each for putchar and getchar.
// There is no modern SBI extension probing here — the legacy calls are all
// every RISC-V SBI implementation is guaranteed to carry.
package sbi

import "github.com/no2ca/nex-os/kernel"

var errConsolePutChar = &kernel.Error{Module: "sbi", Message: "console putchar failed"}

// putChar and getChar are implemented in sbi_riscv64.s: each is a single
// ecall with the legacy SBI extension ID in a7.
func putChar(c uint64) int64
func getChar() int64

// PutChar writes b to the console via the legacy SBI putchar call.
func PutChar(b byte) *kernel.Error {
	if putChar(uint64(b)) != 0 {
		return errConsolePutChar
	}
	return nil
}

// GetChar polls the console once via the legacy SBI getchar call. ok is
// false when no byte is currently available; callers that need to block
// busy-poll by calling GetChar in a loop.
func GetChar() (b byte, ok bool) {
	v := getChar()
	if v < 0 {
		return 0, false
	}
	return byte(v), true
}
