// Package armerr defines the emulator's error taxonomy (spec.md §7). The CLI
// does not distinguish between these types: every error ends the process
// with exit status 1.
package armerr

import "fmt"

// ElfConstraintViolation reports a failure in ELF32 validation (spec.md
// §4.3). The interpreter also returns it when an LDR literal load reads an
// unmapped guest address.
type ElfConstraintViolation struct {
	Message string
}

func (e *ElfConstraintViolation) Error() string {
	return fmt.Sprintf("ELF constraint violation: %s", e.Message)
}

// UnknownSyscall reports that the guest's r7 held a syscall number not in
// the known ARM EABI subset at the moment an SVC was dispatched.
type UnknownSyscall struct {
	Number uint32
}

func (e *UnknownSyscall) Error() string {
	return fmt.Sprintf("unknown syscall number %d", e.Number)
}

// UnknownOrUnsupportedInstruction reports that the decoder returned Unknown,
// or that the executor refused a decoded-but-unsupported instruction form.
type UnknownOrUnsupportedInstruction struct {
	Word uint32
}

func (e *UnknownOrUnsupportedInstruction) Error() string {
	return fmt.Sprintf("UnknownOrUnsupportedInstruction(%#08x)", e.Word)
}
