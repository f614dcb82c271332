// Package sysbridge implements the syscall bridge from spec.md §4.7:
// Forward, Sandbox, and Deny policies translating a guest syscall into a
// host action, plus an optional logging decorator.
package sysbridge

import (
	"fmt"

	"github.com/nullspan/armrun/internal/armerr"
)

// Number is an ARM EABI syscall number, per the subset actually handled
// (spec.md §3), sourced from the Chromium ARM EABI syscall table the
// original stinkarm decoder cites.
type Number uint32

const (
	Restart Number = 0
	Exit    Number = 1
	Fork    Number = 2
	Read    Number = 3
	Write   Number = 4
	Open    Number = 5
	Close   Number = 6
)

func (n Number) String() string {
	switch n {
	case Restart:
		return "restart"
	case Exit:
		return "exit"
	case Fork:
		return "fork"
	case Read:
		return "read"
	case Write:
		return "write"
	case Open:
		return "open"
	case Close:
		return "close"
	default:
		return fmt.Sprintf("syscall(%d)", uint32(n))
	}
}

// ResolveNumber maps a raw r7 value to a known syscall identity, failing at
// dispatch time with UnknownSyscall for anything outside the handled subset
// (DESIGN.md open question 3).
func ResolveNumber(raw uint32) (Number, error) {
	switch Number(raw) {
	case Restart, Exit, Fork, Read, Write, Open, Close:
		return Number(raw), nil
	default:
		return 0, &armerr.UnknownSyscall{Number: raw}
	}
}

// Errno is the Linux errno set spec.md §3 names, returned to the guest as
// the negated value in r0.
type Errno int32

const (
	EPERM  Errno = 1
	ENOENT Errno = 2
	ESRCH  Errno = 3
	EINTR  Errno = 4
	EIO    Errno = 5
	EBADF  Errno = 9
	EAGAIN Errno = 11
	ENOMEM Errno = 12
	EACCES Errno = 13
	EFAULT Errno = 14
	ENOSYS Errno = 38
)

func (e Errno) String() string {
	switch e {
	case EPERM:
		return "EPERM"
	case ENOENT:
		return "ENOENT"
	case ESRCH:
		return "ESRCH"
	case EINTR:
		return "EINTR"
	case EIO:
		return "EIO"
	case EBADF:
		return "EBADF"
	case EAGAIN:
		return "EAGAIN"
	case ENOMEM:
		return "ENOMEM"
	case EACCES:
		return "EACCES"
	case EFAULT:
		return "EFAULT"
	case ENOSYS:
		return "ENOSYS"
	default:
		return fmt.Sprintf("errno(%d)", int32(e))
	}
}

// Neg returns the guest-visible r0 encoding of e: its negated value.
func (e Errno) Neg() int32 { return -int32(e) }
