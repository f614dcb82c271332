package sysbridge

import (
	"golang.org/x/sys/unix"
)

// GuestState is the minimal view of CPU state a syscall handler needs: the
// register file for arguments/return, memory translation for pointer
// arguments, and a way to record the guest's exit status. cpu.Cpu satisfies
// this interface; it is expressed here (rather than imported directly) so
// sysbridge does not depend on cpu, which depends on sysbridge for the
// Handler type — the same kind of small-interface seam the teacher uses
// between its core and gocore layers.
type GuestState interface {
	Reg(n int) uint32
	Translate(guestAddr uint32) (uintptr, bool)
	SetExitStatus(code int32)
}

// Handler dispatches one guest syscall (identified by its ARM EABI number,
// already resolved from r7) and returns the signed value to write back into
// r0.
type Handler func(cpu GuestState, syscall Number) int32

const sysWrite = 1 // Linux x86-64 SYS_write

// hostWrite issues the write(2) syscall directly via the raw syscall
// number (spec.md §6's host syscall ABI table), rather than through
// os.Stdout.Write, so the guest's fd/buf/len arguments flow to the kernel
// unmodified.
func hostWrite(fd uintptr, hostBuf uintptr, length uintptr) int64 {
	ret, _, _ := unix.Syscall(sysWrite, fd, hostBuf, length)
	return int64(ret)
}

func clampInt32(v int64) int32 {
	if v > int64(^uint32(0)>>1) {
		return int32(^uint32(0) >> 1)
	}
	if v < -int64(^uint32(0)>>1)-1 {
		return -int32(^uint32(0)>>1) - 1
	}
	return int32(v)
}

// doWrite implements the write(fd, buf, len) guest syscall shared by the
// forward and sandbox policies.
func doWrite(cpu GuestState, fd, buf, length uint32) int32 {
	if length == 0 {
		return 0
	}
	hostBuf, ok := cpu.Translate(buf)
	if !ok {
		return EFAULT.Neg()
	}
	ret := hostWrite(uintptr(fd), hostBuf, uintptr(length))
	return clampInt32(ret)
}

// Forward translates the supported guest syscall subset (exit, write) into
// real host actions. Any other syscall is currently unimplemented and
// returns -ENOSYS, matching original_source's syscall_forward, which only
// ever handled exit and write.
func Forward(cpu GuestState, syscall Number) int32 {
	switch syscall {
	case Exit:
		cpu.SetExitStatus(int32(cpu.Reg(0)))
		return 0
	case Write:
		return doWrite(cpu, cpu.Reg(0), cpu.Reg(1), cpu.Reg(2))
	default:
		return ENOSYS.Neg()
	}
}

// Sandbox behaves like Forward but restricts write to fd 0/1/2 and exit is
// always honored so the emulator can clean up (spec.md §4.7).
func Sandbox(cpu GuestState, syscall Number) int32 {
	switch syscall {
	case Exit:
		cpu.SetExitStatus(int32(cpu.Reg(0)))
		return 0
	case Write:
		fd := cpu.Reg(0)
		if fd > 2 {
			return ENOSYS.Neg()
		}
		return doWrite(cpu, fd, cpu.Reg(1), cpu.Reg(2))
	default:
		return ENOSYS.Neg()
	}
}

// Deny always returns -ENOSYS, but still honors exit so the guest can
// terminate (spec.md §4.7 — earlier variants also returned -EACCES; the
// canonical choice is -ENOSYS).
func Deny(cpu GuestState, syscall Number) int32 {
	if syscall == Exit {
		cpu.SetExitStatus(int32(cpu.Reg(0)))
	}
	return ENOSYS.Neg()
}
