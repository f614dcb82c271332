package sysbridge

import "github.com/nullspan/armrun/internal/armlog"

// WithTrace wraps handler with a logging decorator that prints the syscall
// tag and argument registers before invoking it, and the signed/
// errno-decoded return value after, on the syscalls channel. This is the
// layered-handler shape spec.md §4.7's last paragraph describes: "optional
// logging decoration wraps the base handler".
func WithTrace(handler Handler, log *armlog.Logger) Handler {
	if log == nil || !log.Enabled(armlog.Syscalls) {
		return handler
	}
	return func(cpu GuestState, syscall Number) int32 {
		log.Logf(armlog.Syscalls, "%s(r0=%#x, r1=%#x, r2=%#x)", syscall, cpu.Reg(0), cpu.Reg(1), cpu.Reg(2))
		ret := handler(cpu, syscall)
		if ret < 0 {
			log.Logf(armlog.Syscalls, "  = %s", Errno(-ret))
		} else {
			log.Logf(armlog.Syscalls, "  = %d", ret)
		}
		return ret
	}
}
