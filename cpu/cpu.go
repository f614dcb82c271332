// Package cpu implements the fetch-decode-execute interpreter from spec.md
// §4.6, ported from original_source/src/cpu/mod.rs's Cpu::step.
package cpu

import (
	"github.com/nullspan/armrun/arch"
	"github.com/nullspan/armrun/decode"
	"github.com/nullspan/armrun/internal/armerr"
	"github.com/nullspan/armrun/internal/armlog"
	"github.com/nullspan/armrun/memory"
	"github.com/nullspan/armrun/sysbridge"
)

// initialCPSR is the boot CPSR: User mode, Z and C set by convention
// (spec.md §3).
const initialCPSR = 0x60000010

// Cpu holds the interpreter's full mutable state: the register file, CPSR,
// a reference to the guest memory map (a borrow for the lifetime of one
// run — the memory map outlives the Cpu and is destroyed separately by the
// caller, per spec.md §5), and the selected syscall handler.
type Cpu struct {
	r    [16]uint32
	cpsr uint32

	mem     *memory.Map
	handler sysbridge.Handler
	log     *armlog.Logger

	// status is set exactly once, by an exit syscall or an unimplemented
	// decoded instruction, and ends the interpreter loop on the next tick.
	status *int32
}

// New constructs a Cpu with the guest's initial register state: PC set to
// entry, everything else zeroed, CPSR at its boot value.
func New(mem *memory.Map, entry uint32, handler sysbridge.Handler, log *armlog.Logger) *Cpu {
	c := &Cpu{mem: mem, cpsr: initialCPSR, handler: handler, log: log}
	c.r[arch.PC] = entry
	return c
}

// Reg returns the current value of general register n (0-15). It, along
// with Translate and SetExitStatus below, implements sysbridge.GuestState.
func (c *Cpu) Reg(n int) uint32 { return c.r[n] }

// SetReg writes v into general register n.
func (c *Cpu) SetReg(n int, v uint32) { c.r[n] = v }

// CPSR returns the current condition flags register.
func (c *Cpu) CPSR() uint32 { return c.cpsr }

// PC returns the guest program counter, masked to a word boundary the way
// the original interpreter reads it for fetch (bit 0/1 of r15 are ignored
// on a fetch, matching ARM state-mode conventions for a pure-ARM core).
func (c *Cpu) PC() uint32 { return c.r[arch.PC] &^ 0b11 }

// Translate exposes the guest memory map's translation to the syscall
// bridge (sysbridge.GuestState).
func (c *Cpu) Translate(guestAddr uint32) (uintptr, bool) { return c.mem.Translate(guestAddr) }

// SetExitStatus records the guest's requested exit code (sysbridge.GuestState).
// Only the first call takes effect — spec.md's lifecycle has exactly one
// terminal status per run.
func (c *Cpu) SetExitStatus(code int32) {
	if c.status == nil {
		c.status = &code
	}
}

// ExitStatus returns the guest's exit code once the loop has finished, or
// 0 if the interpreter terminated benignly without an explicit exit
// (spec.md §6).
func (c *Cpu) ExitStatus() int32 {
	if c.status == nil {
		return 0
	}
	return *c.status
}

func (c *Cpu) advance() {
	c.r[arch.PC] += 4
}

// Step runs one fetch-decode-execute cycle. It returns (true, nil) to keep
// running, (false, nil) when the loop should end benignly (ran off the
// mapped image, or the zero-word sentinel, or a terminal status was set),
// and (false, err) when a step fails with a fatal interpreter error
// (spec.md §4.6).
func (c *Cpu) Step() (bool, error) {
	if c.status != nil {
		return false, nil
	}

	word, ok := c.mem.ReadU32(c.PC())
	if !ok {
		// Ran off the mapped image. Not yet a synthesized SIGSEGV back to
		// the guest (spec.md §7, §9) — just benign termination.
		return false, nil
	}

	if word == 0 {
		// Zero-word sentinel: treated as "end of code page" so execution
		// reaching a zeroed BSS/code tail terminates cleanly. This is
		// indistinguishable from a legitimate `andeq r0, r0, r0` — a
		// deliberate convenience kept as specified, not a bug to fix (see
		// DESIGN.md open question 2).
		return false, nil
	}

	cond, instr := decode.Decode(word, c.PC())

	if !cond.Passes(c.cpsr) {
		c.advance()
		return true, nil
	}

	if c.log != nil && c.log.Enabled(armlog.Memory) {
		c.log.Logf(armlog.Memory, "pc=%#08x word=%#08x %#v", c.PC(), word, instr)
	}

	switch i := instr.(type) {
	case decode.MovImm:
		c.r[i.Rd] = i.Rhs

	case decode.Svc:
		num, err := sysbridge.ResolveNumber(c.r[7])
		if err != nil {
			return false, err
		}
		c.r[0] = uint32(c.handler(c, num))

	case decode.LdrLiteral:
		v, ok := c.mem.ReadU32(i.LiteralAddr)
		if !ok {
			// A literal-pool miss is a fatal bug in the guest image, not a
			// benign termination: the core does not yet synthesize a
			// SIGSEGV back to the guest (spec.md §7).
			return false, &armerr.ElfConstraintViolation{Message: "segmentation fault: LDR literal address is not mapped"}
		}
		c.r[i.Rd] = v

	case decode.Unknown:
		return false, &armerr.UnknownOrUnsupportedInstruction{Word: i.Word}

	default:
		// Decoded but not yet implemented (e.g. DataProcImm, Branch): set
		// status = 1, an orderly exit with a failure code (spec.md §4.6
		// step 5).
		if c.log != nil {
			c.log.Logf(armlog.Memory, "unimplemented instruction %#08x: %#v, exiting", word, instr)
		}
		c.SetExitStatus(1)
		return false, nil
	}

	c.advance()
	return true, nil
}

// Run drives Step until it returns false, and returns the final exit code
// (spec.md §4.6's termination rule).
func (c *Cpu) Run() (int32, error) {
	for {
		cont, err := c.Step()
		if err != nil {
			return c.ExitStatus(), err
		}
		if !cont {
			return c.ExitStatus(), nil
		}
	}
}
