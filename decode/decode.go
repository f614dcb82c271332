// Package decode implements the pure ARM instruction decoder from spec.md
// §4.5, ported field-for-field from the original stinkarm decoder
// (original_source/src/cpu/decoder.rs) — there is no Go analog of this
// subsystem anywhere in the retrieval pack, so the Rust source is the
// primary grounding and this is its idiomatic Go re-expression: a tagged
// union via an interface plus concrete structs standing in for a Rust enum.
package decode

import "github.com/nullspan/armrun/arch"

// Instruction is the decoded-instruction tagged union (spec.md §3).
type Instruction interface {
	isInstruction()
}

// MovImm is "MOV Rd, #imm" with imm already rotated per the ARM encoding.
type MovImm struct {
	Rd  uint8
	Rhs uint32
}

func (MovImm) isInstruction() {}

// Branch is "B"/"BL", with TargetOffset already sign-extended and shifted
// left by 2.
type Branch struct {
	Link         bool
	TargetOffset int32
}

func (Branch) isInstruction() {}

// Svc is the supervisor call instruction. Its 24-bit immediate is ignored,
// matching the Linux kernel's own behavior.
type Svc struct{}

func (Svc) isInstruction() {}

// LdrLiteral is "LDR Rd, [PC, #imm]" with LiteralAddr already resolved to
// an absolute guest address (PC + 8 + imm12, per ARM's PC-ahead convention).
type LdrLiteral struct {
	Rd          uint8
	LiteralAddr uint32
}

func (LdrLiteral) isInstruction() {}

// DataProcOp is one of the 16 data-processing opcodes named in spec.md
// §4.5 step 4's OP_TABLE.
type DataProcOp uint8

const (
	OpAnd DataProcOp = 0b0000
	OpEor DataProcOp = 0b0001
	OpSub DataProcOp = 0b0010
	OpRsb DataProcOp = 0b0011
	OpAdd DataProcOp = 0b0100
	OpAdc DataProcOp = 0b0101
	OpSbc DataProcOp = 0b0110
	OpRsc DataProcOp = 0b0111
	OpTst DataProcOp = 0b1000
	OpTeq DataProcOp = 0b1001
	OpCmp DataProcOp = 0b1010
	OpCmn DataProcOp = 0b1011
	OpOrr DataProcOp = 0b1100
	OpMov DataProcOp = 0b1101
	OpBic DataProcOp = 0b1110
	OpMvn DataProcOp = 0b1111
)

// DataProcImm is an AND, SUB, ADD, CMP or ORR data-processing-immediate
// instruction (SPEC_FULL.md §4.5a): it decodes cleanly but the interpreter
// does not execute it, only MovImm has an execute-switch arm. The other
// data-processing-immediate opcodes decode to Unknown.
type DataProcImm struct {
	Op       DataProcOp
	Rd       uint8
	Rn       uint8
	Rhs      uint32
	SetFlags bool
}

func (DataProcImm) isInstruction() {}

// Unknown is the catch-all: any 32-bit word that does not match one of the
// recognized shapes. The decoder is total — every word decodes to exactly
// one variant, with Unknown as the backstop (spec.md §8 property 3).
type Unknown struct {
	Word uint32
}

func (Unknown) isInstruction() {}

// decodeRotatedImm rotates the 8-bit immediate in imm12 right by the
// 4-bit*2 rotate count, per the ARM data-processing-immediate encoding
// (spec.md §4.5 step 4, §8 property 4).
func decodeRotatedImm(imm12 uint32) uint32 {
	rotate := ((imm12 >> 8) & 0xF) * 2
	val := imm12 & 0xFF
	return (val >> rotate) | (val << (32 - rotate))
}

// Decode turns a raw 32-bit ARM word, fetched from guest address caddr,
// into its condition field and decoded Instruction (spec.md §4.5).
func Decode(word uint32, caddr uint32) (arch.Condition, Instruction) {
	cond := arch.Condition((word >> 28) & 0xF)
	top := uint8((word >> 25) & 0x7) // bits 27:25

	// Load/store class: top[2:1] == 0b01.
	if (top>>1)&0b11 == 0b01 {
		p := (word>>24)&1 != 0
		u := (word>>23)&1 != 0
		b := (word>>22)&1 != 0
		w := (word>>21)&1 != 0
		l := (word>>20)&1 != 0
		rn := uint8((word >> 16) & 0xF)
		rd := uint8((word >> 12) & 0xF)
		imm12 := word & 0xFFF

		if l && rn == 0b1111 && p && u && !w && !b {
			pcSeen := caddr + 8
			literalAddr := pcSeen + imm12
			return cond, LdrLiteral{Rd: rd, LiteralAddr: literalAddr}
		}

		// Any other load/store shape is unsupported by this core.
		return cond, Unknown{Word: word}
	}

	// Branch: top == 0b101.
	if top == 0b101 {
		link := (word>>24)&0x1 != 0
		imm24 := int32(word & 0x00FFFFFF)
		// Sign-extend 24->32, then shift left by 2.
		signed := (imm24 << 8) >> 8
		offset := signed << 2
		return cond, Branch{Link: link, TargetOffset: offset}
	}

	// SVC: bits 27..24 == 0b1111.
	if uint8((word>>24)&0xF) == 0b1111 {
		return cond, Svc{}
	}

	// Data-processing immediate: top == 0b000 or 0b001, I bit set.
	if top == 0b000 || top == 0b001 {
		iBit := (word>>25)&0x1 != 0
		opcode := DataProcOp((word >> 21) & 0xF)
		if iBit {
			rd := uint8((word >> 12) & 0xF)
			rn := uint8((word >> 16) & 0xF)
			setFlags := (word>>20)&0x1 != 0
			imm12 := word & 0xFFF
			rhs := decodeRotatedImm(imm12)

			if opcode == OpMov {
				return cond, MovImm{Rd: rd, Rhs: rhs}
			}
			switch opcode {
			case OpAnd, OpAdd, OpSub, OpCmp, OpOrr:
				return cond, DataProcImm{Op: opcode, Rd: rd, Rn: rn, Rhs: rhs, SetFlags: setFlags}
			}
		}
	}

	return cond, Unknown{Word: word}
}
