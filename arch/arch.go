// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arch contains architecture-specific definitions for the guest ISA.
package arch

import (
	"encoding/binary"
)

// Architecture defines the architecture-specific details for a given guest
// machine. Only ARM is populated for execution; AMD64 and X86 are kept for
// reference the way the teacher carried them, since nothing in this
// emulator targets the host's own architecture.
type Architecture struct {
	// IntSize is the size of the int type, in bytes.
	IntSize int
	// PointerSize is the size of a pointer, in bytes.
	PointerSize int
	// ByteOrder is the byte order for ints and pointers.
	ByteOrder binary.ByteOrder
	// NumGPR is the number of general-purpose registers in the register file.
	NumGPR int
}

func (a *Architecture) Uint32(buf []byte) uint32 {
	return a.ByteOrder.Uint32(buf)
}

var AMD64 = Architecture{
	IntSize:     8,
	PointerSize: 8,
	ByteOrder:   binary.LittleEndian,
	NumGPR:      16,
}

var X86 = Architecture{
	IntSize:     4,
	PointerSize: 4,
	ByteOrder:   binary.LittleEndian,
	NumGPR:      8,
}

// ARM describes the guest architecture this emulator supports: ARMv7,
// 32-bit, little-endian, 16 general registers (r0-r15).
var ARM = Architecture{
	IntSize:     4,
	PointerSize: 4,
	ByteOrder:   binary.LittleEndian,
	NumGPR:      16,
}

// Register indices, named per the ARM calling convention (ARM ARM §A2.3).
const (
	SP = 13 // stack pointer
	LR = 14 // link register
	PC = 15 // program counter
)

// Condition holds the 4-bit condition field of an ARM instruction.
type Condition uint8

const (
	CondEQ Condition = 0x0 // equal (Z set)
	CondNE Condition = 0x1 // not equal (Z clear)
	CondHS Condition = 0x2 // unsigned higher or same (C set)
	CondLO Condition = 0x3 // unsigned lower (C clear)
	CondMI Condition = 0x4 // negative (N set)
	CondPL Condition = 0x5 // positive or zero (N clear)
	CondVS Condition = 0x6 // overflow (V set)
	CondVC Condition = 0x7 // no overflow (V clear)
	CondHI Condition = 0x8 // unsigned higher
	CondLS Condition = 0x9 // unsigned lower or same
	CondGE Condition = 0xA // signed greater or equal
	CondLT Condition = 0xB // signed less than
	CondGT Condition = 0xC // signed greater than
	CondLE Condition = 0xD // signed less or equal
	CondAL Condition = 0xE // always
	CondNV Condition = 0xF // never (reserved, deprecated)
)

// CPSR flag bit positions (bits 31..28 of the status register).
const (
	FlagN = 31
	FlagZ = 30
	FlagC = 29
	FlagV = 28
)

// Passes evaluates cond against the N,Z,C,V flags packed into cpsr bits
// 31..28. Only EQ, NE, AL and NV are implemented; every other code
// evaluates false. See ARM ARM Table A8-1 for the full table this is a
// documented subset of (unimplemented until the full condition table is
// written — see DESIGN.md open question 4).
func (c Condition) Passes(cpsr uint32) bool {
	switch c {
	case CondEQ:
		return cpsr&(1<<FlagZ) != 0
	case CondNE:
		return cpsr&(1<<FlagZ) == 0
	case CondAL:
		return true
	case CondNV:
		return false
	default:
		return false
	}
}
