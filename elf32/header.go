// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elf32 parses the subset of the ELF32 gABI this emulator accepts:
// a little-endian Elf32_Ehdr plus Elf32_Phdr program headers, with no
// section-header or dynamic-linking processing (spec.md §4.3, §6).
package elf32

import (
	"encoding/binary"

	"github.com/nullspan/armrun/internal/armerr"
)

// Type is the ELF object file type (e_type).
type Type uint16

const (
	TypeNone        Type = 0
	TypeRelocatable Type = 1
	TypeExecutable  Type = 2
	TypeSharedObj   Type = 3
	TypeCore        Type = 4
)

// Machine is the ELF target architecture (e_machine). Only EM_ARM is
// accepted; every other value is rejected at parse time.
type Machine uint16

const EM_ARM Machine = 40

// Header is the subset of Elf32_Ehdr fields this emulator needs.
type Header struct {
	Type      Type
	Machine   Machine
	Version   uint32
	Entry     uint32
	Phoff     uint32
	Shoff     uint32
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

var elfMagic = [4]byte{0x7F, 'E', 'L', 'F'}

// ParseHeader validates and decodes the 52-byte Elf32_Ehdr at the start of
// b, in the exact order spec.md §4.3 specifies: length, identifier, type,
// machine.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < 52 {
		return Header{}, &armerr.ElfConstraintViolation{Message: "not enough bytes for ELF header (need at least 52)"}
	}

	if [4]byte(b[0:4]) != elfMagic {
		return Header{}, &armerr.ElfConstraintViolation{Message: "bad ELF magic"}
	}
	class := b[4]
	data := b[5]
	version := b[6]
	if class != 1 {
		return Header{}, &armerr.ElfConstraintViolation{Message: "not a 32-bit (ELFCLASS32) object"}
	}
	if data != 1 {
		return Header{}, &armerr.ElfConstraintViolation{Message: "not little-endian (ELFDATA2LSB)"}
	}
	if version != 1 {
		return Header{}, &armerr.ElfConstraintViolation{Message: "unsupported ELF identifier version"}
	}

	h := Header{
		Type:      Type(binary.LittleEndian.Uint16(b[16:18])),
		Machine:   Machine(binary.LittleEndian.Uint16(b[18:20])),
		Version:   binary.LittleEndian.Uint32(b[20:24]),
		Entry:     binary.LittleEndian.Uint32(b[24:28]),
		Phoff:     binary.LittleEndian.Uint32(b[28:32]),
		Shoff:     binary.LittleEndian.Uint32(b[32:36]),
		Flags:     binary.LittleEndian.Uint32(b[36:40]),
		Ehsize:    binary.LittleEndian.Uint16(b[40:42]),
		Phentsize: binary.LittleEndian.Uint16(b[42:44]),
		Phnum:     binary.LittleEndian.Uint16(b[44:46]),
		Shentsize: binary.LittleEndian.Uint16(b[46:48]),
		Shnum:     binary.LittleEndian.Uint16(b[48:50]),
		Shstrndx:  binary.LittleEndian.Uint16(b[50:52]),
	}

	if h.Type != TypeExecutable {
		return Header{}, &armerr.ElfConstraintViolation{Message: "only ET_EXEC supported"}
	}
	if h.Machine != EM_ARM {
		return Header{}, &armerr.ElfConstraintViolation{Message: "unsupported machine: only EM_ARM is supported"}
	}

	return h, nil
}
