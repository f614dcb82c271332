// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elf32

import (
	"encoding/binary"
	"testing"
)

// buildImage assembles a minimal ET_EXEC/EM_ARM image with the given
// program headers appended after a 52-byte Ehdr, mirroring the layout
// ParseHeader/ParsePheaders expect.
func buildImage(t *testing.T, entry uint32, phs []Pheader) []byte {
	t.Helper()

	const ehsize = 52
	const phentsize = 32

	b := make([]byte, ehsize+phentsize*len(phs))
	copy(b[0:4], elfMagic[:])
	b[4] = 1 // ELFCLASS32
	b[5] = 1 // ELFDATA2LSB
	b[6] = 1 // EI_VERSION
	binary.LittleEndian.PutUint16(b[16:18], uint16(TypeExecutable))
	binary.LittleEndian.PutUint16(b[18:20], uint16(EM_ARM))
	binary.LittleEndian.PutUint32(b[20:24], 1)
	binary.LittleEndian.PutUint32(b[24:28], entry)
	binary.LittleEndian.PutUint32(b[28:32], ehsize)
	binary.LittleEndian.PutUint16(b[40:42], ehsize)
	binary.LittleEndian.PutUint16(b[42:44], phentsize)
	binary.LittleEndian.PutUint16(b[44:46], uint16(len(phs)))

	for i, ph := range phs {
		off := ehsize + i*phentsize
		raw := b[off : off+phentsize]
		binary.LittleEndian.PutUint32(raw[0:4], uint32(ph.Type))
		binary.LittleEndian.PutUint32(raw[4:8], ph.Offset)
		binary.LittleEndian.PutUint32(raw[8:12], ph.Vaddr)
		binary.LittleEndian.PutUint32(raw[12:16], ph.Paddr)
		binary.LittleEndian.PutUint32(raw[16:20], ph.Filesz)
		binary.LittleEndian.PutUint32(raw[20:24], ph.Memsz)
		binary.LittleEndian.PutUint32(raw[24:28], uint32(ph.Flags))
		binary.LittleEndian.PutUint32(raw[28:32], ph.Align)
	}
	return b
}

func TestParseHeaderRejectsShort(t *testing.T) {
	_, err := ParseHeader(make([]byte, 10))
	if err == nil {
		t.Fatal("expected error for short buffer")
	}
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	b := buildImage(t, 0x8000, nil)
	b[0] = 0
	if _, err := ParseHeader(b); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestParseHeaderRejectsWrongMachine(t *testing.T) {
	b := buildImage(t, 0x8000, nil)
	binary.LittleEndian.PutUint16(b[18:20], 62) // EM_X86_64
	if _, err := ParseHeader(b); err == nil {
		t.Fatal("expected error for non-ARM machine")
	}
}

func TestParseHeaderRejectsNonExec(t *testing.T) {
	b := buildImage(t, 0x8000, nil)
	binary.LittleEndian.PutUint16(b[16:18], uint16(TypeSharedObj))
	if _, err := ParseHeader(b); err == nil {
		t.Fatal("expected error for non ET_EXEC type")
	}
}

func TestParseHeaderAccepts(t *testing.T) {
	b := buildImage(t, 0x8000, nil)
	h, err := ParseHeader(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Entry != 0x8000 {
		t.Fatalf("entry = %#x, want 0x8000", h.Entry)
	}
	if h.Machine != EM_ARM {
		t.Fatalf("machine = %d, want EM_ARM", h.Machine)
	}
}

func TestParsePheadersRoundTrip(t *testing.T) {
	want := []Pheader{
		{Type: PTypeLoad, Offset: 0, Vaddr: 0x8000, Filesz: 0x100, Memsz: 0x200, Flags: PF_R | PF_X, Align: 0x1000},
	}
	b := buildImage(t, 0x8000, want)
	f, err := Parse(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Pheaders) != 1 {
		t.Fatalf("got %d pheaders, want 1", len(f.Pheaders))
	}
	got := f.Pheaders[0]
	if got.Vaddr != want[0].Vaddr || got.Memsz != want[0].Memsz || got.Flags != want[0].Flags {
		t.Fatalf("pheader = %+v, want %+v", got, want[0])
	}
}

func TestParsePheadersRejectsBadAlign(t *testing.T) {
	phs := []Pheader{{Type: PTypeLoad, Vaddr: 0x8000, Memsz: 0x10, Align: 3}}
	b := buildImage(t, 0x8000, phs)
	if _, err := Parse(b); err == nil {
		t.Fatal("expected error for non-power-of-two alignment")
	}
}

func TestParsePheadersRejectsUnknownType(t *testing.T) {
	phs := []Pheader{{Type: PTypeLoad, Vaddr: 0x8000, Memsz: 0x10}}
	b := buildImage(t, 0x8000, phs)
	binary.LittleEndian.PutUint32(b[52:56], 0x12345678)
	if _, err := Parse(b); err == nil {
		t.Fatal("expected error for unknown program header type")
	}
}

func TestParsePheadersRejectsTruncated(t *testing.T) {
	phs := []Pheader{{Type: PTypeLoad, Vaddr: 0x8000, Memsz: 0x10}}
	b := buildImage(t, 0x8000, phs)
	b = b[:len(b)-16]
	if _, err := Parse(b); err == nil {
		t.Fatal("expected error for truncated program header table")
	}
}
