// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"fmt"
	"sort"
)

// Perm represents the permissions allowed for a mapped region.
type Perm uint8

const (
	Read Perm = 1 << iota
	Write
	Exec
)

func (p Perm) String() string {
	var s [3]byte
	b := s[:0]
	if p&Read != 0 {
		b = append(b, 'r')
	}
	if p&Write != 0 {
		b = append(b, 'w')
	}
	if p&Exec != 0 {
		b = append(b, 'x')
	}
	if len(b) == 0 {
		return "---"
	}
	return string(b)
}

// region is an owning record of one mapped segment: a guest base address,
// its length, and the host page backing it. It exclusively owns its host
// page for as long as it lives in a Map.
type region struct {
	base uint32
	len  uint32
	page Page
}

// Map is an ordered mapping from guest base address to mapped segment, per
// spec.md §4.2. The zero Map is ready to use.
type Map struct {
	// regions is kept sorted by base so translate can binary-search for the
	// greatest base <= addr — the "ordered map" spec.md calls the critical
	// primitive, sized for the handful of LOAD segments a static ARM
	// executable actually has (see DESIGN.md: this is a proportionate
	// substitute for the teacher's 4-level page table, which is built for
	// core-dump-scale mapping counts this emulator never approaches).
	regions []region
}

// MapRegion inserts a region into the map. Guest regions must not overlap;
// the loader is responsible for that invariant (spec.md §3: "regions do not
// overlap in guest space").
func (m *Map) MapRegion(guestBase uint32, length uint32, page Page) {
	r := region{base: guestBase, len: length, page: page}
	i := sort.Search(len(m.regions), func(i int) bool { return m.regions[i].base >= guestBase })
	m.regions = append(m.regions, region{})
	copy(m.regions[i+1:], m.regions[i:])
	m.regions[i] = r
}

// findRegion returns the region whose base is the greatest base <= addr, or
// nil if none exists or addr falls past the end of that region.
func (m *Map) findRegion(addr uint32) *region {
	// sort.Search finds the first index whose base > addr; the region we
	// want, if any, is the one immediately before it.
	i := sort.Search(len(m.regions), func(i int) bool { return m.regions[i].base > addr })
	if i == 0 {
		return nil
	}
	r := &m.regions[i-1]
	if addr < r.base+r.len {
		return r
	}
	return nil
}

// Translate returns the host address corresponding to guestAddr, or false if
// guestAddr is not covered by any mapped region.
func (m *Map) Translate(guestAddr uint32) (uintptr, bool) {
	r := m.findRegion(guestAddr)
	if r == nil {
		return 0, false
	}
	offset := guestAddr - r.base
	return r.page.Addr() + uintptr(offset), true
}

// ReadU32 performs a little-endian 32-bit read through translation. The
// caller is responsible for only issuing 4-byte aligned guest accesses — an
// unaligned access that straddles two regions is a caller bug, not
// something this map detects (spec.md §4.2).
func (m *Map) ReadU32(guestAddr uint32) (uint32, bool) {
	host, ok := m.Translate(guestAddr)
	if !ok {
		return 0, false
	}
	b := unsafeSlice(host, 4)
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, true
}

// WriteU32 performs a little-endian 32-bit write through translation.
func (m *Map) WriteU32(guestAddr uint32, value uint32) error {
	host, ok := m.Translate(guestAddr)
	if !ok {
		return fmt.Errorf("write fault: guest address %#08x is not mapped", guestAddr)
	}
	b := unsafeSlice(host, 4)
	b[0] = byte(value)
	b[1] = byte(value >> 8)
	b[2] = byte(value >> 16)
	b[3] = byte(value >> 24)
	return nil
}

// Destroy unmaps every region and consumes the map. It is idempotent
// against a Map with no regions, and reports (but does not propagate)
// per-region unmap failures — spec.md §4.2 puts those on a diagnostic
// channel rather than surfacing them as a hard error, since by the time
// Destroy runs the interpreter has already finished and there is nothing
// left to roll back to.
func (m *Map) Destroy(warn func(format string, args ...any)) {
	for _, r := range m.regions {
		if err := Unmap(r.page); err != nil && warn != nil {
			warn("failed to unmap guest segment @ %#08x (len=%d): %v", r.base, r.len, err)
		}
	}
	m.regions = nil
}
