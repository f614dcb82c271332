// Package loader maps the LOAD segments of a parsed ELF32 file into a guest
// memory map, per spec.md §4.4.
package loader

import (
	"fmt"

	"github.com/nullspan/armrun/elf32"
	"github.com/nullspan/armrun/internal/armlog"
	"github.com/nullspan/armrun/memory"
)

// Load walks f's program headers and maps every LOAD segment into mem,
// grounded on original_source/src/elf/pheader/mod.rs's Pheader::map: for
// each LOAD header, allocate page-aligned host pages, copy the file image,
// zero the BSS tail, register the mapping, then tighten protection to the
// segment's final R/W/X bits.
func Load(f *elf32.File, mem *memory.Map, log *armlog.Logger) error {
	raw := f.Raw()
	for i, ph := range f.Pheaders {
		if ph.Type != elf32.PTypeLoad {
			continue
		}

		if ph.Memsz == 0 {
			// Tolerated no-op per spec.md §4.4 step 1.
			continue
		}
		if ph.Vaddr == 0 {
			return fmt.Errorf("program header %d: zero virtual address", i)
		}

		align := ph.Align
		if align == 0 {
			align = uint32(memory.PageSize())
		}
		start := ph.Vaddr &^ (align - 1)
		end := (ph.Vaddr + ph.Memsz + align - 1) &^ (align - 1)
		length := end - start

		page, err := memory.Map(int(length), memory.ProtWrite)
		if err != nil {
			return fmt.Errorf("program header %d: %w", i, err)
		}

		dst := page.Bytes()
		if ph.Filesz > 0 {
			src := raw[ph.Offset : ph.Offset+ph.Filesz]
			copy(dst, src)
		}
		for j := ph.Filesz; j < ph.Memsz; j++ {
			dst[j] = 0
		}

		// Registered under the program header's raw vaddr, not the
		// page-aligned start — see DESIGN.md open question 1. This means a
		// LOAD header whose vaddr isn't page-aligned makes the leading
		// bytes of the host region (and guest addresses below vaddr but
		// still on the same page) unreachable via translation. Matching
		// current documented behavior, not guessing at an intended fix.
		mem.MapRegion(ph.Vaddr, length, page)

		prot := elfFlagsToProt(ph.Flags)
		if err := memory.Protect(page, prot); err != nil {
			return fmt.Errorf("program header %d: %w", i, err)
		}

		if log != nil {
			log.Logf(armlog.Elf, "mapped segment %d: guest=%#08x len=%#x prot=%s", i, ph.Vaddr, length, permString(ph.Flags))
		}
	}
	return nil
}

func elfFlagsToProt(f elf32.PFlags) memory.Prot {
	var p memory.Prot
	if f&elf32.PF_R != 0 {
		p |= memory.ProtRead
	}
	if f&elf32.PF_W != 0 {
		p |= memory.ProtWrite
	}
	if f&elf32.PF_X != 0 {
		p |= memory.ProtExec
	}
	return p
}

func permString(f elf32.PFlags) string {
	var p memory.Perm
	if f&elf32.PF_R != 0 {
		p |= memory.Read
	}
	if f&elf32.PF_W != 0 {
		p |= memory.Write
	}
	if f&elf32.PF_X != 0 {
		p |= memory.Exec
	}
	return p.String()
}
