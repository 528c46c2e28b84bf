// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"cmp"
	"debug/macho"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

const (
	machoStab           = 0xe0
	machoTypeMask       = 0x0e
	machoSect           = 0x0e
	machoSectionType    = 0x000000ff
	machoZerofill       = 0x1
	machoPureInstr      = 0x80000000
	machoSomeInstr      = 0x00000400
	machoInstrAttrFlags = machoPureInstr | machoSomeInstr
)

type machoSym struct {
	name  string
	sect  int
	value uint64
	size  uint64
}

func extractMachO(path string, c *collector) error {
	f, err := macho.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if f.Symtab == nil {
		slog.Debug("Mach-O output has no symbol table", "path", path)
		return nil
	}

	var syms []*machoSym
	for _, s := range f.Symtab.Syms {
		if s.Type&machoStab != 0 || s.Type&machoTypeMask != machoSect || s.Sect == 0 {
			continue
		}
		idx := int(s.Sect) - 1
		if idx >= len(f.Sections) || f.Sections[idx].Flags&machoInstrAttrFlags == 0 {
			continue
		}
		syms = append(syms, &machoSym{
			name:  strings.TrimPrefix(s.Name, "_"),
			sect:  idx,
			value: s.Value,
		})
	}
	sizeMachOSymbols(f, syms)

	data := make(map[int][]byte)
	for _, s := range syms {
		if s.name == "" {
			continue
		}
		declaringType, member := SplitSymbol(s.name)
		body, err := machoBody(f.Sections[s.sect], s, data)
		if err != nil {
			c.fail(declaringType, fmt.Errorf("symbol %s: %w", s.name, err))
			continue
		}
		c.add(declaringType, member, kindOf(s.name, declaringType, member), body)
	}
	return nil
}

// sizeMachOSymbols sets each symbol's size to the distance to the next symbol
// of the same section, or to the section end for the last one.
func sizeMachOSymbols(f *macho.File, syms []*machoSym) {
	sorted := slices.Clone(syms)
	slices.SortStableFunc(sorted, func(a, b *machoSym) int {
		if c := cmp.Compare(a.sect, b.sect); c != 0 {
			return c
		}
		return cmp.Compare(a.value, b.value)
	})
	for i, s := range sorted {
		end := f.Sections[s.sect].Addr + f.Sections[s.sect].Size
		for _, next := range sorted[i+1:] {
			if next.sect != s.sect {
				break
			}
			if next.value > s.value {
				end = next.value
				break
			}
		}
		if end > s.value {
			s.size = end - s.value
		}
	}
}

func machoBody(sec *macho.Section, s *machoSym, cache map[int][]byte) ([]byte, error) {
	if s.size == 0 || sec.Flags&machoSectionType == machoZerofill {
		return nil, nil
	}
	data, ok := cache[s.sect]
	if !ok {
		var err error
		data, err = sec.Data()
		if err != nil {
			return nil, fmt.Errorf("reading section %s: %w", sec.Name, err)
		}
		cache[s.sect] = data
	}
	if s.value < sec.Addr {
		return nil, fmt.Errorf("address %#x before section %s", s.value, sec.Name)
	}
	start := s.value - sec.Addr
	end := start + s.size
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("body [%#x, %#x) outside section %s", start, end, sec.Name)
	}
	return slices.Clone(data[start:end]), nil
}
