// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"debug/elf"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

func extractELF(path string, c *collector) error {
	f, err := elf.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil {
		if errors.Is(err, elf.ErrNoSymbols) {
			slog.Debug("ELF output has no symbol table", "path", path)
			return nil
		}
		return err
	}

	sections := make(map[elf.SectionIndex][]byte)
	for _, sym := range syms {
		if elf.ST_TYPE(sym.Info) != elf.STT_FUNC || sym.Name == "" {
			continue
		}
		declaringType, member := SplitSymbol(sym.Name)

		body, err := elfBody(f, sym, sections)
		if err != nil {
			c.fail(declaringType, fmt.Errorf("symbol %s: %w", sym.Name, err))
			continue
		}
		c.add(declaringType, member, kindOf(sym.Name, declaringType, member), body)
	}
	return nil
}

// elfBody returns nil for symbols without a body in the file: undefined,
// zero-size, or placed in a section that occupies no file space.
func elfBody(f *elf.File, sym elf.Symbol, cache map[elf.SectionIndex][]byte) ([]byte, error) {
	if sym.Size == 0 || sym.Section == elf.SHN_UNDEF || sym.Section >= elf.SHN_LORESERVE {
		return nil, nil
	}
	if int(sym.Section) >= len(f.Sections) {
		return nil, fmt.Errorf("section index %d out of range", sym.Section)
	}
	sec := f.Sections[sym.Section]
	if sec.Type != elf.SHT_PROGBITS {
		return nil, nil
	}

	data, ok := cache[sym.Section]
	if !ok {
		var err error
		data, err = sec.Data()
		if err != nil {
			return nil, fmt.Errorf("reading section %s: %w", sec.Name, err)
		}
		cache[sym.Section] = data
	}

	// Relocatable objects use section-relative symbol values.
	start := sym.Value
	if f.Type != elf.ET_REL {
		if start < sec.Addr {
			return nil, fmt.Errorf("address %#x before section %s", sym.Value, sec.Name)
		}
		start -= sec.Addr
	}
	end := start + sym.Size
	if end < start || end > uint64(len(data)) {
		return nil, fmt.Errorf("body [%#x, %#x) outside section %s", start, end, sec.Name)
	}
	return slices.Clone(data[start:end]), nil
}
