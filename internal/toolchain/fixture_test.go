// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

const (
	elfTextAddr   = 0x401000
	elfBssAddr    = 0x402000
	machoTextAddr = 0x1000
)

type (
	elfSym struct {
		name    string
		section elf.SectionIndex
		value   uint64
		size    uint64
		typ     elf.SymType
	}

	machoFixtureSym struct {
		name  string
		value uint64
		// undefined symbols carry no section.
		undefined bool
	}
)

func pad(buf *bytes.Buffer, to int) {
	for buf.Len() < to {
		buf.WriteByte(0)
	}
}

func align8(n int) int {
	return (n + 7) &^ 7
}

func mustWrite(t *testing.T, buf *bytes.Buffer, v any) {
	t.Helper()
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		t.Fatalf("binary.Write: %v", err)
	}
}

// writeELF builds a little-endian ELF64 executable with .text (at elfTextAddr),
// .bss (at elfBssAddr, 64 bytes) and a symbol table. Section indices: 1 .text, 2 .bss.
func writeELF(t *testing.T, text []byte, syms []elfSym) string {
	t.Helper()

	var strtab bytes.Buffer
	strtab.WriteByte(0)
	symtab := []elf.Sym64{{}}
	for _, s := range syms {
		symtab = append(symtab, elf.Sym64{
			Name:  uint32(strtab.Len()),
			Info:  elf.ST_INFO(elf.STB_GLOBAL, s.typ),
			Shndx: uint16(s.section),
			Value: s.value,
			Size:  s.size,
		})
		strtab.WriteString(s.name)
		strtab.WriteByte(0)
	}
	shstrtab := []byte("\x00.text\x00.bss\x00.symtab\x00.strtab\x00.shstrtab\x00")

	const textOff = 64
	symOff := align8(textOff + len(text))
	symSize := len(symtab) * elf.Sym64Size
	strOff := symOff + symSize
	shstrOff := strOff + strtab.Len()
	shOff := align8(shstrOff + len(shstrtab))

	var buf bytes.Buffer
	mustWrite(t, &buf, elf.Header64{
		Ident:     [16]byte{0x7f, 'E', 'L', 'F', byte(elf.ELFCLASS64), byte(elf.ELFDATA2LSB), byte(elf.EV_CURRENT)},
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     uint64(shOff),
		Ehsize:    64,
		Phentsize: 56,
		Shentsize: 64,
		Shnum:     6,
		Shstrndx:  5,
	})
	buf.Write(text)
	pad(&buf, symOff)
	mustWrite(t, &buf, symtab)
	buf.Write(strtab.Bytes())
	buf.Write(shstrtab)
	pad(&buf, shOff)

	mustWrite(t, &buf, []elf.Section64{
		{},
		{Name: 1, Type: uint32(elf.SHT_PROGBITS), Flags: uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
			Addr: elfTextAddr, Off: textOff, Size: uint64(len(text)), Addralign: 16},
		{Name: 7, Type: uint32(elf.SHT_NOBITS), Flags: uint64(elf.SHF_ALLOC | elf.SHF_WRITE),
			Addr: elfBssAddr, Off: uint64(symOff), Size: 64, Addralign: 8},
		{Name: 12, Type: uint32(elf.SHT_SYMTAB), Off: uint64(symOff), Size: uint64(symSize),
			Link: 4, Info: 1, Addralign: 8, Entsize: elf.Sym64Size},
		{Name: 20, Type: uint32(elf.SHT_STRTAB), Off: uint64(strOff), Size: uint64(strtab.Len()), Addralign: 1},
		{Name: 28, Type: uint32(elf.SHT_STRTAB), Off: uint64(shstrOff), Size: uint64(len(shstrtab)), Addralign: 1},
	})

	path := filepath.Join(t.TempDir(), "module.so")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func name16(s string) [16]byte {
	var out [16]byte
	copy(out[:], s)
	return out
}

// writeMachO builds a 64-bit Mach-O object whose only section is __TEXT,__text
// at machoTextAddr.
func writeMachO(t *testing.T, text []byte, syms []machoFixtureSym) string {
	t.Helper()

	var strtab bytes.Buffer
	strtab.WriteByte(0)
	nlist := make([]macho.Nlist64, 0, len(syms))
	for _, s := range syms {
		n := macho.Nlist64{Name: uint32(strtab.Len()), Type: 0x0f, Sect: 1, Value: s.value}
		if s.undefined {
			n.Type, n.Sect, n.Value = 0x01, 0, 0
		}
		nlist = append(nlist, n)
		strtab.WriteString(s.name)
		strtab.WriteByte(0)
	}

	const (
		headerSize = 32
		segSize    = 72 + 80
		symtabSize = 24
		textOff    = headerSize + segSize + symtabSize
	)
	symOff := align8(textOff + len(text))
	strOff := symOff + len(nlist)*16

	var buf bytes.Buffer
	mustWrite(t, &buf, macho.FileHeader{
		Magic:  macho.Magic64,
		Cpu:    macho.CpuAmd64,
		SubCpu: 3,
		Type:   macho.TypeObj,
		Ncmd:   2,
		Cmdsz:  segSize + symtabSize,
	})
	mustWrite(t, &buf, uint32(0))
	mustWrite(t, &buf, macho.Segment64{
		Cmd:     macho.LoadCmdSegment64,
		Len:     segSize,
		Name:    name16("__TEXT"),
		Addr:    machoTextAddr,
		Memsz:   uint64(len(text)),
		Offset:  textOff,
		Filesz:  uint64(len(text)),
		Maxprot: 7,
		Prot:    5,
		Nsect:   1,
	})
	mustWrite(t, &buf, macho.Section64{
		Name:   name16("__text"),
		Seg:    name16("__TEXT"),
		Addr:   machoTextAddr,
		Size:   uint64(len(text)),
		Offset: textOff,
		Align:  2,
		Flags:  machoPureInstr | machoSomeInstr,
	})
	mustWrite(t, &buf, macho.SymtabCmd{
		Cmd:     macho.LoadCmdSymtab,
		Len:     symtabSize,
		Symoff:  uint32(symOff),
		Nsyms:   uint32(len(nlist)),
		Stroff:  uint32(strOff),
		Strsize: uint32(strtab.Len()),
	})
	buf.Write(text)
	pad(&buf, symOff)
	mustWrite(t, &buf, nlist)
	buf.Write(strtab.Bytes())

	path := filepath.Join(t.TempDir(), "module.o")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "module.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}
