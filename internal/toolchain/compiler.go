// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/clonescan/clonescan/pkg/workspace"
)

const (
	// FormatELF is an ELF object or executable.
	FormatELF Format = "elf"
	// FormatMachO is a thin Mach-O object or executable.
	FormatMachO Format = "macho"
	// FormatDump is a callable dump: one JSON callable record per line.
	FormatDump Format = "dump"
)

type (
	// Format identifies the layout of a compiled output.
	Format string

	// ResolveFunc binds one library reference and returns the path of the
	// artifact it was bound to.
	ResolveFunc func(ctx context.Context, ref workspace.Reference) (string, error)

	// BoundReference is the outcome of resolving one reference during compilation.
	BoundReference struct {
		Reference workspace.Reference
		// Path is empty when Err is set.
		Path string
		Err  error
	}

	// Unit is the compiled form of one module.
	Unit struct {
		Module     workspace.Module
		Path       string
		Format     Format
		References []BoundReference
	}

	// Compiler produces the compiled form of a module.
	//
	// Resolve errors never fail a compilation; they are recorded on the Unit
	// and the module still compiles as far as it can.
	Compiler interface {
		Compile(ctx context.Context, module workspace.Module, resolve ResolveFunc) (*Unit, error)
	}

	// Prebuilt is a Compiler that uses output produced by an external build.
	Prebuilt struct{}
)

var (
	elfMagic   = []byte{0x7f, 'E', 'L', 'F'}
	machoMagic = []uint32{0xfeedface, 0xfeedfacf, 0xcefaedfe, 0xcffaedfe}
)

// NewPrebuilt returns a Compiler for already-built module output.
func NewPrebuilt() *Prebuilt {
	return &Prebuilt{}
}

// Compile binds the module's references and locates its compiled output.
func (p *Prebuilt) Compile(ctx context.Context, module workspace.Module, resolve ResolveFunc) (*Unit, error) {
	unit := &Unit{Module: module, Path: module.Output}

	for _, ref := range module.References {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bound := BoundReference{Reference: ref}
		if resolve != nil {
			bound.Path, bound.Err = resolve(ctx, ref)
		}
		unit.References = append(unit.References, bound)
	}

	if module.Output == "" {
		return nil, &CompileError{Module: module.Name, Reason: "no output declared"}
	}

	format, err := SniffFormat(module.Output)
	if err != nil {
		return nil, &CompileError{Module: module.Name, Reason: "unusable output " + module.Output, Err: err}
	}
	unit.Format = format
	return unit, nil
}

// SniffFormat detects the format of a compiled output from its leading bytes.
// Files ending in .jsonl, or whose first non-blank byte opens a JSON object,
// are callable dumps.
func SniffFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	head, err := r.Peek(4)
	if err != nil && err != io.EOF {
		return "", err
	}

	if bytes.Equal(head, elfMagic) {
		return FormatELF, nil
	}
	if len(head) == 4 {
		if slices.Contains(machoMagic, binary.BigEndian.Uint32(head)) {
			return FormatMachO, nil
		}
	}

	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return FormatDump, nil
	}
	if firstNonBlank(r) == '{' {
		return FormatDump, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

func firstNonBlank(r *bufio.Reader) byte {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0
		}
		if b != ' ' && b != '\t' && b != '\r' && b != '\n' {
			return b
		}
	}
}
