// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"fmt"
)

type (
	// Extraction is what an Extractor found in one Unit.
	Extraction struct {
		// Callables are in enumeration order: declaring types in order of
		// first appearance, members in symbol order within a type.
		Callables []Callable
		// TypeErrors lists the declaring types that were dropped.
		TypeErrors []*TypeError
	}

	// Extractor enumerates the callables of a compiled unit. A returned error
	// means the unit could not be read at all; failures confined to one
	// declaring type are reported in Extraction.TypeErrors instead.
	Extractor interface {
		Extract(ctx context.Context, unit *Unit) (*Extraction, error)
	}

	// FormatExtractor dispatches on Unit.Format.
	FormatExtractor struct{}

	typeGroup struct {
		name    string
		members []Callable
		err     error
	}

	// collector groups callables by declaring type while keeping first-seen order.
	collector struct {
		module string
		groups []*typeGroup
		byName map[string]*typeGroup
	}
)

// NewExtractor returns an Extractor for every Format this package produces.
func NewExtractor() *FormatExtractor {
	return &FormatExtractor{}
}

// Extract reads the unit with the reader matching its format.
func (FormatExtractor) Extract(ctx context.Context, unit *Unit) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := newCollector(unit.Module.Name)

	var err error
	switch unit.Format {
	case FormatELF:
		err = extractELF(unit.Path, c)
	case FormatMachO:
		err = extractMachO(unit.Path, c)
	case FormatDump:
		err = extractDump(unit.Path, c)
	default:
		err = fmt.Errorf("%s: %w", unit.Format, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	return c.result(), nil
}

func newCollector(module string) *collector {
	return &collector{module: module, byName: make(map[string]*typeGroup)}
}

func (c *collector) group(declaringType string) *typeGroup {
	g, ok := c.byName[declaringType]
	if !ok {
		g = &typeGroup{name: declaringType}
		c.byName[declaringType] = g
		c.groups = append(c.groups, g)
	}
	return g
}

func (c *collector) add(declaringType, member string, kind CallableKind, body []byte) {
	g := c.group(declaringType)
	if g.err != nil {
		return
	}
	if kind == "" {
		kind = kindOf("", declaringType, member)
	}
	g.members = append(g.members, Callable{
		Module:        c.module,
		DeclaringType: declaringType,
		Member:        member,
		Kind:          kind,
		Body:          body,
	})
}

// fail drops every member of the type. The first error is kept.
func (c *collector) fail(declaringType string, err error) {
	g := c.group(declaringType)
	if g.err == nil {
		g.err = err
	}
	g.members = nil
}

func (c *collector) result() *Extraction {
	out := &Extraction{}
	for _, g := range c.groups {
		if g.err != nil {
			out.TypeErrors = append(out.TypeErrors, &TypeError{Module: c.module, Type: g.name, Err: g.err})
			continue
		}
		out.Callables = append(out.Callables, g.members...)
	}
	return out
}
