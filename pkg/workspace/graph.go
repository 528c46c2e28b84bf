// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/clonescan/clonescan/internal/dag"
	"github.com/clonescan/clonescan/pkg/platform"
)

type (
	// Reference is a binary library a module was built against.
	Reference struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}

	// Module describes one compilable unit of the workspace.
	Module struct {
		Name string `json:"name,omitempty"`
		// Project is the project file the module is built from. The module name
		// defaults to its base name without extension.
		Project string `json:"project,omitempty"`
		// Target is the module's platform moniker. It is normalized when the
		// catalog knows it and kept verbatim otherwise.
		Target platform.Moniker `json:"target"`
		// Output is the path of the compiled module.
		Output     string      `json:"output"`
		DependsOn  []string    `json:"depends_on,omitempty"`
		References []Reference `json:"references,omitempty"`
	}

	// Graph is a validated set of modules and their dependency edges.
	Graph struct {
		name    string
		modules []Module
		byName  map[string]int
		deps    *dag.Graph
	}
)

// NewGraph validates the modules and builds their dependency graph.
// Every problem found is reported; the returned error is a multierror of
// *InvalidModuleError and *UnknownDependencyError values.
func NewGraph(name string, modules []Module) (*Graph, error) {
	g := &Graph{
		name:    name,
		modules: make([]Module, 0, len(modules)),
		byName:  make(map[string]int, len(modules)),
		deps:    dag.New(),
	}

	var result *multierror.Error
	for i, m := range modules {
		m.Name = moduleName(m)
		if m.Name == "" {
			result = multierror.Append(result, &InvalidModuleError{Index: i, Reason: "either name or project must be set"})
			continue
		}
		if _, dup := g.byName[m.Name]; dup {
			result = multierror.Append(result, &InvalidModuleError{Index: i, Name: m.Name, Reason: "duplicate module name"})
			continue
		}
		if n, err := platform.Normalize(string(m.Target)); err == nil {
			m.Target = n
		}
		m.DependsOn = slices.Clone(m.DependsOn)
		m.References = slices.Clone(m.References)

		g.byName[m.Name] = len(g.modules)
		g.modules = append(g.modules, m)
		g.deps.AddNode(m.Name)
	}

	for _, m := range g.modules {
		for _, dep := range m.DependsOn {
			if _, ok := g.byName[dep]; !ok {
				result = multierror.Append(result, &UnknownDependencyError{Module: m.Name, Dependency: dep})
				continue
			}
			g.deps.AddEdge(dep, m.Name)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return g, nil
}

func moduleName(m Module) string {
	if name := strings.TrimSpace(m.Name); name != "" {
		return name
	}
	if m.Project == "" {
		return ""
	}
	base := filepath.Base(filepath.FromSlash(m.Project))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Name returns the workspace name, which may be empty.
func (g *Graph) Name() string {
	return g.name
}

// Modules returns the modules in declaration order.
func (g *Graph) Modules() []Module {
	return slices.Clone(g.modules)
}

// Module returns the module with the given name.
func (g *Graph) Module(name string) (Module, bool) {
	i, ok := g.byName[name]
	if !ok {
		return Module{}, false
	}
	return g.modules[i], true
}

// Len returns the number of modules.
func (g *Graph) Len() int {
	return len(g.modules)
}

// Levels groups the modules so that every module's dependencies sit in
// earlier levels. Modules in one level are independent of each other and keep
// declaration order. Returns *CyclicGraphError when dependencies form a cycle.
func (g *Graph) Levels() ([][]Module, error) {
	names, err := g.deps.Levels()
	if err != nil {
		var cycleErr *dag.CycleError
		if errors.As(err, &cycleErr) {
			return nil, &CyclicGraphError{Cycle: cycleErr.Cycle}
		}
		return nil, err
	}

	levels := make([][]Module, 0, len(names))
	for _, level := range names {
		mods := make([]Module, 0, len(level))
		for _, name := range level {
			mods = append(mods, g.modules[g.byName[name]])
		}
		levels = append(levels, mods)
	}
	return levels, nil
}

// Order returns the modules in dependency order: the concatenation of Levels.
func (g *Graph) Order() ([]Module, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	order := make([]Module, 0, len(g.modules))
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}
