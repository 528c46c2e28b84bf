// SPDX-License-Identifier: MPL-2.0

// Package workspace loads the module graph an analysis walks.
//
// A workspace is described in CUE (clonescan.cue) or YAML (clonescan.yaml).
// Both are validated against the embedded #Workspace schema. Each module names
// its compiled output, its target platform, the binary libraries it references
// and the modules it depends on. Graph.Order and Graph.Levels return modules
// so that dependencies always come before their dependents.
package workspace
