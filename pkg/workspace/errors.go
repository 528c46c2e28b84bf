// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWorkspaceNotFound is the sentinel error wrapped by WorkspaceNotFoundError.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrCyclicGraph is the sentinel error wrapped by CyclicGraphError.
	ErrCyclicGraph = errors.New("cyclic module graph")
	// ErrUnknownDependency is the sentinel error wrapped by UnknownDependencyError.
	ErrUnknownDependency = errors.New("unknown module dependency")
	// ErrInvalidModule is the sentinel error wrapped by InvalidModuleError.
	ErrInvalidModule = errors.New("invalid module")
)

type (
	// WorkspaceNotFoundError is returned when the workspace description cannot be read.
	WorkspaceNotFoundError struct {
		Path string
		Err  error
	}

	// CyclicGraphError is returned when module dependencies form a cycle.
	CyclicGraphError struct {
		// Cycle is a closed path of module names, e.g. [A, B, A].
		Cycle []string
	}

	// UnknownDependencyError is returned when a module depends on a name no module declares.
	UnknownDependencyError struct {
		Module     string
		Dependency string
	}

	// InvalidModuleError is returned for a module entry that cannot be used.
	InvalidModuleError struct {
		Index  int
		Name   string
		Reason string
	}
)

// Error implements the error interface.
func (e *WorkspaceNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("workspace %s not found: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("workspace %s not found", e.Path)
}

// Unwrap returns ErrWorkspaceNotFound and the underlying cause.
func (e *WorkspaceNotFoundError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrWorkspaceNotFound, e.Err}
	}
	return []error{ErrWorkspaceNotFound}
}

// Error implements the error interface.
func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("module dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrCyclicGraph so callers can use errors.Is for programmatic detection.
func (e *CyclicGraphError) Unwrap() error { return ErrCyclicGraph }

// Error implements the error interface.
func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("module %q depends on unknown module %q", e.Module, e.Dependency)
}

// Unwrap returns ErrUnknownDependency so callers can use errors.Is for programmatic detection.
func (e *UnknownDependencyError) Unwrap() error { return ErrUnknownDependency }

// Error implements the error interface.
func (e *InvalidModuleError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("modules[%d] (%s): %s", e.Index, e.Name, e.Reason)
	}
	return fmt.Sprintf("modules[%d]: %s", e.Index, e.Reason)
}

// Unwrap returns ErrInvalidModule so callers can use errors.Is for programmatic detection.
func (e *InvalidModuleError) Unwrap() error { return ErrInvalidModule }
