// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"fmt"
)

var (
	// ErrCompile is the sentinel error wrapped by CompileError.
	ErrCompile = errors.New("compile failed")
	// ErrUnsupportedFormat is returned when a compiled output is not a known format.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// CompileError is returned when a module yields no usable compiled output.
type CompileError struct {
	Module string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compile %s: %s: %v", e.Module, e.Reason, e.Err)
	}
	return fmt.Sprintf("compile %s: %s", e.Module, e.Reason)
}

// Unwrap returns ErrCompile and the underlying cause.
func (e *CompileError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCompile, e.Err}
	}
	return []error{ErrCompile}
}
