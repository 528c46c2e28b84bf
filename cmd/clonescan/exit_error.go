// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

const (
	// ExitFatal is returned when a command could not complete.
	ExitFatal = 1
	// ExitUnresolved is returned by `resolve` when the reference stays unresolved.
	ExitUnresolved = 2
	// ExitDuplicates is returned by `analyze --fail-on-duplicates` when duplicates were found.
	ExitDuplicates = 3
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
