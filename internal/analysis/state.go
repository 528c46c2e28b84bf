// SPDX-License-Identifier: MPL-2.0

package analysis

const (
	// StateInit is the state before Run starts walking the graph.
	StateInit State = iota
	// StateWalking orders the module graph.
	StateWalking
	// StateCompiling compiles one module.
	StateCompiling
	// StateResolving resolves one reference of the module being compiled.
	StateResolving
	// StateExtracting enumerates the callables of one compiled module.
	StateExtracting
	// StateFingerprinting hashes and indexes the callables of one module.
	StateFingerprinting
	// StateReporting assembles the report.
	StateReporting
	// StateDone is terminal: the report is complete.
	StateDone
	// StateAborted is terminal: a fatal error ended the run without a report.
	StateAborted
)

type (
	// State is a step of an analysis run.
	State int32

	// Transition is passed to Options.OnTransition on every state change.
	// Module is empty for run-level states; Library is set while resolving.
	Transition struct {
		State   State
		Module  string
		Library string
	}
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateWalking:
		return "walking"
	case StateCompiling:
		return "compiling"
	case StateResolving:
		return "resolving"
	case StateExtracting:
		return "extracting"
	case StateFingerprinting:
		return "fingerprinting"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for StateDone and StateAborted.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateAborted
}
