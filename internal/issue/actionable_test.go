// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{"operation only", &ActionableError{Operation: "load workspace"}, "failed to load workspace"},
		{"with resource", &ActionableError{Operation: "load workspace", Resource: "ws.cue"}, "failed to load workspace: ws.cue"},
		{
			"with cause",
			&ActionableError{Operation: "load workspace", Resource: "ws.cue", Cause: errors.New("no such file")},
			"failed to load workspace: ws.cue: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := NewErrorContext().WithOperation("walk graph").Wrap(fmt.Errorf("wrapped: %w", sentinel)).BuildError()
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should find the sentinel through ActionableError")
	}

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As should find *ActionableError")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := &ActionableError{
		Operation:   "analyze workspace",
		Resource:    "ws.cue",
		Suggestions: []string{"Remove one depends_on entry", "Run with --verbose"},
		Cause:       fmt.Errorf("walk: %w", errors.New("cycle A -> B -> A")),
	}

	short := err.Format(false)
	for _, want := range []string{"failed to analyze workspace: ws.cue", "• Remove one depends_on entry", "• Run with --verbose"} {
		if !strings.Contains(short, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, short)
		}
	}
	if strings.Contains(short, "Error chain") {
		t.Error("non-verbose output must not include the error chain")
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. walk: cycle A -> B -> A", "2. cycle A -> B -> A"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return a nil error")
	}

	ae := NewErrorContext().
		WithOperation("load configuration").
		WithResource("config.cue").
		WithIssue(ConfigLoadFailedId).
		WithSuggestion("a").
		WithSuggestion("b").
		Build()
	if ae.Issue != ConfigLoadFailedId || len(ae.Suggestions) != 2 || !ae.HasSuggestions() {
		t.Errorf("unexpected ActionableError %+v", ae)
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}
	ae := WrapWithContext(errors.New("boom"), "open cache", "/cache")
	if ae.Operation != "open cache" || ae.Resource != "/cache" || ae.Cause == nil {
		t.Errorf("unexpected ActionableError %+v", ae)
	}
}
