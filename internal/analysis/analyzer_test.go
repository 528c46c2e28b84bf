// SPDX-License-Identifier: MPL-2.0

package analysis

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/clonescan/clonescan/internal/fingerprint"
	"github.com/clonescan/clonescan/internal/pkgcache"
	"github.com/clonescan/clonescan/internal/resolver"
	"github.com/clonescan/clonescan/internal/testutil"
	"github.com/clonescan/clonescan/internal/toolchain"
	"github.com/clonescan/clonescan/pkg/workspace"
)

var (
	fooBody = []byte{0x02, 0x7b, 0x01, 0x00, 0x00, 0x04, 0x2a}
	barBody = []byte{0x16, 0x2a}
)

func writeModule(t *testing.T, dir, name string, callables ...toolchain.Callable) string {
	t.Helper()
	data, err := toolchain.EncodeDump(callables)
	if err != nil {
		t.Fatalf("EncodeDump: %v", err)
	}
	path := filepath.Join(dir, name+".jsonl")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func method(typ, member string, body []byte) toolchain.Callable {
	return toolchain.Callable{DeclaringType: typ, Member: member, Kind: toolchain.KindMethod, Body: body}
}

func newAnalyzer(t *testing.T, cacheRoot string, opts Options) *Analyzer {
	t.Helper()
	if cacheRoot == "" {
		cacheRoot = t.TempDir()
	}
	scanner, err := pkgcache.NewScanner(cacheRoot)
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return New(toolchain.NewPrebuilt(), toolchain.NewExtractor(), resolver.New(scanner), opts)
}

func mustGraph(t *testing.T, modules ...workspace.Module) *workspace.Graph {
	t.Helper()
	g, err := workspace.NewGraph("test", modules)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

// xyzGraph is X (no deps), Y and Z (both on X). X and Z share a Foo body.
func xyzGraph(t *testing.T) *workspace.Graph {
	t.Helper()
	dir := t.TempDir()
	return mustGraph(t,
		workspace.Module{Name: "X", Target: "net6.0", Output: writeModule(t, dir, "X", method("T", "Foo", fooBody))},
		workspace.Module{Name: "Y", Target: "net6.0", DependsOn: []string{"X"}, Output: writeModule(t, dir, "Y", method("T", "Bar", barBody))},
		workspace.Module{Name: "Z", Target: "net6.0", DependsOn: []string{"X"}, Output: writeModule(t, dir, "Z", method("T", "Foo", fooBody))},
	)
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	report, err := newAnalyzer(t, "", Options{}).Run(context.Background(), xyzGraph(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []fingerprint.Duplicate{{Digest: fingerprint.Sum(fooBody), Canonical: "X:T.Foo", Duplicate: "Z:T.Foo"}}
	if diff := cmp.Diff(want, report.Duplicates); diff != "" {
		t.Errorf("Duplicates mismatch (-want +got):\n%s", diff)
	}
	if len(report.Failures) != 0 || len(report.Unresolved) != 0 {
		t.Errorf("unexpected failures %v or unresolved %v", report.Failures, report.Unresolved)
	}
	wantStats := Stats{Modules: 3, Compiled: 3, Callables: 3, Unique: 2, Duplicates: 1}
	if report.Stats != wantStats {
		t.Errorf("Stats = %+v, want %+v", report.Stats, wantStats)
	}
}

func TestRun_DeterministicAcrossParallelism(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	shared := []byte{0xde, 0xad, 0xbe, 0xef}
	var modules []workspace.Module
	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		deps := []string(nil)
		if name != "A" {
			deps = []string{"A"}
		}
		modules = append(modules, workspace.Module{
			Name:      name,
			Target:    "net8.0",
			DependsOn: deps,
			Output: writeModule(t, dir, name,
				method("Shared", "Run", shared),
				method(name+".Own", "Run", []byte(name)),
				method("Shared", "Abstract", nil),
			),
		})
	}
	graph := mustGraph(t, modules...)

	serial, err := newAnalyzer(t, "", Options{Parallelism: 1, HashWorkers: 1}).Run(context.Background(), graph)
	if err != nil {
		t.Fatalf("serial Run() error = %v", err)
	}
	for range 3 {
		parallel, err := newAnalyzer(t, "", Options{Parallelism: 4, HashWorkers: 8}).Run(context.Background(), graph)
		if err != nil {
			t.Fatalf("parallel Run() error = %v", err)
		}
		if diff := cmp.Diff(serial, parallel); diff != "" {
			t.Fatalf("parallel report differs (-serial +parallel):\n%s", diff)
		}
	}

	if len(serial.Duplicates) != 5 {
		t.Fatalf("got %d duplicates, want 5 (N-1 for a 6-way match)", len(serial.Duplicates))
	}
	for _, d := range serial.Duplicates {
		if d.Canonical != "A:Shared.Run" {
			t.Errorf("canonical = %q, want A:Shared.Run", d.Canonical)
		}
	}
	if serial.Stats.Absent != 6 {
		t.Errorf("Absent = %d, want 6", serial.Stats.Absent)
	}
}

func TestRun_CyclicGraphAborts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	graph := mustGraph(t,
		workspace.Module{Name: "A", Target: "net6.0", DependsOn: []string{"B"}, Output: writeModule(t, dir, "A")},
		workspace.Module{Name: "B", Target: "net6.0", DependsOn: []string{"A"}, Output: writeModule(t, dir, "B")},
	)

	var states []State
	a := newAnalyzer(t, "", Options{OnTransition: func(tr Transition) { states = append(states, tr.State) }})
	report, err := a.Run(context.Background(), graph)

	var cycleErr *workspace.CyclicGraphError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Run() error = %v, want *CyclicGraphError", err)
	}
	if report != nil {
		t.Error("no report may be emitted for a cyclic graph")
	}
	if want := []State{StateInit, StateWalking, StateAborted}; !slices.Equal(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}

func TestRun_PartialResults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cache := t.TempDir()
	testutil.WritePackage(t, cache, testutil.CachedPackage{
		Library:   "Acme.Json",
		Version:   "13.0.1",
		Platforms: []string{"net5.0"},
	})

	broken := filepath.Join(dir, "Broken.jsonl")
	if err := os.WriteFile(broken, []byte(`{"type": "T", "member": "M", "body": "***"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	graph := mustGraph(t,
		workspace.Module{Name: "Core", Target: "net6.0", Output: writeModule(t, dir, "Core", method("T", "Foo", fooBody))},
		workspace.Module{Name: "Missing", Target: "net6.0", Output: filepath.Join(dir, "nope.so")},
		workspace.Module{
			Name:      "App",
			Target:    "net6.0",
			DependsOn: []string{"Core"},
			References: []workspace.Reference{
				{Name: "Core", Version: "1.0.0"},
				{Name: "Acme.Json", Version: "13.0.1"},
				{Name: "Absent.Lib", Version: "2.0.0"},
			},
			Output: writeModule(t, dir, "App", method("T", "Foo", fooBody)),
		},
		workspace.Module{Name: "Broken", Target: "net6.0", Output: broken},
	)

	report, err := newAnalyzer(t, cache, Options{}).Run(context.Background(), graph)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Failures) != 1 || report.Failures[0].Module != "Missing" {
		t.Errorf("Failures = %+v, want Missing only", report.Failures)
	}
	wantUnresolved := []Unresolved{{Module: "App", Library: "Absent.Lib", Version: "2.0.0", Reason: resolver.ReasonNotFound}}
	if diff := cmp.Diff(wantUnresolved, report.Unresolved, cmpIgnoreDetail()); diff != "" {
		t.Errorf("Unresolved mismatch (-want +got):\n%s", diff)
	}
	if len(report.Duplicates) != 1 || report.Duplicates[0].Duplicate != "App:T.Foo" {
		t.Errorf("module with unresolved references must still contribute callables, got %+v", report.Duplicates)
	}
	if len(report.ExtractionWarnings) != 1 || report.ExtractionWarnings[0].Type != "T" {
		t.Errorf("ExtractionWarnings = %+v", report.ExtractionWarnings)
	}
	if report.Stats.Compiled != 3 {
		t.Errorf("Compiled = %d, want 3", report.Stats.Compiled)
	}
}

func cmpIgnoreDetail() cmp.Option {
	return cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".Detail"
	}, cmp.Ignore())
}

func TestRun_Transitions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	graph := mustGraph(t, workspace.Module{
		Name:       "Solo",
		Target:     "net6.0",
		References: []workspace.Reference{{Name: "Lib", Version: "1.0.0"}},
		Output:     writeModule(t, dir, "Solo", method("T", "M", barBody)),
	})

	var mu sync.Mutex
	var got []Transition
	a := newAnalyzer(t, "", Options{OnTransition: func(tr Transition) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, tr)
	}})
	if _, err := a.Run(context.Background(), graph); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []Transition{
		{State: StateInit},
		{State: StateWalking},
		{State: StateCompiling, Module: "Solo"},
		{State: StateResolving, Module: "Solo", Library: "Lib"},
		{State: StateExtracting, Module: "Solo"},
		{State: StateFingerprinting, Module: "Solo"},
		{State: StateReporting},
		{State: StateDone},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newAnalyzer(t, "", Options{}).Run(ctx, xyzGraph(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if report != nil {
		t.Error("canceled run must not return a report")
	}
}

func TestReport_DuplicateGroups(t *testing.T) {
	t.Parallel()

	d1, d2 := fingerprint.Sum([]byte("a")), fingerprint.Sum([]byte("b"))
	r := &Report{Duplicates: []fingerprint.Duplicate{
		{Digest: d1, Canonical: "X:T.A", Duplicate: "Y:T.A"},
		{Digest: d2, Canonical: "X:T.B", Duplicate: "Y:T.B"},
		{Digest: d1, Canonical: "X:T.A", Duplicate: "Z:T.A"},
	}}

	groups := r.DuplicateGroups()
	if len(groups) != 2 || groups[0].Canonical != "X:T.A" || !slices.Equal(groups[0].Duplicates, []string{"Y:T.A", "Z:T.A"}) {
		t.Errorf("DuplicateGroups() = %+v", groups)
	}
}
