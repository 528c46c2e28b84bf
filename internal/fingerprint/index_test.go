// SPDX-License-Identifier: MPL-2.0

package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/clonescan/clonescan/internal/toolchain"
)

func callable(module, typ, member string, body []byte) toolchain.Callable {
	return toolchain.Callable{Module: module, DeclaringType: typ, Member: member, Kind: toolchain.KindMethod, Body: body}
}

func TestDigest_String(t *testing.T) {
	t.Parallel()
	// SHA-1 of "abc".
	got := Sum([]byte("abc")).String()
	expected := "A9993E364706816ABA3E25717850C26C9CD0D89D"
	if got != expected {
		t.Errorf("Sum(abc) = %s, want %s", got, expected)
	}

	var d Digest
	if err := d.UnmarshalText([]byte(expected)); err != nil {
		t.Fatalf("UnmarshalText() error: %v", err)
	}
	if d != Sum([]byte("abc")) {
		t.Error("UnmarshalText() did not restore the digest")
	}
	if err := d.UnmarshalText([]byte("ABCD")); err == nil {
		t.Error("expected error for short digest")
	}
}

func TestObserve_FirstSeenIsCanonical(t *testing.T) {
	t.Parallel()
	x := New()
	body := []byte{0x02, 0x7B, 0x2A}

	if _, dup := x.Observe(callable("X", "T", "Foo", body)); dup {
		t.Fatal("first observation must not be a duplicate")
	}
	if _, dup := x.Observe(callable("Y", "T", "Bar", []byte{0x01})); dup {
		t.Fatal("distinct body must not be a duplicate")
	}
	d, dup := x.Observe(callable("Z", "T", "Foo", body))
	if !dup {
		t.Fatal("identical body must be a duplicate")
	}
	if d.Canonical != "X:T.Foo" || d.Duplicate != "Z:T.Foo" {
		t.Errorf("duplicate = %+v, want canonical X:T.Foo duplicate Z:T.Foo", d)
	}
	if d.Digest != Sum(body) {
		t.Error("duplicate digest mismatch")
	}

	name, ok := x.Lookup(Sum(body))
	if !ok || name != "X:T.Foo" {
		t.Errorf("Lookup() = %q, %v; canonical must never be overwritten", name, ok)
	}
}

func TestObserve_NWayDuplicate(t *testing.T) {
	t.Parallel()
	x := New()
	body := []byte("ret")
	for i := range 4 {
		x.Observe(callable(fmt.Sprintf("M%d", i), "T", "Same", body))
	}

	dups := x.Duplicates()
	if len(dups) != 3 {
		t.Fatalf("4 identical bodies should produce 3 duplicates, got %d", len(dups))
	}
	for i, d := range dups {
		if d.Canonical != "M0:T.Same" {
			t.Errorf("dup %d canonical = %q, want M0:T.Same", i, d.Canonical)
		}
		if want := fmt.Sprintf("M%d:T.Same", i+1); d.Duplicate != want {
			t.Errorf("dup %d = %q, want %q", i, d.Duplicate, want)
		}
	}
}

func TestObserve_AbsentBodyIsNoOp(t *testing.T) {
	t.Parallel()
	x := New()

	x.Observe(callable("A", "T", "Abstract", nil))
	x.Observe(callable("B", "T", "Abstract", nil))

	if len(x.Records()) != 0 || len(x.Duplicates()) != 0 {
		t.Error("callables without a body must not be recorded")
	}
	stats := x.Stats()
	if stats.Observed != 2 || stats.Absent != 2 || stats.Unique != 0 {
		t.Errorf("Stats() = %+v, want 2 observed 2 absent 0 unique", stats)
	}

	// An empty but present body is still a body.
	x.Observe(callable("C", "T", "Empty", []byte{}))
	if len(x.Records()) != 1 {
		t.Error("empty present body should be recorded")
	}
}

func TestObserveAll_OrderIndependentOfWorkers(t *testing.T) {
	t.Parallel()

	var callables []toolchain.Callable
	for i := range 200 {
		body := []byte{byte(i % 17)}
		if i%23 == 0 {
			body = nil
		}
		callables = append(callables, callable("Mod", fmt.Sprintf("T%d", i%5), fmt.Sprintf("M%d", i), body))
	}

	serial := New()
	for _, c := range callables {
		serial.Observe(c)
	}

	for _, workers := range []int{0, 1, 3, 16} {
		x := New()
		dups, err := x.ObserveAll(context.Background(), callables, workers)
		if err != nil {
			t.Fatalf("ObserveAll(workers=%d) error: %v", workers, err)
		}
		if !slices.Equal(dups, serial.Duplicates()) {
			t.Errorf("workers=%d: duplicates differ from serial observation", workers)
		}
		if !slices.Equal(x.Records(), serial.Records()) {
			t.Errorf("workers=%d: records differ from serial observation", workers)
		}
		if x.Stats() != serial.Stats() {
			t.Errorf("workers=%d: stats %+v, want %+v", workers, x.Stats(), serial.Stats())
		}
	}
}

func TestPrepare_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Prepare(ctx, []toolchain.Callable{callable("A", "T", "M", []byte("x"))}, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Prepare() error = %v, want context.Canceled", err)
	}
}

func TestCommit_AcrossModulesKeepsCommitOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	body := []byte("shared")

	// Module B is hashed first but committed second.
	preparedB, err := Prepare(ctx, []toolchain.Callable{callable("B", "T", "M", body)}, 2)
	if err != nil {
		t.Fatal(err)
	}
	preparedA, err := Prepare(ctx, []toolchain.Callable{callable("A", "T", "M", body)}, 2)
	if err != nil {
		t.Fatal(err)
	}

	x := New()
	x.Commit(preparedA)
	dups := x.Commit(preparedB)
	if len(dups) != 1 || dups[0].Canonical != "A:T.M" || dups[0].Duplicate != "B:T.M" {
		t.Errorf("Commit() duplicates = %+v, want A canonical B duplicate", dups)
	}
}
