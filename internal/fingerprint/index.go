// SPDX-License-Identifier: MPL-2.0

// Package fingerprint detects callables whose compiled bodies are byte-for-byte identical.
//
// Every body is reduced to its SHA-1 digest. The first callable observed with a
// digest becomes the canonical holder; each later callable with the same digest
// produces a Duplicate entry pointing back at the canonical one. Callables
// without a body are ignored. Observation order is the only input that decides
// which callable is canonical, so feeding the same callables in the same order
// always yields the same report.
package fingerprint

import (
	"context"
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/clonescan/clonescan/internal/toolchain"
)

type (
	// Digest is the 160-bit fingerprint of a callable body.
	Digest [sha1.Size]byte

	// Record maps a digest to the qualified name of its canonical callable.
	Record struct {
		Digest    Digest `json:"digest" toml:"digest"`
		Canonical string `json:"canonical" toml:"canonical"`
	}

	// Duplicate reports a callable whose body matches an earlier canonical one.
	Duplicate struct {
		Digest    Digest `json:"digest" toml:"digest"`
		Canonical string `json:"canonical" toml:"canonical"`
		Duplicate string `json:"duplicate" toml:"duplicate"`
	}

	// Stats summarizes what an Index has observed.
	Stats struct {
		Observed int `json:"observed" toml:"observed"`
		Absent   int `json:"absent" toml:"absent"`
		Unique   int `json:"unique" toml:"unique"`
	}

	// Prepared is a callable paired with its precomputed digest, ready to be committed.
	Prepared struct {
		Callable toolchain.Callable
		Digest   Digest
	}

	// Index is the run-wide collision index. It is safe for concurrent use;
	// entries are never removed or replaced.
	Index struct {
		mu         sync.Mutex
		canonical  map[Digest]string
		records    []Record
		duplicates []Duplicate
		stats      Stats
	}
)

// Sum returns the digest of a body.
func Sum(body []byte) Digest {
	return sha1.Sum(body) //nolint:gosec // content fingerprint
}

// String returns the digest as upper-case hex.
func (d Digest) String() string {
	return strings.ToUpper(hex.EncodeToString(d[:]))
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid digest %q: %w", text, err)
	}
	if len(raw) != len(d) {
		return fmt.Errorf("invalid digest %q: want %d bytes, got %d", text, len(d), len(raw))
	}
	copy(d[:], raw)
	return nil
}

// New creates an empty Index.
func New() *Index {
	return &Index{canonical: make(map[Digest]string)}
}

// Observe records one callable. It returns the duplicate entry and true when
// the body matches an existing canonical callable. Callables without a body
// are counted and otherwise ignored.
func (x *Index) Observe(c toolchain.Callable) (Duplicate, bool) {
	if !c.HasBody() {
		x.mu.Lock()
		x.stats.Observed++
		x.stats.Absent++
		x.mu.Unlock()
		return Duplicate{}, false
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	return x.commitLocked(c, Sum(c.Body))
}

// Prepare hashes the callables with up to workers goroutines. The result keeps
// input order; absent bodies are carried through unhashed.
func Prepare(ctx context.Context, callables []toolchain.Callable, workers int) ([]Prepared, error) {
	prepared := make([]Prepared, len(callables))
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range callables {
		prepared[i].Callable = c
		if !c.HasBody() {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			prepared[i].Digest = Sum(c.Body)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fingerprinting canceled: %w", err)
	}
	return prepared, nil
}

// Commit records prepared callables in slice order and returns the duplicates
// they produced, in the same order.
func (x *Index) Commit(prepared []Prepared) []Duplicate {
	x.mu.Lock()
	defer x.mu.Unlock()

	var dups []Duplicate
	for _, p := range prepared {
		if !p.Callable.HasBody() {
			x.stats.Observed++
			x.stats.Absent++
			continue
		}
		if d, ok := x.commitLocked(p.Callable, p.Digest); ok {
			dups = append(dups, d)
		}
	}
	return dups
}

// ObserveAll hashes the callables in parallel and commits them in input order.
func (x *Index) ObserveAll(ctx context.Context, callables []toolchain.Callable, workers int) ([]Duplicate, error) {
	prepared, err := Prepare(ctx, callables, workers)
	if err != nil {
		return nil, err
	}
	return x.Commit(prepared), nil
}

func (x *Index) commitLocked(c toolchain.Callable, d Digest) (Duplicate, bool) {
	x.stats.Observed++
	name := c.QualifiedName()

	canonical, seen := x.canonical[d]
	if !seen {
		x.canonical[d] = name
		x.records = append(x.records, Record{Digest: d, Canonical: name})
		x.stats.Unique++
		return Duplicate{}, false
	}

	dup := Duplicate{Digest: d, Canonical: canonical, Duplicate: name}
	x.duplicates = append(x.duplicates, dup)
	return dup, true
}

// Lookup returns the canonical qualified name for a digest.
func (x *Index) Lookup(d Digest) (string, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	name, ok := x.canonical[d]
	return name, ok
}

// Records returns the canonical records in insertion order.
func (x *Index) Records() []Record {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]Record(nil), x.records...)
}

// Duplicates returns every duplicate entry in emission order.
func (x *Index) Duplicates() []Duplicate {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]Duplicate(nil), x.duplicates...)
}

// Stats returns the observation counters.
func (x *Index) Stats() Stats {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.stats
}
