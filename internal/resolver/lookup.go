// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"strings"
	"sync"

	"github.com/clonescan/clonescan/pkg/platform"
)

type (
	// Binary is a library artifact bound for the current run.
	Binary struct {
		Library string
		Version string
		Moniker platform.Moniker
		// Path is the absolute artifact path.
		Path string
	}

	// LookupSet holds the binaries already bound during a run, keyed by library
	// name (case-insensitive). It is safe for concurrent use; the first binary
	// added for a library wins.
	LookupSet struct {
		mu     sync.Mutex
		byName map[string]Binary
		order  []string
	}
)

// NewLookupSet creates an empty LookupSet.
func NewLookupSet() *LookupSet {
	return &LookupSet{byName: make(map[string]Binary)}
}

// Get returns the binary bound for a library, if any.
func (l *LookupSet) Get(library string) (Binary, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.byName[strings.ToLower(library)]
	return b, ok
}

// Add binds a binary unless the library is already bound, and returns the
// binary that ends up bound.
func (l *LookupSet) Add(b Binary) Binary {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := strings.ToLower(b.Library)
	if existing, ok := l.byName[key]; ok {
		return existing
	}
	l.byName[key] = b
	l.order = append(l.order, key)
	return b
}

// Binaries returns the bound binaries in binding order.
func (l *LookupSet) Binaries() []Binary {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Binary, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.byName[key])
	}
	return out
}

// Len returns the number of bound binaries.
func (l *LookupSet) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}
