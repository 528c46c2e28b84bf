// SPDX-License-Identifier: MPL-2.0

// Package resolver binds library references to artifacts in the local package cache.
//
// Resolution picks the cached version whose major.minor.patch equals the
// requested one, then walks the requester's platform family backward (newest
// to oldest, starting at the requester's own moniker) and returns the first
// artifact found. An artifact targeting a newer platform than the requester is
// never chosen. Every failure is reported as an UnresolvedError, which callers
// treat as a warning.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/clonescan/clonescan/internal/pkgcache"
	"github.com/clonescan/clonescan/pkg/platform"
)

type (
	// Reference names a library and the version a module was built against.
	Reference struct {
		Library string
		Version string
	}

	// Cache is the package cache the resolver reads from.
	Cache interface {
		ListVersions(library string) ([]pkgcache.VersionDir, error)
		ReadManifest(dir pkgcache.VersionDir) (*pkgcache.VersionEntry, error)
	}

	// Resolver binds references to cached artifacts. It holds no per-run state;
	// the lookup set and requester platform are passed to every call.
	Resolver struct {
		cache Cache
	}
)

// New creates a Resolver over the given cache.
func New(cache Cache) *Resolver {
	return &Resolver{cache: cache}
}

// Resolve binds ref to an artifact usable from the requester platform.
//
// A library already present in loaded is returned as-is. Otherwise the chosen
// artifact is added to loaded. Failures are returned as *UnresolvedError;
// only context cancellation yields any other error.
func (r *Resolver) Resolve(ctx context.Context, ref Reference, requester platform.Moniker, loaded *LookupSet) (Binary, error) {
	select {
	case <-ctx.Done():
		return Binary{}, fmt.Errorf("resolve canceled: %w", ctx.Err())
	default:
	}

	if loaded != nil {
		if b, ok := loaded.Get(ref.Library); ok {
			return b, nil
		}
	}

	requested, err := version.NewVersion(ref.Version)
	if err != nil {
		return Binary{}, r.unresolved(ref, ReasonInvalidVersion, err)
	}

	dirs, err := r.cache.ListVersions(ref.Library)
	if err != nil {
		return Binary{}, r.unresolved(ref, ReasonNotFound, err)
	}

	dir, err := SelectVersion(ref.Library, requested, ref.Version, dirs)
	if err != nil {
		if errors.Is(err, ErrAmbiguousVersion) {
			return Binary{}, r.unresolved(ref, ReasonAmbiguousVersion, err)
		}
		return Binary{}, r.unresolved(ref, ReasonNoVersion, err)
	}

	entry, err := r.cache.ReadManifest(dir)
	if err != nil {
		return Binary{}, r.unresolved(ref, ReasonCorruptArchive, err)
	}

	order, err := platform.BackwardOrder(requester)
	if err != nil {
		return Binary{}, r.unresolved(ref, ReasonUnknownMoniker, err)
	}

	for _, m := range order {
		rel, ok := entry.Artifacts[m]
		if !ok {
			continue
		}
		b := Binary{
			Library: ref.Library,
			Version: entry.Version,
			Moniker: m,
			Path:    filepath.Join(entry.Dir, filepath.FromSlash(rel)),
		}
		if loaded != nil {
			b = loaded.Add(b)
		}
		return b, nil
	}

	offered := make([]string, 0, len(entry.Artifacts))
	for m := range entry.Artifacts {
		offered = append(offered, string(m))
	}
	slices.Sort(offered)
	return Binary{}, r.unresolved(ref, ReasonNoCompatibleArtifact, &NoCompatibleArtifactError{
		Library:   ref.Library,
		Version:   entry.Version,
		Requester: string(requester),
		Offered:   offered,
	})
}

func (r *Resolver) unresolved(ref Reference, reason Reason, err error) error {
	return &UnresolvedError{Library: ref.Library, Version: ref.Version, Reason: reason, Err: err}
}

// SelectVersion picks the version directory matching the requested version.
//
// Candidates are the directories with the same major.minor.patch as requested;
// pre-release and build suffixes are ignored for that comparison. A single
// candidate is chosen directly. Among several, the ones equal to the requested
// version (suffix included) are kept, and the directory literally named after
// the request breaks any remaining tie. Zero candidates yield
// NoMatchingVersionError; more than one survivor yields AmbiguousVersionError.
func SelectVersion(library string, requested *version.Version, raw string, dirs []pkgcache.VersionDir) (pkgcache.VersionDir, error) {
	want := triple(requested)

	var candidates []pkgcache.VersionDir
	for _, d := range dirs {
		if triple(d.Version) == want {
			candidates = append(candidates, d)
		}
	}

	switch len(candidates) {
	case 0:
		available := make([]string, 0, len(dirs))
		for _, d := range dirs {
			available = append(available, d.Name)
		}
		return pkgcache.VersionDir{}, &NoMatchingVersionError{Library: library, Requested: raw, Available: available}
	case 1:
		return candidates[0], nil
	}

	var exact []pkgcache.VersionDir
	for _, d := range candidates {
		if d.Version.Equal(requested) {
			exact = append(exact, d)
		}
	}
	if len(exact) > 1 {
		var named []pkgcache.VersionDir
		for _, d := range exact {
			if strings.EqualFold(d.Name, raw) {
				named = append(named, d)
			}
		}
		exact = named
	}
	if len(exact) == 1 {
		return exact[0], nil
	}

	names := make([]string, 0, len(candidates))
	for _, d := range candidates {
		names = append(names, d.Name)
	}
	return pkgcache.VersionDir{}, &AmbiguousVersionError{Library: library, Requested: raw, Candidates: names}
}

// triple returns the major.minor.patch segments of v.
func triple(v *version.Version) [3]int {
	var t [3]int
	copy(t[:], v.Segments())
	return t
}
