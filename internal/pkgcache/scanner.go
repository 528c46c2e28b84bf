// SPDX-License-Identifier: MPL-2.0

package pkgcache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-version"

	"github.com/clonescan/clonescan/pkg/platform"
)

type (
	// Scanner lists and reads version directories of the package cache.
	// It is safe for concurrent use.
	Scanner struct {
		root     string
		verifier SignatureVerifier

		mu        sync.Mutex
		manifests map[string]manifestResult
	}

	// Option configures a Scanner.
	Option func(*Scanner)

	// VersionDir is one version directory of a library in the cache.
	VersionDir struct {
		// Library is the library name as requested by the caller.
		Library string
		// Name is the directory name, which is the version string.
		Name string
		// Version is the parsed directory name.
		Version *version.Version
		// Path is the absolute directory path.
		Path string
	}

	// VersionEntry describes the artifacts one library version offers.
	// Entries returned by ReadManifest are shared and must be treated as read-only.
	VersionEntry struct {
		Library string
		Version string
		// Dir is the absolute path of the version directory.
		Dir string
		// Artifacts maps a platform moniker to an artifact path relative to Dir.
		Artifacts map[platform.Moniker]string
	}

	manifestResult struct {
		entry *VersionEntry
		err   error
	}
)

// WithSignatureVerifier enables detached-signature checks on package archives.
func WithSignatureVerifier(v SignatureVerifier) Option {
	return func(s *Scanner) {
		s.verifier = v
	}
}

// NewScanner creates a Scanner rooted at the given cache directory.
func NewScanner(root string, opts ...Option) (*Scanner, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory: %w", err)
	}

	s := &Scanner{
		root:      absRoot,
		manifests: make(map[string]manifestResult),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute cache root.
func (s *Scanner) Root() string {
	return s.root
}

// ListVersions returns the version directories of a library, oldest first.
// Directories whose name does not parse as a version are skipped.
// Returns LibraryNotFoundError when the cache has no directory for the library.
func (s *Scanner) ListVersions(library string) ([]VersionDir, error) {
	libDir, ok := s.libraryDir(library)
	if !ok {
		return nil, &LibraryNotFoundError{Library: library, Root: s.root}
	}

	entries, err := os.ReadDir(libDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read library directory %s: %w", libDir, err)
	}

	var dirs []VersionDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, err := version.NewVersion(entry.Name())
		if err != nil {
			slog.Debug("skipping non-version directory in package cache", "library", library, "dir", entry.Name())
			continue
		}
		dirs = append(dirs, VersionDir{
			Library: library,
			Name:    entry.Name(),
			Version: v,
			Path:    filepath.Join(libDir, entry.Name()),
		})
	}

	slices.SortFunc(dirs, func(a, b VersionDir) int {
		if c := a.Version.Compare(b.Version); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return dirs, nil
}

// libraryDir finds the library directory. The cache stores lower-case names;
// a case-insensitive scan covers caches populated by other tools.
func (s *Scanner) libraryDir(library string) (string, bool) {
	if library == "" || strings.ContainsAny(library, `/\`) || library == "." || library == ".." {
		return "", false
	}

	lower := filepath.Join(s.root, strings.ToLower(library))
	if info, err := os.Stat(lower); err == nil && info.IsDir() {
		return lower, true
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.EqualFold(entry.Name(), library) {
			return filepath.Join(s.root, entry.Name()), true
		}
	}
	return "", false
}

// ReadManifest reads the package archive of a version directory and returns
// the platform artifacts it offers. Results are memoized per directory.
// Returns CorruptArchiveError when the archive is missing, malformed, or
// fails an integrity check.
func (s *Scanner) ReadManifest(dir VersionDir) (*VersionEntry, error) {
	s.mu.Lock()
	if cached, ok := s.manifests[dir.Path]; ok {
		s.mu.Unlock()
		return cached.entry, cached.err
	}
	s.mu.Unlock()

	entry, err := s.readManifest(dir)

	s.mu.Lock()
	defer s.mu.Unlock()
	// First writer wins so concurrent readers observe one result.
	if cached, ok := s.manifests[dir.Path]; ok {
		return cached.entry, cached.err
	}
	s.manifests[dir.Path] = manifestResult{entry: entry, err: err}
	return entry, err
}
