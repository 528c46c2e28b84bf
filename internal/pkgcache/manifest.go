// SPDX-License-Identifier: MPL-2.0

package pkgcache

import (
	"archive/zip"
	"bytes"
	"crypto/sha512"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/clonescan/clonescan/pkg/platform"
)

const (
	archiveExt   = ".nupkg"
	checksumExt  = ".sha512"
	signatureExt = ".asc"
	manifestExt  = ".nuspec"
	artifactExt  = ".dll"
	libFolder    = "lib"

	// maxManifestSize bounds the embedded package manifest read into memory.
	maxManifestSize = 1 << 20
)

// nuspec is the subset of the embedded package manifest that identifies the package.
type nuspec struct {
	Metadata struct {
		ID      string `xml:"id"`
		Version string `xml:"version"`
	} `xml:"metadata"`
}

func (s *Scanner) readManifest(dir VersionDir) (*VersionEntry, error) {
	archivePath, err := findArchive(dir)
	if err != nil {
		return nil, err
	}

	if err := verifyChecksum(archivePath); err != nil {
		return nil, err
	}

	if s.verifier != nil {
		if err := s.verifySignature(archivePath); err != nil {
			return nil, err
		}
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, &CorruptArchiveError{Path: archivePath, Reason: ReasonUnreadableArchive, Err: err}
	}
	defer func() { _ = r.Close() }()

	// Folders with an OS suffix (net6.0-windows) only serve a moniker when it
	// has no plain folder.
	candidates := make(map[platform.Moniker][]string)
	osSpecific := make(map[platform.Moniker][]string)
	for _, f := range r.File {
		name := strings.ReplaceAll(f.Name, `\`, "/")
		parts := strings.Split(name, "/")

		switch {
		case len(parts) == 1 && strings.EqualFold(path.Ext(name), manifestExt):
			if err := checkIdentity(f, dir.Library); err != nil {
				return nil, &CorruptArchiveError{Path: archivePath, Reason: ReasonIdentityMismatch, Err: err}
			}
		case len(parts) == 3 && strings.EqualFold(parts[0], libFolder) && strings.EqualFold(path.Ext(parts[2]), artifactExt):
			m, err := platform.Normalize(parts[1])
			if err != nil {
				slog.Debug("skipping artifact for unknown platform", "archive", archivePath, "platform", parts[1])
				continue
			}
			if strings.Contains(parts[1], "-") {
				osSpecific[m] = append(osSpecific[m], name)
				continue
			}
			candidates[m] = append(candidates[m], name)
		}
	}

	artifacts := make(map[platform.Moniker]string, len(candidates)+len(osSpecific))
	for m, paths := range osSpecific {
		artifacts[m] = pickArtifact(paths, dir.Library)
	}
	for m, paths := range candidates {
		artifacts[m] = pickArtifact(paths, dir.Library)
	}

	return &VersionEntry{
		Library:   dir.Library,
		Version:   dir.Name,
		Dir:       dir.Path,
		Artifacts: artifacts,
	}, nil
}

// findArchive returns the package archive inside a version directory,
// preferring the conventional <library>.<version>.nupkg name.
func findArchive(dir VersionDir) (string, error) {
	conventional := filepath.Join(dir.Path, strings.ToLower(dir.Library)+"."+dir.Name+archiveExt)
	if info, err := os.Stat(conventional); err == nil && !info.IsDir() {
		return conventional, nil
	}

	entries, err := os.ReadDir(dir.Path)
	if err != nil {
		return "", &CorruptArchiveError{Path: dir.Path, Reason: ReasonMissingArchive, Err: err}
	}
	var found []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), archiveExt) {
			found = append(found, entry.Name())
		}
	}
	if len(found) == 0 {
		return "", &CorruptArchiveError{Path: dir.Path, Reason: ReasonMissingArchive}
	}
	slices.Sort(found)
	return filepath.Join(dir.Path, found[0]), nil
}

// verifyChecksum compares the archive against its base64 SHA-512 sidecar, when one exists.
func verifyChecksum(archivePath string) error {
	expected, err := os.ReadFile(archivePath + checksumExt)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &CorruptArchiveError{Path: archivePath, Reason: ReasonChecksumMismatch, Err: err}
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return &CorruptArchiveError{Path: archivePath, Reason: ReasonUnreadableArchive, Err: err}
	}
	defer func() { _ = f.Close() }()

	h := sha512.New()
	if _, err := io.Copy(h, f); err != nil {
		return &CorruptArchiveError{Path: archivePath, Reason: ReasonUnreadableArchive, Err: err}
	}

	actual := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if strings.TrimSpace(string(expected)) != actual {
		return &CorruptArchiveError{
			Path:   archivePath,
			Reason: ReasonChecksumMismatch,
			Err:    fmt.Errorf("expected %s, got %s", strings.TrimSpace(string(expected)), actual),
		}
	}
	return nil
}

func (s *Scanner) verifySignature(archivePath string) error {
	sig, err := os.ReadFile(archivePath + signatureExt)
	if err != nil {
		return &CorruptArchiveError{Path: archivePath, Reason: ReasonMissingSignature, Err: err}
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return &CorruptArchiveError{Path: archivePath, Reason: ReasonUnreadableArchive, Err: err}
	}
	defer func() { _ = f.Close() }()

	if err := s.verifier.Verify(f, bytes.NewReader(sig)); err != nil {
		return &CorruptArchiveError{Path: archivePath, Reason: ReasonUntrusted, Err: err}
	}
	return nil
}

// checkIdentity ensures the embedded package manifest names the requested library.
func checkIdentity(f *zip.File, library string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxManifestSize))
	if err != nil {
		return err
	}

	var manifest nuspec
	if err := xml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("malformed package manifest %s: %w", f.Name, err)
	}
	if !strings.EqualFold(manifest.Metadata.ID, library) {
		return fmt.Errorf("package manifest declares %q, expected %q", manifest.Metadata.ID, library)
	}
	return nil
}

// pickArtifact chooses among several artifacts for one platform: the one named
// after the library wins, otherwise the lexically first path.
func pickArtifact(paths []string, library string) string {
	slices.Sort(paths)
	for _, p := range paths {
		base := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if strings.EqualFold(base, library) {
			return p
		}
	}
	return paths[0]
}
