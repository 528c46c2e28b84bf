// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/zip"
	"bytes"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CachedPackage describes a package to lay out in a temporary package cache.
type CachedPackage struct {
	Library string
	Version string
	// Platforms lists the lib/<platform>/ folders that get a <Library>.dll artifact.
	Platforms []string
	// Extra holds additional archive entries keyed by their path inside the archive.
	Extra map[string][]byte
	// ManifestID, when set, writes an embedded package manifest declaring this id.
	ManifestID string
	// WithChecksum writes the .sha512 sidecar next to the archive.
	WithChecksum bool
}

// WritePackage lays out one package version under root using the lower-case
// cache layout and returns the archive path.
func WritePackage(t testing.TB, root string, pkg CachedPackage) string {
	t.Helper()

	lower := strings.ToLower(pkg.Library)
	dir := filepath.Join(root, lower, pkg.Version)
	MustMkdirAll(t, dir, 0o755)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name string, data []byte) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s to archive: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("failed to write %s to archive: %v", name, err)
		}
	}

	if pkg.ManifestID != "" {
		manifest := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://schemas.microsoft.com/packaging/2013/05/nuspec.xsd">
  <metadata>
    <id>%s</id>
    <version>%s</version>
  </metadata>
</package>`, pkg.ManifestID, pkg.Version)
		add(lower+".nuspec", []byte(manifest))
	}
	for _, p := range pkg.Platforms {
		add("lib/"+p+"/"+pkg.Library+".dll", []byte(pkg.Library+"@"+pkg.Version+"/"+p))
	}
	for name, data := range pkg.Extra {
		add(name, data)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish archive: %v", err)
	}

	archivePath := filepath.Join(dir, lower+"."+pkg.Version+".nupkg")
	MustWriteFile(t, archivePath, buf.Bytes())

	if pkg.WithChecksum {
		sum := sha512.Sum512(buf.Bytes())
		MustWriteFile(t, archivePath+".sha512", []byte(base64.StdEncoding.EncodeToString(sum[:])))
	}
	return archivePath
}

// MustWriteFile writes data to path, creating parent directories.
// The test fails immediately if the operation fails.
func MustWriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
