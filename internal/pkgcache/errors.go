// SPDX-License-Identifier: MPL-2.0

package pkgcache

import (
	"errors"
	"fmt"
)

const (
	// ReasonMissingArchive means the version directory holds no package archive.
	ReasonMissingArchive = "missing package archive"
	// ReasonUnreadableArchive means the archive is not a readable zip file.
	ReasonUnreadableArchive = "unreadable package archive"
	// ReasonChecksumMismatch means the archive does not match its .sha512 sidecar.
	ReasonChecksumMismatch = "checksum mismatch"
	// ReasonIdentityMismatch means the embedded package manifest names another library.
	ReasonIdentityMismatch = "package identity mismatch"
	// ReasonMissingSignature means signature checks are enabled but no .asc file exists.
	ReasonMissingSignature = "missing signature"
	// ReasonUntrusted means the detached signature did not verify against the keyring.
	ReasonUntrusted = "untrusted signature"
)

var (
	// ErrLibraryNotFound is the sentinel error wrapped by LibraryNotFoundError.
	ErrLibraryNotFound = errors.New("library not found in package cache")
	// ErrCorruptArchive is the sentinel error wrapped by CorruptArchiveError.
	ErrCorruptArchive = errors.New("corrupt package archive")
)

type (
	// LibraryNotFoundError is returned when the cache has no directory for a library.
	LibraryNotFoundError struct {
		Library string
		Root    string
	}

	// CorruptArchiveError is returned when a version directory's package
	// archive is missing, malformed, or fails an integrity check.
	CorruptArchiveError struct {
		Path   string
		Reason string
		Err    error
	}
)

// Error implements the error interface.
func (e *LibraryNotFoundError) Error() string {
	return fmt.Sprintf("library %q not found in package cache %s", e.Library, e.Root)
}

// Unwrap returns ErrLibraryNotFound so callers can use errors.Is for programmatic detection.
func (e *LibraryNotFoundError) Unwrap() error { return ErrLibraryNotFound }

// Error implements the error interface.
func (e *CorruptArchiveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt package archive %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt package archive %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrCorruptArchive and the underlying cause, if any.
func (e *CorruptArchiveError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCorruptArchive, e.Err}
	}
	return []error{ErrCorruptArchive}
}
