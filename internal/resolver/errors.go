// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// Reason tags classify why a reference stayed unresolved.
const (
	ReasonNotFound             Reason = "not-found"
	ReasonInvalidVersion       Reason = "invalid-version"
	ReasonNoVersion            Reason = "no-version"
	ReasonAmbiguousVersion     Reason = "ambiguous-version"
	ReasonUnknownMoniker       Reason = "unknown-moniker"
	ReasonCorruptArchive       Reason = "corrupt-archive"
	ReasonNoCompatibleArtifact Reason = "no-compatible-artifact"
)

var (
	// ErrUnresolved is the sentinel error wrapped by UnresolvedError.
	ErrUnresolved = errors.New("unresolved reference")
	// ErrNoMatchingVersion is the sentinel error wrapped by NoMatchingVersionError.
	ErrNoMatchingVersion = errors.New("no matching version")
	// ErrAmbiguousVersion is the sentinel error wrapped by AmbiguousVersionError.
	ErrAmbiguousVersion = errors.New("ambiguous version")
	// ErrNoCompatibleArtifact is the sentinel error wrapped by NoCompatibleArtifactError.
	ErrNoCompatibleArtifact = errors.New("no compatible artifact")
)

type (
	// Reason is a short machine-readable tag for an unresolved reference.
	Reason string

	// UnresolvedError reports that a reference could not be bound to a cached
	// artifact. It is never fatal: the caller records it and carries on.
	UnresolvedError struct {
		Library string
		Version string
		Reason  Reason
		Err     error
	}

	// NoMatchingVersionError is returned when no cached version shares the
	// requested major.minor.patch.
	NoMatchingVersionError struct {
		Library   string
		Requested string
		Available []string
	}

	// AmbiguousVersionError is returned when several cached versions match the
	// requested major.minor.patch and none matches it exactly.
	AmbiguousVersionError struct {
		Library    string
		Requested  string
		Candidates []string
	}

	// NoCompatibleArtifactError is returned when no artifact of the chosen
	// version targets the requester's platform or an older member of its family.
	NoCompatibleArtifactError struct {
		Library   string
		Version   string
		Requester string
		Offered   []string
	}
)

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved %s %s (%s): %v", e.Library, e.Version, e.Reason, e.Err)
}

// Unwrap returns ErrUnresolved and the underlying cause.
func (e *UnresolvedError) Unwrap() []error {
	return []error{ErrUnresolved, e.Err}
}

// Error implements the error interface.
func (e *NoMatchingVersionError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("no cached version of %s matches %s", e.Library, e.Requested)
	}
	return fmt.Sprintf("no cached version of %s matches %s (available: %s)",
		e.Library, e.Requested, strings.Join(e.Available, ", "))
}

// Unwrap returns ErrNoMatchingVersion so callers can use errors.Is for programmatic detection.
func (e *NoMatchingVersionError) Unwrap() error { return ErrNoMatchingVersion }

// Error implements the error interface.
func (e *AmbiguousVersionError) Error() string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "version %s of %s is ambiguous; candidates:", e.Requested, e.Library)
	for _, c := range e.Candidates {
		msg.WriteString("\n  - ")
		msg.WriteString(c)
	}
	return msg.String()
}

// Unwrap returns ErrAmbiguousVersion so callers can use errors.Is for programmatic detection.
func (e *AmbiguousVersionError) Unwrap() error { return ErrAmbiguousVersion }

// Error implements the error interface.
func (e *NoCompatibleArtifactError) Error() string {
	return fmt.Sprintf("%s %s has no artifact usable from %s (offers: %s)",
		e.Library, e.Version, e.Requester, strings.Join(e.Offered, ", "))
}

// Unwrap returns ErrNoCompatibleArtifact so callers can use errors.Is for programmatic detection.
func (e *NoCompatibleArtifactError) Unwrap() error { return ErrNoCompatibleArtifact }
