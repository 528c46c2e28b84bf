// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownMoniker is the sentinel error wrapped by UnknownMonikerError.
	ErrUnknownMoniker = errors.New("unknown platform moniker")
	// ErrMonikerNotFound is the sentinel error wrapped by MonikerNotFoundError.
	ErrMonikerNotFound = errors.New("moniker not found in family")
)

type (
	// Moniker is a normalized target-platform identifier (e.g. "net48", "net6.0").
	Moniker string

	// UnknownMonikerError is returned when a moniker does not belong to any
	// known family, or cannot be normalized at all.
	UnknownMonikerError struct {
		Value string
	}

	// MonikerNotFoundError is returned by IndexOf when the moniker is not a
	// member of the given family.
	MonikerNotFoundError struct {
		Family  FamilyName
		Moniker Moniker
	}
)

// Error implements the error interface.
func (e *UnknownMonikerError) Error() string {
	return fmt.Sprintf("unknown platform moniker %q", e.Value)
}

// Unwrap returns ErrUnknownMoniker so callers can use errors.Is for programmatic detection.
func (e *UnknownMonikerError) Unwrap() error { return ErrUnknownMoniker }

// Error implements the error interface.
func (e *MonikerNotFoundError) Error() string {
	return fmt.Sprintf("moniker %q is not a member of family %q", e.Moniker, e.Family)
}

// Unwrap returns ErrMonikerNotFound so callers can use errors.Is for programmatic detection.
func (e *MonikerNotFoundError) Unwrap() error { return ErrMonikerNotFound }

// String returns the string representation of the Moniker.
func (m Moniker) String() string { return string(m) }

// IsValid returns whether the Moniker is a known catalog member,
// and a list of validation errors if it is not.
func (m Moniker) IsValid() (bool, []error) {
	if _, ok := memberIndex[m]; !ok {
		return false, []error{&UnknownMonikerError{Value: string(m)}}
	}
	return true, nil
}

// Normalize converts a raw platform identifier into its canonical short form.
//
// Accepted inputs:
//   - short folder names: "net48", "net6.0", "netcoreapp3.1", "netstandard2.0"
//   - compact forms: "net60" -> "net6.0", "netcoreapp31" -> "netcoreapp3.1"
//   - OS-qualified forms: "net6.0-windows" -> "net6.0"
//   - long framework names: ".NETFramework,Version=v4.7.2" -> "net472",
//     ".NETCoreApp,Version=v6.0" -> "net6.0", ".NETStandard,Version=v2.0" -> "netstandard2.0"
//
// The result is always a catalog member; anything else yields UnknownMonikerError.
func Normalize(raw string) (Moniker, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", &UnknownMonikerError{Value: raw}
	}

	var candidate string
	if strings.HasPrefix(s, ".") {
		candidate = normalizeLongName(s)
	} else {
		candidate = normalizeShortName(s)
	}

	m := Moniker(candidate)
	if _, ok := memberIndex[m]; !ok {
		return "", &UnknownMonikerError{Value: raw}
	}
	return m, nil
}

// normalizeLongName handles ".NETFramework,Version=v4.8" style identifiers.
// Extra comma-separated parts such as ",Profile=Client" are ignored.
func normalizeLongName(s string) string {
	parts := strings.Split(s, ",")
	ident := strings.TrimSpace(parts[0])

	var ver string
	for _, p := range parts[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(p), "=")
		if ok && key == "version" {
			ver = strings.TrimPrefix(value, "v")
		}
	}
	if ver == "" {
		return ""
	}

	switch ident {
	case ".netframework":
		digits := strings.Split(ver, ".")
		for len(digits) > 2 && digits[len(digits)-1] == "0" {
			digits = digits[:len(digits)-1]
		}
		return "net" + strings.Join(digits, "")
	case ".netcoreapp":
		major, minor := splitMajorMinor(ver)
		if major >= "5" || len(major) > 1 {
			return "net" + major + "." + minor
		}
		return "netcoreapp" + major + "." + minor
	case ".netstandard":
		major, minor := splitMajorMinor(ver)
		return "netstandard" + major + "." + minor
	default:
		return ""
	}
}

// normalizeShortName handles NuGet folder-style identifiers.
func normalizeShortName(s string) string {
	if base, _, ok := strings.Cut(s, "-"); ok {
		s = base
	}

	switch {
	case strings.HasPrefix(s, "netstandard"):
		return "netstandard" + dotted(strings.TrimPrefix(s, "netstandard"))
	case strings.HasPrefix(s, "netcoreapp"):
		return "netcoreapp" + dotted(strings.TrimPrefix(s, "netcoreapp"))
	case strings.HasPrefix(s, "net"):
		rest := strings.TrimPrefix(s, "net")
		if strings.Contains(rest, ".") || rest == "" {
			return s
		}
		// Compact digits: framework monikers start with 1-4, net5+ is core.
		if rest[0] >= '5' && rest[0] <= '9' {
			return "net" + dotted(rest)
		}
		return s
	default:
		return s
	}
}

// dotted turns a compact "31" into "3.1"; already-dotted versions are kept.
func dotted(v string) string {
	if v == "" || strings.Contains(v, ".") {
		return v
	}
	if len(v) == 1 {
		return v + ".0"
	}
	return v[:1] + "." + v[1:]
}

func splitMajorMinor(ver string) (string, string) {
	major, rest, _ := strings.Cut(ver, ".")
	minor, _, _ := strings.Cut(rest, ".")
	if minor == "" {
		minor = "0"
	}
	return major, minor
}
