// SPDX-License-Identifier: MPL-2.0

package analysis

import (
	"github.com/clonescan/clonescan/internal/fingerprint"
	"github.com/clonescan/clonescan/internal/resolver"
)

type (
	// Failure records a module that produced no callables.
	Failure struct {
		Module string `json:"module" toml:"module"`
		Reason string `json:"reason" toml:"reason"`
	}

	// Unresolved records a library reference that could not be bound.
	Unresolved struct {
		Module  string          `json:"module" toml:"module"`
		Library string          `json:"library" toml:"library"`
		Version string          `json:"version" toml:"version"`
		Reason  resolver.Reason `json:"reason" toml:"reason"`
		Detail  string          `json:"detail,omitempty" toml:"detail,omitempty"`
	}

	// ExtractionWarning records a declaring type whose callables were dropped.
	ExtractionWarning struct {
		Module string `json:"module" toml:"module"`
		Type   string `json:"type" toml:"type"`
		Reason string `json:"reason" toml:"reason"`
	}

	// Stats summarizes a run.
	Stats struct {
		Modules    int `json:"modules" toml:"modules"`
		Compiled   int `json:"compiled" toml:"compiled"`
		Callables  int `json:"callables" toml:"callables"`
		Absent     int `json:"absent_bodies" toml:"absent_bodies"`
		Unique     int `json:"unique_digests" toml:"unique_digests"`
		Duplicates int `json:"duplicates" toml:"duplicates"`
	}

	// Report is the result of a completed run. All collections are in walk order.
	Report struct {
		Workspace          string                  `json:"workspace,omitempty" toml:"workspace,omitempty"`
		Duplicates         []fingerprint.Duplicate `json:"duplicates" toml:"duplicates"`
		Failures           []Failure               `json:"failures" toml:"failures"`
		Unresolved         []Unresolved            `json:"unresolved" toml:"unresolved"`
		ExtractionWarnings []ExtractionWarning     `json:"extraction_warnings" toml:"extraction_warnings"`
		Stats              Stats                   `json:"stats" toml:"stats"`
	}
)

// HasDuplicates reports whether any duplicate was found.
func (r *Report) HasDuplicates() bool {
	return len(r.Duplicates) > 0
}

// DuplicateGroups returns the duplicates grouped by canonical name, in the
// order each canonical callable first gained a duplicate.
func (r *Report) DuplicateGroups() []DuplicateGroup {
	var groups []DuplicateGroup
	index := make(map[fingerprint.Digest]int)
	for _, d := range r.Duplicates {
		i, ok := index[d.Digest]
		if !ok {
			i = len(groups)
			index[d.Digest] = i
			groups = append(groups, DuplicateGroup{Digest: d.Digest, Canonical: d.Canonical})
		}
		groups[i].Duplicates = append(groups[i].Duplicates, d.Duplicate)
	}
	return groups
}

// DuplicateGroup is every duplicate of one canonical callable.
type DuplicateGroup struct {
	Digest     fingerprint.Digest
	Canonical  string
	Duplicates []string
}
