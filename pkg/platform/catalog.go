// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"slices"
)

const (
	// FamilyNetFramework is the classic desktop framework line.
	FamilyNetFramework FamilyName = "netframework"
	// FamilyNetCore is the cross-platform runtime line, including net5.0 and later.
	FamilyNetCore FamilyName = "netcore"
	// FamilyNetStandard is the API-surface contract line.
	FamilyNetStandard FamilyName = "netstandard"
)

type (
	// FamilyName identifies a platform family.
	FamilyName string

	// Family is an ordered list of mutually compatible monikers, oldest first.
	Family struct {
		Name    FamilyName
		Members []Moniker
	}

	memberRef struct {
		family   int
		position int
	}
)

var (
	families = []Family{
		{
			Name: FamilyNetFramework,
			Members: []Moniker{
				"net11", "net20", "net35", "net40", "net403",
				"net45", "net451", "net452",
				"net46", "net461", "net462",
				"net47", "net471", "net472",
				"net48", "net481",
			},
		},
		{
			Name: FamilyNetCore,
			Members: []Moniker{
				"netcoreapp1.0", "netcoreapp1.1",
				"netcoreapp2.0", "netcoreapp2.1", "netcoreapp2.2",
				"netcoreapp3.0", "netcoreapp3.1",
				"net5.0", "net6.0", "net7.0", "net8.0", "net9.0", "net10.0",
			},
		},
		{
			Name: FamilyNetStandard,
			Members: []Moniker{
				"netstandard1.0", "netstandard1.1", "netstandard1.2", "netstandard1.3",
				"netstandard1.4", "netstandard1.5", "netstandard1.6",
				"netstandard2.0", "netstandard2.1",
			},
		},
	}

	memberIndex = buildMemberIndex(families)
)

func buildMemberIndex(fams []Family) map[Moniker]memberRef {
	idx := make(map[Moniker]memberRef)
	for fi, f := range fams {
		for pi, m := range f.Members {
			idx[m] = memberRef{family: fi, position: pi}
		}
	}
	return idx
}

// Families returns every known family. The returned slices are copies.
func Families() []Family {
	out := make([]Family, len(families))
	for i, f := range families {
		out[i] = f.clone()
	}
	return out
}

// NormalizeFamily returns the family the moniker belongs to.
// The moniker is normalized first, so long framework names are accepted.
func NormalizeFamily(m Moniker) (Family, error) {
	n, err := Normalize(string(m))
	if err != nil {
		return Family{}, err
	}
	return families[memberIndex[n].family].clone(), nil
}

// IndexOf returns the position of the moniker within the family, 0 being the oldest.
func IndexOf(f Family, m Moniker) (int, error) {
	n, err := Normalize(string(m))
	if err != nil {
		n = m
	}
	if i := slices.Index(f.Members, n); i >= 0 {
		return i, nil
	}
	return -1, &MonikerNotFoundError{Family: f.Name, Moniker: m}
}

// BackwardOrder returns the monikers an artifact may target to be consumable by m:
// m itself first, then every older member of its family down to the oldest.
func BackwardOrder(m Moniker) ([]Moniker, error) {
	f, err := NormalizeFamily(m)
	if err != nil {
		return nil, err
	}
	idx, err := IndexOf(f, m)
	if err != nil {
		return nil, err
	}
	order := slices.Clone(f.Members[:idx+1])
	slices.Reverse(order)
	return order, nil
}

// Contains reports whether m is a member of the family.
func (f Family) Contains(m Moniker) bool {
	return slices.Contains(f.Members, m)
}

func (f Family) clone() Family {
	return Family{Name: f.Name, Members: slices.Clone(f.Members)}
}
