// SPDX-License-Identifier: MPL-2.0

// Package platform provides the target-platform compatibility catalog.
//
// A Moniker names one target platform (for example "net48", "net6.0" or
// "netstandard2.0"). Monikers are grouped into disjoint families ordered from
// oldest to newest; an artifact built for an older member of a family is
// assumed to be consumable by a newer member of the same family, never the
// reverse. The catalog is a constant table and every lookup is pure.
//
// The package also carries the OS name constants used for runtime.GOOS
// comparisons.
package platform
