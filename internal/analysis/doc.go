// SPDX-License-Identifier: MPL-2.0

// Package analysis drives a duplicate-detection run over a workspace.
//
// Modules are processed one dependency level at a time. Within a level every
// module is compiled in walk order, so each reference it declares is resolved
// against a lookup set that already holds the output of every module it
// depends on. The compiled units of a level are then extracted and hashed
// concurrently, and their fingerprints are committed to the index in walk
// order. The report is therefore the same for any degree of parallelism.
//
// Only a broken module graph or a canceled context ends a run early. Compile
// failures, unresolved references and per-type extraction errors are recorded
// in the Report and the run carries on.
package analysis
