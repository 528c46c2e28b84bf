// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on error.
//
// WritePackage lays out package archives in a temporary package cache, in the
// layout the cache scanner reads.
package testutil
