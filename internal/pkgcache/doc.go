// SPDX-License-Identifier: MPL-2.0

// Package pkgcache reads the local versioned package cache.
//
// The cache follows the NuGet global-packages layout:
//
//	<root>/<library (lower-case)>/<version>/<library>.<version>.nupkg
//	<root>/<library (lower-case)>/<version>/<library>.<version>.nupkg.sha512
//	<root>/<library (lower-case)>/<version>/<library>.<version>.nupkg.asc   (optional)
//
// A package archive is a zip file whose lib/<platform>/ folders hold the
// per-platform artifacts. ReadManifest turns one version directory into a
// platform moniker -> artifact path map.
package pkgcache
