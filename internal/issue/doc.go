// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog of user-facing help.
//
// An ActionableError says which operation failed, on which resource, and what
// the user can try next. It may point at a catalog Issue whose Markdown help
// the CLI renders with glamour.
package issue
