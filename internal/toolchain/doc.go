// SPDX-License-Identifier: MPL-2.0

// Package toolchain turns workspace modules into callables.
//
// A Compiler produces a Unit for a module and binds the module's library
// references through the resolve callback it is given. The prebuilt compiler
// picks up output that an external build already produced. An Extractor then
// enumerates the callables of a Unit: function symbols of ELF and Mach-O
// objects, or the records of a callable dump (one JSON object per line).
package toolchain
