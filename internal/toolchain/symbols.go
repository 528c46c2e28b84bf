// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"slices"
	"strings"
)

// GlobalType is the declaring type of symbols that belong to no type.
const GlobalType = "<module>"

// SplitSymbol derives the declaring type and member from a symbol name.
//
//   - Go style: "pkg.(*T).M" and "pkg.T.M" give "pkg.T" and "M";
//     a plain function "pkg.F" gives "pkg" and "F".
//   - C++ style: "ns::T::M(int)" gives "ns::T" and "M".
//   - Anything else belongs to GlobalType.
func SplitSymbol(name string) (declaringType, member string) {
	if strings.Contains(name, "::") {
		sig := name
		if i := strings.IndexByte(sig, '('); i > 0 {
			sig = sig[:i]
		}
		if i := strings.LastIndex(sig, "::"); i > 0 && i+2 < len(sig) {
			return sig[:i], sig[i+2:]
		}
		return GlobalType, name
	}

	// Package paths may contain dots before the last slash.
	slash := strings.LastIndexByte(name, '/') + 1
	prefix, rest := name[:slash], name[slash:]
	parts := strings.Split(rest, ".")
	switch {
	case len(parts) < 2 || slices.Contains(parts, ""):
		return GlobalType, name
	case len(parts) == 2:
		return prefix + parts[0], parts[1]
	default:
		recv := strings.TrimSuffix(strings.TrimPrefix(parts[1], "(*"), ")")
		return prefix + parts[0] + "." + recv, strings.Join(parts[2:], ".")
	}
}

// kindOf classifies a member as constructor or method from its name. A
// member repeating its class name is a constructor only in the C++ form
// (T::T), so Go functions such as main.main stay methods.
func kindOf(symbol, declaringType, member string) CallableKind {
	switch member {
	case ".ctor", ".cctor":
		return KindConstructor
	}
	if !strings.Contains(symbol, "::") && !strings.Contains(declaringType, "::") {
		return KindMethod
	}
	class := declaringType
	if i := strings.LastIndex(class, "::"); i >= 0 {
		class = class[i+2:]
	}
	if class == member {
		return KindConstructor
	}
	return KindMethod
}
