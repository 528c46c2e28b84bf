// SPDX-License-Identifier: MPL-2.0

package toolchain

import "fmt"

const (
	// KindMethod is an ordinary method or function.
	KindMethod CallableKind = "method"
	// KindConstructor is a type constructor.
	KindConstructor CallableKind = "ctor"
)

type (
	// CallableKind distinguishes methods from constructors. It is informational only.
	CallableKind string

	// Callable is one callable member extracted from a compiled module.
	Callable struct {
		Module        string
		DeclaringType string
		Member        string
		Kind          CallableKind
		// Body is the compiled executable body. Nil means the callable has no
		// body (abstract, extern, or imported).
		Body []byte
	}

	// TypeError records a declaring type whose members could not be enumerated.
	TypeError struct {
		Module string
		Type   string
		Err    error
	}
)

// QualifiedName returns "module:type.member".
func (c Callable) QualifiedName() string {
	return c.Module + ":" + c.DeclaringType + "." + c.Member
}

// HasBody reports whether the callable carries an executable body.
func (c Callable) HasBody() bool {
	return c.Body != nil
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("failed to enumerate members of %s in %s: %v", e.Type, e.Module, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TypeError) Unwrap() error { return e.Err }
