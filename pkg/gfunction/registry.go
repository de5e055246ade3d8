// Package gfunction is the native-method registry: the (class,
// method, descriptor) -> Go implementation table that backs every
// method declared ACC_NATIVE, plus the binding implementations
// themselves (java.lang.*, java.io.*, java.security.*, sun.misc.*).
//
// The name echoes the "Go function" bindings used by other JVM-in-Go
// implementations in this family for exactly this concept.
package gfunction

import (
	"fmt"
	"io"

	"github.com/minijvm/minijvm/pkg/classloader"
	"github.com/minijvm/minijvm/pkg/oop"
)

// VM is the callback surface a native binding needs from the
// interpreter: invoking Java methods (e.g. a native method that calls
// back into a Java constructor), allocating strings/objects, and
// writing program output. Defined here (not imported from
// pkg/interpreter) so gfunction has no dependency on interpreter,
// which depends on gfunction — interpreter.Interpreter implements VM.
type VM interface {
	Registry() *classloader.Registry
	InvokeMethod(class *oop.Class, method *oop.Method, args []oop.Value) (oop.Value, error)
	NewString(s string) *oop.Ref
	NewInstance(className string) (*oop.Ref, error)
	Stdout() io.Writer
	Stderr() io.Writer
}

// NativeFn is the signature of a native method binding. args[0] is
// the receiver for instance methods; absent for static methods.
type NativeFn func(vm VM, args []oop.Value) (oop.Value, error)

// Registry maps "class.method:descriptor" to its native implementation.
type Registry struct {
	fns map[string]NativeFn
}

// NewRegistry creates a Registry pre-populated with every binding in
// this package (java/lang, java/io, java/security, sun/misc — see
// lang.go, io.go, security.go, misc.go).
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[string]NativeFn)}
	registerLang(r)
	registerIO(r)
	registerSecurity(r)
	registerMisc(r)
	registerAtomic(r)
	return r
}

// Register installs a binding for className.methodName:descriptor.
// Re-registering the same key overwrites the previous binding.
func (r *Registry) Register(className, methodName, descriptor string, fn NativeFn) {
	r.fns[key(className, methodName, descriptor)] = fn
}

// Lookup finds a native binding. A missing binding for a method the
// class file declares ACC_NATIVE is fatal (SPEC_FULL §4.8): the VM
// has no silent fallback for unimplemented native methods.
func (r *Registry) Lookup(className, methodName, descriptor string) (NativeFn, bool) {
	fn, ok := r.fns[key(className, methodName, descriptor)]
	return fn, ok
}

func key(className, methodName, descriptor string) string {
	return fmt.Sprintf("%s.%s:%s", className, methodName, descriptor)
}
