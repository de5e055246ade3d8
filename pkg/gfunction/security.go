package gfunction

import "github.com/minijvm/minijvm/pkg/oop"

// registerSecurity installs the java/security/AccessController native
// surface needed by System.initializeSystemClass and other JDK
// bootstrap code paths that wrap setup in doPrivileged. This VM has
// no security manager, so doPrivileged simply runs its action
// directly (SPEC_FULL §4.8 Non-goal: security manager enforcement).
func registerSecurity(r *Registry) {
	r.Register("java/security/AccessController", "doPrivileged",
		"(Ljava/security/PrivilegedAction;)Ljava/lang/Object;", func(vm VM, args []oop.Value) (oop.Value, error) {
			return invokeAction(vm, args[0])
		})
	r.Register("java/security/AccessController", "doPrivileged",
		"(Ljava/security/PrivilegedExceptionAction;)Ljava/lang/Object;", func(vm VM, args []oop.Value) (oop.Value, error) {
			return invokeAction(vm, args[0])
		})
	r.Register("java/security/AccessController", "getStackAccessControlContext",
		"()Ljava/security/AccessControlContext;", func(vm VM, args []oop.Value) (oop.Value, error) {
			return oop.Null(), nil
		})
}

// invokeAction calls the given PrivilegedAction/PrivilegedExceptionAction's
// run() method through ordinary virtual dispatch.
func invokeAction(vm VM, action oop.Value) (oop.Value, error) {
	if action.Ref == nil {
		return oop.Null(), nil
	}
	method := action.Ref.Class.FindMethod("run", "()Ljava/lang/Object;")
	if method == nil {
		return oop.Null(), nil
	}
	return vm.InvokeMethod(action.Ref.Class, method, []oop.Value{action})
}
