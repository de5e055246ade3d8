// Package vmbootstrap drives the fixed startup sequence a JVM runs
// once, before any user main(String[]) executes (JVMS §5.3-§5.5 as
// applied to the core library itself; SPEC_FULL §4.11). It is the one
// place allowed to assume a specific, hard-coded set of class names —
// everywhere else, the interpreter only ever sees names that come from
// a constant pool or a caller.
package vmbootstrap

import (
	"fmt"

	"github.com/minijvm/minijvm/pkg/classloader"
	"github.com/minijvm/minijvm/pkg/interpreter"
	"github.com/minijvm/minijvm/pkg/oop"
)

// primitiveNames is the fixed set of primitive and primitive-array
// types the bootstrap sequence gives mirrors to up front (SPEC_FULL
// §4.11 step 2); every other class gets its mirror lazily, on first
// ldc of a CONSTANT_Class or first getClass() call.
var primitiveNames = []string{
	"boolean", "byte", "char", "short", "int", "long", "float", "double", "void",
}

var primitiveArrayDescriptors = []string{
	"[Z", "[B", "[C", "[S", "[I", "[J", "[F", "[D",
}

// Boot runs the five-step sequence from SPEC_FULL §4.11 against reg
// and it, in order. A failure at any step aborts startup — there is no
// partially-booted VM to recover into.
func Boot(reg *classloader.Registry, it *interpreter.Interpreter) error {
	if err := loadCoreClasses(reg); err != nil {
		return fmt.Errorf("vmbootstrap: loading core classes: %w", err)
	}
	if err := createPrimitiveMirrors(reg, it); err != nil {
		return fmt.Errorf("vmbootstrap: creating primitive mirrors: %w", err)
	}
	fixupDeferredMirrors(reg, it)
	if err := loadThreadingClasses(reg); err != nil {
		return fmt.Errorf("vmbootstrap: loading threading classes: %w", err)
	}
	if err := initializeSystemClass(reg, it); err != nil {
		return fmt.Errorf("vmbootstrap: initializing System: %w", err)
	}
	return nil
}

// loadCoreClasses is step 1: Object and Class reach Linked state
// before anything else, since every other class's layout and every
// mirror depends on them existing.
func loadCoreClasses(reg *classloader.Registry) error {
	if _, err := reg.Require("java/lang/Object"); err != nil {
		return err
	}
	if _, err := reg.Require("java/lang/Class"); err != nil {
		return err
	}
	return nil
}

// createPrimitiveMirrors is step 2: every primitive and primitive
// array type is fabricated (oop.Class.IsPrimitive / IsArray are never
// backed by a class file) and given a mirror immediately, since
// Class.getPrimitiveClass must be able to hand one out without ever
// touching the interpreter's lazy-mirror path.
func createPrimitiveMirrors(reg *classloader.Registry, it *interpreter.Interpreter) error {
	for _, name := range primitiveNames {
		class, err := reg.Require(name)
		if err != nil {
			return fmt.Errorf("primitive %s: %w", name, err)
		}
		it.MirrorOf(class)
	}
	for _, desc := range primitiveArrayDescriptors {
		class, err := reg.Require(desc)
		if err != nil {
			return fmt.Errorf("primitive array %s: %w", desc, err)
		}
		it.MirrorOf(class)
	}
	return nil
}

// fixupDeferredMirrors is step 3. Object and Class link before
// java/lang/Class itself has a Class instance of its own to back
// mirrors with (mirrorOf needs the java/lang/Class class to exist as
// the mirror's own Class); by the time this step runs, loadCoreClasses
// has already satisfied that dependency, so any mirror created in step
// 1 or 2 is already correctly typed and nothing is backfilled here.
// The step only creates java/lang/Object's mirror eagerly, which
// steps 1 and 2 do not.
func fixupDeferredMirrors(reg *classloader.Registry, it *interpreter.Interpreter) {
	objectClass := reg.Lookup("java/lang/Object")
	it.MirrorOf(objectClass)
}

// loadThreadingClasses is step 4: Thread, ThreadGroup, and System are
// loaded and linked (not yet initialized — that happens through the
// ordinary RequireInitialized path the first time each is actually
// used, including by initializeSystemClass below). The main
// ThreadGroup and Thread objects are not built here; MainThreadGroup
// and MainThread build them after Boot returns.
func loadThreadingClasses(reg *classloader.Registry) error {
	if _, err := reg.Require("java/lang/ThreadGroup"); err != nil {
		return err
	}
	if _, err := reg.Require("java/lang/Thread"); err != nil {
		return err
	}
	if _, err := reg.Require("java/lang/System"); err != nil {
		return err
	}
	return nil
}

// initializeSystemClass is step 5: run System's <clinit> and its
// initializeSystemClass()V bootstrap method, the real JDK's hook for
// wiring up in/out/err streams and system properties (the native half
// of which is gfunction's initProperties).
func initializeSystemClass(reg *classloader.Registry, it *interpreter.Interpreter) error {
	systemClass, err := reg.RequireInitialized("java/lang/System")
	if err != nil {
		return err
	}
	method := systemClass.FindMethod("initializeSystemClass", "()V")
	if method == nil {
		// A minimal java/lang/System with no such bootstrap hook is a
		// valid, if unusually small, bootclasspath: nothing else in
		// Boot depends on this method existing.
		return nil
	}
	_, err = it.InvokeMethod(systemClass, method, nil)
	return err
}

// MainThreadGroup and MainThread build the root ThreadGroup and the
// main Thread object the launcher keeps for dispatching an uncaught
// exception (Thread.currentThread() does not return this object; its
// binding allocates a fresh Thread). Kept separate from Boot because building
// them invokes real constructors, which only works once System's own
// initialization (and thus the full string/exception machinery it
// depends on) has already completed.
func MainThreadGroup(reg *classloader.Registry, it *interpreter.Interpreter) (*oop.Ref, error) {
	class, err := reg.RequireInitialized("java/lang/ThreadGroup")
	if err != nil {
		return nil, err
	}
	group, err := it.NewInstance(class.Name)
	if err != nil {
		return nil, err
	}
	ctor := class.FindMethod("<init>", "()V")
	if ctor == nil {
		return group, nil
	}
	if _, err := it.InvokeMethod(class, ctor, []oop.Value{oop.RefVal(group)}); err != nil {
		return nil, err
	}
	return group, nil
}

func MainThread(reg *classloader.Registry, it *interpreter.Interpreter, group *oop.Ref) (*oop.Ref, error) {
	class, err := reg.RequireInitialized("java/lang/Thread")
	if err != nil {
		return nil, err
	}
	thread, err := it.NewInstance(class.Name)
	if err != nil {
		return nil, err
	}
	ctor := class.FindMethod("<init>", "(Ljava/lang/ThreadGroup;Ljava/lang/String;)V")
	if ctor == nil {
		return thread, nil
	}
	name := it.NewString("main")
	args := []oop.Value{oop.RefVal(thread), oop.RefVal(group), oop.RefVal(name)}
	if _, err := it.InvokeMethod(class, ctor, args); err != nil {
		return nil, err
	}
	return thread, nil
}
