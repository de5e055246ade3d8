package gfunction

import "github.com/minijvm/minijvm/pkg/oop"

// registerMisc installs the sun/misc and jdk/internal/misc bootstrap
// stubs that the JDK's own class-library bring-up code calls before
// main() ever runs: CDS (class data sharing, always disabled here),
// VM initialization, signal handling, and a small Unsafe subset
// (registerNatives, storeFence, and fixed array/field offset answers).
// No Unsafe compare-and-swap binding is registered; the VM's only
// compare-and-swap binding is AtomicLong's, in atomic.go.
func registerMisc(r *Registry) {
	r.Register("jdk/internal/misc/CDS", "isDumpingClassList0", "()Z", returnFalse)
	r.Register("jdk/internal/misc/CDS", "isDumpingArchive0", "()Z", returnFalse)
	r.Register("jdk/internal/misc/CDS", "isSharingEnabled0", "()Z", returnFalse)
	r.Register("jdk/internal/misc/CDS", "initializeFromArchive", "(Ljava/lang/Class;)V", noop)
	r.Register("jdk/internal/misc/CDS", "getRandomSeedForDumping", "()J", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Long(0), nil
	})

	r.Register("jdk/internal/misc/VM", "initialize", "()V", noop)
	r.Register("jdk/internal/misc/VM", "getSavedProperty", "(Ljava/lang/String;)Ljava/lang/String;",
		func(vm VM, args []oop.Value) (oop.Value, error) { return oop.Null(), nil })

	r.Register("sun/misc/Signal", "handle0", "(Ljava/lang/String;J)J", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Long(0), nil
	})
	r.Register("sun/misc/Signal", "findSignal0", "(Ljava/lang/String;)I", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Int(0), nil
	})

	r.Register("jdk/internal/misc/Unsafe", "registerNatives", "()V", noop)
	r.Register("jdk/internal/misc/Unsafe", "storeFence", "()V", noop)
	r.Register("jdk/internal/misc/Unsafe", "arrayBaseOffset0", "(Ljava/lang/Class;)I",
		func(vm VM, args []oop.Value) (oop.Value, error) { return oop.Int(0), nil })
	r.Register("jdk/internal/misc/Unsafe", "arrayIndexScale0", "(Ljava/lang/Class;)I",
		func(vm VM, args []oop.Value) (oop.Value, error) { return oop.Int(1), nil })
	r.Register("jdk/internal/misc/Unsafe", "objectFieldOffset1", "(Ljava/lang/Class;Ljava/lang/String;)J",
		func(vm VM, args []oop.Value) (oop.Value, error) { return oop.Long(0), nil })
}
