// Package classloader implements the class Registry: loading,
// linking, and initializing classes per JVMS §5.3-§5.5, plus array and
// primitive class fabrication and instance field layout.
package classloader

import (
	"fmt"
	"strings"

	"github.com/minijvm/minijvm/pkg/classfile"
	"github.com/minijvm/minijvm/pkg/oop"
)

// Source finds a named class in some backing store and returns it
// parsed. Implemented by internal/classpath (directories and .jar/.zip
// archives).
type Source interface {
	// Open returns a parsed class file for the given internal
	// (slash-separated) class name, or an error if not found.
	Open(name string) (*classfile.ClassFile, error)
}

// Initializer runs a class's <clinit> by invoking it through the
// interpreter. The Registry depends on this narrow interface instead
// of importing pkg/interpreter directly, avoiding an import cycle
// (the interpreter needs the Registry to resolve classes).
type Initializer interface {
	RunClinit(class *oop.Class) error
}

// Registry is the single class table for one VM instance: a
// name -> *oop.Class map, guarding the JVMS §5.3-§5.5 state machine.
type Registry struct {
	source Source
	init   Initializer

	classes map[string]*oop.Class

	objectClass *oop.Class
	classClass  *oop.Class
}

// NewRegistry creates an empty Registry backed by source. SetInitializer
// must be called once the interpreter exists, before any Initialize call.
func NewRegistry(source Source) *Registry {
	return &Registry{
		source:  source,
		classes: make(map[string]*oop.Class),
	}
}

// SetInitializer wires the interpreter-backed <clinit> runner. Done as
// a setter, not a constructor argument, because pkg/interpreter holds
// a *Registry and so cannot be constructed before the Registry is.
func (r *Registry) SetInitializer(init Initializer) { r.init = init }

// Lookup returns an already-loaded class, or nil.
func (r *Registry) Lookup(name string) *oop.Class {
	return r.classes[name]
}

// Require loads (if necessary), links, and returns the named class,
// without running <clinit>. This is JVMS §5.3 class loading plus
// §5.4 linking, not initialization.
func (r *Registry) Require(name string) (*oop.Class, error) {
	if c, ok := r.classes[name]; ok {
		return c, nil
	}

	if strings.HasPrefix(name, "[") {
		return r.requireArrayClass(name)
	}
	if isPrimitiveName(name) {
		return r.requirePrimitiveClass(name)
	}

	cf, err := r.source.Open(name)
	if err != nil {
		return nil, fmt.Errorf("loading class %s: %w", name, err)
	}

	class := oop.NewClass(name)
	class.File = cf
	class.AccessFlags = cf.AccessFlags
	r.classes[name] = class // insert before linking superclasses: breaks cycles on self-reference

	if super := cf.SuperClassName(); super != "" {
		superClass, err := r.Require(super)
		if err != nil {
			return nil, fmt.Errorf("loading superclass of %s: %w", name, err)
		}
		class.Super = superClass
	}
	for _, idx := range cf.Interfaces {
		ifaceName, err := classfile.GetClassName(cf.ConstantPool, idx)
		if err != nil {
			return nil, fmt.Errorf("resolving interface of %s: %w", name, err)
		}
		iface, err := r.Require(ifaceName)
		if err != nil {
			return nil, fmt.Errorf("loading interface %s of %s: %w", ifaceName, name, err)
		}
		class.Interfaces = append(class.Interfaces, iface)
	}

	class.SetLoaded()

	if err := r.link(class); err != nil {
		return nil, err
	}
	return class, nil
}

// link performs JVMS §5.4 linking (verification beyond structural
// sanity is a stated non-goal; this does field layout and method
// table construction, which is what resolution later depends on).
func (r *Registry) link(class *oop.Class) error {
	layoutFields(class)
	buildMethodTable(class)
	class.SetLinked()
	return nil
}

func isPrimitiveName(name string) bool {
	switch name {
	case "boolean", "byte", "char", "short", "int", "long", "float", "double", "void":
		return true
	}
	return false
}

func (r *Registry) requirePrimitiveClass(name string) (*oop.Class, error) {
	class := oop.NewClass(name)
	class.IsPrimitive = true
	class.SetLoaded()
	class.SetLinked()
	class.SetFullyInitialized()
	r.classes[name] = class
	return class, nil
}

// requireArrayClass fabricates an array pseudo-class for a descriptor
// like "[I" or "[Ljava/lang/String;" (JVMS §5.3.3: array classes are
// created directly by the VM, never loaded from class files).
func (r *Registry) requireArrayClass(name string) (*oop.Class, error) {
	elemName := name[1:]
	var elemClass *oop.Class
	var err error
	if strings.HasPrefix(elemName, "[") || strings.HasPrefix(elemName, "L") {
		en := elemName
		if strings.HasPrefix(en, "L") {
			en = strings.TrimSuffix(strings.TrimPrefix(en, "L"), ";")
		}
		elemClass, err = r.Require(en)
	} else {
		elemClass, err = r.Require(primitiveDescriptorName(elemName))
	}
	if err != nil {
		return nil, fmt.Errorf("fabricating array class %s: %w", name, err)
	}

	objectClass, err := r.Require("java/lang/Object")
	if err != nil {
		return nil, err
	}

	class := oop.NewClass(name)
	class.IsArray = true
	class.ElementType = elemClass
	class.Dimensions = strings.Count(name, "[")
	class.Super = objectClass
	class.SetLoaded()
	class.SetLinked()
	class.SetFullyInitialized() // array classes need no <clinit>
	r.classes[name] = class
	return class, nil
}

func primitiveDescriptorName(d string) string {
	switch d {
	case "Z":
		return "boolean"
	case "B":
		return "byte"
	case "C":
		return "char"
	case "S":
		return "short"
	case "I":
		return "int"
	case "J":
		return "long"
	case "F":
		return "float"
	case "D":
		return "double"
	default:
		return d
	}
}

// Initialize drives a class through JVMS §5.5: a class's <clinit>
// runs at most once, superclasses are initialized first, and
// recursive initialization on the class's own thread (this VM has
// exactly one) is a no-op rather than a deadlock.
func (r *Registry) Initialize(class *oop.Class) error {
	if class.IsPrimitive || class.IsArray {
		return nil
	}
	if class.State() == oop.StateFullyInitialized {
		return nil
	}
	if class.State() == oop.StateInitError {
		return fmt.Errorf("NoClassDefFoundError: %s (prior initialization failure)", class.Name)
	}
	if class.State() == oop.StateBeingInitialized {
		return nil // reentrant init on the same (only) thread: JVMS 5.5 step 1
	}

	class.SetBeingInitialized()

	if class.Super != nil {
		if err := r.Initialize(class.Super); err != nil {
			class.SetInitError(err)
			return err
		}
	}

	if r.init != nil && class.File != nil {
		if clinit := class.FindMethod("<clinit>", "()V"); clinit != nil && clinit.Owner == class {
			if err := r.init.RunClinit(class); err != nil {
				class.SetInitError(err)
				return fmt.Errorf("ExceptionInInitializerError: %s: %w", class.Name, err)
			}
		}
	}

	class.SetFullyInitialized()
	return nil
}

// Disassemble returns the raw parsed class file for name without
// linking or initializing it, so cmd/jdis can share this Registry's
// Source resolution instead of re-implementing classpath lookup.
func (r *Registry) Disassemble(name string) (*classfile.ClassFile, error) {
	if c, ok := r.classes[name]; ok && c.File != nil {
		return c.File, nil
	}
	return r.source.Open(name)
}

// RequireInitialized is the common entry point used before new/getstatic/
// putstatic/invokestatic (JVMS §5.5): require, link, and initialize.
func (r *Registry) RequireInitialized(name string) (*oop.Class, error) {
	class, err := r.Require(name)
	if err != nil {
		return nil, err
	}
	if err := r.Initialize(class); err != nil {
		return nil, err
	}
	return class, nil
}
