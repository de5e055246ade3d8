package oop

import (
	"sync"

	"github.com/minijvm/minijvm/pkg/classfile"
)

// State is a Class's position in the JVMS §5.5 linking/initialization
// state machine.
type State int

const (
	StateAllocated State = iota
	StateLoaded
	StateLinked
	StateBeingInitialized
	StateFullyInitialized
	StateInitError
)

func (s State) String() string {
	switch s {
	case StateAllocated:
		return "allocated"
	case StateLoaded:
		return "loaded"
	case StateLinked:
		return "linked"
	case StateBeingInitialized:
		return "being-initialized"
	case StateFullyInitialized:
		return "fully-initialized"
	case StateInitError:
		return "init-error"
	default:
		return "unknown"
	}
}

// FieldSlot describes one entry in a Class's flat instance field
// layout: the superclass's fields occupy the low-numbered prefix of
// the vector (see classloader.layoutFields).
type FieldSlot struct {
	Name       string
	Descriptor string
	Offset     int
	Static     bool
}

// Method is a resolved, class-bound view of a classfile.MethodInfo,
// cheap to look up repeatedly from the constant-pool cache.
type Method struct {
	Owner      *Class
	Name       string
	Descriptor string
	Info       *classfile.MethodInfo
}

// IsStatic, IsNative, IsAbstract mirror the flags on the underlying
// classfile.MethodInfo for convenience at call sites.
func (m *Method) IsStatic() bool     { return m.Info.IsStatic() }
func (m *Method) IsNative() bool     { return m.Info.IsNative() }
func (m *Method) IsAbstract() bool   { return m.Info.IsAbstract() }
func (m *Method) IsSynchronized() bool { return m.Info.IsSynchronized() }

// Class is the runtime representation of a loaded, (eventually)
// linked and initialized JVM class, interface, array type, or
// primitive pseudo-type.
type Class struct {
	Name        string
	Super       *Class // nil for java/lang/Object and for primitives
	Interfaces  []*Class
	File        *classfile.ClassFile // nil for array and primitive classes
	AccessFlags uint16

	IsArray     bool
	IsPrimitive bool
	ElementType *Class // for array classes, the element's Class
	Dimensions  int    // for array classes

	InstanceFieldCount int // total flattened instance slot count, incl. superclasses
	FieldLayout        map[string]*FieldSlot
	StaticFields       map[string]Value

	Methods      map[string]*Method // keyed by "name:descriptor"
	cpCache      []CPCacheEntry
	cpCacheMu    sync.Mutex

	Mirror *Ref // the java.lang.Class instance for this Class

	mu             sync.Mutex
	state          State
	initCond       *sync.Cond
	initByGoroutine int64 // advisory: id of the thread performing <clinit>; this VM is single-threaded
	initErr        error
}

// CPCacheEntry memoizes the resolution of one constant-pool index
// across repeated execution of the same invoke*/get*/put* site
// (JVMS §5.1 "constant pool resolution... must be idempotent").
type CPCacheEntry struct {
	Resolved bool
	Field    *FieldSlot
	FieldOwner *Class
	Method   *Method
}

// NewClass allocates a Class in the Allocated state. Callers (the
// classloader) populate File/Super/Interfaces and drive it through
// Link/Initialize.
func NewClass(name string) *Class {
	c := &Class{
		Name:         name,
		FieldLayout:  make(map[string]*FieldSlot),
		StaticFields: make(map[string]Value),
		Methods:      make(map[string]*Method),
		state:        StateAllocated,
	}
	c.initCond = sync.NewCond(&c.mu)
	return c
}

func (c *Class) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Class) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.initCond.Broadcast()
	c.mu.Unlock()
}

// SetLoaded, SetLinked, SetBeingInitialized, and SetFullyInitialized
// advance the class through the JVMS §5.5 state machine; they are
// exported so pkg/classloader (which owns the transitions) can drive
// them without classloader and oop forming an import cycle.
func (c *Class) SetLoaded()            { c.setState(StateLoaded) }
func (c *Class) SetLinked()            { c.setState(StateLinked) }
func (c *Class) SetBeingInitialized()  { c.setState(StateBeingInitialized) }
func (c *Class) SetFullyInitialized()  { c.setState(StateFullyInitialized) }

// SetInitError transitions to the terminal InitError state, recording
// the cause (JVMS §5.5: a failed <clinit> poisons the class forever).
func (c *Class) SetInitError(err error) {
	c.mu.Lock()
	c.state = StateInitError
	c.initErr = err
	c.initCond.Broadcast()
	c.mu.Unlock()
}

// InitError returns the error recorded by SetInitError, if any.
func (c *Class) InitError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErr
}

// CPCache returns the per-class constant-pool cache slice, lazily
// sized to the class file's constant pool length.
func (c *Class) CPCache() []CPCacheEntry {
	c.cpCacheMu.Lock()
	defer c.cpCacheMu.Unlock()
	if c.cpCache == nil && c.File != nil {
		c.cpCache = make([]CPCacheEntry, len(c.File.ConstantPool))
	}
	return c.cpCache
}

// IsSubclassOf reports whether c is the same class as, or a (possibly
// indirect) subclass of, other.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}

// Implements reports whether c (or a superclass) directly or
// transitively lists iface among its interfaces.
func (c *Class) Implements(iface *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		for _, i := range cur.Interfaces {
			if i == iface || i.Implements(iface) {
				return true
			}
		}
	}
	return false
}

// AssignableTo reports whether a reference of class c can be assigned
// to a variable of class target (JVMS §4.10.1.2 widening reference
// conversion, restricted to the non-array, non-generics subset this
// VM needs).
func (c *Class) AssignableTo(target *Class) bool {
	if c == target {
		return true
	}
	if target.AccessFlags&0x0200 != 0 { // ACC_INTERFACE
		return c.Implements(target)
	}
	return c.IsSubclassOf(target)
}

// IsInterface reports whether this Class represents an interface.
func (c *Class) IsInterface() bool { return c.AccessFlags&0x0200 != 0 }

// FindMethod looks up a method by name and descriptor, searching this
// class then superclasses (JVMS §5.4.3.3 instance method resolution,
// minus interface default-method search which callers perform
// separately via FindInterfaceMethod).
func (c *Class) FindMethod(name, descriptor string) *Method {
	key := name + ":" + descriptor
	for cur := c; cur != nil; cur = cur.Super {
		if m, ok := cur.Methods[key]; ok {
			return m
		}
	}
	return nil
}

// FindInterfaceMethod searches this class's interfaces (and their
// superinterfaces) for a default method matching name/descriptor.
func (c *Class) FindInterfaceMethod(name, descriptor string) *Method {
	key := name + ":" + descriptor
	for cur := c; cur != nil; cur = cur.Super {
		for _, iface := range cur.Interfaces {
			if m, ok := iface.Methods[key]; ok && !m.IsAbstract() {
				return m
			}
			if m := iface.FindInterfaceMethod(name, descriptor); m != nil {
				return m
			}
		}
	}
	return nil
}

// FindFieldSlot looks up an instance or static field's layout slot,
// searching this class then superclasses (JVMS §5.4.3.2).
func (c *Class) FindFieldSlot(name string) (*FieldSlot, *Class) {
	for cur := c; cur != nil; cur = cur.Super {
		if slot, ok := cur.FieldLayout[name]; ok {
			return slot, cur
		}
	}
	return nil, nil
}
