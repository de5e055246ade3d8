package classloader

import (
	"github.com/minijvm/minijvm/pkg/classfile"
	"github.com/minijvm/minijvm/pkg/oop"
)

// layoutFields assigns flat field-vector offsets: instance fields
// inherit the superclass's slots as a prefix and append their own
// (JVMS §5.4.2's layout invariant — subclass instances are
// assignment-compatible with a superclass-typed view of the same
// fields). Static fields get their own per-class storage instead.
func layoutFields(class *oop.Class) {
	offset := 0
	if class.Super != nil {
		offset = class.Super.InstanceFieldCount
		for name, slot := range class.Super.FieldLayout {
			if !slot.Static {
				class.FieldLayout[name] = slot
			}
		}
	}

	if class.File == nil {
		class.InstanceFieldCount = offset
		return
	}

	for i := range class.File.Fields {
		f := &class.File.Fields[i]
		if f.IsStatic() {
			class.FieldLayout[f.Name] = &oop.FieldSlot{
				Name:       f.Name,
				Descriptor: f.Descriptor,
				Static:     true,
			}
			class.StaticFields[f.Name] = constantValue(class.File, f)
			continue
		}
		class.FieldLayout[f.Name] = &oop.FieldSlot{
			Name:       f.Name,
			Descriptor: f.Descriptor,
			Offset:     offset,
		}
		offset++
	}

	class.InstanceFieldCount = offset
}

// constantValue returns a static field's initial value, honouring the
// ConstantValue attribute (JVMS §4.7.2) when javac has compiled one in
// place of <clinit> bytecode — e.g. `static final int X = 5;` or an
// interface constant. Falls back to the JVMS §2.3/§2.4 default when no
// such attribute is present, since that field is instead assigned by
// <clinit>.
func constantValue(cf *classfile.ClassFile, f *classfile.FieldInfo) oop.Value {
	switch c := f.ConstValue.(type) {
	case *classfile.ConstantInteger:
		return oop.Int(c.Value)
	case *classfile.ConstantLong:
		return oop.Long(c.Value)
	case *classfile.ConstantFloat:
		return oop.Float(c.Value)
	case *classfile.ConstantDouble:
		return oop.Double(c.Value)
	case *classfile.ConstantString:
		s, err := classfile.GetUtf8(cf.ConstantPool, c.StringIndex)
		if err != nil {
			return zeroValue(f.Descriptor)
		}
		return oop.Utf8Const(s)
	default:
		return zeroValue(f.Descriptor)
	}
}

// zeroValue returns the JVMS §2.3/§2.4 default value for a field
// descriptor, used to initialize fields before any constructor runs.
func zeroValue(descriptor string) oop.Value {
	switch descriptor {
	case "J":
		return oop.Long(0)
	case "F":
		return oop.Float(0)
	case "D":
		return oop.Double(0)
	case "Z", "B", "C", "S", "I":
		return oop.Int(0)
	default:
		return oop.Null()
	}
}

// buildMethodTable registers this class's declared methods, keyed by
// "name:descriptor". Virtual dispatch walks the Super chain at call
// time via oop.Class.FindMethod rather than flattening a vtable here,
// since JVMS overriding resolution needs the receiver's *runtime*
// class, not a precomputed table indexed by static type.
func buildMethodTable(class *oop.Class) {
	if class.File == nil {
		return
	}
	for i := range class.File.Methods {
		m := &class.File.Methods[i]
		key := m.Name + ":" + m.Descriptor
		class.Methods[key] = &oop.Method{
			Owner:      class,
			Name:       m.Name,
			Descriptor: m.Descriptor,
			Info:       m,
		}
	}
}

// FindField resolves a field reference to its owning class's slot,
// searching superclasses and superinterfaces (JVMS §5.4.3.2).
func FindField(class *oop.Class, name string) (*oop.FieldSlot, *oop.Class) {
	if slot, owner := class.FindFieldSlot(name); slot != nil {
		return slot, owner
	}
	for _, iface := range class.Interfaces {
		if slot, owner := FindField(iface, name); slot != nil {
			return slot, owner
		}
	}
	if class.Super != nil {
		return FindField(class.Super, name)
	}
	return nil, nil
}
