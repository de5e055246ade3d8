package interpreter

import (
	"github.com/minijvm/minijvm/pkg/classfile"
	"github.com/minijvm/minijvm/pkg/oop"
	"github.com/minijvm/minijvm/pkg/rtda"
)

func (it *Interpreter) execNew(frame *rtda.Frame) error {
	cpIndex := frame.ReadU16()
	name, err := classfile.GetClassName(frame.Class.File.ConstantPool, cpIndex)
	if err != nil {
		return err
	}
	class, err := it.registry.RequireInitialized(name)
	if err != nil {
		return err
	}
	if class.IsInterface() || class.AccessFlags&0x0400 != 0 { // ACC_ABSTRACT
		return it.throwNamed("java/lang/InstantiationException", name)
	}
	frame.Push(oop.RefVal(it.allocate(class)))
	return nil
}

// execCheckcast implements JVMS §checkcast: verifies the top-of-stack
// reference (left in place) is assignable to the resolved class,
// raising ClassCastException otherwise. Null always passes.
func (it *Interpreter) execCheckcast(frame *rtda.Frame) error {
	cpIndex := frame.ReadU16()
	target, err := it.registry.ResolveClass(frame.Class, cpIndex)
	if err != nil {
		return err
	}
	ref := frame.Peek().Ref
	if ref == nil || ref.Class == nil {
		return nil
	}
	if !it.isInstance(ref, target) {
		return it.throwNamed("java/lang/ClassCastException",
			ref.Class.Name+" cannot be cast to "+target.Name)
	}
	return nil
}

// execInstanceof implements JVMS §instanceof: pops the reference,
// pushes 1/0; null always yields 0.
func (it *Interpreter) execInstanceof(frame *rtda.Frame) error {
	cpIndex := frame.ReadU16()
	target, err := it.registry.ResolveClass(frame.Class, cpIndex)
	if err != nil {
		return err
	}
	ref := frame.Pop().Ref
	if ref == nil || ref.Class == nil {
		frame.Push(oop.Int(0))
		return nil
	}
	frame.Push(oop.Bool(it.isInstance(ref, target)))
	return nil
}

// isInstance implements the general instanceof semantics including
// array covariance (JVMS §4.10.1.2): an array of S is assignable to
// an array of T whenever S is assignable to T, and every array type
// is assignable to java/lang/Object/Cloneable/Serializable.
func (it *Interpreter) isInstance(ref *oop.Ref, target *oop.Class) bool {
	source := ref.Class
	if source.IsArray && target.IsArray {
		if source.ElementType.IsPrimitive || target.ElementType.IsPrimitive {
			return source.ElementType == target.ElementType
		}
		return it.classAssignable(source.ElementType, target.ElementType)
	}
	if source.IsArray && !target.IsArray {
		return target.Name == "java/lang/Object" || target.Name == "java/lang/Cloneable" || target.Name == "java/io/Serializable"
	}
	return it.classAssignable(source, target)
}

func (it *Interpreter) classAssignable(source, target *oop.Class) bool {
	return source.AssignableTo(target)
}

// execAthrow implements JVMS §athrow: pops the exception reference
// and raises it as a *Throw for runFrame to route to a handler, or to
// propagate to the caller if none covers this PC.
func (it *Interpreter) execAthrow(frame *rtda.Frame) error {
	ref := frame.Pop().Ref
	if ref == nil {
		return it.throwNamed("java/lang/NullPointerException", "")
	}
	return &Throw{Ref: ref}
}
