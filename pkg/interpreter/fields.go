package interpreter

import (
	"github.com/minijvm/minijvm/pkg/oop"
	"github.com/minijvm/minijvm/pkg/rtda"
)

func (it *Interpreter) execGetstatic(frame *rtda.Frame) error {
	cpIndex := frame.ReadU16()
	slot, owner, err := it.registry.ResolveField(frame.Class, cpIndex)
	if err != nil {
		return err
	}
	if err := it.registry.Initialize(owner); err != nil {
		return err
	}
	pushField(frame, it.materializeStatic(owner, slot.Name), slot.Descriptor)
	return nil
}

// materializeStatic replaces a deferred String ConstantValue (see
// oop.KindUtf8Const) with a real java.lang.String instance on first
// read, writing the result back so later reads see the same object
// (pkg/classloader/resolve.go's ResolveField/ResolveMethod and this
// use the same write-once-on-first-resolve idiom).
func (it *Interpreter) materializeStatic(owner *oop.Class, name string) oop.Value {
	v := owner.StaticFields[name]
	if v.Kind != oop.KindUtf8Const {
		return v
	}
	v = oop.RefVal(it.NewString(v.Utf8))
	owner.StaticFields[name] = v
	return v
}

func (it *Interpreter) execPutstatic(frame *rtda.Frame) error {
	cpIndex := frame.ReadU16()
	slot, owner, err := it.registry.ResolveField(frame.Class, cpIndex)
	if err != nil {
		return err
	}
	if err := it.registry.Initialize(owner); err != nil {
		return err
	}
	owner.StaticFields[slot.Name] = popField(frame, slot.Descriptor)
	return nil
}

func (it *Interpreter) execGetfield(frame *rtda.Frame) error {
	cpIndex := frame.ReadU16()
	slot, _, err := it.registry.ResolveField(frame.Class, cpIndex)
	if err != nil {
		return err
	}
	ref := frame.Pop().Ref
	if ref == nil {
		return it.throwNamed("java/lang/NullPointerException", "")
	}
	inst := ref.Data.(*oop.Instance)
	pushField(frame, inst.Fields[slot.Offset], slot.Descriptor)
	return nil
}

func (it *Interpreter) execPutfield(frame *rtda.Frame) error {
	cpIndex := frame.ReadU16()
	slot, _, err := it.registry.ResolveField(frame.Class, cpIndex)
	if err != nil {
		return err
	}
	value := popField(frame, slot.Descriptor)
	ref := frame.Pop().Ref
	if ref == nil {
		return it.throwNamed("java/lang/NullPointerException", "")
	}
	inst := ref.Data.(*oop.Instance)
	inst.Fields[slot.Offset] = value
	return nil
}

// pushField/popField push/pop a field value at its natural category
// width: long and double are category-2 (two stack slots), everything
// else category-1, per JVMS §2.6.2.
func pushField(frame *rtda.Frame, v oop.Value, descriptor string) {
	if descriptor == "J" || descriptor == "D" {
		frame.PushWide(v)
	} else {
		frame.Push(v)
	}
}

func popField(frame *rtda.Frame, descriptor string) oop.Value {
	if descriptor == "J" || descriptor == "D" {
		return frame.PopWide()
	}
	return frame.Pop()
}
