package interpreter

import (
	"fmt"

	"github.com/minijvm/minijvm/pkg/classfile"
	"github.com/minijvm/minijvm/pkg/oop"
	"github.com/minijvm/minijvm/pkg/rtda"
)

// execLdc implements ldc/ldc_w (JVMS §ldc): pushes a single-width
// constant — int, float, String, or a Class mirror — from the
// constant pool.
func (it *Interpreter) execLdc(frame *rtda.Frame, cpIndex uint16) error {
	entry, err := classfile.EntryAt(frame.Class.File.ConstantPool, cpIndex)
	if err != nil {
		return err
	}
	switch e := entry.(type) {
	case *classfile.ConstantInteger:
		frame.Push(oop.Int(e.Value))
	case *classfile.ConstantFloat:
		frame.Push(oop.Float(e.Value))
	case *classfile.ConstantString:
		s, err := classfile.GetUtf8(frame.Class.File.ConstantPool, e.StringIndex)
		if err != nil {
			return err
		}
		frame.Push(oop.RefVal(it.NewString(s)))
	case *classfile.ConstantClass:
		name, err := classfile.GetClassName(frame.Class.File.ConstantPool, cpIndex)
		if err != nil {
			return err
		}
		class, err := it.registry.Require(name)
		if err != nil {
			return err
		}
		frame.Push(oop.RefVal(it.mirrorOf(class)))
	default:
		return fmt.Errorf("ldc: unsupported constant pool entry at index %d", cpIndex)
	}
	return nil
}

// execLdc2 implements ldc2_w (JVMS §ldc2_w): pushes a category-2
// constant, long or double.
func (it *Interpreter) execLdc2(frame *rtda.Frame, cpIndex uint16) error {
	entry, err := classfile.EntryAt(frame.Class.File.ConstantPool, cpIndex)
	if err != nil {
		return err
	}
	switch e := entry.(type) {
	case *classfile.ConstantLong:
		frame.PushWide(oop.Long(e.Value))
	case *classfile.ConstantDouble:
		frame.PushWide(oop.Double(e.Value))
	default:
		return fmt.Errorf("ldc2_w: unsupported constant pool entry at index %d", cpIndex)
	}
	return nil
}
