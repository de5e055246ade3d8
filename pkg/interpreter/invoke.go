package interpreter

import (
	"github.com/minijvm/minijvm/pkg/classfile"
	"github.com/minijvm/minijvm/pkg/oop"
	"github.com/minijvm/minijvm/pkg/rtda"
)

// popArgs pops a call's arguments off the operand stack in
// declaration order, honoring long/double's two-slot width, and
// (unless static) the receiver beneath them.
func popArgs(frame *rtda.Frame, descriptor string, static bool) ([]oop.Value, error) {
	params, err := classfile.ParamDescriptors(descriptor)
	if err != nil {
		return nil, err
	}
	args := make([]oop.Value, len(params))
	for i := len(params) - 1; i >= 0; i-- {
		if classfile.IsWideType(params[i]) {
			args[i] = frame.PopWide()
		} else {
			args[i] = frame.Pop()
		}
	}
	if static {
		return args, nil
	}
	receiver := frame.Pop()
	return append([]oop.Value{receiver}, args...), nil
}

// pushResult pushes a call's return value at its natural width,
// honoring void (nothing pushed).
func pushResult(frame *rtda.Frame, v oop.Value, descriptor string) {
	ret := classfile.ReturnTypeDescriptor(descriptor)
	if classfile.IsVoidReturn(descriptor) {
		return
	}
	if classfile.IsWideType(ret) {
		frame.PushWide(v)
	} else {
		frame.Push(v)
	}
}

// execInvokevirtual implements JVMS §invokevirtual: the call is
// statically resolved to anchor name/descriptor/declared class, but
// actually dispatched against the receiver's runtime class (overriding
// resolution, JVMS §5.4.3.3/§2.11.8).
func (it *Interpreter) execInvokevirtual(frame *rtda.Frame) (oop.Value, bool, error) {
	cpIndex := frame.ReadU16()
	resolved, err := it.registry.ResolveMethod(frame.Class, cpIndex, false)
	if err != nil {
		return oop.Value{}, false, err
	}
	args, err := popArgs(frame, resolved.Descriptor, false)
	if err != nil {
		return oop.Value{}, false, err
	}
	if args[0].Ref == nil {
		return oop.Value{}, false, it.throwNamed("java/lang/NullPointerException", "")
	}
	target := args[0].Ref.Class.FindMethod(resolved.Name, resolved.Descriptor)
	if target == nil {
		target = resolved
	}
	result, err := it.invoke(args[0].Ref.Class, target, args)
	if err != nil {
		return oop.Value{}, false, err
	}
	pushResult(frame, result, resolved.Descriptor)
	return oop.Value{}, false, nil
}

// execInvokespecial implements JVMS §invokespecial: used for
// instance-init methods, private methods, and superclass calls — all
// of which bind directly to the resolved method without virtual
// re-dispatch.
func (it *Interpreter) execInvokespecial(frame *rtda.Frame) (oop.Value, bool, error) {
	cpIndex := frame.ReadU16()
	resolved, err := it.registry.ResolveMethod(frame.Class, cpIndex, false)
	if err != nil {
		return oop.Value{}, false, err
	}
	args, err := popArgs(frame, resolved.Descriptor, false)
	if err != nil {
		return oop.Value{}, false, err
	}
	if args[0].Ref == nil {
		return oop.Value{}, false, it.throwNamed("java/lang/NullPointerException", "")
	}
	result, err := it.invoke(resolved.Owner, resolved, args)
	if err != nil {
		return oop.Value{}, false, err
	}
	pushResult(frame, result, resolved.Descriptor)
	return oop.Value{}, false, nil
}

func (it *Interpreter) execInvokestatic(frame *rtda.Frame) (oop.Value, bool, error) {
	cpIndex := frame.ReadU16()
	resolved, err := it.registry.ResolveMethod(frame.Class, cpIndex, false)
	if err != nil {
		return oop.Value{}, false, err
	}
	if err := it.registry.Initialize(resolved.Owner); err != nil {
		return oop.Value{}, false, err
	}
	args, err := popArgs(frame, resolved.Descriptor, true)
	if err != nil {
		return oop.Value{}, false, err
	}
	result, err := it.invoke(resolved.Owner, resolved, args)
	if err != nil {
		return oop.Value{}, false, err
	}
	pushResult(frame, result, resolved.Descriptor)
	return oop.Value{}, false, nil
}

// execInvokeinterface implements JVMS §invokeinterface: resolution
// anchors on the interface's method signature, but dispatch always
// redirects through the receiver's runtime class, since interfaces
// carry no implementation of their own abstract methods.
func (it *Interpreter) execInvokeinterface(frame *rtda.Frame) (oop.Value, bool, error) {
	cpIndex := frame.ReadU16()
	resolved, err := it.registry.ResolveMethod(frame.Class, cpIndex, true)
	if err != nil {
		return oop.Value{}, false, err
	}
	args, err := popArgs(frame, resolved.Descriptor, false)
	if err != nil {
		return oop.Value{}, false, err
	}
	if args[0].Ref == nil {
		return oop.Value{}, false, it.throwNamed("java/lang/NullPointerException", "")
	}
	target := args[0].Ref.Class.FindMethod(resolved.Name, resolved.Descriptor)
	if target == nil {
		target = args[0].Ref.Class.FindInterfaceMethod(resolved.Name, resolved.Descriptor)
	}
	if target == nil {
		target = resolved
	}
	result, err := it.invoke(args[0].Ref.Class, target, args)
	if err != nil {
		return oop.Value{}, false, err
	}
	pushResult(frame, result, resolved.Descriptor)
	return oop.Value{}, false, nil
}
