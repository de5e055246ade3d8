// Package interpreter implements the JVM bytecode interpreter: the
// per-frame dispatch loop (JVMS §2.11, chapter 6), the method
// invocation engine (JVMS §5.4.3, §2.6), and the exception handling
// protocol (JVMS §2.10, §3.12).
package interpreter

import (
	"fmt"
	"io"
	"os"

	"github.com/minijvm/minijvm/pkg/classfile"
	"github.com/minijvm/minijvm/pkg/classloader"
	"github.com/minijvm/minijvm/pkg/gfunction"
	"github.com/minijvm/minijvm/pkg/oop"
	"github.com/minijvm/minijvm/pkg/rtda"
)

// maxFrameDepth bounds recursive invocation; exceeding it makes invoke
// return a plain Go error reading "StackOverflowError" rather than
// crashing the host process. That error is not a Java exception
// object, so no exception handler in the running program catches it.
const maxFrameDepth = 2048

// Interpreter is the single-threaded JVM execution engine: one
// Interpreter per running program, owning the class Registry, the
// native method table, and the monitor table backing
// monitorenter/monitorexit and synchronized methods.
type Interpreter struct {
	registry *classloader.Registry
	Natives  *gfunction.Registry
	out      io.Writer
	errOut   io.Writer

	frameDepth int
	monitors   map[*oop.Ref]int32
}

// New creates an Interpreter. reg must already have its Source set;
// New wires itself as reg's Initializer so classloader.Registry can
// run <clinit> without importing this package (see
// classloader.Initializer).
func New(reg *classloader.Registry, natives *gfunction.Registry) *Interpreter {
	it := &Interpreter{
		registry: reg,
		Natives:  natives,
		out:      os.Stdout,
		errOut:   os.Stderr,
		monitors: make(map[*oop.Ref]int32),
	}
	reg.SetInitializer(it)
	return it
}

// SetOutput overrides the interpreter's stdout/stderr writers (tests
// and embedding use this to capture program output).
func (it *Interpreter) SetOutput(out, errOut io.Writer) {
	it.out = out
	it.errOut = errOut
}

func (it *Interpreter) Stdout() io.Writer { return it.out }
func (it *Interpreter) Stderr() io.Writer { return it.errOut }

// Registry implements gfunction.VM, exposing the class Registry to
// native bindings that need to resolve classes themselves.
func (it *Interpreter) Registry() *classloader.Registry { return it.registry }

// RunClinit implements classloader.Initializer: it runs a class's
// <clinit> with no arguments, translating any thrown exception into a
// plain Go error (classloader wraps it as ExceptionInInitializerError).
func (it *Interpreter) RunClinit(class *oop.Class) error {
	clinit, ok := class.Methods["<clinit>:()V"]
	if !ok {
		return nil
	}
	_, err := it.invoke(class, clinit, nil)
	return err
}

// ExecuteMain loads mainClassName, locates its main(String[]) method,
// and runs it with the given command-line arguments converted to a
// java.lang.String[].
func (it *Interpreter) ExecuteMain(mainClassName string, programArgs []string) error {
	class, err := it.registry.RequireInitialized(mainClassName)
	if err != nil {
		return err
	}
	method := class.FindMethod("main", "([Ljava/lang/String;)V")
	if method == nil {
		return fmt.Errorf("main method not found in %s", mainClassName)
	}

	argsArray, err := it.newStringArray(programArgs)
	if err != nil {
		return err
	}

	_, err = it.invoke(class, method, []oop.Value{oop.RefVal(argsArray)})
	return err
}

// InvokeMethod implements gfunction.VM: invoking a Java method on
// behalf of a native binding (e.g. AccessController.doPrivileged
// calling a PrivilegedAction's run()).
func (it *Interpreter) InvokeMethod(class *oop.Class, method *oop.Method, args []oop.Value) (oop.Value, error) {
	return it.invoke(class, method, args)
}

// invoke is the Invocation Engine (SPEC_FULL §4.6): it builds a
// frame, acquires the method's monitor if synchronized, dispatches to
// a native binding or interprets the Code attribute, and guarantees
// the monitor is released and the frame popped on every exit path —
// normal return or exception propagation alike.
func (it *Interpreter) invoke(class *oop.Class, method *oop.Method, args []oop.Value) (oop.Value, error) {
	if method.IsAbstract() {
		return oop.Value{}, fmt.Errorf("AbstractMethodError: %s.%s%s", class.Name, method.Name, method.Descriptor)
	}

	var monitorTarget *oop.Ref
	if method.IsSynchronized() {
		if method.IsStatic() {
			monitorTarget = it.mirrorOf(class)
		} else if len(args) > 0 {
			monitorTarget = args[0].Ref
		}
		if monitorTarget != nil {
			it.monitorEnter(monitorTarget)
		}
	}
	defer func() {
		if monitorTarget != nil {
			it.monitorExit(monitorTarget)
		}
	}()

	if method.IsNative() {
		fn, ok := it.Natives.Lookup(class.Name, method.Name, method.Descriptor)
		if !ok {
			return oop.Value{}, fmt.Errorf("UnsatisfiedLinkError: %s.%s%s", class.Name, method.Name, method.Descriptor)
		}
		return fn(it, args)
	}

	if method.Info.Code == nil {
		return oop.Value{}, fmt.Errorf("method %s.%s%s has no Code attribute", class.Name, method.Name, method.Descriptor)
	}

	it.frameDepth++
	if it.frameDepth > maxFrameDepth {
		it.frameDepth--
		return oop.Value{}, fmt.Errorf("StackOverflowError")
	}
	defer func() { it.frameDepth-- }()

	frame := rtda.NewFrame(int(method.Info.Code.MaxLocals), int(method.Info.Code.MaxStack), method.Info.Code.Code, class, method)
	placeArguments(frame, method.Descriptor, args)

	return it.runFrame(frame)
}

// placeArguments lays out a method's incoming arguments into local
// variable slots 0..n, doubling up the slot count for long/double
// parameters per JVMS §2.6.1.
func placeArguments(frame *rtda.Frame, descriptor string, args []oop.Value) {
	slot := 0
	for _, v := range args {
		frame.Locals[slot] = v
		slot++
		if v.Kind == oop.KindLong || v.Kind == oop.KindDouble {
			frame.Locals[slot] = oop.Null()
			slot++
		}
	}
}

// runFrame is the per-frame bytecode dispatch loop (JVMS §2.11): it
// fetches, decodes, and executes instructions until a return
// instruction produces a value, the method falls off the end (void
// return), or an exception either finds a handler in this frame or
// propagates to the caller.
func (it *Interpreter) runFrame(frame *rtda.Frame) (oop.Value, error) {
	for frame.PC < len(frame.Code) {
		opcode := frame.Code[frame.PC]
		instructionPC := frame.PC
		frame.PC++

		retVal, hasReturn, err := it.step(frame, opcode)
		if err != nil {
			thrown, isThrow := err.(*Throw)
			if !isThrow {
				return oop.Value{}, fmt.Errorf("in %s.%s%s at pc=%d: %w",
					frame.Class.Name, frame.Method.Name, frame.Method.Descriptor, instructionPC, err)
			}
			handlerPC, ok := it.findHandler(frame, instructionPC, thrown)
			if !ok {
				return oop.Value{}, thrown
			}
			frame.SP = 0
			frame.Push(oop.RefVal(thrown.Ref))
			frame.PC = handlerPC
			continue
		}
		if hasReturn {
			return retVal, nil
		}
	}
	return oop.Value{}, nil
}

// findHandler searches the current method's exception table for a
// handler covering pc whose catch type matches the thrown exception's
// class (JVMS §3.12); a zero CatchType entry is a catch-all (finally).
func (it *Interpreter) findHandler(frame *rtda.Frame, pc int, thrown *Throw) (int, bool) {
	code := frame.Method.Info.Code
	for i := range code.ExceptionHandlers {
		h := &code.ExceptionHandlers[i]
		if pc < int(h.StartPC) || pc >= int(h.EndPC) {
			continue
		}
		if h.CatchType == 0 {
			return int(h.HandlerPC), true
		}
		catchName, err := classfile.GetClassName(frame.Class.File.ConstantPool, h.CatchType)
		if err != nil {
			continue
		}
		catchClass, err := it.registry.Require(catchName)
		if err != nil {
			continue
		}
		if thrown.Ref != nil && thrown.Ref.Class != nil && thrown.Ref.Class.AssignableTo(catchClass) {
			return int(h.HandlerPC), true
		}
	}
	return 0, false
}

// MirrorOf exposes mirror allocation to pkg/vmbootstrap, which needs
// to eagerly create mirrors for the primitive and primitive-array
// classes during the fixed bootstrap sequence (SPEC_FULL §4.11 step 2).
func (it *Interpreter) MirrorOf(class *oop.Class) *oop.Ref {
	return it.mirrorOf(class)
}

// mirrorOf returns the java.lang.Class instance reflecting class,
// doubling as the lock object for a static synchronized method
// (JVMS §2.11.10: static methods synchronize on the class itself),
// allocating and caching it on first use.
func (it *Interpreter) mirrorOf(class *oop.Class) *oop.Ref {
	if class == nil {
		return nil
	}
	if class.Mirror != nil {
		return class.Mirror
	}
	classClass := it.registry.Lookup("java/lang/Class")
	class.Mirror = oop.NewRef(classClass, &oop.Mirror{Reflects: class})
	return class.Mirror
}

// monitorEnter and monitorExit implement JVMS §2.11.10 reentrant
// monitors. With exactly one interpreter thread (SPEC_FULL §5
// Non-goal: full thread scheduling), acquiring a held monitor never
// blocks — it just bumps a per-object entry count, which exit must
// bring back to zero before the monitor is free again.
func (it *Interpreter) monitorEnter(ref *oop.Ref) {
	it.monitors[ref]++
}

func (it *Interpreter) monitorExit(ref *oop.Ref) error {
	count := it.monitors[ref]
	if count <= 0 {
		return fmt.Errorf("IllegalMonitorStateException")
	}
	count--
	if count == 0 {
		delete(it.monitors, ref)
	} else {
		it.monitors[ref] = count
	}
	return nil
}

// NewInstance implements gfunction.VM: allocates a zero-initialized
// instance of className without running any constructor (native
// bindings that need a constructed object invoke <init> themselves
// via InvokeMethod).
func (it *Interpreter) NewInstance(className string) (*oop.Ref, error) {
	class, err := it.registry.RequireInitialized(className)
	if err != nil {
		return nil, err
	}
	return it.allocate(class), nil
}

func (it *Interpreter) allocate(class *oop.Class) *oop.Ref {
	return oop.NewRef(class, &oop.Instance{Fields: make([]oop.Value, class.InstanceFieldCount)})
}

// NewString implements gfunction.VM: builds a java.lang.String
// instance backed by a char[] holding s's UTF-16 encoding, the same
// intrinsic representation the interpreter's ldc of a CONSTANT_String
// produces (see ldc.go).
func (it *Interpreter) NewString(s string) *oop.Ref {
	class, err := it.registry.RequireInitialized("java/lang/String")
	if err != nil {
		return nil
	}
	return it.newStringOf(class, s)
}

func (it *Interpreter) newStringOf(class *oop.Class, s string) *oop.Ref {
	charArrayClass, _ := it.registry.Require("[C")
	chars := utf16Encode(s)
	arr := oop.NewRef(charArrayClass, &oop.TypeArray{AType: oop.ATChar, Chars: chars})

	ref := it.allocate(class)
	inst := ref.Data.(*oop.Instance)
	if slot, _ := class.FindFieldSlot("value"); slot != nil {
		inst.Fields[slot.Offset] = oop.RefVal(arr)
	}
	return ref
}

// newStringArray builds a java.lang.String[] for main(String[] args).
func (it *Interpreter) newStringArray(args []string) (*oop.Ref, error) {
	arrayClass, err := it.registry.Require("[Ljava/lang/String;")
	if err != nil {
		return nil, err
	}
	elements := make([]*oop.Ref, len(args))
	for i, a := range args {
		elements[i] = it.NewString(a)
	}
	return oop.NewRef(arrayClass, &oop.ObjectArray{ElementClassName: "java/lang/String", Elements: elements}), nil
}

func utf16Encode(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r <= 0xFFFF {
			units = append(units, uint16(r))
			continue
		}
		r -= 0x10000
		units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
	}
	return units
}
