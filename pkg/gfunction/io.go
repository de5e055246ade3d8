package gfunction

import (
	"fmt"

	"github.com/minijvm/minijvm/pkg/oop"
)

// registerIO installs java/io bindings: the FileDescriptor/
// FileInputStream/FileOutputStream natives System.out/System.err/
// System.in are built on, reduced to this VM's single process-level
// stdout/stderr (SPEC_FULL §4.8 native surface, Non-goal: arbitrary
// filesystem I/O).
func registerIO(r *Registry) {
	r.Register("java/io/FileDescriptor", "initIDs", "()V", noop)
	r.Register("java/io/FileInputStream", "initIDs", "()V", noop)
	r.Register("java/io/FileOutputStream", "initIDs", "()V", noop)

	r.Register("java/io/FileOutputStream", "writeBytes", "([BIIZ)V", func(vm VM, args []oop.Value) (oop.Value, error) {
		buf, off, length := args[1], args[2].Int, args[3].Int
		arr, ok := buf.Ref.Data.(*oop.TypeArray)
		if !ok || arr.AType != oop.ATByte {
			return oop.Value{}, fmt.Errorf("writeBytes: expected byte[]")
		}
		w := vm.Stdout()
		if fdIsStderr(args[0]) {
			w = vm.Stderr()
		}
		bs := make([]byte, length)
		for i := int32(0); i < length; i++ {
			bs[i] = byte(arr.Bytes[off+i])
		}
		_, err := w.Write(bs)
		return oop.Value{}, err
	})
}

// fdIsStderr inspects a FileOutputStream receiver's backing
// FileDescriptor for the conventional fd==2 value that
// java.io.FileDescriptor.err, the descriptor behind System.err, carries.
func fdIsStderr(receiver oop.Value) bool {
	if receiver.Ref == nil {
		return false
	}
	inst, ok := receiver.Ref.Data.(*oop.Instance)
	if !ok {
		return false
	}
	slot, owner := receiver.Ref.Class.FindFieldSlot("fd")
	if slot == nil {
		return false
	}
	_ = owner
	fdVal := inst.Fields[slot.Offset]
	if fdVal.Ref == nil {
		return false
	}
	fdInst, ok := fdVal.Ref.Data.(*oop.Instance)
	if !ok {
		return false
	}
	if s, _ := fdVal.Ref.Class.FindFieldSlot("fd"); s != nil {
		return fdInst.Fields[s.Offset].Int == 2
	}
	return false
}
