package interpreter

import (
	"fmt"

	"github.com/minijvm/minijvm/pkg/oop"
	"github.com/minijvm/minijvm/pkg/rtda"
)

// execWide implements the wide prefix instruction (JVMS §wide): the
// next opcode's local-variable index (and, for iinc, its constant)
// are read as 16-bit operands instead of 8-bit ones, letting a method
// address more than 256 local variables.
func (it *Interpreter) execWide(frame *rtda.Frame) error {
	opcode := frame.ReadU8()
	index := int(frame.ReadU16())

	switch opcode {
	case OpIload, OpFload, OpAload:
		frame.Push(frame.GetLocal(index))
	case OpLload, OpDload:
		frame.PushWide(frame.GetLocalWide(index))
	case OpIstore, OpFstore, OpAstore:
		frame.SetLocal(index, frame.Pop())
	case OpLstore, OpDstore:
		frame.SetLocalWide(index, frame.PopWide())
	case OpIinc:
		delta := int32(frame.ReadI16())
		cur := frame.GetLocal(index)
		frame.SetLocal(index, oop.Int(cur.Int+delta))
	case OpRet:
		frame.PC = int(frame.GetLocal(index).Int)
	default:
		return fmt.Errorf("wide: unsupported opcode 0x%02X", opcode)
	}
	return nil
}
