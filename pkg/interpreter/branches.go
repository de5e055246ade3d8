package interpreter

import (
	"github.com/minijvm/minijvm/pkg/oop"
	"github.com/minijvm/minijvm/pkg/rtda"
)

func (it *Interpreter) branchUnary(frame *rtda.Frame, cond func(int32) bool) {
	branchPC := frame.PC - 1
	offset := frame.ReadI16()
	v := frame.Pop()
	if cond(v.Int) {
		frame.PC = branchPC + int(offset)
	}
}

func (it *Interpreter) branchBinary(frame *rtda.Frame, cond func(a, b int32) bool) {
	branchPC := frame.PC - 1
	offset := frame.ReadI16()
	v2 := frame.Pop()
	v1 := frame.Pop()
	if cond(v1.Int, v2.Int) {
		frame.PC = branchPC + int(offset)
	}
}

func (it *Interpreter) branchRef(frame *rtda.Frame, cond func(a, b *oop.Ref) bool) {
	branchPC := frame.PC - 1
	offset := frame.ReadI16()
	v2 := frame.Pop()
	v1 := frame.Pop()
	if cond(v1.Ref, v2.Ref) {
		frame.PC = branchPC + int(offset)
	}
}

// branchNull implements ifnull (wantNull=true) and ifnonnull (wantNull=false).
func (it *Interpreter) branchNull(frame *rtda.Frame, wantNull bool) {
	branchPC := frame.PC - 1
	offset := frame.ReadI16()
	v := frame.Pop()
	if v.IsNull() == wantNull {
		frame.PC = branchPC + int(offset)
	}
}

// execTableswitch implements JVMS §tableswitch: the opcode is
// followed by 0-3 zero-padding bytes to align to a 4-byte boundary,
// then default/low/high 32-bit operands and (high-low+1) jump offsets.
func (it *Interpreter) execTableswitch(frame *rtda.Frame) {
	opcodePC := frame.PC - 1
	it.alignPC(frame, opcodePC)

	defaultOffset := frame.ReadI32()
	low := frame.ReadI32()
	high := frame.ReadI32()

	index := frame.Pop().Int
	if index < low || index > high {
		frame.PC = opcodePC + int(defaultOffset)
		return
	}

	// skip to the matching jump offset
	skip := int(index-low) * 4
	frame.PC += skip
	offset := frame.ReadI32()
	frame.PC = opcodePC + int(offset)
}

// execLookupswitch implements JVMS §lookupswitch: default operand,
// npairs, then npairs sorted (match, offset) pairs.
func (it *Interpreter) execLookupswitch(frame *rtda.Frame) {
	opcodePC := frame.PC - 1
	it.alignPC(frame, opcodePC)

	defaultOffset := frame.ReadI32()
	npairs := frame.ReadI32()

	key := frame.Pop().Int
	for i := int32(0); i < npairs; i++ {
		match := frame.ReadI32()
		offset := frame.ReadI32()
		if match == key {
			frame.PC = opcodePC + int(offset)
			return
		}
	}
	frame.PC = opcodePC + int(defaultOffset)
}

// alignPC pads frame.PC up to the next 4-byte boundary relative to
// the start of the method's code array, as tableswitch/lookupswitch
// require.
func (it *Interpreter) alignPC(frame *rtda.Frame, opcodePC int) {
	for frame.PC%4 != 0 {
		frame.PC++
	}
}
