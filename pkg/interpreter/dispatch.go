package interpreter

import (
	"fmt"

	"github.com/minijvm/minijvm/pkg/oop"
	"github.com/minijvm/minijvm/pkg/rtda"
)

// step executes a single bytecode instruction. It returns
// (returnValue, hasReturn, error); error may be a *Throw (a live Java
// exception for runFrame to route through the exception table) or a
// plain error (a fatal interpreter condition).
func (it *Interpreter) step(frame *rtda.Frame, opcode byte) (oop.Value, bool, error) {
	switch opcode {
	case OpNop:

	// --- constants ---
	case OpAconstNull:
		frame.Push(oop.Null())
	case OpIconstM1:
		frame.Push(oop.Int(-1))
	case OpIconst0:
		frame.Push(oop.Int(0))
	case OpIconst1:
		frame.Push(oop.Int(1))
	case OpIconst2:
		frame.Push(oop.Int(2))
	case OpIconst3:
		frame.Push(oop.Int(3))
	case OpIconst4:
		frame.Push(oop.Int(4))
	case OpIconst5:
		frame.Push(oop.Int(5))
	case OpLconst0:
		frame.PushWide(oop.Long(0))
	case OpLconst1:
		frame.PushWide(oop.Long(1))
	case OpFconst0:
		frame.Push(oop.Float(0))
	case OpFconst1:
		frame.Push(oop.Float(1))
	case OpFconst2:
		frame.Push(oop.Float(2))
	case OpDconst0:
		frame.PushWide(oop.Double(0))
	case OpDconst1:
		frame.PushWide(oop.Double(1))
	case OpBipush:
		frame.Push(oop.Int(int32(frame.ReadI8())))
	case OpSipush:
		frame.Push(oop.Int(int32(frame.ReadI16())))
	case OpLdc:
		return oop.Value{}, false, it.execLdc(frame, uint16(frame.ReadU8()))
	case OpLdcW:
		return oop.Value{}, false, it.execLdc(frame, frame.ReadU16())
	case OpLdc2W:
		return oop.Value{}, false, it.execLdc2(frame, frame.ReadU16())

	// --- loads ---
	case OpIload, OpFload:
		frame.Push(frame.GetLocal(int(frame.ReadU8())))
	case OpLload, OpDload:
		frame.PushWide(frame.GetLocalWide(int(frame.ReadU8())))
	case OpAload:
		frame.Push(frame.GetLocal(int(frame.ReadU8())))
	case OpIload0, OpFload0:
		frame.Push(frame.GetLocal(0))
	case OpIload1, OpFload1:
		frame.Push(frame.GetLocal(1))
	case OpIload2, OpFload2:
		frame.Push(frame.GetLocal(2))
	case OpIload3, OpFload3:
		frame.Push(frame.GetLocal(3))
	case OpLload0, OpDload0:
		frame.PushWide(frame.GetLocalWide(0))
	case OpLload1, OpDload1:
		frame.PushWide(frame.GetLocalWide(1))
	case OpLload2, OpDload2:
		frame.PushWide(frame.GetLocalWide(2))
	case OpLload3, OpDload3:
		frame.PushWide(frame.GetLocalWide(3))
	case OpAload0:
		frame.Push(frame.GetLocal(0))
	case OpAload1:
		frame.Push(frame.GetLocal(1))
	case OpAload2:
		frame.Push(frame.GetLocal(2))
	case OpAload3:
		frame.Push(frame.GetLocal(3))

	case OpIaload, OpFaload, OpBaload, OpCaload, OpSaload, OpAaload:
		return oop.Value{}, false, it.execArrayLoad(frame, opcode)
	case OpLaload, OpDaload:
		return oop.Value{}, false, it.execWideArrayLoad(frame, opcode)

	// --- stores ---
	case OpIstore, OpFstore:
		frame.SetLocal(int(frame.ReadU8()), frame.Pop())
	case OpLstore, OpDstore:
		frame.SetLocalWide(int(frame.ReadU8()), frame.PopWide())
	case OpAstore:
		frame.SetLocal(int(frame.ReadU8()), frame.Pop())
	case OpIstore0, OpFstore0:
		frame.SetLocal(0, frame.Pop())
	case OpIstore1, OpFstore1:
		frame.SetLocal(1, frame.Pop())
	case OpIstore2, OpFstore2:
		frame.SetLocal(2, frame.Pop())
	case OpIstore3, OpFstore3:
		frame.SetLocal(3, frame.Pop())
	case OpLstore0, OpDstore0:
		frame.SetLocalWide(0, frame.PopWide())
	case OpLstore1, OpDstore1:
		frame.SetLocalWide(1, frame.PopWide())
	case OpLstore2, OpDstore2:
		frame.SetLocalWide(2, frame.PopWide())
	case OpLstore3, OpDstore3:
		frame.SetLocalWide(3, frame.PopWide())
	case OpAstore0:
		frame.SetLocal(0, frame.Pop())
	case OpAstore1:
		frame.SetLocal(1, frame.Pop())
	case OpAstore2:
		frame.SetLocal(2, frame.Pop())
	case OpAstore3:
		frame.SetLocal(3, frame.Pop())

	case OpIastore, OpFastore, OpBastore, OpCastore, OpSastore, OpAastore:
		return oop.Value{}, false, it.execArrayStore(frame, opcode)
	case OpLastore, OpDastore:
		return oop.Value{}, false, it.execWideArrayStore(frame, opcode)

	// --- stack ---
	case OpPop:
		frame.Pop()
	case OpPop2:
		frame.Pop()
		frame.Pop()
	case OpDup:
		v := frame.Pop()
		frame.Push(v)
		frame.Push(v)
	case OpDupX1:
		v1 := frame.Pop()
		v2 := frame.Pop()
		frame.Push(v1)
		frame.Push(v2)
		frame.Push(v1)
	case OpDupX2:
		v1 := frame.Pop()
		v2 := frame.Pop()
		v3 := frame.Pop()
		frame.Push(v1)
		frame.Push(v3)
		frame.Push(v2)
		frame.Push(v1)
	case OpDup2:
		v1 := frame.Pop()
		v2 := frame.Pop()
		frame.Push(v2)
		frame.Push(v1)
		frame.Push(v2)
		frame.Push(v1)
	case OpDup2X1:
		v1 := frame.Pop()
		v2 := frame.Pop()
		v3 := frame.Pop()
		frame.Push(v2)
		frame.Push(v1)
		frame.Push(v3)
		frame.Push(v2)
		frame.Push(v1)
	case OpDup2X2:
		v1 := frame.Pop()
		v2 := frame.Pop()
		v3 := frame.Pop()
		v4 := frame.Pop()
		frame.Push(v2)
		frame.Push(v1)
		frame.Push(v4)
		frame.Push(v3)
		frame.Push(v2)
		frame.Push(v1)
	case OpSwap:
		v1 := frame.Pop()
		v2 := frame.Pop()
		frame.Push(v1)
		frame.Push(v2)

	// --- arithmetic / bitwise / conversions ---
	case OpIadd, OpIsub, OpImul, OpIdiv, OpIrem, OpIand, OpIor, OpIxor, OpIshl, OpIshr, OpIushr:
		return oop.Value{}, false, it.execIntBinary(frame, opcode)
	case OpLadd, OpLsub, OpLmul, OpLdiv, OpLrem, OpLand, OpLor, OpLxor, OpLshl, OpLshr, OpLushr:
		return oop.Value{}, false, it.execLongBinary(frame, opcode)
	case OpFadd, OpFsub, OpFmul, OpFdiv, OpFrem:
		it.execFloatBinary(frame, opcode)
	case OpDadd, OpDsub, OpDmul, OpDdiv, OpDrem:
		it.execDoubleBinary(frame, opcode)
	case OpIneg:
		frame.Push(oop.Int(-frame.Pop().Int))
	case OpLneg:
		frame.PushWide(oop.Long(-frame.PopWide().Long))
	case OpFneg:
		frame.Push(oop.Float(-frame.Pop().Float))
	case OpDneg:
		frame.PushWide(oop.Double(-frame.PopWide().Double))
	case OpIinc:
		index := int(frame.ReadU8())
		delta := int32(frame.ReadI8())
		cur := frame.GetLocal(index)
		frame.SetLocal(index, oop.Int(cur.Int+delta))

	case OpI2l:
		frame.PushWide(oop.Long(int64(frame.Pop().Int)))
	case OpI2f:
		frame.Push(oop.Float(float32(frame.Pop().Int)))
	case OpI2d:
		frame.PushWide(oop.Double(float64(frame.Pop().Int)))
	case OpL2i:
		frame.Push(oop.Int(int32(frame.PopWide().Long)))
	case OpL2f:
		frame.Push(oop.Float(float32(frame.PopWide().Long)))
	case OpL2d:
		frame.PushWide(oop.Double(float64(frame.PopWide().Long)))
	case OpF2i:
		frame.Push(oop.Int(floatToInt(frame.Pop().Float)))
	case OpF2l:
		frame.PushWide(oop.Long(floatToLong(frame.Pop().Float)))
	case OpF2d:
		frame.PushWide(oop.Double(float64(frame.Pop().Float)))
	case OpD2i:
		frame.Push(oop.Int(doubleToInt(frame.PopWide().Double)))
	case OpD2l:
		frame.PushWide(oop.Long(doubleToLong(frame.PopWide().Double)))
	case OpD2f:
		frame.Push(oop.Float(float32(frame.PopWide().Double)))
	case OpI2b:
		frame.Push(oop.Int(int32(int8(frame.Pop().Int))))
	case OpI2c:
		frame.Push(oop.Int(int32(uint16(frame.Pop().Int))))
	case OpI2s:
		frame.Push(oop.Int(int32(int16(frame.Pop().Int))))

	case OpLcmp:
		v2 := frame.PopWide()
		v1 := frame.PopWide()
		frame.Push(oop.Int(compare64(v1.Long, v2.Long)))
	case OpFcmpl:
		frame.Push(oop.Int(fcmp(frame, -1)))
	case OpFcmpg:
		frame.Push(oop.Int(fcmp(frame, 1)))
	case OpDcmpl:
		frame.Push(oop.Int(dcmp(frame, -1)))
	case OpDcmpg:
		frame.Push(oop.Int(dcmp(frame, 1)))

	// --- branches ---
	case OpIfeq:
		it.branchUnary(frame, func(v int32) bool { return v == 0 })
	case OpIfne:
		it.branchUnary(frame, func(v int32) bool { return v != 0 })
	case OpIflt:
		it.branchUnary(frame, func(v int32) bool { return v < 0 })
	case OpIfge:
		it.branchUnary(frame, func(v int32) bool { return v >= 0 })
	case OpIfgt:
		it.branchUnary(frame, func(v int32) bool { return v > 0 })
	case OpIfle:
		it.branchUnary(frame, func(v int32) bool { return v <= 0 })
	case OpIfIcmpeq:
		it.branchBinary(frame, func(a, b int32) bool { return a == b })
	case OpIfIcmpne:
		it.branchBinary(frame, func(a, b int32) bool { return a != b })
	case OpIfIcmplt:
		it.branchBinary(frame, func(a, b int32) bool { return a < b })
	case OpIfIcmpge:
		it.branchBinary(frame, func(a, b int32) bool { return a >= b })
	case OpIfIcmpgt:
		it.branchBinary(frame, func(a, b int32) bool { return a > b })
	case OpIfIcmple:
		it.branchBinary(frame, func(a, b int32) bool { return a <= b })
	case OpIfAcmpeq:
		it.branchRef(frame, func(a, b *oop.Ref) bool { return a == b })
	case OpIfAcmpne:
		it.branchRef(frame, func(a, b *oop.Ref) bool { return a != b })
	case OpIfnull:
		it.branchNull(frame, true)
	case OpIfnonnull:
		it.branchNull(frame, false)
	case OpGoto:
		branchPC := frame.PC - 1
		frame.PC = branchPC + int(frame.ReadI16())
	case OpGotoW:
		branchPC := frame.PC - 1
		frame.PC = branchPC + int(frame.ReadI32())
	case OpTableswitch:
		it.execTableswitch(frame)
	case OpLookupswitch:
		it.execLookupswitch(frame)

	// --- returns ---
	case OpIreturn, OpFreturn, OpAreturn:
		return frame.Pop(), true, nil
	case OpLreturn, OpDreturn:
		return frame.PopWide(), true, nil
	case OpReturn:
		return oop.Value{}, true, nil

	// --- fields ---
	case OpGetstatic:
		return oop.Value{}, false, it.execGetstatic(frame)
	case OpPutstatic:
		return oop.Value{}, false, it.execPutstatic(frame)
	case OpGetfield:
		return oop.Value{}, false, it.execGetfield(frame)
	case OpPutfield:
		return oop.Value{}, false, it.execPutfield(frame)

	// --- invocation ---
	case OpInvokevirtual:
		return it.execInvokevirtual(frame)
	case OpInvokespecial:
		return it.execInvokespecial(frame)
	case OpInvokestatic:
		return it.execInvokestatic(frame)
	case OpInvokeinterface:
		v, ok, err := it.execInvokeinterface(frame)
		frame.ReadU8() // count (historical, unused)
		frame.ReadU8() // zero byte
		return v, ok, err
	case OpInvokedynamic:
		return oop.Value{}, false, fmt.Errorf("invokedynamic not supported")

	// --- object / array creation ---
	case OpNew:
		return oop.Value{}, false, it.execNew(frame)
	case OpNewarray:
		return oop.Value{}, false, it.execNewarray(frame)
	case OpAnewarray:
		return oop.Value{}, false, it.execAnewarray(frame)
	case OpMultianewarray:
		return oop.Value{}, false, it.execMultianewarray(frame)
	case OpArraylength:
		return oop.Value{}, false, it.execArraylength(frame)

	case OpCheckcast:
		return oop.Value{}, false, it.execCheckcast(frame)
	case OpInstanceof:
		return oop.Value{}, false, it.execInstanceof(frame)

	case OpAthrow:
		return oop.Value{}, false, it.execAthrow(frame)

	case OpMonitorenter:
		ref := frame.Pop().Ref
		if ref == nil {
			return oop.Value{}, false, it.throwNamed("java/lang/NullPointerException", "")
		}
		it.monitorEnter(ref)
	case OpMonitorexit:
		ref := frame.Pop().Ref
		if ref == nil {
			return oop.Value{}, false, it.throwNamed("java/lang/NullPointerException", "")
		}
		if err := it.monitorExit(ref); err != nil {
			return oop.Value{}, false, err
		}

	case OpWide:
		return oop.Value{}, false, it.execWide(frame)

	default:
		return oop.Value{}, false, fmt.Errorf("unsupported opcode 0x%02X at pc=%d", opcode, frame.PC-1)
	}

	return oop.Value{}, false, nil
}
