package interpreter

import (
	"math"

	"github.com/minijvm/minijvm/pkg/oop"
	"github.com/minijvm/minijvm/pkg/rtda"
)

// execIntBinary handles the int-typed binary arithmetic and bitwise
// opcodes. Go's int32 arithmetic already wraps modulo 2^32 like the
// JVMS requires for iadd/isub/imul (§2.4 "integer arithmetic operations
// ... discard any high-order bits that overflow").
func (it *Interpreter) execIntBinary(frame *rtda.Frame, opcode byte) error {
	v2 := frame.Pop()
	v1 := frame.Pop()
	switch opcode {
	case OpIadd:
		frame.Push(oop.Int(v1.Int + v2.Int))
	case OpIsub:
		frame.Push(oop.Int(v1.Int - v2.Int))
	case OpImul:
		frame.Push(oop.Int(v1.Int * v2.Int))
	case OpIdiv:
		if v2.Int == 0 {
			return it.throwNamed("java/lang/ArithmeticException", "/ by zero")
		}
		frame.Push(oop.Int(v1.Int / v2.Int))
	case OpIrem:
		if v2.Int == 0 {
			return it.throwNamed("java/lang/ArithmeticException", "/ by zero")
		}
		frame.Push(oop.Int(v1.Int % v2.Int))
	case OpIand:
		frame.Push(oop.Int(v1.Int & v2.Int))
	case OpIor:
		frame.Push(oop.Int(v1.Int | v2.Int))
	case OpIxor:
		frame.Push(oop.Int(v1.Int ^ v2.Int))
	case OpIshl:
		frame.Push(oop.Int(v1.Int << (uint32(v2.Int) & 0x1F)))
	case OpIshr:
		frame.Push(oop.Int(v1.Int >> (uint32(v2.Int) & 0x1F)))
	case OpIushr:
		frame.Push(oop.Int(int32(uint32(v1.Int) >> (uint32(v2.Int) & 0x1F))))
	}
	return nil
}

// execLongBinary handles the long-typed binary opcodes. Shift
// distances mask to the low 6 bits per JVMS §lshl/lshr/lushr, and the
// shift-count operand itself is an int (not popped as wide).
func (it *Interpreter) execLongBinary(frame *rtda.Frame, opcode byte) error {
	if opcode == OpLshl || opcode == OpLshr || opcode == OpLushr {
		shift := frame.Pop().Int
		v1 := frame.PopWide().Long
		switch opcode {
		case OpLshl:
			frame.PushWide(oop.Long(v1 << (uint32(shift) & 0x3F)))
		case OpLshr:
			frame.PushWide(oop.Long(v1 >> (uint32(shift) & 0x3F)))
		case OpLushr:
			frame.PushWide(oop.Long(int64(uint64(v1) >> (uint32(shift) & 0x3F))))
		}
		return nil
	}

	v2 := frame.PopWide()
	v1 := frame.PopWide()
	switch opcode {
	case OpLadd:
		frame.PushWide(oop.Long(v1.Long + v2.Long))
	case OpLsub:
		frame.PushWide(oop.Long(v1.Long - v2.Long))
	case OpLmul:
		frame.PushWide(oop.Long(v1.Long * v2.Long))
	case OpLdiv:
		if v2.Long == 0 {
			return it.throwNamed("java/lang/ArithmeticException", "/ by zero")
		}
		frame.PushWide(oop.Long(v1.Long / v2.Long))
	case OpLrem:
		if v2.Long == 0 {
			return it.throwNamed("java/lang/ArithmeticException", "/ by zero")
		}
		frame.PushWide(oop.Long(v1.Long % v2.Long))
	case OpLand:
		frame.PushWide(oop.Long(v1.Long & v2.Long))
	case OpLor:
		frame.PushWide(oop.Long(v1.Long | v2.Long))
	case OpLxor:
		frame.PushWide(oop.Long(v1.Long ^ v2.Long))
	}
	return nil
}

func (it *Interpreter) execFloatBinary(frame *rtda.Frame, opcode byte) {
	v2 := frame.Pop().Float
	v1 := frame.Pop().Float
	switch opcode {
	case OpFadd:
		frame.Push(oop.Float(v1 + v2))
	case OpFsub:
		frame.Push(oop.Float(v1 - v2))
	case OpFmul:
		frame.Push(oop.Float(v1 * v2))
	case OpFdiv:
		frame.Push(oop.Float(v1 / v2))
	case OpFrem:
		frame.Push(oop.Float(float32(math.Mod(float64(v1), float64(v2)))))
	}
}

func (it *Interpreter) execDoubleBinary(frame *rtda.Frame, opcode byte) {
	v2 := frame.PopWide().Double
	v1 := frame.PopWide().Double
	switch opcode {
	case OpDadd:
		frame.PushWide(oop.Double(v1 + v2))
	case OpDsub:
		frame.PushWide(oop.Double(v1 - v2))
	case OpDmul:
		frame.PushWide(oop.Double(v1 * v2))
	case OpDdiv:
		frame.PushWide(oop.Double(v1 / v2))
	case OpDrem:
		frame.PushWide(oop.Double(math.Mod(v1, v2)))
	}
}

// compare64 implements lcmp's three-way comparison (JVMS §lcmp).
func compare64(a, b int64) int32 {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// fcmp implements fcmpl/fcmpg: nanResult is the value pushed when
// either operand is NaN (-1 for fcmpl, 1 for fcmpg — JVMS §fcmpg,
// §fcmpl).
func fcmp(frame *rtda.Frame, nanResult int32) int32 {
	v2 := frame.Pop().Float
	v1 := frame.Pop().Float
	if math.IsNaN(float64(v1)) || math.IsNaN(float64(v2)) {
		return nanResult
	}
	switch {
	case v1 > v2:
		return 1
	case v1 < v2:
		return -1
	default:
		return 0
	}
}

func dcmp(frame *rtda.Frame, nanResult int32) int32 {
	v2 := frame.PopWide().Double
	v1 := frame.PopWide().Double
	if math.IsNaN(v1) || math.IsNaN(v2) {
		return nanResult
	}
	switch {
	case v1 > v2:
		return 1
	case v1 < v2:
		return -1
	default:
		return 0
	}
}

// floatToInt/floatToLong/doubleToInt/doubleToLong implement JVMS
// §2.8.3's narrowing float/double-to-integer conversion: NaN becomes
// 0, and out-of-range values saturate to the target type's min/max
// rather than wrapping.
func floatToInt(f float32) int32 {
	d := float64(f)
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt32:
		return math.MaxInt32
	case d <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(d)
	}
}

func floatToLong(f float32) int64 {
	d := float64(f)
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt64:
		return math.MaxInt64
	case d <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(d)
	}
}

func doubleToInt(d float64) int32 {
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt32:
		return math.MaxInt32
	case d <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(d)
	}
}

func doubleToLong(d float64) int64 {
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt64:
		return math.MaxInt64
	case d <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(d)
	}
}
