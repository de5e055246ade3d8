package interpreter

import (
	"fmt"

	"github.com/minijvm/minijvm/pkg/oop"
	"github.com/minijvm/minijvm/pkg/rtda"
)

// execArrayLoad implements iaload/faload/baload/caload/saload/aaload:
// bounds-checked, category-1 array element reads.
func (it *Interpreter) execArrayLoad(frame *rtda.Frame, opcode byte) error {
	index := frame.Pop().Int
	arrRef, err := it.checkArrayAccess(frame)
	if err != nil {
		return err
	}
	switch opcode {
	case OpAaload:
		arr := arrRef.Data.(*oop.ObjectArray)
		if err := boundsCheck(it, index, len(arr.Elements)); err != nil {
			return err
		}
		frame.Push(oop.RefVal(arr.Elements[index]))
	default:
		arr := arrRef.Data.(*oop.TypeArray)
		if err := boundsCheck(it, index, arr.Len()); err != nil {
			return err
		}
		switch opcode {
		case OpIaload:
			frame.Push(oop.Int(arr.Ints[index]))
		case OpFaload:
			frame.Push(oop.Float(arr.Floats[index]))
		case OpBaload:
			if arr.AType == oop.ATBoolean {
				b := int32(0)
				if arr.Bools[index] {
					b = 1
				}
				frame.Push(oop.Int(b))
			} else {
				frame.Push(oop.Int(int32(arr.Bytes[index])))
			}
		case OpCaload:
			frame.Push(oop.Int(int32(arr.Chars[index])))
		case OpSaload:
			frame.Push(oop.Int(int32(arr.Shorts[index])))
		}
	}
	return nil
}

func (it *Interpreter) execWideArrayLoad(frame *rtda.Frame, opcode byte) error {
	index := frame.Pop().Int
	arrRef, err := it.checkArrayAccess(frame)
	if err != nil {
		return err
	}
	arr := arrRef.Data.(*oop.TypeArray)
	if err := boundsCheck(it, index, arr.Len()); err != nil {
		return err
	}
	if opcode == OpLaload {
		frame.PushWide(oop.Long(arr.Longs[index]))
	} else {
		frame.PushWide(oop.Double(arr.Doubles[index]))
	}
	return nil
}

func (it *Interpreter) execArrayStore(frame *rtda.Frame, opcode byte) error {
	value := frame.Pop()
	index := frame.Pop().Int
	arrRef, err := it.arrayRefBelow(frame)
	if err != nil {
		return err
	}

	switch opcode {
	case OpAastore:
		arr := arrRef.Data.(*oop.ObjectArray)
		if err := boundsCheck(it, index, len(arr.Elements)); err != nil {
			return err
		}
		arr.Elements[index] = value.Ref
	default:
		arr := arrRef.Data.(*oop.TypeArray)
		if err := boundsCheck(it, index, arr.Len()); err != nil {
			return err
		}
		switch opcode {
		case OpIastore:
			arr.Ints[index] = value.Int
		case OpFastore:
			arr.Floats[index] = value.Float
		case OpBastore:
			if arr.AType == oop.ATBoolean {
				arr.Bools[index] = value.Int != 0
			} else {
				arr.Bytes[index] = int8(value.Int)
			}
		case OpCastore:
			arr.Chars[index] = uint16(value.Int)
		case OpSastore:
			arr.Shorts[index] = int16(value.Int)
		}
	}
	return nil
}

func (it *Interpreter) execWideArrayStore(frame *rtda.Frame, opcode byte) error {
	value := frame.PopWide()
	index := frame.Pop().Int
	arrRef, err := it.arrayRefBelow(frame)
	if err != nil {
		return err
	}
	arr := arrRef.Data.(*oop.TypeArray)
	if err := boundsCheck(it, index, arr.Len()); err != nil {
		return err
	}
	if opcode == OpLastore {
		arr.Longs[index] = value.Long
	} else {
		arr.Doubles[index] = value.Double
	}
	return nil
}

// checkArrayAccess pops the array reference below an already-popped
// index for a load, NPE-checking it.
func (it *Interpreter) checkArrayAccess(frame *rtda.Frame) (*oop.Ref, error) {
	ref := frame.Pop().Ref
	if ref == nil {
		return nil, it.throwNamed("java/lang/NullPointerException", "")
	}
	return ref, nil
}

// arrayRefBelow pops the array reference for a store, after value and
// index have already been popped.
func (it *Interpreter) arrayRefBelow(frame *rtda.Frame) (*oop.Ref, error) {
	ref := frame.Pop().Ref
	if ref == nil {
		return nil, it.throwNamed("java/lang/NullPointerException", "")
	}
	return ref, nil
}

func boundsCheck(it *Interpreter, index int32, length int) error {
	if index < 0 || int(index) >= length {
		return it.throwNamed("java/lang/ArrayIndexOutOfBoundsException", fmt.Sprintf("Index %d out of bounds for length %d", index, length))
	}
	return nil
}

func (it *Interpreter) execArraylength(frame *rtda.Frame) error {
	ref := frame.Pop().Ref
	if ref == nil {
		return it.throwNamed("java/lang/NullPointerException", "")
	}
	switch arr := ref.Data.(type) {
	case *oop.ObjectArray:
		frame.Push(oop.Int(int32(len(arr.Elements))))
	case *oop.TypeArray:
		frame.Push(oop.Int(int32(arr.Len())))
	default:
		return fmt.Errorf("arraylength: not an array")
	}
	return nil
}

func (it *Interpreter) execNewarray(frame *rtda.Frame) error {
	atype := oop.ArrayType(frame.ReadU8())
	length := frame.Pop().Int
	if length < 0 {
		return it.throwNamed("java/lang/NegativeArraySizeException", fmt.Sprintf("%d", length))
	}
	arrClass, err := it.registry.Require(primitiveArrayDescriptor(atype))
	if err != nil {
		return err
	}
	frame.Push(oop.RefVal(oop.NewRef(arrClass, oop.NewTypeArray(atype, int(length)))))
	return nil
}

func primitiveArrayDescriptor(at oop.ArrayType) string {
	switch at {
	case oop.ATBoolean:
		return "[Z"
	case oop.ATChar:
		return "[C"
	case oop.ATFloat:
		return "[F"
	case oop.ATDouble:
		return "[D"
	case oop.ATByte:
		return "[B"
	case oop.ATShort:
		return "[S"
	case oop.ATInt:
		return "[I"
	case oop.ATLong:
		return "[J"
	default:
		return "[I"
	}
}

func (it *Interpreter) execAnewarray(frame *rtda.Frame) error {
	cpIndex := frame.ReadU16()
	elemClass, err := it.registry.ResolveClass(frame.Class, cpIndex)
	if err != nil {
		return err
	}
	length := frame.Pop().Int
	if length < 0 {
		return it.throwNamed("java/lang/NegativeArraySizeException", fmt.Sprintf("%d", length))
	}
	arrClass, err := it.registry.Require("[L" + elemClass.Name + ";")
	if err != nil {
		return err
	}
	frame.Push(oop.RefVal(oop.NewRef(arrClass, &oop.ObjectArray{
		ElementClassName: elemClass.Name,
		Elements:         make([]*oop.Ref, length),
	})))
	return nil
}

// execMultianewarray implements JVMS §multianewarray: dimensions are
// popped in source order (outermost first) and only the first
// `dims` levels are actually allocated eagerly; inner levels remain
// null until assigned, matching javac's own generated code pattern
// for partially-specified dimensions.
func (it *Interpreter) execMultianewarray(frame *rtda.Frame) error {
	cpIndex := frame.ReadU16()
	dims := int(frame.ReadU8())

	arrClass, err := it.registry.ResolveClass(frame.Class, cpIndex)
	if err != nil {
		return err
	}

	counts := make([]int32, dims)
	for i := dims - 1; i >= 0; i-- {
		counts[i] = frame.Pop().Int
	}
	for _, c := range counts {
		if c < 0 {
			return it.throwNamed("java/lang/NegativeArraySizeException", fmt.Sprintf("%d", c))
		}
	}

	ref, err := it.buildMultiArray(arrClass, counts)
	if err != nil {
		return err
	}
	frame.Push(oop.RefVal(ref))
	return nil
}

func (it *Interpreter) buildMultiArray(arrClass *oop.Class, counts []int32) (*oop.Ref, error) {
	length := counts[0]
	if arrClass.ElementType.IsArray && len(counts) > 1 {
		elements := make([]*oop.Ref, length)
		for i := range elements {
			inner, err := it.buildMultiArray(arrClass.ElementType, counts[1:])
			if err != nil {
				return nil, err
			}
			elements[i] = inner
		}
		return oop.NewRef(arrClass, &oop.ObjectArray{ElementClassName: arrClass.ElementType.Name, Elements: elements}), nil
	}
	if arrClass.ElementType.IsPrimitive {
		at := primitiveArrayTypeOf(arrClass.ElementType.Name)
		return oop.NewRef(arrClass, oop.NewTypeArray(at, int(length))), nil
	}
	return oop.NewRef(arrClass, &oop.ObjectArray{ElementClassName: arrClass.ElementType.Name, Elements: make([]*oop.Ref, length)}), nil
}

func primitiveArrayTypeOf(name string) oop.ArrayType {
	switch name {
	case "boolean":
		return oop.ATBoolean
	case "char":
		return oop.ATChar
	case "float":
		return oop.ATFloat
	case "double":
		return oop.ATDouble
	case "byte":
		return oop.ATByte
	case "short":
		return oop.ATShort
	case "long":
		return oop.ATLong
	default:
		return oop.ATInt
	}
}
