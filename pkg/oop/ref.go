package oop

import "sync/atomic"

// nextIdentity hands out monotonically increasing identity hashes so
// Ref.IdentityHash is stable and cheap, without pinning or inspecting
// the Go heap address (which the garbage collector may move).
var nextIdentity int64

func allocIdentity() int32 {
	return int32(atomic.AddInt64(&nextIdentity, 1) & 0x7FFFFFFF)
}

// Ref is a heap reference: an object instance, an array, or a class
// mirror. It is always handled through a pointer so Go pointer
// identity doubles as JVM reference identity (the `==` used by
// if_acmp* and the default Object.hashCode/equals).
type Ref struct {
	identity int32
	Class    *Class // runtime class of this object; nil only during bootstrap fabrication
	Data     RefKind
}

// RefKind is implemented by every heap-object shape: Instance,
// ObjectArray, TypeArray, and Mirror.
type RefKind interface {
	isRefKind()
}

// NewRef allocates a fresh heap reference of the given class and shape.
func NewRef(class *Class, data RefKind) *Ref {
	return &Ref{identity: allocIdentity(), Class: class, Data: data}
}

// IdentityHash returns the reference's identity hash code, the value
// returned by Object.hashCode() unless overridden (JVMS has no
// mandated algorithm; this one is stable per-reference for the life
// of the process, per the general contract in Object.hashCode's doc).
func (r *Ref) IdentityHash() int32 {
	if r == nil {
		return 0
	}
	return r.identity
}

// Instance is a plain object: an instance of a class, laid out as a
// flat field vector with the superclass's fields occupying the prefix
// (see classloader.layoutFields).
type Instance struct {
	Fields []Value
}

func (*Instance) isRefKind() {}

// ObjectArray is an array whose element type is a reference type.
type ObjectArray struct {
	ElementClassName string // internal name of the declared element type
	Elements         []*Ref
}

func (*ObjectArray) isRefKind() {}

// TypeArray is an array of a primitive type (JVMS Table 6.5 newarray
// atype codes). Elements are stored unboxed in a type-specific slice;
// exactly one of the slices is non-nil for a given TypeArray.
type TypeArray struct {
	AType    ArrayType
	Bools    []bool
	Chars    []uint16
	Floats   []float32
	Doubles  []float64
	Bytes    []int8
	Shorts   []int16
	Ints     []int32
	Longs    []int64
}

func (*TypeArray) isRefKind() {}

// ArrayType is the JVMS §6.5 newarray atype enumeration.
type ArrayType uint8

const (
	ATBoolean ArrayType = 4
	ATChar    ArrayType = 5
	ATFloat   ArrayType = 6
	ATDouble  ArrayType = 7
	ATByte    ArrayType = 8
	ATShort   ArrayType = 9
	ATInt     ArrayType = 10
	ATLong    ArrayType = 11
)

// Len reports the array's element count regardless of element kind.
func (t *TypeArray) Len() int {
	switch t.AType {
	case ATBoolean:
		return len(t.Bools)
	case ATChar:
		return len(t.Chars)
	case ATFloat:
		return len(t.Floats)
	case ATDouble:
		return len(t.Doubles)
	case ATByte:
		return len(t.Bytes)
	case ATShort:
		return len(t.Shorts)
	case ATInt:
		return len(t.Ints)
	case ATLong:
		return len(t.Longs)
	default:
		return 0
	}
}

// NewTypeArray allocates a zero-valued primitive array of the given
// atype and length.
func NewTypeArray(at ArrayType, length int) *TypeArray {
	t := &TypeArray{AType: at}
	switch at {
	case ATBoolean:
		t.Bools = make([]bool, length)
	case ATChar:
		t.Chars = make([]uint16, length)
	case ATFloat:
		t.Floats = make([]float32, length)
	case ATDouble:
		t.Doubles = make([]float64, length)
	case ATByte:
		t.Bytes = make([]int8, length)
	case ATShort:
		t.Shorts = make([]int16, length)
	case ATInt:
		t.Ints = make([]int32, length)
	case ATLong:
		t.Longs = make([]int64, length)
	}
	return t
}

// Mirror is the heap object backing a java.lang.Class instance: the
// reflective object returned by Object.getClass() and used as the
// target of static dispatch for Class methods.
type Mirror struct {
	Reflects *Class
}

func (*Mirror) isRefKind() {}

// StringValue extracts the Go string content of a java.lang.String
// instance built by the VM's intrinsic string representation (a
// single UTF-16-as-uint16 char array field named "value").
func StringValue(r *Ref) (string, bool) {
	if r == nil {
		return "", false
	}
	inst, ok := r.Data.(*Instance)
	if !ok || r.Class == nil || r.Class.Name != "java/lang/String" {
		return "", false
	}
	for _, v := range inst.Fields {
		if v.Kind == KindRef && v.Ref != nil {
			if arr, ok := v.Ref.Data.(*TypeArray); ok && arr.AType == ATChar {
				return utf16ToString(arr.Chars), true
			}
		}
	}
	return "", false
}

func utf16ToString(units []uint16) string {
	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) {
			lo := units[i+1]
			if lo >= 0xDC00 && lo <= 0xDFFF {
				r := (rune(u-0xD800) << 10) | rune(lo-0xDC00)
				runes = append(runes, r+0x10000)
				i++
				continue
			}
		}
		runes = append(runes, rune(u))
	}
	return string(runes)
}
