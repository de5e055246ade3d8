// Package oop implements the JVM 8 runtime object model: the tagged
// Value type used on operand stacks and in local variables, object and
// array instances on the heap, and class mirrors.
package oop

import "fmt"

// Kind discriminates the payload carried by a Value.
type Kind int

const (
	KindInt Kind = iota
	KindLong
	KindFloat
	KindDouble
	KindNull
	KindRef
	// KindUtf8Const marks a static field slot holding a String
	// ConstantValue attribute that has not yet been materialized into
	// a real java.lang.String instance — pkg/classloader has no
	// interpreter access to allocate one at class-preparation time, so
	// it defers (see oop.Utf8Const); the interpreter replaces it with
	// a KindRef on first read.
	KindUtf8Const
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindNull:
		return "null"
	case KindRef:
		return "ref"
	case KindUtf8Const:
		return "utf8const"
	default:
		return "unknown"
	}
}

// Value is a single JVM value: an operand-stack slot or local-variable
// slot. Long and double values occupy two consecutive stack/local
// slots per JVMS §2.6.1/§2.6.2; the second slot is a KindNull
// placeholder written by the caller (see rtda.Frame).
type Value struct {
	Kind   Kind
	Int    int32
	Long   int64
	Float  float32
	Double float64
	Ref    *Ref   // nil iff Kind==KindNull
	Utf8   string // valid iff Kind==KindUtf8Const
}

func Int(v int32) Value       { return Value{Kind: KindInt, Int: v} }
func Long(v int64) Value      { return Value{Kind: KindLong, Long: v} }
func Float(v float32) Value   { return Value{Kind: KindFloat, Float: v} }
func Double(v float64) Value  { return Value{Kind: KindDouble, Double: v} }
func Null() Value             { return Value{Kind: KindNull} }
func RefVal(r *Ref) Value {
	if r == nil {
		return Null()
	}
	return Value{Kind: KindRef, Ref: r}
}

// Utf8Const holds the raw bytes of a String ConstantValue attribute
// until the interpreter materializes the real java.lang.String (see
// KindUtf8Const).
func Utf8Const(s string) Value { return Value{Kind: KindUtf8Const, Utf8: s} }

// Bool encodes a JVM boolean, which the interpreter always treats as
// an int (0 or 1) on the operand stack (JVMS §2.3.4).
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// IsNull reports whether v is the null reference.
func (v Value) IsNull() bool { return v.Kind == KindNull || (v.Kind == KindRef && v.Ref == nil) }

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("int(%d)", v.Int)
	case KindLong:
		return fmt.Sprintf("long(%d)", v.Long)
	case KindFloat:
		return fmt.Sprintf("float(%g)", v.Float)
	case KindDouble:
		return fmt.Sprintf("double(%g)", v.Double)
	case KindNull:
		return "null"
	case KindRef:
		return fmt.Sprintf("ref(%v)", v.Ref)
	case KindUtf8Const:
		return fmt.Sprintf("utf8const(%q)", v.Utf8)
	default:
		return "?"
	}
}
