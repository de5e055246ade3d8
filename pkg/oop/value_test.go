package oop

import "testing"

func TestValueConstructors(t *testing.T) {
	t.Run("Int", func(t *testing.T) {
		v := Int(42)
		if v.Kind != KindInt || v.Int != 42 {
			t.Errorf("got %+v, want Kind=KindInt Int=42", v)
		}
	})

	t.Run("Long", func(t *testing.T) {
		v := Long(1 << 40)
		if v.Kind != KindLong || v.Long != 1<<40 {
			t.Errorf("got %+v, want Kind=KindLong Long=%d", v, int64(1)<<40)
		}
	})

	t.Run("Float", func(t *testing.T) {
		v := Float(3.5)
		if v.Kind != KindFloat || v.Float != 3.5 {
			t.Errorf("got %+v, want Kind=KindFloat Float=3.5", v)
		}
	})

	t.Run("Double", func(t *testing.T) {
		v := Double(2.71828)
		if v.Kind != KindDouble || v.Double != 2.71828 {
			t.Errorf("got %+v, want Kind=KindDouble Double=2.71828", v)
		}
	})

	t.Run("Null", func(t *testing.T) {
		v := Null()
		if !v.IsNull() {
			t.Error("Null() should report IsNull() true")
		}
	})

	t.Run("Bool", func(t *testing.T) {
		if got := Bool(true); got.Int != 1 {
			t.Errorf("Bool(true).Int: got %d, want 1", got.Int)
		}
		if got := Bool(false); got.Int != 0 {
			t.Errorf("Bool(false).Int: got %d, want 0", got.Int)
		}
	})

	t.Run("RefVal wraps a Ref and is not null", func(t *testing.T) {
		class := NewClass("java/lang/Object")
		ref := NewRef(class, &Instance{Fields: nil})
		v := RefVal(ref)
		if v.Kind != KindRef || v.Ref != ref {
			t.Errorf("got %+v, want Kind=KindRef Ref=%p", v, ref)
		}
		if v.IsNull() {
			t.Error("a RefVal wrapping a live reference should not be null")
		}
	})

	t.Run("RefVal of nil is null", func(t *testing.T) {
		v := RefVal(nil)
		if !v.IsNull() {
			t.Error("RefVal(nil) should be null")
		}
	})
}

func TestInstanceFields(t *testing.T) {
	t.Run("set and get field", func(t *testing.T) {
		class := NewClass("Point")
		ref := NewRef(class, &Instance{Fields: make([]Value, 2)})
		inst := ref.Data.(*Instance)
		inst.Fields[0] = Int(10)
		inst.Fields[1] = Int(20)

		if inst.Fields[0].Int != 10 {
			t.Errorf("field 0: got %d, want 10", inst.Fields[0].Int)
		}
		if inst.Fields[1].Int != 20 {
			t.Errorf("field 1: got %d, want 20", inst.Fields[1].Int)
		}
	})

	t.Run("reference field", func(t *testing.T) {
		class := NewClass("Container")
		innerClass := NewClass("Inner")
		inner := NewRef(innerClass, &Instance{})
		ref := NewRef(class, &Instance{Fields: make([]Value, 1)})
		ref.Data.(*Instance).Fields[0] = RefVal(inner)

		got := ref.Data.(*Instance).Fields[0]
		if got.Kind != KindRef || got.Ref != inner {
			t.Error("field 0: expected matching reference to inner")
		}
	})
}

func TestTypeArray(t *testing.T) {
	t.Run("int array round-trips and reports length", func(t *testing.T) {
		arr := NewTypeArray(ATInt, 3)
		arr.Ints[0] = 10
		arr.Ints[1] = 20
		arr.Ints[2] = 30
		if arr.Len() != 3 {
			t.Errorf("Len(): got %d, want 3", arr.Len())
		}
		if arr.Ints[1] != 20 {
			t.Errorf("Ints[1]: got %d, want 20", arr.Ints[1])
		}
	})

	t.Run("boolean array uses bool slice", func(t *testing.T) {
		arr := NewTypeArray(ATBoolean, 2)
		arr.Bools[0] = true
		if arr.Len() != 2 {
			t.Errorf("Len(): got %d, want 2", arr.Len())
		}
		if !arr.Bools[0] || arr.Bools[1] {
			t.Errorf("Bools: got %v, want [true false]", arr.Bools)
		}
	})

	t.Run("empty array", func(t *testing.T) {
		arr := NewTypeArray(ATLong, 0)
		if arr.Len() != 0 {
			t.Errorf("Len(): got %d, want 0", arr.Len())
		}
	})
}

func TestStringValueRoundTrip(t *testing.T) {
	stringClass := NewClass("java/lang/String")
	stringClass.FieldLayout = map[string]*FieldSlot{
		"value": {Name: "value", Descriptor: "[C", Offset: 0},
	}
	stringClass.InstanceFieldCount = 1

	charArrayClass := NewClass("[C")
	charArrayClass.IsArray = true

	chars := []uint16{'h', 'i'}
	charArrRef := NewRef(charArrayClass, &TypeArray{AType: ATChar, Chars: chars})

	strRef := NewRef(stringClass, &Instance{Fields: []Value{RefVal(charArrRef)}})

	got, ok := StringValue(strRef)
	if !ok {
		t.Fatal("StringValue: expected ok=true")
	}
	if got != "hi" {
		t.Errorf("StringValue: got %q, want %q", got, "hi")
	}
}

func TestStringValueSurrogatePair(t *testing.T) {
	stringClass := NewClass("java/lang/String")
	stringClass.FieldLayout = map[string]*FieldSlot{
		"value": {Name: "value", Descriptor: "[C", Offset: 0},
	}
	charArrayClass := NewClass("[C")
	charArrayClass.IsArray = true

	// U+1F600 GRINNING FACE encoded as a UTF-16 surrogate pair.
	chars := []uint16{0xD83D, 0xDE00}
	charArrRef := NewRef(charArrayClass, &TypeArray{AType: ATChar, Chars: chars})
	strRef := NewRef(stringClass, &Instance{Fields: []Value{RefVal(charArrRef)}})

	got, ok := StringValue(strRef)
	if !ok {
		t.Fatal("StringValue: expected ok=true")
	}
	if got != "\U0001F600" {
		t.Errorf("StringValue: got %q, want grinning face emoji", got)
	}
}

func TestIdentityHashIsStableAndDistinct(t *testing.T) {
	class := NewClass("java/lang/Object")
	a := NewRef(class, &Instance{})
	b := NewRef(class, &Instance{})

	if a.IdentityHash() == 0 {
		t.Error("IdentityHash() should be non-zero for a live reference")
	}
	if a.IdentityHash() != a.IdentityHash() {
		t.Error("IdentityHash() should be stable across calls")
	}
	if a.IdentityHash() == b.IdentityHash() {
		t.Error("distinct references should get distinct identity hashes")
	}
}
