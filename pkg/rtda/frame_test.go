package rtda

import (
	"testing"

	"github.com/minijvm/minijvm/pkg/oop"
)

func TestFramePushPop(t *testing.T) {
	t.Run("LIFO order", func(t *testing.T) {
		frame := NewFrame(0, 10, nil, nil, nil)

		frame.Push(oop.Int(10))
		frame.Push(oop.Int(20))
		frame.Push(oop.Int(30))

		v := frame.Pop()
		if v.Int != 30 {
			t.Errorf("first Pop: got %d, want 30", v.Int)
		}
		v = frame.Pop()
		if v.Int != 20 {
			t.Errorf("second Pop: got %d, want 20", v.Int)
		}
		v = frame.Pop()
		if v.Int != 10 {
			t.Errorf("third Pop: got %d, want 10", v.Int)
		}
	})

	t.Run("push after pop reuses space", func(t *testing.T) {
		frame := NewFrame(0, 10, nil, nil, nil)

		frame.Push(oop.Int(1))
		frame.Push(oop.Int(2))
		frame.Pop() // remove 2

		frame.Push(oop.Int(3))
		v := frame.Pop()
		if v.Int != 3 {
			t.Errorf("got %d, want 3", v.Int)
		}
		v = frame.Pop()
		if v.Int != 1 {
			t.Errorf("got %d, want 1", v.Int)
		}
	})

	t.Run("single push pop", func(t *testing.T) {
		frame := NewFrame(0, 10, nil, nil, nil)
		frame.Push(oop.Int(42))
		v := frame.Pop()
		if v.Int != 42 {
			t.Errorf("got %d, want 42", v.Int)
		}
	})

	t.Run("negative values", func(t *testing.T) {
		frame := NewFrame(0, 10, nil, nil, nil)
		frame.Push(oop.Int(-100))
		v := frame.Pop()
		if v.Int != -100 {
			t.Errorf("got %d, want -100", v.Int)
		}
	})

	t.Run("overflow panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on operand stack overflow")
			}
		}()
		frame := NewFrame(0, 1, nil, nil, nil)
		frame.Push(oop.Int(1))
		frame.Push(oop.Int(2))
	})

	t.Run("underflow panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on operand stack underflow")
			}
		}()
		frame := NewFrame(0, 1, nil, nil, nil)
		frame.Pop()
	})
}

func TestFrameWidePushPop(t *testing.T) {
	t.Run("long round-trips and consumes two slots", func(t *testing.T) {
		frame := NewFrame(0, 10, nil, nil, nil)
		frame.PushWide(oop.Long(1234567890123))
		if frame.SP != 2 {
			t.Errorf("SP after PushWide: got %d, want 2", frame.SP)
		}
		v := frame.PopWide()
		if v.Long != 1234567890123 {
			t.Errorf("PopWide: got %d, want 1234567890123", v.Long)
		}
		if frame.SP != 0 {
			t.Errorf("SP after PopWide: got %d, want 0", frame.SP)
		}
	})

	t.Run("double round-trips", func(t *testing.T) {
		frame := NewFrame(0, 10, nil, nil, nil)
		frame.PushWide(oop.Double(3.14159))
		v := frame.PopWide()
		if v.Double != 3.14159 {
			t.Errorf("PopWide: got %v, want 3.14159", v.Double)
		}
	})

	t.Run("interleaves correctly with category-1 values", func(t *testing.T) {
		frame := NewFrame(0, 10, nil, nil, nil)
		frame.Push(oop.Int(1))
		frame.PushWide(oop.Long(2))
		frame.Push(oop.Int(3))

		if v := frame.Pop(); v.Int != 3 {
			t.Errorf("got %d, want 3", v.Int)
		}
		if v := frame.PopWide(); v.Long != 2 {
			t.Errorf("got %d, want 2", v.Long)
		}
		if v := frame.Pop(); v.Int != 1 {
			t.Errorf("got %d, want 1", v.Int)
		}
	})
}

func TestFrameLocalVars(t *testing.T) {
	t.Run("basic set and get", func(t *testing.T) {
		frame := NewFrame(4, 10, nil, nil, nil)

		frame.SetLocal(0, oop.Int(10))
		frame.SetLocal(1, oop.Int(20))
		frame.SetLocal(2, oop.Int(30))
		frame.SetLocal(3, oop.Int(40))

		if v := frame.GetLocal(0); v.Int != 10 {
			t.Errorf("GetLocal(0): got %d, want 10", v.Int)
		}
		if v := frame.GetLocal(1); v.Int != 20 {
			t.Errorf("GetLocal(1): got %d, want 20", v.Int)
		}
		if v := frame.GetLocal(2); v.Int != 30 {
			t.Errorf("GetLocal(2): got %d, want 30", v.Int)
		}
		if v := frame.GetLocal(3); v.Int != 40 {
			t.Errorf("GetLocal(3): got %d, want 40", v.Int)
		}
	})

	t.Run("overwrite local variable", func(t *testing.T) {
		frame := NewFrame(4, 10, nil, nil, nil)
		frame.SetLocal(0, oop.Int(10))
		frame.SetLocal(0, oop.Int(99))
		if v := frame.GetLocal(0); v.Int != 99 {
			t.Errorf("GetLocal(0) after overwrite: got %d, want 99", v.Int)
		}
	})

	t.Run("non-contiguous set", func(t *testing.T) {
		frame := NewFrame(4, 10, nil, nil, nil)
		frame.SetLocal(0, oop.Int(100))
		frame.SetLocal(3, oop.Int(300))
		if v := frame.GetLocal(0); v.Int != 100 {
			t.Errorf("GetLocal(0): got %d, want 100", v.Int)
		}
		if v := frame.GetLocal(3); v.Int != 300 {
			t.Errorf("GetLocal(3): got %d, want 300", v.Int)
		}
	})

	t.Run("local vars independent from stack", func(t *testing.T) {
		frame := NewFrame(4, 10, nil, nil, nil)
		frame.SetLocal(0, oop.Int(10))
		frame.Push(oop.Int(99))
		if v := frame.GetLocal(0); v.Int != 10 {
			t.Errorf("GetLocal(0) after push: got %d, want 10", v.Int)
		}
		v := frame.Pop()
		if v.Int != 99 {
			t.Errorf("Pop after SetLocal: got %d, want 99", v.Int)
		}
	})

	t.Run("wide local occupies paired slot", func(t *testing.T) {
		frame := NewFrame(4, 10, nil, nil, nil)
		frame.SetLocalWide(0, oop.Long(555))
		if v := frame.GetLocalWide(0); v.Long != 555 {
			t.Errorf("GetLocalWide(0): got %d, want 555", v.Long)
		}
		if !frame.Locals[1].IsNull() {
			t.Error("paired slot after SetLocalWide should be cleared to null")
		}
	})
}

func TestFrameBytecodeReaders(t *testing.T) {
	code := []byte{0x01, 0xFF, 0x12, 0x34, 0x80, 0x00, 0x00, 0x01}
	frame := NewFrame(0, 0, code, nil, nil)

	if v := frame.ReadU8(); v != 0x01 {
		t.Errorf("ReadU8: got %#x, want 0x01", v)
	}
	if v := frame.ReadI8(); v != -1 {
		t.Errorf("ReadI8: got %d, want -1", v)
	}
	if v := frame.ReadU16(); v != 0x1234 {
		t.Errorf("ReadU16: got %#x, want 0x1234", v)
	}
	if v := frame.ReadI32(); v != -2147483647 {
		t.Errorf("ReadI32: got %d, want -2147483647", v)
	}
}
