package gfunction

import (
	"bytes"
	"io"
	"testing"

	"github.com/minijvm/minijvm/pkg/classloader"
	"github.com/minijvm/minijvm/pkg/oop"
)

// fakeVM is a minimal VM stub for exercising bindings in isolation,
// without a real interpreter.
type fakeVM struct {
	out *bytes.Buffer
	err *bytes.Buffer
}

func (f *fakeVM) Registry() *classloader.Registry { return nil }
func (f *fakeVM) InvokeMethod(class *oop.Class, method *oop.Method, args []oop.Value) (oop.Value, error) {
	return oop.Value{}, nil
}
func (f *fakeVM) NewString(s string) *oop.Ref       { return oop.NewRef(nil, &oop.Instance{}) }
func (f *fakeVM) NewInstance(name string) (*oop.Ref, error) { return oop.NewRef(nil, &oop.Instance{}), nil }
func (f *fakeVM) Stdout() io.Writer                 { return f.out }
func (f *fakeVM) Stderr() io.Writer                 { return f.err }

func newFakeVM() *fakeVM { return &fakeVM{out: &bytes.Buffer{}, err: &bytes.Buffer{}} }

func TestLookupKnownBinding(t *testing.T) {
	r := NewRegistry()

	t.Run("Object.hashCode", func(t *testing.T) {
		fn, ok := r.Lookup("java/lang/Object", "hashCode", "()I")
		if !ok {
			t.Fatal("expected java/lang/Object.hashCode:()I to be registered")
		}
		ref := oop.NewRef(nil, &oop.Instance{})
		got, err := fn(newFakeVM(), []oop.Value{oop.RefVal(ref)})
		if err != nil {
			t.Fatalf("hashCode: %v", err)
		}
		if got.Int != ref.IdentityHash() {
			t.Errorf("hashCode: got %d, want %d", got.Int, ref.IdentityHash())
		}
	})

	t.Run("registerNatives is a no-op", func(t *testing.T) {
		fn, ok := r.Lookup("java/lang/System", "registerNatives", "()V")
		if !ok {
			t.Fatal("expected java/lang/System.registerNatives:()V to be registered")
		}
		if _, err := fn(newFakeVM(), nil); err != nil {
			t.Errorf("registerNatives: unexpected error %v", err)
		}
	})
}

func TestLookupMissingBindingIsNotFound(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("com/example/Nonexistent", "frobnicate", "()V"); ok {
		t.Error("expected unregistered binding to report not-found")
	}
}

func TestAtomicCompareAndSwapLong(t *testing.T) {
	r := NewRegistry()
	fn, ok := r.Lookup("java/util/concurrent/atomic/AtomicLong", "compareAndSwapLong", "(JJ)Z")
	if !ok {
		t.Fatal("expected AtomicLong.compareAndSwapLong:(JJ)Z to be registered")
	}

	class := &oop.Class{
		Name:        "java/util/concurrent/atomic/AtomicLong",
		FieldLayout: map[string]*oop.FieldSlot{"value": {Name: "value", Descriptor: "J", Offset: 0}},
	}
	inst := &oop.Instance{Fields: []oop.Value{oop.Long(42)}}
	ref := oop.NewRef(class, inst)

	t.Run("succeeds when expected value matches", func(t *testing.T) {
		got, err := fn(newFakeVM(), []oop.Value{oop.RefVal(ref), oop.Long(42), oop.Long(99)})
		if err != nil {
			t.Fatalf("compareAndSwapLong: %v", err)
		}
		if got.Int != 1 {
			t.Errorf("expected success (1), got %d", got.Int)
		}
		if inst.Fields[0].Long != 99 {
			t.Errorf("value: got %d, want 99", inst.Fields[0].Long)
		}
	})

	t.Run("fails when expected value does not match", func(t *testing.T) {
		got, err := fn(newFakeVM(), []oop.Value{oop.RefVal(ref), oop.Long(1), oop.Long(2)})
		if err != nil {
			t.Fatalf("compareAndSwapLong: %v", err)
		}
		if got.Int != 0 {
			t.Errorf("expected failure (0), got %d", got.Int)
		}
		if inst.Fields[0].Long != 99 {
			t.Errorf("value should remain unchanged at 99, got %d", inst.Fields[0].Long)
		}
	})
}
