package classloader

import (
	"fmt"
	"testing"

	"github.com/minijvm/minijvm/pkg/classfile"
	"github.com/minijvm/minijvm/pkg/oop"
)

// fakeSource is an in-memory Source for tests, avoiding any dependency
// on real .class files or a JDK installation.
type fakeSource struct {
	classes map[string]*classfile.ClassFile
}

func newFakeSource() *fakeSource {
	return &fakeSource{classes: make(map[string]*classfile.ClassFile)}
}

func (s *fakeSource) Open(name string) (*classfile.ClassFile, error) {
	cf, ok := s.classes[name]
	if !ok {
		return nil, fmt.Errorf("class not found: %s", name)
	}
	return cf, nil
}

func (s *fakeSource) add(name string, cf *classfile.ClassFile) {
	s.classes[name] = cf
}

func objectClassFile() *classfile.ClassFile {
	return &classfile.ClassFile{
		AccessFlags: classfile.AccPublic,
	}
}

func simpleClassFile(superIndex uint16, fields []classfile.FieldInfo, methods []classfile.MethodInfo) *classfile.ClassFile {
	return &classfile.ClassFile{
		AccessFlags: classfile.AccPublic | classfile.AccSuper,
		Fields:      fields,
		Methods:     methods,
	}
}

func TestRequireLinksObjectWithNoSuperclass(t *testing.T) {
	src := newFakeSource()
	src.add("java/lang/Object", objectClassFile())

	child := simpleClassFile(0, nil, nil)
	src.add("Animal", child)

	reg := NewRegistry(src)

	// Animal has no explicit super in this fake (SuperClassName()
	// returns "" since the constant pool is empty), so exercise the
	// superclass path directly via Object instead.
	class, err := reg.Require("java/lang/Object")
	if err != nil {
		t.Fatalf("Require(java/lang/Object): %v", err)
	}
	if class.State() != oop.StateLinked {
		t.Errorf("state: got %v, want %v", class.State(), oop.StateLinked)
	}
	if class.Super != nil {
		t.Errorf("java/lang/Object should have no superclass, got %v", class.Super.Name)
	}
}

func TestRequireCachesLoadedClass(t *testing.T) {
	src := newFakeSource()
	src.add("java/lang/Object", objectClassFile())

	reg := NewRegistry(src)
	c1, err := reg.Require("java/lang/Object")
	if err != nil {
		t.Fatalf("first Require: %v", err)
	}
	c2, err := reg.Require("java/lang/Object")
	if err != nil {
		t.Fatalf("second Require: %v", err)
	}
	if c1 != c2 {
		t.Error("expected identical *oop.Class for repeated Require, got distinct pointers")
	}
}

func TestRequireClassNotFound(t *testing.T) {
	reg := NewRegistry(newFakeSource())
	if _, err := reg.Require("com/nonexistent/Foo"); err == nil {
		t.Error("expected error for nonexistent class, got nil")
	}
}

func TestFieldLayoutInheritsSuperclassPrefix(t *testing.T) {
	src := newFakeSource()
	src.add("java/lang/Object", objectClassFile())

	reg := NewRegistry(src)
	obj, err := reg.Require("java/lang/Object")
	if err != nil {
		t.Fatalf("Require(Object): %v", err)
	}
	obj.FieldLayout["x"] = &oop.FieldSlot{Name: "x", Descriptor: "I", Offset: 0}
	obj.InstanceFieldCount = 1

	child := oop.NewClass("Child")
	child.Super = obj
	child.File = &classfile.ClassFile{
		Fields: []classfile.FieldInfo{
			{Name: "y", Descriptor: "I"},
		},
	}
	layoutFields(child)

	if _, ok := child.FieldLayout["x"]; !ok {
		t.Error("child should inherit superclass field x")
	}
	ySlot, ok := child.FieldLayout["y"]
	if !ok {
		t.Fatal("child should have its own field y")
	}
	if ySlot.Offset != 1 {
		t.Errorf("y offset: got %d, want 1 (after inherited slot 0)", ySlot.Offset)
	}
	if child.InstanceFieldCount != 2 {
		t.Errorf("InstanceFieldCount: got %d, want 2", child.InstanceFieldCount)
	}
}

// trackingInitializer records every class whose <clinit> was run, to
// verify Initialize never re-runs <clinit>.
type trackingInitializer struct {
	ran []string
}

func (t *trackingInitializer) RunClinit(class *oop.Class) error {
	t.ran = append(t.ran, class.Name)
	return nil
}

func TestInitializeRunsClinitOnlyOnce(t *testing.T) {
	src := newFakeSource()
	src.add("java/lang/Object", objectClassFile())
	src.add("Base", &classfile.ClassFile{
		AccessFlags: classfile.AccSuper,
		Methods: []classfile.MethodInfo{
			{Name: "<clinit>", Descriptor: "()V", AccessFlags: classfile.AccStatic,
				Code: &classfile.CodeAttribute{Code: []byte{0xB1}}},
		},
	})

	reg := NewRegistry(src)
	tracker := &trackingInitializer{}
	reg.SetInitializer(tracker)

	base, err := reg.Require("Base")
	if err != nil {
		t.Fatalf("Require(Base): %v", err)
	}
	base.Super, err = reg.Require("java/lang/Object")
	if err != nil {
		t.Fatalf("Require(Object): %v", err)
	}

	if err := reg.Initialize(base); err != nil {
		t.Fatalf("first Initialize: %v", err)
	}
	if err := reg.Initialize(base); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}

	count := 0
	for _, name := range tracker.ran {
		if name == "Base" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("<clinit> ran %d times, want exactly 1", count)
	}
	if base.State() != oop.StateFullyInitialized {
		t.Errorf("state: got %v, want %v", base.State(), oop.StateFullyInitialized)
	}
}

// TestLayoutFieldsHonoursConstantValueAttribute covers spec.md §4.1:
// a static final field compiled with a ConstantValue attribute (and
// thus no <clinit> bytecode) must read back its compiled-in value, not
// the JVMS §2.3/§2.4 zero default.
func TestLayoutFieldsHonoursConstantValueAttribute(t *testing.T) {
	pool := []classfile.ConstantPoolEntry{
		nil, // index 0 is unused, per JVMS §4.4
		&classfile.ConstantUtf8{Value: "hello"},
	}
	class := oop.NewClass("Const")
	class.File = &classfile.ClassFile{
		ConstantPool: pool,
		Fields: []classfile.FieldInfo{
			{Name: "I_CONST", Descriptor: "I", AccessFlags: classfile.AccStatic,
				ConstValue: &classfile.ConstantInteger{Value: 5}},
			{Name: "J_CONST", Descriptor: "J", AccessFlags: classfile.AccStatic,
				ConstValue: &classfile.ConstantLong{Value: 1 << 40}},
			{Name: "F_CONST", Descriptor: "F", AccessFlags: classfile.AccStatic,
				ConstValue: &classfile.ConstantFloat{Value: 1.5}},
			{Name: "D_CONST", Descriptor: "D", AccessFlags: classfile.AccStatic,
				ConstValue: &classfile.ConstantDouble{Value: 2.5}},
			{Name: "S_CONST", Descriptor: "Ljava/lang/String;", AccessFlags: classfile.AccStatic,
				ConstValue: &classfile.ConstantString{StringIndex: 1}},
			{Name: "NO_CONST", Descriptor: "I", AccessFlags: classfile.AccStatic},
		},
	}

	layoutFields(class)

	if v := class.StaticFields["I_CONST"]; v.Kind != oop.KindInt || v.Int != 5 {
		t.Errorf("I_CONST: got %v, want int(5)", v)
	}
	if v := class.StaticFields["J_CONST"]; v.Kind != oop.KindLong || v.Long != 1<<40 {
		t.Errorf("J_CONST: got %v, want long(%d)", v, int64(1)<<40)
	}
	if v := class.StaticFields["F_CONST"]; v.Kind != oop.KindFloat || v.Float != 1.5 {
		t.Errorf("F_CONST: got %v, want float(1.5)", v)
	}
	if v := class.StaticFields["D_CONST"]; v.Kind != oop.KindDouble || v.Double != 2.5 {
		t.Errorf("D_CONST: got %v, want double(2.5)", v)
	}
	if v := class.StaticFields["S_CONST"]; v.Kind != oop.KindUtf8Const || v.Utf8 != "hello" {
		t.Errorf("S_CONST: got %v, want utf8const(\"hello\")", v)
	}
	if v := class.StaticFields["NO_CONST"]; v.Kind != oop.KindInt || v.Int != 0 {
		t.Errorf("NO_CONST: got %v, want the zero value int(0), since no ConstantValue attribute is present", v)
	}
}

func TestRequireArrayClassFabricatesElementAndObjectSuper(t *testing.T) {
	src := newFakeSource()
	src.add("java/lang/Object", objectClassFile())

	reg := NewRegistry(src)
	arr, err := reg.Require("[I")
	if err != nil {
		t.Fatalf("Require([I): %v", err)
	}
	if !arr.IsArray {
		t.Error("expected IsArray=true")
	}
	if arr.ElementType == nil || arr.ElementType.Name != "int" {
		t.Errorf("element type: got %v, want int", arr.ElementType)
	}
	if arr.Super == nil || arr.Super.Name != "java/lang/Object" {
		t.Error("array classes must have java/lang/Object as their superclass")
	}
	if arr.State() != oop.StateFullyInitialized {
		t.Errorf("array class state: got %v, want fully-initialized (no <clinit> to run)", arr.State())
	}
}
