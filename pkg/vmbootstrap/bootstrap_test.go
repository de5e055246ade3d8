package vmbootstrap

import (
	"fmt"
	"testing"

	"github.com/minijvm/minijvm/pkg/classfile"
	"github.com/minijvm/minijvm/pkg/classloader"
	"github.com/minijvm/minijvm/pkg/gfunction"
	"github.com/minijvm/minijvm/pkg/interpreter"
)

// fakeSource is an in-memory classloader.Source, the same pattern
// pkg/interpreter's own tests use, so Boot can be exercised without a
// real bootclasspath.
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

// minimalCoreClasspath builds just enough of the core library for Boot
// to run to completion: no System.initializeSystemClass()V method, so
// step 5 takes its no-op branch.
func minimalCoreClasspath() *fakeSource {
	src := newFakeSource()
	src.add("java/lang/Object", &classfile.ClassFile{AccessFlags: classfile.AccPublic})
	src.add("java/lang/Class", &classfile.ClassFile{AccessFlags: classfile.AccPublic})
	src.add("java/lang/ThreadGroup", &classfile.ClassFile{AccessFlags: classfile.AccPublic})
	src.add("java/lang/Thread", &classfile.ClassFile{AccessFlags: classfile.AccPublic})
	src.add("java/lang/System", &classfile.ClassFile{AccessFlags: classfile.AccPublic})
	return src
}

func newTestVM(src *fakeSource) (*classloader.Registry, *interpreter.Interpreter) {
	reg := classloader.NewRegistry(src)
	it := interpreter.New(reg, gfunction.NewRegistry())
	return reg, it
}

func TestBootLoadsCoreClasses(t *testing.T) {
	reg, it := newTestVM(minimalCoreClasspath())

	if err := Boot(reg, it); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	for _, name := range []string{"java/lang/Object", "java/lang/Class", "java/lang/Thread", "java/lang/ThreadGroup", "java/lang/System"} {
		if reg.Lookup(name) == nil {
			t.Errorf("expected %s to be loaded after Boot", name)
		}
	}
}

func TestBootCreatesPrimitiveMirrors(t *testing.T) {
	reg, it := newTestVM(minimalCoreClasspath())
	if err := Boot(reg, it); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	for _, name := range primitiveNames {
		class := reg.Lookup(name)
		if class == nil {
			t.Fatalf("primitive class %s not loaded", name)
		}
		if class.Mirror == nil {
			t.Errorf("primitive class %s has no mirror after Boot", name)
		}
	}
	for _, desc := range primitiveArrayDescriptors {
		class := reg.Lookup(desc)
		if class == nil {
			t.Fatalf("primitive array class %s not loaded", desc)
		}
		if class.Mirror == nil {
			t.Errorf("primitive array class %s has no mirror after Boot", desc)
		}
	}
}

func TestBootSkipsMissingInitializeSystemClass(t *testing.T) {
	reg, it := newTestVM(minimalCoreClasspath())
	if err := Boot(reg, it); err != nil {
		t.Fatalf("Boot should tolerate a System with no initializeSystemClass()V: %v", err)
	}
}

func TestBootFailsWithoutObject(t *testing.T) {
	src := newFakeSource()
	reg, it := newTestVM(src)

	if err := Boot(reg, it); err == nil {
		t.Error("expected Boot to fail when java/lang/Object cannot be loaded")
	}
}

func TestMainThreadGroupAndThread(t *testing.T) {
	reg, it := newTestVM(minimalCoreClasspath())
	if err := Boot(reg, it); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	group, err := MainThreadGroup(reg, it)
	if err != nil {
		t.Fatalf("MainThreadGroup: %v", err)
	}
	if group == nil {
		t.Fatal("expected a non-nil main thread group")
	}

	thread, err := MainThread(reg, it, group)
	if err != nil {
		t.Fatalf("MainThread: %v", err)
	}
	if thread == nil {
		t.Fatal("expected a non-nil main thread")
	}
	if thread.Class.Name != "java/lang/Thread" {
		t.Errorf("main thread class: got %s, want java/lang/Thread", thread.Class.Name)
	}
}
