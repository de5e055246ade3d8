package launcher

import (
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/minijvm/minijvm/pkg/classloader"
	"github.com/minijvm/minijvm/pkg/interpreter"
	"github.com/minijvm/minijvm/pkg/oop"
)

func TestParseArgsMainClassOnly(t *testing.T) {
	cfg, err := ParseArgs([]string{"com.example.Hello"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.MainClass != "com/example/Hello" {
		t.Errorf("MainClass: got %q, want %q", cfg.MainClass, "com/example/Hello")
	}
	if len(cfg.Args) != 0 {
		t.Errorf("Args: got %v, want empty", cfg.Args)
	}
	if len(cfg.ClasspathEntries) != 0 {
		t.Errorf("ClasspathEntries: got %v, want empty", cfg.ClasspathEntries)
	}
}

func TestParseArgsWithProgramArgs(t *testing.T) {
	cfg, err := ParseArgs([]string{"Hello", "a", "bc"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.MainClass != "Hello" {
		t.Errorf("MainClass: got %q, want %q", cfg.MainClass, "Hello")
	}
	if len(cfg.Args) != 2 || cfg.Args[0] != "a" || cfg.Args[1] != "bc" {
		t.Errorf("Args: got %v, want [a bc]", cfg.Args)
	}
}

func TestParseArgsCpFlag(t *testing.T) {
	sep := string(os.PathListSeparator)
	cfg, err := ParseArgs([]string{"--cp", "lib" + sep + "classes", "Hello"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if len(cfg.ClasspathEntries) != 2 || cfg.ClasspathEntries[0] != "lib" || cfg.ClasspathEntries[1] != "classes" {
		t.Errorf("ClasspathEntries: got %v, want [lib classes]", cfg.ClasspathEntries)
	}
}

func TestParseArgsClasspathAlias(t *testing.T) {
	cfg, err := ParseArgs([]string{"--classpath", "out", "Hello"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if len(cfg.ClasspathEntries) != 1 || cfg.ClasspathEntries[0] != "out" {
		t.Errorf("ClasspathEntries: got %v, want [out]", cfg.ClasspathEntries)
	}
}

func TestParseArgsBothCpAndClasspathMerge(t *testing.T) {
	cfg, err := ParseArgs([]string{"--cp", "a", "--classpath", "b", "Hello"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if len(cfg.ClasspathEntries) != 2 || cfg.ClasspathEntries[0] != "a" || cfg.ClasspathEntries[1] != "b" {
		t.Errorf("ClasspathEntries: got %v, want [a b]", cfg.ClasspathEntries)
	}
}

func TestParseArgsMissingMainClass(t *testing.T) {
	if _, err := ParseArgs(nil); err == nil {
		t.Error("expected an error when no main class is given")
	}
}

// fakeStringRef builds a minimal java/lang/String instance of the
// shape oop.StringValue expects: a single char[] field named "value".
func fakeStringRef(s string) *oop.Ref {
	chars := make([]uint16, len(s))
	for i, r := range s {
		chars[i] = uint16(r)
	}
	arrRef := &oop.Ref{Data: &oop.TypeArray{AType: oop.ATChar, Chars: chars}}

	stringClass := oop.NewClass("java/lang/String")
	stringClass.FieldLayout["value"] = &oop.FieldSlot{Name: "value", Descriptor: "[C", Offset: 0}
	stringClass.InstanceFieldCount = 1

	return &oop.Ref{
		Class: stringClass,
		Data:  &oop.Instance{Fields: []oop.Value{oop.RefVal(arrRef)}},
	}
}

// fakeThrowableRef builds a minimal Throwable instance carrying a
// "detailMessage" field, the shape interpreter.ThrowableMessage reads.
func fakeThrowableRef(className, message string) *oop.Ref {
	class := oop.NewClass(className)
	class.FieldLayout["detailMessage"] = &oop.FieldSlot{Name: "detailMessage", Descriptor: "Ljava/lang/String;", Offset: 0}
	class.InstanceFieldCount = 1

	return &oop.Ref{
		Class: class,
		Data:  &oop.Instance{Fields: []oop.Value{oop.RefVal(fakeStringRef(message))}},
	}
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	saved := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stderr = w
	fn()
	w.Close()
	os.Stderr = saved

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured stderr: %v", err)
	}
	return string(out)
}

// TestReportUncaughtFallbackFormat exercises the no-dispatch-available
// path (thread is nil, as when MainThread's constructor wasn't found):
// reportUncaught must fall back to the spec's exact
// "Name: <class>, detailMessage: <text>" wording (spec.md §7/§8.2).
func TestReportUncaughtFallbackFormat(t *testing.T) {
	it := interpreter.New(classloader.NewRegistry(nil), nil)
	thrown := &interpreter.Throw{Ref: fakeThrowableRef("java/lang/RuntimeException", "x")}

	out := captureStderr(t, func() {
		reportUncaught(it, nil, "Main", thrown)
	})

	want := "Name: java/lang/RuntimeException, detailMessage: x\n"
	if out != want {
		t.Errorf("reportUncaught output: got %q, want %q", out, want)
	}
}

// TestReportUncaughtNonThrowFallsBackToGenericError covers an error
// that never was a live Java exception (e.g. a classloading failure):
// it must use the teacher's plain "Error executing ...: %v" form, not
// the Throwable wording.
func TestReportUncaughtNonThrowFallsBackToGenericError(t *testing.T) {
	it := interpreter.New(classloader.NewRegistry(nil), nil)
	err := fmt.Errorf("boom")

	out := captureStderr(t, func() {
		reportUncaught(it, nil, "Main", err)
	})

	if !strings.Contains(out, "Error executing Main: boom") {
		t.Errorf("reportUncaught output: got %q, want it to contain the generic error form", out)
	}
}
