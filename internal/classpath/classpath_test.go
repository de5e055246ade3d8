package classpath

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// writeMinimalClassBytes returns the smallest byte sequence
// classfile.Parse accepts: magic, version, an empty constant pool,
// access flags, this/super class indices (0, since the pool is
// empty), and zero interfaces/fields/methods/attributes.
func writeMinimalClassBytes() []byte {
	return []byte{
		0xCA, 0xFE, 0xBA, 0xBE, // magic
		0x00, 0x00, // minor
		0x00, 52, // major
		0x00, 0x01, // constant_pool_count = 1 (no entries)
		0x00, 0x21, // access_flags (public | super)
		0x00, 0x00, // this_class
		0x00, 0x00, // super_class
		0x00, 0x00, // interfaces_count
		0x00, 0x00, // fields_count
		0x00, 0x00, // methods_count
		0x00, 0x00, // attributes_count
	}
}

func TestOpenFromDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Hello.class"), writeMinimalClassBytes(), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	p := New([]string{dir})
	cf, err := p.Open("Hello")
	if err != nil {
		t.Fatalf("Open(Hello): %v", err)
	}
	if cf.MajorVersion != 52 {
		t.Errorf("MajorVersion: got %d, want 52", cf.MajorVersion)
	}
}

func TestOpenFromNestedPackageDirectory(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "com", "example")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "Greeter.class"), writeMinimalClassBytes(), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	p := New([]string{dir})
	if _, err := p.Open("com/example/Greeter"); err != nil {
		t.Fatalf("Open(com/example/Greeter): %v", err)
	}
}

func TestOpenFromJar(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "lib.jar")
	f, err := os.Create(jarPath)
	if err != nil {
		t.Fatalf("create jar: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("Hello.class")
	if err != nil {
		t.Fatalf("zip create entry: %v", err)
	}
	if _, err := w.Write(writeMinimalClassBytes()); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	f.Close()

	p := New([]string{jarPath})
	defer p.Close()
	if _, err := p.Open("Hello"); err != nil {
		t.Fatalf("Open(Hello) from jar: %v", err)
	}
}

func TestFirstMatchWins(t *testing.T) {
	firstDir := t.TempDir()
	secondDir := t.TempDir()

	classBytes := writeMinimalClassBytes()
	classBytes[7] = 99 // distinguishable major version (low byte) in the first entry
	if err := os.WriteFile(filepath.Join(firstDir, "Dup.class"), classBytes, 0o644); err != nil {
		t.Fatalf("writing first fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(secondDir, "Dup.class"), writeMinimalClassBytes(), 0o644); err != nil {
		t.Fatalf("writing second fixture: %v", err)
	}

	p := New([]string{firstDir, secondDir})
	cf, err := p.Open("Dup")
	if err != nil {
		t.Fatalf("Open(Dup): %v", err)
	}
	if cf.MajorVersion != 99 {
		t.Errorf("first-match-wins: got major version %d, want 99 (from firstDir)", cf.MajorVersion)
	}
}

func TestOpenMissingClass(t *testing.T) {
	p := New([]string{t.TempDir()})
	if _, err := p.Open("DoesNotExist"); err == nil {
		t.Error("expected error for a class missing from every entry")
	}
}
