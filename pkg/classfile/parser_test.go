package classfile

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"
)

// buildMinimalClass assembles the bytes of a small but complete .class file
// for a public class `name` extending java/lang/Object with a single
// `()V` method `methodName` whose body is exactly `code`.
func buildMinimalClass(t *testing.T, name, methodName string, code []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := func(v interface{}) {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
	}

	w(uint32(classMagic))
	w(uint16(0))  // minor
	w(uint16(52)) // major = Java 8

	// Constant pool: 1=Utf8(name) 2=Class(1) 3=Utf8(java/lang/Object)
	// 4=Class(3) 5=Utf8(methodName) 6=Utf8("()V") 7=Utf8("Code")
	w(uint16(8)) // constant_pool_count = count+1
	writeUtf8(&buf, w, name)
	w(uint8(TagClass))
	w(uint16(1))
	writeUtf8(&buf, w, "java/lang/Object")
	w(uint8(TagClass))
	w(uint16(3))
	writeUtf8(&buf, w, methodName)
	writeUtf8(&buf, w, "()V")
	writeUtf8(&buf, w, "Code")

	w(uint16(AccPublic | AccSuper)) // access_flags
	w(uint16(2))                    // this_class
	w(uint16(4))                    // super_class
	w(uint16(0))                    // interfaces_count
	w(uint16(0))                    // fields_count

	w(uint16(1))                 // methods_count
	w(uint16(AccPublic | AccStatic)) // method access_flags
	w(uint16(5))                  // name_index
	w(uint16(6))                  // descriptor_index
	w(uint16(1))                  // attributes_count

	// Code attribute
	writeCodeAttribute(&buf, w, code)

	w(uint16(0)) // class attributes_count

	return buf.Bytes()
}

func writeUtf8(buf *bytes.Buffer, w func(interface{}), s string) {
	w(uint8(TagUtf8))
	w(uint16(len(s)))
	buf.WriteString(s)
}

func writeCodeAttribute(buf *bytes.Buffer, w func(interface{}), code []byte) {
	w(uint16(7)) // attribute_name_index -> "Code"

	var body bytes.Buffer
	bw := func(v interface{}) { binary.Write(&body, binary.BigEndian, v) }
	bw(uint16(4))             // max_stack
	bw(uint16(1))             // max_locals
	bw(uint32(len(code)))     // code_length
	body.Write(code)
	bw(uint16(0)) // exception_table_length
	bw(uint16(0)) // code attributes_count

	w(uint32(body.Len()))
	buf.Write(body.Bytes())
}

func TestParseMinimalClassFile(t *testing.T) {
	raw := buildMinimalClass(t, "Hello", "main", []byte{0xB1}) // return

	cf, err := Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cf.MajorVersion != 52 {
		t.Errorf("MajorVersion: got %d, want 52", cf.MajorVersion)
	}

	className, err := cf.ClassName()
	if err != nil {
		t.Fatalf("ClassName: %v", err)
	}
	if className != "Hello" {
		t.Errorf("ClassName: got %q, want %q", className, "Hello")
	}

	if got := cf.SuperClassName(); got != "java/lang/Object" {
		t.Errorf("SuperClassName: got %q, want java/lang/Object", got)
	}

	method := cf.FindMethod("main", "()V")
	if method == nil {
		t.Fatal("main method not found")
	}
	if method.Code == nil {
		t.Fatal("main method has no Code attribute")
	}
	if len(method.Code.Code) == 0 {
		t.Error("Code attribute has empty bytecode")
	}
}

func TestParseInvalidMagic(t *testing.T) {
	f, err := os.CreateTemp("", "invalid*.class")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	defer os.Remove(f.Name())

	f.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	f.Close()

	r, err := os.Open(f.Name())
	if err != nil {
		t.Fatalf("opening temp file: %v", err)
	}
	defer r.Close()

	if _, err := Parse(r); err == nil {
		t.Error("expected error for invalid magic number, got nil")
	}
}

func TestCountParams(t *testing.T) {
	tests := []struct {
		descriptor string
		want       int
	}{
		{"()V", 0},
		{"(I)V", 1},
		{"(II)I", 2},
		{"(Ljava/lang/String;)V", 1},
		{"([Ljava/lang/String;)V", 1},
		{"(IJLjava/lang/Object;[D)V", 4},
	}
	for _, tt := range tests {
		got, err := CountParams(tt.descriptor)
		if err != nil {
			t.Errorf("CountParams(%q): unexpected error %v", tt.descriptor, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CountParams(%q): got %d, want %d", tt.descriptor, got, tt.want)
		}
	}
}

func TestIsVoidReturn(t *testing.T) {
	if !IsVoidReturn("(I)V") {
		t.Error("(I)V should be void return")
	}
	if IsVoidReturn("(I)I") {
		t.Error("(I)I should not be void return")
	}
}
