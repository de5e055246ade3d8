// Command jdis disassembles a single class file: constant pool
// summary, access flags, fields, and per-method bytecode — read-only
// over pkg/classfile, sharing classpath resolution with cmd/gojvm via
// pkg/classloader.Registry.Disassemble.
//
// Usage: jdis [--cp <paths>] <class-name>
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/minijvm/minijvm/internal/classpath"
	"github.com/minijvm/minijvm/pkg/classfile"
	"github.com/minijvm/minijvm/pkg/classloader"
)

func main() {
	fs := flag.NewFlagSet("jdis", flag.ExitOnError)
	var cp string
	fs.StringVar(&cp, "cp", "", "classpath (platform path-list separated)")
	fs.Parse(os.Args[1:])

	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: jdis [--cp <paths>] <class-name>")
		os.Exit(1)
	}
	className := strings.ReplaceAll(rest[0], ".", "/")

	var entries []string
	if cp != "" {
		entries = strings.Split(cp, string(os.PathListSeparator))
	} else {
		entries = []string{"."}
	}

	path := classpath.New(entries)
	defer path.Close()
	reg := classloader.NewRegistry(path)

	cf, err := reg.Disassemble(className)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", className, err)
		os.Exit(1)
	}

	printClassFile(cf)
}

func printClassFile(cf *classfile.ClassFile) {
	name, _ := cf.ClassName()
	fmt.Printf("class %s\n", name)
	fmt.Printf("  minor version: %d\n", cf.MinorVersion)
	fmt.Printf("  major version: %d\n", cf.MajorVersion)
	fmt.Printf("  access flags: %s\n", accessFlagsString(cf.AccessFlags, false))
	if super := cf.SuperClassName(); super != "" {
		fmt.Printf("  super: %s\n", super)
	}
	if len(cf.Interfaces) > 0 {
		fmt.Println("  interfaces:")
		for _, idx := range cf.Interfaces {
			if ifaceName, err := classfile.GetClassName(cf.ConstantPool, idx); err == nil {
				fmt.Printf("    %s\n", ifaceName)
			}
		}
	}

	fmt.Printf("  constant pool: %d entries\n", len(cf.ConstantPool))

	if len(cf.Fields) > 0 {
		fmt.Println("fields:")
		for _, f := range cf.Fields {
			fmt.Printf("  %s %s %s\n", accessFlagsString(f.AccessFlags, true), f.Descriptor, f.Name)
		}
	}

	fmt.Println("methods:")
	for _, m := range cf.Methods {
		fmt.Printf("  %s %s%s\n", accessFlagsString(m.AccessFlags, true), m.Name, m.Descriptor)
		if m.Code == nil {
			continue
		}
		fmt.Printf("    max_stack=%d max_locals=%d\n", m.Code.MaxStack, m.Code.MaxLocals)
		printCode(m.Code.Code)
		for _, h := range m.Code.ExceptionHandlers {
			fmt.Printf("    exception: start=%d end=%d handler=%d catch_type_cp=%d\n",
				h.StartPC, h.EndPC, h.HandlerPC, h.CatchType)
		}
	}
}

// printCode walks code printing each instruction's mnemonic at its
// offset; operand bytes are printed raw in hex since decoding them
// correctly (branch targets, switch padding, constant-pool indices)
// duplicates the interpreter's own dispatch table rather than serving
// a distinct purpose for a disassembler.
func printCode(code []byte) {
	for pc := 0; pc < len(code); pc++ {
		op := code[pc]
		name, ok := mnemonics[op]
		if !ok {
			name = fmt.Sprintf("0x%02x", op)
		}
		operandLen := instructionLength(op) - 1
		if pc+1+operandLen > len(code) {
			operandLen = len(code) - pc - 1
		}
		operands := code[pc+1 : pc+1+operandLen]
		if len(operands) > 0 {
			fmt.Printf("    %4d: %-16s %x\n", pc, name, operands)
		} else {
			fmt.Printf("    %4d: %s\n", pc, name)
		}
		pc += operandLen
	}
}

// instructionLength returns the fixed encoded length (opcode + operand
// bytes) for opcodes with a statically known width; variable-length
// opcodes (tableswitch, lookupswitch, wide) are reported as 1 so the
// operand bytes print individually rather than mis-parsed as a single
// fixed-width operand.
func instructionLength(op byte) int {
	switch op {
	case 0x10, 0x12, 0x15, 0x16, 0x17, 0x18, 0x19, 0x36, 0x37, 0x38, 0x39, 0x3A, 0xBC: // bipush, ldc, *load, *store, newarray
		return 2
	case 0x11, 0x13, 0x14, 0x84, 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9E, // sipush, ldc_w, ldc2_w, iinc, if*
		0x9F, 0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7, 0xA8,
		0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7, 0xB8, 0xBB, 0xBD, 0xC0, 0xC1, 0xC6, 0xC7: // getstatic..invokestatic, new, anewarray, checkcast, instanceof, ifnull/ifnonnull
		return 3
	case 0xB9, 0xBA: // invokeinterface, invokedynamic
		return 5
	case 0xC5: // multianewarray
		return 4
	case 0xC8, 0xC9: // goto_w, jsr_w
		return 5
	default:
		return 1
	}
}

func accessFlagsString(flags uint16, member bool) string {
	var parts []string
	add := func(mask uint16, name string) {
		if flags&mask != 0 {
			parts = append(parts, name)
		}
	}
	add(classfile.AccPublic, "public")
	add(classfile.AccPrivate, "private")
	add(classfile.AccProtected, "protected")
	add(classfile.AccStatic, "static")
	add(classfile.AccFinal, "final")
	if !member {
		add(classfile.AccSuper, "super")
		add(classfile.AccInterface, "interface")
		add(classfile.AccAbstract, "abstract")
	} else {
		add(classfile.AccSynchronized, "synchronized")
		add(classfile.AccNative, "native")
		add(classfile.AccAbstract, "abstract")
	}
	add(classfile.AccSynthetic, "synthetic")
	add(classfile.AccEnum, "enum")
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}
