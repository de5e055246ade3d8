package gfunction

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/minijvm/minijvm/pkg/oop"
)

// registerLang installs the java/lang bindings exercised by every
// program: Object identity hash/getClass, Class reflection stubs,
// Float/Double bit conversion, System bootstrap plumbing, and the
// registerNatives/initIDs no-ops the JDK sprinkles across many classes.
func registerLang(r *Registry) {
	r.Register("java/lang/Object", "hashCode", "()I", func(vm VM, args []oop.Value) (oop.Value, error) {
		if args[0].Ref == nil {
			return oop.Value{}, fmt.Errorf("NullPointerException")
		}
		return oop.Int(args[0].Ref.IdentityHash()), nil
	})

	r.Register("java/lang/Object", "getClass", "()Ljava/lang/Class;", func(vm VM, args []oop.Value) (oop.Value, error) {
		if args[0].Ref == nil {
			return oop.Value{}, fmt.Errorf("NullPointerException")
		}
		return mirrorOf(vm, args[0].Ref.Class)
	})

	r.Register("java/lang/Object", "notify", "()V", noop)
	r.Register("java/lang/Object", "notifyAll", "()V", noop)
	r.Register("java/lang/Object", "wait", "(J)V", noop)
	r.Register("java/lang/Object", "registerNatives", "()V", noop)

	r.Register("java/lang/Class", "registerNatives", "()V", noop)
	r.Register("java/lang/Class", "desiredAssertionStatus0", "(Ljava/lang/Class;)Z", returnFalse)
	r.Register("java/lang/Class", "isArray", "()Z", func(vm VM, args []oop.Value) (oop.Value, error) {
		class, err := mirrorClass(args[0])
		if err != nil {
			return oop.Value{}, err
		}
		return oop.Bool(class.IsArray), nil
	})
	r.Register("java/lang/Class", "isPrimitive", "()Z", func(vm VM, args []oop.Value) (oop.Value, error) {
		class, err := mirrorClass(args[0])
		if err != nil {
			return oop.Value{}, err
		}
		return oop.Bool(class.IsPrimitive), nil
	})
	r.Register("java/lang/Class", "isInterface", "()Z", func(vm VM, args []oop.Value) (oop.Value, error) {
		class, err := mirrorClass(args[0])
		if err != nil {
			return oop.Value{}, err
		}
		return oop.Bool(class.IsInterface()), nil
	})
	r.Register("java/lang/Class", "getName0", "()Ljava/lang/String;", func(vm VM, args []oop.Value) (oop.Value, error) {
		class, err := mirrorClass(args[0])
		if err != nil {
			return oop.Value{}, err
		}
		return oop.RefVal(vm.NewString(dottedName(class.Name))), nil
	})
	r.Register("java/lang/Class", "isAssignableFrom", "(Ljava/lang/Class;)Z", func(vm VM, args []oop.Value) (oop.Value, error) {
		target, err := mirrorClass(args[0])
		if err != nil {
			return oop.Value{}, err
		}
		source, err := mirrorClass(args[1])
		if err != nil {
			return oop.Value{}, err
		}
		return oop.Bool(source.AssignableTo(target)), nil
	})

	r.Register("java/lang/Float", "floatToRawIntBits", "(F)I", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Int(int32(math.Float32bits(args[0].Float))), nil
	})
	r.Register("java/lang/Float", "intBitsToFloat", "(I)F", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Float(math.Float32frombits(uint32(args[0].Int))), nil
	})
	r.Register("java/lang/Float", "isNaN", "(F)Z", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Bool(math.IsNaN(float64(args[0].Float))), nil
	})

	r.Register("java/lang/Double", "doubleToRawLongBits", "(D)J", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Long(int64(math.Float64bits(args[0].Double))), nil
	})
	r.Register("java/lang/Double", "longBitsToDouble", "(J)D", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Double(math.Float64frombits(uint64(args[0].Long))), nil
	})
	r.Register("java/lang/Double", "isNaN", "(D)Z", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Bool(math.IsNaN(args[0].Double)), nil
	})

	r.Register("java/lang/Math", "sqrt", "(D)D", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Double(math.Sqrt(args[0].Double)), nil
	})
	r.Register("java/lang/Math", "pow", "(DD)D", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Double(math.Pow(args[0].Double, args[1].Double)), nil
	})

	r.Register("java/lang/System", "registerNatives", "()V", noop)
	r.Register("java/lang/System", "nanoTime", "()J", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Long(0), nil
	})
	r.Register("java/lang/System", "currentTimeMillis", "()J", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Long(0), nil
	})
	r.Register("java/lang/System", "identityHashCode", "(Ljava/lang/Object;)I", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Int(args[0].Ref.IdentityHash()), nil
	})
	r.Register("java/lang/System", "arraycopy", "(Ljava/lang/Object;ILjava/lang/Object;II)V", nativeArraycopy)
	r.Register("java/lang/System", "initProperties", "(Ljava/util/Properties;)Ljava/util/Properties;", nativeInitProperties)

	r.Register("java/lang/Thread", "currentThread", "()Ljava/lang/Thread;", func(vm VM, args []oop.Value) (oop.Value, error) {
		ref, err := vm.NewInstance("java/lang/Thread")
		if err != nil {
			return oop.Value{}, err
		}
		return oop.RefVal(ref), nil
	})
	r.Register("java/lang/Thread", "setPriority0", "(I)V", noop)
	r.Register("java/lang/Thread", "registerNatives", "()V", noop)

	r.Register("java/lang/Runtime", "availableProcessors", "()I", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Int(1), nil
	})
	r.Register("java/lang/Runtime", "maxMemory", "()J", func(vm VM, args []oop.Value) (oop.Value, error) {
		return oop.Long(256 * 1024 * 1024), nil
	})

	r.Register("java/lang/String", "intern", "()Ljava/lang/String;", func(vm VM, args []oop.Value) (oop.Value, error) {
		return args[0], nil
	})
}

func noop(vm VM, args []oop.Value) (oop.Value, error) { return oop.Value{}, nil }

func returnFalse(vm VM, args []oop.Value) (oop.Value, error) { return oop.Int(0), nil }

func mirrorClass(v oop.Value) (*oop.Class, error) {
	if v.Ref == nil {
		return nil, fmt.Errorf("NullPointerException")
	}
	mirror, ok := v.Ref.Data.(*oop.Mirror)
	if !ok {
		return nil, fmt.Errorf("expected a Class mirror, got %T", v.Ref.Data)
	}
	return mirror.Reflects, nil
}

func mirrorOf(vm VM, class *oop.Class) (oop.Value, error) {
	if class == nil {
		return oop.Null(), nil
	}
	if class.Mirror != nil {
		return oop.RefVal(class.Mirror), nil
	}
	classClass := vm.Registry().Lookup("java/lang/Class")
	m := oop.NewRef(classClass, &oop.Mirror{Reflects: class})
	class.Mirror = m
	return oop.RefVal(m), nil
}

func dottedName(internal string) string {
	out := []byte(internal)
	for i, c := range out {
		if c == '/' {
			out[i] = '.'
		}
	}
	return string(out)
}

// nativeInitProperties implements the native half of
// System.initializeSystemClass: it populates the Properties instance
// the Java side already constructed by calling its own
// setProperty(String,String) for each entry SPEC_FULL §6 requires,
// then returns the same instance (matching the real JDK's
// initProperties(Properties) -> Properties contract).
func nativeInitProperties(vm VM, args []oop.Value) (oop.Value, error) {
	props := args[0]
	if props.Ref == nil {
		return oop.Value{}, fmt.Errorf("NullPointerException")
	}
	javaHome := os.Getenv("JAVA_HOME")
	userHome, _ := os.UserHomeDir()
	userDir, _ := os.Getwd()

	entries := map[string]string{
		"file.encoding":              "UTF-8",
		"file.separator":             string(filepath.Separator),
		"path.separator":             string(os.PathListSeparator),
		"line.separator":             "\n",
		"os.name":                    runtime.GOOS,
		"os.arch":                    runtime.GOARCH,
		"user.dir":                   userDir,
		"user.home":                  userHome,
		"java.io.tmpdir":             os.TempDir(),
		"java.home":                  javaHome,
		"java.class.version":         "52.0",
		"java.specification.version": "1.8",
	}

	setProperty := propsClass(props).FindMethod("setProperty", "(Ljava/lang/String;Ljava/lang/String;)Ljava/lang/Object;")
	if setProperty == nil {
		return oop.Value{}, fmt.Errorf("java.util.Properties.setProperty not found")
	}
	for k, v := range entries {
		keyRef := vm.NewString(k)
		valRef := vm.NewString(v)
		if _, err := vm.InvokeMethod(propsClass(props), setProperty, []oop.Value{props, oop.RefVal(keyRef), oop.RefVal(valRef)}); err != nil {
			return oop.Value{}, err
		}
	}
	return props, nil
}

func propsClass(v oop.Value) *oop.Class {
	return v.Ref.Class
}

// nativeArraycopy implements System.arraycopy for both reference and
// primitive array element types (JVMS does not define this method's
// semantics; it follows java.lang.System's documented contract).
func nativeArraycopy(vm VM, args []oop.Value) (oop.Value, error) {
	src, srcPos, dst, dstPos, length := args[0], args[1].Int, args[2], args[3].Int, args[4].Int
	if src.Ref == nil || dst.Ref == nil {
		return oop.Value{}, fmt.Errorf("NullPointerException")
	}

	if srcArr, ok := src.Ref.Data.(*oop.ObjectArray); ok {
		dstArr, ok := dst.Ref.Data.(*oop.ObjectArray)
		if !ok {
			return oop.Value{}, fmt.Errorf("ArrayStoreException: arraycopy type mismatch")
		}
		copy(dstArr.Elements[dstPos:dstPos+length], srcArr.Elements[srcPos:srcPos+length])
		return oop.Value{}, nil
	}

	srcArr, ok := src.Ref.Data.(*oop.TypeArray)
	if !ok {
		return oop.Value{}, fmt.Errorf("ArrayStoreException: arraycopy source is not an array")
	}
	dstArr, ok := dst.Ref.Data.(*oop.TypeArray)
	if !ok || dstArr.AType != srcArr.AType {
		return oop.Value{}, fmt.Errorf("ArrayStoreException: arraycopy type mismatch")
	}
	switch srcArr.AType {
	case oop.ATBoolean:
		copy(dstArr.Bools[dstPos:dstPos+length], srcArr.Bools[srcPos:srcPos+length])
	case oop.ATChar:
		copy(dstArr.Chars[dstPos:dstPos+length], srcArr.Chars[srcPos:srcPos+length])
	case oop.ATFloat:
		copy(dstArr.Floats[dstPos:dstPos+length], srcArr.Floats[srcPos:srcPos+length])
	case oop.ATDouble:
		copy(dstArr.Doubles[dstPos:dstPos+length], srcArr.Doubles[srcPos:srcPos+length])
	case oop.ATByte:
		copy(dstArr.Bytes[dstPos:dstPos+length], srcArr.Bytes[srcPos:srcPos+length])
	case oop.ATShort:
		copy(dstArr.Shorts[dstPos:dstPos+length], srcArr.Shorts[srcPos:srcPos+length])
	case oop.ATInt:
		copy(dstArr.Ints[dstPos:dstPos+length], srcArr.Ints[srcPos:srcPos+length])
	case oop.ATLong:
		copy(dstArr.Longs[dstPos:dstPos+length], srcArr.Longs[srcPos:srcPos+length])
	}
	return oop.Value{}, nil
}
