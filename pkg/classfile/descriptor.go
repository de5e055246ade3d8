package classfile

import (
	"fmt"
	"strings"
)

// CountParams counts the number of formal parameters encoded in a method
// descriptor, e.g. "(I[Ljava/lang/String;)V" has 2.
func CountParams(descriptor string) (int, error) {
	start := strings.IndexByte(descriptor, '(')
	end := strings.IndexByte(descriptor, ')')
	if start == -1 || end == -1 || end < start {
		return 0, fmt.Errorf("invalid method descriptor: %s", descriptor)
	}
	params := descriptor[start+1 : end]
	count := 0
	i := 0
	for i < len(params) {
		width, err := fieldTypeWidth(params, i)
		if err != nil {
			return 0, fmt.Errorf("invalid type descriptor in %s: %w", descriptor, err)
		}
		count++
		i += width
	}
	return count, nil
}

// fieldTypeWidth returns the number of bytes the field descriptor
// starting at params[i] occupies, so the caller can skip over it.
func fieldTypeWidth(params string, i int) (int, error) {
	switch params[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return 1, nil
	case 'L':
		end := strings.IndexByte(params[i:], ';')
		if end == -1 {
			return 0, fmt.Errorf("unterminated class type at %d", i)
		}
		return end + 1, nil
	case '[':
		dims := 1
		for i+dims < len(params) && params[i+dims] == '[' {
			dims++
		}
		if i+dims >= len(params) {
			return 0, fmt.Errorf("truncated array type at %d", i)
		}
		elemWidth, err := fieldTypeWidth(params, i+dims)
		if err != nil {
			return 0, err
		}
		return dims + elemWidth, nil
	default:
		return 0, fmt.Errorf("invalid type descriptor char %q", params[i])
	}
}

// ParamDescriptors splits a method descriptor's parameter list into
// individual field descriptors, e.g. "(I[Ljava/lang/String;)V" ->
// ["I", "[Ljava/lang/String;"]. Used by the interpreter to know which
// argument slots are category-2 (long/double) when popping a call's
// arguments off the operand stack.
func ParamDescriptors(descriptor string) ([]string, error) {
	start := strings.IndexByte(descriptor, '(')
	end := strings.IndexByte(descriptor, ')')
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("invalid method descriptor: %s", descriptor)
	}
	params := descriptor[start+1 : end]
	var out []string
	i := 0
	for i < len(params) {
		width, err := fieldTypeWidth(params, i)
		if err != nil {
			return nil, fmt.Errorf("invalid type descriptor in %s: %w", descriptor, err)
		}
		out = append(out, params[i:i+width])
		i += width
	}
	return out, nil
}

// IsVoidReturn reports whether a method descriptor's return type is V.
func IsVoidReturn(descriptor string) bool {
	return strings.HasSuffix(descriptor, ")V")
}

// ReturnTypeDescriptor returns the field descriptor of a method's return
// type, e.g. "(I)Ljava/lang/String;" -> "Ljava/lang/String;".
func ReturnTypeDescriptor(descriptor string) string {
	end := strings.IndexByte(descriptor, ')')
	if end == -1 || end+1 >= len(descriptor) {
		return ""
	}
	return descriptor[end+1:]
}

// IsWideType reports whether a field descriptor denotes a long or double
// (the two categories that occupy two local-variable slots / two operand
// stack category-1 slots per JVMS §2.6.1, §2.6.2).
func IsWideType(descriptor string) bool {
	return descriptor == "J" || descriptor == "D"
}

// IsReferenceType reports whether a field descriptor denotes a class,
// interface, or array type (begins with 'L' or '[').
func IsReferenceType(descriptor string) bool {
	return len(descriptor) > 0 && (descriptor[0] == 'L' || descriptor[0] == '[')
}
