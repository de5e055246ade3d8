package interpreter

import (
	"fmt"

	"github.com/minijvm/minijvm/pkg/oop"
)

// Throw is the Go-level carrier for a live Java exception in flight:
// runFrame recognizes it specially to search the exception table
// instead of treating it as a fatal interpreter error (SPEC_FULL §4.7
// Exception Handling Protocol).
type Throw struct {
	Ref *oop.Ref
}

func (t *Throw) Error() string {
	if t.Ref == nil || t.Ref.Class == nil {
		return "exception"
	}
	if msg, ok := ThrowableMessage(t.Ref); ok && msg != "" {
		return fmt.Sprintf("%s: %s", t.Ref.Class.Name, msg)
	}
	return t.Ref.Class.Name
}

// throwNamed constructs and throws an instance of a well-known
// runtime exception class by its simple internal name (e.g.
// "java/lang/NullPointerException"), running its (String) or no-arg
// constructor so getMessage() works from caught Java code.
func (it *Interpreter) throwNamed(className, message string) error {
	ref, err := it.newThrowable(className, message)
	if err != nil {
		return fmt.Errorf("fabricating %s: %w", className, err)
	}
	return &Throw{Ref: ref}
}

// newThrowable allocates and initializes an instance of a Throwable
// subclass, invoking its (Ljava/lang/String;)V constructor when a
// message is given, else its ()V constructor (JVMS makes no special
// provision for exception construction — it is ordinary `new` +
// `invokespecial <init>`, which is what this does).
func (it *Interpreter) newThrowable(className, message string) (*oop.Ref, error) {
	class, err := it.registry.RequireInitialized(className)
	if err != nil {
		return nil, err
	}
	ref := it.allocate(class)

	if message != "" {
		if ctor := class.FindMethod("<init>", "(Ljava/lang/String;)V"); ctor != nil {
			msgRef := it.NewString(message)
			if _, err := it.invoke(class, ctor, []oop.Value{oop.RefVal(ref), oop.RefVal(msgRef)}); err != nil {
				return nil, err
			}
			return ref, nil
		}
	}
	if ctor := class.FindMethod("<init>", "()V"); ctor != nil {
		if _, err := it.invoke(class, ctor, []oop.Value{oop.RefVal(ref)}); err != nil {
			return nil, err
		}
	}
	return ref, nil
}

// ThrowableMessage reads the "detailMessage" field a java.lang.Throwable
// constructor populates, for use in Go-level error text and in the
// launcher's uncaught-exception fallback diagnostic.
func ThrowableMessage(ref *oop.Ref) (string, bool) {
	if ref == nil || ref.Class == nil {
		return "", false
	}
	slot, _ := ref.Class.FindFieldSlot("detailMessage")
	if slot == nil {
		return "", false
	}
	inst, ok := ref.Data.(*oop.Instance)
	if !ok {
		return "", false
	}
	v := inst.Fields[slot.Offset]
	if v.Ref == nil {
		return "", false
	}
	s, ok := oop.StringValue(v.Ref)
	return s, ok
}
