package gfunction

import "github.com/minijvm/minijvm/pkg/oop"

// registerAtomic installs java/util/concurrent/atomic/AtomicLong's
// compareAndSet family. The interpreter never runs two threads at
// once (SPEC_FULL §5 Non-goal: full thread scheduling), so CAS
// degrades to an ordinary field read-modify-write: there is no
// concurrent writer to race against within this process.
func registerAtomic(r *Registry) {
	r.Register("java/util/concurrent/atomic/AtomicLong", "VMSupportsCS8", "()Z",
		func(vm VM, args []oop.Value) (oop.Value, error) { return oop.Bool(true), nil })

	r.Register("java/util/concurrent/atomic/AtomicLong", "compareAndSwapLong", "(JJ)Z",
		func(vm VM, args []oop.Value) (oop.Value, error) {
			receiver := args[0]
			expect, update := args[1].Long, args[2].Long
			inst, ok := receiver.Ref.Data.(*oop.Instance)
			if !ok {
				return oop.Bool(false), nil
			}
			slot, _ := receiver.Ref.Class.FindFieldSlot("value")
			if slot == nil {
				return oop.Bool(false), nil
			}
			if inst.Fields[slot.Offset].Long != expect {
				return oop.Bool(false), nil
			}
			inst.Fields[slot.Offset] = oop.Long(update)
			return oop.Bool(true), nil
		})
}
