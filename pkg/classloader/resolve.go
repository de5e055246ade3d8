package classloader

import (
	"fmt"

	"github.com/minijvm/minijvm/pkg/classfile"
	"github.com/minijvm/minijvm/pkg/oop"
)

// ResolveField resolves and caches a Fieldref constant-pool entry on
// behalf of class. Resolution is memoized in the class's cp cache, so
// repeated execution of the same getfield/putfield/getstatic/putstatic
// site after the first is a cache hit (JVMS §5.1).
func (r *Registry) ResolveField(class *oop.Class, cpIndex uint16) (*oop.FieldSlot, *oop.Class, error) {
	cache := class.CPCache()
	if cpIndex < uint16(len(cache)) && cache[cpIndex].Resolved && cache[cpIndex].Field != nil {
		return cache[cpIndex].Field, cache[cpIndex].FieldOwner, nil
	}

	info, err := classfile.ResolveFieldref(class.File.ConstantPool, cpIndex)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving field at cp[%d]: %w", cpIndex, err)
	}
	owner, err := r.Require(info.ClassName)
	if err != nil {
		return nil, nil, err
	}
	slot, fieldOwner := FindField(owner, info.FieldName)
	if slot == nil {
		return nil, nil, fmt.Errorf("NoSuchFieldError: %s.%s", info.ClassName, info.FieldName)
	}

	if int(cpIndex) < len(cache) {
		cache[cpIndex] = oop.CPCacheEntry{Resolved: true, Field: slot, FieldOwner: fieldOwner}
	}
	return slot, fieldOwner, nil
}

// ResolveMethod resolves and caches a Methodref or InterfaceMethodref
// constant-pool entry. It returns the statically resolved Method;
// virtual/interface dispatch re-derives the actual target from the
// receiver's runtime class (JVMS §5.4.3.3/§6.5.invokevirtual) using
// this result only as the name/descriptor/declared-class anchor.
func (r *Registry) ResolveMethod(class *oop.Class, cpIndex uint16, isInterface bool) (*oop.Method, error) {
	cache := class.CPCache()
	if cpIndex < uint16(len(cache)) && cache[cpIndex].Resolved && cache[cpIndex].Method != nil {
		return cache[cpIndex].Method, nil
	}

	var info *classfile.MethodRefInfo
	var err error
	if isInterface {
		info, err = classfile.ResolveInterfaceMethodref(class.File.ConstantPool, cpIndex)
	} else {
		info, err = classfile.ResolveMethodref(class.File.ConstantPool, cpIndex)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving method at cp[%d]: %w", cpIndex, err)
	}

	owner, err := r.Require(info.ClassName)
	if err != nil {
		return nil, err
	}
	method := owner.FindMethod(info.MethodName, info.Descriptor)
	if method == nil {
		method = owner.FindInterfaceMethod(info.MethodName, info.Descriptor)
	}
	if method == nil {
		return nil, fmt.Errorf("NoSuchMethodError: %s.%s%s", info.ClassName, info.MethodName, info.Descriptor)
	}

	if int(cpIndex) < len(cache) {
		cache[cpIndex] = oop.CPCacheEntry{Resolved: true, Method: method}
	}
	return method, nil
}

// ResolveClass resolves a Class constant-pool entry to a loaded,
// linked Class (not yet necessarily initialized).
func (r *Registry) ResolveClass(class *oop.Class, cpIndex uint16) (*oop.Class, error) {
	name, err := classfile.GetClassName(class.File.ConstantPool, cpIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving class at cp[%d]: %w", cpIndex, err)
	}
	return r.Require(name)
}
