package types

import "fmt"

// Manager interns every Type value produced during a compilation and
// implements commonType, the join operator used at control-flow merges.
// One Manager is shared by a single compilation's prepass, builder and
// translator (see the arena's session-scoped allocation model); it is not
// safe for concurrent use by multiple compilations, matching the "no shared
// mutable state" rule of the concurrency model.
type Manager struct {
	primitives map[Kind]*Type
	ptrs       map[ptrKey]*Type
	arrays     map[*Type]*Type
	classes    map[string]*Type
	compressed map[*Type]*Type
	methods    map[string]*Type
}

type ptrKey struct {
	kind    Kind
	pointee *Type
}

// NewManager builds a Manager with every primitive kind pre-interned.
func NewManager() *Manager {
	m := &Manager{
		primitives: make(map[Kind]*Type),
		ptrs:       make(map[ptrKey]*Type),
		arrays:     make(map[*Type]*Type),
		classes:    make(map[string]*Type),
		compressed: make(map[*Type]*Type),
		methods:    make(map[string]*Type),
	}
	for _, k := range []Kind{
		KindI8, KindI16, KindI32, KindI64,
		KindU8, KindU16, KindU32, KindU64,
		KindSingle, KindDouble, KindBoolean, KindChar, KindVoid,
		KindNullObject, KindVTablePtr, KindOffset, KindTau,
	} {
		m.primitives[k] = &Type{kind: k}
	}
	return m
}

func (m *Manager) primitive(k Kind) *Type { return m.primitives[k] }

func (m *Manager) I8() *Type      { return m.primitive(KindI8) }
func (m *Manager) I16() *Type     { return m.primitive(KindI16) }
func (m *Manager) I32() *Type     { return m.primitive(KindI32) }
func (m *Manager) I64() *Type     { return m.primitive(KindI64) }
func (m *Manager) U8() *Type      { return m.primitive(KindU8) }
func (m *Manager) U16() *Type     { return m.primitive(KindU16) }
func (m *Manager) U32() *Type     { return m.primitive(KindU32) }
func (m *Manager) U64() *Type     { return m.primitive(KindU64) }
func (m *Manager) Single() *Type  { return m.primitive(KindSingle) }
func (m *Manager) Double() *Type  { return m.primitive(KindDouble) }
func (m *Manager) Boolean() *Type { return m.primitive(KindBoolean) }
func (m *Manager) Char() *Type    { return m.primitive(KindChar) }
func (m *Manager) Void() *Type    { return m.primitive(KindVoid) }
func (m *Manager) Null() *Type    { return m.primitive(KindNullObject) }
func (m *Manager) VTable() *Type  { return m.primitive(KindVTablePtr) }
func (m *Manager) Offset() *Type  { return m.primitive(KindOffset) }
func (m *Manager) Tau() *Type     { return m.primitive(KindTau) }

// GetManagedPtrType interns a managed pointer to pointee.
func (m *Manager) GetManagedPtrType(pointee *Type) *Type {
	return m.internPtr(KindManagedPtr, pointee)
}

// GetUnmanagedPtrType interns an unmanaged (raw) pointer to pointee.
func (m *Manager) GetUnmanagedPtrType(pointee *Type) *Type {
	return m.internPtr(KindUnmanagedPtr, pointee)
}

func (m *Manager) internPtr(kind Kind, pointee *Type) *Type {
	key := ptrKey{kind: kind, pointee: pointee}
	if t, ok := m.ptrs[key]; ok {
		return t
	}
	t := &Type{kind: kind, pointee: pointee}
	m.ptrs[key] = t
	return t
}

// GetArrayType interns an array type with the given element type.
func (m *Manager) GetArrayType(elem *Type) *Type {
	if t, ok := m.arrays[elem]; ok {
		return t
	}
	t := &Type{kind: KindArray, elem: elem}
	m.arrays[elem] = t
	return t
}

// GetNamedType interns a (possibly unresolved) class/interface type. Calling
// it again with the same name and a resolved=true promotes the existing
// interned type in place so every outstanding reference observes resolution,
// matching how the prepass re-queries getNamedType as symbols resolve.
func (m *Manager) GetNamedType(name string, resolved bool) *Type {
	if t, ok := m.classes[name]; ok {
		if resolved && !t.resolved {
			t.resolved = true
		}
		return t
	}
	t := &Type{kind: KindClass, class: name, resolved: resolved}
	m.classes[name] = t
	return t
}

// CompressType returns the compressed-reference variant of a managed
// pointer/array/class type, interned against the same pointee.
func (m *Manager) CompressType(t *Type) *Type {
	if t.kind == KindCompressedRef {
		return t
	}
	if c, ok := m.compressed[t]; ok {
		return c
	}
	c := &Type{kind: KindCompressedRef, pointee: t}
	m.compressed[t] = c
	return c
}

// UncompressType returns the uncompressed reference type underlying a
// compressed reference, or t unchanged if t is not compressed.
func (m *Manager) UncompressType(t *Type) *Type {
	if t.kind != KindCompressedRef {
		return t
	}
	return t.pointee
}

// GetMethodPtrType interns the pointer-to-method type for a resolved method.
func (m *Manager) GetMethodPtrType(enclosing, name, signature string) *Type {
	key := enclosing + "." + name + signature
	if t, ok := m.methods[key]; ok {
		return t
	}
	t := &Type{kind: KindMethodPtr, method: &MethodDescriptor{
		EnclosingClass: enclosing, Name: name, Signature: signature,
	}}
	m.methods[key] = t
	return t
}

// GetUnresolvedMethodPtrType interns a method-pointer type for a call site
// whose target has not yet been resolved; the constant-pool index and
// enclosing class stand in for the descriptor until resolution fills it in.
func (m *Manager) GetUnresolvedMethodPtrType(enclosing string, cpIndex int, signature string) *Type {
	return m.GetMethodPtrType(enclosing, fmt.Sprintf("<unresolved:%d>", cpIndex), signature)
}

// GetCommonType computes the least common supertype of a and b, the join
// used whenever the label prepass merges state-info slots at a control-flow
// edge. commonType is commutative except that, of two integer types of
// equal width but different signedness, it returns a. Unresolved or
// unrelated reference types join to the null-free common object type rather
// than failing.
func (m *Manager) GetCommonType(a, b *Type) *Type {
	if a == b {
		return a
	}
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.kind == KindNullObject && b.IsReference() {
		return b
	}
	if b.kind == KindNullObject && a.IsReference() {
		return a
	}
	if a.IsInteger() && b.IsInteger() {
		if a.Width() >= b.Width() {
			return a
		}
		return b
	}
	if a.IsFloat() && b.IsFloat() {
		if a.kind == KindDouble || b.kind == KindDouble {
			return m.Double()
		}
		return m.Single()
	}
	if a.kind == KindArray && b.kind == KindArray {
		if a.elem == b.elem {
			return a
		}
		return m.GetArrayType(m.GetCommonType(a.elem, b.elem))
	}
	if a.IsReference() && b.IsReference() {
		// Without a live class hierarchy the best sound join of two
		// unrelated reference types is the root object type.
		return m.GetNamedType("java/lang/Object", true)
	}
	// Disjoint lattice regions (e.g. int vs reference): the prepass should
	// never reach this for verified bytecode, but fail soft to Void rather
	// than panic since commonType runs during abstract interpretation.
	return m.Void()
}

// ToInternalType maps a primitive numeric Kind straight through; it exists
// because the host's constant-pool types arrive already classified and the
// builder otherwise re-derives the same Kind via GetNamedType/GetArrayType.
func (m *Manager) ToInternalType(k Kind) *Type {
	return m.primitive(k)
}
