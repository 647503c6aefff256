package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerInterning(t *testing.T) {
	m := NewManager()

	t.Run("PrimitivesAreStable", func(t *testing.T) {
		assert.Same(t, m.I32(), m.I32())
		assert.Same(t, m.Double(), m.Double())
		assert.NotSame(t, m.I32(), m.I64())
	})

	t.Run("ArrayTypesInternByElement", func(t *testing.T) {
		a1 := m.GetArrayType(m.I32())
		a2 := m.GetArrayType(m.I32())
		assert.Same(t, a1, a2)
		assert.NotSame(t, a1, m.GetArrayType(m.I64()))
	})

	t.Run("NamedTypesPromoteInPlace", func(t *testing.T) {
		unresolved := m.GetNamedType("com/example/Widget", false)
		assert.False(t, unresolved.IsResolved())

		resolved := m.GetNamedType("com/example/Widget", true)
		assert.Same(t, unresolved, resolved, "re-interning the same class name must return the same *Type")
		assert.True(t, unresolved.IsResolved(), "promoting resolved=true must be visible through every outstanding reference")
	})

	t.Run("PointerTypesInternByPointeeAndKind", func(t *testing.T) {
		managed := m.GetManagedPtrType(m.I32())
		unmanaged := m.GetUnmanagedPtrType(m.I32())
		assert.NotSame(t, managed, unmanaged)
		assert.Same(t, managed, m.GetManagedPtrType(m.I32()))
	})

	t.Run("CompressRoundTrips", func(t *testing.T) {
		obj := m.GetNamedType("com/example/Boxed", true)
		compressed := m.CompressType(obj)
		assert.Equal(t, KindCompressedRef, compressed.Kind())
		assert.Same(t, obj, m.UncompressType(compressed))
		assert.Same(t, compressed, m.CompressType(compressed), "compressing an already-compressed type is a no-op")
	})
}

func TestGetCommonTypeIntegerWidths(t *testing.T) {
	m := NewManager()

	assert.Same(t, m.I64(), m.GetCommonType(m.I32(), m.I64()))
	assert.Same(t, m.I64(), m.GetCommonType(m.I64(), m.I32()), "commonType must be commutative")
	assert.Same(t, m.I32(), m.GetCommonType(m.I32(), m.I32()))
}

func TestGetCommonTypeFloatWidths(t *testing.T) {
	m := NewManager()

	assert.Same(t, m.Double(), m.GetCommonType(m.Single(), m.Double()))
	assert.Same(t, m.Single(), m.GetCommonType(m.Single(), m.Single()))
}

func TestGetCommonTypeReferences(t *testing.T) {
	m := NewManager()

	t.Run("NullJoinsToTheOtherReference", func(t *testing.T) {
		str := m.GetNamedType("java/lang/String", true)
		assert.Same(t, str, m.GetCommonType(m.Null(), str))
		assert.Same(t, str, m.GetCommonType(str, m.Null()))
	})

	t.Run("UnrelatedReferencesJoinToObject", func(t *testing.T) {
		a := m.GetNamedType("com/example/A", true)
		b := m.GetNamedType("com/example/B", true)
		joined := m.GetCommonType(a, b)
		assert.Equal(t, "java/lang/Object", joined.ClassName())
	})

	t.Run("SameArrayElementShortCircuits", func(t *testing.T) {
		arr := m.GetArrayType(m.I32())
		assert.Same(t, arr, m.GetCommonType(arr, arr))
	})

	t.Run("ArraysJoinElementwise", func(t *testing.T) {
		a := m.GetArrayType(m.GetNamedType("com/example/A", true))
		b := m.GetArrayType(m.GetNamedType("com/example/B", true))
		joined := m.GetCommonType(a, b)
		assert.Equal(t, KindArray, joined.Kind())
		assert.Equal(t, "java/lang/Object", joined.Elem().ClassName())
	})
}

func TestGetCommonTypeDisjointFailsSoft(t *testing.T) {
	m := NewManager()

	// An int joined with a reference never happens for verified bytecode,
	// but commonType must fail soft rather than panic mid abstract-interpretation.
	joined := m.GetCommonType(m.I32(), m.GetNamedType("com/example/A", true))
	assert.Equal(t, KindVoid, joined.Kind())
}

func TestGetCommonTypeNilOperand(t *testing.T) {
	m := NewManager()
	i32 := m.I32()

	assert.Same(t, i32, m.GetCommonType(nil, i32))
	assert.Same(t, i32, m.GetCommonType(i32, nil))
}
