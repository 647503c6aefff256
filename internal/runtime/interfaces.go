// Package runtime declares the callback boundary between the IR core and
// its host VM: everything the core needs to ask about — field layouts,
// method resolution, constant values, runtime helper ids — is modeled as an
// interface here and implemented by the host, never by this module. Nothing
// in this package is executable; it exists purely to pin down the contract
// the prepass, builder, and translator are written against.
package runtime

import "jitir/internal/types"

// FieldInfo describes a resolved field: its declaring class, its type, and
// whether it is static.
type FieldInfo struct {
	EnclosingClass string
	Name           string
	Type           *types.Type
	Static         bool
	Volatile       bool
	Offset         int
}

// MethodInfo describes a resolved method target.
type MethodInfo struct {
	EnclosingClass string
	Name           string
	Signature      string
	ParamTypes     []*types.Type
	ReturnType     *types.Type
	Static         bool
	Final          bool
	VTableIndex    int // valid only when the method is virtually dispatched
}

// Compilation is the per-method callback surface a host VM implements to
// answer every question the core needs about the method being compiled
//. All lookups take the constant-pool index the bytecode itself
// references; resolution failures surface as a returned error rather than
// a panic, since an unresolvable symbol is a normal (if rare) compile-time
// outcome the core reports through its error taxonomy.
type Compilation interface {
	GetStaticField(cpIndex int) (FieldInfo, error)
	GetNonStaticField(cpIndex int) (FieldInfo, error)
	GetVirtualMethod(cpIndex int) (MethodInfo, error)
	GetSpecialMethod(cpIndex int) (MethodInfo, error)
	GetStaticMethod(cpIndex int) (MethodInfo, error)
	GetInterfaceMethod(cpIndex int) (MethodInfo, error)

	GetNamedType(cpIndex int) (*types.Type, error)
	GetConstantType(cpIndex int) (*types.Type, error)
	GetConstantValue(cpIndex int) (interface{}, error)

	GetSignatureString(cpIndex int) (string, error)
	GetFieldSignature(cpIndex int) (string, error)

	// GetRuntimeHelperName maps a VM-magic or implicit-helper id to the
	// host's runtime entry point name, used only for diagnostics/printing
	// since the actual lowering only needs the id.
	GetRuntimeHelperName(helperID int) string

	// IsCompressedReferencesEnabled reports whether the target heap layout
	// uses compressed object references, gating OpCompressRef/OpUncompressRef
	// insertion.
	IsCompressedReferencesEnabled() bool

	// ConfigString/ConfigBool read a single configuration key; each key is
	// read at most once per compilation and the result cached by the caller.
	ConfigString(key string) (string, bool)
	ConfigBool(key string) (bool, bool)
}

// TypeManager is the subset of Compilation used purely for type resolution,
// kept as its own interface so the prepass and the types.Manager can be
// wired independently of the rest of the callback surface in tests.
type TypeManager interface {
	GetNamedType(cpIndex int) (*types.Type, error)
	GetConstantType(cpIndex int) (*types.Type, error)
}
