package builder

import (
	"jitir/internal/ir"
	"jitir/internal/types"
)

// LoadField reads an instance field, either as the single high-level ldField
// opcode or, under FlagExpandMemAddrs, as an explicit ldFieldAddr producing
// a managed pointer followed by a typed ldInd — the same value either way,
// but the expanded form gives a later pointer-aware pass an address operand
// to reason about instead of an opaque field access.
func (b *Builder) LoadField(recv ir.OperandID, tau ir.OperandID, fieldType *types.Type, mod ir.Modifier, payload *ir.FieldPayload) ir.OperandID {
	if !b.Flags.Has(FlagExpandMemAddrs) {
		return b.EmitWithTau(ir.OpLoadField, mod, fieldType, [3]ir.OperandID{recv}, payload, tau)
	}
	addr := b.EmitWithTau(ir.OpLoadFieldAddr, 0, b.Types.GetManagedPtrType(fieldType), [3]ir.OperandID{recv}, payload, tau)
	return b.Emit(ir.OpLoadIndirect, mod, fieldType, [3]ir.OperandID{addr}, nil)
}

// StoreField writes an instance field, decomposed the same way LoadField is
// under FlagExpandMemAddrs.
func (b *Builder) StoreField(recv, val ir.OperandID, tau ir.OperandID, fieldType *types.Type, mod ir.Modifier, payload *ir.FieldPayload) {
	if !b.Flags.Has(FlagExpandMemAddrs) {
		b.EmitWithTau(ir.OpStoreField, mod, nil, [3]ir.OperandID{recv, val}, payload, tau)
		return
	}
	addr := b.EmitWithTau(ir.OpLoadFieldAddr, 0, b.Types.GetManagedPtrType(fieldType), [3]ir.OperandID{recv}, payload, tau)
	b.Emit(ir.OpStoreIndirect, mod, nil, [3]ir.OperandID{addr, val}, nil)
}

// LoadStatic reads a static field, decomposed into ldStaticAddr + ldInd
// under FlagExpandMemAddrs. A static slot has no receiver to fault on, so
// there is no tau witness to carry across the split.
func (b *Builder) LoadStatic(fieldType *types.Type, mod ir.Modifier, payload *ir.FieldPayload) ir.OperandID {
	if !b.Flags.Has(FlagExpandMemAddrs) {
		return b.Emit(ir.OpLoadStatic, mod, fieldType, [3]ir.OperandID{}, payload)
	}
	addr := b.Emit(ir.OpLoadStaticAddr, 0, b.Types.GetUnmanagedPtrType(fieldType), [3]ir.OperandID{}, payload)
	return b.Emit(ir.OpLoadIndirect, mod, fieldType, [3]ir.OperandID{addr}, nil)
}

// StoreStatic writes a static field, decomposed the same way LoadStatic is
// under FlagExpandMemAddrs.
func (b *Builder) StoreStatic(val ir.OperandID, fieldType *types.Type, mod ir.Modifier, payload *ir.FieldPayload) {
	if !b.Flags.Has(FlagExpandMemAddrs) {
		b.Emit(ir.OpStoreStatic, mod, nil, [3]ir.OperandID{val}, payload)
		return
	}
	addr := b.Emit(ir.OpLoadStaticAddr, 0, b.Types.GetUnmanagedPtrType(fieldType), [3]ir.OperandID{}, payload)
	b.Emit(ir.OpStoreIndirect, mod, nil, [3]ir.OperandID{addr, val}, nil)
}

// LoadElem reads an array element, either as the single high-level ldElem
// opcode or, under FlagExpandElemAddrs, as an explicit ldElemAddr (base
// array plus scaled index) followed by a typed ldInd.
func (b *Builder) LoadElem(arr, idx ir.OperandID, tau ir.OperandID, elemType *types.Type) ir.OperandID {
	if !b.Flags.Has(FlagExpandElemAddrs) {
		return b.EmitWithTau(ir.OpLoadElem, 0, elemType, [3]ir.OperandID{arr, idx}, nil, tau)
	}
	addr := b.EmitWithTau(ir.OpLoadElemAddr, 0, b.Types.GetManagedPtrType(elemType), [3]ir.OperandID{arr, idx}, nil, tau)
	return b.Emit(ir.OpLoadIndirect, 0, elemType, [3]ir.OperandID{addr}, nil)
}

// StoreElem writes an array element, decomposed the same way LoadElem is
// under FlagExpandElemAddrs. tau is the store's combined witness, which
// includes the covariant element-type check when FlagExpandElemTypeChecks
// made that check explicit; when the check is left implicit, mod carries
// ModImplicitElemTypeCheck instead.
func (b *Builder) StoreElem(arr, idx, val ir.OperandID, tau ir.OperandID, mod ir.Modifier) {
	if !b.Flags.Has(FlagExpandElemAddrs) {
		b.EmitWithTau(ir.OpStoreElem, mod, nil, [3]ir.OperandID{arr, idx, val}, nil, tau)
		return
	}
	addr := b.EmitWithTau(ir.OpLoadElemAddr, 0, b.Types.GetManagedPtrType(b.Operand(val).Type), [3]ir.OperandID{arr, idx}, nil, tau)
	b.Emit(ir.OpStoreIndirect, mod, nil, [3]ir.OperandID{addr, val}, nil)
}
