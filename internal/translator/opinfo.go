package translator

import (
	"jitir/internal/ir"
	"jitir/internal/runtime"
	"jitir/internal/types"
)

// simpleOpInfo is the per-mnemonic shape the translator needs for both
// passes: how many operands it pops and, for the ones that push a result,
// which IR opcode and result width to use. Stack-shuffle mnemonics
// (Dup/Pop/Swap/...) leave IROp at its zero value and are instead handled
// by shuffleStack, since "shuffle the modeled stack" has no IR
// representation of its own instruction; it just reuses the same operand id
// twice.
type simpleOpInfo struct {
	Pops       int
	ResultKind types.Kind
	IROp       ir.Opcode
	Mod        ir.Modifier
	HasResult  bool
}

var simpleOpTable = map[runtime.SimpleOp]simpleOpInfo{
	runtime.OpIAdd: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpAdd, HasResult: true},
	runtime.OpLAdd: {Pops: 2, ResultKind: types.KindI64, IROp: ir.OpAdd, HasResult: true},
	runtime.OpFAdd: {Pops: 2, ResultKind: types.KindSingle, IROp: ir.OpAdd, HasResult: true},
	runtime.OpDAdd: {Pops: 2, ResultKind: types.KindDouble, IROp: ir.OpAdd, HasResult: true},
	runtime.OpISub: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpSub, HasResult: true},
	runtime.OpLSub: {Pops: 2, ResultKind: types.KindI64, IROp: ir.OpSub, HasResult: true},
	runtime.OpFSub: {Pops: 2, ResultKind: types.KindSingle, IROp: ir.OpSub, HasResult: true},
	runtime.OpDSub: {Pops: 2, ResultKind: types.KindDouble, IROp: ir.OpSub, HasResult: true},
	runtime.OpIMul: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpMul, HasResult: true},
	runtime.OpLMul: {Pops: 2, ResultKind: types.KindI64, IROp: ir.OpMul, HasResult: true},
	runtime.OpFMul: {Pops: 2, ResultKind: types.KindSingle, IROp: ir.OpMul, HasResult: true},
	runtime.OpDMul: {Pops: 2, ResultKind: types.KindDouble, IROp: ir.OpMul, HasResult: true},
	runtime.OpIDiv: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpDiv, HasResult: true},
	runtime.OpLDiv: {Pops: 2, ResultKind: types.KindI64, IROp: ir.OpDiv, HasResult: true},
	runtime.OpFDiv: {Pops: 2, ResultKind: types.KindSingle, IROp: ir.OpDiv, HasResult: true},
	runtime.OpDDiv: {Pops: 2, ResultKind: types.KindDouble, IROp: ir.OpDiv, HasResult: true},
	runtime.OpIRem: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpRem, HasResult: true},
	runtime.OpLRem: {Pops: 2, ResultKind: types.KindI64, IROp: ir.OpRem, HasResult: true},
	runtime.OpFRem: {Pops: 2, ResultKind: types.KindSingle, IROp: ir.OpRem, HasResult: true},
	runtime.OpDRem: {Pops: 2, ResultKind: types.KindDouble, IROp: ir.OpRem, HasResult: true},
	runtime.OpINeg: {Pops: 1, ResultKind: types.KindI32, IROp: ir.OpNeg, HasResult: true},
	runtime.OpLNeg: {Pops: 1, ResultKind: types.KindI64, IROp: ir.OpNeg, HasResult: true},
	runtime.OpFNeg: {Pops: 1, ResultKind: types.KindSingle, IROp: ir.OpNeg, HasResult: true},
	runtime.OpDNeg: {Pops: 1, ResultKind: types.KindDouble, IROp: ir.OpNeg, HasResult: true},
	runtime.OpIAnd: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpAnd, HasResult: true},
	runtime.OpLAnd: {Pops: 2, ResultKind: types.KindI64, IROp: ir.OpAnd, HasResult: true},
	runtime.OpIOr:  {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpOr, HasResult: true},
	runtime.OpLOr:  {Pops: 2, ResultKind: types.KindI64, IROp: ir.OpOr, HasResult: true},
	runtime.OpIXor: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpXor, HasResult: true},
	runtime.OpLXor: {Pops: 2, ResultKind: types.KindI64, IROp: ir.OpXor, HasResult: true},
	runtime.OpIShl: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpShl, Mod: ir.ModShiftMask, HasResult: true},
	runtime.OpLShl: {Pops: 2, ResultKind: types.KindI64, IROp: ir.OpShl, Mod: ir.ModShiftMask, HasResult: true},
	runtime.OpIShr: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpShr, Mod: ir.ModShiftMask, HasResult: true},
	runtime.OpLShr: {Pops: 2, ResultKind: types.KindI64, IROp: ir.OpShr, Mod: ir.ModShiftMask, HasResult: true},
	runtime.OpIUshr: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpUShr, Mod: ir.ModShiftMask | ir.ModUnsigned, HasResult: true},
	runtime.OpLUshr: {Pops: 2, ResultKind: types.KindI64, IROp: ir.OpUShr, Mod: ir.ModShiftMask | ir.ModUnsigned, HasResult: true},

	runtime.OpI2L: {Pops: 1, ResultKind: types.KindI64, IROp: ir.OpConvI2L, HasResult: true},
	runtime.OpI2F: {Pops: 1, ResultKind: types.KindSingle, IROp: ir.OpConvI2F, HasResult: true},
	runtime.OpI2D: {Pops: 1, ResultKind: types.KindDouble, IROp: ir.OpConvI2D, HasResult: true},
	runtime.OpL2I: {Pops: 1, ResultKind: types.KindI32, IROp: ir.OpConvL2I, HasResult: true},
	runtime.OpL2F: {Pops: 1, ResultKind: types.KindSingle, IROp: ir.OpConvL2F, HasResult: true},
	runtime.OpL2D: {Pops: 1, ResultKind: types.KindDouble, IROp: ir.OpConvL2D, HasResult: true},
	runtime.OpF2I: {Pops: 1, ResultKind: types.KindI32, IROp: ir.OpConvF2I, HasResult: true},
	runtime.OpF2L: {Pops: 1, ResultKind: types.KindI64, IROp: ir.OpConvF2L, HasResult: true},
	runtime.OpF2D: {Pops: 1, ResultKind: types.KindDouble, IROp: ir.OpConvF2D, HasResult: true},
	runtime.OpD2I: {Pops: 1, ResultKind: types.KindI32, IROp: ir.OpConvD2I, HasResult: true},
	runtime.OpD2L: {Pops: 1, ResultKind: types.KindI64, IROp: ir.OpConvD2L, HasResult: true},
	runtime.OpD2F: {Pops: 1, ResultKind: types.KindSingle, IROp: ir.OpConvD2F, HasResult: true},
	runtime.OpI2B: {Pops: 1, ResultKind: types.KindI8, IROp: ir.OpConvI2B, HasResult: true},
	runtime.OpI2C: {Pops: 1, ResultKind: types.KindChar, IROp: ir.OpConvI2C, HasResult: true},
	runtime.OpI2S: {Pops: 1, ResultKind: types.KindI16, IROp: ir.OpConvI2S, HasResult: true},

	runtime.OpLCmp:  {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpCmp3Way, HasResult: true},
	runtime.OpFCmpL: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpCmp3Way, Mod: ir.ModNanLess, HasResult: true},
	runtime.OpFCmpG: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpCmp3Way, HasResult: true},
	runtime.OpDCmpL: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpCmp3Way, Mod: ir.ModNanLess, HasResult: true},
	runtime.OpDCmpG: {Pops: 2, ResultKind: types.KindI32, IROp: ir.OpCmp3Way, HasResult: true},
}

// resultType resolves a simpleOpInfo's ResultKind through mgr, since the
// table above is built once but types are interned per-Manager.
func (info simpleOpInfo) resultType(mgr *types.Manager) *types.Type {
	return mgr.ToInternalType(info.ResultKind)
}

// isStackShuffle reports whether op is a pure stack-manipulation mnemonic
// with no IR representation of its own.
func isStackShuffle(op runtime.SimpleOp) bool {
	switch op {
	case runtime.OpDup, runtime.OpDupX1, runtime.OpDupX2,
		runtime.OpDup2, runtime.OpDup2X1, runtime.OpDup2X2,
		runtime.OpPop, runtime.OpPop2, runtime.OpSwap, runtime.OpNop:
		return true
	default:
		return false
	}
}

// shuffleStack rewrites the top of stack per the JVM stack-shuffle
// semantics of op, generic over the element type so both the prepass's
// type-only StateInfoSlot stack and the translator's real []OperandID
// stack share one implementation, a single mechanical rule instead of
// duplicated category-specific code.
func shuffleStack[T any](op runtime.SimpleOp, stack []T) []T {
	n := len(stack)
	switch op {
	case runtime.OpNop:
		return stack
	case runtime.OpPop:
		return stack[:n-1]
	case runtime.OpPop2:
		return stack[:n-2]
	case runtime.OpDup:
		return append(stack, stack[n-1])
	case runtime.OpDup2:
		return append(stack, stack[n-2], stack[n-1])
	case runtime.OpSwap:
		stack[n-1], stack[n-2] = stack[n-2], stack[n-1]
		return stack
	case runtime.OpDupX1:
		top, second := stack[n-1], stack[n-2]
		stack = append(stack, top)
		copy(stack[n-2:], []T{top, second, top})
		return stack
	case runtime.OpDupX2:
		top, b, c := stack[n-1], stack[n-2], stack[n-3]
		stack = append(stack, top)
		copy(stack[n-3:], []T{top, c, b, top})
		return stack
	case runtime.OpDup2X1:
		a, b, c := stack[n-2], stack[n-1], stack[n-3]
		stack = append(stack, a, b)
		copy(stack[n-3:], []T{a, b, c, a, b})
		return stack
	case runtime.OpDup2X2:
		a, b, c, d := stack[n-2], stack[n-1], stack[n-3], stack[n-4]
		stack = append(stack, a, b)
		copy(stack[n-4:], []T{a, b, d, c, a, b})
		return stack
	default:
		return stack
	}
}

// elemKindType maps an ElemKind tag to its interned Type.
func elemKindType(mgr *types.Manager, kind runtime.ElemKind) *types.Type {
	switch kind {
	case runtime.ElemInt:
		return mgr.I32()
	case runtime.ElemLong:
		return mgr.I64()
	case runtime.ElemFloat:
		return mgr.Single()
	case runtime.ElemDouble:
		return mgr.Double()
	case runtime.ElemBoolean:
		return mgr.Boolean()
	case runtime.ElemByte:
		return mgr.I8()
	case runtime.ElemChar:
		return mgr.Char()
	case runtime.ElemShort:
		return mgr.I16()
	case runtime.ElemRef:
		return mgr.GetNamedType("java/lang/Object", true)
	case runtime.ElemReturnAddr:
		return mgr.Offset()
	default:
		return mgr.Void()
	}
}
