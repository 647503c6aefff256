package builder

import (
	"jitir/internal/ir"
	"jitir/internal/types"
)

// Simplifier is the stateless peephole delegate the builder consults before
// emitting a new instruction: constant folding when both sources are
// already known constants, plus a handful of algebraic identities
// (identity elements, self-pairs such as x-x, double negation). It
// never looks beyond the operands it's handed, so it has no state of its
// own beyond a back-reference to the Builder for allocating fold results
// and reading constant payloads.
type Simplifier struct {
	b *Builder
}

// NewSimplifier binds a Simplifier to b.
func NewSimplifier(b *Builder) *Simplifier {
	return &Simplifier{b: b}
}

// Fold attempts to reduce op(src...) to an existing operand or, for a
// constant fold, to a freshly emitted constant. It returns (operand, true)
// on success.
func (s *Simplifier) Fold(op ir.Opcode, mod ir.Modifier, resultType *types.Type, src [3]ir.OperandID) (ir.OperandID, bool) {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpShl, ir.OpShr, ir.OpUShr:
		if folded, ok := s.foldIntBinary(op, resultType, src); ok {
			return folded, true
		}
		if folded, ok := s.foldSelfPair(op, resultType, src); ok {
			return folded, true
		}
		return s.foldIdentity(op, resultType, src)
	case ir.OpDiv, ir.OpRem:
		return s.foldIntBinary(op, resultType, src)
	case ir.OpNeg:
		if folded, ok := s.foldDoubleNeg(src); ok {
			return folded, true
		}
		return s.foldNeg(resultType, src)
	case ir.OpCopy:
		if s.b.Flags.Has(FlagEnableCopyPropagation) {
			return src[0], true
		}
		return ir.NoOperand, false
	default:
		return ir.NoOperand, false
	}
}

func (s *Simplifier) constOf(id ir.OperandID) (*ir.ConstPayload, bool) {
	op := s.b.Operand(id)
	if op == nil || op.Def == ir.NoInst {
		return nil, false
	}
	inst := s.b.Graph.Inst(op.Def)
	if inst.Op != ir.OpConst {
		return nil, false
	}
	cp, ok := inst.Payload.(*ir.ConstPayload)
	return cp, ok
}

func (s *Simplifier) emitConst(resultType *types.Type, v int64) ir.OperandID {
	return s.b.Emit(ir.OpConst, 0, resultType, [3]ir.OperandID{}, &ir.ConstPayload{IntVal: v})
}

// foldIntBinary folds an arithmetic op over two integer constants. It skips
// float types entirely: floating point folding must respect the method's
// strict-vs-non-strict FP mode (ModStrictFP), which this construction-time
// peephole pass deliberately leaves to the VM's own constant folder rather
// than risk silently picking the wrong rounding behavior.
func (s *Simplifier) foldIntBinary(op ir.Opcode, resultType *types.Type, src [3]ir.OperandID) (ir.OperandID, bool) {
	if resultType == nil || resultType.IsFloat() {
		return ir.NoOperand, false
	}
	a, ok1 := s.constOf(src[0])
	b, ok2 := s.constOf(src[1])
	if !ok1 || !ok2 {
		return ir.NoOperand, false
	}
	var v int64
	switch op {
	case ir.OpAdd:
		v = a.IntVal + b.IntVal
	case ir.OpSub:
		v = a.IntVal - b.IntVal
	case ir.OpMul:
		v = a.IntVal * b.IntVal
	case ir.OpAnd:
		v = a.IntVal & b.IntVal
	case ir.OpOr:
		v = a.IntVal | b.IntVal
	case ir.OpXor:
		v = a.IntVal ^ b.IntVal
	case ir.OpShl:
		v = a.IntVal << uint(b.IntVal&63)
	case ir.OpShr:
		v = a.IntVal >> uint(b.IntVal&63)
	case ir.OpUShr:
		v = int64(uint64(a.IntVal) >> uint(b.IntVal&63))
	case ir.OpDiv:
		if b.IntVal == 0 {
			return ir.NoOperand, false // let the real divide-by-zero tau check fire
		}
		v = a.IntVal / b.IntVal
	case ir.OpRem:
		if b.IntVal == 0 {
			return ir.NoOperand, false
		}
		v = a.IntVal % b.IntVal
	default:
		return ir.NoOperand, false
	}
	return s.emitConst(resultType, v), true
}

// foldSelfPair catches identities that hold whenever both operands are the
// same operand, regardless of whether either is a known constant: x-x → 0,
// x^x → 0, x&x → x, x|x → x.
func (s *Simplifier) foldSelfPair(op ir.Opcode, resultType *types.Type, src [3]ir.OperandID) (ir.OperandID, bool) {
	if resultType == nil || resultType.IsFloat() || src[0] != src[1] || src[0] == ir.NoOperand {
		return ir.NoOperand, false
	}
	switch op {
	case ir.OpSub, ir.OpXor:
		return s.emitConst(resultType, 0), true
	case ir.OpAnd, ir.OpOr:
		return src[0], true
	default:
		return ir.NoOperand, false
	}
}

// foldDoubleNeg collapses -(-x) to x: if src[0]'s defining instruction is
// itself an OpNeg, its own source already carries the right type and
// reuses that operand rather than emitting a second negation.
func (s *Simplifier) foldDoubleNeg(src [3]ir.OperandID) (ir.OperandID, bool) {
	op := s.b.Operand(src[0])
	if op == nil || op.Def == ir.NoInst {
		return ir.NoOperand, false
	}
	inst := s.b.Graph.Inst(op.Def)
	if inst.Op != ir.OpNeg {
		return ir.NoOperand, false
	}
	return inst.Src[0], true
}

func (s *Simplifier) foldNeg(resultType *types.Type, src [3]ir.OperandID) (ir.OperandID, bool) {
	if resultType == nil || resultType.IsFloat() {
		return ir.NoOperand, false
	}
	a, ok := s.constOf(src[0])
	if !ok {
		return ir.NoOperand, false
	}
	return s.emitConst(resultType, -a.IntVal), true
}

// foldIdentity catches algebraic identities that hold regardless of the
// non-constant operand's value: x+0, x-0, x*1, x&-1(all-ones), x|0, x^0,
// x<<0, x>>0. It only fires when exactly one side is a zero/one/all-ones
// constant, since both-constant cases are already handled by
// foldIntBinary.
func (s *Simplifier) foldIdentity(op ir.Opcode, resultType *types.Type, src [3]ir.OperandID) (ir.OperandID, bool) {
	if resultType == nil || resultType.IsFloat() {
		return ir.NoOperand, false
	}
	lhsConst, lhsOK := s.constOf(src[0])
	rhsConst, rhsOK := s.constOf(src[1])
	switch op {
	case ir.OpAdd:
		if rhsOK && rhsConst.IntVal == 0 {
			return src[0], true
		}
		if lhsOK && lhsConst.IntVal == 0 {
			return src[1], true
		}
	case ir.OpSub:
		if rhsOK && rhsConst.IntVal == 0 {
			return src[0], true
		}
	case ir.OpMul:
		if rhsOK && rhsConst.IntVal == 1 {
			return src[0], true
		}
		if lhsOK && lhsConst.IntVal == 1 {
			return src[1], true
		}
		if (rhsOK && rhsConst.IntVal == 0) || (lhsOK && lhsConst.IntVal == 0) {
			return s.emitConst(resultType, 0), true
		}
	case ir.OpOr, ir.OpXor:
		if rhsOK && rhsConst.IntVal == 0 {
			return src[0], true
		}
		if lhsOK && lhsConst.IntVal == 0 {
			return src[1], true
		}
	case ir.OpAnd:
		if rhsOK && rhsConst.IntVal == -1 {
			return src[0], true
		}
		if lhsOK && lhsConst.IntVal == -1 {
			return src[1], true
		}
	case ir.OpShl, ir.OpShr, ir.OpUShr:
		if rhsOK && rhsConst.IntVal == 0 {
			return src[0], true
		}
	}
	return ir.NoOperand, false
}
