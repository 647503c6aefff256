package builder

import (
	"jitir/internal/ir"
	"jitir/internal/types"
)

// TauState tracks, within one method's construction, which safety facts
// have already been proven so later checks of the same fact can fold to
// tauSafe instead of re-emitting a real runtime check. It is kept
// on the Builder rather than per-block since tauMethodSafe facts are
// proven once and hold for the method's remaining lifetime regardless of
// which block observes them again.
type TauState struct {
	methodSafe map[tauFact]ir.OperandID
}

// tauFact identifies a provable safety condition: a kind (null/bounds/zero/
// elemtype) plus the operand(s) it's about. Two identical facts in
// identical operands are the same witness.
type tauFact struct {
	kind ir.Opcode // one of OpTauCheckNull/Bounds/Zero/ElemType
	a, b ir.OperandID
}

func newTauState() *TauState {
	return &TauState{methodSafe: make(map[tauFact]ir.OperandID)}
}

// CheckNull implements rule 1: a checked operation that needs a non-null
// receiver emits tauCheckNull the first time, producing a Tau-typed
// witness operand consumed by the faulting instruction's Tau field.
func (b *Builder) CheckNull(receiver ir.OperandID) ir.OperandID {
	return b.checkTau(ir.OpTauCheckNull, receiver, ir.NoOperand)
}

// CheckBounds implements the analogous rule for array index checks.
func (b *Builder) CheckBounds(array, index ir.OperandID) ir.OperandID {
	return b.checkTau(ir.OpTauCheckBounds, array, index)
}

// CheckZero implements the analogous rule for divisor-nonzero checks.
func (b *Builder) CheckZero(divisor ir.OperandID) ir.OperandID {
	return b.checkTau(ir.OpTauCheckZero, divisor, ir.NoOperand)
}

// CheckCast lowers a checkcast bytecode into a tauCheckCast + tauStaticCast
// pair rather than a single opaque checkCast instruction, so later passes
// can reason about the cast's success: tauCheckCast produces the witness
// that obj is an instance of target (or throws), and tauStaticCast
// consumes that witness to reinterpret obj's static type without any
// further runtime work.
func (b *Builder) CheckCast(obj ir.OperandID, target *types.Type) ir.OperandID {
	tau := b.Emit(ir.OpTauCheckCast, ir.ModExceptionThrowing, b.Types.Tau(), [3]ir.OperandID{obj}, &ir.TypePayload{Target: target})
	return b.EmitWithTau(ir.OpTauStaticCast, 0, target, [3]ir.OperandID{obj}, &ir.TypePayload{Target: target}, tau)
}

// CheckElemType implements the analogous rule for covariant array-store
// element-type checks.
func (b *Builder) CheckElemType(array, value ir.OperandID) ir.OperandID {
	return b.checkTau(ir.OpTauCheckElemType, array, value)
}

func (b *Builder) checkTau(kind ir.Opcode, a, bOperand ir.OperandID) ir.OperandID {
	fact := tauFact{kind: kind, a: a, b: bOperand}

	// Rule 2: a check whose fact an earlier check in this method already
	// proved (recorded under FlagHoistMethodSafeTau, in any block) folds to
	// tauSafe over that earlier witness rather than emitting another runtime
	// check. An operand's ModNonNull bit is not consulted.
	if b.Flags.Has(FlagElideRedundantTau) {
		if witness, ok := b.tau.methodSafe[fact]; ok {
			return b.Emit(ir.OpTauSafe, 0, b.Types.Tau(), [3]ir.OperandID{witness}, nil)
		}
	}

	src := [3]ir.OperandID{a, bOperand}
	witness := b.Emit(kind, ir.Modifier(0).WithPredicate(predForTau(kind)), b.Types.Tau(), src, nil)

	// Rule 3: with FlagHoistMethodSafeTau set, a proven fact is recorded for
	// the rest of the method, so a later check of the same fact can fold to
	// tauSafe under rule 2 instead of a second real check.
	if b.Flags.Has(FlagHoistMethodSafeTau) {
		b.tau.methodSafe[fact] = witness
	}
	return witness
}

// And implements rule 4: tauAnd combines two independent witnesses into one
// operand a multi-precondition instruction can depend on, rather than
// requiring the Instruction.Tau field to carry more than one id.
func (b *Builder) And(a, c ir.OperandID) ir.OperandID {
	if a == ir.NoOperand {
		return c
	}
	if c == ir.NoOperand {
		return a
	}
	return b.Emit(ir.OpTauAnd, 0, b.Types.Tau(), [3]ir.OperandID{a, c}, nil)
}

// Unsafe returns the designated witness standing in for "no proof was
// attempted", so downstream passes can see that an access was deliberately
// left unchecked rather than missing a Tau operand by omission.
func (b *Builder) Unsafe() ir.OperandID {
	return b.Emit(ir.OpTauUnsafe, 0, b.Types.Tau(), [3]ir.OperandID{}, nil)
}

// predForTau maps a tau-check opcode to the comparison predicate its
// underlying runtime test represents, used only for printing/diagnostics.
func predForTau(kind ir.Opcode) ir.Predicate {
	switch kind {
	case ir.OpTauCheckNull:
		return ir.PredNE
	case ir.OpTauCheckZero:
		return ir.PredNE
	case ir.OpTauCheckBounds:
		return ir.PredLT
	default:
		return ir.PredNone
	}
}
