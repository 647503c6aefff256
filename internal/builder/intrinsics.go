package builder

import (
	"jitir/internal/ir"
	"jitir/internal/types"
)

// mathIntrinsicClass names the one JDK class whose min/max/abs methods this
// core can recognize and lower directly to a dedicated opcode, bypassing
// the normal call sequence entirely, the way the magic-address class
// (magic.go) bypasses it for raw pointer operations.
const mathIntrinsicClass = "java/lang/Math"

// IsMathIntrinsicClass reports whether enclosingClass is the class this
// core recognizes min/max/abs intrinsics on.
func IsMathIntrinsicClass(enclosingClass string) bool {
	return enclosingClass == mathIntrinsicClass
}

// IsMathIntrinsicMethod reports whether methodName names a recognized
// min/max/abs intrinsic, regardless of whether the builder's flags are
// currently set to actually lower it.
func IsMathIntrinsicMethod(methodName string) bool {
	switch methodName {
	case "min", "max", "abs":
		return true
	default:
		return false
	}
}

// CallMathIntrinsic lowers a recognized java.lang.Math.{min,max,abs} call
// straight to OpMin/OpMax/OpAbs instead of emitting any call instruction,
// gated by FlagGenMinMaxAbs for integer operands and FlagGenFMinMaxAbs for
// float/double operands. Reports false (and NoOperand) when the relevant
// flag is off or methodName isn't recognized, so the caller falls back to
// an ordinary call lowering.
func (b *Builder) CallMathIntrinsic(methodName string, args []ir.OperandID, resultType *types.Type) (ir.OperandID, bool) {
	if resultType == nil {
		return ir.NoOperand, false
	}
	if resultType.IsFloat() {
		if !b.Flags.Has(FlagGenFMinMaxAbs) {
			return ir.NoOperand, false
		}
	} else if !b.Flags.Has(FlagGenMinMaxAbs) {
		return ir.NoOperand, false
	}
	switch methodName {
	case "min":
		return b.Emit(ir.OpMin, 0, resultType, fixedSrc(args), nil), true
	case "max":
		return b.Emit(ir.OpMax, 0, resultType, fixedSrc(args), nil), true
	case "abs":
		return b.Emit(ir.OpAbs, 0, resultType, fixedSrc(args), nil), true
	default:
		return ir.NoOperand, false
	}
}
