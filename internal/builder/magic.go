package builder

import (
	"jitir/internal/ir"
	"jitir/internal/types"
)

// magicClass names the handful of runtime classes whose methods never
// dispatch through the normal call machinery; each one's methods are
// lowered straight to a dedicated opcode.
const magicClass = "sun/misc/Unsafe$Address"

// magicOps maps a magic method name to the opcode it lowers to, resolving a
// call-by-name to a dedicated lowering rather than a normal invocation.
var magicOps = map[string]ir.Opcode{
	"plus":                 ir.OpMagicPtrPlus,
	"minus":                ir.OpMagicPtrMinus,
	"diff":                 ir.OpMagicPtrDiff,
	"and":                  ir.OpAnd,
	"or":                   ir.OpOr,
	"xor":                  ir.OpXor,
	"not":                  ir.OpXor, // lowered with an all-ones rhs by the caller
	"shl":                  ir.OpShl,
	"shr":                  ir.OpShr,
	"ushr":                 ir.OpUShr,
	"fromInt":              ir.OpMagicFromInt,
	"fromLong":             ir.OpMagicFromLong,
	"toAddress":            ir.OpMagicToAddress,
	"loadInt":              ir.OpMagicLoadInt,
	"loadObjectReference":  ir.OpMagicLoadObjectRef,
	"store":                ir.OpMagicStore,
	"prepareInt":           ir.OpMagicPrepareInt,
	"attempt":              ir.OpMagicAttempt,
}

// magicComparisons lists the comparison method names the magic class
// supports; each lowers to the generic comparison opcode carrying the
// matching predicate, rather than its own dedicated opcode, since a
// comparison's only magic-specific trait is operating on raw addresses.
var magicComparisons = map[string]ir.Predicate{
	"EQ": ir.PredEQ,
	"NE": ir.PredNE,
	"LT": ir.PredLT,
	"LE": ir.PredLE,
	"GT": ir.PredGT,
	"GE": ir.PredGE,
	// signed variants share the same predicates; CallMagic sets ModUnsigned
	// on the plain (unsigned) family only.
	"sLT": ir.PredLT,
	"sLE": ir.PredLE,
	"sGT": ir.PredGT,
	"sGE": ir.PredGE,
}

// IsMagicClass reports whether enclosingClass names a runtime class whose
// methods bypass the normal call sequence entirely. The translator
// consults this before generating an ordinary invoke* lowering.
func IsMagicClass(enclosingClass string) bool {
	return enclosingClass == magicClass
}

// IsMagicMethod reports whether methodName is a recognized magic operation
// on magicClass, covering both the opcode table and the comparison table.
func IsMagicMethod(methodName string) bool {
	if _, ok := magicOps[methodName]; ok {
		return true
	}
	_, ok := magicComparisons[methodName]
	return ok
}

// CallMagic lowers a call to a magic-class method directly to its dedicated
// opcode or to a generic arithmetic/comparison opcode carrying the right
// predicate, instead of emitting any call instruction at all: the
// whole point of the magic lowering is that these "calls" never reach the
// call machinery.
func (b *Builder) CallMagic(methodName string, args []ir.OperandID, resultType *types.Type) ir.OperandID {
	if pred, ok := magicComparisons[methodName]; ok {
		mod := ir.Modifier(0).WithPredicate(pred)
		if methodName[0] != 's' {
			mod |= ir.ModUnsigned
		}
		return b.Emit(magicCompareOpcode(pred), mod, b.Types.Boolean(), fixedSrc(args), nil)
	}

	op, ok := magicOps[methodName]
	if !ok {
		return ir.NoOperand
	}

	switch methodName {
	case "not":
		allOnes := b.Emit(ir.OpConst, 0, resultType, [3]ir.OperandID{}, &ir.ConstPayload{IntVal: -1})
		return b.Emit(ir.OpXor, 0, resultType, [3]ir.OperandID{args[0], allOnes}, nil)
	case "store", "prepareInt", "attempt":
		return b.EmitWithTau(op, ir.ModExceptionThrowing, resultType, fixedSrc(args), &ir.MagicPayload{HelperName: methodName}, b.Unsafe())
	default:
		return b.Emit(op, 0, resultType, fixedSrc(args), &ir.MagicPayload{HelperName: methodName})
	}
}

func magicCompareOpcode(pred ir.Predicate) ir.Opcode {
	switch pred {
	case ir.PredEQ:
		return ir.OpCmpEQ
	case ir.PredNE:
		return ir.OpCmpNE
	case ir.PredLT:
		return ir.OpCmpLT
	case ir.PredLE:
		return ir.OpCmpLE
	case ir.PredGT:
		return ir.OpCmpGT
	default:
		return ir.OpCmpGE
	}
}

func fixedSrc(args []ir.OperandID) [3]ir.OperandID {
	var src [3]ir.OperandID
	for i := range src {
		src[i] = ir.NoOperand
	}
	for i := 0; i < 3 && i < len(args); i++ {
		src[i] = args[i]
	}
	return src
}

// MagicHelperName maps a named magic method to the runtime-helper id family
// it belongs to, used only for diagnostics. The core itself never needs the
// numeric id; it's surfaced purely so a host's GetRuntimeHelperName can
// describe a magic lowering in error messages.
func MagicHelperName(methodName string) string {
	switch methodName {
	case "monitorEnter":
		return "jit_helper_monitor_enter"
	case "newResolvedUsingAllocHandle":
		return "jit_helper_new_fast"
	case "checkCast":
		return "jit_helper_check_cast"
	case "instanceOf":
		return "jit_helper_instance_of"
	default:
		return "jit_helper_" + methodName
	}
}
