package translator

import (
	"jitir/internal/ir"
	"jitir/internal/runtime"
	"jitir/internal/types"
)

// helperArrayInit names the JIT-synthesized helper InitializeArray calls
// through CallJitHelper. The core itself never
// needs more than this integer id; GetRuntimeHelperName only exists so a
// host can print a readable name for it in diagnostics.
const helperArrayInit = 1

// tryArrayInit recognizes the newarray/anewarray + repeated (dup, push
// index, push constant, store) run javac emits for a source-level array
// initializer (`new int[]{1, 2, 3}`) and, when FlagRecognizeArrayInit is
// set, collapses it into a single InitializeArray call instead of replaying
// every dup/store individually. It returns how many instructions starting
// at i were consumed (0 means no recognized run, fall through to normal
// per-instruction translation).
func (t *Translator) tryArrayInit(instrs []Instr, i int) (int, error) {
	in := instrs[i]
	var elemKind runtime.ElemKind
	var elemType *types.Type
	var err error
	switch in.kind {
	case kindNewArray:
		elemKind = in.elemKind
		elemType = elemKindType(t.mgr, elemKind)
	case kindANewArray:
		elemKind = runtime.ElemRef
		elemType, err = t.comp.GetNamedType(in.cpIndex)
		if err != nil {
			return 0, err
		}
	default:
		return 0, nil
	}

	values, consumed := scanArrayInitRun(instrs, i+1, elemKind)
	if consumed == 0 {
		return 0, nil
	}

	t.pop() // the array length pushed ahead of the newarray/anewarray itself
	lengthConst := t.b.Emit(ir.OpConst, 0, t.mgr.I32(), [3]ir.OperandID{}, &ir.ConstPayload{IntVal: int64(len(values))})
	args := []ir.OperandID{lengthConst}
	for _, v := range values {
		opnd, err := t.evalConstLike(v)
		if err != nil {
			return 0, err
		}
		args = append(args, opnd)
	}

	arrType := t.mgr.GetArrayType(elemType)
	dst := t.b.CallJitHelper(helperArrayInit, args, arrType)
	t.push(dst)
	return 1 + consumed, nil
}

// scanArrayInitRun walks instrs starting at start looking for consecutive
// (dup, push literal index, push constant value, store) groups whose
// indices run 0, 1, 2, ... without gaps. It stops at the first group that
// doesn't fit and returns the constant-value instructions found so far
// along with how many instructions the matched groups span (the group that
// broke the run is not counted and is NOT consumed).
func scanArrayInitRun(instrs []Instr, start int, elemKind runtime.ElemKind) ([]Instr, int) {
	var values []Instr
	pos := start
	wantIndex := int64(0)
	for pos+4 <= len(instrs) {
		dupIn := instrs[pos]
		if dupIn.kind != kindSimple || dupIn.simple != runtime.OpDup {
			break
		}
		idxIn := instrs[pos+1]
		if idxIn.kind != kindIntImmediate || idxIn.intVal != wantIndex {
			break
		}
		valIn := instrs[pos+2]
		if !isConstLike(valIn) {
			break
		}
		storeIn := instrs[pos+3]
		if storeIn.kind != kindArrayAccess || !storeIn.isStore || storeIn.elemKind != elemKind {
			break
		}
		values = append(values, valIn)
		wantIndex++
		pos += 4
	}
	if len(values) == 0 {
		return nil, 0
	}
	return values, pos - start
}

func isConstLike(in Instr) bool {
	switch in.kind {
	case kindIntImmediate, kindFloatImmediate, kindConst, kindNullConst:
		return true
	default:
		return false
	}
}

// evalConstLike produces the operand for a constant-value push without
// touching the modeled stack, so array-initializer elements can be
// materialized as direct call arguments.
func (t *Translator) evalConstLike(in Instr) (ir.OperandID, error) {
	switch in.kind {
	case kindIntImmediate:
		return t.b.Emit(ir.OpConst, 0, elemKindType(t.mgr, in.elemKind), [3]ir.OperandID{}, &ir.ConstPayload{IntVal: in.intVal}), nil
	case kindFloatImmediate:
		return t.b.Emit(ir.OpConst, 0, elemKindType(t.mgr, in.elemKind), [3]ir.OperandID{}, &ir.ConstPayload{FloatVal: in.floatVal}), nil
	case kindNullConst:
		return t.b.Emit(ir.OpConst, 0, t.mgr.Null(), [3]ir.OperandID{}, &ir.ConstPayload{}), nil
	case kindConst:
		ct, err := t.comp.GetConstantType(in.cpIndex)
		if err != nil {
			return ir.NoOperand, err
		}
		cv, err := t.comp.GetConstantValue(in.cpIndex)
		if err != nil {
			return ir.NoOperand, err
		}
		return t.b.Emit(ir.OpConst, 0, ct, [3]ir.OperandID{}, constPayloadFor(ct, cv)), nil
	default:
		return ir.NoOperand, nil
	}
}
