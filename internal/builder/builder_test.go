package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jitir/internal/ir"
	"jitir/internal/types"
)

func newTestBuilder(flags Flags) (*Builder, *types.Manager) {
	mgr := types.NewManager()
	b := New(mgr, flags)
	b.SetBlock(b.Graph.NewBlock())
	return b, mgr
}

func constOperand(b *Builder, t *types.Type, v int64) ir.OperandID {
	return b.Emit(ir.OpConst, 0, t, [3]ir.OperandID{}, &ir.ConstPayload{IntVal: v})
}

func TestNewAssignsDistinctSessionIDs(t *testing.T) {
	mgr := types.NewManager()
	a := New(mgr, 0)
	b := New(mgr, 0)
	assert.NotEqual(t, a.SessionID, b.SessionID)
}

func TestEmitCSEReusesIdenticalInstruction(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableCSE)
	i32 := mgr.I32()

	x := b.NewVariable(i32, "x")
	y := b.NewVariable(i32, "y")

	first := b.Emit(ir.OpLoadField, 0, i32, [3]ir.OperandID{x, y}, nil)
	second := b.Emit(ir.OpLoadField, 0, i32, [3]ir.OperandID{x, y}, nil)

	assert.Equal(t, first, second, "identical loads in the same block must CSE to one operand")
}

func TestEmitCSEDoesNotReuseAcrossDifferentOperands(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableCSE)
	i32 := mgr.I32()
	x := b.NewVariable(i32, "x")
	y := b.NewVariable(i32, "y")
	z := b.NewVariable(i32, "z")

	first := b.Emit(ir.OpLoadField, 0, i32, [3]ir.OperandID{x, y}, nil)
	second := b.Emit(ir.OpLoadField, 0, i32, [3]ir.OperandID{x, z}, nil)

	assert.NotEqual(t, first, second)
}

func TestEmitCSEResetsOnNewBlock(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableCSE)
	i32 := mgr.I32()
	x := b.NewVariable(i32, "x")
	y := b.NewVariable(i32, "y")

	first := b.Emit(ir.OpLoadField, 0, i32, [3]ir.OperandID{x, y}, nil)
	b.SetBlock(b.Graph.NewBlock())
	second := b.Emit(ir.OpLoadField, 0, i32, [3]ir.OperandID{x, y}, nil)

	assert.NotEqual(t, first, second, "CSE is scoped to one block; a fresh block must not reuse the old cache")
}

func TestEmitDoesNotCSESideEffectingCalls(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableCSE)
	i32 := mgr.I32()
	payload := &ir.CallPayload{Shape: ir.CallVMHelper}

	first := b.Emit(ir.OpCallVMHelper, 0, i32, [3]ir.OperandID{}, payload)
	second := b.Emit(ir.OpCallVMHelper, 0, i32, [3]ir.OperandID{}, payload)

	assert.NotEqual(t, first, second, "calls are never CSE-eligible even with identical operands")
}

func TestFoldConstantBinaryArithmetic(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableSimplify)
	i32 := mgr.I32()

	a := constOperand(b, i32, 3)
	c := constOperand(b, i32, 4)
	sum := b.Emit(ir.OpAdd, 0, i32, [3]ir.OperandID{a, c}, nil)

	inst := b.Graph.Inst(b.Operand(sum).Def)
	cp := inst.Payload.(*ir.ConstPayload)
	assert.Equal(t, int64(7), cp.IntVal)
}

func TestFoldDivisionByZeroConstantDoesNotFold(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableSimplify)
	i32 := mgr.I32()

	a := constOperand(b, i32, 10)
	zero := constOperand(b, i32, 0)
	result := b.Emit(ir.OpDiv, 0, i32, [3]ir.OperandID{a, zero}, nil)

	inst := b.Graph.Inst(b.Operand(result).Def)
	assert.Equal(t, ir.OpDiv, inst.Op, "a divide by a constant zero must stay a real instruction so its tau check still fires")
}

func TestFoldIdentityAddZero(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableSimplify)
	i32 := mgr.I32()
	x := b.NewVariable(i32, "x")
	zero := constOperand(b, i32, 0)

	result := b.Emit(ir.OpAdd, 0, i32, [3]ir.OperandID{x, zero}, nil)
	assert.Equal(t, x, result, "x+0 must fold straight to x without emitting an add")
}

func TestFoldIdentityMulOne(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableSimplify)
	i32 := mgr.I32()
	x := b.NewVariable(i32, "x")
	one := constOperand(b, i32, 1)

	result := b.Emit(ir.OpMul, 0, i32, [3]ir.OperandID{x, one}, nil)
	assert.Equal(t, x, result)
}

func TestFoldSelfSubtractIsZero(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableSimplify)
	i32 := mgr.I32()
	x := b.NewVariable(i32, "x")

	result := b.Emit(ir.OpSub, 0, i32, [3]ir.OperandID{x, x}, nil)
	inst := b.Graph.Inst(b.Operand(result).Def)
	assert.Equal(t, ir.OpConst, inst.Op, "x-x must fold to a constant zero")
	assert.Equal(t, int64(0), inst.Payload.(*ir.ConstPayload).IntVal)
}

func TestFoldSelfAndOr(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableSimplify)
	i32 := mgr.I32()
	x := b.NewVariable(i32, "x")

	assert.Equal(t, x, b.Emit(ir.OpAnd, 0, i32, [3]ir.OperandID{x, x}, nil), "x&x must fold to x")
	assert.Equal(t, x, b.Emit(ir.OpOr, 0, i32, [3]ir.OperandID{x, x}, nil), "x|x must fold to x")
}

func TestFoldMulByZero(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableSimplify)
	i32 := mgr.I32()
	x := b.NewVariable(i32, "x")
	zero := constOperand(b, i32, 0)

	result := b.Emit(ir.OpMul, 0, i32, [3]ir.OperandID{x, zero}, nil)
	inst := b.Graph.Inst(b.Operand(result).Def)
	assert.Equal(t, ir.OpConst, inst.Op)
	assert.Equal(t, int64(0), inst.Payload.(*ir.ConstPayload).IntVal)
}

func TestFoldDoubleNegation(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableSimplify)
	i32 := mgr.I32()
	x := b.NewVariable(i32, "x")

	negated := b.Emit(ir.OpNeg, 0, i32, [3]ir.OperandID{x}, nil)
	result := b.Emit(ir.OpNeg, 0, i32, [3]ir.OperandID{negated}, nil)
	assert.Equal(t, x, result, "-(-x) must fold straight back to x")
}

func TestFoldNotAppliedWithoutOperandsBeingConstants(t *testing.T) {
	b, mgr := newTestBuilder(FlagEnableSimplify)
	i32 := mgr.I32()
	x := b.NewVariable(i32, "x")
	y := b.NewVariable(i32, "y")

	result := b.Emit(ir.OpAdd, 0, i32, [3]ir.OperandID{x, y}, nil)
	inst := b.Graph.Inst(b.Operand(result).Def)
	assert.Equal(t, ir.OpAdd, inst.Op, "two non-constant operands must emit a real add")
}

func TestCheckNullIsIdempotentWithinAMethod(t *testing.T) {
	b, mgr := newTestBuilder(FlagElideRedundantTau | FlagHoistMethodSafeTau)
	ref := b.NewVariable(mgr.GetNamedType("com/example/Widget", true), "r")

	first := b.CheckNull(ref)
	second := b.CheckNull(ref)

	firstInst := b.Graph.Inst(b.Operand(first).Def)
	secondInst := b.Graph.Inst(b.Operand(second).Def)
	assert.Equal(t, ir.OpTauCheckNull, firstInst.Op)
	assert.Equal(t, ir.OpTauSafe, secondInst.Op, "a fact already proven method-safe must fold to tauSafe")
}

func TestCheckNullWithoutHoistingEmitsEveryTime(t *testing.T) {
	b, mgr := newTestBuilder(0)
	ref := b.NewVariable(mgr.GetNamedType("com/example/Widget", true), "r")

	first := b.CheckNull(ref)
	second := b.CheckNull(ref)

	firstInst := b.Graph.Inst(b.Operand(first).Def)
	secondInst := b.Graph.Inst(b.Operand(second).Def)
	assert.Equal(t, ir.OpTauCheckNull, firstInst.Op)
	assert.Equal(t, ir.OpTauCheckNull, secondInst.Op)
}

func TestAndShortCircuitsOnNoOperand(t *testing.T) {
	b, _ := newTestBuilder(0)
	witness := b.Unsafe()

	assert.Equal(t, witness, b.And(ir.NoOperand, witness))
	assert.Equal(t, witness, b.And(witness, ir.NoOperand))
}

func TestNullSentinelIsSharedAcrossVoidInstructions(t *testing.T) {
	b, mgr := newTestBuilder(0)
	first := b.Emit(ir.OpMonitorEnter, 0, nil, [3]ir.OperandID{b.NewVariable(mgr.GetNamedType("X", true), "m")}, nil)
	assert.Equal(t, b.NullSentinel(), first)
}
