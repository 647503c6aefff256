package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildDiamond wires entry -> (left, right) -> merge, the smallest CFG
// shape that exercises both Preds/Succs bookkeeping and dispatch nodes.
func buildDiamond(g *Graph) (entry, left, right, merge BlockID) {
	entry = g.NewBlock()
	left = g.NewBlock()
	right = g.NewBlock()
	merge = g.NewBlock()

	g.Append(entry, OpLabel, 0, [3]OperandID{}, NoOperand, &LabelPayload{})
	g.Append(entry, OpBranch, 0, [3]OperandID{}, NoOperand, &BranchPayload{Target: left, FalseTarget: right})
	g.AddEdge(entry, left, EdgeTrue)
	g.AddEdge(entry, right, EdgeFalse)

	g.Append(left, OpLabel, 0, [3]OperandID{}, NoOperand, &LabelPayload{})
	g.Append(left, OpJump, 0, [3]OperandID{}, NoOperand, &BranchPayload{Target: merge})
	g.AddEdge(left, merge, EdgeUnconditional)

	g.Append(right, OpLabel, 0, [3]OperandID{}, NoOperand, &LabelPayload{})
	g.Append(right, OpJump, 0, [3]OperandID{}, NoOperand, &BranchPayload{Target: merge})
	g.AddEdge(right, merge, EdgeUnconditional)

	g.Append(merge, OpLabel, 0, [3]OperandID{}, NoOperand, &LabelPayload{})
	g.Append(merge, OpReturn, 0, [3]OperandID{}, NoOperand, nil)

	return
}

func TestNewBlockSetsEntryOnce(t *testing.T) {
	g := NewGraph()
	assert.Equal(t, NoBlock, g.Entry)

	first := g.NewBlock()
	assert.Equal(t, first, g.Entry)

	second := g.NewBlock()
	assert.Equal(t, first, g.Entry, "a later NewBlock must not move Entry")
	assert.NotEqual(t, first, second)
}

func TestAddEdgeRecordsBothEndpoints(t *testing.T) {
	g := NewGraph()
	entry, left, right, merge := buildDiamond(g)

	assert.Len(t, g.Block(entry).Succs, 2)
	assert.Len(t, g.Block(left).Preds, 1)
	assert.Len(t, g.Block(right).Preds, 1)
	assert.Len(t, g.Block(merge).Preds, 2)

	assert.Equal(t, EdgeTrue, g.Block(entry).Succs[0].Kind)
	assert.Equal(t, EdgeFalse, g.Block(entry).Succs[1].Kind)
}

func TestTerminatorIsLastInstruction(t *testing.T) {
	g := NewGraph()
	_, left, _, _ := buildDiamond(g)

	term := g.Terminator(left)
	assert.Equal(t, OpJump, term.Op)
	assert.True(t, term.Op.IsTerminator())
}

func TestTerminatorNilOnEmptyBlock(t *testing.T) {
	g := NewGraph()
	dispatch := g.NewDispatchNode()
	assert.Equal(t, BlockDispatch, g.Block(dispatch).Kind)
	assert.Nil(t, g.Terminator(dispatch))
}

func TestInstructionsWalksInOrderAndRespectsEarlyStop(t *testing.T) {
	g := NewGraph()
	block := g.NewBlock()
	g.Append(block, OpLabel, 0, [3]OperandID{}, NoOperand, &LabelPayload{})
	for i := 0; i < 3; i++ {
		g.Append(block, OpConst, 0, [3]OperandID{}, NoOperand, &ConstPayload{})
	}

	var seen []Opcode
	g.Instructions(block, func(inst *Instruction) bool {
		seen = append(seen, inst.Op)
		return len(seen) < 2
	})
	assert.Equal(t, []Opcode{OpLabel, OpConst}, seen, "visit must stop as soon as it returns false")
}

func TestInsertAfterSplicesWithoutDisturbingTail(t *testing.T) {
	g := NewGraph()
	block := g.NewBlock()
	first := g.Append(block, OpLabel, 0, [3]OperandID{}, NoOperand, &LabelPayload{})
	last := g.Append(block, OpReturn, 0, [3]OperandID{}, NoOperand, nil)

	inserted := g.InsertAfter(first, OpConst, 0, [3]OperandID{}, NoOperand, &ConstPayload{})

	assert.Equal(t, inserted, g.Inst(first).Next)
	assert.Equal(t, first, g.Inst(inserted).Prev)
	assert.Equal(t, last, g.Inst(inserted).Next)
	assert.Equal(t, inserted, g.Inst(last).Prev)
	assert.Equal(t, last, g.Block(block).InstTail, "inserting before the tail must not move InstTail")
}
