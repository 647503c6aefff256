package ir

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintGraphWalksReachableBlocksOnce(t *testing.T) {
	g := NewGraph()
	entry, left, right, merge := buildDiamond(g)

	out := PrintGraph(g)

	for _, name := range []string{"L" + strconv.Itoa(int(entry)), "L" + strconv.Itoa(int(left)), "L" + strconv.Itoa(int(right)), "L" + strconv.Itoa(int(merge))} {
		assert.Equal(t, 1, strings.Count(out, name+":"), "block %s must be printed exactly once even though merge has two preds", name)
	}
	assert.Contains(t, out, "GRAPH entry=L"+strconv.Itoa(int(entry)))
	assert.Contains(t, out, "branch")
	assert.Contains(t, out, "return")
}

func TestPrintGraphSkipsUnreachableBlocks(t *testing.T) {
	g := NewGraph()
	entry := g.NewBlock()
	g.Append(entry, OpLabel, 0, [3]OperandID{}, NoOperand, &LabelPayload{})
	g.Append(entry, OpReturn, 0, [3]OperandID{}, NoOperand, nil)

	orphan := g.NewBlock()
	g.Append(orphan, OpLabel, 0, [3]OperandID{}, NoOperand, &LabelPayload{})
	g.Append(orphan, OpReturn, 0, [3]OperandID{}, NoOperand, nil)

	out := PrintGraph(g)
	assert.NotContains(t, out, "L"+strconv.Itoa(int(orphan))+":")
}

func TestPrintInstructionOmitsLabelLine(t *testing.T) {
	g := NewGraph()
	block := g.NewBlock()
	g.Append(block, OpLabel, 0, [3]OperandID{}, NoOperand, &LabelPayload{})
	g.Append(block, OpReturn, 0, [3]OperandID{}, NoOperand, nil)

	out := PrintGraph(g)
	assert.NotContains(t, out, "label")
}
