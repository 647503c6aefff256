package ir

import "jitir/internal/arena"

// EdgeKind tags a CFG edge with why it exists, not just where it goes
//.
type EdgeKind uint8

const (
	EdgeUnconditional EdgeKind = iota
	EdgeTrue
	EdgeFalse
	EdgeSwitchCase
	EdgeCatch
	EdgeException
)

// BlockKind distinguishes ordinary instruction-carrying blocks from
// dispatch nodes, the label-only merge points synthesized purely to collect
// exception-propagation edges.
type BlockKind uint8

const (
	BlockNormal BlockKind = iota
	BlockDispatch
)

// Edge is a directed CFG edge, stored redundantly on both endpoints so
// predecessor and successor walks are both O(1) per block.
type Edge struct {
	From, To BlockID
	Kind     EdgeKind
}

// Block is either a normal basic block (a non-empty instruction list
// starting with a label) or a dispatch node (label only, no instructions).
// Every block is entered by exactly one label (C1 in the teacher's
// block-invariant vocabulary).
type Block struct {
	ID    BlockID
	Kind  BlockKind
	Label InstID // the OpLabel instruction heading this block

	InstHead, InstTail InstID

	Preds, Succs []Edge

	// ExceptionRegion is the innermost catch region this block lies within,
	// or -1 if none (see internal/prepass for region construction).
	ExceptionRegion int
}

// Graph is the arena-backed control-flow graph assembled by the builder.
// Blocks and instructions are both owned by value inside their arenas;
// everything else references them by id.
type Graph struct {
	blocks   *arena.Arena[Block]
	insts    *arena.Arena[Instruction]
	blockIDs arena.Counter[BlockID]
	instIDs  arena.Counter[InstID]
	Entry    BlockID
}

// NewGraph creates an empty graph with no blocks.
func NewGraph() *Graph {
	return &Graph{
		blocks: arena.New[Block](),
		insts:  arena.New[Instruction](),
		Entry:  NoBlock,
	}
}

// Block resolves a BlockID to its stable storage.
func (g *Graph) Block(id BlockID) *Block {
	if id == NoBlock {
		return nil
	}
	return g.blocks.Get(int(id))
}

// Inst resolves an InstID to its stable storage.
func (g *Graph) Inst(id InstID) *Instruction {
	if id == NoInst {
		return nil
	}
	return g.insts.Get(int(id))
}

// NewBlock allocates a fresh normal block, not yet linked into the graph.
func (g *Graph) NewBlock() BlockID {
	id := g.blockIDs.Next()
	idx, b := g.blocks.Alloc()
	if int(id) != idx {
		panic("arena/graph block id desync")
	}
	b.ID = id
	b.Kind = BlockNormal
	b.Label = NoInst
	b.InstHead, b.InstTail = NoInst, NoInst
	b.ExceptionRegion = -1
	if g.Entry == NoBlock {
		g.Entry = id
	}
	return id
}

// NewDispatchNode allocates a dispatch node: a label-only merge point with
// no instruction list of its own, used to collect the exception edges that
// fan out from every potentially-throwing instruction under a given catch
// region.
func (g *Graph) NewDispatchNode() BlockID {
	id := g.NewBlock()
	g.Block(id).Kind = BlockDispatch
	return id
}

// AddEdge links from->to with the given kind, recording the edge on both
// endpoints.
func (g *Graph) AddEdge(from, to BlockID, kind EdgeKind) {
	e := Edge{From: from, To: to, Kind: kind}
	fb, tb := g.Block(from), g.Block(to)
	fb.Succs = append(fb.Succs, e)
	tb.Preds = append(tb.Preds, e)
}

// allocInst reserves a fresh instruction slot, independent of where it will
// be spliced.
func (g *Graph) allocInst() (InstID, *Instruction) {
	id := g.instIDs.Next()
	idx, inst := g.insts.Alloc()
	if int(id) != idx {
		panic("arena/graph inst id desync")
	}
	inst.ID = id
	inst.Prev, inst.Next = NoInst, NoInst
	inst.Tau = NoOperand
	return id, inst
}

// Append adds a fully-built instruction to the end of block's instruction
// list, linking it into the intrusive list and stamping its Block field.
// This is the only way instructions enter a block's list; the builder's
// CSE/simplify pipeline decides what to pass here.
func (g *Graph) Append(block BlockID, op Opcode, mod Modifier, src [3]OperandID, dst OperandID, payload any) InstID {
	id, inst := g.allocInst()
	inst.Block = block
	inst.Op = op
	inst.Mod = mod
	inst.Src = src
	inst.Dst = dst
	inst.Payload = payload

	b := g.Block(block)
	if b.InstHead == NoInst {
		b.InstHead = id
		b.InstTail = id
	} else {
		tail := g.Inst(b.InstTail)
		tail.Next = id
		inst.Prev = b.InstTail
		b.InstTail = id
	}
	return id
}

// InsertAfter splices a new instruction immediately after "after" in its
// block's list without disturbing already-issued ids.
func (g *Graph) InsertAfter(after InstID, op Opcode, mod Modifier, src [3]OperandID, dst OperandID, payload any) InstID {
	prev := g.Inst(after)
	id, inst := g.allocInst()
	inst.Block = prev.Block
	inst.Op = op
	inst.Mod = mod
	inst.Src = src
	inst.Dst = dst
	inst.Payload = payload

	inst.Prev = after
	inst.Next = prev.Next
	if prev.Next != NoInst {
		g.Inst(prev.Next).Prev = id
	} else {
		g.Block(prev.Block).InstTail = id
	}
	prev.Next = id
	return id
}

// Instructions walks block's instruction list in order, calling visit for
// each. It stops early if visit returns false.
func (g *Graph) Instructions(block BlockID, visit func(*Instruction) bool) {
	for id := g.Block(block).InstHead; id != NoInst; {
		inst := g.Inst(id)
		next := inst.Next
		if !visit(inst) {
			return
		}
		id = next
	}
}

// Terminator returns the last instruction in block, which by construction
// (C1) is always present and always satisfies Opcode.IsTerminator, except
// for dispatch nodes which carry no instructions at all.
func (g *Graph) Terminator(block BlockID) *Instruction {
	b := g.Block(block)
	if b.InstTail == NoInst {
		return nil
	}
	return g.Inst(b.InstTail)
}
