// Package builder implements the IR builder: the layer that turns a
// stream of "append this opcode" requests from the translator into actual
// arena-backed Instructions and Operands, performing local common
// subexpression elimination and peephole simplification inline at
// construction time rather than as a later optimization pass.
package builder

import (
	"container/list"

	"github.com/google/uuid"

	"jitir/internal/arena"
	"jitir/internal/ir"
	"jitir/internal/types"
)

const cseCapacity = 128

type cseKey struct {
	op  ir.Opcode
	src [3]ir.OperandID
}

// cseScope is the per-block CSE cache: a fixed-capacity LRU keeps the
// hottest 128 keys reorderable in O(1), and an unbounded overflow map keeps
// everything evicted from the LRU still queryable, just without further
// reordering. CSE is scoped to a single block; a fresh cseScope is
// installed every time the builder switches its current block.
type cseScope struct {
	lru      *list.List
	index    map[cseKey]*list.Element
	overflow map[cseKey]ir.InstID
}

type cseLRUEntry struct {
	key  cseKey
	inst ir.InstID
}

func newCSEScope() *cseScope {
	return &cseScope{
		lru:      list.New(),
		index:    make(map[cseKey]*list.Element),
		overflow: make(map[cseKey]ir.InstID),
	}
}

func (c *cseScope) lookup(key cseKey) (ir.InstID, bool) {
	if el, ok := c.index[key]; ok {
		c.lru.MoveToFront(el)
		return el.Value.(*cseLRUEntry).inst, true
	}
	if inst, ok := c.overflow[key]; ok {
		return inst, true
	}
	return ir.NoInst, false
}

func (c *cseScope) insert(key cseKey, inst ir.InstID) {
	el := c.lru.PushFront(&cseLRUEntry{key: key, inst: inst})
	c.index[key] = el
	if c.lru.Len() <= cseCapacity {
		return
	}
	tail := c.lru.Back()
	c.lru.Remove(tail)
	evicted := tail.Value.(*cseLRUEntry)
	delete(c.index, evicted.key)
	c.overflow[evicted.key] = evicted.inst
}

// Builder owns one compilation's Graph, type Manager, operand arena, and
// construction-time CSE/simplify state. It is not safe for concurrent use;
// one Builder serves exactly one compilation.
type Builder struct {
	Graph *ir.Graph
	Types *types.Manager
	Flags Flags

	// SessionID tags this compilation for diagnostics: the demonstration
	// binary (cmd/jitdump) prints it alongside a dumped CFG, and a host
	// embedding this core can correlate arena diagnostics against it across
	// concurrently-running compilations (each compilation owns its own
	// arena/builder/prepass/translator, so the id need only be unique within
	// a process, not globally coordinated).
	SessionID uuid.UUID

	operands  *arena.Arena[ir.Operand]
	operandID arena.Counter[ir.OperandID]

	current ir.BlockID
	cse     *cseScope

	nullSentinel ir.OperandID

	simplifier *Simplifier
	tau        *TauState
}

// New creates a Builder over a fresh Graph, with the null sentinel operand
// pre-allocated since every void-result instruction returns it as Dst.
func New(mgr *types.Manager, flags Flags) *Builder {
	b := &Builder{
		Graph:     ir.NewGraph(),
		Types:     mgr,
		Flags:     flags,
		SessionID: uuid.New(),
		operands:  arena.New[ir.Operand](),
	}
	b.simplifier = NewSimplifier(b)
	b.tau = newTauState()
	b.nullSentinel = b.allocOperand(ir.OperandNullSentinel, nil, "")
	return b
}

// NullSentinel returns the shared zero-width operand substituted as Dst for
// every instruction with no result value.
func (b *Builder) NullSentinel() ir.OperandID { return b.nullSentinel }

// Operand resolves an id to its stable storage.
func (b *Builder) Operand(id ir.OperandID) *ir.Operand {
	if id == ir.NoOperand {
		return nil
	}
	return b.operands.Get(int(id))
}

func (b *Builder) allocOperand(kind ir.OperandKind, t *types.Type, name string) ir.OperandID {
	id := b.operandID.Next()
	idx, op := b.operands.Alloc()
	if int(id) != idx {
		panic("arena/builder operand id desync")
	}
	op.ID = id
	op.Kind = kind
	op.Type = t
	op.Def = ir.NoInst
	op.PiOrigin, op.PiPredicate = ir.NoOperand, ir.NoOperand
	if b.Flags.Has(FlagEmitDebugNames) {
		op.Name = name
	}
	return id
}

// NewTemp allocates a fresh SSA temporary of type t.
func (b *Builder) NewTemp(t *types.Type, name string) ir.OperandID {
	return b.allocOperand(ir.OperandSSATemp, t, name)
}

// NewVariable allocates a variable operand (a local slot not yet SSA-named).
func (b *Builder) NewVariable(t *types.Type, name string) ir.OperandID {
	id := b.allocOperand(ir.OperandVariable, t, name)
	return id
}

// NewSSAVariable allocates one incarnation of a promoted local variable.
func (b *Builder) NewSSAVariable(t *types.Type, name string) ir.OperandID {
	return b.allocOperand(ir.OperandSSAVariable, t, name)
}

// NewPi allocates a range-split refinement of origin under predicate.
func (b *Builder) NewPi(origin, predicate ir.OperandID, t *types.Type) ir.OperandID {
	id := b.allocOperand(ir.OperandPi, t, "")
	op := b.Operand(id)
	op.PiOrigin = origin
	op.PiPredicate = predicate
	return id
}

// SetBlock switches the builder's current block, installing a fresh CSE
// scope since the cache is local to one block.
func (b *Builder) SetBlock(block ir.BlockID) {
	b.current = block
	b.cse = newCSEScope()
}

// CurrentBlock returns the block new instructions are appended to.
func (b *Builder) CurrentBlock() ir.BlockID { return b.current }

// Emit is the single entry point every opcode-specific helper in calls.go/
// magic.go/tau.go funnels through: it runs the simplifier, checks the CSE
// cache, and only falls through to a real Graph.Append when neither
// produces a reusable result.
func (b *Builder) Emit(op ir.Opcode, mod ir.Modifier, resultType *types.Type, src [3]ir.OperandID, payload any) ir.OperandID {
	if b.Flags.Has(FlagEnableSimplify) {
		if folded, ok := b.simplifier.Fold(op, mod, resultType, src); ok {
			return folded
		}
	}

	key := cseKey{op: op, src: src}
	cseEligible := b.Flags.Has(FlagEnableCSE) && isCSEEligible(op)
	if cseEligible {
		if instID, ok := b.cse.lookup(key); ok {
			return b.Graph.Inst(instID).Dst
		}
	}

	var dst ir.OperandID
	if resultType == nil {
		dst = b.nullSentinel
	} else {
		dst = b.NewTemp(resultType, "")
	}
	instID := b.Graph.Append(b.current, op, mod, src, dst, payload)
	b.Graph.Inst(instID).Tau = ir.NoOperand
	if dst != b.nullSentinel {
		b.Operand(dst).Def = instID
	}
	if cseEligible {
		b.cse.insert(key, instID)
	}
	return dst
}

// EmitWithTau is Emit plus recording the tau witness this instruction
// depends on; most memory/call opcodes that can fault go through
// this instead of plain Emit.
func (b *Builder) EmitWithTau(op ir.Opcode, mod ir.Modifier, resultType *types.Type, src [3]ir.OperandID, payload any, tau ir.OperandID) ir.OperandID {
	dst := b.Emit(op, mod, resultType, src, payload)
	if dst != b.nullSentinel {
		inst := b.Graph.Inst(b.Operand(dst).Def)
		inst.Tau = tau
	}
	return dst
}

// isCSEEligible excludes opcodes whose repetition is never redundant:
// control transfers, every call (helpers included), stores, and anything that can throw in a way whose
// second occurrence must still be observed (monitor enter/exit, throws).
func isCSEEligible(op ir.Opcode) bool {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpRem, ir.OpNeg,
		ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpShl, ir.OpShr, ir.OpUShr, ir.OpMin, ir.OpMax, ir.OpAbs,
		ir.OpConvI2L, ir.OpConvI2F, ir.OpConvI2D, ir.OpConvL2I, ir.OpConvL2F, ir.OpConvL2D,
		ir.OpConvF2I, ir.OpConvF2L, ir.OpConvF2D, ir.OpConvD2I, ir.OpConvD2L, ir.OpConvD2F,
		ir.OpConvI2B, ir.OpConvI2C, ir.OpConvI2S,
		ir.OpCmp3Way, ir.OpCmpEQ, ir.OpCmpNE, ir.OpCmpLT, ir.OpCmpLE, ir.OpCmpGT, ir.OpCmpGE,
		ir.OpLoadField, ir.OpLoadStatic, ir.OpLoadElem, ir.OpArrayLength,
		ir.OpInstanceOf, ir.OpTauCheckNull, ir.OpTauCheckBounds, ir.OpTauCheckZero,
		ir.OpTauSafe, ir.OpTauAnd, ir.OpLdVTable:
		return true
	default:
		return false
	}
}
