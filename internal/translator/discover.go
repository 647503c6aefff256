package translator

import (
	"fmt"
	"sort"

	"jitir/internal/prepass"
	"jitir/internal/runtime"
	"jitir/internal/types"
)

// BuildInput performs the structural half of the label prepass: it
// walks the already-decoded Program once to find block boundaries and
// control-flow edges, builds the per-label abstract Transfer closures, and
// assembles the prepass.Input that prepass.Run's fixpoint consumes. The
// host never runs this directly; it is the translator's own first pass,
// kept separate from prepass.Run since finding edges from raw bytecode
// shape is a translator concern while the worklist/merge algebra is not
//.
//
// It returns the sorted block-boundary offsets alongside Input so the
// second pass (translator.go) can reuse the identical block split rather
// than recomputing it.
func BuildInput(mgr *types.Manager, comp runtime.Compilation, p Program, method *MethodDesc) (prepass.Input, []int, error) {
	labels := blockBoundaries(p, method)
	if len(labels) == 0 {
		return prepass.Input{}, nil, fmt.Errorf("translator: empty method body")
	}
	blocks := splitBlocks(p, labels)

	raw, err := rawCatchBlocks(mgr, comp, method)
	if err != nil {
		return prepass.Input{}, nil, err
	}
	normalized := prepass.NormalizeRegions(raw)

	edges := structuralEdges(labels, blocks)
	excEdges, err := exceptionEdges(normalized, labels)
	if err != nil {
		return prepass.Input{}, nil, err
	}
	edges = append(edges, excEdges...)

	incTab := newIncarnationTable()
	transfer := make(map[int]prepass.Transfer, len(labels))
	for _, l := range labels {
		transfer[l] = abstractTransfer(mgr, comp, blocks[l], incTab)
	}

	entry, err := entryState(mgr, method)
	if err != nil {
		return prepass.Input{}, nil, err
	}

	in := prepass.Input{
		Entry:             labels[0],
		EntryState:        entry,
		Edges:             edges,
		Transfer:          transfer,
		RawRegions:        raw,
		SubroutineEntries: subroutineEntries(p),
	}
	return in, labels, nil
}

// blockBoundaries finds every bytecode offset that starts a basic block:
// the method entry, every branch/jump/switch/jsr target and its
// fallthrough successor, and every exception-table boundary.
func blockBoundaries(p Program, method *MethodDesc) []int {
	set := map[int]bool{}
	if len(p.Instrs) == 0 {
		return nil
	}
	set[p.Instrs[0].Offset] = true

	nextOffset := func(i int) int {
		if i+1 < len(p.Instrs) {
			return p.Instrs[i+1].Offset
		}
		return p.Instrs[i].Offset + 1
	}
	for i, in := range p.Instrs {
		switch in.kind {
		case kindBranch:
			set[in.target] = true
			set[nextOffset(i)] = true
		case kindJump:
			set[in.target] = true
			set[nextOffset(i)] = true
		case kindSwitch:
			set[in.switchDef] = true
			for _, t := range in.switchDsts {
				set[t] = true
			}
			set[nextOffset(i)] = true
		case kindReturn, kindThrow:
			set[nextOffset(i)] = true
		case kindJsr:
			set[in.target] = true
			set[nextOffset(i)] = true
		case kindRet:
			set[nextOffset(i)] = true
		}
	}
	for _, et := range method.ExceptionTable {
		set[et.TryBegin] = true
		set[et.TryEnd] = true
		set[et.HandlerBegin] = true
	}

	out := make([]int, 0, len(set))
	for off := range set {
		out = append(out, off)
	}
	sort.Ints(out)
	return out
}

// blockOf returns the label covering offset: the largest boundary not
// greater than offset.
func blockOf(labels []int, offset int) int {
	idx := sort.SearchInts(labels, offset+1) - 1
	if idx < 0 {
		idx = 0
	}
	return labels[idx]
}

func splitBlocks(p Program, labels []int) map[int][]Instr {
	blocks := make(map[int][]Instr, len(labels))
	for _, in := range p.Instrs {
		l := blockOf(labels, in.Offset)
		blocks[l] = append(blocks[l], in)
	}
	return blocks
}

// structuralEdges derives each block's outgoing control-flow edges from its
// final instruction. A block with no decoded instructions (an unreachable
// label introduced only by exception-table bookkeeping) contributes none.
func structuralEdges(labels []int, blocks map[int][]Instr) []prepass.Edge {
	var edges []prepass.Edge
	for idx, l := range labels {
		instrs := blocks[l]
		if len(instrs) == 0 {
			continue
		}
		last := instrs[len(instrs)-1]
		hasNext := idx+1 < len(labels)
		var nextLabel int
		if hasNext {
			nextLabel = labels[idx+1]
		}
		switch last.kind {
		case kindBranch:
			edges = append(edges, prepass.Edge{From: l, To: last.target})
			if hasNext {
				edges = append(edges, prepass.Edge{From: l, To: nextLabel})
			}
		case kindJump:
			edges = append(edges, prepass.Edge{From: l, To: last.target})
		case kindSwitch:
			edges = append(edges, prepass.Edge{From: l, To: last.switchDef})
			for _, t := range last.switchDsts {
				edges = append(edges, prepass.Edge{From: l, To: t})
			}
		case kindReturn, kindThrow:
			// Terminal: no successor.
		case kindJsr:
			// A subroutine call is modeled as reaching both its entry and
			// (once the subroutine returns via ret) its own fallthrough,
			// since the abstract interpreter never tracks the dynamic
			// return address a real ret would resolve, a legacy construct
			// retired from class files since Java 7.
			edges = append(edges, prepass.Edge{From: l, To: last.target})
			if hasNext {
				edges = append(edges, prepass.Edge{From: l, To: nextLabel})
			}
		case kindRet:
			// No static successor: the translator's own jsr/ret
			// bookkeeping (translator.go) wires the real CFG edge back to
			// the jsr's fallthrough once it knows which subroutine this ret
			// belongs to, and rejects a subroutine reached from more than
			// one jsr site.
		default:
			if hasNext {
				edges = append(edges, prepass.Edge{From: l, To: nextLabel})
			}
		}
	}
	return edges
}

// exceptionEdges adds a catch edge from every block lying fully inside a
// normalized region to each of that region's handlers, in handler order.
func exceptionEdges(regions []prepass.CatchBlock, labels []int) ([]prepass.Edge, error) {
	var edges []prepass.Edge
	for _, region := range regions {
		for _, l := range labels {
			if !region.Covers(l) {
				continue
			}
			for _, h := range region.Handlers {
				edges = append(edges, prepass.Edge{
					From: l, To: h.HandlerLabel, IsCatch: true, ExceptionType: h.ExceptionType,
				})
			}
		}
	}
	return edges, nil
}

func rawCatchBlocks(mgr *types.Manager, comp runtime.Compilation, method *MethodDesc) ([]prepass.CatchBlock, error) {
	var out []prepass.CatchBlock
	index := map[[2]int]int{}
	for _, et := range method.ExceptionTable {
		h, err := catchHandler(mgr, comp, et)
		if err != nil {
			return nil, err
		}
		key := [2]int{et.TryBegin, et.TryEnd}
		if idx, ok := index[key]; ok {
			out[idx].Handlers = append(out[idx].Handlers, h)
			continue
		}
		index[key] = len(out)
		out = append(out, prepass.CatchBlock{Begin: et.TryBegin, End: et.TryEnd, Handlers: []prepass.CatchHandler{h}})
	}
	return out, nil
}

func catchHandler(mgr *types.Manager, comp runtime.Compilation, et ExceptionTableEntry) (prepass.CatchHandler, error) {
	if et.CatchTypeCPIndex == 0 {
		return prepass.CatchHandler{
			ExceptionType: mgr.GetNamedType("java/lang/Throwable", true),
			HandlerLabel:  et.HandlerBegin,
		}, nil
	}
	t, err := comp.GetNamedType(et.CatchTypeCPIndex)
	if err != nil {
		return prepass.CatchHandler{}, err
	}
	return prepass.CatchHandler{ExceptionType: t, HandlerLabel: et.HandlerBegin}, nil
}

func subroutineEntries(p Program) map[int]bool {
	out := map[int]bool{}
	for _, in := range p.Instrs {
		if in.kind == kindJsr {
			out[in.target] = true
		}
	}
	return out
}

func entryState(mgr *types.Manager, method *MethodDesc) (prepass.StateInfo, error) {
	var locals []prepass.StateInfoSlot
	if !method.IsStatic {
		locals = append(locals, prepass.StateInfoSlot{Type: mgr.GetNamedType(method.EnclosingClass, true)})
	}
	for _, pt := range method.ParamTypes {
		locals = append(locals, prepass.StateInfoSlot{Type: pt})
		for i := 1; i < slotWidth(pt); i++ {
			locals = append(locals, prepass.StateInfoSlot{})
		}
	}
	return prepass.StateInfo{Locals: locals}, nil
}

// incarnationTable allocates one *prepass.VarIncarnation per (bytecode
// offset, local slot) store site for the whole method, memoized so that
// revisiting a block under the fixpoint worklist always observes the same
// incarnation object — StateInfoSlot.Merge dedups incoming chains by
// pointer identity, so a fresh allocation on every revisit would defeat
// the merge and never converge on "no new incarnation seen".
type incarnationTable struct {
	entries map[int64]*prepass.VarIncarnation
}

func newIncarnationTable() *incarnationTable {
	return &incarnationTable{entries: make(map[int64]*prepass.VarIncarnation)}
}

func (it *incarnationTable) forStore(offset, slot int, t *types.Type) *prepass.VarIncarnation {
	key := int64(offset)<<32 | int64(uint32(slot))
	if inc, ok := it.entries[key]; ok {
		return inc
	}
	inc := &prepass.VarIncarnation{SlotIndex: slot, Offset: offset, Type: t}
	it.entries[key] = inc
	return inc
}

// abstractTransfer replays a block's instructions against the type-only
// StateInfo lattice, producing the Transfer the fixpoint worklist calls.
func abstractTransfer(mgr *types.Manager, comp runtime.Compilation, instrs []Instr, incTab *incarnationTable) prepass.Transfer {
	return func(in prepass.StateInfo) (prepass.StateInfo, error) {
		st := in.Clone()
		for _, ins := range instrs {
			var err error
			st, err = abstractStep(mgr, comp, st, ins, incTab)
			if err != nil {
				return prepass.StateInfo{}, err
			}
		}
		return st, nil
	}
}

func pushSlot(st prepass.StateInfo, t *types.Type) prepass.StateInfo {
	st.Stack = append(st.Stack, prepass.StateInfoSlot{Type: t})
	return st
}

func popSlots(st prepass.StateInfo, n int) prepass.StateInfo {
	st.Stack = st.Stack[:len(st.Stack)-n]
	return st
}

func ensureLocals(st *prepass.StateInfo, slot int) {
	for len(st.Locals) <= slot {
		st.Locals = append(st.Locals, prepass.StateInfoSlot{})
	}
}

func abstractStep(mgr *types.Manager, comp runtime.Compilation, st prepass.StateInfo, in Instr, incTab *incarnationTable) (prepass.StateInfo, error) {
	switch in.kind {
	case kindSimple:
		if isStackShuffle(in.simple) {
			st.Stack = shuffleStack(in.simple, st.Stack)
			return st, nil
		}
		info, ok := simpleOpTable[in.simple]
		if !ok {
			return st, errUnknownOpcode(in.Offset, int(in.simple))
		}
		st = popSlots(st, info.Pops)
		if info.HasResult {
			st = pushSlot(st, info.resultType(mgr))
		}
		return st, nil

	case kindConst:
		t, err := comp.GetConstantType(in.cpIndex)
		if err != nil {
			return st, err
		}
		return pushSlot(st, t), nil

	case kindIntImmediate, kindFloatImmediate:
		return pushSlot(st, elemKindType(mgr, in.elemKind)), nil

	case kindNullConst:
		return pushSlot(st, mgr.Null()), nil

	case kindLoadLocal:
		ensureLocals(&st, in.slot)
		return pushSlot(st, st.Locals[in.slot].Type), nil

	case kindStoreLocal:
		v := st.Stack[len(st.Stack)-1].Type
		st = popSlots(st, 1)
		ensureLocals(&st, in.slot)
		inc := incTab.forStore(in.Offset, in.slot, v)
		st.Locals[in.slot] = prepass.StateInfoSlot{Type: v, Vars: prepass.NewSlotVariable(inc)}
		return st, nil

	case kindFieldAccess:
		t, err := fieldType(comp, in)
		if err != nil {
			return st, err
		}
		if in.isStore {
			st = popSlots(st, 1)
			if !in.isStatic {
				st = popSlots(st, 1)
			}
			return st, nil
		}
		if !in.isStatic {
			st = popSlots(st, 1)
		}
		return pushSlot(st, t), nil

	case kindArrayAccess:
		elem := elemKindType(mgr, in.elemKind)
		if in.isStore {
			return popSlots(st, 3), nil
		}
		st = popSlots(st, 2)
		return pushSlot(st, elem), nil

	case kindBranch:
		return popSlots(st, branchArity(runtime.BranchPredicate(in.predicate))), nil

	case kindJump:
		return st, nil

	case kindSwitch:
		return popSlots(st, 1), nil

	case kindInvoke:
		return invokeEffect(comp, st, in)

	case kindNew:
		t, err := comp.GetNamedType(in.cpIndex)
		if err != nil {
			return st, err
		}
		return pushSlot(st, t), nil

	case kindNewArray:
		st = popSlots(st, 1)
		return pushSlot(st, mgr.GetArrayType(elemKindType(mgr, in.elemKind))), nil

	case kindANewArray:
		elem, err := comp.GetNamedType(in.cpIndex)
		if err != nil {
			return st, err
		}
		st = popSlots(st, 1)
		return pushSlot(st, mgr.GetArrayType(elem)), nil

	case kindMultiANewArray:
		elem, err := comp.GetNamedType(in.cpIndex)
		if err != nil {
			return st, err
		}
		st = popSlots(st, in.dims)
		return pushSlot(st, mgr.GetArrayType(elem)), nil

	case kindTypeCheck:
		if in.isCast {
			t, err := comp.GetNamedType(in.cpIndex)
			if err != nil {
				return st, err
			}
			st = popSlots(st, 1)
			return pushSlot(st, t), nil
		}
		st = popSlots(st, 1)
		return pushSlot(st, mgr.Boolean()), nil

	case kindMonitor:
		return popSlots(st, 1), nil

	case kindReturn:
		if in.elemKind == runtime.ElemInvalid {
			return st, nil
		}
		return popSlots(st, 1), nil

	case kindThrow:
		return popSlots(st, 1), nil

	case kindJsr, kindRet:
		// Stack-neutral for abstract-typing purposes; see structuralEdges.
		return st, nil

	default:
		return st, nil
	}
}

func fieldType(comp runtime.Compilation, in Instr) (*types.Type, error) {
	if in.isStatic {
		f, err := comp.GetStaticField(in.cpIndex)
		if err != nil {
			return nil, err
		}
		return f.Type, nil
	}
	f, err := comp.GetNonStaticField(in.cpIndex)
	if err != nil {
		return nil, err
	}
	return f.Type, nil
}

func invokeEffect(comp runtime.Compilation, st prepass.StateInfo, in Instr) (prepass.StateInfo, error) {
	mi, err := resolveMethod(comp, in)
	if err != nil {
		return st, err
	}
	n := len(mi.ParamTypes)
	if !mi.Static {
		n++
	}
	st = popSlots(st, n)
	if mi.ReturnType != nil && mi.ReturnType.Kind() != types.KindVoid {
		st = pushSlot(st, mi.ReturnType)
	}
	return st, nil
}

func resolveMethod(comp runtime.Compilation, in Instr) (runtime.MethodInfo, error) {
	switch in.invokeKind {
	case runtime.InvokeStatic:
		return comp.GetStaticMethod(in.cpIndex)
	case runtime.InvokeSpecial:
		return comp.GetSpecialMethod(in.cpIndex)
	case runtime.InvokeInterface:
		return comp.GetInterfaceMethod(in.cpIndex)
	default:
		return comp.GetVirtualMethod(in.cpIndex)
	}
}

func branchArity(p runtime.BranchPredicate) int {
	switch p {
	case runtime.BrEQ, runtime.BrNE, runtime.BrLT, runtime.BrLE, runtime.BrGT, runtime.BrGE,
		runtime.BrNull, runtime.BrNonNull:
		return 1
	default:
		return 2
	}
}
