package translator

import (
	"fmt"

	"jitir/internal/builder"
	"jitir/internal/ir"
	"jitir/internal/prepass"
	"jitir/internal/runtime"
	"jitir/internal/types"
)

// Translator drives the second pass: given the fixpoint-converged
// state from the label prepass, it walks the bytecode a second time,
// modeling the real operand stack and local variables with actual
// ir.OperandIDs and calling into the builder to append instructions.
//
// Local and stack slots are materialized as one persistent logical
// variable per slot for the method's whole lifetime: within a block a
// plain Go map/slice models iload/istore by operand-identity reuse (no IR
// emitted), and at block boundaries an OpLdVar/OpStVar pair reconciles
// that block's view with whatever its predecessors/successors expect,
// standing in for a full incarnation-chain/phi-promotion pass (tracked as
// a documented scope decision rather than built out in full).
type Translator struct {
	b      *builder.Builder
	mgr    *types.Manager
	comp   runtime.Compilation
	method *MethodDesc
	result *prepass.Result

	labels     []int
	labelIndex map[int]int
	blockIDs   map[int]ir.BlockID
	blocks     map[int][]Instr
	dispatch   map[int]ir.BlockID

	entryLabel int
	syncObject ir.OperandID

	retToEntry map[int]int
	returnSite map[int][]int

	locals map[int]ir.OperandID
	stack  []ir.OperandID
}

// Translate runs the full two-pass pipeline over one method body: the
// structural discovery and fixpoint prepass (BuildInput/prepass.Run),
// then the real emission pass, returning the builder holding the
// completed Graph.
func Translate(mgr *types.Manager, comp runtime.Compilation, flags builder.Flags, p Program, method *MethodDesc) (*builder.Builder, error) {
	in, labels, err := BuildInput(mgr, comp, p, method)
	if err != nil {
		return nil, err
	}
	result, err := prepass.Run(mgr, in)
	if err != nil {
		return nil, err
	}

	if !result.AllExceptionTypesResolved() {
		if lazy, _ := comp.ConfigBool("lazy_resolution"); !lazy {
			return unresolvedCatchTypeBody(mgr, flags, method, result.GetProblemTypeToken()), nil
		}
	}

	b := builder.New(mgr, flags)
	t := &Translator{
		b:          b,
		mgr:        mgr,
		comp:       comp,
		method:     method,
		result:     result,
		labels:     labels,
		labelIndex: make(map[int]int, len(labels)),
		blockIDs:   make(map[int]ir.BlockID, len(labels)),
		blocks:     splitBlocks(p, labels),
		dispatch:   make(map[int]ir.BlockID),
		entryLabel: labels[0],
		syncObject: ir.NoOperand,
	}
	for i, l := range labels {
		t.labelIndex[l] = i
		t.blockIDs[l] = b.Graph.NewBlock()
	}
	t.computeSubroutineSites(p)

	for _, l := range labels {
		if err := t.translateBlock(l); err != nil {
			return nil, fmt.Errorf("translator: offset %d: %w", l, err)
		}
	}
	return b, nil
}

// unresolvedCatchTypeBody handles a method body entirely poisoned by an
// unresolved catch type: when a non-lazy host can't resolve a handler's
// exception type, the translator gives up on the real body entirely and
// returns a single block that does nothing but throw a linkage exception,
// [methodEntryLabel, throwLinkingException(enclosingClass, problemToken, CHECKCAST)].
func unresolvedCatchTypeBody(mgr *types.Manager, flags builder.Flags, method *MethodDesc, problemToken *types.Type) *builder.Builder {
	b := builder.New(mgr, flags)
	entry := b.Graph.NewBlock()
	b.SetBlock(entry)
	b.Emit(ir.OpLabel, 0, nil, [3]ir.OperandID{}, &ir.LabelPayload{})
	b.Graph.Block(entry).Label = b.Graph.Block(entry).InstTail
	b.Emit(ir.OpThrowLinkingException, ir.ModExceptionThrowing, nil, [3]ir.OperandID{}, &ir.LinkingThrowPayload{
		EnclosingClass: method.EnclosingClass,
		ProblemToken:   problemToken,
		Operation:      "CHECKCAST",
	})
	return b
}

func (t *Translator) translateBlock(l int) error {
	entryState, ok := t.result.StateAt(l)
	if !ok {
		// Unreachable label (dead code): leave the block shell empty.
		return nil
	}
	blockID := t.blockIDs[l]
	pin := t.result.IsSubroutineEntry(l) || t.isHandlerEntry(l)
	t.emitLabel(blockID, pin)

	blk := t.b.Graph.Block(blockID)
	blk.ExceptionRegion = prepass.InnermostRegion(t.result.ExceptionTable(), l)
	if blk.ExceptionRegion >= 0 {
		dispatch := t.ensureDispatch(blk.ExceptionRegion)
		t.b.Graph.AddEdge(blockID, dispatch, ir.EdgeException)
	}

	t.locals = make(map[int]ir.OperandID, len(entryState.Locals))
	for i, slot := range entryState.Locals {
		if slot.Type == nil {
			continue
		}
		payload := &ir.VarPayload{SlotIndex: i}
		if inc, ok := t.result.GetVarInc(l, i); ok {
			payload.Incarnation = inc.Offset
		}
		t.locals[i] = t.b.Emit(ir.OpLdVar, 0, slot.Type, [3]ir.OperandID{}, payload)
	}
	t.stack = make([]ir.OperandID, len(entryState.Stack))
	for i, slot := range entryState.Stack {
		t.stack[i] = t.b.Emit(ir.OpLdVar, 0, slot.Type, [3]ir.OperandID{}, &ir.VarPayload{SlotIndex: t.stackSlot(i)})
	}

	if t.isHandlerEntry(l) && len(t.stack) > 0 {
		// Real bytecode has no explicit "load the caught exception" opcode;
		// the prepass already seeded this label's entry stack with exactly
		// one slot (the handler's caught type), so the translator
		// synthesizes the catch instruction that actually produces it.
		t.stack[0] = t.b.Emit(ir.OpCatch, 0, entryState.Stack[0].Type, [3]ir.OperandID{}, nil)
	}

	if l == t.entryLabel && t.method.IsSynchronized {
		obj := t.syncMonitorObject()
		tau := t.b.CheckNull(obj)
		t.b.EmitWithTau(ir.OpMonitorEnter, 0, nil, [3]ir.OperandID{obj}, nil, tau)
		t.syncObject = obj
	}

	instrs := t.blocks[l]
	for i := 0; i < len(instrs); {
		if t.b.Flags.Has(builder.FlagRecognizeArrayInit) {
			consumed, err := t.tryArrayInit(instrs, i)
			if err != nil {
				return err
			}
			if consumed > 0 {
				i += consumed
				continue
			}
		}
		if err := t.translateInstr(l, instrs[i]); err != nil {
			return err
		}
		i++
	}
	if n := len(instrs); n > 0 {
		switch instrs[n-1].kind {
		case kindBranch, kindJump, kindSwitch, kindReturn, kindThrow, kindJsr, kindRet:
		default:
			// No terminator: the block falls through to the next label.
			if next, err := t.fallthroughOf(l); err == nil {
				t.flushVars()
				t.b.Graph.AddEdge(blockID, t.blockIDs[next], ir.EdgeUnconditional)
			}
		}
	}
	return nil
}

func (t *Translator) emitLabel(blockID ir.BlockID, pin bool) {
	t.b.SetBlock(blockID)
	t.b.Emit(ir.OpLabel, 0, nil, [3]ir.OperandID{}, &ir.LabelPayload{PinIncoming: pin})
	blk := t.b.Graph.Block(blockID)
	blk.Label = blk.InstTail
}

// flushVars writes every slot still live in this block's working state back
// to its persistent variable, right before the block's terminator so a
// successor's OpLdVar sees this block's contribution.
func (t *Translator) flushVars() {
	for i, v := range t.locals {
		if v == ir.NoOperand {
			continue
		}
		t.b.Emit(ir.OpStVar, 0, nil, [3]ir.OperandID{v}, &ir.VarPayload{SlotIndex: i})
	}
	for i, v := range t.stack {
		t.b.Emit(ir.OpStVar, 0, nil, [3]ir.OperandID{v}, &ir.VarPayload{SlotIndex: t.stackSlot(i)})
	}
}

func (t *Translator) stackSlot(depth int) int { return t.method.MaxLocals + depth }

func (t *Translator) push(v ir.OperandID) { t.stack = append(t.stack, v) }

func (t *Translator) pop() ir.OperandID {
	v := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return v
}

func (t *Translator) popN(n int) []ir.OperandID {
	if n == 0 {
		return nil
	}
	vs := append([]ir.OperandID(nil), t.stack[len(t.stack)-n:]...)
	t.stack = t.stack[:len(t.stack)-n]
	return vs
}

func (t *Translator) isHandlerEntry(l int) bool {
	for _, region := range t.result.ExceptionTable() {
		for _, h := range region.Handlers {
			if h.HandlerLabel == l {
				return true
			}
		}
	}
	return false
}

func (t *Translator) ensureDispatch(regionIdx int) ir.BlockID {
	if id, ok := t.dispatch[regionIdx]; ok {
		return id
	}
	id := prepass.DispatchNodeFor(t.b.Graph, t.dispatch, regionIdx)
	region := t.result.ExceptionTable()[regionIdx]
	for _, h := range region.Handlers {
		if handlerBlock, ok := t.blockIDs[h.HandlerLabel]; ok {
			t.b.Graph.AddEdge(id, handlerBlock, ir.EdgeCatch)
		}
	}
	return id
}

func (t *Translator) fallthroughOf(l int) (int, error) {
	idx, ok := t.labelIndex[l]
	if !ok || idx+1 >= len(t.labels) {
		return 0, fmt.Errorf("block at offset %d has no fallthrough label", l)
	}
	return t.labels[idx+1], nil
}

func (t *Translator) syncMonitorObject() ir.OperandID {
	if !t.method.IsStatic {
		if v, ok := t.locals[0]; ok {
			return v
		}
	}
	classType := t.mgr.GetNamedType(t.method.EnclosingClass, true)
	return t.b.Emit(ir.OpConst, 0, classType, [3]ir.OperandID{}, &ir.ConstPayload{ClassName: t.method.EnclosingClass})
}

// computeSubroutineSites records, for every jsr, the label it falls through
// to once its subroutine returns, and approximates which subroutine each
// ret belongs to via a forward reachability walk from its entry. A
// subroutine entry reached by more than one jsr site (a legacy shared
// finally-block pattern) has no single static successor this core can
// assign a ret's jump to without duplicating the subroutine body per call
// site, which is out of scope for treating jsr/ret as structural jumps;
// kindRet reports errUnresolvedSubroutine for that case instead of
// guessing one of the sites.
func (t *Translator) computeSubroutineSites(p Program) {
	t.returnSite = map[int][]int{}
	for i, in := range p.Instrs {
		if in.kind != kindJsr {
			continue
		}
		fallthroughOffset := in.Offset + 1
		if i+1 < len(p.Instrs) {
			fallthroughOffset = p.Instrs[i+1].Offset
		}
		sites := t.returnSite[in.target]
		alreadyKnown := false
		for _, s := range sites {
			if s == fallthroughOffset {
				alreadyKnown = true
				break
			}
		}
		if !alreadyKnown {
			t.returnSite[in.target] = append(sites, fallthroughOffset)
		}
	}

	t.retToEntry = map[int]int{}
	edges := structuralEdges(t.labels, t.blocks)
	succs := map[int][]int{}
	for _, e := range edges {
		succs[e.From] = append(succs[e.From], e.To)
	}
	for entry := range t.returnSite {
		visited := map[int]bool{entry: true}
		queue := []int{entry}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			instrs := t.blocks[cur]
			if len(instrs) > 0 && instrs[len(instrs)-1].kind == kindRet {
				if _, exists := t.retToEntry[cur]; !exists {
					t.retToEntry[cur] = entry
				}
				continue
			}
			for _, next := range succs[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
}

func (t *Translator) translateInstr(l int, in Instr) error {
	switch in.kind {
	case kindSimple:
		return t.translateSimple(in)
	case kindConst:
		return t.translateConst(in)
	case kindIntImmediate:
		dst := t.b.Emit(ir.OpConst, 0, elemKindType(t.mgr, in.elemKind), [3]ir.OperandID{}, &ir.ConstPayload{IntVal: in.intVal})
		t.push(dst)
		return nil
	case kindFloatImmediate:
		dst := t.b.Emit(ir.OpConst, 0, elemKindType(t.mgr, in.elemKind), [3]ir.OperandID{}, &ir.ConstPayload{FloatVal: in.floatVal})
		t.push(dst)
		return nil
	case kindNullConst:
		dst := t.b.Emit(ir.OpConst, 0, t.mgr.Null(), [3]ir.OperandID{}, &ir.ConstPayload{})
		t.push(dst)
		return nil
	case kindLoadLocal:
		v, ok := t.locals[in.slot]
		if !ok {
			v = t.b.Emit(ir.OpLdVar, 0, elemKindType(t.mgr, in.elemKind), [3]ir.OperandID{}, &ir.VarPayload{SlotIndex: in.slot})
			t.locals[in.slot] = v
		}
		t.push(v)
		return nil
	case kindStoreLocal:
		t.locals[in.slot] = t.pop()
		return nil
	case kindFieldAccess:
		return t.translateField(in)
	case kindArrayAccess:
		return t.translateArray(in)
	case kindBranch:
		return t.translateBranch(l, in)
	case kindJump:
		target := t.blockIDs[in.target]
		t.flushVars()
		t.b.Emit(ir.OpJump, 0, nil, [3]ir.OperandID{}, &ir.BranchPayload{Target: target})
		t.b.Graph.AddEdge(t.blockIDs[l], target, ir.EdgeUnconditional)
		return nil
	case kindSwitch:
		return t.translateSwitch(l, in)
	case kindInvoke:
		return t.translateInvoke(in)
	case kindNew:
		target, err := t.comp.GetNamedType(in.cpIndex)
		if err != nil {
			return err
		}
		dst := t.b.Emit(ir.OpNewObj, ir.ModExceptionThrowing, target, [3]ir.OperandID{}, &ir.TypePayload{Target: target})
		t.push(dst)
		return nil
	case kindNewArray:
		count := t.pop()
		elem := elemKindType(t.mgr, in.elemKind)
		dst := t.b.Emit(ir.OpNewArray, ir.ModExceptionThrowing, t.mgr.GetArrayType(elem), [3]ir.OperandID{count}, &ir.TypePayload{Target: elem, Dims: 1})
		t.push(dst)
		return nil
	case kindANewArray:
		count := t.pop()
		elem, err := t.comp.GetNamedType(in.cpIndex)
		if err != nil {
			return err
		}
		dst := t.b.Emit(ir.OpNewArray, ir.ModExceptionThrowing, t.mgr.GetArrayType(elem), [3]ir.OperandID{count}, &ir.TypePayload{Target: elem, Dims: 1})
		t.push(dst)
		return nil
	case kindMultiANewArray:
		counts := t.popN(in.dims)
		elem, err := t.comp.GetNamedType(in.cpIndex)
		if err != nil {
			return err
		}
		var src [3]ir.OperandID
		for i := 0; i < len(counts) && i < 3; i++ {
			src[i] = counts[i]
		}
		dst := t.b.Emit(ir.OpNewMultiArray, ir.ModExceptionThrowing, t.mgr.GetArrayType(elem), src, &ir.TypePayload{Target: elem, Dims: in.dims})
		t.push(dst)
		return nil
	case kindTypeCheck:
		obj := t.pop()
		target, err := t.comp.GetNamedType(in.cpIndex)
		if err != nil {
			return err
		}
		if in.isCast {
			dst := t.b.CheckCast(obj, target)
			t.push(dst)
			return nil
		}
		dst := t.b.Emit(ir.OpInstanceOf, 0, t.mgr.Boolean(), [3]ir.OperandID{obj}, &ir.TypePayload{Target: target})
		t.push(dst)
		return nil
	case kindMonitor:
		obj := t.pop()
		tau := t.b.CheckNull(obj)
		op := ir.OpMonitorEnter
		if !in.isEnter {
			op = ir.OpMonitorExit
		}
		t.b.EmitWithTau(op, 0, nil, [3]ir.OperandID{obj}, nil, tau)
		return nil
	case kindReturn:
		var src [3]ir.OperandID
		if in.elemKind != runtime.ElemInvalid {
			src[0] = t.pop()
		}
		t.flushVars()
		if t.method.IsSynchronized && t.syncObject != ir.NoOperand {
			t.b.Emit(ir.OpMonitorExit, 0, nil, [3]ir.OperandID{t.syncObject}, nil)
		}
		t.b.Emit(ir.OpReturn, 0, nil, src, nil)
		return nil
	case kindThrow:
		exc := t.pop()
		tau := t.b.CheckNull(exc)
		t.flushVars()
		t.b.EmitWithTau(ir.OpThrow, 0, nil, [3]ir.OperandID{exc}, nil, tau)
		return nil
	case kindJsr:
		entryBlock := t.blockIDs[in.target]
		t.flushVars()
		t.b.Emit(ir.OpJump, 0, nil, [3]ir.OperandID{}, &ir.BranchPayload{Target: entryBlock})
		t.b.Graph.AddEdge(t.blockIDs[l], entryBlock, ir.EdgeUnconditional)
		return nil
	case kindRet:
		entry, ok := t.retToEntry[l]
		if !ok {
			return errUnresolvedSubroutine(l, "ret has no known subroutine entry")
		}
		sites, ok := t.returnSite[entry]
		if !ok || len(sites) == 0 {
			return errUnresolvedSubroutine(l, fmt.Sprintf("subroutine entry %d has no known return site", entry))
		}
		if len(sites) > 1 {
			return errUnresolvedSubroutine(l, fmt.Sprintf(
				"subroutine entry %d is called from %d distinct jsr sites; this core treats jsr/ret as structural jumps and cannot assign a single successor to a shared subroutine without per-call-site duplication",
				entry, len(sites)))
		}
		target := t.blockIDs[sites[0]]
		t.flushVars()
		t.b.Emit(ir.OpJump, 0, nil, [3]ir.OperandID{}, &ir.BranchPayload{Target: target})
		t.b.Graph.AddEdge(t.blockIDs[l], target, ir.EdgeUnconditional)
		return nil
	default:
		return nil
	}
}

func (t *Translator) translateSimple(in Instr) error {
	if isStackShuffle(in.simple) {
		t.stack = shuffleStack(in.simple, t.stack)
		return nil
	}
	info, ok := simpleOpTable[in.simple]
	if !ok {
		return errUnknownOpcode(in.Offset, int(in.simple))
	}
	args := t.popN(info.Pops)
	var src [3]ir.OperandID
	copy(src[:], args)

	var tau ir.OperandID = ir.NoOperand
	switch in.simple {
	case runtime.OpIDiv, runtime.OpLDiv, runtime.OpIRem, runtime.OpLRem:
		tau = t.b.CheckZero(args[1])
	}

	resultType := info.resultType(t.mgr)
	var dst ir.OperandID
	if tau != ir.NoOperand {
		dst = t.b.EmitWithTau(info.IROp, info.Mod, resultType, src, nil, tau)
	} else {
		dst = t.b.Emit(info.IROp, info.Mod, resultType, src, nil)
	}
	if info.HasResult {
		t.push(dst)
	}
	return nil
}

func (t *Translator) translateConst(in Instr) error {
	ct, err := t.comp.GetConstantType(in.cpIndex)
	if err != nil {
		return err
	}
	cv, err := t.comp.GetConstantValue(in.cpIndex)
	if err != nil {
		return err
	}
	dst := t.b.Emit(ir.OpConst, 0, ct, [3]ir.OperandID{}, constPayloadFor(ct, cv))
	t.push(dst)
	return nil
}

func constPayloadFor(ty *types.Type, v interface{}) *ir.ConstPayload {
	p := &ir.ConstPayload{}
	switch val := v.(type) {
	case int64:
		p.IntVal = val
	case int32:
		p.IntVal = int64(val)
	case int:
		p.IntVal = int64(val)
	case float32:
		p.FloatVal = float64(val)
	case float64:
		p.FloatVal = val
	case string:
		p.StringVal = val
	}
	if ty != nil && ty.Kind() == types.KindClass {
		p.ClassName = ty.ClassName()
	}
	return p
}

func (t *Translator) fieldInfo(in Instr) (runtime.FieldInfo, error) {
	if in.isStatic {
		return t.comp.GetStaticField(in.cpIndex)
	}
	return t.comp.GetNonStaticField(in.cpIndex)
}

func (t *Translator) translateField(in Instr) error {
	fi, err := t.fieldInfo(in)
	if err != nil {
		return err
	}
	payload := &ir.FieldPayload{EnclosingClass: fi.EnclosingClass, FieldName: fi.Name, FieldType: fi.Type, ConstPoolIndex: in.cpIndex}
	mod := ir.Modifier(0)
	if fi.Volatile {
		mod |= ir.ModVolatile
	}

	if in.isStore {
		val := t.pop()
		if in.isStatic {
			t.b.StoreStatic(val, fi.Type, mod, payload)
			return nil
		}
		recv := t.pop()
		tau := t.b.CheckNull(recv)
		t.b.StoreField(recv, val, tau, fi.Type, mod, payload)
		return nil
	}

	if in.isStatic {
		dst := t.b.LoadStatic(fi.Type, mod, payload)
		t.push(dst)
		return nil
	}
	recv := t.pop()
	tau := t.b.CheckNull(recv)
	dst := t.b.LoadField(recv, tau, fi.Type, mod, payload)
	t.push(dst)
	return nil
}

func (t *Translator) translateArray(in Instr) error {
	elem := elemKindType(t.mgr, in.elemKind)
	if in.isStore {
		val := t.pop()
		idx := t.pop()
		arr := t.pop()
		tau := t.b.And(t.b.CheckNull(arr), t.b.CheckBounds(arr, idx))
		mod := ir.Modifier(0)
		if in.elemKind == runtime.ElemRef {
			if t.b.Flags.Has(builder.FlagExpandElemTypeChecks) {
				tau = t.b.And(tau, t.b.CheckElemType(arr, val))
			} else {
				mod |= ir.ModImplicitElemTypeCheck
			}
		}
		t.b.StoreElem(arr, idx, val, tau, mod)
		return nil
	}
	idx := t.pop()
	arr := t.pop()
	tau := t.b.And(t.b.CheckNull(arr), t.b.CheckBounds(arr, idx))
	dst := t.b.LoadElem(arr, idx, tau, elem)
	t.push(dst)
	return nil
}

func (t *Translator) translateBranch(l int, in Instr) error {
	pred := runtime.BranchPredicate(in.predicate)
	arity := branchArity(pred)
	vals := t.popN(arity)
	var src [3]ir.OperandID
	copy(src[:], vals)
	mod := ir.Modifier(0).WithPredicate(irPredicateFor(pred))

	trueBlock := t.blockIDs[in.target]
	fallthroughLabel, err := t.fallthroughOf(l)
	if err != nil {
		return err
	}
	falseBlock := t.blockIDs[fallthroughLabel]

	t.flushVars()
	t.b.Emit(ir.OpBranch, mod, nil, src, &ir.BranchPayload{Target: trueBlock, FalseTarget: falseBlock})
	t.b.Graph.AddEdge(t.blockIDs[l], trueBlock, ir.EdgeTrue)
	t.b.Graph.AddEdge(t.blockIDs[l], falseBlock, ir.EdgeFalse)
	return nil
}

func irPredicateFor(p runtime.BranchPredicate) ir.Predicate {
	switch p {
	case runtime.BrEQ, runtime.BrICmpEQ, runtime.BrACmpEQ, runtime.BrNull:
		return ir.PredEQ
	case runtime.BrNE, runtime.BrICmpNE, runtime.BrACmpNE, runtime.BrNonNull:
		return ir.PredNE
	case runtime.BrLT, runtime.BrICmpLT:
		return ir.PredLT
	case runtime.BrLE, runtime.BrICmpLE:
		return ir.PredLE
	case runtime.BrGT, runtime.BrICmpGT:
		return ir.PredGT
	case runtime.BrGE, runtime.BrICmpGE:
		return ir.PredGE
	default:
		return ir.PredNone
	}
}

func (t *Translator) translateSwitch(l int, in Instr) error {
	key := t.pop()
	targets := make([]ir.BlockID, len(in.switchDsts))
	for i, off := range in.switchDsts {
		targets[i] = t.blockIDs[off]
	}
	def := t.blockIDs[in.switchDef]

	t.flushVars()
	t.b.Emit(ir.OpSwitch, 0, nil, [3]ir.OperandID{key}, &ir.SwitchPayload{Keys: in.switchKeys, Targets: targets, Default: def})
	for _, tb := range targets {
		t.b.Graph.AddEdge(t.blockIDs[l], tb, ir.EdgeSwitchCase)
	}
	t.b.Graph.AddEdge(t.blockIDs[l], def, ir.EdgeSwitchCase)
	return nil
}

func (t *Translator) translateInvoke(in Instr) error {
	mi, err := resolveMethod(t.comp, in)
	if err != nil {
		return err
	}
	args := t.popN(len(mi.ParamTypes))
	var recv ir.OperandID = ir.NoOperand
	if !mi.Static {
		recv = t.pop()
	}

	if builder.IsMagicClass(mi.EnclosingClass) && builder.IsMagicMethod(mi.Name) {
		allArgs := args
		if recv != ir.NoOperand {
			allArgs = append([]ir.OperandID{recv}, args...)
		}
		dst := t.b.CallMagic(mi.Name, allArgs, mi.ReturnType)
		if mi.ReturnType != nil && mi.ReturnType.Kind() != types.KindVoid {
			t.push(dst)
		}
		return nil
	}

	if builder.IsMathIntrinsicClass(mi.EnclosingClass) && builder.IsMathIntrinsicMethod(mi.Name) {
		if dst, ok := t.b.CallMathIntrinsic(mi.Name, args, mi.ReturnType); ok {
			t.push(dst)
			return nil
		}
	}

	var tau ir.OperandID = ir.NoOperand
	var callArgs []ir.OperandID
	if recv != ir.NoOperand {
		tau = t.b.CheckNull(recv)
		callArgs = append([]ir.OperandID{recv}, args...)
	} else {
		callArgs = args
	}

	var dst ir.OperandID
	switch in.invokeKind {
	case runtime.InvokeStatic, runtime.InvokeSpecial:
		dst = t.b.CallDirect(&mi, callArgs, tau)
	case runtime.InvokeInterface:
		dst = t.b.CallInterface(&mi, callArgs, tau)
	default:
		dst = t.b.CallVirtual(&mi, callArgs, tau)
	}
	if mi.ReturnType != nil && mi.ReturnType.Kind() != types.KindVoid {
		t.push(dst)
	}
	return nil
}
