package prepass

import "jitir/internal/types"

// Edge is a structural control-flow hint the host (or the translator, which
// has already walked the bytecode once to find branch targets) supplies to
// the prepass: "control can reach label To from label From". The prepass
// never decodes bytecode itself (decoding is explicitly out of scope); it
// only needs to know where the edges are and what each block does to the
// abstract state flowing through it.
type Edge struct {
	From, To int
	IsCatch  bool

	// ExceptionType is the handler's caught type for a catch edge (nil for
	// a catch-all). Unused for ordinary control-flow edges.
	ExceptionType *types.Type
}

// Transfer computes a block's outgoing abstract state from its incoming
// state. The translator supplies one Transfer per label, built from its own
// per-opcode stack-effect knowledge; the prepass's job is purely the
// worklist fixpoint and the merge algebra in stateinfo.go.
type Transfer func(in StateInfo) (StateInfo, error)

// Input is everything Run needs to discover block state and normalize
// exception regions for one method body.
type Input struct {
	Entry             int
	EntryState        StateInfo
	Edges             []Edge
	Transfer          map[int]Transfer
	RawRegions        []CatchBlock
	SubroutineEntries map[int]bool
}

// Result is the prepass's output: the fixpoint state-info at every label,
// the normalized exception-region table, and the subroutine-entry set the
// translator needs for JSR/RET lowering.
type Result struct {
	mgr        *types.Manager
	state      map[int]StateInfo
	regions    []CatchBlock
	subEntries map[int]bool
	visited    map[int]bool
}

// Run performs the fixpoint worklist: seed the entry label's state, then
// repeatedly pop a dirty label, run its Transfer, and propagate the result
// along its outgoing edges, merging into whatever state a successor label
// has already accumulated. Types only generalize along the lattice and
// incarnation-bearing locals only grow, so this always terminates: the
// stack/local type lattice has finite height per slot.
func Run(mgr *types.Manager, in Input) (*Result, error) {
	state := map[int]StateInfo{in.Entry: in.EntryState.Clone()}
	visited := map[int]bool{}
	succs := make(map[int][]Edge, len(in.Edges))
	for _, e := range in.Edges {
		succs[e.From] = append(succs[e.From], e)
	}

	queue := []int{in.Entry}
	queued := map[int]bool{in.Entry: true}

	for len(queue) > 0 {
		label := queue[0]
		queue = queue[1:]
		queued[label] = false
		visited[label] = true

		transfer, ok := in.Transfer[label]
		if !ok {
			// A dispatch-only label (pure exception merge point) has no
			// transfer of its own; it only ever receives state, it never
			// originates any.
			continue
		}
		entry := state[label]
		out, err := transfer(entry)
		if err != nil {
			return nil, err
		}
		for _, e := range succs[label] {
			// A catch edge's incoming state is not the guarded block's exit
			// state: the operand stack is cleared to just the caught
			// exception and the locals are whatever was live entering the
			// guarded range, exactly as the real handler-entry convention
			// works (the throwing instruction's own partial stack effects
			// never reach the handler).
			propagated := out
			if e.IsCatch {
				propagated = StateInfo{
					Stack:  []StateInfoSlot{{Type: e.ExceptionType}},
					Locals: append([]StateInfoSlot(nil), entry.Locals...),
				}
			}
			next, seen := state[e.To]
			if !seen {
				state[e.To] = propagated.Clone()
				if !queued[e.To] {
					queue = append(queue, e.To)
					queued[e.To] = true
				}
				continue
			}
			merged, changed, err := next.Merge(mgr, propagated)
			if err != nil {
				return nil, err
			}
			if changed {
				state[e.To] = merged
				if !queued[e.To] {
					queue = append(queue, e.To)
					queued[e.To] = true
				}
			}
		}
	}

	return &Result{
		mgr:        mgr,
		state:      state,
		regions:    NormalizeRegions(in.RawRegions),
		subEntries: in.SubroutineEntries,
		visited:    visited,
	}, nil
}

// IsLabel reports whether offset was discovered as a block boundary by the
// fixpoint (i.e. some edge targets it, or it is the method entry).
func (r *Result) IsLabel(offset int) bool {
	_, ok := r.state[offset]
	return ok
}

// IsSubroutineEntry reports whether offset is a JSR target.
func (r *Result) IsSubroutineEntry(offset int) bool {
	return r.subEntries[offset]
}

// IsReachable reports whether the fixpoint ever visited offset; an
// unreachable label (dead code after an unconditional throw, say) still
// has no recorded StateInfo and the translator should skip materializing
// it.
func (r *Result) IsReachable(offset int) bool {
	return r.visited[offset]
}

// StateAt returns the fixpoint-converged abstract state at a label, or the
// zero value and false if the label was never reached.
func (r *Result) StateAt(offset int) (StateInfo, bool) {
	s, ok := r.state[offset]
	return s, ok
}

// GetVarInc returns the variable incarnation visible for localIndex at a
// block-entry offset: the single most recent definition if the fixpoint
// converged on exactly one, or the chain's merged multi-def view (Offset
// MultipleDefsOffset, Type the chain's DeclaredType) once more than one
// definition reaches this label. Reports false if offset was never
// discovered as a label or the local has no recorded store reaching it.
func (r *Result) GetVarInc(offset, localIndex int) (VarIncarnation, bool) {
	st, ok := r.state[offset]
	if !ok || localIndex < 0 || localIndex >= len(st.Locals) {
		return VarIncarnation{}, false
	}
	sv := st.Locals[localIndex].Vars
	if sv == nil || len(sv.Incarnations) == 0 {
		return VarIncarnation{}, false
	}
	if len(sv.Incarnations) == 1 {
		return *sv.Incarnations[0], true
	}
	return VarIncarnation{SlotIndex: localIndex, Offset: MultipleDefsOffset, Type: sv.DeclaredType}, true
}

// ExceptionTable returns the normalized, properly-nested catch regions.
func (r *Result) ExceptionTable() []CatchBlock {
	return r.regions
}

// AllExceptionTypesResolved reports whether every handler's exception type
// in the table resolved to a concrete host type. The translator must defer
// lowering (emit throwLinkingException instead of a real check) when this
// is false.
func (r *Result) AllExceptionTypesResolved() bool {
	return r.GetProblemTypeToken() == nil
}

// GetProblemTypeToken returns the first unresolved exception type found in
// the table, or nil if every handler resolved.
func (r *Result) GetProblemTypeToken() *types.Type {
	for _, region := range r.regions {
		for _, h := range region.Handlers {
			if h.ExceptionType != nil && !h.ExceptionType.IsResolved() {
				return h.ExceptionType
			}
		}
	}
	return nil
}
