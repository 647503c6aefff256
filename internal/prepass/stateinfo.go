// Package prepass implements the label prepass: a worklist-based abstract
// interpreter that walks the bytecode once before the translator runs,
// discovering basic block boundaries, typing every stack slot and local
// variable at each block entry, and building the exception-region table the
// translator needs to know which catch handlers guard which blocks.
package prepass

import "jitir/internal/types"

// VarIncarnation names one definition of a local variable slot: the
// bytecode offset it was defined at (or -1 for a definition folded in from
// a merge, i.e. "multiple defs") and the type the stored value had there.
// The prepass never renames variables itself (that's the translator's
// stvar/ldvar job); it only tracks which definitions reach a given label so
// a merge can tell whether a join point has observed a new one.
type VarIncarnation struct {
	SlotIndex int
	Offset    int
	Type      *types.Type
}

// MultipleDefsOffset marks an incarnation standing in for more than one
// definition collapsed together, rather than a single store site.
const MultipleDefsOffset = -1

// SlotVariable is the list of variable-incarnation references attached to
// one local slot at a particular label: every definition the fixpoint has
// proven can reach that label, plus the type shared by all of them once
// merged (invariant: every member of a chain shares one declared type).
type SlotVariable struct {
	SlotIndex    int
	Incarnations []*VarIncarnation
	DeclaredType *types.Type
}

// NewSlotVariable starts a fresh chain with a single definition: a store
// always replaces whatever chain existed at its slot before it, rather
// than extending it, since the prior incarnation(s) can no longer reach
// any point after the store.
func NewSlotVariable(inc *VarIncarnation) *SlotVariable {
	return &SlotVariable{SlotIndex: inc.SlotIndex, Incarnations: []*VarIncarnation{inc}, DeclaredType: inc.Type}
}

// CurrentIncarnation returns the most recently added incarnation, or the
// zero value if the chain is empty.
func (v *SlotVariable) CurrentIncarnation() VarIncarnation {
	if v == nil || len(v.Incarnations) == 0 {
		return VarIncarnation{}
	}
	return *v.Incarnations[len(v.Incarnations)-1]
}

// clone makes an independent copy so merging cur's chain in place never
// mutates a StateInfo another predecessor still holds a reference to.
func (v *SlotVariable) clone() *SlotVariable {
	if v == nil {
		return nil
	}
	incs := append([]*VarIncarnation(nil), v.Incarnations...)
	return &SlotVariable{SlotIndex: v.SlotIndex, Incarnations: incs, DeclaredType: v.DeclaredType}
}

// mergeSlotVariable joins two chains observed for the same slot at the same
// label: any incarnation in in not already present in cur (compared by
// pointer identity, since two incarnations from the same store site are
// the same *VarIncarnation wherever they're observed) is appended, and the
// chain's DeclaredType is recomputed over every member so invariant I6
// (one declared type per chain) holds after the merge. Returns whether the
// chain grew, so the worklist knows to revisit this label.
func mergeSlotVariable(mgr *types.Manager, cur, in *SlotVariable) (*SlotVariable, bool) {
	if in == nil {
		return cur, false
	}
	if cur == nil {
		return in.clone(), true
	}
	present := make(map[*VarIncarnation]bool, len(cur.Incarnations))
	for _, inc := range cur.Incarnations {
		present[inc] = true
	}
	var novel []*VarIncarnation
	for _, inc := range in.Incarnations {
		if !present[inc] {
			novel = append(novel, inc)
		}
	}
	if len(novel) == 0 {
		return cur, false
	}
	merged := cur.clone()
	merged.Incarnations = append(merged.Incarnations, novel...)
	merged.DeclaredType = declaredType(mgr, merged.Incarnations)
	return merged, true
}

func declaredType(mgr *types.Manager, incs []*VarIncarnation) *types.Type {
	if len(incs) == 0 {
		return nil
	}
	t := incs[0].Type
	for _, inc := range incs[1:] {
		t = mgr.GetCommonType(t, inc.Type)
	}
	return t
}

// StateInfoSlot is the abstract value the prepass assigns to one stack
// position or local variable at a program point: a type, whether the slot
// holds a return address (JSR/RET bookkeeping, since those slots must
// never be merged with an ordinary value of the same width), and — for
// locals only — the chain of variable incarnations that can reach this
// point (nil for stack slots and for locals never stored to).
type StateInfoSlot struct {
	Type         *types.Type
	IsReturnAddr bool
	ReturnAddrPC int
	Vars         *SlotVariable
}

// Merge joins two observations of the same slot arriving from different
// predecessors, returning the new slot and whether the result differs from
// s (so the worklist knows to keep iterating).
func (s StateInfoSlot) Merge(mgr *types.Manager, o StateInfoSlot) (StateInfoSlot, bool) {
	if s.IsReturnAddr || o.IsReturnAddr {
		if s.IsReturnAddr && o.IsReturnAddr && s.ReturnAddrPC == o.ReturnAddrPC {
			return s, false
		}
		// A return-address slot merging with anything else is a verifier-level
		// error in real bytecode; the prepass degrades it to the common object
		// type rather than failing, matching commonType's fail-soft stance.
		return StateInfoSlot{Type: mgr.GetNamedType("java/lang/Object", true)}, true
	}
	joined := mgr.GetCommonType(s.Type, o.Type)
	changed := joined != s.Type
	vars, varsChanged := mergeSlotVariable(mgr, s.Vars, o.Vars)
	changed = changed || varsChanged
	return StateInfoSlot{Type: joined, Vars: vars}, changed
}

// StateInfo is the full abstract state the prepass tracks at a program
// point: the modeled operand stack (bottom to top) and the local variable
// array, both as StateInfoSlot. It is deliberately a plain value type, not
// arena-backed, since the prepass discards it once the translator consumes
// the per-label snapshots.
type StateInfo struct {
	Stack  []StateInfoSlot
	Locals []StateInfoSlot
}

// Clone makes an independent copy, since the worklist mutates a successor's
// candidate state while the predecessor's own StateInfo must stay
// untouched for other successors.
func (s StateInfo) Clone() StateInfo {
	stack := make([]StateInfoSlot, len(s.Stack))
	copy(stack, s.Stack)
	locals := make([]StateInfoSlot, len(s.Locals))
	copy(locals, s.Locals)
	return StateInfo{Stack: stack, Locals: locals}
}

// Merge joins two StateInfo snapshots for the same label, slot by slot.
// Stack depth must already agree (C2 in the prepass's own bookkeeping); a
// depth mismatch indicates malformed bytecode and is reported by the caller
// rather than panicking here.
func (s StateInfo) Merge(mgr *types.Manager, o StateInfo) (StateInfo, bool, error) {
	if len(s.Stack) != len(o.Stack) {
		return s, false, errStackDepthMismatch(len(s.Stack), len(o.Stack))
	}
	changed := false
	out := s.Clone()
	for i := range out.Stack {
		merged, diff := out.Stack[i].Merge(mgr, o.Stack[i])
		out.Stack[i] = merged
		changed = changed || diff
	}
	n := len(out.Locals)
	if len(o.Locals) > n {
		n = len(o.Locals)
	}
	for len(out.Locals) < n {
		out.Locals = append(out.Locals, StateInfoSlot{})
	}
	for i := 0; i < n; i++ {
		var incoming StateInfoSlot
		if i < len(o.Locals) {
			incoming = o.Locals[i]
		}
		merged, diff := out.Locals[i].Merge(mgr, incoming)
		out.Locals[i] = merged
		changed = changed || diff
	}
	return out, changed, nil
}
