package prepass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jitir/internal/types"
)

// TestRunStraightLineConvergesInOnePass exercises the simplest possible
// fixpoint: a single label with no successors. Run must seed the entry
// state, call its Transfer exactly once, and terminate.
func TestRunStraightLineConvergesInOnePass(t *testing.T) {
	mgr := types.NewManager()
	calls := 0

	in := Input{
		Entry:      0,
		EntryState: StateInfo{Locals: []StateInfoSlot{{Type: mgr.I32()}}},
		Transfer: map[int]Transfer{
			0: func(in StateInfo) (StateInfo, error) {
				calls++
				return in, nil
			},
		},
	}

	result, err := Run(mgr, in)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, result.IsReachable(0))
	assert.False(t, result.IsReachable(1), "a label the fixpoint never visited must report unreachable")
}

// TestRunMergesAtJoinPoint builds two predecessors (an i32 producer and an
// i64 producer) that both flow into a shared label, and checks the merged
// local widens to i64.
func TestRunMergesAtJoinPoint(t *testing.T) {
	mgr := types.NewManager()

	const branchA, branchB, join = 1, 2, 3
	in := Input{
		Entry:      0,
		EntryState: StateInfo{Locals: []StateInfoSlot{{}}},
		Edges: []Edge{
			{From: 0, To: branchA},
			{From: 0, To: branchB},
			{From: branchA, To: join},
			{From: branchB, To: join},
		},
		Transfer: map[int]Transfer{
			0: func(in StateInfo) (StateInfo, error) { return in, nil },
			branchA: func(in StateInfo) (StateInfo, error) {
				return StateInfo{Locals: []StateInfoSlot{{Type: mgr.I32()}}}, nil
			},
			branchB: func(in StateInfo) (StateInfo, error) {
				return StateInfo{Locals: []StateInfoSlot{{Type: mgr.I64()}}}, nil
			},
			join: func(in StateInfo) (StateInfo, error) { return in, nil },
		},
	}

	result, err := Run(mgr, in)
	require.NoError(t, err)

	joined, ok := result.StateAt(join)
	require.True(t, ok)
	assert.Same(t, mgr.I64(), joined.Locals[0].Type)
}

// TestRunMergesVarIncarnations checks invariant I6: a local stored with
// different incarnations along two predecessors of a join carries both
// incarnations (not just the last-seen one) and a recomputed DeclaredType
// at the join, while a local whose single incarnation reaches the join
// unchanged keeps it.
func TestRunMergesVarIncarnations(t *testing.T) {
	mgr := types.NewManager()

	const branchA, branchB, join = 1, 2, 3
	incA := &VarIncarnation{SlotIndex: 0, Offset: 10, Type: mgr.I32()}
	incB := &VarIncarnation{SlotIndex: 0, Offset: 20, Type: mgr.I32()}
	shared := &VarIncarnation{SlotIndex: 1, Offset: 5, Type: mgr.I32()}

	in := Input{
		Entry:      0,
		EntryState: StateInfo{Locals: []StateInfoSlot{{}, {}}},
		Edges: []Edge{
			{From: 0, To: branchA},
			{From: 0, To: branchB},
			{From: branchA, To: join},
			{From: branchB, To: join},
		},
		Transfer: map[int]Transfer{
			0: func(in StateInfo) (StateInfo, error) { return in, nil },
			branchA: func(in StateInfo) (StateInfo, error) {
				return StateInfo{Locals: []StateInfoSlot{
					{Type: incA.Type, Vars: NewSlotVariable(incA)},
					{Type: shared.Type, Vars: NewSlotVariable(shared)},
				}}, nil
			},
			branchB: func(in StateInfo) (StateInfo, error) {
				return StateInfo{Locals: []StateInfoSlot{
					{Type: incB.Type, Vars: NewSlotVariable(incB)},
					{Type: shared.Type, Vars: NewSlotVariable(shared)},
				}}, nil
			},
			join: func(in StateInfo) (StateInfo, error) { return in, nil },
		},
	}

	result, err := Run(mgr, in)
	require.NoError(t, err)

	joined, ok := result.StateAt(join)
	require.True(t, ok)
	require.Len(t, joined.Locals[0].Vars.Incarnations, 2, "both incarnations of slot 0 must survive the merge")
	assert.Same(t, mgr.I32(), joined.Locals[0].Vars.DeclaredType)

	multi, ok := result.GetVarInc(join, 0)
	require.True(t, ok)
	assert.Equal(t, MultipleDefsOffset, multi.Offset, "a slot merged from two distinct stores has no single defining offset")

	single, ok := result.GetVarInc(join, 1)
	require.True(t, ok)
	assert.Equal(t, 5, single.Offset, "a slot whose one incarnation reaches every predecessor keeps its defining offset")
}

// TestRunPropagatesTransferError confirms a Transfer's error aborts the
// whole fixpoint rather than being swallowed.
func TestRunPropagatesTransferError(t *testing.T) {
	mgr := types.NewManager()
	boom := errStackDepthMismatch(1, 2)

	in := Input{
		Entry:      0,
		EntryState: StateInfo{},
		Transfer: map[int]Transfer{
			0: func(in StateInfo) (StateInfo, error) { return StateInfo{}, boom },
		},
	}

	_, err := Run(mgr, in)
	assert.ErrorIs(t, err, boom)
}

// TestRunCatchEdgeClearsStack verifies a catch edge's propagated state is
// just the caught exception on the stack plus the guarded range's locals,
// never the throwing block's own (possibly partial) stack contents.
func TestRunCatchEdgeClearsStack(t *testing.T) {
	mgr := types.NewManager()
	excType := mgr.GetNamedType("java/lang/RuntimeException", true)

	const guarded, handler = 0, 1
	in := Input{
		Entry:      guarded,
		EntryState: StateInfo{Locals: []StateInfoSlot{{Type: mgr.I32()}}},
		Edges: []Edge{
			{From: guarded, To: handler, IsCatch: true, ExceptionType: excType},
		},
		Transfer: map[int]Transfer{
			guarded: func(in StateInfo) (StateInfo, error) {
				return StateInfo{Stack: []StateInfoSlot{{Type: mgr.I32()}, {Type: mgr.I32()}}, Locals: in.Locals}, nil
			},
			handler: func(in StateInfo) (StateInfo, error) { return in, nil },
		},
	}

	result, err := Run(mgr, in)
	require.NoError(t, err)

	at, ok := result.StateAt(handler)
	require.True(t, ok)
	require.Len(t, at.Stack, 1, "the handler entry stack must hold only the caught exception")
	assert.Same(t, excType, at.Stack[0].Type)
	assert.Same(t, mgr.I32(), at.Locals[0].Type, "locals live entering the guarded range survive into the handler")
}

func TestAllExceptionTypesResolved(t *testing.T) {
	mgr := types.NewManager()
	resolved := mgr.GetNamedType("java/lang/Exception", true)
	unresolved := mgr.GetNamedType("com/example/Custom", false)

	t.Run("AllResolved", func(t *testing.T) {
		r := &Result{regions: []CatchBlock{{Handlers: []CatchHandler{{ExceptionType: resolved}}}}}
		assert.True(t, r.AllExceptionTypesResolved())
		assert.Nil(t, r.GetProblemTypeToken())
	})

	t.Run("OneUnresolved", func(t *testing.T) {
		r := &Result{regions: []CatchBlock{{Handlers: []CatchHandler{{ExceptionType: resolved}, {ExceptionType: unresolved}}}}}
		assert.False(t, r.AllExceptionTypesResolved())
		assert.Same(t, unresolved, r.GetProblemTypeToken())
	})

	t.Run("CatchAllHandlerIsNeverAProblem", func(t *testing.T) {
		r := &Result{regions: []CatchBlock{{Handlers: []CatchHandler{{ExceptionType: nil}}}}}
		assert.True(t, r.AllExceptionTypesResolved())
	})
}
