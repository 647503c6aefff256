package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jitir/internal/builder"
	"jitir/internal/ir"
	"jitir/internal/runtime"
	"jitir/internal/types"
)

// stubCompilation answers exactly the field, method and named-type
// constant-pool indices each test program touches and errors loudly on any
// other such lookup, so an unexpected lookup fails the test instead of
// translating silently wrong. Constant lookups answer every index with an
// i32 zero.
type stubCompilation struct {
	mgr    *types.Manager
	fields map[int]runtime.FieldInfo
	statik map[int]runtime.MethodInfo
	named  map[int]*types.Type
}

func (s *stubCompilation) GetStaticField(cpIndex int) (runtime.FieldInfo, error) {
	return runtime.FieldInfo{}, assert.AnError
}

func (s *stubCompilation) GetNonStaticField(cpIndex int) (runtime.FieldInfo, error) {
	if f, ok := s.fields[cpIndex]; ok {
		return f, nil
	}
	return runtime.FieldInfo{}, assert.AnError
}

func (s *stubCompilation) GetVirtualMethod(cpIndex int) (runtime.MethodInfo, error) {
	return runtime.MethodInfo{}, assert.AnError
}

func (s *stubCompilation) GetSpecialMethod(cpIndex int) (runtime.MethodInfo, error) {
	return runtime.MethodInfo{}, assert.AnError
}

func (s *stubCompilation) GetStaticMethod(cpIndex int) (runtime.MethodInfo, error) {
	if m, ok := s.statik[cpIndex]; ok {
		return m, nil
	}
	return runtime.MethodInfo{}, assert.AnError
}

func (s *stubCompilation) GetInterfaceMethod(cpIndex int) (runtime.MethodInfo, error) {
	return runtime.MethodInfo{}, assert.AnError
}

func (s *stubCompilation) GetNamedType(cpIndex int) (*types.Type, error) {
	if t, ok := s.named[cpIndex]; ok {
		return t, nil
	}
	return nil, assert.AnError
}

func (s *stubCompilation) GetConstantType(cpIndex int) (*types.Type, error) {
	return s.mgr.I32(), nil
}

func (s *stubCompilation) GetConstantValue(cpIndex int) (interface{}, error) {
	return int64(0), nil
}

func (s *stubCompilation) GetSignatureString(cpIndex int) (string, error) { return "", nil }
func (s *stubCompilation) GetFieldSignature(cpIndex int) (string, error)  { return "", nil }

func (s *stubCompilation) GetRuntimeHelperName(helperID int) string { return "helper" }

func (s *stubCompilation) IsCompressedReferencesEnabled() bool { return false }

func (s *stubCompilation) ConfigString(key string) (string, bool) { return "", false }
func (s *stubCompilation) ConfigBool(key string) (bool, bool)     { return false, false }

func newStubCompilation(mgr *types.Manager) *stubCompilation {
	return &stubCompilation{
		mgr:    mgr,
		fields: map[int]runtime.FieldInfo{},
		statik: map[int]runtime.MethodInfo{},
		named:  map[int]*types.Type{},
	}
}

// countOps walks every reachable block of g and counts instructions whose
// opcode matches op, mirroring the printer's own reachability walk so an
// orphaned block (never wired by a predecessor) doesn't skew the count.
func countOps(g *ir.Graph, op ir.Opcode) int {
	n := 0
	visited := make(map[ir.BlockID]bool)
	var walk func(id ir.BlockID)
	walk = func(id ir.BlockID) {
		if id == ir.NoBlock || visited[id] {
			return
		}
		visited[id] = true
		g.Instructions(id, func(inst *ir.Instruction) bool {
			if inst.Op == op {
				n++
			}
			return true
		})
		for _, e := range g.Block(id).Succs {
			walk(e.To)
		}
	}
	walk(g.Entry)
	return n
}

// max3Program mirrors a three-way max: one local holds the running
// maximum and two forward branches conditionally overwrite it, giving the
// translator both a straight-line prefix and a join point to reconcile.
func max3Program() Program {
	return Program{Instrs: []Instr{
		LoadLocal(0, 0, runtime.ElemInt),
		StoreLocal(1, 3, runtime.ElemInt),
		LoadLocal(2, 1, runtime.ElemInt),
		LoadLocal(3, 3, runtime.ElemInt),
		Branch(4, int(runtime.BrICmpLE), 7),
		LoadLocal(5, 1, runtime.ElemInt),
		StoreLocal(6, 3, runtime.ElemInt),
		LoadLocal(7, 2, runtime.ElemInt),
		LoadLocal(8, 3, runtime.ElemInt),
		Branch(9, int(runtime.BrICmpLE), 12),
		LoadLocal(10, 2, runtime.ElemInt),
		StoreLocal(11, 3, runtime.ElemInt),
		LoadLocal(12, 3, runtime.ElemInt),
		Return(13, runtime.ElemInt),
	}}
}

func max3Desc(mgr *types.Manager) *MethodDesc {
	i32 := mgr.I32()
	return &MethodDesc{
		EnclosingClass: "Demo",
		Name:           "max3",
		IsStatic:       true,
		ParamTypes:     []*types.Type{i32, i32, i32},
		ReturnType:     i32,
		MaxLocals:      4,
	}
}

func TestTranslateStraightLineWithJoinProducesNoErrors(t *testing.T) {
	mgr := types.NewManager()
	comp := newStubCompilation(mgr)

	b, err := Translate(mgr, comp, builder.FlagEnableCSE|builder.FlagEnableSimplify, max3Program(), max3Desc(mgr))
	require.NoError(t, err)
	assert.NotEqual(t, ir.NoBlock, b.Graph.Entry)
	assert.True(t, countOps(b.Graph, ir.OpBranch) >= 2, "both conditional updates must survive as real branches")
	assert.Equal(t, 1, countOps(b.Graph, ir.OpReturn))
}

// touchProgram loads a parameter, reads one of its non-static fields, and
// passes the result to a static void method, exercising field resolution
// and static invocation together.
func touchProgram() Program {
	return Program{Instrs: []Instr{
		LoadLocal(0, 0, runtime.ElemRef),
		FieldAccess(1, 1, false, false),
		Invoke(2, 2, runtime.InvokeStatic),
		Return(3, runtime.ElemInvalid),
	}}
}

func touchDesc(mgr *types.Manager) *MethodDesc {
	holder := mgr.GetNamedType("Holder", true)
	return &MethodDesc{
		EnclosingClass: "Demo",
		Name:           "touch",
		IsStatic:       true,
		ParamTypes:     []*types.Type{holder},
		ReturnType:     mgr.Void(),
		MaxLocals:      1,
	}
}

func TestTranslateFieldLoadAndStaticInvoke(t *testing.T) {
	mgr := types.NewManager()
	comp := newStubCompilation(mgr)
	comp.fields[1] = runtime.FieldInfo{EnclosingClass: "Holder", Name: "value", Type: mgr.I32()}
	comp.statik[2] = runtime.MethodInfo{EnclosingClass: "Demo", Name: "consume", ParamTypes: []*types.Type{mgr.I32()}, ReturnType: nil, Static: true}

	b, err := Translate(mgr, comp, builder.FlagEnableCSE, touchProgram(), touchDesc(mgr))
	require.NoError(t, err)

	assert.Equal(t, 1, countOps(b.Graph, ir.OpLoadField))
	assert.Equal(t, 1, countOps(b.Graph, ir.OpCallDirect))
	assert.True(t, countOps(b.Graph, ir.OpTauCheckNull) >= 1, "a non-static field load must be guarded by a null check")
}

// guardedProgram covers offsets [0,2) with a handler at 10 catching
// everything (CatchTypeCPIndex 0), and a normal fallthrough path to 20;
// this is the minimal shape that forces a dispatch node into existence.
func guardedProgram() Program {
	return Program{Instrs: []Instr{
		Simple(0, runtime.OpNop),
		Jump(1, 20),
		Return(10, runtime.ElemInvalid),
		Return(20, runtime.ElemInvalid),
	}}
}

func guardedDesc() *MethodDesc {
	return &MethodDesc{
		EnclosingClass: "Demo",
		Name:           "guarded",
		IsStatic:       true,
		MaxLocals:      0,
		ExceptionTable: []ExceptionTableEntry{
			{TryBegin: 0, TryEnd: 2, HandlerBegin: 10, CatchTypeCPIndex: 0},
		},
	}
}

func TestTranslateExceptionRegionWiresDispatchAndCatchEdges(t *testing.T) {
	mgr := types.NewManager()
	comp := newStubCompilation(mgr)

	b, err := Translate(mgr, comp, 0, guardedProgram(), guardedDesc())
	require.NoError(t, err)

	entry := b.Graph.Block(b.Graph.Entry)
	var dispatchID ir.BlockID = ir.NoBlock
	for _, e := range entry.Succs {
		if e.Kind == ir.EdgeException {
			dispatchID = e.To
		}
	}
	require.NotEqual(t, ir.NoBlock, dispatchID, "the guarded block must carry an exception edge to a dispatch node")
	assert.Equal(t, ir.BlockDispatch, b.Graph.Block(dispatchID).Kind)

	var sawCatch bool
	for _, e := range b.Graph.Block(dispatchID).Succs {
		if e.Kind == ir.EdgeCatch {
			sawCatch = true
		}
	}
	assert.True(t, sawCatch, "the dispatch node must carry a catch edge into the handler block")
	assert.Equal(t, 1, countOps(b.Graph, ir.OpCatch), "the handler entry must synthesize exactly one caught-exception value")
}

func TestTranslateUnresolvedCatchTypeReplacesBodyWithLinkingThrow(t *testing.T) {
	mgr := types.NewManager()
	comp := newStubCompilation(mgr)
	comp.named[99] = mgr.GetNamedType("com/example/FlakyException", false)

	desc := &MethodDesc{
		EnclosingClass: "Demo",
		Name:           "poisoned",
		IsStatic:       true,
		MaxLocals:      0,
		ExceptionTable: []ExceptionTableEntry{
			{TryBegin: 0, TryEnd: 2, HandlerBegin: 10, CatchTypeCPIndex: 99},
		},
	}

	b, err := Translate(mgr, comp, 0, guardedProgram(), desc)
	require.NoError(t, err)

	assert.Equal(t, 1, countOps(b.Graph, ir.OpLabel), "the poisoned body collapses to a single label")
	assert.Equal(t, 1, countOps(b.Graph, ir.OpThrowLinkingException))
	assert.Equal(t, 0, countOps(b.Graph, ir.OpJump), "none of the original body's instructions are translated")

	entry := b.Graph.Block(b.Graph.Entry)
	var throwInst *ir.Instruction
	b.Graph.Instructions(entry.ID, func(inst *ir.Instruction) bool {
		if inst.Op == ir.OpThrowLinkingException {
			throwInst = inst
			return false
		}
		return true
	})
	require.NotNil(t, throwInst)
	payload, ok := throwInst.Payload.(*ir.LinkingThrowPayload)
	require.True(t, ok)
	assert.Equal(t, "Demo", payload.EnclosingClass)
	assert.Equal(t, "CHECKCAST", payload.Operation)
	assert.False(t, payload.ProblemToken.IsResolved())
}

func TestTranslateUnknownSimpleOpcodeFails(t *testing.T) {
	mgr := types.NewManager()
	comp := newStubCompilation(mgr)

	p := Program{Instrs: []Instr{Simple(0, runtime.SimpleOp(-1))}}
	desc := &MethodDesc{EnclosingClass: "Demo", Name: "broken", IsStatic: true}

	_, err := Translate(mgr, comp, 0, p, desc)
	require.Error(t, err)
	var coded interface{ Code() string }
	require.ErrorAs(t, err, &coded)
}

// firstElemProgram reads a[0] from a static int[] parameter, exercising
// CheckNull/CheckBounds tau combination on the array-load path.
func firstElemProgram() Program {
	return Program{Instrs: []Instr{
		LoadLocal(0, 0, runtime.ElemRef),
		IntImmediate(1, runtime.ElemInt, 0),
		ArrayAccess(2, runtime.ElemInt, false),
		Return(3, runtime.ElemInt),
	}}
}

func firstElemDesc(mgr *types.Manager) *MethodDesc {
	return &MethodDesc{
		EnclosingClass: "Demo",
		Name:           "firstElem",
		IsStatic:       true,
		ParamTypes:     []*types.Type{mgr.GetArrayType(mgr.I32())},
		ReturnType:     mgr.I32(),
		MaxLocals:      1,
	}
}

func TestTranslateArrayLoadCombinesNullAndBoundsChecks(t *testing.T) {
	mgr := types.NewManager()
	comp := newStubCompilation(mgr)

	b, err := Translate(mgr, comp, 0, firstElemProgram(), firstElemDesc(mgr))
	require.NoError(t, err)

	assert.Equal(t, 1, countOps(b.Graph, ir.OpLoadElem))
	assert.Equal(t, 1, countOps(b.Graph, ir.OpTauCheckNull))
	assert.Equal(t, 1, countOps(b.Graph, ir.OpTauCheckBounds))
	assert.True(t, countOps(b.Graph, ir.OpTauAnd) >= 1, "the two checks must be combined into one tau witness")
}

func jsrRetDesc() *MethodDesc {
	return &MethodDesc{EnclosingClass: "Demo", Name: "withSubroutine", IsStatic: true, MaxLocals: 1}
}

// singleCallerSubroutineProgram has exactly one jsr reaching its subroutine
// entry, the common case ret must still resolve correctly.
func singleCallerSubroutineProgram() Program {
	return Program{Instrs: []Instr{
		Jsr(0, 10),
		Return(1, runtime.ElemInvalid),
		Ret(10, 0),
	}}
}

func TestTranslateSingleCallerSubroutineResolvesRet(t *testing.T) {
	mgr := types.NewManager()
	comp := newStubCompilation(mgr)

	b, err := Translate(mgr, comp, 0, singleCallerSubroutineProgram(), jsrRetDesc())
	require.NoError(t, err)
	assert.Equal(t, 2, countOps(b.Graph, ir.OpJump), "the jsr and the ret each lower to a jump")
}

// sharedSubroutineProgram has two distinct jsr sites (offsets 0 and 2)
// reaching the same subroutine entry (offset 100); the ret at 100 has no
// single static successor this core can assign without duplicating the
// subroutine body per call site.
func sharedSubroutineProgram() Program {
	return Program{Instrs: []Instr{
		Jsr(0, 100),
		Return(1, runtime.ElemInvalid),
		Jsr(2, 100),
		Return(3, runtime.ElemInvalid),
		Ret(100, 0),
	}}
}

func TestTranslateSharedSubroutineRetFailsInsteadOfGuessing(t *testing.T) {
	mgr := types.NewManager()
	comp := newStubCompilation(mgr)

	_, err := Translate(mgr, comp, 0, sharedSubroutineProgram(), jsrRetDesc())
	require.Error(t, err)
	var coded interface{ Code() string }
	require.ErrorAs(t, err, &coded)
}
