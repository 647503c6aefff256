package runtime

// OpcodeVisitor receives one callback per bytecode instruction as the host's
// decoder walks a method body, each visit method reporting the bytecode
// offset it starts at. The core never decodes bytes itself. Its prepass and
// translator do not implement this interface: they read an already-decoded
// translator.Program, and Program.Drive replays such a program through any
// OpcodeVisitor.
//
// Only the opcodes that need payload beyond "which opcode, at what offset"
// get a dedicated method; the large family of context-free, stack-only
// opcodes (the arithmetic/conversion/comparison/stack-shuffle instructions)
// arrive through VisitSimple tagged with a SimpleOp naming exactly which one.
type OpcodeVisitor interface {
	VisitSimple(offset int, op SimpleOp)
	VisitConst(offset int, cpIndex int)
	VisitIntImmediate(offset int, kind ElemKind, value int64)
	VisitFloatImmediate(offset int, kind ElemKind, value float64)
	VisitNullConst(offset int)
	VisitLoadLocal(offset int, slot int, kind ElemKind)
	VisitStoreLocal(offset int, slot int, kind ElemKind)
	VisitFieldAccess(offset int, cpIndex int, isStatic, isStore bool)
	VisitArrayAccess(offset int, elemKind ElemKind, isStore bool)
	VisitBranch(offset int, predicate int, target int)
	VisitJump(offset int, target int)
	VisitSwitch(offset int, table SwitchTargets)
	VisitInvoke(offset int, cpIndex int, kind InvokeKind)
	VisitNew(offset int, cpIndex int)
	VisitNewArray(offset int, elemKind ElemKind)
	VisitANewArray(offset int, cpIndex int)
	VisitMultiANewArray(offset int, cpIndex int, dims int)
	VisitTypeCheck(offset int, cpIndex int, isCheckCast bool)
	VisitMonitor(offset int, isEnter bool)
	VisitReturn(offset int, kind ElemKind)
	VisitThrow(offset int)
	VisitJsr(offset int, target int)
	VisitRet(offset int, slot int)
}

// ElemKind tags the width/shape of a value a load/store/array/return opcode
// carries (JVM bytecode bakes the operand width into the mnemonic itself —
// iload vs lload vs aload — rather than leaving it to be inferred, and the
// core follows that same granularity).
type ElemKind int

const (
	ElemInvalid ElemKind = iota
	ElemInt
	ElemLong
	ElemFloat
	ElemDouble
	ElemBoolean
	ElemByte
	ElemChar
	ElemShort
	ElemRef
	ElemReturnAddr // JSR's pushed return-address value, and RET's local slot
)

// SimpleOp enumerates every context-free opcode VisitSimple can report:
// stack shuffles plus the full arithmetic/conversion/comparison family,
// each one already specific about its operand width exactly as the real
// mnemonic set is (iadd/ladd/fadd/dadd, not one generic "add").
type SimpleOp int

const (
	OpInvalid SimpleOp = iota

	// Stack shuffles never reach the IR builder as real instructions; the
	// translator just rearranges its modeled stack.
	OpDup
	OpDupX1
	OpDupX2
	OpDup2
	OpDup2X1
	OpDup2X2
	OpPop
	OpPop2
	OpSwap
	OpNop

	// Arithmetic, one entry per declared operand width.
	OpIAdd
	OpLAdd
	OpFAdd
	OpDAdd
	OpISub
	OpLSub
	OpFSub
	OpDSub
	OpIMul
	OpLMul
	OpFMul
	OpDMul
	OpIDiv
	OpLDiv
	OpFDiv
	OpDDiv
	OpIRem
	OpLRem
	OpFRem
	OpDRem
	OpINeg
	OpLNeg
	OpFNeg
	OpDNeg
	OpIAnd
	OpLAnd
	OpIOr
	OpLOr
	OpIXor
	OpLXor
	OpIShl
	OpLShl
	OpIShr
	OpLShr
	OpIUshr
	OpLUshr

	// Conversions.
	OpI2L
	OpI2F
	OpI2D
	OpL2I
	OpL2F
	OpL2D
	OpF2I
	OpF2L
	OpF2D
	OpD2I
	OpD2L
	OpD2F
	OpI2B
	OpI2C
	OpI2S

	// Three-way comparisons (the if<cond> that follows supplies the
	// predicate; these always push a -1/0/1 int).
	OpLCmp
	OpFCmpL // NaN compares as less
	OpFCmpG // NaN compares as greater
	OpDCmpL
	OpDCmpG
)

// BranchPredicate names which comparison a VisitBranch callback reports,
// since the interface only carries the predicate as a bare int: the host's
// decoder and this module's translator must agree on this encoding. Value
// arity (one operand against an implicit zero/null, or two operands
// against each other) follows directly from which family the predicate
// belongs to.
type BranchPredicate int

const (
	BrEQ BranchPredicate = iota // ifeq: pop 1 int, compare to zero
	BrNE
	BrLT
	BrLE
	BrGT
	BrGE
	BrICmpEQ // if_icmpeq: pop 2 ints
	BrICmpNE
	BrICmpLT
	BrICmpLE
	BrICmpGT
	BrICmpGE
	BrACmpEQ // if_acmpeq: pop 2 references
	BrACmpNE
	BrNull // ifnull: pop 1 reference, compare to null
	BrNonNull
)

// InvokeKind mirrors the four external call shapes the host's invoke
// instructions can express.
type InvokeKind int

const (
	InvokeStatic InvokeKind = iota
	InvokeVirtual
	InvokeSpecial
	InvokeInterface
)

// SwitchTargets lets a lookupswitch/tableswitch lazily stream its key/target
// pairs rather than forcing the host to materialize a slice up front; the
// prepass and translator both only need a single forward pass.
type SwitchTargets interface {
	Default() int
	// Next returns the next (key, target) pair and true, or false once
	// exhausted.
	Next() (key int, target int, ok bool)
}

// SubroutineInfo describes one JSR/RET pair the prepass must model
// specially: the subroutine's entry offset and the offset of its RET, since
// a return-address-typed local must never merge with an ordinary value of
// matching width (legacy finally-block lowering, see stateinfo.go).
type SubroutineInfo struct {
	EntryOffset int
	RetOffset   int
	RetSlot     int
}
