package ir

import "jitir/internal/types"

// Instruction is a single IR node: an opcode, up to three source operands
// inline (the common case), a destination operand, and an opcode-specific
// Payload for the minority of shapes that need more.
// Instructions live in the arena as a doubly linked list per block via
// Prev/Next so the builder can splice in simplification results without
// shifting a slice.
type Instruction struct {
	ID    InstID
	Block BlockID
	Op    Opcode
	Mod   Modifier

	// Src holds up to three source operand ids inline; the CSE hash key
	// (opcode, Src[0], Src[1], Src[2]) is computed straight from this array
	//.
	Src [3]OperandID
	Dst OperandID

	// Tau is the zero-width witness operand this instruction depends on, or
	// NoOperand if it has none.
	Tau OperandID

	// BytecodeOffset is the originating bytecode position, kept for
	// diagnostics and for the label prepass's block-boundary bookkeeping.
	BytecodeOffset int

	Payload any

	Prev, Next InstID
}

// LabelPayload marks a block entry. PinIncoming forbids the translator from
// merging this label's predecessors' stack state into this block without
// going through the normal state-info merge (set for catch/subroutine
// entries).
type LabelPayload struct {
	PinIncoming bool
}

// BranchPayload is shared by OpJump/OpBranch: Target is always populated,
// FalseTarget only for conditional branches.
type BranchPayload struct {
	Target      BlockID
	FalseTarget BlockID
}

// SwitchPayload models both tableswitch and lookupswitch: parallel Keys/
// Targets slices (one key per target) plus a catch-all Default. A
// tableswitch carries its dense key range explicitly, the same way a
// lookupswitch carries its sparse keys.
type SwitchPayload struct {
	Keys    []int32
	Targets []BlockID
	Default BlockID
}

// ConstPayload carries a constant's bit pattern or class/string/method
// handle reference, tagged by the owning Operand's Type.
type ConstPayload struct {
	IntVal    int64
	FloatVal  float64
	StringVal string
	ClassName string
}

// FieldPayload names the field/static accessed by a Load/Store{Field,Static}
// instruction.
type FieldPayload struct {
	EnclosingClass string
	FieldName      string
	FieldType      *types.Type
	ConstPoolIndex int
}

// CallShape distinguishes the four externally visible call shapes (direct,
// virtual, interface, indirect) from the two internal ones (JIT-helper,
// VM-helper).
type CallShape uint8

const (
	CallDirect CallShape = iota
	CallVirtual
	CallInterface
	CallIndirect
	CallJitHelper
	CallVMHelper
)

// CallPayload carries everything a call site needs beyond its argument
// operands (which ride in Instruction.Src plus an overflow slice here,
// since calls routinely take more than three arguments).
type CallPayload struct {
	Shape       CallShape
	Target      *types.MethodDescriptor
	HelperID    int
	ExtraArgs   []OperandID
	ReturnsVoid bool
}

// TypePayload carries the target type of a checkCast/instanceOf/newObj/
// newArray/tau-cast instruction.
type TypePayload struct {
	Target *types.Type
	Dims   int // newMultiArray dimension count
}

// MethodAddrPayload names the method-pointer slot an ldMethodAddr or
// ldVirtFunAddrSlot instruction materializes: a direct call resolves it by
// descriptor alone, a virtual call resolves it by VTableIndex into the
// vtable operand ldVTable already produced.
type MethodAddrPayload struct {
	Target      *types.MethodDescriptor
	VTableIndex int
}

// PhiPayload lists a phi's incoming (predecessor block, operand) pairs in
// the same order as the owning block's predecessor edges.
type PhiPayload struct {
	Incoming []PhiEdge
}

type PhiEdge struct {
	Pred  BlockID
	Value OperandID
}

// VarPayload names the variable slot an OpLdVar/OpStVar reconciles with the
// modeled operand stack at a block boundary.
type VarPayload struct {
	SlotIndex int
	Incarnation int
}

// MagicPayload carries the runtime-helper id a VM-magic opcode lowers to,
// when the opcode alone doesn't pin down which helper (e.g. a family of
// prefetch or array-copy helpers sharing OpCallVMHelper).
type MagicPayload struct {
	HelperName string
}

// LinkingThrowPayload names the unresolved reference a throwLinkingException
// instruction complains about: the class it was looked up from, the
// unresolved token itself, and which bytecode operation triggered the
// lookup.
type LinkingThrowPayload struct {
	EnclosingClass string
	ProblemToken   *types.Type
	Operation      string
}

// SystemThrowPayload names the VM-internal condition a throwSystemException
// instruction stands in for (linkage failures that aren't a single
// unresolved token, e.g. a malformed exception table).
type SystemThrowPayload struct {
	Kind string
}
