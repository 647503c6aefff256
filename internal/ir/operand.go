package ir

import "jitir/internal/types"

// OperandID, InstID and BlockID are arena-relative identifiers: operands
// reference their defining instruction, instructions reference their
// source/destination operands, and blocks reference their instructions, all
// by id rather than by pointer, so the arena alone owns the graph.
type OperandID int32
type InstID int32
type BlockID int32

// NoOperand, NoInst and NoBlock mark an absent operand, instruction or
// block link.
const (
	NoOperand OperandID = -1
	NoInst    InstID    = -1
	NoBlock   BlockID   = -1
)

// OperandKind distinguishes the five Operand variants: SSA temporaries,
// variable operands, ssa-variable operands, pi operands, and the shared
// null sentinel.
type OperandKind uint8

const (
	OperandSSATemp OperandKind = iota
	OperandVariable
	OperandSSAVariable
	OperandPi
	OperandNullSentinel
)

// Operand is every SSA value: a unique id, an immutable reference to its
// defining instruction, and a Type. All Operands are
// allocated from the compilation's arena and live for the session's entire
// lifetime.
type Operand struct {
	ID   OperandID
	Kind OperandKind
	Type *types.Type

	// Def is the instruction that produced this operand. For the shared
	// null sentinel and for Variable operands (which admit many defs
	// before SSA renaming, tracked instead via VarIncarnation chains) Def
	// is NoInst.
	Def InstID

	// Debug name, not semantically meaningful; mirrors the teacher's
	// practice of giving SSA values descriptive names for printing.
	Name string

	// Variable-only: forbids promotion to a register class in later passes.
	Pinned bool

	// Pi-only: the base operand this Pi refines, and the boolean-valued
	// operand whose truth on this path justifies the refinement.
	PiOrigin    OperandID
	PiPredicate OperandID
}

// IsVoid reports whether this operand is the shared null sentinel returned
// in place of a destination for void-result instructions.
func (o *Operand) IsVoid() bool { return o.Kind == OperandNullSentinel }
