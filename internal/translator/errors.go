package translator

import (
	"fmt"

	"jitir/internal/diag"
)

// unknownOpcodeError reports a SimpleOp the translator's opcode table has
// no lowering for — a parser/translator mismatch, always a compile-time
// abort and never a property of otherwise
// well-formed bytecode.
type unknownOpcodeError struct {
	offset int
	op     int
}

func errUnknownOpcode(offset, op int) error {
	return &unknownOpcodeError{offset: offset, op: op}
}

func (e *unknownOpcodeError) Error() string {
	return fmt.Sprintf("translator: unrecognized simple opcode %d at offset %d", e.op, e.offset)
}

// Code identifies this failure's diag taxonomy entry.
func (e *unknownOpcodeError) Code() string { return diag.ErrorUnknownOpcode }

// unresolvedSubroutineError reports a ret whose enclosing jsr/subroutine
// site could not be determined.
type unresolvedSubroutineError struct {
	offset int
	reason string
}

func errUnresolvedSubroutine(offset int, reason string) error {
	return &unresolvedSubroutineError{offset: offset, reason: reason}
}

func (e *unresolvedSubroutineError) Error() string {
	return fmt.Sprintf("translator: offset %d: %s", e.offset, e.reason)
}

// Code identifies this failure's diag taxonomy entry.
func (e *unresolvedSubroutineError) Code() string { return diag.ErrorUnresolvedSubroutine }
