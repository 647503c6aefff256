// Package diag implements the core's two error taxonomies: fatal
// compilation-time aborts the caller cannot recover from, and the
// runtime-deferred conditions the builder instead encodes straight into
// the IR as a throwLinkingException/throwSystemException instruction. Both
// share one CompilerError shape and one colorized reporter, addressed by
// bytecode offset and enclosing method rather than a source line/column
// since there is no source text to underline.
package diag

// Error codes for the front-end IR construction core.
//
// Code ranges:
// F0001-F0099: fatal compilation-time aborts (programmer/verifier errors)
// F0100-F0199: reserved for future fatal categories
// L0001-L0099: runtime-deferred linking errors (emitted as IR, not thrown here)
// L0100-L0199: runtime-deferred system exceptions
const (
	// F0001: the parser callback reported an opcode this core's translator
	// has no lowering for.
	ErrorUnknownOpcode = "F0001"

	// F0002: a tableswitch/lookupswitch's padding or key/target arity was
	// malformed.
	ErrorMalformedSwitch = "F0002"

	// F0003: two control-flow predecessors disagreed on modeled operand
	// stack depth at a shared label.
	ErrorStackDepthMismatch = "F0003"

	// F0004: an internal invariant the core itself is responsible for
	// did not hold; always a construction bug, never a property of the
	// input bytecode.
	ErrorInvariantViolation = "F0004"

	// F0005: a jsr/ret pair could not be resolved to a single subroutine
	// entry/return-site pair.
	ErrorUnresolvedSubroutine = "F0005"

	// L0001: a class, field, or method referenced by the constant pool did
	// not resolve. The translator does not lower this case into IR: a
	// resolution error from the host's Compilation aborts Translate.
	ErrorUnresolvedSymbol = "L0001"

	// L0002: a method body's exception handler named an unresolved catch
	// type and the whole body is replaced by a single throwing block.
	ErrorUnresolvedCatchType = "L0002"

	// L0101: a condition the VM reports as a system exception rather than
	// a named linking failure (malformed exception table, bad class file
	// structure downstream of this core's own checks).
	ErrorSystemException = "L0101"
)

// descriptions gives a one-line human-readable explanation per code, used
// by the reporter and by any host surfacing these to a log.
var descriptions = map[string]string{
	ErrorUnknownOpcode:        "parser callback reported an opcode with no IR lowering",
	ErrorMalformedSwitch:      "switch instruction's keys/targets/padding are malformed",
	ErrorStackDepthMismatch:   "control-flow predecessors disagree on modeled stack depth",
	ErrorInvariantViolation:   "an internal core invariant did not hold",
	ErrorUnresolvedSubroutine: "a jsr/ret pair could not be resolved to one subroutine site",
	ErrorUnresolvedSymbol:     "constant-pool symbol did not resolve against the host runtime",
	ErrorUnresolvedCatchType:  "exception handler's catch type did not resolve",
	ErrorSystemException:      "VM-level system exception condition",
}

// Description returns a human-readable explanation of code, or "" if code
// is not recognized.
func Description(code string) string { return descriptions[code] }

// IsFatal reports whether code names a compile-time abort as opposed to a
// runtime-deferred one encoded into the IR.
func IsFatal(code string) bool {
	return len(code) > 0 && code[0] == 'F'
}

// IsRuntimeDeferred reports whether code names a condition the core defers
// to emitted IR (a throwLinkingException/throwSystemException instruction)
// rather than aborting the compilation over.
func IsRuntimeDeferred(code string) bool {
	return len(code) > 0 && code[0] == 'L'
}
