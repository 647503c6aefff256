package ir

// Modifier is a compact bitpack of the per-instruction flags that would
// otherwise require a distinct Opcode for every combination. Arithmetic,
// memory, and cast opcodes read only the bits relevant to them; unused bits
// are always zero.
type Modifier uint32

const (
	// ModOverflowCheck makes an arithmetic op throw ArithmeticException-style
	// on signed overflow instead of wrapping.
	ModOverflowCheck Modifier = 1 << iota
	// ModUnsigned interprets both operands as unsigned for div/rem/shift/cmp.
	ModUnsigned
	// ModExceptionThrowing marks a memory/cast op as able to raise a
	// runtime-deferred exception (null check, bounds check, class cast).
	ModExceptionThrowing
	// ModShiftMask restricts a shift amount to the shiftee's bit width
	// (mirrors the JVM's "only low 5/6 bits of the shift count are used").
	ModShiftMask
	// ModStrictFP forces strict (non-extended-precision) float semantics.
	ModStrictFP
	// ModAutoCompress marks a managed-pointer store as needing an implicit
	// compress/uncompress conversion under a compressed-oops heap layout.
	ModAutoCompress
	// ModWriteBarrier marks a reference store as requiring a GC write
	// barrier (always set together with a heap object target).
	ModWriteBarrier
	// ModVolatile marks a field/static access as volatile (no reordering,
	// no tearing).
	ModVolatile
	// ModZeroExtend controls whether a narrowing conversion zero-extends
	// (set) or sign-extends (clear) when later widened.
	ModZeroExtend
	// ModNonNull asserts the operand is statically known non-null. The
	// builder's tau checks do not consult it.
	ModNonNull
	// ModNanLess marks a three-way float/double compare as the "NaN sorts
	// low" variant (fcmpl); clear means the "NaN sorts high" variant
	// (fcmpg). Only meaningful on OpCmp3Way over Single/Double operands.
	ModNanLess
	// ModImplicitElemTypeCheck marks a reference array store as needing a
	// covariant element-type check performed as part of the store's own
	// native lowering, rather than as a separate tauCheckElemType
	// instruction ahead of it.
	ModImplicitElemTypeCheck
)

// Comparison predicate, packed into the high byte since at most one predicate
// applies to a given OpCmpEQ/NE/LT/LE/GT/GE/Cmp3Way instruction.
type Predicate uint8

const (
	PredNone Predicate = iota
	PredEQ
	PredNE
	PredLT
	PredLE
	PredGT
	PredGE
)

const predicateShift = 24

// WithPredicate returns m with its comparison predicate bits set to p.
func (m Modifier) WithPredicate(p Predicate) Modifier {
	return (m &^ (0xff << predicateShift)) | Modifier(p)<<predicateShift
}

// Predicate extracts the comparison predicate packed into m.
func (m Modifier) Predicate() Predicate {
	return Predicate((m >> predicateShift) & 0xff)
}

// Has reports whether every bit in flags is set in m.
func (m Modifier) Has(flags Modifier) bool { return m&flags == flags }

// ThrowMode describes how a potentially-failing instruction surfaces its
// failure: inline as a normal exception edge, or deferred to a dedicated
// throw helper emitted once per method.
type ThrowMode uint8

const (
	ThrowModeNone ThrowMode = iota
	ThrowModeInline
	ThrowModeDeferredLinking
	ThrowModeDeferredSystem
)
