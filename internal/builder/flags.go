package builder

// Flags packs the builder's construction-time options into one bitfield
// rather than a constructor with twenty booleans. Every flag
// defaults to off; New callers opt in to exactly the behaviors their
// compilation needs.
type Flags uint32

const (
	// FlagEnableCSE turns on the per-block common-subexpression cache.
	FlagEnableCSE Flags = 1 << iota
	// FlagEnableSimplify runs the Simplifier on every instruction as it's
	// appended (constant folding, algebraic identities).
	FlagEnableSimplify
	// FlagEnableCopyPropagation collapses a chain of OpCopy instructions to
	// their ultimate source at use time.
	FlagEnableCopyPropagation
	// FlagElideRedundantTau folds a tau check whose fact (same check kind on
	// the same operands) an earlier check already proved into an OpTauSafe
	// over that earlier witness. Facts are recorded only while
	// FlagHoistMethodSafeTau is set.
	FlagElideRedundantTau
	// FlagHoistMethodSafeTau records every emitted tau-check fact for the
	// rest of the method, in any block, so FlagElideRedundantTau can fold
	// later repeats. No tauMethodSafe instruction is emitted.
	FlagHoistMethodSafeTau
	// FlagEmitDebugNames assigns human-readable Operand.Name values; off by
	// default in a release build to skip the string work.
	FlagEmitDebugNames
	// FlagPinExposedLocals names pinning of locals address-taken by
	// ldFieldAddr or ldElemAddr. No code in this module reads this bit.
	FlagPinExposedLocals
	// FlagStrictFP names IEEE-strict (non-extended-precision) float
	// semantics for the method. No code in this module reads this bit.
	FlagStrictFP
	// FlagAutoCompressRefs names implicit compress/uncompress conversions
	// around reference field/array accesses. No code in this module reads
	// this bit; no compress/uncompress instruction is inserted.
	FlagAutoCompressRefs
	// FlagEmitWriteBarriers names ModWriteBarrier marking of reference
	// stores. No code in this module reads this bit; stores carry no
	// ModWriteBarrier.
	FlagEmitWriteBarriers
	// FlagDeferLinkingErrors names deferring unresolved-symbol failures to a
	// throwLinkingException instruction. No code in this module reads this
	// bit; a resolution error from the host aborts translation.
	FlagDeferLinkingErrors
	// FlagSynchronizedMethod names a synchronized method body. No code in
	// this module reads this bit: the translator keys monitorEnter/
	// monitorExit off MethodDesc.IsSynchronized and emits them inline in the
	// entry block and before each return, not in blocks of their own.
	FlagSynchronizedMethod
	// FlagRecognizeArrayInit turns the newarray/dup/const/store run into a
	// single InitializeArray call.
	FlagRecognizeArrayInit
	// FlagExpandMemAddrs decomposes field/static accesses into an explicit
	// ldFieldAddr/ldStaticAddr address computation followed by a typed
	// ldInd/stInd, instead of the single high-level ldField/stField opcode.
	FlagExpandMemAddrs
	// FlagExpandElemAddrs computes array element addresses explicitly as
	// base + scaled(index) via ldElemAddr followed by ldInd/stInd, instead
	// of the single high-level ldElem/stElem opcode.
	FlagExpandElemAddrs
	// FlagExpandCallAddrs lowers a direct call to an indirect load of the
	// target method's method-pointer slot followed by callIndirect, instead
	// of the single high-level callDirect opcode.
	FlagExpandCallAddrs
	// FlagExpandVirtualCallAddrs lowers a virtual call through an explicit
	// ldVTable + ldVirtFunAddrSlot pair followed by callIndirect, instead of
	// the single high-level tauVirtualCall opcode.
	FlagExpandVirtualCallAddrs
	// FlagExpandElemTypeChecks makes an array covariant-store type check an
	// explicit tauCheckElemType instruction; when clear, the check is left
	// implicit on the store's Modifier (ModImplicitElemTypeCheck) for the
	// store's own native lowering to perform.
	FlagExpandElemTypeChecks
	// FlagGenMinMaxAbs recognizes a java.lang.Math.{min,max,abs} call over
	// integer operands as the dedicated min/max/abs opcode instead of an
	// ordinary call.
	FlagGenMinMaxAbs
	// FlagGenFMinMaxAbs is the float/double analogue of FlagGenMinMaxAbs.
	FlagGenFMinMaxAbs
)

// Has reports whether every bit in want is set.
func (f Flags) Has(want Flags) bool { return f&want == want }
