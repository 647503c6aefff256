package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFatalAndIsRuntimeDeferred(t *testing.T) {
	assert.True(t, IsFatal(ErrorUnknownOpcode))
	assert.False(t, IsRuntimeDeferred(ErrorUnknownOpcode))

	assert.True(t, IsRuntimeDeferred(ErrorUnresolvedSymbol))
	assert.False(t, IsFatal(ErrorUnresolvedSymbol))

	assert.False(t, IsFatal(""))
	assert.False(t, IsRuntimeDeferred(""))
}

func TestDescriptionKnownAndUnknownCodes(t *testing.T) {
	assert.Equal(t, "parser callback reported an opcode with no IR lowering", Description(ErrorUnknownOpcode))
	assert.Equal(t, "", Description("Z9999"))
}

func TestReporterFormatFatalIncludesCodeAndLocation(t *testing.T) {
	r := NewReporter()
	err := Fatal(ErrorStackDepthMismatch, "predecessors disagree on stack depth", 42)
	err.EnclosingClass = "Demo"
	err.MethodName = "max3"

	out := r.Format(err)
	assert.Contains(t, out, "["+ErrorStackDepthMismatch+"]")
	assert.Contains(t, out, "Demo.max3")
	assert.Contains(t, out, "@offset 42")
	assert.Contains(t, out, Description(ErrorStackDepthMismatch))
}

func TestReporterFormatRuntimeDeferredOmitsOffsetWhenNegative(t *testing.T) {
	r := NewReporter()
	err := RuntimeDeferred(ErrorUnresolvedSymbol, "Widget did not resolve", "Demo", "touch", -1)

	out := r.Format(err)
	assert.Contains(t, out, "Demo.touch")
	assert.NotContains(t, out, "@offset")
}

func TestReporterFormatIncludesNotesAndHelp(t *testing.T) {
	r := NewReporter()
	err := Fatal(ErrorMalformedSwitch, "bad switch table", 7)
	err.Notes = []string{"duplicate key 3"}
	err.HelpText = "check the lookupswitch encoding"

	out := r.Format(err)
	assert.Contains(t, out, "note:")
	assert.Contains(t, out, "duplicate key 3")
	assert.Contains(t, out, "help:")
	assert.Contains(t, out, "check the lookupswitch encoding")
}
