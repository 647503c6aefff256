package prepass

import (
	"fmt"

	"jitir/internal/diag"
)

// stackDepthMismatchError reports malformed bytecode where two control-flow
// predecessors disagree on modeled stack depth at a shared label — a
// verifier-level defect the prepass surfaces rather than silently papering
// over, since the translator has no sound way to continue from it. It
// carries diag.ErrorStackDepthMismatch so a
// host can render it with diag.Reporter instead of just logging Error().
type stackDepthMismatchError struct {
	got, want int
}

func errStackDepthMismatch(got, want int) error {
	return &stackDepthMismatchError{got: got, want: want}
}

func (e *stackDepthMismatchError) Error() string {
	return fmt.Sprintf("prepass: stack depth mismatch merging label: %d vs %d", e.got, e.want)
}

// Code identifies this failure's diag taxonomy entry.
func (e *stackDepthMismatchError) Code() string { return diag.ErrorStackDepthMismatch }
