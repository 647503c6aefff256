package prepass

import (
	"jitir/internal/ir"
	"jitir/internal/types"
)

// CatchHandler is one entry of a catch block's ordered handler list: the
// exception type it guards against (nil means "catches everything", the
// finally/synchronized-unlock case) and the label it transfers control to.
type CatchHandler struct {
	ExceptionType *types.Type
	HandlerLabel  int // bytecode offset of the handler entry
}

// CatchBlock is a single exception-table entry: the half-open bytecode
// range [Begin, End) it guards, and the ordered handlers tried in sequence
// for an exception raised inside that range.
type CatchBlock struct {
	Begin, End int
	Handlers   []CatchHandler
}

// Covers reports whether pc falls within this catch block's guarded range.
func (c CatchBlock) Covers(pc int) bool { return pc >= c.Begin && pc < c.End }

// overlaps reports whether two catch ranges share any bytecode offset
// without one fully containing the other — the shape normalize must
// eliminate to keep regions properly nested (invariant I5).
func overlaps(a, b CatchBlock) bool {
	if a.Begin == b.Begin && a.End == b.End {
		return false // identical ranges are merged, not split
	}
	return a.Begin < b.End && b.Begin < a.End
}

func contains(outer, inner CatchBlock) bool {
	return outer.Begin <= inner.Begin && inner.End <= outer.End
}

// NormalizeRegions takes the raw, host-supplied catch blocks (which may
// overlap in ways the rest of the core can't assume — two try blocks that
// partially overlap due to finally-duplication, or that would otherwise
// need their shared loop header modeled as a dispatch node) and produces a
// set that nests properly: any two ranges are either disjoint or one fully
// contains the other.
//
// The algorithm splits any pair of partially-overlapping ranges at their
// shared boundary and merges exact duplicates, then re-checks until no
// offending pair remains. Bytecode in the wild rarely needs more than one
// pass; the loop exists because a split can itself create a new partial
// overlap against a third region.
func NormalizeRegions(raw []CatchBlock) []CatchBlock {
	regions := append([]CatchBlock(nil), raw...)
	for {
		i, j, found := findOverlap(regions)
		if !found {
			return dedupeExact(regions)
		}
		regions = splitPair(regions, i, j)
	}
}

func findOverlap(regions []CatchBlock) (int, int, bool) {
	for i := range regions {
		for j := i + 1; j < len(regions); j++ {
			if overlaps(regions[i], regions[j]) && !contains(regions[i], regions[j]) && !contains(regions[j], regions[i]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// splitPair breaks a and b at their shared boundary, replacing both with
// their non-overlapping and shared sub-ranges so every resulting region
// nests properly against its neighbors.
func splitPair(regions []CatchBlock, i, j int) []CatchBlock {
	a, b := regions[i], regions[j]
	lo, hi := a, b
	if lo.Begin > hi.Begin {
		lo, hi = hi, lo
	}
	// lo.Begin < hi.Begin < lo.End < hi.End, the only partial-overlap shape
	// two exception ranges can take once exact duplicates are filtered out.
	out := make([]CatchBlock, 0, len(regions)+2)
	for k, r := range regions {
		if k == i || k == j {
			continue
		}
		out = append(out, r)
	}
	out = append(out,
		CatchBlock{Begin: lo.Begin, End: hi.Begin, Handlers: lo.Handlers},
		CatchBlock{Begin: hi.Begin, End: lo.End, Handlers: append(append([]CatchHandler(nil), lo.Handlers...), hi.Handlers...)},
		CatchBlock{Begin: lo.End, End: hi.End, Handlers: hi.Handlers},
	)
	return out
}

func dedupeExact(regions []CatchBlock) []CatchBlock {
	out := make([]CatchBlock, 0, len(regions))
	seen := make(map[[2]int]int)
	for _, r := range regions {
		key := [2]int{r.Begin, r.End}
		if idx, ok := seen[key]; ok {
			out[idx].Handlers = append(out[idx].Handlers, r.Handlers...)
			continue
		}
		seen[key] = len(out)
		out = append(out, r)
	}
	return out
}

// InnermostRegion returns the index into regions of the tightest range
// covering pc, or -1 if none covers it. Regions are assumed normalized
// (properly nested), so the tightest covering range is simply the one with
// the smallest span among those that cover pc.
func InnermostRegion(regions []CatchBlock, pc int) int {
	best := -1
	for i, r := range regions {
		if !r.Covers(pc) {
			continue
		}
		if best == -1 || (r.End-r.Begin) < (regions[best].End-regions[best].Begin) {
			best = i
		}
	}
	return best
}

// DispatchNodeFor returns the dispatch node collecting exception edges for
// region, allocating one in g on first use. Multiple potentially-throwing
// instructions within the same region share one dispatch node rather than
// each wiring its own exception edges straight to every handler, keeping
// the catch-handler fan-out from appearing at every throw site.
func DispatchNodeFor(g *ir.Graph, cache map[int]ir.BlockID, regionIdx int) ir.BlockID {
	if id, ok := cache[regionIdx]; ok {
		return id
	}
	id := g.NewDispatchNode()
	cache[regionIdx] = id
	return id
}
