// Package arena implements the core's allocation model: a per-compilation
// bump-pointer arena built from doubling-size chunks. All Operands,
// Instructions, and CFG Blocks are owned by value inside arena chunks;
// cross-structure references are small integer ids resolved through the
// owning arena rather than raw pointers, so the instruction/operand/block
// graph never forms a garbage-collector-visible
// reference cycle of owning pointers. Destroying a compilation simply drops
// the arena; there is no per-node teardown.
package arena

import "golang.org/x/exp/constraints"

// ID is the constraint satisfied by every arena-relative identifier
// (OperandID, InstID, BlockID, ...). IDs are monotonic 32-bit counters reset
// at the start of each compilation.
type ID interface {
	constraints.Integer
}

const firstChunkSize = 64

// Arena holds a growing sequence of fixed-size chunks of T. Chunk size
// doubles on each growth so amortized allocation cost stays O(1) while
// already-issued pointers into earlier chunks remain valid forever: growth
// never reallocates or moves existing elements, only appends a new chunk.
type Arena[T any] struct {
	chunks   [][]T
	chunkCap int
	len      int
}

// New creates an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{chunkCap: firstChunkSize}
}

// Len reports how many elements have been allocated.
func (a *Arena[T]) Len() int { return a.len }

// Alloc appends a new zero-valued T and returns its index and a stable
// pointer to it. The pointer remains valid for the arena's entire lifetime.
func (a *Arena[T]) Alloc() (int, *T) {
	if len(a.chunks) == 0 || len(a.chunks[len(a.chunks)-1]) == cap(a.chunks[len(a.chunks)-1]) {
		newCap := a.chunkCap
		if len(a.chunks) > 0 {
			newCap = cap(a.chunks[len(a.chunks)-1]) * 2
		}
		a.chunks = append(a.chunks, make([]T, 0, newCap))
	}
	last := len(a.chunks) - 1
	a.chunks[last] = append(a.chunks[last], *new(T))
	idx := a.len
	a.len++
	return idx, &a.chunks[last][len(a.chunks[last])-1]
}

// Get resolves an index back to its stable pointer.
func (a *Arena[T]) Get(idx int) *T {
	chunkStart := 0
	for _, chunk := range a.chunks {
		if idx < chunkStart+len(chunk) {
			return &chunk[idx-chunkStart]
		}
		chunkStart += cap(chunk)
	}
	return nil
}

// Counter is a monotonic 32-bit id generator, reset per compilation by
// constructing a fresh Counter for each new arena.
type Counter[T ID] struct{ next T }

// Next returns the next id in sequence, starting at zero.
func (c *Counter[T]) Next() T {
	v := c.next
	c.next++
	return v
}
