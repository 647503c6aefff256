package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct{ x, y int }

func TestAllocAssignsSequentialIndices(t *testing.T) {
	a := New[point]()
	for i := 0; i < 10; i++ {
		idx, p := a.Alloc()
		assert.Equal(t, i, idx)
		p.x = i
	}
	assert.Equal(t, 10, a.Len())
}

func TestGetResolvesStableIndices(t *testing.T) {
	a := New[point]()
	idx, p := a.Alloc()
	p.x, p.y = 3, 4

	got := a.Get(idx)
	assert.Equal(t, 3, got.x)
	assert.Equal(t, 4, got.y)
}

// TestGrowthPreservesEarlierPointers exercises the doubling-chunk growth
// path: allocating past the first chunk's capacity must never move
// already-issued pointers, since builder/ir hold onto *Operand/*Instruction
// across many further allocations.
func TestGrowthPreservesEarlierPointers(t *testing.T) {
	a := New[point]()

	first, firstPtr := a.Alloc()
	firstPtr.x = 111

	const total = firstChunkSize*3 + 7
	var ptrs []*point
	for i := 0; i < total; i++ {
		_, p := a.Alloc()
		p.x = i
		ptrs = append(ptrs, p)
	}

	assert.Equal(t, 111, firstPtr.x, "growing the arena must not relocate earlier elements")
	assert.Equal(t, 111, a.Get(first).x)

	for i, p := range ptrs {
		assert.Equal(t, i, p.x)
	}
	assert.Equal(t, total+1, a.Len())
}

func TestGetOutOfRangeReturnsNil(t *testing.T) {
	a := New[point]()
	a.Alloc()
	assert.Nil(t, a.Get(5))
}

func TestCounterStartsAtZeroAndIncrements(t *testing.T) {
	var c Counter[int]
	assert.Equal(t, 0, c.Next())
	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 2, c.Next())
}
