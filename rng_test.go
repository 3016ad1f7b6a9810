package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNGState_DeterministicForSameSeed(t *testing.T) {
	a := NewRNGState(42)
	b := NewRNGState(42)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Next(0, 100), b.Next(0, 100))
	}
}

func TestRNGState_DifferentSeedsDiverge(t *testing.T) {
	a := NewRNGState(1)
	b := NewRNGState(2)

	same := true
	for i := 0; i < 20; i++ {
		if a.Next(0, 1_000_000) != b.Next(0, 1_000_000) {
			same = false
		}
	}
	assert.False(t, same, "distinct seeds should eventually diverge")
}

func TestSequenceShuffleIndex_Deterministic(t *testing.T) {
	path := NewAbsolutePath(NameComponent("scene"))
	a := SequenceShuffleIndex(path, 3, 5, 99)
	b := SequenceShuffleIndex(path, 3, 5, 99)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, int64(0))
	assert.Less(t, a, int64(5))
}

func TestSequenceShuffleIndex_RepeatsForSameArguments(t *testing.T) {
	path := NewAbsolutePath(NameComponent("scene"))
	first := SequenceShuffleIndex(path, 0, 3, 7)
	second := SequenceShuffleIndex(path, 0, 3, 7)
	assert.Equal(t, first, second)
}
