package ink

import "pgregory.net/rand"

// RNGState holds the two scalars spec.md §3/§6 requires for the
// deterministic pseudorandom subsystem: story_seed (set by authors via
// SeedRandom) and previous_random (the engine's own running draw
// counter). The generator is reseeded from their sum on every draw, so
// that (story_seed, previous_random, draw sequence) alone determines
// every subsequent output — the "stateless function of (seed,
// draw-count)" contract of §6.
type RNGState struct {
	StorySeed      int64
	PreviousRandom int64
}

func NewRNGState(seed int64) *RNGState {
	return &RNGState{StorySeed: seed}
}

// Next draws a uniform integer in [min, max] inclusive, per the Random
// control command (spec.md §4.6).
func (s *RNGState) Next(min, max int64) int64 {
	if max < min {
		min, max = max, min
	}
	src := rand.New(uint64(s.StorySeed + s.PreviousRandom))
	span := max - min + 1
	draw := src.Int63n(span)
	s.PreviousRandom++
	return min + draw
}

// Seed resets the RNG, as the SeedRandom control command does.
func (s *RNGState) Seed(seed int64) {
	s.StorySeed = seed
	s.PreviousRandom = 0
}

// shuffleSeedFor computes the deterministic seed spec.md §4.9 requires
// for SequenceShuffleIndex: sum-of-chars(stringify(canonical path)) +
// loop_index + story_seed.
func shuffleSeedFor(path Path, loopIndex, storySeed int64) uint64 {
	var sum int64
	for _, r := range path.String() {
		sum += int64(r)
	}
	return uint64(sum + loopIndex + storySeed)
}

// SequenceShuffleIndex implements spec.md §4.9: simulate iterationIndex+1
// draws from a shrinking [0..numElements) pool (removing the drawn
// index each time) and return the value drawn at the final step, the
// one with zero-based index iterationIndex.
func SequenceShuffleIndex(path Path, seqCount, numElements, storySeed int64) int64 {
	if numElements <= 0 {
		return 0
	}
	loopIndex := seqCount / numElements
	iterationIndex := seqCount % numElements

	src := rand.New(shuffleSeedFor(path, loopIndex, storySeed))

	pool := make([]int64, numElements)
	for i := range pool {
		pool[i] = int64(i)
	}

	var drawn int64
	for i := int64(0); i <= iterationIndex; i++ {
		idx := src.Intn(len(pool))
		drawn = pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return drawn
}

// ListRandomPick picks a uniformly random entry from a non-empty list
// using the deterministic RNG (spec.md §4.6 ListRandom).
func (s *RNGState) ListRandomPick(items []ListItem) ListItem {
	src := rand.New(uint64(s.StorySeed + s.PreviousRandom))
	s.PreviousRandom++
	return items[src.Intn(len(items))]
}
