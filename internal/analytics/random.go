package analytics

import (
	"math/rand/v2"
	"time"
)

// NewRand returns a PCG-backed random source. The same non-zero seed always
// yields the same sequence; seed 0 picks a time-based seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// OrDefault returns rng, or a freshly seeded nondeterministic source when rng is nil.
func OrDefault(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return NewRand(0)
	}
	return rng
}
