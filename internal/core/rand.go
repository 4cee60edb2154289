package core

import (
	"math/rand/v2"
	"time"
)

// NewRand returns the generator shared by obstacle creation and the optimizer.
// A zero seed draws one from the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
}
