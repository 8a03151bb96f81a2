package mixer

import (
	"math/rand"
	"time"
)

// Rand is a source of uniform integers.
type Rand interface {
	// Intn returns a uniform integer in [0, n). n is always > 0.
	Intn(n int) int
}

// NewRand returns a math/rand backed source. A zero seed picks one from the clock.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// between draws uniformly from [lo, hi). An empty range yields lo.
func between(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo)
}
