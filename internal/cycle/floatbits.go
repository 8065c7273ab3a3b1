package cycle

import (
	"math"
	"sync/atomic"
)

// storeFloat/loadFloat pack a float64 into the atomic.Uint64 counters used
// for measured UPS/FPS, since there is no atomic.Float64 in the standard
// library.
func storeFloat(dst *atomic.Uint64, v float64) {
	dst.Store(math.Float64bits(v))
}

func loadFloat(src *atomic.Uint64) float64 {
	return math.Float64frombits(src.Load())
}
