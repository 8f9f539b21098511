package fetcher

import (
	"math/rand"
	"time"
)

// Jittered spreads base by a symmetric random factor so request timing never
// falls into a detectable rhythm. The result is floored at 500ms; a zero base
// stays zero so tests can disable pacing entirely.
func Jittered(base time.Duration, factor float64) time.Duration {
	if base <= 0 {
		return 0
	}
	jitter := float64(base) * factor * (rand.Float64()*2 - 1)
	d := time.Duration(float64(base) + jitter)
	if d < 500*time.Millisecond {
		d = 500 * time.Millisecond
	}
	return d
}

// backoffDelay is the capped exponential delay before retry number attempt.
func backoffDelay(attempt int, initial, max time.Duration) time.Duration {
	d := initial
	for i := 0; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}
	return d
}
