package fetch

import (
	"math/rand"
	"time"
)

// Backoff computes retry delays for transient fetch failures.
// The delay doubles each attempt from Base up to Max, with randomized
// jitter so concurrent workers retrying against the same host do not
// synchronize.
type Backoff struct {
	// Base is the delay before the first retry.
	Base time.Duration

	// Max caps the delay regardless of attempt count.
	Max time.Duration
}

// Delay returns the wait before the given retry attempt (0-based).
// The returned value is drawn uniformly from [d/2, d] where d is the
// capped exponential delay for that attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = time.Second
	}
	limit := b.Max
	if limit <= 0 {
		limit = 60 * time.Second
	}

	d := base
	for i := 0; i < attempt && d < limit; i++ {
		d *= 2
	}
	if d > limit {
		d = limit
	}

	half := d / 2
	if half <= 0 {
		return d
	}
	return half + time.Duration(rand.Int63n(int64(half)+1)) //nolint:gosec // jitter needs no cryptographic randomness
}
