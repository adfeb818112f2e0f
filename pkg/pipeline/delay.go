package pipeline

import (
	"context"
	"math/rand/v2"
	"time"
)

// DelayFunc returns how long to pause before the next backfill request
type DelayFunc func() time.Duration

// NoDelay never pauses
func NoDelay() time.Duration { return 0 }

// JitterDelay pauses for a uniformly random duration in [lo, hi).
// Equal bounds give a fixed delay, hi below lo is treated as lo.
func JitterDelay(lo, hi time.Duration) DelayFunc {
	return func() time.Duration {
		if hi <= lo {
			return lo
		}
		return lo + rand.N(hi-lo) //nolint:gosec // pacing doesn't need crypto randomness
	}
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
