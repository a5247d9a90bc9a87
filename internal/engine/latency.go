package engine

import (
	"context"
	"math/rand"
	"time"
)

// latency picks a uniform random delay in [min, max] to imitate a remote
// database round trip. The zero value never waits.
type latency struct {
	min, max time.Duration
}

func (l latency) pick() time.Duration {
	lo, hi := l.min, l.max
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi <= 0 {
		return 0
	}
	if lo < 0 {
		lo = 0
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo+1)))
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
