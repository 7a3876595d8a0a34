package resilience

import "time"

// Backoff computes bounded exponential retry delays for queued writes.
type Backoff struct {
	Base time.Duration
	Cap  time.Duration
}

func DefaultBackoff() Backoff {
	return Backoff{
		Base: 2 * time.Second,
		Cap:  2 * time.Minute,
	}
}

// Delay returns the wait before the given attempt (1-based): Base doubled
// per prior failure, clamped to Cap. Attempt values below 1 yield zero.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}

	base := b.Base
	if base <= 0 {
		base = DefaultBackoff().Base
	}
	cap := b.Cap
	if cap <= 0 {
		cap = DefaultBackoff().Cap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= cap {
			return cap
		}
	}
	if delay > cap {
		return cap
	}

	return delay
}
