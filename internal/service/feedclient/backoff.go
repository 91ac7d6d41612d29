package feedclient

import (
	"math/rand"
	"time"
)

// BackoffPolicy computes retry delays. Computed delays are clamped to
// [Floor, Cap]; a server Retry-After directive may exceed the cap.
type BackoffPolicy struct {
	Base       time.Duration // first server-error delay
	Cap        time.Duration
	Multiplier float64
	Floor      time.Duration // rate-limit floor, also the global lower clamp
	Jitter     float64       // fraction of the delay added randomly, 0..1
}

// NextRateLimit returns the delay after a 429. The upstream Retry-After hint
// wins when it exceeds the computed backoff.
func (p BackoffPolicy) NextRateLimit(prev time.Duration, attempt int, retryAfter time.Duration) time.Duration {
	d := time.Duration(float64(prev) * p.Multiplier)
	if floorScaled := p.Floor * time.Duration(attempt); d < floorScaled {
		d = floorScaled
	}
	d = p.clamp(d)
	// Retry-After is a directive, not a hint; it is exempt from the cap.
	if retryAfter > d {
		d = retryAfter
	}
	return d
}

// NextServerError returns the delay after a 5xx or transport failure.
func (p BackoffPolicy) NextServerError(prev time.Duration, attempt int) time.Duration {
	d := prev
	if d <= 0 {
		d = p.Base
	} else {
		d = time.Duration(float64(d) * p.Multiplier)
	}
	if p.Jitter > 0 {
		d += time.Duration(rand.Float64() * p.Jitter * float64(d))
	}
	return p.clamp(d)
}

func (p BackoffPolicy) clamp(d time.Duration) time.Duration {
	if d < p.Floor {
		d = p.Floor
	}
	if p.Cap > 0 && d > p.Cap {
		d = p.Cap
	}
	return d
}
