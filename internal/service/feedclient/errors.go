package feedclient

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitedError is returned after retry exhaustion against 429 responses.
type RateLimitedError struct {
	Attempts   int
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("upstream rate limited after %d attempts", e.Attempts)
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

// UpstreamServerError is returned after retry exhaustion against 5xx responses.
type UpstreamServerError struct {
	Status   int
	Attempts int
	Err      error
}

func (e *UpstreamServerError) Error() string {
	return fmt.Sprintf("upstream server error %d after %d attempts", e.Status, e.Attempts)
}

func (e *UpstreamServerError) Unwrap() error { return e.Err }

// NetworkError is returned after retry exhaustion against transport failures.
type NetworkError struct {
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error after %d attempts: %v", e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RequestFailedError covers non-retryable failures (4xx other than 429).
type RequestFailedError struct {
	Status int
	Err    error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is (or wraps) a RateLimitedError.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}

// DisplayMessage renders a human-readable, UI-ready message for a terminal
// fetch failure, distinguishing rate limiting from generic failure.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsRateLimited(err) {
		return "The regulatory feed is throttling requests right now. Showing cached data where available; please retry in a minute."
	}
	return "The regulatory feed is temporarily unavailable. Showing cached data where available."
}
