package feedclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		UserAgent:  "EdgarPull test test@example.com",
		Timeout:    2 * time.Second,
		MaxRetries: 3,
		MinSpacing: 0,
		Backoff: BackoffPolicy{
			Base:       10 * time.Millisecond,
			Cap:        30 * time.Second,
			Multiplier: 2,
			Floor:      5 * time.Millisecond,
		},
	}
}

// newFastClient returns a client that records sleeps instead of performing them.
func newFastClient(cfg Config) (*Client, *[]time.Duration) {
	c := New(cfg, nil, nil)
	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestDoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "EdgarPull test test@example.com" {
			t.Errorf("missing contact user agent, got %q", ua)
		}
		w.Write([]byte("<feed/>"))
	}))
	defer srv.Close()

	c := New(testConfig(), nil, nil)
	resp, err := c.Do(context.Background(), Request{URL: srv.URL, Form: "4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != "<feed/>" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
}

func TestDoRetryAfterHonored(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "5")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, slept := newFastClient(testConfig())
	if _, err := c.Do(context.Background(), Request{URL: srv.URL, Form: "4"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*slept) == 0 {
		t.Fatalf("expected a backoff sleep")
	}
	if (*slept)[0] < 5*time.Second {
		t.Fatalf("Retry-After not honored: slept %v, want >= 5s", (*slept)[0])
	}
}

func TestDoInFlightFetchSurvivesCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Abandon the caller while the upstream call is in flight.
		cancel()
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(testConfig(), nil, nil)
	resp, err := c.Do(ctx, Request{URL: srv.URL, Form: "4"})
	if err != nil {
		t.Fatalf("in-flight fetch must complete after caller cancel: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
	// A new request must observe the cancellation instead of starting.
	if _, err := c.Do(ctx, Request{URL: srv.URL, Form: "4"}); err == nil {
		t.Fatalf("expected context error on the next request")
	}
}

func TestDoRateLimitExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := newFastClient(testConfig())
	_, err := c.Do(context.Background(), Request{URL: srv.URL, Form: "4"})
	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	if rl.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", rl.Attempts)
	}
}

func TestDoServerErrorExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := newFastClient(testConfig())
	_, err := c.Do(context.Background(), Request{URL: srv.URL, Form: "13F"})
	var se *UpstreamServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected UpstreamServerError, got %v", err)
	}
	if se.Status != http.StatusBadGateway {
		t.Fatalf("unexpected status %d", se.Status)
	}
}

func TestDoClientErrorNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := newFastClient(testConfig())
	_, err := c.Do(context.Background(), Request{URL: srv.URL})
	var rf *RequestFailedError
	if !errors.As(err, &rf) {
		t.Fatalf("expected RequestFailedError, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("4xx should not be retried, saw %d calls", calls)
	}
}

func TestBackoffStaysWithinBounds(t *testing.T) {
	p := BackoffPolicy{
		Base:       500 * time.Millisecond,
		Cap:        10 * time.Second,
		Multiplier: 3,
		Floor:      200 * time.Millisecond,
		Jitter:     0.2,
	}
	var prev time.Duration
	for attempt := 1; attempt <= 10; attempt++ {
		prev = p.NextServerError(prev, attempt)
		if prev < p.Floor || prev > p.Cap {
			t.Fatalf("attempt %d: delay %v outside [%v, %v]", attempt, prev, p.Floor, p.Cap)
		}
	}
	prev = 0
	for attempt := 1; attempt <= 10; attempt++ {
		prev = p.NextRateLimit(prev, attempt, 0)
		if prev < p.Floor || prev > p.Cap {
			t.Fatalf("ratelimit attempt %d: delay %v outside bounds", attempt, prev)
		}
	}
}

func TestBackoffRetryAfterExceedsCap(t *testing.T) {
	p := BackoffPolicy{Base: time.Second, Cap: 30 * time.Second, Multiplier: 2, Floor: time.Second}
	// The server's directive wins even past the local ceiling.
	if d := p.NextRateLimit(0, 1, 60*time.Second); d != 60*time.Second {
		t.Fatalf("got %v, want 60s", d)
	}
	// Without a directive the computed delay still respects the cap.
	if d := p.NextRateLimit(40*time.Second, 2, 0); d > 30*time.Second {
		t.Fatalf("computed delay %v exceeds cap", d)
	}
}

func TestBackoffRateLimitFloorScalesWithAttempt(t *testing.T) {
	p := BackoffPolicy{Base: time.Millisecond, Cap: time.Minute, Multiplier: 1.5, Floor: time.Second}
	d := p.NextRateLimit(0, 3, 0)
	if d < 3*time.Second {
		t.Fatalf("expected at least floor*attempt (3s), got %v", d)
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	if got := parseRetryAfter("7"); got != 7*time.Second {
		t.Fatalf("got %v", got)
	}
	if got := parseRetryAfter(""); got != 0 {
		t.Fatalf("got %v", got)
	}
	if got := parseRetryAfter("junk"); got != 0 {
		t.Fatalf("got %v", got)
	}
}
