package feedclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/ratelimit"
	xhttp "EdgarPull/pkg/http"
	applogger "EdgarPull/pkg/logger"
)

const pacerKey = "upstream"

// Config holds feed client behavior knobs.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	MinSpacing time.Duration
	Backoff    BackoffPolicy
}

// Request is one upstream fetch. Form tags metrics; Progress, when set,
// receives one event per attempt.
type Request struct {
	URL      string
	Query    map[string][]string
	Form     string
	Percent  int // progress percent hint for emitted events
	Progress models.ProgressFunc
}

// Response is a completed upstream fetch.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client issues upstream requests one at a time with adaptive backoff.
// All callers share a single scheduler: the upstream host enforces one
// aggregate rate limit, so parallel requests only trade 429s for latency.
type Client struct {
	mu      sync.Mutex
	http    *xhttp.Client
	pacer   *ratelimit.Limiter
	cfg     Config
	metrics repository.Metrics
	log     *applogger.Logger

	sleep func(ctx context.Context, d time.Duration) error // test seam
}

// New creates the rate-limited upstream client.
func New(cfg Config, metrics repository.Metrics, log *applogger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	return &Client{
		http: xhttp.NewClient(
			xhttp.WithTimeout(cfg.Timeout),
			xhttp.WithUserAgent(cfg.UserAgent),
		),
		pacer:   ratelimit.New(),
		cfg:     cfg,
		metrics: metrics,
		log:     log,
		sleep:   sleepCtx,
	}
}

// Do executes the request, retrying with classified backoff. It returns the
// body on any 2xx, and a typed error (RateLimitedError, UpstreamServerError,
// NetworkError, RequestFailedError) otherwise.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		prev     time.Duration
		lastErr  error
		lastKind string
		lastRA   time.Duration
		last5xx  int
	)

	// The fetch itself outlives the caller: an abandoned request lets the
	// in-flight upstream call finish so its result still reaches the cache.
	// Cancellation stays cooperative at attempt boundaries.
	fetchCtx := context.WithoutCancel(ctx)

	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.pacer.Wait(ctx, pacerKey, c.cfg.MinSpacing); err != nil {
			return nil, err
		}

		c.emit(req, false)

		resp, err := c.http.SendRequest(fetchCtx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         req.URL,
			QueryParams: req.Query,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr, lastKind = err, "network"
			c.record(req.Form, "network", false)
			prev = c.cfg.Backoff.NextServerError(prev, attempt)
			c.warn(req, attempt, prev, err)
			if err := c.sleep(ctx, prev); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr, lastKind = readErr, "network"
			c.record(req.Form, "network", false)
			prev = c.cfg.Backoff.NextServerError(prev, attempt)
			if err := c.sleep(ctx, prev); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			c.record(req.Form, "ok", false)
			return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			lastRA = parseRetryAfter(resp.Header.Get("Retry-After"))
			lastErr = fmt.Errorf("status 429")
			lastKind = "ratelimit"
			c.record(req.Form, "ratelimit", true)
			c.emit(req, true)
			prev = c.cfg.Backoff.NextRateLimit(prev, attempt, lastRA)
			c.warn(req, attempt, prev, lastErr)
			if err := c.sleep(ctx, prev); err != nil {
				return nil, err
			}

		case resp.StatusCode >= 500:
			last5xx = resp.StatusCode
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			lastKind = "server"
			c.record(req.Form, "server", false)
			prev = c.cfg.Backoff.NextServerError(prev, attempt)
			c.warn(req, attempt, prev, lastErr)
			if err := c.sleep(ctx, prev); err != nil {
				return nil, err
			}

		default:
			c.record(req.Form, "failed", false)
			return nil, &RequestFailedError{Status: resp.StatusCode, Err: fmt.Errorf("status %d", resp.StatusCode)}
		}
	}

	switch lastKind {
	case "ratelimit":
		return nil, &RateLimitedError{Attempts: c.cfg.MaxRetries, RetryAfter: lastRA, Err: lastErr}
	case "server":
		return nil, &UpstreamServerError{Status: last5xx, Attempts: c.cfg.MaxRetries, Err: lastErr}
	default:
		return nil, &NetworkError{Attempts: c.cfg.MaxRetries, Err: lastErr}
	}
}

func (c *Client) emit(req Request, rateLimited bool) {
	if req.Progress == nil {
		return
	}
	req.Progress(models.Progress{
		Stage:           models.StageFetching,
		ProgressPercent: req.Percent,
		IsRateLimit:     rateLimited,
	})
}

func (c *Client) record(form, status string, retryRL bool) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordFeedRequest(form, status)
	if status != "ok" && status != "failed" {
		c.metrics.RecordRetry(form, retryRL)
	}
}

func (c *Client) warn(req Request, attempt int, delay time.Duration, err error) {
	if c.log == nil {
		return
	}
	c.log.Warn("feed request retry",
		applogger.String("url", req.URL),
		applogger.Int("attempt", attempt),
		applogger.Duration("delay_ms", delay),
		applogger.Error(err),
	)
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
