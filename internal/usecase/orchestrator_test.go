package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/service/directory"
	"EdgarPull/internal/service/feedclient"
	"EdgarPull/internal/service/respcache"
	"EdgarPull/internal/service/resolver"
)

const form4Feed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>4 - Apple Inc. (0000320193) (Issuer)</title>
    <summary>Reporting Person: Cook Timothy D
Relationship of Reporting Person to Issuer: Chief Executive Officer.
On 08/25/2026 acquired 1,000 shares at a price of $100.00 per share.
Date of Transaction: 2026-08-25.</summary>
    <published>2026-08-25T14:30:00Z</published>
    <updated>2026-08-25T14:30:00Z</updated>
    <link rel="alternate" href="https://filings.example.com/Archives/0001/a1.htm"/>
  </entry>
  <entry>
    <title>4 - Cook Timothy D (0001214156) (Reporting)</title>
    <summary></summary>
    <published>2026-08-25T14:30:00Z</published>
    <updated>2026-08-25T14:30:00Z</updated>
    <link rel="alternate" href="https://filings.example.com/Archives/0001/a1.htm"/>
  </entry>
</feed>`

var testNow = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func newTestOrchestrator(t *testing.T, feedURL string, cfg OrchestratorConfig) *FilingOrchestrator {
	t.Helper()
	client := feedclient.New(feedclient.Config{
		UserAgent:  "test agent test@example.com",
		MaxRetries: 1,
	}, nil, nil)
	res := resolver.New(directory.New(nil), nil, resolver.Config{}, nil, nil)
	cache := respcache.New(100, time.Hour, 0)
	t.Cleanup(cache.Close)

	cfg.FeedURL = feedURL
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = time.Minute
	}
	if cfg.PaidTTL == 0 {
		cfg.PaidTTL = time.Minute
	}
	o := NewFilingOrchestrator(
		client,
		cache,
		NewForm4Parser(client, res, nil, nil),
		NewForm13FParser(client, res, nil, nil),
		NewRecordSink(nil, nil, nil),
		cfg,
		nil,
		nil,
	)
	o.now = func() time.Time { return testNow }
	o.sleep = func(context.Context, time.Duration) error { return nil }
	return o
}

func TestInsiderTradesPipeline(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte(form4Feed))
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, srv.URL, OrchestratorConfig{WindowDays: 5, MaxWindows: 6})
	trades, err := o.InsiderTrades(context.Background(), FetchOptions{Range: 15 * 24 * time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != 3 {
		t.Fatalf("expected 3 window fetches, got %d", got)
	}
	// The same filing shows up in every window; one record must survive.
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade after dedup, got %d", len(trades))
	}
	tr := trades[0]
	if tr.Ticker != "AAPL" {
		t.Fatalf("ticker = %q", tr.Ticker)
	}
	if tr.InsiderName != "Cook Timothy D" {
		t.Fatalf("insider = %q", tr.InsiderName)
	}
	if tr.Role != "CEO" {
		t.Fatalf("role = %q", tr.Role)
	}
	if tr.TradeType != models.TradeBuy || tr.Shares != 1000 {
		t.Fatalf("transaction = %s %d", tr.TradeType, tr.Shares)
	}
	if !tr.Value.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("value = %s", tr.Value)
	}
	if tr.DateSource != models.DateFromDocument {
		t.Fatalf("date source = %s", tr.DateSource)
	}
	if tr.FilingDate.Format("2006-01-02") != "2026-08-25" {
		t.Fatalf("filing date = %s", tr.FilingDate)
	}
}

func TestInsiderTradesSecondRunHitsCache(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte(form4Feed))
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, srv.URL, OrchestratorConfig{WindowDays: 5})
	ctx := context.Background()
	if _, err := o.InsiderTrades(ctx, FetchOptions{Range: 24 * time.Hour}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := o.InsiderTrades(ctx, FetchOptions{Range: 24 * time.Hour}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Fatalf("expected second run served from cache, saw %d fetches", got)
	}
}

func TestInsiderTradesStaleFallback(t *testing.T) {
	var throttling atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if throttling.Load() {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(form4Feed))
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, srv.URL, OrchestratorConfig{
		WindowDays: 5,
		DefaultTTL: time.Nanosecond, // every entry is immediately too old
	})
	ctx := context.Background()
	if _, err := o.InsiderTrades(ctx, FetchOptions{Range: 24 * time.Hour}); err != nil {
		t.Fatalf("warmup run: %v", err)
	}

	throttling.Store(true)
	var done models.Progress
	trades, err := o.InsiderTrades(ctx, FetchOptions{
		Range: 24 * time.Hour,
		Progress: func(p models.Progress) {
			if p.Stage == models.StageDone {
				done = p
			}
		},
	})
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 stale trade, got %d", len(trades))
	}
	if !done.IsRateLimit {
		t.Fatalf("done event must flag the degraded result")
	}
}

func TestInsiderTradesRateLimitedNoCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, srv.URL, OrchestratorConfig{WindowDays: 5})
	var failed models.Progress
	_, err := o.InsiderTrades(context.Background(), FetchOptions{
		Range: 24 * time.Hour,
		Progress: func(p models.Progress) {
			if p.Stage == models.StageFailed {
				failed = p
			}
		},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !feedclient.IsRateLimited(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if !failed.IsRateLimit || failed.ErrorMessage == "" {
		t.Fatalf("failed event not populated: %+v", failed)
	}
}

func TestInsiderTradesMalformedWindowSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a feed"))
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, srv.URL, OrchestratorConfig{WindowDays: 5})
	trades, err := o.InsiderTrades(context.Background(), FetchOptions{Range: 24 * time.Hour})
	if err != nil {
		t.Fatalf("malformed window must not fail the run: %v", err)
	}
	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
}

func TestPlanWindows(t *testing.T) {
	o := newTestOrchestrator(t, "http://unused", OrchestratorConfig{WindowDays: 5, MaxWindows: 6})

	windows := o.planWindows(testNow, 15*24*time.Hour)
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	if !windows[0].end.Equal(testNow) {
		t.Fatalf("first window must end now")
	}
	for i := 1; i < len(windows); i++ {
		gap := windows[i-1].start.Sub(windows[i].end)
		if gap != 24*time.Hour {
			t.Fatalf("windows %d/%d not contiguous: gap %s", i-1, i, gap)
		}
	}

	if got := len(o.planWindows(testNow, 365*24*time.Hour)); got != 6 {
		t.Fatalf("expected cap at 6 windows, got %d", got)
	}
	if got := len(o.planWindows(testNow, time.Hour)); got != 1 {
		t.Fatalf("expected 1 window for sub-day range, got %d", got)
	}
}

func TestDedupTrades(t *testing.T) {
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	mk := func(ticker string, shares int64) *models.InsiderTrade {
		return &models.InsiderTrade{
			Ticker:      ticker,
			InsiderName: "Doe Jane",
			Shares:      shares,
			Value:       decimal.NewFromInt(shares * 10),
			FilingDate:  day,
		}
	}
	in := []*models.InsiderTrade{mk("AAPL", 100), mk("AAPL", 100), mk("AAPL", 200), mk("MSFT", 100)}
	out := dedupTrades(in)
	if len(out) != 3 {
		t.Fatalf("expected 3 distinct trades, got %d", len(out))
	}
	again := dedupTrades(out)
	if len(again) != len(out) {
		t.Fatalf("dedup not idempotent: %d then %d", len(out), len(again))
	}
}

func TestDedupTradesNormalizesIdentity(t *testing.T) {
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	mk := func(ticker, name string) *models.InsiderTrade {
		return &models.InsiderTrade{
			Ticker:      ticker,
			InsiderName: name,
			Shares:      100,
			Value:       decimal.NewFromInt(1000),
			FilingDate:  day,
		}
	}
	// The same event can surface with differing case and spacing per window.
	in := []*models.InsiderTrade{
		mk("AAPL", "Doe Jane"),
		mk("aapl ", "DOE  JANE"),
	}
	if out := dedupTrades(in); len(out) != 1 {
		t.Fatalf("expected 1 trade after normalized dedup, got %d", len(out))
	}
}

func TestFilterTrades(t *testing.T) {
	mk := func(d time.Time) *models.InsiderTrade { return &models.InsiderTrade{FilingDate: d} }
	lo, hi := acceptRange(testNow, 7*24*time.Hour)
	in := []*models.InsiderTrade{
		mk(testNow),
		// feed clock a day ahead of ours, still admitted
		mk(testNow.Add(24 * time.Hour)),
		// exactly on the widened lower bound
		mk(testNow.Add(-8 * 24 * time.Hour)),
		mk(testNow.Add(-30 * 24 * time.Hour)),
		mk(testNow.Add(72 * time.Hour)),
	}
	out := filterTrades(in, lo, hi)
	if len(out) != 3 {
		t.Fatalf("expected 3 kept, got %d", len(out))
	}
}
