package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/service/directory"
	"EdgarPull/internal/service/feedclient"
	"EdgarPull/internal/service/resolver"
)

// A reporting person unknown to the directory must still resolve through
// the per-filer submissions document keyed by the person CIK.
func TestForm4PersonCIKSubmissionsResolution(t *testing.T) {
	var submissionHits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cik/0001111111.json" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&submissionHits, 1)
		w.Write([]byte(`{"name":"SMITH JOHN","tickers":["AAPL"]}`))
	}))
	defer srv.Close()

	client := feedclient.New(feedclient.Config{
		UserAgent:  "test agent test@example.com",
		MaxRetries: 1,
	}, nil, nil)
	res := resolver.New(directory.New(nil), client, resolver.Config{
		SubmissionsURL: srv.URL + "/cik/%s.json",
	}, nil, nil)
	p := NewForm4Parser(client, res, nil, nil)

	entries := []models.FeedEntry{{
		Title: "4 - SMITH JOHN (0001111111) (Reporting)",
		Summary: "Reporting Person: Smith John\n" +
			"Relationship of Reporting Person to Issuer: Director.\n" +
			"CIK: 0001111111. On 08/25/2026 acquired 500 shares at a price of $20.00 per share.",
		Published: testNow,
	}}

	trades := p.Parse(context.Background(), entries, testNow)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if got := atomic.LoadInt32(&submissionHits); got != 1 {
		t.Fatalf("submissions endpoint hit %d times, want 1", got)
	}
	if trades[0].Ticker != "AAPL" {
		t.Fatalf("ticker = %q, want AAPL", trades[0].Ticker)
	}
	if trades[0].InsiderName != "Smith John" {
		t.Fatalf("insider = %q", trades[0].InsiderName)
	}
}
