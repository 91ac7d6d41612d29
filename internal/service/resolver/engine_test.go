package resolver

import (
	"context"
	"testing"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/directory"
)

func newTestEngine() *Engine {
	return New(directory.New(nil), nil, Config{}, nil, nil)
}

func TestResolveByCIK(t *testing.T) {
	e := newTestEngine()
	got := e.ResolveTicker(context.Background(), repository.ResolveQuery{CIK: "0000320193"})
	if got != "AAPL" {
		t.Fatalf("got %q, want AAPL", got)
	}
}

func TestResolveConsistentAcrossCIKAndName(t *testing.T) {
	e := newTestEngine()
	byCIK := e.ResolveTicker(context.Background(), repository.ResolveQuery{CIK: "789019"})
	byName := e.ResolveTicker(context.Background(), repository.ResolveQuery{CompanyName: "Microsoft Corp"})
	if byCIK != byName || byCIK != "MSFT" {
		t.Fatalf("inconsistent: cik=%q name=%q", byCIK, byName)
	}
}

func TestResolveAlias(t *testing.T) {
	e := newTestEngine()
	got := e.ResolveTicker(context.Background(), repository.ResolveQuery{CompanyName: "Facebook Technologies"})
	if got != "META" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveSynthesizedLastResort(t *testing.T) {
	e := newTestEngine()
	got := e.ResolveTicker(context.Background(), repository.ResolveQuery{CompanyName: "Quantum Widget Systems Inc"})
	if got != "QWS" {
		t.Fatalf("got %q, want initials QWS", got)
	}
	got = e.ResolveTicker(context.Background(), repository.ResolveQuery{CompanyName: "Initech Inc"})
	if got != "INIT" {
		t.Fatalf("got %q, want truncation INIT", got)
	}
}

func TestResolvePersonOverride(t *testing.T) {
	e := newTestEngine()
	got := e.ResolveTicker(context.Background(), repository.ResolveQuery{PersonName: "Musk Elon"})
	if got != "TSLA" {
		t.Fatalf("got %q", got)
	}
}

func TestResolvePersonIssuerField(t *testing.T) {
	e := newTestEngine()
	got := e.ResolveTicker(context.Background(), repository.ResolveQuery{
		PersonName: "Doe Jane",
		FilingText: "Form 4 filed by Doe Jane. Issuer: Apple Inc. Washington, D.C.",
	})
	if got != "AAPL" {
		t.Fatalf("got %q", got)
	}
}

func TestNegativeMemoized(t *testing.T) {
	e := newTestEngine()
	q := repository.ResolveQuery{PersonName: "Nobody Anyone"}
	if got := e.ResolveTicker(context.Background(), q); got != models.TickerUnresolved {
		t.Fatalf("expected sentinel, got %q", got)
	}
	e.mu.RLock()
	r, ok := e.memo["person:nobody anyone"]
	e.mu.RUnlock()
	if !ok || r.ticker != "" {
		t.Fatalf("negative result not memoized: %+v ok=%v", r, ok)
	}
}

func TestSuccessGrowsDirectory(t *testing.T) {
	e := newTestEngine()
	// Alias resolution with a CIK present should register the CIK mapping.
	got := e.ResolveTicker(context.Background(), repository.ResolveQuery{CIK: "123456", CompanyName: "Facebook Inc"})
	if got != "META" {
		t.Fatalf("got %q", got)
	}
	if tk, ok := e.dir.ByCIK("123456"); !ok || tk != "META" {
		t.Fatalf("directory did not grow: %q %v", tk, ok)
	}
}

func TestInstitutionTicker(t *testing.T) {
	e := newTestEngine()
	if got := e.InstitutionTicker(context.Background(), "1067983", "BERKSHIRE HATHAWAY INC"); got != "BRK.B" {
		t.Fatalf("got %q", got)
	}
	// Unlisted managers map to the sentinel, not a synthesized symbol.
	if got := e.InstitutionTicker(context.Background(), "", "VANGUARD GROUP INC"); got != models.TickerUnresolved {
		t.Fatalf("got %q", got)
	}
}
