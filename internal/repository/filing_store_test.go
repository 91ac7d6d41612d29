package repository

import (
	"context"
	"testing"
	"time"

	domrepo "EdgarPull/internal/domain/repository"
	"EdgarPull/pkg/cache"
)

func newMemoryStore(t *testing.T) domrepo.FilingStore {
	t.Helper()
	return NewCacheFilingStore(cache.NewMemoryCache(), nil)
}

func TestFilingStoreRoundTrip(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	payload := []byte(`[{"ticker":"AAPL"}]`)
	if err := s.Put(ctx, "u1", "insider_trades", "trades:1m:50", payload, time.Minute, 1); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "u1", "insider_trades", "trades:1m:50")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload = %s, want %s", got, payload)
	}
}

func TestFilingStoreMiss(t *testing.T) {
	s := newMemoryStore(t)

	_, err := s.Get(context.Background(), "u1", "insider_trades", "absent")
	if err != domrepo.ErrFilingNotCached {
		t.Fatalf("err = %v, want ErrFilingNotCached", err)
	}
}

func TestFilingStoreKeysScopedPerUser(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "u1", "insider_trades", "trades:1m:50", []byte(`"a"`), time.Minute, 1); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Get(ctx, "u2", "insider_trades", "trades:1m:50"); err != domrepo.ErrFilingNotCached {
		t.Fatalf("cross-user err = %v, want ErrFilingNotCached", err)
	}
	if _, err := s.Get(ctx, "u1", "institutional_holdings", "trades:1m:50"); err != domrepo.ErrFilingNotCached {
		t.Fatalf("cross-type err = %v, want ErrFilingNotCached", err)
	}
}

func TestFilingStoreHealth(t *testing.T) {
	s := newMemoryStore(t)
	if err := s.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}
