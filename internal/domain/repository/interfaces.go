package repository

import (
	"context"
	"errors"
	"time"

	"EdgarPull/internal/domain/models"
)

// ErrFilingNotCached reports a clean miss from a FilingStore, as opposed to
// a backend failure.
var ErrFilingNotCached = errors.New("filing not cached")

// FilingStore is the persistent cache/billing collaborator. This subsystem
// only calls Get and Put; tier decisions and credit accounting live behind
// the interface.
type FilingStore interface {
	Get(ctx context.Context, userID, dataType, key string) ([]byte, error)
	Put(ctx context.Context, userID, dataType, key string, payload []byte, ttl time.Duration, creditsCharged int) error
	Health(ctx context.Context) error
	Close() error
}

// Publisher fans freshly parsed records out to downstream subsystems.
type Publisher interface {
	PublishTrades(ctx context.Context, trades []*models.InsiderTrade) error
	PublishHoldings(ctx context.Context, holdings []*models.InstitutionalHolding) error
	Close() error
}

// Storage archives emitted records for warm starts and offline analytics.
type Storage interface {
	StoreTrades(ctx context.Context, trades []*models.InsiderTrade) error
	StoreHoldings(ctx context.Context, holdings []*models.InstitutionalHolding) error
	QueryTrades(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.InsiderTrade, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records pipeline observability signals.
type Metrics interface {
	RecordFeedRequest(form string, status string)
	RecordRetry(form string, rateLimited bool)
	RecordParseFailure(form string)
	RecordCacheHit(kind string, hit bool)
	RecordResolution(strategy string)
	RecordFetchDuration(form string, seconds float64)
}

// Resolver maps ambiguous filer identity onto a ticker symbol. Growth of the
// backing directory and memo tables is hidden behind the interface.
type Resolver interface {
	ResolveTicker(ctx context.Context, q ResolveQuery) string
	Seed(entries map[string]string) // cik -> ticker, additive
}

// ResolveQuery carries whatever identity fragments a parser extracted.
type ResolveQuery struct {
	CIK         string
	CompanyName string
	PersonName  string
	FilingText  string
}
