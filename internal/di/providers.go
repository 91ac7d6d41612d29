package di

import (
	"context"
	"fmt"
	"time"

	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/handler/api"
	internalrepo "EdgarPull/internal/repository"
	"EdgarPull/internal/service/directory"
	"EdgarPull/internal/service/feedclient"
	"EdgarPull/internal/service/respcache"
	"EdgarPull/internal/service/resolver"
	"EdgarPull/internal/usecase"
	pkgcache "EdgarPull/pkg/cache"
	pkgch "EdgarPull/pkg/clickhouse"
	"EdgarPull/pkg/config"
	pkgkafka "EdgarPull/pkg/kafka"
	applogger "EdgarPull/pkg/logger"
	"EdgarPull/pkg/metrics"
	"EdgarPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	level := "info"
	if cfg.Environment == "development" {
		format = "console"
		level = "debug"
	}
	l, err := applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideFeedClient creates the rate-limited upstream client.
func ProvideFeedClient(cfg *config.Config, m repository.Metrics, l *applogger.Logger) *feedclient.Client {
	return feedclient.New(feedclient.Config{
		UserAgent:  cfg.Feed.UserAgent,
		Timeout:    cfg.Feed.RequestTimeout,
		MaxRetries: cfg.Feed.MaxRetries,
		MinSpacing: cfg.Feed.MinSpacing,
		Backoff: feedclient.BackoffPolicy{
			Base:       cfg.Feed.BackoffBase,
			Cap:        cfg.Feed.BackoffCap,
			Multiplier: cfg.Feed.BackoffMultiplier,
			Floor:      cfg.Feed.RateLimitFloor,
			Jitter:     0.2,
		},
	}, m, l)
}

// ProvideDirectory creates the company directory seeded with the static
// fallback set. The bulk list load happens at app startup.
func ProvideDirectory(l *applogger.Logger) *directory.Directory {
	return directory.New(l)
}

// ProvideResolver creates the ticker resolution engine.
func ProvideResolver(dir *directory.Directory, client *feedclient.Client, cfg *config.Config, m repository.Metrics, l *applogger.Logger) *resolver.Engine {
	return resolver.New(dir, client, resolver.Config{
		SubmissionsURL: cfg.Feed.SubmissionsURL,
		FullTextURL:    cfg.Feed.FullTextURL,
	}, m, l)
}

// ProvideResponseCache creates the bounded feed response cache.
func ProvideResponseCache(cfg *config.Config) *respcache.Cache {
	return respcache.New(
		cfg.ResponseCache.MaxEntries,
		cfg.ResponseCache.StalenessCeiling,
		cfg.ResponseCache.SweepInterval,
	)
}

// ProvideFilingStore creates the per-user filing store on the configured
// backend.
func ProvideFilingStore(cfg *config.Config) (repository.FilingStore, error) {
	if cfg.Store.Backend == "redis" {
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Store.Redis.Host),
			pkgcache.WithRedisPort(cfg.Store.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Store.Redis.Password),
			pkgcache.WithRedisDB(cfg.Store.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Store.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("filing store redis: %w", err)
		}
		// Memory in front of Redis keeps repeat lookups off the wire.
		lc := pkgcache.NewLayeredCache(rc)
		return internalrepo.NewCacheFilingStore(lc, lc.Close), nil
	}
	mc := pkgcache.NewMemoryCache()
	return internalrepo.NewCacheFilingStore(mc, nil), nil
}

// ProvidePublisher creates the Kafka publisher, or nil when Kafka is
// disabled in config.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic+".insider-trades", cfg.Kafka.Topic+".institutional-holdings"), nil
}

// ProvideStorage creates the ClickHouse archive, or nil when disabled.
func ProvideStorage(cfg *config.Config) (repository.Storage, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".insider_trades (id String, ticker String, insider_name String, role String, trade_type String, shares Int64, price Decimal(18,4), value Decimal(20,2), filing_date DateTime, transaction_date DateTime, date_source String, form_type String, source_url String) ENGINE=ReplacingMergeTree ORDER BY (ticker, filing_date, insider_name, shares)",
		"CREATE TABLE IF NOT EXISTS " + db + ".institutional_holdings (id String, ticker String, cik String, institution_name String, total_shares Int64, total_value Decimal(20,2), filing_date DateTime, quarter_end Date, form_type String, source_url String, data_unavailable UInt8, positions String) ENGINE=ReplacingMergeTree ORDER BY (cik, filing_date)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return internalrepo.NewClickHouseStorage(client.DB(), db+".insider_trades", db+".institutional_holdings"), nil
}

// ProvideForm4Parser creates the Form 4 parsing use case.
func ProvideForm4Parser(client *feedclient.Client, res *resolver.Engine, m repository.Metrics, l *applogger.Logger) *usecase.Form4Parser {
	return usecase.NewForm4Parser(client, res, m, l)
}

// ProvideForm13FParser creates the Form 13F parsing use case.
func ProvideForm13FParser(client *feedclient.Client, res *resolver.Engine, m repository.Metrics, l *applogger.Logger) *usecase.Form13FParser {
	return usecase.NewForm13FParser(client, res, m, l)
}

// ProvideRecordSink creates the downstream fan-out.
func ProvideRecordSink(pub repository.Publisher, store repository.Storage, l *applogger.Logger) *usecase.RecordSink {
	return usecase.NewRecordSink(pub, store, l)
}

// ProvideOrchestrator creates the windowed fetch orchestrator.
func ProvideOrchestrator(
	client *feedclient.Client,
	cache *respcache.Cache,
	form4 *usecase.Form4Parser,
	form13f *usecase.Form13FParser,
	sink *usecase.RecordSink,
	cfg *config.Config,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.FilingOrchestrator {
	return usecase.NewFilingOrchestrator(client, cache, form4, form13f, sink, usecase.OrchestratorConfig{
		FeedURL:     cfg.Feed.BaseURL,
		WindowDays:  cfg.Feed.WindowDays,
		MaxWindows:  cfg.Feed.MaxWindows,
		WindowDelay: cfg.Feed.WindowDelay,
		EntryLimit:  cfg.Feed.EntryLimit,
		DefaultTTL:  cfg.ResponseCache.DefaultTTL,
		PaidTTL:     cfg.ResponseCache.PaidTTL,
	}, m, l)
}

// ProvideProgressHub creates the websocket progress hub.
func ProvideProgressHub(l *applogger.Logger) *api.ProgressHub {
	return api.NewProgressHub(l)
}

// ProvideFilingsHandler creates the Echo handler for the filings API.
func ProvideFilingsHandler(
	l *applogger.Logger,
	orch *usecase.FilingOrchestrator,
	res *resolver.Engine,
	store repository.FilingStore,
	storage repository.Storage,
	hub *api.ProgressHub,
	cfg *config.Config,
) *api.FilingsEchoHandler {
	return api.NewFilingsEchoHandler(l, orch, res, store, storage, hub, cfg.Store.DefaultTTL, cfg.Store.DefaultTTL/2)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.FilingsEchoHandler,
	hub *api.ProgressHub,
	client *feedclient.Client,
	dir *directory.Directory,
	cache *respcache.Cache,
	store repository.FilingStore,
	storage repository.Storage,
	pub repository.Publisher,
) *server.App {
	return server.New(cfg, l, handler, hub, client, dir, cache, store, storage, pub)
}
