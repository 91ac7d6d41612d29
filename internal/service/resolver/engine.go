package resolver

import (
	"context"
	"strings"
	"sync"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/directory"
	"EdgarPull/internal/service/feedclient"
	applogger "EdgarPull/pkg/logger"
)

// Config points the upstream-backed person strategies at their endpoints.
type Config struct {
	SubmissionsURL string // printf template with one %s for the padded CIK
	FullTextURL    string
}

type memoResult struct {
	ticker   string // "" means negative
	strategy string
}

// Engine resolves filer identity to tickers through an ordered strategy
// chain with process-lifetime memoization, negatives included so dead
// identifiers are only chased once.
type Engine struct {
	dir     *directory.Directory
	company []strategy
	person  []strategy
	mu      sync.RWMutex
	memo    map[string]memoResult
	metrics repository.Metrics
	log     *applogger.Logger
}

// New builds the engine. client may be nil; the upstream-backed person
// strategies then short-circuit to misses.
func New(dir *directory.Directory, client *feedclient.Client, cfg Config, metrics repository.Metrics, log *applogger.Logger) *Engine {
	company := []strategy{
		cikLookup{dir: dir},
		nameLookup{dir: dir},
		aliasLookup{},
		synthesize{},
	}
	person := []strategy{
		cikLookup{dir: dir},
		submissionsLookup{client: client, url: cfg.SubmissionsURL},
		issuerField{dir: dir},
		personOverride{},
		fullTextSearch{client: client, url: cfg.FullTextURL},
	}
	return &Engine{
		dir:     dir,
		company: company,
		person:  person,
		memo:    make(map[string]memoResult),
		metrics: metrics,
		log:     log,
	}
}

// ResolveTicker runs the chain for q, returning the ticker or the
// unresolved sentinel. Person queries run the person chain; otherwise the
// company chain applies.
func (e *Engine) ResolveTicker(ctx context.Context, q repository.ResolveQuery) string {
	key := memoKey(q)
	if key != "" {
		e.mu.RLock()
		r, ok := e.memo[key]
		e.mu.RUnlock()
		if ok {
			if r.ticker == "" {
				return models.TickerUnresolved
			}
			return r.ticker
		}
	}

	chain := e.company
	if q.PersonName != "" {
		chain = e.person
	}

	for _, s := range chain {
		ticker, ok := s.attempt(ctx, q)
		if !ok || ticker == "" || ticker == models.TickerUnresolved {
			continue
		}
		ticker = strings.ToUpper(ticker)
		e.remember(key, q, ticker, s.name())
		return ticker
	}

	e.remember(key, q, "", "none")
	return models.TickerUnresolved
}

// Seed adds cik -> ticker pairs to the backing directory.
func (e *Engine) Seed(entries map[string]string) {
	e.dir.Seed(entries)
}

// InstitutionTicker resolves a 13F filer's own symbol: the curated
// large-asset-manager table first, then the company chain.
func (e *Engine) InstitutionTicker(ctx context.Context, cik, name string) string {
	if t, ok := lookupSubstring(institutionTickers, directory.NormalizeName(name)); ok {
		if t == "" || t == models.TickerUnresolved {
			return models.TickerUnresolved
		}
		return t
	}
	return e.ResolveTicker(ctx, repository.ResolveQuery{CIK: cik, CompanyName: name})
}

func (e *Engine) remember(key string, q repository.ResolveQuery, ticker, strat string) {
	if e.metrics != nil {
		e.metrics.RecordResolution(strat)
	}
	if key == "" {
		return
	}
	e.mu.Lock()
	e.memo[key] = memoResult{ticker: ticker, strategy: strat}
	e.mu.Unlock()
	if ticker != "" && q.CIK != "" {
		e.dir.Add(q.CIK, q.CompanyName, ticker)
	}
}

func memoKey(q repository.ResolveQuery) string {
	switch {
	case q.CIK != "":
		return "cik:" + directory.PadCIK(q.CIK)
	case q.PersonName != "":
		return "person:" + directory.NormalizeName(q.PersonName)
	case q.CompanyName != "":
		return "name:" + directory.NormalizeName(q.CompanyName)
	}
	return ""
}
