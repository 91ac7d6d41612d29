package usecase

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/feedclient"
	"EdgarPull/internal/service/filingparse"
	"EdgarPull/internal/service/respcache"
	applogger "EdgarPull/pkg/logger"
	"EdgarPull/pkg/util"
)

// OrchestratorConfig holds the window planning and cache freshness knobs.
type OrchestratorConfig struct {
	FeedURL     string
	WindowDays  int
	MaxWindows  int
	WindowDelay time.Duration
	EntryLimit  int
	DefaultTTL  time.Duration
	PaidTTL     time.Duration
}

// FetchOptions parameterizes one orchestrated run.
type FetchOptions struct {
	Range    time.Duration // how far back to collect filings
	Paid     bool          // paid tier gets a tighter freshness bound
	Progress models.ProgressFunc
}

// FilingOrchestrator runs the windowed fetch pipeline: plan backward date
// windows, fetch each one through the cache, parse, merge, dedup, filter to
// the requested range and sort newest first. Windows fail independently; a
// run only errors when it produced nothing at all.
type FilingOrchestrator struct {
	client  *feedclient.Client
	cache   *respcache.Cache
	form4   *Form4Parser
	form13f *Form13FParser
	sink    *RecordSink
	cfg     OrchestratorConfig
	metrics repository.Metrics
	log     *applogger.Logger

	// test seams
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFilingOrchestrator creates a new FilingOrchestrator instance.
func NewFilingOrchestrator(
	client *feedclient.Client,
	cache *respcache.Cache,
	form4 *Form4Parser,
	form13f *Form13FParser,
	sink *RecordSink,
	cfg OrchestratorConfig,
	metrics repository.Metrics,
	log *applogger.Logger,
) *FilingOrchestrator {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 5
	}
	if cfg.MaxWindows <= 0 {
		cfg.MaxWindows = 6
	}
	if cfg.EntryLimit <= 0 {
		cfg.EntryLimit = 100
	}
	return &FilingOrchestrator{
		client:  client,
		cache:   cache,
		form4:   form4,
		form13f: form13f,
		sink:    sink,
		cfg:     cfg,
		metrics: metrics,
		log:     log,
		now:     time.Now,
		sleep:   sleepBetween,
	}
}

// InsiderTrades collects Form 4 filings over opts.Range.
func (o *FilingOrchestrator) InsiderTrades(ctx context.Context, opts FetchOptions) ([]*models.InsiderTrade, error) {
	now := o.now()
	started := now
	o.emit(opts, models.StagePlanning, 2, 0, 0, "", false)

	entries, stale, err := o.fetchWindows(ctx, models.Form4, opts, now)
	if err != nil {
		o.emit(opts, models.StageFailed, 100, 0, 0, feedclient.DisplayMessage(err), feedclient.IsRateLimited(err))
		return nil, err
	}

	o.emit(opts, models.StageMerging, 75, len(entries), 0, "", stale)
	trades := o.form4.Parse(ctx, entries, now)
	trades = dedupTrades(trades)

	o.emit(opts, models.StageFiltering, 85, len(trades), 0, "", stale)
	lo, hi := acceptRange(now, opts.Range)
	trades = filterTrades(trades, lo, hi)

	o.emit(opts, models.StageSorting, 92, len(trades), 0, "", stale)
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].FilingDate.After(trades[j].FilingDate)
	})

	o.sink.EmitTrades(ctx, trades)
	o.observe(models.Form4, started)
	o.emit(opts, models.StageDone, 100, len(trades), len(trades), "", stale)
	return trades, nil
}

// InstitutionalHoldings collects Form 13F filings over opts.Range.
func (o *FilingOrchestrator) InstitutionalHoldings(ctx context.Context, opts FetchOptions) ([]*models.InstitutionalHolding, error) {
	now := o.now()
	started := now
	o.emit(opts, models.StagePlanning, 2, 0, 0, "", false)

	entries, stale, err := o.fetchWindows(ctx, models.Form13F, opts, now)
	if err != nil {
		o.emit(opts, models.StageFailed, 100, 0, 0, feedclient.DisplayMessage(err), feedclient.IsRateLimited(err))
		return nil, err
	}

	o.emit(opts, models.StageMerging, 75, len(entries), 0, "", stale)
	holdings := o.form13f.Parse(ctx, entries, now)
	holdings = dedupHoldings(holdings)

	o.emit(opts, models.StageFiltering, 85, len(holdings), 0, "", stale)
	lo, hi := acceptRange(now, opts.Range)
	holdings = filterHoldings(holdings, lo, hi)

	o.emit(opts, models.StageSorting, 92, len(holdings), 0, "", stale)
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].FilingDate.After(holdings[j].FilingDate)
	})

	o.sink.EmitHoldings(ctx, holdings)
	o.observe(models.Form13F, started)
	o.emit(opts, models.StageDone, 100, len(holdings), len(holdings), "", stale)
	return holdings, nil
}

type feedWindow struct {
	start, end time.Time
}

// planWindows lays out backward windows of WindowDays each, newest first,
// capped at MaxWindows even when the requested range is wider.
func (o *FilingOrchestrator) planWindows(now time.Time, span time.Duration) []feedWindow {
	days := int(span.Hours() / 24)
	if days < 1 {
		days = 1
	}
	need := (days + o.cfg.WindowDays - 1) / o.cfg.WindowDays
	if need > o.cfg.MaxWindows {
		need = o.cfg.MaxWindows
	}
	windows := make([]feedWindow, 0, need)
	end := now
	for i := 0; i < need; i++ {
		start := end.AddDate(0, 0, -(o.cfg.WindowDays - 1))
		windows = append(windows, feedWindow{start: start, end: end})
		end = start.AddDate(0, 0, -1)
	}
	return windows
}

// fetchWindows runs the per-window fetch loop. Returned stale reports that
// at least one window was served from an expired cache entry after the
// upstream rate limited us.
func (o *FilingOrchestrator) fetchWindows(ctx context.Context, form models.FormType, opts FetchOptions, now time.Time) ([]models.FeedEntry, bool, error) {
	windows := o.planWindows(now, opts.Range)
	maxAge := o.cfg.DefaultTTL
	if opts.Paid {
		maxAge = o.cfg.PaidTTL
	}

	var (
		entries []models.FeedEntry
		stale   bool
		lastErr error
		fetched int
	)
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		percent := 10 + 60*i/len(windows)
		o.emit(opts, models.StageFetching, percent, len(entries), len(windows), "", false)

		key := respcache.Key(string(form), w.start, w.end, o.cfg.EntryLimit, i)
		if body, ok := o.cache.Get(key, maxAge); ok {
			o.hit("feed", true)
			entries = o.appendParsed(entries, form, body)
			continue
		}
		o.hit("feed", false)

		if fetched > 0 && o.cfg.WindowDelay > 0 {
			if err := o.sleep(ctx, o.cfg.WindowDelay); err != nil {
				return nil, false, err
			}
		}
		resp, err := o.client.Do(ctx, feedclient.Request{
			URL: o.cfg.FeedURL,
			Query: map[string][]string{
				"type":   {string(form)},
				"datea":  {util.FormatYYYYMMDD(w.start)},
				"dateb":  {util.FormatYYYYMMDD(w.end)},
				"count":  {strconv.Itoa(o.cfg.EntryLimit)},
				"action": {"getcompany"},
				"output": {"atom"},
			},
			Form:     string(form),
			Percent:  percent,
			Progress: opts.Progress,
		})
		fetched++
		if err != nil {
			lastErr = err
			if feedclient.IsRateLimited(err) {
				if body, ok := o.cache.GetAny(key); ok {
					o.hit("stale", true)
					stale = true
					entries = o.appendParsed(entries, form, body)
					continue
				}
				// The upstream is throttling this client; further windows
				// would only dig the hole deeper.
				o.warnWindow(form, i, err)
				break
			}
			o.warnWindow(form, i, err)
			continue
		}

		parsed, perr := filingparse.ParseFeed(resp.Body)
		o.cache.Put(key, resp.Body, perr != nil)
		if perr != nil {
			if o.metrics != nil {
				o.metrics.RecordParseFailure(string(form))
			}
			o.warnWindow(form, i, perr)
			continue
		}
		entries = append(entries, parsed...)
	}

	if len(entries) == 0 && lastErr != nil {
		return nil, false, lastErr
	}
	return entries, stale, nil
}

func (o *FilingOrchestrator) appendParsed(entries []models.FeedEntry, form models.FormType, body []byte) []models.FeedEntry {
	parsed, err := filingparse.ParseFeed(body)
	if err != nil {
		if o.metrics != nil {
			o.metrics.RecordParseFailure(string(form))
		}
		return entries
	}
	return append(entries, parsed...)
}

// acceptRange widens the requested range by a day on the old side for
// filings dated at window edges, and admits near-future dates, which occur
// when feed timestamps run ahead of the local clock.
func acceptRange(now time.Time, span time.Duration) (lo, hi time.Time) {
	return now.Add(-span - 24*time.Hour), now.Add(48 * time.Hour)
}

func filterTrades(trades []*models.InsiderTrade, lo, hi time.Time) []*models.InsiderTrade {
	out := trades[:0]
	for _, t := range trades {
		if t.FilingDate.Before(lo) || t.FilingDate.After(hi) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func filterHoldings(holdings []*models.InstitutionalHolding, lo, hi time.Time) []*models.InstitutionalHolding {
	out := holdings[:0]
	for _, h := range holdings {
		if h.FilingDate.Before(lo) || h.FilingDate.After(hi) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// dedupTrades drops repeats of the same filing seen through overlapping
// windows. Identity is the filing day plus ticker, insider and transaction
// amounts; feed IDs are not stable across fetches.
func dedupTrades(trades []*models.InsiderTrade) []*models.InsiderTrade {
	seen := make(map[string]struct{}, len(trades))
	out := trades[:0]
	for _, t := range trades {
		key := util.FormatYYYYMMDD(t.FilingDate) + "|" +
			strings.ToUpper(strings.TrimSpace(t.Ticker)) + "|" +
			util.Truncate(strings.ToLower(util.CollapseSpaces(t.InsiderName)), 50) + "|" +
			strconv.FormatInt(t.Shares, 10) + "|" + t.Value.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// dedupHoldings collapses repeats by filing day and filer CIK. A 13F record
// is one filer's summary, and the CIK identifies the filer more reliably
// than its best-effort ticker or free-text name.
func dedupHoldings(holdings []*models.InstitutionalHolding) []*models.InstitutionalHolding {
	seen := make(map[string]struct{}, len(holdings))
	out := holdings[:0]
	for _, h := range holdings {
		key := util.FormatYYYYMMDD(h.FilingDate) + "|" + h.CIK
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	return out
}

func (o *FilingOrchestrator) emit(opts FetchOptions, stage string, percent, current, total int, errMsg string, rateLimited bool) {
	if opts.Progress == nil {
		return
	}
	opts.Progress(models.Progress{
		Stage:           stage,
		ProgressPercent: percent,
		CurrentCount:    current,
		TotalCount:      total,
		IsRateLimit:     rateLimited,
		ErrorMessage:    errMsg,
	})
}

func (o *FilingOrchestrator) hit(kind string, hit bool) {
	if o.metrics != nil {
		o.metrics.RecordCacheHit(kind, hit)
	}
}

func (o *FilingOrchestrator) warnWindow(form models.FormType, idx int, err error) {
	if o.log != nil {
		o.log.Warn("feed window failed",
			applogger.String("form", string(form)),
			applogger.Int("window", idx),
			applogger.Error(err),
		)
	}
}

func (o *FilingOrchestrator) observe(form models.FormType, started time.Time) {
	if o.metrics != nil {
		o.metrics.RecordFetchDuration(string(form), time.Since(started).Seconds())
	}
}

func sleepBetween(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
