package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/feedclient"
	"EdgarPull/internal/service/filingparse"
	"EdgarPull/internal/service/resolver"
	applogger "EdgarPull/pkg/logger"
)

// summaryFetchThreshold is the summary length below which the parser fetches
// the linked filing document for more context.
const summaryFetchThreshold = 120

// Form4Parser turns raw Form 4 feed entries into insider trade records.
// The upstream feed lists each filing once per filer role, so entries are
// grouped by filing link before construction.
type Form4Parser struct {
	client  *feedclient.Client
	res     *resolver.Engine
	metrics repository.Metrics
	log     *applogger.Logger
}

// NewForm4Parser creates a new Form4Parser instance.
func NewForm4Parser(client *feedclient.Client, res *resolver.Engine, metrics repository.Metrics, log *applogger.Logger) *Form4Parser {
	return &Form4Parser{client: client, res: res, metrics: metrics, log: log}
}

type form4Group struct {
	entry  models.FeedEntry
	issuer filingparse.Form4Title
	person filingparse.Form4Title

	hasIssuer bool
	hasPerson bool
}

// Parse converts feed entries into trades. Entries that fail to parse are
// skipped individually; one broken filing never drops the batch.
func (p *Form4Parser) Parse(ctx context.Context, entries []models.FeedEntry, now time.Time) []*models.InsiderTrade {
	groups := groupForm4Entries(entries)
	trades := make([]*models.InsiderTrade, 0, len(groups))
	for _, g := range groups {
		t := p.buildTrade(ctx, g, now)
		if t == nil {
			if p.metrics != nil {
				p.metrics.RecordParseFailure(string(models.Form4))
			}
			continue
		}
		trades = append(trades, t)
	}
	return trades
}

// groupForm4Entries collapses per-role feed entries into one group per
// filing link. Entries without a link stand alone.
func groupForm4Entries(entries []models.FeedEntry) []*form4Group {
	byLink := make(map[string]*form4Group)
	var ordered []*form4Group
	for _, e := range entries {
		title, ok := filingparse.ParseForm4Title(e.Title)
		if !ok {
			continue
		}
		g, exists := byLink[e.Link]
		if !exists || e.Link == "" {
			g = &form4Group{entry: e}
			ordered = append(ordered, g)
			if e.Link != "" {
				byLink[e.Link] = g
			}
		}
		if strings.Contains(strings.ToLower(title.FilerType), "issuer") {
			g.issuer, g.hasIssuer = title, true
		} else {
			g.person, g.hasPerson = title, true
		}
		if g.entry.Summary == "" {
			g.entry.Summary = e.Summary
		}
	}
	return ordered
}

func (p *Form4Parser) buildTrade(ctx context.Context, g *form4Group, now time.Time) *models.InsiderTrade {
	if !g.hasIssuer && !g.hasPerson {
		return nil
	}
	text := g.entry.Summary
	if len(text) < summaryFetchThreshold && g.entry.Link != "" {
		if doc := p.fetchDocument(ctx, g.entry.Link); doc != "" {
			text = text + "\n" + doc
		}
	}

	insiderName, insiderCIK := filingparse.ExtractInsider(text)
	if insiderCIK == "" && g.hasPerson {
		insiderCIK = g.person.CIK
	}
	if insiderName == "" && g.hasPerson {
		insiderName = filingparse.NormalizeInsiderName(g.person.Company)
	}
	if insiderName == "" {
		return nil
	}

	ticker := p.resolveTicker(ctx, g, insiderName, insiderCIK, text)
	txn := filingparse.ExtractTransaction(text)
	filingDate, txnDate, source := filingDates(g.entry, text, now)

	return &models.InsiderTrade{
		ID:              uuid.NewString(),
		Ticker:          ticker,
		InsiderName:     insiderName,
		Role:            filingparse.ResolveRole(insiderName, text),
		TradeType:       txn.TradeType,
		Shares:          txn.Shares,
		Price:           txn.Price,
		Value:           txn.Value,
		FilingDate:      filingDate,
		TransactionDate: txnDate,
		DateSource:      source,
		FormType:        string(models.Form4),
		SourceURL:       g.entry.Link,
	}
}

// resolveTicker prefers issuer identity, then falls back to the reporting
// person. The result is the unresolved sentinel when every strategy misses.
func (p *Form4Parser) resolveTicker(ctx context.Context, g *form4Group, insiderName, insiderCIK, text string) string {
	if g.hasIssuer {
		if t := p.res.ResolveTicker(ctx, repository.ResolveQuery{
			CIK:         g.issuer.CIK,
			CompanyName: g.issuer.Company,
		}); t != models.TickerUnresolved {
			return t
		}
	}
	// The person CIK feeds the per-filer submissions lookup.
	return p.res.ResolveTicker(ctx, repository.ResolveQuery{
		CIK:        insiderCIK,
		PersonName: insiderName,
		FilingText: text,
	})
}

// filingDates picks dates by provenance: the document's own date, then the
// feed timestamps, then the current time.
func filingDates(e models.FeedEntry, text string, now time.Time) (filing, txn time.Time, source models.DateSource) {
	if d, ok := filingparse.ExtractDocumentDate(text); ok {
		return d, d, models.DateFromDocument
	}
	if !e.Published.IsZero() {
		return e.Published, e.Published, models.DateFromPublished
	}
	if !e.Updated.IsZero() {
		return e.Updated, e.Updated, models.DateFromUpdated
	}
	return now, now, models.DateFromFallback
}

func (p *Form4Parser) fetchDocument(ctx context.Context, url string) string {
	if p.client == nil {
		return ""
	}
	resp, err := p.client.Do(ctx, feedclient.Request{URL: url, Form: string(models.Form4)})
	if err != nil {
		if p.log != nil {
			p.log.Debug("filing document fetch failed",
				applogger.String("url", url),
				applogger.Error(err),
			)
		}
		return ""
	}
	return string(resp.Body)
}
