package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/feedclient"
	"EdgarPull/internal/service/filingparse"
	"EdgarPull/internal/service/resolver"
	applogger "EdgarPull/pkg/logger"
	"EdgarPull/pkg/util"
)

// valueScale converts the reporting unit (thousands of dollars) to dollars.
var valueScale = decimal.NewFromInt(1000)

// Form13FParser turns raw 13F feed entries into institutional holding
// records, fetching each filing's security table on demand.
type Form13FParser struct {
	client  *feedclient.Client
	res     *resolver.Engine
	metrics repository.Metrics
	log     *applogger.Logger
}

// NewForm13FParser creates a new Form13FParser instance.
func NewForm13FParser(client *feedclient.Client, res *resolver.Engine, metrics repository.Metrics, log *applogger.Logger) *Form13FParser {
	return &Form13FParser{client: client, res: res, metrics: metrics, log: log}
}

// Parse converts feed entries into holdings. A filing whose security table
// cannot be located still yields a record, flagged DataUnavailable, so the
// caller sees every filer that reported.
func (p *Form13FParser) Parse(ctx context.Context, entries []models.FeedEntry, now time.Time) []*models.InstitutionalHolding {
	holdings := make([]*models.InstitutionalHolding, 0, len(entries))
	for _, e := range entries {
		h := p.buildHolding(ctx, e, now)
		if h == nil {
			if p.metrics != nil {
				p.metrics.RecordParseFailure(string(models.Form13F))
			}
			continue
		}
		holdings = append(holdings, h)
	}
	return holdings
}

func (p *Form13FParser) buildHolding(ctx context.Context, e models.FeedEntry, now time.Time) *models.InstitutionalHolding {
	title, ok := filingparse.ParseForm13FTitle(e.Title)
	if !ok {
		return nil
	}
	filingDate, _, _ := filingDates(e, e.Summary, now)

	h := &models.InstitutionalHolding{
		ID:              uuid.NewString(),
		Ticker:          p.res.InstitutionTicker(ctx, title.CIK, title.Name),
		CIK:             title.CIK,
		InstitutionName: title.Name,
		FilingDate:      filingDate,
		QuarterEnd:      util.QuarterEnd(filingDate),
		FormType:        string(models.Form13F),
		SourceURL:       e.Link,
	}

	// A notice filing reports that holdings were filed elsewhere. There is
	// no table to fetch.
	if title.Variant == "NT" {
		h.DataUnavailable = true
		return h
	}

	raw := p.fetchHoldings(ctx, e.Link)
	if len(raw) == 0 {
		h.DataUnavailable = true
		return h
	}

	h.Holdings = make([]models.SecurityHolding, 0, len(raw))
	total := decimal.Zero
	for _, r := range raw {
		value := decimal.NewFromInt(r.ValueThousands).Mul(valueScale)
		h.Holdings = append(h.Holdings, models.SecurityHolding{
			ID:              uuid.NewString(),
			InstitutionCIK:  title.CIK,
			InstitutionName: title.Name,
			Ticker:          p.res.ResolveTicker(ctx, repository.ResolveQuery{CompanyName: r.NameOfIssuer}),
			NameOfIssuer:    r.NameOfIssuer,
			CUSIP:           r.CUSIP,
			Shares:          r.Shares,
			Value:           value,
		})
		h.TotalSharesHeld += r.Shares
		total = total.Add(value)
	}
	h.TotalValueHeld = total
	return h
}

// fetchHoldings pulls the filing page and tries the structured information
// table first, then the rendered HTML table.
func (p *Form13FParser) fetchHoldings(ctx context.Context, url string) []filingparse.RawHolding {
	if p.client == nil || url == "" {
		return nil
	}
	resp, err := p.client.Do(ctx, feedclient.Request{URL: url, Form: string(models.Form13F)})
	if err != nil {
		if p.log != nil {
			p.log.Debug("holdings document fetch failed",
				applogger.String("url", url),
				applogger.Error(err),
			)
		}
		return nil
	}
	if raw := filingparse.ParseInfoTable(resp.Body); len(raw) > 0 {
		return raw
	}
	return filingparse.ParseHoldingsHTML(resp.Body)
}
