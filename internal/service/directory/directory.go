package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"EdgarPull/internal/service/feedclient"
	applogger "EdgarPull/pkg/logger"
	"EdgarPull/pkg/util"
)

// Directory maps CIKs and normalized company names to ticker symbols.
// It grows additively as resolutions succeed and is never pruned during
// normal operation.
type Directory struct {
	mu     sync.RWMutex
	byCIK  map[string]string
	byName map[string]string
	log    *applogger.Logger
}

// Entry is one directory row.
type Entry struct {
	CIK    string
	Name   string
	Ticker string
}

func New(log *applogger.Logger) *Directory {
	d := &Directory{
		byCIK:  make(map[string]string),
		byName: make(map[string]string),
		log:    log,
	}
	d.SeedEntries(fallbackCompanies)
	return d
}

// SeedEntries adds entries without overwriting existing mappings.
func (d *Directory) SeedEntries(entries []Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range entries {
		d.add(e)
	}
}

// Seed adds cik -> ticker pairs, additive.
func (d *Directory) Seed(entries map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for cik, ticker := range entries {
		d.add(Entry{CIK: cik, Ticker: ticker})
	}
}

// Add records a single resolved mapping.
func (d *Directory) Add(cik, name, ticker string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.add(Entry{CIK: cik, Name: name, Ticker: ticker})
}

func (d *Directory) add(e Entry) {
	if e.Ticker == "" {
		return
	}
	if e.CIK != "" {
		cik := PadCIK(e.CIK)
		if _, exists := d.byCIK[cik]; !exists {
			d.byCIK[cik] = e.Ticker
		}
	}
	if e.Name != "" {
		n := NormalizeName(e.Name)
		if _, exists := d.byName[n]; !exists && n != "" {
			d.byName[n] = e.Ticker
		}
	}
}

// ByCIK looks up a ticker by CIK (any formatting, zero-padded internally).
func (d *Directory) ByCIK(cik string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.byCIK[PadCIK(cik)]
	return t, ok
}

// ByName looks up a ticker by normalized company name. When the exact
// normalized form misses, it retries with legal suffixes stripped.
func (d *Directory) ByName(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if t, ok := d.byName[NormalizeName(name)]; ok {
		return t, true
	}
	if t, ok := d.byName[StripLegalSuffixes(NormalizeName(name))]; ok {
		return t, true
	}
	return "", false
}

// Len returns the number of CIK mappings.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byCIK)
}

// bulkCompany matches the upstream bulk company list JSON:
// {"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}, ...}
type bulkCompany struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// LoadBulk seeds the directory from the upstream bulk company list. The
// static fallback table stays in place when the fetch or parse fails.
func (d *Directory) LoadBulk(ctx context.Context, client *feedclient.Client, url string) error {
	resp, err := client.Do(ctx, feedclient.Request{URL: url, Form: "directory"})
	if err != nil {
		return fmt.Errorf("bulk company list: %w", err)
	}
	var raw map[string]bulkCompany
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return fmt.Errorf("bulk company list decode: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, c := range raw {
		entries = append(entries, Entry{
			CIK:    fmt.Sprintf("%d", c.CIK),
			Name:   c.Title,
			Ticker: strings.ToUpper(c.Ticker),
		})
	}
	d.SeedEntries(entries)
	if d.log != nil {
		d.log.Info("company directory seeded", applogger.Int("companies", len(entries)))
	}
	return nil
}

// PadCIK normalizes a CIK to the canonical 10-digit zero-padded form.
func PadCIK(cik string) string {
	digits := util.DigitsOnly(cik)
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return ""
	}
	if len(digits) >= 10 {
		return digits
	}
	return strings.Repeat("0", 10-len(digits)) + digits
}

// NormalizeName lowercases, collapses whitespace, and drops punctuation that
// varies between filings of the same issuer.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '\'', '"', '(', ')':
			return -1
		case '/', '\\', '-':
			return ' '
		}
		return r
	}, s)
	return util.CollapseSpaces(s)
}

var legalSuffixes = []string{"inc", "incorporated", "corp", "corporation", "llc", "ltd", "lp", "plc", "co", "company"}

// StripLegalSuffixes removes trailing legal-entity tokens from an already
// normalized name.
func StripLegalSuffixes(normalized string) string {
	fields := strings.Fields(normalized)
	for len(fields) > 1 {
		last := fields[len(fields)-1]
		stripped := false
		for _, suf := range legalSuffixes {
			if last == suf {
				fields = fields[:len(fields)-1]
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	return strings.Join(fields, " ")
}
