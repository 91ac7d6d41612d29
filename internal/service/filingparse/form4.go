package filingparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"EdgarPull/internal/domain/models"
	"EdgarPull/pkg/util"
)

// Form4Title is the decomposed feed title "4 - <company> (<cik>) (<filer type>)".
type Form4Title struct {
	Company   string
	CIK       string
	FilerType string // "Issuer", "Reporting", "Filer"
}

var form4TitlePattern = regexp.MustCompile(`^4(?:/A)?\s*-\s*(.+?)\s*\((\d{6,10})\)\s*\(([^)]*)\)\s*$`)

// ParseForm4Title decomposes a Form 4 feed title. Unparseable titles return
// ok=false and the caller skips the entry.
func ParseForm4Title(title string) (Form4Title, bool) {
	m := form4TitlePattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return Form4Title{}, false
	}
	return Form4Title{
		Company:   strings.TrimSpace(m[1]),
		CIK:       m[2],
		FilerType: strings.TrimSpace(m[3]),
	}, true
}

var insiderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)reporting person[:\s]+([A-Z][A-Za-z .,'\-]{2,60})`),
	regexp.MustCompile(`(?i)name and address of reporting person\W+([A-Z][A-Za-z .,'\-]{2,60})`),
	regexp.MustCompile(`(?i)filed by[:\s]+([A-Z][A-Za-z .,'\-]{2,60})`),
}

var personCIKPattern = regexp.MustCompile(`(?i)CIK\D{0,4}(\d{4,10})`)

// ExtractInsider pulls the reporting person's name (and candidate CIK when
// present) out of entry summary or document text.
func ExtractInsider(text string) (name string, cik string) {
	for _, p := range insiderPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			name = NormalizeInsiderName(m[1])
			break
		}
	}
	if m := personCIKPattern.FindStringSubmatch(text); m != nil {
		cik = m[1]
	}
	return name, cik
}

var leadingFormTokens = regexp.MustCompile(`^(?:4(?:/A)?\s*-\s*)+`)

// NormalizeInsiderName strips leading form-type tokens and collapses
// whitespace.
func NormalizeInsiderName(name string) string {
	name = leadingFormTokens.ReplaceAllString(strings.TrimSpace(name), "")
	return util.CollapseSpaces(strings.Trim(name, " .,"))
}

// roleOverrides names insiders whose filings never state a parseable role.
var roleOverrides = map[string]string{
	"musk elon":       "CEO",
	"cook timothy":    "CEO",
	"nadella satya":   "CEO",
	"huang jen hsun":  "CEO",
	"zuckerberg mark": "CEO",
	"buffett warren":  "Chairman",
	"dimon james":     "CEO",
}

var rolePattern = regexp.MustCompile(`(?i)relationship[^:]{0,40}:\s*([A-Za-z ,/&]{3,60})`)

var roleKeywords = []struct {
	pattern *regexp.Regexp
	role    string
}{
	{regexp.MustCompile(`(?i)chief executive officer|\bceo\b`), "CEO"},
	{regexp.MustCompile(`(?i)chief financial officer|\bcfo\b`), "CFO"},
	{regexp.MustCompile(`(?i)chief operating officer|\bcoo\b`), "COO"},
	{regexp.MustCompile(`(?i)chief technology officer|\bcto\b`), "CTO"},
	{regexp.MustCompile(`(?i)general counsel`), "General Counsel"},
	{regexp.MustCompile(`(?i)\bchairman\b`), "Chairman"},
	{regexp.MustCompile(`(?i)\bpresident\b`), "President"},
	{regexp.MustCompile(`(?i)\bdirector\b`), "Director"},
	{regexp.MustCompile(`(?i)10% owner|ten percent owner`), "10% Owner"},
	{regexp.MustCompile(`(?i)\bofficer\b`), "Officer"},
}

var companyNameHint = regexp.MustCompile(`(?i)\b(inc|corp|llc|ltd|lp|trust|fund|partners|capital|holdings)\b\.?$`)

// ResolveRole walks the role fallback chain; the result is never empty.
func ResolveRole(insiderName, text string) string {
	if role, ok := roleOverrides[strings.ToLower(util.CollapseSpaces(insiderName))]; ok {
		return role
	}
	if m := rolePattern.FindStringSubmatch(text); m != nil {
		if role := matchRoleKeyword(m[1]); role != "" {
			return role
		}
	}
	if role := matchRoleKeyword(text); role != "" {
		return role
	}
	// A filer named like a company is the issuer itself, not a person.
	if companyNameHint.MatchString(strings.TrimSpace(insiderName)) {
		return "Issuer"
	}
	if strings.Contains(strings.ToLower(text), "insider") {
		return "Insider"
	}
	return "Executive"
}

func matchRoleKeyword(text string) string {
	for _, rk := range roleKeywords {
		if rk.pattern.MatchString(text) {
			return rk.role
		}
	}
	return ""
}

// Transaction is the black-box extraction result for one Form 4 document.
type Transaction struct {
	Shares    int64
	Price     decimal.Decimal
	Value     decimal.Decimal
	TradeType models.TradeType
}

var (
	sharesPattern = regexp.MustCompile(`(?i)([\d,]+)\s+shares`)
	pricePattern  = regexp.MustCompile(`(?i)(?:price|at)\s*(?:of)?\s*\$\s*([\d,]+(?:\.\d+)?)`)
	valuePattern  = regexp.MustCompile(`(?i)(?:total|aggregate)\s+(?:value|amount)\s*(?:of)?\s*\$\s*([\d,]+(?:\.\d+)?)`)
	buyPattern    = regexp.MustCompile(`(?i)\b(purchase[ds]?|acquired?|bought|\(a\)|code\s*:?\s*p\b)`)
	sellPattern   = regexp.MustCompile(`(?i)\b(sale|sold|dispose[ds]?|disposition|\(d\)|code\s*:?\s*s\b)`)
)

// ExtractTransaction pulls shares, price, value and side from document text.
// Missing fields come back zero-valued with TradeUnknown, never absent.
func ExtractTransaction(text string) Transaction {
	tx := Transaction{TradeType: models.TradeUnknown, Price: decimal.Zero, Value: decimal.Zero}

	if m := sharesPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64); err == nil && n >= 0 {
			tx.Shares = n
		}
	}
	if m := pricePattern.FindStringSubmatch(text); m != nil {
		if d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil && !d.IsNegative() {
			tx.Price = d
		}
	}
	if m := valuePattern.FindStringSubmatch(text); m != nil {
		if d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil && !d.IsNegative() {
			tx.Value = d
		}
	}
	if tx.Value.IsZero() && tx.Shares > 0 && !tx.Price.IsZero() {
		tx.Value = tx.Price.Mul(decimal.NewFromInt(tx.Shares))
	}

	buy := buyPattern.MatchString(text)
	sell := sellPattern.MatchString(text)
	switch {
	case buy && !sell:
		tx.TradeType = models.TradeBuy
	case sell && !buy:
		tx.TradeType = models.TradeSell
	}
	return tx
}

var docDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)date of (?:earliest )?transaction[^\d]{0,20}(\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4})`),
	regexp.MustCompile(`(?i)filed as of date[^\d]{0,20}(\d{8})`),
	regexp.MustCompile(`(?i)period of report[^\d]{0,20}(\d{4}-\d{2}-\d{2}|\d{8})`),
}

// ExtractDocumentDate finds a filing date inside the document itself.
func ExtractDocumentDate(text string) (time.Time, bool) {
	for _, p := range docDatePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if t, ok := util.ParseTime(m[1]); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
