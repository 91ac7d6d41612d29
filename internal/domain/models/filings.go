package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TickerUnresolved is the sentinel emitted when no resolution strategy
// produced a symbol. Records always carry the field, never omit it.
const TickerUnresolved = "-"

// TradeType classifies the direction of an insider transaction.
type TradeType string

const (
	TradeBuy     TradeType = "BUY"
	TradeSell    TradeType = "SELL"
	TradeUnknown TradeType = "UNKNOWN"
)

// DateSource records where a filing date came from, in preference order.
type DateSource string

const (
	DateFromDocument  DateSource = "document"
	DateFromPublished DateSource = "published"
	DateFromUpdated   DateSource = "updated"
	DateFromFallback  DateSource = "fallback"
)

// InsiderTrade is one parsed Form 4 line. Instances are immutable: a refresh
// rebuilds the set rather than updating records in place.
type InsiderTrade struct {
	ID              string          `json:"id"`
	Ticker          string          `json:"ticker"`
	InsiderName     string          `json:"insiderName"`
	Role            string          `json:"role"` // free text, "unknown" fallback, never empty
	TradeType       TradeType       `json:"tradeType"`
	Shares          int64           `json:"shares"`
	Price           decimal.Decimal `json:"price"`
	Value           decimal.Decimal `json:"value"`
	FilingDate      time.Time       `json:"filingDate"`
	TransactionDate time.Time       `json:"transactionDate"`
	DateSource      DateSource      `json:"dateSource"`
	FormType        string          `json:"formType"` // always "4"
	SourceURL       string          `json:"sourceUrl"`
}

// InstitutionalHolding is one parsed Form 13F filer summary with its nested
// security positions.
type InstitutionalHolding struct {
	ID              string            `json:"id"`
	Ticker          string            `json:"ticker"` // the filer's own symbol, best effort
	CIK             string            `json:"cik"`
	InstitutionName string            `json:"institutionName"`
	TotalSharesHeld int64             `json:"totalSharesHeld"`
	TotalValueHeld  decimal.Decimal   `json:"totalValueHeld"`
	FilingDate      time.Time         `json:"filingDate"`
	QuarterEnd      time.Time         `json:"quarterEnd"`
	FormType        string            `json:"formType"` // always "13F"
	SourceURL       string            `json:"sourceUrl"`
	DataUnavailable bool              `json:"dataUnavailable"`
	Holdings        []SecurityHolding `json:"holdings"`
}

// SecurityHolding is a single position inside a 13F information table.
// Value is in currency units: the upstream table reports thousands and the
// parser scales by 1000 before constructing this.
type SecurityHolding struct {
	ID              string          `json:"id"`
	InstitutionCIK  string          `json:"institutionCik"`
	InstitutionName string          `json:"institutionName"`
	Ticker          string          `json:"ticker"`
	NameOfIssuer    string          `json:"nameOfIssuer"`
	CUSIP           string          `json:"cusip"`
	Shares          int64           `json:"shares"`
	Value           decimal.Decimal `json:"value"`
}
