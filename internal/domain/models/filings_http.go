package models

// InsiderTradesRequest is the serving-layer query for Form 4 trades.
type InsiderTradesRequest struct {
	Range  string `query:"range" json:"range" default:"1w" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=400"`
	UserID string `query:"user_id" json:"user_id"`
	Tier   string `query:"tier" json:"tier" default:"free" validate:"oneof=free paid"`
}

// HoldingsRequest is the serving-layer query for Form 13F holdings.
type HoldingsRequest struct {
	Range  string `query:"range" json:"range" default:"1q" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"40" validate:"gte=1,lte=200"`
	UserID string `query:"user_id" json:"user_id"`
	Tier   string `query:"tier" json:"tier" default:"free" validate:"oneof=free paid"`
}

// ArchivedTradesRequest queries the long-term trade archive by ticker,
// serving warm starts without touching the upstream feed.
type ArchivedTradesRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required"`
	Range  string `query:"range" json:"range" default:"1q" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=400"`
}

// ResolveRequest asks the resolution engine for a ticker.
type ResolveRequest struct {
	CIK         string `query:"cik" json:"cik"`
	CompanyName string `query:"company" json:"company"`
	PersonName  string `query:"person" json:"person"`
}

// ResolveResponse carries the resolution outcome.
type ResolveResponse struct {
	Ticker   string `json:"ticker"`
	Resolved bool   `json:"resolved"`
}
