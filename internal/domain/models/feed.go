package models

import "time"

// FormType selects which filing feed a query targets.
type FormType string

const (
	Form4   FormType = "4"
	Form13F FormType = "13F"
)

// FeedEntry is one raw item from the upstream Atom feed, before any
// form-specific parsing.
type FeedEntry struct {
	Title     string
	Summary   string
	Link      string
	Published time.Time
	Updated   time.Time
}

// FeedQuery describes one windowed request against the upstream feed.
type FeedQuery struct {
	Form  FormType
	Start time.Time // inclusive, day granularity
	End   time.Time // inclusive, day granularity
	Limit int
	Batch int // window index within an orchestrator run
}

// Progress is the event pushed to the serving layer zero or more times
// before the terminal result of a fetch.
type Progress struct {
	Stage           string `json:"stage"`
	ProgressPercent int    `json:"progressPercent"` // 0..100
	CurrentCount    int    `json:"currentCount"`
	TotalCount      int    `json:"totalCount"`
	IsRateLimit     bool   `json:"isRateLimit,omitempty"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
}

// ProgressFunc receives progress events. Implementations must not block;
// the orchestrator calls it inline between fetch stages.
type ProgressFunc func(Progress)

// Orchestrator stages, reported via Progress.Stage.
const (
	StagePlanning  = "planning"
	StageFetching  = "fetching"
	StageMerging   = "merging"
	StageFiltering = "filtering"
	StageSorting   = "sorting"
	StageDone      = "done"
	StageFailed    = "failed"
)
