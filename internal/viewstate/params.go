// Package viewstate derives canonical view parameters from navigation
// snapshots and holds the current value for reactive consumers.
package viewstate

import (
	"net/url"
	"strings"

	"github.com/quaksai/marketsview/internal/interval"
)

// Path and query parameter names.
const (
	ParamKeyTicker  = "keyTicker"
	ParamIndexName  = "indexName"
	ParamNewsItemID = "newsItemId"
	QueryInterval   = "interval"
)

// DefaultIndex is used when the matched route carries no index.
const DefaultIndex = "nasdaq_100"

// ViewParams is the canonical, typed view state. It is always replaced
// wholesale, never patched.
type ViewParams struct {
	TickerKey   string            `json:"ticker_key"`
	IndexName   string            `json:"index_name"`
	Interval    interval.Interval `json:"interval"`
	SelectedTab string            `json:"selected_tab"`
}

// UseExplicitDates reports whether the explicit interval is active.
func (p ViewParams) UseExplicitDates() bool {
	return p.Interval.UseExplicitDates()
}

// Snapshot is what a navigation source delivers after a completed navigation.
type Snapshot struct {
	Location   string            // literal location, scheme/host included when known
	Path       string            // path without query
	PathParams map[string]string // values captured by the matched route
	Query      url.Values
	Title      string // title of the matched route node
	Kind       string // page kind of the matched route, "" when unmatched
}

// Param returns a path parameter or "".
func (s Snapshot) Param(name string) string {
	if s.PathParams == nil {
		return ""
	}
	return s.PathParams[name]
}

// Selection is the user-driven part of the state that survives navigation
// within a mounted page.
type Selection struct {
	Days int
	Tab  string
}

// Deriver turns snapshots into ViewParams.
type Deriver struct {
	DefaultIndex string
	DefaultDays  int
}

// NewDeriver returns a Deriver with package defaults filled in.
func NewDeriver(defaultIndex string, defaultDays int) Deriver {
	if defaultIndex == "" {
		defaultIndex = DefaultIndex
	}
	if defaultDays <= 0 {
		defaultDays = interval.DefaultDays
	}
	return Deriver{DefaultIndex: defaultIndex, DefaultDays: defaultDays}
}

// Derive computes ViewParams from the latest snapshot. It has no side effects
// and never fails; a malformed interval value is kept verbatim.
func (d Deriver) Derive(snap Snapshot, sel Selection) ViewParams {
	days := sel.Days
	if days <= 0 {
		days = d.DefaultDays
	}

	index := snap.Param(ParamIndexName)
	if index == "" {
		index = d.DefaultIndex
	}

	var dates interval.Encoding
	if raw := snap.Query.Get(QueryInterval); strings.TrimSpace(raw) != "" {
		dates = interval.Encoding(raw)
	}

	return ViewParams{
		TickerKey:   snap.Param(ParamKeyTicker),
		IndexName:   index,
		Interval:    interval.Interval{Days: days, Dates: dates},
		SelectedTab: sel.Tab,
	}
}
