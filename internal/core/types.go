package core

// IndexedKeyTicker is one entry of the ticker directory.
type IndexedKeyTicker struct {
	KeyTicker string `json:"key_ticker"`
	Index     string `json:"index"`
	Name      string `json:"name"`
}

// StatsClose is the most recent end-of-day summary for a ticker over an interval.
type StatsClose struct {
	KeyTicker        string  `json:"key_ticker"`
	MostRecentClose  float64 `json:"most_recent_close"`
	MostRecentOpen   float64 `json:"most_recent_open"`
	MostRecentHigh   float64 `json:"most_recent_high"`
	MostRecentLow    float64 `json:"most_recent_low"`
	MostRecentVolume float64 `json:"most_recent_volume"`
	MostRecentDate   string  `json:"most_recent_date"`
	PercentVariance  float64 `json:"percent_variance"`
}

// IsEmpty reports whether s is the zero-valued fallback record.
func (s StatsClose) IsEmpty() bool {
	return s == StatsClose{}
}

// NewsImage is an image attached to a news item
type NewsImage struct {
	URL  string `json:"url"`
	Size string `json:"size"`
}

// NewsItem is a single article returned by the news endpoint.
type NewsItem struct {
	ID        string      `json:"id,omitempty"`
	URL       string      `json:"url,omitempty"`
	Date      string      `json:"date"`
	Source    string      `json:"source"`
	Headline  string      `json:"headline"`
	Summary   string      `json:"summary"`
	Content   string      `json:"content,omitempty"`
	Images    []NewsImage `json:"images,omitempty"`
	KeyTicker []string    `json:"key_ticker,omitempty"`
}

// NewsList is one page of news items plus the cursor for the next page.
type NewsList struct {
	Items  []NewsItem `json:"items"`
	Cursor string     `json:"cursor"`
}

// DefaultStatsClose returns the all-zero record used when a stats fetch fails.
func DefaultStatsClose() StatsClose {
	return StatsClose{}
}

// DefaultNewsList returns the empty page used when a news fetch fails.
func DefaultNewsList() NewsList {
	return NewsList{Items: []NewsItem{}, Cursor: ""}
}
