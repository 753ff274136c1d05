package core

import (
	"sort"
	"time"
)

// Capability identifies one class of market data the engine can fetch.
type Capability string

const (
	CapabilityListing Capability = "listing"
	CapabilityDetail  Capability = "detail"
	CapabilityHistory Capability = "history"
	CapabilityNews    Capability = "news"
)

// Asset is the provider-agnostic representation of a market instrument.
// Numeric fields default to 0 when the upstream omits them; callers must
// treat 0 as "unknown" rather than a literal value (MarketCap and Rank
// in particular).
type Asset struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
	MarketCap float64 `json:"market_cap"`
	Image     string  `json:"image,omitempty"`
	Rank      int     `json:"rank"`

	// Detail is populated only by the detail capability.
	Detail *AssetDetail `json:"detail,omitempty"`
}

// IsValid reports whether the asset carries the minimum required fields.
func (a Asset) IsValid() bool {
	return a.ID != ""
}

// AssetDetail is the extended block attached by the detail capability.
type AssetDetail struct {
	Volume24h   float64 `json:"volume_24h"`
	High24h     float64 `json:"high_24h"`
	Low24h      float64 `json:"low_24h"`
	ATH         float64 `json:"ath"`
	Description string  `json:"description,omitempty"`
	Homepage    string  `json:"homepage,omitempty"`
	Twitter     string  `json:"twitter,omitempty"`
	Reddit      string  `json:"reddit,omitempty"`
	History     History `json:"history,omitempty"`
}

// HistoryPoint is a single (timestamp, price) sample. Timestamp is seconds
// since epoch.
type HistoryPoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// History is an ordered price series, ascending by timestamp. The interval
// between points is provider-dependent and not fixed.
type History []HistoryPoint

// Sort orders the series ascending by timestamp in place.
func (h History) Sort() {
	sort.Slice(h, func(i, j int) bool { return h[i].Timestamp < h[j].Timestamp })
}

// NewsArticle is the normalized representation of one news item.
// PublishedAt is the provider-supplied ISO-8601 string and is not guaranteed
// to parse; articles with unparseable timestamps sort as oldest.
type NewsArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary,omitempty"`
	URL         string `json:"url"`
	Image       string `json:"image,omitempty"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

// PublishedTime parses PublishedAt, returning the zero time when the value
// does not parse so that such articles order last under descending sort.
func (n NewsArticle) PublishedTime() time.Time {
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, n.PublishedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SortArticles orders articles by publish time descending. Articles whose
// timestamp fails to parse end up at the tail.
func SortArticles(articles []NewsArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedTime().After(articles[j].PublishedTime())
	})
}
