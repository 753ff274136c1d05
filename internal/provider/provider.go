package provider

import (
	"context"

	"github.com/sametyasit/cryptobuddy/internal/core"
)

// ListingProvider fetches one page of the market listing.
type ListingProvider interface {
	// Name returns the provider identifier (e.g., "coingecko", "coinlore")
	Name() string

	// FetchListing fetches one page of assets ordered by market rank.
	// page is 1-based.
	FetchListing(ctx context.Context, page, perPage int) ([]core.Asset, error)
}

// DetailProvider fetches the extended record for a single asset.
type DetailProvider interface {
	Name() string
	FetchDetail(ctx context.Context, assetID string) (*core.Asset, error)
}

// HistoryProvider fetches a historical price series.
type HistoryProvider interface {
	Name() string

	// FetchHistory fetches up to days worth of price points, ascending by
	// timestamp. The sampling interval is provider-dependent.
	FetchHistory(ctx context.Context, assetID string, days int) (core.History, error)
}

// NewsProvider fetches the latest news articles.
type NewsProvider interface {
	Name() string
	FetchNews(ctx context.Context) ([]core.NewsArticle, error)
}
