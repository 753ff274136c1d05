package market

import (
	"github.com/sametyasit/cryptobuddy/internal/config"
	"github.com/sametyasit/cryptobuddy/internal/provider"
	"github.com/sametyasit/cryptobuddy/internal/provider/coinbase"
	"github.com/sametyasit/cryptobuddy/internal/provider/coincap"
	"github.com/sametyasit/cryptobuddy/internal/provider/coingecko"
	"github.com/sametyasit/cryptobuddy/internal/provider/coinlore"
	"github.com/sametyasit/cryptobuddy/internal/provider/coinmarketcap"
	"github.com/sametyasit/cryptobuddy/internal/provider/coinpaprika"
	"github.com/sametyasit/cryptobuddy/internal/provider/coinstats"
	"github.com/sametyasit/cryptobuddy/internal/provider/cryptocompare"
	"github.com/sametyasit/cryptobuddy/internal/provider/cryptopanic"
	"github.com/sametyasit/cryptobuddy/internal/retry"
)

// BuildProviders constructs the full adapter set from configuration.
// The listing cascade defaults to reliability order, coingecko first and
// the rates-only coinbase feed last; cfg.Providers.ListingOrder reorders
// it by name, unknown names ignored.
func BuildProviders(cfg *config.Config) Providers {
	gecko := coingecko.New(cfg.Providers.CoinGeckoAPIKey)
	compare := cryptocompare.New(cfg.Providers.CryptoCompareAPIKey)

	listing := []provider.ListingProvider{
		gecko,
		coinmarketcap.New(cfg.Providers.CoinMarketCapAPIKey),
		compare,
		coinpaprika.New(),
		coincap.New(cfg.Providers.CoinCapAPIKey),
		coinlore.New(),
		coinbase.New(),
	}
	if len(cfg.Providers.ListingOrder) > 0 {
		listing = reorderListing(listing, cfg.Providers.ListingOrder)
	}

	return Providers{
		Listing: listing,
		Detail:  gecko,
		History: []provider.HistoryProvider{gecko, compare},
		News: []provider.NewsProvider{
			compare,
			cryptopanic.New(cfg.Providers.CryptoPanicAPIKey),
			coinstats.New(),
		},
	}
}

// reorderListing applies the configured order. Named providers come
// first in the given order; the rest keep their default relative order.
func reorderListing(listing []provider.ListingProvider, order []string) []provider.ListingProvider {
	byName := make(map[string]provider.ListingProvider, len(listing))
	for _, p := range listing {
		byName[p.Name()] = p
	}

	out := make([]provider.ListingProvider, 0, len(listing))
	taken := make(map[string]bool, len(order))
	for _, name := range order {
		p, ok := byName[name]
		if !ok || taken[name] {
			continue
		}
		out = append(out, p)
		taken[name] = true
	}
	for _, p := range listing {
		if !taken[p.Name()] {
			out = append(out, p)
		}
	}
	return out
}

// ConfigFrom maps the application configuration onto facade tuning.
func ConfigFrom(cfg *config.Config) Config {
	out := DefaultConfig()
	if cfg.Cache.ListingTTL > 0 {
		out.ListingTTL = cfg.Cache.ListingTTL
	}
	if cfg.Cache.DetailTTL > 0 {
		out.DetailTTL = cfg.Cache.DetailTTL
	}
	if cfg.Cache.HistoryTTL > 0 {
		out.HistoryTTL = cfg.Cache.HistoryTTL
	}
	if cfg.Cache.NewsTTL > 0 {
		out.NewsTTL = cfg.Cache.NewsTTL
	}
	if cfg.Retry.PrimaryAttempts > 0 {
		out.PrimaryPolicy = retry.Policy{
			MaxAttempts:  cfg.Retry.PrimaryAttempts,
			Backoff:      retry.Linear(cfg.Retry.BackoffStep),
			TimeoutDelay: cfg.Retry.TimeoutDelay,
		}
	}
	if cfg.Retry.SecondaryAttempts > 0 {
		out.SecondaryPolicy = retry.Policy{
			MaxAttempts:  cfg.Retry.SecondaryAttempts,
			Backoff:      retry.Fixed(cfg.Retry.SecondaryBackoff),
			TimeoutDelay: cfg.Retry.TimeoutDelay,
		}
	}
	return out
}
