package coinpaprika

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/provider"
)

const baseURL = "https://api.coinpaprika.com"

// CoinPaprika serves the listing capability. The tickers endpoint has no
// server-side pagination, so pages are sliced client-side.
type CoinPaprika struct {
	client  *http.Client
	baseURL string
}

// New creates a new CoinPaprika provider
func New() *CoinPaprika {
	return &CoinPaprika{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
	}
}

// NewWithBaseURL creates a CoinPaprika provider with custom base URL (for testing)
func NewWithBaseURL(url string) *CoinPaprika {
	c := New()
	c.baseURL = url
	return c
}

func (c *CoinPaprika) Name() string {
	return "coinpaprika"
}

type tickerRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Rank   int    `json:"rank"`
	Quotes struct {
		USD struct {
			Price     float64 `json:"price"`
			MarketCap float64 `json:"market_cap"`
			Change24h float64 `json:"percent_change_24h"`
		} `json:"USD"`
	} `json:"quotes"`
}

// FetchListing fetches tickers and slices out the requested page.
func (c *CoinPaprika) FetchListing(ctx context.Context, page, perPage int) ([]core.Asset, error) {
	limit := page * perPage
	url := fmt.Sprintf("%s/v1/tickers?quotes=USD&limit=%d", c.baseURL, limit)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	var rows []tickerRow
	if err := provider.DoJSON(c.client, req, &rows); err != nil {
		return nil, err
	}

	start := (page - 1) * perPage
	if start >= len(rows) {
		return []core.Asset{}, nil
	}
	end := start + perPage
	if end > len(rows) {
		end = len(rows)
	}

	assets := make([]core.Asset, 0, end-start)
	for _, row := range rows[start:end] {
		if row.ID == "" {
			continue
		}
		assets = append(assets, core.Asset{
			ID:        row.ID,
			Name:      row.Name,
			Symbol:    row.Symbol,
			Price:     row.Quotes.USD.Price,
			Change24h: row.Quotes.USD.Change24h,
			MarketCap: row.Quotes.USD.MarketCap,
			Image:     provider.IconURL(row.Symbol),
			Rank:      row.Rank,
		})
	}
	return assets, nil
}
