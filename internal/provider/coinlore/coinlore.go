package coinlore

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/provider"
)

const baseURL = "https://api.coinlore.net"

// Coinlore serves the listing capability. No auth, narrow schema,
// string-encoded numerics, no image URLs.
type Coinlore struct {
	client  *http.Client
	baseURL string
}

// New creates a new Coinlore provider
func New() *Coinlore {
	return &Coinlore{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
	}
}

// NewWithBaseURL creates a Coinlore provider with custom base URL (for testing)
func NewWithBaseURL(url string) *Coinlore {
	c := New()
	c.baseURL = url
	return c
}

func (c *Coinlore) Name() string {
	return "coinlore"
}

type tickersResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Symbol    string `json:"symbol"`
		Name      string `json:"name"`
		Rank      int    `json:"rank"`
		PriceUSD  string `json:"price_usd"`
		Change24h string `json:"percent_change_24h"`
		MarketCap string `json:"market_cap_usd"`
	} `json:"data"`
}

// FetchListing fetches one page via start/limit pagination.
func (c *Coinlore) FetchListing(ctx context.Context, page, perPage int) ([]core.Asset, error) {
	start := (page - 1) * perPage
	url := fmt.Sprintf("%s/api/tickers/?start=%d&limit=%d", c.baseURL, start, perPage)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	var resp tickersResponse
	if err := provider.DoJSON(c.client, req, &resp); err != nil {
		return nil, err
	}

	assets := make([]core.Asset, 0, len(resp.Data))
	for _, row := range resp.Data {
		if row.ID == "" {
			continue
		}
		assets = append(assets, core.Asset{
			ID:        row.ID,
			Name:      row.Name,
			Symbol:    row.Symbol,
			Price:     provider.ParseDecimal(row.PriceUSD),
			Change24h: provider.ParseDecimal(row.Change24h),
			MarketCap: provider.ParseDecimal(row.MarketCap),
			Image:     provider.IconURL(row.Symbol),
			Rank:      row.Rank,
		})
	}
	return assets, nil
}
