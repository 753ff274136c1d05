package coincap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/provider"
)

const baseURL = "https://api.coincap.io"

// CoinCap serves the listing capability. Every numeric field in its JSON
// is string-encoded; parse failures normalize to 0.
type CoinCap struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new CoinCap provider
func New(apiKey string) *CoinCap {
	return &CoinCap{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a CoinCap provider with custom base URL (for testing)
func NewWithBaseURL(apiKey, url string) *CoinCap {
	c := New(apiKey)
	c.baseURL = url
	return c
}

func (c *CoinCap) Name() string {
	return "coincap"
}

type assetsResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Rank      string `json:"rank"`
		Symbol    string `json:"symbol"`
		Name      string `json:"name"`
		PriceUSD  string `json:"priceUsd"`
		MarketCap string `json:"marketCapUsd"`
		Change24h string `json:"changePercent24Hr"`
	} `json:"data"`
}

// FetchListing fetches one page via limit/offset pagination.
func (c *CoinCap) FetchListing(ctx context.Context, page, perPage int) ([]core.Asset, error) {
	offset := (page - 1) * perPage
	url := fmt.Sprintf("%s/v2/assets?limit=%d&offset=%d", c.baseURL, perPage, offset)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	var resp assetsResponse
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
			Rank:      int(provider.ParseDecimal(row.Rank)),
		})
	}
	return assets, nil
}
