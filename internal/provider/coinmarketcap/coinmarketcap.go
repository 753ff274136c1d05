package coinmarketcap

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/provider"
)

const baseURL = "https://pro-api.coinmarketcap.com"

// CoinMarketCap serves the listing capability. Auth is a custom header.
type CoinMarketCap struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new CoinMarketCap provider
func New(apiKey string) *CoinMarketCap {
	return &CoinMarketCap{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a CoinMarketCap provider with custom base URL (for testing)
func NewWithBaseURL(apiKey, url string) *CoinMarketCap {
	c := New(apiKey)
	c.baseURL = url
	return c
}

func (c *CoinMarketCap) Name() string {
	return "coinmarketcap"
}

type listingResponse struct {
	Data []struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
		Slug   string `json:"slug"`
		Rank   int    `json:"cmc_rank"`
		Quote  struct {
			USD struct {
				Price     float64 `json:"price"`
				Change24h float64 `json:"percent_change_24h"`
				MarketCap float64 `json:"market_cap"`
			} `json:"USD"`
		} `json:"quote"`
	} `json:"data"`
}

// FetchListing fetches one page via start/limit pagination. CoinMarketCap
// does not supply image URLs, so they are synthesized from the symbol.
func (c *CoinMarketCap) FetchListing(ctx context.Context, page, perPage int) ([]core.Asset, error) {
	start := (page-1)*perPage + 1
	url := fmt.Sprintf("%s/v1/cryptocurrency/listings/latest?start=%d&limit=%d&convert=USD",
		c.baseURL, start, perPage)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)

	var resp listingResponse
	if err := provider.DoJSON(c.client, req, &resp); err != nil {
		return nil, err
	}

	assets := make([]core.Asset, 0, len(resp.Data))
	for _, row := range resp.Data {
		id := row.Slug
		if id == "" {
			id = strconv.Itoa(row.ID)
		}
		if id == "" || id == "0" {
			continue
		}
		assets = append(assets, core.Asset{
			ID:        id,
			Name:      row.Name,
			Symbol:    row.Symbol,
			Price:     row.Quote.USD.Price,
			Change24h: row.Quote.USD.Change24h,
			MarketCap: row.Quote.USD.MarketCap,
			Image:     provider.IconURL(row.Symbol),
			Rank:      row.Rank,
		})
	}
	return assets, nil
}
