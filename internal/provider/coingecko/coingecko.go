package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/provider"
)

const baseURL = "https://api.coingecko.com/api/v3"

// CoinGecko is the metadata-rich primary provider. It serves the listing,
// detail and history capabilities.
type CoinGecko struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new CoinGecko provider
func New(apiKey string) *CoinGecko {
	return &CoinGecko{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a CoinGecko provider with custom base URL (for testing)
func NewWithBaseURL(apiKey, url string) *CoinGecko {
	c := New(apiKey)
	c.baseURL = url
	return c
}

func (c *CoinGecko) Name() string {
	return "coingecko"
}

func (c *CoinGecko) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}
	return req, nil
}

type marketRow struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	CurrentPrice  float64 `json:"current_price"`
	MarketCap     float64 `json:"market_cap"`
	MarketCapRank int     `json:"market_cap_rank"`
	Change24h     float64 `json:"price_change_percentage_24h"`
}

// FetchListing fetches one page of markets ordered by market cap.
func (c *CoinGecko) FetchListing(ctx context.Context, page, perPage int) ([]core.Asset, error) {
	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=%d&sparkline=false&price_change_percentage=24h",
		c.baseURL, perPage, page)

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var rows []marketRow
	if err := provider.DoJSON(c.client, req, &rows); err != nil {
		return nil, err
	}

	assets := make([]core.Asset, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			continue
		}
		assets = append(assets, core.Asset{
			ID:        r.ID,
			Name:      r.Name,
			Symbol:    r.Symbol,
			Price:     r.CurrentPrice,
			Change24h: r.Change24h,
			MarketCap: r.MarketCap,
			Image:     r.Image,
			Rank:      r.MarketCapRank,
		})
	}
	return assets, nil
}

type detailResponse struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  struct {
		Large string `json:"large"`
	} `json:"image"`
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage          []string `json:"homepage"`
		TwitterScreenName string   `json:"twitter_screen_name"`
		SubredditURL      string   `json:"subreddit_url"`
	} `json:"links"`
	MarketData struct {
		CurrentPrice  map[string]float64 `json:"current_price"`
		MarketCap     map[string]float64 `json:"market_cap"`
		MarketCapRank int                `json:"market_cap_rank"`
		Change24h     float64            `json:"price_change_percentage_24h"`
		TotalVolume   map[string]float64 `json:"total_volume"`
		High24h       map[string]float64 `json:"high_24h"`
		Low24h        map[string]float64 `json:"low_24h"`
		ATH           map[string]float64 `json:"ath"`
		Sparkline     struct {
			Price []float64 `json:"price"`
		} `json:"sparkline_7d"`
	} `json:"market_data"`
}

// FetchDetail fetches the extended record for one asset. The 7-day
// sparkline carries no timestamps, so hourly timestamps are synthesized
// backwards from now.
func (c *CoinGecko) FetchDetail(ctx context.Context, assetID string) (*core.Asset, error) {
	if assetID == "" {
		return nil, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("empty asset id"))
	}
	url := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&market_data=true&community_data=false&developer_data=false&sparkline=true",
		c.baseURL, assetID)

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var d detailResponse
	if err := provider.DoJSON(c.client, req, &d); err != nil {
		return nil, err
	}
	if d.ID == "" {
		return nil, core.WrapError(core.ErrMalformed, fmt.Errorf("detail response missing id"))
	}

	md := d.MarketData
	homepage := ""
	if len(d.Links.Homepage) > 0 {
		homepage = d.Links.Homepage[0]
	}
	twitter := ""
	if d.Links.TwitterScreenName != "" {
		twitter = "https://twitter.com/" + d.Links.TwitterScreenName
	}

	asset := &core.Asset{
		ID:        d.ID,
		Name:      d.Name,
		Symbol:    d.Symbol,
		Price:     md.CurrentPrice["usd"],
		Change24h: md.Change24h,
		MarketCap: md.MarketCap["usd"],
		Image:     d.Image.Large,
		Rank:      md.MarketCapRank,
		Detail: &core.AssetDetail{
			Volume24h:   md.TotalVolume["usd"],
			High24h:     md.High24h["usd"],
			Low24h:      md.Low24h["usd"],
			ATH:         md.ATH["usd"],
			Description: d.Description.En,
			Homepage:    homepage,
			Twitter:     twitter,
			Reddit:      d.Links.SubredditURL,
			History:     sparklineHistory(md.Sparkline.Price, time.Now()),
		},
	}
	return asset, nil
}

// sparklineHistory converts a timestamp-less hourly sparkline into a
// history series ending at now.
func sparklineHistory(prices []float64, now time.Time) core.History {
	if len(prices) == 0 {
		return nil
	}
	h := make(core.History, 0, len(prices))
	start := now.Add(-time.Duration(len(prices)-1) * time.Hour)
	for i, p := range prices {
		h = append(h, core.HistoryPoint{
			Timestamp: start.Add(time.Duration(i) * time.Hour).Unix(),
			Price:     p,
		})
	}
	return h
}

type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// FetchHistory fetches the market chart series. CoinGecko returns
// [[millis, price], ...] at an interval that depends on the span.
func (c *CoinGecko) FetchHistory(ctx context.Context, assetID string, days int) (core.History, error) {
	if assetID == "" {
		return nil, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("empty asset id"))
	}
	if days < 1 {
		days = 1
	}
	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d", c.baseURL, assetID, days)

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var chart marketChartResponse
	if err := provider.DoJSON(c.client, req, &chart); err != nil {
		return nil, err
	}

	h := make(core.History, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		if len(p) < 2 {
			continue
		}
		h = append(h, core.HistoryPoint{
			Timestamp: int64(p[0]) / 1000,
			Price:     p[1],
		})
	}
	h.Sort()
	return h, nil
}
