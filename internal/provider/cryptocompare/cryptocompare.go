package cryptocompare

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/provider"
)

const (
	baseURL  = "https://min-api.cryptocompare.com"
	imageCDN = "https://www.cryptocompare.com"
)

// Well-known asset id to CryptoCompare ticker mapping. CryptoCompare keys
// everything by ticker, while the rest of the engine uses slug-style ids.
var idToSymbolMap = map[string]string{
	"bitcoin":      "BTC",
	"ethereum":     "ETH",
	"binancecoin":  "BNB",
	"solana":       "SOL",
	"ripple":       "XRP",
	"dogecoin":     "DOGE",
	"cardano":      "ADA",
	"avalanche-2":  "AVAX",
	"polkadot":     "DOT",
	"chainlink":    "LINK",
	"litecoin":     "LTC",
	"tron":         "TRX",
	"matic-network": "MATIC",
}

// CryptoCompare serves the listing, daily-history and news capabilities.
// Auth is an "Apikey" authorization header.
type CryptoCompare struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new CryptoCompare provider
func New(apiKey string) *CryptoCompare {
	return &CryptoCompare{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a CryptoCompare provider with custom base URL (for testing)
func NewWithBaseURL(apiKey, url string) *CryptoCompare {
	c := New(apiKey)
	c.baseURL = url
	return c
}

func (c *CryptoCompare) Name() string {
	return "cryptocompare"
}

func (c *CryptoCompare) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Apikey "+c.apiKey)
	}
	return req, nil
}

// idToSymbol maps an asset id to the CryptoCompare ticker.
func idToSymbol(assetID string) string {
	if sym, ok := idToSymbolMap[assetID]; ok {
		return sym
	}
	return strings.ToUpper(assetID)
}

type topListResponse struct {
	Data []struct {
		CoinInfo struct {
			Name     string `json:"Name"`
			FullName string `json:"FullName"`
			ImageURL string `json:"ImageUrl"`
		} `json:"CoinInfo"`
		Raw struct {
			USD struct {
				Price     float64 `json:"PRICE"`
				MarketCap float64 `json:"MKTCAP"`
				Change24h float64 `json:"CHANGEPCT24HOUR"`
			} `json:"USD"`
		} `json:"RAW"`
	} `json:"Data"`
}

// FetchListing fetches one page of the top-by-market-cap list.
// CryptoCompare does not expose a rank field; rank is derived from page
// position.
func (c *CryptoCompare) FetchListing(ctx context.Context, page, perPage int) ([]core.Asset, error) {
	// CryptoCompare pages are 0-based.
	url := fmt.Sprintf("%s/data/top/mcapfull?limit=%d&page=%d&tsym=USD", c.baseURL, perPage, page-1)

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp topListResponse
	if err := provider.DoJSON(c.client, req, &resp); err != nil {
		return nil, err
	}

	offset := (page - 1) * perPage
	assets := make([]core.Asset, 0, len(resp.Data))
	for i, row := range resp.Data {
		sym := row.CoinInfo.Name
		if sym == "" {
			continue
		}
		image := ""
		if row.CoinInfo.ImageURL != "" {
			image = imageCDN + row.CoinInfo.ImageURL
		} else {
			image = provider.IconURL(sym)
		}
		assets = append(assets, core.Asset{
			ID:        strings.ToLower(sym),
			Name:      row.CoinInfo.FullName,
			Symbol:    sym,
			Price:     row.Raw.USD.Price,
			Change24h: row.Raw.USD.Change24h,
			MarketCap: row.Raw.USD.MarketCap,
			Image:     image,
			Rank:      offset + i + 1,
		})
	}
	return assets, nil
}

type histoResponse struct {
	Data struct {
		Data []struct {
			Time  int64   `json:"time"`
			Close float64 `json:"close"`
		} `json:"Data"`
	} `json:"Data"`
}

// FetchHistory fetches the daily close series. This is the coarser of the
// two history providers.
func (c *CryptoCompare) FetchHistory(ctx context.Context, assetID string, days int) (core.History, error) {
	if assetID == "" {
		return nil, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("empty asset id"))
	}
	if days < 1 {
		days = 1
	}
	url := fmt.Sprintf("%s/data/v2/histoday?fsym=%s&tsym=USD&limit=%d",
		c.baseURL, idToSymbol(assetID), days)

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp histoResponse
	if err := provider.DoJSON(c.client, req, &resp); err != nil {
		return nil, err
	}

	h := make(core.History, 0, len(resp.Data.Data))
	for _, p := range resp.Data.Data {
		h = append(h, core.HistoryPoint{Timestamp: p.Time, Price: p.Close})
	}
	h.Sort()
	return h, nil
}

type newsResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Body        string `json:"body"`
		URL         string `json:"url"`
		ImageURL    string `json:"imageurl"`
		PublishedOn int64  `json:"published_on"`
		SourceInfo  struct {
			Name string `json:"name"`
		} `json:"source_info"`
	} `json:"Data"`
}

// FetchNews fetches the latest English-language articles.
func (c *CryptoCompare) FetchNews(ctx context.Context) ([]core.NewsArticle, error) {
	url := fmt.Sprintf("%s/data/v2/news/?lang=EN", c.baseURL)

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp newsResponse
	if err := provider.DoJSON(c.client, req, &resp); err != nil {
		return nil, err
	}

	articles := make([]core.NewsArticle, 0, len(resp.Data))
	for _, row := range resp.Data {
		if row.URL == "" && row.ID == "" {
			continue
		}
		id := row.ID
		if id == "" {
			id = row.URL
		}
		published := ""
		if row.PublishedOn > 0 {
			published = time.Unix(row.PublishedOn, 0).UTC().Format(time.RFC3339)
		}
		articles = append(articles, core.NewsArticle{
			ID:          id,
			Title:       row.Title,
			Summary:     row.Body,
			URL:         row.URL,
			Image:       row.ImageURL,
			Source:      row.SourceInfo.Name,
			PublishedAt: published,
		})
	}
	return articles, nil
}
