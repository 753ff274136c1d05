package coinstats

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/provider"
)

const baseURL = "https://api.coinstats.app"

// CoinStats serves the news capability.
type CoinStats struct {
	client  *http.Client
	baseURL string
	limit   int
}

// New creates a new CoinStats provider
func New() *CoinStats {
	return &CoinStats{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		limit:   30,
	}
}

// NewWithBaseURL creates a CoinStats provider with custom base URL (for testing)
func NewWithBaseURL(url string) *CoinStats {
	c := New()
	c.baseURL = url
	return c
}

func (c *CoinStats) Name() string {
	return "coinstats"
}

type newsResponse struct {
	News []struct {
		ID          string `json:"id"`
		FeedDate    int64  `json:"feedDate"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Source      string `json:"source"`
		ImgURL      string `json:"imgURL"`
		Link        string `json:"link"`
	} `json:"news"`
}

// FetchNews fetches the latest articles. feedDate arrives as epoch millis
// and is rendered to RFC3339.
func (c *CoinStats) FetchNews(ctx context.Context) ([]core.NewsArticle, error) {
	url := fmt.Sprintf("%s/public/v1/news?skip=0&limit=%d", c.baseURL, c.limit)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	var resp newsResponse
	if err := provider.DoJSON(c.client, req, &resp); err != nil {
		return nil, err
	}

	articles := make([]core.NewsArticle, 0, len(resp.News))
	for _, row := range resp.News {
		id := row.ID
		if id == "" {
			id = row.Link
		}
		if id == "" {
			continue
		}
		published := ""
		if row.FeedDate > 0 {
			published = time.UnixMilli(row.FeedDate).UTC().Format(time.RFC3339)
		}
		articles = append(articles, core.NewsArticle{
			ID:          id,
			Title:       row.Title,
			Summary:     row.Description,
			URL:         row.Link,
			Image:       row.ImgURL,
			Source:      row.Source,
			PublishedAt: published,
		})
	}
	return articles, nil
}
