package cryptopanic

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/provider"
)

const baseURL = "https://cryptopanic.com"

// CryptoPanic serves the news capability. Auth travels as a query-string
// token rather than a header.
type CryptoPanic struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new CryptoPanic provider
func New(apiKey string) *CryptoPanic {
	return &CryptoPanic{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a CryptoPanic provider with custom base URL (for testing)
func NewWithBaseURL(apiKey, url string) *CryptoPanic {
	c := New(apiKey)
	c.baseURL = url
	return c
}

func (c *CryptoPanic) Name() string {
	return "cryptopanic"
}

type postsResponse struct {
	Results []struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
		Source      struct {
			Title string `json:"title"`
		} `json:"source"`
	} `json:"results"`
}

// FetchNews fetches the public post feed. CryptoPanic has no article
// images or summaries; those fields stay empty.
func (c *CryptoPanic) FetchNews(ctx context.Context) ([]core.NewsArticle, error) {
	url := fmt.Sprintf("%s/api/v1/posts/?auth_token=%s&public=true", c.baseURL, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	var resp postsResponse
	if err := provider.DoJSON(c.client, req, &resp); err != nil {
		return nil, err
	}

	articles := make([]core.NewsArticle, 0, len(resp.Results))
	for _, row := range resp.Results {
		id := ""
		if row.ID > 0 {
			id = strconv.FormatInt(row.ID, 10)
		} else if row.URL != "" {
			id = row.URL
		} else {
			continue
		}
		articles = append(articles, core.NewsArticle{
			ID:          id,
			Title:       row.Title,
			URL:         row.URL,
			Source:      row.Source.Title,
			PublishedAt: row.PublishedAt,
		})
	}
	return articles, nil
}
