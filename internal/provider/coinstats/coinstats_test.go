package coinstats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCoinStats_FetchNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/public/v1/news" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"news":[
			{"id":"abc123","feedDate":1714644000000,"title":"Market update",
			 "description":"Prices moved.","source":"CoinStats","imgURL":"https://img/news.png",
			 "link":"https://coinstats/news/abc123"},
			{"id":"","feedDate":0,"title":"Link only","description":"","source":"Feed",
			 "imgURL":"","link":"https://coinstats/news/link-only"}
		]}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL)
	articles, err := c.FetchNews(context.Background())
	if err != nil {
		t.Fatalf("FetchNews failed: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].PublishedAt != "2024-05-02T10:00:00Z" {
		t.Errorf("expected millis converted to RFC3339, got %s", articles[0].PublishedAt)
	}
	if articles[1].ID != "https://coinstats/news/link-only" {
		t.Errorf("expected link as fallback id, got %s", articles[1].ID)
	}
}
