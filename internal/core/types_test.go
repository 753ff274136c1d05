package core

import (
	"testing"
	"time"
)

func TestAsset_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		asset Asset
		want  bool
	}{
		{"valid", Asset{ID: "bitcoin", Name: "Bitcoin", Price: 64000}, true},
		{"empty id", Asset{Name: "Bitcoin", Price: 64000}, false},
		{"zero price still valid", Asset{ID: "bitcoin"}, true},
	}

	for _, tc := range tests {
		if got := tc.asset.IsValid(); got != tc.want {
			t.Errorf("%s: IsValid() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestHistory_Sort(t *testing.T) {
	h := History{
		{Timestamp: 300, Price: 3},
		{Timestamp: 100, Price: 1},
		{Timestamp: 200, Price: 2},
	}
	h.Sort()

	for i := 1; i < len(h); i++ {
		if h[i].Timestamp < h[i-1].Timestamp {
			t.Fatalf("history not ascending at index %d: %v", i, h)
		}
	}
	if h[0].Price != 1 {
		t.Errorf("expected earliest point first, got %v", h[0])
	}
}

func TestNewsArticle_PublishedTime(t *testing.T) {
	tests := []struct {
		published string
		wantZero  bool
	}{
		{"2024-05-01T10:30:00Z", false},
		{"2024-05-01T10:30:00+02:00", false},
		{"2024-05-01T10:30:00", false},
		{"2024-05-01 10:30:00", false},
		{"yesterday-ish", true},
		{"", true},
	}

	for _, tc := range tests {
		got := NewsArticle{PublishedAt: tc.published}.PublishedTime()
		if got.IsZero() != tc.wantZero {
			t.Errorf("PublishedTime(%q) = %v, wantZero=%v", tc.published, got, tc.wantZero)
		}
	}
}

func TestSortArticles(t *testing.T) {
	articles := []NewsArticle{
		{ID: "a", PublishedAt: "2024-05-01T00:00:00Z"},
		{ID: "unparseable", PublishedAt: "not a timestamp"},
		{ID: "c", PublishedAt: "2024-05-03T00:00:00Z"},
		{ID: "b", PublishedAt: "2024-05-02T00:00:00Z"},
	}
	SortArticles(articles)

	wantOrder := []string{"c", "b", "a", "unparseable"}
	for i, want := range wantOrder {
		if articles[i].ID != want {
			t.Fatalf("position %d: got %s, want %s (full order: %v)", i, articles[i].ID, want, articles)
		}
	}
}

func TestSortArticles_StableForEqualTimes(t *testing.T) {
	ts := time.Now().UTC().Format(time.RFC3339)
	articles := []NewsArticle{
		{ID: "first", PublishedAt: ts},
		{ID: "second", PublishedAt: ts},
	}
	SortArticles(articles)

	if articles[0].ID != "first" || articles[1].ID != "second" {
		t.Errorf("equal timestamps should keep input order, got %v", articles)
	}
}
