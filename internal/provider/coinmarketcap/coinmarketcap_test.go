package coinmarketcap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sametyasit/cryptobuddy/internal/core"
)

func TestCoinMarketCap_FetchListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-CMC_PRO_API_KEY"); got != "cmc-key" {
			t.Errorf("expected auth header, got %q", got)
		}
		// page 3, perPage 20 -> start 41
		if got := r.URL.Query().Get("start"); got != "41" {
			t.Errorf("expected start=41, got %s", got)
		}
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("expected limit=20, got %s", got)
		}
		w.Write([]byte(`{"data":[
			{"id":1,"name":"Bitcoin","symbol":"BTC","slug":"bitcoin","cmc_rank":1,
			 "quote":{"USD":{"price":64123.4,"percent_change_24h":1.5,"market_cap":1261000000000}}},
			{"id":1027,"name":"Ethereum","symbol":"ETH","slug":"","cmc_rank":2,
			 "quote":{"USD":{"price":3112.2,"percent_change_24h":-0.3,"market_cap":373000000000}}}
		]}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL("cmc-key", srv.URL)
	assets, err := c.FetchListing(context.Background(), 3, 20)
	if err != nil {
		t.Fatalf("FetchListing failed: %v", err)
	}

	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}
	if assets[0].ID != "bitcoin" {
		t.Errorf("expected slug as id, got %s", assets[0].ID)
	}
	if assets[1].ID != "1027" {
		t.Errorf("expected numeric id fallback, got %s", assets[1].ID)
	}
	if assets[0].Image != "https://assets.coincap.io/assets/icons/btc.png" {
		t.Errorf("expected synthesized icon URL, got %s", assets[0].Image)
	}
}

func TestCoinMarketCap_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewWithBaseURL("", srv.URL)
	_, err := c.FetchListing(context.Background(), 1, 10)
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("expected UNAUTHORIZED, got %v", err)
	}
}
