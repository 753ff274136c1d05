package coinpaprika

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const tickersBody = `[
	{"id":"btc-bitcoin","name":"Bitcoin","symbol":"BTC","rank":1,
	 "quotes":{"USD":{"price":64010,"market_cap":1258000000000,"percent_change_24h":0.4}}},
	{"id":"eth-ethereum","name":"Ethereum","symbol":"ETH","rank":2,
	 "quotes":{"USD":{"price":3110,"market_cap":373000000000,"percent_change_24h":-0.9}}},
	{"id":"usdt-tether","name":"Tether","symbol":"USDT","rank":3,
	 "quotes":{"USD":{"price":1.0,"market_cap":110000000000,"percent_change_24h":0.01}}}
]`

func TestCoinPaprika_FetchListing_PageSlicing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tickersBody))
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL)

	// Page 2 of size 2 holds only the third row.
	assets, err := c.FetchListing(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("FetchListing failed: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("expected 1 asset on page 2, got %d", len(assets))
	}
	if assets[0].ID != "usdt-tether" || assets[0].Rank != 3 {
		t.Errorf("unexpected asset: %+v", assets[0])
	}
	if assets[0].Image != "https://assets.coincap.io/assets/icons/usdt.png" {
		t.Errorf("expected synthesized icon URL, got %s", assets[0].Image)
	}
}

func TestCoinPaprika_FetchListing_PageBeyondEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tickersBody))
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL)
	assets, err := c.FetchListing(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("FetchListing failed: %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("expected empty page beyond end, got %d assets", len(assets))
	}
}
