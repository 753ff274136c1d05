package coinlore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCoinlore_FetchListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("start"); got != "100" {
			t.Errorf("expected start=100, got %s", got)
		}
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("expected limit=100, got %s", got)
		}
		w.Write([]byte(`{"data":[
			{"id":"90","symbol":"BTC","name":"Bitcoin","rank":1,
			 "price_usd":"64005.91","percent_change_24h":"0.35","market_cap_usd":"1258000000000.00"},
			{"id":"80","symbol":"ETH","name":"Ethereum","rank":2,
			 "price_usd":"3108.20","percent_change_24h":"bad","market_cap_usd":"372800000000.00"}
		]}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL)
	assets, err := c.FetchListing(context.Background(), 2, 100)
	if err != nil {
		t.Fatalf("FetchListing failed: %v", err)
	}

	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}
	if assets[0].Price != 64005.91 || assets[0].Rank != 1 {
		t.Errorf("unexpected asset: %+v", assets[0])
	}
	if assets[1].Change24h != 0 {
		t.Errorf("unparseable change should normalize to 0, got %f", assets[1].Change24h)
	}
	if assets[0].Image == "" {
		t.Error("expected synthesized image URL")
	}
}
