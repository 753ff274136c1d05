package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/provider"
)

const baseURL = "https://api.coinbase.com"

// Coinbase is the rates-only provider, last in the listing cascade. It
// supplies nothing but a price per currency: rank is assigned sequentially
// in received order, and change/market-cap stay 0. Callers must not treat
// those fields as meaningful for this provider's results.
type Coinbase struct {
	client  *http.Client
	baseURL string
}

// New creates a new Coinbase provider
func New() *Coinbase {
	return &Coinbase{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
	}
}

// NewWithBaseURL creates a Coinbase provider with custom base URL (for testing)
func NewWithBaseURL(url string) *Coinbase {
	c := New()
	c.baseURL = url
	return c
}

func (c *Coinbase) Name() string {
	return "coinbase"
}

// FetchListing fetches the USD exchange-rate table and slices the
// requested page. The rates object is decoded with a token stream so the
// upstream's order survives; encoding a Go map would scramble it.
func (c *Coinbase) FetchListing(ctx context.Context, page, perPage int) ([]core.Asset, error) {
	url := fmt.Sprintf("%s/v2/exchange-rates?currency=USD", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	var envelope struct {
		Data struct {
			Currency string          `json:"currency"`
			Rates    json.RawMessage `json:"rates"`
		} `json:"data"`
	}
	if err := provider.DoJSON(c.client, req, &envelope); err != nil {
		return nil, err
	}

	symbols, rates, err := decodeOrderedRates(envelope.Data.Rates)
	if err != nil {
		return nil, core.WrapError(core.ErrMalformed, err)
	}

	all := make([]core.Asset, 0, len(symbols))
	for i, sym := range symbols {
		rate := rates[i]
		if rate <= 0 {
			continue
		}
		all = append(all, core.Asset{
			ID:     strings.ToLower(sym),
			Name:   sym,
			Symbol: sym,
			// Rates are units per USD; invert to get the USD price.
			Price: 1 / rate,
			Image: provider.IconURL(sym),
			Rank:  len(all) + 1,
		})
	}

	start := (page - 1) * perPage
	if start >= len(all) {
		return []core.Asset{}, nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// decodeOrderedRates walks the rates object token by token, keeping the
// key order the upstream sent.
func decodeOrderedRates(raw json.RawMessage) ([]string, []float64, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("rates is not an object")
	}

	var symbols []string
	var rates []float64
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected rates key token %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		val, ok := valTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("rate for %s is not a string", key)
		}
		symbols = append(symbols, key)
		rates = append(rates, provider.ParseDecimal(val))
	}
	return symbols, rates, nil
}
