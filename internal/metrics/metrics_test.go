package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil || r.Registry == nil {
		t.Fatal("expected initialized registry")
	}
}

func TestRecordProviderRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordProviderRequest("coingecko", "listing", "success", 0.25)
	r.RecordProviderRequest("coingecko", "listing", "success", 0.10)
	r.RecordProviderRequest("coinlore", "listing", "error", 0.50)

	got := testutil.ToFloat64(r.providerRequests.WithLabelValues("coingecko", "listing", "success"))
	if got != 2 {
		t.Errorf("expected 2 coingecko successes, got %f", got)
	}
	got = testutil.ToFloat64(r.providerRequests.WithLabelValues("coinlore", "listing", "error"))
	if got != 1 {
		t.Errorf("expected 1 coinlore error, got %f", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	r := NewRegistry()

	r.RecordCacheLookup("listing", true)
	r.RecordCacheLookup("listing", false)
	r.RecordCacheLookup("listing", false)

	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("listing", "hit")); got != 1 {
		t.Errorf("expected 1 hit, got %f", got)
	}
	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("listing", "miss")); got != 2 {
		t.Errorf("expected 2 misses, got %f", got)
	}
}

func TestRecordCascade(t *testing.T) {
	r := NewRegistry()

	r.RecordCascadeFallback("listing", "coingecko")
	r.RecordCascadeExhausted("news")

	if got := testutil.ToFloat64(r.cascadeFallbacks.WithLabelValues("listing", "coingecko")); got != 1 {
		t.Errorf("expected 1 fallback, got %f", got)
	}
	if got := testutil.ToFloat64(r.cascadeExhausted.WithLabelValues("news")); got != 1 {
		t.Errorf("expected 1 exhausted cascade, got %f", got)
	}
}

func TestStatusToString(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
		{100, "1xx"},
	}
	for _, tc := range tests {
		if got := statusToString(tc.status); got != tc.want {
			t.Errorf("statusToString(%d) = %s, want %s", tc.status, got, tc.want)
		}
	}
}
