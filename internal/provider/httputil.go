package provider

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/sametyasit/cryptobuddy/internal/core"
)

// iconCDN serves coin icons keyed by lowercased ticker symbol. Used when a
// provider does not supply a direct image URL.
const iconCDN = "https://assets.coincap.io/assets/icons"

// DoJSON executes the request, maps the provider's HTTP status convention
// onto the core error taxonomy, and decodes the body into v.
//
// Status mapping: 2xx success, 401/403 unauthorized, 429 rate limited,
// everything else a server error carrying the status. A body that is not
// the expected shape is reported as malformed, which is fatal for the
// provider rather than retry-worthy.
func DoJSON(client *http.Client, req *http.Request, v any) error {
	resp, err := client.Do(req)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return core.WrapError(core.ErrTimeout, err)
		}
		// Non-timeout transport failures are terminal for this provider;
		// the cascade moves on to the next one.
		return core.WrapError(core.ErrServerError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return core.WrapError(core.ErrUnauthorized, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return core.WrapError(core.ErrRateLimited, fmt.Errorf("status %d", resp.StatusCode))
	default:
		return core.ServerError(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return core.WrapError(core.ErrMalformed, err)
	}
	return nil
}

// ParseDecimal parses a string-encoded numeric field, returning 0 on any
// parse failure. Several upstreams encode prices and market caps as strings.
func ParseDecimal(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// IconURL synthesizes an image URL from the ticker symbol for providers
// that do not supply one.
func IconURL(symbol string) string {
	if symbol == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s.png", iconCDN, strings.ToLower(symbol))
}
