package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Fetcher pulls the base-currency exchange table from an external JSON
// endpoint shaped like the open.er-api.com response.
type Fetcher struct {
	client   *http.Client
	endpoint string
}

// NewFetcher constructs Fetcher with the given request timeout.
func NewFetcher(endpoint string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

type fetchResponse struct {
	Result   string             `json:"result"`
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

// FetchRate returns the endpoint's rate for the given currency code.
func (f *Fetcher) FetchRate(ctx context.Context, currency string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rates: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rates: fetch: unexpected status %d", resp.StatusCode)
	}
	var body fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("rates: fetch: decode: %w", err)
	}
	if body.Result != "success" {
		return 0, fmt.Errorf("rates: fetch: provider result %q", body.Result)
	}
	rate, ok := body.Rates[currency]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rates: fetch: no usable rate for %s", currency)
	}
	return rate, nil
}
