package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSource fetches rates from an external provider speaking a simple JSON
// API: GET {base}/rates?from=EUR&to=USD&date=2026-03-01 -> {"rate": 1.0834}.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSource constructs a provider client.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Rate implements RateSource against the provider API.
func (s *HTTPSource) Rate(ctx context.Context, from, to string, date time.Time) (float64, error) {
	url := fmt.Sprintf("%s/rates?from=%s&to=%s&date=%s", s.baseURL, from, to, date.Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("fx provider returned status %d", resp.StatusCode)
	}
	var payload struct {
		Rate float64 `json:"rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	if payload.Rate <= 0 {
		return 0, fmt.Errorf("fx provider returned rate %v", payload.Rate)
	}
	return payload.Rate, nil
}
