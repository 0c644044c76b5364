// Package geocode resolves free-text place names to coordinates via the
// Open-Meteo geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/weatherlabs/weather-oracle/internal/observability"
)

var (
	// ErrLookupFailed covers transport failures and non-success responses.
	ErrLookupFailed = errors.New("city lookup failed")
	// ErrPlaceNotFound is returned when the API yields zero results.
	ErrPlaceNotFound = errors.New("city not found")
)

// Place is a resolved geographic location. Immutable once created; callers
// replace it wholesale on the next lookup.
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client issues top-1 place lookups. Stateless beyond the HTTP client;
// single attempt per call, no retries, no caching.
type Client struct {
	apiURL string
	client *http.Client
}

// NewClient returns a geocoding client for the given API base URL.
func NewClient(apiURL string, timeout time.Duration) *Client {
	return &Client{
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Admin1    string  `json:"admin1"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Resolve looks up the single best match for name. The caller is responsible
// for rejecting empty input; Resolve forwards whatever it is given.
func (c *Client) Resolve(ctx context.Context, name string) (Place, error) {
	start := time.Now()

	req, err := c.buildRequest(ctx, name)
	if err != nil {
		observability.GeocodeAPICallsTotal.WithLabelValues("error").Inc()
		return Place{}, fmt.Errorf("%w: build request: %v", ErrLookupFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.GeocodeAPICallsTotal.WithLabelValues("error").Inc()
		observability.GeocodeAPIDuration.WithLabelValues("error").Observe(duration)
		return Place{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := observability.StatusLabel(resp.StatusCode)
	observability.GeocodeAPICallsTotal.WithLabelValues(status).Inc()
	observability.GeocodeAPIDuration.WithLabelValues(status).Observe(duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Place{}, fmt.Errorf("%w: HTTP %d", ErrLookupFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Place{}, fmt.Errorf("%w: read response body: %v", ErrLookupFailed, err)
	}

	var apiResp searchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return Place{}, fmt.Errorf("%w: parse response: %v", ErrLookupFailed, err)
	}

	if len(apiResp.Results) == 0 {
		return Place{}, ErrPlaceNotFound
	}

	r := apiResp.Results[0]
	displayName := r.Name
	if r.Admin1 != "" {
		displayName += ", " + r.Admin1
	}
	return Place{
		Name:      displayName,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, name string) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if corrID := observability.CorrelationIDFromContext(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}
	return req, nil
}
