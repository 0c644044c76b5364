// Package forecast fetches current, hourly and daily weather from the
// Open-Meteo forecast API.
package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/weatherlabs/weather-oracle/internal/observability"
)

// ErrFetchFailed covers transport failures and non-success responses.
var ErrFetchFailed = errors.New("weather fetch failed")

// Field lists requested per granularity. Snapshot decoding depends on these
// exact lists; the joined strings are a contract with the upstream API.
var (
	currentFields = []string{
		"temperature_2m",
		"relative_humidity_2m",
		"apparent_temperature",
		"is_day",
		"precipitation",
		"weather_code",
		"wind_speed_10m",
	}
	hourlyFields = []string{
		"temperature_2m",
		"precipitation_probability",
		"weather_code",
	}
	dailyFields = []string{
		"temperature_2m_max",
		"temperature_2m_min",
		"precipitation_sum",
		"weather_code",
	}
)

// Current holds the instantaneous readings. Pointer fields decode absent
// upstream values as nil ("unknown"), never as zero.
type Current struct {
	Time                string   `json:"time"`
	Temperature         *float64 `json:"temperature_2m"`
	RelativeHumidity    *float64 `json:"relative_humidity_2m"`
	ApparentTemperature *float64 `json:"apparent_temperature"`
	IsDay               *int     `json:"is_day"`
	Precipitation       *float64 `json:"precipitation"`
	WeatherCode         *int     `json:"weather_code"`
	WindSpeed           *float64 `json:"wind_speed_10m"`
}

// Hourly holds index-aligned parallel series keyed by Time.
type Hourly struct {
	Time                     []string   `json:"time"`
	Temperature              []*float64 `json:"temperature_2m"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
	WeatherCode              []*int     `json:"weather_code"`
}

// Daily holds index-aligned parallel series keyed by Time. WeatherCode and
// PrecipitationSum may be shorter than Time or absent; consumers degrade
// per index instead of failing.
type Daily struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WeatherCode      []*int     `json:"weather_code"`
}

// Snapshot is one fetched forecast payload, treated as an immutable unit.
// Values are metric as delivered by the API; unit conversion happens at
// render time and is never written back.
type Snapshot struct {
	Timezone string  `json:"timezone"`
	Current  Current `json:"current"`
	Hourly   Hourly  `json:"hourly"`
	Daily    Daily   `json:"daily"`
}

// Client fetches forecast snapshots. Single attempt per call, no retries,
// no caching; the only timeout is the transport default.
type Client struct {
	apiURL string
	client *http.Client
}

// NewClient returns a forecast client for the given API base URL.
func NewClient(apiURL string, timeout time.Duration) *Client {
	return &Client{
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the forecast for the given coordinates with server-side
// timezone resolution fixed to the coordinate's local time.
func (c *Client) Fetch(ctx context.Context, latitude, longitude float64) (Snapshot, error) {
	start := time.Now()

	req, err := c.buildRequest(ctx, latitude, longitude)
	if err != nil {
		observability.ForecastAPICallsTotal.WithLabelValues("error").Inc()
		return Snapshot{}, fmt.Errorf("%w: build request: %v", ErrFetchFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.ForecastAPICallsTotal.WithLabelValues("error").Inc()
		observability.ForecastAPIDuration.WithLabelValues("error").Observe(duration)
		return Snapshot{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := observability.StatusLabel(resp.StatusCode)
	observability.ForecastAPICallsTotal.WithLabelValues(status).Inc()
	observability.ForecastAPIDuration.WithLabelValues(status).Observe(duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Snapshot{}, fmt.Errorf("%w: HTTP %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: read response body: %v", ErrFetchFailed, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: parse response: %v", ErrFetchFailed, err)
	}
	return snap, nil
}

func (c *Client) buildRequest(ctx context.Context, latitude, longitude float64) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("timezone", "auto")
	params.Set("current", strings.Join(currentFields, ","))
	params.Set("hourly", strings.Join(hourlyFields, ","))
	params.Set("daily", strings.Join(dailyFields, ","))
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
