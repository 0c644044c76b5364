package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/weatherlabs/weather-oracle/internal/forecast"
	"github.com/weatherlabs/weather-oracle/internal/geocode"
	"github.com/weatherlabs/weather-oracle/internal/health"
	"github.com/weatherlabs/weather-oracle/internal/search"
	"github.com/weatherlabs/weather-oracle/internal/units"
)

type fakeGeocoder struct {
	place geocode.Place
	err   error
}

func (f *fakeGeocoder) Resolve(ctx context.Context, name string) (geocode.Place, error) {
	if f.err != nil {
		return geocode.Place{}, f.err
	}
	return f.place, nil
}

type fakeForecaster struct {
	snap forecast.Snapshot
	err  error
}

func (f *fakeForecaster) Fetch(ctx context.Context, lat, lon float64) (forecast.Snapshot, error) {
	if f.err != nil {
		return forecast.Snapshot{}, f.err
	}
	return f.snap, nil
}

func testSnapshot() forecast.Snapshot {
	temp := 21.4
	code := 3
	return forecast.Snapshot{
		Current: forecast.Current{Temperature: &temp, WeatherCode: &code},
		Daily:   forecast.Daily{Time: []string{"2024-05-01"}},
	}
}

func newTestHandler(g search.Geocoder, f search.Forecaster, loc search.LocationSource) *Handler {
	controller := search.NewController(g, f, loc, units.Metric, zap.NewNop())
	cfg := health.Config{ErrorWindow: time.Minute, ErrorPct: 50}
	return NewHandler(controller, cfg, zap.NewNop(), 1, 100)
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	var resp stateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestPostSearch_Success(t *testing.T) {
	health.Reset()
	g := &fakeGeocoder{place: geocode.Place{Name: "Porto Alegre, Rio Grande do Sul", Country: "Brazil", Latitude: -30.03, Longitude: -51.23}}
	h := newTestHandler(g, &fakeForecaster{snap: testSnapshot()}, nil)

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"Porto Alegre"}`))
	rec := httptest.NewRecorder()
	h.PostSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeState(t, rec)
	if resp.Status != "success" {
		t.Errorf("state status = %q, want success", resp.Status)
	}
	if resp.View == nil {
		t.Fatal("view missing from successful state")
	}
	if resp.View.Title != "Porto Alegre, Rio Grande do Sul — Brazil" {
		t.Errorf("view title = %q", resp.View.Title)
	}
	if resp.View.Current.Temperature != "21.4 °C" {
		t.Errorf("view temperature = %q", resp.View.Current.Temperature)
	}
}

func TestPostSearch_EmptyQueryNoOp(t *testing.T) {
	health.Reset()
	h := newTestHandler(&fakeGeocoder{}, &fakeForecaster{}, nil)

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"   "}`))
	rec := httptest.NewRecorder()
	h.PostSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeState(t, rec)
	if resp.Status != "idle" {
		t.Errorf("state status = %q, want idle", resp.Status)
	}
}

func TestPostSearch_NotFoundLandsInState(t *testing.T) {
	health.Reset()
	h := newTestHandler(&fakeGeocoder{err: geocode.ErrPlaceNotFound}, &fakeForecaster{}, nil)

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"Qwxyzzzz"}`))
	rec := httptest.NewRecorder()
	h.PostSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (errors are state, not transport)", rec.Code)
	}
	resp := decodeState(t, rec)
	if resp.Status != "error" {
		t.Errorf("state status = %q, want error", resp.Status)
	}
	if resp.Error != "City not found" {
		t.Errorf("state error = %q", resp.Error)
	}
	if resp.Place != nil || resp.View != nil {
		t.Errorf("place/view present after failure: %+v / %+v", resp.Place, resp.View)
	}
}

func TestPostSearch_InvalidQuery(t *testing.T) {
	h := newTestHandler(&fakeGeocoder{}, &fakeForecaster{}, nil)

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"<script>"}`))
	rec := httptest.NewRecorder()
	h.PostSearch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPostSearch_InvalidBody(t *testing.T) {
	h := newTestHandler(&fakeGeocoder{}, &fakeForecaster{}, nil)

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	h.PostSearch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPostLocation_WithCoordinates(t *testing.T) {
	health.Reset()
	h := newTestHandler(&fakeGeocoder{}, &fakeForecaster{snap: testSnapshot()}, nil)

	req := httptest.NewRequest("POST", "/location", strings.NewReader(`{"latitude":59.33,"longitude":18.07}`))
	rec := httptest.NewRecorder()
	h.PostLocation(rec, req)

	resp := decodeState(t, rec)
	if resp.Status != "success" {
		t.Fatalf("state status = %q, want success", resp.Status)
	}
	if resp.Place == nil || resp.Place.Name != "Your location" {
		t.Errorf("place = %+v, want synthesized Your location", resp.Place)
	}
	if resp.Place.Latitude != 59.33 {
		t.Errorf("latitude = %v, want 59.33", resp.Place.Latitude)
	}
}

func TestPostLocation_NoBodyNoSource(t *testing.T) {
	health.Reset()
	h := newTestHandler(&fakeGeocoder{}, &fakeForecaster{}, nil)

	req := httptest.NewRequest("POST", "/location", strings.NewReader(""))
	rec := httptest.NewRecorder()
	h.PostLocation(rec, req)

	resp := decodeState(t, rec)
	if resp.Status != "error" {
		t.Fatalf("state status = %q, want error", resp.Status)
	}
	if resp.Error != "Geolocation not supported" {
		t.Errorf("state error = %q", resp.Error)
	}
}

func TestPutUnits(t *testing.T) {
	h := newTestHandler(&fakeGeocoder{}, &fakeForecaster{}, nil)

	req := httptest.NewRequest("PUT", "/units", strings.NewReader(`{"units":"imperial"}`))
	rec := httptest.NewRecorder()
	h.PutUnits(rec, req)

	resp := decodeState(t, rec)
	if resp.Units != units.Imperial {
		t.Errorf("units = %q, want imperial", resp.Units)
	}
}

func TestPutUnits_Unknown(t *testing.T) {
	h := newTestHandler(&fakeGeocoder{}, &fakeForecaster{}, nil)

	req := httptest.NewRequest("PUT", "/units", strings.NewReader(`{"units":"kelvin"}`))
	rec := httptest.NewRecorder()
	h.PutUnits(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// The unit toggle changes how the same snapshot renders without refetching.
func TestUnitToggleRerendersStoredSnapshot(t *testing.T) {
	health.Reset()
	g := &fakeGeocoder{place: geocode.Place{Name: "Berlin", Country: "Germany"}}
	h := newTestHandler(g, &fakeForecaster{snap: testSnapshot()}, nil)

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"Berlin"}`))
	h.PostSearch(httptest.NewRecorder(), req)

	req = httptest.NewRequest("PUT", "/units", strings.NewReader(`{"units":"imperial"}`))
	rec := httptest.NewRecorder()
	h.PutUnits(rec, req)

	resp := decodeState(t, rec)
	if resp.View == nil {
		t.Fatal("view missing after unit toggle")
	}
	if resp.View.Current.Temperature != "70.5 °F" {
		t.Errorf("temperature = %q, want 70.5 °F", resp.View.Current.Temperature)
	}
}

func TestGetState(t *testing.T) {
	h := newTestHandler(&fakeGeocoder{}, &fakeForecaster{}, nil)

	rec := httptest.NewRecorder()
	h.GetState(rec, httptest.NewRequest("GET", "/state", nil))

	resp := decodeState(t, rec)
	if resp.Status != "idle" {
		t.Errorf("initial state = %q, want idle", resp.Status)
	}
}

func TestGetHealth(t *testing.T) {
	health.Reset()
	h := newTestHandler(&fakeGeocoder{}, &fakeForecaster{}, nil)

	rec := httptest.NewRecorder()
	h.GetHealth(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy status code = %d, want 200", rec.Code)
	}

	health.SetShuttingDown(true)
	defer health.SetShuttingDown(false)
	rec = httptest.NewRecorder()
	h.GetHealth(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("shutting-down status code = %d, want 503", rec.Code)
	}
}
