package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/weatherlabs/weather-oracle/internal/health"
	"github.com/weatherlabs/weather-oracle/internal/observability"
	"github.com/weatherlabs/weather-oracle/internal/search"
	"github.com/weatherlabs/weather-oracle/internal/units"
	"github.com/weatherlabs/weather-oracle/internal/validation"
	"github.com/weatherlabs/weather-oracle/internal/view"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	controller *search.Controller
	healthCfg  health.Config
	logger     *zap.Logger
	queryMin   int
	queryMax   int

	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(controller *search.Controller, healthCfg health.Config, logger *zap.Logger, queryMin, queryMax int) *Handler {
	return &Handler{
		controller: controller,
		healthCfg:  healthCfg,
		logger:     logger,
		queryMin:   queryMin,
		queryMax:   queryMax,
	}
}

// stateResponse is the wire shape of the controller state. The view is only
// present when both place and snapshot are; partial data is never rendered.
type stateResponse struct {
	Status string         `json:"status"`
	Units  units.System   `json:"units"`
	Error  string         `json:"error,omitempty"`
	Place  *placeResponse `json:"place,omitempty"`
	View   *view.View     `json:"view,omitempty"`
}

type placeResponse struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func renderState(state search.State) stateResponse {
	resp := stateResponse{
		Status: string(state.Status),
		Units:  state.Units,
		Error:  state.Err,
	}
	if state.Place != nil {
		resp.Place = &placeResponse{
			Name:      state.Place.Name,
			Country:   state.Place.Country,
			Latitude:  state.Place.Latitude,
			Longitude: state.Place.Longitude,
		}
	}
	if state.Place != nil && state.Snapshot != nil {
		v := view.Build(*state.Place, *state.Snapshot, state.Units)
		resp.View = &v
	}
	return resp
}

// PostSearch handles POST /search. Body: {"query": "..."}. An empty trimmed
// query is a no-op returning the unchanged state; lookup errors land in the
// state document (status=error), not in an HTTP error code — the controller
// state is the resource.
func (h *Handler) PostSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON with a query field")
		return
	}

	query, err := validation.ValidateQuery(body.Query, h.queryMin, h.queryMax)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	state := h.controller.SubmitSearch(r.Context(), query)
	h.recordOutcome(state)
	writeJSON(w, http.StatusOK, renderState(state))
}

// PostLocation handles POST /location. An optional body {"latitude": ..,
// "longitude": ..} carries coordinates the client already obtained; without
// it the controller falls back to its configured platform source.
func (h *Handler) PostLocation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	// An empty body is fine; it means "ask the platform".
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}

	var state search.State
	if body.Latitude != nil && body.Longitude != nil {
		src := oneShotLocation{lat: *body.Latitude, lon: *body.Longitude}
		state = h.controller.UseCurrentLocationFrom(r.Context(), src)
	} else {
		state = h.controller.UseCurrentLocation(r.Context())
	}
	h.recordOutcome(state)
	writeJSON(w, http.StatusOK, renderState(state))
}

// PutUnits handles PUT /units. Body: {"units": "metric"|"imperial"}.
func (h *Handler) PutUnits(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Units string `json:"units"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON with a units field")
		return
	}

	system, err := units.Parse(body.Units)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "UNKNOWN_UNITS", "units must be metric or imperial")
		return
	}

	state := h.controller.SetUnitSystem(system)
	writeJSON(w, http.StatusOK, renderState(state))
}

// GetState handles GET /state: the rendered controller state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, renderState(h.controller.State()))
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status, reason := health.Evaluate(h.healthCfg)

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", status),
			zap.String("reason", reason))
	}
	h.healthStatusPrev = status
	h.healthStatusMu.Unlock()

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "weather-oracle",
		"version":   "dev",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// recordOutcome feeds the health tracker from terminal controller states.
// Idle (a no-op action) is neither a success nor an error.
func (h *Handler) recordOutcome(state search.State) {
	switch state.Status {
	case search.StatusSuccess:
		health.RecordSuccess()
	case search.StatusError:
		health.RecordError()
	}
}

// oneShotLocation adapts client-posted coordinates to a LocationSource.
type oneShotLocation struct {
	lat, lon float64
}

func (s oneShotLocation) CurrentLocation(_ context.Context) (float64, float64, error) {
	return s.lat, s.lon, nil
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard envelope with code,
// message, and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := observability.CorrelationIDFromContext(r.Context())
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}
