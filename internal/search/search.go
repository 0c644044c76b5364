// Package search orchestrates the lookup pipeline: validate input, geocode,
// fetch the forecast, and hold the resulting UI state.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/weatherlabs/weather-oracle/internal/forecast"
	"github.com/weatherlabs/weather-oracle/internal/geocode"
	"github.com/weatherlabs/weather-oracle/internal/observability"
	"github.com/weatherlabs/weather-oracle/internal/units"
)

// Status is the controller's lifecycle phase. Success and Error both yield
// back to Loading at the start of the next action; the controller is
// reusable indefinitely.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

var (
	// ErrGeolocationUnsupported is reported when no location source exists.
	ErrGeolocationUnsupported = errors.New("geolocation not supported")
)

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, name string) (geocode.Place, error)
}

// Forecaster fetches a forecast snapshot for coordinates.
type Forecaster interface {
	Fetch(ctx context.Context, latitude, longitude float64) (forecast.Snapshot, error)
}

// LocationSource is the platform location service: a one-shot coordinate
// fix, or an error carrying a human-readable message (denied, timed out).
type LocationSource interface {
	CurrentLocation(ctx context.Context) (latitude, longitude float64, err error)
}

// State is an immutable copy of the controller's state tuple. Place and
// Snapshot are replaced wholesale per action and never mutated in place, so
// sharing the pointers across copies is safe.
type State struct {
	Status   Status
	Place    *geocode.Place
	Snapshot *forecast.Snapshot
	Units    units.System
	Err      string
}

// Controller owns the {place, snapshot, status, error} tuple and is the only
// writer to it. Each action carries a monotonically increasing token; a
// completion is applied only while its token is still the latest, so a slow
// response never overwrites the result of a newer action.
type Controller struct {
	geocoder   Geocoder
	forecaster Forecaster
	locations  LocationSource // nil means the platform offers no geolocation
	logger     *zap.Logger

	mu       sync.Mutex
	token    uint64
	status   Status
	place    *geocode.Place
	snapshot *forecast.Snapshot
	units    units.System
	errMsg   string
}

// NewController returns an idle controller. locations may be nil, in which
// case UseCurrentLocation reports the unsupported error.
func NewController(geocoder Geocoder, forecaster Forecaster, locations LocationSource, defaultUnits units.System, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		geocoder:   geocoder,
		forecaster: forecaster,
		locations:  locations,
		logger:     logger,
		status:     StatusIdle,
		units:      defaultUnits,
	}
}

// SubmitSearch runs the geocode-then-fetch chain for rawQuery. A query that
// is empty after trimming is a silent no-op: state untouched, no network
// calls. Success installs place and snapshot atomically; partial data is
// never kept.
func (c *Controller) SubmitSearch(ctx context.Context, rawQuery string) State {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		return c.State()
	}

	tok := c.beginAction()

	place, err := c.geocoder.Resolve(ctx, query)
	if err != nil {
		c.logger.Debug("geocode failed", zap.String("query", query), zap.Error(err))
		return c.fail(tok, err, true, true)
	}

	snap, err := c.forecaster.Fetch(ctx, place.Latitude, place.Longitude)
	if err != nil {
		// The resolved place is dropped along with the snapshot so a failed
		// fetch never leaves a heading without data under it.
		c.logger.Debug("forecast failed", zap.String("query", query), zap.Error(err))
		return c.fail(tok, err, true, true)
	}

	return c.succeed(tok, place, snap)
}

// UseCurrentLocation runs the location-then-fetch chain against the
// configured platform source.
func (c *Controller) UseCurrentLocation(ctx context.Context) State {
	return c.UseCurrentLocationFrom(ctx, c.locations)
}

// UseCurrentLocationFrom is UseCurrentLocation with an explicit source, for
// callers that obtain coordinates per request. A nil source reports
// ErrGeolocationUnsupported immediately, without passing through Loading.
func (c *Controller) UseCurrentLocationFrom(ctx context.Context, source LocationSource) State {
	if source == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.status = StatusError
		c.errMsg = "Geolocation not supported"
		observability.SearchErrorsTotal.WithLabelValues("geolocation_unsupported").Inc()
		return c.stateLocked()
	}

	tok := c.beginAction()

	lat, lon, err := source.CurrentLocation(ctx)
	if err != nil {
		// Surface the platform's own message; prior place and snapshot are
		// left alone since no lookup was started.
		c.logger.Debug("location lookup failed", zap.Error(err))
		return c.fail(tok, err, false, false)
	}

	place := geocode.Place{Name: "Your location", Latitude: lat, Longitude: lon}
	c.setPlace(tok, place)

	snap, err := c.forecaster.Fetch(ctx, lat, lon)
	if err != nil {
		// The synthesized place is kept on this path; only the snapshot is
		// cleared.
		c.logger.Debug("forecast failed", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		return c.fail(tok, err, false, true)
	}

	return c.succeed(tok, place, snap)
}

// SetUnitSystem switches the display units. Presentation-only: the stored
// snapshot is untouched and the next render picks up the new system.
func (c *Controller) SetUnitSystem(system units.System) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.units = system
	observability.UnitSelectionsTotal.WithLabelValues(string(system)).Inc()
	return c.stateLocked()
}

// State returns a copy of the current state tuple.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		Status:   c.status,
		Place:    c.place,
		Snapshot: c.snapshot,
		Units:    c.units,
		Err:      c.errMsg,
	}
}

// beginAction issues a fresh token and enters Loading. The error message is
// cleared at the start of each action, matching the reset-on-next-action
// transition out of Success and Error.
func (c *Controller) beginAction() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token++
	c.status = StatusLoading
	c.errMsg = ""
	observability.SearchesTotal.Inc()
	return c.token
}

// setPlace installs a place mid-action if tok is still current.
func (c *Controller) setPlace(tok uint64, place geocode.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok != c.token {
		return
	}
	c.place = &place
}

// fail records an error outcome. Stale completions (tok superseded) are
// discarded and the live state is returned untouched.
func (c *Controller) fail(tok uint64, err error, clearPlace, clearSnapshot bool) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok != c.token {
		return c.stateLocked()
	}
	c.status = StatusError
	c.errMsg = userMessage(err)
	if clearPlace {
		c.place = nil
	}
	if clearSnapshot {
		c.snapshot = nil
	}
	observability.SearchErrorsTotal.WithLabelValues(errorKind(err)).Inc()
	return c.stateLocked()
}

// succeed installs place and snapshot together. Stale completions are
// discarded.
func (c *Controller) succeed(tok uint64, place geocode.Place, snap forecast.Snapshot) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok != c.token {
		return c.stateLocked()
	}
	c.status = StatusSuccess
	c.place = &place
	c.snapshot = &snap
	c.errMsg = ""
	return c.stateLocked()
}
