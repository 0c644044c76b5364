package search

import (
	"errors"

	"github.com/weatherlabs/weather-oracle/internal/forecast"
	"github.com/weatherlabs/weather-oracle/internal/geocode"
)

// userMessage converts a pipeline error into the message shown to the user.
// Wrapped detail (HTTP codes, transport errors) stays in the logs.
func userMessage(err error) string {
	switch {
	case errors.Is(err, geocode.ErrPlaceNotFound):
		return "City not found"
	case errors.Is(err, geocode.ErrLookupFailed):
		return "City lookup failed"
	case errors.Is(err, forecast.ErrFetchFailed):
		return "Weather fetch failed"
	case errors.Is(err, ErrGeolocationUnsupported):
		return "Geolocation not supported"
	case err != nil && err.Error() != "":
		// Platform location errors carry their own human-readable message.
		return err.Error()
	default:
		return "Something went wrong"
	}
}

// errorKind maps a pipeline error to a stable label for searchErrorsTotal.
func errorKind(err error) string {
	switch {
	case errors.Is(err, geocode.ErrPlaceNotFound):
		return "place_not_found"
	case errors.Is(err, geocode.ErrLookupFailed):
		return "lookup_failed"
	case errors.Is(err, forecast.ErrFetchFailed):
		return "forecast_failed"
	case errors.Is(err, ErrGeolocationUnsupported):
		return "geolocation_unsupported"
	default:
		return "geolocation_failed"
	}
}
