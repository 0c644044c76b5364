package units

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// System selects the display units for temperature and wind speed.
// It affects presentation only; stored forecast values stay metric.
type System string

const (
	Metric   System = "metric"
	Imperial System = "imperial"
)

// ErrUnknownSystem is returned when parsing an unrecognized unit system name.
var ErrUnknownSystem = errors.New("unknown unit system")

// Parse returns the System named by s (case-insensitive, trimmed).
func Parse(s string) (System, error) {
	switch System(strings.ToLower(strings.TrimSpace(s))) {
	case Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSystem, s)
}

// Temperature converts a Celsius value into the system's display unit.
// Metric is the identity; imperial applies f = c*9/5 + 32. No rounding.
func (s System) Temperature(c float64) float64 {
	if s == Imperial {
		return c*9/5 + 32
	}
	return c
}

// WindSpeed converts a km/h value into the system's display unit.
// Metric is the identity; imperial applies mph = kmh * 0.621371. No rounding.
func (s System) WindSpeed(kmh float64) float64 {
	if s == Imperial {
		return kmh * 0.621371
	}
	return kmh
}

// TemperatureUnit returns the display suffix for temperatures.
func (s System) TemperatureUnit() string {
	if s == Imperial {
		return "°F"
	}
	return "°C"
}

// WindSpeedUnit returns the display suffix for wind speeds.
func (s System) WindSpeedUnit() string {
	if s == Imperial {
		return "mph"
	}
	return "km/h"
}

// Placeholder is rendered wherever a reading is absent from the upstream payload.
const Placeholder = "-"

// Format renders v fixed-point with the given number of fraction digits.
// A nil value formats as Placeholder, never as NaN and never as an error.
func Format(v *float64, digits int) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', digits, 64)
}
