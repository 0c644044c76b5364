// Package view projects a forecast snapshot into display-ready strings under
// a chosen unit system. All transforms are pure; nothing here touches the
// network or mutates the snapshot.
package view

import (
	"github.com/weatherlabs/weather-oracle/internal/forecast"
	"github.com/weatherlabs/weather-oracle/internal/geocode"
	"github.com/weatherlabs/weather-oracle/internal/units"
	"github.com/weatherlabs/weather-oracle/internal/weathercode"
)

// Current is the rendered instantaneous block. Every field is always present;
// absent readings render as the placeholder so the layout shape never varies.
type Current struct {
	Temperature         string `json:"temperature"`
	ApparentTemperature string `json:"apparentTemperature"`
	Humidity            string `json:"humidity"`
	WindSpeed           string `json:"windSpeed"`
	Precipitation       string `json:"precipitation"`
	Condition           string `json:"condition"`
	IsDay               bool   `json:"isDay"`
}

// Day is one rendered entry of the daily series.
type Day struct {
	Date           string `json:"date"`
	Condition      string `json:"condition"`
	TemperatureMax string `json:"temperatureMax"`
	TemperatureMin string `json:"temperatureMin"`
	Precipitation  string `json:"precipitation"`
}

// View is the display-ready projection of one place and snapshot.
type View struct {
	Title           string  `json:"title"`
	TemperatureUnit string  `json:"temperatureUnit"`
	WindSpeedUnit   string  `json:"windSpeedUnit"`
	Current         Current `json:"current"`
	Daily           []Day   `json:"daily"`
}

// Build assembles the view for place and snap under sys. Conversion happens
// here, at render time; the snapshot keeps its metric values.
func Build(place geocode.Place, snap forecast.Snapshot, sys units.System) View {
	return View{
		Title:           title(place),
		TemperatureUnit: sys.TemperatureUnit(),
		WindSpeedUnit:   sys.WindSpeedUnit(),
		Current:         buildCurrent(snap.Current, sys),
		Daily:           buildDaily(snap.Daily, sys),
	}
}

func title(place geocode.Place) string {
	if place.Country == "" {
		return place.Name
	}
	return place.Name + " — " + place.Country
}

func buildCurrent(cur forecast.Current, sys units.System) Current {
	return Current{
		Temperature:         units.Format(convertTemp(cur.Temperature, sys), 1) + " " + sys.TemperatureUnit(),
		ApparentTemperature: units.Format(convertTemp(cur.ApparentTemperature, sys), 1) + " " + sys.TemperatureUnit(),
		Humidity:            units.Format(cur.RelativeHumidity, 0) + "%",
		WindSpeed:           units.Format(convertWind(cur.WindSpeed, sys), 0) + " " + sys.WindSpeedUnit(),
		Precipitation:       units.Format(cur.Precipitation, 1) + " mm",
		Condition:           condition(cur.WeatherCode),
		IsDay:               cur.IsDay != nil && *cur.IsDay == 1,
	}
}

// buildDaily renders one entry per date; the time series is the authoritative
// length driver. Shorter or absent sibling arrays degrade per index.
func buildDaily(daily forecast.Daily, sys units.System) []Day {
	days := make([]Day, 0, len(daily.Time))
	for i, date := range daily.Time {
		precip := at(daily.PrecipitationSum, i)
		if precip == nil {
			zero := 0.0
			precip = &zero
		}
		days = append(days, Day{
			Date:           date,
			Condition:      condition(atCode(daily.WeatherCode, i)),
			TemperatureMax: units.Format(convertTemp(at(daily.TemperatureMax, i), sys), 0) + sys.TemperatureUnit(),
			TemperatureMin: units.Format(convertTemp(at(daily.TemperatureMin, i), sys), 0) + sys.TemperatureUnit(),
			Precipitation:  units.Format(precip, 1) + " mm",
		})
	}
	return days
}

// condition labels a weather code; a missing code renders as the placeholder
// while an unmapped one gets the explicit unknown label.
func condition(code *int) string {
	if code == nil {
		return units.Placeholder
	}
	return weathercode.Describe(*code)
}

func convertTemp(v *float64, sys units.System) *float64 {
	if v == nil {
		return nil
	}
	t := sys.Temperature(*v)
	return &t
}

func convertWind(v *float64, sys units.System) *float64 {
	if v == nil {
		return nil
	}
	w := sys.WindSpeed(*v)
	return &w
}

// at indexes a parallel array that may be shorter than the time series.
func at(s []*float64, i int) *float64 {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func atCode(s []*int, i int) *int {
	if i < len(s) {
		return s[i]
	}
	return nil
}
