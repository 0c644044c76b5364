// Package weathercode maps WMO weather interpretation codes, as used by the
// forecast API, to human-readable condition labels.
package weathercode

// Unknown is returned for any code outside the table.
const Unknown = "Unknown conditions"

// labels covers the WMO code range 0-99 as documented by the forecast API.
// The range is sparse; unmapped codes resolve to Unknown.
var labels = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snowfall",
	73: "Moderate snowfall",
	75: "Heavy snowfall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Describe returns the condition label for code, or Unknown for unmapped codes.
// Total over all int inputs; never panics.
func Describe(code int) string {
	if label, ok := labels[code]; ok {
		return label
	}
	return Unknown
}
