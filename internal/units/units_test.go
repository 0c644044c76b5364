package units

import (
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    System
		wantErr bool
	}{
		{name: "metric", input: "metric", want: Metric},
		{name: "imperial", input: "imperial", want: Imperial},
		{name: "mixed case with spaces", input: "  Imperial ", want: Imperial},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "kelvin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got nil", tt.input)
				}
				if !errors.Is(err, ErrUnknownSystem) {
					t.Errorf("Parse(%q) error = %v, want ErrUnknownSystem", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMetricIsIdentity(t *testing.T) {
	for _, v := range []float64{-40, -17.8, 0, 0.1, 21.4, 100, 1e6} {
		if got := Metric.Temperature(v); got != v {
			t.Errorf("Metric.Temperature(%v) = %v, want identity", v, got)
		}
		if got := Metric.WindSpeed(v); got != v {
			t.Errorf("Metric.WindSpeed(%v) = %v, want identity", v, got)
		}
	}
}

func TestImperialTemperature(t *testing.T) {
	tests := []struct {
		celsius float64
		want    float64
	}{
		{celsius: 0, want: 32},
		{celsius: 100, want: 212},
		{celsius: -40, want: -40},
		{celsius: 21.4, want: 21.4*9/5 + 32},
	}
	for _, tt := range tests {
		if got := Imperial.Temperature(tt.celsius); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Imperial.Temperature(%v) = %v, want %v", tt.celsius, got, tt.want)
		}
	}
}

// Converting to Fahrenheit and back recovers the original Celsius value
// within floating-point tolerance.
func TestImperialTemperatureRoundTrip(t *testing.T) {
	for _, c := range []float64{-89.2, -40, -0.5, 0, 3.14159, 21.4, 56.7} {
		f := Imperial.Temperature(c)
		back := (f - 32) * 5 / 9
		if math.Abs(back-c) > 1e-9 {
			t.Errorf("round trip of %v °C gave %v", c, back)
		}
	}
}

func TestImperialWindSpeed(t *testing.T) {
	if got := Imperial.WindSpeed(100); math.Abs(got-62.1371) > 1e-9 {
		t.Errorf("Imperial.WindSpeed(100) = %v, want 62.1371", got)
	}
}

func TestUnitSuffixes(t *testing.T) {
	if Metric.TemperatureUnit() != "°C" || Imperial.TemperatureUnit() != "°F" {
		t.Errorf("unexpected temperature units: %q / %q", Metric.TemperatureUnit(), Imperial.TemperatureUnit())
	}
	if Metric.WindSpeedUnit() != "km/h" || Imperial.WindSpeedUnit() != "mph" {
		t.Errorf("unexpected wind speed units: %q / %q", Metric.WindSpeedUnit(), Imperial.WindSpeedUnit())
	}
}

func TestFormat(t *testing.T) {
	v := 21.44
	neg := -3.0
	tests := []struct {
		name   string
		value  *float64
		digits int
		want   string
	}{
		{name: "nil renders placeholder", value: nil, digits: 1, want: "-"},
		{name: "one digit rounds", value: &v, digits: 1, want: "21.4"},
		{name: "zero digits", value: &v, digits: 0, want: "21"},
		{name: "negative", value: &neg, digits: 0, want: "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.value, tt.digits); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}
