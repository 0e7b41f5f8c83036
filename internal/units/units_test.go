package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversions(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(float64) float64
		in       float64
		expected float64
	}{
		{"freezing", Celsius, 32, 0},
		{"boiling", Celsius, 212, 100},
		{"minus forty", Celsius, -40, -40},
		{"one mile", KMH, 1, 1.60934},
		{"zero wind", KMH, 0, 0},
		{"standard pressure", HPa, 29.92, 1013.207888},
		{"one inch", MM, 1, 25.4},
		{"half inch", MM, 0.5, 12.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.fn(tt.in), 1e-9)
		})
	}
}

func TestCelsius_KeepsFullPrecision(t *testing.T) {
	// 70F is 21.111... C; rounding is a presentation concern.
	assert.InDelta(t, 21.1111111111, Celsius(70), 1e-9)
	assert.NotEqual(t, 21.1, Celsius(70))
}

func TestConversions_NaNPropagates(t *testing.T) {
	for _, fn := range []func(float64) float64{Celsius, KMH, HPa, MM} {
		assert.True(t, math.IsNaN(fn(math.NaN())))
	}
}

func TestConversions_Monotonic(t *testing.T) {
	values := []float64{-40, -3.5, 0, 0.01, 12, 29.92, 30.1, 98.6, 120}
	for _, fn := range []func(float64) float64{Celsius, KMH, HPa, MM} {
		for i := 1; i < len(values); i++ {
			assert.Greater(t, fn(values[i]), fn(values[i-1]))
		}
	}
}

func TestParseFloat(t *testing.T) {
	assert.Equal(t, 71.6, ParseFloat("71.6"))
	assert.Equal(t, -3.0, ParseFloat(" -3 "))
	assert.True(t, math.IsNaN(ParseFloat("")))
	assert.True(t, math.IsNaN(ParseFloat("n/a")))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 21.1, Round(21.1111, 1))
	assert.Equal(t, 1013.21, Round(1013.207888, 2))
	assert.Equal(t, -2.5, Round(-2.46, 1))
	assert.True(t, math.IsNaN(Round(math.NaN(), 1)))
}

func TestCardinalDirection(t *testing.T) {
	tests := []struct {
		degrees  float64
		expected string
	}{
		{0, "N"},
		{11.2, "N"},
		{11.25, "NNE"},
		{45, "NE"},
		{90, "E"},
		{180, "S"},
		{247.5, "WSW"},
		{348.75, "N"},
		{359, "N"},
		{360, "N"},
		{-90, "W"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CardinalDirection(tt.degrees), "degrees=%v", tt.degrees)
	}
	assert.Empty(t, CardinalDirection(math.NaN()))
}
