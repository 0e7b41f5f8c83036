// Package units converts the imperial values reported by the weather station
// into the metric units shown on the dashboard.
//
// Conversions return unrounded values so that derived quantities (comfort
// indices, daily extremes) are not compounded by premature rounding. Rounding
// for display happens once, at the presentation boundary, via [Round].
// Non-numeric input travels through as NaN; nothing here returns an error.
package units

import (
	"math"
	"strconv"
	"strings"
)

const (
	kmPerMile   = 1.60934
	hPaPerInHg  = 33.8639
	mmPerInch   = 25.4
	fahrenheit0 = 32.0
)

// Celsius converts degrees Fahrenheit to degrees Celsius.
func Celsius(f float64) float64 {
	return (f - fahrenheit0) * 5 / 9
}

// KMH converts miles per hour to kilometres per hour.
func KMH(mph float64) float64 {
	return mph * kmPerMile
}

// HPa converts inches of mercury to hectopascals.
func HPa(inHg float64) float64 {
	return inHg * hPaPerInHg
}

// MM converts inches to millimetres. Rain rates in in/h convert to mm/h the same way.
func MM(inches float64) float64 {
	return inches * mmPerInch
}

// ParseFloat parses a station field. Empty or malformed input yields NaN.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Round rounds v to the given number of decimal places, half away from zero.
// NaN and infinities are returned unchanged.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
