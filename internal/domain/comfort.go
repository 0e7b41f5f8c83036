package domain

import "math"

// ComfortKind tags which comfort formula produced a ComfortIndex.
type ComfortKind int

const (
	ComfortNone ComfortKind = iota
	ComfortHumidex
	ComfortWindChill
)

func (k ComfortKind) String() string {
	switch k {
	case ComfortHumidex:
		return "humidex"
	case ComfortWindChill:
		return "wind_chill"
	default:
		return "none"
	}
}

// ComfortIndex is one of None, Humidex(value) or WindChill(value).
// Value is meaningless when Kind is ComfortNone.
type ComfortIndex struct {
	Kind  ComfortKind
	Value float64
}

// Thresholds selecting the comfort formula (°C and km/h).
const (
	humidexMinTempC    = 20.0
	windChillMaxTempC  = 10.0
	windChillMinWindKM = 4.8
)

// Magnus coefficients (Alduchov and Eskridge).
const (
	magnusB = 243.04
	magnusA = 17.625
)

// ComputeComfortIndex selects and computes the comfort index for the given
// metric conditions. Above 20°C humidex applies; at or below 10°C with wind
// over 4.8 km/h wind chill applies; otherwise there is none. The guards are
// disjoint so exactly one value is produced. NaN inputs fail every guard and
// yield None, except humidity, which propagates into a NaN humidex.
func ComputeComfortIndex(tempC, humidityPct, windKMH float64) ComfortIndex {
	switch {
	case tempC > humidexMinTempC:
		return ComfortIndex{Kind: ComfortHumidex, Value: humidex(tempC, humidityPct)}
	case tempC <= windChillMaxTempC && windKMH > windChillMinWindKM:
		return ComfortIndex{Kind: ComfortWindChill, Value: windChill(tempC, windKMH)}
	default:
		return ComfortIndex{Kind: ComfortNone}
	}
}

// DewPoint returns the dew point in °C using the Magnus approximation.
func DewPoint(tempC, humidityPct float64) float64 {
	alpha := math.Log(humidityPct/100) + magnusA*tempC/(magnusB+tempC)
	return magnusB * alpha / (magnusA - alpha)
}

func humidex(tempC, humidityPct float64) float64 {
	dewK := DewPoint(tempC, humidityPct) + 273.15
	vapour := 6.11 * math.Exp(5417.753*(1/273.16-1/dewK))
	return tempC + 0.5555*(vapour-10)
}

func windChill(tempC, windKMH float64) float64 {
	w := math.Pow(windKMH, 0.16)
	return 13.12 + 0.6215*tempC - 11.37*w + 0.3965*tempC*w
}
