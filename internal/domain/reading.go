package domain

import (
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/station-digest-service/internal/units"
)

// stationTimeLayout is the format of the "dateutc" field pushed by the station.
const stationTimeLayout = "2006-01-02 15:04:05"

// Reading is one instantaneous observation in the station's imperial units.
// Missing or malformed fields are NaN.
type Reading struct {
	ObservedAt time.Time

	TemperatureF       float64
	IndoorTemperatureF float64
	Humidity           float64
	IndoorHumidity     float64
	WindSpeedMPH       float64
	WindGustMPH        float64
	PressureInHg       float64
	DailyRainIn        float64
	WeeklyRainIn       float64
	MonthlyRainIn      float64
	RainRateInHr       float64
	WindDirectionDeg   float64
	UVIndex            float64
}

// Conditions is a Reading converted to metric units. Values are unrounded.
type Conditions struct {
	TemperatureC       float64
	IndoorTemperatureC float64
	Humidity           float64
	IndoorHumidity     float64
	WindSpeedKMH       float64
	WindGustKMH        float64
	PressureHPa        float64
	DailyRainMM        float64
	WeeklyRainMM       float64
	MonthlyRainMM      float64
	RainRateMMHr       float64
	WindDirectionDeg   float64
	WindDirection      string
	UVIndex            float64
}

// ParseReading builds a Reading from the station's flat key/value record
// (ecowitt field names). It never fails: unknown values become NaN and an
// unparseable timestamp leaves ObservedAt zero.
func ParseReading(fields map[string]string) Reading {
	get := func(key string) float64 { return units.ParseFloat(fields[key]) }

	r := Reading{
		TemperatureF:       get("tempf"),
		IndoorTemperatureF: get("tempinf"),
		Humidity:           get("humidity"),
		IndoorHumidity:     get("humidityin"),
		WindSpeedMPH:       get("windspeedmph"),
		WindGustMPH:        get("windgustmph"),
		PressureInHg:       get("baromrelin"),
		DailyRainIn:        get("dailyrainin"),
		WeeklyRainIn:       get("weeklyrainin"),
		MonthlyRainIn:      get("monthlyrainin"),
		RainRateInHr:       get("rainratein"),
		WindDirectionDeg:   get("winddir"),
		UVIndex:            get("uv"),
	}

	if ts := strings.TrimSpace(fields["dateutc"]); ts != "" {
		if t, err := time.ParseInLocation(stationTimeLayout, ts, time.UTC); err == nil {
			r.ObservedAt = t
		}
	}
	return r
}

// Conditions converts the reading to metric units.
func (r Reading) Conditions() Conditions {
	return Conditions{
		TemperatureC:       units.Celsius(r.TemperatureF),
		IndoorTemperatureC: units.Celsius(r.IndoorTemperatureF),
		Humidity:           r.Humidity,
		IndoorHumidity:     r.IndoorHumidity,
		WindSpeedKMH:       units.KMH(r.WindSpeedMPH),
		WindGustKMH:        units.KMH(r.WindGustMPH),
		PressureHPa:        units.HPa(r.PressureInHg),
		DailyRainMM:        units.MM(r.DailyRainIn),
		WeeklyRainMM:       units.MM(r.WeeklyRainIn),
		MonthlyRainMM:      units.MM(r.MonthlyRainIn),
		RainRateMMHr:       units.MM(r.RainRateInHr),
		WindDirectionDeg:   r.WindDirectionDeg,
		WindDirection:      units.CardinalDirection(r.WindDirectionDeg),
		UVIndex:            r.UVIndex,
	}
}

// Empty reports whether the reading carries no usable measurement at all.
func (r Reading) Empty() bool {
	for _, v := range []float64{
		r.TemperatureF, r.Humidity, r.WindSpeedMPH, r.WindGustMPH,
		r.PressureInHg, r.UVIndex,
	} {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
