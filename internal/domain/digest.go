package domain

import (
	"math"
	"time"

	"github.com/couchcryptid/station-digest-service/internal/units"
)

// Digest is the display-ready view of everything the service derived. It is
// the only place values are rounded; NaN values encode as null.
type Digest struct {
	StationID   string           `json:"station_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	ObservedAt  *time.Time       `json:"observed_at,omitempty"`
	Conditions  *ConditionsView  `json:"conditions,omitempty"`
	DewPoint    *float64         `json:"dew_point,omitempty"`
	Comfort     *ComfortView     `json:"comfort,omitempty"`
	Extremes    *ExtremesView    `json:"extremes,omitempty"`
	Forecast    []ForecastCard   `json:"forecast"`
	Warnings    []RegionSeverity `json:"warnings"`
	Week        []DayView        `json:"week"`
}

// ConditionsView is the rounded presentation of Conditions.
type ConditionsView struct {
	Temperature       *float64 `json:"temperature"`
	IndoorTemperature *float64 `json:"indoor_temperature"`
	Humidity          *float64 `json:"humidity"`
	IndoorHumidity    *float64 `json:"indoor_humidity"`
	WindSpeed         *float64 `json:"wind_speed"`
	WindGust          *float64 `json:"wind_gust"`
	WindDirection     string   `json:"wind_direction"`
	Pressure          *float64 `json:"pressure"`
	DailyRain         *float64 `json:"daily_rain"`
	WeeklyRain        *float64 `json:"weekly_rain"`
	MonthlyRain       *float64 `json:"monthly_rain"`
	RainRate          *float64 `json:"rain_rate"`
	UV                *float64 `json:"uv"`
}

// ComfortView is the presentation of a ComfortIndex.
type ComfortView struct {
	Kind  string   `json:"kind"`
	Value *float64 `json:"value,omitempty"`
}

// ExtremesView is the rounded presentation of a DailyExtremeRecord.
type ExtremesView struct {
	TempHigh     *float64 `json:"temp_high"`
	TempLow      *float64 `json:"temp_low"`
	WindSpeedMax *float64 `json:"wind_speed_max"`
	WindGustMax  *float64 `json:"wind_gust_max"`
	PressureMax  *float64 `json:"pressure_max"`
	PressureMin  *float64 `json:"pressure_min"`
	UVHigh       *float64 `json:"uv_high"`
}

// DayView is the rounded presentation of a DaySummary.
type DayView struct {
	Date         string       `json:"date"`
	Extremes     ExtremesView `json:"extremes"`
	PeakRainRate *float64     `json:"peak_rain_rate"`
	HumidityAvg  *float64     `json:"humidity_avg"`
	Observations int          `json:"observations"`
}

// NewConditionsView rounds conditions for display: temperatures and wind to
// one decimal, pressure and rain to two.
func NewConditionsView(c Conditions) *ConditionsView {
	return &ConditionsView{
		Temperature:       present(c.TemperatureC, 1),
		IndoorTemperature: present(c.IndoorTemperatureC, 1),
		Humidity:          present(c.Humidity, 0),
		IndoorHumidity:    present(c.IndoorHumidity, 0),
		WindSpeed:         present(c.WindSpeedKMH, 1),
		WindGust:          present(c.WindGustKMH, 1),
		WindDirection:     c.WindDirection,
		Pressure:          present(c.PressureHPa, 2),
		DailyRain:         present(c.DailyRainMM, 2),
		WeeklyRain:        present(c.WeeklyRainMM, 2),
		MonthlyRain:       present(c.MonthlyRainMM, 2),
		RainRate:          present(c.RainRateMMHr, 2),
		UV:                present(c.UVIndex, 0),
	}
}

// NewComfortView renders a comfort index with one decimal.
func NewComfortView(ci ComfortIndex) *ComfortView {
	v := &ComfortView{Kind: ci.Kind.String()}
	if ci.Kind != ComfortNone {
		v.Value = present(ci.Value, 1)
	}
	return v
}

// NewExtremesView rounds an extreme record for display.
func NewExtremesView(r DailyExtremeRecord) *ExtremesView {
	return &ExtremesView{
		TempHigh:     present(r.TempHigh, 1),
		TempLow:      present(r.TempLow, 1),
		WindSpeedMax: present(r.WindSpeedMax, 1),
		WindGustMax:  present(r.WindGustMax, 1),
		PressureMax:  present(r.PressureMax, 2),
		PressureMin:  present(r.PressureMin, 2),
		UVHigh:       present(r.UVHigh, 0),
	}
}

// NewDayViews renders weekly summaries.
func NewDayViews(days []DaySummary) []DayView {
	out := make([]DayView, 0, len(days))
	for _, d := range days {
		out = append(out, DayView{
			Date:         d.Date,
			Extremes:     *NewExtremesView(d.Extremes),
			PeakRainRate: present(d.PeakRainRate, 2),
			HumidityAvg:  present(d.HumidityAvg, 0),
			Observations: d.Observations,
		})
	}
	return out
}

// present rounds v for display; non-finite values become nil.
func present(v float64, places int) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := units.Round(v, places)
	return &r
}

// DigestInput is the state a Digest is built from. Nil fields are omitted.
type DigestInput struct {
	StationID string
	// GeneratedAt stamps the digest; zero means the package clock's now.
	GeneratedAt time.Time
	Reading     *Reading
	Extremes    *DailyExtremeRecord
	Forecast    []ForecastCard
	Warnings    []RegionSeverity
	Week        []DaySummary
}

// NewDigest derives conditions, dew point and comfort index from the latest
// reading and renders everything for display, stamped with the package clock.
func NewDigest(in DigestInput) Digest {
	generated := in.GeneratedAt
	if generated.IsZero() {
		generated = clock.Now()
	}
	d := Digest{
		StationID:   in.StationID,
		GeneratedAt: generated.UTC(),
		Forecast:    in.Forecast,
		Warnings:    in.Warnings,
		Week:        NewDayViews(in.Week),
	}
	if d.Forecast == nil {
		d.Forecast = []ForecastCard{}
	}
	if d.Warnings == nil {
		d.Warnings = []RegionSeverity{}
	}

	if in.Reading != nil {
		c := in.Reading.Conditions()
		if !in.Reading.ObservedAt.IsZero() {
			observed := in.Reading.ObservedAt
			d.ObservedAt = &observed
		}
		d.Conditions = NewConditionsView(c)
		d.DewPoint = present(DewPoint(c.TemperatureC, c.Humidity), 1)
		d.Comfort = NewComfortView(ComputeComfortIndex(c.TemperatureC, c.Humidity, c.WindSpeedKMH))
	}
	if in.Extremes != nil {
		d.Extremes = NewExtremesView(*in.Extremes)
	}
	return d
}
