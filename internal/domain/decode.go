package domain

import (
	"encoding/json"
	"math"
)

// Weather Underground reports unavailable measurements as null or omits
// them. The decoders below start every float at NaN so that a null never
// reads as zero.

// UnmarshalJSON implements json.Unmarshaler.
func (o *HistoryObservation) UnmarshalJSON(b []byte) error {
	type plain HistoryObservation
	p := plain{UVHigh: math.NaN(), Imperial: nanImperial()}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = HistoryObservation(p)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ImperialExtremes) UnmarshalJSON(b []byte) error {
	type plain ImperialExtremes
	p := plain(nanImperial())
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = ImperialExtremes(p)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *WeeklyObservation) UnmarshalJSON(b []byte) error {
	type plain WeeklyObservation
	p := plain{HumidityAvg: math.NaN(), UVHigh: math.NaN(), Metric: nanWeeklyMetrics()}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = WeeklyObservation(p)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *WeeklyMetrics) UnmarshalJSON(b []byte) error {
	type plain WeeklyMetrics
	p := plain(nanWeeklyMetrics())
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*m = WeeklyMetrics(p)
	return nil
}

func nanImperial() ImperialExtremes {
	nan := math.NaN()
	return ImperialExtremes{
		TempHigh: nan, TempLow: nan,
		WindspeedHigh: nan, WindgustHigh: nan,
		PressureMax: nan, PressureMin: nan,
	}
}

func nanWeeklyMetrics() WeeklyMetrics {
	nan := math.NaN()
	return WeeklyMetrics{
		TempAvg: nan, WindspeedAvg: nan, WindgustHigh: nan,
		PressureMax: nan, PressureMin: nan, PrecipRate: nan,
	}
}
