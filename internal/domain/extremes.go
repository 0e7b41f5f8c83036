package domain

import (
	"math"

	"github.com/couchcryptid/station-digest-service/internal/units"
)

// DailyExtremeRecord holds the running best-so-far values for the current
// local day, in metric units (°C, km/h, hPa). A NaN field means "no value yet".
type DailyExtremeRecord struct {
	TempHigh     float64
	TempLow      float64
	WindSpeedMax float64
	WindGustMax  float64
	PressureMax  float64
	PressureMin  float64
	UVHigh       float64
}

// HistoryObservation is one entry of the Weather Underground 1-day
// observation list requested with imperial units.
type HistoryObservation struct {
	Epoch    int64            `json:"epoch"`
	Timezone string           `json:"tz"`
	UVHigh   float64          `json:"uvHigh"`
	Imperial ImperialExtremes `json:"imperial"`
}

// ImperialExtremes is the imperial sub-object of a history observation.
type ImperialExtremes struct {
	TempHigh      float64 `json:"tempHigh"`
	TempLow       float64 `json:"tempLow"`
	WindspeedHigh float64 `json:"windspeedHigh"`
	WindgustHigh  float64 `json:"windgustHigh"`
	PressureMax   float64 `json:"pressureMax"`
	PressureMin   float64 `json:"pressureMin"`
}

// UpdateExtremes folds a candidate into the current record. Max fields keep
// the greater value, min fields the lesser. The operation is commutative,
// associative and idempotent; a NaN on either side is treated as absent, so a
// malformed reading can never move an extreme.
func UpdateExtremes(current, candidate DailyExtremeRecord) DailyExtremeRecord {
	return DailyExtremeRecord{
		TempHigh:     maxField(current.TempHigh, candidate.TempHigh),
		TempLow:      minField(current.TempLow, candidate.TempLow),
		WindSpeedMax: maxField(current.WindSpeedMax, candidate.WindSpeedMax),
		WindGustMax:  maxField(current.WindGustMax, candidate.WindGustMax),
		PressureMax:  maxField(current.PressureMax, candidate.PressureMax),
		PressureMin:  minField(current.PressureMin, candidate.PressureMin),
		UVHigh:       maxField(current.UVHigh, candidate.UVHigh),
	}
}

// CandidateFromReading turns an instantaneous reading into an extreme
// candidate: each instantaneous value is both the high and the low.
func CandidateFromReading(r Reading) DailyExtremeRecord {
	temp := units.Celsius(r.TemperatureF)
	pressure := units.HPa(r.PressureInHg)
	return DailyExtremeRecord{
		TempHigh:     temp,
		TempLow:      temp,
		WindSpeedMax: units.KMH(r.WindSpeedMPH),
		WindGustMax:  units.KMH(r.WindGustMPH),
		PressureMax:  pressure,
		PressureMin:  pressure,
		UVHigh:       r.UVIndex,
	}
}

// CandidateFromHistory converts one imperial history observation to a metric candidate.
func CandidateFromHistory(o HistoryObservation) DailyExtremeRecord {
	return DailyExtremeRecord{
		TempHigh:     units.Celsius(o.Imperial.TempHigh),
		TempLow:      units.Celsius(o.Imperial.TempLow),
		WindSpeedMax: units.KMH(o.Imperial.WindspeedHigh),
		WindGustMax:  units.KMH(o.Imperial.WindgustHigh),
		PressureMax:  units.HPa(o.Imperial.PressureMax),
		PressureMin:  units.HPa(o.Imperial.PressureMin),
		UVHigh:       o.UVHigh,
	}
}

// FoldHistory reduces a day's history observations to one extreme record,
// seeded with the first observation. It returns false for empty input.
func FoldHistory(observations []HistoryObservation) (DailyExtremeRecord, bool) {
	if len(observations) == 0 {
		return DailyExtremeRecord{}, false
	}
	rec := CandidateFromHistory(observations[0])
	for _, o := range observations[1:] {
		rec = UpdateExtremes(rec, CandidateFromHistory(o))
	}
	return rec, true
}

func maxField(current, candidate float64) float64 {
	if math.IsNaN(current) {
		return candidate
	}
	if candidate > current {
		return candidate
	}
	return current
}

func minField(current, candidate float64) float64 {
	if math.IsNaN(current) {
		return candidate
	}
	if candidate < current {
		return candidate
	}
	return current
}
