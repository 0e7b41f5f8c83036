package domain

import (
	"math"
	"strings"
)

// WeeklyObservation is one entry of a metric Weather Underground history day.
type WeeklyObservation struct {
	ObsTimeLocal string        `json:"obsTimeLocal"`
	Epoch        int64         `json:"epoch"`
	HumidityAvg  float64       `json:"humidityAvg"`
	UVHigh       float64       `json:"uvHigh"`
	Metric       WeeklyMetrics `json:"metric"`
}

// WeeklyMetrics is the metric sub-object of a WeeklyObservation.
type WeeklyMetrics struct {
	TempAvg      float64 `json:"tempAvg"`
	WindspeedAvg float64 `json:"windspeedAvg"`
	WindgustHigh float64 `json:"windgustHigh"`
	PressureMax  float64 `json:"pressureMax"`
	PressureMin  float64 `json:"pressureMin"`
	PrecipRate   float64 `json:"precipRate"`
}

// DaySummary condenses one day-bucket of the weekly record.
type DaySummary struct {
	Date         string
	Extremes     DailyExtremeRecord
	PeakRainRate float64
	HumidityAvg  float64
	Observations int
}

// SummarizeWeek folds each day-bucket into a DaySummary, preserving bucket
// order (today first). Empty buckets are skipped.
func SummarizeWeek(buckets [][]WeeklyObservation) []DaySummary {
	out := make([]DaySummary, 0, len(buckets))
	for _, bucket := range buckets {
		if s, ok := summarizeDay(bucket); ok {
			out = append(out, s)
		}
	}
	return out
}

func summarizeDay(bucket []WeeklyObservation) (DaySummary, bool) {
	if len(bucket) == 0 {
		return DaySummary{}, false
	}

	s := DaySummary{
		Date:         localDate(bucket[0].ObsTimeLocal),
		Extremes:     weeklyCandidate(bucket[0]),
		PeakRainRate: bucket[0].Metric.PrecipRate,
	}
	var humiditySum float64
	var humidityN int
	for i, o := range bucket {
		if i > 0 {
			s.Extremes = UpdateExtremes(s.Extremes, weeklyCandidate(o))
			s.PeakRainRate = maxField(s.PeakRainRate, o.Metric.PrecipRate)
		}
		if !math.IsNaN(o.HumidityAvg) {
			humiditySum += o.HumidityAvg
			humidityN++
		}
	}
	s.Observations = len(bucket)
	s.HumidityAvg = math.NaN()
	if humidityN > 0 {
		s.HumidityAvg = humiditySum / float64(humidityN)
	}
	return s, true
}

func weeklyCandidate(o WeeklyObservation) DailyExtremeRecord {
	return DailyExtremeRecord{
		TempHigh:     o.Metric.TempAvg,
		TempLow:      o.Metric.TempAvg,
		WindSpeedMax: o.Metric.WindspeedAvg,
		WindGustMax:  o.Metric.WindgustHigh,
		PressureMax:  o.Metric.PressureMax,
		PressureMin:  o.Metric.PressureMin,
		UVHigh:       o.UVHigh,
	}
}

// localDate returns the date part of "2006-01-02 15:04:05".
func localDate(obsTimeLocal string) string {
	date, _, _ := strings.Cut(strings.TrimSpace(obsTimeLocal), " ")
	return date
}
