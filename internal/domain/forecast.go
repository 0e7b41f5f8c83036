package domain

import (
	"regexp"
	"strings"
)

const (
	// ForecastCategory is the Atom category term of forecast entries in the
	// Environment Canada city feed.
	ForecastCategory = "Weather Forecasts"

	// MaxForecastCards bounds the number of cards GroupForecast emits.
	MaxForecastCards = 4

	// NightMarker replaces the "<label> night: " prefix of night entries.
	NightMarker = "Night: "
)

// forecastLabelRe captures the label of titles like "Monday: ..." or
// "Monday night: ...". It is deliberately unanchored to match the feed.
var forecastLabelRe = regexp.MustCompile(`(\w+)\s?(night)?:`)

// ForecastEntry is one parsed feed entry.
type ForecastEntry struct {
	Category string
	Title    string
}

// ForecastCard pairs the day and night text for one label.
type ForecastCard struct {
	Label     string `json:"label"`
	DayText   string `json:"day_text"`
	NightText string `json:"night_text"`
}

// ForecastLine is the classification of a single forecast title.
// An empty Label means the title did not match the label pattern.
type ForecastLine struct {
	Label   string
	IsNight bool
	Text    string
}

// ClassifyForecastLine extracts the label, the day/night part and the text
// of a forecast title. In night text the first "<label> night: " is replaced
// by NightMarker; in day text the first "<label>: " is removed, wherever it
// occurs. When it does not occur the title is kept as-is.
func ClassifyForecastLine(title string) ForecastLine {
	line := ForecastLine{Text: title}
	if m := forecastLabelRe.FindStringSubmatch(title); m != nil {
		line.Label = m[1]
	}
	line.IsNight = strings.Contains(strings.ToLower(title), "night")

	if line.IsNight {
		line.Text = strings.Replace(title, line.Label+" night: ", NightMarker, 1)
		return line
	}
	line.Text = strings.Replace(title, line.Label+": ", "", 1)
	return line
}

// forecastAccumulator is the state of the grouping fold: the label being
// accumulated, its day/night buffers, and the cards emitted so far.
type forecastAccumulator struct {
	label     string
	dayText   string
	nightText string
	cards     []ForecastCard
}

// full reports whether the card limit has been reached; no further input is consumed.
func (a *forecastAccumulator) full() bool {
	return len(a.cards) >= MaxForecastCards
}

func (a *forecastAccumulator) pending() bool {
	return a.dayText != "" || a.nightText != ""
}

func (a *forecastAccumulator) emit() {
	a.cards = append(a.cards, ForecastCard{Label: a.label, DayText: a.dayText, NightText: a.nightText})
}

// step consumes one entry. Entries outside the forecast category are ignored.
func (a *forecastAccumulator) step(e ForecastEntry) {
	if e.Category != ForecastCategory {
		return
	}
	line := ClassifyForecastLine(e.Title)

	if line.Label != a.label {
		if a.pending() {
			a.emit()
			if a.full() {
				return
			}
		}
		a.label = line.Label
		a.dayText, a.nightText = "", ""
	}

	if line.IsNight {
		a.nightText = line.Text
	} else {
		a.dayText = line.Text
	}
}

// flush emits the trailing card when text is pending and room remains.
func (a *forecastAccumulator) flush() {
	if a.pending() && !a.full() {
		a.emit()
	}
}

// GroupForecast folds feed entries, in feed order, into at most
// MaxForecastCards day/night cards. A card is emitted whenever the label
// changes; the last label is emitted by a trailing flush. Entries are never
// re-sorted, and an unmatched title counts as the empty label.
func GroupForecast(entries []ForecastEntry) []ForecastCard {
	var acc forecastAccumulator
	for _, e := range entries {
		if acc.full() {
			break
		}
		acc.step(e)
	}
	acc.flush()
	return acc.cards
}
