package domain

import (
	"fmt"
	"strings"
)

// Severity is the advisory level of a region. Levels are totally ordered:
// Green < Grey < Yellow < Red.
type Severity int

const (
	SeverityGreen Severity = iota
	SeverityGrey
	SeverityYellow
	SeverityRed
)

func (s Severity) String() string {
	switch s {
	case SeverityGrey:
		return "grey"
	case SeverityYellow:
		return "yellow"
	case SeverityRed:
		return "red"
	default:
		return "green"
	}
}

// MarshalText encodes the severity as its colour name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a colour name.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "green":
		*s = SeverityGreen
	case "grey":
		*s = SeverityGrey
	case "yellow":
		*s = SeverityYellow
	case "red":
		*s = SeverityRed
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// WarningEntry is the free-text summary of one advisory feed entry.
type WarningEntry struct {
	Summary string
}

// WarningSeverity is the aggregated level of a region plus the number of
// entries that matched any keyword. Green always has count 0.
type WarningSeverity struct {
	Level Severity `json:"level"`
	Count int      `json:"count"`
}

// RegionSeverity tags a WarningSeverity with the region it was computed for.
type RegionSeverity struct {
	Region string `json:"region"`
	WarningSeverity
}

// warningKeywords are checked in order; the first match classifies the entry.
var warningKeywords = []struct {
	keyword string
	level   Severity
}{
	{"warning", SeverityRed},
	{"watch", SeverityYellow},
	{"statement", SeverityGrey},
}

// ClassifyWarning returns the level an advisory summary contributes and
// whether it matched a keyword at all. Matching is case-insensitive.
func ClassifyWarning(summary string) (Severity, bool) {
	s := strings.ToLower(summary)
	for _, k := range warningKeywords {
		if strings.Contains(s, k.keyword) {
			return k.level, true
		}
	}
	return SeverityGreen, false
}

// AggregateWarnings reduces advisory entries to the maximum matched level and
// the count of matching entries. The result does not depend on input order.
func AggregateWarnings(entries []WarningEntry) WarningSeverity {
	var out WarningSeverity
	for _, e := range entries {
		level, ok := ClassifyWarning(e.Summary)
		if !ok {
			continue
		}
		out.Level = max(out.Level, level)
		out.Count++
	}
	return out
}
