package pipeline

import (
	"time"

	"github.com/couchcryptid/station-digest-service/internal/domain"
)

const dayLayout = "2006-01-02"

// state is the derived view the digest is built from. Guarded by Pipeline.mu.
type state struct {
	reading *domain.Reading

	// extremes covers the local day named by day.
	extremes *domain.DailyExtremeRecord
	day      string

	forecast []domain.ForecastCard
	warnings map[string]domain.WarningSeverity
	week     []domain.DaySummary
}

func newState() state {
	return state{warnings: make(map[string]domain.WarningSeverity)}
}

// localDay names the station-local day of t.
func (p *Pipeline) localDay(t time.Time) string {
	return t.In(p.opts.Location).Format(dayLayout)
}

// readingDay is the local day a reading belongs to; readings without a
// timestamp belong to the current day.
func (p *Pipeline) readingDay(r domain.Reading) string {
	if r.ObservedAt.IsZero() {
		return p.localDay(p.clock.Now())
	}
	return p.localDay(r.ObservedAt)
}

// applyReadingLocked stores r as the latest reading and folds it into the
// day's extremes. The first reading of a local day seeds a fresh record.
// It reports false, leaving state untouched, when r is older than the
// reading already held.
func (p *Pipeline) applyReadingLocked(r domain.Reading) bool {
	if cur := p.state.reading; cur != nil && !r.ObservedAt.IsZero() && r.ObservedAt.Before(cur.ObservedAt) {
		return false
	}
	p.state.reading = &r

	candidate := domain.CandidateFromReading(r)
	day := p.readingDay(r)
	if p.state.extremes == nil || p.state.day != day {
		p.state.extremes = &candidate
		p.state.day = day
		return true
	}
	rec := domain.UpdateExtremes(*p.state.extremes, candidate)
	p.state.extremes = &rec
	return true
}

// applyHistoryLocked merges today's folded history into the day's
// extremes. With no record for today, history seeds a fresh one and the
// latest reading is re-applied when it belongs to today. Empty history
// leaves the record as it was.
func (p *Pipeline) applyHistoryLocked(obs []domain.HistoryObservation) {
	rec, ok := domain.FoldHistory(obs)
	if !ok {
		return
	}
	today := p.localDay(p.clock.Now())
	if p.state.extremes != nil && p.state.day == today {
		rec = domain.UpdateExtremes(*p.state.extremes, rec)
	} else if r := p.state.reading; r != nil && p.readingDay(*r) == today {
		rec = domain.UpdateExtremes(rec, domain.CandidateFromReading(*r))
	}
	p.state.extremes = &rec
	p.state.day = today
}

func (p *Pipeline) applyWeekLocked(buckets [][]domain.WeeklyObservation) {
	p.state.week = domain.SummarizeWeek(buckets)
}

func (p *Pipeline) applyForecastLocked(entries []domain.ForecastEntry) {
	p.state.forecast = domain.GroupForecast(entries)
	p.metrics.ForecastCards.Set(float64(len(p.state.forecast)))
}

func (p *Pipeline) applyWarningsLocked(region string, entries []domain.WarningEntry) {
	sev := domain.AggregateWarnings(entries)
	p.state.warnings[region] = sev
	p.metrics.WarningLevel.WithLabelValues(region).Set(float64(sev.Level))
}

// digestLocked renders the current state. Extremes from a previous local
// day are not shown.
func (p *Pipeline) digestLocked() domain.Digest {
	in := domain.DigestInput{
		StationID:   p.opts.StationID,
		GeneratedAt: p.clock.Now(),
		Reading:     p.state.reading,
		Forecast:    p.state.forecast,
		Week:        p.state.week,
	}
	if p.state.extremes != nil && p.state.day == p.localDay(p.clock.Now()) {
		in.Extremes = p.state.extremes
	}
	// Regions keep their configured order.
	for _, src := range p.sources.Warnings {
		if sev, ok := p.state.warnings[src.Region()]; ok {
			in.Warnings = append(in.Warnings, domain.RegionSeverity{Region: src.Region(), WarningSeverity: sev})
		}
	}
	return domain.NewDigest(in)
}
