package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/station-digest-service/internal/domain"
)

// Refresh outcomes, used as metric labels.
const (
	outcomeApplied = "applied"
	outcomeStale   = "stale"
	outcomeError   = "error"
)

// RefreshReading runs one fetch of the current conditions.
func (p *Pipeline) RefreshReading(ctx context.Context) error {
	return refresh(ctx, p, KindReading, KindReading, p.sources.Reading.Reading, func(r domain.Reading) bool {
		return p.applyReadingLocked(r)
	})
}

// RefreshHistory runs one fetch of today's history.
func (p *Pipeline) RefreshHistory(ctx context.Context) error {
	return refresh(ctx, p, KindHistory, KindHistory, p.sources.History.History, func(obs []domain.HistoryObservation) bool {
		p.applyHistoryLocked(obs)
		return true
	})
}

// RefreshWeekly runs one fetch of the weekly record.
func (p *Pipeline) RefreshWeekly(ctx context.Context) error {
	return refresh(ctx, p, KindWeekly, KindWeekly, p.sources.Weekly.Week, func(b [][]domain.WeeklyObservation) bool {
		p.applyWeekLocked(b)
		return true
	})
}

// RefreshForecast runs one fetch of the forecast feed.
func (p *Pipeline) RefreshForecast(ctx context.Context) error {
	return refresh(ctx, p, KindForecast, KindForecast, p.sources.Forecast.Forecast, func(e []domain.ForecastEntry) bool {
		p.applyForecastLocked(e)
		return true
	})
}

// RefreshWarnings runs one fetch of the named region's advisory feed.
func (p *Pipeline) RefreshWarnings(ctx context.Context, region string) error {
	for _, src := range p.sources.Warnings {
		if src.Region() == region {
			return p.refreshWarnings(ctx, src)
		}
	}
	return fmt.Errorf("no warning feed for region %q", region)
}

func (p *Pipeline) refreshWarnings(ctx context.Context, src WarningSource) error {
	region := src.Region()
	return refresh(ctx, p, warningsJob(region), KindWarnings, src.Warnings, func(e []domain.WarningEntry) bool {
		p.applyWarningsLocked(region, e)
		return true
	})
}

// PushReading applies a reading delivered out of band (MQTT). Readings
// older than the one already held are discarded. It reports whether the
// reading was applied.
func (p *Pipeline) PushReading(ctx context.Context, r domain.Reading) bool {
	p.mu.Lock()
	applied := p.applyReadingLocked(r)
	var d domain.Digest
	if applied {
		d = p.digestLocked()
	}
	p.mu.Unlock()

	if !applied {
		p.metrics.MQTTReadings.WithLabelValues(outcomeStale).Inc()
		p.logger.Debug("pushed reading discarded as stale", "observed_at", r.ObservedAt)
		return false
	}
	p.metrics.MQTTReadings.WithLabelValues(outcomeApplied).Inc()
	p.ready.Store(true)
	p.publish(ctx, d)
	return true
}

// refresh runs one fetch-and-apply cycle for a job. The fetch runs under
// FetchTimeout with no lock held; the result is applied only if no later
// fetch of the same job was applied first. apply runs under p.mu and may
// itself reject the result. Fetch errors leave state untouched.
func refresh[T any](ctx context.Context, p *Pipeline, name, kind string, fetch func(context.Context) (T, error), apply func(T) bool) error {
	p.mu.Lock()
	g := p.guard(name)
	seq := g.begin()
	p.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
	defer cancel()

	start := p.clock.Now()
	v, err := fetch(fetchCtx)
	p.metrics.FetchDuration.WithLabelValues(kind).Observe(p.clock.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.metrics.Refreshes.WithLabelValues(kind, outcomeError).Inc()
		p.logger.Warn("refresh failed", "kind", name, "seq", seq, "error", err)
		return err
	}

	p.mu.Lock()
	// accept advances the guard even when apply then rejects the result.
	if !g.accept(seq) || !apply(v) {
		p.mu.Unlock()
		p.metrics.Refreshes.WithLabelValues(kind, outcomeStale).Inc()
		p.logger.Debug("stale refresh discarded", "kind", name, "seq", seq)
		return nil
	}
	d := p.digestLocked()
	p.mu.Unlock()

	p.metrics.Refreshes.WithLabelValues(kind, outcomeApplied).Inc()
	p.ready.Store(true)
	p.logger.Debug("refresh applied", "kind", name, "seq", seq)
	p.publish(ctx, d)
	return nil
}

// publish delivers d when a publisher is configured. Failures are logged
// and counted; they never roll back state.
func (p *Pipeline) publish(ctx context.Context, d domain.Digest) {
	if p.publisher == nil {
		return
	}
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.opts.FetchTimeout)
	defer cancel()
	if err := p.publisher.Publish(pubCtx, d); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish digest failed", "error", err)
		return
	}
	p.metrics.DigestsPublished.Inc()
}
