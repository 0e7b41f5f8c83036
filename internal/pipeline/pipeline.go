package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/station-digest-service/internal/domain"
	"github.com/couchcryptid/station-digest-service/internal/observability"
)

// ReadingSource returns the station's current conditions.
type ReadingSource interface {
	Reading(ctx context.Context) (domain.Reading, error)
}

// HistorySource returns today's imperial history observations.
type HistorySource interface {
	History(ctx context.Context) ([]domain.HistoryObservation, error)
}

// WeeklySource returns the weekly record as day-buckets, today first.
type WeeklySource interface {
	Week(ctx context.Context) ([][]domain.WeeklyObservation, error)
}

// ForecastSource returns the forecast feed entries in feed order.
type ForecastSource interface {
	Forecast(ctx context.Context) ([]domain.ForecastEntry, error)
}

// WarningSource returns one region's advisory entries.
type WarningSource interface {
	Region() string
	Warnings(ctx context.Context) ([]domain.WarningEntry, error)
}

// Publisher delivers a digest downstream.
type Publisher interface {
	Publish(ctx context.Context, d domain.Digest) error
}

// Sources groups the upstream collaborators. A nil source disables its job.
type Sources struct {
	Reading  ReadingSource
	History  HistorySource
	Weekly   WeeklySource
	Forecast ForecastSource
	Warnings []WarningSource
}

// Options configures the refresh schedule.
type Options struct {
	StationID string
	Location  *time.Location

	ReadingInterval  time.Duration
	HistoryInterval  time.Duration
	WeeklyInterval   time.Duration
	ForecastInterval time.Duration
	WarningInterval  time.Duration
	FetchTimeout     time.Duration
}

func (o *Options) applyDefaults() {
	if o.Location == nil {
		o.Location = time.UTC
	}
	for _, d := range []*time.Duration{
		&o.ReadingInterval, &o.HistoryInterval, &o.WeeklyInterval,
		&o.ForecastInterval, &o.WarningInterval,
	} {
		if *d <= 0 {
			*d = defaultInterval
		}
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = defaultFetchTimeout
	}
}

const (
	defaultInterval     = 10 * time.Minute
	defaultFetchTimeout = 10 * time.Second
)

// Job kinds, used as metric and log labels.
const (
	KindReading  = "reading"
	KindHistory  = "history"
	KindWeekly   = "weekly"
	KindForecast = "forecast"
	KindWarnings = "warnings"
)

// Pipeline periodically refreshes every source, folds the results into the
// derived state and publishes a digest after each applied update.
type Pipeline struct {
	sources   Sources
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options

	ready atomic.Bool
	wg    sync.WaitGroup

	mu     sync.Mutex
	state  state
	guards map[string]*latestGuard

	publishMu sync.Mutex
}

// New creates a Pipeline. publisher may be nil to disable publishing.
func New(sources Sources, publisher Publisher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	opts.applyDefaults()
	return &Pipeline{
		sources:   sources,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
		state:     newState(),
		guards:    make(map[string]*latestGuard),
	}
}

// CheckReadiness returns nil once any refresh has been applied,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no refresh has completed yet")
	}
	return nil
}

// Snapshot returns the digest of the current state.
func (p *Pipeline) Snapshot() domain.Digest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.digestLocked()
}

// Run starts one ticker-driven job per configured source and blocks until
// ctx is cancelled, then waits for in-flight fetches to finish.
func (p *Pipeline) Run(ctx context.Context) error {
	jobs := p.jobs()
	p.logger.Info("pipeline started", "jobs", len(jobs))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for _, j := range jobs {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.schedule(ctx, j)
		}()
	}

	<-ctx.Done()
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	p.wg.Wait()
	return nil
}

// job is one periodic refresh.
type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

func (p *Pipeline) jobs() []job {
	var jobs []job
	if p.sources.Reading != nil {
		jobs = append(jobs, job{KindReading, p.opts.ReadingInterval, p.RefreshReading})
	}
	if p.sources.History != nil {
		jobs = append(jobs, job{KindHistory, p.opts.HistoryInterval, p.RefreshHistory})
	}
	if p.sources.Weekly != nil {
		jobs = append(jobs, job{KindWeekly, p.opts.WeeklyInterval, p.RefreshWeekly})
	}
	if p.sources.Forecast != nil {
		jobs = append(jobs, job{KindForecast, p.opts.ForecastInterval, p.RefreshForecast})
	}
	for _, src := range p.sources.Warnings {
		jobs = append(jobs, job{
			name:     warningsJob(src.Region()),
			interval: p.opts.WarningInterval,
			run:      func(ctx context.Context) error { return p.refreshWarnings(ctx, src) },
		})
	}
	return jobs
}

// schedule fires j immediately and then on every tick. Each firing runs in
// its own goroutine so a slow upstream never delays the next tick.
func (p *Pipeline) schedule(ctx context.Context, j job) {
	ticker := p.clock.NewTicker(j.interval)
	defer ticker.Stop()

	p.spawn(ctx, j)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.spawn(ctx, j)
		}
	}
}

func (p *Pipeline) spawn(ctx context.Context, j job) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = j.run(ctx) // failures are logged and counted by refresh
	}()
}

func warningsJob(region string) string {
	return KindWarnings + ":" + region
}
