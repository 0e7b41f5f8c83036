// Command replay builds a digest from captured upstream responses instead of
// live endpoints. It runs every fixture through the same pipeline the service
// uses and prints the resulting digest as JSON, which makes it handy for
// checking parser changes against real feeds.
//
// Usage:
//
//	go run ./cmd/replay \
//	  -reading internal/adapter/station/testdata/livedata.json \
//	  -history internal/adapter/wunderground/testdata/today_imperial.json \
//	  -week internal/adapter/wunderground/testdata/day_metric.json \
//	  -forecast internal/adapter/ecfeed/testdata/city_nb-17_e.xml \
//	  -warnings kent=internal/adapter/ecfeed/testdata/battleboard_nb10_e.xml \
//	  -at 2024-10-18T15:00:00Z
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"

	"github.com/couchcryptid/station-digest-service/internal/adapter/ecfeed"
	"github.com/couchcryptid/station-digest-service/internal/adapter/station"
	"github.com/couchcryptid/station-digest-service/internal/adapter/wunderground"
	"github.com/couchcryptid/station-digest-service/internal/domain"
	"github.com/couchcryptid/station-digest-service/internal/observability"
	"github.com/couchcryptid/station-digest-service/internal/pipeline"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	readingPath := fs.String("reading", "", "station live-data JSON")
	historyPath := fs.String("history", "", "Weather Underground imperial 1-day JSON")
	weekPaths := fs.String("week", "", "comma-separated metric day JSON files, today first")
	forecastPath := fs.String("forecast", "", "forecast Atom feed")
	warnings := fs.String("warnings", "", "comma-separated region=path advisory feeds")
	stationID := fs.String("station", "station", "station id stamped on the digest")
	tz := fs.String("tz", "America/Moncton", "station timezone")
	at := fs.String("at", "", "RFC 3339 time the digest is generated at (default now)")
	logLevel := fs.String("log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	now := time.Now()
	if *at != "" {
		if now, err = time.Parse(time.RFC3339, *at); err != nil {
			return fmt.Errorf("parse -at: %w", err)
		}
	}

	sources, err := buildSources(*readingPath, *historyPath, *weekPaths, *forecastPath, *warnings)
	if err != nil {
		return err
	}

	logger := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      observability.ParseLevel(*logLevel),
		TimeFormat: time.Kitchen,
	}))
	p := pipeline.New(sources, nil, clockwork.NewFakeClockAt(now), logger,
		observability.NewMetricsForTesting(), pipeline.Options{StationID: *stationID, Location: loc})

	d, err := replay(context.Background(), p, sources)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// replay refreshes every configured source once and returns the digest.
func replay(ctx context.Context, p *pipeline.Pipeline, sources pipeline.Sources) (domain.Digest, error) {
	var errs []error
	if sources.History != nil {
		errs = append(errs, p.RefreshHistory(ctx))
	}
	if sources.Reading != nil {
		errs = append(errs, p.RefreshReading(ctx))
	}
	if sources.Weekly != nil {
		errs = append(errs, p.RefreshWeekly(ctx))
	}
	if sources.Forecast != nil {
		errs = append(errs, p.RefreshForecast(ctx))
	}
	for _, w := range sources.Warnings {
		errs = append(errs, p.RefreshWarnings(ctx, w.Region()))
	}
	if err := errors.Join(errs...); err != nil {
		return domain.Digest{}, err
	}
	return p.Snapshot(), nil
}

func buildSources(readingPath, historyPath, weekPaths, forecastPath, warnings string) (pipeline.Sources, error) {
	var s pipeline.Sources
	if readingPath != "" {
		s.Reading = readingFile(readingPath)
	}
	if historyPath != "" {
		s.History = historyFile(historyPath)
	}
	if weekPaths != "" {
		s.Weekly = weekFiles(splitList(weekPaths))
	}
	if forecastPath != "" {
		s.Forecast = forecastFile(forecastPath)
	}
	for _, pair := range splitList(warnings) {
		region, path, ok := strings.Cut(pair, "=")
		if !ok || region == "" || path == "" {
			return s, fmt.Errorf("invalid -warnings entry %q, want region=path", pair)
		}
		s.Warnings = append(s.Warnings, warningFile{region: region, path: path})
	}
	if s.Reading == nil && s.History == nil && s.Weekly == nil && s.Forecast == nil && len(s.Warnings) == 0 {
		return s, errors.New("no fixtures given")
	}
	return s, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

type readingFile string

func (f readingFile) Reading(_ context.Context) (domain.Reading, error) {
	b, err := os.ReadFile(string(f))
	if err != nil {
		return domain.Reading{}, err
	}
	fields, err := station.DecodeFields(b)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("decode %s: %w", f, err)
	}
	return domain.ParseReading(fields), nil
}

type historyFile string

func (f historyFile) History(_ context.Context) ([]domain.HistoryObservation, error) {
	b, err := os.ReadFile(string(f))
	if err != nil {
		return nil, err
	}
	return wunderground.ParseHistory(b)
}

type weekFiles []string

func (f weekFiles) Week(_ context.Context) ([][]domain.WeeklyObservation, error) {
	buckets := make([][]domain.WeeklyObservation, 0, len(f))
	for _, path := range f {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		obs, err := wunderground.ParseDay(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		buckets = append(buckets, obs)
	}
	return buckets, nil
}

type forecastFile string

func (f forecastFile) Forecast(_ context.Context) ([]domain.ForecastEntry, error) {
	b, err := os.ReadFile(string(f))
	if err != nil {
		return nil, err
	}
	return ecfeed.ParseForecast(b)
}

type warningFile struct {
	region string
	path   string
}

func (f warningFile) Region() string { return f.region }

func (f warningFile) Warnings(_ context.Context) ([]domain.WarningEntry, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	return ecfeed.ParseWarnings(b)
}
