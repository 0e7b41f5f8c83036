package wunderground

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/station-digest-service/internal/domain"
)

// historyDays is the number of days in the weekly record, today included.
const historyDays = 7

// Source assembles the daily and weekly history the pipeline consumes.
type Source struct {
	client  *Client
	history DayHistory
	loc     *time.Location
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewSource combines a client with a (usually cached) DayHistory. Day
// boundaries are computed in loc.
func NewSource(client *Client, history DayHistory, loc *time.Location, clock clockwork.Clock, logger *slog.Logger) *Source {
	return &Source{client: client, history: history, loc: loc, clock: clock, logger: logger}
}

// History returns today's imperial observations.
func (s *Source) History(ctx context.Context) ([]domain.HistoryObservation, error) {
	return s.client.Today(ctx)
}

// Week returns seven day-buckets, today first, then each previous local day.
// A failing past day yields an empty bucket rather than failing the week.
func (s *Source) Week(ctx context.Context) ([][]domain.WeeklyObservation, error) {
	today, err := s.client.TodayMetric(ctx)
	if err != nil {
		return nil, err
	}

	buckets := make([][]domain.WeeklyObservation, 0, historyDays)
	buckets = append(buckets, today)

	now := s.clock.Now().In(s.loc)
	for i := 1; i < historyDays; i++ {
		date := now.AddDate(0, 0, -i).Format("20060102")
		obs, err := s.history.Day(ctx, date)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("history day unavailable", "date", date, "error", err)
		}
		buckets = append(buckets, obs)
	}
	return buckets, nil
}
