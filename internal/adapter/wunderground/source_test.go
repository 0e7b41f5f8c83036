package wunderground

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-digest-service/internal/domain"
)

type stubHistory struct {
	dates []string
	fail  string
}

func (s *stubHistory) Day(_ context.Context, date string) ([]domain.WeeklyObservation, error) {
	s.dates = append(s.dates, date)
	if date == s.fail {
		return nil, errors.New("unavailable")
	}
	return day(date), nil
}

func TestSource_Week(t *testing.T) {
	body := fixture(t, "day_metric.json")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(body) //nolint:errcheck
	}))
	defer srv.Close()

	loc, err := time.LoadLocation("America/Moncton")
	require.NoError(t, err)
	// 02:30 UTC on the 18th is still the 17th in Moncton.
	clock := clockwork.NewFakeClockAt(time.Date(2024, 10, 18, 2, 30, 0, 0, time.UTC))

	history := &stubHistory{fail: "20241014"}
	src := NewSource(testClient(srv.URL), history, loc, clock, testLogger())

	buckets, err := src.Week(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, historyDays)

	assert.Len(t, buckets[0], 2)
	assert.Equal(t, []string{"20241016", "20241015", "20241014", "20241013", "20241012", "20241011"}, history.dates)
	assert.Empty(t, buckets[3])

	days := domain.SummarizeWeek(buckets)
	assert.Len(t, days, historyDays-1)
	assert.Equal(t, "2024-10-17", days[0].Date)
}

func TestSource_History(t *testing.T) {
	body := fixture(t, "today_imperial.json")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(body) //nolint:errcheck
	}))
	defer srv.Close()

	src := NewSource(testClient(srv.URL), &stubHistory{}, time.UTC, clockwork.NewFakeClock(), testLogger())
	obs, err := src.History(context.Background())
	require.NoError(t, err)
	assert.Len(t, obs, 3)
}
