package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-digest-service/internal/config"
	"github.com/couchcryptid/station-digest-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 10, 18, 15, 0, 0, 0, time.UTC)
	d := domain.Digest{
		StationID:   "IMONCT42",
		GeneratedAt: now,
		Forecast:    []domain.ForecastCard{{Label: "Friday", DayText: "Sunny."}},
		Warnings:    []domain.RegionSeverity{{Region: "kent", WarningSeverity: domain.WarningSeverity{Level: domain.SeverityRed, Count: 1}}},
	}

	msg, err := serializeToMessage(d)
	require.NoError(t, err)

	assert.Equal(t, []byte("IMONCT42"), msg.Key)
	assert.Contains(t, string(msg.Value), `"station_id":"IMONCT42"`)
	assert.Contains(t, string(msg.Value), `"level":"red"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "station_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("IMONCT42"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.Digest
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, d.Forecast, decoded.Forecast)
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "digests"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "digests", w.writer.Topic)
	assert.Equal(t, "localhost:9092", w.writer.Addr.String())
}
