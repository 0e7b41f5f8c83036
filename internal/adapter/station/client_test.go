package station

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-digest-service/internal/adapter/fetch"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientReading(t *testing.T) {
	body, err := os.ReadFile("testdata/livedata.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(fetch.NewClient(time.Second, 0), srv.URL, testLogger())
	r, err := c.Reading(context.Background())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 10, 18, 14, 5, 0, 0, time.UTC), r.ObservedAt)
	assert.Equal(t, 68.0, r.TemperatureF)
	assert.Equal(t, 10.07, r.WindSpeedMPH)
	assert.Equal(t, 29.92, r.PressureInHg)
	assert.Equal(t, 3.0, r.UVIndex)
}

func TestClientReadingErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewClient(fetch.NewClient(time.Second, 0), srv.URL, testLogger()).Reading(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch station reading")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<html>")) //nolint:errcheck
		}))
		defer srv.Close()

		_, err := NewClient(fetch.NewClient(time.Second, 0), srv.URL, testLogger()).Reading(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode station reading")
	})
}

func TestDecodeFields(t *testing.T) {
	fields, err := DecodeFields([]byte(`{"tempf":"41.2","humidity":87,"nested":{"a":1},"ok":true}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tempf": "41.2", "humidity": "87"}, fields)
}
