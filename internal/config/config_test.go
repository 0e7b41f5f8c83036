package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadMap(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return load(context.Background(), envconfig.MapLookuper(env))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadMap(t, nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "America/Moncton", cfg.StationTimezone)
	assert.Empty(t, cfg.StationURL)
	assert.Equal(t, 30*time.Second, cfg.ReadingInterval)
	assert.False(t, cfg.WUEnabled)
	assert.Equal(t, 10*time.Minute, cfg.HistoryInterval)
	assert.Equal(t, time.Hour, cfg.WeeklyInterval)
	assert.Equal(t, 14, cfg.WUHistoryCacheSize)
	assert.Equal(t, "https://weather.gc.ca/rss/city/nb-17_e.xml", cfg.ForecastFeedURL)
	assert.Equal(t, WarningFeeds{
		{Region: "kent", URL: "https://weather.gc.ca/rss/battleboard/nb10_e.xml"},
		{Region: "westmorland", URL: "https://weather.gc.ca/rss/battleboard/nb16_e.xml"},
	}, cfg.WarningFeeds)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.FetchRetries)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "station-digests", cfg.KafkaTopic)
	assert.False(t, cfg.MQTTEnabled)
	assert.Equal(t, 1883, cfg.MQTTPort)
}

func TestLoad_CustomEnv(t *testing.T) {
	cfg, err := loadMap(t, map[string]string{
		"HTTP_ADDR":         ":9090",
		"LOG_LEVEL":         "debug",
		"LOG_FORMAT":        "text",
		"STATION_ID":        "IMONCT42",
		"STATION_TIMEZONE":  "UTC",
		"STATION_URL":       "http://station.local/get_livedata_info",
		"READING_INTERVAL":  "15s",
		"WU_ENABLED":        "true",
		"WU_STATION_ID":     "IMONCT42",
		"WU_API_KEY":        "key",
		"WARNING_FEEDS":     "albert|http://feeds.local/albert.xml",
		"KAFKA_ENABLED":     "true",
		"KAFKA_BROKERS":     "broker1:9092,broker2:9092",
		"KAFKA_TOPIC":       "digests",
		"MQTT_ENABLED":      "true",
		"MQTT_BROKER":       "mqtt.local",
		"MQTT_TOPIC":        "station/live",
		"FETCH_RETRIES":     "0",
		"FORECAST_INTERVAL": "5m",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "IMONCT42", cfg.StationID)
	assert.Equal(t, 15*time.Second, cfg.ReadingInterval)
	assert.True(t, cfg.WUEnabled)
	assert.Equal(t, WarningFeeds{{Region: "albert", URL: "http://feeds.local/albert.xml"}}, cfg.WarningFeeds)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "digests", cfg.KafkaTopic)
	assert.Equal(t, "mqtt.local", cfg.MQTTBroker)
	assert.Equal(t, 0, cfg.FetchRetries)
	assert.Equal(t, 5*time.Minute, cfg.ForecastInterval)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"zero interval", map[string]string{"READING_INTERVAL": "0s"}, "READING_INTERVAL"},
		{"negative timeout", map[string]string{"FETCH_TIMEOUT": "-1s"}, "FETCH_TIMEOUT"},
		{"negative retries", map[string]string{"FETCH_RETRIES": "-1"}, "FETCH_RETRIES"},
		{"unknown timezone", map[string]string{"STATION_TIMEZONE": "Mars/Olympus"}, "STATION_TIMEZONE"},
		{"wu without key", map[string]string{"WU_ENABLED": "true", "WU_STATION_ID": "X"}, "WU_API_KEY"},
		{"malformed warning feeds", map[string]string{"WARNING_FEEDS": "kent"}, "warning feed"},
		{"bad duration", map[string]string{"SHUTDOWN_TIMEOUT": "soon"}, "process config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadMap(t, tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Sinks(t *testing.T) {
	base, err := loadMap(t, nil)
	require.NoError(t, err)

	t.Run("kafka without topic", func(t *testing.T) {
		cfg := *base
		cfg.KafkaEnabled = true
		cfg.KafkaTopic = ""
		assert.ErrorContains(t, cfg.validate(), "KAFKA_TOPIC")
	})

	t.Run("kafka without brokers", func(t *testing.T) {
		cfg := *base
		cfg.KafkaEnabled = true
		cfg.KafkaBrokers = nil
		assert.ErrorContains(t, cfg.validate(), "KAFKA_BROKERS")
	})

	t.Run("mqtt without broker", func(t *testing.T) {
		cfg := *base
		cfg.MQTTEnabled = true
		cfg.MQTTBroker = ""
		assert.ErrorContains(t, cfg.validate(), "MQTT_BROKER")
	})

	t.Run("disabled sinks are not validated", func(t *testing.T) {
		cfg := *base
		cfg.KafkaTopic = ""
		cfg.MQTTBroker = ""
		assert.NoError(t, cfg.validate())
	})
}

func TestWarningFeedsEnvDecode(t *testing.T) {
	var w WarningFeeds
	require.NoError(t, w.EnvDecode(" kent | http://a ; ; albert|http://b?x=1 "))
	assert.Equal(t, WarningFeeds{{"kent", "http://a"}, {"albert", "http://b?x=1"}}, w)

	require.NoError(t, w.EnvDecode(""))
	assert.Empty(t, w)
}
