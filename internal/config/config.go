package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR,default=:8080"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	LogFormat       string        `env:"LOG_FORMAT,default=json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	// Station.
	StationID       string        `env:"STATION_ID,default=station"`
	StationTimezone string        `env:"STATION_TIMEZONE,default=America/Moncton"`
	StationURL      string        `env:"STATION_URL"`
	ReadingInterval time.Duration `env:"READING_INTERVAL,default=30s"`

	// Weather Underground history.
	WUEnabled          bool          `env:"WU_ENABLED,default=false"`
	WUStationID        string        `env:"WU_STATION_ID"`
	WUAPIKey           string        `env:"WU_API_KEY"`
	WUBaseURL          string        `env:"WU_BASE_URL,default=https://api.weather.com"`
	HistoryInterval    time.Duration `env:"HISTORY_INTERVAL,default=10m"`
	WeeklyInterval     time.Duration `env:"WEEKLY_INTERVAL,default=1h"`
	WUHistoryCacheSize int           `env:"WU_HISTORY_CACHE_SIZE,default=14"`

	// Environment Canada feeds.
	ForecastFeedURL  string        `env:"FORECAST_FEED_URL,default=https://weather.gc.ca/rss/city/nb-17_e.xml"`
	ForecastInterval time.Duration `env:"FORECAST_INTERVAL,default=10m"`
	WarningFeeds     WarningFeeds  `env:"WARNING_FEEDS,default=kent|https://weather.gc.ca/rss/battleboard/nb10_e.xml;westmorland|https://weather.gc.ca/rss/battleboard/nb16_e.xml"`
	WarningInterval  time.Duration `env:"WARNING_INTERVAL,default=10m"`

	FetchTimeout time.Duration `env:"FETCH_TIMEOUT,default=10s"`
	FetchRetries int           `env:"FETCH_RETRIES,default=2"`

	// Kafka digest sink.
	KafkaEnabled bool     `env:"KAFKA_ENABLED,default=false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS,default=localhost:9092"`
	KafkaTopic   string   `env:"KAFKA_TOPIC,default=station-digests"`

	// MQTT pushed readings.
	MQTTEnabled  bool   `env:"MQTT_ENABLED,default=false"`
	MQTTBroker   string `env:"MQTT_BROKER,default=localhost"`
	MQTTPort     int    `env:"MQTT_PORT,default=1883"`
	MQTTTopic    string `env:"MQTT_TOPIC,default=weather/station"`
	MQTTClientID string `env:"MQTT_CLIENT_ID,default=station-digest"`
}

// WarningFeed is one regional advisory feed.
type WarningFeed struct {
	Region string
	URL    string
}

// WarningFeeds is an ordered list decoded from "region|url;region|url".
type WarningFeeds []WarningFeed

// EnvDecode implements envconfig.Decoder.
func (w *WarningFeeds) EnvDecode(val string) error {
	var feeds WarningFeeds
	for _, pair := range strings.Split(val, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		region, url, ok := strings.Cut(pair, "|")
		region, url = strings.TrimSpace(region), strings.TrimSpace(url)
		if !ok || region == "" || url == "" {
			return fmt.Errorf("invalid warning feed %q, want region|url", pair)
		}
		feeds = append(feeds, WarningFeed{Region: region, URL: url})
	}
	*w = feeds
	return nil
}

// Load reads an optional .env file, then configuration from environment
// variables, applying defaults where unset. Variables already set in the
// environment take precedence over the .env file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves STATION_TIMEZONE. It only fails for configs that were not validated.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.StationTimezone)
}

func (c *Config) validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}

	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", c.ShutdownTimeout},
		{"READING_INTERVAL", c.ReadingInterval},
		{"HISTORY_INTERVAL", c.HistoryInterval},
		{"WEEKLY_INTERVAL", c.WeeklyInterval},
		{"FORECAST_INTERVAL", c.ForecastInterval},
		{"WARNING_INTERVAL", c.WarningInterval},
		{"FETCH_TIMEOUT", c.FetchTimeout},
	} {
		if d.val <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}
	if c.FetchRetries < 0 {
		return errors.New("FETCH_RETRIES must not be negative")
	}

	if c.StationID == "" {
		return errors.New("STATION_ID is required")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid STATION_TIMEZONE %q: %w", c.StationTimezone, err)
	}

	if c.WUEnabled {
		if c.WUStationID == "" || c.WUAPIKey == "" {
			return errors.New("WU_ENABLED is true but WU_STATION_ID or WU_API_KEY is not set")
		}
		if c.WUHistoryCacheSize <= 0 {
			return errors.New("WU_HISTORY_CACHE_SIZE must be positive")
		}
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaTopic == "" {
			return errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	if c.MQTTEnabled && (c.MQTTBroker == "" || c.MQTTTopic == "") {
		return errors.New("MQTT_ENABLED is true but MQTT_BROKER or MQTT_TOPIC is not set")
	}
	return nil
}
