// Package station polls the weather station's live-data endpoint.
package station

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/station-digest-service/internal/adapter/fetch"
	"github.com/couchcryptid/station-digest-service/internal/domain"
)

// Client fetches the current-conditions record from the station.
type Client struct {
	client *resty.Client
	url    string
	logger *slog.Logger
}

// NewClient creates a station client for the given live-data URL.
func NewClient(client *resty.Client, url string, logger *slog.Logger) *Client {
	return &Client{client: client, url: url, logger: logger}
}

// Reading fetches and parses one current-conditions record.
func (c *Client) Reading(ctx context.Context) (domain.Reading, error) {
	body, err := fetch.Get(ctx, c.client, c.url)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("fetch station reading: %w", err)
	}
	fields, err := DecodeFields(body)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("decode station reading: %w", err)
	}
	r := domain.ParseReading(fields)
	c.logger.Debug("station reading fetched", "observed_at", r.ObservedAt, "fields", len(fields))
	return r, nil
}

// DecodeFields decodes a flat JSON object into string fields. Stations
// report values either as strings or as bare numbers; both are accepted.
// Nested values are ignored.
func DecodeFields(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case float64:
			fields[k] = strconv.FormatFloat(val, 'f', -1, 64)
		}
	}
	return fields, nil
}
