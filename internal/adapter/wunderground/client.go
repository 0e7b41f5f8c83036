// Package wunderground reads a personal weather station's history from the
// Weather Underground PWS API.
package wunderground

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/station-digest-service/internal/adapter/fetch"
	"github.com/couchcryptid/station-digest-service/internal/domain"
)

// DayHistory returns the metric observations of one past local day.
// date is formatted YYYYMMDD.
type DayHistory interface {
	Day(ctx context.Context, date string) ([]domain.WeeklyObservation, error)
}

// Client calls the PWS observation and history endpoints.
type Client struct {
	client    *resty.Client
	baseURL   string
	stationID string
	apiKey    string
	logger    *slog.Logger
}

// NewClient creates a Weather Underground client.
func NewClient(client *resty.Client, baseURL, stationID, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		client:    client,
		baseURL:   baseURL,
		stationID: stationID,
		apiKey:    apiKey,
		logger:    logger,
	}
}

// Today returns today's observations in imperial units.
func (c *Client) Today(ctx context.Context) ([]domain.HistoryObservation, error) {
	body, err := c.get(ctx, "/v2/pws/observations/all/1day", url.Values{"units": {"e"}})
	if err != nil {
		return nil, fmt.Errorf("fetch today's observations: %w", err)
	}
	return ParseHistory(body)
}

// TodayMetric returns today's observations in metric units.
func (c *Client) TodayMetric(ctx context.Context) ([]domain.WeeklyObservation, error) {
	body, err := c.get(ctx, "/v2/pws/observations/all/1day", url.Values{"units": {"m"}})
	if err != nil {
		return nil, fmt.Errorf("fetch today's metric observations: %w", err)
	}
	return ParseDay(body)
}

// Day implements DayHistory.
func (c *Client) Day(ctx context.Context, date string) ([]domain.WeeklyObservation, error) {
	body, err := c.get(ctx, "/v2/pws/history/all", url.Values{"units": {"m"}, "date": {date}})
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", date, err)
	}
	return ParseDay(body)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("stationId", c.stationID)
	params.Set("format", "json")
	params.Set("numericPrecision", "decimal")
	params.Set("apiKey", c.apiKey)
	return fetch.Get(ctx, c.client, c.baseURL+path+"?"+params.Encode())
}

// ParseHistory decodes an imperial observation response.
func ParseHistory(data []byte) ([]domain.HistoryObservation, error) {
	return decodeObservations[domain.HistoryObservation](data)
}

// ParseDay decodes a metric observation or history response.
func ParseDay(data []byte) ([]domain.WeeklyObservation, error) {
	return decodeObservations[domain.WeeklyObservation](data)
}

// decodeObservations unwraps the envelope shared by every PWS observation
// endpoint. The API answers 204 with an empty body for days without data.
func decodeObservations[T any](data []byte) ([]T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var resp struct {
		Observations []T `json:"observations"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.Observations, nil
}
