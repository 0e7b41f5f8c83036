// Package ecfeed reads Environment Canada Atom feeds: the city forecast feed
// and the regional warning "battleboard" feeds.
package ecfeed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"

	"github.com/couchcryptid/station-digest-service/internal/adapter/fetch"
	"github.com/couchcryptid/station-digest-service/internal/domain"
)

// Client fetches and parses Atom feeds.
type Client struct {
	client *resty.Client
	logger *slog.Logger
}

// NewClient creates a feed client.
func NewClient(client *resty.Client, logger *slog.Logger) *Client {
	return &Client{client: client, logger: logger}
}

func (c *Client) fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	body, err := fetch.Get(ctx, c.client, url)
	if err != nil {
		return nil, err
	}
	feed, err := parse(body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("feed fetched", "title", feed.Title, "entries", len(feed.Items))
	return feed, nil
}

// ForecastFeed is the city forecast feed.
type ForecastFeed struct {
	client *Client
	url    string
}

// NewForecastFeed binds a client to a forecast feed URL.
func NewForecastFeed(client *Client, url string) *ForecastFeed {
	return &ForecastFeed{client: client, url: url}
}

// Forecast returns the feed's entries in feed order.
func (f *ForecastFeed) Forecast(ctx context.Context) ([]domain.ForecastEntry, error) {
	feed, err := f.client.fetch(ctx, f.url)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast feed: %w", err)
	}
	return forecastEntries(feed), nil
}

// WarningFeed is one region's advisory feed.
type WarningFeed struct {
	client *Client
	region string
	url    string
}

// NewWarningFeed binds a client to a region's advisory feed URL.
func NewWarningFeed(client *Client, region, url string) *WarningFeed {
	return &WarningFeed{client: client, region: region, url: url}
}

// Region returns the region the feed covers.
func (f *WarningFeed) Region() string {
	return f.region
}

// Warnings returns the summaries of the feed's entries.
func (f *WarningFeed) Warnings(ctx context.Context) ([]domain.WarningEntry, error) {
	feed, err := f.client.fetch(ctx, f.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s warning feed: %w", f.region, err)
	}
	return warningEntries(feed), nil
}

// ParseForecast parses a forecast feed document.
func ParseForecast(data []byte) ([]domain.ForecastEntry, error) {
	feed, err := parse(data)
	if err != nil {
		return nil, err
	}
	return forecastEntries(feed), nil
}

// ParseWarnings parses an advisory feed document.
func ParseWarnings(data []byte) ([]domain.WarningEntry, error) {
	feed, err := parse(data)
	if err != nil {
		return nil, err
	}
	return warningEntries(feed), nil
}

func parse(data []byte) (*gofeed.Feed, error) {
	feed, err := gofeed.NewParser().ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// forecastEntries maps items to entries. An item's category is its first
// category term; items without one keep an empty category.
func forecastEntries(feed *gofeed.Feed) []domain.ForecastEntry {
	out := make([]domain.ForecastEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		var category string
		if len(item.Categories) > 0 {
			category = item.Categories[0]
		}
		out = append(out, domain.ForecastEntry{
			Category: category,
			Title:    strings.TrimSpace(item.Title),
		})
	}
	return out
}

func warningEntries(feed *gofeed.Feed) []domain.WarningEntry {
	out := make([]domain.WarningEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		out = append(out, domain.WarningEntry{Summary: item.Description})
	}
	return out
}
