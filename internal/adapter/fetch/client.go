// Package fetch holds the HTTP client shared by the upstream source adapters.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "station-digest-service"

// NewClient returns a resty client with the given per-request timeout and
// retry count. Retries back off from 500ms and fire on transport errors and 5xx.
func NewClient(timeout time.Duration, retries int) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("User-Agent", userAgent).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
}

// Get fetches rawURL and returns the body. Non-2xx responses are errors
// carrying the status. Query strings never appear in returned errors since
// they may hold API keys.
func Get(ctx context.Context, client *resty.Client, rawURL string) ([]byte, error) {
	resp, err := client.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = stripQuery(ue.URL)
		}
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{URL: stripQuery(rawURL), Status: resp.StatusCode()}
	}
	return resp.Body(), nil
}

func stripQuery(u string) string {
	base, _, _ := strings.Cut(u, "?")
	return base
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}
