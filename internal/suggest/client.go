package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client fetches suggestions from the dashboard API for use with a
// Controller.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient returns a suggestion API client. Trailing slashes on the
// base URL are tolerated.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetcher returns a FetchFunc bound to one suggestion field.
func (c *Client) Fetcher(field string) FetchFunc {
	return func(ctx context.Context, query string) ([]Item, error) {
		u := fmt.Sprintf("%s/suggestions?type=%s&q=%s",
			c.baseURL, url.QueryEscape(field), url.QueryEscape(query))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("suggestions: unexpected status %d", resp.StatusCode)
		}

		var payload struct {
			Suggestions []Item `json:"suggestions"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		return payload.Suggestions, nil
	}
}
