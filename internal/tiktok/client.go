// Package tiktok is a minimal client for the TikTok Content API for
// Business: bearer authentication, the {code,message,data} response
// envelope, and cursor pagination.
package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Business API endpoint used when none is configured.
const DefaultBaseURL = "https://business-api.tiktok.com/open_api"

// Config holds client parameters. Zero fields get defaults.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// Client issues authenticated requests against the TikTok Business API.
type Client struct {
	rest  *resty.Client
	token string
}

// New creates a Client from cfg.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{rest: rest, token: cfg.AccessToken}
}

// envelope is the standard Business API response wrapper. Code zero
// means success regardless of the HTTP status.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Get issues a GET against path with bearer authentication, unwraps the
// response envelope, and decodes its data field into out when out is
// non-nil.
func (c *Client) Get(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return fmt.Errorf("tiktok GET %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("tiktok API %s: status %d: %s", path, resp.StatusCode(), resp.Body())
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("tiktok API %s: decoding response: %w", path, err)
	}
	if env.Code != 0 {
		return fmt.Errorf("tiktok API %s: code %d: %s", path, env.Code, env.Message)
	}
	if out == nil || env.Data == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("tiktok API %s: decoding data: %w", path, err)
	}
	return nil
}

// listPage is the control-field shape of a paginated data payload. The
// item array itself lives under an endpoint-specific key.
type listPage struct {
	Cursor     string `json:"cursor"`
	NextCursor string `json:"next_cursor"`
	HasMore    bool   `json:"has_more"`
}

// next returns whichever cursor field the endpoint populated.
func (p *listPage) next() string {
	if p.Cursor != "" {
		return p.Cursor
	}
	return p.NextCursor
}

// Paginate walks a list endpoint with cursor paging, reading items from
// the listKey field of each data payload and calling fn for every item
// until has_more goes false or fn returns an error.
func (c *Client) Paginate(ctx context.Context, path string, params map[string]string, listKey string, fn func(json.RawMessage) error) error {
	q := make(map[string]string, len(params)+1)
	for k, v := range params {
		q[k] = v
	}

	for {
		var data json.RawMessage
		if err := c.Get(ctx, path, q, &data); err != nil {
			return err
		}

		var page listPage
		if err := json.Unmarshal(data, &page); err != nil {
			return fmt.Errorf("tiktok API %s: decoding paging: %w", path, err)
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("tiktok API %s: decoding data: %w", path, err)
		}
		var items []json.RawMessage
		if raw, ok := fields[listKey]; ok {
			if err := json.Unmarshal(raw, &items); err != nil {
				return fmt.Errorf("tiktok API %s: decoding %s list: %w", path, listKey, err)
			}
		}
		for _, item := range items {
			if err := fn(item); err != nil {
				return err
			}
		}

		cursor := page.next()
		if !page.HasMore || cursor == "" {
			return nil
		}
		q["cursor"] = cursor
	}
}
