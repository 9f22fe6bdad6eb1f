// Package graph is a minimal client for Graph-style social APIs: GET
// with access-token injection, rate-limit retry, and cursor pagination.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Graph API endpoint used when none is configured.
const DefaultBaseURL = "https://graph.facebook.com/v19.0"

// statusRateLimited is the nonstandard status the Graph API uses for
// application-level rate limits, alongside the regular 429.
const statusRateLimited = 613

// Config holds client parameters. Zero fields get defaults.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	RetryWait   time.Duration
}

// Client issues authenticated requests against one Graph API endpoint.
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
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryWait == 0 {
		cfg.RetryWait = time.Second
	}

	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(4).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(16 * cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil || r == nil {
				return false
			}
			return r.StatusCode() == http.StatusTooManyRequests ||
				r.StatusCode() == statusRateLimited
		})

	return &Client{rest: rest, token: cfg.AccessToken}
}

// Envelope is the standard Graph list response: a data array plus a
// paging cursor pointing at the next page, when there is one.
type Envelope struct {
	Data   []json.RawMessage `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// apiErrorEnvelope is the Graph error body shape.
type apiErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Get issues a GET against path (relative to the base URL) with the
// access token injected, decoding the JSON response into out when out is
// non-nil.
func (c *Client) Get(ctx context.Context, path string, params map[string]string, out any) error {
	req := c.rest.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("access_token", c.token)

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("graph GET %s: %w", path, err)
	}
	return decodeResponse(path, resp, out)
}

// getURL issues a GET against an absolute URL, used for paging cursors.
// Cursor URLs already carry the access token and all query parameters.
func (c *Client) getURL(ctx context.Context, url string, out any) error {
	resp, err := c.rest.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("graph GET page: %w", err)
	}
	return decodeResponse(url, resp, out)
}

// Paginate walks a Graph list endpoint, calling fn for every item of
// every page until the paging cursor runs out or fn returns an error.
func (c *Client) Paginate(ctx context.Context, path string, params map[string]string, fn func(json.RawMessage) error) error {
	var env Envelope
	if err := c.Get(ctx, path, params, &env); err != nil {
		return err
	}

	for {
		for _, item := range env.Data {
			if err := fn(item); err != nil {
				return err
			}
		}

		next := env.Paging.Next
		if next == "" {
			return nil
		}
		env = Envelope{}
		if err := c.getURL(ctx, next, &env); err != nil {
			return err
		}
	}
}

// decodeResponse maps non-2xx responses to errors carrying the Graph
// error message, and unmarshals successful bodies into out.
func decodeResponse(path string, resp *resty.Response, out any) error {
	if resp.IsError() {
		var apiErr apiErrorEnvelope
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("graph API %s: status %d (code %d): %s",
				path, resp.StatusCode(), apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("graph API %s: status %d: %s", path, resp.StatusCode(), resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("graph API %s: decoding response: %w", path, err)
	}
	return nil
}
