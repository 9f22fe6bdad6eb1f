// Package linkedin is a minimal client for the LinkedIn Community
// Management REST API: bearer authentication, month-version negotiation,
// and offset pagination over element lists.
package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the LinkedIn REST endpoint used when none is configured.
const DefaultBaseURL = "https://api.linkedin.com/rest"

// versionsBack is how many monthly API versions are tried, newest first,
// before giving up. The API rejects retired versions with 426.
const versionsBack = 24

// Config holds client parameters. Zero fields get defaults.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// Client issues authenticated requests against the LinkedIn REST API.
// The first successful request pins the negotiated LinkedIn-Version for
// the rest of the client's life.
type Client struct {
	rest    *resty.Client
	token   string
	version string
}

// New creates a Client from cfg.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("X-Restli-Protocol-Version", "2.0.0")

	return &Client{rest: rest, token: cfg.AccessToken}
}

// candidateVersions returns the YYYYMM version strings for the last
// versionsBack months, newest first.
func candidateVersions(now time.Time) []string {
	out := make([]string, 0, versionsBack)
	d := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < versionsBack; i++ {
		out = append(out, d.Format("200601"))
		d = d.AddDate(0, -1, 0)
	}
	return out
}

// Get issues a GET against path with bearer authentication, walking the
// candidate month versions past 426 responses until one is accepted, and
// decodes the JSON response into out when out is non-nil.
func (c *Client) Get(ctx context.Context, path string, params map[string]string, out any) error {
	versions := candidateVersions(time.Now().UTC())
	if c.version != "" {
		versions = []string{c.version}
	}

	var lastBody string
	for _, ver := range versions {
		resp, err := c.rest.R().
			SetContext(ctx).
			SetAuthToken(c.token).
			SetHeader("LinkedIn-Version", ver).
			SetQueryParams(params).
			Get(path)
		if err != nil {
			return fmt.Errorf("linkedin GET %s: %w", path, err)
		}

		if resp.StatusCode() == http.StatusUpgradeRequired {
			lastBody = string(resp.Body())
			continue
		}
		if resp.IsError() {
			return fmt.Errorf("linkedin API %s: status %d: %s", path, resp.StatusCode(), resp.Body())
		}

		c.version = ver
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("linkedin API %s: decoding response: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("linkedin API %s: no active API version (last 426 body: %s)", path, lastBody)
}

// elementsPage is the standard Restli list response.
type elementsPage struct {
	Elements []json.RawMessage `json:"elements"`
	Paging   struct {
		Total *int `json:"total"`
	} `json:"paging"`
}

// Paginate walks an elements list endpoint with start/count offset
// paging, calling fn for every element until the listing runs out or fn
// returns an error.
func (c *Client) Paginate(ctx context.Context, path string, params map[string]string, count int, fn func(json.RawMessage) error) error {
	start := 0
	for {
		q := make(map[string]string, len(params)+2)
		for k, v := range params {
			q[k] = v
		}
		q["start"] = strconv.Itoa(start)
		q["count"] = strconv.Itoa(count)

		var page elementsPage
		if err := c.Get(ctx, path, q, &page); err != nil {
			return err
		}

		for _, el := range page.Elements {
			if err := fn(el); err != nil {
				return err
			}
		}

		if page.Paging.Total == nil {
			if len(page.Elements) == 0 {
				return nil
			}
		} else if start+count >= *page.Paging.Total {
			return nil
		}
		start += count
	}
}
