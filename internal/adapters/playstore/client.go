// Package playstore talks to a google-play JSON API (search plus per-app
// detail). The detail call is the only place that carries ratings counts,
// contact data and the last update time.
package playstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"leadscout/internal/adapters/observability"
)

// SearchHit is one entry of a search response. Score may be missing.
type SearchHit struct {
	Title     string   `json:"title"`
	AppID     string   `json:"appId"`
	URL       string   `json:"url"`
	Developer string   `json:"developer"`
	Score     *float64 `json:"score"`
}

// Detail is the per-app payload. Updated arrives as epoch millis from most
// deployments and as a date string from others, so it is kept raw.
type Detail struct {
	Title            string          `json:"title"`
	AppID            string          `json:"appId"`
	URL              string          `json:"url"`
	Developer        string          `json:"developer"`
	DeveloperEmail   string          `json:"developerEmail"`
	DeveloperWebsite string          `json:"developerWebsite"`
	Genre            string          `json:"genre"`
	Score            *float64        `json:"score"`
	Ratings          *int64          `json:"ratings"`
	Updated          json.RawMessage `json:"updated,omitempty"`
	UpdatedISO       json.RawMessage `json:"updatedISO,omitempty"`
}

var ErrNotFound = errors.New("playstore: not found")

type Options struct {
	BaseURL string
	// Delay is the pause after every request; it bounds the outbound rate.
	Delay   time.Duration
	Timeout time.Duration
}

type Client struct {
	base      string
	collector *colly.Collector
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("playstore: base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("playstore: invalid base URL %q", base)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}

	c := colly.NewCollector(
		colly.AllowedDomains(u.Hostname()),
		colly.AllowURLRevisit(),
		colly.UserAgent("leadscout/1.0"),
	)
	c.SetRequestTimeout(opts.Timeout)

	// clones share the backend, so the rule holds across every call
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       opts.Delay,
	}); err != nil {
		return nil, fmt.Errorf("playstore: failed to set limit rule: %w", err)
	}

	return &Client{base: base, collector: c}, nil
}

// Search returns the hits for term in backend order.
func (c *Client) Search(ctx context.Context, term, country, lang string, num int) ([]SearchHit, error) {
	q := url.Values{}
	q.Set("q", term)
	q.Set("num", strconv.Itoa(num))
	q.Set("country", strings.ToLower(country))
	q.Set("lang", strings.ToLower(lang))

	body, err := c.fetch(ctx, "search", c.base+"/api/apps/?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return decodeHits(body)
}

// App fetches the detail payload of one app.
func (c *Client) App(ctx context.Context, appID, country, lang string) (Detail, error) {
	q := url.Values{}
	q.Set("country", strings.ToLower(country))
	q.Set("lang", strings.ToLower(lang))

	body, err := c.fetch(ctx, "app", c.base+"/api/apps/"+url.PathEscape(appID)+"/?"+q.Encode())
	if err != nil {
		return Detail{}, err
	}
	var d Detail
	if err := json.Unmarshal(body, &d); err != nil {
		return Detail{}, fmt.Errorf("playstore: decode app %s: %w", appID, err)
	}
	if d.AppID == "" {
		d.AppID = appID
	}
	return d, nil
}

// decodeHits accepts either {"results":[...]} or a bare array.
func decodeHits(body []byte) ([]SearchHit, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var hits []SearchHit
		if err := json.Unmarshal(trimmed, &hits); err != nil {
			return nil, fmt.Errorf("playstore: decode search: %w", err)
		}
		return hits, nil
	}
	var wrapped struct {
		Results []SearchHit `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("playstore: decode search: %w", err)
	}
	return wrapped.Results, nil
}

func (c *Client) fetch(ctx context.Context, endpoint, target string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// one-off clone: inherits limits, gets its own callbacks
	collector := c.collector.Clone()
	collector.Context = ctx

	var (
		body    []byte
		status  int
		respErr error
	)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
	})

	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		status = r.StatusCode
		if r.StatusCode == http.StatusNotFound {
			respErr = fmt.Errorf("%w: %s", ErrNotFound, r.Request.URL)
			return
		}
		respErr = fmt.Errorf("playstore: request to %s failed with status %d: %w", r.Request.URL, r.StatusCode, err)
	})

	start := time.Now()
	visitErr := collector.Visit(target)
	collector.Wait()
	observability.ObserveExternal("playstore", endpoint, status, time.Since(start))

	if respErr != nil {
		return nil, respErr
	}
	if visitErr != nil {
		return nil, fmt.Errorf("playstore: failed to visit %s: %w", target, visitErr)
	}
	return body, nil
}
