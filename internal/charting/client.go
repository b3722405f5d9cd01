// Package charting fetches match metadata published by the Match Charting Project.
package charting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pable/go-tennis-metrics/internal/ingest"
	"github.com/pable/go-tennis-metrics/internal/storage"
)

// DefaultMatchesURL is the men's matches file of the charting project.
const DefaultMatchesURL = "https://raw.githubusercontent.com/JeffSackmann/tennis_MatchChartingProject/refs/heads/master/charting-m-matches.csv"

// ErrUnexpectedStatus is returned for any non-200 response.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Client downloads charting CSV files.
type Client struct {
	matchesURL string
	http       *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables the cap.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient returns a client for the given matches URL; empty means DefaultMatchesURL.
func NewClient(matchesURL string, opts ...Option) *Client {
	if matchesURL == "" {
		matchesURL = DefaultMatchesURL
	}
	c := &Client{
		matchesURL: matchesURL,
		http:       &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a GET and hands the body to fn.
func (c *Client) get(ctx context.Context, url string, fn func(io.Reader) error) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/csv, text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %w: %d", url, ErrUnexpectedStatus, resp.StatusCode)
	}
	return fn(resp.Body)
}

// FetchMatches downloads and parses the matches file into metadata updates.
func (c *Client) FetchMatches(ctx context.Context) ([]storage.MatchMetadata, ingest.Stats, error) {
	var (
		metas []storage.MatchMetadata
		st    ingest.Stats
	)
	err := c.get(ctx, c.matchesURL, func(r io.Reader) error {
		var err error
		metas, st, err = ingest.ParseChartingMatches(r)
		return err
	})
	if err != nil {
		return nil, st, fmt.Errorf("fetch charting matches: %w", err)
	}
	return metas, st, nil
}
