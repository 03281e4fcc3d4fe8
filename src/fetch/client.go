// Package fetch validates URLs and retrieves raw document text over HTTP.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/chainlink-tools/safe-fetch/src/config"
)

// Client retrieves documents with a fixed identifying User-Agent, a bounded
// timeout, and a cap on response size. Redirects are followed.
type Client struct {
	http      *http.Client
	userAgent string
	maxBytes  int64
	logger    zerolog.Logger
}

// NewClient creates a Client from the fetch configuration.
func NewClient(cfg config.FetchConfig, logger zerolog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxResponseBytes,
		logger:    logger.With().Str("area", "fetch").Logger(),
	}
}

// Validate checks that raw is a fetchable URL: parseable, http or https
// scheme, and a non-empty host. Runs before any network I/O.
func Validate(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}
	return nil
}

// Fetch issues a GET for raw and returns the response body as text. Any
// non-2xx status or transport failure is returned as an error carrying the
// underlying cause. Bytes that are not valid UTF-8 are replaced rather than
// rejected, so a string always comes back when bytes were received at all.
func (c *Client) Fetch(ctx context.Context, raw string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", raw, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetching %s: unexpected status %s", raw, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading response from %s: %w", raw, err)
	}
	if int64(len(body)) > c.maxBytes {
		body = body[:c.maxBytes]
		c.logger.Warn().Str("url", raw).Int64("max_bytes", c.maxBytes).Msg("response truncated")
	}

	return string(bytes.ToValidUTF8(body, []byte("\uFFFD"))), nil
}
