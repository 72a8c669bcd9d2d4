package quoteservice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"quotewatch/internal/adapters/config"
	"quotewatch/internal/metrics"
	"quotewatch/pkg/errors"
	"quotewatch/pkg/logger"
)

// maxBodySize bounds a single response; quote tables for a watchlist are tiny
const maxBodySize = 4 << 20

// Client is the HTTP transport to the quote and symbol search services.
// Requests are rate limited; timeouts come from the underlying http.Client.
type Client struct {
	http       *http.Client
	limiter    *rate.Limiter
	stagingDir string
	log        *logger.Logger
}

// NewClient creates a client from config
func NewClient(cfg config.QuoteServiceConfig) *Client {
	burst := int(cfg.RPS)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), burst),
		stagingDir: cfg.StagingDir,
		log:        logger.Get().With("component", "quote_service_client"),
	}
}

// WithHTTPClient replaces the underlying http.Client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Download GETs url and stages the response body in a temporary file.
// The caller owns the returned path and must remove it. On error nothing is left on disk.
func (c *Client) Download(ctx context.Context, url string) (path string, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuoteServiceCall("quotes", time.Since(start), err) }()

	body, err := c.open(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	f, err := os.CreateTemp(c.stagingDir, "quotes-*.csv")
	if err != nil {
		return "", errors.Wrap(err, "failed to create staging file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close staging file")
		}
		if err != nil {
			_ = os.Remove(f.Name())
			path = ""
		}
	}()

	if _, err = io.Copy(f, io.LimitReader(body, maxBodySize)); err != nil {
		return "", errors.Wrap(err, "failed to stage response")
	}

	c.log.Debugw("Quote response staged", "url", url, "path", f.Name())
	return f.Name(), nil
}

// Get GETs url and returns the response body
func (c *Client) Get(ctx context.Context, url string) (data []byte, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuoteServiceCall("search", time.Since(start), err) }()

	body, err := c.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err = io.ReadAll(io.LimitReader(body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	return data, nil
}

func (c *Client) open(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, req.URL.Host)
	}

	return resp.Body, nil
}
