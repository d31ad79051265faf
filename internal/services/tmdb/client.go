// Package tmdb is a thin typed client for the TMDB v3 catalog API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the public TMDB v3 endpoint
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultLanguage is sent when no language is configured
	DefaultLanguage = "en-US"

	userAgent = "gowatchlist/1.0"
)

// Client issues catalog requests against TMDB
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *logrus.Logger

	maxRetries    uint64
	retryInterval time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRetries retries transient failures up to n times, starting at interval
func WithRetries(n int, interval time.Duration) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = uint64(n)
		}
		if interval > 0 {
			c.retryInterval = interval
		}
	}
}

// WithMetrics records request counts and latency
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a TMDB client
func New(apiKey, baseURL, language string, logger *logrus.Logger, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key is required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,

		retryInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListPopularMovies fetches one page of popular movies
func (c *Client) ListPopularMovies(ctx context.Context, page int) (*models.Page[models.Movie], error) {
	var result models.Page[models.Movie]
	if err := c.doRequest(ctx, "popular", models.MediaKindMovie, "/movie/popular", "", page, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListPopularSeries fetches one page of popular series
func (c *Client) ListPopularSeries(ctx context.Context, page int) (*models.Page[models.Series], error) {
	var result models.Page[models.Series]
	if err := c.doRequest(ctx, "popular", models.MediaKindTV, "/tv/popular", "", page, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchMovies searches movies by title
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*models.Page[models.Movie], error) {
	var result models.Page[models.Movie]
	if err := c.doRequest(ctx, "search", models.MediaKindMovie, "/search/movie", query, page, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchSeries searches series by name
func (c *Client) SearchSeries(ctx context.Context, query string, page int) (*models.Page[models.Series], error) {
	var result models.Page[models.Series]
	if err := c.doRequest(ctx, "search", models.MediaKindTV, "/search/tv", query, page, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// doRequest performs a GET against path and decodes the JSON body into result.
// Rate limits, server errors and transport failures are retried with
// exponential backoff. Every failure is returned as a *models.CatalogError.
func (c *Client) doRequest(ctx context.Context, op string, kind models.MediaKind, path, query string, page int, result interface{}) error {
	fail := func(status int, err error) error {
		c.observe(path, "error", 0)
		return &models.CatalogError{Op: op, Kind: kind, Status: status, Err: err}
	}

	if op == "search" {
		query = strings.TrimSpace(query)
		if query == "" {
			return fail(0, errors.New("query must not be empty"))
		}
	}
	if page < 1 {
		page = 1
	}

	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fail(0, fmt.Errorf("invalid tmdb URL: %w", err))
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	params.Set("page", strconv.Itoa(page))
	if query != "" {
		params.Set("query", query)
	}
	endpoint.RawQuery = params.Encode()

	c.logger.WithFields(logrus.Fields{
		"path":  path,
		"query": query,
		"page":  page,
	}).Debug("Making TMDB request")

	var status int
	attempt := 0
	start := time.Now()
	operation := func() error {
		attempt++
		var err error
		status, err = c.attempt(ctx, endpoint.String(), result)
		if err == nil {
			return nil
		}
		if !retryable(status, err) {
			return backoff.Permanent(err)
		}
		c.logger.WithError(err).WithFields(logrus.Fields{
			"path":    path,
			"attempt": attempt,
		}).Debug("TMDB request failed, retrying")
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	var b backoff.BackOff = backoff.WithMaxRetries(policy, c.maxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return fail(status, err)
	}

	latency := time.Since(start)
	c.observe(path, "ok", latency)
	c.logger.WithFields(logrus.Fields{
		"path":     path,
		"latency":  latency,
		"attempts": attempt,
	}).Debug("TMDB request completed")
	return nil
}

// attempt issues one request. status is 0 when no response was received.
func (c *Client) attempt(ctx context.Context, endpoint string, result interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"body":        string(body),
		}).Warn("TMDB returned non-OK status")
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func retryable(status int, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch {
	case status == 0:
		return true
	case status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	}
	return false
}

func (c *Client) observe(path, outcome string, latency time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.CatalogRequests.WithLabelValues(path, outcome).Inc()
	if outcome == "ok" {
		c.metrics.CatalogLatency.WithLabelValues(path).Observe(latency.Seconds())
	}
}
