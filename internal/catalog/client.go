// Package catalog fetches artists, tracks, albums and playlists from the
// catalog Web API and classifies the responses into model variants.
package catalog

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

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const userAgent = "go-spotify-catalog/1.0"

// Batch limits of the multi-fetch endpoints.
const (
	MaxArtistIDs = 50
	MaxTrackIDs  = 50
	MaxAlbumIDs  = 20
)

// Sentinel errors.
var (
	// ErrRateLimited is returned when the API keeps answering 429 after retries.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnauthorized is returned for a missing, expired or rejected access token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTooManyIDs is returned when a multi-fetch exceeds the endpoint's batch limit.
	ErrTooManyIDs = errors.New("too many ids")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error %d", e.Status)
	}
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// Is maps 401 to ErrUnauthorized and 404 to ErrNotFound.
func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusNotFound:
		return target == ErrNotFound
	}
	return false
}

// errorResponse is the body the API sends with non-2xx statuses.
type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is a catalog API client with rate limiting and 429 retries. The
// underlying http.Client is expected to attach credentials, see auth.ClientCredentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	log        logrus.FieldLogger
	delays     []time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// WithRetryDelays replaces the backoff schedule used for 429 responses that
// carry no Retry-After header. Its length is the number of retries.
func WithRetryDelays(delays ...time.Duration) Option {
	return func(c *Client) { c.delays = delays }
}

// New creates a catalog client. A nil httpClient uses http.DefaultClient.
func New(httpClient *http.Client, cfg *Config, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = rate.Inf
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/") + "/",
		limiter:    rate.NewLimiter(limit, 1),
		log:        logrus.StandardLogger(),
		delays:     []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOption adds query parameters to a request.
type RequestOption func(url.Values)

// WithMarket restricts the response to content playable in the given ISO
// 3166-1 alpha-2 country and applies track relinking.
func WithMarket(code string) RequestOption {
	return func(q url.Values) { q.Set("market", code) }
}

func buildQuery(opts []RequestOption) url.Values {
	q := url.Values{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// get performs a GET request and returns the body of a 2xx response.
// Retries 429 responses, waiting for Retry-After when the API sends it.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	logger := c.log.WithFields(logrus.Fields{"module": "catalog", "path": path})

	var lastErr error
	for attempt := 0; attempt <= len(c.delays); attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		logger.WithField("attempt", attempt).Debug("catalog request")
		body, wait, err := c.doSingleRequest(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		lastErr = err

		if attempt == len(c.delays) {
			break
		}
		if wait <= 0 {
			wait = c.delays[attempt]
		}
		logger.WithField("retry_in", wait).Warn("rate limited")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

// doSingleRequest performs one HTTP request. For 429 responses it also
// returns the Retry-After delay, zero when absent.
func (c *Client) doSingleRequest(ctx context.Context, reqURL string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, retryAfter(resp.Header), ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var er errorResponse
		if err := json.Unmarshal(body, &er); err == nil {
			apiErr.Message = er.Error.Message
		}
		return nil, 0, apiErr
	}

	return body, 0, nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
