// Package googlebooks calls the Google Books volumes endpoint.
package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"booksearch/internal/metrics"
	"booksearch/internal/platform/logging"
)

// ErrUpstreamStatus is wrapped by StatusError.
var ErrUpstreamStatus = errors.New("unexpected upstream status")

// StatusError reports a non-2xx reply from the catalog.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUpstreamStatus, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstreamStatus
}

// Params are the catalog query parameters. Empty values are not sent, except
// Key which is always sent.
type Params struct {
	Q          string
	Key        string
	StartIndex string
	MaxResults string
}

// Response is a successful catalog reply, kept as raw bytes so it can be
// relayed untouched.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// BreakerConfig configures the circuit breaker around the catalog call.
type BreakerConfig struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker[*Response]
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a client timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithBreaker guards the catalog call with a circuit breaker.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) {
		c.breaker = newBreaker(cfg)
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker[*Response] {
	return gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "googlebooks",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			// A 4xx is the caller's problem, not an upstream outage.
			var se *StatusError
			return errors.As(err, &se) && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(int(to))
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

// Ready reports false while the breaker is open.
func (c *Client) Ready() bool {
	return c.breaker == nil || c.breaker.State() != gobreaker.StateOpen
}

// Search performs one GET against the volumes endpoint. There is no retry.
func (c *Client) Search(ctx context.Context, p Params) (*Response, error) {
	start := time.Now()
	var (
		res *Response
		err error
	)
	if c.breaker != nil {
		res, err = c.breaker.Execute(func() (*Response, error) {
			return c.do(ctx, p)
		})
	} else {
		res, err = c.do(ctx, p)
	}

	switch {
	case err == nil:
		metrics.RecordUpstream("success", time.Since(start))
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordUpstream("rejected", time.Since(start))
		err = fmt.Errorf("catalog unavailable: %w", err)
	default:
		metrics.RecordUpstream("error", time.Since(start))
	}
	return res, err
}

func (c *Client) do(ctx context.Context, p Params) (*Response, error) {
	u, err := c.searchURL(p)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the full URL, key included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, fmt.Errorf("GET %s: %w", RedactURL(u), uerr.Err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) searchURL(p Params) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	if p.Q != "" {
		q.Set("q", p.Q)
	}
	q.Set("key", p.Key)
	if p.StartIndex != "" {
		q.Set("startIndex", p.StartIndex)
	}
	if p.MaxResults != "" {
		q.Set("maxResults", p.MaxResults)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RedactURL masks the key query parameter so the URL can be logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
