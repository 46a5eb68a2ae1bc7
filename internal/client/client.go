// Package client calls the search proxy and summarizes what comes back.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"booksearch/internal/book"
)

// AllowedPageSizes are the page sizes offered to users.
var AllowedPageSizes = []int{5, 10, 20, 30}

// Request is one page of a keyword search.
type Request struct {
	Keyword  string
	Page     int
	PageSize int
	Key      string
}

// StartIndexFor converts a 1-based page number into a result offset.
func StartIndexFor(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// APIError is a non-200 reply from the proxy.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for the proxy mounted at baseURL, for example
// http://localhost:4000/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search fetches one page and reports the round trip time of the call.
func (c *Client) Search(ctx context.Context, req Request) (book.Page, time.Duration, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	params := url.Values{}
	if req.Keyword != "" {
		params.Set("q", req.Keyword)
	}
	params.Set("key", req.Key)
	params.Set("startIndex", strconv.Itoa(StartIndexFor(req.Page, pageSize)))
	params.Set("maxResults", strconv.Itoa(pageSize))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/books?"+params.Encode(), nil)
	if err != nil {
		return book.Page{}, 0, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return book.Page{}, 0, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	latency := time.Since(start)
	if err != nil {
		return book.Page{}, latency, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return book.Page{}, latency, newAPIError(resp, body)
	}

	page, err := book.DecodePage(body)
	if err != nil {
		return book.Page{}, latency, err
	}
	return page, latency, nil
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}
