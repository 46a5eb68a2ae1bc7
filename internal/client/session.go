package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"booksearch/internal/book"
	"booksearch/internal/stats"
)

var (
	// ErrSuperseded is returned for a search that a newer one replaced.
	ErrSuperseded = errors.New("search superseded by a newer request")
	// ErrNoResults is reported when a search succeeds with an empty page.
	ErrNoResults = errors.New("No books found in the results.")
)

// Result is what a view shows after a search. On failure Page and Summary
// are empty and Err is set.
type Result struct {
	Page    book.Page
	Summary stats.Summary
	Latency time.Duration
	Err     error
}

// Session runs searches with last-write-wins semantics: starting a search
// cancels the one in flight, and only the newest search publishes a result.
type Session struct {
	client *Client

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	current Result
}

func NewSession(c *Client) *Session {
	return &Session{client: c}
}

// Search runs req. If another search starts before this one finishes, the
// returned Result carries ErrSuperseded and the current result is untouched.
func (s *Session) Search(ctx context.Context, req Request) Result {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	page, latency, err := s.client.Search(ctx, req)
	res := newResult(page, latency, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return Result{Err: ErrSuperseded}
	}
	s.cancel = nil
	s.current = res
	return res
}

// Current returns the result of the newest completed search.
func (s *Session) Current() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func newResult(page book.Page, latency time.Duration, err error) Result {
	if err != nil {
		return Result{Err: err}
	}
	if page.Empty() {
		return Result{Err: ErrNoResults}
	}
	return Result{
		Page:    page,
		Summary: stats.Summarize(page, &latency),
		Latency: latency,
	}
}
