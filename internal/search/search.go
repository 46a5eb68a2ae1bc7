package search

import (
	"fmt"
)

// UpstreamErrorMessage is the only detail a caller sees when the catalog call fails.
const UpstreamErrorMessage = "An error occurred while fetching data from Google Books API."

const (
	DefaultStartIndex = "0"
	DefaultMaxResults = "10"
)

// Query is a validated search request. Numeric fields hold the text the
// caller sent so it is forwarded exactly.
type Query struct {
	Keyword    string
	StartIndex string
	MaxResults string
	Key        string
}

// ValidationError reports malformed or missing query parameters. Message is
// returned to the caller verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamError reports a failed catalog call. Err is for logs only.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream catalog: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
