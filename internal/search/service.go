package search

import (
	"context"
	"net/url"

	"booksearch/internal/platform/googlebooks"
)

// Catalog is the upstream book catalog.
type Catalog interface {
	Search(ctx context.Context, p googlebooks.Params) (*googlebooks.Response, error)
}

// Service validates search requests and forwards them to the catalog.
type Service struct {
	catalog    Catalog
	defaultKey string
}

// NewService creates a search service. defaultKey is the server-held
// credential; it may be empty, in which case every request must carry a key.
func NewService(catalog Catalog, defaultKey string) *Service {
	return &Service{catalog: catalog, defaultKey: defaultKey}
}

// Search validates values and performs exactly one catalog call. It returns a
// *ValidationError before any call is made, or an *UpstreamError when the call
// fails for any reason.
func (s *Service) Search(ctx context.Context, values url.Values) (*googlebooks.Response, error) {
	q, err := ParseQuery(values, s.defaultKey)
	if err != nil {
		return nil, err
	}

	res, err := s.catalog.Search(ctx, googlebooks.Params{
		Q:          q.Keyword,
		Key:        q.Key,
		StartIndex: q.StartIndex,
		MaxResults: q.MaxResults,
	})
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	return res, nil
}
