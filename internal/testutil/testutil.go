package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// VolumesBody is a small Google Books volumes payload for tests.
const VolumesBody = `{"kind":"books#volumes","totalItems":2,"items":[` +
	`{"id":"1","volumeInfo":{"title":"JavaScript: The Good Parts","authors":["Douglas Crockford"],"publishedDate":"2008-05"}},` +
	`{"id":"2","volumeInfo":{"title":"Eloquent JavaScript","authors":["Marijn Haverbeke"],"publishedDate":"2018-12-04"}}]}`

// CatalogServer is a fake Google Books API answering every request with a
// fixed status and body.
type CatalogServer struct {
	*httptest.Server

	mu    sync.Mutex
	calls int
	last  url.Values
}

// NewCatalogServer starts a fake catalog closed at test cleanup.
func NewCatalogServer(t testing.TB, status int, body string) *CatalogServer {
	t.Helper()
	cs := &CatalogServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		cs.calls++
		cs.last = r.URL.Query()
		cs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(cs.Close)
	return cs
}

// Calls reports how many requests reached the fake.
func (cs *CatalogServer) Calls() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.calls
}

// LastQuery returns the query of the most recent request.
func (cs *CatalogServer) LastQuery() url.Values {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.last
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, target string, header map[string]string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		r.Header.Set(k, v)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Raw    string
	Body   map[string]any
}

// RecordHTTPResponse records the HTTP response. Body is populated only for
// JSON objects.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	raw, _ := io.ReadAll(result.Body)

	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Raw:    string(raw),
		Body:   body,
	}
}
