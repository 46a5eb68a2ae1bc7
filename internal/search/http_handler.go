package search

import (
	"context"
	"errors"
	"net/http"

	"booksearch/internal/httpx"
	"booksearch/internal/metrics"
	"booksearch/internal/platform/logging"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Search handles GET /books
// @Summary Search the book catalog
// @Description Validate the query and relay the Google Books volumes response
// @Tags books
// @Produce json
// @Param q query string false "Search keyword"
// @Param startIndex query number false "Result offset" default(0)
// @Param maxResults query number false "Page size" default(10)
// @Param key query string true "Catalog API key"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {string} string "validation message"
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Search(r.Context(), r.URL.Query())
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			metrics.RecordValidationFailure(verr.Field)
			httpx.Text(w, http.StatusBadRequest, verr.Message)
			return
		}

		event := logging.Ctx(r.Context()).Error()
		if errors.Is(err, context.Canceled) {
			event = logging.Ctx(r.Context()).Info()
		}
		event.Err(err).Msg("catalog search failed")
		httpx.JSONError(w, http.StatusInternalServerError, UpstreamErrorMessage)
		return
	}

	httpx.Relay(w, res.StatusCode, res.ContentType, res.Body)
}
