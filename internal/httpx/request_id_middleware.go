package httpx

import (
	"net/http"

	"github.com/google/uuid"

	"booksearch/internal/platform/logging"
)

const requestIDHeader = "X-Request-Id"

func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(requestIDHeader, requestID)
		ctx := ContextWithRequestID(r.Context(), requestID)
		ctx = logging.WithContext(ctx, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
