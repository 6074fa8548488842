package middleware

import (
	"net/http"

	"github.com/tuanvumaihuynh/product-management/pkg/correlationid"
)

const maxCorrelationIDLen = 128

// CorrelationID reuses the caller's X-Correlation-ID or mints one, stores it
// in the request context and echoes it on the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(correlationid.Header)
			if id == "" || len(id) > maxCorrelationIDLen {
				id = correlationid.New()
			}

			w.Header().Set(correlationid.Header, id)
			next.ServeHTTP(w, r.WithContext(correlationid.NewContext(r.Context(), id)))
		})
	}
}
