package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"gesher/pkg/requestcontext"
)

const Header = "X-Request-Id"

// Middleware assigns every request an ID, honoring one supplied by the
// caller, and echoes it back on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
