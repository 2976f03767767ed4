package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authmw "gesher/pkg/platform/middleware/auth"
	"gesher/pkg/platform/middleware/requestid"
)

// RouterConfig carries the transport-level knobs the router needs.
type RouterConfig struct {
	AllowedOrigins []string
}

// NewRouter assembles the HTTP surface: public auth endpoints, protected
// session endpoints behind the bearer middleware, and operational endpoints.
func NewRouter(h *Handler, validator authmw.TokenValidator, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestid.Header},
		ExposedHeaders:   []string{requestid.Header},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSession(validator, logger))
		h.RegisterProtected(r)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
