package router

import (
	"encoding/json"
	"net/http"

	"github.com/actuallystonmai/product-recommendation-service/internal/config"
	"github.com/actuallystonmai/product-recommendation-service/internal/handler"
	"github.com/actuallystonmai/product-recommendation-service/internal/logging"
	"github.com/actuallystonmai/product-recommendation-service/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

func Setup(h *handler.Handler, m *metrics.Collector, logger *zap.Logger, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// Routes
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Generation-backed routes are the expensive ones.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		r.Use(rateLimit(cfg))
		r.Post("/recommendations", h.Recommend)
		r.Post("/query", h.Query)
		r.Post("/chat", h.Chat)
	})

	return r
}

func rateLimit(cfg config.ServerConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitRequests <= 0 || cfg.RateLimitWindow <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(handler.ErrorResponse{
				Error:   "rate_limited",
				Message: "Too many requests, please slow down",
			})
		}),
	)
}
