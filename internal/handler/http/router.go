package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TuancoderLo/perfumestore/internal/config"
	"github.com/TuancoderLo/perfumestore/internal/proxy"
	"github.com/TuancoderLo/perfumestore/internal/service"
	"github.com/TuancoderLo/perfumestore/internal/session"
	"github.com/TuancoderLo/perfumestore/pkg/health"
	"github.com/TuancoderLo/perfumestore/pkg/middleware"
)

// NewRouter creates a chi router with all storefront routes registered.
// upstreamProxy may be nil to disable the mutation pass-through.
func NewRouter(
	cfg *config.Config,
	storefront *service.Storefront,
	suggester *service.Suggester,
	upstreamProxy *proxy.Proxy,
	healthHandler *health.Handler,
	limiter *middleware.RateLimiter,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(session.Extract(cfg.JWTSecret, logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Storefront API endpoints
	h := NewStorefrontHandler(storefront, suggester, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.Browse)
		r.Get("/catalog/{id}", h.Detail)
		r.Get("/brands", h.Brands)
		r.Get("/overview", h.Overview)

		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Get("/suggest", h.Suggest)
		})
	})

	// Mutation pass-through: bodies and auth headers forward verbatim, the
	// upstream keeps final authorization authority. Writes on the admin
	// collections require an admin session and review writes any session;
	// reads and the auth endpoints stay open.
	if upstreamProxy != nil {
		for _, prefix := range []string{"/api/perfumes", "/api/brands", "/api/members"} {
			r.Mount(prefix, guardWrites(session.RequireAdmin, upstreamProxy))
		}
		r.Mount("/api/comments", guardWrites(session.RequireAuth, upstreamProxy))
		r.Mount("/api/auth", upstreamProxy)
	}

	return r
}

// guardWrites applies guard to mutating methods only; reads on the same
// prefix pass through unguarded.
func guardWrites(guard func(http.Handler) http.Handler, next http.Handler) http.Handler {
	guarded := guard(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			guarded.ServeHTTP(w, r)
		}
	})
}
