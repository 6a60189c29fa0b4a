package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/thankyoudiscord/waitlist/pkg/models"
	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether the ledger backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterOptions struct {
	Service        *waitlist.Service
	Ledger         Pinger
	StatsCache     StatsCache
	PublicURL      string
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter builds the public HTTP handler: the waitlist API under /waitlist
// plus health, readiness and metrics.
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(requestIDLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if opts.Ledger != nil {
			ctx, cancel := context.WithTimeout(req.Context(), readyTimeout)
			defer cancel()
			if err := opts.Ledger.Ping(ctx); err != nil {
				hlog.FromRequest(req).Warn().Err(err).Msg("ledger not ready")
				respondError(w, http.StatusServiceUnavailable, models.ErrCodeStoreUnavailable, "ledger unavailable")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Method("GET", "/metrics", promhttp.Handler())

	r.Mount("/waitlist", NewWaitlistRoutes(opts.Service, opts.PublicURL, opts.StatsCache).Routes())

	return otelhttp.NewHandler(r, "waitlist-http")
}

// requestIDLogger adds chi's request id to the request scoped logger.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}
