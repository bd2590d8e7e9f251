package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/notechain-go/internal/core/service"
	"github.com/yndnr/notechain-go/internal/server/httpserver/handler"
	"github.com/yndnr/notechain-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// NoteService handles note operations.
	NoteService *service.NoteService

	// Ready reports whether the post-restart hook finished. Nil means always ready.
	Ready handler.ReadinessChecker

	// Metrics records request metrics and serves /metrics. Nil disables both.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// AllowAnonymous maps requests without X-Caller-ID to the anonymous owner.
	AllowAnonymous bool

	// RateLimit is the per-client rate limit (requests/second, 0 = unlimited).
	RateLimit int

	// RateLimitIdleTTL evicts a client's bucket after this long without
	// traffic. Zero selects service.DefaultLimiterIdleTTL.
	RateLimitIdleTTL time.Duration

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = CORS disabled).
	CORSAllowedOrigins []string
}

// noteRoutes are the business endpoints served behind caller resolution.
var noteRoutes = []string{
	"GET /v1/notes",
	"POST /v1/notes",
	"GET /v1/notes/{id}",
	"PUT /v1/notes/{id}",
	"DELETE /v1/notes/{id}",
}

// preflightRoutes answer CORS preflight requests for the note endpoints.
// They are registered only when CORS is enabled.
var preflightRoutes = []string{
	"OPTIONS /v1/notes",
	"OPTIONS /v1/notes/{id}",
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := handler.New(cfg.NoteService, cfg.Ready)
	limiters := service.NewRateLimiterRegistry(cfg.RateLimitIdleTTL)

	mux := http.NewServeMux()

	// Health endpoints: no caller resolution
	for _, route := range []string{"GET /health", "GET /ready"} {
		mux.Handle(route, Chain(h,
			RequestID(logger),
			Recover(),
			Audit(cfg.Metrics, route),
		))
	}

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(),
			RequestID(logger),
			Recover(),
		))
	}

	for _, route := range noteRoutes {
		mws := []Middleware{
			RequestID(logger),
			Recover(),
			Audit(cfg.Metrics, route),
		}
		if len(cfg.CORSAllowedOrigins) > 0 {
			mws = append(mws, CORS(cfg.CORSAllowedOrigins))
		}
		mws = append(mws,
			Caller(cfg.AllowAnonymous),
			RateLimit(limiters, cfg.RateLimit, cfg.Metrics),
		)
		mux.Handle(route, Chain(h, mws...))
	}

	// CORS answers OPTIONS itself, so preflights never reach Caller.
	if len(cfg.CORSAllowedOrigins) > 0 {
		for _, route := range preflightRoutes {
			mux.Handle(route, Chain(h,
				RequestID(logger),
				Recover(),
				Audit(cfg.Metrics, route),
				CORS(cfg.CORSAllowedOrigins),
			))
		}
	}

	return mux
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		AllowAnonymous: true,
		RateLimit:      100, // 100 requests/second per client
	}
}
