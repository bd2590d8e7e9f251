package httpserver

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/notechain-go/internal/core/domain"
	"github.com/yndnr/notechain-go/internal/core/service"
	"github.com/yndnr/notechain-go/internal/server/httpserver/handler"
	"github.com/yndnr/notechain-go/internal/telemetry/logger"
	"github.com/yndnr/notechain-go/internal/telemetry/metric"
)

// HeaderCallerID carries the caller identity.
const HeaderCallerID = "X-Caller-ID"

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID adds a unique request ID to each request and stores base,
// enriched with that ID, as the request logger. Later middleware and the
// handlers log through logger.L(r.Context()).
func RequestID(base *slog.Logger) Middleware {
	var reqLogger logger.Logger
	if base != nil {
		reqLogger = logger.Wrap(base)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = "req-" + strings.ToLower(ulid.Make().String())
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			if reqLogger != nil {
				ctx = logger.WithLogger(ctx, reqLogger)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Caller resolves the caller identity from the X-Caller-ID header.
// A missing header maps to the anonymous owner when allowAnonymous is set
// and is rejected with 401 otherwise. Naming the anonymous identity
// explicitly is treated the same as sending no header.
func Caller(allowAnonymous bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, _ := domain.ParseOwner(r.Header.Get(HeaderCallerID))
			if owner.IsAnonymous() && !allowAnonymous {
				handler.WriteDomainError(w, domain.ErrCallerRequired)
				return
			}
			if len(owner) > domain.MaxOwnerLength {
				handler.WriteDomainError(w, domain.ErrBadRequest.WithDetails(
					"caller id exceeds "+strconv.Itoa(domain.MaxOwnerLength)+" bytes"))
				return
			}

			next.ServeHTTP(w, r.WithContext(handler.WithCaller(r.Context(), owner)))
		})
	}
}

// RateLimit applies per-client rate limiting keyed on the peer address.
// X-Caller-ID and forwarding headers are client-controlled and never pick
// the bucket. A non-positive requestsPerSecond disables the limit.
func RateLimit(limiters *service.RateLimiterRegistry, requestsPerSecond int, metrics *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := limiters.Check(r.Context(), remoteHost(r), requestsPerSecond); err != nil {
				metrics.ObserveRateLimited()
				w.Header().Set("Retry-After", "1")
				handler.WriteDomainError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Audit logs every request and records it under route in metrics.
func Audit(metrics *metric.Registry, route string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(startTime)
			metrics.ObserveRequest(r.Method, route, strconv.Itoa(wrapped.statusCode), duration)

			attrs := []any{
				"method", r.Method,
				"route", route,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", duration.Milliseconds(),
				"client_ip", getClientIP(r),
			}
			if caller := r.Header.Get(HeaderCallerID); caller != "" {
				attrs = append(attrs, "caller", caller)
			}

			log := logger.L(r.Context())
			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Debug("request completed", attrs...)
			}
		})
	}
}

// Recover recovers from panics and returns 500 error.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.L(r.Context()).Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
					)

					handler.WriteDomainError(w, domain.ErrInternalServer)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// CORS adds Cross-Origin Resource Sharing headers.
func CORS(allowedOrigins []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := len(allowedOrigins) == 0 // Empty means allow all
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					allowed = true
					break
				}
			}

			if allowed && origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Caller-ID, X-Request-ID")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return remoteHost(r)
}

// remoteHost returns the host part of the transport peer address.
func remoteHost(r *http.Request) string {
	// net.SplitHostPort handles IPv6 addresses like [::1]:8080
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
