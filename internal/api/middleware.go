package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"scholarship-tracker/internal/common/auth"
	apperrors "scholarship-tracker/internal/common/errors"
	httpx "scholarship-tracker/internal/common/http"
	"scholarship-tracker/internal/common/metrics"
)

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		fields := map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		}
		if uid := auth.UserID(r.Context()); uid != "" {
			fields["userId"] = uid
		}
		switch {
		case ww.Status() >= 500:
			s.log.Error("request failed", fields)
		case ww.Status() >= 400:
			s.log.Warn("request rejected", fields)
		default:
			s.log.Debug("request served", fields)
		}
	})
}

// instrument records request counts and latency by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// authenticate verifies the bearer token and stores the principal. With
// required unset an absent or bad token passes through anonymously.
func (s *Server) authenticate(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ParseBearer(r.Header.Get("Authorization"))
			if err == nil {
				var claims *auth.Claims
				claims, err = s.deps.Verifier.Verify(r.Context(), token)
				if err == nil {
					ctx := auth.WithPrincipal(r.Context(), auth.Principal{
						UserID: claims.Subject,
						Email:  claims.Email,
						Role:   claims.Role,
					})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			if !required {
				next.ServeHTTP(w, r)
				return
			}
			if !errors.Is(err, auth.ErrMissingToken) {
				s.log.Debug("token rejected", map[string]interface{}{"error": err.Error()})
			}
			httpx.WriteError(w, apperrors.NewUnauthenticatedError(err.Error()))
		})
	}
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok {
			httpx.WriteError(w, apperrors.NewUnauthenticatedError("missing session"))
			return
		}
		if !p.IsAdmin(s.deps.AdminRole) {
			httpx.WriteError(w, apperrors.NewForbiddenError("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow applies the per-caller generation budget.
func (s *Server) allow(r *http.Request) error {
	if s.deps.Limiter == nil {
		return nil
	}
	return s.deps.Limiter.Allow(r.Context(), limitKey(r))
}

// limitKey is the user id, or the client host for anonymous callers. The port
// is dropped so new connections share one budget.
func limitKey(r *http.Request) string {
	if id := auth.UserID(r.Context()); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
