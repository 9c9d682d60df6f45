package stub

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mindmesh/console/internal/domain"
)

type ctxKey string

const (
	ctxUserID   ctxKey = "user_id"
	ctxTenantID ctxKey = "tenant_id"
)

// TokenVerifier is the slice of Issuer the middleware needs.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*domain.AccessClaims, error)
}

// authMiddleware guards the protected perimeter with RS256 verification and
// drops the identity into the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.metrics.ErrorTotal.WithLabelValues("auth").Inc()
			s.writeError(w, http.StatusUnauthorized, "Not authenticated", "auth")
			return
		}

		claims, err := s.issuer.VerifyToken(header)
		if err != nil {
			s.logger.Warn("auth failure", zap.Error(err))
			s.metrics.ErrorTotal.WithLabelValues("auth").Inc()
			s.writeError(w, http.StatusUnauthorized, "Not authenticated", "auth")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxTenantID, claims.TenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimitMiddleware applies one shared limiter; the stub serves a single
// developer, per-client buckets would be overkill.
func (s *Server) rateLimitMiddleware(limit float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(limit), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && !limiter.Allow() {
				s.metrics.ErrorTotal.WithLabelValues("rate_limit").Inc()
				s.writeError(w, http.StatusTooManyRequests, "Too many requests", "rate_limit")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// metricsMiddleware records latency and traffic per route pattern.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		s.metrics.TotalRequests.WithLabelValues(route, r.Method).Inc()
		s.metrics.RequestDuration.
			WithLabelValues(route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func userID(ctx context.Context) string {
	v, _ := ctx.Value(ctxUserID).(string)
	return v
}

func tenantID(ctx context.Context) string {
	v, _ := ctx.Value(ctxTenantID).(string)
	return v
}
