package stub

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Options tunes the stub server.
type Options struct {
	RateLimit float64
	RateBurst int
}

// Server is a local, in-memory stand-in for the MindMesh backend. It
// implements only the surface the dashboard client observes; planner and
// executor behavior stays out of scope.
type Server struct {
	router  *chi.Mux
	logger  *zap.Logger
	store   *Store
	issuer  *Issuer
	metrics *Metrics
}

func NewServer(store *Store, issuer *Issuer, reg prometheus.Registerer, opts Options, logger *zap.Logger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		logger:  logger.Named("stub"),
		store:   store,
		issuer:  issuer,
		metrics: NewMetrics(reg),
	}
	s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metricsMiddleware)
	r.Use(s.rateLimitMiddleware(opts.RateLimit, opts.RateBurst))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		// Public: credential exchange must work without a token.
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", s.handleLogin)
			r.Post("/auth/register", s.handleRegister)
		})

		// Protected perimeter.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", s.handleListGoals)
				r.Post("/", s.handleCreateGoal)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetGoal)
					r.Put("/", s.handleUpdateGoal)
					r.Delete("/", s.handleDeleteGoal)
					r.Post("/start", s.handleStartGoal)
				})
			})
		})
	})
}

// ServeHTTP lets the stub act as a standard http.Handler (and slot straight
// into httptest).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response encode failed", zap.Error(err))
	}
}

// writeError emits the structured error body the client contract expects:
// {"detail": ..., "status_code": ..., "type": ...}.
func (s *Server) writeError(w http.ResponseWriter, status int, detail, errType string) {
	s.writeJSON(w, status, map[string]any{
		"detail":      detail,
		"status_code": status,
		"type":        errType,
	})
}
