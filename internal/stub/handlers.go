package stub

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mindmesh/console/internal/domain"
	"github.com/mindmesh/console/internal/goals"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body", "validation")
		return
	}

	user, err := s.store.Authenticate(creds.Email, creds.Password)
	if err != nil {
		// Same message for unknown email and wrong password.
		s.metrics.ErrorTotal.WithLabelValues("auth").Inc()
		s.writeError(w, http.StatusUnauthorized, "Incorrect email or password", "auth")
		return
	}

	grant, err := s.issuer.Grant(user)
	if err != nil {
		s.logger.Error("token issue failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Could not issue token", "internal")
		return
	}
	s.writeJSON(w, http.StatusOK, grant)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg domain.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body", "validation")
		return
	}

	user, err := s.store.CreateUser(reg)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			s.writeError(w, http.StatusConflict, "Email already registered", "validation")
			return
		}
		s.metrics.ErrorTotal.WithLabelValues("validation").Inc()
		s.writeError(w, http.StatusUnprocessableEntity, err.Error(), "validation")
		return
	}

	grant, err := s.issuer.Grant(user)
	if err != nil {
		s.logger.Error("token issue failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Could not issue token", "internal")
		return
	}
	s.writeJSON(w, http.StatusOK, grant)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(userID(r.Context()))
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "Not authenticated", "auth")
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := goals.ListFilter{
		Status:   domain.GoalStatus(q.Get("status")),
		Priority: domain.GoalPriority(q.Get("priority")),
		Search:   q.Get("search"),
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Size, _ = strconv.Atoi(q.Get("size"))

	page := s.store.ListGoals(tenantID(r.Context()), f)
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var form domain.GoalForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body", "validation")
		return
	}

	g, err := s.store.CreateGoal(tenantID(r.Context()), userID(r.Context()), form)
	if err != nil {
		s.metrics.ErrorTotal.WithLabelValues("validation").Inc()
		s.writeError(w, http.StatusUnprocessableEntity, err.Error(), "validation")
		return
	}
	s.writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.GetGoal(tenantID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.metrics.ErrorTotal.WithLabelValues("not_found").Inc()
		s.writeError(w, http.StatusNotFound, "Goal not found", "not_found")
		return
	}
	s.writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var patch domain.GoalPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body", "validation")
		return
	}

	g, err := s.store.UpdateGoal(tenantID(r.Context()), chi.URLParam(r, "id"), patch)
	switch {
	case errors.Is(err, ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Goal not found", "not_found")
	case errors.Is(err, domain.ErrInvalidTransition):
		s.metrics.ErrorTotal.WithLabelValues("validation").Inc()
		s.writeError(w, http.StatusConflict, err.Error(), "invalid_transition")
	case err != nil:
		s.writeError(w, http.StatusUnprocessableEntity, err.Error(), "validation")
	default:
		s.writeJSON(w, http.StatusOK, g)
	}
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGoal(tenantID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, http.StatusNotFound, "Goal not found", "not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartGoal(w http.ResponseWriter, r *http.Request) {
	runID, err := s.store.StartGoal(tenantID(r.Context()), userID(r.Context()), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Goal not found", "not_found")
	case errors.Is(err, domain.ErrInvalidTransition):
		s.metrics.ErrorTotal.WithLabelValues("validation").Inc()
		s.writeError(w, http.StatusConflict, "Only draft goals can be started", "invalid_transition")
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error(), "internal")
	default:
		s.writeJSON(w, http.StatusOK, goals.StartResult{RunID: runID})
	}
}
