package auth

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/mindmesh/console/internal/api"
	"github.com/mindmesh/console/internal/cache"
	"github.com/mindmesh/console/internal/domain"
	"github.com/mindmesh/console/internal/notify"
	"github.com/mindmesh/console/internal/session"
)

// meTTL bounds how often CurrentUser re-verifies against the server.
const meTTL = 30 * time.Second

// Client is what the service needs from the API layer.
type Client interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Service bridges the persisted client-side session to server verification
// and exposes the identity predicates the UI renders against.
type Service struct {
	client   Client
	session  *session.Store
	cache    *cache.Store
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewService(client Client, sess *session.Store, store *cache.Store, n notify.Notifier, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		session:  sess,
		cache:    store,
		notifier: n,
		logger:   logger.Named("auth"),
	}
}

// CurrentUser returns the identity to render. With no session it returns
// nil without touching the network. With a session it verifies against
// GET /auth/me once; a verification failure is silent (no retry, no
// notification) and the locally stored identity is the fallback.
func (s *Service) CurrentUser(ctx context.Context) *domain.User {
	if !s.session.Authenticated() {
		return nil
	}

	v, err := s.cache.GetOrFill(ctx, cache.ResourceAuth, "me", meTTL, func(ctx context.Context) (any, error) {
		var u domain.User
		if err := s.client.Get(ctx, "/auth/me", &u); err != nil {
			return nil, err
		}
		return &u, nil
	})
	if err != nil {
		s.logger.Debug("identity verification failed, using stored identity", zap.Error(err))
		return s.session.User()
	}

	u := v.(*domain.User)
	s.session.SetUser(u)
	return u
}

// Login submits credentials and establishes the session on success.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	var grant domain.TokenGrant
	if err := s.client.Post(ctx, "/auth/login", creds, &grant); err != nil {
		s.notifier.Error(api.Detail(err, "Login failed"))
		return nil, err
	}

	if err := s.establish(&grant); err != nil {
		s.notifier.Error("Login failed")
		return nil, err
	}
	s.notifier.Success("Welcome back!")
	return grant.User, nil
}

// Register creates an account; same envelope and session contract as Login.
func (s *Service) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var grant domain.TokenGrant
	if err := s.client.Post(ctx, "/auth/register", reg, &grant); err != nil {
		s.notifier.Error(api.Detail(err, "Registration failed"))
		return nil, err
	}

	if err := s.establish(&grant); err != nil {
		s.notifier.Error("Registration failed")
		return nil, err
	}
	s.notifier.Success("Account created successfully!")
	return grant.User, nil
}

// Logout tears the session down and drops every cached server record so
// nothing of this identity survives for the next one.
func (s *Service) Logout() error {
	s.cache.Clear()
	if err := s.session.Teardown(); err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	s.notifier.Success("Logged out successfully")
	return nil
}

// establish clears derived caches of any previous identity before the new
// session takes effect.
func (s *Service) establish(grant *domain.TokenGrant) error {
	s.cache.Clear()
	return s.session.Establish(grant)
}

// Identity predicates. All of them are pure and return false for every
// input when no identity is loaded; they never panic.

func (s *Service) HasPermission(p string) bool {
	u := s.session.User()
	if u == nil {
		return false
	}
	return slices.Contains(u.Permissions, p)
}

func (s *Service) HasRole(role string) bool {
	u := s.session.User()
	if u == nil {
		return false
	}
	return u.Role == role
}

func (s *Service) HasAnyPermission(perms []string) bool {
	for _, p := range perms {
		if s.HasPermission(p) {
			return true
		}
	}
	return false
}

func (s *Service) HasAllPermissions(perms []string) bool {
	for _, p := range perms {
		if !s.HasPermission(p) {
			return false
		}
	}
	return true
}
