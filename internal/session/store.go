package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mindmesh/console/internal/domain"
)

// State is what gets persisted between runs.
type State struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user"`
}

// Store owns the client-side session: tokens plus the locally cached
// identity, persisted as a 0600 JSON file. It is constructed once at app
// start and injected everywhere a token or identity is needed; nothing else
// holds session state.
type Store struct {
	mu     sync.RWMutex
	state  State
	path   string
	logger *zap.Logger
}

func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger.Named("session")}
}

// Restore attempts a silent restore from disk. A missing file is the normal
// unauthenticated start, not an error. An expired access token still
// restores the cached identity: the server decides on the next verification
// call, the client only notes the expiry.
func (s *Store) Restore() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("session: read store: %w", err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return fmt.Errorf("session: corrupt store: %w", err)
	}

	if exp, ok := tokenExpiry(st.AccessToken); ok && time.Now().After(exp) {
		s.logger.Debug("restored session has expired access token",
			zap.Time("expired_at", exp))
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

// Establish stores a fresh grant and persists it.
func (s *Store) Establish(grant *domain.TokenGrant) error {
	s.mu.Lock()
	s.state = State{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		User:         grant.User,
	}
	st := s.state
	s.mu.Unlock()

	return s.persist(st)
}

// Teardown clears memory and removes the persisted file.
func (s *Store) Teardown() error {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: remove store: %w", err)
	}
	return nil
}

// AccessToken implements api.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// User returns the locally stored identity, nil when unauthenticated.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User
}

// SetUser refreshes the cached identity after server verification.
func (s *Store) SetUser(u *domain.User) {
	s.mu.Lock()
	s.state.User = u
	st := s.state
	s.mu.Unlock()

	if err := s.persist(st); err != nil {
		s.logger.Warn("failed to persist refreshed identity", zap.Error(err))
	}
}

// Authenticated reports whether a session exists. It does not verify the
// token; that is CurrentUser's job.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken != ""
}

func (s *Store) persist(st State) error {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: create store dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("session: write store: %w", err)
	}
	return nil
}

// tokenExpiry introspects the access token's exp claim without verifying
// the signature. Verification is the server's job; the client only wants to
// know whether a refresh is due.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &domain.AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
