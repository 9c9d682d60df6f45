package stub

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindmesh/console/internal/domain"
	"github.com/mindmesh/console/internal/goals"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type userRecord struct {
	user         domain.User
	passwordHash []byte
}

// Store is the in-memory record set behind the stub API. Every read and
// write is tenant-scoped; a record of another tenant behaves exactly like a
// missing one.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*userRecord // By user id
	byEmail    map[string]string      // email -> user id
	goals      map[string]*domain.Goal
	runs       map[string]*domain.Run
	bcryptCost int
}

func NewStore(bcryptCost int) *Store {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{
		users:      make(map[string]*userRecord),
		byEmail:    make(map[string]string),
		goals:      make(map[string]*domain.Goal),
		runs:       make(map[string]*domain.Run),
		bcryptCost: bcryptCost,
	}
}

// Seed provisions a demo tenant with one verified user.
func (s *Store) Seed(email, password string) (*domain.User, error) {
	u, err := s.CreateUser(domain.Registration{
		Email:    email,
		Username: "demo",
		Password: password,
		FullName: "Demo User",
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser registers an account in its own fresh tenant.
func (s *Store) CreateUser(reg domain.Registration) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if email == "" || reg.Password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("stub: hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[email]; taken {
		return nil, ErrEmailTaken
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:          uuid.New().String(),
		TenantID:    uuid.New().String(),
		Email:       email,
		Username:    reg.Username,
		FullName:    reg.FullName,
		Role:        "owner",
		Permissions: []string{"goals:read", "goals:write", "approvals:decide"},
		Settings:    map[string]any{},
		IsActive:    true,
		IsVerified:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.users[u.ID] = &userRecord{user: u, passwordHash: hash}
	s.byEmail[email] = u.ID

	out := u
	return &out, nil
}

// Authenticate checks credentials, deliberately not revealing whether the
// email or the password was wrong.
func (s *Store) Authenticate(email, password string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	rec := s.users[id]
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	rec.user.LastLogin = &now
	out := rec.user
	return &out, nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := rec.user
	return &out, nil
}

// CreateGoal records a new draft goal for the tenant.
func (s *Store) CreateGoal(tenantID, userID string, form domain.GoalForm) (*domain.Goal, error) {
	if strings.TrimSpace(form.Text) == "" {
		return nil, fmt.Errorf("goal text is required")
	}
	if form.AutonomyLevel != "" && !form.AutonomyLevel.Valid() {
		return nil, fmt.Errorf("unknown autonomy level %q", form.AutonomyLevel)
	}
	if form.AutonomyLevel == "" {
		form.AutonomyLevel = domain.AutonomyL1
	}
	if form.Priority == "" {
		form.Priority = domain.PriorityMedium
	}
	if form.Constraints == nil {
		form.Constraints = map[string]any{}
	}

	now := time.Now().UTC()
	g := &domain.Goal{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		CreatedBy:      userID,
		Text:           strings.TrimSpace(form.Text),
		AutonomyLevel:  form.AutonomyLevel,
		Constraints:    form.Constraints,
		Status:         domain.GoalDraft,
		Priority:       form.Priority,
		DueDate:        form.DueDate,
		EstimatedHours: form.EstimatedHours,
		Metadata:       map[string]any{},
		CreatedAt:      now,
		UpdatedAt:      now,
		Tasks:          []domain.Task{},
		Runs:           []domain.Run{},
	}

	s.mu.Lock()
	s.goals[g.ID] = g
	s.mu.Unlock()

	out := *g
	return &out, nil
}

// ListGoals returns a page of the tenant's goals, most recent first.
func (s *Store) ListGoals(tenantID string, f goals.ListFilter) domain.Page[domain.Goal] {
	page, size := f.Page, f.Size
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	s.mu.RLock()
	matched := make([]*domain.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		if g.TenantID != tenantID {
			continue
		}
		if f.Status != "" && g.Status != f.Status {
			continue
		}
		if f.Priority != "" && g.Priority != f.Priority {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(g.Text), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, g)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	pages := (total + size - 1) / size
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	items := make([]domain.Goal, 0, end-start)
	for _, g := range matched[start:end] {
		items = append(items, *g)
	}

	return domain.Page[domain.Goal]{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
		Pages: pages,
	}
}

// GetGoal returns a goal by id within the tenant.
func (s *Store) GetGoal(tenantID, id string) (*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok || g.TenantID != tenantID {
		return nil, ErrNotFound
	}
	out := *g
	return &out, nil
}

// UpdateGoal applies a partial update. Status changes go through the goal
// state machine.
func (s *Store) UpdateGoal(tenantID, id string, patch domain.GoalPatch) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.TenantID != tenantID {
		return nil, ErrNotFound
	}

	if patch.Status != nil && *patch.Status != g.Status {
		if err := g.CanTransitionTo(*patch.Status); err != nil {
			return nil, err
		}
		g.Status = *patch.Status
	}
	if patch.Text != nil {
		g.Text = *patch.Text
	}
	if patch.AutonomyLevel != nil {
		if !patch.AutonomyLevel.Valid() {
			return nil, fmt.Errorf("unknown autonomy level %q", *patch.AutonomyLevel)
		}
		g.AutonomyLevel = *patch.AutonomyLevel
	}
	if patch.Priority != nil {
		g.Priority = *patch.Priority
	}
	if patch.Constraints != nil {
		g.Constraints = patch.Constraints
	}
	if patch.DueDate != nil {
		g.DueDate = patch.DueDate
	}
	if patch.EstimatedHours != nil {
		g.EstimatedHours = patch.EstimatedHours
	}
	g.UpdatedAt = time.Now().UTC()

	out := *g
	return &out, nil
}

// DeleteGoal removes the goal and cascades onto its runs.
func (s *Store) DeleteGoal(tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.TenantID != tenantID {
		return ErrNotFound
	}

	for runID, r := range s.runs {
		if r.GoalID == id {
			delete(s.runs, runID)
		}
	}
	delete(s.goals, id)
	return nil
}

// StartGoal transitions draft -> active and opens a pending run.
func (s *Store) StartGoal(tenantID, userID, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.TenantID != tenantID {
		return "", ErrNotFound
	}
	if err := g.CanTransitionTo(domain.GoalActive); err != nil {
		return "", err
	}
	g.Status = domain.GoalActive
	g.UpdatedAt = time.Now().UTC()

	now := time.Now().UTC()
	node := "plan"
	run := domain.Run{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		GoalID:       g.ID,
		CreatedBy:    userID,
		GraphVersion: "v1",
		Status:       domain.RunPending,
		CurrentNode:  &node,
		Checkpoints:  map[string]any{},
		Artifacts:    map[string]any{},
		Metrics:      map[string]any{},
		StartedAt:    &now,
		CreatedAt:    now,
		UpdatedAt:    now,
		Approvals:    []domain.Approval{},
	}
	s.runs[run.ID] = &run
	if err := g.AttachRun(run); err != nil {
		return "", err
	}

	return run.ID, nil
}
