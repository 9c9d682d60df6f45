package goals

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mindmesh/console/internal/api"
	"github.com/mindmesh/console/internal/cache"
	"github.com/mindmesh/console/internal/domain"
	"github.com/mindmesh/console/internal/notify"
)

// listTTL bounds how long a resolved page is served without re-fetching.
const listTTL = 15 * time.Second

// Client is what the service needs from the API layer.
type Client interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// ListFilter narrows the server-side goals query. Zero-valued options are
// omitted from the outgoing query entirely, never sent as empty strings.
type ListFilter struct {
	Page     int
	Size     int
	Status   domain.GoalStatus
	Priority domain.GoalPriority
	Search   string
}

// Encode renders the filter as a query string ("" when nothing is set).
func (f ListFilter) Encode() string {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Size > 0 {
		q.Set("size", strconv.Itoa(f.Size))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q.Encode()
}

// StartResult is the body of POST /goals/{id}/start.
type StartResult struct {
	RunID string `json:"run_id"`
}

// Service exposes goal queries and mutations with the cache invalidation
// rules each mutation declares. Every mutation reports success or failure
// through the notifier exactly once.
type Service struct {
	client   Client
	cache    *cache.Store
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewService(client Client, store *cache.Store, n notify.Notifier, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		cache:    store,
		notifier: n,
		logger:   logger.Named("goals"),
	}
}

// List resolves a page of goals through the read-through cache. Concurrent
// identical reads collapse into one request. On a fetch failure any
// previously resolved page for other filters stays cached, so views keep
// rendering their last data instead of flashing empty.
func (s *Service) List(ctx context.Context, f ListFilter) (domain.Page[domain.Goal], error) {
	key := "list?" + f.Encode()

	v, err := s.cache.GetOrFill(ctx, cache.ResourceGoals, key, listTTL, func(ctx context.Context) (any, error) {
		path := "/goals"
		if q := f.Encode(); q != "" {
			path += "?" + q
		}
		var page domain.Page[domain.Goal]
		if err := s.client.Get(ctx, path, &page); err != nil {
			return nil, err
		}
		return page, nil
	})
	if err != nil {
		return domain.Page[domain.Goal]{}, fmt.Errorf("goals: list: %w", err)
	}
	return v.(domain.Page[domain.Goal]), nil
}

// Get fetches one goal. Inert on an empty id: no request, no error.
func (s *Service) Get(ctx context.Context, id string) (*domain.Goal, error) {
	if id == "" {
		return nil, nil
	}

	v, err := s.cache.GetOrFill(ctx, cache.ResourceGoals, id, listTTL, func(ctx context.Context) (any, error) {
		var g domain.Goal
		if err := s.client.Get(ctx, "/goals/"+id, &g); err != nil {
			return nil, err
		}
		return &g, nil
	})
	if err != nil {
		return nil, fmt.Errorf("goals: get %s: %w", id, err)
	}
	return v.(*domain.Goal), nil
}

// Create submits a new goal. On success the list cache is invalidated and
// the detail cache is seeded for the new id.
func (s *Service) Create(ctx context.Context, form domain.GoalForm) (*domain.Goal, error) {
	var g domain.Goal
	if err := s.client.Post(ctx, "/goals", form, &g); err != nil {
		s.notifier.Error(api.Detail(err, "Failed to create goal"))
		return nil, fmt.Errorf("goals: create: %w", err)
	}

	s.cache.Invalidate(cache.ResourceGoals)
	s.cache.Put(cache.ResourceGoals, g.ID, &g)
	s.notifier.Success("Goal created successfully!")
	return &g, nil
}

// Update applies a partial update; same invalidation contract as Create.
func (s *Service) Update(ctx context.Context, id string, patch domain.GoalPatch) (*domain.Goal, error) {
	var g domain.Goal
	if err := s.client.Put(ctx, "/goals/"+id, patch, &g); err != nil {
		s.notifier.Error(api.Detail(err, "Failed to update goal"))
		return nil, fmt.Errorf("goals: update %s: %w", id, err)
	}

	s.cache.Invalidate(cache.ResourceGoals)
	s.cache.Put(cache.ResourceGoals, id, &g)
	s.notifier.Success("Goal updated successfully!")
	return &g, nil
}

// Delete removes a goal, invalidating list pages and evicting the detail
// entry for the id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/goals/"+id); err != nil {
		s.notifier.Error(api.Detail(err, "Failed to delete goal"))
		return fmt.Errorf("goals: delete %s: %w", id, err)
	}

	s.cache.Invalidate(cache.ResourceGoals)
	s.cache.Evict(cache.ResourceGoals, id)
	s.notifier.Success("Goal deleted successfully!")
	return nil
}

// Start transitions draft -> active and begins a run, invalidating both the
// goal and run caches. Returns the new run's id.
func (s *Service) Start(ctx context.Context, id string) (string, error) {
	var res StartResult
	if err := s.client.Post(ctx, "/goals/"+id+"/start", nil, &res); err != nil {
		s.notifier.Error(api.Detail(err, "Failed to start goal"))
		return "", fmt.Errorf("goals: start %s: %w", id, err)
	}

	s.cache.Invalidate(cache.ResourceGoals)
	s.cache.Invalidate(cache.ResourceRuns)
	s.notifier.Success("Goal execution started!")
	s.logger.Info("goal started", zap.String("goal_id", id), zap.String("run_id", res.RunID))
	return res.RunID, nil
}
