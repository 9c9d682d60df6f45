package goals

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mindmesh/console/internal/api"
	"github.com/mindmesh/console/internal/cache"
	"github.com/mindmesh/console/internal/domain"
)

// recorder captures the single notification a mutation must emit.
type recorder struct {
	msg  string
	fail bool
	set  bool
}

func (r *recorder) Success(msg string) { r.msg, r.fail, r.set = msg, false, true }
func (r *recorder) Error(msg string)   { r.msg, r.fail, r.set = msg, true, true }

// Take returns and clears the pending notification, if any.
func (r *recorder) Take() (string, bool, bool) {
	if !r.set {
		return "", false, false
	}
	msg, fail := r.msg, r.fail
	r.msg, r.fail, r.set = "", false, false
	return msg, fail, true
}

// fakeClient records calls and plays back canned responses keyed by
// method+path.
type fakeClient struct {
	calls     []string
	responses map[string]any
	fail      map[string]error
}

func newFakeClient() *fakeClient {
	return &fakeClient{responses: map[string]any{}, fail: map[string]error{}}
}

func (f *fakeClient) reply(key string, out, v any) error {
	f.calls = append(f.calls, key)
	if err := f.fail[key]; err != nil {
		return err
	}
	if out == nil || v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeClient) Get(_ context.Context, path string, out any) error {
	return f.reply("GET "+path, out, f.responses["GET "+path])
}
func (f *fakeClient) Post(_ context.Context, path string, _, out any) error {
	return f.reply("POST "+path, out, f.responses["POST "+path])
}
func (f *fakeClient) Put(_ context.Context, path string, _, out any) error {
	return f.reply("PUT "+path, out, f.responses["PUT "+path])
}
func (f *fakeClient) Delete(_ context.Context, path string) error {
	return f.reply("DELETE "+path, nil, nil)
}

func newTestService(c Client) (*Service, *recorder) {
	status := &recorder{}
	return NewService(c, cache.New(), status, zap.NewNop()), status
}

func TestListFilterEncode(t *testing.T) {
	t.Run("zero filter produces no query at all", func(t *testing.T) {
		assert.Empty(t, ListFilter{}.Encode())
	})

	t.Run("only set options appear", func(t *testing.T) {
		q := ListFilter{Page: 2, Status: domain.GoalActive}.Encode()
		assert.Equal(t, "page=2&status=active", q)
	})

	t.Run("full filter", func(t *testing.T) {
		q := ListFilter{Page: 1, Size: 5, Status: domain.GoalDraft, Priority: domain.PriorityHigh, Search: "launch"}.Encode()
		assert.Equal(t, "page=1&priority=high&search=launch&size=5&status=draft", q)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("no filter hits the bare path", func(t *testing.T) {
		c := newFakeClient()
		c.responses["GET /goals"] = domain.Page[domain.Goal]{Items: []domain.Goal{{ID: "g-1"}}, Total: 1}
		s, _ := newTestService(c)

		page, err := s.List(ctx, ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"GET /goals"}, c.calls)
		assert.Len(t, page.Items, 1)
	})

	t.Run("second read within ttl is served from cache", func(t *testing.T) {
		c := newFakeClient()
		c.responses["GET /goals"] = domain.Page[domain.Goal]{Total: 0}
		s, _ := newTestService(c)

		_, err := s.List(ctx, ListFilter{})
		require.NoError(t, err)
		_, err = s.List(ctx, ListFilter{})
		require.NoError(t, err)
		assert.Len(t, c.calls, 1)
	})

	t.Run("distinct filters are distinct cache entries", func(t *testing.T) {
		c := newFakeClient()
		c.responses["GET /goals"] = domain.Page[domain.Goal]{}
		c.responses["GET /goals?page=2"] = domain.Page[domain.Goal]{Page: 2}
		s, _ := newTestService(c)

		_, err := s.List(ctx, ListFilter{})
		require.NoError(t, err)
		page, err := s.List(ctx, ListFilter{Page: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Page)
		assert.Len(t, c.calls, 2)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("empty id is inert", func(t *testing.T) {
		c := newFakeClient()
		s, _ := newTestService(c)

		g, err := s.Get(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, g)
		assert.Empty(t, c.calls, "no request issued")
	})

	t.Run("fetches and caches by id", func(t *testing.T) {
		c := newFakeClient()
		c.responses["GET /goals/g-1"] = domain.Goal{ID: "g-1", Text: "ship it"}
		s, _ := newTestService(c)

		g, err := s.Get(ctx, "g-1")
		require.NoError(t, err)
		assert.Equal(t, "ship it", g.Text)

		_, err = s.Get(ctx, "g-1")
		require.NoError(t, err)
		assert.Len(t, c.calls, 1)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidates lists and seeds the detail entry", func(t *testing.T) {
		c := newFakeClient()
		c.responses["GET /goals"] = domain.Page[domain.Goal]{}
		c.responses["POST /goals"] = domain.Goal{ID: "g-new", Text: "new goal"}
		c.responses["GET /goals/g-new"] = domain.Goal{ID: "g-new", Text: "SHOULD NOT BE FETCHED"}
		s, status := newTestService(c)

		// Warm the list cache, then create.
		_, err := s.List(ctx, ListFilter{})
		require.NoError(t, err)
		g, err := s.Create(ctx, domain.GoalForm{Text: "new goal"})
		require.NoError(t, err)
		assert.Equal(t, "g-new", g.ID)

		msg, fail, ok := status.Take()
		require.True(t, ok)
		assert.False(t, fail)
		assert.Equal(t, "Goal created successfully!", msg)

		// List cache was invalidated: next read refetches.
		_, err = s.List(ctx, ListFilter{})
		require.NoError(t, err)
		assert.Contains(t, c.calls[len(c.calls)-1], "GET /goals")

		// Detail cache was seeded: no fetch for the created id.
		got, err := s.Get(ctx, "g-new")
		require.NoError(t, err)
		assert.Equal(t, "new goal", got.Text)
		assert.NotContains(t, c.calls, "GET /goals/g-new")
	})

	t.Run("failure reports the server detail", func(t *testing.T) {
		c := newFakeClient()
		c.fail["POST /goals"] = &api.Error{Detail: "Goal text is required", StatusCode: 422}
		s, status := newTestService(c)

		_, err := s.Create(ctx, domain.GoalForm{})
		require.Error(t, err)

		msg, fail, ok := status.Take()
		require.True(t, ok)
		assert.True(t, fail)
		assert.Equal(t, "Goal text is required", msg)
	})

	t.Run("failure without detail uses the operation fallback", func(t *testing.T) {
		c := newFakeClient()
		c.fail["POST /goals"] = &api.Error{StatusCode: 500}
		s, status := newTestService(c)

		_, err := s.Create(ctx, domain.GoalForm{})
		require.Error(t, err)

		msg, _, _ := status.Take()
		assert.Equal(t, "Failed to create goal", msg)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	c := newFakeClient()
	c.responses["GET /goals/g-1"] = domain.Goal{ID: "g-1"}
	s, status := newTestService(c)

	// Warm the detail cache.
	_, err := s.Get(ctx, "g-1")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "g-1"))
	msg, _, _ := status.Take()
	assert.Equal(t, "Goal deleted successfully!", msg)

	// Detail entry evicted: next Get refetches.
	_, err = s.Get(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /goals/g-1", "DELETE /goals/g-1", "GET /goals/g-1"}, c.calls)
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the run id and drops both caches", func(t *testing.T) {
		c := newFakeClient()
		c.responses["GET /goals"] = domain.Page[domain.Goal]{}
		c.responses["POST /goals/g-1/start"] = StartResult{RunID: "r-1"}
		s, status := newTestService(c)

		_, err := s.List(ctx, ListFilter{})
		require.NoError(t, err)

		runID, err := s.Start(ctx, "g-1")
		require.NoError(t, err)
		assert.Equal(t, "r-1", runID)

		msg, _, _ := status.Take()
		assert.Equal(t, "Goal execution started!", msg)

		_, err = s.List(ctx, ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, "GET /goals", c.calls[len(c.calls)-1])
	})

	t.Run("start conflict surfaces the detail", func(t *testing.T) {
		c := newFakeClient()
		c.fail["POST /goals/g-1/start"] = &api.Error{Detail: "Only draft goals can be started", StatusCode: 409}
		s, status := newTestService(c)

		_, err := s.Start(ctx, "g-1")
		require.Error(t, err)

		msg, fail, _ := status.Take()
		assert.True(t, fail)
		assert.Equal(t, "Only draft goals can be started", msg)
	})
}
