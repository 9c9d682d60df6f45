package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrFill(t *testing.T) {
	ctx := context.Background()

	t.Run("fills on miss and serves within ttl", func(t *testing.T) {
		s := New()
		var calls int32
		fill := func(context.Context) (any, error) {
			atomic.AddInt32(&calls, 1)
			return "page-1", nil
		}

		v, err := s.GetOrFill(ctx, ResourceGoals, "list", time.Minute, fill)
		require.NoError(t, err)
		assert.Equal(t, "page-1", v)

		v, err = s.GetOrFill(ctx, ResourceGoals, "list", time.Minute, fill)
		require.NoError(t, err)
		assert.Equal(t, "page-1", v)
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})

	t.Run("refetches past ttl", func(t *testing.T) {
		s := New()
		var calls int32
		fill := func(context.Context) (any, error) {
			return atomic.AddInt32(&calls, 1), nil
		}

		_, err := s.GetOrFill(ctx, ResourceGoals, "list", 0, fill)
		require.NoError(t, err)
		v, err := s.GetOrFill(ctx, ResourceGoals, "list", 0, fill)
		require.NoError(t, err)
		assert.EqualValues(t, 2, v)
	})

	t.Run("fill failure keeps the previous value", func(t *testing.T) {
		s := New()
		s.Put(ResourceGoals, "list", "stale-page")

		_, err := s.GetOrFill(ctx, ResourceGoals, "list", 0, func(context.Context) (any, error) {
			return nil, errors.New("503")
		})
		require.Error(t, err)

		// Keep-previous-data read still works.
		v, ok := s.Get(ResourceGoals, "list")
		require.True(t, ok)
		assert.Equal(t, "stale-page", v)
	})

	t.Run("concurrent callers share one fill", func(t *testing.T) {
		s := New()
		var calls int32
		block := make(chan struct{})
		fill := func(context.Context) (any, error) {
			atomic.AddInt32(&calls, 1)
			<-block
			return "v", nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := s.GetOrFill(ctx, ResourceGoals, "list", time.Minute, fill)
				assert.NoError(t, err)
				assert.Equal(t, "v", v)
			}()
		}
		time.Sleep(10 * time.Millisecond)
		close(block)
		wg.Wait()

		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})
}

func TestInvalidate(t *testing.T) {
	s := New()
	s.Put(ResourceGoals, "list?page=1", 1)
	s.Put(ResourceGoals, "g-1", 2)
	s.Put(ResourceRuns, "r-1", 3)

	s.Invalidate(ResourceGoals)

	_, ok := s.Get(ResourceGoals, "list?page=1")
	assert.False(t, ok)
	_, ok = s.Get(ResourceGoals, "g-1")
	assert.False(t, ok)
	_, ok = s.Get(ResourceRuns, "r-1")
	assert.True(t, ok, "other resource classes untouched")
}

func TestEvictAndClear(t *testing.T) {
	s := New()
	s.Put(ResourceGoals, "g-1", 1)
	s.Put(ResourceAuth, "me", 2)

	s.Evict(ResourceGoals, "g-1")
	_, ok := s.Get(ResourceGoals, "g-1")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
}
