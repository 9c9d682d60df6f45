package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticTokens string

func (s staticTokens) AccessToken() string { return string(s) }

func TestClientDo(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches bearer token and decodes the body", func(t *testing.T) {
		var gotAuth, gotAccept string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotAccept = r.Header.Get("Accept")
			fmt.Fprint(w, `{"id":"g-1"}`)
		}))
		defer srv.Close()

		c := New(srv.URL, staticTokens("tok-123"), Options{}, zap.NewNop())
		var out struct {
			ID string `json:"id"`
		}
		require.NoError(t, c.Get(ctx, "/goals/g-1", &out))

		assert.Equal(t, "Bearer tok-123", gotAuth)
		assert.Equal(t, "application/json", gotAccept)
		assert.Equal(t, "g-1", out.ID)
	})

	t.Run("no token means no Authorization header", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, `{}`)
		}))
		defer srv.Close()

		c := New(srv.URL, staticTokens(""), Options{}, zap.NewNop())
		require.NoError(t, c.Get(ctx, "/auth/me", &struct{}{}))
		assert.Empty(t, gotAuth)
	})

	t.Run("non-2xx decodes the error envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"detail":"Only draft goals can be started","type":"conflict"}`)
		}))
		defer srv.Close()

		c := New(srv.URL, staticTokens(""), Options{}, zap.NewNop())
		err := c.Post(ctx, "/goals/g-1/start", nil, nil)

		apiErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
		assert.Equal(t, "Only draft goals can be started", apiErr.Detail)
	})

	t.Run("malformed error body leaves detail empty for the fallback", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `<html>oops</html>`)
		}))
		defer srv.Close()

		c := New(srv.URL, staticTokens(""), Options{}, zap.NewNop())
		err := c.Get(ctx, "/goals", nil)

		apiErr, ok := AsError(err)
		require.True(t, ok)
		assert.Empty(t, apiErr.Detail)
		assert.Equal(t, "Failed to load goals", Detail(err, "Failed to load goals"))
	})

	t.Run("transport failure is typed", func(t *testing.T) {
		c := New("http://127.0.0.1:1", staticTokens(""), Options{}, zap.NewNop())
		err := c.Get(ctx, "/goals", nil)

		apiErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, TypeTransport, apiErr.Type)
	})
}

func TestClientBreaker(t *testing.T) {
	ctx := context.Background()

	// Unreachable address so every attempt fails at the transport.
	c := New("http://127.0.0.1:1", staticTokens(""), Options{
		BreakerMaxFailures: 2,
	}, zap.NewNop())

	for i := 0; i < 2; i++ {
		err := c.Get(ctx, "/goals", nil)
		apiErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, TypeTransport, apiErr.Type, "attempt %d still reaches the wire", i)
	}

	// Third call is rejected without touching the network.
	err := c.Get(ctx, "/goals", nil)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, TypeCircuitOpen, apiErr.Type)
	assert.Equal(t, "service temporarily unavailable", apiErr.Detail)
}

func TestDetail(t *testing.T) {
	assert.Equal(t, "boom", Detail(&Error{Detail: "boom"}, "fallback"))
	assert.Equal(t, "fallback", Detail(&Error{}, "fallback"))
	assert.Equal(t, "fallback", Detail(errors.New("plain"), "fallback"))
	assert.Equal(t, "fallback", Detail(nil, "fallback"))
}
