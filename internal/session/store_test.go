package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mindmesh/console/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	return NewStore(path, zap.NewNop())
}

func TestRestore(t *testing.T) {
	t.Run("missing file is a normal unauthenticated start", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Restore())
		assert.False(t, s.Authenticated())
		assert.Nil(t, s.User())
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		s := NewStore(path, zap.NewNop())
		require.Error(t, s.Restore())
	})
}

func TestEstablishRestoreTeardown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path, zap.NewNop())

	grant := &domain.TokenGrant{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User:         &domain.User{ID: "u-1", Email: "a@b.io"},
	}
	require.NoError(t, s.Establish(grant))
	assert.True(t, s.Authenticated())
	assert.Equal(t, "access-1", s.AccessToken())

	// File permissions keep the token private.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A fresh store restores the same state, identity included.
	s2 := NewStore(path, zap.NewNop())
	require.NoError(t, s2.Restore())
	assert.Equal(t, "access-1", s2.AccessToken())
	require.NotNil(t, s2.User())
	assert.Equal(t, "a@b.io", s2.User().Email)

	// Teardown wipes memory and disk.
	require.NoError(t, s.Teardown())
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.AccessToken())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Teardown on an already-clean store is idempotent.
	require.NoError(t, s.Teardown())
}

func TestSetUser(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Establish(&domain.TokenGrant{
		AccessToken: "tok",
		User:        &domain.User{ID: "u-1", FullName: "Old Name"},
	}))

	s.SetUser(&domain.User{ID: "u-1", FullName: "New Name"})
	assert.Equal(t, "New Name", s.User().FullName)
}
