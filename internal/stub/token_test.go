package stub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindmesh/console/internal/domain"
)

func TestIssuerGrant(t *testing.T) {
	issuer, err := NewIssuer(nil, nil, time.Hour)
	require.NoError(t, err)

	user := &domain.User{ID: "u-1", TenantID: "t-1", Email: "a@b.io"}
	grant, err := issuer.Grant(user)
	require.NoError(t, err)

	assert.Equal(t, "Bearer", grant.TokenType)
	assert.NotEmpty(t, grant.AccessToken)
	assert.NotEmpty(t, grant.RefreshToken)
	assert.Positive(t, grant.ExpiresIn)
	require.NotNil(t, grant.User)
	assert.Equal(t, "u-1", grant.User.ID)

	t.Run("verify round-trip", func(t *testing.T) {
		claims, err := issuer.VerifyToken(grant.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
		assert.Equal(t, "t-1", claims.TenantID)
	})

	t.Run("verify strips the Bearer prefix", func(t *testing.T) {
		_, err := issuer.VerifyToken("Bearer " + grant.AccessToken)
		require.NoError(t, err)
	})

	t.Run("token of another issuer rejected", func(t *testing.T) {
		other, err := NewIssuer(nil, nil, time.Hour)
		require.NoError(t, err)
		foreign, err := other.Grant(user)
		require.NoError(t, err)

		_, err = issuer.VerifyToken(foreign.AccessToken)
		require.Error(t, err)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		short, err := NewIssuer(nil, nil, -time.Minute)
		require.NoError(t, err)
		g, err := short.Grant(user)
		require.NoError(t, err)

		_, err = short.VerifyToken(g.AccessToken)
		require.Error(t, err)
	})
}
