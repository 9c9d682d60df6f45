package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// No config file in a scratch directory: defaults plus ENV only.
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5, cfg.Console.PageSize)
	assert.Equal(t, "L1", cfg.Console.DefaultAutonomy)
	assert.Equal(t, ":8000", cfg.Stub.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Stub.TokenTTL)
	assert.NotEmpty(t, cfg.Session.StorePath)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MINDMESH_API_BASE_URL", "https://api.mindmesh.dev/api")
	t.Setenv("MINDMESH_CONSOLE_PAGE_SIZE", "9")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.mindmesh.dev/api", cfg.API.BaseURL)
	assert.Equal(t, 9, cfg.Console.PageSize)
}

func TestLoadKeyResourceFromEnv(t *testing.T) {
	t.Setenv("TEST_KEY_DATA", "-----BEGIN FAKE-----")
	assert.Equal(t, []byte("-----BEGIN FAKE-----"), loadKeyResource("", "TEST_KEY_DATA"))
	assert.Nil(t, loadKeyResource("", "TEST_KEY_UNSET_VAR"))
}
