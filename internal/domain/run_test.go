package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMarkTerminal(t *testing.T) {
	t.Run("completed stamps and clears atomically", func(t *testing.T) {
		node := "execute"
		r := &Run{Status: RunRunning, CurrentNode: &node}
		require.NoError(t, r.MarkTerminal(RunCompleted, ""))

		assert.Equal(t, RunCompleted, r.Status)
		require.NotNil(t, r.CompletedAt)
		assert.Nil(t, r.CurrentNode)
		assert.Nil(t, r.ErrorMessage)
		require.NoError(t, r.Validate())
	})

	t.Run("failed carries the error message", func(t *testing.T) {
		node := "plan"
		r := &Run{Status: RunRunning, CurrentNode: &node}
		require.NoError(t, r.MarkTerminal(RunFailed, "tool timeout"))

		require.NotNil(t, r.ErrorMessage)
		assert.Equal(t, "tool timeout", *r.ErrorMessage)
		require.NoError(t, r.Validate())
	})

	t.Run("non-terminal target rejected", func(t *testing.T) {
		r := &Run{Status: RunRunning}
		require.ErrorIs(t, r.MarkTerminal(RunPaused, ""), ErrRunInvariant)
		assert.Equal(t, RunRunning, r.Status)
	})
}

func TestRunValidate(t *testing.T) {
	now := time.Now().UTC()
	node := "execute"

	cases := []struct {
		name string
		run  Run
		ok   bool
	}{
		{"pending clean", Run{Status: RunPending}, true},
		{"running with node", Run{Status: RunRunning, CurrentNode: &node}, true},
		{"paused clean", Run{Status: RunPaused}, true},
		{"completed stamped", Run{Status: RunCompleted, CompletedAt: &now}, true},
		{"completed without stamp", Run{Status: RunCompleted}, false},
		{"completed with node", Run{Status: RunCompleted, CompletedAt: &now, CurrentNode: &node}, false},
		{"running with stamp", Run{Status: RunRunning, CompletedAt: &now}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrRunInvariant)
			}
		})
	}
}

func TestRunStatusTerminal(t *testing.T) {
	assert.True(t, RunCompleted.Terminal())
	assert.True(t, RunFailed.Terminal())
	assert.False(t, RunPending.Terminal())
	assert.False(t, RunRunning.Terminal())
	assert.False(t, RunPaused.Terminal())
}
