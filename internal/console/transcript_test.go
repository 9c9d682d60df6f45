package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptBegin(t *testing.T) {
	t.Run("appends user turn and running placeholder", func(t *testing.T) {
		tr := NewTranscript()
		subID, err := tr.Begin("Plan my product launch")
		require.NoError(t, err)
		require.NotEmpty(t, subID)

		turns := tr.Turns()
		require.Len(t, turns, 2)

		assert.Equal(t, RoleUser, turns[0].Role)
		assert.Equal(t, "Plan my product launch", turns[0].Content)
		assert.Equal(t, subID, turns[0].SubmissionID)

		assert.Equal(t, RoleSystem, turns[1].Role)
		assert.Equal(t, "Processing your request...", turns[1].Content)
		assert.Equal(t, TurnRunning, turns[1].Status)
		assert.Equal(t, subID, turns[1].SubmissionID)

		assert.True(t, tr.Busy())
	})

	t.Run("empty submission creates no turn", func(t *testing.T) {
		tr := NewTranscript()
		for _, text := range []string{"", "   ", "\n\t "} {
			_, err := tr.Begin(text)
			require.ErrorIs(t, err, ErrEmptySubmission)
		}
		assert.Zero(t, tr.Len())
		assert.False(t, tr.Busy())
	})

	t.Run("whitespace is trimmed from the kept turn", func(t *testing.T) {
		tr := NewTranscript()
		_, err := tr.Begin("  do the thing  ")
		require.NoError(t, err)
		assert.Equal(t, "do the thing", tr.Turns()[0].Content)
	})

	t.Run("rejects a second in-flight submission", func(t *testing.T) {
		tr := NewTranscript()
		subID, err := tr.Begin("first")
		require.NoError(t, err)

		_, err = tr.Begin("second")
		require.ErrorIs(t, err, ErrBusy)
		assert.Equal(t, 2, tr.Len())

		// Settled transcript accepts submissions again.
		require.NoError(t, tr.Resolve(subID, "done", "g1", "r1"))
		_, err = tr.Begin("second")
		require.NoError(t, err)
	})
}

func TestTranscriptResolve(t *testing.T) {
	tr := NewTranscript()
	subID, err := tr.Begin("summarize my inbox")
	require.NoError(t, err)

	placeholderID := tr.Turns()[1].ID
	require.NoError(t, tr.Resolve(subID, "All set.", "goal-1", "run-1"))

	turns := tr.Turns()
	require.Len(t, turns, 2, "placeholder replaced in place, not appended")

	final := turns[1]
	assert.Equal(t, placeholderID, final.ID, "replacement keeps the turn id")
	assert.Equal(t, RoleAssistant, final.Role)
	assert.Equal(t, TurnCompleted, final.Status)
	assert.Equal(t, "All set.", final.Content)
	assert.Equal(t, "goal-1", final.GoalID)
	assert.Equal(t, "run-1", final.RunID)
	assert.False(t, tr.Busy())
}

func TestTranscriptFail(t *testing.T) {
	t.Run("server detail kept verbatim", func(t *testing.T) {
		tr := NewTranscript()
		subID, _ := tr.Begin("launch rockets")
		require.NoError(t, tr.Fail(subID, "Autonomy level L1 does not permit this action"))

		final := tr.Turns()[1]
		assert.Equal(t, TurnFailed, final.Status)
		assert.Equal(t, "Autonomy level L1 does not permit this action", final.Content)
	})

	t.Run("empty detail uses the fixed fallback", func(t *testing.T) {
		tr := NewTranscript()
		subID, _ := tr.Begin("do something")
		require.NoError(t, tr.Fail(subID, ""))

		assert.Equal(t, FailureFallback, tr.Turns()[1].Content)
		assert.False(t, tr.Busy())
	})
}

func TestTranscriptSettleKeyedBySubmission(t *testing.T) {
	tr := NewTranscript()

	// Settling an id the transcript never saw must not touch anything.
	require.ErrorIs(t, tr.Resolve("nope", "x", "", ""), ErrUnknownTurn)

	subID, _ := tr.Begin("real work")
	require.ErrorIs(t, tr.Fail("still-nope", "detail"), ErrUnknownTurn)
	assert.True(t, tr.Busy())
	assert.Equal(t, TurnRunning, tr.Turns()[1].Status)

	require.NoError(t, tr.Resolve(subID, "ok", "g", "r"))
}
