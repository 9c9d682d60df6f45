package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindmesh/console/internal/domain"
)

func TestMetricCards(t *testing.T) {
	hours3 := 3.0
	hours5 := 5.0

	page := domain.Page[domain.Goal]{
		Items: []domain.Goal{
			{Status: domain.GoalActive},
			{Status: domain.GoalActive},
			{Status: domain.GoalCompleted, ActualHours: &hours3},
			{Status: domain.GoalCompleted, EstimatedHours: &hours5},
			{Status: domain.GoalDraft},
		},
		Total: 12,
	}

	cards := metricCards(page)
	require.Len(t, cards, 4)

	assert.Equal(t, "Total Goals", cards[0].Title)
	assert.Equal(t, "12", cards[0].Value, "total comes from the envelope, not the page")
	assert.Equal(t, "2", cards[1].Value)
	assert.Equal(t, "2", cards[2].Value)
	assert.Equal(t, "8.0", cards[3].Value, "actual hours preferred, estimate as fallback")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-ten", truncate("exactly-ten", 11))
	assert.Equal(t, "a long ...", truncate("a long goal description", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestStatusBuffer(t *testing.T) {
	b := NewStatusBuffer()

	_, _, ok := b.Take()
	assert.False(t, ok, "empty buffer yields nothing")

	b.Success("Goal created successfully!")
	msg, fail, ok := b.Take()
	require.True(t, ok)
	assert.False(t, fail)
	assert.Equal(t, "Goal created successfully!", msg)

	// Take drains: a second read is empty.
	_, _, ok = b.Take()
	assert.False(t, ok)

	// The latest notification wins.
	b.Success("first")
	b.Error("second")
	msg, fail, ok = b.Take()
	require.True(t, ok)
	assert.True(t, fail)
	assert.Equal(t, "second", msg)
}
