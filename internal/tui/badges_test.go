package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mindmesh/console/internal/domain"
)

func TestStatusVariant(t *testing.T) {
	cases := map[domain.GoalStatus]Variant{
		domain.GoalDraft:     VariantNeutral,
		domain.GoalActive:    VariantInfo,
		domain.GoalCompleted: VariantSuccess,
		domain.GoalCancelled: VariantDestructive,
	}
	for status, want := range cases {
		assert.Equal(t, want, StatusVariant(status), "status %s", status)
	}

	// Unrecognized values render as outline instead of failing.
	assert.Equal(t, VariantOutline, StatusVariant("archived"))
	assert.Equal(t, VariantOutline, StatusVariant(""))
}

func TestPriorityVariant(t *testing.T) {
	cases := map[domain.GoalPriority]Variant{
		domain.PriorityLow:    VariantNeutral,
		domain.PriorityMedium: VariantInfo,
		domain.PriorityHigh:   VariantWarning,
		domain.PriorityUrgent: VariantDestructive,
	}
	for priority, want := range cases {
		assert.Equal(t, want, PriorityVariant(priority), "priority %s", priority)
	}

	assert.Equal(t, VariantOutline, PriorityVariant("someday"))
}

func TestBadge(t *testing.T) {
	// Styling varies with the terminal; the label itself must survive.
	assert.Contains(t, Badge("active", VariantInfo), "[active]")
	assert.True(t, strings.Contains(Badge("x", Variant("bogus")), "[x]"), "unknown variant still renders")
}
