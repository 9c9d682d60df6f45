package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mindmesh/console/internal/domain"
)

// Variant is the visual severity of a badge. The status and priority
// mappings are total over their enums; anything unrecognized renders as
// Outline instead of failing.
type Variant string

const (
	VariantNeutral     Variant = "neutral"
	VariantInfo        Variant = "info"
	VariantSuccess     Variant = "success"
	VariantWarning     Variant = "warning"
	VariantDestructive Variant = "destructive"
	VariantOutline     Variant = "outline"
)

var statusVariants = map[domain.GoalStatus]Variant{
	domain.GoalDraft:     VariantNeutral,
	domain.GoalActive:    VariantInfo,
	domain.GoalCompleted: VariantSuccess,
	domain.GoalCancelled: VariantDestructive,
}

var priorityVariants = map[domain.GoalPriority]Variant{
	domain.PriorityLow:    VariantNeutral,
	domain.PriorityMedium: VariantInfo,
	domain.PriorityHigh:   VariantWarning,
	domain.PriorityUrgent: VariantDestructive,
}

// StatusVariant maps a goal status to its badge variant.
func StatusVariant(s domain.GoalStatus) Variant {
	if v, ok := statusVariants[s]; ok {
		return v
	}
	return VariantOutline
}

// PriorityVariant maps a goal priority to its badge variant.
func PriorityVariant(p domain.GoalPriority) Variant {
	if v, ok := priorityVariants[p]; ok {
		return v
	}
	return VariantOutline
}

var badgeStyles = map[Variant]lipgloss.Style{
	VariantNeutral:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	VariantInfo:        lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	VariantSuccess:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	VariantWarning:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	VariantDestructive: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	VariantOutline:     lipgloss.NewStyle().Faint(true),
}

// Badge renders a label in its variant style.
func Badge(label string, v Variant) string {
	return badgeStyles[v].Render("[" + label + "]")
}
