package domain

import (
	"errors"
	"fmt"
	"time"
)

// Goal lifecycle state machine
type GoalStatus string

const (
	GoalDraft     GoalStatus = "draft"     // Declared, not yet executing
	GoalActive    GoalStatus = "active"    // Agent is planning/executing
	GoalCompleted GoalStatus = "completed" // Terminal
	GoalCancelled GoalStatus = "cancelled" // Terminal
)

type GoalPriority string

const (
	PriorityLow    GoalPriority = "low"
	PriorityMedium GoalPriority = "medium"
	PriorityHigh   GoalPriority = "high"
	PriorityUrgent GoalPriority = "urgent"
)

// AutonomyLevel bounds how much the agent may do without an approval gate.
// Ordinal: L0 (ask everything) .. L3 (fully autonomous).
type AutonomyLevel string

const (
	AutonomyL0 AutonomyLevel = "L0"
	AutonomyL1 AutonomyLevel = "L1"
	AutonomyL2 AutonomyLevel = "L2"
	AutonomyL3 AutonomyLevel = "L3"
)

var autonomyRank = map[AutonomyLevel]int{
	AutonomyL0: 0, AutonomyL1: 1, AutonomyL2: 2, AutonomyL3: 3,
}

// Valid reports whether the level is one of L0..L3.
func (l AutonomyLevel) Valid() bool {
	_, ok := autonomyRank[l]
	return ok
}

// AtLeast compares two levels ordinally. Unknown levels rank below L0.
func (l AutonomyLevel) AtLeast(other AutonomyLevel) bool {
	return rank(l) >= rank(other)
}

func rank(l AutonomyLevel) int {
	if r, ok := autonomyRank[l]; ok {
		return r
	}
	return -1
}

var (
	ErrInvalidTransition = errors.New("invalid goal status transition")
	ErrGoalNotActive     = errors.New("goal must be active to hold runs")
)

// Goal is a user-declared intent driving agent planning and execution.
type Goal struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	CreatedBy string `json:"created_by"`

	Text          string        `json:"text"` // Free-form intent as the user typed it
	AutonomyLevel AutonomyLevel `json:"autonomy_level"`
	Constraints   map[string]any `json:"constraints"`
	Status        GoalStatus     `json:"status"`
	Priority      GoalPriority   `json:"priority"`

	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`

	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Owned collections (cascade on delete, server side)
	Tasks []Task `json:"tasks"`
	Runs  []Run  `json:"runs"`
}

// CanTransitionTo enforces draft -> active -> {completed, cancelled}.
func (g *Goal) CanTransitionTo(next GoalStatus) error {
	allowed := map[GoalStatus][]GoalStatus{
		GoalDraft:  {GoalActive},
		GoalActive: {GoalCompleted, GoalCancelled},
	}
	for _, s := range allowed[g.Status] {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.Status, next)
}

// AttachRun rejects runs on goals that have not reached active yet.
func (g *Goal) AttachRun(r Run) error {
	if g.Status == GoalDraft {
		return ErrGoalNotActive
	}
	g.Runs = append(g.Runs, r)
	return nil
}

// GoalForm is the creation payload (POST /goals).
type GoalForm struct {
	Text           string         `json:"text"`
	AutonomyLevel  AutonomyLevel  `json:"autonomy_level"`
	Constraints    map[string]any `json:"constraints"`
	Priority       GoalPriority   `json:"priority"`
	DueDate        *time.Time     `json:"due_date"`
	EstimatedHours *float64       `json:"estimated_hours"`
}

// GoalPatch is a partial update (PUT /goals/{id}). Pointer fields so that
// unset is distinguishable from the zero value and omitted on the wire.
type GoalPatch struct {
	Text           *string        `json:"text,omitempty"`
	AutonomyLevel  *AutonomyLevel `json:"autonomy_level,omitempty"`
	Constraints    map[string]any `json:"constraints,omitempty"`
	Status         *GoalStatus    `json:"status,omitempty"`
	Priority       *GoalPriority  `json:"priority,omitempty"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	EstimatedHours *float64       `json:"estimated_hours,omitempty"`
}
