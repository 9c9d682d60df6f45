package domain

import (
	"errors"
	"fmt"
	"time"
)

type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed" // Terminal
	RunFailed    RunStatus = "failed"    // Terminal
	RunPaused    RunStatus = "paused"    // Waiting on an approval gate
)

// Terminal reports whether the status admits no further transitions.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

var ErrRunInvariant = errors.New("run terminal-state invariant violated")

// Run is one execution attempt of a Goal against a versioned execution graph.
type Run struct {
	ID           string `json:"id"`
	TenantID     string `json:"tenant_id"`
	GoalID       string `json:"goal_id"`
	CreatedBy    string `json:"created_by"`
	GraphVersion string `json:"graph_version"`

	Status      RunStatus `json:"status"`
	CurrentNode *string   `json:"current_node"` // Position in the execution graph, nil when terminal

	Checkpoints map[string]any `json:"checkpoints"`
	Artifacts   map[string]any `json:"artifacts"`
	Cost        float64        `json:"cost"`
	Metrics     map[string]any `json:"metrics"`

	ErrorMessage *string    `json:"error_message"`
	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Approvals []Approval `json:"approvals"`
}

// MarkTerminal moves the run into a terminal status, stamping completed_at
// and clearing current_node in one step so the invariant cannot be half-applied.
func (r *Run) MarkTerminal(status RunStatus, errMsg string) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: %s is not terminal", ErrRunInvariant, status)
	}
	now := time.Now().UTC()
	r.Status = status
	r.CompletedAt = &now
	r.CurrentNode = nil
	if errMsg != "" {
		r.ErrorMessage = &errMsg
	}
	return nil
}

// Validate checks the terminal invariant both ways: completed_at is set iff
// the status is terminal, and current_node is cleared on terminal status.
func (r *Run) Validate() error {
	if r.Status.Terminal() {
		if r.CompletedAt == nil {
			return fmt.Errorf("%w: terminal run without completed_at", ErrRunInvariant)
		}
		if r.CurrentNode != nil {
			return fmt.Errorf("%w: terminal run with current_node set", ErrRunInvariant)
		}
		return nil
	}
	if r.CompletedAt != nil {
		return fmt.Errorf("%w: non-terminal run with completed_at set", ErrRunInvariant)
	}
	return nil
}
