package domain

import (
	"errors"
	"time"
)

// Approval state machine (human-in-the-loop gate on a Run)
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
	ApprovalRejected ApprovalState = "rejected"
	ApprovalEdited   ApprovalState = "edited"
)

type ApprovalDecision string

const (
	DecisionApprove ApprovalDecision = "approve"
	DecisionReject  ApprovalDecision = "reject"
	DecisionEdit    ApprovalDecision = "edit"
)

var (
	ErrAlreadyDecided    = errors.New("approval already decided")
	ErrInvalidDecision   = errors.New("invalid approval decision")
	ErrApprovalInvariant = errors.New("approval decision-fields invariant violated")
)

var decisionState = map[ApprovalDecision]ApprovalState{
	DecisionApprove: ApprovalApproved,
	DecisionReject:  ApprovalRejected,
	DecisionEdit:    ApprovalEdited,
}

// Approval blocks a Run until a human decides on the proposed action.
type Approval struct {
	ID      string         `json:"id"`
	RunID   string         `json:"run_id"`
	Payload map[string]any `json:"payload"` // What the agent wanted to do

	State    ApprovalState     `json:"state"`
	Decision *ApprovalDecision `json:"decision"` // Populated only once state leaves pending
	Comments *string           `json:"comments"`

	DecidedBy *string    `json:"decided_by"`
	DecidedAt *time.Time `json:"decided_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Decide records a single decision. Only a pending approval can be decided.
func (a *Approval) Decide(d ApprovalDecision, reviewer string) error {
	if a.State != ApprovalPending {
		return ErrAlreadyDecided
	}
	next, ok := decisionState[d]
	if !ok {
		return ErrInvalidDecision
	}
	now := time.Now().UTC()
	a.State = next
	a.Decision = &d
	a.DecidedBy = &reviewer
	a.DecidedAt = &now
	a.UpdatedAt = now
	return nil
}

// Validate checks that decided_at and decided_by are nil iff state is pending.
func (a *Approval) Validate() error {
	pending := a.State == ApprovalPending
	decided := a.DecidedAt != nil && a.DecidedBy != nil
	undecided := a.DecidedAt == nil && a.DecidedBy == nil && a.Decision == nil
	if pending && !undecided {
		return ErrApprovalInvariant
	}
	if !pending && !decided {
		return ErrApprovalInvariant
	}
	return nil
}
