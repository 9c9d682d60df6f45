package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mindmesh/console/internal/api"
	"github.com/mindmesh/console/internal/domain"
)

// GoalStarter is what the submitter needs from the goals service.
type GoalStarter interface {
	Create(ctx context.Context, form domain.GoalForm) (*domain.Goal, error)
	Start(ctx context.Context, id string) (string, error)
}

// Defaults applied to goals created from free-text console input. The
// console has no form, so the submission carries conservative settings the
// user can edit afterwards.
type Defaults struct {
	Autonomy domain.AutonomyLevel
	Priority domain.GoalPriority
}

// Submitter turns free-text intent into a create+start request pair and
// settles the corresponding transcript turn. One submission, one terminal
// outcome: a start failure after a successful create still fails the turn,
// there is no partial success and no retry.
type Submitter struct {
	transcript *Transcript
	goals      GoalStarter
	defaults   Defaults
	logger     *zap.Logger
}

func NewSubmitter(t *Transcript, g GoalStarter, d Defaults, logger *zap.Logger) *Submitter {
	if d.Autonomy == "" {
		d.Autonomy = domain.AutonomyL1
	}
	if d.Priority == "" {
		d.Priority = domain.PriorityMedium
	}
	return &Submitter{transcript: t, goals: g, defaults: d, logger: logger.Named("console")}
}

// Transcript exposes the underlying transcript for rendering.
func (s *Submitter) Transcript() *Transcript {
	return s.transcript
}

// Begin opens a submission; see Transcript.Begin for the gating rules.
func (s *Submitter) Begin(text string) (string, error) {
	return s.transcript.Begin(text)
}

// Execute runs the create+start sequence for an open submission and settles
// its placeholder turn. The returned error mirrors the turn outcome for
// callers that log; the user-visible reporting is the turn itself plus the
// goals service notifications.
func (s *Submitter) Execute(ctx context.Context, subID, text string) error {
	goal, err := s.goals.Create(ctx, domain.GoalForm{
		Text:          text,
		AutonomyLevel: s.defaults.Autonomy,
		Priority:      s.defaults.Priority,
		Constraints:   map[string]any{},
	})
	if err != nil {
		s.fail(subID, err)
		return err
	}

	runID, err := s.goals.Start(ctx, goal.ID)
	if err != nil {
		s.fail(subID, err)
		return err
	}

	ack := fmt.Sprintf("I've created a goal for: %q. The system is now planning and executing the necessary steps.", text)
	if err := s.transcript.Resolve(subID, ack, goal.ID, runID); err != nil {
		s.logger.Warn("stale submission resolved after transcript reset", zap.Error(err))
	}
	return nil
}

func (s *Submitter) fail(subID string, cause error) {
	detail := ""
	if apiErr, ok := api.AsError(cause); ok {
		detail = apiErr.Detail
	}
	if err := s.transcript.Fail(subID, detail); err != nil {
		s.logger.Warn("stale submission failed after transcript reset", zap.Error(err))
	}
}
