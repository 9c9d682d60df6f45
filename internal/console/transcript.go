package console

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleSystem    Role = "system" // Transient placeholder while a submission is in flight
	RoleAssistant Role = "assistant"
)

type TurnStatus string

const (
	TurnPending   TurnStatus = "pending"
	TurnRunning   TurnStatus = "running"
	TurnCompleted TurnStatus = "completed"
	TurnFailed    TurnStatus = "failed"
)

var (
	ErrEmptySubmission = errors.New("console: empty submission")
	ErrBusy            = errors.New("console: a submission is already in flight")
	ErrUnknownTurn     = errors.New("console: no placeholder for submission")
)

// Messages the transcript renders on resolution.
const (
	processingMessage = "Processing your request..."
	// FailureFallback is the fixed message used when the server supplies no detail.
	FailureFallback = "Sorry, I encountered an error while processing your request. Please try again."
)

// Turn is one entry in the console transcript.
type Turn struct {
	ID           string
	SubmissionID string // Groups the user turn with its system/assistant counterpart
	Role         Role
	Content      string
	Status       TurnStatus
	GoalID       string
	RunID        string
	At           time.Time
}

// Transcript holds the conversation and enforces the per-turn lifecycle:
// a submission appends the user turn plus one running system placeholder,
// and resolution replaces that placeholder in place with exactly one
// assistant turn. Replacement is keyed by submission id, never by position,
// so the invariant survives even if the single-in-flight restriction is
// ever relaxed.
type Transcript struct {
	mu       sync.Mutex
	turns    []Turn
	inflight string // Submission id currently running, "" when idle
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Begin validates and opens a submission. Empty or whitespace-only text
// creates no turn and issues no request. While a submission is in flight
// further submissions are rejected; the input surface disables its submit
// control off the same Busy signal.
func (t *Transcript) Begin(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptySubmission
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inflight != "" {
		return "", ErrBusy
	}

	subID := uuid.New().String()
	now := time.Now()
	t.turns = append(t.turns,
		Turn{
			ID:           uuid.New().String(),
			SubmissionID: subID,
			Role:         RoleUser,
			Content:      text,
			Status:       TurnCompleted,
			At:           now,
		},
		Turn{
			ID:           uuid.New().String(),
			SubmissionID: subID,
			Role:         RoleSystem,
			Content:      processingMessage,
			Status:       TurnRunning,
			At:           now,
		},
	)
	t.inflight = subID
	return subID, nil
}

// Resolve replaces the placeholder of subID with a completed assistant turn.
func (t *Transcript) Resolve(subID, content, goalID, runID string) error {
	return t.settle(subID, Turn{
		Role:    RoleAssistant,
		Content: content,
		Status:  TurnCompleted,
		GoalID:  goalID,
		RunID:   runID,
	})
}

// Fail replaces the placeholder of subID with a failed assistant turn.
// An empty detail falls back to the fixed failure message.
func (t *Transcript) Fail(subID, detail string) error {
	if detail == "" {
		detail = FailureFallback
	}
	return t.settle(subID, Turn{
		Role:    RoleAssistant,
		Content: detail,
		Status:  TurnFailed,
	})
}

func (t *Transcript) settle(subID string, final Turn) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.turns {
		if t.turns[i].SubmissionID == subID && t.turns[i].Role == RoleSystem {
			final.ID = t.turns[i].ID
			final.SubmissionID = subID
			final.At = time.Now()
			t.turns[i] = final
			if t.inflight == subID {
				t.inflight = ""
			}
			return nil
		}
	}
	return ErrUnknownTurn
}

// Busy reports whether a submission is in flight. Gates the submit control.
func (t *Transcript) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflight != ""
}

// Turns returns a snapshot of the transcript.
func (t *Transcript) Turns() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len reports the number of turns currently in the transcript.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.turns)
}
