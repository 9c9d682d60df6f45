package domain

import "time"

// Page is the paginated list envelope every list endpoint returns.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

// HasMore reports whether the server holds more records than this page carries.
// Drives the "view all" affordance in list views.
func (p Page[T]) HasMore() bool {
	return p.Total > len(p.Items)
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Real-time channel contract. The types are part of the client contract but
// no component consumes the channel in this slice; wiring a websocket
// listener is a pending integration.

type Message struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type RunUpdateMessage struct {
	RunID       string         `json:"run_id"`
	Status      RunStatus      `json:"status"`
	CurrentNode string         `json:"current_node"`
	Progress    float64        `json:"progress"`
	Artifacts   map[string]any `json:"artifacts"`
}

type ApprovalRequestMessage struct {
	ApprovalID string         `json:"approval_id"`
	RunID      string         `json:"run_id"`
	Payload    map[string]any `json:"payload"`
	Deadline   *time.Time     `json:"deadline"`
}
