package audit

import "time"

// Action identifies the write that produced an event.
type Action string

const (
	ActionSave        Action = "save"
	ActionUpdateOrder Action = "update_order"
	ActionAppendFact  Action = "append_fact"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Phone     string    `json:"phone"`
	Action    Action    `json:"action"`
	CollegeID string    `json:"college_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}
