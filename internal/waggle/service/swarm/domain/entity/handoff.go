package entity

import (
	"time"
)

// HandoffStatus is the state of a task transfer between two agents.
type HandoffStatus string

const (
	// HandoffInitiated means the transfer was proposed and awaits the
	// recipient.
	HandoffInitiated HandoffStatus = "initiated"

	// HandoffAccepted means the recipient took the task.
	HandoffAccepted HandoffStatus = "accepted"

	// HandoffCompleted is terminal: the recipient finished the task.
	HandoffCompleted HandoffStatus = "completed"

	// HandoffRejected is terminal: the transfer was declined or dropped.
	HandoffRejected HandoffStatus = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s HandoffStatus) Terminal() bool {
	return s == HandoffCompleted || s == HandoffRejected
}

// NextHandoffStatus is the handoff state machine as a pure function:
// (current state, requested state) → allowed. Two agents racing the same
// transition both consult this table; the store's write ordering decides the
// winner, and the loser must treat the refusal as "someone else moved it".
func NextHandoffStatus(from, to HandoffStatus) bool {
	switch from {
	case HandoffInitiated:
		return to == HandoffAccepted || to == HandoffRejected
	case HandoffAccepted:
		return to == HandoffCompleted || to == HandoffRejected
	default:
		return false
	}
}

// HandoffContext is the structured context bundle carried with a transfer.
type HandoffContext struct {
	// ModifiedFiles lists files touched so far.
	ModifiedFiles []string `json:"modified_files,omitempty"`

	// PatternsUsed lists patterns applied so far.
	PatternsUsed []string `json:"patterns_used,omitempty"`

	// Decisions lists decisions already made.
	Decisions []string `json:"decisions,omitempty"`

	// Blockers lists known blockers.
	Blockers []string `json:"blockers,omitempty"`

	// NextSteps lists the suggested continuation.
	NextSteps []string `json:"next_steps,omitempty"`
}

// Handoff is one task transfer between two agents.
type Handoff struct {
	// ID is the handoff identifier.
	ID string `json:"id"`

	// From is the agent giving up the task.
	From string `json:"from"`

	// To is the agent the task is offered to.
	To string `json:"to"`

	// Description is the free-text task description.
	Description string `json:"description"`

	// Status is the transfer state; transitions are monotonic.
	Status HandoffStatus `json:"status"`

	// Context is the carried context bundle.
	Context HandoffContext `json:"context"`

	// Result is the optional completion payload.
	Result map[string]interface{} `json:"result,omitempty"`

	// CreatedAt is when the transfer was proposed.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the last transition time.
	UpdatedAt time.Time `json:"updated_at"`
}

// Pending reports whether the handoff still needs recipient action.
func (h *Handoff) Pending() bool {
	return h.Status == HandoffInitiated || h.Status == HandoffAccepted
}
