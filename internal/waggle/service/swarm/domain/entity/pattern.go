package entity

import (
	"time"
)

// Pattern is a learned strategy an agent wants to share.
type Pattern struct {
	// Strategy is the pattern text.
	Strategy string `json:"strategy"`

	// Domain scopes where the pattern applies (e.g. "testing", "build").
	Domain string `json:"domain,omitempty"`

	// Quality is the originating agent's confidence score in [0,1].
	Quality float64 `json:"quality"`
}

// Broadcast is a pattern propagated to the whole swarm, with acknowledgment
// tracking. The acknowledgment set only grows; importing agents are added
// and never removed.
type Broadcast struct {
	// ID is the broadcast identifier.
	ID string `json:"id"`

	// MessageID links back to the bus message that carried the broadcast.
	MessageID string `json:"message_id,omitempty"`

	// From is the originating agent.
	From string `json:"from"`

	// Pattern is the shared pattern.
	Pattern Pattern `json:"pattern"`

	// AckedBy lists agents that imported the pattern, in import order.
	AckedBy []string `json:"acked_by,omitempty"`

	// CreatedAt is when the broadcast was sent.
	CreatedAt time.Time `json:"created_at"`
}

// Acked reports whether agentID already imported this broadcast.
func (b *Broadcast) Acked(agentID string) bool {
	for _, id := range b.AckedBy {
		if id == agentID {
			return true
		}
	}
	return false
}

// Ack records an import acknowledgment. Idempotent: returns false when the
// agent already acknowledged.
func (b *Broadcast) Ack(agentID string) bool {
	if b.Acked(agentID) {
		return false
	}
	b.AckedBy = append(b.AckedBy, agentID)
	return true
}

// BroadcastFilter narrows broadcast listings.
type BroadcastFilter struct {
	// Domain restricts to one pattern domain when non-empty.
	Domain string

	// MinQuality drops broadcasts below the threshold.
	MinQuality float64

	// Limit bounds the result count; 0 means no limit.
	Limit int
}
